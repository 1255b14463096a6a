// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package security holds uploaded notice bytes that must not outlive a request.
package security

// UploadBuffer wraps the raw bytes of an uploaded notice with best-effort
// scrubbing on Clear.
//
// Limitations: the garbage collector may move or copy memory, and the text
// extracted from the buffer is an immutable string that cannot be zeroed.
// Clear shortens the time the raw upload stays readable on the heap, nothing
// more.
type UploadBuffer struct {
	name string
	data []byte
}

// NewUploadBuffer takes ownership of data. The caller must not keep its own
// reference.
func NewUploadBuffer(name string, data []byte) *UploadBuffer {
	return &UploadBuffer{name: name, data: data}
}

// Name returns the client-supplied file name
func (b *UploadBuffer) Name() string {
	return b.name
}

// Bytes returns the buffer contents. The slice is zeroed by Clear.
func (b *UploadBuffer) Bytes() []byte {
	return b.data
}

// Len returns the buffer size in bytes
func (b *UploadBuffer) Len() int {
	return len(b.data)
}

// Clear overwrites the buffer with zeros and releases it. Safe to call more
// than once and on a nil buffer.
func (b *UploadBuffer) Clear() {
	if b == nil || b.data == nil {
		return
	}
	clear(b.data)
	b.data = nil
}
