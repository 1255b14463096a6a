// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract reads the text of an uploaded or local notice. Documents
// are parsed in memory; nothing is written to disk.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"system-atlas/internal/apperrors"
)

// Options limits extraction work.
type Options struct {
	MaxPDFPages int   // pages beyond this are ignored
	MaxBytes    int64 // larger inputs are rejected
}

// DefaultOptions returns the limits used when no configuration is given.
func DefaultOptions() Options {
	return Options{MaxPDFPages: 50, MaxBytes: 10 << 20}
}

// Document is the extracted text of one file.
type Document struct {
	Filename  string
	Format    string
	Text      string
	PageCount int // PDF only
}

type extractorFunc func(data []byte, opts Options) (*Document, error)

var extractors = map[string]struct {
	format string
	fn     extractorFunc
}{
	".txt":  {"Plain Text", extractPlainText},
	".text": {"Plain Text", extractPlainText},
	".md":   {"Markdown", extractPlainText},
	".pdf":  {"PDF Document", extractPDFText},
	".docx": {"Word Document", extractDocxText},
	".odt":  {"OpenDocument Text", extractOdtText},
}

// SupportedExtensions lists the accepted file extensions in alphabetical order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extractors))
	for ext := range extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupported reports whether filename has an accepted extension.
func IsSupported(filename string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// FromBytes extracts the text of a document held in memory. The extension
// of filename selects the parser. Errors are classified: unknown extensions
// as unsupported format, parse failures and oversized input as unreadable,
// documents without text as invalid input.
func FromBytes(filename string, data []byte, opts Options) (*Document, error) {
	if opts.MaxPDFPages <= 0 || opts.MaxBytes <= 0 {
		defaults := DefaultOptions()
		if opts.MaxPDFPages <= 0 {
			opts.MaxPDFPages = defaults.MaxPDFPages
		}
		if opts.MaxBytes <= 0 {
			opts.MaxBytes = defaults.MaxBytes
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	entry, ok := extractors[ext]
	if !ok {
		return nil, apperrors.NewUnsupportedFormatError(fmt.Sprintf("unsupported file format %q", ext), nil)
	}

	if int64(len(data)) > opts.MaxBytes {
		return nil, apperrors.NewUnreadableError(fmt.Sprintf("file exceeds %d bytes", opts.MaxBytes), nil)
	}

	doc, err := entry.fn(data, opts)
	if err != nil {
		return nil, err
	}
	doc.Filename = filepath.Base(filename)
	doc.Format = entry.format
	doc.Text = strings.TrimSpace(doc.Text)

	if doc.Text == "" {
		return nil, apperrors.NewInvalidInputError("document contains no text", nil)
	}
	return doc, nil
}

// FromFile reads path and extracts its text.
func FromFile(path string, opts Options) (*Document, error) {
	if !IsSupported(path) {
		return nil, apperrors.NewUnsupportedFormatError(fmt.Sprintf("unsupported file format %q", filepath.Ext(path)), nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file error: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if opts.MaxBytes > 0 && info.Size() > opts.MaxBytes {
		return nil, apperrors.NewUnreadableError(fmt.Sprintf("file exceeds %d bytes", opts.MaxBytes), nil)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return FromBytes(path, data, opts)
}
