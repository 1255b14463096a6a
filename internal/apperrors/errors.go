// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package apperrors classifies failures so the boundary can map them to a
// status code and a fixed user message.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors for handling strategies
type ErrorType int

const (
	ErrorTypeUnknown           ErrorType = iota
	ErrorTypeInvalidInput                // Missing, empty or malformed text
	ErrorTypeUnsupportedFormat           // Upload with a file type we cannot read
	ErrorTypeUnreadable                  // Supported file type that failed to parse
	ErrorTypeInternal                    // Analysis or formatting failure
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeInvalidInput:
		return "invalid_input"
	case ErrorTypeUnsupportedFormat:
		return "unsupported_format"
	case ErrorTypeUnreadable:
		return "unreadable"
	case ErrorTypeInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original error
	Type     ErrorType
	Message  string
}

func (e *ClassifiedError) Error() string {
	switch {
	case e.Message != "" && e.Original != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Original)
	case e.Message != "":
		return e.Message
	case e.Original != nil:
		return e.Original.Error()
	default:
		return e.Type.String()
	}
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// NewInvalidInputError creates an error for unusable request text
func NewInvalidInputError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{Original: cause, Type: ErrorTypeInvalidInput, Message: message}
}

// NewUnsupportedFormatError creates an error for an unknown file type
func NewUnsupportedFormatError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{Original: cause, Type: ErrorTypeUnsupportedFormat, Message: message}
}

// NewUnreadableError creates an error for a file that could not be parsed
func NewUnreadableError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{Original: cause, Type: ErrorTypeUnreadable, Message: message}
}

// NewInternalError creates an error for a failure inside the pipeline
func NewInternalError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{Original: cause, Type: ErrorTypeInternal, Message: message}
}

// TypeOf returns the type of the first ClassifiedError in err's chain, or
// ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err's chain holds a ClassifiedError of type t.
func IsType(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}
