// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"strings"
	"unicode/utf8"

	"system-atlas/internal/apperrors"
)

// extractPlainText accepts UTF-8 text with or without a byte order mark.
func extractPlainText(data []byte, _ Options) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, apperrors.NewUnreadableError("text file is not valid UTF-8", nil)
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &Document{Text: text}, nil
}
