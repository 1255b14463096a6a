// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"system-atlas/internal/apperrors"
)

func init() {
	// Keep pdfcpu from creating a configuration directory on first use
	api.DisableConfigDir()
}

// validatePDF runs pdfcpu's structural validation in relaxed mode.
func validatePDF(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf validation panicked: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.Validate(bytes.NewReader(data), conf)
}

// extractPDFText validates the document and then extracts the text of each
// page in parallel, joining pages with a blank line.
func extractPDFText(data []byte, opts Options) (*Document, error) {
	if err := validatePDF(data); err != nil {
		return nil, apperrors.NewUnreadableError("invalid PDF", err)
	}

	r, err := openPDF(data)
	if err != nil {
		return nil, apperrors.NewUnreadableError("error opening PDF", err)
	}

	doc := &Document{PageCount: r.NumPage()}
	pageCount := doc.PageCount
	if pageCount > opts.MaxPDFPages {
		pageCount = opts.MaxPDFPages
	}

	type pageResult struct {
		pageNum int
		text    string
		err     error
	}

	resultChan := make(chan pageResult, pageCount)
	for i := 1; i <= pageCount; i++ {
		go func(pageNum int) {
			defer func() {
				if rec := recover(); rec != nil {
					resultChan <- pageResult{pageNum: pageNum, err: fmt.Errorf("page %d: %v", pageNum, rec)}
				}
			}()

			p := r.Page(pageNum)
			if p.V.IsNull() {
				resultChan <- pageResult{pageNum: pageNum, err: fmt.Errorf("page %d: null page", pageNum)}
				return
			}
			text, err := extractPageText(p)
			resultChan <- pageResult{pageNum: pageNum, text: text, err: err}
		}(i)
	}

	pageTexts := make(map[int]string, pageCount)
	var failed []error
	for i := 0; i < pageCount; i++ {
		result := <-resultChan
		if result.err != nil {
			failed = append(failed, result.err)
			continue
		}
		pageTexts[result.pageNum] = result.text
	}

	if pageCount > 0 && len(failed) == pageCount {
		return nil, apperrors.NewUnreadableError("no page could be read", failed[0])
	}

	var pages []string
	for i := 1; i <= pageCount; i++ {
		if text := strings.TrimSpace(pageTexts[i]); text != "" {
			pages = append(pages, text)
		}
	}
	doc.Text = strings.Join(pages, "\n\n")

	return doc, nil
}

// openPDF parses the document, converting parser panics into errors.
func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parser panicked: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// extractPageText extracts text using row-based positioning for better spacing
func extractPageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		// Fallback to simple text extraction if row-based fails
		return p.GetPlainText(nil)
	}

	sortedRows := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sortedRows = append(sortedRows, row)
		}
	}

	// PDF Y grows upwards, so the top row has the largest Y
	sort.SliceStable(sortedRows, func(i, j int) bool {
		return averageY(sortedRows[i].Content) > averageY(sortedRows[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sortedRows {
		rowText := reconstructRowText(row.Content)
		if strings.TrimSpace(rowText) != "" {
			buf.WriteString(strings.TrimSpace(rowText))
			buf.WriteString("\n")
		}
	}

	return buf.String(), nil
}

// averageY calculates the average Y coordinate for text elements in a row
func averageY(textElements []pdf.Text) float64 {
	if len(textElements) == 0 {
		return 0
	}

	var totalY float64
	for _, element := range textElements {
		totalY += element.Y
	}
	return totalY / float64(len(textElements))
}

// reconstructRowText rebuilds a row left to right, inserting a space where
// the gap between elements exceeds a fifth of the font size.
func reconstructRowText(textElements []pdf.Text) string {
	if len(textElements) == 0 {
		return ""
	}

	sortedElements := make([]pdf.Text, len(textElements))
	copy(sortedElements, textElements)
	sort.SliceStable(sortedElements, func(i, j int) bool {
		return sortedElements[i].X < sortedElements[j].X
	})

	var buf bytes.Buffer
	for i, element := range sortedElements {
		buf.WriteString(element.S)

		if i == len(sortedElements)-1 {
			break
		}
		next := sortedElements[i+1]
		gap := next.X - (element.X + element.W)

		fontSize := element.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if gap > fontSize*0.2 && !strings.HasSuffix(element.S, " ") && !strings.HasPrefix(next.S, " ") {
			buf.WriteString(" ")
		}
	}

	return buf.String()
}
