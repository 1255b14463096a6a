// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"strings"

	"system-atlas/internal/detector"
	"system-atlas/internal/formatters"
	"system-atlas/internal/formatters/shared"
	"system-atlas/internal/report"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import, one row per finding"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(result report.AnalysisResult, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Nr", "ID", "Art", "Kategorie", "Anzahl", "Beispiele", "Hinweis"}
	if options.Source != "" {
		headers = append([]string{"Quelle"}, headers...)
	}
	if options.Verbose {
		headers = append(headers, "Zeichen", "Sätze", "Ø Satzlänge")
	}

	csvRows := []string{strings.Join(headers, ",")}

	details := result.Details
	if len(details) == 0 {
		// Results built without details still carry the display strings
		for _, message := range result.Findings {
			details = append(details, detector.Finding{Message: message})
		}
	}

	for i, finding := range details {
		csvRows = append(csvRows, f.createCSVRow(i+1, finding, result.Metrics, options))
	}

	return strings.Join(csvRows, "\n") + "\n", nil
}

// createCSVRow creates a CSV row for a finding
func (f *Formatter) createCSVRow(number int, finding detector.Finding, metrics detector.Metrics, options formatters.FormatterOptions) string {
	count := ""
	if finding.Count > 0 {
		count = fmt.Sprintf("%d", finding.Count)
	}

	row := []string{
		fmt.Sprintf("%d", number),
		f.escapeCSVField(finding.ID),
		f.escapeCSVField(string(finding.Kind)),
		f.escapeCSVField(finding.Category),
		count,
		f.escapeCSVField(strings.Join(finding.Examples, "; ")),
		f.escapeCSVField(finding.Message),
	}
	if options.Source != "" {
		row = append([]string{f.escapeCSVField(options.Source)}, row...)
	}

	if options.Verbose {
		average := ""
		if m := shared.ConvertMetrics(metrics); m.AverageSentenceLength != nil {
			average = fmt.Sprintf("%.2f", *m.AverageSentenceLength)
		}
		row = append(row,
			fmt.Sprintf("%d", metrics.Length),
			fmt.Sprintf("%d", metrics.Sentences),
			average,
		)
	}

	return strings.Join(row, ",")
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	// Prevent CSV injection by sanitizing formula characters
	field = f.sanitizeFormulaInjection(field)

	// If field contains comma, quote, or newline, wrap in quotes and escape internal quotes
	if strings.ContainsAny(field, ",\"\n\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prefixes fields that spreadsheets would read as formulas
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}

	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
