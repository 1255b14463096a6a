// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"math"
	"strings"

	"system-atlas/internal/detector"
	"system-atlas/internal/formatters"
	"system-atlas/internal/report"

	"github.com/fatih/color"
)

// wrapWidth is the column at which paragraphs are wrapped.
const wrapWidth = 80

// Formatter implements text-based output formatting
type Formatter struct{}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colored sections"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

// palette builds the colors for one Format call. The global color.NoColor
// is left untouched.
func palette(noColor bool) map[string]*color.Color {
	colors := map[string]*color.Color{
		"title":   color.New(color.FgCyan, color.Bold),
		"heading": color.New(color.FgWhite, color.Bold),
		"finding": color.New(color.FgYellow),
		"id":      color.New(color.FgMagenta),
		"dim":     color.New(color.FgBlue),
		"notice":  color.New(color.FgRed),
	}
	if noColor {
		for _, c := range colors {
			c.DisableColor()
		}
	}
	return colors
}

func (f *Formatter) Format(result report.AnalysisResult, options formatters.FormatterOptions) (string, error) {
	colors := palette(options.NoColor)
	var builder strings.Builder

	builder.WriteString(colors["title"].Sprint(report.Name) + "\n")
	builder.WriteString(report.Tagline + "\n")
	builder.WriteString(colors["title"].Sprint(strings.Repeat("=", len([]rune(report.Tagline)))) + "\n")
	if options.Source != "" {
		builder.WriteString(colors["dim"].Sprintf("Quelle: %s", options.Source) + "\n")
	}
	builder.WriteString("\n")

	f.appendSection(&builder, colors, report.HeadingOverview, result.Overview)

	builder.WriteString(colors["heading"].Sprintf("%s (%d)", report.HeadingFindings, len(result.Findings)) + "\n")
	for i, finding := range result.Findings {
		prefix := fmt.Sprintf("  %d. ", i+1)
		lines := wrap(finding, wrapWidth-len(prefix))
		for j, line := range lines {
			if j == 0 {
				builder.WriteString(prefix + colors["finding"].Sprint(line) + "\n")
				continue
			}
			builder.WriteString(strings.Repeat(" ", len(prefix)) + colors["finding"].Sprint(line) + "\n")
		}
	}
	builder.WriteString("\n")

	f.appendSection(&builder, colors, report.HeadingExplanation, result.Explanation)
	f.appendSection(&builder, colors, report.HeadingStrategy, result.Strategy)

	if options.Verbose {
		f.appendDetails(&builder, colors, result.Details)
		f.appendMetrics(&builder, colors, result.Metrics)
	}

	builder.WriteString(colors["notice"].Sprint("Wichtiger Hinweis") + "\n")
	for _, line := range wrap(report.Disclaimer, wrapWidth-2) {
		builder.WriteString("  " + line + "\n")
	}

	return builder.String(), nil
}

// appendSection writes a heading followed by an indented, wrapped paragraph
func (f *Formatter) appendSection(builder *strings.Builder, colors map[string]*color.Color, heading, body string) {
	builder.WriteString(colors["heading"].Sprint(heading) + "\n")
	for _, line := range wrap(body, wrapWidth-2) {
		builder.WriteString("  " + line + "\n")
	}
	builder.WriteString("\n")
}

// appendDetails lists the structured findings in verbose mode
func (f *Formatter) appendDetails(builder *strings.Builder, colors map[string]*color.Color, details []detector.Finding) {
	if len(details) == 0 {
		return
	}
	builder.WriteString(colors["heading"].Sprint("Details") + "\n")
	for _, d := range details {
		line := "  " + colors["id"].Sprintf("%-20s", d.ID) + fmt.Sprintf(" %-11s", d.Kind)
		if d.Category != "" {
			line += " " + d.Category
		}
		if d.Count > 0 {
			line += fmt.Sprintf(" (%d×)", d.Count)
		}
		builder.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	builder.WriteString("\n")
}

// appendMetrics writes the text measurements in verbose mode
func (f *Formatter) appendMetrics(builder *strings.Builder, colors map[string]*color.Color, m detector.Metrics) {
	builder.WriteString(colors["heading"].Sprint("Kennzahlen") + "\n")
	builder.WriteString(fmt.Sprintf("  Zeichen:            %d\n", m.Length))
	builder.WriteString(fmt.Sprintf("  Sätze:              %d\n", m.Sentences))
	if math.IsInf(m.AverageSentenceLength, 0) {
		builder.WriteString("  Ø Satzlänge:        keine Satzgrenzen erkannt\n")
	} else {
		builder.WriteString(fmt.Sprintf("  Ø Satzlänge:        %.1f\n", m.AverageSentenceLength))
	}
	builder.WriteString("\n")
}

// wrap breaks text into lines of at most width runes on word boundaries.
// Words longer than width are kept on their own line.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len([]rune(current))+1+len([]rune(word)) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
