// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"math"

	"system-atlas/internal/detector"
	"system-atlas/internal/formatters"
	"system-atlas/internal/report"
)

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	Overview    string        `json:"overview" yaml:"overview"`
	Findings    []string      `json:"findings" yaml:"findings"`
	Explanation string        `json:"explanation" yaml:"explanation"`
	Strategy    string        `json:"strategy" yaml:"strategy"`
	Disclaimer  string        `json:"disclaimer" yaml:"disclaimer"`
	Source      string        `json:"source,omitempty" yaml:"source,omitempty"`
	Details     []JSONFinding `json:"details,omitempty" yaml:"details,omitempty"`
	Metrics     *JSONMetrics  `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// JSONFinding represents a single finding in JSON/YAML format
type JSONFinding struct {
	ID       string   `json:"id" yaml:"id"`
	Kind     string   `json:"kind" yaml:"kind"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Count    int      `json:"count,omitempty" yaml:"count,omitempty"`
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// JSONMetrics carries the text measurements. AverageSentenceLength is nil
// when the text has no sentence-like segment.
type JSONMetrics struct {
	Length                int      `json:"length" yaml:"length"`
	Sentences             int      `json:"sentences" yaml:"sentences"`
	AverageSentenceLength *float64 `json:"average_sentence_length" yaml:"average_sentence_length"`
}

// ConvertMetrics converts metrics into their serializable form.
func ConvertMetrics(m detector.Metrics) *JSONMetrics {
	out := &JSONMetrics{Length: m.Length, Sentences: m.Sentences}
	if !math.IsInf(m.AverageSentenceLength, 0) && !math.IsNaN(m.AverageSentenceLength) {
		avg := math.Round(m.AverageSentenceLength*100) / 100
		out.AverageSentenceLength = &avg
	}
	return out
}

// ConvertResult converts an analysis result to the JSON/YAML structure.
// Details and metrics are included only in verbose mode.
func ConvertResult(result report.AnalysisResult, options formatters.FormatterOptions) JSONResponse {
	findings := result.Findings
	if findings == nil {
		findings = []string{}
	}

	response := JSONResponse{
		Overview:    result.Overview,
		Findings:    findings,
		Explanation: result.Explanation,
		Strategy:    result.Strategy,
		Disclaimer:  report.Disclaimer,
		Source:      options.Source,
	}

	if options.Verbose {
		for _, f := range result.Details {
			response.Details = append(response.Details, JSONFinding{
				ID:       f.ID,
				Kind:     string(f.Kind),
				Category: f.Category,
				Message:  f.Message,
				Count:    f.Count,
				Examples: f.Examples,
			})
		}
		response.Metrics = ConvertMetrics(result.Metrics)
	}

	return response
}
