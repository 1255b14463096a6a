// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package analyzer turns notice text into an ordered list of findings.
package analyzer

import (
	"system-atlas/internal/detector"
	"system-atlas/internal/rules"
)

// Analyzer runs a rule catalogue against text. It holds no mutable state
// and is safe for concurrent use.
type Analyzer struct {
	catalogue *rules.Catalogue
}

var defaultAnalyzer = New(rules.Default())

// New creates an analyzer over the given catalogue.
func New(catalogue *rules.Catalogue) *Analyzer {
	return &Analyzer{catalogue: catalogue}
}

// Default returns the analyzer over the seed catalogue.
func Default() *Analyzer {
	return defaultAnalyzer
}

// GetComponentName returns the component identifier used in operation logs.
func (a *Analyzer) GetComponentName() string {
	return "analyzer"
}

// Catalogue returns the catalogue the analyzer runs.
func (a *Analyzer) Catalogue() *rules.Catalogue {
	return a.catalogue
}

// Analyze runs the default analyzer.
func Analyze(text string) []detector.Finding {
	return defaultAnalyzer.Analyze(text)
}

// Analyze returns the findings for text in this order: rule findings in
// catalogue order (at most one per category), structural checks in
// declared order, then the fallback if nothing else fired. It never
// returns an empty list.
func (a *Analyzer) Analyze(text string) []detector.Finding {
	var findings []detector.Finding
	emitted := make(map[string]bool)

	for _, rule := range a.catalogue.Rules() {
		matches := rule.Pattern.FindAll(text)
		if len(matches) == 0 || emitted[rule.Category] {
			continue
		}
		examples := matches
		if len(examples) > detector.MaxExamples {
			examples = examples[:detector.MaxExamples]
		}
		examples = append([]string(nil), examples...)

		findings = append(findings, detector.Finding{
			ID:       rule.ID,
			Kind:     detector.KindRule,
			Category: rule.Category,
			Message:  rule.Render(len(matches), examples),
			Count:    len(matches),
			Examples: examples,
		})
		emitted[rule.Category] = true
	}

	for _, check := range a.catalogue.Checks() {
		if check.Triggered(text) {
			findings = append(findings, detector.Finding{
				ID:       check.ID,
				Kind:     check.Kind,
				Category: check.Name,
				Message:  check.Message,
			})
		}
	}

	if len(findings) == 0 {
		findings = append(findings, detector.Finding{
			ID:      "FALLBACK",
			Kind:    detector.KindFallback,
			Message: rules.FallbackMessage,
		})
	}

	return findings
}
