// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"strings"
)

// Kind classifies where a finding came from
type Kind string

const (
	KindRule       Kind = "rule"       // Wording rule from the catalogue
	KindStructural Kind = "structural" // Missing formal element
	KindMetric     Kind = "metric"     // Length or sentence heuristic
	KindFallback   Kind = "fallback"   // Nothing else was found
)

// MaxExamples is the number of literal matches quoted in a rule finding.
const MaxExamples = 3

// Rule pairs a category with a trigger pattern and the lead text of the
// finding it produces. Rules are built once and never mutated.
type Rule struct {
	ID          string
	Category    string
	Description string
	Pattern     *Pattern
}

// Render builds the finding message for a rule that matched count times.
func (r Rule) Render(count int, examples []string) string {
	return fmt.Sprintf("%s (%d× gefunden: \"%s\")", r.Description, count, strings.Join(examples, "\", \""))
}

// StructuralCheck is a whole-document predicate with a fixed message.
// Triggered reports whether the message should be emitted.
type StructuralCheck struct {
	ID        string
	Name      string
	Kind      Kind
	Message   string
	Markers   []string // display only
	Triggered func(text string) bool
}

// Finding is one detected issue. Message is the rendered display string.
type Finding struct {
	ID       string   `json:"id" yaml:"id"`
	Kind     Kind     `json:"kind" yaml:"kind"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Count    int      `json:"count,omitempty" yaml:"count,omitempty"`
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// Messages returns the display strings of findings in order.
func Messages(findings []Finding) []string {
	messages := make([]string, 0, len(findings))
	for _, f := range findings {
		messages = append(messages, f.Message)
	}
	return messages
}
