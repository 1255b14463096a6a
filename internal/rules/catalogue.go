// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"strings"

	"system-atlas/internal/detector"
)

// Catalogue is an ordered, read-only set of rules and structural checks.
// It is safe for concurrent use.
type Catalogue struct {
	rules  []detector.Rule
	checks []detector.StructuralCheck
}

// Entry describes a rule or check for listings (help output, /api/rules).
type Entry struct {
	ID          string        `json:"id"`
	Kind        detector.Kind `json:"kind"`
	Category    string        `json:"category"`
	Triggers    []string      `json:"triggers,omitempty"`
	Description string        `json:"description"`
}

var defaultCatalogue = New(seedRules(), seedChecks())

// Default returns the process-wide seed catalogue.
func Default() *Catalogue {
	return defaultCatalogue
}

// New builds a catalogue from the given rules and checks, keeping their
// order. Several rules may share a category; the analyzer reports only the
// first of them that matches.
func New(rules []detector.Rule, checks []detector.StructuralCheck) *Catalogue {
	return &Catalogue{
		rules:  append([]detector.Rule(nil), rules...),
		checks: append([]detector.StructuralCheck(nil), checks...),
	}
}

// Rules returns the rules in catalogue order.
func (c *Catalogue) Rules() []detector.Rule {
	return append([]detector.Rule(nil), c.rules...)
}

// Checks returns the structural checks in evaluation order.
func (c *Catalogue) Checks() []detector.StructuralCheck {
	return append([]detector.StructuralCheck(nil), c.checks...)
}

// IDs returns every rule and check ID in order.
func (c *Catalogue) IDs() []string {
	ids := make([]string, 0, len(c.rules)+len(c.checks))
	for _, r := range c.rules {
		ids = append(ids, r.ID)
	}
	for _, s := range c.checks {
		ids = append(ids, s.ID)
	}
	return ids
}

// Lookup finds the entry with the given ID, ignoring case.
func (c *Catalogue) Lookup(id string) (Entry, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	for _, e := range c.Describe() {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Describe lists every rule and check in order.
func (c *Catalogue) Describe() []Entry {
	entries := make([]Entry, 0, len(c.rules)+len(c.checks))
	for _, r := range c.rules {
		entries = append(entries, Entry{
			ID:          r.ID,
			Kind:        detector.KindRule,
			Category:    r.Category,
			Triggers:    r.Pattern.Terms(),
			Description: r.Description,
		})
	}
	for _, s := range c.checks {
		entries = append(entries, Entry{
			ID:          s.ID,
			Kind:        s.Kind,
			Category:    s.Name,
			Triggers:    append([]string(nil), s.Markers...),
			Description: s.Message,
		})
	}
	return entries
}

// Select returns a catalogue restricted to the enabled IDs, keeping order.
func (c *Catalogue) Select(enabled map[string]bool) *Catalogue {
	var rules []detector.Rule
	for _, r := range c.rules {
		if enabled[r.ID] {
			rules = append(rules, r)
		}
	}
	var checks []detector.StructuralCheck
	for _, s := range c.checks {
		if enabled[s.ID] {
			checks = append(checks, s)
		}
	}
	return New(rules, checks)
}

// ParseChecksToRun converts a list of IDs into an enabled-checks map over
// the catalogue. An empty list or ["all"] enables everything; unknown IDs
// are ignored.
func (c *Catalogue) ParseChecksToRun(checks []string) map[string]bool {
	result := make(map[string]bool)
	for _, id := range c.IDs() {
		result[id] = false
	}

	if len(checks) == 0 || (len(checks) == 1 && strings.EqualFold(strings.TrimSpace(checks[0]), "all")) {
		for key := range result {
			result[key] = true
		}
		return result
	}

	for _, check := range checks {
		id := strings.ToUpper(strings.TrimSpace(check))
		if _, exists := result[id]; exists {
			result[id] = true
		}
	}
	return result
}

// SplitChecks splits a comma-separated check list, dropping blanks.
func SplitChecks(checks string) []string {
	var out []string
	for _, part := range strings.Split(checks, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
