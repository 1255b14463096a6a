// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pattern matches an ordered list of trigger terms case-insensitively and
// only as whole words. Letters and digits of any script count as word
// characters, so "gemäß" and "regelmäßig" are bounded correctly.
//
// At each word start the terms are tried in order and the first one that
// also ends on a word boundary wins, the same way an alternation followed
// by \b backtracks. A Pattern is safe for concurrent use.
type Pattern struct {
	terms   []string
	anchors []*regexp.Regexp
}

// NewPattern compiles the terms once. It panics on an empty term list.
func NewPattern(terms ...string) *Pattern {
	if len(terms) == 0 {
		panic("detector: pattern needs at least one term")
	}
	p := &Pattern{terms: append([]string(nil), terms...)}
	for _, term := range terms {
		p.anchors = append(p.anchors, regexp.MustCompile(`^(?i:`+regexp.QuoteMeta(term)+`)`))
	}
	return p
}

// Terms returns a copy of the trigger terms.
func (p *Pattern) Terms() []string {
	return append([]string(nil), p.terms...)
}

// FindAll returns every non-overlapping whole-word match in text order.
func (p *Pattern) FindAll(text string) []string {
	var matches []string
	for i := 0; i < len(text); {
		if end := p.matchAt(text, i); end > i {
			matches = append(matches, text[i:end])
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return matches
}

// Count returns the number of whole-word matches.
func (p *Pattern) Count(text string) int {
	return len(p.FindAll(text))
}

func (p *Pattern) matchAt(text string, i int) int {
	if !isBoundary(text, i) {
		return -1
	}
	rest := text[i:]
	for _, re := range p.anchors {
		loc := re.FindStringIndex(rest)
		if loc == nil || loc[1] == 0 {
			continue
		}
		if isBoundary(text, i+loc[1]) {
			return i + loc[1]
		}
	}
	return -1
}

// isBoundary reports whether the word-ness of the runes on either side of
// byte offset i differs, treating both ends of text as non-word.
func isBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Marker tests whether any of its terms occurs anywhere in a text,
// case-insensitively. Markers deliberately match inside compounds so that
// "Widerspruchsfrist" counts as a deadline marker.
type Marker struct {
	terms []string
	re    *regexp.Regexp
}

// NewMarker compiles the terms into a single alternation.
func NewMarker(terms ...string) *Marker {
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, regexp.QuoteMeta(term))
	}
	return &Marker{
		terms: append([]string(nil), terms...),
		re:    regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`),
	}
}

// Terms returns a copy of the marker terms.
func (m *Marker) Terms() []string {
	return append([]string(nil), m.terms...)
}

// Present reports whether text contains any marker term.
func (m *Marker) Present(text string) bool {
	return m.re.MatchString(text)
}
