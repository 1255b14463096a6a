// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinSentenceLength is the trimmed length a segment must exceed to count
// as a sentence.
const MinSentenceLength = 10

var sentenceSeparator = regexp.MustCompile(`[.!?]+`)

// Metrics holds the aggregate text measurements used by the length checks.
type Metrics struct {
	Length                int     `json:"length" yaml:"length"`
	Sentences             int     `json:"sentences" yaml:"sentences"`
	AverageSentenceLength float64 `json:"average_sentence_length" yaml:"average_sentence_length"`
}

// Measure computes Metrics for text. Length is counted in characters and
// includes whitespace and punctuation; the average is the whole length
// divided by the number of sentence-like segments. A non-empty text with
// no qualifying segment has an unbounded (+Inf) average.
func Measure(text string) Metrics {
	m := Metrics{Length: utf8.RuneCountInString(text)}
	for _, segment := range sentenceSeparator.Split(text, -1) {
		if utf8.RuneCountInString(strings.TrimSpace(segment)) > MinSentenceLength {
			m.Sentences++
		}
	}
	switch {
	case m.Sentences > 0:
		m.AverageSentenceLength = float64(m.Length) / float64(m.Sentences)
	case m.Length > 0:
		m.AverageSentenceLength = math.Inf(1)
	}
	return m
}
