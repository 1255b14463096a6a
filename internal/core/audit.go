// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core holds the audit pipeline shared by the CLI and the web server.
package core

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"system-atlas/internal/analyzer"
	"system-atlas/internal/apperrors"
	"system-atlas/internal/detector"
	"system-atlas/internal/observability"
	"system-atlas/internal/report"
)

// AuditConfig holds configuration for one audit.
type AuditConfig struct {
	Text string
	// Source names where the text came from ("stdin", a file name or an
	// HTTP route). It is logged; the text never is.
	Source string
	// Analyzer runs the audit. Nil selects the seed catalogue.
	Analyzer *analyzer.Analyzer
	// Observer receives one operation record per audit. Nil disables logging.
	Observer *observability.StandardObserver
	// RequestID correlates the record with the caller's. Generated when empty.
	RequestID string
}

// AuditResult holds the outcome of one audit.
type AuditResult struct {
	RequestID string
	Result    report.AnalysisResult
}

// Audit analyzes cfg.Text and assembles the narrative report. Empty text is
// rejected as invalid input; whitespace is analyzed like any other text. A panic anywhere in the
// pipeline is returned as an internal error instead of crashing the caller.
func Audit(cfg AuditConfig) (res *AuditResult, err error) {
	observer := cfg.Observer
	if observer == nil {
		observer = observability.NewStandardObserver(observability.ObservabilityOff, nil)
	}
	a := cfg.Analyzer
	if a == nil {
		a = analyzer.Default()
	}
	requestID := cfg.RequestID
	if requestID == "" {
		requestID = observability.NewRequestID()
	}

	start := time.Now()
	var finishStep func(bool, string)
	if observer.DebugObserver != nil {
		finishStep = observer.DebugObserver.StartStep("core", "audit", cfg.Source)
	}

	record := observability.StandardObservabilityData{
		Component:     observability.ComponentName(a),
		Operation:     "analyze",
		RequestID:     requestID,
		Target:        cfg.Source,
		ContentLength: utf8.RuneCountInString(cfg.Text),
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = apperrors.NewInternalError("analysis failed", fmt.Errorf("panic: %v", r))
		}

		record.DurationMs = time.Since(start).Milliseconds()
		record.Success = err == nil
		if err != nil {
			record.Error = err.Error()
		}
		observer.LogOperation(record)

		if finishStep != nil {
			if err != nil {
				finishStep(false, err.Error())
			} else {
				finishStep(true, fmt.Sprintf("%d findings", record.FindingCount))
			}
		}
	}()

	if cfg.Text == "" {
		return nil, apperrors.NewInvalidInputError("no text to analyze", nil)
	}

	findings := a.Analyze(cfg.Text)
	metrics := detector.Measure(cfg.Text)
	record.FindingCount = len(findings)
	if observer.Level() != observability.ObservabilityOff {
		record.Metadata = map[string]interface{}{
			"sentences":   metrics.Sentences,
			"rules":       len(a.Catalogue().Rules()),
			"checks":      len(a.Catalogue().Checks()),
			"finding_ids": findingIDs(findings),
		}
	}

	if observer.DebugObserver != nil {
		observer.DebugObserver.LogMetric("core", "length", metrics.Length)
		observer.DebugObserver.LogMetric("core", "sentences", metrics.Sentences)
		observer.DebugObserver.LogDetail("core", "findings: "+strings.Join(findingIDs(findings), ", "))
	}

	return &AuditResult{
		RequestID: requestID,
		Result:    report.Build(findings).WithMetrics(metrics),
	}, nil
}

func findingIDs(findings []detector.Finding) []string {
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		ids = append(ids, f.ID)
	}
	return ids
}
