// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StandardObserver implements observability for all components.
// It is safe for concurrent use.
type StandardObserver struct {
	mu            sync.Mutex
	level         ObservabilityLevel
	writer        io.Writer
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// ParseLevel maps a configuration string to a level. Unknown values
// select metrics.
func ParseLevel(level string) ObservabilityLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "off":
		return ObservabilityOff
	case "debug":
		return ObservabilityDebug
	default:
		return ObservabilityMetrics
	}
}

// NewStandardObserver creates observability component
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	if writer == nil {
		writer = io.Discard
	}
	return &StandardObserver{
		level:  level,
		writer: writer,
	}
}

// Level returns the configured level
func (o *StandardObserver) Level() ObservabilityLevel {
	return o.level
}

// NewRequestID returns a fresh identifier for correlating log records
func NewRequestID() string {
	return "req-" + uuid.NewString()
}

// StartTiming returns a function to complete timing. target names what was
// processed (a file name, "stdin" or an HTTP route), never its content. An
// empty requestID gets a fresh one when the record is written.
func (o *StandardObserver) StartTiming(component, operation, requestID, target string) func(success bool, errMessage string, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, errMessage string, metadata map[string]interface{}) {
		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			RequestID:  requestID,
			Target:     target,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Error:      errMessage,
			Metadata:   metadata,
		})
	}
}

// LogOperation writes one JSON line for data unless logging is off
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o.level == ObservabilityOff {
		return
	}

	if data.RequestID == "" {
		data.RequestID = NewRequestID()
	}
	if data.Timestamp == "" {
		data.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	_ = json.NewEncoder(o.writer).Encode(data)
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Timestamp     string                 `json:"timestamp"`
	Component     string                 `json:"component"`
	Operation     string                 `json:"operation"`
	RequestID     string                 `json:"request_id"`
	Target        string                 `json:"target,omitempty"`
	DurationMs    int64                  `json:"duration_ms"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	ContentLength int                    `json:"content_length,omitempty"`
	FindingCount  int                    `json:"finding_count,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}
