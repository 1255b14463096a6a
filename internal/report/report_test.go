// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"system-atlas/internal/detector"
)

func TestOverview(t *testing.T) {
	assert.Contains(t, Overview(3), "Es wurden 3 Punkte identifiziert")
	assert.Contains(t, Overview(1), "Es wurden 1 Punkte identifiziert")
}

func TestBuild(t *testing.T) {
	findings := []detector.Finding{
		{ID: "A", Kind: detector.KindRule, Message: "erste"},
		{ID: "B", Kind: detector.KindStructural, Message: "zweite"},
	}

	result := Build(findings)

	assert.Equal(t, Overview(2), result.Overview)
	assert.Equal(t, []string{"erste", "zweite"}, result.Findings)
	assert.Equal(t, Explanation, result.Explanation)
	assert.Equal(t, Strategy, result.Strategy)
	assert.Equal(t, findings, result.Details)

	findings[0].Message = "mutated"
	assert.Equal(t, "erste", result.Details[0].Message)
}

func TestAnalysisResult_JSONShape(t *testing.T) {
	result := Build([]detector.Finding{{ID: "A", Message: "eins"}}).WithMetrics(detector.Measure("Text"))

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 4)
	for _, key := range []string{"overview", "findings", "explanation", "strategy"} {
		assert.Contains(t, decoded, key)
	}
}
