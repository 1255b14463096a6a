// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"system-atlas/internal/config"
	"system-atlas/internal/rules"
)

func TestShowGeneralHelp(t *testing.T) {
	var buf bytes.Buffer
	NewSystem(&buf, nil, true).ShowGeneralHelp()

	out := buf.String()
	assert.Contains(t, out, "SYSTEM ATLAS")
	assert.Contains(t, out, "-list-rules")
	assert.Contains(t, out, config.ConfigFileName)
	assert.Contains(t, out, "keine Rechtsberatung")
	assert.NotContains(t, out, "\x1b[")
}

func TestShowChecksHelp_ListsCatalogueInOrder(t *testing.T) {
	var buf bytes.Buffer
	NewSystem(&buf, nil, true).ShowChecksHelp()

	out := buf.String()
	last := -1
	for _, id := range rules.Default().IDs() {
		idx := strings.Index(out, id)
		assert.Greater(t, idx, last, id)
		last = idx
	}
	assert.Contains(t, out, "Unbestimmte Rechtsbegriffe")
	assert.Contains(t, out, "Formbestandteil")
	assert.Contains(t, out, "Kennzahl")
}

func TestShowCheckHelp(t *testing.T) {
	var buf bytes.Buffer
	h := NewSystem(&buf, nil, true)

	assert.True(t, h.ShowCheckHelp("vague_terms"))
	out := buf.String()
	assert.Contains(t, out, "VAGUE_TERMS")
	assert.Contains(t, out, "  - in der Regel")
	assert.Contains(t, out, "Ermessensspielräume")

	buf.Reset()
	assert.True(t, h.ShowCheckHelp("DEADLINE"))
	assert.Contains(t, buf.String(), "  - binnen")
	assert.Contains(t, buf.String(), "Keine klare Fristangabe erkennbar")

	buf.Reset()
	assert.False(t, h.ShowCheckHelp("NOPE"))
	assert.Contains(t, buf.String(), "'NOPE' nicht gefunden")
}

func TestShowProfiles(t *testing.T) {
	var buf bytes.Buffer
	h := NewSystem(&buf, nil, true)

	h.ShowProfiles(config.Default())
	out := buf.String()
	assert.Less(t, strings.Index(out, "formal"), strings.Index(out, "sprache"))
	assert.Contains(t, out, "CASE_REFERENCE,APPEAL_NOTICE,DEADLINE,HEARING")

	buf.Reset()
	h.ShowProfiles(&config.Config{})
	assert.Equal(t, "Keine Profile konfiguriert.\n", buf.String())
}
