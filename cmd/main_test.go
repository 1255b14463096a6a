// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shortRejection = "Antrag abgelehnt."

// isolate keeps config discovery away from the developer's own files
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testChdir(t, dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("NO_COLOR", "")
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := &cli{stdin: strings.NewReader(stdin), stdout: &stdout, stderr: &stderr}
	code := c.run(args)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "", "-version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "system-atlas")
}

func TestRun_Help(t *testing.T) {
	isolate(t)
	code, _, errOut := runCLI(t, "", "-help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "AUFRUF:")
}

func TestRun_UnknownFlag(t *testing.T) {
	isolate(t)
	code, _, _ := runCLI(t, "", "-bogus")
	assert.Equal(t, exitUsage, code)
}

func TestRun_StdinText(t *testing.T) {
	isolate(t)
	code, out, errOut := runCLI(t, shortRejection)
	require.Equal(t, exitOK, code, errOut)

	assert.Contains(t, out, "Kurzüberblick")
	assert.Contains(t, out, "Es wurden 5 Punkte identifiziert")
	assert.NotContains(t, out, "\x1b[", "output to a non-terminal must not be colored")
	assert.Empty(t, errOut)
}

func TestRun_StdinJSON(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, shortRejection, "-format", "json")
	require.Equal(t, exitOK, code)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "overview")
	findings, ok := decoded["findings"].([]interface{})
	require.True(t, ok)
	assert.Len(t, findings, 5)
}

func TestRun_SelectedChecks(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, shortRejection, "-format", "json", "-checks", "deadline")
	require.Equal(t, exitOK, code)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded["findings"], 1)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown check", []string{"-checks", "NOPE"}, "unknown checks: NOPE"},
		{"unknown format", []string{"-format", "pdf"}, "unsupported format 'pdf'"},
		{"unknown profile", []string{"-profile", "missing"}, "profile 'missing' not found"},
		{"web with file", []string{"-web", "-file", "bescheid.txt"}, "-web cannot be used with an input file"},
		{"web with format", []string{"-web", "-format", "json"}, "-web cannot be used with: -format"},
		{"web with bad port", []string{"-web", "-port", "70000"}, "invalid port 70000"},
		{"web with port zero", []string{"-web", "-port", "0"}, "invalid port 0"},
		{"web with profile", []string{"-web", "-profile", "formal"}, "-web cannot be used with: -profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			code, _, errOut := runCLI(t, shortRejection, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestRun_InputErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"empty stdin", "", nil, "Kein gültiger Text übergeben"},
		{"blank stdin", "  \n\t", nil, "Kein gültiger Text übergeben"},
		{"missing file", "", []string{"-file", "fehlt.txt"}, "file error"},
		{"unsupported file", "", []string{"-file", "scan.png"}, "Dateiformat nicht unterstützt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			code, out, errOut := runCLI(t, tt.stdin, tt.args...)
			assert.Equal(t, exitError, code)
			assert.Empty(t, out)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestRun_FileToOutput(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "bescheid.txt")
	require.NoError(t, os.WriteFile(input, []byte(shortRejection), 0600))
	output := filepath.Join(dir, "bericht.yaml")

	code, out, errOut := runCLI(t, "", "-format", "yaml", "-output", output, input)
	require.Equal(t, exitOK, code, errOut)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Bericht geschrieben")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "overview:")
}

func TestRun_ListRules(t *testing.T) {
	isolate(t)

	code, out, _ := runCLI(t, "", "-list-rules")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "VAGUE_TERMS")
	assert.Contains(t, out, "LONG_SENTENCES")

	code, out, _ = runCLI(t, "", "-list-rules", "deadline")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "DEADLINE")
	assert.Contains(t, out, "HINWEISTEXT:")

	code, out, _ = runCLI(t, "", "-list-rules", "NOPE")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, out, "nicht gefunden")
}

func TestRun_Profiles(t *testing.T) {
	isolate(t)

	code, out, _ := runCLI(t, "", "-list-profiles")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "formal")
	assert.Contains(t, out, "sprache")

	code, out, _ = runCLI(t, shortRejection, "-profile", "sprache", "-format", "json")
	require.Equal(t, exitOK, code)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	findings, ok := decoded["findings"].([]interface{})
	require.True(t, ok)
	assert.Len(t, findings, 1, "a clean text under the language profile yields the fallback message")
}

func TestRun_ConfigFile(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "atlas.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("defaults:\n  format: json\n"), 0600))

	code, out, _ := runCLI(t, shortRejection, "-config", cfgPath)
	require.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
}

func TestRun_BrokenConfigFallsBack(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "atlas.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("defaults: [broken"), 0600))

	code, out, errOut := runCLI(t, shortRejection, "-config", cfgPath)
	require.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "Using default configuration")
	assert.Contains(t, out, "Kurzüberblick")
}

func TestRun_ConfigWithUnknownChecksFallsBack(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "atlas.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("defaults:\n  checks: VAGUE_TERM\n"), 0600))

	code, out, errOut := runCLI(t, shortRejection, "-config", cfgPath, "-format", "json")
	require.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "unknown checks VAGUE_TERM")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded["findings"], 5, "the default catalogue runs instead of an empty selection")
}

func TestRun_Debug(t *testing.T) {
	isolate(t)
	code, _, errOut := runCLI(t, shortRejection, "-debug")
	require.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "input: stdin")
	assert.Contains(t, errOut, "core: audit")
	assert.NotContains(t, errOut, shortRejection, "debug output must not echo the notice text")
}

// testChdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func testChdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatal(err)
		}
	})
}
