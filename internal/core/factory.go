// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"sort"
	"strings"

	"system-atlas/internal/analyzer"
	"system-atlas/internal/apperrors"
	"system-atlas/internal/config"
	"system-atlas/internal/rules"
)

// BuildAnalyzer constructs an analyzer over catalogue filtered by checks.
// Pass nil for catalogue to use the seed catalogue. An empty list or
// ["all"] keeps every rule and check.
func BuildAnalyzer(checks []string, catalogue *rules.Catalogue) *analyzer.Analyzer {
	if catalogue == nil {
		catalogue = rules.Default()
	}
	if selectsAll(checks) {
		return analyzer.New(catalogue)
	}
	return analyzer.New(catalogue.Select(catalogue.ParseChecksToRun(checks)))
}

// ValidateChecks reports IDs in checks that catalogue does not know.
func ValidateChecks(checks []string, catalogue *rules.Catalogue) error {
	if catalogue == nil {
		catalogue = rules.Default()
	}
	if selectsAll(checks) {
		return nil
	}

	var unknown []string
	for _, check := range checks {
		id := strings.TrimSpace(check)
		if id == "" {
			continue
		}
		if _, ok := catalogue.Lookup(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return apperrors.NewInvalidInputError(
			fmt.Sprintf("unknown checks: %s (available: %s)", strings.Join(unknown, ", "), strings.Join(catalogue.IDs(), ", ")), nil)
	}
	return nil
}

// ResolveChecks picks the check list for a run. An explicit flag value wins
// over the profile, the profile over the configured default.
func ResolveChecks(flagChecks string, cfg *config.Config, profile *config.Profile) []string {
	switch {
	case strings.TrimSpace(flagChecks) != "":
		return rules.SplitChecks(flagChecks)
	case profile != nil && profile.Checks != "":
		return rules.SplitChecks(profile.Checks)
	case cfg != nil && cfg.Defaults.Checks != "":
		return rules.SplitChecks(cfg.Defaults.Checks)
	default:
		return nil
	}
}

func selectsAll(checks []string) bool {
	return len(checks) == 0 || (len(checks) == 1 && strings.EqualFold(strings.TrimSpace(checks[0]), "all"))
}
