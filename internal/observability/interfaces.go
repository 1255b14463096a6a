// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

// Observable interface for all components that need observability
type Observable interface {
	// GetComponentName returns the component identifier
	GetComponentName() string
}

// ComponentName returns the name c logs under, or "unknown" for nil.
func ComponentName(c Observable) string {
	if c == nil {
		return "unknown"
	}
	return c.GetComponentName()
}
