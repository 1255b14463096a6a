// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report assembles the narrative result returned to users.
package report

import (
	"fmt"

	"system-atlas/internal/detector"
)

// Explanation is the fixed paragraph on why the findings matter.
const Explanation = "Behördenbescheide folgen häufig Textbausteinen und Standardformulierungen. " +
	"Dies ist verwaltungstechnisch normal, kann aber dazu führen, dass die konkrete Einzelfallprüfung nicht ausreichend dokumentiert wird. " +
	"Unbestimmte Rechtsbegriffe wie \"in der Regel\" oder \"grundsätzlich\" schaffen Ermessensspielräume – diese müssen jedoch erkennbar ausgeübt und begründet werden. " +
	"Formale Mängel (fehlende Fristen, unvollständige Rechtsbehelfsbelehrung) können unter Umständen die Rechtswirksamkeit beeinflussen."

// Strategy is the fixed paragraph with cautious next steps.
const Strategy = "Es könnte strategisch sinnvoll sein, die identifizierten Punkte systematisch zu dokumentieren und bei Bedarf eine konkrete Begründung der Einzelfallentscheidung nachzufragen. " +
	"Bei formalen Mängeln (z.B. fehlende Anhörung) oder wenn die Begründung sehr pauschal bleibt, kann dies Ansatzpunkte für eine Überprüfung bieten. " +
	"Eine fachkundige Beratung kann einschätzen, ob und wie diese Punkte relevant sein könnten."

// Disclaimer is shown with every result on the page and in the CLI.
const Disclaimer = "SYSTEM ATLAS gibt keine Rechtsberatung und trifft keine rechtlichen Entscheidungen. " +
	"Für eine verbindliche Einschätzung sollte eine Fachstelle oder Rechtsberatung hinzugezogen werden."

// Product name and headline.
const (
	Name    = "SYSTEM ATLAS"
	Tagline = "Strategischer Denk-Assistent zur Analyse deutscher Behördenbescheide"
	Title   = Name + " – " + Tagline
)

// Section headings used by the page and the text output.
const (
	HeadingOverview    = "Kurzüberblick"
	HeadingFindings    = "Auffällige Punkte / mögliche Systemlücken"
	HeadingExplanation = "Klartext-Erklärung"
	HeadingStrategy    = "Strategischer Hinweis"
)

// AnalysisResult is the response body of a successful analysis.
// Details and Metrics are kept for formatters and never serialized by the
// analyze endpoint.
type AnalysisResult struct {
	Overview    string   `json:"overview" yaml:"overview"`
	Findings    []string `json:"findings" yaml:"findings"`
	Explanation string   `json:"explanation" yaml:"explanation"`
	Strategy    string   `json:"strategy" yaml:"strategy"`

	Details []detector.Finding `json:"-" yaml:"-"`
	Metrics detector.Metrics   `json:"-" yaml:"-"`
}

// Overview renders the opening paragraph for n findings.
func Overview(n int) string {
	return fmt.Sprintf("Der vorgelegte Bescheid wurde auf systemische Auffälligkeiten untersucht. "+
		"Es wurden %d Punkte identifiziert, die näher betrachtet werden sollten. "+
		"Die Analyse konzentriert sich auf formale Aspekte, Begründungstiefe und typische Verwaltungsroutinen.", n)
}

// Build wraps findings into a result. The findings list is copied.
func Build(findings []detector.Finding) AnalysisResult {
	return AnalysisResult{
		Overview:    Overview(len(findings)),
		Findings:    detector.Messages(findings),
		Explanation: Explanation,
		Strategy:    Strategy,
		Details:     append([]detector.Finding(nil), findings...),
	}
}

// WithMetrics returns a copy of r carrying the text metrics.
func (r AnalysisResult) WithMetrics(m detector.Metrics) AnalysisResult {
	r.Metrics = m
	return r
}
