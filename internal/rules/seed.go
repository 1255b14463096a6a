// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import "system-atlas/internal/detector"

// Thresholds for the length checks, in characters.
const (
	MinDocumentLength        = 200
	MaxAverageSentenceLength = 200
)

// FallbackMessage is emitted when no rule or check produced a finding.
const FallbackMessage = "Bei erster Durchsicht keine auffälligen Systemlücken erkannt – dennoch empfiehlt sich eine fachliche Prüfung"

func seedRules() []detector.Rule {
	return []detector.Rule{
		{
			ID:          "VAGUE_TERMS",
			Category:    "Unbestimmte Rechtsbegriffe",
			Description: "Unbestimmte Rechtsbegriffe gefunden, die Ermessensspielräume andeuten",
			Pattern:     detector.NewPattern("in der Regel", "kann", "sollte", "grundsätzlich", "im Allgemeinen", "üblicherweise", "regelmäßig"),
		},
		{
			ID:          "BLANKET_REASONING",
			Category:    "Pauschale Begründungen",
			Description: "Pauschale Formulierung ohne konkrete Einzelfallprüfung erkennbar",
			Pattern:     detector.NewPattern("nicht erforderlich", "nicht notwendig", "nicht zweckmäßig", "nicht angezeigt", "nicht gegeben"),
		},
		{
			ID:          "FORMULAIC_REJECTION",
			Category:    "Formelmäßige Ablehnungen",
			Description: "Formelhafte Standardformulierung ohne erkennbare Einzelfallabwägung",
			Pattern:     detector.NewPattern("nach Prüfung", "nach eingehender Prüfung", "nach sorgfältiger Prüfung", "wurde festgestellt"),
		},
		{
			ID:          "MISSING_SPECIFICS",
			Category:    "Fehlende Konkretisierung",
			Description: "Verweis auf Normen ohne konkrete Anwendung auf den Einzelfall",
			Pattern:     detector.NewPattern("entsprechend", "gemäß", "nach Maßgabe", "im Sinne von"),
		},
		{
			ID:          "DISCRETION",
			Category:    "Ermessensausübung",
			Description: "Ermessen wird angedeutet, aber keine sichtbare Ermessensabwägung dokumentiert",
			Pattern:     detector.NewPattern("ermessen", "ermessensspielraum", "kann entscheiden", "steht frei", "nach pflichtgemäßem ermessen"),
		},
	}
}

func seedChecks() []detector.StructuralCheck {
	return []detector.StructuralCheck{
		missingMarker("CASE_REFERENCE", "Aktenzeichen",
			"Kein Aktenzeichen erkennbar – könnte die Zuordnung und Nachverfolgung erschweren",
			"Aktenzeichen", "Az.", "Geschäftszeichen"),
		missingMarker("APPEAL_NOTICE", "Rechtsbehelfsbelehrung",
			"Keine Rechtsbehelfsbelehrung erkennbar – dies könnte ein formaler Mangel sein",
			"Rechtsbehelfsbelehrung", "Widerspruch", "Klage", "Rechtsbehelf"),
		missingMarker("DEADLINE", "Fristangabe",
			"Keine klare Fristangabe erkennbar",
			"Frist", "innerhalb von", "binnen", "bis zum"),
		missingMarker("HEARING", "Anhörung",
			"Keine Anhörung vor Erlass erkennbar – bei belastenden Verwaltungsakten könnte dies relevant sein",
			"Anhörung", "Stellungnahme", "Gelegenheit zur Äußerung"),
		{
			ID:      "SHORT_DOCUMENT",
			Name:    "Textumfang",
			Kind:    detector.KindMetric,
			Message: "Sehr kurzer Bescheid – die Begründungstiefe erscheint möglicherweise unzureichend",
			Triggered: func(text string) bool {
				return detector.Measure(text).Length < MinDocumentLength
			},
		},
		{
			ID:      "LONG_SENTENCES",
			Name:    "Satzlänge",
			Kind:    detector.KindMetric,
			Message: "Sehr lange Sätze – könnte auf komplexe Verschachtelungen oder Unklarheiten hinweisen",
			Triggered: func(text string) bool {
				return detector.Measure(text).AverageSentenceLength > MaxAverageSentenceLength
			},
		},
	}
}

// missingMarker builds a check that fires when none of the markers occur.
func missingMarker(id, name, message string, markers ...string) detector.StructuralCheck {
	marker := detector.NewMarker(markers...)
	return detector.StructuralCheck{
		ID:      id,
		Name:    name,
		Kind:    detector.KindStructural,
		Message: message,
		Markers: marker.Terms(),
		Triggered: func(text string) bool {
			return !marker.Present(text)
		},
	}
}
