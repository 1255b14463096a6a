// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package help renders the terminal help for the CLI.
package help

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/fatih/color"

	"system-atlas/internal/config"
	"system-atlas/internal/detector"
	"system-atlas/internal/report"
	"system-atlas/internal/rules"
)

// System manages help content for the application
type System struct {
	out       io.Writer
	catalogue *rules.Catalogue
	colors    map[string]*color.Color
}

// NewSystem creates a help system writing to out. A nil catalogue selects
// the seed catalogue.
func NewSystem(out io.Writer, catalogue *rules.Catalogue, noColor bool) *System {
	if catalogue == nil {
		catalogue = rules.Default()
	}

	colors := map[string]*color.Color{
		"title":    color.New(color.FgWhite, color.Bold),
		"header":   color.New(color.FgBlue, color.Bold),
		"item":     color.New(color.FgCyan),
		"emphasis": color.New(color.FgWhite, color.Bold),
		"negative": color.New(color.FgRed),
		"warning":  color.New(color.FgYellow),
		"example":  color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range colors {
			c.DisableColor()
		}
	}

	return &System{out: out, catalogue: catalogue, colors: colors}
}

func (h *System) println(a ...interface{}) {
	fmt.Fprintln(h.out, a...)
}

// ShowGeneralHelp displays usage, options and examples
func (h *System) ShowGeneralHelp() {
	title := report.Name + " – Analyse deutscher Behördenbescheide"
	h.colors["title"].Fprintln(h.out, title)
	h.println(strings.Repeat("=", utf8.RuneCountInString(title)))
	h.println()
	h.colors["header"].Fprintln(h.out, "AUFRUF:")
	h.println("  system-atlas -file <bescheid> [Optionen]")
	h.println("  system-atlas [Optionen] < bescheid.txt")
	h.println("  system-atlas -web [-port <port>]")
	h.println()

	h.colors["header"].Fprintln(h.out, "OPTIONEN:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  -file\t<pfad>\tBescheid als .txt, .md, .pdf, .docx oder .odt (ohne Angabe: stdin)")
	fmt.Fprintln(w, "  -format\t<format>\tAusgabeformat: text, json, yaml, csv (Standard: text)")
	fmt.Fprintln(w, "  -checks\t<ids>\tNur diese Prüfungen ausführen, kommagetrennt (Standard: all)")
	fmt.Fprintln(w, "  -profile\t<name>\tProfil aus der Konfigurationsdatei verwenden")
	fmt.Fprintln(w, "  -config\t<pfad>\tKonfigurationsdatei (YAML)")
	fmt.Fprintln(w, "  -output\t<pfad>\tAusgabe in Datei statt stdout")
	fmt.Fprintln(w, "  -verbose\t\tEinzelbefunde und Kennzahlen ausgeben")
	fmt.Fprintln(w, "  -no-color\t\tFarbige Ausgabe abschalten")
	fmt.Fprintln(w, "  -debug\t\tVerarbeitungsschritte auf stderr protokollieren")
	fmt.Fprintln(w, "  -list-rules\t\tAlle Prüfungen auflisten")
	fmt.Fprintln(w, "  -list-profiles\t\tProfile der Konfiguration auflisten")
	fmt.Fprintln(w, "  -web\t\tWeb-Oberfläche starten")
	fmt.Fprintln(w, "  -port\t<port>\tPort der Web-Oberfläche (Standard: 8080)")
	fmt.Fprintln(w, "  -version\t\tVersionsinformationen anzeigen")
	w.Flush()

	h.println()
	h.colors["header"].Fprintln(h.out, "BEISPIELE:")
	h.colors["example"].Fprintln(h.out, "  system-atlas -file bescheid.pdf")
	h.colors["example"].Fprintln(h.out, "  system-atlas -file bescheid.docx -format json -output bericht.json")
	h.colors["example"].Fprintln(h.out, "  pbpaste | system-atlas -checks DEADLINE,APPEAL_NOTICE")
	h.colors["example"].Fprintln(h.out, "  system-atlas -profile formal -file bescheid.txt")

	h.println()
	h.colors["header"].Fprintln(h.out, "KONFIGURATION:")
	h.println("  Projekt:  " + config.ConfigFileName + " im aktuellen Verzeichnis")
	h.println("  Benutzer: ~/" + config.ConfigFileName + " oder ~/.config/system-atlas/config.yaml")

	h.println()
	h.colors["warning"].Fprintln(h.out, "HINWEIS:")
	h.println("  " + report.Disclaimer)
}

// ShowChecksHelp lists every rule and structural check in evaluation order
func (h *System) ShowChecksHelp() {
	h.colors["title"].Fprintln(h.out, "Verfügbare Prüfungen")
	h.println(strings.Repeat("=", 20))
	h.println()

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tART\tKATEGORIE")
	fmt.Fprintln(w, "  --\t---\t---------")
	for _, e := range h.catalogue.Describe() {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", e.ID, kindLabel(e.Kind), e.Category)
	}
	w.Flush()

	h.println()
	h.println("Details zu einer Prüfung:")
	h.colors["example"].Fprintln(h.out, "  system-atlas -list-rules <ID>")
}

// ShowCheckHelp displays the triggers and message of one check. It reports
// false when id is unknown.
func (h *System) ShowCheckHelp(id string) bool {
	entry, ok := h.catalogue.Lookup(id)
	if !ok {
		h.colors["negative"].Fprintf(h.out, "Fehler: Prüfung '%s' nicht gefunden.\n", id)
		h.println("Verfügbar: " + strings.Join(h.catalogue.IDs(), ", "))
		return false
	}

	h.colors["title"].Fprintf(h.out, "%s\n", entry.ID)
	h.println(strings.Repeat("=", len(entry.ID)))
	h.println()
	h.colors["emphasis"].Fprint(h.out, "Kategorie: ")
	h.println(entry.Category)
	h.colors["emphasis"].Fprint(h.out, "Art:       ")
	h.println(kindLabel(entry.Kind))
	h.println()

	switch entry.Kind {
	case detector.KindRule:
		h.colors["header"].Fprintln(h.out, "AUSLÖSENDE BEGRIFFE (ganze Wörter, Groß-/Kleinschreibung egal):")
	case detector.KindStructural:
		h.colors["header"].Fprintln(h.out, "MELDUNG, WENN KEINER DIESER BEGRIFFE VORKOMMT:")
	}
	for _, trigger := range entry.Triggers {
		fmt.Fprint(h.out, "  - ")
		h.colors["item"].Fprintln(h.out, trigger)
	}
	if len(entry.Triggers) > 0 {
		h.println()
	}

	h.colors["header"].Fprintln(h.out, "HINWEISTEXT:")
	h.println("  " + entry.Description)
	return true
}

// ShowProfiles lists the profiles of cfg
func (h *System) ShowProfiles(cfg *config.Config) {
	names := cfg.ListProfiles()
	if len(names) == 0 {
		h.println("Keine Profile konfiguriert.")
		return
	}

	h.colors["title"].Fprintln(h.out, "Profile")
	h.println(strings.Repeat("=", 7))
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		profile := cfg.GetProfile(name)
		fmt.Fprintf(w, "  %s\t%s\n", name, profile.Description)
		if profile.Checks != "" {
			fmt.Fprintf(w, "  \tPrüfungen: %s\n", profile.Checks)
		}
	}
	w.Flush()
}

func kindLabel(kind detector.Kind) string {
	switch kind {
	case detector.KindRule:
		return "Formulierung"
	case detector.KindStructural:
		return "Formbestandteil"
	case detector.KindMetric:
		return "Kennzahl"
	default:
		return string(kind)
	}
}
