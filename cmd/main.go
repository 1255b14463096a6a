// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"system-atlas/internal/apperrors"
	"system-atlas/internal/config"
	"system-atlas/internal/core"
	"system-atlas/internal/extract"
	"system-atlas/internal/help"
	"system-atlas/internal/observability"
	"system-atlas/internal/security"
	"system-atlas/internal/version"
	"system-atlas/internal/web"

	"system-atlas/internal/formatters"
	_ "system-atlas/internal/formatters/csv"
	_ "system-atlas/internal/formatters/json"
	_ "system-atlas/internal/formatters/text"
	_ "system-atlas/internal/formatters/yaml"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// shutdownTimeout bounds how long web mode waits for active requests
const shutdownTimeout = 10 * time.Second

// configFlags holds command line flag values
type configFlags struct {
	inputFile    string
	configFile   string
	profileName  string
	outputFormat string
	checksToRun  string
	outputFile   string
	verbose      bool
	debug        bool
	noColor      bool
	listRules    bool
	listProfiles bool
	showVersion  bool
	webMode      bool
	webPort      int
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format  string
	checks  []string
	verbose bool
	debug   bool
	noColor bool
}

// cli carries the process streams so the command can be driven from tests
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	flags  *flag.FlagSet
}

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.run(os.Args[1:]))
}

func (c *cli) parseFlags(args []string) (*configFlags, error) {
	fs := flag.NewFlagSet("system-atlas", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	c.flags = fs

	f := &configFlags{}
	fs.StringVar(&f.inputFile, "file", "", "Bescheid als .txt, .md, .pdf, .docx oder .odt (ohne Angabe: stdin)")
	fs.StringVar(&f.configFile, "config", "", "Konfigurationsdatei (YAML)")
	fs.StringVar(&f.profileName, "profile", "", "Profil aus der Konfigurationsdatei")
	fs.StringVar(&f.outputFormat, "format", "", "Ausgabeformat: text, json, yaml, csv (Standard: text)")
	fs.StringVar(&f.checksToRun, "checks", "", "Kommagetrennte Prüfungs-IDs oder 'all'")
	fs.StringVar(&f.outputFile, "output", "", "Ausgabe in Datei statt stdout")
	fs.BoolVar(&f.verbose, "verbose", false, "Einzelbefunde und Kennzahlen ausgeben")
	fs.BoolVar(&f.debug, "debug", false, "Verarbeitungsschritte auf stderr protokollieren")
	fs.BoolVar(&f.noColor, "no-color", false, "Farbige Ausgabe abschalten")
	fs.BoolVar(&f.listRules, "list-rules", false, "Prüfungen auflisten (optional mit ID als Argument)")
	fs.BoolVar(&f.listProfiles, "list-profiles", false, "Profile der Konfiguration auflisten")
	fs.BoolVar(&f.showVersion, "version", false, "Versionsinformationen anzeigen")
	fs.BoolVar(&f.webMode, "web", false, "Web-Oberfläche starten")
	fs.IntVar(&f.webPort, "port", 0, "Port der Web-Oberfläche (Standard: 8080)")

	fs.Usage = func() {
		help.NewSystem(c.stderr, nil, !isTerminalWriter(c.stderr)).ShowGeneralHelp()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func (c *cli) run(args []string) int {
	flags, err := c.parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if flags.showVersion {
		fmt.Fprintln(c.stdout, version.Info())
		return exitOK
	}

	cfg := c.loadConfiguration(flags.configFile)

	var activeProfile *config.Profile
	if flags.profileName != "" {
		activeProfile = cfg.GetProfile(flags.profileName)
		if activeProfile == nil {
			c.usageError(fmt.Sprintf("profile '%s' not found (available: %s)",
				flags.profileName, strings.Join(cfg.ListProfiles(), ", ")))
			return exitUsage
		}
	}

	final := c.resolveConfiguration(cfg, activeProfile, flags)
	helpSystem := help.NewSystem(c.stdout, nil, final.noColor)

	switch {
	case flags.listProfiles:
		helpSystem.ShowProfiles(cfg)
		return exitOK
	case flags.listRules:
		if c.flags.NArg() == 0 {
			helpSystem.ShowChecksHelp()
			return exitOK
		}
		if !helpSystem.ShowCheckHelp(c.flags.Arg(0)) {
			return exitUsage
		}
		return exitOK
	case flags.webMode:
		return c.handleWebMode(cfg, flags)
	}

	if err := core.ValidateChecks(final.checks, nil); err != nil {
		c.usageError(err.Error())
		return exitUsage
	}
	if _, ok := formatters.Get(final.format); !ok {
		c.usageError(fmt.Sprintf("unsupported format '%s' (available: %s)",
			final.format, strings.Join(formatters.List(), ", ")))
		return exitUsage
	}

	inputFile := flags.inputFile
	if inputFile == "" && c.flags.NArg() > 0 {
		inputFile = c.flags.Arg(0)
	}

	doc, err := c.readInput(inputFile, cfg)
	if err != nil {
		if errors.Is(err, errNoInput) {
			c.usageError(err.Error())
			return exitUsage
		}
		c.printError(err)
		return exitError
	}

	observer := observability.NewStandardObserver(observability.ObservabilityOff, nil)
	if final.debug {
		debugObserver := observability.NewDebugObserver(c.stderr)
		debugObserver.LogDetail("main", fmt.Sprintf("input: %s (%s)", doc.Filename, doc.Format))
		debugObserver.LogDetail("main", fmt.Sprintf("format: %s, checks: %s", final.format, checksLabel(final.checks)))
		observer = debugObserver.StandardObserver
	}

	result, err := core.Audit(core.AuditConfig{
		Text:     doc.Text,
		Source:   doc.Filename,
		Analyzer: core.BuildAnalyzer(final.checks, nil),
		Observer: observer,
	})
	if err != nil {
		c.printError(err)
		return exitError
	}

	output, err := formatters.Export(final.format, result.Result, formatters.FormatterOptions{
		Verbose: final.verbose,
		NoColor: final.noColor || flags.outputFile != "",
		Source:  doc.Filename,
	})
	if err != nil {
		c.printError(err)
		return exitError
	}

	if flags.outputFile != "" {
		if err := os.WriteFile(filepath.Clean(flags.outputFile), []byte(output), 0600); err != nil {
			c.printError(fmt.Errorf("error writing output file: %w", err))
			return exitError
		}
		fmt.Fprintf(c.stderr, "Bericht geschrieben: %s\n", flags.outputFile)
		return exitOK
	}

	fmt.Fprint(c.stdout, output)
	return exitOK
}

// loadConfiguration loads the configuration file or returns default config
func (c *cli) loadConfiguration(configFile string) *config.Config {
	cfg, err := config.LoadConfigOrDefault(configFile)
	if err != nil {
		fmt.Fprintf(c.stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(c.stderr, "Using default configuration\n")
	}
	return cfg
}

// resolveConfiguration resolves final configuration values from config file,
// profile and command line flags, in increasing precedence.
func (c *cli) resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{format: "text"}

	if cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}
	if activeProfile != nil && activeProfile.Format != "" {
		final.format = activeProfile.Format
	}
	if c.isFlagSet("format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}
	final.format = strings.ToLower(strings.TrimSpace(final.format))

	final.checks = core.ResolveChecks(flags.checksToRun, cfg, activeProfile)

	final.verbose = cfg.Defaults.Verbose || flags.verbose
	if activeProfile != nil && activeProfile.Verbose {
		final.verbose = true
	}

	final.debug = cfg.Defaults.Debug || flags.debug

	// Auto-detect non-interactive output
	final.noColor = flags.noColor || cfg.Defaults.NoColor ||
		(activeProfile != nil && activeProfile.NoColor) ||
		os.Getenv("NO_COLOR") != "" ||
		!isTerminalWriter(c.stdout)

	return final
}

var errNoInput = errors.New("no input: pass -file <path> or pipe the notice text into stdin")

// readInput extracts the text of path, or of stdin when path is empty
func (c *cli) readInput(path string, cfg *config.Config) (*extract.Document, error) {
	opts := extract.Options{
		MaxPDFPages: cfg.Extraction.MaxPDFPages,
		MaxBytes:    cfg.Extraction.MaxFileBytes,
	}

	if path != "" {
		return extract.FromFile(path, opts)
	}

	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, errNoInput
	}

	limit := opts.MaxBytes
	if limit <= 0 {
		limit = extract.DefaultOptions().MaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(c.stdin, limit+1))
	if err != nil {
		return nil, fmt.Errorf("error reading stdin: %w", err)
	}
	upload := security.NewUploadBuffer("stdin.txt", data)
	defer upload.Clear()

	doc, err := extract.FromBytes(upload.Name(), upload.Bytes(), opts)
	if err != nil {
		return nil, err
	}
	doc.Filename = "stdin"
	return doc, nil
}

// handleWebMode starts the web server and blocks until SIGINT or SIGTERM
func (c *cli) handleWebMode(cfg *config.Config, flags *configFlags) int {
	if err := c.validateWebModeFlags(flags); err != nil {
		c.usageError(err.Error())
		return exitUsage
	}

	level := observability.ParseLevel(cfg.Logging.Level)
	observer := observability.NewStandardObserver(level, c.stderr)
	if flags.debug || cfg.Defaults.Debug {
		observer = observability.NewDebugObserver(c.stderr).StandardObserver
	}

	server, err := web.NewWebServer(cfg, observer)
	if err != nil {
		c.printError(err)
		return exitError
	}
	if c.isFlagSet("port") {
		server.SetPort(flags.webPort)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			c.printError(err)
			return exitError
		}
		return exitOK
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			c.printError(fmt.Errorf("shutdown: %w", err))
			return exitError
		}
		return exitOK
	}
}

// validateWebModeFlags validates that incompatible flags are not used with -web
func (c *cli) validateWebModeFlags(flags *configFlags) error {
	if c.flags.NArg() > 0 || flags.inputFile != "" {
		return fmt.Errorf("-web cannot be used with an input file\n" +
			"Web mode starts a server - use the web interface to upload files")
	}

	if c.isFlagSet("port") && (flags.webPort < 1 || flags.webPort > 65535) {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", flags.webPort)
	}

	var incompatible []string
	for _, name := range []string{"output", "format", "checks", "profile", "verbose", "no-color"} {
		if c.isFlagSet(name) {
			incompatible = append(incompatible, "-"+name)
		}
	}
	if len(incompatible) > 0 {
		return fmt.Errorf("-web cannot be used with: %s\n"+
			"Web mode takes checks and output formatting from defaults in %s",
			strings.Join(incompatible, ", "), config.ConfigFileName)
	}
	return nil
}

// isFlagSet checks if a flag was explicitly set on the command line
func (c *cli) isFlagSet(name string) bool {
	found := false
	c.flags.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func (c *cli) usageError(message string) {
	fmt.Fprintf(c.stderr, "Error: %s\n", message)
	fmt.Fprintln(c.stderr, "Use -help for usage information.")
}

// printError reports a failed run. Classified errors get their German
// boundary message in front of the detail.
func (c *cli) printError(err error) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeInvalidInput:
		fmt.Fprintf(c.stderr, "Error: %s (%v)\n", web.ErrInvalidText, err)
	case apperrors.ErrorTypeUnsupportedFormat:
		fmt.Fprintf(c.stderr, "Error: %s (%v)\n", web.ErrUnsupportedFile, err)
	case apperrors.ErrorTypeUnreadable:
		fmt.Fprintf(c.stderr, "Error: %s (%v)\n", web.ErrUnreadableFile, err)
	case apperrors.ErrorTypeInternal:
		fmt.Fprintf(c.stderr, "Error: %s (%v)\n", web.ErrAnalysisFailed, err)
	default:
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
	}
}

func checksLabel(checks []string) string {
	if len(checks) == 0 {
		return "all"
	}
	return strings.Join(checks, ",")
}

// isTerminalWriter reports whether w is a terminal
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
