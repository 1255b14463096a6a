// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"system-atlas/internal/rules"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format  string `yaml:"format"`
		Checks  string `yaml:"checks"`
		Verbose bool   `yaml:"verbose"`
		Debug   bool   `yaml:"debug"`
		NoColor bool   `yaml:"no_color"`
	} `yaml:"defaults"`

	// Web server settings
	Server ServerConfig `yaml:"server"`

	// Document text extraction limits
	Extraction struct {
		MaxPDFPages  int   `yaml:"max_pdf_pages"`
		MaxFileBytes int64 `yaml:"max_file_bytes"`
	} `yaml:"extraction"`

	// Operation logging
	Logging struct {
		Level string `yaml:"level"` // off, metrics or debug
	} `yaml:"logging"`

	// Profiles are named check selections
	Profiles map[string]Profile `yaml:"profiles"`
}

// ServerConfig holds the web server settings
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// Profile represents a named analysis setup
type Profile struct {
	Format      string `yaml:"format"`
	Checks      string `yaml:"checks"`
	Verbose     bool   `yaml:"verbose"`
	NoColor     bool   `yaml:"no_color"`
	Description string `yaml:"description"`
}

// ConfigFileName is the project-local configuration file name
const ConfigFileName = ".system-atlas.yaml"

// Logging levels
const (
	LogLevelOff     = "off"
	LogLevelMetrics = "metrics"
	LogLevelDebug   = "debug"
)

// Default returns the built-in configuration
func Default() *Config {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Format = "text"
	config.Defaults.Checks = "all"

	config.Server.Port = 8080
	config.Server.ReadTimeout = 15 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.MaxBodyBytes = 1 << 20

	config.Extraction.MaxPDFPages = 50
	config.Extraction.MaxFileBytes = 10 << 20

	config.Logging.Level = LogLevelMetrics

	config.Profiles["formal"] = Profile{
		Format:      "text",
		Checks:      "CASE_REFERENCE,APPEAL_NOTICE,DEADLINE,HEARING",
		Description: "Nur formale Bestandteile prüfen (Aktenzeichen, Rechtsbehelfsbelehrung, Frist, Anhörung)",
	}
	config.Profiles["sprache"] = Profile{
		Format:      "text",
		Checks:      "VAGUE_TERMS,BLANKET_REASONING,FORMULAIC_REJECTION,MISSING_SPECIFICS,DISCRETION",
		Description: "Nur Formulierungen prüfen (unbestimmte Begriffe, Pauschalbegründungen, Ermessen)",
	}

	return config
}

// LoadConfig loads configuration from the specified file path. An empty
// path returns the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Fields missing from the file keep their defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in the current directory,
// then the home directory, then the XDG config directory. It returns ""
// when none exists.
func FindConfigFile() string {
	if fileExists(ConfigFileName) {
		return ConfigFileName
	}
	if fileExists(".system-atlas.yml") {
		return ".system-atlas.yml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeConfig := filepath.Join(home, ConfigFileName)
	if fileExists(homeConfig) {
		return homeConfig
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	xdgConfigFile := filepath.Join(xdgConfig, "system-atlas", "config.yaml")
	if fileExists(xdgConfigFile) {
		return xdgConfigFile
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names in alphabetical order
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ValidateConfig checks ranges and enumerations
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", config.Server.Port)
	}
	if config.Server.ReadTimeout < 0 || config.Server.WriteTimeout < 0 || config.Server.IdleTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if config.Extraction.MaxPDFPages <= 0 {
		return fmt.Errorf("extraction.max_pdf_pages must be positive")
	}
	if config.Extraction.MaxFileBytes <= 0 {
		return fmt.Errorf("extraction.max_file_bytes must be positive")
	}

	if unknown := unknownChecks(config.Defaults.Checks); len(unknown) > 0 {
		return fmt.Errorf("defaults.checks: unknown checks %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(rules.Default().IDs(), ", "))
	}
	for _, name := range config.ListProfiles() {
		if unknown := unknownChecks(config.Profiles[name].Checks); len(unknown) > 0 {
			return fmt.Errorf("profiles.%s.checks: unknown checks %s (available: %s)",
				name, strings.Join(unknown, ", "), strings.Join(rules.Default().IDs(), ", "))
		}
	}

	switch strings.ToLower(config.Logging.Level) {
	case LogLevelOff, LogLevelMetrics, LogLevelDebug:
	default:
		return fmt.Errorf("logging.level %q must be one of off, metrics, debug", config.Logging.Level)
	}

	return nil
}

// unknownChecks returns the IDs in a comma-separated check list that the
// seed catalogue does not know. "all" on its own is accepted.
func unknownChecks(checks string) []string {
	ids := rules.SplitChecks(checks)
	if len(ids) == 1 && strings.EqualFold(ids[0], "all") {
		return nil
	}
	catalogue := rules.Default()
	var unknown []string
	for _, id := range ids {
		if _, ok := catalogue.Lookup(id); !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

// LoadConfigOrDefault loads configuration from configFile, or from the
// standard locations when configFile is empty. When loading fails it returns
// the built-in defaults together with the error, so callers can warn and
// carry on.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}
