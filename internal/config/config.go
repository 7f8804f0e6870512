// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// regchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults
// and environment variable overrides.
//
// Configuration file locations (in order of precedence):
//   - ~/.regchat/config.toml
//   - ~/.regchat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete regchat configuration.
type Config struct {
	// Version of the config schema
	Version string `toml:"version" json:"version"`

	// API configuration for the remote answering endpoint
	API APIConfig `toml:"api" json:"api"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// APIConfig contains answering endpoint configuration.
type APIConfig struct {
	// Endpoint is the base URL of the answering service.
	// The client POSTs questions to <Endpoint>/chat.
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// StorageConfig contains local persistence configuration.
type StorageConfig struct {
	// DataDir is the directory holding the session registry, message logs
	// and the log file. Empty means ~/.regchat.
	DataDir string `toml:"data_dir" json:"data_dir"`
}

// UIConfig contains UI preferences.
type UIConfig struct {
	// Theme selects the color scheme: "auto", "dark", or "light"
	Theme string `toml:"theme" json:"theme"`
	// SidebarWidth is the sidebar width in columns
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width"`
	// ShowSuggestions shows the suggested questions panel on empty chats
	ShowSuggestions bool `toml:"show_suggestions" json:"show_suggestions"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `toml:"level" json:"level"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultEndpoint is the production answering service.
const DefaultEndpoint = "https://anb-capital-84218037131.asia-south1.run.app"

// DefaultTimeoutSecs is the default per-request timeout.
const DefaultTimeoutSecs = 60

// Default returns the configuration with built-in defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			Endpoint:    DefaultEndpoint,
			TimeoutSecs: DefaultTimeoutSecs,
		},
		Storage: StorageConfig{
			DataDir: "",
		},
		UI: UIConfig{
			Theme:           "auto",
			SidebarWidth:    32,
			ShowSuggestions: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the regchat configuration directory (~/.regchat).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".regchat"), nil
}

// DataDir resolves the effective data directory for this configuration.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return ConfigDir()
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration from the default locations, applies
// environment overrides, and validates the result. A missing config file is
// not an error; defaults are used.
func Load() (*Config, error) {
	// A .env file in the working directory can supply overrides, mostly
	// useful during development against a local answering service.
	_ = godotenv.Load()

	cfg := Default()

	dir, err := ConfigDir()
	if err == nil {
		tomlPath := filepath.Join(dir, "config.toml")
		jsonPath := filepath.Join(dir, "config.json")

		switch {
		case fileExists(tomlPath):
			if err := loadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", tomlPath, err)
			}
		case fileExists(jsonPath):
			if err := loadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", jsonPath, err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath reads a configuration file from an explicit path, selecting
// the format by extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.HasSuffix(path, ".json") {
		err = loadJSON(cfg, path)
	} else {
		err = loadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTOML merges a TOML file over cfg.
func loadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// loadJSON merges a JSON file over cfg.
func loadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// fillDefaults backfills zero values left by partial config files.
func (c *Config) fillDefaults() {
	if c.API.Endpoint == "" {
		c.API.Endpoint = DefaultEndpoint
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = DefaultTimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "auto"
	}
	if c.UI.SidebarWidth == 0 {
		c.UI.SidebarWidth = 32
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Version == "" {
		c.Version = "1"
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies REGCHAT_* environment variables over the loaded
// configuration. Invalid numeric values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("REGCHAT_ENDPOINT"); v != "" {
		c.API.Endpoint = v
	}
	if v := os.Getenv("REGCHAT_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.API.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("REGCHAT_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("REGCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("REGCHAT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidateErrors aggregates all validation failures.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.API.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.endpoint",
			Message: fmt.Sprintf("not a valid URL: %q", c.API.Endpoint),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "api.endpoint",
			Message: fmt.Sprintf("unsupported scheme %q", u.Scheme),
		})
	}

	if c.API.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: "must be positive",
		})
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be auto, dark or light, got %q", c.UI.Theme),
		})
	}

	if c.UI.SidebarWidth < 20 || c.UI.SidebarWidth > 80 {
		errs = append(errs, ValidationError{
			Field:   "ui.sidebar_width",
			Message: "must be between 20 and 80",
		})
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration as TOML to the default location.
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, "config.toml")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// Global returns the process-wide configuration, loading it on first use.
// Load errors fall back to defaults; callers needing the error use Load.
func Global() *Config {
	globalMu.RLock()
	if globalCfg != nil {
		defer globalMu.RUnlock()
		return globalCfg
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalCfg == nil {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalCfg = cfg
	}
	return globalCfg
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = cfg
}

// ResetGlobalForTesting clears the global config so tests can reload.
func ResetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = nil
}
