// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/knowme-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete knowme configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Profile ProfileConfig `toml:"profile"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig describes how to reach the retrieval backend.
type APIConfig struct {
	BaseURL string `toml:"base_url"`

	// TimeoutSeconds bounds each request. Zero waits for as long as the
	// backend takes.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// RequestsPerSecond throttles outgoing calls. Zero is unlimited.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// UserID is sent as X-User-ID so the backend can keep per-user indexes.
	UserID string `toml:"user_id"`

	MaxUploadMB int `toml:"max_upload_mb"`
}

// Profile storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ProfileConfig selects where the personality profile lives.
type ProfileConfig struct {
	Backend string `toml:"backend"`

	// Path is the JSON file or SQLite database. Empty means a file inside
	// the config directory.
	Path string `toml:"path"`

	// Watch reloads the profile when the file changes on disk.
	Watch bool `toml:"watch"`
}

// UIConfig contains TUI settings.
type UIConfig struct {
	WizardSteps  int    `toml:"wizard_steps"`
	GlamourStyle string `toml:"glamour_style"` // auto, dark, light, notty
	ShowTimer    bool   `toml:"show_timer"`
	Width        int    `toml:"width"` // markdown wrap width, 0 follows the terminal
}

// LogConfig controls the rotated log file.
type LogConfig struct {
	Path       string `toml:"path"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultBaseURL is where a locally started backend listens.
const DefaultBaseURL = "http://localhost:8000"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			MaxUploadMB: 50,
		},
		Profile: ProfileConfig{
			Backend: BackendFile,
		},
		UI: UIConfig{
			WizardSteps:  7,
			GlamourStyle: "auto",
			ShowTimer:    true,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns ~/.knowme, or $KNOWME_HOME when set.
func ConfigDir() (string, error) {
	if dir := os.Getenv("KNOWME_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".knowme"), nil
}

// ConfigPath returns the path of config.toml.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ProfilePath resolves the profile location for the configured backend.
func (c *Config) ProfilePath() (string, error) {
	if c.Profile.Path != "" {
		return c.Profile.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if c.Profile.Backend == BackendSQLite {
		return filepath.Join(dir, "knowme.db"), nil
	}
	return filepath.Join(dir, "profile.json"), nil
}

// LogPath resolves the log file location.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "knowme.log"), nil
}

// HistoryPath is where the chat REPL keeps its line history.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chat_history"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads config.toml from the config directory. A missing file is not an
// error: defaults are used. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load for an explicit file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides lets KNOWME_* variables win over the file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("KNOWME_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("KNOWME_USER_ID"); v != "" {
		c.API.UserID = v
	}
	if v := os.Getenv("KNOWME_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("KNOWME_PROFILE_BACKEND"); v != "" {
		c.Profile.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("KNOWME_PROFILE_PATH"); v != "" {
		c.Profile.Path = v
	}
	if v := os.Getenv("KNOWME_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// SetDefaults fills zero values left by a partial file.
func (c *Config) SetDefaults() {
	def := Default()
	if strings.TrimSpace(c.API.BaseURL) == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.MaxUploadMB == 0 {
		c.API.MaxUploadMB = def.API.MaxUploadMB
	}
	if c.Profile.Backend == "" {
		c.Profile.Backend = def.Profile.Backend
	}
	if c.UI.WizardSteps == 0 {
		c.UI.WizardSteps = def.UI.WizardSteps
	}
	if c.UI.GlamourStyle == "" {
		c.UI.GlamourStyle = def.UI.GlamourStyle
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = def.Log.MaxBackups
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default config.toml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# knowme configuration file\n")
	buf.WriteString("# Environment variables (KNOWME_*) override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting found in one pass.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{"api.base_url", fmt.Sprintf("must be an http(s) URL, got %q", c.API.BaseURL)})
	}
	if c.API.TimeoutSeconds < 0 {
		errs = append(errs, ValidationError{"api.timeout_seconds", "must not be negative"})
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{"api.requests_per_second", "must not be negative"})
	}
	if c.API.MaxUploadMB < 0 {
		errs = append(errs, ValidationError{"api.max_upload_mb", "must not be negative"})
	}
	switch c.Profile.Backend {
	case BackendFile, BackendSQLite:
	default:
		errs = append(errs, ValidationError{"profile.backend", fmt.Sprintf("must be %q or %q, got %q", BackendFile, BackendSQLite, c.Profile.Backend)})
	}
	if c.UI.WizardSteps < 1 {
		errs = append(errs, ValidationError{"ui.wizard_steps", "must be at least 1"})
	}
	switch c.UI.GlamourStyle {
	case "auto", "dark", "light", "notty":
	default:
		errs = append(errs, ValidationError{"ui.glamour_style", fmt.Sprintf("unknown style %q", c.UI.GlamourStyle)})
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{"log.level", fmt.Sprintf("unknown level %q", c.Log.Level)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
