// Package config loads the tool configuration from .taming/config.json with
// environment overrides layered on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config is the single source of truth for runtime configuration.
type Config struct {
	// Gemini API key. GEMINI_API_KEY overrides.
	APIKey string `json:"api_key,omitempty"`

	// Model override. TAMING_MODEL overrides.
	Model string `json:"model,omitempty"`

	// Service base URL; rarely changed outside tests.
	BaseURL string `json:"base_url,omitempty"`

	// Per-call timeout in seconds.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`

	// Transient-failure retry budget.
	MaxRetries int `json:"max_retries,omitempty"`

	// Mock serves deterministic offline fixtures instead of calling the
	// service. TAMING_MOCK=1 overrides.
	Mock bool `json:"mock,omitempty"`

	// DataDir holds the snapshot database. Defaults to .taming/.
	DataDir string `json:"data_dir,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:          "gemini-3-pro-preview",
		TimeoutSeconds: 120,
		MaxRetries:     2,
		DataDir:        ".taming",
	}
}

// DefaultPath returns the config file location, anchored at the workspace
// root when one can be found.
func DefaultPath() string {
	root, err := findWorkspaceRoot()
	if err != nil {
		return filepath.Join(".taming", "config.json")
	}
	return filepath.Join(root, ".taming", "config.json")
}

// findWorkspaceRoot walks upward looking for an existing .taming directory.
// Falls back to the current working directory.
func findWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	original := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".taming")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return original, nil
		}
		dir = parent
	}
}

// Load reads the config file, fills gaps with defaults and applies
// environment overrides. A missing file yields pure defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = Default().Model
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = Default().TimeoutSeconds
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = Default().MaxRetries
	}
	if cfg.DataDir == "" {
		cfg.DataDir = Default().DataDir
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.APIKey = key
	}
	if model := os.Getenv("TAMING_MODEL"); model != "" {
		c.Model = model
	}
	if mock := os.Getenv("TAMING_MOCK"); mock != "" {
		if v, err := strconv.ParseBool(mock); err == nil {
			c.Mock = v
		}
	}
}

// Save writes the config as indented JSON, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Timeout returns the per-call timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SnapshotPath returns the snapshot database location.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, "state.db")
}
