// Copyright 2026 CareOps
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads and validates the notebridge configuration file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	// Log controls structured logging output.
	Log LogConfig `yaml:"log,omitempty"`

	// Vendors maps vendor identifiers to their portal settings.
	Vendors map[string]VendorConfig `yaml:"vendors,omitempty"`

	// Audit configures the submission audit database.
	Audit AuditConfig `yaml:"audit,omitempty"`

	// Sessions configures persisted session storage.
	Sessions SessionConfig `yaml:"sessions,omitempty"`

	// Metrics configures the exit-time metrics snapshot.
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

// VendorConfig holds per-vendor portal settings.
type VendorConfig struct {
	// BaseURL is the portal base URL, e.g. https://app.example-hc.com.
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-request timeout. Zero uses the transport default.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// RequestsPerSecond caps the outbound request rate. Zero disables
	// rate limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`

	// Retry configures the submission retry policy.
	Retry RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig configures retries for one vendor.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
	Backoff     time.Duration `yaml:"backoff,omitempty"`
}

// AuditConfig configures the audit database.
type AuditConfig struct {
	// Path is the SQLite database path. Empty uses the default data dir.
	Path string `yaml:"path,omitempty"`

	// Disabled turns off audit recording entirely.
	Disabled bool `yaml:"disabled,omitempty"`
}

// SessionConfig configures persisted sessions.
type SessionConfig struct {
	// Dir is the directory session files are written to. Empty uses the
	// default data dir.
	Dir string `yaml:"dir,omitempty"`
}

// MetricsConfig configures the metrics snapshot written when a CLI
// invocation exits.
type MetricsConfig struct {
	// Path is the snapshot file, in the Prometheus textfile-collector
	// format. Empty uses the default data dir.
	Path string `yaml:"path,omitempty"`

	// Disabled turns off the snapshot entirely.
	Disabled bool `yaml:"disabled,omitempty"`
}

// Default returns a configuration with sane defaults and no vendors.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Vendors == nil {
		c.Vendors = make(map[string]VendorConfig)
	}
	for id, v := range c.Vendors {
		if v.Timeout == 0 {
			v.Timeout = 30 * time.Second
		}
		if v.Retry.MaxAttempts == 0 {
			v.Retry.MaxAttempts = 3
		}
		if v.Retry.Backoff == 0 {
			v.Retry.Backoff = time.Second
		}
		c.Vendors[id] = v
	}
}

// applyEnv overlays environment overrides onto the loaded file.
func (c *Config) applyEnv() {
	if v := os.Getenv("NOTEBRIDGE_AUDIT_DB"); v != "" {
		c.Audit.Path = v
	}
	if v := os.Getenv("NOTEBRIDGE_SESSION_DIR"); v != "" {
		c.Sessions.Dir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// Validate checks that every configured vendor is usable.
func (c *Config) Validate() error {
	for id, v := range c.Vendors {
		if v.BaseURL == "" {
			return fmt.Errorf("vendor %q: base_url is required", id)
		}
		u, err := url.Parse(v.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("vendor %q: invalid base_url %q", id, v.BaseURL)
		}
		if v.Retry.MaxAttempts < 1 {
			return fmt.Errorf("vendor %q: retry max_attempts must be at least 1", id)
		}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Vendor returns the configuration for one vendor identifier.
func (c *Config) Vendor(id string) (VendorConfig, bool) {
	v, ok := c.Vendors[id]
	return v, ok
}

// Load reads the configuration from path. A missing file yields the
// default configuration; a malformed file is an error. If path is empty
// the default config file location is used. Environment overrides are
// applied after the file.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to path atomically.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
