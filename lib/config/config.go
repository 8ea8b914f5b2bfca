// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the Fropbox
// client and server.
//
// Configuration is a single YAML file specified by the
// FROPBOX_CONFIG environment variable or a --config flag. The file is
// the single source of truth: environment variables do not override
// individual values. Every field has a default, so a binary can also
// run from flags alone with no file at all.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the combined configuration for both binaries. Each binary
// reads only its own section.
type Config struct {
	Client ClientConfig `yaml:"client"`
	Server ServerConfig `yaml:"server"`
}

// ClientConfig configures the watching client.
type ClientConfig struct {
	// ServerURL is the base URL of the Fropbox server.
	ServerURL string `yaml:"server_url"`

	// SourceDir is the directory to watch for new files.
	SourceDir string `yaml:"source_dir"`

	// Interval is the polling period as a Go duration string.
	// Default: "100ms".
	Interval string `yaml:"interval"`

	// MinMatchLength is the smallest shared byte run worth a
	// server-side copy instead of a literal upload. Default: 32.
	MinMatchLength int `yaml:"min_match_length"`

	// HistoryPath is where the upload history is persisted. Default:
	// ".fropbox-history" inside SourceDir.
	HistoryPath string `yaml:"history_path"`
}

// ServerConfig configures the append server.
type ServerConfig struct {
	// Listen is the address the HTTP server binds to.
	Listen string `yaml:"listen"`

	// StoreDir is the directory uploaded files are stored in.
	StoreDir string `yaml:"store_dir"`
}

// Default returns the default configuration, used as the base before
// loading a config file so absent fields keep sensible values.
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			ServerURL:      "http://127.0.0.1:11000",
			Interval:       "100ms",
			MinMatchLength: 32,
		},
		Server: ServerConfig{
			Listen:   "127.0.0.1:11000",
			StoreDir: "./dest",
		},
	}
}

// Load loads configuration from the file named by FROPBOX_CONFIG,
// or returns the defaults when the variable is not set.
func Load() (*Config, error) {
	path := os.Getenv("FROPBOX_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, on top of
// the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks the client section and fills the derived
// HistoryPath default. Called by the client binary after flags are
// applied.
func (c *ClientConfig) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("client: source_dir is required")
	}
	if c.ServerURL == "" {
		return fmt.Errorf("client: server_url is required")
	}
	if _, err := url.Parse(c.ServerURL); err != nil {
		return fmt.Errorf("client: invalid server_url %q: %w", c.ServerURL, err)
	}
	if _, err := c.PollInterval(); err != nil {
		return err
	}
	if c.MinMatchLength <= 0 {
		return fmt.Errorf("client: min_match_length must be positive, got %d", c.MinMatchLength)
	}
	if c.HistoryPath == "" {
		c.HistoryPath = filepath.Join(c.SourceDir, ".fropbox-history")
	}
	return nil
}

// PollInterval parses the Interval field.
func (c *ClientConfig) PollInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, fmt.Errorf("client: invalid interval %q: %w", c.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("client: interval must be positive, got %q", c.Interval)
	}
	return d, nil
}

// Validate checks the server section.
func (s *ServerConfig) Validate() error {
	if s.Listen == "" {
		return fmt.Errorf("server: listen address is required")
	}
	if s.StoreDir == "" {
		return fmt.Errorf("server: store_dir is required")
	}
	return nil
}
