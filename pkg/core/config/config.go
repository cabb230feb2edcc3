// ============================================================================
// dcmd - Declarative Command Dispatcher
// ============================================================================
//
// Package:     config
// Description: TOML configuration with environment overrides
// Author:      Mike Stoffels
// Created:     2025-03-14
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override, e.g. DCMD_LOG_LEVEL
const EnvPrefix = "DCMD_"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Console ConsoleConfig `toml:"console"`
	Batch   BatchConfig   `toml:"batch"`
	History HistoryConfig `toml:"history"`
	Loader  LoaderConfig  `toml:"loader"`
	Server  ServerConfig  `toml:"server"`

	// File the configuration was read from, empty for defaults
	Source string `toml:"-"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name"`
	DataDir   string `toml:"data_dir" env:"DATA_DIR"`
	LogLevel  string `toml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `toml:"log_format" env:"LOG_FORMAT"`
	LogOutput string `toml:"log_output" env:"LOG_OUTPUT"`
}

// ConsoleConfig holds interactive console settings
type ConsoleConfig struct {
	Prompt     string `toml:"prompt" env:"PROMPT"`
	NoColor    bool   `toml:"no_color" env:"NO_COLOR"`
	HideBanner bool   `toml:"hide_banner" env:"HIDE_BANNER"`
	HistoryN   int    `toml:"history_n" env:"HISTORY_N"`
}

// BatchConfig holds defaults for batch execution
type BatchConfig struct {
	StopOnError bool `toml:"stop_on_error" env:"BATCH_STOP_ON_ERROR"`
	Echo        bool `toml:"echo" env:"BATCH_ECHO"`
}

// HistoryConfig selects the history backend
type HistoryConfig struct {
	Backend   string   `toml:"backend" env:"HISTORY_BACKEND"`
	Path      string   `toml:"path" env:"HISTORY_PATH"`
	Retention Duration `toml:"retention" env:"HISTORY_RETENTION"`
}

// LoaderConfig names the commands loaded at startup
type LoaderConfig struct {
	Bundle    string `toml:"bundle" env:"BUNDLE"`
	Manifests string `toml:"manifests" env:"MANIFESTS"`
	Watch     bool   `toml:"watch" env:"WATCH"`
}

// ServerConfig holds remote console settings
type ServerConfig struct {
	Addr           string   `toml:"addr" env:"SERVER_ADDR"`
	Path           string   `toml:"path" env:"SERVER_PATH"`
	WriteTimeout   Duration `toml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	MaxMessageSize int64    `toml:"max_message_size" env:"SERVER_MAX_MESSAGE_SIZE"`
}

// History backends
const (
	HistoryMemory = "memory"
	HistorySQLite = "sqlite"
)

// Duration wraps time.Duration for TOML and environment parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file, then applies environment
// overrides and defaults
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Source = path

	return finish(&cfg)
}

// LoadFromEnv loads the file named by DCMD_CONFIG or found in a default
// location. Without a file it returns the defaults with environment
// overrides applied.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvPrefix + "CONFIG")
	if path != "" {
		return Load(path)
	}

	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}

	return finish(&Config{})
}

// DefaultPaths lists the locations searched by LoadFromEnv
func DefaultPaths() []string {
	paths := []string{
		"./configs/dcmd.toml",
		"./dcmd.toml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "dcmd", "config.toml"))
	}
	return paths
}

func finish(cfg *Config) (*Config, error) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "dcmd"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "warn"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}
	if c.General.LogOutput == "" {
		c.General.LogOutput = "stderr"
	}

	// Console
	if c.Console.Prompt == "" {
		c.Console.Prompt = "dcmd> "
	}
	if c.Console.HistoryN == 0 {
		c.Console.HistoryN = 10
	}

	// History
	if c.History.Backend == "" {
		c.History.Backend = HistoryMemory
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}

	// Loader
	if c.Loader.Bundle == "" {
		c.Loader.Bundle = "core"
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8765"
	}
	if c.Server.Path == "" {
		c.Server.Path = "/ws"
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout = Duration{10 * time.Second}
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = 1 << 20
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.History.Path = os.ExpandEnv(c.History.Path)
	c.Loader.Manifests = os.ExpandEnv(c.Loader.Manifests)
	if c.General.LogOutput != "stderr" && c.General.LogOutput != "stdout" {
		c.General.LogOutput = os.ExpandEnv(c.General.LogOutput)
	}
}

// Validate checks values that have no usable fallback
func (c *Config) Validate() error {
	switch c.History.Backend {
	case HistoryMemory, HistorySQLite:
	default:
		return fmt.Errorf("history.backend must be %q or %q, got %q", HistoryMemory, HistorySQLite, c.History.Backend)
	}
	if c.Console.HistoryN < 0 {
		return fmt.Errorf("console.history_n must not be negative, got %d", c.Console.HistoryN)
	}
	if c.History.Retention.Duration < 0 {
		return fmt.Errorf("history.retention must not be negative")
	}
	if c.Loader.Watch && c.Loader.Manifests == "" {
		return fmt.Errorf("loader.watch needs loader.manifests")
	}
	return nil
}
