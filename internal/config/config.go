// Package config provides configuration management for mindcanvas.
//
// Configuration comes from three layers, later ones winning:
//  1. Built-in defaults
//  2. The YAML config file
//  3. MINDCANVAS_* environment variables, optionally loaded from .env
//
// Config file locations (priority order):
//  1. $MINDCANVAS_CONFIG
//  2. ./mindcanvas.yaml
//  3. $XDG_CONFIG_HOME/mindcanvas/config.yaml
//  4. ~/.config/mindcanvas/config.yaml
//  5. /etc/mindcanvas/config.yaml
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvAddr         = "MINDCANVAS_ADDR"
	EnvDatabasePath = "MINDCANVAS_DB"
	EnvExportMode   = "MINDCANVAS_EXPORT_MODE"
	EnvDebugOverlay = "MINDCANVAS_DEBUG_OVERLAY"
	EnvLogLevel     = "MINDCANVAS_LOG_LEVEL"
	EnvLogFile      = "MINDCANVAS_LOG_FILE"
)

// LoadDotEnv loads environment variables from the given files, or ./.env.
// Missing files are ignored; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.finish(); err != nil {
			return nil, "", err
		}
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.finish(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

func (c *Config) finish() error {
	if err := c.applyEnv(); err != nil {
		return err
	}
	c.applyDefaults()
	return c.Validate()
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Server.CORSOrigin == "" {
		c.Server.CORSOrigin = "*"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./mindcanvas.db"
	}
	if c.Editor.Width == 0 {
		c.Editor.Width = 800
	}
	if c.Editor.Height == 0 {
		c.Editor.Height = 600
	}
	if c.Editor.ExportMode == "" {
		c.Editor.ExportMode = "tree"
	}
	if c.Editor.Debounce == 0 {
		c.Editor.Debounce = Duration(time.Second)
	}
	if c.Editor.SaveInterval == 0 {
		c.Editor.SaveInterval = Duration(30 * time.Second)
	}
	if c.Sessions.IdleTTL == 0 {
		c.Sessions.IdleTTL = Duration(time.Hour)
	}
	if c.Sessions.CleanupInterval == 0 {
		c.Sessions.CleanupInterval = Duration(10 * time.Minute)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// applyEnv overrides file values with MINDCANVAS_* variables
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvExportMode); v != "" {
		c.Editor.ExportMode = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv(EnvDebugOverlay); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebugOverlay, err)
		}
		c.Debug.Overlay = on
	}
	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.Editor.ExportMode {
	case "tree", "flat":
	default:
		return fmt.Errorf("editor.export_mode must be tree or flat, got %q", c.Editor.ExportMode)
	}
	if c.Editor.Width < 0 || c.Editor.Height < 0 {
		return fmt.Errorf("editor canvas size must not be negative")
	}
	if c.Editor.Debounce < 0 || c.Editor.SaveInterval < 0 {
		return fmt.Errorf("editor save timings must not be negative")
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Editor: %gx%g, export %s, debounce %s, save every %s\n",
		c.Editor.Width, c.Editor.Height, c.Editor.ExportMode,
		c.Editor.Debounce.Duration(), c.Editor.SaveInterval.Duration())
	summary += fmt.Sprintf("Sessions: idle %s, Debug overlay: %v", c.Sessions.IdleTTL.Duration(), c.Debug.Overlay)
	return summary
}
