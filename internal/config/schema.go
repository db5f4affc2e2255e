package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Editor   EditorConfig   `yaml:"editor"`
	Sessions SessionsConfig `yaml:"sessions"`
	Debug    DebugConfig    `yaml:"debug"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	CORSOrigin      string   `yaml:"cors_origin,omitempty"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
	Seed string `yaml:"seed,omitempty"` // seed file applied to an empty database
}

// EditorConfig holds the defaults of every editor session
type EditorConfig struct {
	Width        float64  `yaml:"width"`
	Height       float64  `yaml:"height"`
	ExportMode   string   `yaml:"export_mode"` // tree or flat
	Debounce     Duration `yaml:"debounce"`
	SaveInterval Duration `yaml:"save_interval"`
}

// SessionsConfig controls editor session lifetime
type SessionsConfig struct {
	IdleTTL         Duration `yaml:"idle_ttl"`
	CleanupInterval Duration `yaml:"cleanup_interval"`
}

// DebugConfig holds developer switches
type DebugConfig struct {
	Overlay     bool `yaml:"overlay"`
	WatchConfig bool `yaml:"watch_config"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // console or json
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
