package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "MINDCANVAS_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "mindcanvas.yaml"
	// ConfigDirName is the directory under XDG and /etc
	ConfigDirName = "mindcanvas"

	dirConfigName = "config.yaml"
)

// SearchPaths lists the config locations in priority order:
// $MINDCANVAS_CONFIG, ./mindcanvas.yaml, $XDG_CONFIG_HOME/mindcanvas,
// ~/.config/mindcanvas, /etc/mindcanvas. Unset variables are skipped.
func SearchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, ConfigDirName, dirConfigName))
	}
	if home := os.Getenv("HOME"); home != "" {
		p := filepath.Join(home, ".config", ConfigDirName, dirConfigName)
		if len(paths) == 0 || paths[len(paths)-1] != p {
			paths = append(paths, p)
		}
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, dirConfigName))
}

// FindConfigPath returns the first existing entry of SearchPaths, or ""
func FindConfigPath() string {
	for _, p := range SearchPaths() {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// DefaultConfigPath is where `config init` writes a new file: the user
// config dir when known, else the working directory
func DefaultConfigPath() string {
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, ConfigDirName, dirConfigName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName, dirConfigName)
	}
	return ConfigFileName
}

// EnsureConfigDir creates the parent directory of configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func userConfigDir() string {
	return os.Getenv("XDG_CONFIG_HOME")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
