package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "diziquiz", "config.toml")
}

// DefaultDataDir returns the directory holding persisted quiz state.
func DefaultDataDir() string {
	return filepath.Join(XDGDataHome(), "diziquiz")
}

// DefaultStoreDir returns the directory used by the file key-value backend.
func DefaultStoreDir() string {
	return filepath.Join(DefaultDataDir(), "store")
}

// DefaultDBPath returns the default path for the SQLite key-value backend.
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "diziquiz.db")
}
