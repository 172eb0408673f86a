// Package config resolves lngtrack settings from viper, the environment and
// defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appName = "lngtrack"

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// ConfigDir is where the config file and OAuth token live.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return ExpandPath(filepath.Join("~", ".config", appName))
}

// DataDir is where the local database and run lock live.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return ExpandPath(filepath.Join("~", ".local", "share", appName))
}
