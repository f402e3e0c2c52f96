// Package config resolves ledinv settings from viper and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// appName names the per-user config directory.
const appName = "ledinv"

// ExpandPath resolves a leading ~ and $VAR references in path.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + strings.TrimPrefix(path, "~")
		}
	}
	return os.ExpandEnv(path)
}

// ConfigDir returns the directory searched for config.yaml:
// $XDG_CONFIG_HOME/ledinv when set, otherwise ~/.config/ledinv.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
