// internal/config/discover.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound indicates no config file exists in any search location.
var ErrNotFound = errors.New("config not found")

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./gapscan.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "gapscan", "config.toml")
}

// DefaultCachePath returns the XDG-compliant probe cache location.
func DefaultCachePath() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./gapscan-cache.db"
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, "gapscan", "probe.db")
}

// Discover finds the config file using the standard search order.
// Search order:
//  1. GAPSCAN_CONFIG environment variable
//  2. ./gapscan.toml (current directory)
//  3. $XDG_CONFIG_HOME/gapscan/config.toml
//  4. /etc/gapscan/config.toml
func Discover() (string, error) {
	// 1. Check GAPSCAN_CONFIG env var
	if envPath := os.Getenv("GAPSCAN_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("GAPSCAN_CONFIG=%s: %w", envPath, err)
		}
		return envPath, nil
	}

	// Build search paths
	paths := []string{
		"./gapscan.toml",
		DefaultPath(),
		"/etc/gapscan/config.toml",
	}

	// 2-4. Check each path
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w, checked: %s", ErrNotFound, formatPaths(paths))
}

// Resolve loads the config at explicit if set, otherwise the discovered
// file, otherwise the built-in defaults. It returns the path used ("" for
// defaults).
func Resolve(explicit string) (*Config, string, error) {
	path := explicit
	if path == "" {
		found, err := Discover()
		if errors.Is(err, ErrNotFound) {
			return Default(), "", nil
		}
		if err != nil {
			return nil, "", err
		}
		path = found
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func formatPaths(paths []string) string {
	return strings.Join(paths, ", ")
}
