// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Scan  ScanConfig  `toml:"scan"`
	Probe ProbeConfig `toml:"probe"`
	Cache CacheConfig `toml:"cache"`
	Log   LogConfig   `toml:"log"`
}

type ScanConfig struct {
	ThresholdLowerMS int64 `toml:"threshold_lower_ms"`
	ThresholdUpperMS int64 `toml:"threshold_upper_ms"`
	Workers          int   `toml:"workers"`
}

type ProbeConfig struct {
	MediaInfo string        `toml:"mediainfo"`
	Timeout   time.Duration `toml:"timeout"`
}

// CacheConfig controls the probe cache. Path defaults to DefaultCachePath;
// an explicit empty Path disables the cache.
type CacheConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			ThresholdLowerMS: 500,
			ThresholdUpperMS: 30000,
			Workers:          1,
		},
		Probe: ProbeConfig{
			MediaInfo: "mediainfo",
			Timeout:   30 * time.Second,
		},
		Cache: CacheConfig{
			Path: DefaultCachePath(),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads, parses, and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content, missing := substituteEnvVars(string(data))

	// Keys absent from the file keep their defaults, so an explicit
	// zero (e.g. threshold_lower_ms = 0) is honored.
	cfg := Default()
	if _, err := toml.Decode(content, cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, missing, nil
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces environment variable references and returns
// the names (or :? messages) of those that could not be resolved.
// Unresolved references are left unchanged.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name, op, arg := parts[1], parts[2], parts[3]

		value, ok := os.LookupEnv(name)
		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				missing = append(missing, fmt.Sprintf("%s: %s", name, strings.TrimSpace(arg)))
				return match
			}
			return value
		default:
			if !ok {
				missing = append(missing, name)
				return match
			}
			return value
		}
	})
	return result, missing
}
