// Package config loads talewire runtime configuration from config.json
// with environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	envConfigPath = "TALEWIRE_CONFIG"
	envDataRoot   = "TALEWIRE_DATA_ROOT"
	envWatchEvery = "TALEWIRE_WATCH_REFRESH_SECONDS"

	defaultDataDirName = ".talewire/data"
	defaultRefresh     = 2
)

// Config is the root runtime configuration.
type Config struct {
	Data    DataConfig    `json:"data"`
	Watch   WatchConfig   `json:"watch,omitempty"`
	Logging LoggingConfig `json:"logging,omitempty"`
}

// DataConfig locates the slot document tree.
type DataConfig struct {
	Root string `json:"root"`
}

// WatchConfig controls the live slot viewer.
type WatchConfig struct {
	RefreshSeconds int `json:"refresh_seconds,omitempty"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// Load resolves config.json, unmarshals it, and applies environment
// overrides. A missing config file is not an error (the CLI runs fine on
// defaults), but a TALEWIRE_CONFIG path that does not exist is.
func Load() (*Config, error) {
	cfg := &Config{}

	path, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if root := strings.TrimSpace(os.Getenv(envDataRoot)); root != "" {
		cfg.Data.Root = root
	}
	if every := strings.TrimSpace(os.Getenv(envWatchEvery)); every != "" {
		if parsed, err := strconv.Atoi(every); err == nil && parsed > 0 {
			cfg.Watch.RefreshSeconds = parsed
		}
	}
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Data.Root) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.Data.Root = filepath.Join(home, defaultDataDirName)
	}
	if cfg.Watch.RefreshSeconds <= 0 {
		cfg.Watch.RefreshSeconds = defaultRefresh
	}
}

// findConfigPath resolves the active config file location.
//
// Precedence is TALEWIRE_CONFIG first, then cwd-local config.json, then
// ~/.talewire/config.json. An empty return means "use defaults".
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv(envConfigPath)); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("%s does not point to a file: %s", envConfigPath, value)
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, "config.json")
		if info, err := os.Stat(local); err == nil && !info.IsDir() {
			return local, nil
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		fallback := filepath.Join(home, ".talewire", "config.json")
		if info, err := os.Stat(fallback); err == nil && !info.IsDir() {
			return fallback, nil
		}
	}

	return "", nil
}
