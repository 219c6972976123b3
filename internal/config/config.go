// Package config loads gateway configuration from an optional TOML file
// overridden by environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds everything the gateway needs to authenticate and serve.
type Config struct {
	TenantID     string `toml:"tenant_id"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	// DefaultUser is the identity used when an operation's "user" argument
	// is omitted.
	DefaultUser string `toml:"default_user"`
	LogLevel    string `toml:"log_level"`
	Debug       bool   `toml:"debug"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{LogLevel: "info"}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mcp-microsoft365", "config.toml")
}

// Load reads configuration from path (DefaultPath when empty), then applies
// M365_* environment variable overrides. A missing file is not an error;
// env-only configuration is the common deployment.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
			// No file at the default location; rely on the environment.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides file values with M365_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("M365_TENANT_ID"); v != "" {
		cfg.TenantID = v
	}
	if v := os.Getenv("M365_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("M365_CLIENT_SECRET"); v != "" {
		cfg.ClientSecret = v
	}
	if v := os.Getenv("M365_DEFAULT_USER"); v != "" {
		cfg.DefaultUser = v
	}
	if v := os.Getenv("M365_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("M365_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}

// Validate checks the credentials required to reach Microsoft Graph.
func (c *Config) Validate() error {
	var missing []string
	if c.TenantID == "" {
		missing = append(missing, "tenant_id")
	}
	if c.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
