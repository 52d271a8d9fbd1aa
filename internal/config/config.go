// Package config loads the optional variant configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/variant-dev/variant/internal/variant"
)

// EnvConfigPath overrides the configuration file location.
const EnvConfigPath = "VARIANT_CONFIG"

// Config holds user settings. Every field has a usable default.
type Config struct {
	// SSHRoot is the directory whose subdirectories are variants.
	SSHRoot string `toml:"ssh_root"`

	// CachePath is the metadata cache file.
	CachePath string `toml:"cache_path"`

	// Scope is the default git config scope: "global" or "local".
	Scope string `toml:"scope"`

	// LogLevel and LogFormat configure logging (see internal/logging).
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Commands names the external binaries.
	Commands Commands `toml:"commands"`
}

// Commands names the external tools variant invokes.
type Commands struct {
	Git      string `toml:"git"`
	SSHAgent string `toml:"ssh_agent"`
	SSHAdd   string `toml:"ssh_add"`
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		SSHRoot:   "~/.ssh",
		CachePath: "~/.variant",
		Scope:     "global",
		LogLevel:  "warn",
		LogFormat: "auto",
		Commands: Commands{
			Git:      "git",
			SSHAgent: "ssh-agent",
			SSHAdd:   "ssh-add",
		},
	}
}

// Path returns $VARIANT_CONFIG, or <user config dir>/variant/config.toml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "variant", "config.toml"), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600) //nolint:gosec // G304: path from user config dir
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Validate rejects settings the commands cannot use.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Scope) {
	case "global", "local":
	default:
		return fmt.Errorf("scope %q: must be global or local", c.Scope)
	}
	if c.Commands.Git == "" || c.Commands.SSHAgent == "" || c.Commands.SSHAdd == "" {
		return fmt.Errorf("commands: git, ssh_agent and ssh_add must not be empty")
	}
	return nil
}

// ExpandHome replaces a leading "~/" (or a lone "~") with the home directory.
// An unresolvable home is reported as variant.ErrNoHome.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w: %v", path, variant.ErrNoHome, err)
	}
	if home == "" {
		return "", fmt.Errorf("expanding %s: %w", path, variant.ErrNoHome)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
