// Package config loads boxtext configuration from a TOML file with
// environment-variable overrides layered on top: defaults -> config
// file -> environment. CLI flags are applied by the commands
// themselves and always win.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrNoCredentials is returned when neither a developer token nor a
// client-credentials pair is configured. Fatal at startup, before any
// API call is attempted.
var ErrNoCredentials = errors.New("config: no Box credentials configured")

// Config is the full boxtext configuration.
type Config struct {
	Auth    AuthConfig    `toml:"auth"`
	API     APIConfig     `toml:"api"`
	Loader  LoaderConfig  `toml:"loader"`
	Logging LoggingConfig `toml:"logging"`
}

// AuthConfig holds Box credentials: either a developer token, or a
// client-credentials grant (client ID/secret plus subject).
type AuthConfig struct {
	DeveloperToken string `toml:"developer_token"`
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	SubjectType    string `toml:"subject_type"` // "enterprise" or "user"
	SubjectID      string `toml:"subject_id"`
}

// APIConfig holds endpoint overrides, mainly for testing against a
// local stub server.
type APIConfig struct {
	BaseURL  string `toml:"base_url"`
	TokenURL string `toml:"token_url"`
}

// LoaderConfig holds retrieval tuning surfaced to users.
type LoaderConfig struct {
	CharacterLimit int `toml:"character_limit"`
	PageSize       int `toml:"page_size"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// HasCredentials reports whether any usable credential is configured.
func (a AuthConfig) HasCredentials() bool {
	return a.DeveloperToken != "" || (a.ClientID != "" && a.ClientSecret != "")
}

// Load reads and parses a TOML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise
// returns a Config populated with defaults. Supports the zero-config
// case where credentials come entirely from the environment.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment. A .env file in the working
// directory is folded into the environment first, if present.
func Resolve(explicitPath string) (*Config, error) {
	// Missing .env is the common case, not an error.
	_ = godotenv.Load()

	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	cfg, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}
