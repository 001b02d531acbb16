package config

import "os"

// Environment variable names for overrides. The BOX_* names match what
// Box's own tooling reads, so credentials can be shared with it.
const (
	EnvConfig         = "BOXTEXT_CONFIG"
	EnvDeveloperToken = "BOX_DEVELOPER_TOKEN"
	EnvClientID       = "BOX_CLIENT_ID"
	EnvClientSecret   = "BOX_CLIENT_SECRET"
	EnvSubjectType    = "BOX_SUBJECT_TYPE"
	EnvSubjectID      = "BOX_SUBJECT_ID"
)

// applyEnvOverrides layers environment variables over the loaded
// config. Only set variables override; empty values are ignored.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvDeveloperToken); v != "" {
		cfg.Auth.DeveloperToken = v
	}

	if v := os.Getenv(EnvClientID); v != "" {
		cfg.Auth.ClientID = v
	}

	if v := os.Getenv(EnvClientSecret); v != "" {
		cfg.Auth.ClientSecret = v
	}

	if v := os.Getenv(EnvSubjectType); v != "" {
		cfg.Auth.SubjectType = v
	}

	if v := os.Getenv(EnvSubjectID); v != "" {
		cfg.Auth.SubjectID = v
	}
}
