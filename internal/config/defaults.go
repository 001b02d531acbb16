package config

// Default values for configuration options. These work out of the box
// for anyone with credentials in the environment.
const (
	defaultBaseURL  = "https://api.box.com/2.0"
	defaultTokenURL = "https://api.box.com/oauth2/token"
	defaultLogLevel = "info"
)

// DefaultConfig returns a Config populated with all default values.
// Used both as the starting point for TOML decoding (so unset fields
// retain defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:  defaultBaseURL,
			TokenURL: defaultTokenURL,
		},
		Logging: LoggingConfig{
			Level: defaultLogLevel,
		},
	}
}
