package config

import "time"

// Config holds runtime settings for the apptbook CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API, including /api.
//   - RequestTimeout: bound on every network call (login, refresh, verify,
//     ordinary requests).
//   - DatabasePath: path of the local SQLite file holding the session.
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
	DatabasePath   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:5000/api"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "apptbook.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment (optionally via a .env file), a JSON file (if
// present), and command-line flags. Later sources take precedence over
// earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
