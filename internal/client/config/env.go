package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	envServerBaseURL  = "APPTBOOK_SERVER_URL"
	envRequestTimeout = "APPTBOOK_TIMEOUT"
	envDatabasePath   = "APPTBOOK_DB_PATH"
)

// parseEnv overlays Config with values from the process environment. A .env
// file in the working directory is loaded first if present; its absence is
// not an error.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv(envServerBaseURL); v != "" {
		cfg.ServerBaseURL = v
	}
	if v := os.Getenv(envRequestTimeout); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			cfg.RequestTimeout = time.Duration(seconds) * time.Second
		}
	}
	if v := os.Getenv(envDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
}
