package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names recognized by parseEnv.
const (
	envServerBaseURL = "PRICESCOUT_SERVER_URL"
	envStateDir      = "PRICESCOUT_STATE_DIR"
	envTrendingTTL   = "PRICESCOUT_TRENDING_TTL"
)

// parseEnv overlays Config with values from the process environment. A .env
// file in the working directory is loaded first, without overriding variables
// that are already set. Missing .env is not an error.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv(envServerBaseURL); ok && v != "" {
		cfg.ServerBaseURL = v
	}
	if v, ok := os.LookupEnv(envStateDir); ok && v != "" {
		cfg.StateDir = v
	}
	if v, ok := os.LookupEnv(envTrendingTTL); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TrendingCacheTTL = d
		}
	}
}
