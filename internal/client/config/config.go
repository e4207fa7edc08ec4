// Package config builds the runtime configuration of the pricescout CLI.
//
// Sources are overlaid in order, later taking precedence:
//
//	defaults -> .env / environment -> JSON file (-c/-config) -> flags
package config

import "time"

// Config holds runtime settings for the pricescout CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API.
//   - StateDir: directory for the local client database.
//   - TrendingCacheTTL: how long a fetched trending list stays fresh.
//   - RequestTimeout: per-request deadline for backend calls.
//   - OnlineCheckInterval: how often the connectivity watcher pings the
//     backend.
type Config struct {
	ServerBaseURL       string
	StateDir            string
	TrendingCacheTTL    time.Duration
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:5000"
	c.StateDir = "."
	c.TrendingCacheTTL = 5 * time.Minute
	c.RequestTimeout = 15 * time.Second
	c.OnlineCheckInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (including a .env file if present), JSON (if present) and
// command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
