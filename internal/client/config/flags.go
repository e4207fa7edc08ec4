package config

import (
	"flag"
	"os"
	"time"

	"github.com/pricescout/pricescout/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-d string   directory for local client state (default from Config)
//	-t int      trending cache TTL in seconds (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the backend server")
	fs.StringVar(&cfg.StateDir, "d", cfg.StateDir, "directory for local client state")
	trendingTTL := fs.Int("t", int(cfg.TrendingCacheTTL.Seconds()), "trending cache TTL (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.TrendingCacheTTL = time.Duration(*trendingTTL) * time.Second
}
