package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

const (
	envAPIURL    = "GITHUB_ACTIVITY_API_URL"
	envUserAgent = "GITHUB_ACTIVITY_USER_AGENT"
	envTimeout   = "GITHUB_ACTIVITY_TIMEOUT"
	envVerbose   = "GITHUB_ACTIVITY_VERBOSE"
)

type config struct {
	APIURL    string
	UserAgent string
	Timeout   time.Duration
	Verbose   bool
}

// loadConfig merges flags and environment. A flag set on the command line
// wins over the environment; empty values are left for the client defaults.
func loadConfig(flags *pflag.FlagSet) (config, error) {
	cfg := config{
		APIURL:    os.Getenv(envAPIURL),
		UserAgent: os.Getenv(envUserAgent),
	}

	if v := os.Getenv(envTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return config{}, fmt.Errorf("invalid %s %q: %w", envTimeout, v, err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv(envVerbose); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return config{}, fmt.Errorf("invalid %s %q: %w", envVerbose, v, err)
		}
		cfg.Verbose = b
	}

	if flags.Changed("api-url") {
		cfg.APIURL, _ = flags.GetString("api-url")
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}

	if cfg.Timeout < 0 {
		return config{}, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	return cfg, nil
}
