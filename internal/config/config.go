// Package config loads server settings from defaults, an optional .env file,
// the environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DefaultAPIBaseURL is the backend used when none is configured.
const DefaultAPIBaseURL = "https://assignment2.swafe.dk"

// EnvProduction is the Env value that turns on secure cookies and JSON logs.
const EnvProduction = "production"

// MinSessionKeyLen is the shortest accepted session signing key, in bytes.
const MinSessionKeyLen = 32

// Config holds every server setting.
type Config struct {
	APIBaseURL         string
	Addr               string
	Env                string
	LogLevel           string
	BackendTimeout     time.Duration
	SlowRequestMs      int
	SlowBackendMs      int
	RateLimitPerSecond int
	// SessionKey signs the session cookie. Empty is allowed outside production;
	// the server then signs with a random per-process key.
	SessionKey string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		APIBaseURL:         DefaultAPIBaseURL,
		Addr:               ":8080",
		Env:                "development",
		LogLevel:           "info",
		BackendTimeout:     15 * time.Second,
		SlowRequestMs:      200,
		SlowBackendMs:      500,
		RateLimitPerSecond: 10,
	}
}

// Load builds a Config from defaults, the .env file, the environment and args.
// args excludes the program name. A missing default .env file is ignored;
// a missing file named with --env-file is an error.
// PRE: none
// POST: Returns a validated Config or an error naming the bad setting
func Load(args []string) (Config, error) {
	cfg := Defaults()

	flags := pflag.NewFlagSet("fitdash", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "path to a .env file")
	apiURL := flags.String("api-url", "", "backend base URL")
	addr := flags.String("addr", "", "listen address")
	env := flags.String("env", "", "environment name (production enables secure cookies)")
	logLevel := flags.String("log-level", "", "debug, info, warn or error")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	dotenv, err := godotenv.Read(*envFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || flags.Changed("env-file") {
			return Config{}, fmt.Errorf("reading %s: %w", *envFile, err)
		}
		dotenv = map[string]string{}
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	if flags.Changed("api-url") {
		cfg.APIBaseURL = *apiURL
	}
	if flags.Changed("addr") {
		cfg.Addr = *addr
	}
	if flags.Changed("env") {
		cfg.Env = *env
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) string) error {
	if v := lookup("FITDASH_API_URL"); v != "" {
		c.APIBaseURL = v
	} else if v := lookup("API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := lookup("FITDASH_ADDR"); v != "" {
		c.Addr = v
	}
	if v := lookup("FITDASH_ENV"); v != "" {
		c.Env = v
	}
	if v := lookup("FITDASH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := lookup("FITDASH_SESSION_KEY"); v != "" {
		c.SessionKey = v
	}
	if v := lookup("FITDASH_BACKEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FITDASH_BACKEND_TIMEOUT: %w", err)
		}
		c.BackendTimeout = d
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"FITDASH_SLOW_REQUEST_MS", &c.SlowRequestMs},
		{"FITDASH_SLOW_BACKEND_MS", &c.SlowBackendMs},
		{"FITDASH_RATE_LIMIT", &c.RateLimitPerSecond},
	}
	for _, it := range ints {
		v := lookup(it.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s: must be a positive integer, got %q", it.key, v)
		}
		*it.dst = n
	}
	return nil
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || c.APIBaseURL == "" || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("api url %q must be an absolute http(s) URL", c.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url %q must use http or https", c.APIBaseURL)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.BackendTimeout <= 0 {
		return errors.New("backend timeout must be positive")
	}
	if c.SessionKey == "" && c.IsProduction() {
		return errors.New("FITDASH_SESSION_KEY is required in production")
	}
	if c.SessionKey != "" && len(c.SessionKey) < MinSessionKeyLen {
		return fmt.Errorf("session key must be at least %d bytes", MinSessionKeyLen)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: must be debug, info, warn or error", c.LogLevel)
	}
	return level, nil
}

// IsProduction reports whether Env is production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// SecureCookies reports whether session cookies must carry the Secure flag.
func (c Config) SecureCookies() bool {
	return c.IsProduction()
}

// SlowRequest returns the request duration logged as slow.
func (c Config) SlowRequest() time.Duration {
	return time.Duration(c.SlowRequestMs) * time.Millisecond
}

// SlowBackendCall returns the backend call duration logged as slow.
func (c Config) SlowBackendCall() time.Duration {
	return time.Duration(c.SlowBackendMs) * time.Millisecond
}
