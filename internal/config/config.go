// Package config resolves client configuration.
//
// Configuration comes from environment variables, optionally seeded
// from a .env file in the working directory:
//
//	WATCHPARTY_URL          - API base URL (default: http://localhost:5000/api)
//	WATCHPARTY_SESSION_FILE - session file path (default: ~/.watchparty/session.yaml)
//	WATCHPARTY_LOG_LEVEL    - zerolog level name; empty disables logging
package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/watchparty/wpc/internal/session"
)

// DefaultServerURL is the Watch Party API base URL used when
// WATCHPARTY_URL is unset.
const DefaultServerURL = "http://localhost:5000/api"

var urlPattern = regexp.MustCompile(`^https?://[^\s]+$`)

// Config is the resolved client configuration.
type Config struct {
	ServerURL   string
	SessionPath string
	LogLevel    string
}

// Load resolves the configuration. A .env file is honored when present;
// its absence is not an error.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerURL:   strings.TrimRight(os.Getenv("WATCHPARTY_URL"), "/"),
		SessionPath: os.Getenv("WATCHPARTY_SESSION_FILE"),
		LogLevel:    os.Getenv("WATCHPARTY_LOG_LEVEL"),
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.SessionPath == "" {
		cfg.SessionPath = session.DefaultPath()
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !urlPattern.MatchString(c.ServerURL) {
		return fmt.Errorf("WATCHPARTY_URL must be a valid HTTP(S) URL, got %q", c.ServerURL)
	}
	if c.SessionPath == "" {
		return fmt.Errorf("session file path is empty")
	}
	return nil
}

// Logger builds the process logger on w at the configured level. An
// empty or unparseable level disables logging entirely, which keeps the
// TUI's alternate screen clean.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	if c.LogLevel == "" {
		return zerolog.Nop()
	}
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.Nop()
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
