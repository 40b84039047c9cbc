package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WATCHPARTY_URL", "")
	t.Setenv("WATCHPARTY_SESSION_FILE", "")
	t.Setenv("WATCHPARTY_LOG_LEVEL", "")

	cfg := Load()
	if cfg.ServerURL != DefaultServerURL {
		t.Errorf("ServerURL = %q, want %q", cfg.ServerURL, DefaultServerURL)
	}
	if cfg.SessionPath == "" {
		t.Error("SessionPath should default to a concrete path")
	}
	if cfg.LogLevel != "" {
		t.Errorf("LogLevel = %q, want empty", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WATCHPARTY_URL", "https://party.example.com/api/")
	t.Setenv("WATCHPARTY_SESSION_FILE", "/tmp/wp-session.yaml")
	t.Setenv("WATCHPARTY_LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.ServerURL != "https://party.example.com/api" {
		t.Errorf("ServerURL = %q, want trailing slash trimmed", cfg.ServerURL)
	}
	if cfg.SessionPath != "/tmp/wp-session.yaml" {
		t.Errorf("SessionPath = %q", cfg.SessionPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid http", Config{ServerURL: "http://localhost:5000/api", SessionPath: "/tmp/s.yaml"}, false},
		{"valid https", Config{ServerURL: "https://party.example.com/api", SessionPath: "/tmp/s.yaml"}, false},
		{"not a url", Config{ServerURL: "localhost:5000", SessionPath: "/tmp/s.yaml"}, true},
		{"whitespace in url", Config{ServerURL: "http://bad host", SessionPath: "/tmp/s.yaml"}, true},
		{"empty session path", Config{ServerURL: "http://localhost:5000/api", SessionPath: ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger_DisabledByDefault(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{}
	log := cfg.Logger(&buf)

	log.Error().Msg("should not appear")
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestLogger_UnparseableLevelDisables(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogLevel: "chatty"}
	log := cfg.Logger(&buf)

	log.Error().Msg("should not appear")
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogLevel: "WARN"}
	log := cfg.Logger(&buf)

	log.Debug().Msg("filtered")
	log.Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "filtered") {
		t.Error("Debug output should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("Warn output missing, got %q", out)
	}
	if log.GetLevel() != zerolog.WarnLevel {
		t.Errorf("GetLevel() = %v, want warn", log.GetLevel())
	}
}
