package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DIRBLE_API_KEY", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://api.dirble.com/v2" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 15*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
	if cfg.PollInterval != 15*time.Minute {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Fatalf("expected missing api key error")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DIRBLE_API_KEY", " key-123 ")
	t.Setenv("POLL_INTERVAL", "60")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "key-123" {
		t.Fatalf("APIKey = %q", cfg.APIKey)
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
	if got := cfg.Redacted().APIKey; got != "***" {
		t.Fatalf("Redacted APIKey = %q", got)
	}
	if cfg.APIKey != "key-123" {
		t.Fatalf("Redacted mutated original config")
	}
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("DIRBLE_API_KEY", "from-env")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("dirble-api-key", "", "")
	fs.String("log-level", "", "")
	if err := fs.Parse([]string{"--dirble-api-key", "from-flag"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "from-flag" {
		t.Fatalf("APIKey = %q, want from-flag", cfg.APIKey)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unset flag should not override default, got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsNonPositiveIntervals(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected poll_interval error")
	}
}
