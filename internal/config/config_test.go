package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"LISTEN_ADDR", "ALLOWED_ORIGINS", "REDIS_URL", "DATABASE_URL", "CLOCK_SECONDS",
	"MATCHMAKING_INTERVAL_MS", "GAME_TTL_SEC", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":3000" || cfg.Clock() != 10*time.Minute || cfg.MatchmakingInterval() != time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RedisURL != "" || cfg.DatabaseURL != "" {
		t.Fatalf("storage should be unset by default")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
listen_addr: ":8080"
allowed_origins: ["https://a.example"]
clock_seconds: 300
redis_url: redis://localhost:6379/1
log_format: json
`)
	t.Setenv("CLOCK_SECONDS", "60")
	t.Setenv("ALLOWED_ORIGINS", "https://b.example, https://c.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.RedisURL != "redis://localhost:6379/1" || cfg.LogFormat != "json" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.ClockSeconds != 60 {
		t.Fatalf("env should override file, clock = %d", cfg.ClockSeconds)
	}
	if strings.Join(cfg.AllowedOrigins, "|") != "https://b.example|https://c.example" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.GameTTL() != 24*time.Hour {
		t.Fatalf("unset file keys should keep defaults, ttl = %v", cfg.GameTTL())
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "missing file", file: "-"},
		{name: "bad yaml", file: "clock_seconds: [1"},
		{name: "non numeric env", env: map[string]string{"CLOCK_SECONDS": "ten"}},
		{name: "zero clock", file: "clock_seconds: 0"},
		{name: "negative interval", env: map[string]string{"MATCHMAKING_INTERVAL_MS": "-5"}},
		{name: "empty listen", file: `listen_addr: " "`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			switch tc.file {
			case "":
			case "-":
				path = filepath.Join(t.TempDir(), "absent.yaml")
			default:
				path = writeConfig(t, tc.file)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
