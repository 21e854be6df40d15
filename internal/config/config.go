package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	ListenAddr     string   `yaml:"listen_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	ClockSeconds          int `yaml:"clock_seconds"`
	MatchmakingIntervalMS int `yaml:"matchmaking_interval_ms"`
	GameTTLSec            int `yaml:"game_ttl_sec"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Default() *AppConfig {
	return &AppConfig{
		ListenAddr:            ":3000",
		AllowedOrigins:        []string{"http://localhost:5173"},
		ClockSeconds:          600,
		MatchmakingIntervalMS: 1000,
		GameTTLSec:            86400,
		LogLevel:              "info",
		LogFormat:             "legacy",
	}
}

// Load applies defaults, then the YAML file at path (skipped when path is
// empty), then environment overrides.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		c.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		c.AllowedOrigins = nil
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, s)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		c.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		c.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		c.LogFormat = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"CLOCK_SECONDS", &c.ClockSeconds},
		{"MATCHMAKING_INTERVAL_MS", &c.MatchmakingIntervalMS},
		{"GAME_TTL_SEC", &c.GameTTLSec},
	}
	for _, e := range ints {
		v := strings.TrimSpace(os.Getenv(e.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}
	return nil
}

func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("listen address is required")
	}
	if c.ClockSeconds <= 0 {
		return fmt.Errorf("clock_seconds must be positive, got %d", c.ClockSeconds)
	}
	if c.MatchmakingIntervalMS <= 0 {
		return fmt.Errorf("matchmaking_interval_ms must be positive, got %d", c.MatchmakingIntervalMS)
	}
	if c.GameTTLSec <= 0 {
		return fmt.Errorf("game_ttl_sec must be positive, got %d", c.GameTTLSec)
	}
	return nil
}

func (c *AppConfig) Clock() time.Duration { return time.Duration(c.ClockSeconds) * time.Second }

func (c *AppConfig) MatchmakingInterval() time.Duration {
	return time.Duration(c.MatchmakingIntervalMS) * time.Millisecond
}

func (c *AppConfig) GameTTL() time.Duration { return time.Duration(c.GameTTLSec) * time.Second }
