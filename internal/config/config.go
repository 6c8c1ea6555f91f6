package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is layered: optional YAML file, then environment overrides, then
// defaults for anything still unset. Integer *_SEC fields mirror the knobs
// the deployed telemetry feature recognizes.
type Config struct {
	AppPort string `yaml:"app_port" env:"APP_PORT"`

	RedisURL      string `yaml:"redis_url" env:"REDIS_URL"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`

	SessionTTLSec         int `yaml:"session_ttl_sec" env:"SESSION_TTL_SEC"`
	RecentPingLimit       int `yaml:"recent_ping_limit" env:"RECENT_PING_LIMIT"`
	RateLimitWindowSec    int `yaml:"rate_limit_window_sec" env:"RATE_LIMIT_WINDOW_SEC"`
	RateLimitMaxPerWindow int `yaml:"rate_limit_max_per_window" env:"RATE_LIMIT_MAX_PER_WINDOW"`
	GeoPingMinIntervalSec int `yaml:"geo_ping_min_interval_sec" env:"GEO_PING_MIN_INTERVAL_SEC"`

	// Snapshot archiving is enabled only when a DSN is configured.
	DatabaseDSN      string        `yaml:"database_dsn" env:"DATABASE_DSN"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval" env:"SNAPSHOT_INTERVAL"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	cfg = applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg Config) Config {
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if cfg.SessionTTLSec == 0 {
		cfg.SessionTTLSec = 45
	}
	if cfg.RecentPingLimit == 0 {
		cfg.RecentPingLimit = 50
	}
	if cfg.RateLimitWindowSec == 0 {
		cfg.RateLimitWindowSec = 60
	}
	if cfg.RateLimitMaxPerWindow == 0 {
		cfg.RateLimitMaxPerWindow = 20
	}
	if cfg.GeoPingMinIntervalSec == 0 {
		cfg.GeoPingMinIntervalSec = 60
	}
	if cfg.SnapshotInterval == 0 {
		cfg.SnapshotInterval = 15 * time.Minute
	}
	return cfg
}

func (c Config) validate() error {
	if c.RedisURL == "" && c.RedisAddr == "" {
		return errors.New("config: presence store endpoint is required (REDIS_URL or REDIS_ADDR)")
	}
	if c.SessionTTLSec < 0 {
		return errors.New("config: session_ttl_sec must be positive")
	}
	if c.RecentPingLimit < 0 {
		return errors.New("config: recent_ping_limit must be positive")
	}
	if c.RateLimitWindowSec < 0 {
		return errors.New("config: rate_limit_window_sec must be positive")
	}
	if c.RateLimitMaxPerWindow < 0 {
		return errors.New("config: rate_limit_max_per_window must be positive")
	}
	if c.GeoPingMinIntervalSec < 0 {
		return errors.New("config: geo_ping_min_interval_sec must be positive")
	}
	if c.SnapshotInterval < 0 {
		return errors.New("config: snapshot_interval must be positive")
	}
	return nil
}
