package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := applyDefaults(Config{})

	if cfg.AppPort != "8080" {
		t.Errorf("app port = %s, want 8080", cfg.AppPort)
	}
	if cfg.SessionTTLSec != 45 {
		t.Errorf("session ttl = %d, want 45", cfg.SessionTTLSec)
	}
	if cfg.RecentPingLimit != 50 {
		t.Errorf("ping limit = %d, want 50", cfg.RecentPingLimit)
	}
	if cfg.RateLimitWindowSec != 60 {
		t.Errorf("rate window = %d, want 60", cfg.RateLimitWindowSec)
	}
	if cfg.RateLimitMaxPerWindow != 20 {
		t.Errorf("rate max = %d, want 20", cfg.RateLimitMaxPerWindow)
	}
	if cfg.GeoPingMinIntervalSec != 60 {
		t.Errorf("geo throttle = %d, want 60", cfg.GeoPingMinIntervalSec)
	}
	if cfg.SnapshotInterval != 15*time.Minute {
		t.Errorf("snapshot interval = %v, want 15m", cfg.SnapshotInterval)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := applyDefaults(Config{})
	if err := cfg.validate(); err == nil {
		t.Error("expected error for missing store endpoint")
	}

	cfg.RedisAddr = "localhost:6379"
	if err := cfg.validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.SessionTTLSec = -1
	if err := cfg.validate(); err == nil {
		t.Error("expected error for negative session ttl")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SESSION_TTL_SEC", "90")
	t.Setenv("RATE_LIMIT_MAX_PER_WINDOW", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.SessionTTLSec != 90 {
		t.Errorf("session ttl = %d, want 90", cfg.SessionTTLSec)
	}
	if cfg.RateLimitMaxPerWindow != 5 {
		t.Errorf("rate max = %d, want 5", cfg.RateLimitMaxPerWindow)
	}
	if cfg.AppPort != "8080" {
		t.Errorf("app port = %s, want default 8080", cfg.AppPort)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "app_port: \"9090\"\nredis_addr: \"localhost:6379\"\nrecent_ping_limit: 10\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("APP_PORT", "7070") // env wins over file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.AppPort != "7070" {
		t.Errorf("app port = %s, want env override 7070", cfg.AppPort)
	}
	if cfg.RecentPingLimit != 10 {
		t.Errorf("ping limit = %d, want file value 10", cfg.RecentPingLimit)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("redis addr = %s, want file value", cfg.RedisAddr)
	}
}
