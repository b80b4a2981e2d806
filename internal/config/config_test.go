package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if !cfg.Cache.StaleOnError {
		t.Error("Cache.StaleOnError should default to true")
	}
	if cfg.SeasonType != "Regular Season" {
		t.Errorf("SeasonType = %q", cfg.SeasonType)
	}
	if cfg.StatsAPI.RequestDelay != 600*time.Millisecond {
		t.Errorf("StatsAPI.RequestDelay = %v", cfg.StatsAPI.RequestDelay)
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("Serve.Addr = %q", cfg.Serve.Addr)
	}
	if filepath.Base(cfg.DBPath()) != DefaultDBName {
		t.Errorf("DBPath = %q", cfg.DBPath())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
data_dir: ` + dir + `
season: 2023-24
cache:
  ttl: 15m
  keep: 5
stats_api:
  timeout: 10s
output:
  color: false
serve:
  seasons: [2023-24, 2024-25]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Season != "2023-24" {
		t.Errorf("Season = %q", cfg.Season)
	}
	if cfg.Cache.TTL != 15*time.Minute || cfg.Cache.Keep != 5 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.StatsAPI.Timeout != 10*time.Second {
		t.Errorf("StatsAPI.Timeout = %v", cfg.StatsAPI.Timeout)
	}
	if cfg.StatsAPI.BaseURL != DefaultStatsAPI.BaseURL {
		t.Errorf("StatsAPI.BaseURL = %q, want default", cfg.StatsAPI.BaseURL)
	}
	if cfg.Output.Color {
		t.Error("Output.Color should be false")
	}
	if len(cfg.Serve.Seasons) != 2 {
		t.Errorf("Serve.Seasons = %v", cfg.Serve.Seasons)
	}
	if cfg.DBPath() != filepath.Join(dir, DefaultDBName) {
		t.Errorf("DBPath = %q", cfg.DBPath())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COURTSIDE_CACHE_TTL", "30m")
	t.Setenv("COURTSIDE_LOG_LEVEL", "debug")
	t.Setenv("COURTSIDE_SEASON", "2022-23")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("Cache.TTL = %v, want 30m", cfg.Cache.TTL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Season != "2022-23" {
		t.Errorf("Season = %q", cfg.Season)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("cache: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}
