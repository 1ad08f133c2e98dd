package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("expected development environment, got %s", cfg.Environment)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("expected 1s tick interval, got %s", cfg.TickInterval)
	}
	if cfg.AlarmFile() != filepath.Join("./ser", "alarms.json") {
		t.Errorf("unexpected alarm file path %s", cfg.AlarmFile())
	}
	if cfg.HistoryDSN != filepath.Join("./ser", "history.db") {
		t.Errorf("unexpected history dsn %s", cfg.HistoryDSN)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HEIMDALL_STORE_DIR", "/tmp/wake")
	t.Setenv("HEIMDALL_TICK_MS", "250")
	t.Setenv("HEIMDALL_PLAYER_ARGS", "-autoexit")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AlarmFile() != "/tmp/wake/alarms.json" {
		t.Errorf("unexpected alarm file path %s", cfg.AlarmFile())
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("expected 250ms tick, got %s", cfg.TickInterval)
	}
	if len(cfg.PlayerArgs) != 1 || cfg.PlayerArgs[0] != "-autoexit" {
		t.Errorf("unexpected player args %v", cfg.PlayerArgs)
	}
}

func TestLoadRejectsZeroTick(t *testing.T) {
	t.Setenv("HEIMDALL_TICK_MS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero tick interval")
	}
}
