package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danhigham/telefleet/internal/config"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`bot:
  token: "123:abc"
  allowed_users: [42, 43]
  language: fa
  min_interval: 1s
storage:
  driver: sqlite
broadcast:
  concurrency: 8
log_level: debug
`)
	if err := os.WriteFile(cfgPath, content, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Bot.Token != "123:abc" {
		t.Errorf("Token = %q, want %q", cfg.Bot.Token, "123:abc")
	}
	if len(cfg.Bot.AllowedUsers) != 2 || cfg.Bot.AllowedUsers[0] != 42 {
		t.Errorf("AllowedUsers = %v, want [42 43]", cfg.Bot.AllowedUsers)
	}
	if cfg.Bot.Language != "fa" {
		t.Errorf("Language = %q, want fa", cfg.Bot.Language)
	}
	if cfg.Bot.MinInterval != time.Second {
		t.Errorf("MinInterval = %v, want 1s", cfg.Bot.MinInterval)
	}
	if cfg.Storage.Path != filepath.Join(dir, "telefleet.db") {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Broadcast.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Broadcast.Concurrency)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Storage.Driver != config.DriverJSON {
		t.Errorf("Driver = %q, want json", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != filepath.Join(dir, "Sessions.json") {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if len(cfg.Broadcast.Reactions) != 3 {
		t.Errorf("Reactions = %v, want defaults", cfg.Broadcast.Reactions)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if err := cfg.RequireBot(); err == nil {
		t.Error("expected RequireBot error without a token")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TELEFLEET_BOT_TOKEN", "env-token")
	t.Setenv("TELEFLEET_STORAGE_DRIVER", "sqlite")

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Bot.Token != "env-token" {
		t.Errorf("Token = %q, want env-token", cfg.Bot.Token)
	}
	if cfg.Storage.Driver != config.DriverSQLite {
		t.Errorf("Driver = %q, want sqlite", cfg.Storage.Driver)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("storage:\n  driver: mongo\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(cfgPath); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestLoadConfig_Unreadable(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the file is a read error, not "missing".
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.Mkdir(cfgPath, 0700); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(cfgPath); err == nil {
		t.Error("expected error for unreadable config")
	}
}

func TestConfigDir(t *testing.T) {
	dir := config.Dir()
	if dir == "" {
		t.Error("Dir() returned empty string")
	}
}
