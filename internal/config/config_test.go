package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv unsets key for the test so .env values can apply.
func clearEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nSERVER_PORT=8081\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	clearEnv(t, "LOG_LEVEL")
	clearEnv(t, "SERVER_PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.DotEnvLoaded || cfg.LogLevel != "debug" || cfg.ServerPort != "8081" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"LOG_LEVEL", "DB_PATH", "REDIS_DB", "DISCORD_GAME_WEBHOOK_NAME", "SNAPSHOT_BUCKET"} {
		clearEnv(t, k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DotEnvLoaded {
		t.Errorf("no .env present but DotEnvLoaded is set")
	}
	if cfg.LogLevel != "info" || cfg.DBPath != "tengoku.db" || cfg.Webhook.Username != "Tengoku Tracker" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Snapshot.Enabled() {
		t.Errorf("snapshot upload enabled without a bucket")
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "loud")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted LOG_LEVEL=loud")
	}
}
