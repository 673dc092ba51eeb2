package infrastructure_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/emotionwave/internal/config"
	"github.com/JaimeStill/emotionwave/internal/infrastructure"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(dir, "infra.db")
	cfg.Database.AutoMigrate = true
	cfg.Storage.Path = filepath.Join(dir, "uploads")
	cfg.Classifier.Command = "true"

	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func TestNewAndStart(t *testing.T) {
	cfg := sqliteConfig(t)

	var logs bytes.Buffer
	infra, err := infrastructure.NewWithWriter(cfg, &logs)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil || infra.Logger == nil || infra.Database == nil || infra.Storage == nil || infra.Classifier == nil {
		t.Fatal("all systems should be initialized")
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}
	defer infra.Lifecycle.Shutdown(5 * time.Second)

	if !infra.Database.Ready() || !infra.Storage.Ready() {
		t.Error("database and storage should be ready after startup")
	}

	var n int
	if err := infra.Database.Connection().QueryRow("SELECT COUNT(*) FROM analyses").Scan(&n); err != nil {
		t.Errorf("migrated analyses table should exist: %v", err)
	}
	if !strings.Contains(logs.String(), "system=database") {
		t.Errorf("logs should carry system attributes:\n%s", logs.String())
	}
}

func TestStartupFailureBlocksReadiness(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.Driver = "postgres"
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 1
	cfg.Database.Name = "emotionwave"
	cfg.Database.User = "emotionwave"
	cfg.Database.ConnTimeout = "1s"

	infra, err := infrastructure.NewWithWriter(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := infra.Lifecycle.WaitForStartup(); err == nil {
		t.Error("WaitForStartup() should fail when the database cannot open")
	}
	if infra.Lifecycle.Ready() {
		t.Error("lifecycle should not be ready")
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := infrastructure.NewLogger(&config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "system", "test")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("json handler output not JSON: %v", err)
	}
	if entry["msg"] != "shown" || entry["system"] != "test" {
		t.Errorf("entry = %v", entry)
	}
}
