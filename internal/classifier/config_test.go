package classifier_test

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/emotionwave/internal/classifier"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := classifier.Config{Command: "python3"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.TimeoutDuration() != 2*time.Minute {
		t.Errorf("timeout = %v, want 2m", cfg.TimeoutDuration())
	}
	if cfg.QueueTimeoutDuration() != 30*time.Second {
		t.Errorf("queue_timeout = %v, want 30s", cfg.QueueTimeoutDuration())
	}
	if cfg.MaxConcurrent != runtime.NumCPU() {
		t.Errorf("max_concurrent = %d, want %d", cfg.MaxConcurrent, runtime.NumCPU())
	}
	if cfg.MaxOutputBytes() != 1<<20 {
		t.Errorf("max_output = %d, want 1MB", cfg.MaxOutputBytes())
	}
	if cfg.ExposeDiagnostics {
		t.Error("expose_diagnostics should default to false")
	}
}

func TestConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_CLS_COMMAND", "/usr/bin/python3")
	t.Setenv("TEST_CLS_ARGS", "sentiment.py  --quiet")
	t.Setenv("TEST_CLS_MAX", "2")
	t.Setenv("TEST_CLS_DIAG", "true")

	env := &classifier.Env{
		Command:           "TEST_CLS_COMMAND",
		Args:              "TEST_CLS_ARGS",
		MaxConcurrent:     "TEST_CLS_MAX",
		ExposeDiagnostics: "TEST_CLS_DIAG",
	}

	cfg := classifier.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Command != "/usr/bin/python3" {
		t.Errorf("command = %q", cfg.Command)
	}
	if strings.Join(cfg.Args, "|") != "sentiment.py|--quiet" {
		t.Errorf("args = %q", cfg.Args)
	}
	if cfg.MaxConcurrent != 2 {
		t.Errorf("max_concurrent = %d, want 2", cfg.MaxConcurrent)
	}
	if !cfg.ExposeDiagnostics {
		t.Error("expose_diagnostics should be true")
	}
}

func TestConfigFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     classifier.Config
		wantErr string
	}{
		{"missing command", classifier.Config{}, "command required"},
		{"bad timeout", classifier.Config{Command: "x", Timeout: "soon"}, "invalid timeout"},
		{"zero queue timeout", classifier.Config{Command: "x", QueueTimeout: "0s"}, "queue_timeout must be positive"},
		{"bad max output", classifier.Config{Command: "x", MaxOutput: "lots"}, "invalid max_output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := classifier.Config{Command: "python3", Args: []string{"sentiment.py"}, Timeout: "2m"}
	base.Merge(&classifier.Config{Timeout: "30s", ExposeDiagnostics: true})

	if base.Command != "python3" || len(base.Args) != 1 {
		t.Errorf("zero overlay fields should be preserved: %+v", base)
	}
	if base.Timeout != "30s" {
		t.Errorf("timeout = %q, want 30s", base.Timeout)
	}
	if !base.ExposeDiagnostics {
		t.Error("expose_diagnostics should be enabled by overlay")
	}
}
