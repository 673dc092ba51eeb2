package storage_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/emotionwave/pkg/storage"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderLocal {
		t.Errorf("Provider = %q, want local", cfg.Provider)
	}
	if cfg.Path != "uploads" {
		t.Errorf("Path = %q, want uploads", cfg.Path)
	}
	if cfg.ContainerName != "uploads" {
		t.Errorf("ContainerName = %q, want uploads", cfg.ContainerName)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_STORAGE_PROVIDER", "azure")
	t.Setenv("TEST_STORAGE_ACCOUNT_URL", "https://acct.blob.core.windows.net/")

	env := &storage.Env{
		Provider:   "TEST_STORAGE_PROVIDER",
		AccountURL: "TEST_STORAGE_ACCOUNT_URL",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderAzure {
		t.Errorf("Provider = %q, want azure", cfg.Provider)
	}
	if cfg.AccountURL != "https://acct.blob.core.windows.net/" {
		t.Errorf("AccountURL = %q", cfg.AccountURL)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{"azure without credentials", storage.Config{Provider: "azure"}, "connection_string or account_url required"},
		{"unknown provider", storage.Config{Provider: "s3"}, "unsupported provider"},
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

func TestMerge(t *testing.T) {
	base := storage.Config{Provider: "local", Path: "uploads", ContainerName: "uploads"}
	base.Merge(&storage.Config{Provider: "azure", ConnectionString: "conn"})

	if base.Provider != "azure" || base.ConnectionString != "conn" {
		t.Errorf("overlay not applied: %+v", base)
	}
	if base.Path != "uploads" || base.ContainerName != "uploads" {
		t.Errorf("zero overlay fields should be preserved: %+v", base)
	}
}
