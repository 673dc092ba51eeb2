package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/emotionwave/pkg/lifecycle"
	"github.com/JaimeStill/emotionwave/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newLocal(t *testing.T) (storage.System, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "uploads")

	sys, err := storage.New(&storage.Config{Provider: storage.ProviderLocal, Path: root}, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lc := lifecycle.New()
	sys.Start(lc)
	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("startup: %v", err)
	}

	return sys, root
}

func TestLocalStartCreatesRoot(t *testing.T) {
	sys, root := newLocal(t)

	if !sys.Ready() {
		t.Error("local storage should be ready after startup")
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Errorf("root directory not created: %v", err)
	}
}

func TestLocalRoundTrip(t *testing.T) {
	sys, root := newLocal(t)
	ctx := context.Background()
	data := pngBytes(t)
	key := "1700000000000-abcd1234.png"

	if err := sys.Upload(ctx, key, bytes.NewReader(data), "image/png"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	locator, ok := sys.(storage.Locator)
	if !ok {
		t.Fatal("local storage should implement Locator")
	}
	path, err := locator.Path(key)
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if path != filepath.Join(root, key) {
		t.Errorf("Path() = %s, want %s", path, filepath.Join(root, key))
	}

	exists, err := sys.Exists(ctx, key)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v; want true", exists, err)
	}

	blob, err := sys.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	got, _ := io.ReadAll(blob.Body)
	blob.Body.Close()

	if !bytes.Equal(got, data) {
		t.Error("downloaded bytes differ from uploaded bytes")
	}
	if blob.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", blob.ContentType)
	}
	if blob.ContentLength != int64(len(data)) {
		t.Errorf("ContentLength = %d, want %d", blob.ContentLength, len(data))
	}

	if err := sys.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if exists, _ := sys.Exists(ctx, key); exists {
		t.Error("blob should not exist after Delete")
	}
}

func TestLocalUploadLeavesNoTempFiles(t *testing.T) {
	sys, root := newLocal(t)

	if err := sys.Upload(context.Background(), "a.png", bytes.NewReader(pngBytes(t)), "image/png"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	entries, _ := os.ReadDir(root)
	if len(entries) != 1 || entries[0].Name() != "a.png" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("root entries = %v, want [a.png]", names)
	}
}

func TestLocalUploadCancelled(t *testing.T) {
	sys, root := newLocal(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sys.Upload(ctx, "a.png", bytes.NewReader(pngBytes(t)), "image/png")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Upload() error = %v, want context.Canceled", err)
	}

	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Errorf("cancelled upload left %d entries", len(entries))
	}
}

func TestLocalMissingBlob(t *testing.T) {
	sys, _ := newLocal(t)
	ctx := context.Background()

	if _, err := sys.Download(ctx, "missing.png"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download() error = %v, want ErrNotFound", err)
	}
	if err := sys.Delete(ctx, "missing.png"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
	if exists, err := sys.Exists(ctx, "missing.png"); exists || err != nil {
		t.Errorf("Exists() = %v, %v; want false, nil", exists, err)
	}
}

func TestNewAzure(t *testing.T) {
	t.Run("connection string", func(t *testing.T) {
		sys, err := storage.New(&storage.Config{
			Provider:         storage.ProviderAzure,
			ContainerName:    "uploads",
			ConnectionString: azuriteConnString,
		}, discard())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if _, ok := sys.(storage.Locator); ok {
			t.Error("azure storage should not implement Locator")
		}
	})

	t.Run("invalid connection string", func(t *testing.T) {
		_, err := storage.New(&storage.Config{
			Provider:         storage.ProviderAzure,
			ContainerName:    "uploads",
			ConnectionString: "not-a-connection-string",
		}, discard())
		if err == nil {
			t.Fatal("expected error for invalid connection string, got nil")
		}
	})
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := storage.New(&storage.Config{Provider: "s3"}, discard()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestKeyValidation(t *testing.T) {
	localSys, _ := newLocal(t)
	azureSys, err := storage.New(&storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "uploads",
		ConnectionString: azuriteConnString,
	}, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "uploads/../secrets/key", storage.ErrInvalidKey},
		{"double dot prefix", "..hidden.png", storage.ErrInvalidKey},
		{"absolute", "/etc/passwd", storage.ErrInvalidKey},
		{"backslash", `a\b.png`, storage.ErrInvalidKey},
	}

	ctx := context.Background()

	for name, sys := range map[string]storage.System{"local": localSys, "azure": azureSys} {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/%s", name, tt.name), func(t *testing.T) {
				if err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "image/png"); !errors.Is(err, tt.wantErr) {
					t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
				}
				if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Download() error = %v, want %v", err, tt.wantErr)
				}
				if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
				}
				if _, err := sys.Exists(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Exists() error = %v, want %v", err, tt.wantErr)
				}
			})
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("download: %w", storage.ErrNotFound), http.StatusNotFound},
		{"empty key", storage.ErrEmptyKey, http.StatusBadRequest},
		{"invalid key", storage.ErrInvalidKey, http.StatusBadRequest},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
