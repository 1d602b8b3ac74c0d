package storage_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/JaimeStill/catalyst/pkg/lifecycle"
	"github.com/JaimeStill/catalyst/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=catalyststore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/catalyststore;"

func newLocal(t *testing.T) storage.System {
	t.Helper()
	cfg := &storage.Config{Root: t.TempDir()}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys
}

func TestNewAzureReturnsSystem(t *testing.T) {
	cfg := &storage.Config{
		Backend:          storage.BackendAzure,
		ConnectionString: azuriteConnString,
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewAzureInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{
		Backend:          storage.BackendAzure,
		ContainerName:    "reference",
		ConnectionString: "not-a-connection-string",
	}

	if _, err := storage.New(cfg, slog.Default()); err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := storage.New(&storage.Config{Backend: "ftp"}, slog.Default())
	if !errors.Is(err, storage.ErrUnknownBackend) {
		t.Errorf("New() error = %v, want ErrUnknownBackend", err)
	}
}

func TestLocalRoundTrip(t *testing.T) {
	sys := newLocal(t)
	ctx := context.Background()

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	lc.WaitForStartup()

	const key = "taxonomy/product_categories.json"
	body := `{"Masks":["N95"]}`

	if err := sys.Upload(ctx, key, strings.NewReader(body), "application/json"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	exists, err := sys.Exists(ctx, key)
	if err != nil || !exists {
		t.Fatalf("Exists() = (%v, %v), want (true, nil)", exists, err)
	}

	data, err := storage.ReadAll(ctx, sys, key)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != body {
		t.Errorf("ReadAll() = %q, want %q", data, body)
	}

	if err := sys.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := sys.Download(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download() after delete error = %v, want ErrNotFound", err)
	}
	if err := sys.Delete(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete() after delete error = %v, want ErrNotFound", err)
	}
	if exists, _ := sys.Exists(ctx, key); exists {
		t.Error("Exists() after delete = true")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ErrNotFound maps to 404", storage.ErrNotFound, http.StatusNotFound},
		{"ErrEmptyKey maps to 400", storage.ErrEmptyKey, http.StatusBadRequest},
		{"ErrInvalidKey maps to 400", storage.ErrInvalidKey, http.StatusBadRequest},
		{"wrapped ErrNotFound maps to 404", fmt.Errorf("operation failed: %w", storage.ErrNotFound), http.StatusNotFound},
		{"unknown error maps to 500", fmt.Errorf("unexpected failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKeyValidation(t *testing.T) {
	cfg := &storage.Config{
		Backend:          storage.BackendAzure,
		ContainerName:    "reference",
		ConnectionString: azuriteConnString,
	}

	azureSys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	backends := map[string]storage.System{
		"local": newLocal(t),
		"azure": azureSys,
	}

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "reference/../secrets/key", storage.ErrInvalidKey},
		{"double dot in middle", "ref/..hidden/file.json", storage.ErrInvalidKey},
	}

	ctx := context.Background()

	for backend, sys := range backends {
		for _, tt := range tests {
			t.Run(backend+"/"+tt.name, func(t *testing.T) {
				err := sys.Upload(ctx, tt.key, strings.NewReader(""), "application/json")
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
				}

				var rc io.ReadCloser
				rc, err = sys.Download(ctx, tt.key)
				if rc != nil {
					rc.Close()
				}
				if !errors.Is(err, tt.wantErr) {
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
