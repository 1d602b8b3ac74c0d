package storage_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/catalyst/pkg/storage"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Backend != storage.BackendLocal {
		t.Errorf("backend: got %s, want local", cfg.Backend)
	}
	if cfg.Root != "data" {
		t.Errorf("root: got %s, want data", cfg.Root)
	}
	if cfg.ContainerName != "reference" {
		t.Errorf("container_name: got %s, want reference", cfg.ContainerName)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_BACKEND", "azure")
	t.Setenv("TEST_CONTAINER", "catalog")
	t.Setenv("TEST_CONN", "override-connection")

	env := &storage.Env{
		Backend:          "TEST_BACKEND",
		ContainerName:    "TEST_CONTAINER",
		ConnectionString: "TEST_CONN",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Backend != storage.BackendAzure {
		t.Errorf("backend: got %s, want azure", cfg.Backend)
	}
	if cfg.ContainerName != "catalog" {
		t.Errorf("container_name: got %s, want catalog", cfg.ContainerName)
	}
	if cfg.ConnectionString != "override-connection" {
		t.Errorf("connection_string: got %s, want override-connection", cfg.ConnectionString)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{
			name:    "azure without credentials",
			cfg:     storage.Config{Backend: storage.BackendAzure},
			wantErr: "connection_string or account_url required",
		},
		{
			name:    "azure with account url",
			cfg:     storage.Config{Backend: storage.BackendAzure, AccountURL: "https://acct.blob.core.windows.net"},
			wantErr: "",
		},
		{
			name:    "local needs nothing",
			cfg:     storage.Config{Backend: storage.BackendLocal},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	cfg := storage.Config{Backend: "ftp"}
	if err := cfg.Finalize(nil); !errors.Is(err, storage.ErrUnknownBackend) {
		t.Errorf("unknown backend error = %v, want ErrUnknownBackend", err)
	}
}

func TestMerge(t *testing.T) {
	cfg := storage.Config{Backend: storage.BackendLocal, Root: "data"}
	cfg.Merge(&storage.Config{Root: "/srv/catalyst"})

	if cfg.Backend != storage.BackendLocal {
		t.Errorf("backend: got %s, want local", cfg.Backend)
	}
	if cfg.Root != "/srv/catalyst" {
		t.Errorf("root: got %s, want /srv/catalyst", cfg.Root)
	}
}
