package module_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/catalyst/pkg/module"
)

func TestNewValidatesPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		valid  bool
	}{
		{"/api", true},
		{"", false},
		{"/", false},
		{"api", false},
		{"/api/v1", false},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			_, err := module.New(tt.prefix, http.NotFoundHandler())
			if tt.valid && err != nil {
				t.Errorf("New(%q) error = %v", tt.prefix, err)
			}
			if !tt.valid && !errors.Is(err, module.ErrInvalidPrefix) {
				t.Errorf("New(%q) error = %v, want ErrInvalidPrefix", tt.prefix, err)
			}
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	inner := http.NewServeMux()
	inner.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api:" + r.URL.Path))
	})

	api, err := module.New("/api", inner)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "api")
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	if err := router.Mount(api); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("native"))
	})

	tests := []struct {
		path   string
		body   string
		module string
	}{
		{"/api/health", "api:/health", "api"},
		{"/api/health/", "api:/health", "api"},
		{"/healthz", "native", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
			if got := rec.Header().Get("X-Module"); got != tt.module {
				t.Errorf("X-Module = %q, want %q", got, tt.module)
			}
		})
	}

	if err := router.Mount(api); !errors.Is(err, module.ErrDuplicatePrefix) {
		t.Errorf("second Mount error = %v, want ErrDuplicatePrefix", err)
	}
	if got := router.Prefixes(); len(got) != 1 || got[0] != "/api" {
		t.Errorf("Prefixes() = %v", got)
	}
}
