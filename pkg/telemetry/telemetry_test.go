package telemetry_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/JaimeStill/catalyst/pkg/telemetry"
)

func TestConfigFinalize(t *testing.T) {
	tests := []struct {
		name     string
		cfg      telemetry.Config
		exporter string
		wantErr  error
		anyErr   bool
	}{
		{name: "defaults to stdout", cfg: telemetry.Config{}, exporter: telemetry.ExporterStdout},
		{name: "endpoint implies otlp", cfg: telemetry.Config{Endpoint: "collector:4318"}, exporter: telemetry.ExporterOTLP},
		{name: "unknown exporter", cfg: telemetry.Config{Exporter: "zipkin"}, wantErr: telemetry.ErrUnknownExporter},
		{name: "enabled otlp without endpoint", cfg: telemetry.Config{Enabled: true, Exporter: telemetry.ExporterOTLP}, anyErr: true},
		{name: "ratio out of range", cfg: telemetry.Config{SampleRatio: 2}, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Finalize(nil)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("expected error")
				}
			default:
				if err != nil {
					t.Fatalf("Finalize: %v", err)
				}
				if cfg.Exporter != tt.exporter {
					t.Errorf("Exporter = %q, want %q", cfg.Exporter, tt.exporter)
				}
			}
		})
	}
}

func TestConfigHeadersEnv(t *testing.T) {
	t.Setenv("TEST_OTEL_HEADERS", "api-key=secret, broken ,tenant=acme")
	cfg := &telemetry.Config{}
	if err := cfg.Finalize(&telemetry.Env{Headers: "TEST_OTEL_HEADERS"}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(cfg.Headers) != 2 || cfg.Headers["tenant"] != "acme" {
		t.Errorf("Headers = %v", cfg.Headers)
	}
}

func TestDisabledProvider(t *testing.T) {
	cfg := &telemetry.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	p, err := telemetry.New(context.Background(), cfg, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, span := p.Tracer("test").Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Error("disabled provider produced a recording span")
	}
	span.End()
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestProviderWithExporter(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	p := telemetry.NewWithExporter(exp)

	_, span := p.Tracer("catalyst/test").Start(context.Background(), "stage.name")
	span.End()

	spans := exp.GetSpans()
	if len(spans) != 1 || spans[0].Name != "stage.name" {
		t.Errorf("spans = %v", spans.Snapshots())
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
