package infrastructure

import (
	"io"
	"log/slog"

	"github.com/JaimeStill/catalyst/internal/config"
)

// NewLogger builds the process logger from cfg, writing to w.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
