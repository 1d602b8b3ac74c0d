// Package cache stores opaque byte values under string keys, used to keep
// embedding vectors for repeated texts out of the embedding service.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrUnknownBackend = errors.New("unknown cache backend")

// Cache is a key/value store with a fixed entry lifetime.
// Get reports found=false for a missing or expired key without an error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// New creates the configured cache, or nil when caching is disabled.
func New(cfg *Config) (Cache, error) {
	switch cfg.Backend {
	case BackendNone:
		return nil, nil
	case BackendMemory:
		return NewMemory(cfg.TTLDuration()), nil
	case BackendRedis:
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

type entry struct {
	value   []byte
	expires time.Time
}
