// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, storage, generation,
// embedding, vector index, reference data, tracing) that domain systems require.
package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/JaimeStill/catalyst/internal/config"
	"github.com/JaimeStill/catalyst/internal/index"
	"github.com/JaimeStill/catalyst/internal/taxonomy"
	"github.com/JaimeStill/catalyst/pkg/cache"
	"github.com/JaimeStill/catalyst/pkg/database"
	"github.com/JaimeStill/catalyst/pkg/lifecycle"
	"github.com/JaimeStill/catalyst/pkg/llm"
	"github.com/JaimeStill/catalyst/pkg/storage"
	"github.com/JaimeStill/catalyst/pkg/telemetry"
	"github.com/JaimeStill/catalyst/pkg/vector"
)

const indexCheckTimeout = 10 * time.Second

// Infrastructure holds the core systems required by all domain modules.
// The generation and index clients are built once per process and shared.
// Database and Cache are nil when disabled.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Generator llm.Generator
	Embedder  llm.Embedder
	Cache     cache.Cache
	Vectors   vector.Index
	Index     *index.Index
	Reference *taxonomy.Reference
	Telemetry *telemetry.Provider

	collection string
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems and loads the reference data but does not
// start them; call Start separately.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	return NewWithWriter(ctx, cfg, os.Stderr)
}

// NewWithWriter is New with log output sent to w. When a later system fails
// to initialize, the connections opened before it are closed.
func NewWithWriter(ctx context.Context, cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Logging, w)

	var (
		db     database.System
		conn   *sql.DB
		opened []closer
	)
	fail := func(err error) (*Infrastructure, error) {
		for i := len(opened) - 1; i >= 0; i-- {
			if cerr := opened[i].Close(); cerr != nil {
				logger.Warn("close failed", "system", opened[i].name, "error", cerr)
			}
		}
		return nil, err
	}

	if cfg.Database.Enabled {
		sys, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		db = sys
		conn = sys.Connection()
		opened = append(opened, closer{"database", conn})
	} else {
		logger.Warn("database disabled; analysis history and prompt overrides unavailable")
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fail(fmt.Errorf("storage init failed: %w", err))
	}

	gen, err := llm.New(&cfg.Generation)
	if err != nil {
		return fail(fmt.Errorf("generation init failed: %w", err))
	}

	inner, err := llm.NewEmbedder(&cfg.Embedding, &cfg.Generation)
	if err != nil {
		return fail(fmt.Errorf("embedding init failed: %w", err))
	}

	c, err := cache.New(&cfg.Cache)
	if err != nil {
		return fail(fmt.Errorf("cache init failed: %w", err))
	}

	var embedder llm.Embedder = inner
	if c != nil {
		opened = append(opened, closer{"cache", c})
		embedder = index.NewCachedEmbedder(inner, c, cfg.Embedding.Model, logger)
	}

	vectors, err := vector.New(&cfg.Vector, conn)
	if err != nil {
		return fail(fmt.Errorf("vector init failed: %w", err))
	}
	opened = append(opened, closer{"vector", vectors})

	ref, err := taxonomy.Load(ctx, store, &cfg.Reference, logger.With("system", "reference"))
	if err != nil {
		return fail(fmt.Errorf("reference data load failed: %w", err))
	}

	tp, err := telemetry.New(ctx, &cfg.Telemetry, cfg.Version, logger)
	if err != nil {
		return fail(fmt.Errorf("telemetry init failed: %w", err))
	}

	return &Infrastructure{
		Lifecycle:  lc,
		Logger:     logger,
		Database:   db,
		Storage:    store,
		Generator:  gen,
		Embedder:   embedder,
		Cache:      c,
		Vectors:    vectors,
		Index:      index.New(embedder, vectors, cfg.Vector.Dimension, &cfg.Index, logger),
		Reference:  ref,
		Telemetry:  tp,
		collection: cfg.Pipeline.Collection,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// The database ping and the index check run as startup hooks; connections,
// the cache, the vector store, and the tracer provider close on shutdown.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}

	i.Lifecycle.OnStartup(i.checkIndex)

	if i.Cache != nil {
		i.Lifecycle.CloseOnShutdown("cache", i.Cache, i.Logger)
	}
	i.Lifecycle.CloseOnShutdown("vector", i.Vectors, i.Logger)
	i.Lifecycle.CloseOnShutdown("telemetry", i.Telemetry, i.Logger)
	return nil
}

type closer struct {
	name string
	io.Closer
}

// Close releases resources without the lifecycle coordinator, for one-shot
// commands that never call Start.
func (i *Infrastructure) Close() {
	closers := []closer{{"vector", i.Vectors}, {"telemetry", i.Telemetry}}
	if i.Cache != nil {
		closers = append(closers, closer{"cache", i.Cache})
	}
	if i.Database != nil {
		closers = append(closers, closer{"database", i.Database.Connection()})
	}

	for _, c := range closers {
		if err := c.Close(); err != nil {
			i.Logger.Warn("close failed", "system", c.name, "error", err)
		}
	}
}

func (i *Infrastructure) checkIndex() {
	ctx, cancel := context.WithTimeout(i.Lifecycle.Context(), indexCheckTimeout)
	defer cancel()

	ok, err := i.Index.Connected(ctx, i.collection)
	switch {
	case err != nil:
		i.Logger.Error("vector index check failed", "collection", i.collection, "error", err)
	case !ok:
		i.Logger.Warn("vector collection missing; run catalyst seed", "collection", i.collection)
	default:
		i.Logger.Info("vector index connected", "collection", i.collection)
	}
}
