package analyses

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/catalyst/internal/catalog"
	"github.com/JaimeStill/catalyst/pkg/pagination"
	"github.com/JaimeStill/catalyst/pkg/query"
	"github.com/JaimeStill/catalyst/pkg/repository"
)

type repo struct {
	db         *sql.DB
	analyzer   Analyzer
	cfg        Config
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an analysis repository implementing the System interface.
// A nil db disables history: analyses still run but are not stored, and
// the history operations fail with ErrPersistenceDisabled.
func New(
	db *sql.DB,
	analyzer Analyzer,
	cfg Config,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		analyzer:   analyzer,
		cfg:        cfg,
		logger:     logger.With("system", "analyses"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxBatchBytes int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxBatchBytes)
}

func (r *repo) Analyze(ctx context.Context, product map[string]any) (*Analysis, error) {
	item := catalog.ItemNumber(product)
	start := time.Now()

	res, err := r.analyzer.Analyze(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("analyze product %q: %w", item, err)
	}

	a := newAnalysis(product, res, time.Since(start), item)
	if r.db == nil {
		return a, nil
	}

	stored, err := r.insert(ctx, a)
	if err != nil {
		r.logger.ErrorContext(ctx, "analysis not stored", "item_number", item, "error", err)
		return a, nil
	}

	r.logger.InfoContext(ctx, "analysis stored",
		"id", stored.ID,
		"item_number", stored.ItemNumber,
		"tax_code", stored.TaxCode,
		"errors", len(stored.Errors),
	)
	return stored, nil
}

func (r *repo) insert(ctx context.Context, a *Analysis) (*Analysis, error) {
	q := `
		INSERT INTO analyses(
			id, item_number, product, name_pattern, product_summary,
			product_description, keywords, main_category, subcategories,
			tax_code, tax_code_name, tax_code_confidence, tax_code_reasoning,
			total_tokens, processing_steps, errors, topology,
			processing_time_seconds
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)` +
		returning

	stored, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Analysis, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs(a), scanAnalysis)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &stored, nil
}

func (r *repo) AnalyzeBatch(ctx context.Context, products []map[string]any) ([]BatchItem, error) {
	if len(products) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(products) > r.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(products), r.cfg.MaxBatchSize)
	}

	items := make([]BatchItem, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.BatchConcurrency)

	for i, product := range products {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			items[i].Index = i
			a, err := r.Analyze(gctx, product)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Analysis = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze batch: %w", err)
	}

	r.logger.InfoContext(ctx, "batch analyzed", "products", len(products))
	return items, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Analysis], error) {
	if r.db == nil {
		return nil, ErrPersistenceDisabled
	}

	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ItemNumber", "NamePattern", "TaxCodeName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count analyses: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAnalysis)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	if r.db == nil {
		return nil, ErrPersistenceDisabled
	}

	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAnalysis)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.db == nil {
		return ErrPersistenceDisabled
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM analyses WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "analysis deleted", "id", id)
	return nil
}
