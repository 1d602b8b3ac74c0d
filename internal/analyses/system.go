package analyses

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/catalyst/internal/workflow"
	"github.com/JaimeStill/catalyst/pkg/pagination"
)

// Analyzer runs the enrichment pipeline for one product.
// *workflow.Orchestrator satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, product map[string]any) (*workflow.Result, error)
}

// System defines the public contract for analysis domain operations.
type System interface {
	Handler(maxBatchBytes int64) *Handler

	// Analyze runs the pipeline for product and stores the result when a
	// database is configured.
	Analyze(ctx context.Context, product map[string]any) (*Analysis, error)
	// AnalyzeBatch analyzes products concurrently. A failing product is
	// reported in its item and does not affect the others.
	AnalyzeBatch(ctx context.Context, products []map[string]any) ([]BatchItem, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Analysis], error)

	Find(ctx context.Context, id uuid.UUID) (*Analysis, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
