package prompts

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/catalyst/pkg/pagination"
)

type defaults struct {
	logger     *slog.Logger
	pagination pagination.Config
}

// NewDefaults returns a System that serves only the built-in instructions.
// It backs deployments without a database; every override operation fails
// with ErrPersistenceDisabled.
func NewDefaults(logger *slog.Logger, pagination pagination.Config) System {
	return &defaults{
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
	}
}

func (d *defaults) Handler() *Handler {
	return NewHandler(d, d.logger, d.pagination)
}

func (d *defaults) List(context.Context, pagination.PageRequest, Filters) (*pagination.PageResult[Prompt], error) {
	return nil, ErrPersistenceDisabled
}

func (d *defaults) Find(context.Context, uuid.UUID) (*Prompt, error) {
	return nil, ErrPersistenceDisabled
}

func (d *defaults) Create(context.Context, CreateCommand) (*Prompt, error) {
	return nil, ErrPersistenceDisabled
}

func (d *defaults) Update(context.Context, uuid.UUID, UpdateCommand) (*Prompt, error) {
	return nil, ErrPersistenceDisabled
}

func (d *defaults) Delete(context.Context, uuid.UUID) error {
	return ErrPersistenceDisabled
}

func (d *defaults) Activate(context.Context, uuid.UUID) (*Prompt, error) {
	return nil, ErrPersistenceDisabled
}

func (d *defaults) Deactivate(context.Context, uuid.UUID) (*Prompt, error) {
	return nil, ErrPersistenceDisabled
}

func (d *defaults) Instructions(_ context.Context, stage Stage) (string, error) {
	return Instructions(stage)
}

func (d *defaults) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}
