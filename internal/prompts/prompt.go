// Package prompts owns the generation prompts of the enrichment pipeline:
// default instructions, fixed output contracts and system roles per stage,
// the pure builders that render them against a product, and the runtime
// overrides stored in public.prompts.
package prompts

import (
	"strings"

	"github.com/google/uuid"
)

// Prompt represents a named instruction override for a stage.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// CreateCommand carries the data needed to create a prompt override.
type CreateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// UpdateCommand carries the data needed to update a prompt override.
type UpdateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

func validate(stage Stage, instructions string) error {
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}
	if strings.TrimSpace(instructions) == "" {
		return ErrEmptyInstructions
	}
	return nil
}
