package prompts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/catalyst/pkg/repository"
)

// Domain errors for prompt operations.
var (
	ErrNotFound            = errors.New("prompt not found")
	ErrDuplicate           = errors.New("prompt name already exists")
	ErrInvalidStage        = errors.New("unknown prompt stage")
	ErrEmptyInstructions   = errors.New("instructions must not be empty")
	ErrPersistenceDisabled = errors.New("prompt overrides require a database")
)

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, repository.ErrConstraint):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidStage), errors.Is(err, ErrEmptyInstructions):
		return http.StatusBadRequest
	case errors.Is(err, ErrPersistenceDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
