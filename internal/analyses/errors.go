package analyses

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/catalyst/pkg/repository"
)

// Domain errors for analysis operations.
var (
	ErrNotFound            = errors.New("analysis not found")
	ErrDuplicate           = errors.New("analysis already exists")
	ErrEmptyBatch          = errors.New("batch contains no products")
	ErrBatchTooLarge       = errors.New("batch exceeds the maximum size")
	ErrPersistenceDisabled = errors.New("analysis history requires a database")
)

// MapHTTPStatus maps analysis domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, repository.ErrConstraint):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmptyBatch), errors.Is(err, ErrBatchTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, ErrPersistenceDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
