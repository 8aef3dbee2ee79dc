package api

import (
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/events"
	"github.com/phrazzld/pokepc/internal/store"
	"github.com/phrazzld/pokepc/internal/task"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking their types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	case store.IsNotFoundError(err):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, events.ErrMissingUser),
		errors.Is(err, path.ErrBadPattern):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, task.ErrQueueFull):
		return "Event queue is full, retry later"
	case errors.Is(err, task.ErrQueueClosed):
		return "Service is shutting down"
	case store.IsNotFoundError(err):
		return "Not found"
	case errors.Is(err, path.ErrBadPattern):
		return "Invalid key pattern"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, events.ErrMissingUser):
		return "Invalid request"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a message naming
// the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "nefield":
		return "must differ"
	case "numeric":
		return "must be numeric"
	case "max", "min":
		return "invalid length"
	default:
		return "validation failed"
	}
}
