// Package server provides the HTTP REST API for the job matcher.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/job-matcher/internal/dispatch"
	"github.com/jonathan/job-matcher/internal/matching"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		valErr      *ErrValidation
		matchValErr *matching.ValidationError
		dispErr     *dispatch.DispatchError
	)
	switch {
	case errors.As(err, &valErr), errors.As(err, &matchValErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &dispErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
