// Package server provides the web page and the HTTP API of the career advisor.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/career-advisor/internal/analysis"
	"github.com/jonathan/career-advisor/internal/sharelink"
	"github.com/jonathan/career-advisor/internal/types"
)

// Error codes returned in the "error" field of JSON error bodies.
const (
	CodeEmptyInput       = "empty_input"
	CodeRemoteService    = "remote_service_error"
	CodeInvalidShareLink = "invalid_share_link"
	CodeInvalidAnalysis  = "invalid_analysis"
	CodeInvalidRequest   = "invalid_request"
	CodeInternal         = "internal_error"
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
		remoteErr *analysis.RemoteServiceError
		linkErr   *sharelink.InvalidShareLinkError
		dataErr   *types.ValidationError
		reqErr    *ErrValidation
	)
	switch {
	case errors.Is(err, analysis.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway
	case errors.As(err, &linkErr), errors.As(err, &dataErr), errors.As(err, &reqErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns the machine-readable code for an error.
func ErrorCode(err error) string {
	var (
		remoteErr *analysis.RemoteServiceError
		linkErr   *sharelink.InvalidShareLinkError
		dataErr   *types.ValidationError
		reqErr    *ErrValidation
	)
	switch {
	case errors.Is(err, analysis.ErrEmptyInput):
		return CodeEmptyInput
	case errors.As(err, &remoteErr):
		return CodeRemoteService
	case errors.As(err, &linkErr):
		return CodeInvalidShareLink
	case errors.As(err, &dataErr):
		return CodeInvalidAnalysis
	case errors.As(err, &reqErr):
		return CodeInvalidRequest
	default:
		return CodeInternal
	}
}
