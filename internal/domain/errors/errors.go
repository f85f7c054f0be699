// Package errors provides domain-specific error types and the mapping from
// document database failures to them.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// Error codes for domain errors.
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeConflict           = "CONFLICT"
	ErrCodePreconditionFailed = "PRECONDITION_FAILED"
	ErrCodeNotImplemented     = "NOT_IMPLEMENTED"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
)

// DomainError represents a domain-specific error.
type DomainError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, identifier string) *DomainError {
	return &DomainError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		Details:    identifier,
		HTTPStatus: http.StatusNotFound,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, details string) *DomainError {
	return &DomainError{
		Code:       ErrCodeValidation,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, err error) *DomainError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &DomainError{
		Code:       ErrCodeInternal,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewBadRequestError creates a new bad request error.
func NewBadRequestError(message string, details string) *DomainError {
	return &DomainError{
		Code:       ErrCodeBadRequest,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewConflictError creates a new conflict error.
func NewConflictError(message string, details string) *DomainError {
	return &DomainError{
		Code:       ErrCodeConflict,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusConflict,
	}
}

// NewServiceUnavailableError creates a new service unavailable error.
func NewServiceUnavailableError(service string, err error) *DomainError {
	return &DomainError{
		Code:       ErrCodeServiceUnavailable,
		Message:    fmt.Sprintf("%s is unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewMethodNotAllowedError reports a route that exists for other methods.
func NewMethodNotAllowedError(method, path string) *DomainError {
	return &DomainError{
		Code:       ErrCodeMethodNotAllowed,
		Message:    fmt.Sprintf("method %s not allowed", method),
		Details:    path,
		HTTPStatus: http.StatusMethodNotAllowed,
	}
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(operation string) *DomainError {
	return &DomainError{
		Code:       ErrCodeTimeout,
		Message:    fmt.Sprintf("%s timed out", operation),
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

// FromDocDB classifies an error returned by a docdb adapter. It understands
// the docdb sentinels, gRPC status codes (Firestore) and MongoDB driver
// errors. Unknown errors become internal errors.
func FromDocDB(operation string, err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := GetDomainError(err); ok {
		return domainErr
	}

	wrap := func(code, message string, httpStatus int) *DomainError {
		return &DomainError{
			Code:       code,
			Message:    message,
			Details:    err.Error(),
			HTTPStatus: httpStatus,
			Err:        err,
		}
	}

	switch {
	case errors.Is(err, docdb.ErrNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return wrap(ErrCodeNotFound, "document not found", http.StatusNotFound)
	case errors.Is(err, docdb.ErrPreconditionFailed):
		return wrap(ErrCodePreconditionFailed, "precondition failed", http.StatusPreconditionFailed)
	case errors.Is(err, docdb.ErrInvalidArgument), errors.Is(err, docdb.ErrForeignRef):
		return wrap(ErrCodeBadRequest, "invalid request", http.StatusBadRequest)
	case errors.Is(err, docdb.ErrUnsupported):
		return wrap(ErrCodeNotImplemented, "not supported by the configured backend", http.StatusNotImplemented)
	case errors.Is(err, docdb.ErrClosed):
		return wrap(ErrCodeServiceUnavailable, "document database is closed", http.StatusServiceUnavailable)
	case errors.Is(err, context.DeadlineExceeded):
		return wrap(ErrCodeTimeout, fmt.Sprintf("%s timed out", operation), http.StatusGatewayTimeout)
	case mongo.IsDuplicateKeyError(err):
		return wrap(ErrCodeConflict, "document already exists", http.StatusConflict)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.NotFound:
			return wrap(ErrCodeNotFound, "document not found", http.StatusNotFound)
		case codes.AlreadyExists, codes.Aborted:
			return wrap(ErrCodeConflict, "write conflict", http.StatusConflict)
		case codes.FailedPrecondition:
			return wrap(ErrCodePreconditionFailed, "precondition failed", http.StatusPreconditionFailed)
		case codes.InvalidArgument:
			return wrap(ErrCodeBadRequest, "invalid request", http.StatusBadRequest)
		case codes.Unavailable:
			return wrap(ErrCodeServiceUnavailable, "document database is unavailable", http.StatusServiceUnavailable)
		case codes.DeadlineExceeded:
			return wrap(ErrCodeTimeout, fmt.Sprintf("%s timed out", operation), http.StatusGatewayTimeout)
		case codes.Unimplemented:
			return wrap(ErrCodeNotImplemented, "not supported by the configured backend", http.StatusNotImplemented)
		}
	}

	return NewInternalError(fmt.Sprintf("failed to %s", operation), err)
}

// GetDomainError extracts the domain error from an error.
func GetDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	domainErr, ok := GetDomainError(err)
	return ok && domainErr.Code == ErrCodeNotFound
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	domainErr, ok := GetDomainError(err)
	return ok && domainErr.Code == ErrCodeValidation
}
