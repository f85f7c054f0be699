// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	domainerrors "github.com/unifiedui/typed-docdb/internal/domain/errors"
)

// ErrorMiddleware handles error recovery and formatting.
type ErrorMiddleware struct{}

// NewErrorMiddleware creates a new ErrorMiddleware.
func NewErrorMiddleware() *ErrorMiddleware {
	return &ErrorMiddleware{}
}

// Recovery turns a panic into an internal error response.
func (m *ErrorMiddleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			logger := GetRequestLogger(c)
			logger.Error().
				Err(err).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("panic recovered")
			abort(c, domainerrors.NewInternalError("internal server error", err))
		}()
		c.Next()
	}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HandleError writes err as a JSON error response and aborts the chain.
// Domain errors keep their status; anything else is a 500 without details.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logger := GetRequestLogger(c)

	domainErr, ok := domainerrors.GetDomainError(err)
	if !ok {
		logger.Error().Err(err).Msg("unhandled error")
		abort(c, domainerrors.NewInternalError("internal server error", err))
		return
	}

	switch {
	case domainErr.HTTPStatus >= http.StatusInternalServerError:
		logger.Error().Err(err).Str("code", domainErr.Code).Msg("request failed")
	case domainerrors.IsNotFound(err), domainerrors.IsValidationError(err):
		logger.Debug().Err(err).Msg("request rejected")
	default:
		logger.Warn().Err(err).Str("code", domainErr.Code).Msg("request rejected")
	}
	abort(c, domainErr)
}

// BindError classifies a request binding failure. Bodies that fail binding
// tags are validation errors; bodies that do not decode are bad requests.
func BindError(err error) *domainerrors.DomainError {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return domainerrors.NewBadRequestError("malformed request body", err.Error())
	}
	fields := make([]string, 0, len(invalid))
	for _, fe := range invalid {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields = append(fields, fe.Namespace()+" "+rule)
	}
	return domainerrors.NewValidationError("invalid request body", strings.Join(fields, ", "))
}

// NotFound returns a 404 handler.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abort(c, domainerrors.NewNotFoundError("route", c.Request.URL.Path))
	}
}

// MethodNotAllowed returns a 405 handler.
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		abort(c, domainerrors.NewMethodNotAllowedError(c.Request.Method, c.Request.URL.Path))
	}
}

// abort writes e. Internal errors never expose their cause.
func abort(c *gin.Context, e *domainerrors.DomainError) {
	resp := ErrorResponse{Code: e.Code, Message: e.Message, Details: e.Details}
	if e.Code == domainerrors.ErrCodeInternal {
		resp.Details = ""
	}
	c.AbortWithStatusJSON(e.HTTPStatus, resp)
}
