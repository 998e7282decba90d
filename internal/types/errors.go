package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode categorizes a failure. The code's prefix, not the individual
// constant, decides the HTTP status it maps to, so new codes pick up a
// sensible status by naming convention alone.
type ErrorCode string

// Handlers and services reference these constants; raw code strings do not
// appear outside this file.
const (
	// Validation (400)
	ErrCodeValidationMissingCity  ErrorCode = "validation_missing_city"
	ErrCodeValidationInvalidDays  ErrorCode = "validation_invalid_days"
	ErrCodeValidationInvalidUnit  ErrorCode = "validation_invalid_unit"
	ErrCodeValidationInvalidDate  ErrorCode = "validation_invalid_date"
	ErrCodeValidationDateRange    ErrorCode = "validation_date_range_invalid"
	ErrCodeValidationInvalidQuery ErrorCode = "validation_invalid_query"

	// Not Found (404)
	ErrCodeNotFoundCity ErrorCode = "not_found_city"

	// Upstream (502/504)
	ErrCodeUpstreamStatus      ErrorCode = "upstream_api_error"
	ErrCodeUpstreamConnection  ErrorCode = "upstream_connection_error"
	ErrCodeUpstreamMalformed   ErrorCode = "upstream_malformed_response"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"

	// Soft availability. Never fatal to a surrounding flow: callers catch it,
	// substitute a sentinel or warning, and continue.
	ErrCodeDataUnavailable ErrorCode = "data_unavailable"

	// Comparison (502) — a single city failure escalated to the whole pair.
	ErrCodeCompareIncomplete ErrorCode = "compare_incomplete"

	// Internal (500)
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// HTTPStatus resolves the code to an HTTP status by prefix. Unknown codes
// fall through to 500 rather than leaking something misleading.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest // 400
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound // 404
	case s == string(ErrCodeUpstreamConnection):
		return http.StatusGatewayTimeout // 504
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway // 502
	case s == string(ErrCodeDataUnavailable), s == string(ErrCodeCompareIncomplete):
		return http.StatusBadGateway // 502
	case strings.HasPrefix(s, "internal_"):
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// AppError is the error currency of the service: every failure a handler
// can surface is either an AppError or gets wrapped into one, so the
// response layer always has a code, a client-safe message, and optional
// structured details to work with.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails copies the error with extra details merged in, leaving the
// original untouched so shared sentinel errors stay immutable.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError is the usual constructor; err may be nil when there is no
// underlying cause worth chaining.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails also attaches structured details for the response
// body, typically the offending field names and values.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// IsDataUnavailable reports whether err is the soft unavailable state that
// secondary enrichments (population, sunrise/sunset) degrade to.
func IsDataUnavailable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeDataUnavailable
}

// AsAppError extracts an *AppError from an error chain, or wraps a plain error
// as an internal AppError so the API layer always has a code to map.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(ErrCodeInternalUnexpected, "unexpected internal error", err)
}
