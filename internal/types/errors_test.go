package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// TestAppErrorImplementsError verifies that *AppError satisfies the error interface.
func TestAppErrorImplementsError(t *testing.T) {
	var _ error = (*AppError)(nil)
}

// TestAppErrorErrorFormat verifies the Error() method produces "code: message".
func TestAppErrorErrorFormat(t *testing.T) {
	appErr := &AppError{
		Code:    ErrCodeNotFoundCity,
		Message: "City not found.",
	}

	expected := "not_found_city: City not found."
	if appErr.Error() != expected {
		t.Errorf("Error() = %q, want %q", appErr.Error(), expected)
	}
}

// TestAppErrorUnwrap verifies the error chain support via Unwrap.
func TestAppErrorUnwrap(t *testing.T) {
	underlying := errors.New("dial tcp: connection refused")
	appErr := &AppError{
		Code:    ErrCodeUpstreamConnection,
		Message: "Connection error: dial tcp: connection refused",
		Err:     underlying,
	}

	if appErr.Unwrap() != underlying {
		t.Errorf("Unwrap() returned unexpected error: got %v, want %v", appErr.Unwrap(), underlying)
	}
}

// TestAppErrorUnwrapNil verifies Unwrap returns nil when no underlying error exists.
func TestAppErrorUnwrapNil(t *testing.T) {
	appErr := &AppError{
		Code:    ErrCodeNotFoundCity,
		Message: "City not found.",
	}

	if appErr.Unwrap() != nil {
		t.Errorf("Unwrap() should return nil when Err is nil, got %v", appErr.Unwrap())
	}
}

// TestAppErrorErrorsAs verifies that errors.As can extract AppError from an error chain.
func TestAppErrorErrorsAs(t *testing.T) {
	appErr := &AppError{
		Code:    ErrCodeUpstreamStatus,
		Message: "API Error: 503",
	}
	wrappedErr := fmt.Errorf("forecast fetch failed: %w", appErr)

	var target *AppError
	if !errors.As(wrappedErr, &target) {
		t.Fatal("errors.As should find AppError in the chain")
	}
	if target.Code != ErrCodeUpstreamStatus {
		t.Errorf("extracted Code = %q, want %q", target.Code, ErrCodeUpstreamStatus)
	}
}

// TestErrorCodeHTTPStatus checks the code-to-status mapping across the taxonomy.
func TestErrorCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationMissingCity, http.StatusBadRequest},
		{ErrCodeValidationInvalidDays, http.StatusBadRequest},
		{ErrCodeValidationInvalidUnit, http.StatusBadRequest},
		{ErrCodeValidationDateRange, http.StatusBadRequest},
		{ErrCodeNotFoundCity, http.StatusNotFound},
		{ErrCodeUpstreamStatus, http.StatusBadGateway},
		{ErrCodeUpstreamConnection, http.StatusGatewayTimeout},
		{ErrCodeUpstreamMalformed, http.StatusBadGateway},
		{ErrCodeUpstreamUnavailable, http.StatusBadGateway},
		{ErrCodeDataUnavailable, http.StatusBadGateway},
		{ErrCodeCompareIncomplete, http.StatusBadGateway},
		{ErrCodeInternalUnexpected, http.StatusInternalServerError},
		{ErrorCode("something_unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

// TestAppErrorWithDetails verifies details merging does not mutate the original.
func TestAppErrorWithDetails(t *testing.T) {
	base := NewAppErrorWithDetails(ErrCodeUpstreamStatus, "API Error: 500", nil,
		map[string]any{"provider": "openweather"})

	enriched := base.WithDetails(map[string]any{"city": "Johannesburg"})

	if len(base.Details) != 1 {
		t.Errorf("original Details mutated: %v", base.Details)
	}
	if enriched.Details["provider"] != "openweather" || enriched.Details["city"] != "Johannesburg" {
		t.Errorf("merged Details = %v", enriched.Details)
	}
	if enriched.Code != base.Code || enriched.Message != base.Message {
		t.Errorf("WithDetails changed code or message: %v", enriched)
	}
}

// TestIsDataUnavailable verifies soft-failure detection through wrapping.
func TestIsDataUnavailable(t *testing.T) {
	soft := NewAppError(ErrCodeDataUnavailable, "population unavailable", nil)
	wrapped := fmt.Errorf("geonames: %w", soft)

	if !IsDataUnavailable(soft) {
		t.Error("IsDataUnavailable(soft) = false, want true")
	}
	if !IsDataUnavailable(wrapped) {
		t.Error("IsDataUnavailable(wrapped) = false, want true")
	}
	if IsDataUnavailable(NewAppError(ErrCodeUpstreamStatus, "API Error: 500", nil)) {
		t.Error("IsDataUnavailable(upstream error) = true, want false")
	}
	if IsDataUnavailable(errors.New("plain")) {
		t.Error("IsDataUnavailable(plain error) = true, want false")
	}
}

// TestAsAppError verifies extraction and the generic-error fallback.
func TestAsAppError(t *testing.T) {
	appErr := NewAppError(ErrCodeNotFoundCity, "City not found.", nil)
	wrapped := fmt.Errorf("geocode: %w", appErr)

	if got := AsAppError(wrapped); got.Code != ErrCodeNotFoundCity {
		t.Errorf("AsAppError(wrapped).Code = %q, want %q", got.Code, ErrCodeNotFoundCity)
	}

	plain := errors.New("boom")
	got := AsAppError(plain)
	if got.Code != ErrCodeInternalUnexpected {
		t.Errorf("AsAppError(plain).Code = %q, want %q", got.Code, ErrCodeInternalUnexpected)
	}
	if !errors.Is(got, plain) {
		t.Error("AsAppError(plain) should wrap the original error")
	}
}
