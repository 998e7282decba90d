package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"weatherdash/internal/types"
)

// maxRequestBodySize caps request bodies at 1 MB. The dashboard API is
// read-only today, so the limit exists for any future write surface.
const maxRequestBodySize = 1 << 20

// errCodeValidationInvalidJSON is the error code for malformed JSON bodies.
// Local to the chassis: no domain service produces it.
const errCodeValidationInvalidJSON types.ErrorCode = "validation_invalid_json"

// APIResponse is the success envelope every endpoint returns. Meta carries
// non-blocking warnings, such as a failed sunrise/sunset enrichment on the
// climate path.
type APIResponse struct {
	Data interface{}         `json:"data,omitempty"`
	Meta *types.ResponseMeta `json:"meta,omitempty"`
}

// APIErrorResponse is the error envelope. The dashboard frontend switches on
// Error.Code; Message is display copy.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the structured error payload returned to clients.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// errorResponse assembles the error envelope with the request ID taken from
// the request context.
func errorResponse(r *http.Request, code types.ErrorCode, message string, details map[string]any) APIErrorResponse {
	return APIErrorResponse{
		Error: ErrorDetail{
			Code:      string(code),
			Message:   message,
			Details:   details,
			RequestID: types.GetRequestID(r.Context()),
		},
	}
}

// JSON marshals data and writes it with the given status code. A marshal
// failure downgrades the response to a 500 error envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fallback := errorResponse(r, types.ErrCodeInternalUnexpected, "failed to marshal response", nil)
		// Best-effort write; the fallback envelope contains no custom types.
		_ = json.NewEncoder(w).Encode(fallback)
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error renders an error to the client. An error that is (or wraps) a
// *types.AppError keeps its code, message, and details, with the HTTP status
// derived from the code's family. Anything else becomes a bare 500: generic
// error text may carry internals and is never echoed back.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		resp := errorResponse(r, appErr.Code, appErr.Message, appErr.Details)
		JSON(w, r, appErr.HTTPStatus(), resp)
		return
	}

	resp := errorResponse(r, types.ErrCodeInternalUnexpected, "an unexpected error occurred", nil)
	JSON(w, r, http.StatusInternalServerError, resp)
}

// DecodeJSON reads the request body into dst with a strict contract: at most
// 1 MB, no unknown fields, exactly one JSON value, non-empty. Violations
// return a *types.AppError with code "validation_invalid_json" (400).
//
// The w parameter feeds http.MaxBytesReader so over-limit reads are cut off
// at the connection; callers still own writing the error response.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return mapDecodeError(err)
	}

	if dec.More() {
		return types.NewAppError(errCodeValidationInvalidJSON,
			"request body must contain a single JSON object", nil)
	}

	return nil
}

// mapDecodeError translates a json.Decoder failure into the structured
// validation error, preserving field-level context where the decoder
// provides it.
func mapDecodeError(err error) *types.AppError {
	var (
		maxBytesErr      *http.MaxBytesError
		syntaxErr        *json.SyntaxError
		unmarshalTypeErr *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &maxBytesErr):
		return types.NewAppError(errCodeValidationInvalidJSON,
			"request body must not exceed 1MB", err)

	case errors.As(err, &syntaxErr):
		return types.NewAppError(errCodeValidationInvalidJSON,
			"malformed JSON in request body", err)

	case errors.As(err, &unmarshalTypeErr):
		return types.NewAppErrorWithDetails(errCodeValidationInvalidJSON,
			"invalid value for field", err,
			map[string]any{
				"field":    unmarshalTypeErr.Field,
				"expected": unmarshalTypeErr.Type.String(),
			})

	// The decoder has no error type for DisallowUnknownFields; string
	// matching is the only handle.
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return types.NewAppError(errCodeValidationInvalidJSON,
			fmt.Sprintf("unknown field in request body: %s", field), err)

	case errors.Is(err, io.EOF):
		return types.NewAppError(errCodeValidationInvalidJSON,
			"request body must not be empty", err)

	default:
		return types.NewAppError(errCodeValidationInvalidJSON,
			"invalid JSON in request body", err)
	}
}
