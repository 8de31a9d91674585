package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a structured error returned by the ad platform. Callers use it
// to tell permanently-unresolvable failures (permission denied) apart from
// retry-worthy ones (5xx) without matching on message text.
type APIError struct {
	StatusCode int    // HTTP status of the response
	Code       int    // platform error code from the error envelope
	Subcode    int    // platform error subcode, when present
	Type       string // platform error type, e.g. "OAuthException"
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform api error: http %d code %d: %s", e.StatusCode, e.Code, e.Message)
}

// PermissionDenied reports whether the error is a platform permission or
// authorization failure. These can never succeed on retry. Code 10 is the
// generic permission error; the 200-299 range covers the per-capability
// permission codes.
func (e *APIError) PermissionDenied() bool {
	return e.Code == 10 || (e.Code >= 200 && e.Code <= 299)
}

// Retryable reports whether the error is a transient server-side failure.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

// IsPermissionDenied reports whether err wraps a permission-denied APIError.
func IsPermissionDenied(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.PermissionDenied()
}

// IsRetryable reports whether err wraps a retryable APIError.
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

// errorEnvelope is the JSON shape the platform wraps errors in.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
		Subcode int    `json:"error_subcode"`
	} `json:"error"`
}

// parseAPIError builds an APIError from a non-2xx response body. A body that
// is not the expected envelope still yields an APIError carrying the HTTP
// status, so classification by status keeps working.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		apiErr.Code = env.Error.Code
		apiErr.Subcode = env.Error.Subcode
		apiErr.Type = env.Error.Type
		apiErr.Message = env.Error.Message
	}
	return apiErr
}
