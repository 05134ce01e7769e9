package authgw

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthRequired matches any HTTPError carrying a 401. Callers use
// errors.Is(err, ErrAuthRequired) rather than inspecting status codes.
var ErrAuthRequired = errors.New("authentication required")

// NetworkError reports a transport-level failure: the request never produced
// an HTTP response.
type NetworkError struct {
	Err error
}

// Error returns the message the UI surfaces for transport failures.
func (e *NetworkError) Error() string { return "Network error occurred" }

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response. Message is taken from the response
// body's "error" or "message" field; Generic marks the fallback used when
// the body carries neither, so callers can substitute their own wording.
type HTTPError struct {
	Status  int
	Message string
	Generic bool
}

func (e *HTTPError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrAuthRequired) match 401 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrAuthRequired && e.Status == http.StatusUnauthorized
}

// IsConflict reports whether err is a 409 duplicate-resource response.
func IsConflict(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusConflict
}

// IsUnprocessable reports whether err is a 422 malformed-fields response.
func IsUnprocessable(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusUnprocessableEntity
}

// IsServerError reports whether err is a 5xx response.
func IsServerError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status >= 500
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

func httpError(status int, data map[string]any) *HTTPError {
	if msg := bodyMessage(data); msg != "" {
		return &HTTPError{Status: status, Message: msg}
	}
	return &HTTPError{Status: status, Message: fmt.Sprintf("HTTP %d", status), Generic: true}
}

// bodyMessage extracts the server-supplied message from an error payload,
// preferring "error" over "message".
func bodyMessage(data map[string]any) string {
	if v, ok := data["error"].(string); ok && v != "" {
		return v
	}
	if v, ok := data["message"].(string); ok && v != "" {
		return v
	}
	return ""
}
