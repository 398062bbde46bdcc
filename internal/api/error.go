package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the typed failure returned by every gateway call. StatusCode is
// zero when the request never produced an HTTP response (network failure).
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("network failure: %s", e.Message)
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// errorBody is the JSON shape the backend uses for failure payloads.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// IsNetwork reports whether err is a gateway failure that never reached
// the server or got no response.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == 0
}

// IsAuth reports whether err is a 401 from the backend.
func IsAuth(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsValidation reports whether err is a payload rejection (4xx other than
// 401 and 404).
func IsValidation(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	c := apiErr.StatusCode
	return c >= 400 && c < 500 &&
		c != http.StatusUnauthorized && c != http.StatusNotFound
}

// IsServer reports whether err is a 5xx or a 404.
func IsServer(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusNotFound
}

// StatusCode extracts the HTTP status from a gateway error, or zero.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
