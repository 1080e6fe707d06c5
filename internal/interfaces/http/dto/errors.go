package dto

import "net/http"

// Error codes of the read API surface
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeUnavailable is used when a backing dependency is down
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// errorCodeHTTPStatus maps API error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeNotFound:    http.StatusNotFound,
	ErrCodeUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an API error code,
// defaulting to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorStatus maps a domain error code to an HTTP status. Domain
// codes stay in the response body verbatim; only the status is derived.
// Anything that is not a lookup failure is treated as a client fault.
func DomainErrorStatus(code string) int {
	if code == "NOT_FOUND" {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
