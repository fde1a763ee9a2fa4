package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Upstream platform error codes
const (
	// ErrCodePlatformNotReady is used before the platform handshake completed
	ErrCodePlatformNotReady = "ERR_PLATFORM_NOT_READY"
	// ErrCodePlatformLoadFailed is used when the platform handshake failed
	ErrCodePlatformLoadFailed = "ERR_PLATFORM_LOAD_FAILED"
	// ErrCodeUpstreamFetch is used when a platform data fetch failed
	ErrCodeUpstreamFetch = "ERR_UPSTREAM_FETCH"
	// ErrCodeUnsupported is used when the platform lacks the capability
	ErrCodeUnsupported = "ERR_UNSUPPORTED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound: http.StatusNotFound,

	// Upstream platform errors
	ErrCodePlatformNotReady:   http.StatusServiceUnavailable,
	ErrCodePlatformLoadFailed: http.StatusBadGateway,
	ErrCodeUpstreamFetch:      http.StatusBadGateway,
	ErrCodeUnsupported:        http.StatusNotImplemented,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the wire format
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":          ErrCodeNotFound,
	"INVALID_INPUT":      ErrCodeInvalidInput,
	"FETCH_FAILED":       ErrCodeUpstreamFetch,
	"PLATFORM_NOT_READY": ErrCodePlatformNotReady,
	"LOAD_FAILED":        ErrCodePlatformLoadFailed,
	"UNSUPPORTED":        ErrCodeUnsupported,
	"INTERNAL_ERROR":     ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the wire format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
