package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound         = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput     = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrFetchFailed      = NewDomainError("FETCH_FAILED", "Failed to fetch data from the commerce platform")
	ErrPlatformNotReady = NewDomainError("PLATFORM_NOT_READY", "Commerce platform is not ready")
	ErrLoadFailed       = NewDomainError("LOAD_FAILED", "Commerce platform failed to load")
	ErrUnsupported      = NewDomainError("UNSUPPORTED", "Operation not supported by the commerce platform")
)

// IsNotFound reports whether err is, or wraps, ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnsupported reports whether err is, or wraps, ErrUnsupported
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// ErrorCode extracts the domain error code from err, unwrapping as needed.
// Errors without a DomainError in their chain map to INTERNAL_ERROR.
func ErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL_ERROR"
}
