package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnavailable   = "UNAVAILABLE"
	ErrCodeIngestion     = "INGESTION_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingEmployeeID    = NewDomainError(ErrCodeValidation, "missing employee id")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "query is empty")
)

// Not found errors
var (
	ErrIdentityNotFound = NewDomainError(ErrCodeNotFound, "identity not found in roster")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Availability errors
var (
	ErrNoIndexesConfigured = NewDomainError(ErrCodeUnavailable, "no similarity index is configured")
	ErrEmbedderUnavailable = NewDomainError(ErrCodeUnavailable, "embedding provider not configured")
)

// Ingestion errors
var (
	ErrUnsupportedFormat = NewDomainError(ErrCodeIngestion, "unsupported document format")
	ErrExtractionFailed  = NewDomainError(ErrCodeIngestion, "text extraction failed")
	ErrMalformedFeed     = NewDomainError(ErrCodeIngestion, "malformed tabular feed")
)
