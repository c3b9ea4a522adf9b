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

// Is matches DomainErrors by code and message so wrapped sentinels compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithCause returns a copy of e wrapping err, so errors.Is still matches e.
func (e *DomainError) WithCause(err error) *DomainError {
	return NewDomainErrorWithCause(e.Code, e.Message, err)
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuery          = NewDomainError(ErrCodeValidation, "query is required")
	ErrInvalidFilename     = NewDomainError(ErrCodeValidation, "invalid filename")
	ErrUnsupportedDocument = NewDomainError(ErrCodeValidation, "only .pdf documents are supported")
	ErrInvalidChunkConfig  = NewDomainError(ErrCodeValidation, "chunk overlap must be smaller than chunk size")
	ErrNoDocuments         = NewDomainError(ErrCodeValidation, "no documents loaded")
)

// Not found errors
var (
	ErrIndexJobNotFound = NewDomainError(ErrCodeNotFound, "index job not found")
)

// Upstream errors
var (
	ErrEmbeddingFailed = NewDomainError(ErrCodeUpstream, "embedding backend failed")
	ErrRetrievalFailed = NewDomainError(ErrCodeInternalError, "vector store lookup failed")
	ErrAnswerFailed    = NewDomainError(ErrCodeUpstream, "answer generation failed")
)

// Storage errors
var (
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
)
