package shared

import "fmt"

// DomainError represents a domain-level error with a stable code.
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

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error codes for the ingestion pipeline
const (
	CodeSchemaInvalid           = "SCHEMA_INVALID"
	CodeMappingFailed           = "MAPPING_FAILED"
	CodeAggregationPrecondition = "AGGREGATION_PRECONDITION"
	CodeValidationFailed        = "VALIDATION_FAILED"
	CodeNotFound                = "NOT_FOUND"
	CodeAlreadyExists           = "ALREADY_EXISTS"
	CodeInvalidInput            = "INVALID_INPUT"
)

// Common domain errors
var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput  = NewDomainError(CodeInvalidInput, "Invalid input provided")
)

// NewSchemaError reports a malformed or unknown field catalog. It is
// fatal before any processing starts.
func NewSchemaError(format string, args ...any) *DomainError {
	return NewDomainErrorf(CodeSchemaInvalid, format, args...)
}

// NewMappingError reports a required field that could not be mapped or a
// mapping that references a column absent from the table. Fatal for the
// upload; the message names the offending field.
func NewMappingError(format string, args ...any) *DomainError {
	return NewDomainErrorf(CodeMappingFailed, format, args...)
}

// NewValidationError reports data that failed validation badly enough
// that no usable frame could be produced, such as a required column
// whose values never parse.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainErrorf(CodeValidationFailed, format, args...)
}

// NewAggregationPreconditionError reports aggregation invoked on data
// that is already order-level, or with no groupable key. This is a
// programmer-facing error, never silently ignored.
func NewAggregationPreconditionError(format string, args ...any) *DomainError {
	return NewDomainErrorf(CodeAggregationPrecondition, format, args...)
}
