package dto

import (
	"net/http"

	"github.com/commercelens/backend/internal/domain/shared"
)

// Transport-level error codes. Pipeline errors keep the codes their
// domain errors carry; these cover everything that fails before a
// request reaches the pipeline.
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeFileTooLarge is used when an upload exceeds the size limit
	ErrCodeFileTooLarge = "ERR_FILE_TOO_LARGE"
	// ErrCodeUnsupportedMedia is used when an upload is not a CSV file
	ErrCodeUnsupportedMedia = "ERR_UNSUPPORTED_MEDIA"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Domain
// codes from the ingestion pipeline map alongside the transport codes.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:          http.StatusInternalServerError,
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeFileTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeUnsupportedMedia: http.StatusUnsupportedMediaType,

	// Malformed catalogs and uploads the pipeline refuses to start on
	shared.CodeSchemaInvalid: http.StatusBadRequest,
	shared.CodeInvalidInput:  http.StatusBadRequest,

	// Uploads the pipeline accepted but could not process
	shared.CodeMappingFailed:           http.StatusUnprocessableEntity,
	shared.CodeValidationFailed:        http.StatusUnprocessableEntity,
	shared.CodeAggregationPrecondition: http.StatusUnprocessableEntity,

	shared.CodeNotFound:      http.StatusNotFound,
	shared.CodeAlreadyExists: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
