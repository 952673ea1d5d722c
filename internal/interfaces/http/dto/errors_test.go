package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/commercelens/backend/internal/domain/shared"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"internal error", ErrCodeInternal, http.StatusInternalServerError},
		{"bad request", ErrCodeBadRequest, http.StatusBadRequest},
		{"validation", ErrCodeValidation, http.StatusBadRequest},
		{"file too large", ErrCodeFileTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported media", ErrCodeUnsupportedMedia, http.StatusUnsupportedMediaType},
		{"schema invalid", shared.CodeSchemaInvalid, http.StatusBadRequest},
		{"mapping failed", shared.CodeMappingFailed, http.StatusUnprocessableEntity},
		{"validation failed", shared.CodeValidationFailed, http.StatusUnprocessableEntity},
		{"aggregation precondition", shared.CodeAggregationPrecondition, http.StatusUnprocessableEntity},
		{"not found", shared.CodeNotFound, http.StatusNotFound},
		{"already exists", shared.CodeAlreadyExists, http.StatusConflict},
		{"unknown code falls back to 500", "ERR_SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(shared.CodeNotFound, "platform not found", "req-123")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, shared.CodeNotFound, resp.Error.Code)
	assert.Equal(t, "platform not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "name", Message: "This field is required"},
		{Field: "synonyms", Message: "Must be at least 1"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-456", details)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-456", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "name", resp.Error.Details[0].Field)
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"status": "ok"})

	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
}
