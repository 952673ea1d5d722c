package dto

// IngestRequest represents the multipart form fields accompanying an upload
type IngestRequest struct {
	PlatformID string `form:"platform_id"`
	Delimiter  string `form:"delimiter" binding:"omitempty,len=1"`
}

// PlatformSummary represents one platform in the platform listing
type PlatformSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
	Currency    string `json:"currency"`
	FieldCount  int    `json:"field_count"`
}

// AddFieldRequest represents a custom field registration
type AddFieldRequest struct {
	PlatformID string   `json:"platform_id" binding:"required"`
	Name       string   `json:"name" binding:"required"`
	Type       string   `json:"type" binding:"required,oneof=string integer float datetime boolean"`
	Required   bool     `json:"required"`
	Synonyms   []string `json:"synonyms" binding:"required,min=1,dive,required"`
}

// SuggestTypeRequest represents a field type suggestion query
type SuggestTypeRequest struct {
	Name    string   `json:"name" binding:"required"`
	Samples []string `json:"samples"`
}

// SuggestTypeResponse represents the suggested type with its confidence
type SuggestTypeResponse struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// CorrectionRequest represents a user mapping correction to be remembered
type CorrectionRequest struct {
	PlatformID   string `json:"platform_id" binding:"required"`
	FieldName    string `json:"field_name" binding:"required"`
	SourceHeader string `json:"source_header" binding:"required"`
}
