package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commercelens/backend/internal/application/ingest"
	"github.com/commercelens/backend/internal/domain/table"
	csvimport "github.com/commercelens/backend/internal/infrastructure/import"
	"github.com/commercelens/backend/internal/interfaces/http/dto"
)

const (
	// Maximum file size for uploads (25MB)
	maxUploadFileSize = 25 * 1024 * 1024

	// Number of canonical rows echoed back for preview
	previewRowLimit = 10
)

// IngestHandler handles CSV upload and mapping-correction endpoints
type IngestHandler struct {
	BaseHandler
	service *ingest.Service
	maxRows int
}

// NewIngestHandler creates a new IngestHandler. maxRows caps the data
// rows accepted per upload; zero disables the cap.
func NewIngestHandler(service *ingest.Service, maxRows int) *IngestHandler {
	return &IngestHandler{
		service: service,
		maxRows: maxRows,
	}
}

// IngestResponse represents the outcome of one processed upload
type IngestResponse struct {
	*ingest.Result
	RowCount         int              `json:"row_count"`
	Columns          []string         `json:"columns"`
	Preview          []map[string]any `json:"preview,omitempty"`
	ValidationErrors []string         `json:"validation_errors,omitempty"`
}

// Upload accepts a multipart CSV file, runs the ingestion pipeline and
// returns the mapping, granularity, aggregation and validation outcome.
// Optional form fields: platform_id (skips detection), delimiter.
func (h *IngestHandler) Upload(c *gin.Context) {
	var req dto.IngestRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BadRequest(c, "delimiter must be a single character")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxUploadFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, "file exceeds maximum size of 25MB")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != "text/csv" && contentType != "application/octet-stream" &&
		contentType != "text/plain" && contentType != "application/vnd.ms-excel" {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeUnsupportedMedia, "file must be a CSV file")
		return
	}

	var opts []csvimport.ParserOption
	if req.Delimiter != "" {
		opts = append(opts, csvimport.WithDelimiter(rune(req.Delimiter[0])))
	}

	tbl, err := csvimport.ReadTable(file, h.maxRows, opts...)
	if err != nil {
		h.handleReadError(c, err)
		return
	}
	tbl.Source = table.Provenance{
		Filename: header.Filename,
		FileSize: header.Size,
	}

	result, err := h.service.Run(c.Request.Context(), tbl, ingest.Options{PlatformID: req.PlatformID})
	if err != nil {
		// Partial results still describe what went wrong; attach them
		// when the run produced any before failing.
		h.HandleError(c, err)
		return
	}

	h.Success(c, buildIngestResponse(result))
}

// Correct records a user mapping correction so future uploads from the
// same platform map the corrected column automatically.
func (h *IngestHandler) Correct(c *gin.Context) {
	var req dto.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "platform_id, field_name and source_header are required")
		return
	}

	if !h.service.Registry().HasPlatform(req.PlatformID) {
		h.NotFound(c, "unknown platform: "+req.PlatformID)
		return
	}

	if err := h.service.Correct(c.Request.Context(), req.PlatformID, req.FieldName, req.SourceHeader); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"platform_id":   req.PlatformID,
		"field_name":    req.FieldName,
		"source_header": req.SourceHeader,
	})
}

// handleReadError maps reader sentinel errors to client responses
func (h *IngestHandler) handleReadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile):
		h.BadRequest(c, "CSV file is empty")
	case errors.Is(err, csvimport.ErrInvalidEncoding):
		h.BadRequest(c, "CSV file has invalid encoding, must be UTF-8")
	case errors.Is(err, csvimport.ErrMissingHeader):
		h.BadRequest(c, "CSV file is missing header row")
	case errors.Is(err, csvimport.ErrNoDataRows):
		h.BadRequest(c, "CSV file has no data rows")
	case errors.Is(err, csvimport.ErrTooManyRows):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, "file exceeds the row limit")
	default:
		h.HandleError(c, err)
	}
}

func buildIngestResponse(result *ingest.Result) IngestResponse {
	resp := IngestResponse{Result: result}
	if result.Validation != nil {
		resp.ValidationErrors = result.Validation.ErrorMessages()
	}
	if result.Frame != nil {
		resp.RowCount = result.Frame.RowCount()
		resp.Columns = result.Frame.Columns
		limit := previewRowLimit
		if limit > len(result.Frame.Rows) {
			limit = len(result.Frame.Rows)
		}
		resp.Preview = result.Frame.Rows[:limit]
	}
	return resp
}

// RegisterRoutes registers ingest routes
func (h *IngestHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ingest", h.Upload)
	rg.POST("/mappings/corrections", h.Correct)
}
