package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/commercelens/backend/internal/domain/schema"
	"github.com/commercelens/backend/internal/interfaces/http/dto"
)

// SchemaHandler handles platform catalog and field schema endpoints
type SchemaHandler struct {
	BaseHandler
	registry *schema.Registry
}

// NewSchemaHandler creates a new SchemaHandler
func NewSchemaHandler(registry *schema.Registry) *SchemaHandler {
	return &SchemaHandler{registry: registry}
}

// ListPlatforms returns a summary of every registered platform template
func (h *SchemaHandler) ListPlatforms(c *gin.Context) {
	ids := h.registry.Platforms()
	summaries := make([]dto.PlatformSummary, 0, len(ids))
	for _, id := range ids {
		tpl := h.registry.Template(id)
		summaries = append(summaries, dto.PlatformSummary{
			ID:          tpl.ID,
			DisplayName: tpl.DisplayName,
			Language:    tpl.Language,
			Currency:    tpl.Currency,
			FieldCount:  len(tpl.AllFields()),
		})
	}
	h.Success(c, summaries)
}

// GetPlatformSchema returns the full field schema for one platform
func (h *SchemaHandler) GetPlatformSchema(c *gin.Context) {
	platformID := c.Param("id")
	if !h.registry.HasPlatform(platformID) {
		h.NotFound(c, "unknown platform: "+platformID)
		return
	}
	h.Success(c, h.registry.Template(platformID))
}

// AddField registers a custom field on a platform template
func (h *SchemaHandler) AddField(c *gin.Context) {
	var req dto.AddFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "name, type, platform_id and at least one synonym are required")
		return
	}

	def := schema.FieldDefinition{
		Name:     req.Name,
		Type:     schema.FieldType(req.Type),
		Required: req.Required,
		Synonyms: req.Synonyms,
	}
	if err := h.registry.AddCustomField(req.PlatformID, def); err != nil {
		h.HandleError(c, err)
		return
	}

	tpl := h.registry.Template(req.PlatformID)
	added, _ := tpl.Field(req.Name)
	h.Created(c, added)
}

// SuggestType infers a field type from a name and sample values
func (h *SchemaHandler) SuggestType(c *gin.Context) {
	var req dto.SuggestTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "name is required")
		return
	}

	fieldType, confidence := h.registry.SuggestFieldType(req.Name, req.Samples)
	h.Success(c, dto.SuggestTypeResponse{
		Name:       req.Name,
		Type:       fieldType.String(),
		Confidence: confidence,
	})
}

// RegisterRoutes registers schema and platform routes
func (h *SchemaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/platforms", h.ListPlatforms)
	rg.GET("/platforms/:id/schema", h.GetPlatformSchema)

	sc := rg.Group("/schema")
	{
		sc.POST("/fields", h.AddField)
		sc.POST("/suggest-type", h.SuggestType)
	}
}
