package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heraerp/hera-dev-sub007/internal/logger"
	"github.com/heraerp/hera-dev-sub007/internal/requestdata"
	"github.com/heraerp/hera-dev-sub007/internal/services"
)

type SchemaHandler struct {
	log        *logger.Logger
	generator  services.SchemaGenerationService
	similarity services.SchemaSimilarityService
	classifier services.DomainClassifierService
	aiDefault  bool
}

func NewSchemaHandler(
	log *logger.Logger,
	generator services.SchemaGenerationService,
	similarity services.SchemaSimilarityService,
	classifier services.DomainClassifierService,
	aiDefault bool,
) *SchemaHandler {
	return &SchemaHandler{
		log:        log.With("handler", "SchemaHandler"),
		generator:  generator,
		similarity: similarity,
		classifier: classifier,
		aiDefault:  aiDefault,
	}
}

// Generate runs the full generation chain for a free-text requirement.
// ai_enabled defaults from configuration but is decided per call.
func (h *SchemaHandler) Generate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.OrganizationID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "missing_organization", nil)
		return
	}

	var body struct {
		Requirement string `json:"requirement" binding:"required"`
		EntityType  string `json:"entity_type"`
		AIEnabled   *bool  `json:"ai_enabled"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	aiEnabled := h.aiDefault
	if body.AIEnabled != nil {
		aiEnabled = *body.AIEnabled
	}

	result, err := h.generator.GenerateSchema(c.Request.Context(), rd.OrganizationID, services.GenerateSchemaRequest{
		Requirement:    body.Requirement,
		EntityTypeHint: body.EntityType,
		AIEnabled:      aiEnabled,
	})
	if err != nil {
		h.log.Error("Schema generation failed", "error", err, "organization_id", rd.OrganizationID)
		RespondError(c, http.StatusInternalServerError, "generate_schema_failed", err)
		return
	}
	RespondOK(c, result)
}

func (h *SchemaHandler) FindSimilar(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.OrganizationID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "missing_organization", nil)
		return
	}

	requirement := c.Query("q")
	if requirement == "" {
		RespondError(c, http.StatusBadRequest, "missing_query", errors.New("query parameter q is required"))
		return
	}

	matches, err := h.similarity.FindSimilarSchemas(c.Request.Context(), nil, rd.OrganizationID, requirement, c.Query("entity_type"))
	if err != nil {
		h.log.Error("Similarity search failed", "error", err, "organization_id", rd.OrganizationID)
		RespondError(c, http.StatusInternalServerError, "similarity_search_failed", err)
		return
	}
	RespondOK(c, gin.H{"matches": matches})
}

func (h *SchemaHandler) GetByEntityType(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.OrganizationID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "missing_organization", nil)
		return
	}

	schema, err := h.similarity.GetSchemaByType(c.Request.Context(), nil, rd.OrganizationID, c.Param("entityType"))
	if err != nil {
		if errors.Is(err, services.ErrSchemaNotFound) {
			RespondError(c, http.StatusNotFound, "schema_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "load_schema_failed", err)
		return
	}
	RespondOK(c, gin.H{"schema": schema})
}

// Classify scores free text against the business-domain vocabularies.
func (h *SchemaHandler) Classify(c *gin.Context) {
	var body struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	RespondOK(c, gin.H{"domain": h.classifier.Classify(body.Text)})
}
