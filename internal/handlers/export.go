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

type ExportHandler struct {
	log            *logger.Logger
	sessionService services.MappingSessionService
	exportService  services.ExportService
}

func NewExportHandler(log *logger.Logger, sessionService services.MappingSessionService, exportService services.ExportService) *ExportHandler {
	return &ExportHandler{
		log:            log.With("handler", "ExportHandler"),
		sessionService: sessionService,
		exportService:  exportService,
	}
}

// Download serializes the session into its portable mapping config and
// serves it as a JSON file download.
func (h *ExportHandler) Download(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.OrganizationID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "missing_organization", nil)
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), nil, rd.OrganizationID, sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			RespondError(c, http.StatusNotFound, "session_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "load_session_failed", err)
		return
	}

	artifact, err := h.exportService.BuildArtifact(session)
	if err != nil {
		h.log.Error("Export build failed", "error", err, "session_id", sessionID)
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	raw, filename, err := h.exportService.Marshal(artifact)
	if err != nil {
		h.log.Error("Export serialization failed", "error", err, "session_id", sessionID)
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	RespondDownload(c, filename, raw)
}
