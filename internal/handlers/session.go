package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heraerp/hera-dev-sub007/internal/logger"
	"github.com/heraerp/hera-dev-sub007/internal/requestdata"
	"github.com/heraerp/hera-dev-sub007/internal/services"
	"github.com/heraerp/hera-dev-sub007/internal/types"
)

// maxUploadBytes bounds structural-analysis cost; uploads above it are
// rejected at the handler before any parsing happens.
const maxUploadBytes = 5 << 20

type SessionHandler struct {
	log            *logger.Logger
	analyzer       services.StructuralAnalyzerService
	sessionService services.MappingSessionService
}

func NewSessionHandler(log *logger.Logger, analyzer services.StructuralAnalyzerService, sessionService services.MappingSessionService) *SessionHandler {
	return &SessionHandler{
		log:            log.With("handler", "SessionHandler"),
		analyzer:       analyzer,
		sessionService: sessionService,
	}
}

// Upload accepts one JSON or CSV file, analyzes its structure, runs the
// rule engine and persists a draft session.
func (h *SessionHandler) Upload(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.OrganizationID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "missing_organization", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", errors.New("upload exceeds 5MB limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	if len(raw) > maxUploadBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", errors.New("upload exceeds 5MB limit"))
		return
	}

	sourceName := strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	var entities []types.LegacyEntity
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		entities, err = h.analyzer.AnalyzeCSV(sourceName, raw)
	default:
		entities, err = h.analyzer.AnalyzeJSON(sourceName, raw)
	}
	if err != nil {
		var parseErr *services.ParseError
		if errors.As(err, &parseErr) {
			// File-level error; the user may retry with another file.
			RespondError(c, http.StatusUnprocessableEntity, "parse_error", err)
			return
		}
		h.log.Error("Upload analysis failed", "error", err, "organization_id", rd.OrganizationID)
		RespondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}

	session, err := h.sessionService.CreateFromEntities(c.Request.Context(), nil, rd.OrganizationID, fileHeader.Filename, entities)
	if err != nil {
		h.log.Error("Create session failed", "error", err, "organization_id", rd.OrganizationID)
		RespondError(c, http.StatusInternalServerError, "create_session_failed", err)
		return
	}
	RespondCreated(c, gin.H{"session": session})
}

// Sample creates a session from the built-in restaurant demo dataset.
func (h *SessionHandler) Sample(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.OrganizationID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "missing_organization", nil)
		return
	}

	session, err := h.sessionService.CreateFromSample(c.Request.Context(), nil, rd.OrganizationID)
	if err != nil {
		h.log.Error("Create sample session failed", "error", err, "organization_id", rd.OrganizationID)
		RespondError(c, http.StatusInternalServerError, "create_session_failed", err)
		return
	}
	RespondCreated(c, gin.H{"session": session})
}

func (h *SessionHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.OrganizationID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "missing_organization", nil)
		return
	}

	sessions, err := h.sessionService.ListSessions(c.Request.Context(), nil, rd.OrganizationID)
	if err != nil {
		h.log.Error("List sessions failed", "error", err, "organization_id", rd.OrganizationID)
		RespondError(c, http.StatusInternalServerError, "list_sessions_failed", err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}

func (h *SessionHandler) Get(c *gin.Context) {
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
	RespondOK(c, gin.H{"session": session})
}

func (h *SessionHandler) UpdateStatus(c *gin.Context) {
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

	var body struct {
		Status types.SessionStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	session, err := h.sessionService.UpdateStatus(c.Request.Context(), nil, rd.OrganizationID, sessionID, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			RespondError(c, http.StatusNotFound, "session_not_found", err)
		case errors.Is(err, services.ErrInvalidTransition):
			RespondError(c, http.StatusConflict, "invalid_transition", err)
		default:
			RespondError(c, http.StatusInternalServerError, "update_status_failed", err)
		}
		return
	}
	RespondOK(c, gin.H{"session": session})
}

func (h *SessionHandler) ReplaceMappings(c *gin.Context) {
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

	var body struct {
		Mappings []types.HeraMapping `json:"mappings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	session, err := h.sessionService.ReplaceMappings(c.Request.Context(), nil, rd.OrganizationID, sessionID, body.Mappings)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			RespondError(c, http.StatusNotFound, "session_not_found", err)
		case errors.Is(err, services.ErrSessionNotEditable):
			RespondError(c, http.StatusConflict, "session_not_editable", err)
		default:
			RespondError(c, http.StatusBadRequest, "update_mappings_failed", err)
		}
		return
	}
	RespondOK(c, gin.H{"session": session})
}
