package middleware

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/heraerp/hera-dev-sub007/internal/logger"
  "github.com/heraerp/hera-dev-sub007/internal/requestdata"
)

// TenantMiddleware derives the organization scope of every API request.
// Authentication itself is handled upstream; this layer only enforces that
// a valid organization discriminator is present, since no registry or
// session operation is allowed without one.
type TenantMiddleware struct {
  log *logger.Logger
}

func NewTenantMiddleware(log *logger.Logger) *TenantMiddleware {
  return &TenantMiddleware{log: log.With("middleware", "TenantMiddleware")}
}

func (tm *TenantMiddleware) RequireOrganization() gin.HandlerFunc {
  return func(c *gin.Context) {
    raw := c.GetHeader("X-Organization-ID")
    if raw == "" {
      raw = c.Query("organization_id")
    }
    if raw == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing organization id"})
      return
    }
    orgID, err := uuid.Parse(raw)
    if err != nil || orgID == uuid.Nil {
      tm.log.Debug("Rejected request with invalid organization id", "value", raw)
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid organization id"})
      return
    }

    ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
      OrganizationID: orgID,
    })
    c.Request = c.Request.WithContext(ctx)
    c.Next()
  }
}
