package middleware

import (
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/heraerp/hera-dev-sub007/internal/logger"
  "github.com/heraerp/hera-dev-sub007/internal/requestdata"
)

func tenantRouter(t *testing.T, captured *uuid.UUID) *gin.Engine {
  t.Helper()
  gin.SetMode(gin.TestMode)
  r := gin.New()
  tm := NewTenantMiddleware(logger.NewNop())
  r.GET("/probe", tm.RequireOrganization(), func(c *gin.Context) {
    rd := requestdata.GetRequestData(c.Request.Context())
    if rd == nil {
      c.JSON(http.StatusInternalServerError, gin.H{"error": "missing request data"})
      return
    }
    *captured = rd.OrganizationID
    c.JSON(http.StatusOK, gin.H{"status": "ok"})
  })
  return r
}

func TestRequireOrganizationMissing(t *testing.T) {
  var captured uuid.UUID
  r := tenantRouter(t, &captured)

  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/probe", nil)
  r.ServeHTTP(w, req)

  if w.Code != http.StatusUnauthorized {
    t.Fatalf("status: got %d, want %d", w.Code, http.StatusUnauthorized)
  }
}

func TestRequireOrganizationInvalid(t *testing.T) {
  var captured uuid.UUID
  r := tenantRouter(t, &captured)

  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/probe", nil)
  req.Header.Set("X-Organization-ID", "not-a-uuid")
  r.ServeHTTP(w, req)

  if w.Code != http.StatusUnauthorized {
    t.Fatalf("status: got %d, want %d", w.Code, http.StatusUnauthorized)
  }
}

func TestRequireOrganizationHeader(t *testing.T) {
  var captured uuid.UUID
  r := tenantRouter(t, &captured)
  orgID := uuid.New()

  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/probe", nil)
  req.Header.Set("X-Organization-ID", orgID.String())
  r.ServeHTTP(w, req)

  if w.Code != http.StatusOK {
    t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
  }
  if captured != orgID {
    t.Fatalf("organization id not propagated: got %s, want %s", captured, orgID)
  }
}

func TestRequireOrganizationQueryFallback(t *testing.T) {
  var captured uuid.UUID
  r := tenantRouter(t, &captured)
  orgID := uuid.New()

  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/probe?organization_id="+orgID.String(), nil)
  r.ServeHTTP(w, req)

  if w.Code != http.StatusOK {
    t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
  }
  if captured != orgID {
    t.Fatalf("organization id not propagated: got %s, want %s", captured, orgID)
  }
}
