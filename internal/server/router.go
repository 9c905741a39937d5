package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/heraerp/hera-dev-sub007/internal/handlers"
  "github.com/heraerp/hera-dev-sub007/internal/middleware"
)

type RouterConfig struct {
  TenantMiddleware *middleware.TenantMiddleware
  SessionHandler   *handlers.SessionHandler
  SchemaHandler    *handlers.SchemaHandler
  ExportHandler    *handlers.ExportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Organization-ID"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)

// ===============
// || API       ||
// ===============
  api := router.Group("/api")
  api.Use(cfg.TenantMiddleware.RequireOrganization())
  {
    // Mapping sessions
    api.POST("/sessions/upload", cfg.SessionHandler.Upload)
    api.POST("/sessions/sample", cfg.SessionHandler.Sample)
    api.GET("/sessions", cfg.SessionHandler.List)
    api.GET("/sessions/:id", cfg.SessionHandler.Get)
    api.PATCH("/sessions/:id/status", cfg.SessionHandler.UpdateStatus)
    api.PUT("/sessions/:id/mappings", cfg.SessionHandler.ReplaceMappings)
    api.GET("/sessions/:id/export", cfg.ExportHandler.Download)

    // Schema generation + registry
    api.POST("/schemas/generate", cfg.SchemaHandler.Generate)
    api.GET("/schemas/similar", cfg.SchemaHandler.FindSimilar)
    api.GET("/schemas/:entityType", cfg.SchemaHandler.GetByEntityType)
    api.POST("/classify", cfg.SchemaHandler.Classify)
  }

  return router
}
