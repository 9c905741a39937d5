package main

import (
  "fmt"
  "os"
  "time"

  redisclient "github.com/heraerp/hera-dev-sub007/internal/clients/redis"
  "github.com/heraerp/hera-dev-sub007/internal/db"
  "github.com/heraerp/hera-dev-sub007/internal/handlers"
  "github.com/heraerp/hera-dev-sub007/internal/logger"
  "github.com/heraerp/hera-dev-sub007/internal/middleware"
  "github.com/heraerp/hera-dev-sub007/internal/repos"
  "github.com/heraerp/hera-dev-sub007/internal/server"
  "github.com/heraerp/hera-dev-sub007/internal/services"
  "github.com/heraerp/hera-dev-sub007/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Error("Postgres auto migration failed", "error", err)
    os.Exit(1)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up repos from main...")
  sessionRepo := repos.NewMappingSessionRepo(thePG, log)
  registryRepo := repos.NewSchemaRegistryRepo(thePG, log)

  // Event bus (best effort: mapping works without Redis)
  var eventBus redisclient.EventBus
  if bus, busErr := redisclient.NewEventBus(log); busErr != nil {
    log.Warn("Redis event bus unavailable, lifecycle events disabled", "error", busErr)
  } else {
    eventBus = bus
    defer bus.Close()
  }

  // Services
  log.Info("Setting up services from main...")
  classifier := services.NewDomainClassifierService(log)
  analyzer := services.NewStructuralAnalyzerService(log, classifier)
  ruleService := services.NewMappingRuleService(log)
  similarityService := services.NewSchemaSimilarityService(thePG, log, registryRepo)
  exportService := services.NewExportService(log)

  backendTimeout := time.Duration(utils.GetEnvAsInt("AI_BACKEND_TIMEOUT_SECONDS", 60, log)) * time.Second
  var backends []services.AIBackend
  primary, err := services.NewOpenAIBackend(log, services.AIBackendConfig{
    Name:    "claude",
    BaseURL: utils.GetEnv("AI_PRIMARY_BASE_URL", "", log),
    APIKey:  utils.GetEnv("AI_PRIMARY_API_KEY", "", log),
    Model:   utils.GetEnv("AI_PRIMARY_MODEL", "", log),
    Timeout: backendTimeout,
  })
  if err != nil {
    log.Warn("Primary AI backend not configured", "error", err)
  } else {
    backends = append(backends, primary)
  }
  secondary, err := services.NewOpenAIBackend(log, services.AIBackendConfig{
    Name:    "openai",
    BaseURL: utils.GetEnv("AI_FALLBACK_BASE_URL", "", log),
    APIKey:  utils.GetEnv("AI_FALLBACK_API_KEY", "", log),
    Model:   utils.GetEnv("AI_FALLBACK_MODEL", "", log),
    Timeout: backendTimeout,
  })
  if err != nil {
    log.Warn("Fallback AI backend not configured", "error", err)
  } else {
    backends = append(backends, secondary)
  }

  generator := services.NewSchemaGenerationService(log, classifier, similarityService, backends, backendTimeout, eventBus)
  sessionService := services.NewMappingSessionService(thePG, log, sessionRepo, analyzer, ruleService, eventBus)

  aiDefault := utils.GetEnvAsBool("AI_ENABLED", len(backends) > 0, log)

  // Handlers
  log.Info("Setting up handlers from main...")
  sessionHandler := handlers.NewSessionHandler(log, analyzer, sessionService)
  schemaHandler := handlers.NewSchemaHandler(log, generator, similarityService, classifier, aiDefault)
  exportHandler := handlers.NewExportHandler(log, sessionService, exportService)

  // Middleware
  tenantMiddleware := middleware.NewTenantMiddleware(log)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    TenantMiddleware: tenantMiddleware,
    SessionHandler:   sessionHandler,
    SchemaHandler:    schemaHandler,
    ExportHandler:    exportHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
