package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrima/records-portal/internal/auth"
	"github.com/mrima/records-portal/internal/readonly"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(readonly.NewMiddleware(cfg.ReadOnly, "/validate").Handler())

	guard := cfg.StaffGuard
	if guard == nil {
		guard = auth.NewStaffGuard("", nil)
	}

	health := NewHealthController(cfg.Database, cfg.TaskHealth, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := router.Group("/api")

	// Public endpoints
	if cfg.Records != nil {
		registryController := NewRegistryController(cfg.Records, cfg.MinQuality, cfg.PageSize)
		api.GET("/domains", registryController.ListDomains)
		api.GET("/registry/:domain", registryController.Search)
		api.GET("/registry/:domain/stats", registryController.Stats)
	}

	staff := api.Group("", guard.Handler())

	// Import endpoints
	if cfg.Importer != nil {
		importController := NewImportController(cfg.Importer, cfg.TaskQueue, cfg.SpoolDir)
		api.GET("/import/:domain/template", importController.Template)
		staff.POST("/import/:domain", importController.Import)
		staff.POST("/import/:domain/async", importController.ImportAsync)
		staff.POST("/import/:domain/validate", importController.Validate)
		staff.GET("/import/:domain/progress", importController.Progress)
	}

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		staff.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	// Audit log
	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		staff.GET("/audit", auditController.GetAuditEvents)
	}

	return router
}
