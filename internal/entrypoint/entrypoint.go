package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrima/records-portal/internal/audit"
	"github.com/mrima/records-portal/internal/auth"
	"github.com/mrima/records-portal/internal/config"
	"github.com/mrima/records-portal/internal/database"
	auditRepo "github.com/mrima/records-portal/internal/database/audit"
	"github.com/mrima/records-portal/internal/database/records"
	"github.com/mrima/records-portal/internal/database/runs"
	http_controllers "github.com/mrima/records-portal/internal/http"
	"github.com/mrima/records-portal/internal/metrics"
	"github.com/mrima/records-portal/internal/scheduler"
	"github.com/mrima/records-portal/internal/services"
	"github.com/mrima/records-portal/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func Serve(ctx context.Context, router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err, ok := <-listenErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}

// Run wires every component from cfg and serves until SIGINT or SIGTERM.
func Run(ctx context.Context, cfg *config.Config, version string) error {
	log.Printf("Starting records portal importer v%s", version)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.NewDatabase(database.Options{
		Driver:  cfg.Database.Driver,
		Path:    cfg.Database.Path,
		DSN:     cfg.Database.DSN,
		Verbose: cfg.Database.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Audit events, with report archives when AUDIT_DIR is set
	var auditor *audit.Auditor
	if cfg.Audit.Dir != "" {
		auditor = audit.NewAuditor(cfg.Audit.Dir)
		log.Printf("[AUDIT] Archiving import reports to %s", cfg.Audit.Dir)
	}
	auditService := audit.NewService(auditRepo.NewRepository(db.DB), auditor)
	defer auditService.Flush()

	var observer services.ImportObserver
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		m := metrics.New()
		observer = m
		metricsHandler = m.Handler()
	}

	store := records.NewRepository(db.DB)
	importService := services.NewImportService(
		store,
		runs.NewRepository(db.DB, cfg.Import.StaleRunTimeout),
		auditService,
		observer,
		services.SettingsFromConfig(cfg.Import),
	)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		tasksPath := cfg.Tasks.DatabasePath
		if tasksPath == "" {
			tasksPath = tasks.DatabasePath(cfg.Database.Path)
		}
		taskClient, err = tasks.NewClient(tasksPath, taskCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewImportFileQueue(importService),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Audit retention sweep
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	if cfg.Audit.CleanupEnabled {
		job := scheduler.DirectCleanup(auditService, cfg.Audit.RetentionDays)
		if taskClient != nil {
			job = scheduler.EnqueueCleanup(taskClient, cfg.Audit.RetentionDays)
		}
		cleanupScheduler = scheduler.NewAuditCleanupScheduler(cfg.Audit.CleanupSchedule, job)
		if err := cleanupScheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start audit cleanup scheduler: %w", err)
		}
	}

	var staffGuard *auth.StaffGuard
	if cfg.Auth.StaffTokenHash != "" {
		limiter := auth.NewRateLimiter(auth.DefaultRateLimitConfig())
		defer limiter.Stop()
		staffGuard = auth.NewStaffGuard(cfg.Auth.StaffTokenHash, limiter)
		log.Printf("Staff endpoints require a bearer token")
	} else {
		log.Printf("WARNING: STAFF_TOKEN_HASH is not set. Import endpoints are open to anyone.")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Importer:   importService,
		Records:    store,
		Audit:      auditService,
		Database:   db,
		SpoolDir:   cfg.Import.SpoolDir,
		StaffGuard: staffGuard,
		ReadOnly:   cfg.HTTP.ReadOnly,
		Metrics:    metricsHandler,
		MinQuality: cfg.Registry.MinQuality,
		PageSize:   cfg.Registry.PageSize,
		Version:    version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
		routerCfg.TaskHealth = taskClient
	}

	if cfg.HTTP.ReadOnly {
		log.Printf("Read-only mode: imports are disabled")
	}
	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	return Serve(ctx, router, cfg, onShutdown)
}
