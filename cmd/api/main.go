package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/depscan-io/depscan/docs"
	"github.com/depscan-io/depscan/internal/analyzer"
	"github.com/depscan-io/depscan/internal/auth"
	"github.com/depscan-io/depscan/internal/config"
	"github.com/depscan-io/depscan/internal/database"
	"github.com/depscan-io/depscan/internal/gitrepo"
	"github.com/depscan-io/depscan/internal/http/handler"
	"github.com/depscan-io/depscan/internal/http/middleware"
	"github.com/depscan-io/depscan/internal/http/router"
	"github.com/depscan-io/depscan/internal/jobs"
	"github.com/depscan-io/depscan/internal/logger"
	"github.com/depscan-io/depscan/internal/registry"
	"github.com/depscan-io/depscan/internal/repository"
	"github.com/depscan-io/depscan/internal/service"
	"github.com/depscan-io/depscan/internal/storage"
	"github.com/depscan-io/depscan/internal/warehouse"
)

// @title DepScan API
// @version 1.0
// @description Dependency license and infrastructure analysis for tracked Git repositories

// @contact.name API Support
// @contact.email support@depscan.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "depscan-staging.internal.depscan.io"
	case "production":
		docs.SwaggerInfo.Host = "api.depscan.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite deployments run without cmd/migrate, so the schema is kept
	// current here. The postgres schema is managed by goose migrations.
	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize report storage
	reportStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize data warehouse export (optional - scans succeed without it)
	var exporter service.Exporter
	whExporter, err := warehouse.NewExporter(&cfg.Warehouse, log)
	if err != nil {
		// Log error but don't fail - the warehouse export is best effort
		log.Warn("Data warehouse connection failed, continuing without it",
			zap.Error(err),
		)
	} else if whExporter != nil {
		exporter = whExporter
		log.Info("Data warehouse export connected",
			zap.Int("max_open_conns", cfg.Warehouse.MaxOpenConns),
			zap.Int("query_timeout_seconds", cfg.Warehouse.QueryTimeout),
		)
	} else {
		log.Info("Data warehouse export not configured, skipping",
			zap.Bool("enabled", cfg.Warehouse.Enabled),
		)
	}

	// Initialize repositories
	repoRepo := repository.NewRepoRepository(db)
	scanRepo := repository.NewScanRepository(db)
	mappingRepo := repository.NewMappingRepository(db)
	depRepo := repository.NewDependencyRepository(db)

	// Initialize analysis pipeline
	registryClient := registry.NewClient(&cfg.Registry, log)
	cloner := gitrepo.NewCloner(&cfg.Analyzer, log)
	pipeline := analyzer.New(cloner, registryClient, nil, cfg, log)

	// Initialize services
	repoService := service.NewRepoService(repoRepo, log)
	scanService := service.NewScanService(scanRepo, repoRepo, mappingRepo, pipeline, exporter, cfg.Analyzer.MaxConcurrentRepos, log)
	mappingService := service.NewMappingService(mappingRepo, log)
	reportService := service.NewReportService(repoRepo, scanRepo, reportStorage, cfg.Reports.InfraPreamblePath, log)
	dashboardService := service.NewDashboardService(repoRepo, scanRepo, depRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	repoHandler := handler.NewRepoHandler(repoService, scanService, log)
	scanHandler := handler.NewScanHandler(scanService, reportService, log)
	mappingHandler := handler.NewMappingHandler(mappingService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, reportService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		repoHandler,
		scanHandler,
		mappingHandler,
		dashboardHandler,
	)

	// Initialize and start scheduler for the periodic rescan job
	var scheduler *jobs.Scheduler
	if cfg.Jobs.RescanEnabled {
		scheduler = jobs.NewScheduler(log)

		rescan := &rescanFacade{scans: scanService, reports: reportService}
		if err := jobs.RegisterRescanJob(
			scheduler,
			rescan,
			log,
			cfg.Jobs.RescanCron,
			cfg.Jobs.RescanTimeoutDuration(),
			cfg.Jobs.StartupScan,
			cfg.Jobs.StaleMaxAgeDuration(),
		); err != nil {
			log.Error("Failed to register rescan job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with rescan job",
				zap.String("cron_expr", cfg.Jobs.RescanCron),
				zap.Duration("timeout", cfg.Jobs.RescanTimeoutDuration()),
			)
		}
	} else {
		log.Info("Periodic rescan disabled",
			zap.Bool("rescan_enabled", cfg.Jobs.RescanEnabled),
		)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close warehouse connection if initialized
		if whExporter != nil {
			if err := whExporter.Close(); err != nil {
				log.Warn("Error closing data warehouse connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

// rescanFacade combines the scan and report services into the single
// interface the rescan job consumes, so the jobs package does not depend
// on the service package directly.
type rescanFacade struct {
	scans   *service.ScanService
	reports *service.ReportService
}

func (f *rescanFacade) ScanAll(ctx context.Context) error {
	return f.scans.ScanAll(ctx)
}

func (f *rescanFacade) RescanStale(ctx context.Context, maxAge time.Duration) (int, error) {
	return f.scans.RescanStale(ctx, maxAge)
}

func (f *rescanFacade) GenerateReports(ctx context.Context) error {
	_, err := f.reports.Generate(ctx)
	return err
}
