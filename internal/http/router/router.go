package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/depscan-io/depscan/internal/auth"
	"github.com/depscan-io/depscan/internal/config"
	"github.com/depscan-io/depscan/internal/database"
	"github.com/depscan-io/depscan/internal/http/handler"
	"github.com/depscan-io/depscan/internal/http/middleware"

	_ "github.com/depscan-io/depscan/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	repoHandler      *handler.RepoHandler
	scanHandler      *handler.ScanHandler
	mappingHandler   *handler.MappingHandler
	dashboardHandler *handler.DashboardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	repoHandler *handler.RepoHandler,
	scanHandler *handler.ScanHandler,
	mappingHandler *handler.MappingHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		repoHandler:      repoHandler,
		scanHandler:      scanHandler,
		mappingHandler:   mappingHandler,
		dashboardHandler: dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Repositories
			r.Route("/repositories", func(r chi.Router) {
				r.Get("/", rt.repoHandler.List)
				r.Post("/", rt.repoHandler.Create)
				r.Get("/{id}", rt.repoHandler.GetByID)
				r.Put("/{id}", rt.repoHandler.Update)
				r.Delete("/{id}", rt.repoHandler.Delete)
				r.Post("/{id}/scan", rt.repoHandler.Scan)
			})

			// Scans
			r.Route("/scans", func(r chi.Router) {
				r.Get("/", rt.scanHandler.List)
				r.Get("/{id}", rt.scanHandler.GetByID)
				r.Get("/{id}/infrastructure", rt.scanHandler.GetInfra)
				r.Get("/{id}/report", rt.scanHandler.Report)
				r.Post("/{id}/archive", rt.scanHandler.Archive)
			})

			// License mappings
			r.Route("/mappings", func(r chi.Router) {
				r.Get("/", rt.mappingHandler.List)
				r.Post("/", rt.mappingHandler.Create)
				r.Post("/import", rt.mappingHandler.Import)
				r.Get("/export", rt.mappingHandler.Export)
				r.Get("/{id}", rt.mappingHandler.GetByID)
				r.Put("/{id}", rt.mappingHandler.Update)
				r.Delete("/{id}", rt.mappingHandler.Delete)
			})

			// Dashboard & reports
			r.Get("/dashboard/summary", rt.dashboardHandler.Summary)
			r.Post("/reports/generate", rt.dashboardHandler.GenerateReports)
			r.Get("/reports/{name}", rt.dashboardHandler.DownloadReport)
		})
	})

	return r
}
