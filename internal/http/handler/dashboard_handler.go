package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/service"
)

// DashboardHandler handles HTTP requests for the dashboard and reports
type DashboardHandler struct {
	dashboardService *service.DashboardService
	reportService    *service.ReportService
	logger           *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler instance
func NewDashboardHandler(
	dashboardService *service.DashboardService,
	reportService *service.ReportService,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		reportService:    reportService,
		logger:           logger,
	}
}

// Summary godoc
// @Summary Dashboard summary
// @Description Get aggregate counts across repositories, scans and dependencies
// @Tags Dashboard
// @Accept json
// @Produce json
// @Success 200 {object} domain.DashboardSummaryDTO
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboardService.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard summary", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to build dashboard summary",
		})
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GenerateReports godoc
// @Summary Generate reports
// @Description Render all report artifacts from the latest completed scans and archive them
// @Tags Reports
// @Accept json
// @Produce json
// @Success 200 {object} map[string][]string
// @Failure 401 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/generate [post]
func (h *DashboardHandler) GenerateReports(w http.ResponseWriter, r *http.Request) {
	names, err := h.reportService.Generate(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoCompletedScans) {
			respondJSON(w, http.StatusConflict, domain.ErrorResponse{
				Error:   "Conflict",
				Message: "No completed scans to report on",
			})
			return
		}
		h.logger.Error("failed to generate reports", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to generate reports",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string][]string{"reports": names})
}

// DownloadReport godoc
// @Summary Download a report
// @Description Download a previously generated report artifact by name
// @Tags Reports
// @Produce text/csv
// @Produce text/markdown
// @Param name path string true "Report name" Enums(dependencies.csv, dependencies.md, missing-mappings.csv, infrastructure.md)
// @Success 200 {string} string "Report content"
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/{name} [get]
func (h *DashboardHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, contentType, err := h.reportService.Open(r.Context(), name)
	if err != nil {
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
			Error:   "Not Found",
			Message: "Report not found",
		})
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("failed to stream report", zap.String("name", name), zap.Error(err))
	}
}
