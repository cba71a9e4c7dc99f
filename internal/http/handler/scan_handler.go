package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/service"
)

// ScanHandler handles HTTP requests for scans
type ScanHandler struct {
	scanService   *service.ScanService
	reportService *service.ReportService
	logger        *zap.Logger
}

// NewScanHandler creates a new ScanHandler instance
func NewScanHandler(scanService *service.ScanService, reportService *service.ReportService, logger *zap.Logger) *ScanHandler {
	return &ScanHandler{
		scanService:   scanService,
		reportService: reportService,
		logger:        logger,
	}
}

// List godoc
// @Summary List scans
// @Description Get paginated list of scans, optionally filtered by repository and status
// @Tags Scans
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param repositoryId query string false "Filter by repository ID"
// @Param status query string false "Filter by status" Enums(pending, running, completed, failed)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ScanDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /scans [get]
func (h *ScanHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paging(r)

	var repositoryID *uuid.UUID
	if raw := r.URL.Query().Get("repositoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid repositoryId format",
			})
			return
		}
		repositoryID = &id
	}

	status := r.URL.Query().Get("status")
	if status != "" {
		switch domain.ScanStatus(status) {
		case domain.ScanStatusPending, domain.ScanStatusRunning, domain.ScanStatusCompleted, domain.ScanStatusFailed:
		default:
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "invalid status: must be one of pending, running, completed, failed",
			})
			return
		}
	}

	result, err := h.scanService.List(r.Context(), page, pageSize, repositoryID, status)
	if err != nil {
		h.logger.Error("failed to list scans", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list scans",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get a scan
// @Description Get a single scan with its resolved dependencies
// @Tags Scans
// @Accept json
// @Produce json
// @Param id path string true "Scan ID"
// @Success 200 {object} domain.ScanDetailDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /scans/{id} [get]
func (h *ScanHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	dto, err := h.scanService.GetDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrScanNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Scan not found",
			})
			return
		}
		h.logger.Error("failed to get scan", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get scan",
		})
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// GetInfra godoc
// @Summary Get scan infrastructure findings
// @Description Get the infrastructure resources, workflows and service interactions found by a scan
// @Tags Scans
// @Accept json
// @Produce json
// @Param id path string true "Scan ID"
// @Success 200 {object} domain.InfraDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /scans/{id}/infrastructure [get]
func (h *ScanHandler) GetInfra(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	dto, err := h.scanService.GetInfra(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrScanNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Scan not found",
			})
			return
		}
		h.logger.Error("failed to get scan infrastructure", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get scan infrastructure",
		})
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Report godoc
// @Summary Render a scan report
// @Description Render one report document for a single scan
// @Tags Scans
// @Produce text/csv
// @Produce text/markdown
// @Param id path string true "Scan ID"
// @Param format query string true "Report format" Enums(csv, markdown, missing, infra)
// @Success 200 {string} string "Report content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /scans/{id}/report [get]
func (h *ScanHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	data, contentType, filename, err := h.reportService.RenderScan(r.Context(), id, format)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownReportFormat):
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Unknown report format, expected csv, markdown, missing or infra",
			})
		case errors.Is(err, service.ErrScanNotFound):
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Scan not found",
			})
		default:
			h.logger.Error("failed to render scan report", zap.Error(err))
			respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
				Error:   "Internal Server Error",
				Message: "Failed to render scan report",
			})
		}
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(data)
}

// Archive godoc
// @Summary Archive scan reports
// @Description Render every report document for a scan and upload them to the report archive
// @Tags Scans
// @Accept json
// @Produce json
// @Param id path string true "Scan ID"
// @Success 200 {object} map[string][]string
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /scans/{id}/archive [post]
func (h *ScanHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	names, err := h.reportService.ArchiveScan(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrScanNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Scan not found",
			})
			return
		}
		h.logger.Error("failed to archive scan reports", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to archive scan reports",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string][]string{"reports": names})
}
