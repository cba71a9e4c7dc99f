package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/service"
)

// MappingHandler handles HTTP requests for curated license mappings
type MappingHandler struct {
	mappingService *service.MappingService
	logger         *zap.Logger
}

// NewMappingHandler creates a new MappingHandler instance
func NewMappingHandler(mappingService *service.MappingService, logger *zap.Logger) *MappingHandler {
	return &MappingHandler{
		mappingService: mappingService,
		logger:         logger,
	}
}

// List godoc
// @Summary List license mappings
// @Description Get paginated list of curated license mappings
// @Tags Mappings
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param ecosystem query string false "Filter by ecosystem" Enums(python, javascript, java, dotnet)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.MappingDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /mappings [get]
func (h *MappingHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paging(r)

	ecosystem := r.URL.Query().Get("ecosystem")
	if ecosystem != "" && !domain.IsValidEcosystem(ecosystem) {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "invalid ecosystem: must be one of python, javascript, java, dotnet",
		})
		return
	}

	result, err := h.mappingService.List(r.Context(), page, pageSize, ecosystem)
	if err != nil {
		h.logger.Error("failed to list mappings", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list mappings",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create a license mapping
// @Description Add a curated license entry for a package
// @Tags Mappings
// @Accept json
// @Produce json
// @Param mapping body domain.CreateMappingRequest true "Mapping to create"
// @Success 201 {object} domain.MappingDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /mappings [post]
func (h *MappingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid JSON body",
		})
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.mappingService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrMappingExists) {
			respondJSON(w, http.StatusConflict, domain.ErrorResponse{
				Error:   "Conflict",
				Message: "A mapping for this ecosystem and package already exists",
			})
			return
		}
		h.logger.Error("failed to create mapping", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create mapping",
		})
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// GetByID godoc
// @Summary Get a license mapping
// @Description Get a single curated license mapping by ID
// @Tags Mappings
// @Accept json
// @Produce json
// @Param id path string true "Mapping ID"
// @Success 200 {object} domain.MappingDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /mappings/{id} [get]
func (h *MappingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	dto, err := h.mappingService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMappingNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Mapping not found",
			})
			return
		}
		h.logger.Error("failed to get mapping", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get mapping",
		})
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Update godoc
// @Summary Update a license mapping
// @Description Update a curated license mapping's license, version or URL
// @Tags Mappings
// @Accept json
// @Produce json
// @Param id path string true "Mapping ID"
// @Param mapping body domain.UpdateMappingRequest true "Fields to update"
// @Success 200 {object} domain.MappingDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /mappings/{id} [put]
func (h *MappingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid JSON body",
		})
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.mappingService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrMappingNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Mapping not found",
			})
			return
		}
		h.logger.Error("failed to update mapping", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update mapping",
		})
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Delete godoc
// @Summary Delete a license mapping
// @Description Remove a curated license mapping
// @Tags Mappings
// @Accept json
// @Produce json
// @Param id path string true "Mapping ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /mappings/{id} [delete]
func (h *MappingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.mappingService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrMappingNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Mapping not found",
			})
			return
		}
		h.logger.Error("failed to delete mapping", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete mapping",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Import godoc
// @Summary Import license mappings
// @Description Import curated license mappings from a CSV body (ecosystem,package,version,license,url)
// @Tags Mappings
// @Accept text/csv
// @Produce json
// @Success 200 {object} domain.MappingImportResultDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /mappings/import [post]
func (h *MappingHandler) Import(w http.ResponseWriter, r *http.Request) {
	result, err := h.mappingService.ImportCSV(r.Context(), r.Body)
	if err != nil {
		h.logger.Error("failed to import mappings", zap.Error(err))
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Failed to import mapping CSV",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Export godoc
// @Summary Export license mappings
// @Description Export all curated license mappings as CSV
// @Tags Mappings
// @Produce text/csv
// @Success 200 {string} string "CSV content"
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /mappings/export [get]
func (h *MappingHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="dependency_mapping.csv"`)
	if err := h.mappingService.ExportCSV(r.Context(), w); err != nil {
		h.logger.Error("failed to export mappings", zap.Error(err))
	}
}
