package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/service"
)

// RepoHandler handles HTTP requests for tracked repositories
type RepoHandler struct {
	repoService *service.RepoService
	scanService *service.ScanService
	logger      *zap.Logger
}

// NewRepoHandler creates a new RepoHandler instance
func NewRepoHandler(repoService *service.RepoService, scanService *service.ScanService, logger *zap.Logger) *RepoHandler {
	return &RepoHandler{
		repoService: repoService,
		scanService: scanService,
		logger:      logger,
	}
}

// List godoc
// @Summary List repositories
// @Description Get paginated list of tracked repositories
// @Tags Repositories
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or URL"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.RepositoryDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /repositories [get]
func (h *RepoHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paging(r)
	search := r.URL.Query().Get("search")

	result, err := h.repoService.List(r.Context(), page, pageSize, search)
	if err != nil {
		h.logger.Error("failed to list repositories", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list repositories",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Register a repository
// @Description Register a Git repository URL for dependency analysis
// @Tags Repositories
// @Accept json
// @Produce json
// @Param repository body domain.CreateRepositoryRequest true "Repository to register"
// @Success 201 {object} domain.RepositoryDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /repositories [post]
func (h *RepoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRepositoryRequest
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

	dto, err := h.repoService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrRepositoryExists) {
			respondJSON(w, http.StatusConflict, domain.ErrorResponse{
				Error:   "Conflict",
				Message: "Repository URL is already registered",
			})
			return
		}
		h.logger.Error("failed to create repository", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create repository",
		})
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// GetByID godoc
// @Summary Get a repository
// @Description Get a single tracked repository by ID
// @Tags Repositories
// @Accept json
// @Produce json
// @Param id path string true "Repository ID"
// @Success 200 {object} domain.RepositoryDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /repositories/{id} [get]
func (h *RepoHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	dto, err := h.repoService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRepositoryNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Repository not found",
			})
			return
		}
		h.logger.Error("failed to get repository", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get repository",
		})
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Update godoc
// @Summary Update a repository
// @Description Update a repository's name or active flag
// @Tags Repositories
// @Accept json
// @Produce json
// @Param id path string true "Repository ID"
// @Param repository body domain.UpdateRepositoryRequest true "Fields to update"
// @Success 200 {object} domain.RepositoryDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /repositories/{id} [put]
func (h *RepoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateRepositoryRequest
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

	dto, err := h.repoService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrRepositoryNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Repository not found",
			})
			return
		}
		h.logger.Error("failed to update repository", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update repository",
		})
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Delete godoc
// @Summary Delete a repository
// @Description Delete a repository and its scan history
// @Tags Repositories
// @Accept json
// @Produce json
// @Param id path string true "Repository ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /repositories/{id} [delete]
func (h *RepoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.repoService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrRepositoryNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Repository not found",
			})
			return
		}
		h.logger.Error("failed to delete repository", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete repository",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Scan godoc
// @Summary Trigger a scan
// @Description Queue a new analysis scan for the repository
// @Tags Repositories
// @Accept json
// @Produce json
// @Param id path string true "Repository ID"
// @Success 202 {object} domain.ScanDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /repositories/{id}/scan [post]
func (h *RepoHandler) Scan(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	dto, err := h.scanService.Enqueue(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRepositoryNotFound):
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Repository not found",
			})
		case errors.Is(err, service.ErrRepositoryInactive):
			respondJSON(w, http.StatusConflict, domain.ErrorResponse{
				Error:   "Conflict",
				Message: "Repository is not active",
			})
		default:
			h.logger.Error("failed to enqueue scan", zap.Error(err))
			respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
				Error:   "Internal Server Error",
				Message: "Failed to enqueue scan",
			})
		}
		return
	}

	respondJSON(w, http.StatusAccepted, dto)
}

// parseID reads the {id} path parameter as a UUID
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}
