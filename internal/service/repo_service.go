package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/gitrepo"
	"github.com/depscan-io/depscan/internal/mapper"
	"github.com/depscan-io/depscan/internal/repository"
)

// ErrRepositoryNotFound is returned when a repository is not found
var ErrRepositoryNotFound = errors.New("repository not found")

// ErrRepositoryExists is returned when registering a URL that is already tracked
var ErrRepositoryExists = errors.New("repository already registered")

// RepoService handles business logic for tracked repositories
type RepoService struct {
	repoRepo *repository.RepoRepository
	logger   *zap.Logger
}

// NewRepoService creates a new RepoService instance
func NewRepoService(repoRepo *repository.RepoRepository, logger *zap.Logger) *RepoService {
	return &RepoService{
		repoRepo: repoRepo,
		logger:   logger,
	}
}

// Create registers a repository URL for analysis
func (s *RepoService) Create(ctx context.Context, req *domain.CreateRepositoryRequest) (*domain.RepositoryDTO, error) {
	url := strings.TrimSpace(req.URL)

	if _, err := s.repoRepo.GetByURL(ctx, url); err == nil {
		return nil, ErrRepositoryExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing repository: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = gitrepo.RepoName(url)
	}

	repo := &domain.Repository{
		URL:      url,
		Name:     name,
		IsActive: true,
	}
	if err := s.repoRepo.Create(ctx, repo); err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	s.logger.Info("repository registered",
		zap.String("repositoryID", repo.ID.String()),
		zap.String("url", repo.URL),
	)

	dto := mapper.ToRepositoryDTO(repo)
	return &dto, nil
}

// GetByID returns a single repository
func (s *RepoService) GetByID(ctx context.Context, id uuid.UUID) (*domain.RepositoryDTO, error) {
	repo, err := s.repoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRepositoryNotFound
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}

	dto := mapper.ToRepositoryDTO(repo)
	return &dto, nil
}

// List returns a page of repositories with an optional name or URL search
func (s *RepoService) List(ctx context.Context, page, pageSize int, search string) (*domain.PaginatedResponse, error) {
	repos, total, err := s.repoRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	return &domain.PaginatedResponse{
		Data:       mapper.ToRepositoryDTOs(repos),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// Update changes repository settings
func (s *RepoService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateRepositoryRequest) (*domain.RepositoryDTO, error) {
	repo, err := s.repoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRepositoryNotFound
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		repo.Name = strings.TrimSpace(*req.Name)
	}
	if req.IsActive != nil {
		repo.IsActive = *req.IsActive
	}

	if err := s.repoRepo.Update(ctx, repo); err != nil {
		return nil, fmt.Errorf("failed to update repository: %w", err)
	}

	dto := mapper.ToRepositoryDTO(repo)
	return &dto, nil
}

// Delete removes a repository and all its scan history
func (s *RepoService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repoRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRepositoryNotFound
		}
		return fmt.Errorf("failed to get repository: %w", err)
	}

	if err := s.repoRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete repository: %w", err)
	}

	s.logger.Info("repository deleted", zap.String("repositoryID", id.String()))
	return nil
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
