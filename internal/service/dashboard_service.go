package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/repository"
)

// DashboardService aggregates counts for the dashboard endpoint
type DashboardService struct {
	repoRepo *repository.RepoRepository
	scanRepo *repository.ScanRepository
	depRepo  *repository.DependencyRepository
	logger   *zap.Logger
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(
	repoRepo *repository.RepoRepository,
	scanRepo *repository.ScanRepository,
	depRepo *repository.DependencyRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		repoRepo: repoRepo,
		scanRepo: scanRepo,
		depRepo:  depRepo,
		logger:   logger,
	}
}

// Summary returns the aggregate counts across all repositories and scans
func (s *DashboardService) Summary(ctx context.Context) (*domain.DashboardSummaryDTO, error) {
	summary := &domain.DashboardSummaryDTO{}

	var err error
	if summary.Repositories, err = s.repoRepo.Count(ctx, false); err != nil {
		return nil, fmt.Errorf("failed to count repositories: %w", err)
	}
	if summary.ActiveRepos, err = s.repoRepo.Count(ctx, true); err != nil {
		return nil, fmt.Errorf("failed to count active repositories: %w", err)
	}
	if summary.Scans, err = s.scanRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count scans: %w", err)
	}
	if summary.CompletedScans, err = s.scanRepo.CountByStatus(ctx, domain.ScanStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to count completed scans: %w", err)
	}
	if summary.FailedScans, err = s.scanRepo.CountByStatus(ctx, domain.ScanStatusFailed); err != nil {
		return nil, fmt.Errorf("failed to count failed scans: %w", err)
	}
	if summary.Dependencies, err = s.depRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count dependencies: %w", err)
	}
	if summary.Unresolved, err = s.depRepo.CountUnresolved(ctx); err != nil {
		return nil, fmt.Errorf("failed to count unresolved dependencies: %w", err)
	}
	if summary.LicenseBreakdown, err = s.depRepo.LicenseBreakdown(ctx); err != nil {
		return nil, fmt.Errorf("failed to build license breakdown: %w", err)
	}

	return summary, nil
}
