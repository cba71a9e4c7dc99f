package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"

	"github.com/depscan-io/depscan/internal/analyzer"
	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/mapper"
	"github.com/depscan-io/depscan/internal/repository"
)

// ErrScanNotFound is returned when a scan is not found
var ErrScanNotFound = errors.New("scan not found")

// ErrRepositoryInactive is returned when scanning a deactivated repository
var ErrRepositoryInactive = errors.New("repository is not active")

// Pipeline runs the analysis for a single repository URL
type Pipeline interface {
	AnalyzeRepoWith(ctx context.Context, url string, mappings analyzer.MappingSource) analyzer.RepoReport
}

// Exporter pushes completed scan summaries to the data warehouse
type Exporter interface {
	ExportScan(ctx context.Context, repo *domain.Repository, scan *domain.Scan) error
}

// ScanService orchestrates scans and persists their results
type ScanService struct {
	scanRepo    *repository.ScanRepository
	repoRepo    *repository.RepoRepository
	mappingRepo *repository.MappingRepository
	pipeline    Pipeline
	exporter    Exporter
	sem         *semaphore.Weighted
	logger      *zap.Logger
}

// NewScanService creates a new ScanService instance. maxConcurrent bounds
// how many repositories are analyzed at the same time; exporter may be nil.
func NewScanService(
	scanRepo *repository.ScanRepository,
	repoRepo *repository.RepoRepository,
	mappingRepo *repository.MappingRepository,
	pipeline Pipeline,
	exporter Exporter,
	maxConcurrent int,
	logger *zap.Logger,
) *ScanService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &ScanService{
		scanRepo:    scanRepo,
		repoRepo:    repoRepo,
		mappingRepo: mappingRepo,
		pipeline:    pipeline,
		exporter:    exporter,
		sem:         semaphore.NewWeighted(int64(maxConcurrent)),
		logger:      logger,
	}
}

// Enqueue creates a pending scan and starts it in the background
func (s *ScanService) Enqueue(ctx context.Context, repositoryID uuid.UUID) (*domain.ScanDTO, error) {
	repo, err := s.repoRepo.GetByID(ctx, repositoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRepositoryNotFound
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	if !repo.IsActive {
		return nil, ErrRepositoryInactive
	}

	scan := &domain.Scan{
		RepositoryID: repo.ID,
		Status:       domain.ScanStatusPending,
	}
	if err := s.scanRepo.Create(ctx, scan); err != nil {
		return nil, fmt.Errorf("failed to create scan: %w", err)
	}

	// The scan outlives the request, so it runs on a detached context.
	go s.run(context.Background(), scan.ID, repo)

	scan.Repository = repo
	dto := mapper.ToScanDTO(scan)
	return &dto, nil
}

// RunForRepository scans one repository synchronously, used by jobs
func (s *ScanService) RunForRepository(ctx context.Context, repositoryID uuid.UUID) error {
	repo, err := s.repoRepo.GetByID(ctx, repositoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRepositoryNotFound
		}
		return fmt.Errorf("failed to get repository: %w", err)
	}
	if !repo.IsActive {
		return ErrRepositoryInactive
	}

	scan := &domain.Scan{
		RepositoryID: repo.ID,
		Status:       domain.ScanStatusPending,
	}
	if err := s.scanRepo.Create(ctx, scan); err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}

	s.run(ctx, scan.ID, repo)
	return nil
}

// ScanAll scans every active repository and blocks until all finish
func (s *ScanService) ScanAll(ctx context.Context) error {
	repos, err := s.repoRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active repositories: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, repo := range repos {
		repo := repo
		g.Go(func() error {
			scan := &domain.Scan{
				RepositoryID: repo.ID,
				Status:       domain.ScanStatusPending,
			}
			if err := s.scanRepo.Create(gctx, scan); err != nil {
				return fmt.Errorf("failed to create scan for %s: %w", repo.Name, err)
			}
			s.run(gctx, scan.ID, &repo)
			return nil
		})
	}
	return g.Wait()
}

// run executes the pipeline for one scan. Failures are recorded on the
// scan row instead of being returned.
func (s *ScanService) run(ctx context.Context, scanID uuid.UUID, repo *domain.Repository) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.logger.Warn("scan canceled before start",
			zap.String("scanID", scanID.String()), zap.Error(err))
		return
	}
	defer s.sem.Release(1)

	startedAt := time.Now().UTC()
	if err := s.scanRepo.MarkRunning(ctx, scanID, startedAt); err != nil {
		s.logger.Error("failed to mark scan running",
			zap.String("scanID", scanID.String()), zap.Error(err))
		return
	}

	mappings, err := s.loadMappings(ctx)
	if err != nil {
		s.logger.Warn("failed to load license mappings, scanning without them", zap.Error(err))
		mappings = analyzer.NewStaticMappings(nil)
	}

	report := s.pipeline.AnalyzeRepoWith(ctx, repo.URL, mappings)
	if report.Err != nil {
		s.logger.Error("scan failed",
			zap.String("scanID", scanID.String()),
			zap.String("repository", repo.Name),
			zap.Error(report.Err),
		)
		if err := s.scanRepo.MarkFailed(ctx, scanID, report.Err.Error(), time.Now().UTC()); err != nil {
			s.logger.Error("failed to mark scan failed",
				zap.String("scanID", scanID.String()), zap.Error(err))
		}
		return
	}

	if err := s.persistResults(ctx, scanID, repo, report); err != nil {
		s.logger.Error("failed to persist scan results",
			zap.String("scanID", scanID.String()), zap.Error(err))
		_ = s.scanRepo.MarkFailed(ctx, scanID, err.Error(), time.Now().UTC())
		return
	}

	s.logger.Info("scan completed",
		zap.String("scanID", scanID.String()),
		zap.String("repository", repo.Name),
		zap.Int("dependencies", len(report.Dependencies)),
	)
}

// loadMappings snapshots the curated mappings from the database
func (s *ScanService) loadMappings(ctx context.Context) (analyzer.MappingSource, error) {
	rows, err := s.mappingRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	mappings := make([]analyzer.Mapping, len(rows))
	for i, row := range rows {
		mappings[i] = analyzer.Mapping{
			Ecosystem: row.Ecosystem,
			Name:      row.Name,
			Version:   row.Version,
			License:   row.License,
			URL:       row.DocumentationURL,
		}
	}
	return analyzer.NewStaticMappings(mappings), nil
}

// persistResults stores the completed scan and refreshes the repository's
// derived metadata.
func (s *ScanService) persistResults(ctx context.Context, scanID uuid.UUID, repo *domain.Repository, report analyzer.RepoReport) error {
	scan, err := s.scanRepo.GetByID(ctx, scanID)
	if err != nil {
		return fmt.Errorf("failed to reload scan: %w", err)
	}

	startedAt := report.StartedAt
	finishedAt := report.FinishedAt
	scan.Status = domain.ScanStatusCompleted
	scan.Error = ""
	scan.License = report.License
	scan.Description = report.Description
	scan.Ecosystems = domain.JoinEcosystems(report.Ecosystems)
	scan.DependencyCount = len(report.Dependencies)
	scan.StartedAt = &startedAt
	scan.FinishedAt = &finishedAt
	scan.Repository = nil

	scan.Dependencies = make([]domain.Dependency, len(report.Dependencies))
	for i, d := range report.Dependencies {
		scan.Dependencies[i] = domain.Dependency{
			Name:      d.Name,
			Version:   d.Version,
			Ecosystem: d.Ecosystem,
			License:   d.License,
			Source:    d.Source,
			URL:       d.URL,
		}
	}
	scan.Resources = make([]domain.InfraResource, len(report.Infra.Resources))
	for i, r := range report.Infra.Resources {
		scan.Resources[i] = domain.InfraResource{
			Name:         r.Name,
			ResourceType: r.Type,
			Language:     r.Language,
			SourceFile:   r.SourceFile,
			Size:         r.Size,
		}
	}
	scan.Workflows = make([]domain.WorkflowSummary, len(report.Infra.Workflows))
	for i, w := range report.Infra.Workflows {
		scan.Workflows[i] = domain.WorkflowSummary{
			Name:     w.Name,
			Path:     w.Path,
			Triggers: w.Triggers,
			JobNames: strings.Join(w.JobNames, ","),
		}
	}
	scan.Interactions = make([]domain.ServiceInteraction, len(report.Infra.Interactions))
	for i, in := range report.Infra.Interactions {
		scan.Interactions[i] = domain.ServiceInteraction{
			Service:         in.Service,
			Name:            in.Name,
			InteractionType: in.Type,
			Language:        in.Language,
			Details:         in.Details,
		}
	}

	if err := s.scanRepo.SaveResults(ctx, scan); err != nil {
		return fmt.Errorf("failed to save scan results: %w", err)
	}

	repo.License = report.License
	repo.Description = report.Description
	repo.Ecosystems = domain.JoinEcosystems(report.Ecosystems)
	if err := s.repoRepo.Update(ctx, repo); err != nil {
		return fmt.Errorf("failed to update repository metadata: %w", err)
	}

	if s.exporter != nil {
		if err := s.exporter.ExportScan(ctx, repo, scan); err != nil {
			s.logger.Warn("warehouse export failed",
				zap.String("scanID", scan.ID.String()), zap.Error(err))
		}
	}

	return nil
}

// GetByID returns a single scan
func (s *ScanService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScanDTO, error) {
	scan, err := s.scanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScanNotFound
		}
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	dto := mapper.ToScanDTO(scan)
	return &dto, nil
}

// GetDetail returns a scan with its resolved dependencies
func (s *ScanService) GetDetail(ctx context.Context, id uuid.UUID) (*domain.ScanDetailDTO, error) {
	scan, err := s.scanRepo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScanNotFound
		}
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	dto := mapper.ToScanDetailDTO(scan)
	return &dto, nil
}

// GetInfra returns the infrastructure findings of a scan
func (s *ScanService) GetInfra(ctx context.Context, id uuid.UUID) (*domain.InfraDTO, error) {
	scan, err := s.scanRepo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScanNotFound
		}
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	dto := mapper.ToInfraDTO(scan)
	return &dto, nil
}

// List returns a page of scans, optionally filtered by repository and status
func (s *ScanService) List(ctx context.Context, page, pageSize int, repositoryID *uuid.UUID, status string) (*domain.PaginatedResponse, error) {
	scans, total, err := s.scanRepo.List(ctx, page, pageSize, repositoryID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}

	return &domain.PaginatedResponse{
		Data:       mapper.ToScanDTOs(scans),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// RescanStale scans every active repository without a completed scan newer
// than maxAge.
func (s *ScanService) RescanStale(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	ids, err := s.scanRepo.ListStaleRepositoryIDs(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to find stale repositories: %w", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := s.RunForRepository(gctx, id); err != nil && !errors.Is(err, ErrRepositoryInactive) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return len(ids), err
	}
	return len(ids), nil
}
