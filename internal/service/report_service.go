package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/depscan-io/depscan/internal/analyzer"
	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/iac"
	"github.com/depscan-io/depscan/internal/report"
	"github.com/depscan-io/depscan/internal/repository"
	"github.com/depscan-io/depscan/internal/storage"
)

// ErrReportNotFound is returned when a requested report artifact does not exist
var ErrReportNotFound = errors.New("report not found")

// ErrNoCompletedScans is returned when no repository has a completed scan yet
var ErrNoCompletedScans = errors.New("no completed scans to report on")

// Report artifact names
const (
	ReportDependenciesCSV  = "dependencies.csv"
	ReportDependenciesMD   = "dependencies.md"
	ReportMissingMappings  = "missing-mappings.csv"
	ReportInfrastructureMD = "infrastructure.md"
)

// ReportNames lists every artifact Generate produces
var ReportNames = []string{
	ReportDependenciesCSV,
	ReportDependenciesMD,
	ReportMissingMappings,
	ReportInfrastructureMD,
}

// ReportService renders report artifacts from the latest completed scans
// and archives them.
type ReportService struct {
	repoRepo     *repository.RepoRepository
	scanRepo     *repository.ScanRepository
	store        storage.Storage
	preamblePath string
	logger       *zap.Logger
}

// NewReportService creates a new ReportService instance
func NewReportService(
	repoRepo *repository.RepoRepository,
	scanRepo *repository.ScanRepository,
	store storage.Storage,
	preamblePath string,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		repoRepo:     repoRepo,
		scanRepo:     scanRepo,
		store:        store,
		preamblePath: preamblePath,
		logger:       logger,
	}
}

// Generate renders all report artifacts from each active repository's
// latest completed scan and uploads them to the archive.
func (s *ReportService) Generate(ctx context.Context) ([]string, error) {
	reports, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrNoCompletedScans
	}

	now := time.Now().UTC()
	artifacts := map[string]func(io.Writer) error{
		ReportDependenciesCSV: func(w io.Writer) error {
			return report.WriteDependencyCSV(w, reports)
		},
		ReportDependenciesMD: func(w io.Writer) error {
			return report.WriteDependencyMarkdown(w, reports, now)
		},
		ReportMissingMappings: func(w io.Writer) error {
			return report.WriteMissingMappingCSV(w, reports)
		},
		ReportInfrastructureMD: func(w io.Writer) error {
			return report.WriteInfraMarkdown(w, reports, s.preamblePath, now)
		},
	}

	for _, name := range ReportNames {
		var buf bytes.Buffer
		if err := artifacts[name](&buf); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", name, err)
		}
		contentType := "text/markdown"
		if strings.HasSuffix(name, ".csv") {
			contentType = "text/csv"
		}
		if _, err := s.store.Upload(ctx, name, contentType, &buf); err != nil {
			return nil, fmt.Errorf("failed to archive %s: %w", name, err)
		}
	}

	s.logger.Info("reports generated",
		zap.Int("repositories", len(reports)),
		zap.Strings("artifacts", ReportNames),
	)

	return ReportNames, nil
}

// Open streams a previously generated report artifact
func (s *ReportService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	valid := false
	for _, n := range ReportNames {
		if n == name {
			valid = true
			break
		}
	}
	if !valid {
		return nil, "", ErrReportNotFound
	}

	rc, err := s.store.Download(ctx, name)
	if err != nil {
		return nil, "", ErrReportNotFound
	}

	contentType := "text/markdown"
	if strings.HasSuffix(name, ".csv") {
		contentType = "text/csv"
	}
	return rc, contentType, nil
}

// Scan report formats accepted by RenderScan
const (
	ScanReportCSV      = "csv"
	ScanReportMarkdown = "markdown"
	ScanReportMissing  = "missing"
	ScanReportInfra    = "infra"
)

// ErrUnknownReportFormat is returned for formats RenderScan does not support
var ErrUnknownReportFormat = errors.New("unknown report format")

// RenderScan renders one artifact for a single scan.
// Returns the document, its content type and a download filename.
func (s *ReportService) RenderScan(ctx context.Context, id uuid.UUID, format string) ([]byte, string, string, error) {
	scan, err := s.scanRepo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrScanNotFound
		}
		return nil, "", "", fmt.Errorf("failed to load scan: %w", err)
	}
	reports := []analyzer.RepoReport{scanToReport(scan.Repository, scan)}

	var buf bytes.Buffer
	var contentType, filename string
	switch format {
	case ScanReportCSV:
		err = report.WriteDependencyCSV(&buf, reports)
		contentType, filename = "text/csv", ReportDependenciesCSV
	case ScanReportMarkdown:
		err = report.WriteDependencyMarkdown(&buf, reports, time.Now().UTC())
		contentType, filename = "text/markdown", ReportDependenciesMD
	case ScanReportMissing:
		err = report.WriteMissingMappingCSV(&buf, reports)
		contentType, filename = "text/csv", ReportMissingMappings
	case ScanReportInfra:
		err = report.WriteInfraMarkdown(&buf, reports, s.preamblePath, time.Now().UTC())
		contentType, filename = "text/markdown", ReportInfrastructureMD
	default:
		return nil, "", "", ErrUnknownReportFormat
	}
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to render %s report: %w", format, err)
	}
	return buf.Bytes(), contentType, filename, nil
}

// ArchiveScan renders every artifact for one scan and uploads them under a
// per-scan prefix. Returns the stored object names.
func (s *ReportService) ArchiveScan(ctx context.Context, id uuid.UUID) ([]string, error) {
	formats := []string{ScanReportCSV, ScanReportMarkdown, ScanReportMissing, ScanReportInfra}

	names := make([]string, 0, len(formats))
	for _, format := range formats {
		data, contentType, filename, err := s.RenderScan(ctx, id, format)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("scans/%s/%s", id, filename)
		if _, err := s.store.Upload(ctx, name, contentType, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to archive %s: %w", name, err)
		}
		names = append(names, name)
	}

	s.logger.Info("scan reports archived",
		zap.String("scanID", id.String()),
		zap.Strings("artifacts", names),
	)
	return names, nil
}

// collect rebuilds analyzer reports from each active repository's latest
// completed scan.
func (s *ReportService) collect(ctx context.Context) ([]analyzer.RepoReport, error) {
	repos, err := s.repoRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	var reports []analyzer.RepoReport
	for i := range repos {
		repo := &repos[i]
		latest, err := s.scanRepo.LatestByRepository(ctx, repo.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to find latest scan for %s: %w", repo.Name, err)
		}
		scan, err := s.scanRepo.GetDetail(ctx, latest.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load scan %s: %w", latest.ID, err)
		}
		reports = append(reports, scanToReport(repo, scan))
	}
	return reports, nil
}

// scanToReport converts a persisted scan back into the analyzer's report
// shape so the report renderers serve both the CLI and the service.
func scanToReport(repo *domain.Repository, scan *domain.Scan) analyzer.RepoReport {
	r := analyzer.RepoReport{
		URL:         repo.URL,
		Name:        repo.Name,
		License:     scan.License,
		Description: scan.Description,
		Ecosystems:  scan.EcosystemList(),
	}
	if scan.StartedAt != nil {
		r.StartedAt = *scan.StartedAt
	}
	if scan.FinishedAt != nil {
		r.FinishedAt = *scan.FinishedAt
	}

	r.Dependencies = make([]analyzer.Dependency, len(scan.Dependencies))
	for i, d := range scan.Dependencies {
		r.Dependencies[i] = analyzer.Dependency{
			Name:      d.Name,
			Version:   d.Version,
			Ecosystem: d.Ecosystem,
			License:   d.License,
			URL:       d.URL,
			Source:    d.Source,
		}
	}
	r.Infra.Resources = make([]iac.Resource, len(scan.Resources))
	for i, res := range scan.Resources {
		r.Infra.Resources[i] = iac.Resource{
			Name:       res.Name,
			Type:       res.ResourceType,
			Language:   res.Language,
			SourceFile: res.SourceFile,
			Size:       res.Size,
		}
	}
	r.Infra.Workflows = make([]iac.Workflow, len(scan.Workflows))
	for i, wf := range scan.Workflows {
		r.Infra.Workflows[i] = iac.Workflow{
			Name:     wf.Name,
			Path:     wf.Path,
			Triggers: wf.Triggers,
			JobNames: splitCSVList(wf.JobNames),
		}
	}
	r.Infra.Interactions = make([]iac.Interaction, len(scan.Interactions))
	for i, in := range scan.Interactions {
		r.Infra.Interactions[i] = iac.Interaction{
			Service:  in.Service,
			Name:     in.Name,
			Type:     in.InteractionType,
			Language: in.Language,
			Details:  in.Details,
		}
	}
	return r
}

func splitCSVList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
