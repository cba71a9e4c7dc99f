package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/depscan-io/depscan/internal/analyzer"
	"github.com/depscan-io/depscan/internal/config"
	"github.com/depscan-io/depscan/internal/database"
	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/iac"
	"github.com/depscan-io/depscan/internal/repository"
	"github.com/depscan-io/depscan/internal/service"
	"github.com/depscan-io/depscan/internal/storage"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDatabase(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// fakePipeline returns canned reports keyed by repository URL
type fakePipeline struct {
	reports map[string]analyzer.RepoReport
}

func (p *fakePipeline) AnalyzeRepoWith(ctx context.Context, url string, mappings analyzer.MappingSource) analyzer.RepoReport {
	if r, ok := p.reports[url]; ok {
		r.URL = url
		return r
	}
	return analyzer.RepoReport{URL: url, Err: errors.New("unexpected repository")}
}

// recordingExporter captures warehouse export calls
type recordingExporter struct {
	calls int
	err   error
}

func (e *recordingExporter) ExportScan(ctx context.Context, repo *domain.Repository, scan *domain.Scan) error {
	e.calls++
	return e.err
}

func newServices(t *testing.T, db *gorm.DB, pipeline service.Pipeline, exporter service.Exporter) (*service.RepoService, *service.ScanService) {
	t.Helper()
	repoRepo := repository.NewRepoRepository(db)
	scanRepo := repository.NewScanRepository(db)
	mappingRepo := repository.NewMappingRepository(db)
	repoService := service.NewRepoService(repoRepo, zap.NewNop())
	scanService := service.NewScanService(scanRepo, repoRepo, mappingRepo, pipeline, exporter, 2, zap.NewNop())
	return repoService, scanService
}

func registerRepo(t *testing.T, repoService *service.RepoService, url string) *domain.RepositoryDTO {
	t.Helper()
	dto, err := repoService.Create(context.Background(), &domain.CreateRepositoryRequest{URL: url})
	require.NoError(t, err)
	return dto
}

func completedReport() analyzer.RepoReport {
	now := time.Now().UTC()
	return analyzer.RepoReport{
		Name:        "svc",
		License:     "MIT",
		Description: "Scans things.",
		Ecosystems:  []domain.Ecosystem{domain.EcosystemPython},
		Dependencies: []analyzer.Dependency{
			{Name: "requests", Version: "latest", Ecosystem: domain.EcosystemPython, License: "Apache-2.0", URL: "https://requests.dev", Source: domain.SourceRegistry},
		},
		Infra: iac.Result{
			Resources: []iac.Resource{
				{Name: "scan-db", Type: "az cosmosdb", Language: domain.ResourceLanguageShell, SourceFile: "deploy.sh"},
			},
			Workflows: []iac.Workflow{
				{Name: "Deploy", Path: ".github/workflows/deploy.yml", Triggers: "push", JobNames: []string{"build", "deploy"}},
			},
			Interactions: []iac.Interaction{
				{Service: iac.ServiceCosmosDB, Name: "scan-db", Type: "IaC Resource", Language: "Shell", Details: "az cosmosdb"},
			},
		},
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
	}
}

func TestRepoService_Create(t *testing.T) {
	db := setupTestDB(t)
	repoService, _ := newServices(t, db, &fakePipeline{}, nil)

	dto := registerRepo(t, repoService, "https://github.com/org/svc")
	assert.Equal(t, "svc", dto.Name, "name defaults to the repository name in the URL")
	assert.True(t, dto.IsActive)

	_, err := repoService.Create(context.Background(), &domain.CreateRepositoryRequest{URL: "https://github.com/org/svc"})
	assert.ErrorIs(t, err, service.ErrRepositoryExists)
}

func TestRepoService_UpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repoService, _ := newServices(t, db, &fakePipeline{}, nil)
	dto := registerRepo(t, repoService, "https://github.com/org/svc")

	newName := "renamed"
	inactive := false
	updated, err := repoService.Update(context.Background(), dto.ID, &domain.UpdateRepositoryRequest{
		Name:     &newName,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.False(t, updated.IsActive)

	require.NoError(t, repoService.Delete(context.Background(), dto.ID))
	assert.ErrorIs(t, repoService.Delete(context.Background(), dto.ID), service.ErrRepositoryNotFound)

	_, err = repoService.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrRepositoryNotFound)
}

func TestScanService_RunForRepository(t *testing.T) {
	db := setupTestDB(t)
	pipeline := &fakePipeline{reports: map[string]analyzer.RepoReport{
		"https://github.com/org/svc": completedReport(),
	}}
	exporter := &recordingExporter{}
	repoService, scanService := newServices(t, db, pipeline, exporter)
	dto := registerRepo(t, repoService, "https://github.com/org/svc")

	require.NoError(t, scanService.RunForRepository(context.Background(), dto.ID))

	scans, total, err := repository.NewScanRepository(db).List(context.Background(), 1, 10, nil, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, domain.ScanStatusCompleted, scans[0].Status)

	detail, err := scanService.GetDetail(context.Background(), scans[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "MIT", detail.License)
	assert.Equal(t, 1, detail.DependencyCount)
	require.Len(t, detail.Dependencies, 1)
	assert.Equal(t, "requests", detail.Dependencies[0].Name)

	infra, err := scanService.GetInfra(context.Background(), scans[0].ID)
	require.NoError(t, err)
	require.Len(t, infra.Resources, 1)
	require.Len(t, infra.Workflows, 1)
	assert.Equal(t, []string{"build", "deploy"}, infra.Workflows[0].JobNames)
	require.Len(t, infra.Interactions, 1)

	// Repository metadata refreshed from the scan
	repoDTO, err := repoService.GetByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "MIT", repoDTO.License)
	assert.Equal(t, []string{"python"}, repoDTO.Ecosystems)

	assert.Equal(t, 1, exporter.calls)
}

func TestScanService_RunForRepository_PipelineFailure(t *testing.T) {
	db := setupTestDB(t)
	pipeline := &fakePipeline{} // every URL fails
	repoService, scanService := newServices(t, db, pipeline, nil)
	dto := registerRepo(t, repoService, "https://github.com/org/broken")

	require.NoError(t, scanService.RunForRepository(context.Background(), dto.ID))

	scans, _, err := repository.NewScanRepository(db).List(context.Background(), 1, 10, nil, "")
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, domain.ScanStatusFailed, scans[0].Status)
	assert.Equal(t, "unexpected repository", scans[0].Error)
}

func TestScanService_InactiveRepository(t *testing.T) {
	db := setupTestDB(t)
	repoService, scanService := newServices(t, db, &fakePipeline{}, nil)
	dto := registerRepo(t, repoService, "https://github.com/org/svc")

	inactive := false
	_, err := repoService.Update(context.Background(), dto.ID, &domain.UpdateRepositoryRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = scanService.Enqueue(context.Background(), dto.ID)
	assert.ErrorIs(t, err, service.ErrRepositoryInactive)

	assert.ErrorIs(t, scanService.RunForRepository(context.Background(), dto.ID), service.ErrRepositoryInactive)
}

func TestScanService_MappingsAppliedFromDatabase(t *testing.T) {
	db := setupTestDB(t)

	var captured analyzer.MappingSource
	pipeline := &capturingPipeline{report: completedReport(), captured: &captured}
	repoService, scanService := newServices(t, db, pipeline, nil)
	dto := registerRepo(t, repoService, "https://github.com/org/svc")

	mappingRepo := repository.NewMappingRepository(db)
	require.NoError(t, mappingRepo.Create(context.Background(), &domain.LicenseMapping{
		Ecosystem: domain.EcosystemPython,
		Name:      "internal-lib",
		License:   "Proprietary",
	}))

	require.NoError(t, scanService.RunForRepository(context.Background(), dto.ID))

	require.NotNil(t, captured)
	m, ok := captured.Lookup(domain.EcosystemPython, "Internal-Lib")
	require.True(t, ok)
	assert.Equal(t, "Proprietary", m.License)
}

// capturingPipeline records the mapping source a scan was handed
type capturingPipeline struct {
	report   analyzer.RepoReport
	captured *analyzer.MappingSource
}

func (p *capturingPipeline) AnalyzeRepoWith(ctx context.Context, url string, mappings analyzer.MappingSource) analyzer.RepoReport {
	*p.captured = mappings
	r := p.report
	r.URL = url
	return r
}

func TestScanService_ScanAllAndRescanStale(t *testing.T) {
	db := setupTestDB(t)
	pipeline := &fakePipeline{reports: map[string]analyzer.RepoReport{
		"https://github.com/org/alpha": completedReport(),
		"https://github.com/org/beta":  completedReport(),
	}}
	repoService, scanService := newServices(t, db, pipeline, nil)
	registerRepo(t, repoService, "https://github.com/org/alpha")
	registerRepo(t, repoService, "https://github.com/org/beta")

	require.NoError(t, scanService.ScanAll(context.Background()))

	scanRepo := repository.NewScanRepository(db)
	completed, err := scanRepo.CountByStatus(context.Background(), domain.ScanStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(2), completed)

	// Everything just completed, so nothing is stale
	queued, err := scanService.RescanStale(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, queued)

	// Shrinking the window to zero makes both repositories stale again
	queued, err = scanService.RescanStale(context.Background(), -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, queued)
}

func TestMappingService_CRUD(t *testing.T) {
	db := setupTestDB(t)
	mappingService := service.NewMappingService(repository.NewMappingRepository(db), zap.NewNop())

	dto, err := mappingService.Create(context.Background(), &domain.CreateMappingRequest{
		Ecosystem: "python",
		Name:      "Internal-Lib",
		License:   "Proprietary",
	})
	require.NoError(t, err)
	assert.Equal(t, "internal-lib", dto.Name)

	_, err = mappingService.Create(context.Background(), &domain.CreateMappingRequest{
		Ecosystem: "python",
		Name:      "INTERNAL-LIB",
		License:   "MIT",
	})
	assert.ErrorIs(t, err, service.ErrMappingExists)

	newLicense := "MIT"
	updated, err := mappingService.Update(context.Background(), dto.ID, &domain.UpdateMappingRequest{License: &newLicense})
	require.NoError(t, err)
	assert.Equal(t, "MIT", updated.License)

	require.NoError(t, mappingService.Delete(context.Background(), dto.ID))
	assert.ErrorIs(t, mappingService.Delete(context.Background(), dto.ID), service.ErrMappingNotFound)
}

func TestMappingService_ImportAndExportCSV(t *testing.T) {
	db := setupTestDB(t)
	mappingService := service.NewMappingService(repository.NewMappingRepository(db), zap.NewNop())

	_, err := mappingService.Create(context.Background(), &domain.CreateMappingRequest{
		Ecosystem: "python",
		Name:      "existing",
		License:   "Old",
	})
	require.NoError(t, err)

	input := `ecosystem,package,version,license,url
python,existing,2.0.1,Proprietary,https://wiki.internal/existing
python,brand-new,,MIT,
javascript,blank-license,,,
`
	result, err := mappingService.ImportCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)

	var buf bytes.Buffer
	require.NoError(t, mappingService.ExportCSV(context.Background(), &buf))
	out := buf.String()
	assert.Contains(t, out, "ecosystem,package,version,license,url")
	assert.Contains(t, out, "python,existing,2.0.1,Proprietary,https://wiki.internal/existing")
	assert.Contains(t, out, "python,brand-new,,MIT,")
	assert.NotContains(t, out, "blank-license")
}

func TestDashboardService_Summary(t *testing.T) {
	db := setupTestDB(t)
	pipeline := &fakePipeline{reports: map[string]analyzer.RepoReport{
		"https://github.com/org/svc": completedReport(),
	}}
	repoService, scanService := newServices(t, db, pipeline, nil)
	dto := registerRepo(t, repoService, "https://github.com/org/svc")
	require.NoError(t, scanService.RunForRepository(context.Background(), dto.ID))

	dashboard := service.NewDashboardService(
		repository.NewRepoRepository(db),
		repository.NewScanRepository(db),
		repository.NewDependencyRepository(db),
		zap.NewNop(),
	)

	summary, err := dashboard.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Repositories)
	assert.Equal(t, int64(1), summary.ActiveRepos)
	assert.Equal(t, int64(1), summary.Scans)
	assert.Equal(t, int64(1), summary.CompletedScans)
	assert.Zero(t, summary.FailedScans)
	assert.Equal(t, int64(1), summary.Dependencies)
	assert.Zero(t, summary.Unresolved)
	assert.Equal(t, int64(1), summary.LicenseBreakdown["Apache-2.0"])
}

func TestReportService_GenerateAndOpen(t *testing.T) {
	db := setupTestDB(t)
	pipeline := &fakePipeline{reports: map[string]analyzer.RepoReport{
		"https://github.com/org/svc": completedReport(),
	}}
	repoService, scanService := newServices(t, db, pipeline, nil)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	reportService := service.NewReportService(
		repository.NewRepoRepository(db),
		repository.NewScanRepository(db),
		store,
		"",
		zap.NewNop(),
	)

	t.Run("no completed scans", func(t *testing.T) {
		_, err := reportService.Generate(context.Background())
		assert.ErrorIs(t, err, service.ErrNoCompletedScans)
	})

	dto := registerRepo(t, repoService, "https://github.com/org/svc")
	require.NoError(t, scanService.RunForRepository(context.Background(), dto.ID))

	names, err := reportService.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, service.ReportNames, names)

	rc, contentType, err := reportService.Open(context.Background(), service.ReportDependenciesCSV)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "text/csv", contentType)

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "svc,python,requests,latest,Apache-2.0,https://requests.dev")

	t.Run("unknown report name", func(t *testing.T) {
		_, _, err := reportService.Open(context.Background(), "../etc/passwd")
		assert.ErrorIs(t, err, service.ErrReportNotFound)
	})
}
