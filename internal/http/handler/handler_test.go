package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/analyzer"
	"github.com/depscan-io/depscan/internal/config"
	"github.com/depscan-io/depscan/internal/database"
	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/http/handler"
	"github.com/depscan-io/depscan/internal/repository"
	"github.com/depscan-io/depscan/internal/service"
	"github.com/depscan-io/depscan/internal/storage"
)

// stubPipeline resolves every repository to the same small report
type stubPipeline struct{}

func (stubPipeline) AnalyzeRepoWith(ctx context.Context, url string, mappings analyzer.MappingSource) analyzer.RepoReport {
	now := time.Now().UTC()
	return analyzer.RepoReport{
		URL:        url,
		Name:       "svc",
		License:    "MIT",
		Ecosystems: []domain.Ecosystem{domain.EcosystemPython},
		Dependencies: []analyzer.Dependency{
			{Name: "requests", Version: "latest", Ecosystem: domain.EcosystemPython, License: "Apache-2.0", URL: "https://requests.dev", Source: domain.SourceRegistry},
		},
		StartedAt:  now,
		FinishedAt: now,
	}
}

type testEnv struct {
	router      chi.Router
	repoService *service.RepoService
	scanService *service.ScanService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewDatabase(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	log := zap.NewNop()
	repoRepo := repository.NewRepoRepository(db)
	scanRepo := repository.NewScanRepository(db)
	mappingRepo := repository.NewMappingRepository(db)
	depRepo := repository.NewDependencyRepository(db)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	repoService := service.NewRepoService(repoRepo, log)
	scanService := service.NewScanService(scanRepo, repoRepo, mappingRepo, stubPipeline{}, nil, 2, log)
	mappingService := service.NewMappingService(mappingRepo, log)
	reportService := service.NewReportService(repoRepo, scanRepo, store, "", log)
	dashboardService := service.NewDashboardService(repoRepo, scanRepo, depRepo, log)

	repoHandler := handler.NewRepoHandler(repoService, scanService, log)
	scanHandler := handler.NewScanHandler(scanService, reportService, log)
	mappingHandler := handler.NewMappingHandler(mappingService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, reportService, log)

	r := chi.NewRouter()
	r.Route("/repositories", func(r chi.Router) {
		r.Get("/", repoHandler.List)
		r.Post("/", repoHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", repoHandler.GetByID)
			r.Put("/", repoHandler.Update)
			r.Delete("/", repoHandler.Delete)
			r.Post("/scan", repoHandler.Scan)
		})
	})
	r.Route("/scans", func(r chi.Router) {
		r.Get("/", scanHandler.List)
		r.Get("/{id}", scanHandler.GetByID)
		r.Get("/{id}/infrastructure", scanHandler.GetInfra)
		r.Get("/{id}/report", scanHandler.Report)
		r.Post("/{id}/archive", scanHandler.Archive)
	})
	r.Route("/mappings", func(r chi.Router) {
		r.Get("/", mappingHandler.List)
		r.Post("/", mappingHandler.Create)
	})
	r.Get("/dashboard/summary", dashboardHandler.Summary)

	return &testEnv{router: r, repoService: repoService, scanService: scanService}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRepoHandler_Create(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/repositories", domain.CreateRepositoryRequest{
		URL: "https://github.com/org/svc",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	dto := decode[domain.RepositoryDTO](t, rec)
	assert.Equal(t, "svc", dto.Name)
	assert.True(t, dto.IsActive)

	t.Run("duplicate url", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/repositories", domain.CreateRepositoryRequest{
			URL: "https://github.com/org/svc",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing url", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/repositories", map[string]string{"name": "x"})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		apiErr := decode[domain.APIError](t, rec)
		assert.Equal(t, "Validation Error", apiErr.Title)
		assert.Contains(t, apiErr.Errors, "url")
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/repositories", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRepoHandler_GetUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	created := decode[domain.RepositoryDTO](t, env.do(t, http.MethodPost, "/repositories", domain.CreateRepositoryRequest{
		URL: "https://github.com/org/svc",
	}))

	rec := env.do(t, http.MethodGet, "/repositories/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[domain.RepositoryDTO](t, rec).ID)

	t.Run("invalid id", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/repositories/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/repositories/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	name := "renamed"
	rec = env.do(t, http.MethodPut, "/repositories/"+created.ID.String(), domain.UpdateRepositoryRequest{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "renamed", decode[domain.RepositoryDTO](t, rec).Name)

	rec = env.do(t, http.MethodDelete, "/repositories/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/repositories/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRepoHandler_List(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodPost, "/repositories", domain.CreateRepositoryRequest{
			URL: fmt.Sprintf("https://github.com/org/repo-%d", i),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/repositories?page=1&pageSize=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page := decode[domain.PaginatedResponse](t, rec)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	rec = env.do(t, http.MethodGet, "/repositories?search=repo-1", nil)
	page = decode[domain.PaginatedResponse](t, rec)
	assert.Equal(t, int64(1), page.Total)
}

func TestScanHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	created := decode[domain.RepositoryDTO](t, env.do(t, http.MethodPost, "/repositories", domain.CreateRepositoryRequest{
		URL: "https://github.com/org/svc",
	}))

	// Run the scan synchronously so the result is visible immediately
	require.NoError(t, env.scanService.RunForRepository(context.Background(), created.ID))

	rec := env.do(t, http.MethodGet, "/scans?repositoryId="+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.PaginatedResponse](t, rec)
	require.Equal(t, int64(1), page.Total)

	raw, err := json.Marshal(page.Data)
	require.NoError(t, err)
	var scans []domain.ScanDTO
	require.NoError(t, json.Unmarshal(raw, &scans))
	scanID := scans[0].ID
	assert.Equal(t, domain.ScanStatusCompleted, scans[0].Status)

	rec = env.do(t, http.MethodGet, "/scans/"+scanID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[domain.ScanDetailDTO](t, rec)
	require.Len(t, detail.Dependencies, 1)
	assert.Equal(t, "requests", detail.Dependencies[0].Name)

	rec = env.do(t, http.MethodGet, "/scans/"+scanID.String()+"/infrastructure", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("render report", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/scans/"+scanID.String()+"/report?format=csv", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "svc,python,requests,latest,Apache-2.0,https://requests.dev")

		rec = env.do(t, http.MethodGet, "/scans/"+scanID.String()+"/report?format=pdf", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("archive reports", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/scans/"+scanID.String()+"/archive", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		out := decode[map[string][]string](t, rec)
		assert.Len(t, out["reports"], 4)
	})

	t.Run("unknown scan", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/scans/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRepoHandler_Scan(t *testing.T) {
	env := newTestEnv(t)
	created := decode[domain.RepositoryDTO](t, env.do(t, http.MethodPost, "/repositories", domain.CreateRepositoryRequest{
		URL: "https://github.com/org/svc",
	}))

	rec := env.do(t, http.MethodPost, "/repositories/"+created.ID.String()+"/scan", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	dto := decode[domain.ScanDTO](t, rec)
	assert.Equal(t, created.ID, dto.RepositoryID)

	t.Run("inactive repository", func(t *testing.T) {
		inactive := false
		rec := env.do(t, http.MethodPut, "/repositories/"+created.ID.String(), domain.UpdateRepositoryRequest{IsActive: &inactive})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodPost, "/repositories/"+created.ID.String()+"/scan", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestMappingHandler_Create(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/mappings", domain.CreateMappingRequest{
		Ecosystem: "python",
		Name:      "Internal-Lib",
		License:   "Proprietary",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "internal-lib", decode[domain.MappingDTO](t, rec).Name)

	t.Run("unsupported ecosystem", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/mappings", domain.CreateMappingRequest{
			Ecosystem: "rust",
			Name:      "serde",
			License:   "MIT",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/mappings", domain.CreateMappingRequest{
			Ecosystem: "python",
			Name:      "internal-lib",
			License:   "MIT",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestDashboardHandler_Summary(t *testing.T) {
	env := newTestEnv(t)
	created := decode[domain.RepositoryDTO](t, env.do(t, http.MethodPost, "/repositories", domain.CreateRepositoryRequest{
		URL: "https://github.com/org/svc",
	}))
	require.NoError(t, env.scanService.RunForRepository(context.Background(), created.ID))

	rec := env.do(t, http.MethodGet, "/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decode[domain.DashboardSummaryDTO](t, rec)
	assert.Equal(t, int64(1), summary.Repositories)
	assert.Equal(t, int64(1), summary.CompletedScans)
	assert.Equal(t, int64(1), summary.Dependencies)
}
