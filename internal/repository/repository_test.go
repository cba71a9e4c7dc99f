package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/depscan-io/depscan/internal/config"
	"github.com/depscan-io/depscan/internal/database"
	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/repository"
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

func createRepo(t *testing.T, db *gorm.DB, url, name string) *domain.Repository {
	t.Helper()
	repo := &domain.Repository{URL: url, Name: name, IsActive: true}
	require.NoError(t, repository.NewRepoRepository(db).Create(context.Background(), repo))
	return repo
}

func TestRepoRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repos := repository.NewRepoRepository(db)

	repo := createRepo(t, db, "https://github.com/org/svc", "svc")
	assert.NotEqual(t, uuid.Nil, repo.ID)

	found, err := repos.GetByID(context.Background(), repo.ID)
	require.NoError(t, err)
	assert.Equal(t, "svc", found.Name)
	assert.True(t, found.IsActive)

	byURL, err := repos.GetByURL(context.Background(), "https://github.com/org/svc")
	require.NoError(t, err)
	assert.Equal(t, repo.ID, byURL.ID)
}

func TestRepoRepository_DuplicateURL(t *testing.T) {
	db := setupTestDB(t)
	repos := repository.NewRepoRepository(db)

	createRepo(t, db, "https://github.com/org/svc", "svc")
	err := repos.Create(context.Background(), &domain.Repository{
		URL: "https://github.com/org/svc", Name: "svc-again", IsActive: true,
	})
	assert.Error(t, err)
}

func TestRepoRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repos := repository.NewRepoRepository(db)

	createRepo(t, db, "https://github.com/org/alpha", "alpha")
	createRepo(t, db, "https://github.com/org/beta", "beta")
	createRepo(t, db, "https://github.com/other/gamma", "gamma")

	t.Run("all", func(t *testing.T) {
		list, total, err := repos.List(context.Background(), 1, 10, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 3)
	})

	t.Run("search matches name", func(t *testing.T) {
		list, total, err := repos.List(context.Background(), 1, 10, "ALPHA")
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)
		assert.Equal(t, "alpha", list[0].Name)
	})

	t.Run("search matches url", func(t *testing.T) {
		_, total, err := repos.List(context.Background(), 1, 10, "github.com/org")
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("pagination", func(t *testing.T) {
		list, total, err := repos.List(context.Background(), 2, 2, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 1)
	})
}

func TestRepoRepository_ListActiveAndCount(t *testing.T) {
	db := setupTestDB(t)
	repos := repository.NewRepoRepository(db)

	createRepo(t, db, "https://github.com/org/active", "active")
	inactive := createRepo(t, db, "https://github.com/org/inactive", "inactive")
	inactive.IsActive = false
	require.NoError(t, repos.Update(context.Background(), inactive))

	active, err := repos.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "active", active[0].Name)

	total, err := repos.Count(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	activeCount, err := repos.Count(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), activeCount)
}

func TestRepoRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repos := repository.NewRepoRepository(db)
	scans := repository.NewScanRepository(db)

	repo := createRepo(t, db, "https://github.com/org/svc", "svc")
	scan := &domain.Scan{RepositoryID: repo.ID, Status: domain.ScanStatusCompleted}
	require.NoError(t, scans.Create(context.Background(), scan))
	scan.Dependencies = []domain.Dependency{
		{Name: "requests", Ecosystem: domain.EcosystemPython, License: "MIT", Source: domain.SourceRegistry},
	}
	scan.Resources = []domain.InfraResource{
		{Name: "scan-db", ResourceType: "az cosmosdb", Language: domain.ResourceLanguageShell},
	}
	require.NoError(t, scans.SaveResults(context.Background(), scan))

	require.NoError(t, repos.Delete(context.Background(), repo.ID))

	_, err := repos.GetByID(context.Background(), repo.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var depCount int64
	require.NoError(t, db.Model(&domain.Dependency{}).Count(&depCount).Error)
	assert.Zero(t, depCount)

	var resCount int64
	require.NoError(t, db.Model(&domain.InfraResource{}).Count(&resCount).Error)
	assert.Zero(t, resCount)
}

func TestScanRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	scans := repository.NewScanRepository(db)
	repo := createRepo(t, db, "https://github.com/org/svc", "svc")

	scan := &domain.Scan{RepositoryID: repo.ID, Status: domain.ScanStatusPending}
	require.NoError(t, scans.Create(context.Background(), scan))

	started := time.Now().UTC()
	require.NoError(t, scans.MarkRunning(context.Background(), scan.ID, started))

	found, err := scans.GetByID(context.Background(), scan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanStatusRunning, found.Status)
	require.NotNil(t, found.StartedAt)
	require.NotNil(t, found.Repository)
	assert.Equal(t, "svc", found.Repository.Name)

	require.NoError(t, scans.MarkFailed(context.Background(), scan.ID, "clone failed", time.Now().UTC()))
	found, err = scans.GetByID(context.Background(), scan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanStatusFailed, found.Status)
	assert.Equal(t, "clone failed", found.Error)
}

func TestScanRepository_SaveResultsAndGetDetail(t *testing.T) {
	db := setupTestDB(t)
	scans := repository.NewScanRepository(db)
	repo := createRepo(t, db, "https://github.com/org/svc", "svc")

	scan := &domain.Scan{RepositoryID: repo.ID, Status: domain.ScanStatusRunning}
	require.NoError(t, scans.Create(context.Background(), scan))

	now := time.Now().UTC()
	scan.Status = domain.ScanStatusCompleted
	scan.License = "MIT"
	scan.DependencyCount = 2
	scan.FinishedAt = &now
	scan.Dependencies = []domain.Dependency{
		{Name: "zlib", Ecosystem: domain.EcosystemPython, License: "Zlib", Source: domain.SourceRegistry},
		{Name: "aiohttp", Ecosystem: domain.EcosystemPython, License: "Apache-2.0", Source: domain.SourceRegistry},
	}
	scan.Workflows = []domain.WorkflowSummary{
		{Name: "Deploy", Path: ".github/workflows/deploy.yml", Triggers: "push", JobNames: "build,deploy"},
	}
	scan.Interactions = []domain.ServiceInteraction{
		{Service: "Cosmos DB", Name: "scan-db", InteractionType: "IaC Resource", Language: "Shell"},
	}
	require.NoError(t, scans.SaveResults(context.Background(), scan))

	detail, err := scans.GetDetail(context.Background(), scan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanStatusCompleted, detail.Status)
	require.Len(t, detail.Dependencies, 2)
	// Dependencies come back ordered by ecosystem then name
	assert.Equal(t, "aiohttp", detail.Dependencies[0].Name)
	assert.Equal(t, "zlib", detail.Dependencies[1].Name)
	require.Len(t, detail.Workflows, 1)
	require.Len(t, detail.Interactions, 1)
}

func TestScanRepository_ListAndLatest(t *testing.T) {
	db := setupTestDB(t)
	scans := repository.NewScanRepository(db)
	repo := createRepo(t, db, "https://github.com/org/svc", "svc")
	other := createRepo(t, db, "https://github.com/org/other", "other")

	first := &domain.Scan{RepositoryID: repo.ID, Status: domain.ScanStatusCompleted}
	require.NoError(t, scans.Create(context.Background(), first))
	// Spread created_at so ordering is deterministic
	require.NoError(t, db.Model(first).Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)

	second := &domain.Scan{RepositoryID: repo.ID, Status: domain.ScanStatusCompleted}
	require.NoError(t, scans.Create(context.Background(), second))

	failed := &domain.Scan{RepositoryID: other.ID, Status: domain.ScanStatusFailed}
	require.NoError(t, scans.Create(context.Background(), failed))

	t.Run("list all", func(t *testing.T) {
		list, total, err := scans.List(context.Background(), 1, 10, nil, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 3)
	})

	t.Run("filter by repository", func(t *testing.T) {
		_, total, err := scans.List(context.Background(), 1, 10, &repo.ID, "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("filter by status", func(t *testing.T) {
		list, total, err := scans.List(context.Background(), 1, 10, nil, "failed")
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)
		assert.Equal(t, other.ID, list[0].RepositoryID)
	})

	t.Run("latest completed", func(t *testing.T) {
		latest, err := scans.LatestByRepository(context.Background(), repo.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, latest.ID)
	})
}

func TestScanRepository_ListStaleRepositoryIDs(t *testing.T) {
	db := setupTestDB(t)
	scans := repository.NewScanRepository(db)

	fresh := createRepo(t, db, "https://github.com/org/fresh", "fresh")
	stale := createRepo(t, db, "https://github.com/org/stale", "stale")
	never := createRepo(t, db, "https://github.com/org/never", "never")

	recent := &domain.Scan{RepositoryID: fresh.ID, Status: domain.ScanStatusCompleted}
	require.NoError(t, scans.Create(context.Background(), recent))

	old := &domain.Scan{RepositoryID: stale.ID, Status: domain.ScanStatusCompleted}
	require.NoError(t, scans.Create(context.Background(), old))
	require.NoError(t, db.Model(old).Update("created_at", time.Now().UTC().Add(-48*time.Hour)).Error)

	ids, err := scans.ListStaleRepositoryIDs(context.Background(), time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{stale.ID, never.ID}, ids)
}

func TestMappingRepository_UpsertAndLookup(t *testing.T) {
	db := setupTestDB(t)
	mappings := repository.NewMappingRepository(db)

	mapping := &domain.LicenseMapping{
		Ecosystem: domain.EcosystemPython,
		Name:      "Internal-Lib",
		License:   "Proprietary",
	}
	created, err := mappings.Upsert(context.Background(), mapping)
	require.NoError(t, err)
	assert.True(t, created)

	// Names are stored lowercase
	found, err := mappings.GetByKey(context.Background(), domain.EcosystemPython, "INTERNAL-LIB")
	require.NoError(t, err)
	assert.Equal(t, "internal-lib", found.Name)
	assert.Equal(t, "Proprietary", found.License)

	created, err = mappings.Upsert(context.Background(), &domain.LicenseMapping{
		Ecosystem: domain.EcosystemPython,
		Name:      "internal-lib",
		License:   "MIT",
	})
	require.NoError(t, err)
	assert.False(t, created)

	found, err = mappings.GetByKey(context.Background(), domain.EcosystemPython, "internal-lib")
	require.NoError(t, err)
	assert.Equal(t, "MIT", found.License)

	all, err := mappings.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMappingRepository_List(t *testing.T) {
	db := setupTestDB(t)
	mappings := repository.NewMappingRepository(db)

	for _, m := range []*domain.LicenseMapping{
		{Ecosystem: domain.EcosystemPython, Name: "b-lib", License: "MIT"},
		{Ecosystem: domain.EcosystemPython, Name: "a-lib", License: "MIT"},
		{Ecosystem: domain.EcosystemJavaScript, Name: "ui-kit", License: "MIT"},
	} {
		require.NoError(t, mappings.Create(context.Background(), m))
	}

	list, total, err := mappings.List(context.Background(), 1, 10, "python")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, "a-lib", list[0].Name)
	assert.Equal(t, "b-lib", list[1].Name)
}

func TestDependencyRepository_Counts(t *testing.T) {
	db := setupTestDB(t)
	scans := repository.NewScanRepository(db)
	deps := repository.NewDependencyRepository(db)
	repo := createRepo(t, db, "https://github.com/org/svc", "svc")

	scan := &domain.Scan{RepositoryID: repo.ID, Status: domain.ScanStatusCompleted}
	require.NoError(t, scans.Create(context.Background(), scan))
	scan.Dependencies = []domain.Dependency{
		{Name: "requests", Ecosystem: domain.EcosystemPython, License: "MIT", URL: "https://x", Source: domain.SourceRegistry},
		{Name: "ghost", Ecosystem: domain.EcosystemPython, License: "Lookup Failed", Source: domain.SourceUnresolved},
		{Name: "mapped", Ecosystem: domain.EcosystemPython, License: "!Proprietary", Source: domain.SourceMapping},
		{Name: "no-url", Ecosystem: domain.EcosystemJavaScript, License: "MIT", Source: domain.SourceRegistry},
	}
	require.NoError(t, scans.SaveResults(context.Background(), scan))

	total, err := deps.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	unresolved, err := deps.CountUnresolved(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), unresolved)

	breakdown, err := deps.LicenseBreakdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), breakdown["MIT"])
	assert.Equal(t, int64(1), breakdown["Lookup Failed"])

	listed, err := deps.ListByScan(context.Background(), scan.ID)
	require.NoError(t, err)
	require.Len(t, listed, 4)
	assert.Equal(t, "no-url", listed[3].Name, "javascript sorts after python")
}
