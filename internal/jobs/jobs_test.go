package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/jobs"
)

type stubRescanService struct {
	scanAllCalls int
	scanAllErr   error
	staleCalls   int
	staleMaxAge  time.Duration
	staleQueued  int
	reportCalls  int
	reportErr    error
}

func (s *stubRescanService) ScanAll(ctx context.Context) error {
	s.scanAllCalls++
	return s.scanAllErr
}

func (s *stubRescanService) RescanStale(ctx context.Context, maxAge time.Duration) (int, error) {
	s.staleCalls++
	s.staleMaxAge = maxAge
	return s.staleQueued, nil
}

func (s *stubRescanService) GenerateReports(ctx context.Context) error {
	s.reportCalls++
	return s.reportErr
}

func TestScheduler_AddJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, s.AddJob("rescan", "@every 1h", func() {}))
	assert.Error(t, s.AddJob("rescan", "@every 1h", func() {}), "duplicate names are rejected")
	assert.Error(t, s.AddJob("broken", "not a cron expression", func() {}))

	require.NoError(t, s.AddJob("cleanup", "0 0 3 * * *", func() {}))
	assert.ElementsMatch(t, []string{"rescan", "cleanup"}, s.GetJobNames())
}

func TestScheduler_RemoveJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	require.NoError(t, s.AddJob("rescan", "@every 1h", func() {}))

	require.NoError(t, s.RemoveJob("rescan"))
	assert.Empty(t, s.GetJobNames())
	assert.Error(t, s.RemoveJob("rescan"))
}

func TestScheduler_RunsJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	ran := make(chan struct{})
	require.NoError(t, s.AddJob("tick", "@every 10ms", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	s.Start()
	defer func() { <-s.Stop().Done() }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job never ran")
	}
}

func TestRescanJob_Run(t *testing.T) {
	svc := &stubRescanService{}
	job := jobs.NewRescanJob(svc, zap.NewNop(), time.Minute)

	job.Run()
	assert.Equal(t, 1, svc.scanAllCalls)
	assert.Equal(t, 1, svc.reportCalls, "reports refresh after a full scan")
}

func TestRescanJob_Run_ScanFailureSkipsReports(t *testing.T) {
	svc := &stubRescanService{scanAllErr: errors.New("db down")}
	job := jobs.NewRescanJob(svc, zap.NewNop(), time.Minute)

	job.Run()
	assert.Equal(t, 1, svc.scanAllCalls)
	assert.Zero(t, svc.reportCalls)
}

func TestRescanJob_RunStartupScan(t *testing.T) {
	svc := &stubRescanService{staleQueued: 3}
	job := jobs.NewRescanJob(svc, zap.NewNop(), time.Minute)

	queued := job.RunStartupScan(24 * time.Hour)
	assert.Equal(t, 3, queued)
	assert.Equal(t, 1, svc.staleCalls)
	assert.Equal(t, 24*time.Hour, svc.staleMaxAge)
}
