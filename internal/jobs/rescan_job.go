package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RescanJobName is the name of the periodic rescan job
const RescanJobName = "rescan"

// RescanService defines the scanning operations the job needs.
// This interface allows the job to call the service without importing the
// service package directly.
type RescanService interface {
	// ScanAll scans every active repository and blocks until all finish.
	ScanAll(ctx context.Context) error

	// RescanStale scans active repositories without a completed scan newer
	// than maxAge. Returns how many repositories were queued.
	RescanStale(ctx context.Context, maxAge time.Duration) (int, error)

	// GenerateReports rebuilds the report artifacts from the latest scans.
	GenerateReports(ctx context.Context) error
}

// RescanJob periodically re-scans every active repository and refreshes
// the published reports.
type RescanJob struct {
	scanService RescanService
	logger      *zap.Logger
	timeout     time.Duration
}

// NewRescanJob creates a new rescan job.
// The timeout controls how long one full rescan is allowed to run.
func NewRescanJob(scanService RescanService, logger *zap.Logger, timeout time.Duration) *RescanJob {
	return &RescanJob{
		scanService: scanService,
		logger:      logger,
		timeout:     timeout,
	}
}

// Run executes the rescan job.
// This is called by the scheduler according to the cron expression.
func (j *RescanJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting rescan job")

	if err := j.scanService.ScanAll(ctx); err != nil {
		j.logger.Error("rescan job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	// Reports are refreshed from whatever completed, even if some repositories failed
	if err := j.scanService.GenerateReports(ctx); err != nil {
		j.logger.Error("report refresh failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
	}

	j.logger.Info("rescan job completed",
		zap.Duration("duration", time.Since(start)))
}

// RunStartupScan scans repositories whose latest completed scan is older
// than maxAge. Used at boot so a restarted service catches up without
// re-scanning everything.
func (j *RescanJob) RunStartupScan(maxAge time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting stale repository scan", zap.Duration("max_age", maxAge))

	queued, err := j.scanService.RescanStale(ctx, maxAge)
	if err != nil {
		j.logger.Error("stale repository scan failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return queued
	}

	if queued > 0 {
		j.logger.Info("stale repository scan completed",
			zap.Int("repositories", queued),
			zap.Duration("duration", time.Since(start)))
	}
	return queued
}

// RegisterRescanJob registers the rescan job with the scheduler.
// If runStartupScan is true, stale repositories are scanned immediately in a
// background goroutine so boot is not blocked.
func RegisterRescanJob(scheduler *Scheduler, scanService RescanService, logger *zap.Logger, cronExpr string, timeout time.Duration, runStartupScan bool, staleMaxAge time.Duration) error {
	job := NewRescanJob(scanService, logger, timeout)

	if runStartupScan {
		go job.RunStartupScan(staleMaxAge)
	}

	return scheduler.AddJob(RescanJobName, cronExpr, job.Run)
}
