// Package warehouse exports scan summaries to the MS SQL Server data
// warehouse. The export is write-only and best effort: scans succeed even
// when the warehouse is unreachable.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb" // MS SQL Server driver
	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/config"
	"github.com/depscan-io/depscan/internal/domain"
)

const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 10 * time.Second
	defaultBackoffFactor  = 2.0

	defaultPingTimeout = 5 * time.Second
)

// Exporter writes scan summaries to the data warehouse
type Exporter struct {
	db           *sql.DB
	logger       *zap.Logger
	queryTimeout time.Duration
}

// NewExporter creates a new warehouse exporter.
// Returns nil if the warehouse is not enabled or not configured.
func NewExporter(cfg *config.WarehouseConfig, logger *zap.Logger) (*Exporter, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("warehouse export disabled")
		return nil, nil
	}

	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("warehouse export enabled but missing credentials, skipping",
			zap.Bool("url_present", cfg.URL != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""),
		)
		return nil, nil
	}

	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	var db *sql.DB
	backoff := defaultInitialBackoff

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		db, err = sql.Open("sqlserver", connStr)
		if err != nil {
			logger.Warn("failed to open warehouse connection",
				zap.Error(err), zap.Int("attempt", attempt))
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = nextBackoff(backoff)
			}
			continue
		}

		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

		ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
		err = db.PingContext(ctx)
		cancel()
		if err != nil {
			logger.Warn("warehouse ping failed", zap.Error(err), zap.Int("attempt", attempt))
			_ = db.Close()
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = nextBackoff(backoff)
			}
			continue
		}

		logger.Info("warehouse connection established", zap.Int("attempts_taken", attempt))
		return &Exporter{
			db:           db,
			logger:       logger,
			queryTimeout: cfg.QueryTimeoutDuration(),
		}, nil
	}

	return nil, fmt.Errorf("failed to connect to warehouse after %d attempts: %w", defaultMaxRetries, err)
}

func nextBackoff(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * defaultBackoffFactor)
	if next > defaultMaxBackoff {
		return defaultMaxBackoff
	}
	return next
}

// buildConnectionString constructs a SQL Server connection string.
// URL format expected: host:port/database or host:port
func buildConnectionString(cfg *config.WarehouseConfig) (string, error) {
	urlParts := strings.SplitN(cfg.URL, "/", 2)
	hostPort := urlParts[0]
	database := ""
	if len(urlParts) > 1 {
		database = urlParts[1]
	}

	hostParts := strings.SplitN(hostPort, ":", 2)
	host := hostParts[0]
	port := "1433"
	if len(hostParts) > 1 {
		port = hostParts[1]
	}

	query := url.Values{}
	query.Add("encrypt", "true")
	query.Add("TrustServerCertificate", "false")
	query.Add("connection timeout", "30")
	if database != "" {
		query.Add("database", database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", host, port),
		RawQuery: query.Encode(),
	}

	return u.String(), nil
}

// ExportScan upserts one row per completed scan into dbo.scan_summaries
func (e *Exporter) ExportScan(ctx context.Context, repo *domain.Repository, scan *domain.Scan) error {
	if e == nil || e.db == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	query := `
MERGE dbo.scan_summaries AS target
USING (SELECT @scan_id AS scan_id) AS source
ON target.scan_id = source.scan_id
WHEN MATCHED THEN UPDATE SET
	repository_url = @repository_url,
	repository_name = @repository_name,
	status = @status,
	license = @license,
	ecosystems = @ecosystems,
	dependency_count = @dependency_count,
	finished_at = @finished_at
WHEN NOT MATCHED THEN INSERT
	(scan_id, repository_url, repository_name, status, license, ecosystems, dependency_count, finished_at)
VALUES
	(@scan_id, @repository_url, @repository_name, @status, @license, @ecosystems, @dependency_count, @finished_at);`

	_, err := e.db.ExecContext(ctx, query,
		sql.Named("scan_id", scan.ID.String()),
		sql.Named("repository_url", repo.URL),
		sql.Named("repository_name", repo.Name),
		sql.Named("status", string(scan.Status)),
		sql.Named("license", scan.License),
		sql.Named("ecosystems", scan.Ecosystems),
		sql.Named("dependency_count", scan.DependencyCount),
		sql.Named("finished_at", scan.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to export scan %s: %w", scan.ID, err)
	}

	e.logger.Info("scan exported to warehouse",
		zap.String("scanID", scan.ID.String()),
		zap.String("repository", repo.Name),
	)
	return nil
}

// Close gracefully closes the warehouse connection
func (e *Exporter) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("failed to close warehouse connection: %w", err)
	}
	return nil
}
