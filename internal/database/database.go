package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/depscan-io/depscan/internal/config"
	"github.com/depscan-io/depscan/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the scan result store.
// The sqlite driver is the default for local and CLI use; postgres is
// used for shared deployments.
func NewDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite", "":
		db, err = gorm.Open(sqlite.Open(cfg.Path), gormCfg)
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.ConnectionString()), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema. Used for sqlite and in
// development; postgres deployments run goose migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Repository{},
		&domain.Scan{},
		&domain.Dependency{},
		&domain.LicenseMapping{},
		&domain.InfraResource{},
		&domain.WorkflowSummary{},
		&domain.ServiceInteraction{},
	)
}

// HealthCheck pings the database
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Ping()
}

// HealthCheckWithStats pings the database and returns pool statistics
func HealthCheckWithStats(db *gorm.DB) (sql.DBStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return sql.DBStats{}, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}
