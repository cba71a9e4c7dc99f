package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/depscan-io/depscan/internal/domain"
)

type ScanRepository struct {
	db *gorm.DB
}

func NewScanRepository(db *gorm.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

func (r *ScanRepository) Create(ctx context.Context, scan *domain.Scan) error {
	return r.db.WithContext(ctx).Create(scan).Error
}

func (r *ScanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Scan, error) {
	var scan domain.Scan
	err := r.db.WithContext(ctx).Preload("Repository").Where("id = ?", id).First(&scan).Error
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// GetDetail loads a scan with all its child records
func (r *ScanRepository) GetDetail(ctx context.Context, id uuid.UUID) (*domain.Scan, error) {
	var scan domain.Scan
	err := r.db.WithContext(ctx).
		Preload("Repository").
		Preload("Dependencies", func(db *gorm.DB) *gorm.DB {
			return db.Order("dependencies.ecosystem, dependencies.name")
		}).
		Preload("Resources").
		Preload("Workflows").
		Preload("Interactions").
		Where("id = ?", id).
		First(&scan).Error
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

func (r *ScanRepository) List(ctx context.Context, page, pageSize int, repositoryID *uuid.UUID, status string) ([]domain.Scan, int64, error) {
	var scans []domain.Scan
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Scan{})
	if repositoryID != nil {
		query = query.Where("repository_id = ?", *repositoryID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Repository").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&scans).Error

	return scans, total, err
}

// LatestByRepository returns the newest completed scan for a repository
func (r *ScanRepository) LatestByRepository(ctx context.Context, repositoryID uuid.UUID) (*domain.Scan, error) {
	var scan domain.Scan
	err := r.db.WithContext(ctx).
		Where("repository_id = ? AND status = ?", repositoryID, domain.ScanStatusCompleted).
		Order("created_at DESC").
		First(&scan).Error
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

func (r *ScanRepository) MarkRunning(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Scan{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.ScanStatusRunning,
			"started_at": startedAt,
		}).Error
}

func (r *ScanRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, finishedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Scan{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      domain.ScanStatusFailed,
			"error":       errMsg,
			"finished_at": finishedAt,
		}).Error
}

// SaveResults persists a completed scan and its child records in one
// transaction.
func (r *ScanRepository) SaveResults(ctx context.Context, scan *domain.Scan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Children are inserted explicitly below, so the parent save must
		// not also upsert them through the association handling.
		if err := tx.Omit(clause.Associations).Save(scan).Error; err != nil {
			return err
		}
		for i := range scan.Dependencies {
			scan.Dependencies[i].ScanID = scan.ID
		}
		for i := range scan.Resources {
			scan.Resources[i].ScanID = scan.ID
		}
		for i := range scan.Workflows {
			scan.Workflows[i].ScanID = scan.ID
		}
		for i := range scan.Interactions {
			scan.Interactions[i].ScanID = scan.ID
		}
		if len(scan.Dependencies) > 0 {
			if err := tx.CreateInBatches(scan.Dependencies, 200).Error; err != nil {
				return err
			}
		}
		if len(scan.Resources) > 0 {
			if err := tx.CreateInBatches(scan.Resources, 200).Error; err != nil {
				return err
			}
		}
		if len(scan.Workflows) > 0 {
			if err := tx.CreateInBatches(scan.Workflows, 200).Error; err != nil {
				return err
			}
		}
		if len(scan.Interactions) > 0 {
			if err := tx.CreateInBatches(scan.Interactions, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ScanRepository) CountByStatus(ctx context.Context, status domain.ScanStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Scan{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *ScanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Scan{}).Count(&count).Error
	return count, err
}

// ListStaleRepositoryIDs returns active repositories whose newest completed
// scan is older than cutoff, or that have never completed a scan.
func (r *ScanRepository) ListStaleRepositoryIDs(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&domain.Repository{}).
		Where("is_active = ?", true).
		Where(`id NOT IN (
			SELECT repository_id FROM scans
			WHERE status = ? AND created_at >= ?
		)`, domain.ScanStatusCompleted, cutoff).
		Pluck("id", &ids).Error
	return ids, err
}
