package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/depscan-io/depscan/internal/domain"
)

type DependencyRepository struct {
	db *gorm.DB
}

func NewDependencyRepository(db *gorm.DB) *DependencyRepository {
	return &DependencyRepository{db: db}
}

func (r *DependencyRepository) ListByScan(ctx context.Context, scanID uuid.UUID) ([]domain.Dependency, error) {
	var deps []domain.Dependency
	err := r.db.WithContext(ctx).
		Where("scan_id = ?", scanID).
		Order("ecosystem, name").
		Find(&deps).Error
	return deps, err
}

func (r *DependencyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Dependency{}).Count(&count).Error
	return count, err
}

func (r *DependencyRepository) CountUnresolved(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Dependency{}).
		Where("source <> ?", domain.SourceMapping).
		Where("license IN ? OR url = ''", []string{"", "Unknown", "See URL", "Lookup Failed"}).
		Count(&count).Error
	return count, err
}

// LicenseBreakdown counts dependencies per license value
func (r *DependencyRepository) LicenseBreakdown(ctx context.Context) (map[string]int64, error) {
	type row struct {
		License string
		Total   int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Dependency{}).
		Select("license, COUNT(*) AS total").
		Group("license").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]int64, len(rows))
	for _, r := range rows {
		license := r.License
		if license == "" {
			license = "Unknown"
		}
		breakdown[license] += r.Total
	}
	return breakdown, nil
}
