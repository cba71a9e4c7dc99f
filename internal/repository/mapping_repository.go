package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/depscan-io/depscan/internal/domain"
)

type MappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

func (r *MappingRepository) Create(ctx context.Context, mapping *domain.LicenseMapping) error {
	mapping.Name = strings.ToLower(mapping.Name)
	return r.db.WithContext(ctx).Create(mapping).Error
}

func (r *MappingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LicenseMapping, error) {
	var mapping domain.LicenseMapping
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *MappingRepository) GetByKey(ctx context.Context, ecosystem domain.Ecosystem, name string) (*domain.LicenseMapping, error) {
	var mapping domain.LicenseMapping
	err := r.db.WithContext(ctx).
		Where("ecosystem = ? AND name = ?", ecosystem, strings.ToLower(name)).
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *MappingRepository) Update(ctx context.Context, mapping *domain.LicenseMapping) error {
	return r.db.WithContext(ctx).Save(mapping).Error
}

func (r *MappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.LicenseMapping{}, "id = ?", id).Error
}

func (r *MappingRepository) List(ctx context.Context, page, pageSize int, ecosystem string) ([]domain.LicenseMapping, int64, error) {
	var mappings []domain.LicenseMapping
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.LicenseMapping{})
	if ecosystem != "" {
		query = query.Where("ecosystem = ?", ecosystem)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("ecosystem, name").Find(&mappings).Error

	return mappings, total, err
}

func (r *MappingRepository) ListAll(ctx context.Context) ([]domain.LicenseMapping, error) {
	var mappings []domain.LicenseMapping
	err := r.db.WithContext(ctx).Order("ecosystem, name").Find(&mappings).Error
	return mappings, err
}

// Upsert creates the mapping or updates the existing entry for the same
// ecosystem and name. It reports whether a new row was created.
func (r *MappingRepository) Upsert(ctx context.Context, mapping *domain.LicenseMapping) (bool, error) {
	existing, err := r.GetByKey(ctx, mapping.Ecosystem, mapping.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, r.Create(ctx, mapping)
		}
		return false, err
	}

	existing.Version = mapping.Version
	existing.License = mapping.License
	existing.DocumentationURL = mapping.DocumentationURL
	return false, r.Update(ctx, existing)
}
