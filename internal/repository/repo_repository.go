package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/depscan-io/depscan/internal/domain"
)

type RepoRepository struct {
	db *gorm.DB
}

func NewRepoRepository(db *gorm.DB) *RepoRepository {
	return &RepoRepository{db: db}
}

func (r *RepoRepository) Create(ctx context.Context, repo *domain.Repository) error {
	return r.db.WithContext(ctx).Create(repo).Error
}

func (r *RepoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Repository, error) {
	var repo domain.Repository
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&repo).Error
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func (r *RepoRepository) GetByURL(ctx context.Context, url string) (*domain.Repository, error) {
	var repo domain.Repository
	err := r.db.WithContext(ctx).Where("url = ?", url).First(&repo).Error
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func (r *RepoRepository) Update(ctx context.Context, repo *domain.Repository) error {
	return r.db.WithContext(ctx).Save(repo).Error
}

// Delete removes a repository together with its scans and their child
// records. SQLite does not enforce the cascade constraints, so the children
// are deleted explicitly.
func (r *RepoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scanIDs := tx.Model(&domain.Scan{}).Select("id").Where("repository_id = ?", id)
		for _, child := range []interface{}{
			&domain.Dependency{}, &domain.InfraResource{}, &domain.WorkflowSummary{}, &domain.ServiceInteraction{},
		} {
			if err := tx.Where("scan_id IN (?)", scanIDs).Delete(child).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("repository_id = ?", id).Delete(&domain.Scan{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Repository{}, "id = ?", id).Error
	})
}

func (r *RepoRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.Repository, int64, error) {
	var repos []domain.Repository
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Repository{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(url) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&repos).Error

	return repos, total, err
}

func (r *RepoRepository) ListActive(ctx context.Context) ([]domain.Repository, error) {
	var repos []domain.Repository
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at ASC").Find(&repos).Error
	return repos, err
}

func (r *RepoRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Repository{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}
