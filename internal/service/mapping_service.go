package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/depscan-io/depscan/internal/analyzer"
	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/mapper"
	"github.com/depscan-io/depscan/internal/repository"
)

// ErrMappingNotFound is returned when a license mapping is not found
var ErrMappingNotFound = errors.New("license mapping not found")

// ErrMappingExists is returned when creating a duplicate ecosystem and name pair
var ErrMappingExists = errors.New("license mapping already exists")

// MappingService handles business logic for curated license mappings
type MappingService struct {
	mappingRepo *repository.MappingRepository
	logger      *zap.Logger
}

// NewMappingService creates a new MappingService instance
func NewMappingService(mappingRepo *repository.MappingRepository, logger *zap.Logger) *MappingService {
	return &MappingService{
		mappingRepo: mappingRepo,
		logger:      logger,
	}
}

// Create adds a curated license mapping
func (s *MappingService) Create(ctx context.Context, req *domain.CreateMappingRequest) (*domain.MappingDTO, error) {
	ecosystem := domain.Ecosystem(req.Ecosystem)
	name := strings.ToLower(strings.TrimSpace(req.Name))

	if _, err := s.mappingRepo.GetByKey(ctx, ecosystem, name); err == nil {
		return nil, ErrMappingExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing mapping: %w", err)
	}

	mapping := &domain.LicenseMapping{
		Ecosystem:        ecosystem,
		Name:             name,
		Version:          req.Version,
		License:          req.License,
		DocumentationURL: req.DocumentationURL,
	}
	if err := s.mappingRepo.Create(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to create mapping: %w", err)
	}

	s.logger.Info("license mapping created",
		zap.String("ecosystem", req.Ecosystem),
		zap.String("package", name),
	)

	dto := mapper.ToMappingDTO(mapping)
	return &dto, nil
}

// GetByID returns a single mapping
func (s *MappingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.MappingDTO, error) {
	mapping, err := s.mappingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to get mapping: %w", err)
	}

	dto := mapper.ToMappingDTO(mapping)
	return &dto, nil
}

// List returns a page of mappings, optionally filtered by ecosystem
func (s *MappingService) List(ctx context.Context, page, pageSize int, ecosystem string) (*domain.PaginatedResponse, error) {
	mappings, total, err := s.mappingRepo.List(ctx, page, pageSize, ecosystem)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}

	return &domain.PaginatedResponse{
		Data:       mapper.ToMappingDTOs(mappings),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// Update changes a mapping's license details
func (s *MappingService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateMappingRequest) (*domain.MappingDTO, error) {
	mapping, err := s.mappingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to get mapping: %w", err)
	}

	if req.Version != nil {
		mapping.Version = *req.Version
	}
	if req.License != nil && *req.License != "" {
		mapping.License = *req.License
	}
	if req.DocumentationURL != nil {
		mapping.DocumentationURL = *req.DocumentationURL
	}

	if err := s.mappingRepo.Update(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to update mapping: %w", err)
	}

	dto := mapper.ToMappingDTO(mapping)
	return &dto, nil
}

// Delete removes a mapping
func (s *MappingService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.mappingRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMappingNotFound
		}
		return fmt.Errorf("failed to get mapping: %w", err)
	}

	if err := s.mappingRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}
	return nil
}

// ImportCSV loads mappings from the curated CSV format, updating entries
// that already exist.
func (s *MappingService) ImportCSV(ctx context.Context, r io.Reader) (*domain.MappingImportResultDTO, error) {
	parsed, err := analyzer.ParseMappingCSV(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping csv: %w", err)
	}

	result := &domain.MappingImportResultDTO{}
	for _, m := range parsed {
		if m.License == "" {
			result.Skipped++
			continue
		}
		created, err := s.mappingRepo.Upsert(ctx, &domain.LicenseMapping{
			Ecosystem:        m.Ecosystem,
			Name:             strings.ToLower(m.Name),
			Version:          m.Version,
			License:          m.License,
			DocumentationURL: m.URL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to import mapping %s/%s: %w", m.Ecosystem, m.Name, err)
		}
		if created {
			result.Imported++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("license mappings imported",
		zap.Int("imported", result.Imported),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// ExportCSV writes every mapping in the curated CSV format
func (s *MappingService) ExportCSV(ctx context.Context, w io.Writer) error {
	mappings, err := s.mappingRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list mappings: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ecosystem", "package", "version", "license", "url"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, m := range mappings {
		row := []string{string(m.Ecosystem), m.Name, m.Version, m.License, m.DocumentationURL}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
