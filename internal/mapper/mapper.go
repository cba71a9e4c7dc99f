// Package mapper converts domain models to API DTOs.
package mapper

import (
	"strings"

	"github.com/depscan-io/depscan/internal/domain"
)

func ToRepositoryDTO(repo *domain.Repository) domain.RepositoryDTO {
	return domain.RepositoryDTO{
		ID:          repo.ID,
		URL:         repo.URL,
		Name:        repo.Name,
		Description: repo.Description,
		License:     repo.License,
		Ecosystems:  repo.EcosystemList(),
		IsActive:    repo.IsActive,
		CreatedAt:   repo.CreatedAt,
		UpdatedAt:   repo.UpdatedAt,
	}
}

func ToRepositoryDTOs(repos []domain.Repository) []domain.RepositoryDTO {
	dtos := make([]domain.RepositoryDTO, len(repos))
	for i := range repos {
		dtos[i] = ToRepositoryDTO(&repos[i])
	}
	return dtos
}

func ToScanDTO(scan *domain.Scan) domain.ScanDTO {
	dto := domain.ScanDTO{
		ID:              scan.ID,
		RepositoryID:    scan.RepositoryID,
		Status:          scan.Status,
		Error:           scan.Error,
		License:         scan.License,
		Description:     scan.Description,
		Ecosystems:      scan.EcosystemList(),
		DependencyCount: scan.DependencyCount,
		StartedAt:       scan.StartedAt,
		FinishedAt:      scan.FinishedAt,
		CreatedAt:       scan.CreatedAt,
	}
	if scan.Repository != nil {
		dto.RepositoryURL = scan.Repository.URL
		dto.RepositoryName = scan.Repository.Name
	}
	return dto
}

func ToScanDTOs(scans []domain.Scan) []domain.ScanDTO {
	dtos := make([]domain.ScanDTO, len(scans))
	for i := range scans {
		dtos[i] = ToScanDTO(&scans[i])
	}
	return dtos
}

func ToScanDetailDTO(scan *domain.Scan) domain.ScanDetailDTO {
	detail := domain.ScanDetailDTO{
		ScanDTO:      ToScanDTO(scan),
		Dependencies: make([]domain.DependencyDTO, len(scan.Dependencies)),
	}
	for i := range scan.Dependencies {
		detail.Dependencies[i] = ToDependencyDTO(&scan.Dependencies[i])
	}
	return detail
}

func ToDependencyDTO(dep *domain.Dependency) domain.DependencyDTO {
	return domain.DependencyDTO{
		ID:        dep.ID,
		Name:      dep.Name,
		Version:   dep.Version,
		Ecosystem: dep.Ecosystem,
		License:   dep.License,
		Source:    dep.Source,
		URL:       dep.URL,
	}
}

func ToInfraDTO(scan *domain.Scan) domain.InfraDTO {
	dto := domain.InfraDTO{
		Resources:    make([]domain.InfraResourceDTO, len(scan.Resources)),
		Workflows:    make([]domain.WorkflowSummaryDTO, len(scan.Workflows)),
		Interactions: make([]domain.ServiceInteractionDTO, len(scan.Interactions)),
	}
	for i, r := range scan.Resources {
		dto.Resources[i] = domain.InfraResourceDTO{
			Name:         r.Name,
			ResourceType: r.ResourceType,
			Language:     r.Language,
			SourceFile:   r.SourceFile,
			Size:         r.Size,
		}
	}
	for i, w := range scan.Workflows {
		dto.Workflows[i] = domain.WorkflowSummaryDTO{
			Name:     w.Name,
			Path:     w.Path,
			Triggers: w.Triggers,
			JobNames: splitJobNames(w.JobNames),
		}
	}
	for i, s := range scan.Interactions {
		dto.Interactions[i] = domain.ServiceInteractionDTO{
			Service:         s.Service,
			Name:            s.Name,
			InteractionType: s.InteractionType,
			Language:        s.Language,
			Details:         s.Details,
		}
	}
	return dto
}

func ToMappingDTO(mapping *domain.LicenseMapping) domain.MappingDTO {
	return domain.MappingDTO{
		ID:               mapping.ID,
		Ecosystem:        mapping.Ecosystem,
		Name:             mapping.Name,
		Version:          mapping.Version,
		License:          mapping.License,
		DocumentationURL: mapping.DocumentationURL,
		CreatedAt:        mapping.CreatedAt,
		UpdatedAt:        mapping.UpdatedAt,
	}
}

func ToMappingDTOs(mappings []domain.LicenseMapping) []domain.MappingDTO {
	dtos := make([]domain.MappingDTO, len(mappings))
	for i := range mappings {
		dtos[i] = ToMappingDTO(&mappings[i])
	}
	return dtos
}

func splitJobNames(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
