package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaginatedResponse wraps list payloads with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// CreateRepositoryRequest registers a repository for analysis
type CreateRepositoryRequest struct {
	URL  string `json:"url" validate:"required,url,max=500"`
	Name string `json:"name" validate:"omitempty,max=200"`
}

// UpdateRepositoryRequest updates repository settings
type UpdateRepositoryRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	IsActive *bool   `json:"isActive"`
}

// RepositoryDTO is the API representation of a repository
type RepositoryDTO struct {
	ID          uuid.UUID   `json:"id"`
	URL         string      `json:"url"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	License     string      `json:"license,omitempty"`
	Ecosystems  []Ecosystem `json:"ecosystems,omitempty"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ScanDTO is the API representation of a scan
type ScanDTO struct {
	ID              uuid.UUID   `json:"id"`
	RepositoryID    uuid.UUID   `json:"repositoryId"`
	RepositoryURL   string      `json:"repositoryUrl,omitempty"`
	RepositoryName  string      `json:"repositoryName,omitempty"`
	Status          ScanStatus  `json:"status"`
	Error           string      `json:"error,omitempty"`
	License         string      `json:"license,omitempty"`
	Description     string      `json:"description,omitempty"`
	Ecosystems      []Ecosystem `json:"ecosystems,omitempty"`
	DependencyCount int         `json:"dependencyCount"`
	StartedAt       *time.Time  `json:"startedAt,omitempty"`
	FinishedAt      *time.Time  `json:"finishedAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// ScanDetailDTO extends ScanDTO with resolved dependencies
type ScanDetailDTO struct {
	ScanDTO
	Dependencies []DependencyDTO `json:"dependencies"`
}

// DependencyDTO is the API representation of a resolved dependency
type DependencyDTO struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Version   string           `json:"version,omitempty"`
	Ecosystem Ecosystem        `json:"ecosystem"`
	License   string           `json:"license,omitempty"`
	Source    DependencySource `json:"source"`
	URL       string           `json:"url,omitempty"`
}

// InfraDTO groups the infrastructure results of a scan
type InfraDTO struct {
	Resources    []InfraResourceDTO      `json:"resources"`
	Workflows    []WorkflowSummaryDTO    `json:"workflows"`
	Interactions []ServiceInteractionDTO `json:"interactions"`
}

// InfraResourceDTO is the API representation of an infrastructure resource
type InfraResourceDTO struct {
	Name         string           `json:"name"`
	ResourceType string           `json:"resourceType"`
	Language     ResourceLanguage `json:"language"`
	SourceFile   string           `json:"sourceFile,omitempty"`
	Size         string           `json:"size,omitempty"`
}

// WorkflowSummaryDTO is the API representation of a workflow summary
type WorkflowSummaryDTO struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Triggers string   `json:"triggers,omitempty"`
	JobNames []string `json:"jobNames,omitempty"`
}

// ServiceInteractionDTO is the API representation of a service interaction
type ServiceInteractionDTO struct {
	Service         string `json:"service"`
	Name            string `json:"name,omitempty"`
	InteractionType string `json:"interactionType"`
	Language        string `json:"language,omitempty"`
	Details         string `json:"details,omitempty"`
}

// CreateMappingRequest creates a manual license mapping
type CreateMappingRequest struct {
	Ecosystem        string `json:"ecosystem" validate:"required,oneof=python javascript java dotnet"`
	Name             string `json:"name" validate:"required,max=300"`
	Version          string `json:"version" validate:"omitempty,max=100"`
	License          string `json:"license" validate:"required,max=200"`
	DocumentationURL string `json:"documentationUrl" validate:"omitempty,url,max=500"`
}

// UpdateMappingRequest updates a manual license mapping
type UpdateMappingRequest struct {
	Version          *string `json:"version" validate:"omitempty,max=100"`
	License          *string `json:"license" validate:"omitempty,max=200"`
	DocumentationURL *string `json:"documentationUrl" validate:"omitempty,url,max=500"`
}

// MappingDTO is the API representation of a license mapping
type MappingDTO struct {
	ID               uuid.UUID `json:"id"`
	Ecosystem        Ecosystem `json:"ecosystem"`
	Name             string    `json:"name"`
	Version          string    `json:"version,omitempty"`
	License          string    `json:"license"`
	DocumentationURL string    `json:"documentationUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// MappingImportResultDTO summarizes a CSV mapping import
type MappingImportResultDTO struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// DashboardSummaryDTO aggregates counts for the dashboard endpoint
type DashboardSummaryDTO struct {
	Repositories     int64            `json:"repositories"`
	ActiveRepos      int64            `json:"activeRepositories"`
	Scans            int64            `json:"scans"`
	CompletedScans   int64            `json:"completedScans"`
	FailedScans      int64            `json:"failedScans"`
	Dependencies     int64            `json:"dependencies"`
	Unresolved       int64            `json:"unresolvedDependencies"`
	LicenseBreakdown map[string]int64 `json:"licenseBreakdown"`
}
