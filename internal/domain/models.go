package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when none is set. SQLite has no uuid default,
// so IDs are generated application-side for both drivers.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Ecosystem identifies a package ecosystem a repository depends on
type Ecosystem string

const (
	EcosystemPython     Ecosystem = "python"
	EcosystemJavaScript Ecosystem = "javascript"
	EcosystemJava       Ecosystem = "java"
	EcosystemDotNet     Ecosystem = "dotnet"
)

// AllEcosystems lists every supported ecosystem in report order
var AllEcosystems = []Ecosystem{
	EcosystemPython,
	EcosystemJavaScript,
	EcosystemJava,
	EcosystemDotNet,
}

// IsValidEcosystem reports whether s names a supported ecosystem
func IsValidEcosystem(s string) bool {
	switch Ecosystem(s) {
	case EcosystemPython, EcosystemJavaScript, EcosystemJava, EcosystemDotNet:
		return true
	}
	return false
}

// ScanStatus represents the lifecycle state of a scan
type ScanStatus string

const (
	ScanStatusPending   ScanStatus = "pending"
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

// DependencySource records where a dependency's license information came from
type DependencySource string

const (
	// SourceRegistry means the license was resolved from the public package registry
	SourceRegistry DependencySource = "registry"
	// SourceMapping means the license came from a manual license mapping entry
	SourceMapping DependencySource = "mapping"
	// SourceUnresolved means no license information could be obtained
	SourceUnresolved DependencySource = "unresolved"
)

// Repository represents a Git repository registered for analysis
type Repository struct {
	BaseModel
	URL         string `gorm:"type:varchar(500);not null;uniqueIndex"`
	Name        string `gorm:"type:varchar(200);not null;index"`
	Description string `gorm:"type:text"`
	License     string `gorm:"type:varchar(100)"`
	Ecosystems  string `gorm:"type:varchar(200)"`
	IsActive    bool   `gorm:"not null;default:true;column:is_active;index"`
	Scans       []Scan `gorm:"foreignKey:RepositoryID;constraint:OnDelete:CASCADE"`
}

// EcosystemList splits the comma-joined ecosystems column
func (r *Repository) EcosystemList() []Ecosystem {
	return SplitEcosystems(r.Ecosystems)
}

// Scan represents a single analysis run of a repository
type Scan struct {
	BaseModel
	RepositoryID    uuid.UUID   `gorm:"type:uuid;not null;index;column:repository_id"`
	Repository      *Repository `gorm:"foreignKey:RepositoryID"`
	Status          ScanStatus  `gorm:"type:varchar(20);not null;default:'pending';index"`
	Error           string      `gorm:"type:text"`
	License         string      `gorm:"type:varchar(100)"`
	Description     string      `gorm:"type:text"`
	Ecosystems      string      `gorm:"type:varchar(200)"`
	DependencyCount int         `gorm:"not null;default:0;column:dependency_count"`
	StartedAt       *time.Time  `gorm:"column:started_at"`
	FinishedAt      *time.Time  `gorm:"column:finished_at"`

	Dependencies []Dependency         `gorm:"foreignKey:ScanID;constraint:OnDelete:CASCADE"`
	Resources    []InfraResource      `gorm:"foreignKey:ScanID;constraint:OnDelete:CASCADE"`
	Workflows    []WorkflowSummary    `gorm:"foreignKey:ScanID;constraint:OnDelete:CASCADE"`
	Interactions []ServiceInteraction `gorm:"foreignKey:ScanID;constraint:OnDelete:CASCADE"`
}

// EcosystemList splits the comma-joined ecosystems column
func (s *Scan) EcosystemList() []Ecosystem {
	return SplitEcosystems(s.Ecosystems)
}

// Duration returns how long the scan ran, or zero when not finished
func (s *Scan) Duration() time.Duration {
	if s.StartedAt == nil || s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(*s.StartedAt)
}

// Dependency is a single resolved dependency found during a scan
type Dependency struct {
	BaseModel
	ScanID    uuid.UUID        `gorm:"type:uuid;not null;index;column:scan_id"`
	Name      string           `gorm:"type:varchar(300);not null;index"`
	Version   string           `gorm:"type:varchar(100)"`
	Ecosystem Ecosystem        `gorm:"type:varchar(20);not null;index"`
	License   string           `gorm:"type:varchar(200)"`
	Source    DependencySource `gorm:"type:varchar(20);not null;default:'registry'"`
	URL       string           `gorm:"type:varchar(500)"`
}

// Unresolved reports whether the dependency still needs a manual mapping entry.
// Mirrors the selection rule for the missing-mapping template: unknown or
// failed lookups, and registry hits without a usable URL.
func (d *Dependency) Unresolved() bool {
	if d.Source == SourceMapping {
		return false
	}
	switch d.License {
	case "", "Unknown", "See URL", "Lookup Failed":
		return true
	}
	return d.URL == ""
}

// LicenseMapping is a manual license override for a dependency.
// Name is stored lowercase; the (ecosystem, name) pair is unique.
type LicenseMapping struct {
	BaseModel
	Ecosystem        Ecosystem `gorm:"type:varchar(20);not null;uniqueIndex:idx_license_mappings_key"`
	Name             string    `gorm:"type:varchar(300);not null;uniqueIndex:idx_license_mappings_key"`
	Version          string    `gorm:"type:varchar(100)"`
	License          string    `gorm:"type:varchar(200);not null"`
	DocumentationURL string    `gorm:"type:varchar(500);column:documentation_url"`
}

// ResourceLanguage identifies where an infrastructure resource was declared
type ResourceLanguage string

const (
	ResourceLanguagePython     ResourceLanguage = "Python"
	ResourceLanguageTypeScript ResourceLanguage = "TypeScript"
	ResourceLanguageShell      ResourceLanguage = "Shell"
	ResourceLanguageWorkflow   ResourceLanguage = "GitHub Actions"
)

// InfraResource is an infrastructure resource declaration found during a scan
type InfraResource struct {
	BaseModel
	ScanID       uuid.UUID        `gorm:"type:uuid;not null;index;column:scan_id"`
	Name         string           `gorm:"type:varchar(300);not null"`
	ResourceType string           `gorm:"type:varchar(300);not null;column:resource_type"`
	Language     ResourceLanguage `gorm:"type:varchar(30);not null"`
	SourceFile   string           `gorm:"type:varchar(500);column:source_file"`
	Size         string           `gorm:"type:varchar(100)"`
}

// WorkflowSummary describes a GitHub Actions workflow file found during a scan
type WorkflowSummary struct {
	BaseModel
	ScanID   uuid.UUID `gorm:"type:uuid;not null;index;column:scan_id"`
	Name     string    `gorm:"type:varchar(300);not null"`
	Path     string    `gorm:"type:varchar(500)"`
	Triggers string    `gorm:"type:varchar(300)"`
	JobNames string    `gorm:"type:varchar(500);column:job_names"`
}

// ServiceInteraction records detected usage of a tracked cloud service
type ServiceInteraction struct {
	BaseModel
	ScanID          uuid.UUID `gorm:"type:uuid;not null;index;column:scan_id"`
	Service         string    `gorm:"type:varchar(100);not null;index"`
	Name            string    `gorm:"type:varchar(300)"`
	InteractionType string    `gorm:"type:varchar(50);not null;column:interaction_type"`
	Language        string    `gorm:"type:varchar(30)"`
	Details         string    `gorm:"type:varchar(500)"`
}

// JoinEcosystems renders a comma-joined ecosystems column value
func JoinEcosystems(list []Ecosystem) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = string(e)
	}
	return strings.Join(parts, ",")
}

// SplitEcosystems parses a comma-joined ecosystems column value
func SplitEcosystems(s string) []Ecosystem {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	list := make([]Ecosystem, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, Ecosystem(p))
		}
	}
	return list
}
