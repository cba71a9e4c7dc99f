// Package analyzer orchestrates the scan pipeline: clone, ecosystem
// detection, manifest parsing, license resolution and infrastructure
// scanning.
package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/depscan-io/depscan/internal/config"
	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/gitrepo"
	"github.com/depscan-io/depscan/internal/iac"
	"github.com/depscan-io/depscan/internal/manifest"
	"github.com/depscan-io/depscan/internal/registry"
)

// MappedLicensePrefix marks licenses that came from the curated mapping
// rather than a registry lookup.
const MappedLicensePrefix = "!"

// License states recorded when resolution cannot produce a real license
const (
	LicenseUnknown      = "Unknown"
	LicenseLookupFailed = "Lookup Failed"
)

// Dependency is one resolved dependency of a scanned repository
type Dependency struct {
	Name      string
	Version   string
	Ecosystem domain.Ecosystem
	License   string
	URL       string
	Source    domain.DependencySource
}

// Unresolved reports whether the dependency still needs a curated mapping
func (d Dependency) Unresolved() bool {
	if d.Source == domain.SourceMapping {
		return false
	}
	switch d.License {
	case "", LicenseUnknown, LicenseLookupFailed, "See URL":
		return true
	}
	return d.URL == ""
}

// RepoReport is the full analysis result for one repository
type RepoReport struct {
	URL          string
	Name         string
	License      string
	Description  string
	Ecosystems   []domain.Ecosystem
	Dependencies []Dependency
	Infra        iac.Result
	StartedAt    time.Time
	FinishedAt   time.Time
	Err          error
}

// LicenseLookup resolves a package against its ecosystem registry
type LicenseLookup interface {
	Lookup(ctx context.Context, ecosystem domain.Ecosystem, name string) (registry.Info, error)
}

// Cloner materializes a repository on disk
type Cloner interface {
	Clone(ctx context.Context, url string) (string, error)
}

// Analyzer runs the scan pipeline for one or more repositories
type Analyzer struct {
	cloner      Cloner
	registry    LicenseLookup
	mappings    MappingSource
	cfg         *config.Config
	keepWorkDir bool
	logger      *zap.Logger
}

func New(cloner Cloner, reg LicenseLookup, mappings MappingSource, cfg *config.Config, logger *zap.Logger) *Analyzer {
	if mappings == nil {
		mappings = emptyMappingSource{}
	}
	return &Analyzer{
		cloner:      cloner,
		registry:    reg,
		mappings:    mappings,
		cfg:         cfg,
		keepWorkDir: cfg.Analyzer.KeepWorkDir,
		logger:      logger,
	}
}

// AnalyzeAll scans every repository with bounded concurrency. Reports come
// back in input order; a failed repository carries its error in Err rather
// than aborting the batch.
func (a *Analyzer) AnalyzeAll(ctx context.Context, urls []string) []RepoReport {
	reports := make([]RepoReport, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Analyzer.MaxConcurrentRepos)

	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			reports[i] = a.AnalyzeRepo(gctx, url)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

// AnalyzeRepo runs the full pipeline for one repository
func (a *Analyzer) AnalyzeRepo(ctx context.Context, url string) RepoReport {
	return a.AnalyzeRepoWith(ctx, url, a.mappings)
}

// AnalyzeRepoWith runs the pipeline with an explicit mapping source, so
// callers backed by a database can supply a fresh snapshot per scan.
func (a *Analyzer) AnalyzeRepoWith(ctx context.Context, url string, mappings MappingSource) RepoReport {
	report := RepoReport{
		URL:       url,
		Name:      gitrepo.RepoName(url),
		StartedAt: time.Now().UTC(),
	}
	log := a.logger.With(zap.String("repo", report.Name))

	path, err := a.cloner.Clone(ctx, url)
	if err != nil {
		report.Err = err
		report.FinishedAt = time.Now().UTC()
		return report
	}
	if !a.keepWorkDir {
		defer gitrepo.Cleanup(path)
	}

	report.Ecosystems = manifest.DetectEcosystems(path)
	report.License = manifest.IdentifyLicense(path)
	report.Description = manifest.ExtractDescription(path)

	declared := manifest.Parse(path, report.Ecosystems)
	report.Dependencies = a.resolveAll(ctx, declared, mappings, log)
	report.Infra = iac.Scan(path)
	report.FinishedAt = time.Now().UTC()

	log.Info("repository analyzed",
		zap.Int("dependencies", len(report.Dependencies)),
		zap.Int("resources", len(report.Infra.Resources)))

	return report
}

// resolveAll resolves declared dependencies against the mapping and the
// registries, honoring the per-ecosystem lookup caps.
func (a *Analyzer) resolveAll(ctx context.Context, declared []manifest.Declared, mappings MappingSource, log *zap.Logger) []Dependency {
	lookups := map[domain.Ecosystem]int{}
	out := make([]Dependency, 0, len(declared))

	for _, d := range declared {
		dep := Dependency{
			Name:      d.Name,
			Version:   d.Version,
			Ecosystem: d.Ecosystem,
		}

		if m, ok := mappings.Lookup(d.Ecosystem, d.Name); ok {
			dep.License = MappedLicensePrefix + m.License
			dep.URL = m.URL
			dep.Source = domain.SourceMapping
			if m.Version != "" {
				dep.Version = m.Version
			}
			out = append(out, dep)
			continue
		}

		if lookups[d.Ecosystem] >= a.cfg.Registry.Cap(string(d.Ecosystem)) {
			dep.License = LicenseUnknown
			dep.Source = domain.SourceUnresolved
			out = append(out, dep)
			continue
		}
		lookups[d.Ecosystem]++

		info, err := a.registry.Lookup(ctx, d.Ecosystem, d.Name)
		if err != nil {
			log.Warn("registry lookup failed",
				zap.String("package", d.Name),
				zap.String("ecosystem", string(d.Ecosystem)),
				zap.Error(err))
			dep.License = LicenseLookupFailed
			dep.Source = domain.SourceUnresolved
			out = append(out, dep)
			continue
		}

		dep.License = info.License
		dep.URL = info.URL
		dep.Source = domain.SourceRegistry
		out = append(out, dep)
	}

	return out
}

// MissingMappings returns the dependencies across all reports that still
// lack a usable license or URL, deduplicated by ecosystem and name.
func MissingMappings(reports []RepoReport) []Dependency {
	seen := map[string]bool{}
	var out []Dependency
	for _, r := range reports {
		for _, d := range r.Dependencies {
			if !d.Unresolved() {
				continue
			}
			key := string(d.Ecosystem) + ":" + d.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, d)
		}
	}
	return out
}
