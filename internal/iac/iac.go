// Package iac scans a checked-out repository for infrastructure
// definitions: Pulumi-style resources in Python and TypeScript, az CLI
// calls in shell scripts and GitHub Actions workflows, and Azure SDK usage
// in project manifests.
package iac

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/depscan-io/depscan/internal/domain"
)

// providerKeywords mark infrastructure provider namespaces in source code
var providerKeywords = []string{
	"azure", "aws", "gcp", "kubernetes", "cloudflare", "digitalocean", "azuread", "azure-native",
}

var (
	cosmosKeywords = []string{"cosmosdb", "documentdb"}
	blobKeywords   = []string{"storage.account", "storage.container", "storage.blob", "storage account", "storage container", "storage blob"}
)

// Tracked service names used in interaction rollups
const (
	ServiceCosmosDB    = "Cosmos DB"
	ServiceBlobStorage = "Blob Storage"
)

// Resource is an infrastructure resource declaration
type Resource struct {
	Name       string
	Type       string
	Language   domain.ResourceLanguage
	SourceFile string
	Size       string
}

// Workflow summarizes a GitHub Actions workflow file
type Workflow struct {
	Name     string
	Path     string
	Triggers string
	JobNames []string
}

// Interaction records detected usage of a tracked cloud service
type Interaction struct {
	Service  string
	Name     string
	Type     string
	Language string
	Details  string
}

// Result holds everything the infrastructure scan found in one repository
type Result struct {
	Resources    []Resource
	Workflows    []Workflow
	Interactions []Interaction
}

var skipDirs = map[string]bool{
	"node_modules": true,
	".venv":        true,
	".git":         true,
	"target":       true,
	"dist":         true,
	"build":        true,
}

// Scan analyzes the repository at root and returns all infrastructure findings
func Scan(root string) Result {
	var res Result

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		switch {
		case strings.HasSuffix(path, ".py"):
			res.Resources = append(res.Resources, scanPythonFile(path, rel)...)
		case strings.HasSuffix(path, ".ts"):
			res.Resources = append(res.Resources, scanTypeScriptFile(path, rel)...)
		case strings.HasSuffix(path, ".sh"):
			data, readErr := os.ReadFile(path)
			if readErr == nil {
				res.Resources = append(res.Resources, scanShellContent(string(data), rel, domain.ResourceLanguageShell)...)
			}
		case (strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml")) &&
			strings.Contains(rel, ".github/workflows"):
			wf, cliResources := scanWorkflowFile(path, rel)
			if wf != nil {
				res.Workflows = append(res.Workflows, *wf)
			}
			res.Resources = append(res.Resources, cliResources...)
		case strings.HasSuffix(path, ".csproj") || d.Name() == "package.json":
			res.Interactions = append(res.Interactions, scanSDKUsage(path, rel, d.Name())...)
		}
		return nil
	})

	res.Resources = dedupeResources(res.Resources)
	res.Interactions = append(res.Interactions, rollupResourceInteractions(res.Resources)...)

	sort.Slice(res.Workflows, func(i, j int) bool { return res.Workflows[i].Name < res.Workflows[j].Name })
	sort.Slice(res.Interactions, func(i, j int) bool {
		a, b := res.Interactions[i], res.Interactions[j]
		if a.Service != b.Service {
			return a.Service < b.Service
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Name < b.Name
	})

	return res
}

// dedupeResources removes exact duplicates and sorts for stable output
func dedupeResources(in []Resource) []Resource {
	seen := map[Resource]bool{}
	out := make([]Resource, 0, len(in))
	for _, r := range in {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Language != b.Language {
			return a.Language < b.Language
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Name < b.Name
	})
	return out
}

// rollupResourceInteractions maps declared resources onto tracked services
// by type keyword.
func rollupResourceInteractions(resources []Resource) []Interaction {
	var out []Interaction
	for _, r := range resources {
		typeLower := strings.ToLower(r.Type)
		if containsAny(typeLower, cosmosKeywords) {
			out = append(out, Interaction{
				Service:  ServiceCosmosDB,
				Name:     r.Name,
				Type:     "IaC Resource",
				Language: string(r.Language),
				Details:  r.Type,
			})
		}
		if containsAny(typeLower, blobKeywords) {
			out = append(out, Interaction{
				Service:  ServiceBlobStorage,
				Name:     r.Name,
				Type:     "IaC Resource",
				Language: string(r.Language),
				Details:  r.Type,
			})
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
