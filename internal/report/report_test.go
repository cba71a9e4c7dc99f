package report_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscan-io/depscan/internal/analyzer"
	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/iac"
	"github.com/depscan-io/depscan/internal/report"
)

var reportTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleReports() []analyzer.RepoReport {
	return []analyzer.RepoReport{
		{
			URL:         "https://github.com/org/svc",
			Name:        "svc",
			License:     "MIT",
			Description: "Scans things.",
			Ecosystems:  []domain.Ecosystem{domain.EcosystemPython},
			Dependencies: []analyzer.Dependency{
				{Name: "requests", Version: "latest", Ecosystem: domain.EcosystemPython, License: "Apache-2.0", URL: "https://requests.dev", Source: domain.SourceRegistry},
				{Name: "internal-lib", Version: "latest", Ecosystem: domain.EcosystemPython, License: "!Proprietary", URL: "https://wiki.internal/lib", Source: domain.SourceMapping},
				{Name: "ghost", Version: "latest", Ecosystem: domain.EcosystemPython, License: analyzer.LicenseLookupFailed, Source: domain.SourceUnresolved},
			},
			Infra: iac.Result{
				Resources: []iac.Resource{
					{Name: "scan-db", Type: "az cosmosdb", Language: domain.ResourceLanguageShell, SourceFile: "deploy.sh"},
				},
				Workflows: []iac.Workflow{
					{Name: "Deploy", Path: ".github/workflows/deploy.yml", Triggers: "push", JobNames: []string{"build", "deploy"}},
				},
				Interactions: []iac.Interaction{
					{Service: iac.ServiceCosmosDB, Name: "scan-db", Type: "IaC Resource", Language: "Shell", Details: "az cosmosdb"},
				},
			},
		},
		{
			URL:  "https://github.com/org/broken",
			Name: "broken",
			Err:  errors.New("clone failed"),
		},
	}
}

func TestWriteDependencyCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteDependencyCSV(&buf, sampleReports()))

	expected := "repository,ecosystem,package,version,license,url\n" +
		"svc,python,requests,latest,Apache-2.0,https://requests.dev\n" +
		"svc,python,internal-lib,latest,!Proprietary,https://wiki.internal/lib\n" +
		"svc,python,ghost,latest,Lookup Failed,\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteMissingMappingCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteMissingMappingCSV(&buf, sampleReports()))

	expected := "ecosystem,package,version,license,url\n" +
		"python,ghost,latest,,\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteDependencyMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteDependencyMarkdown(&buf, sampleReports(), reportTime))
	out := buf.String()

	assert.Contains(t, out, "# Dependency Report")
	assert.Contains(t, out, "Generated: 2024-06-01 12:00:00 UTC")
	assert.Contains(t, out, "## svc")
	assert.Contains(t, out, "Scans things.")
	assert.Contains(t, out, "- License: MIT")
	assert.Contains(t, out, "- Dependencies: 3")
	assert.Contains(t, out, "| requests | python | latest | Apache-2.0 | https://requests.dev |")
	assert.Contains(t, out, "| internal-lib | python | latest | !Proprietary |")
	assert.Contains(t, out, "## broken")
	assert.Contains(t, out, "Analysis failed: clone failed")
}

func TestWriteDependencyMarkdown_EscapesPipes(t *testing.T) {
	reports := []analyzer.RepoReport{{
		Name: "svc",
		Dependencies: []analyzer.Dependency{
			{Name: "weird|pkg", Ecosystem: domain.EcosystemPython, License: "MIT"},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, report.WriteDependencyMarkdown(&buf, reports, reportTime))
	assert.Contains(t, buf.String(), `weird\|pkg`)
}

func TestWriteInfraMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteInfraMarkdown(&buf, sampleReports(), "", reportTime))
	out := buf.String()

	assert.Contains(t, out, "# Infrastructure Report")
	assert.Contains(t, out, "## Service Usage")
	assert.Contains(t, out, "### Cosmos DB")
	assert.Contains(t, out, "| svc | scan-db | IaC Resource | Shell | az cosmosdb |")
	assert.Contains(t, out, "## Resource Count by Type")
	assert.Contains(t, out, "| az cosmosdb | 1 |")
	assert.Contains(t, out, "### Resources")
	assert.Contains(t, out, "| scan-db | az cosmosdb | Shell | - | deploy.sh |")
	assert.Contains(t, out, "### Service Interactions")
	assert.Contains(t, out, "| Cosmos DB | IaC Resource | Shell | az cosmosdb |")
	assert.Contains(t, out, "### Workflows")
	assert.Contains(t, out, "| Deploy | push | build, deploy | .github/workflows/deploy.yml |")
	assert.NotContains(t, out, "## broken", "failed repositories are omitted")
}

func TestWriteInfraMarkdown_ResourceCountOrdering(t *testing.T) {
	reports := []analyzer.RepoReport{{
		Name: "svc",
		Infra: iac.Result{
			Resources: []iac.Resource{
				{Name: "a", Type: "az storage account", Language: domain.ResourceLanguageShell},
				{Name: "b", Type: "az cosmosdb", Language: domain.ResourceLanguageShell},
				{Name: "c", Type: "az cosmosdb", Language: domain.ResourceLanguageShell},
			},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, report.WriteInfraMarkdown(&buf, reports, "", reportTime))
	out := buf.String()

	cosmos := strings.Index(out, "| az cosmosdb | 2 |")
	storage := strings.Index(out, "| az storage account | 1 |")
	require.GreaterOrEqual(t, cosmos, 0)
	require.GreaterOrEqual(t, storage, 0)
	assert.Less(t, cosmos, storage, "most frequent type listed first")
}

func TestWriteInfraMarkdown_Preamble(t *testing.T) {
	preamble := filepath.Join(t.TempDir(), "preamble.md")
	require.NoError(t, os.WriteFile(preamble, []byte("Licensing notes apply.\n"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, report.WriteInfraMarkdown(&buf, sampleReports(), preamble, reportTime))
	assert.Contains(t, buf.String(), "Licensing notes apply.")
}
