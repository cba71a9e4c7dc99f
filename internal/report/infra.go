package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/depscan-io/depscan/internal/analyzer"
	"github.com/depscan-io/depscan/internal/iac"
)

// WriteInfraMarkdown renders the infrastructure report: an optional
// hand-written preamble, the tracked service rollups across all
// repositories, then per-repository resource and workflow tables.
func WriteInfraMarkdown(w io.Writer, reports []analyzer.RepoReport, preamblePath string, now time.Time) error {
	var b strings.Builder

	b.WriteString("# Infrastructure Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.UTC().Format("2006-01-02 15:04:05 UTC"))

	if preamblePath != "" {
		if preamble, err := os.ReadFile(preamblePath); err == nil {
			b.Write(preamble)
			if !strings.HasSuffix(string(preamble), "\n") {
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	writeServiceRollup(&b, reports)
	writeResourceCountRollup(&b, reports)

	for _, r := range reports {
		if r.Err != nil {
			continue
		}
		if len(r.Infra.Resources) == 0 && len(r.Infra.Workflows) == 0 && len(r.Infra.Interactions) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s\n\n", r.Name)
		writeResourceTable(&b, r.Infra.Resources)
		writeInteractionTable(&b, r.Infra.Interactions)
		writeWorkflowTable(&b, r.Infra.Workflows)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeServiceRollup aggregates interactions with the tracked services
// across every repository.
func writeServiceRollup(b *strings.Builder, reports []analyzer.RepoReport) {
	type entry struct {
		repo string
		i    iac.Interaction
	}
	byService := map[string][]entry{}
	for _, r := range reports {
		for _, i := range r.Infra.Interactions {
			byService[i.Service] = append(byService[i.Service], entry{repo: r.Name, i: i})
		}
	}
	if len(byService) == 0 {
		return
	}

	b.WriteString("## Service Usage\n\n")
	for _, service := range []string{iac.ServiceCosmosDB, iac.ServiceBlobStorage} {
		entries := byService[service]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", service)
		b.WriteString("| Repository | Name | Type | Language | Details |\n")
		b.WriteString("|------------|------|------|----------|---------|\n")
		for _, e := range entries {
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
				e.repo, escapeCell(e.i.Name), e.i.Type, e.i.Language, escapeCell(e.i.Details))
		}
		b.WriteString("\n")
	}
}

// writeResourceCountRollup counts resource declarations by type across every
// repository, most frequent first.
func writeResourceCountRollup(b *strings.Builder, reports []analyzer.RepoReport) {
	counts := map[string]int{}
	for _, r := range reports {
		for _, res := range r.Infra.Resources {
			counts[res.Type]++
		}
	}
	if len(counts) == 0 {
		return
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})

	b.WriteString("## Resource Count by Type\n\n")
	b.WriteString("| Resource Type | Count |\n")
	b.WriteString("|---------------|-------|\n")
	for _, t := range types {
		fmt.Fprintf(b, "| %s | %d |\n", escapeCell(t), counts[t])
	}
	b.WriteString("\n")
}

func writeResourceTable(b *strings.Builder, resources []iac.Resource) {
	if len(resources) == 0 {
		return
	}
	b.WriteString("### Resources\n\n")
	b.WriteString("| Name | Type | Language | Size | Source |\n")
	b.WriteString("|------|------|----------|------|--------|\n")
	for _, r := range resources {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			escapeCell(r.Name), escapeCell(r.Type), r.Language, orDash(r.Size), escapeCell(r.SourceFile))
	}
	b.WriteString("\n")
}

func writeInteractionTable(b *strings.Builder, interactions []iac.Interaction) {
	if len(interactions) == 0 {
		return
	}
	ordered := make([]iac.Interaction, len(interactions))
	copy(ordered, interactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Service != ordered[j].Service {
			return ordered[i].Service < ordered[j].Service
		}
		return ordered[i].Type < ordered[j].Type
	})

	b.WriteString("### Service Interactions\n\n")
	b.WriteString("| Service | Type | Language | Details |\n")
	b.WriteString("|---------|------|----------|---------|\n")
	for _, in := range ordered {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			in.Service, in.Type, in.Language, escapeCell(in.Details))
	}
	b.WriteString("\n")
}

func writeWorkflowTable(b *strings.Builder, workflows []iac.Workflow) {
	if len(workflows) == 0 {
		return
	}
	b.WriteString("### Workflows\n\n")
	b.WriteString("| Name | Triggers | Jobs | Path |\n")
	b.WriteString("|------|----------|------|------|\n")
	for _, wf := range workflows {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			escapeCell(wf.Name), escapeCell(wf.Triggers),
			escapeCell(strings.Join(wf.JobNames, ", ")), wf.Path)
	}
	b.WriteString("\n")
}
