package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/depscan-io/depscan/internal/analyzer"
)

// WriteDependencyMarkdown renders the per-repository dependency report.
// now is injected so output stays reproducible in tests.
func WriteDependencyMarkdown(w io.Writer, reports []analyzer.RepoReport, now time.Time) error {
	var b strings.Builder

	b.WriteString("# Dependency Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.UTC().Format("2006-01-02 15:04:05 UTC"))
	b.WriteString("Licenses prefixed with `!` come from the curated mapping file, not a registry lookup.\n\n")

	for _, r := range reports {
		fmt.Fprintf(&b, "## %s\n\n", r.Name)

		if r.Err != nil {
			fmt.Fprintf(&b, "Analysis failed: %s\n\n", r.Err)
			continue
		}

		if r.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", r.Description)
		}
		fmt.Fprintf(&b, "- Repository: %s\n", r.URL)
		fmt.Fprintf(&b, "- License: %s\n", orDash(r.License))
		fmt.Fprintf(&b, "- Ecosystems: %s\n", orDash(joinEcosystems(r)))
		fmt.Fprintf(&b, "- Dependencies: %d\n\n", len(r.Dependencies))

		if len(r.Dependencies) == 0 {
			continue
		}

		b.WriteString("| Package | Ecosystem | Version | License | URL |\n")
		b.WriteString("|---------|-----------|---------|---------|-----|\n")
		for _, d := range r.Dependencies {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				escapeCell(d.Name), d.Ecosystem, escapeCell(d.Version),
				escapeCell(d.License), escapeCell(d.URL))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func joinEcosystems(r analyzer.RepoReport) string {
	parts := make([]string, 0, len(r.Ecosystems))
	for _, e := range r.Ecosystems {
		parts = append(parts, string(e))
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
