// Package report renders analysis results into the CSV and markdown
// artifacts the service publishes.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/depscan-io/depscan/internal/analyzer"
)

// WriteDependencyCSV writes one row per dependency across all reports
func WriteDependencyCSV(w io.Writer, reports []analyzer.RepoReport) error {
	writer := csv.NewWriter(w)

	header := []string{"repository", "ecosystem", "package", "version", "license", "url"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range reports {
		for _, d := range r.Dependencies {
			row := []string{r.Name, string(d.Ecosystem), d.Name, d.Version, d.License, d.URL}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
