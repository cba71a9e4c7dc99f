package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/depscan-io/depscan/internal/analyzer"
)

// WriteMissingMappingCSV writes a fill-in template for every dependency
// that could not be resolved to a license and URL. The license and url
// columns are left blank so the file can be completed by hand and fed back
// in as the curated mapping.
func WriteMissingMappingCSV(w io.Writer, reports []analyzer.RepoReport) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"ecosystem", "package", "version", "license", "url"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, d := range analyzer.MissingMappings(reports) {
		if err := writer.Write([]string{string(d.Ecosystem), d.Name, d.Version, "", ""}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
