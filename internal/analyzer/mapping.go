package analyzer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/depscan-io/depscan/internal/domain"
)

// Mapping is one curated license entry for a package. A non-empty Version
// replaces the declared version in reports.
type Mapping struct {
	Ecosystem domain.Ecosystem
	Name      string
	Version   string
	License   string
	URL       string
}

// MappingSource answers curated license lookups. Lookups are keyed by
// ecosystem and case-insensitive package name.
type MappingSource interface {
	Lookup(ecosystem domain.Ecosystem, name string) (Mapping, bool)
}

type emptyMappingSource struct{}

func (emptyMappingSource) Lookup(domain.Ecosystem, string) (Mapping, bool) {
	return Mapping{}, false
}

// StaticMappings is an in-memory MappingSource
type StaticMappings struct {
	entries map[string]Mapping
}

func NewStaticMappings(mappings []Mapping) *StaticMappings {
	s := &StaticMappings{entries: make(map[string]Mapping, len(mappings))}
	for _, m := range mappings {
		s.entries[mappingKey(m.Ecosystem, m.Name)] = m
	}
	return s
}

func (s *StaticMappings) Lookup(ecosystem domain.Ecosystem, name string) (Mapping, bool) {
	m, ok := s.entries[mappingKey(ecosystem, name)]
	return m, ok
}

func (s *StaticMappings) Len() int { return len(s.entries) }

func mappingKey(ecosystem domain.Ecosystem, name string) string {
	return string(ecosystem) + ":" + strings.ToLower(name)
}

// LoadMappingCSV reads a curated mapping file. A header row and blank
// lines are skipped, as are rows with an unknown ecosystem. A missing file
// yields an empty source so a fresh checkout works without one.
func LoadMappingCSV(path string) (*StaticMappings, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewStaticMappings(nil), nil
		}
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()

	mappings, err := ParseMappingCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}
	return NewStaticMappings(mappings), nil
}

// ParseMappingCSV parses mapping rows from r. Two layouts are accepted,
// decided per row by which column holds a known ecosystem:
//
//	ecosystem,package,version,license,url                          (native; version optional)
//	dependency_name,dependency_type,version,license,documentation_url  (legacy mapping files)
func ParseMappingCSV(r io.Reader) ([]Mapping, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var out []Mapping
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 3 {
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}

		var m Mapping
		switch {
		case domain.IsValidEcosystem(strings.ToLower(record[0])):
			m.Ecosystem = domain.Ecosystem(strings.ToLower(record[0]))
			m.Name = record[1]
			if len(record) >= 5 {
				m.Version, m.License = record[2], record[3]
				m.URL = record[4]
			} else {
				m.License = record[2]
				if len(record) > 3 {
					m.URL = record[3]
				}
			}
		case len(record) >= 4 && domain.IsValidEcosystem(strings.ToLower(record[1])):
			m.Ecosystem = domain.Ecosystem(strings.ToLower(record[1]))
			m.Name = record[0]
			m.Version, m.License = record[2], record[3]
			if len(record) > 4 {
				m.URL = record[4]
			}
		default:
			// Header row or unknown ecosystem
			continue
		}

		if m.Name == "" {
			continue
		}
		out = append(out, m)
	}

	return out, nil
}
