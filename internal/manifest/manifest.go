// Package manifest inspects a checked-out repository: it detects which
// package ecosystems are present, parses their dependency manifests and
// extracts repository-level metadata (license, description).
package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/depscan-io/depscan/internal/domain"
)

// Declared is a dependency declaration found in a manifest file,
// before any registry lookup.
type Declared struct {
	Name      string
	Version   string
	Ecosystem domain.Ecosystem
}

// Key identifies a declaration for deduplication
func (d Declared) Key() string {
	return string(d.Ecosystem) + ":" + strings.ToLower(d.Name)
}

// skipDirs are vendor and build output directories excluded from every walk
var skipDirs = map[string]bool{
	"node_modules": true,
	".venv":        true,
	".git":         true,
	"target":       true,
	"dist":         true,
	"build":        true,
}

// walkFiles visits every regular file under root, skipping vendor directories.
// Walk errors on individual entries are ignored so one unreadable path does
// not abort the scan.
func walkFiles(root string, fn func(path string, d fs.DirEntry)) {
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
		fn(path, d)
		return nil
	})
}

// DetectEcosystems determines which package ecosystems a repository uses,
// based on marker files.
func DetectEcosystems(root string) []domain.Ecosystem {
	found := map[domain.Ecosystem]bool{}
	walkFiles(root, func(path string, d fs.DirEntry) {
		name := d.Name()
		switch {
		case name == "requirements.txt" || strings.HasSuffix(name, ".py"):
			found[domain.EcosystemPython] = true
		case name == "package.json":
			found[domain.EcosystemJavaScript] = true
		case name == "pom.xml" || name == "build.gradle":
			found[domain.EcosystemJava] = true
		case strings.HasSuffix(name, ".csproj"):
			found[domain.EcosystemDotNet] = true
		}
	})

	var list []domain.Ecosystem
	for _, e := range domain.AllEcosystems {
		if found[e] {
			list = append(list, e)
		}
	}
	return list
}

// licenseFilenames are checked in order when identifying the repository license
var licenseFilenames = []string{"LICENSE", "LICENSE.md", "LICENSE.txt", "COPYING"}

// IdentifyLicense reads common license files and classifies the content by
// keyword. A license file with unrecognized content reports "Custom";
// no license file at all reports "Unknown".
func IdentifyLicense(root string) string {
	var result string
	walkFiles(root, func(path string, d fs.DirEntry) {
		if result != "" {
			return
		}
		for _, name := range licenseFilenames {
			if d.Name() != name {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			content := strings.ToLower(string(data))
			switch {
			case strings.Contains(content, "mit license"):
				result = "MIT"
			case strings.Contains(content, "apache license"):
				result = "Apache-2.0"
			case strings.Contains(content, "gnu general public license"):
				result = "GPL"
			case strings.Contains(content, "mozilla public license"):
				result = "MPL-2.0"
			default:
				result = "Custom"
			}
			return
		}
	})
	if result == "" {
		return "Unknown"
	}
	return result
}

const descriptionLimit = 300

var (
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
	markdownInline = regexp.MustCompile(`(\*\*|\*|__|_|` + "`" + `|\[.*\]\(.*\))`)
)

// ExtractDescription returns the first non-heading paragraph of the README,
// with inline markdown stripped and truncated to 300 characters.
func ExtractDescription(root string) string {
	for _, name := range []string{"README.md", "readme.md"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		for _, p := range paragraphSplit.Split(string(data), -1) {
			p = strings.TrimSpace(p)
			if p == "" || strings.HasPrefix(p, "#") {
				continue
			}
			p = markdownInline.ReplaceAllString(p, "")
			if utf8.RuneCountInString(p) > descriptionLimit {
				runes := []rune(p)
				return string(runes[:descriptionLimit]) + "..."
			}
			return p
		}
	}
	return "No description available."
}

// Parse collects dependency declarations for the given ecosystems,
// deduplicated by (ecosystem, name) and sorted by (ecosystem, lowercased
// name) so every run reports dependencies in the same order. Later
// declarations of the same dependency win, matching manifest precedence
// within a repository.
func Parse(root string, ecosystems []domain.Ecosystem) []Declared {
	byKey := map[string]Declared{}

	add := func(eco domain.Ecosystem, deps map[string]string) {
		for name, version := range deps {
			d := Declared{Name: name, Version: version, Ecosystem: eco}
			byKey[d.Key()] = d
		}
	}

	for _, eco := range ecosystems {
		switch eco {
		case domain.EcosystemPython:
			add(eco, parsePython(root))
		case domain.EcosystemJavaScript:
			add(eco, parseJavaScript(root))
		case domain.EcosystemJava:
			add(eco, parseJava(root))
		case domain.EcosystemDotNet:
			add(eco, parseDotNet(root))
		}
	}

	out := make([]Declared, 0, len(byKey))
	for _, d := range byKey {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ecosystem != out[j].Ecosystem {
			return out[i].Ecosystem < out[j].Ecosystem
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
