package manifest

import (
	"io/fs"
	"os"
	"regexp"
	"strings"
)

var (
	pythonName   = regexp.MustCompile(`^([a-zA-Z0-9_.-]+)`)
	poetryBlock  = regexp.MustCompile(`(?s)\[tool\.poetry\.dependencies\]\s*([^\[]+)`)
	pep621Phrase = regexp.MustCompile(`(?s)dependencies\s*=\s*\[\s*([^\]]+)\]`)
)

// parsePython collects dependencies from requirements.txt and pyproject.toml
// files anywhere in the tree. Versions are not pinned by these formats in a
// way the analyzer needs, so every entry reports "latest".
func parsePython(root string) map[string]string {
	deps := map[string]string{}

	walkFiles(root, func(path string, d fs.DirEntry) {
		switch d.Name() {
		case "requirements.txt":
			data, err := os.ReadFile(path)
			if err != nil {
				return
			}
			for _, line := range strings.Split(string(data), "\n") {
				line = strings.TrimSpace(line)
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				if m := pythonName.FindStringSubmatch(line); m != nil {
					deps[m[1]] = "latest"
				}
			}

		case "pyproject.toml":
			data, err := os.ReadFile(path)
			if err != nil {
				return
			}
			content := string(data)
			blocks := poetryBlock.FindAllStringSubmatch(content, -1)
			if len(blocks) == 0 {
				blocks = pep621Phrase.FindAllStringSubmatch(content, -1)
			}
			for _, block := range blocks {
				for _, line := range strings.Split(block[1], "\n") {
					line = strings.Trim(strings.TrimSpace(line), `"',`)
					if line == "" || strings.HasPrefix(line, "#") {
						continue
					}
					if m := pythonName.FindStringSubmatch(line); m != nil {
						deps[m[1]] = "latest"
					}
				}
			}
		}
	})

	// The poetry block always lists the interpreter itself
	delete(deps, "python")

	return deps
}
