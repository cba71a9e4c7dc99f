package manifest

import (
	"encoding/json"
	"io/fs"
	"os"
)

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// parseJavaScript collects dependencies and devDependencies from every
// package.json in the tree.
func parseJavaScript(root string) map[string]string {
	deps := map[string]string{}

	walkFiles(root, func(path string, d fs.DirEntry) {
		if d.Name() != "package.json" {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return
		}
		var pkg packageJSON
		if err := json.Unmarshal(data, &pkg); err != nil {
			return
		}
		for name, version := range pkg.Dependencies {
			deps[name] = version
		}
		for name, version := range pkg.DevDependencies {
			deps[name] = version
		}
	})

	return deps
}
