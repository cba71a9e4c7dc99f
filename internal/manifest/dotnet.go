package manifest

import (
	"io/fs"
	"os"
	"regexp"
	"strings"
)

var packageReference = regexp.MustCompile(`<PackageReference\s+Include="([^"]+)"\s+Version="([^"]+)"`)

// parseDotNet collects PackageReference entries from every .csproj file.
func parseDotNet(root string) map[string]string {
	deps := map[string]string{}

	walkFiles(root, func(path string, d fs.DirEntry) {
		if !strings.HasSuffix(d.Name(), ".csproj") {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return
		}
		for _, m := range packageReference.FindAllStringSubmatch(string(data), -1) {
			deps[m[1]] = m[2]
		}
	})

	return deps
}
