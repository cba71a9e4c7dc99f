package manifest

import (
	"encoding/xml"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

type pomProject struct {
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	// Dependencies can also appear under dependencyManagement and profiles;
	// the top-level block is what the report tracks.
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

var gradleDep = regexp.MustCompile(`(?:implementation|compile|api)\s*['"]([^'"]+)['"]`)

// parseJava collects dependencies from pom.xml and build.gradle files.
// Maven coordinates are reported as "group:artifact".
func parseJava(root string) map[string]string {
	deps := map[string]string{}

	walkFiles(root, func(path string, d fs.DirEntry) {
		switch d.Name() {
		case "pom.xml":
			data, err := os.ReadFile(path)
			if err != nil {
				return
			}
			var project pomProject
			if err := xml.Unmarshal(data, &project); err != nil {
				return
			}
			for _, dep := range project.Dependencies {
				if dep.GroupID == "" || dep.ArtifactID == "" {
					continue
				}
				version := dep.Version
				if version == "" {
					version = "${project.version}"
				}
				deps[dep.GroupID+":"+dep.ArtifactID] = version
			}

		case "build.gradle":
			data, err := os.ReadFile(path)
			if err != nil {
				return
			}
			for _, m := range gradleDep.FindAllStringSubmatch(string(data), -1) {
				parts := strings.Split(m[1], ":")
				if len(parts) < 2 {
					continue
				}
				version := "latest"
				if len(parts) > 2 {
					version = parts[2]
				}
				deps[parts[0]+":"+parts[1]] = version
			}
		}
	})

	return deps
}
