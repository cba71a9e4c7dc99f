package iac

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"
)

// sdkPackages maps SDK package names onto the tracked service they talk to
var sdkPackages = map[string]string{
	"microsoft.azure.cosmos": ServiceCosmosDB,
	"azure.cosmos":           ServiceCosmosDB,
	"@azure/cosmos":          ServiceCosmosDB,
	"azure.storage.blobs":    ServiceBlobStorage,
	"windowsazure.storage":   ServiceBlobStorage,
	"azure-storage-blob":     ServiceBlobStorage,
	"@azure/storage-blob":    ServiceBlobStorage,
}

var csprojPackagePattern = regexp.MustCompile(`<PackageReference\s+Include="([^"]+)"`)

// scanSDKUsage inspects a .csproj or package.json manifest for references to
// tracked Azure SDK packages and reports each as a service interaction.
func scanSDKUsage(path, rel, base string) []Interaction {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	if base == "package.json" {
		return scanPackageJSONSDK(data, rel)
	}
	return scanCsprojSDK(data, rel)
}

func scanCsprojSDK(data []byte, rel string) []Interaction {
	var out []Interaction
	for _, m := range csprojPackagePattern.FindAllStringSubmatch(string(data), -1) {
		if service, ok := sdkPackages[strings.ToLower(m[1])]; ok {
			out = append(out, Interaction{
				Service:  service,
				Name:     m[1],
				Type:     "SDK Usage",
				Language: "C#",
				Details:  rel,
			})
		}
	}
	return out
}

func scanPackageJSONSDK(data []byte, rel string) []Interaction {
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil
	}

	var out []Interaction
	for _, deps := range []map[string]string{manifest.Dependencies, manifest.DevDependencies} {
		for name := range deps {
			if service, ok := sdkPackages[strings.ToLower(name)]; ok {
				out = append(out, Interaction{
					Service:  service,
					Name:     name,
					Type:     "SDK Usage",
					Language: "JavaScript",
					Details:  rel,
				})
			}
		}
	}
	return out
}
