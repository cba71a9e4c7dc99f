package iac

import (
	"os"
	"regexp"
	"strings"

	"github.com/depscan-io/depscan/internal/domain"
)

var (
	// name = azure.storage.Account("my-account", ...)
	pythonResourcePattern = regexp.MustCompile(`(?m)=\s*([\w.]+)\(\s*["']([^"']+)["']`)
	pythonSizePattern     = regexp.MustCompile(`sku\s*=\s*["']([^"']+)["']`)

	// new azure.storage.Account("my-account", { ... })
	typescriptResourcePattern = regexp.MustCompile(`new\s+([\w.]+)\s*\(\s*["']([^"']+)["']`)
	typescriptSizePattern     = regexp.MustCompile(`sku\s*:\s*["']([^"']+)["']`)

	// az <service> create --name <value>, az storage blob upload -c <value>
	shellAzPattern = regexp.MustCompile(
		`(?i)az\s+([a-z][a-z \-]*?)\s+(create|blob upload)\b[^\n]*?\s(?:--name|-n|--container-name|-c)\s+['"]?([\w$@{}.\-]+)['"]?`)
)

// sizeWindow limits how far past a resource declaration the sku lookup reads
const sizeWindow = 200

func scanPythonFile(path, rel string) []Resource {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return scanResourceContent(string(data), rel, domain.ResourceLanguagePython,
		pythonResourcePattern, pythonSizePattern)
}

func scanTypeScriptFile(path, rel string) []Resource {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return scanResourceContent(string(data), rel, domain.ResourceLanguageTypeScript,
		typescriptResourcePattern, typescriptSizePattern)
}

// scanResourceContent finds constructor calls whose dotted type name contains
// a known provider keyword and records them as resources. The sku, when
// declared within a short window after the call, becomes the resource size.
func scanResourceContent(content, rel string, lang domain.ResourceLanguage, resourcePattern, sizePattern *regexp.Regexp) []Resource {
	var out []Resource
	for _, m := range resourcePattern.FindAllStringSubmatchIndex(content, -1) {
		resourceType := content[m[2]:m[3]]
		resourceName := content[m[4]:m[5]]
		if !isProviderType(resourceType) {
			continue
		}

		end := m[1] + sizeWindow
		if end > len(content) {
			end = len(content)
		}
		size := ""
		if sm := sizePattern.FindStringSubmatch(content[m[1]:end]); sm != nil {
			size = sm[1]
		}

		out = append(out, Resource{
			Name:       resourceName,
			Type:       resourceType,
			Language:   lang,
			SourceFile: rel,
			Size:       size,
		})
	}
	return out
}

// isProviderType requires a dotted name with a provider keyword so that
// plain helper calls such as configure("x") are not mistaken for resources.
func isProviderType(resourceType string) bool {
	if !strings.Contains(resourceType, ".") {
		return false
	}
	lower := strings.ToLower(resourceType)
	for _, kw := range providerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// scanShellContent finds az CLI create and blob upload commands. The same
// scanner covers shell scripts and inline scripts inside workflow steps.
func scanShellContent(content, rel string, lang domain.ResourceLanguage) []Resource {
	var out []Resource
	for _, m := range shellAzPattern.FindAllStringSubmatch(content, -1) {
		service := strings.Join(strings.Fields(m[1]), " ")
		action := strings.ToLower(m[2])
		resourceType := "az " + strings.ToLower(service)
		if action == "blob upload" {
			resourceType = "az storage blob upload"
		}
		out = append(out, Resource{
			Name:       m[3],
			Type:       resourceType,
			Language:   lang,
			SourceFile: rel,
		})
	}
	return out
}
