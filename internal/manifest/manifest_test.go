package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/manifest"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDetectEcosystems(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "requirements.txt", "requests==2.31.0\n")
	writeFile(t, root, "web/package.json", `{"name": "web"}`)
	writeFile(t, root, "api/Api.csproj", `<Project Sdk="Microsoft.NET.Sdk"></Project>`)

	ecosystems := manifest.DetectEcosystems(root)

	assert.Equal(t, []domain.Ecosystem{
		domain.EcosystemPython,
		domain.EcosystemJavaScript,
		domain.EcosystemDotNet,
	}, ecosystems)
}

func TestDetectEcosystems_SkipsVendorDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/lodash/package.json", `{"name": "lodash"}`)
	writeFile(t, root, ".venv/lib/setup.py", "")

	assert.Empty(t, manifest.DetectEcosystems(root))
}

func TestIdentifyLicense(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"mit", "MIT License\n\nPermission is hereby granted...", "MIT"},
		{"apache", "Apache License\nVersion 2.0, January 2004", "Apache-2.0"},
		{"gpl", "GNU GENERAL PUBLIC LICENSE\nVersion 3", "GPL"},
		{"mozilla", "Mozilla Public License Version 2.0", "MPL-2.0"},
		{"custom", "All rights reserved. Internal use only.", "Custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, "LICENSE", tt.content)
			assert.Equal(t, tt.expected, manifest.IdentifyLicense(root))
		})
	}

	t.Run("no license file", func(t *testing.T) {
		assert.Equal(t, "Unknown", manifest.IdentifyLicense(t.TempDir()))
	})
}

func TestExtractDescription(t *testing.T) {
	t.Run("first paragraph after heading", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "README.md", "# My Project\n\nA service that does **useful** things.\n\nMore details below.\n")

		assert.Equal(t, "A service that does useful things.", manifest.ExtractDescription(root))
	})

	t.Run("no readme", func(t *testing.T) {
		assert.Equal(t, "No description available.", manifest.ExtractDescription(t.TempDir()))
	})

	t.Run("long paragraph truncated", func(t *testing.T) {
		root := t.TempDir()
		long := ""
		for i := 0; i < 40; i++ {
			long += "0123456789"
		}
		writeFile(t, root, "README.md", long)

		desc := manifest.ExtractDescription(root)
		assert.Len(t, desc, 303)
		assert.True(t, desc[len(desc)-3:] == "...")
	})
}

func TestParse_Python(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "requirements.txt", "requests==2.31.0\nflask>=2.0\n# a comment\n\npydantic\n")

	declared := manifest.Parse(root, []domain.Ecosystem{domain.EcosystemPython})

	names := map[string]bool{}
	for _, d := range declared {
		assert.Equal(t, domain.EcosystemPython, d.Ecosystem)
		assert.Equal(t, "latest", d.Version)
		names[d.Name] = true
	}
	assert.Equal(t, map[string]bool{"requests": true, "flask": true, "pydantic": true}, names)
}

func TestParse_PyprojectPoetry(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pyproject.toml", `[tool.poetry]
name = "svc"

[tool.poetry.dependencies]
python = "^3.11"
httpx = "^0.27"
sqlalchemy = "^2.0"

[tool.poetry.group.dev.dependencies]
`)

	declared := manifest.Parse(root, []domain.Ecosystem{domain.EcosystemPython})

	names := map[string]bool{}
	for _, d := range declared {
		names[d.Name] = true
	}
	assert.False(t, names["python"], "the interpreter itself is not a dependency")
	assert.True(t, names["httpx"])
	assert.True(t, names["sqlalchemy"])
}

func TestParse_JavaScript(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{
  "name": "web",
  "dependencies": {"react": "^18.2.0"},
  "devDependencies": {"typescript": "^5.0.0"}
}`)

	declared := manifest.Parse(root, []domain.Ecosystem{domain.EcosystemJavaScript})

	byName := map[string]string{}
	for _, d := range declared {
		byName[d.Name] = d.Version
	}
	assert.Equal(t, "^18.2.0", byName["react"])
	assert.Equal(t, "^5.0.0", byName["typescript"])
}

func TestParse_OrderIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "requirements.txt",
		"zlib\nrequests\nflask\npydantic\nhttpx\naiohttp\nclick\nuvicorn\nfastapi\nsqlalchemy\nalembic\ncelery\n")
	writeFile(t, root, "package.json", `{"dependencies": {"react": "^18.0.0", "axios": "^1.6.0"}}`)

	first := manifest.Parse(root, []domain.Ecosystem{domain.EcosystemPython, domain.EcosystemJavaScript})
	require.NotEmpty(t, first)

	// Sorted by (ecosystem, lowercased name)
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		if prev.Ecosystem == cur.Ecosystem {
			assert.Less(t, strings.ToLower(prev.Name), strings.ToLower(cur.Name))
		} else {
			assert.Less(t, string(prev.Ecosystem), string(cur.Ecosystem))
		}
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, manifest.Parse(root, []domain.Ecosystem{domain.EcosystemPython, domain.EcosystemJavaScript}))
	}
}

func TestParse_DeduplicatesAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "requirements.txt", "requests\n")
	writeFile(t, root, "svc/requirements.txt", "requests==2.31.0\n")

	declared := manifest.Parse(root, []domain.Ecosystem{domain.EcosystemPython})
	assert.Len(t, declared, 1)
}
