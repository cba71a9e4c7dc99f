package iac_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/iac"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScan_PythonResources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "infra/__main__.py", `import pulumi_azure_native as azure_native

account = azure_native.storage.StorageAccount("reports-account",
    resource_group_name=rg.name,
    sku="Standard_LRS")

db = azure_native.documentdb.DatabaseAccount("scan-db",
    resource_group_name=rg.name)

helper = configure("not-a-resource")
`)

	res := iac.Scan(root)

	require.Len(t, res.Resources, 2)
	byName := map[string]iac.Resource{}
	for _, r := range res.Resources {
		byName[r.Name] = r
	}

	account := byName["reports-account"]
	assert.Equal(t, "azure_native.storage.StorageAccount", account.Type)
	assert.Equal(t, domain.ResourceLanguagePython, account.Language)
	assert.Equal(t, "infra/__main__.py", account.SourceFile)
	assert.Equal(t, "Standard_LRS", account.Size)

	db := byName["scan-db"]
	assert.Equal(t, "azure_native.documentdb.DatabaseAccount", db.Type)
	assert.Empty(t, db.Size)
}

func TestScan_TypeScriptResources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.ts", `import * as azure from "@pulumi/azure";

const container = new azure.storage.Container("scan-results", {
    storageAccountName: account.name,
});

const widget = new LocalWidget("ignored");
`)

	res := iac.Scan(root)

	require.Len(t, res.Resources, 1)
	assert.Equal(t, "scan-results", res.Resources[0].Name)
	assert.Equal(t, "azure.storage.Container", res.Resources[0].Type)
	assert.Equal(t, domain.ResourceLanguageTypeScript, res.Resources[0].Language)
}

func TestScan_ShellAzCommands(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "deploy.sh", `#!/bin/bash
az group create --name my-rg --location norwayeast
az cosmosdb create --name scan-db --resource-group my-rg
az storage blob upload --account-name acct --container-name reports --file out.csv
`)

	res := iac.Scan(root)

	require.Len(t, res.Resources, 3)
	types := map[string]string{}
	for _, r := range res.Resources {
		types[r.Name] = r.Type
		assert.Equal(t, domain.ResourceLanguageShell, r.Language)
	}
	assert.Equal(t, "az group", types["my-rg"])
	assert.Equal(t, "az cosmosdb", types["scan-db"])
	assert.Equal(t, "az storage blob upload", types["reports"])
}

func TestScan_Workflows(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".github/workflows/deploy.yml", `name: Deploy
on:
  push:
    branches: [main]
  workflow_dispatch:
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - run: echo building
  deploy:
    runs-on: ubuntu-latest
    steps:
      - uses: azure/cli@v2
        with:
          inlineScript: |
            az storage account create --name deployacct --sku Standard_LRS
`)

	res := iac.Scan(root)

	require.Len(t, res.Workflows, 1)
	wf := res.Workflows[0]
	assert.Equal(t, "Deploy", wf.Name)
	assert.Equal(t, ".github/workflows/deploy.yml", wf.Path)
	assert.Equal(t, "push, workflow_dispatch", wf.Triggers)
	assert.Equal(t, []string{"build", "deploy"}, wf.JobNames)

	require.Len(t, res.Resources, 1)
	assert.Equal(t, "deployacct", res.Resources[0].Name)
	assert.Equal(t, "az storage account", res.Resources[0].Type)
	assert.Equal(t, domain.ResourceLanguageWorkflow, res.Resources[0].Language)
}

func TestScan_WorkflowNameFallsBackToFilename(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".github/workflows/ci.yaml", `on: [push, pull_request]
jobs:
  test:
    steps:
      - run: make test
`)

	res := iac.Scan(root)

	require.Len(t, res.Workflows, 1)
	assert.Equal(t, "ci", res.Workflows[0].Name)
	assert.Equal(t, "push, pull_request", res.Workflows[0].Triggers)
}

func TestScan_SDKUsage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Api/Api.csproj", `<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <PackageReference Include="Microsoft.Azure.Cosmos" Version="3.38.1" />
    <PackageReference Include="Azure.Storage.Blobs" Version="12.19.0" />
    <PackageReference Include="Serilog" Version="3.1.1" />
  </ItemGroup>
</Project>`)
	writeFile(t, root, "web/package.json", `{
  "dependencies": {"@azure/cosmos": "^4.0.0", "react": "^18.0.0"}
}`)

	res := iac.Scan(root)

	require.Len(t, res.Interactions, 3)
	for _, in := range res.Interactions {
		assert.Equal(t, "SDK Usage", in.Type)
	}
	assert.Equal(t, iac.ServiceBlobStorage, res.Interactions[0].Service)
	assert.Equal(t, "Azure.Storage.Blobs", res.Interactions[0].Name)
	assert.Equal(t, iac.ServiceCosmosDB, res.Interactions[1].Service)
	assert.Equal(t, iac.ServiceCosmosDB, res.Interactions[2].Service)
}

func TestScan_ResourceServiceRollup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "deploy.sh", `az cosmosdb create --name scan-db
az storage container create --name reports
`)

	res := iac.Scan(root)

	require.Len(t, res.Interactions, 2)
	assert.Equal(t, iac.ServiceBlobStorage, res.Interactions[0].Service)
	assert.Equal(t, "reports", res.Interactions[0].Name)
	assert.Equal(t, "IaC Resource", res.Interactions[0].Type)
	assert.Equal(t, iac.ServiceCosmosDB, res.Interactions[1].Service)
	assert.Equal(t, "scan-db", res.Interactions[1].Name)
}

func TestScan_DeduplicatesResources(t *testing.T) {
	root := t.TempDir()
	content := `az group create --name my-rg
az group create --name my-rg
`
	writeFile(t, root, "a.sh", content)

	res := iac.Scan(root)
	assert.Len(t, res.Resources, 1)
}
