package iac

import (
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/depscan-io/depscan/internal/domain"
)

type workflowStep struct {
	Uses string                 `yaml:"uses"`
	With map[string]interface{} `yaml:"with"`
	Run  string                 `yaml:"run"`
}

type workflowJob struct {
	Steps []workflowStep `yaml:"steps"`
}

type workflowFile struct {
	Name string                 `yaml:"name"`
	On   yaml.Node              `yaml:"on"`
	Jobs map[string]workflowJob `yaml:"jobs"`
}

// scanWorkflowFile summarizes a GitHub Actions workflow and scans its
// azure/cli inline scripts and run blocks for az commands. A file that
// fails to parse as YAML is skipped entirely.
func scanWorkflowFile(filePath, rel string) (*Workflow, []Resource) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil
	}

	var wf workflowFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, nil
	}

	name := wf.Name
	if name == "" {
		name = strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	}

	summary := &Workflow{
		Name:     name,
		Path:     rel,
		Triggers: formatTriggers(wf.On),
	}

	var resources []Resource
	for jobName, job := range wf.Jobs {
		summary.JobNames = append(summary.JobNames, jobName)
		for _, step := range job.Steps {
			for _, script := range stepScripts(step) {
				resources = append(resources, scanShellContent(script, rel, domain.ResourceLanguageWorkflow)...)
			}
		}
	}
	sort.Strings(summary.JobNames)

	return summary, resources
}

// stepScripts extracts shell content from a step: run blocks always, and
// the inlineScript input for azure/cli steps.
func stepScripts(step workflowStep) []string {
	var scripts []string
	if step.Run != "" {
		scripts = append(scripts, step.Run)
	}
	if strings.HasPrefix(step.Uses, "azure/cli") || strings.HasPrefix(step.Uses, "azure/CLI") {
		if inline, ok := step.With["inlineScript"].(string); ok && inline != "" {
			scripts = append(scripts, inline)
		}
	}
	return scripts
}

// formatTriggers renders the workflow "on" node, which can be a scalar,
// a list of events, or a mapping keyed by event name.
func formatTriggers(node yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value
	case yaml.SequenceNode:
		events := make([]string, 0, len(node.Content))
		for _, child := range node.Content {
			events = append(events, child.Value)
		}
		return strings.Join(events, ", ")
	case yaml.MappingNode:
		events := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			events = append(events, node.Content[i].Value)
		}
		return strings.Join(events, ", ")
	default:
		return ""
	}
}
