package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

// Workflow describes how raw tracker statuses map onto the analysis:
// which status belongs to which category, which issue types to ignore,
// and how the simulation should run. Loaded from a YAML file; every
// field except the category map is optional.
type Workflow struct {
	StatusCategories map[string]string `yaml:"status_categories"`
	StatusOrder      []string          `yaml:"status_order"`
	ExcludeTypes     []string          `yaml:"exclude_types"`
	ExcludeWeekends  bool              `yaml:"exclude_weekends"`
	Simulation       Simulation        `yaml:"simulation"`
}

// Simulation configures the forecast engine.
type Simulation struct {
	Trials int    `yaml:"trials"`
	Seed   *int64 `yaml:"seed"`
}

// LoadWorkflow reads and validates a workflow file. An empty path falls
// back to the built-in mapping of Jira's standard statuses.
func LoadWorkflow(path string) (*Workflow, error) {
	if path == "" {
		return DefaultWorkflow(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file %s: %w", path, err)
	}
	if err := wf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow file %s: %w", path, err)
	}
	return &wf, nil
}

// DefaultWorkflow covers Jira's standard three status categories.
func DefaultWorkflow() *Workflow {
	return &Workflow{StatusCategories: workitem.DefaultCategories()}
}

// Validate rejects structurally broken configuration before any
// computation starts. Unknown statuses showing up later in item
// histories are not structural: those are per-item skips.
func (w *Workflow) Validate() error {
	if _, err := w.Resolver(); err != nil {
		return err
	}
	if w.Simulation.Trials < 0 {
		return fmt.Errorf("simulation trials must not be negative, got %d", w.Simulation.Trials)
	}
	return nil
}

// Resolver builds the status category resolver from the configured map.
func (w *Workflow) Resolver() (*workitem.Resolver, error) {
	return workitem.NewResolver(w.StatusCategories)
}
