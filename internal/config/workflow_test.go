package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

func writeWorkflowFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "workflow-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	path := filepath.Join(tmpDir, "workflow.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write workflow file: %v", err)
	}
	return path
}

func TestLoadWorkflow(t *testing.T) {
	path := writeWorkflowFile(t, strings.Join([]string{
		"status_categories:",
		"  Backlog: backlog",
		"  Doing: in_progress",
		"  Review: in_progress",
		"  Shipped: done",
		"status_order: [Backlog, Doing, Review, Shipped]",
		"exclude_types: [Epic, Sub-task]",
		"exclude_weekends: true",
		"simulation:",
		"  trials: 5000",
		"  seed: 42",
	}, "\n"))

	wf, err := LoadWorkflow(path)
	if err != nil {
		t.Fatalf("LoadWorkflow failed: %v", err)
	}
	if !wf.ExcludeWeekends {
		t.Error("exclude_weekends not picked up")
	}
	if len(wf.ExcludeTypes) != 2 || wf.ExcludeTypes[0] != "Epic" {
		t.Errorf("exclude_types mapped wrong: %v", wf.ExcludeTypes)
	}
	if wf.Simulation.Trials != 5000 {
		t.Errorf("trials = %d, want 5000", wf.Simulation.Trials)
	}
	if wf.Simulation.Seed == nil || *wf.Simulation.Seed != 42 {
		t.Errorf("seed = %v, want 42", wf.Simulation.Seed)
	}

	resolver, err := wf.Resolver()
	if err != nil {
		t.Fatalf("Resolver failed: %v", err)
	}
	category, err := resolver.Resolve("Shipped")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if category != workitem.CategoryDone {
		t.Errorf("Shipped resolved to %s, want %s", category, workitem.CategoryDone)
	}
}

func TestLoadWorkflowDefault(t *testing.T) {
	wf, err := LoadWorkflow("")
	if err != nil {
		t.Fatalf("LoadWorkflow(\"\") failed: %v", err)
	}
	if wf.Simulation.Seed != nil {
		t.Error("default workflow should not pin a seed")
	}

	resolver, err := wf.Resolver()
	if err != nil {
		t.Fatalf("Resolver failed: %v", err)
	}
	for _, status := range []string{"To Do", "In Progress", "Done"} {
		if _, err := resolver.Resolve(status); err != nil {
			t.Errorf("default workflow does not cover %q: %v", status, err)
		}
	}
}

func TestLoadWorkflowStructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "empty category map",
			content: "exclude_weekends: true",
		},
		{
			name: "unknown category token",
			content: strings.Join([]string{
				"status_categories:",
				"  Doing: doing-ish",
			}, "\n"),
		},
		{
			name:    "unparseable yaml",
			content: "status_categories: [not, a, map",
		},
		{
			name: "negative trials",
			content: strings.Join([]string{
				"status_categories:",
				"  Doing: in_progress",
				"simulation:",
				"  trials: -1",
			}, "\n"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkflowFile(t, tt.content)
			if _, err := LoadWorkflow(path); err == nil {
				t.Error("expected a structural validation error")
			}
		})
	}
}

func TestLoadWorkflowMissingFile(t *testing.T) {
	if _, err := LoadWorkflow("/nonexistent/workflow.yaml"); err == nil {
		t.Error("expected an error for a missing workflow file")
	}
}
