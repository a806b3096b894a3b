package mcp

import (
	"encoding/json"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/eamoe/jira-flow-metrics/internal/dataset"
	"github.com/eamoe/jira-flow-metrics/internal/metrics"
	"github.com/eamoe/jira-flow-metrics/internal/simulation"
	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

// AnalysisInput is the argument block shared by every view tool.
type AnalysisInput struct {
	Dataset         string   `json:"dataset,omitempty"`
	Since           string   `json:"since,omitempty"`
	Until           string   `json:"until,omitempty"`
	ExcludeWeekends *bool    `json:"exclude_weekends,omitempty"`
	ExcludeTypes    []string `json:"exclude_types,omitempty"`
}

func (s *Server) loadItems(path string) ([]*workitem.WorkItem, error) {
	if path != "" {
		items, _, err := dataset.Read(path)
		return items, err
	}
	if s.preloaded != nil {
		return s.preloaded, nil
	}
	return nil, fmt.Errorf("no dataset available: pass a dataset path or start the server with --input")
}

// analysisFor builds one analysis run from the shared inputs. Per-call
// values override the workflow file, absent ones inherit from it.
func (s *Server) analysisFor(in AnalysisInput) (*metrics.Analysis, error) {
	items, err := s.loadItems(in.Dataset)
	if err != nil {
		return nil, err
	}
	resolver, err := s.workflow.Resolver()
	if err != nil {
		return nil, err
	}

	filter := metrics.Filter{ExcludeTypes: s.workflow.ExcludeTypes}
	if len(in.ExcludeTypes) > 0 {
		filter.ExcludeTypes = in.ExcludeTypes
	}
	if filter.Since, err = parseDay(in.Since, "since"); err != nil {
		return nil, err
	}
	if filter.Until, err = parseDay(in.Until, "until"); err != nil {
		return nil, err
	}

	excludeWeekends := s.workflow.ExcludeWeekends
	if in.ExcludeWeekends != nil {
		excludeWeekends = *in.ExcludeWeekends
	}

	calendar := metrics.Calendar{ExcludeWeekends: excludeWeekends}
	return metrics.NewAnalysis(items, resolver, calendar, filter, time.Now().UTC()), nil
}

// forecaster builds a seeded engine over the recent throughput samples.
func (s *Server) forecaster(analysis *metrics.Analysis, trials int, seed *int64) (*simulation.Engine, error) {
	series, err := analysis.Throughput()
	if err != nil {
		return nil, err
	}
	engine := simulation.NewEngine(series.Samples(analysis.Calendar().ExcludeWeekends))
	if trials > 0 {
		engine.SetTrials(trials)
	} else if s.workflow.Simulation.Trials > 0 {
		engine.SetTrials(s.workflow.Simulation.Trials)
	}
	if seed != nil {
		engine.SetSeed(*seed)
	} else if s.workflow.Simulation.Seed != nil {
		engine.SetSeed(*s.workflow.Simulation.Seed)
	}
	return engine, nil
}

// toolJSON wraps a result value as indented JSON text content.
func toolJSON(v any) (*sdk.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: string(out)}},
	}, nil
}

// toolError reports a failed call as a tool error, keeping the server up.
func toolError(err error) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{&sdk.TextContent{Text: err.Error()}},
	}
}

func parseDay(value, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date %q, want YYYY-MM-DD", name, value)
	}
	return &day, nil
}
