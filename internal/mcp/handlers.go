package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/eamoe/jira-flow-metrics/internal/metrics"
	"github.com/eamoe/jira-flow-metrics/internal/simulation"
)

// ThroughputInput adds the rollup granularity to the shared inputs.
type ThroughputInput struct {
	AnalysisInput
	Granularity string `json:"granularity,omitempty"`
}

// CorrelationInput selects which duration clock to correlate estimates with.
type CorrelationInput struct {
	AnalysisInput
	Kind string `json:"kind,omitempty"`
}

// HowManyInput asks how many items finish within a day horizon.
type HowManyInput struct {
	AnalysisInput
	Days   int    `json:"days"`
	Trials int    `json:"trials,omitempty"`
	Seed   *int64 `json:"seed,omitempty"`
}

// HowLongInput asks how many days a batch of items needs.
type HowLongInput struct {
	AnalysisInput
	Items  int    `json:"items"`
	Trials int    `json:"trials,omitempty"`
	Seed   *int64 `json:"seed,omitempty"`
}

type summaryPayload struct {
	GeneratedAt    time.Time              `json:"generated_at"`
	ItemCount      int                    `json:"item_count"`
	CompletedCount int                    `json:"completed_count"`
	OpenCount      int                    `json:"open_count"`
	SkippedCount   int                    `json:"skipped_count"`
	LeadTime       *metrics.DurationStats `json:"lead_time,omitempty"`
	CycleTime      *metrics.DurationStats `json:"cycle_time,omitempty"`
	Warnings       []string               `json:"warnings,omitempty"`
}

type throughputPayload struct {
	Granularity metrics.Granularity `json:"granularity"`
	Total       int                 `json:"total"`
	Buckets     []metrics.Bucket    `json:"buckets"`
}

type wipPayload struct {
	Current int                `json:"current"`
	Peak    int                `json:"peak"`
	Points  []metrics.WIPPoint `json:"points"`
}

type survivalPayload struct {
	Points []metrics.SurvivalPoint `json:"points"`
}

type forecastPayload struct {
	*simulation.Result
	Dates *simulation.ForecastDates `json:"dates,omitempty"`
}

func (s *Server) handleFlowSummary(ctx context.Context, req *sdk.CallToolRequest, in AnalysisInput) (*sdk.CallToolResult, any, error) {
	analysis, err := s.analysisFor(in)
	if err != nil {
		return toolError(err), nil, nil
	}
	report := analysis.BuildReport()
	result, err := toolJSON(summaryPayload{
		GeneratedAt:    report.GeneratedAt,
		ItemCount:      report.ItemCount,
		CompletedCount: report.CompletedCount,
		OpenCount:      report.OpenCount,
		SkippedCount:   report.SkippedCount,
		LeadTime:       report.LeadTime,
		CycleTime:      report.CycleTime,
		Warnings:       report.Warnings,
	})
	return result, nil, err
}

func (s *Server) handleThroughput(ctx context.Context, req *sdk.CallToolRequest, in ThroughputInput) (*sdk.CallToolResult, any, error) {
	granularity, err := metrics.ParseGranularity(in.Granularity)
	if err != nil {
		return toolError(err), nil, nil
	}
	analysis, err := s.analysisFor(in.AnalysisInput)
	if err != nil {
		return toolError(err), nil, nil
	}
	series, err := analysis.Throughput()
	if err != nil {
		return toolError(err), nil, nil
	}
	result, err := toolJSON(throughputPayload{
		Granularity: granularity,
		Total:       series.Total(),
		Buckets:     metrics.Rollup(*series, granularity),
	})
	return result, nil, err
}

func (s *Server) handleWIP(ctx context.Context, req *sdk.CallToolRequest, in AnalysisInput) (*sdk.CallToolResult, any, error) {
	analysis, err := s.analysisFor(in)
	if err != nil {
		return toolError(err), nil, nil
	}
	points, err := analysis.WIP()
	if err != nil {
		return toolError(err), nil, nil
	}
	payload := wipPayload{Points: points, Current: points[len(points)-1].Count}
	for _, point := range points {
		if point.Count > payload.Peak {
			payload.Peak = point.Count
		}
	}
	result, err := toolJSON(payload)
	return result, nil, err
}

func (s *Server) handleSurvival(ctx context.Context, req *sdk.CallToolRequest, in AnalysisInput) (*sdk.CallToolResult, any, error) {
	analysis, err := s.analysisFor(in)
	if err != nil {
		return toolError(err), nil, nil
	}
	points, err := analysis.Survival()
	if err != nil {
		return toolError(err), nil, nil
	}
	result, err := toolJSON(survivalPayload{Points: points})
	return result, nil, err
}

func (s *Server) handleCorrelation(ctx context.Context, req *sdk.CallToolRequest, in CorrelationInput) (*sdk.CallToolResult, any, error) {
	var kind metrics.IntervalKind
	switch in.Kind {
	case "", "cycle":
		kind = metrics.KindCycle
	case "lead":
		kind = metrics.KindLead
	default:
		return toolError(fmt.Errorf("unknown kind %q, want lead or cycle", in.Kind)), nil, nil
	}
	analysis, err := s.analysisFor(in.AnalysisInput)
	if err != nil {
		return toolError(err), nil, nil
	}
	correlation, err := analysis.Correlation(kind)
	if err != nil {
		return toolError(err), nil, nil
	}
	result, err := toolJSON(correlation)
	return result, nil, err
}

func (s *Server) handleForecastHowMany(ctx context.Context, req *sdk.CallToolRequest, in HowManyInput) (*sdk.CallToolResult, any, error) {
	analysis, err := s.analysisFor(in.AnalysisInput)
	if err != nil {
		return toolError(err), nil, nil
	}
	engine, err := s.forecaster(analysis, in.Trials, in.Seed)
	if err != nil {
		return toolError(err), nil, nil
	}
	forecast, err := engine.HowManyByDate(in.Days)
	if err != nil {
		return toolError(err), nil, nil
	}
	result, err := toolJSON(forecastPayload{Result: forecast})
	return result, nil, err
}

func (s *Server) handleForecastHowLong(ctx context.Context, req *sdk.CallToolRequest, in HowLongInput) (*sdk.CallToolResult, any, error) {
	analysis, err := s.analysisFor(in.AnalysisInput)
	if err != nil {
		return toolError(err), nil, nil
	}
	engine, err := s.forecaster(analysis, in.Trials, in.Seed)
	if err != nil {
		return toolError(err), nil, nil
	}
	forecast, err := engine.HowLongForItems(in.Items)
	if err != nil {
		return toolError(err), nil, nil
	}
	dates := forecast.ProjectDates(analysis.Calendar(), analysis.Now())
	result, err := toolJSON(forecastPayload{Result: forecast, Dates: &dates})
	return result, nil, err
}
