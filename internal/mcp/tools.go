package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// analysisProperties is the schema block shared by every view tool.
func analysisProperties() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"dataset": {
			Type:        "string",
			Description: "Path to a dataset CSV. Optional when the server was started with --input.",
		},
		"since": {
			Type:        "string",
			Description: "Inclusive window start (YYYY-MM-DD).",
		},
		"until": {
			Type:        "string",
			Description: "Inclusive window end (YYYY-MM-DD).",
		},
		"exclude_weekends": {
			Type:        "boolean",
			Description: "Count working days only. Defaults to the workflow file setting.",
		},
		"exclude_types": {
			Type:        "array",
			Items:       &jsonschema.Schema{Type: "string"},
			Description: "Issue types to drop, e.g. [\"Epic\", \"Sub-task\"]. Replaces the workflow file list.",
		},
	}
}

func forecastProperties() map[string]*jsonschema.Schema {
	props := analysisProperties()
	props["trials"] = &jsonschema.Schema{
		Type:        "integer",
		Description: "Number of simulation trials. Defaults to the workflow file setting, then 10000.",
	}
	props["seed"] = &jsonschema.Schema{
		Type:        "integer",
		Description: "Random seed for reproducible forecasts.",
	}
	return props
}

func (s *Server) register(server *sdk.Server) {
	sdk.AddTool(server, &sdk.Tool{
		Name: "flow_summary",
		Description: "Summarize a dataset's flow: item counts plus lead and cycle time percentiles in days. " +
			"Views without enough completed items are reported as warnings, never as zeros.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: analysisProperties()},
	}, s.handleFlowSummary)

	throughputProps := analysisProperties()
	throughputProps["granularity"] = &jsonschema.Schema{
		Type:        "string",
		Enum:        []any{"day", "week", "month"},
		Description: "Bucket size for the rollup. Default: day.",
	}
	sdk.AddTool(server, &sdk.Tool{
		Name:        "throughput",
		Description: "Completed items per day, week or month over the analysis window, zero-filled for quiet periods.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: throughputProps},
	}, s.handleThroughput)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "wip",
		Description: "Items in flight per day: started but not yet finished, counted over each item's active span.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: analysisProperties()},
	}, s.handleWIP)

	sdk.AddTool(server, &sdk.Tool{
		Name: "survival_curve",
		Description: "Fraction of started items reaching at least each age in days, open items aging until now. " +
			"Useful for spotting work that quietly outlives the rest.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: analysisProperties()},
	}, s.handleSurvival)

	correlationProps := analysisProperties()
	correlationProps["kind"] = &jsonschema.Schema{
		Type:        "string",
		Enum:        []any{"lead", "cycle"},
		Description: "Which duration clock to correlate estimates against. Default: cycle.",
	}
	sdk.AddTool(server, &sdk.Tool{
		Name:        "estimate_correlation",
		Description: "Pearson correlation between item estimates and observed durations. Needs at least two estimated, completed items.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: correlationProps},
	}, s.handleCorrelation)

	howManyProps := forecastProperties()
	howManyProps["days"] = &jsonschema.Schema{
		Type:        "integer",
		Description: "The day horizon to simulate.",
	}
	sdk.AddTool(server, &sdk.Tool{
		Name: "forecast_how_many",
		Description: "Monte Carlo forecast of how many items finish within a day horizon, resampling historical daily throughput. " +
			"Reports outcome percentiles (p50/p75/p85/p95). Do not invent probabilities when this tool reports an error.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: howManyProps, Required: []string{"days"}},
	}, s.handleForecastHowMany)

	howLongProps := forecastProperties()
	howLongProps["items"] = &jsonschema.Schema{
		Type:        "integer",
		Description: "The number of items to complete.",
	}
	sdk.AddTool(server, &sdk.Tool{
		Name: "forecast_how_long",
		Description: "Monte Carlo forecast of how many days a batch of items needs, resampling historical daily throughput. " +
			"Reports outcome percentiles with projected calendar dates. Do not invent probabilities when this tool reports an error.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: howLongProps, Required: []string{"items"}},
	}, s.handleForecastHowLong)
}
