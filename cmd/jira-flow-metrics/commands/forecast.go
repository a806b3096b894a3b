package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eamoe/jira-flow-metrics/internal/config"
	"github.com/eamoe/jira-flow-metrics/internal/metrics"
	"github.com/eamoe/jira-flow-metrics/internal/report"
	"github.com/eamoe/jira-flow-metrics/internal/simulation"
)

var (
	forecastFlags  analysisFlags
	forecastTrials int
	forecastSeed   int64
	forecastFormat string
	forecastDays   int
	forecastItems  int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Monte Carlo forecasts from historical throughput",
	Long: `Resamples the daily completion history to answer two questions: how
many items will finish within a horizon (how-many), and how long a
fixed backlog will take (how-long).`,
}

var howManyCmd = &cobra.Command{
	Use:   "how-many",
	Short: "Forecast completed items within a day horizon",
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, workflow, err := newAnalysis(cmd, &forecastFlags)
		if err != nil {
			return err
		}
		engine, err := forecastEngine(cmd, analysis, workflow)
		if err != nil {
			return err
		}
		result, err := engine.HowManyByDate(forecastDays)
		if err != nil {
			return err
		}
		return writeForecast(result, nil)
	},
}

var howLongCmd = &cobra.Command{
	Use:   "how-long",
	Short: "Forecast days needed to clear a backlog",
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, workflow, err := newAnalysis(cmd, &forecastFlags)
		if err != nil {
			return err
		}
		engine, err := forecastEngine(cmd, analysis, workflow)
		if err != nil {
			return err
		}
		result, err := engine.HowLongForItems(forecastItems)
		if err != nil {
			return err
		}
		dates := result.ProjectDates(analysis.Calendar(), analysis.Now())
		return writeForecast(result, &dates)
	},
}

func init() {
	rootCmd.AddCommand(forecastCmd)
	forecastCmd.AddCommand(howManyCmd, howLongCmd)

	for _, cmd := range []*cobra.Command{howManyCmd, howLongCmd} {
		addAnalysisFlags(cmd, &forecastFlags)
		cmd.Flags().IntVar(&forecastTrials, "trials", 0, "simulation trials (default: workflow setting or 10000)")
		cmd.Flags().Int64Var(&forecastSeed, "seed", 0, "pin the random seed for reproducible runs")
		cmd.Flags().StringVar(&forecastFormat, "format", "text", "output format: text or json")
	}
	howManyCmd.Flags().IntVar(&forecastDays, "days", 0, "forecast horizon in days (required)")
	howManyCmd.MarkFlagRequired("days")
	howLongCmd.Flags().IntVar(&forecastItems, "items", 0, "backlog size to clear (required)")
	howLongCmd.MarkFlagRequired("items")
}

// forecastEngine builds the resampling engine from the analysis window's
// throughput, with flags taking precedence over workflow settings.
func forecastEngine(cmd *cobra.Command, analysis *metrics.Analysis, workflow *config.Workflow) (*simulation.Engine, error) {
	series, err := analysis.Throughput()
	if err != nil {
		return nil, err
	}
	engine := simulation.NewEngine(series.Samples(analysis.Calendar().ExcludeWeekends))

	trials := workflow.Simulation.Trials
	if cmd.Flags().Changed("trials") {
		trials = forecastTrials
	}
	engine.SetTrials(trials)

	if cmd.Flags().Changed("seed") {
		engine.SetSeed(forecastSeed)
	} else if workflow.Simulation.Seed != nil {
		engine.SetSeed(*workflow.Simulation.Seed)
	}
	return engine, nil
}

type forecastOutput struct {
	*simulation.Result
	Dates *simulation.ForecastDates `json:"dates,omitempty"`
}

func writeForecast(result *simulation.Result, dates *simulation.ForecastDates) error {
	switch forecastFormat {
	case "json":
		return report.WriteJSON(os.Stdout, forecastOutput{Result: result, Dates: dates})
	case "text":
		report.RenderForecast(os.Stdout, result, dates)
		return nil
	default:
		return fmt.Errorf("unknown format %q, want text or json", forecastFormat)
	}
}
