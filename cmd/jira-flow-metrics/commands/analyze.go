package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eamoe/jira-flow-metrics/internal/report"
)

var (
	analyzeFlags  analysisFlags
	analyzeFormat string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute flow metrics from the dataset",
	Long: `Builds the full flow report: lead and cycle time percentiles, weekly
throughput, WIP, the survival curve, and the estimate correlation.
Views without enough data turn into warnings, never errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, _, err := newAnalysis(cmd, &analyzeFlags)
		if err != nil {
			return err
		}
		flowReport := analysis.BuildReport()

		switch analyzeFormat {
		case "json":
			return report.WriteJSON(os.Stdout, flowReport)
		case "text":
			report.RenderTerminal(os.Stdout, flowReport)
			return nil
		default:
			return fmt.Errorf("unknown format %q, want text or json", analyzeFormat)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalysisFlags(analyzeCmd, &analyzeFlags)
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: text or json")
}
