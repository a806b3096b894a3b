package commands

import (
	"github.com/spf13/cobra"

	"github.com/eamoe/jira-flow-metrics/internal/metrics"
	"github.com/eamoe/jira-flow-metrics/internal/report"
	"github.com/eamoe/jira-flow-metrics/internal/visuals"
)

var (
	reportFlags       analysisFlags
	reportOutput      string
	reportGranularity string
	reportNoOpen      bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the flow report as a self-contained HTML page",
	Long: `Builds the full flow report and writes it as an HTML page with charts
for the cycle time run chart, throughput, WIP and the survival curve.
Opens the page in the default browser unless --no-open is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		granularity, err := metrics.ParseGranularity(reportGranularity)
		if err != nil {
			return err
		}
		analysis, _, err := newAnalysis(cmd, &reportFlags)
		if err != nil {
			return err
		}
		flowReport := analysis.BuildReport()

		var throughputChart string
		if flowReport.Throughput != nil {
			throughputChart = visuals.GenerateThroughputChart(metrics.Rollup(*flowReport.Throughput, granularity))
		}
		charts := []report.Chart{
			{Title: "Cycle Time Run Chart", Body: visuals.GenerateCycleRunChart(flowReport.RunChart)},
			{Title: "Throughput by " + string(granularity), Body: throughputChart},
			{Title: "Work in Progress", Body: visuals.GenerateWIPChart(flowReport.WIP)},
			{Title: "Survival Curve", Body: visuals.GenerateSurvivalChart(flowReport.Survival)},
		}

		if err := report.WriteHTML(reportOutput, flowReport, charts); err != nil {
			return err
		}
		if !reportNoOpen {
			report.OpenInBrowser(reportOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addAnalysisFlags(reportCmd, &reportFlags)
	reportCmd.Flags().StringVar(&reportOutput, "output", "flow_report.html", "path of the HTML file to write")
	reportCmd.Flags().StringVar(&reportGranularity, "granularity", "week", "throughput bucket size: day, week or month")
	reportCmd.Flags().BoolVar(&reportNoOpen, "no-open", false, "write the file without opening a browser")
}
