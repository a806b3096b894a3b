package commands

import (
	"github.com/spf13/cobra"

	"github.com/eamoe/jira-flow-metrics/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Exposes the analysis views and forecasts as MCP tools over stdio so
agents can query flow metrics directly. With --input the dataset is
loaded once at startup; tools can also name a dataset per call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		workflow, err := loadWorkflow()
		if err != nil {
			return err
		}
		server := mcp.NewServer(workflow, Version)
		if inputPath != "" {
			if err := server.Preload(inputPath); err != nil {
				return err
			}
		}
		return server.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
