package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/eamoe/jira-flow-metrics/internal/config"
	"github.com/eamoe/jira-flow-metrics/internal/logging"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose      bool
	quiet        bool
	inputPath    string
	workflowPath string
	cfg          *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "jira-flow-metrics",
	Short: "Flow metrics and Monte Carlo forecasts from Jira issue histories",
	Long: `Converts issue status-change histories into flow metrics (lead and cycle
time, throughput, WIP, survival curves, estimate correlation) and
throughput-resampling forecasts, working from a portable CSV dataset
extracted from Jira Cloud.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose, quiet)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("jira-flow-metrics starting")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.PersistentFlags().StringVar(&inputPath, "input", "", "dataset CSV path (default: DATA_PATH/"+config.DefaultDatasetFile+")")
	rootCmd.PersistentFlags().StringVar(&workflowPath, "workflow", "", "workflow YAML path (default: DATA_PATH/workflow.yaml)")
}

func datasetPath() string {
	if inputPath != "" {
		return inputPath
	}
	return cfg.DefaultDatasetPath()
}
