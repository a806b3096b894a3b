package commands

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/eamoe/jira-flow-metrics/internal/config"
	"github.com/eamoe/jira-flow-metrics/internal/dataset"
	"github.com/eamoe/jira-flow-metrics/internal/jira"
)

var (
	extractProject       string
	extractSince         string
	extractUpdatesOnly   bool
	extractEstimateField string
	extractOutput        string
	extractAnonymize     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Pull issue histories from Jira into the dataset CSV",
	Long: `Fetches every issue of a project with its full status-change history
and writes the portable dataset CSV that all analysis commands read.
With --updates-only, refetches only recently updated issues and merges
them into the existing dataset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Jira.Validate(); err != nil {
			return err
		}
		if _, err := parseDay(extractSince, "since"); err != nil {
			return err
		}

		output := extractOutput
		if output == "" {
			output = cfg.DefaultDatasetPath()
		}

		client := jira.NewClient(cfg.Jira)
		extractor := jira.NewExtractor(client)
		items, err := extractor.Run(cmd.Context(), jira.ExtractOptions{
			Project:       extractProject,
			Since:         extractSince,
			UpdatesOnly:   extractUpdatesOnly,
			EstimateField: extractEstimateField,
		})
		if err != nil {
			return err
		}

		if extractUpdatesOnly {
			existing, _, err := dataset.Read(output)
			switch {
			case err == nil:
				items = dataset.Merge(existing, items)
			case errors.Is(err, os.ErrNotExist):
				log.Warn().Str("path", output).Msg("No existing dataset to merge into, writing a fresh one")
			default:
				return err
			}
		}

		if err := dataset.Write(output, items, dataset.WriteOptions{Anonymize: extractAnonymize}); err != nil {
			return err
		}

		seedWorkflowFile(cmd, client)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractProject, "project", "", "Jira project key (required)")
	extractCmd.Flags().StringVar(&extractSince, "since", "", "only issues created on or after this date (YYYY-MM-DD)")
	extractCmd.Flags().BoolVar(&extractUpdatesOnly, "updates-only", false, "refetch issues updated since --since and merge into the existing dataset")
	extractCmd.Flags().StringVar(&extractEstimateField, "estimate-field", "", "custom field id carrying the numeric estimate, e.g. customfield_10016")
	extractCmd.Flags().StringVar(&extractOutput, "output", "", "dataset CSV to write (default: DATA_PATH/"+config.DefaultDatasetFile+")")
	extractCmd.Flags().BoolVar(&extractAnonymize, "anonymize", false, "strip project prefixes and titles before writing")
	extractCmd.MarkFlagRequired("project")
}

// seedWorkflowFile writes a starter workflow mapping on first extract,
// built from the instance's real status catalog. Best effort: analysis
// falls back to the default mapping without it.
func seedWorkflowFile(cmd *cobra.Command, client *jira.Client) {
	path := cfg.WorkflowPath()
	if _, err := os.Stat(path); err == nil {
		return
	}
	statuses, err := client.GetStatuses(cmd.Context())
	if err != nil {
		log.Warn().Err(err).Msg("Could not fetch status catalog to seed the workflow file")
		return
	}
	workflow := config.Workflow{StatusCategories: jira.CategoriesFromStatuses(statuses)}
	data, err := yaml.Marshal(workflow)
	if err != nil {
		log.Warn().Err(err).Msg("Could not encode workflow file")
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Could not write workflow file")
		return
	}
	log.Info().Str("path", path).Int("statuses", len(workflow.StatusCategories)).Msg("Seeded workflow file from status catalog")
}
