package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/eamoe/jira-flow-metrics/internal/config"
	"github.com/eamoe/jira-flow-metrics/internal/dataset"
	"github.com/eamoe/jira-flow-metrics/internal/metrics"
)

// analysisFlags are shared by every command that reads the dataset.
// Zero values mean "defer to the workflow file"; newAnalysis only applies
// a flag the user actually set.
type analysisFlags struct {
	since           string
	until           string
	excludeWeekends bool
	excludeTypes    []string
}

func addAnalysisFlags(cmd *cobra.Command, flags *analysisFlags) {
	cmd.Flags().StringVar(&flags.since, "since", "", "only items on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.until, "until", "", "only items on or before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&flags.excludeWeekends, "exclude-weekends", false, "count working days only")
	cmd.Flags().StringArrayVar(&flags.excludeTypes, "exclude-type", nil, "issue type to skip, replaces the workflow list (repeatable)")
}

// loadWorkflow resolves the status mapping. An explicit --workflow path
// must load cleanly; the default location falls back to the built-in
// Jira categories when no file exists yet.
func loadWorkflow() (*config.Workflow, error) {
	if workflowPath != "" {
		return config.LoadWorkflow(workflowPath)
	}
	path := cfg.WorkflowPath()
	workflow, err := config.LoadWorkflow(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", path).Msg("No workflow file, using default status categories")
			return config.DefaultWorkflow(), nil
		}
		return nil, err
	}
	log.Debug().Str("path", path).Msg("Loaded workflow file")
	return workflow, nil
}

// newAnalysis loads the dataset and builds one analysis run, layering
// command-line overrides on the workflow defaults.
func newAnalysis(cmd *cobra.Command, flags *analysisFlags) (*metrics.Analysis, *config.Workflow, error) {
	workflow, err := loadWorkflow()
	if err != nil {
		return nil, nil, err
	}
	resolver, err := workflow.Resolver()
	if err != nil {
		return nil, nil, err
	}

	items, _, err := dataset.Read(datasetPath())
	if err != nil {
		return nil, nil, err
	}

	filter := metrics.Filter{ExcludeTypes: workflow.ExcludeTypes}
	if cmd.Flags().Changed("exclude-type") {
		filter.ExcludeTypes = flags.excludeTypes
	}
	if filter.Since, err = parseDay(flags.since, "since"); err != nil {
		return nil, nil, err
	}
	if filter.Until, err = parseDay(flags.until, "until"); err != nil {
		return nil, nil, err
	}

	excludeWeekends := workflow.ExcludeWeekends
	if cmd.Flags().Changed("exclude-weekends") {
		excludeWeekends = flags.excludeWeekends
	}
	calendar := metrics.Calendar{ExcludeWeekends: excludeWeekends}

	return metrics.NewAnalysis(items, resolver, calendar, filter, time.Now().UTC()), workflow, nil
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
