package jira

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

const (
	searchPageSize    = 100
	changelogPageSize = 100
	backfillWorkers   = 4
)

// ExtractOptions selects what the extractor pulls.
type ExtractOptions struct {
	Project       string
	Since         string // YYYY-MM-DD; bounds the JQL query
	UpdatesOnly   bool   // filter on updated instead of created
	EstimateField string // custom field id carrying the numeric estimate
}

// BuildJQL renders the search query for the given options.
func BuildJQL(opts ExtractOptions) string {
	field := "created"
	if opts.UpdatesOnly {
		field = "updated"
	}
	jql := fmt.Sprintf("project = %s", opts.Project)
	if opts.Since != "" {
		jql += fmt.Sprintf(" AND %s >= %q", field, opts.Since)
	}
	return jql + " ORDER BY created ASC"
}

// Extractor pulls work item histories out of Jira Cloud.
type Extractor struct {
	client *Client
}

func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

// Run fetches every issue matching the options, completes truncated
// changelogs, and maps the lot into validated work items. Issues whose
// history cannot be mapped are skipped with a diagnostic.
func (e *Extractor) Run(ctx context.Context, opts ExtractOptions) ([]*workitem.WorkItem, error) {
	if opts.Project == "" {
		return nil, fmt.Errorf("project key is required")
	}

	fields := []string{"summary", "issuetype", "status", "created", "resolutiondate"}
	if opts.EstimateField != "" {
		fields = append(fields, opts.EstimateField)
	}

	jql := BuildJQL(opts)
	log.Info().Str("project", opts.Project).Str("since", opts.Since).Msg("Fetching issues from Jira")

	var dtos []IssueDTO
	for startAt := 0; ; {
		page, err := e.client.SearchIssues(ctx, jql, startAt, searchPageSize, fields, "changelog")
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, page.Issues...)
		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}

	if err := e.backfillChangelogs(ctx, dtos); err != nil {
		return nil, err
	}

	items := make([]*workitem.WorkItem, 0, len(dtos))
	for _, dto := range dtos {
		item, err := MapIssue(dto, opts.EstimateField)
		if err != nil {
			log.Warn().Str("key", dto.Key).Err(err).Msg("Skipping issue")
			continue
		}
		items = append(items, item)
	}
	log.Info().Int("count", len(items)).Msg("Extraction finished")
	return items, nil
}

// backfillChangelogs re-fetches histories for issues whose embedded
// changelog was truncated by the search API.
func (e *Extractor) backfillChangelogs(ctx context.Context, dtos []IssueDTO) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillWorkers)
	for i := range dtos {
		if !dtos[i].Changelog.Truncated() {
			continue
		}
		dto := &dtos[i]
		g.Go(func() error {
			log.Debug().Str("key", dto.Key).Int("total", dto.Changelog.Total).Msg("Backfilling truncated changelog")
			histories, err := e.fetchFullChangelog(ctx, dto.Key)
			if err != nil {
				return fmt.Errorf("failed to backfill changelog for %s: %w", dto.Key, err)
			}
			dto.Changelog.Histories = histories
			return nil
		})
	}
	return g.Wait()
}

func (e *Extractor) fetchFullChangelog(ctx context.Context, key string) ([]HistoryDTO, error) {
	var histories []HistoryDTO
	for startAt := 0; ; {
		page, err := e.client.GetChangelog(ctx, key, startAt, changelogPageSize)
		if err != nil {
			return nil, err
		}
		histories = append(histories, page.Values...)
		startAt += len(page.Values)
		if len(page.Values) == 0 || startAt >= page.Total {
			break
		}
	}
	return histories, nil
}

// CategoriesFromStatuses converts the tracker's own status categories
// into workflow mapping tokens, so a fresh extract can seed a usable
// workflow file without manual mapping work.
func CategoriesFromStatuses(statuses []StatusDTO) map[string]string {
	categories := make(map[string]string, len(statuses))
	for _, status := range statuses {
		var token string
		switch status.StatusCategory.Key {
		case "new":
			token = "backlog"
		case "indeterminate":
			token = "in_progress"
		case "done":
			token = "done"
		default:
			continue
		}
		categories[status.Name] = token
	}
	return categories
}
