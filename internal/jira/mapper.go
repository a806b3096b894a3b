package jira

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

// MapIssue transforms a Jira DTO into a validated work item.
func MapIssue(dto IssueDTO, estimateField string) (*workitem.WorkItem, error) {
	created, err := ParseTime(dto.Fields.Created)
	if err != nil {
		return nil, fmt.Errorf("bad created timestamp: %w", err)
	}

	item := workitem.WorkItem{
		Key:     dto.Key,
		Type:    dto.Fields.IssueType.Name,
		Title:   dto.Fields.Summary,
		Created: created.UTC(),
	}
	if dto.Fields.ResolutionDate != "" {
		if t, err := ParseTime(dto.Fields.ResolutionDate); err == nil {
			utc := t.UTC()
			item.Resolved = &utc
		}
	}
	if estimateField != "" {
		item.Estimate = estimateFrom(dto.Fields.Custom, estimateField)
	}
	if dto.Changelog != nil {
		item.Changes = statusChanges(dto.Changelog.Histories)
	}
	return workitem.New(item)
}

// statusChanges pulls the status transitions out of a changelog, oldest
// first. Histories with unparseable timestamps are dropped.
func statusChanges(histories []HistoryDTO) []workitem.StatusChange {
	var changes []workitem.StatusChange
	for _, history := range histories {
		at, err := ParseTime(history.Created)
		if err != nil {
			continue
		}
		for _, change := range history.Items {
			if change.Field != "status" {
				continue
			}
			changes = append(changes, workitem.StatusChange{
				Timestamp:  at.UTC(),
				FromStatus: change.FromString,
				ToStatus:   change.ToString,
			})
		}
	}
	slices.SortStableFunc(changes, func(a, b workitem.StatusChange) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return changes
}

// estimateFrom digs a numeric custom field out of the raw field map.
func estimateFrom(custom map[string]json.RawMessage, fieldID string) *float64 {
	raw, ok := custom[fieldID]
	if !ok || string(raw) == "null" {
		return nil
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return &value
}
