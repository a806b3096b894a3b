package jira

import (
	"encoding/json"
	"time"
)

// SearchResponse is the top-level container for Jira search results.
type SearchResponse struct {
	StartAt    int        `json:"startAt"`
	MaxResults int        `json:"maxResults"`
	Total      int        `json:"total"`
	Issues     []IssueDTO `json:"issues"`
}

// IssueDTO represents a single issue in the Jira search response.
type IssueDTO struct {
	ID        string        `json:"id"`
	Key       string        `json:"key"`
	Fields    FieldsDTO     `json:"fields"`
	Changelog *ChangelogDTO `json:"changelog,omitempty"`
}

// FieldsDTO contains the issue fields the extractor asks for. Every
// field additionally lands raw in Custom, keyed by field id, so custom
// estimate fields stay reachable without schema knowledge.
type FieldsDTO struct {
	Summary   string `json:"summary"`
	IssueType struct {
		Name    string `json:"name"`
		Subtask bool   `json:"subtask"`
	} `json:"issuetype"`
	Status struct {
		Name           string      `json:"name"`
		StatusCategory CategoryDTO `json:"statusCategory"`
	} `json:"status"`
	Created        string `json:"created"`
	ResolutionDate string `json:"resolutiondate"`

	Custom map[string]json.RawMessage `json:"-"`
}

func (f *FieldsDTO) UnmarshalJSON(data []byte) error {
	type plain FieldsDTO
	if err := json.Unmarshal(data, (*plain)(f)); err != nil {
		return err
	}
	return json.Unmarshal(data, &f.Custom)
}

// ChangelogDTO is the changelog embedded in a search response. The
// search API truncates it; Truncated signals a backfill is needed.
type ChangelogDTO struct {
	StartAt    int          `json:"startAt"`
	MaxResults int          `json:"maxResults"`
	Total      int          `json:"total"`
	Histories  []HistoryDTO `json:"histories"`
}

func (c *ChangelogDTO) Truncated() bool {
	return c != nil && c.Total > len(c.Histories)
}

// ChangelogPageDTO is one page from the dedicated changelog endpoint,
// which names its list "values" instead of "histories".
type ChangelogPageDTO struct {
	StartAt    int          `json:"startAt"`
	MaxResults int          `json:"maxResults"`
	Total      int          `json:"total"`
	Values     []HistoryDTO `json:"values"`
}

// HistoryDTO is a single entry in the changelog.
type HistoryDTO struct {
	Created string    `json:"created"`
	Items   []ItemDTO `json:"items"`
}

// ItemDTO is a single field change within a history entry.
type ItemDTO struct {
	Field      string `json:"field"`
	FromString string `json:"fromString"`
	ToString   string `json:"toString"`
}

// StatusDTO is one status definition with its tracker-level category.
type StatusDTO struct {
	Name           string      `json:"name"`
	StatusCategory CategoryDTO `json:"statusCategory"`
}

// CategoryDTO is the tracker-level status category reference.
type CategoryDTO struct {
	Key string `json:"key"`
}

// ParseTime is a helper for the strict Jira time format.
func ParseTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05.000-0700", s)
}
