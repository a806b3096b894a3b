package workitem

import (
	"fmt"
	"strings"
)

// StatusCategory is the coarse classification of a tracker-specific status.
type StatusCategory string

const (
	// CategoryBacklog covers statuses before active work (queued, triaged, blocked upstream).
	CategoryBacklog StatusCategory = "Backlog"
	// CategoryInProgress covers statuses where the item is actively being worked.
	CategoryInProgress StatusCategory = "InProgress"
	// CategoryDone covers terminal statuses. Entering one stops the clock.
	CategoryDone StatusCategory = "Done"
)

// ParseCategory maps a configuration token to a StatusCategory. Tokens are
// matched ignoring case, spaces, hyphens and underscores, so "in_progress",
// "In Progress" and "INPROGRESS" are all accepted.
func ParseCategory(token string) (StatusCategory, error) {
	normalized := strings.ToLower(token)
	for _, r := range []string{" ", "-", "_"} {
		normalized = strings.ReplaceAll(normalized, r, "")
	}
	switch normalized {
	case "backlog", "todo":
		return CategoryBacklog, nil
	case "inprogress":
		return CategoryInProgress, nil
	case "done":
		return CategoryDone, nil
	}
	return "", fmt.Errorf("unknown status category %q (want backlog, in_progress or done)", token)
}

// Resolver turns raw status names into categories. Lookup is
// case-insensitive and ignores surrounding whitespace.
type Resolver struct {
	categories map[string]StatusCategory
}

// NewResolver builds a Resolver from a status→category-token mapping.
// An empty mapping or an unknown category token is a configuration error
// and aborts the run before any analysis happens.
func NewResolver(mapping map[string]string) (*Resolver, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("status category mapping is empty")
	}
	categories := make(map[string]StatusCategory, len(mapping))
	for status, token := range mapping {
		category, err := ParseCategory(token)
		if err != nil {
			return nil, fmt.Errorf("status %q: %w", status, err)
		}
		categories[normalizeStatus(status)] = category
	}
	return &Resolver{categories: categories}, nil
}

// Resolve returns the category for a raw status name, or a
// CategoryResolutionError when the mapping does not cover it.
func (r *Resolver) Resolve(status string) (StatusCategory, error) {
	if category, ok := r.categories[normalizeStatus(status)]; ok {
		return category, nil
	}
	return "", &CategoryResolutionError{Status: status}
}

// Covers reports whether the resolver knows the given status.
func (r *Resolver) Covers(status string) bool {
	_, ok := r.categories[normalizeStatus(status)]
	return ok
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// DefaultCategories mirrors the three standard Jira status categories so a
// run against an unconfigured workflow still resolves the common statuses.
func DefaultCategories() map[string]string {
	return map[string]string{
		"Backlog":     "backlog",
		"To Do":       "backlog",
		"Open":        "backlog",
		"In Progress": "in_progress",
		"In Review":   "in_progress",
		"Done":        "done",
		"Closed":      "done",
		"Resolved":    "done",
	}
}
