package workitem

import "fmt"

// CategoryResolutionError reports a status name that the configured
// status-category mapping does not cover. The affected item is skipped;
// the run continues.
type CategoryResolutionError struct {
	Status string
}

func (e *CategoryResolutionError) Error() string {
	return fmt.Sprintf("status %q is not mapped to a category", e.Status)
}

// MalformedHistoryError reports a status-change sequence that cannot be
// interpreted (non-monotonic timestamps, missing identity fields). The
// affected item is skipped; the run continues.
type MalformedHistoryError struct {
	Key    string
	Reason string
}

func (e *MalformedHistoryError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("malformed history: %s", e.Reason)
	}
	return fmt.Sprintf("malformed history for %s: %s", e.Key, e.Reason)
}
