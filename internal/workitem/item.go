package workitem

import (
	"fmt"
	"time"
)

// StatusChange is one timestamped transition in an item's history.
type StatusChange struct {
	Timestamp  time.Time `json:"timestamp"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
}

// WorkItem is the immutable in-memory form of one tracker issue: identity,
// metadata and the ordered status-change history. Build instances through
// New so the ordering invariant holds for everything downstream.
type WorkItem struct {
	Key      string         `json:"key"`
	Type     string         `json:"type"`
	Title    string         `json:"title,omitempty"`
	Estimate *float64       `json:"estimate,omitempty"`
	Created  time.Time      `json:"created"`
	Resolved *time.Time     `json:"resolved,omitempty"`
	Changes  []StatusChange `json:"changes,omitempty"`
}

// New validates and seals a work item. The change sequence must be
// non-decreasing in timestamp and no change may precede creation;
// violations return a MalformedHistoryError.
func New(item WorkItem) (*WorkItem, error) {
	if item.Key == "" {
		return nil, &MalformedHistoryError{Reason: "missing item key"}
	}
	if item.Created.IsZero() {
		return nil, &MalformedHistoryError{Key: item.Key, Reason: "missing creation timestamp"}
	}
	for i, change := range item.Changes {
		if change.Timestamp.IsZero() {
			return nil, &MalformedHistoryError{Key: item.Key, Reason: fmt.Sprintf("change %d has no timestamp", i)}
		}
		if change.Timestamp.Before(item.Created) {
			return nil, &MalformedHistoryError{Key: item.Key, Reason: fmt.Sprintf("change %d predates creation", i)}
		}
		if i > 0 && change.Timestamp.Before(item.Changes[i-1].Timestamp) {
			return nil, &MalformedHistoryError{Key: item.Key, Reason: fmt.Sprintf("change %d is out of order", i)}
		}
	}
	item.Changes = append([]StatusChange(nil), item.Changes...)
	return &item, nil
}

// CurrentStatus replays the history: the to-status of the last change, or
// the initial status when no changes were recorded.
func (w *WorkItem) CurrentStatus() string {
	if len(w.Changes) == 0 {
		return w.InitialStatus()
	}
	return w.Changes[len(w.Changes)-1].ToStatus
}

// InitialStatus is the status the item was created in: the from-status of
// the first recorded change, or empty when the history is empty.
func (w *WorkItem) InitialStatus() string {
	if len(w.Changes) == 0 {
		return ""
	}
	return w.Changes[0].FromStatus
}
