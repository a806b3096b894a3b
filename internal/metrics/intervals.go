package metrics

import (
	"time"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

// ExtractIntervals derives the lead and cycle boundaries for one item by a
// single linear pass over its ordered status changes, keeping two cursors:
// the first entry into an InProgress-category status and the last entry
// into a Done-category status.
//
// Lead always starts at creation. Cycle starts at the first InProgress
// entry; an item already at or past InProgress when its history begins
// starts its cycle at creation instead. Both intervals end at the last
// Done entry, and only when the item's final status is still Done-category:
// an item that left Done again is open, and a reopened item keeps the
// clock running until its latest completion.
//
// Any status the resolver cannot place fails the whole item with a
// CategoryResolutionError.
func ExtractIntervals(item *workitem.WorkItem, resolver *workitem.Resolver) (ResolvedItem, error) {
	resolved := ResolvedItem{
		Item: item,
		Lead: Interval{Kind: KindLead, Start: item.Created},
	}

	var initialCategory workitem.StatusCategory
	if len(item.Changes) > 0 && item.Changes[0].FromStatus != "" {
		initial, err := resolver.Resolve(item.Changes[0].FromStatus)
		if err != nil {
			return ResolvedItem{}, err
		}
		initialCategory = initial
	}

	var firstActive, lastDone *time.Time
	current := initialCategory

	for _, change := range item.Changes {
		if change.FromStatus != "" && !resolver.Covers(change.FromStatus) {
			return ResolvedItem{}, &workitem.CategoryResolutionError{Status: change.FromStatus}
		}
		category, err := resolver.Resolve(change.ToStatus)
		if err != nil {
			return ResolvedItem{}, err
		}

		if category == workitem.CategoryInProgress && firstActive == nil {
			ts := change.Timestamp
			firstActive = &ts
		}
		if category == workitem.CategoryDone {
			ts := change.Timestamp
			lastDone = &ts
		}
		current = category
	}

	switch {
	case firstActive != nil:
		resolved.Started = true
		resolved.Cycle = Interval{Kind: KindCycle, Start: *firstActive}
	case initialCategory == workitem.CategoryInProgress || initialCategory == workitem.CategoryDone:
		// Born at or past active work: the cycle clock starts with the item.
		resolved.Started = true
		resolved.Cycle = Interval{Kind: KindCycle, Start: item.Created}
	}

	if current == workitem.CategoryDone && lastDone != nil {
		end := *lastDone
		resolved.Lead.End = &end
		if resolved.Started {
			cycleEnd := end
			resolved.Cycle.End = &cycleEnd
		}
	}

	return resolved, nil
}
