package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

// The changelog column packs an item's full status history into one CSV
// cell: `;`-joined `timestamp|from|to` triples. Backslash escapes the
// separators and itself inside status names.
var cellEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `;`, `\;`)

// EncodeChangelogCell renders ordered status changes as a changelog cell.
func EncodeChangelogCell(changes []workitem.StatusChange) string {
	entries := make([]string, 0, len(changes))
	for _, change := range changes {
		entries = append(entries, strings.Join([]string{
			change.Timestamp.UTC().Format(time.RFC3339),
			cellEscaper.Replace(change.FromStatus),
			cellEscaper.Replace(change.ToStatus),
		}, "|"))
	}
	return strings.Join(entries, ";")
}

// ParseChangelogCell decodes a changelog cell back into ordered status
// changes. Empty cells and empty trailing segments are fine; anything
// else must be a complete three-field entry.
func ParseChangelogCell(cell string) ([]workitem.StatusChange, error) {
	if strings.TrimSpace(cell) == "" {
		return nil, nil
	}

	var (
		changes []workitem.StatusChange
		fields  [3]string
		current strings.Builder
		field   int
		escaped bool
		entry   = 1
	)

	flushEntry := func() error {
		if field == 0 && current.Len() == 0 {
			return nil
		}
		fields[field] = current.String()
		current.Reset()
		if field != 2 {
			return fmt.Errorf("changelog entry %d has %d fields, want 3", entry, field+1)
		}
		ts, err := time.Parse(time.RFC3339, fields[0])
		if err != nil {
			return fmt.Errorf("changelog entry %d has a bad timestamp: %w", entry, err)
		}
		changes = append(changes, workitem.StatusChange{
			Timestamp:  ts.UTC(),
			FromStatus: fields[1],
			ToStatus:   fields[2],
		})
		field = 0
		entry++
		return nil
	}

	for _, r := range cell {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			if field == 2 {
				return nil, fmt.Errorf("changelog entry %d has too many fields", entry)
			}
			fields[field] = current.String()
			current.Reset()
			field++
		case r == ';':
			if err := flushEntry(); err != nil {
				return nil, err
			}
		default:
			current.WriteRune(r)
		}
	}
	if escaped {
		return nil, fmt.Errorf("changelog entry %d ends with a dangling escape", entry)
	}
	if err := flushEntry(); err != nil {
		return nil, err
	}
	return changes, nil
}
