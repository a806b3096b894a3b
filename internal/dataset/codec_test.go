package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

func TestChangelogCellRoundTrip(t *testing.T) {
	changes := []workitem.StatusChange{
		{
			Timestamp:  time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
			FromStatus: "To Do",
			ToStatus:   "In Progress",
		},
		{
			Timestamp:  time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC),
			FromStatus: "Waiting; blocked",
			ToStatus:   "Review|QA",
		},
		{
			Timestamp:  time.Date(2024, 3, 8, 17, 0, 0, 0, time.UTC),
			FromStatus: `Ops\Infra`,
			ToStatus:   "Done",
		},
	}

	cell := EncodeChangelogCell(changes)
	parsed, err := ParseChangelogCell(cell)
	if err != nil {
		t.Fatalf("ParseChangelogCell(%q) failed: %v", cell, err)
	}
	if len(parsed) != len(changes) {
		t.Fatalf("expected %d changes, got %d", len(changes), len(parsed))
	}
	for i, change := range changes {
		if !parsed[i].Timestamp.Equal(change.Timestamp) {
			t.Errorf("change %d timestamp = %v, want %v", i, parsed[i].Timestamp, change.Timestamp)
		}
		if parsed[i].FromStatus != change.FromStatus {
			t.Errorf("change %d from = %q, want %q", i, parsed[i].FromStatus, change.FromStatus)
		}
		if parsed[i].ToStatus != change.ToStatus {
			t.Errorf("change %d to = %q, want %q", i, parsed[i].ToStatus, change.ToStatus)
		}
	}
}

func TestEncodeChangelogCellFormat(t *testing.T) {
	changes := []workitem.StatusChange{
		{
			Timestamp:  time.Date(2024, 3, 4, 10, 0, 0, 0, time.FixedZone("CET", 3600)),
			FromStatus: "To Do",
			ToStatus:   "In Progress",
		},
		{
			Timestamp:  time.Date(2024, 3, 8, 17, 0, 0, 0, time.UTC),
			FromStatus: "In Progress",
			ToStatus:   "Done",
		},
	}

	got := EncodeChangelogCell(changes)
	want := "2024-03-04T09:00:00Z|To Do|In Progress;2024-03-08T17:00:00Z|In Progress|Done"
	if got != want {
		t.Errorf("EncodeChangelogCell = %q, want %q", got, want)
	}
}

func TestParseChangelogCellEmpty(t *testing.T) {
	for _, cell := range []string{"", "   "} {
		changes, err := ParseChangelogCell(cell)
		if err != nil {
			t.Errorf("ParseChangelogCell(%q) failed: %v", cell, err)
		}
		if len(changes) != 0 {
			t.Errorf("ParseChangelogCell(%q) = %v, want none", cell, changes)
		}
	}
}

func TestParseChangelogCellTrailingSeparator(t *testing.T) {
	changes, err := ParseChangelogCell("2024-03-04T10:00:00Z|To Do|Done;")
	if err != nil {
		t.Fatalf("trailing separator should be tolerated: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
}

func TestParseChangelogCellErrors(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string
	}{
		{
			name: "bad timestamp",
			cell: "yesterday|To Do|Done",
			want: "bad timestamp",
		},
		{
			name: "too few fields",
			cell: "2024-03-04T10:00:00Z|Done",
			want: "2 fields",
		},
		{
			name: "too many fields",
			cell: "2024-03-04T10:00:00Z|A|B|C",
			want: "too many fields",
		},
		{
			name: "dangling escape",
			cell: `2024-03-04T10:00:00Z|A|B\`,
			want: "dangling escape",
		},
		{
			name: "second entry broken",
			cell: "2024-03-04T10:00:00Z|A|B;2024-03-05T10:00:00Z|C",
			want: "entry 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChangelogCell(tt.cell)
			if err == nil {
				t.Fatalf("ParseChangelogCell(%q) expected error", tt.cell)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
