package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

// columns is the canonical order the writer produces. The reader accepts
// any order and ignores columns it does not know.
var columns = []string{
	"issue_key",
	"issue_type",
	"issue_title",
	"created",
	"resolved",
	"estimate",
	"changelog",
}

// anonymizedTitle replaces issue titles when anonymizing.
const anonymizedTitle = "Anonymized Title"

// ReadStats summarizes what the reader kept and dropped.
type ReadStats struct {
	Rows       int
	Skipped    int
	Duplicates int
}

// WriteOptions adjusts the writer's output.
type WriteOptions struct {
	// Anonymize replaces the key's project prefix with ANON and blanks
	// out titles before writing.
	Anonymize bool
}

// Read loads work items from a dataset file.
func Read(path string) ([]*workitem.WorkItem, ReadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ReadStats{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	items, stats, err := ReadFrom(file)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	log.Info().
		Str("path", path).
		Int("items", len(items)).
		Int("skipped", stats.Skipped).
		Int("duplicates", stats.Duplicates).
		Msg("Loaded dataset")
	return items, stats, nil
}

// ReadFrom parses dataset rows into validated work items. Malformed rows
// are logged with their row number and skipped; duplicate keys collapse
// to the last occurrence.
func ReadFrom(r io.Reader) ([]*workitem.WorkItem, ReadStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, ReadStats{}, fmt.Errorf("failed to read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range columns {
		if _, ok := idx[name]; !ok {
			return nil, ReadStats{}, fmt.Errorf("dataset header is missing column %q", name)
		}
	}

	var (
		stats ReadStats
		items []*workitem.WorkItem
		byKey = make(map[string]int)
		row   = 1
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			log.Warn().Int("row", row).Err(err).Msg("Skipping malformed dataset row")
			stats.Skipped++
			continue
		}
		stats.Rows++
		item, err := parseRow(record, idx)
		if err != nil {
			log.Warn().Int("row", row).Err(err).Msg("Skipping malformed dataset row")
			stats.Skipped++
			continue
		}
		if pos, ok := byKey[item.Key]; ok {
			items[pos] = item
			stats.Duplicates++
			continue
		}
		byKey[item.Key] = len(items)
		items = append(items, item)
	}
	return items, stats, nil
}

func parseRow(record []string, idx map[string]int) (*workitem.WorkItem, error) {
	get := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	key := get("issue_key")
	if key == "" {
		return nil, fmt.Errorf("missing issue_key")
	}
	created, err := time.Parse(time.RFC3339, get("created"))
	if err != nil {
		return nil, fmt.Errorf("bad created timestamp: %w", err)
	}

	item := workitem.WorkItem{
		Key:     key,
		Type:    get("issue_type"),
		Title:   get("issue_title"),
		Created: created.UTC(),
	}
	if raw := get("resolved"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("bad resolved timestamp: %w", err)
		}
		utc := ts.UTC()
		item.Resolved = &utc
	}
	if raw := get("estimate"); raw != "" {
		estimate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad estimate: %w", err)
		}
		item.Estimate = &estimate
	}
	if item.Changes, err = ParseChangelogCell(get("changelog")); err != nil {
		return nil, err
	}
	return workitem.New(item)
}

// Merge folds updates into an existing item list with the same keep-last
// rule the reader applies: an updated key replaces the original in place,
// new keys append in order.
func Merge(existing, updates []*workitem.WorkItem) []*workitem.WorkItem {
	merged := make([]*workitem.WorkItem, len(existing), len(existing)+len(updates))
	copy(merged, existing)
	byKey := make(map[string]int, len(merged))
	for i, item := range merged {
		byKey[item.Key] = i
	}
	for _, item := range updates {
		if pos, ok := byKey[item.Key]; ok {
			merged[pos] = item
			continue
		}
		byKey[item.Key] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// Write persists work items to a dataset file. The file appears
// atomically: rows go to a temp file first, renamed over the target only
// after a clean flush.
func Write(path string, items []*workitem.WorkItem, opts WriteOptions) error {
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp dataset file: %w", err)
	}

	if err := WriteTo(file, items, opts); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close dataset file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename dataset file: %w", err)
	}

	log.Info().Str("path", path).Int("items", len(items)).Msg("Dataset saved")
	return nil
}

// WriteTo writes the canonical column order to w.
func WriteTo(w io.Writer, items []*workitem.WorkItem, opts WriteOptions) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, item := range items {
		if err := writer.Write(encodeRow(item, opts)); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", item.Key, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush dataset: %w", err)
	}
	return nil
}

func encodeRow(item *workitem.WorkItem, opts WriteOptions) []string {
	key, title := item.Key, item.Title
	if opts.Anonymize {
		key = anonymizeKey(key)
		title = anonymizedTitle
	}

	resolved := ""
	if item.Resolved != nil {
		resolved = item.Resolved.UTC().Format(time.RFC3339)
	}
	estimate := ""
	if item.Estimate != nil {
		estimate = strconv.FormatFloat(*item.Estimate, 'f', -1, 64)
	}

	return []string{
		key,
		item.Type,
		title,
		item.Created.UTC().Format(time.RFC3339),
		resolved,
		estimate,
		EncodeChangelogCell(item.Changes),
	}
}

// anonymizeKey swaps the project prefix for ANON, keeping the issue
// number so histories stay distinguishable.
func anonymizeKey(key string) string {
	if i := strings.LastIndex(key, "-"); i >= 0 {
		return "ANON" + key[i:]
	}
	return "ANON"
}
