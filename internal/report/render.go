package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/eamoe/jira-flow-metrics/internal/metrics"
	"github.com/eamoe/jira-flow-metrics/internal/simulation"
)

var (
	titleColor  = color.New(color.FgMagenta, color.Bold)
	headerColor = color.New(color.FgCyan, color.Bold)
	warnColor   = color.New(color.FgYellow, color.Bold)
)

const detailLimit = 20

// WriteJSON renders any report value as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderTerminal writes the analysis report as colored text tables.
func RenderTerminal(w io.Writer, report *metrics.FlowReport) {
	titleColor.Fprintln(w, "Flow Metrics Report")
	fmt.Fprintf(w, "Generated %s\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"))
	if report.Since != nil || report.Until != nil {
		fmt.Fprintf(w, "Window %s .. %s\n", fmtDate(report.Since), fmtDate(report.Until))
	}
	calendarNote := "calendar days"
	if report.ExcludeWeekends {
		calendarNote = "working days, weekends excluded"
	}
	fmt.Fprintf(w, "Items %d (%d completed, %d open), %d skipped, %s\n",
		report.ItemCount, report.CompletedCount, report.OpenCount, report.SkippedCount, calendarNote)

	if report.LeadTime != nil || report.CycleTime != nil {
		headerColor.Fprintln(w, "\nDurations (days)")
		tw := newTable(w)
		fmt.Fprintln(tw, "view\tcount\tmean\tp50\tp75\tp85\tp95")
		writeStatsRow(tw, "lead", report.LeadTime)
		writeStatsRow(tw, "cycle", report.CycleTime)
		tw.Flush()
	}

	if report.Throughput != nil {
		headerColor.Fprintln(w, "\nThroughput (weekly)")
		tw := newTable(w)
		fmt.Fprintln(tw, "week\tcompleted")
		buckets := metrics.Rollup(*report.Throughput, metrics.GranularityWeek)
		if len(buckets) > 8 {
			buckets = buckets[len(buckets)-8:]
		}
		for _, bucket := range buckets {
			fmt.Fprintf(tw, "%s\t%d\n", bucket.Label, bucket.Count)
		}
		fmt.Fprintf(tw, "total\t%d\n", report.Throughput.Total())
		tw.Flush()
	}

	if len(report.WIP) > 0 {
		current := report.WIP[len(report.WIP)-1]
		peak := 0
		for _, point := range report.WIP {
			if point.Count > peak {
				peak = point.Count
			}
		}
		headerColor.Fprintln(w, "\nWork in progress")
		fmt.Fprintf(w, "Current %d, peak %d over %d days\n", current.Count, peak, len(report.WIP))
	}

	if len(report.Survival) > 0 {
		headerColor.Fprintln(w, "\nSurvival curve")
		tw := newTable(w)
		fmt.Fprintln(tw, "age (days)\tshare reaching age")
		for _, point := range sampleSurvival(report.Survival, 10) {
			fmt.Fprintf(tw, "%d\t%.0f%%\n", point.AgeDays, point.Fraction*100)
		}
		tw.Flush()
	}

	if report.Correlation != nil {
		headerColor.Fprintln(w, "\nEstimate correlation")
		fmt.Fprintf(w, "Pearson r = %.2f against %s time over %d pairs\n",
			report.Correlation.Coefficient, report.Correlation.Kind, report.Correlation.Pairs)
	}

	if len(report.Details) > 0 {
		headerColor.Fprintln(w, "\nItems")
		tw := newTable(w)
		fmt.Fprintln(tw, "key\ttype\tstatus\tcreated\tcompleted\tlead\tcycle")
		rows := report.Details
		if len(rows) > detailLimit {
			rows = rows[:detailLimit]
		}
		for _, row := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				row.Key, row.Type, row.Status,
				row.Created.Format("2006-01-02"),
				fmtDate(row.CompletedAt),
				fmtDays(row.LeadDays), fmtDays(row.CycleDays))
		}
		tw.Flush()
		if len(report.Details) > detailLimit {
			fmt.Fprintf(w, "... and %d more\n", len(report.Details)-detailLimit)
		}
	}

	for _, warning := range report.Warnings {
		warnColor.Fprintf(w, "\nWarning: %s\n", warning)
	}
}

// RenderForecast writes a forecast result, with projected calendar dates
// when a start date applies.
func RenderForecast(w io.Writer, result *simulation.Result, dates *simulation.ForecastDates) {
	switch result.Mode {
	case simulation.ModeHowMany:
		titleColor.Fprintf(w, "Forecast: items completed in %d days\n", result.TargetDays)
	case simulation.ModeHowLong:
		titleColor.Fprintf(w, "Forecast: days to complete %d items\n", result.TargetItems)
	}
	fmt.Fprintf(w, "%d trials resampled from recent throughput\n", result.Trials)

	tw := newTable(w)
	if dates != nil {
		fmt.Fprintln(tw, "confidence\tdays\tdate")
		fmt.Fprintf(tw, "50%%\t%d\t%s\n", result.P50, dates.P50.Format("2006-01-02"))
		fmt.Fprintf(tw, "75%%\t%d\t%s\n", result.P75, dates.P75.Format("2006-01-02"))
		fmt.Fprintf(tw, "85%%\t%d\t%s\n", result.P85, dates.P85.Format("2006-01-02"))
		fmt.Fprintf(tw, "95%%\t%d\t%s\n", result.P95, dates.P95.Format("2006-01-02"))
	} else {
		unit := "items"
		if result.Mode == simulation.ModeHowLong {
			unit = "days"
		}
		fmt.Fprintf(tw, "confidence\t%s\n", unit)
		fmt.Fprintf(tw, "50%%\t%d\n", result.P50)
		fmt.Fprintf(tw, "75%%\t%d\n", result.P75)
		fmt.Fprintf(tw, "85%%\t%d\n", result.P85)
		fmt.Fprintf(tw, "95%%\t%d\n", result.P95)
	}
	tw.Flush()

	if result.Diverged > 0 {
		fmt.Fprintf(w, "%d trials censored at the simulation cap\n", result.Diverged)
	}
	for _, warning := range result.Warnings {
		warnColor.Fprintf(w, "Warning: %s\n", warning)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeStatsRow(w io.Writer, view string, stats *metrics.DurationStats) {
	if stats == nil {
		fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\t-\n", view)
		return
	}
	fmt.Fprintf(w, "%s\t%d\t%.1f\t%d\t%d\t%d\t%d\n",
		view, stats.Count, stats.Mean, stats.P50, stats.P75, stats.P85, stats.P95)
}

// sampleSurvival thins a long curve to at most limit evenly spaced points,
// always keeping the first and last.
func sampleSurvival(points []metrics.SurvivalPoint, limit int) []metrics.SurvivalPoint {
	if len(points) <= limit {
		return points
	}
	step := float64(len(points)-1) / float64(limit-1)
	sampled := make([]metrics.SurvivalPoint, 0, limit)
	for i := 0; i < limit; i++ {
		sampled = append(sampled, points[int(float64(i)*step)])
	}
	return sampled
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func fmtDays(days *int) string {
	if days == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *days)
}
