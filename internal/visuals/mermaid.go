package visuals

import (
	"fmt"
	"math"
	"strings"

	"github.com/eamoe/jira-flow-metrics/internal/metrics"
	"github.com/eamoe/jira-flow-metrics/internal/simulation"
)

// GenerateCycleRunChart creates a Mermaid xychart-beta plotting cycle time per
// completion with its trailing moving average.
func GenerateCycleRunChart(rows []metrics.RunChartRow) string {
	if len(rows) == 0 {
		return ""
	}

	var labels []string
	var values []string
	var averages []string

	// Subsample points if the chart is too wide for Mermaid's layout engine.
	// Typically Mermaid xychart starts overflowing/overlapping text around 60 points
	subsampleRate := 1
	if len(rows) > 60 {
		subsampleRate = int(math.Ceil(float64(len(rows)) / 60.0))
	}

	maxY := 0.0
	for i, row := range rows {
		if float64(row.CycleDays) > maxY {
			maxY = float64(row.CycleDays)
		}
		if i%subsampleRate == 0 || i == len(rows)-1 {
			labels = append(labels, fmt.Sprintf("\"%s\"", row.CompletedAt.Format("Jan02")))
			values = append(values, fmt.Sprintf("%d", row.CycleDays))
			averages = append(averages, fmt.Sprintf("%.1f", row.MovingAvg))
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Cycle Time Run Chart\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Cycle Time (Days)\" 0 --> %d\n", int(math.Ceil(maxY*1.2))+1))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(averages, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateThroughputChart creates a Mermaid bar chart of completed items per
// rollup bucket.
func GenerateThroughputChart(buckets []metrics.Bucket) string {
	if len(buckets) == 0 {
		return ""
	}

	var labels []string
	var values []string

	maxVal := 0
	for _, bucket := range buckets {
		labels = append(labels, fmt.Sprintf("\"%s\"", bucket.Label))
		values = append(values, fmt.Sprintf("%d", bucket.Count))
		if bucket.Count > maxVal {
			maxVal = bucket.Count
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Throughput\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Items Completed\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateWIPChart creates a Mermaid line chart of items in flight per day.
func GenerateWIPChart(points []metrics.WIPPoint) string {
	if len(points) == 0 {
		return ""
	}

	var labels []string
	var values []string

	subsampleRate := 1
	if len(points) > 60 {
		subsampleRate = int(math.Ceil(float64(len(points)) / 60.0))
	}

	maxVal := 0
	for i, point := range points {
		if point.Count > maxVal {
			maxVal = point.Count
		}
		if i%subsampleRate == 0 || i == len(points)-1 {
			labels = append(labels, fmt.Sprintf("\"%s\"", point.Date.Format("Jan02")))
			values = append(values, fmt.Sprintf("%d", point.Count))
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Work In Progress\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Active Items\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateSurvivalChart creates a Mermaid line chart of the fraction of
// started items that reached each age.
func GenerateSurvivalChart(points []metrics.SurvivalPoint) string {
	if len(points) == 0 {
		return ""
	}

	var labels []string
	var values []string

	subsampleRate := 1
	if len(points) > 60 {
		subsampleRate = int(math.Ceil(float64(len(points)) / 60.0))
	}

	for i, point := range points {
		if i%subsampleRate == 0 || i == len(points)-1 {
			labels = append(labels, fmt.Sprintf("\"%d\"", point.AgeDays))
			values = append(values, fmt.Sprintf("%.1f", point.Fraction*100))
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Survival by Age\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Surviving (%)\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateForecastChart creates a Mermaid bar chart of the forecast outcome
// distribution percentiles.
func GenerateForecastChart(result *simulation.Result) string {
	if result == nil {
		return ""
	}

	yAxisLabel := "Items Completed"
	if result.Mode == simulation.ModeHowLong {
		yAxisLabel = "Days to Target"
	}

	labels := []string{"\"p50\"", "\"p75\"", "\"p85\"", "\"p95\""}
	values := []string{
		fmt.Sprintf("%d", result.P50),
		fmt.Sprintf("%d", result.P75),
		fmt.Sprintf("%d", result.P85),
		fmt.Sprintf("%d", result.P95),
	}

	maxVal := result.P50
	for _, v := range []int{result.P75, result.P85, result.P95} {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Monte Carlo Forecast\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"%s\" 0 --> %d\n", yAxisLabel, int(math.Ceil(float64(maxVal)*1.1))+1))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}
