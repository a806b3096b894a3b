package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

// GeneratorConfig shapes the synthetic dataset.
type GeneratorConfig struct {
	Scenario     string // "mild", "chaos" or "drift"
	Distribution string // "uniform" or "weibull"
	Count        int
	Seed         int64 // 0 seeds from the clock
	Now          time.Time
}

// Estimates follow the usual planning point scale so correlation against
// cycle time has something realistic to chew on.
var pointScale = []float64{1, 2, 3, 5, 8, 13}

// Generate builds synthetic work items whose histories follow the
// configured scenario: mild is a stable process, chaos adds fat-tailed
// outliers, drift degrades steadily over the arrival sequence.
func Generate(cfg GeneratorConfig) ([]*workitem.WorkItem, error) {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Now.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// One arrival per day, the last one today.
	tArrival := cfg.Now.AddDate(0, 0, -cfg.Count)

	items := make([]*workitem.WorkItem, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		arrival := tArrival.Add(time.Duration(i*24) * time.Hour)
		totalDuration := sampleDuration(cfg, rng, i)

		item := workitem.WorkItem{
			Key:      fmt.Sprintf("MOCK-%d", i+1),
			Type:     sampleType(cfg, rng),
			Title:    fmt.Sprintf("Synthetic item %d", i+1),
			Created:  arrival,
			Estimate: sampleEstimate(rng, totalDuration),
		}

		// Transitions sit at fixed fractions of the item's lifetime; a
		// transition landing in the future has not happened yet, so the
		// item is still in flight.
		tInProgress := arrival.Add(days(totalDuration * 0.20))
		tInReview := arrival.Add(days(totalDuration * 0.75))
		tDone := arrival.Add(days(totalDuration))

		if tInProgress.Before(cfg.Now) {
			item.Changes = append(item.Changes, workitem.StatusChange{
				Timestamp: tInProgress, FromStatus: "To Do", ToStatus: "In Progress",
			})
		}
		if tInReview.Before(cfg.Now) {
			item.Changes = append(item.Changes, workitem.StatusChange{
				Timestamp: tInReview, FromStatus: "In Progress", ToStatus: "In Review",
			})
		}
		if tDone.Before(cfg.Now) {
			item.Changes = append(item.Changes, workitem.StatusChange{
				Timestamp: tDone, FromStatus: "In Review", ToStatus: "Done",
			})
			resolved := tDone
			item.Resolved = &resolved
		}

		sealed, err := workitem.New(item)
		if err != nil {
			return nil, fmt.Errorf("generated item %s is invalid: %w", item.Key, err)
		}
		items = append(items, sealed)
	}
	return items, nil
}

func sampleDuration(cfg GeneratorConfig, rng *rand.Rand, i int) float64 {
	// Weibull parameters target a ~5 day in-progress residency in the
	// mild scenario.
	k, lambda := 2.5, 9.5
	switch cfg.Scenario {
	case "chaos":
		k = 0.8
		if cfg.Distribution == "weibull" {
			lambda = 12.0
		}
	case "drift":
		ratio := float64(i) / float64(cfg.Count)
		k = 2.5 - (1.7 * ratio) // shift 2.5 -> 0.8
		lambda = 9.5 + (2.5 * ratio)
	}

	if cfg.Distribution == "weibull" {
		return weibullSample(rng, k, lambda)
	}

	// Uniform baseline: 6-11 days end to end.
	duration := 6.0 + rng.Float64()*5.0
	if cfg.Scenario == "chaos" && rng.Float64() < 0.2 {
		duration += 10 + rng.Float64()*15 // controlled black swans
	}
	if cfg.Scenario == "drift" && i > cfg.Count/2 {
		duration *= 2.0
	}
	return duration
}

func sampleType(cfg GeneratorConfig, rng *rand.Rand) string {
	bugShare := 0.15
	if cfg.Scenario == "chaos" {
		bugShare = 0.35
	}
	roll := rng.Float64()
	switch {
	case roll < bugShare:
		return "Bug"
	case roll < bugShare+0.25:
		return "Task"
	default:
		return "Story"
	}
}

// sampleEstimate bands the true duration onto the point scale with one
// step of noise, leaving a share of items unestimated.
func sampleEstimate(rng *rand.Rand, duration float64) *float64 {
	if rng.Float64() < 0.15 {
		return nil
	}
	band := int(duration/4) + rng.Intn(3) - 1
	if band < 0 {
		band = 0
	}
	if band >= len(pointScale) {
		band = len(pointScale) - 1
	}
	estimate := pointScale[band]
	return &estimate
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

func days(d float64) time.Duration {
	return time.Duration(d * 24 * float64(time.Hour))
}
