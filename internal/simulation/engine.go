package simulation

import (
	"fmt"
	"math/rand"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eamoe/jira-flow-metrics/internal/metrics"
)

const (
	// DefaultTrials balances percentile stability against compute cost.
	DefaultTrials = 10000

	// DefaultTrialCap bounds a single how-long trial. A trial that has
	// not cleared its backlog after this many simulated days is censored.
	DefaultTrialCap = 10000
)

// Engine resamples a historical daily throughput population to project
// future completions. Every simulated day draws uniformly with
// replacement from the population, so forecasts assume the historical
// process is stationary.
type Engine struct {
	samples  []int
	trials   int
	seed     *int64
	trialCap int
}

func NewEngine(samples []int) *Engine {
	return &Engine{
		samples:  slices.Clone(samples),
		trials:   DefaultTrials,
		trialCap: DefaultTrialCap,
	}
}

// SetTrials overrides the number of simulation trials.
func (e *Engine) SetTrials(n int) {
	if n > 0 {
		e.trials = n
	}
}

// SetSeed pins the random source for reproducible runs.
func (e *Engine) SetSeed(seed int64) {
	e.seed = &seed
}

// SetTrialCap overrides the day bound after which a how-long trial is
// abandoned.
func (e *Engine) SetTrialCap(days int) {
	if days > 0 {
		e.trialCap = days
	}
}

// HowManyByDate simulates how many items finish within the next days
// calendar slots. Each trial sums one throughput draw per slot.
func (e *Engine) HowManyByDate(days int) (*Result, error) {
	if days <= 0 {
		return nil, fmt.Errorf("forecast horizon must be at least one day, got %d", days)
	}
	if len(e.samples) == 0 {
		return nil, &metrics.InsufficientDataError{View: "forecast", Need: 1}
	}

	outcomes := e.runTrials(func(rng *rand.Rand) int {
		total := 0
		for d := 0; d < days; d++ {
			total += e.samples[rng.Intn(len(e.samples))]
		}
		return total
	})

	result := newResult(ModeHowMany, e.trials, outcomes)
	result.TargetDays = days
	return result, nil
}

// HowLongForItems simulates how many days it takes to complete a backlog
// of the given size. Each trial draws daily throughput until the
// cumulative sum reaches the backlog or the trial cap cuts it off.
func (e *Engine) HowLongForItems(items int) (*Result, error) {
	if items <= 0 {
		return nil, fmt.Errorf("backlog size must be at least one item, got %d", items)
	}
	if len(e.samples) == 0 {
		return nil, &metrics.InsufficientDataError{View: "forecast", Need: 1}
	}
	if total(e.samples) == 0 {
		// Resampling zeros can never clear the backlog.
		return nil, &ForecastDivergenceError{Target: items, Cap: e.trialCap}
	}

	outcomes := e.runTrials(func(rng *rand.Rand) int {
		days, remaining := 0, items
		for remaining > 0 {
			if days == e.trialCap {
				return e.trialCap + 1
			}
			days++
			remaining -= e.samples[rng.Intn(len(e.samples))]
		}
		return days
	})

	diverged := 0
	for i, days := range outcomes {
		if days > e.trialCap {
			diverged++
			outcomes[i] = e.trialCap
		}
	}
	if diverged == len(outcomes) {
		return nil, &ForecastDivergenceError{Target: items, Cap: e.trialCap}
	}

	result := newResult(ModeHowLong, e.trials, outcomes)
	result.TargetItems = items
	result.Diverged = diverged
	if diverged > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%d of %d trials did not finish within %d days and are censored at the cap",
			diverged, e.trials, e.trialCap))
	}
	return result, nil
}

// runTrials evaluates one outcome per trial and returns the outcomes
// indexed by trial. Each trial owns a private random source derived up
// front from the master seed, so results do not depend on how trials are
// scheduled across goroutines.
func (e *Engine) runTrials(trial func(rng *rand.Rand) int) []int {
	master := time.Now().UnixNano()
	if e.seed != nil {
		master = *e.seed
	}
	src := rand.New(rand.NewSource(master))
	seeds := make([]int64, e.trials)
	for i := range seeds {
		seeds[i] = src.Int63()
	}

	outcomes := make([]int, len(seeds))
	workers := runtime.GOMAXPROCS(0)
	chunk := (len(seeds) + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < len(seeds); start += chunk {
		end := min(start+chunk, len(seeds))
		g.Go(func() error {
			for i := start; i < end; i++ {
				outcomes[i] = trial(rand.New(rand.NewSource(seeds[i])))
			}
			return nil
		})
	}
	// The trial closures never fail.
	_ = g.Wait()

	return outcomes
}

func total(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum
}
