package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/eamoe/jira-flow-metrics/cmd/mockgen/engine"
	"github.com/eamoe/jira-flow-metrics/internal/dataset"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, drift")
	distribution := flag.String("distribution", "uniform", "Distribution to use: uniform, weibull")
	out := flag.String("out", "./mock_issues.csv", "Dataset CSV to write")
	count := flag.Int("count", 200, "Number of items to generate")
	seed := flag.Int64("seed", 0, "Random seed, 0 uses the clock")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Count:        *count,
		Seed:         *seed,
		Now:          time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Count: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Count, *out)

	items, err := engine.Generate(cfg)
	if err != nil {
		fmt.Printf("Failed to generate mock data: %v\n", err)
		os.Exit(1)
	}

	if err := dataset.Write(*out, items, dataset.WriteOptions{}); err != nil {
		fmt.Printf("Failed to save mock dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
