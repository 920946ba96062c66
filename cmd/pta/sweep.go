package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pta-xyz/go-pta/pta"
	"github.com/pta-xyz/go-pta/results"
	"github.com/pta-xyz/go-pta/sim"
)

func sweep(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	runs := fs.Int("runs", 100, "Number of simulation runs per policy")
	seed := fs.Int64("seed", 1, "Base seed, shared by every policy")
	maxSteps := fs.Int("steps", 0, "Maximum number of steps per run")
	maxTime := fs.Float64("time", 0, "Maximum simulated time per run")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pta sweep <model.json> [options]

Run one batch per delay policy over identical seeds and compare the
aggregates. At least one of --steps and --time is required.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("model file required")
	}

	auto, err := pta.LoadModel(fs.Arg(0))
	if err != nil {
		return err
	}

	policies := []sim.DelayPolicy{sim.UniformDelay{}, sim.EarliestDelay{}}
	swept, err := results.SweepPolicies(auto, policies, results.BatchOptions{
		Runs:     *runs,
		Seed:     *seed,
		MaxSteps: *maxSteps,
		MaxTime:  *maxTime,
	})
	if err != nil {
		return err
	}

	for _, policy := range policies {
		printSummary(swept.Batches[policy.Name()])
		fmt.Println()
	}
	return nil
}
