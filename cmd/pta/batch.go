package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/pta-xyz/go-pta/pta"
	"github.com/pta-xyz/go-pta/results"
)

func batch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	runs := fs.Int("runs", 100, "Number of simulation runs")
	seed := fs.Int64("seed", 1, "Base seed; run i uses seed+i")
	maxSteps := fs.Int("steps", 0, "Maximum number of steps per run")
	maxTime := fs.Float64("time", 0, "Maximum simulated time per run")
	policyName := fs.String("policy", "uniform", "Delay policy: uniform or earliest")
	parallel := fs.Int("parallel", 0, "Worker count (default GOMAXPROCS)")
	output := fs.String("output", "", "Save the batch as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pta batch <model.json> [options]

Run a Monte Carlo batch and print aggregate statistics. At least one of
--steps and --time is required.

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

	policy, err := policyByName(*policyName)
	if err != nil {
		return err
	}

	auto, err := pta.LoadModel(fs.Arg(0))
	if err != nil {
		return err
	}

	b, err := results.RunBatch(auto, results.BatchOptions{
		Runs:        *runs,
		Seed:        *seed,
		MaxSteps:    *maxSteps,
		MaxTime:     *maxTime,
		Parallelism: *parallel,
		Policy:      policy,
	})
	if err != nil {
		return err
	}

	printSummary(b)

	if *output != "" {
		if err := results.WriteJSONFile(*output, b); err != nil {
			return err
		}
		fmt.Printf("\nSaved batch to %s\n", *output)
	}
	return nil
}

func printSummary(b *results.Batch) {
	s := b.Summary
	fmt.Printf("Batch of %d runs (policy %s, base seed %d)\n", s.Runs, b.Policy, b.BaseSeed)
	if s.Failures > 0 {
		fmt.Printf("  failures:      %d\n", s.Failures)
	}
	fmt.Printf("  deadlock rate: %.3f\n", s.DeadlockRate)
	fmt.Printf("  steps:         min %g, median %g, mean %.3g, max %g (std %.3g)\n",
		s.Steps.Min, s.Steps.Median, s.Steps.Mean, s.Steps.Max, s.Steps.Std)
	fmt.Printf("  total time:    min %.4g, median %.4g, mean %.4g, max %.4g (std %.3g)\n",
		s.TotalTime.Min, s.TotalTime.Median, s.TotalTime.Mean, s.TotalTime.Max, s.TotalTime.Std)

	fmt.Println("  final locations:")
	for _, name := range sortedKeys(s.FinalLocations) {
		fmt.Printf("    %-12s %.3f\n", name, s.FinalLocations[name])
	}
	fmt.Println("  time occupancy:")
	for _, name := range sortedKeys(s.Occupancy) {
		fmt.Printf("    %-12s %.3f\n", name, s.Occupancy[name])
	}
	fmt.Println("  edge firings per run:")
	for _, label := range sortedKeys(s.EdgeFrequency) {
		fmt.Printf("    %-12s %.3f\n", label, s.EdgeFrequency[label])
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
