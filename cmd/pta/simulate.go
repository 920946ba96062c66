package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pta-xyz/go-pta/eventlog"
	"github.com/pta-xyz/go-pta/pta"
	"github.com/pta-xyz/go-pta/sim"
	"github.com/pta-xyz/go-pta/store"
)

func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	seed := fs.Int64("seed", 1, "Random seed")
	maxSteps := fs.Int("steps", 0, "Maximum number of steps")
	maxTime := fs.Float64("time", 0, "Maximum simulated time")
	policyName := fs.String("policy", "uniform", "Delay policy: uniform or earliest")
	output := fs.String("output", "", "Export the trace (.csv or .jsonl)")
	dbPath := fs.String("db", "", "Persist the run to a SQLite database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pta simulate <model.json> [options]

Run one simulation. At least one of --steps and --time is required.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Run until deadlock or 100 steps
  pta simulate model.json --seed 42 --steps 100

  # Export the trace as JSONL
  pta simulate model.json --steps 100 --output trace.jsonl
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("model file required")
	}
	if *maxSteps <= 0 && *maxTime <= 0 {
		return fmt.Errorf("at least one of --steps and --time is required")
	}

	policy, err := policyByName(*policyName)
	if err != nil {
		return err
	}

	auto, err := pta.LoadModel(fs.Arg(0))
	if err != nil {
		return err
	}

	simulator, err := sim.New(auto, *seed, sim.WithDelayPolicy(policy))
	if err != nil {
		return err
	}
	trace, err := simulator.Run(sim.RunOptions{MaxSteps: *maxSteps, MaxTime: *maxTime})
	if err != nil {
		return err
	}

	printTrace(trace)

	runID := fmt.Sprintf("seed-%d", *seed)
	if *dbPath != "" {
		db, err := store.NewSQLiteStore(*dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := store.RecordTrace(context.Background(), db, auto, simulator)
		if err != nil {
			return err
		}
		runID = run.ID
		fmt.Printf("\nStored run %s in %s\n", run.ID, *dbPath)
	}

	if *output != "" {
		log := eventlog.NewLog()
		log.AddTrace(runID, trace)

		switch {
		case strings.HasSuffix(*output, ".csv"):
			err = eventlog.WriteCSVFile(*output, log)
		case strings.HasSuffix(*output, ".jsonl"):
			err = eventlog.WriteJSONLFile(*output, log)
		default:
			err = fmt.Errorf("unknown output format for %s (use .csv or .jsonl)", *output)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d events to %s\n", trace.Len(), *output)
	}
	return nil
}

func printTrace(trace *sim.Trace) {
	fmt.Printf("%-5s %-10s %-15s %-10s %-10s %s\n", "step", "delay", "edge", "location", "time", "clocks")
	for _, entry := range trace.Snapshot() {
		edge := entry.Edge
		if edge == "" {
			edge = "-"
		}
		fmt.Printf("%-5d %-10.4g %-15s %-10s %-10.4g %v\n",
			entry.Config.Step, entry.Delay, edge, entry.Config.Location,
			entry.Config.Time, entry.Config.Valuation)
	}

	final := trace.Final()
	outcome := "bound reached"
	if trace.Deadlocked() {
		outcome = "deadlocked"
	}
	fmt.Printf("\n%d steps, total time %.4g, final location %s (%s)\n",
		final.Step, final.Time, final.Location, outcome)
}

func policyByName(name string) (sim.DelayPolicy, error) {
	switch name {
	case "uniform":
		return sim.UniformDelay{}, nil
	case "earliest":
		return sim.EarliestDelay{}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q (use uniform or earliest)", name)
	}
}
