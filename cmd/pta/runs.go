package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pta-xyz/go-pta/store"
)

func runs(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite database path (required)")
	modelCID := fs.String("model", "", "Show only runs of the given model CID")
	limit := fs.Int("limit", 20, "Maximum number of runs to show")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pta runs --db <runs.db> [options]

List stored simulation runs, newest first.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		fs.Usage()
		return fmt.Errorf("--db is required")
	}

	db, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := db.ListRuns(context.Background(), store.RunFilter{
		ModelCID: *modelCID,
		Limit:    *limit,
	})
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	fmt.Printf("%-36s %-10s %-9s %-6s %-10s %-10s %s\n",
		"id", "seed", "policy", "steps", "time", "final", "deadlocked")
	for _, run := range list {
		fmt.Printf("%-36s %-10d %-9s %-6d %-10.4g %-10s %v\n",
			run.ID, run.Seed, run.Policy, run.Steps, run.TotalTime,
			run.FinalLocation, run.Deadlocked)
	}
	return nil
}
