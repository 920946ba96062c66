package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pta-xyz/go-pta/eventlog"
)

func events(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	runID := fs.String("run", "", "Show only the given run")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pta events <log.csv|log.jsonl> [options]

Print the timeline of an exported event log.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("log file required")
	}

	filename := fs.Arg(0)
	var log *eventlog.Log
	var err error
	switch {
	case strings.HasSuffix(filename, ".csv"):
		log, err = eventlog.ParseCSV(filename)
	case strings.HasSuffix(filename, ".jsonl"):
		log, err = eventlog.ParseJSONL(filename)
	default:
		return fmt.Errorf("unknown log format for %s (use .csv or .jsonl)", filename)
	}
	if err != nil {
		return err
	}

	ids := log.RunIDs()
	if *runID != "" {
		if _, ok := log.Runs[*runID]; !ok {
			return fmt.Errorf("run %s not found (have %v)", *runID, ids)
		}
		ids = []string{*runID}
	}

	fmt.Printf("%d runs, %d events, edges %v\n\n", log.NumRuns(), log.NumEvents(), log.Edges())
	for _, id := range ids {
		for _, event := range log.Runs[id] {
			fmt.Println(event)
		}
		fmt.Println()
	}
	return nil
}
