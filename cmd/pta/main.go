package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "validate":
		if err := validate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "simulate":
		if err := simulate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "batch":
		if err := batch(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "sweep":
		if err := sweep(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "events":
		if err := events(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "runs":
		if err := runs(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("pta version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pta - probabilistic timed automata modeling and simulation tool

Usage:
  pta <command> [options]

Commands:
  validate   Validate a model file and print its structure
  simulate   Run one simulation and print or export the trace
  batch      Run a Monte Carlo batch and aggregate the outcomes
  sweep      Compare delay policies over identical seeds
  events     Show the timeline of an exported event log
  runs       List simulation runs stored in a database
  help       Show this help message
  version    Show version information

Examples:
  # Validate a model
  pta validate model.json

  # Run one simulation for up to 100 steps
  pta simulate model.json --seed 42 --steps 100

  # Persist the trace to SQLite and export it as CSV
  pta simulate model.json --seed 42 --steps 100 --db runs.db --output trace.csv

  # Run 1000 simulations and save the aggregate
  pta batch model.json --runs 1000 --steps 100 --output batch.json

For command-specific help, run:
  pta <command> --help`)
}
