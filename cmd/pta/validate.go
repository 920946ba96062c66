package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pta-xyz/go-pta/pta"
)

func validate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pta validate <model.json>

Validate a model file. Prints every defect found, or the model structure
and content identifier when the model is valid.
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
	var verr *pta.ValidationError
	if errors.As(err, &verr) {
		fmt.Printf("Model is invalid (%d issues):\n", len(verr.Issues))
		for _, issue := range verr.Issues {
			fmt.Printf("  [%s/%s] %s", issue.Severity, issue.Category, issue.Message)
			if len(issue.Location) > 0 {
				fmt.Printf(" (at %s)", strings.Join(issue.Location, ", "))
			}
			fmt.Println()
			if issue.Suggestion != "" {
				fmt.Printf("      suggestion: %s\n", issue.Suggestion)
			}
		}
		return fmt.Errorf("validation failed")
	}
	if err != nil {
		return err
	}

	fmt.Println("Model is valid.")
	fmt.Printf("  CID:       %s\n", auto.CID())
	fmt.Printf("  Clocks:    %v\n", auto.Clocks())
	fmt.Printf("  Initial:   %s\n", auto.Initial())
	fmt.Printf("  Locations: %d\n", len(auto.Locations()))
	for _, loc := range auto.Locations() {
		edges := auto.Edges(loc.Name)
		marker := ""
		if auto.IsTerminal(loc.Name) {
			marker = " (terminal)"
		}
		fmt.Printf("    %s: invariant %s, %d edges%s\n", loc.Name, loc.Invariant, len(edges), marker)
		for _, e := range edges {
			fmt.Printf("      %s: guard %s, weight %g, %d outcomes\n",
				e.Label, e.Guard, e.Weight, len(e.Outcomes))
		}
	}
	return nil
}
