package results

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/pta-xyz/go-pta/pta"
	"github.com/pta-xyz/go-pta/sim"
)

// BatchOptions configures a Monte Carlo batch. Run i uses seed Seed+i, so a
// batch is reproducible from its base seed regardless of parallelism.
type BatchOptions struct {
	Runs        int
	Seed        int64
	MaxSteps    int
	MaxTime     float64
	Parallelism int             // defaults to GOMAXPROCS
	Policy      sim.DelayPolicy // defaults to sim.UniformDelay
}

// RunBatch executes Runs independent simulations of the automaton and
// aggregates the outcomes. Each run gets its own simulator; the automaton is
// shared read-only across workers.
func RunBatch(auto *pta.Automaton, opts BatchOptions) (*Batch, error) {
	if opts.Runs <= 0 {
		return nil, fmt.Errorf("batch requires at least one run")
	}
	if opts.MaxSteps <= 0 && opts.MaxTime <= 0 {
		return nil, fmt.Errorf("batch requires MaxSteps or MaxTime")
	}

	policy := opts.Policy
	if policy == nil {
		policy = sim.UniformDelay{}
	}
	workers := opts.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > opts.Runs {
		workers = opts.Runs
	}

	seeds := make(chan int64, opts.Runs)
	for i := 0; i < opts.Runs; i++ {
		seeds <- opts.Seed + int64(i)
	}
	close(seeds)

	out := make(chan RunResult, opts.Runs)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seed := range seeds {
				out <- runOne(auto, seed, policy, opts)
			}
		}()
	}
	wg.Wait()
	close(out)

	batch := &Batch{
		Version:   SchemaVersion,
		ModelCID:  auto.CID(),
		Policy:    policy.Name(),
		BaseSeed:  opts.Seed,
		Timestamp: time.Now().UTC(),
		Results:   make([]RunResult, 0, opts.Runs),
	}
	for result := range out {
		batch.Results = append(batch.Results, result)
	}
	sort.Slice(batch.Results, func(i, j int) bool {
		return batch.Results[i].Seed < batch.Results[j].Seed
	})
	batch.Summary = summarize(batch.Results)
	return batch, nil
}

// runOne executes a single run and flattens its trace into a RunResult.
func runOne(auto *pta.Automaton, seed int64, policy sim.DelayPolicy, opts BatchOptions) RunResult {
	result := RunResult{
		Seed:         seed,
		EdgeCounts:   make(map[string]int),
		LocationTime: make(map[string]float64),
	}

	simulator, err := sim.New(auto, seed, sim.WithDelayPolicy(policy))
	if err != nil {
		result.Err = err.Error()
		return result
	}
	trace, err := simulator.Run(sim.RunOptions{MaxSteps: opts.MaxSteps, MaxTime: opts.MaxTime})
	if err != nil {
		result.Err = err.Error()
		return result
	}

	final := trace.Final()
	result.Steps = final.Step
	result.TotalTime = final.Time
	result.FinalLocation = final.Location
	result.Deadlocked = trace.Deadlocked()

	// Each step's delay is time spent in the step's source location.
	snapshot := trace.Snapshot()
	for i := 1; i < len(snapshot); i++ {
		result.LocationTime[snapshot[i-1].Config.Location] += snapshot[i].Delay
		if snapshot[i].Edge != "" {
			result.EdgeCounts[snapshot[i].Edge]++
		}
	}
	return result
}
