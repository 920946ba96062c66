// Package results runs Monte Carlo batches of simulations and aggregates
// their outcomes into summary statistics.
package results

import (
	"math"
	"sort"
	"time"
)

// SchemaVersion identifies the batch result format.
const SchemaVersion = "1.0"

// RunResult captures one simulation run within a batch.
type RunResult struct {
	Seed          int64              `json:"seed"`
	Steps         int                `json:"steps"`
	TotalTime     float64            `json:"total_time"`
	FinalLocation string             `json:"final_location"`
	Deadlocked    bool               `json:"deadlocked"`
	EdgeCounts    map[string]int     `json:"edge_counts"`
	LocationTime  map[string]float64 `json:"location_time"` // simulated time spent per location
	Err           string             `json:"error,omitempty"`
}

// Summary aggregates a batch.
type Summary struct {
	Runs           int                `json:"runs"`
	Failures       int                `json:"failures"`
	DeadlockRate   float64            `json:"deadlock_rate"`
	Steps          Stat               `json:"steps"`
	TotalTime      Stat               `json:"total_time"`
	FinalLocations map[string]float64 `json:"final_locations"` // fraction of runs ending there
	Occupancy      map[string]float64 `json:"occupancy"`       // mean fraction of simulated time per location
	EdgeFrequency  map[string]float64 `json:"edge_frequency"`  // mean firings per run
}

// Batch holds every run of a Monte Carlo batch plus its aggregates.
type Batch struct {
	Version   string      `json:"version"`
	ModelCID  string      `json:"model_cid"`
	Policy    string      `json:"policy"`
	BaseSeed  int64       `json:"base_seed"`
	Timestamp time.Time   `json:"timestamp"`
	Results   []RunResult `json:"results"`
	Summary   Summary     `json:"summary"`
}

// Stat is a statistical summary of one metric across runs.
type Stat struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
}

// computeStat calculates a statistical summary.
func computeStat(data []float64) Stat {
	if len(data) == 0 {
		return Stat{}
	}

	lo := data[0]
	hi := data[0]
	sum := 0.0
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		sum += v
	}
	mean := sum / float64(len(data))

	sumSq := 0.0
	for _, v := range data {
		diff := v - mean
		sumSq += diff * diff
	}
	std := math.Sqrt(sumSq / float64(len(data)))

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	return Stat{
		Min:    lo,
		Max:    hi,
		Mean:   mean,
		Median: median,
		Std:    std,
	}
}

// summarize aggregates run results into a Summary.
func summarize(runs []RunResult) Summary {
	summary := Summary{
		Runs:           len(runs),
		FinalLocations: make(map[string]float64),
		Occupancy:      make(map[string]float64),
		EdgeFrequency:  make(map[string]float64),
	}
	if len(runs) == 0 {
		return summary
	}

	deadlocks := 0
	steps := make([]float64, 0, len(runs))
	times := make([]float64, 0, len(runs))
	completed := 0
	timed := 0

	for _, run := range runs {
		if run.Err != "" {
			summary.Failures++
			continue
		}
		completed++
		if run.Deadlocked {
			deadlocks++
		}
		steps = append(steps, float64(run.Steps))
		times = append(times, run.TotalTime)
		summary.FinalLocations[run.FinalLocation]++
		for label, count := range run.EdgeCounts {
			summary.EdgeFrequency[label] += float64(count)
		}
		if run.TotalTime > 0 {
			timed++
			for location, t := range run.LocationTime {
				summary.Occupancy[location] += t / run.TotalTime
			}
		}
	}

	if completed > 0 {
		summary.DeadlockRate = float64(deadlocks) / float64(completed)
		for location := range summary.FinalLocations {
			summary.FinalLocations[location] /= float64(completed)
		}
		for label := range summary.EdgeFrequency {
			summary.EdgeFrequency[label] /= float64(completed)
		}
	}
	for location := range summary.Occupancy {
		summary.Occupancy[location] /= float64(timed)
	}
	summary.Steps = computeStat(steps)
	summary.TotalTime = computeStat(times)
	return summary
}
