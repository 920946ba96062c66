package results

import (
	"bytes"
	"math"
	"testing"

	"github.com/pta-xyz/go-pta/clock"
	"github.com/pta-xyz/go-pta/pta"
	"github.com/pta-xyz/go-pta/sim"
)

// buildWorkModel has one probabilistic edge: done with p=0.3, retry (back to
// A with a reset) with p=0.7.
func buildWorkModel(t *testing.T) *pta.Automaton {
	t.Helper()
	auto, err := pta.Build().
		Clocks("x").
		Location("A", clock.LessEq("x", 2)).
		Location("B").
		Edge("work", "A", clock.Between("x", 1, 2), pta.Outcomes(
			pta.Outcome{Prob: 0.3, Target: "B"},
			pta.Outcome{Prob: 0.7, Target: "A", Resets: []string{"x"}},
		)...).
		Done()
	if err != nil {
		t.Fatal(err)
	}
	return auto
}

func TestComputeStat(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want Stat
	}{
		{
			name: "empty",
			data: nil,
			want: Stat{},
		},
		{
			name: "single value",
			data: []float64{4},
			want: Stat{Min: 4, Max: 4, Mean: 4, Median: 4, Std: 0},
		},
		{
			name: "even count",
			data: []float64{1, 2, 3, 4},
			want: Stat{Min: 1, Max: 4, Mean: 2.5, Median: 2.5, Std: math.Sqrt(1.25)},
		},
		{
			name: "odd count",
			data: []float64{5, 1, 3},
			want: Stat{Min: 1, Max: 5, Mean: 3, Median: 3, Std: math.Sqrt(8.0 / 3.0)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeStat(tt.data)
			if math.Abs(got.Std-tt.want.Std) > 1e-12 {
				t.Errorf("Expected std %v, got %v", tt.want.Std, got.Std)
			}
			got.Std = tt.want.Std
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRunBatch(t *testing.T) {
	auto := buildWorkModel(t)

	batch, err := RunBatch(auto, BatchOptions{
		Runs:     200,
		Seed:     1,
		MaxSteps: 100,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(batch.Results) != 200 {
		t.Fatalf("Expected 200 results, got %d", len(batch.Results))
	}
	if batch.ModelCID != auto.CID() {
		t.Errorf("Expected model CID %s, got %s", auto.CID(), batch.ModelCID)
	}
	if batch.Policy != "uniform" {
		t.Errorf("Expected uniform policy, got %s", batch.Policy)
	}
	for i, result := range batch.Results {
		if result.Seed != int64(1+i) {
			t.Fatalf("Expected results sorted by seed, got seed %d at index %d", result.Seed, i)
		}
		if result.Err != "" {
			t.Fatalf("Run with seed %d failed: %s", result.Seed, result.Err)
		}
	}

	summary := batch.Summary
	if summary.Runs != 200 || summary.Failures != 0 {
		t.Errorf("Unexpected summary counts: %+v", summary)
	}
	// Every run either deadlocks in B or hits the step bound retrying.
	fracB := summary.FinalLocations["B"]
	if fracB < 0.9 {
		t.Errorf("Expected most runs to finish in B, got fraction %v", fracB)
	}
	if summary.EdgeFrequency["work"] < 1 {
		t.Errorf("Expected at least one work firing per run on average, got %v", summary.EdgeFrequency["work"])
	}
	if summary.Steps.Min < 1 {
		t.Errorf("Expected at least one step per run, got min %v", summary.Steps.Min)
	}
	// All simulated time is spent in A; B is only ever entered at the end.
	if math.Abs(summary.Occupancy["A"]-1) > 1e-9 {
		t.Errorf("Expected occupancy 1 for A, got %v", summary.Occupancy["A"])
	}
	if summary.Occupancy["B"] != 0 {
		t.Errorf("Expected occupancy 0 for B, got %v", summary.Occupancy["B"])
	}
	if summary.TotalTime.Mean <= 0 {
		t.Errorf("Expected positive mean total time, got %v", summary.TotalTime.Mean)
	}
}

func TestRunBatchReproducible(t *testing.T) {
	auto := buildWorkModel(t)
	opts := BatchOptions{Runs: 50, Seed: 9, MaxSteps: 100}

	serial := opts
	serial.Parallelism = 1
	first, err := RunBatch(auto, serial)
	if err != nil {
		t.Fatal(err)
	}

	parallel := opts
	parallel.Parallelism = 8
	second, err := RunBatch(auto, parallel)
	if err != nil {
		t.Fatal(err)
	}

	for i := range first.Results {
		a, b := first.Results[i], second.Results[i]
		if a.Seed != b.Seed || a.Steps != b.Steps || a.TotalTime != b.TotalTime ||
			a.FinalLocation != b.FinalLocation || a.Deadlocked != b.Deadlocked {
			t.Fatalf("Result %d differs across parallelism:\n%+v\n%+v", i, a, b)
		}
	}
}

func TestRunBatchValidation(t *testing.T) {
	auto := buildWorkModel(t)

	if _, err := RunBatch(auto, BatchOptions{Runs: 0, MaxSteps: 10}); err == nil {
		t.Error("Expected error for zero runs")
	}
	if _, err := RunBatch(auto, BatchOptions{Runs: 10}); err == nil {
		t.Error("Expected error for missing bounds")
	}
}

func TestSweepPolicies(t *testing.T) {
	auto := buildWorkModel(t)

	sweep, err := SweepPolicies(auto,
		[]sim.DelayPolicy{sim.UniformDelay{}, sim.EarliestDelay{}},
		BatchOptions{Runs: 20, Seed: 3, MaxSteps: 50},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(sweep.Batches) != 2 {
		t.Fatalf("Expected 2 batches, got %d", len(sweep.Batches))
	}
	for _, name := range []string{"uniform", "earliest"} {
		batch, ok := sweep.Batches[name]
		if !ok {
			t.Fatalf("Missing batch for policy %s", name)
		}
		if batch.Summary.Runs != 20 {
			t.Errorf("Policy %s: expected 20 runs, got %d", name, batch.Summary.Runs)
		}
	}

	// Earliest delays are always exactly 1 in this model.
	earliest := sweep.Batches["earliest"]
	for _, result := range earliest.Results {
		if result.TotalTime != float64(result.Steps) {
			t.Errorf("Expected total time %d for earliest policy, got %v", result.Steps, result.TotalTime)
		}
	}

	if _, err := SweepPolicies(auto, nil, BatchOptions{Runs: 1, MaxSteps: 1}); err == nil {
		t.Error("Expected error for empty policy list")
	}
	if _, err := SweepPolicies(auto,
		[]sim.DelayPolicy{sim.UniformDelay{}, sim.UniformDelay{}},
		BatchOptions{Runs: 1, MaxSteps: 1},
	); err == nil {
		t.Error("Expected error for duplicate policy names")
	}
}

func TestBatchJSONRoundTrip(t *testing.T) {
	auto := buildWorkModel(t)
	batch, err := RunBatch(auto, BatchOptions{Runs: 5, Seed: 2, MaxSteps: 20})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, batch); err != nil {
		t.Fatal(err)
	}

	parsed, err := ParseJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Version != SchemaVersion || parsed.ModelCID != batch.ModelCID {
		t.Errorf("Unexpected parsed batch header: %+v", parsed)
	}
	if len(parsed.Results) != len(batch.Results) {
		t.Errorf("Expected %d results, got %d", len(batch.Results), len(parsed.Results))
	}

	if _, err := ParseJSON(bytes.NewReader([]byte(`{}`))); err == nil {
		t.Error("Expected error for missing version")
	}
}
