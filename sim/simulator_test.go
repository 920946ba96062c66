package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/pta-xyz/go-pta/clock"
	"github.com/pta-xyz/go-pta/pta"
)

// buildBasic is the reference scenario: clocks {x}, locations A (invariant
// x <= 5) and terminal B, one edge A -> B guarded by x in [1, 5].
func buildBasic(t *testing.T) *pta.Automaton {
	t.Helper()
	auto, err := pta.Build().
		Clocks("x").
		Location("A", clock.LessEq("x", 5)).
		Location("B").
		Edge("work", "A", clock.Between("x", 1, 5), pta.To("B")).
		Initial("A").
		Done()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return auto
}

func TestEndToEndScenario(t *testing.T) {
	auto := buildBasic(t)

	s, err := New(auto, 11)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	trace, err := s.Run(RunOptions{MaxSteps: 5})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Exactly one transition: initial A plus one committed step into B.
	if trace.Len() != 2 {
		t.Fatalf("Expected 2 configurations in trace, got %d", trace.Len())
	}

	initial := trace.Entry(0)
	if initial.Config.Location != "A" || initial.Config.Valuation["x"] != 0 {
		t.Errorf("Expected initial config A with x=0, got %+v", initial.Config)
	}

	step := trace.Entry(1)
	if step.Config.Location != "B" {
		t.Errorf("Expected final location B, got %q", step.Config.Location)
	}
	if step.Delay < 1 || step.Delay > 5 {
		t.Errorf("Expected delay in [1,5], got %f", step.Delay)
	}
	if step.Edge != "work" {
		t.Errorf("Expected edge 'work', got %q", step.Edge)
	}
	if !trace.Deadlocked() {
		t.Error("Expected trace to end deadlocked in terminal B")
	}

	// Subsequent steps keep reporting deadlock, never an error.
	for i := 0; i < 3; i++ {
		cfg, status, err := s.Step()
		if err != nil {
			t.Fatalf("Step after deadlock returned error: %v", err)
		}
		if status != StatusDeadlocked {
			t.Fatalf("Expected StatusDeadlocked, got %v", status)
		}
		if cfg.Location != "B" {
			t.Errorf("Expected to stay in B, got %q", cfg.Location)
		}
	}
}

func TestDeterminism(t *testing.T) {
	auto, err := pta.Build().
		Clocks("x", "y").
		Location("A", clock.LessEq("x", 10)).
		Location("B", clock.LessEq("y", 8)).
		Edge("toB", "A", clock.GreaterEq("x", 1),
			pta.Outcome{Prob: 0.6, Target: "B", Resets: []string{"y"}},
			pta.Outcome{Prob: 0.4, Target: "A", Resets: []string{"x"}},
		).
		Edge("toA", "B", clock.GreaterEq("y", 2), pta.To("A", "x")).
		Initial("A").
		Done()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	run := func(seed int64) []Entry {
		s, err := New(auto, seed)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		trace, err := s.Run(RunOptions{MaxSteps: 50})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return trace.Snapshot()
	}

	a, b := run(99), run(99)
	if len(a) != len(b) {
		t.Fatalf("Expected identical trace length, got %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Delay != b[i].Delay || a[i].Edge != b[i].Edge || a[i].Outcome != b[i].Outcome {
			t.Fatalf("Traces diverged at entry %d: %+v vs %+v", i, a[i], b[i])
		}
		if a[i].Config.Location != b[i].Config.Location || !clock.Equal(a[i].Config.Valuation, b[i].Config.Valuation) {
			t.Fatalf("Configurations diverged at entry %d", i)
		}
	}

	// A different seed should usually diverge somewhere.
	c := run(100)
	same := len(a) == len(c)
	if same {
		for i := range a {
			if a[i].Delay != c[i].Delay || a[i].Edge != c[i].Edge {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("Expected different seeds to produce different traces")
	}
}

func TestImmediateDeadlock(t *testing.T) {
	// Initial location has no outgoing edges at all.
	auto, err := pta.Build().
		Clocks("x").
		Location("stuck").
		Location("other").
		Edge("unreach", "other", clock.True(), pta.To("stuck")).
		Initial("stuck").
		Done()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s, err := New(auto, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	trace, err := s.Run(RunOptions{MaxSteps: 10})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if trace.Len() != 1 {
		t.Errorf("Expected only the initial configuration, got %d entries", trace.Len())
	}
	if !trace.Deadlocked() {
		t.Error("Expected deadlocked trace")
	}
	if s.Status() != StatusDeadlocked {
		t.Errorf("Expected StatusDeadlocked, got %v", s.Status())
	}
}

func TestDeadlockByExpiredGuard(t *testing.T) {
	// Guard window [1,2] but initial x=3: window already passed.
	auto, err := pta.Build().
		Clocks("x").
		Location("A").
		Location("B").
		Edge("late", "A", clock.Between("x", 1, 2), pta.To("B")).
		Initial("A").
		Done()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s, err := New(auto, 5, WithInitialValuation(clock.Valuation{"x": 3}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, status, err := s.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if status != StatusDeadlocked {
		t.Errorf("Expected StatusDeadlocked, got %v", status)
	}
}

func TestEdgeRaceRespectsWeights(t *testing.T) {
	// Two always-enabled self-loop edges with 9:1 weights.
	auto, err := pta.Build().
		Clocks("x").
		Location("A").
		EdgeWeighted("heavy", "A", clock.True(), 9, pta.To("A", "x")).
		EdgeWeighted("light", "A", clock.True(), 1, pta.To("A", "x")).
		Done()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s, err := New(auto, 123, WithDelayPolicy(EarliestDelay{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	trace, err := s.Run(RunOptions{MaxSteps: 5000})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	counts := map[string]int{}
	for _, e := range trace.Snapshot()[1:] {
		counts[e.Edge]++
	}
	heavy := float64(counts["heavy"]) / 5000
	if heavy < 0.85 || heavy > 0.95 {
		t.Errorf("Expected heavy edge frequency near 0.9, got %f", heavy)
	}
}

func TestOutcomeDistributionRespected(t *testing.T) {
	auto, err := pta.Build().
		Clocks("x").
		Location("A").
		Location("B").
		Edge("flip", "A", clock.True(),
			pta.Outcome{Prob: 0.25, Target: "B"},
			pta.Outcome{Prob: 0.75, Target: "A", Resets: []string{"x"}},
		).
		Initial("A").
		Done()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	toB := 0
	const n = 4000
	for seed := int64(0); seed < n; seed++ {
		s, err := New(auto, seed, WithDelayPolicy(EarliestDelay{}))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		_, _, err = s.Step()
		if err != nil {
			t.Fatalf("Step failed: %v", err)
		}
		if s.Current().Location == "B" {
			toB++
		}
	}

	frac := float64(toB) / n
	if frac < 0.21 || frac > 0.29 {
		t.Errorf("Expected B frequency near 0.25, got %f", frac)
	}
}

func TestResetsAppliedOnTransition(t *testing.T) {
	auto, err := pta.Build().
		Clocks("x", "y").
		Location("A").
		Location("B").
		Edge("go", "A", clock.GreaterEq("x", 2), pta.To("B", "x")).
		Initial("A").
		Done()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s, err := New(auto, 3, WithDelayPolicy(EarliestDelay{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg, _, err := s.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if cfg.Valuation["x"] != 0 {
		t.Errorf("Expected x reset to 0, got %f", cfg.Valuation["x"])
	}
	if cfg.Valuation["y"] != 2 {
		t.Errorf("Expected y advanced to 2, got %f", cfg.Valuation["y"])
	}
	if cfg.Time != 2 {
		t.Errorf("Expected cumulative time 2, got %f", cfg.Time)
	}
}

func TestRunMaxTimeBound(t *testing.T) {
	auto, err := pta.Build().
		Clocks("x").
		Location("A").
		Edge("tick", "A", clock.GreaterEq("x", 1), pta.To("A", "x")).
		Done()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s, err := New(auto, 7, WithDelayPolicy(EarliestDelay{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	trace, err := s.Run(RunOptions{MaxTime: 10})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if trace.TotalTime() < 10 {
		t.Errorf("Expected run to reach time 10, got %f", trace.TotalTime())
	}
	// Each tick takes exactly 1 time unit under the earliest policy.
	if trace.Len() != 11 {
		t.Errorf("Expected 11 entries (initial + 10 ticks), got %d", trace.Len())
	}
}

func TestRunRequiresBound(t *testing.T) {
	s, err := New(buildBasic(t), 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Run(RunOptions{}); err == nil {
		t.Error("Expected error for unbounded Run")
	}
}

func TestWithInitialValuationValidation(t *testing.T) {
	auto := buildBasic(t)

	if _, err := New(auto, 1, WithInitialValuation(clock.Valuation{})); !errors.Is(err, ErrInitialValuation) {
		t.Errorf("Expected ErrInitialValuation for empty override, got %v", err)
	}
	if _, err := New(auto, 1, WithInitialValuation(clock.Valuation{"z": 0})); !errors.Is(err, ErrInitialValuation) {
		t.Errorf("Expected ErrInitialValuation for wrong clock, got %v", err)
	}
	if _, err := New(auto, 1, WithInitialValuation(clock.Valuation{"x": 2})); err != nil {
		t.Errorf("Expected valid override, got %v", err)
	}
}

func TestCurrentIsSnapshot(t *testing.T) {
	s, err := New(buildBasic(t), 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cfg := s.Current()
	cfg.Valuation["x"] = 42
	if s.Current().Valuation["x"] != 0 {
		t.Error("Expected Current to return an independent copy")
	}
}

func TestTraceCommittedEntriesSurviveFailure(t *testing.T) {
	// The trace built so far must stay intact when a later bound stops the
	// run mid-flight.
	s, err := New(buildBasic(t), 21)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	trace, err := s.Run(RunOptions{MaxSteps: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	before := trace.Snapshot()
	_, _, _ = s.Step() // deadlocked step, trace unchanged
	after := trace.Snapshot()
	if len(before) != len(after) {
		t.Fatalf("Expected trace length unchanged, got %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Delay != after[i].Delay || before[i].Config.Location != after[i].Config.Location {
			t.Errorf("Entry %d mutated", i)
		}
	}
}

func TestStatusString(t *testing.T) {
	if StatusRunning.String() != "running" || StatusDeadlocked.String() != "deadlocked" {
		t.Error("Unexpected status strings")
	}
	if Status(9).String() != "unknown" {
		t.Error("Expected unknown for out-of-range status")
	}
}

func TestEarliestDelayPolicy(t *testing.T) {
	set := clock.IntervalSet{clock.Closed(2, 4)}
	d, err := EarliestDelay{}.Pick(nil, set)
	if err != nil {
		t.Fatalf("Pick failed: %v", err)
	}
	if d != 2 {
		t.Errorf("Expected 2, got %f", d)
	}

	// Open lower bound is nudged inward.
	set = clock.IntervalSet{clock.Open(2, 4)}
	d, err = EarliestDelay{}.Pick(nil, set)
	if err != nil {
		t.Fatalf("Pick failed: %v", err)
	}
	if d <= 2 || d >= 4 {
		t.Errorf("Expected delay strictly inside (2,4), got %f", d)
	}
}

func TestUniformDelayPolicyUnbounded(t *testing.T) {
	s, err := New(buildBasic(t), 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	set := clock.IntervalSet{clock.AtLeast(3)}
	d, err := UniformDelay{}.Pick(s.rng, set)
	if err != nil {
		t.Fatalf("Pick failed: %v", err)
	}
	if d != 3 {
		t.Errorf("Expected lower bound 3 for unbounded window, got %f", d)
	}
	if math.IsInf(d, 1) {
		t.Error("Expected finite delay")
	}
}
