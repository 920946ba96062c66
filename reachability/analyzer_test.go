package reachability

import (
	"reflect"
	"testing"

	"github.com/pta-xyz/go-pta/clock"
	"github.com/pta-xyz/go-pta/pta"
)

// buildDiamond has reachable locations A, B, C, D and an island location X
// with an outgoing edge that can never fire.
func buildDiamond(t *testing.T) *pta.Automaton {
	t.Helper()
	auto, err := pta.Build().
		Clocks("x").
		Location("A", clock.LessEq("x", 5)).
		Location("B", clock.LessEq("x", 5)).
		Location("C", clock.LessEq("x", 5)).
		Location("D").
		Location("X", clock.LessEq("x", 5)).
		Edge("split", "A", clock.Between("x", 1, 5), pta.Outcomes(
			pta.Outcome{Prob: 0.5, Target: "B", Resets: []string{"x"}},
			pta.Outcome{Prob: 0.5, Target: "C", Resets: []string{"x"}},
		)...).
		Edge("left", "B", clock.Between("x", 1, 5), pta.To("D")).
		Edge("right", "C", clock.Between("x", 1, 5), pta.To("D")).
		Edge("island", "X", clock.Between("x", 1, 5), pta.To("A")).
		Initial("A").
		Done()
	if err != nil {
		t.Fatal(err)
	}
	return auto
}

func TestAnalyze(t *testing.T) {
	result := NewAnalyzer(buildDiamond(t)).Analyze()

	if !reflect.DeepEqual(result.Reachable, []string{"A", "B", "C", "D"}) {
		t.Errorf("Expected reachable [A B C D], got %v", result.Reachable)
	}
	if !reflect.DeepEqual(result.Unreachable, []string{"X"}) {
		t.Errorf("Expected unreachable [X], got %v", result.Unreachable)
	}
	if !reflect.DeepEqual(result.Terminal, []string{"D"}) {
		t.Errorf("Expected terminal [D], got %v", result.Terminal)
	}
	if !reflect.DeepEqual(result.DeadEdges, []string{"island"}) {
		t.Errorf("Expected dead edges [island], got %v", result.DeadEdges)
	}
}

func TestPaths(t *testing.T) {
	analyzer := NewAnalyzer(buildDiamond(t))

	if path := analyzer.PathTo("A"); path == nil || len(path) != 0 {
		t.Errorf("Expected empty path to initial location, got %v", path)
	}
	path := analyzer.PathTo("D")
	if len(path) != 2 || path[0] != "split" {
		t.Errorf("Expected two-edge path starting with split, got %v", path)
	}
	if path := analyzer.PathTo("X"); path != nil {
		t.Errorf("Expected nil path to unreachable location, got %v", path)
	}
}

func TestIsReachableAndDeadlock(t *testing.T) {
	analyzer := NewAnalyzer(buildDiamond(t))

	if !analyzer.IsReachable("D") {
		t.Error("Expected D reachable")
	}
	if analyzer.IsReachable("X") {
		t.Error("Expected X unreachable")
	}
	if !analyzer.CanDeadlock() {
		t.Error("Expected reachable terminal location")
	}

	// A single-location loop never deadlocks.
	loop, err := pta.Build().
		Clocks("x").
		Location("A", clock.LessEq("x", 1)).
		Edge("tick", "A", clock.Between("x", 1, 1), pta.To("A", "x")).
		Done()
	if err != nil {
		t.Fatal(err)
	}
	if NewAnalyzer(loop).CanDeadlock() {
		t.Error("Expected no terminal locations in loop model")
	}
}
