package pta

import (
	"errors"
	"testing"

	"github.com/pta-xyz/go-pta/clock"
)

func TestModelJSONRoundTrip(t *testing.T) {
	auto, err := Build().
		Clocks("x", "y").
		Location("A", clock.LessEq("x", 5)).
		LocationWithLabels("B", []string{"goal"}).
		Edge("work", "A", clock.Between("x", 1, 5), Outcomes(
			Outcome{Prob: 0.25, Target: "B"},
			Outcome{Prob: 0.75, Target: "A", Resets: []string{"x", "y"}},
		)...).
		EdgeWeighted("skip", "A", clock.Greater("y", 2), 3.0, To("B")).
		Initial("A").
		Done()
	if err != nil {
		t.Fatal(err)
	}

	data, err := MarshalModel(auto)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := UnmarshalModel(data)
	if err != nil {
		t.Fatal(err)
	}

	if parsed.CID() != auto.CID() {
		t.Errorf("Expected CID to survive the round trip:\nwant %s\ngot  %s", auto.CID(), parsed.CID())
	}
	if parsed.Initial() != "A" {
		t.Errorf("Expected initial A, got %s", parsed.Initial())
	}
	if len(parsed.Edges("A")) != 2 {
		t.Errorf("Expected 2 edges out of A, got %d", len(parsed.Edges("A")))
	}
	if got := parsed.Labels("B"); len(got) != 1 || got[0] != "goal" {
		t.Errorf("Expected label goal on B, got %v", got)
	}
}

func TestUnmarshalModelDefaults(t *testing.T) {
	data := []byte(`{
		"clocks": ["x"],
		"locations": [{"name": "A"}, {"name": "B"}],
		"edges": [{
			"label": "go",
			"source": "A",
			"guard": [{"clock": "x", "intervals": [{"lower": 1}]}],
			"outcomes": [{"prob": 1, "target": "B"}]
		}]
	}`)

	auto, err := UnmarshalModel(data)
	if err != nil {
		t.Fatal(err)
	}
	if auto.Initial() != "A" {
		t.Errorf("Expected first location as default initial, got %s", auto.Initial())
	}
	if v := auto.InitialValuation(); v["x"] != 0 {
		t.Errorf("Expected zero valuation, got %v", v)
	}

	edges := auto.Edges("A")
	if len(edges) != 1 || edges[0].Weight != 1 {
		t.Fatalf("Expected one edge with default weight 1, got %+v", edges)
	}
	// Missing upper bound means unbounded above.
	if !edges[0].Guard.Satisfied(clock.Valuation{"x": 1000}) {
		t.Error("Expected guard satisfied at x=1000")
	}
	if edges[0].Guard.Satisfied(clock.Valuation{"x": 0.5}) {
		t.Error("Expected guard unsatisfied below lower bound")
	}
}

func TestUnmarshalModelRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed JSON", `{`},
		{"no locations", `{"clocks": ["x"]}`},
		{"bad probability mass", `{
			"clocks": ["x"],
			"locations": [{"name": "A"}, {"name": "B"}],
			"edges": [{
				"label": "go", "source": "A",
				"outcomes": [{"prob": 0.5, "target": "B"}]
			}]
		}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalModel([]byte(tt.data)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}

	// Structural defects surface as a ValidationError.
	_, err := UnmarshalModel([]byte(`{
		"clocks": ["x"],
		"locations": [{"name": "A"}],
		"edges": [{"label": "go", "source": "A", "outcomes": [{"prob": 1, "target": "Z"}]}]
	}`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestLoadSaveModel(t *testing.T) {
	auto, err := Build().
		Clocks("x").
		Location("A", clock.LessEq("x", 5)).
		Location("B").
		Edge("work", "A", clock.Between("x", 1, 5), To("B")).
		Done()
	if err != nil {
		t.Fatal(err)
	}

	path := t.TempDir() + "/model.json"
	if err := SaveModel(path, auto); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadModel(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.CID() != auto.CID() {
		t.Errorf("Expected identical CID after load, got %s", loaded.CID())
	}

	if _, err := LoadModel(t.TempDir() + "/missing.json"); err == nil {
		t.Error("Expected error for missing file")
	}
}
