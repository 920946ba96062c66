package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pta-xyz/go-pta/clock"
	"github.com/pta-xyz/go-pta/dist"
	"github.com/pta-xyz/go-pta/pta"
)

// ErrInitialValuation is returned when an initial-valuation override does
// not cover exactly the automaton's declared clocks.
var ErrInitialValuation = errors.New("initial valuation does not match declared clocks")

// Option configures a Simulator at construction time.
type Option func(*Simulator)

// WithDelayPolicy sets the delay policy. Default is UniformDelay.
func WithDelayPolicy(p DelayPolicy) Option {
	return func(s *Simulator) { s.policy = p }
}

// WithInitialValuation overrides the automaton's initial valuation for this
// run. The override must assign exactly the declared clocks.
func WithInitialValuation(v clock.Valuation) Option {
	return func(s *Simulator) { s.initOverride = clock.Copy(v) }
}

// RunOptions bounds a Run call. Zero values leave the corresponding bound
// unset; at least one bound must be set.
type RunOptions struct {
	MaxSteps int
	MaxTime  float64
}

// Simulator executes one automaton. It owns its configuration, trace, and
// random source exclusively; the automaton itself is immutable and may be
// shared by any number of simulators.
type Simulator struct {
	auto   *pta.Automaton
	rng    *rand.Rand
	seed   int64
	policy DelayPolicy

	initOverride clock.Valuation
	current      Configuration
	trace        *Trace
	status       Status
}

// New creates a Simulator over a validated automaton with its own random
// source seeded by seed.
func New(auto *pta.Automaton, seed int64, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		auto:   auto,
		rng:    rand.New(rand.NewSource(seed)),
		seed:   seed,
		policy: UniformDelay{},
	}
	for _, opt := range opts {
		opt(s)
	}

	initVal := auto.InitialValuation()
	if s.initOverride != nil {
		declared := auto.Clocks()
		if len(s.initOverride) != len(declared) {
			return nil, fmt.Errorf("%w: have %d clocks, want %d", ErrInitialValuation, len(s.initOverride), len(declared))
		}
		for _, c := range declared {
			if _, ok := s.initOverride[c]; !ok {
				return nil, fmt.Errorf("%w: missing clock %q", ErrInitialValuation, c)
			}
		}
		initVal = clock.Copy(s.initOverride)
	}

	s.current = Configuration{
		Location:  auto.Initial(),
		Valuation: initVal,
		Time:      0,
		Step:      0,
	}
	s.trace = &Trace{}
	s.trace.append(Entry{Delay: 0, Config: copyConfig(s.current)})
	s.status = StatusRunning
	return s, nil
}

// Seed returns the seed the simulator was constructed with.
func (s *Simulator) Seed() int64 { return s.seed }

// Policy returns the active delay policy.
func (s *Simulator) Policy() DelayPolicy { return s.policy }

// Current returns a read-only snapshot of the live configuration.
func (s *Simulator) Current() Configuration {
	return copyConfig(s.current)
}

// Status returns the simulator's execution state.
func (s *Simulator) Status() Status { return s.status }

// Trace returns the accumulated trace. The trace stays owned by the
// simulator; use Snapshot for an independent copy.
func (s *Simulator) Trace() *Trace { return s.trace }

// Step performs one iteration of the stepping algorithm: compute admissible
// delays, sample a delay, advance, race enabled edges by weight, sample an
// outcome, apply resets, commit. A deadlock is reported through the Status,
// not as an error; errors mean the step was aborted with the trace intact.
func (s *Simulator) Step() (Configuration, Status, error) {
	if s.status == StatusDeadlocked {
		return s.Current(), StatusDeadlocked, nil
	}

	// 1. Admissible delay set under invariant and guards.
	admissible := s.auto.AdmissibleDelays(s.current.Location, s.current.Valuation)
	if admissible.IsEmpty() {
		s.status = StatusDeadlocked
		s.trace.deadlocked = true
		return s.Current(), StatusDeadlocked, nil
	}

	// 2. Sample a delay by policy.
	delay, err := s.policy.Pick(s.rng, admissible)
	if err != nil {
		return s.Current(), s.status, err
	}

	// 3. Advance the valuation.
	advanced, err := clock.Advance(s.current.Valuation, delay)
	if err != nil {
		return s.Current(), s.status, err
	}

	// 4. Enabled edges at the new valuation.
	enabled := s.auto.EnabledEdges(s.current.Location, advanced)
	if len(enabled) == 0 {
		// The policy picked a delay outside every guard; with exact
		// interval arithmetic this cannot happen for an admissible set.
		return s.Current(), s.status, fmt.Errorf("no edge enabled after admissible delay %v at %q", delay, s.current.Location)
	}

	// 5. Race: weight-proportional draw among enabled edges, independent of
	// the outcome draw below.
	edge, err := raceEdges(s.rng, enabled)
	if err != nil {
		return s.Current(), s.status, err
	}

	// 6. Outcome draw within the chosen edge.
	idx, err := edge.Distribution().Sample(s.rng)
	if err != nil {
		return s.Current(), s.status, err
	}
	outcome := edge.Outcomes[idx]

	// 7. Apply resets.
	next, err := clock.Reset(advanced, outcome.Resets)
	if err != nil {
		return s.Current(), s.status, err
	}

	// 8. Commit.
	s.current = Configuration{
		Location:  outcome.Target,
		Valuation: next,
		Time:      s.current.Time + delay,
		Step:      s.current.Step + 1,
	}
	s.trace.append(Entry{
		Delay:   delay,
		Edge:    edge.Label,
		Outcome: idx,
		Config:  copyConfig(s.current),
	})
	return s.Current(), StatusRunning, nil
}

// Run steps until a bound is reached or the automaton deadlocks, and
// returns the trace. A fresh simulator over the same automaton, seed, and
// policy reproduces an identical trace.
func (s *Simulator) Run(opts RunOptions) (*Trace, error) {
	if opts.MaxSteps <= 0 && opts.MaxTime <= 0 {
		return nil, fmt.Errorf("run requires MaxSteps or MaxTime")
	}

	for {
		if opts.MaxSteps > 0 && s.current.Step >= opts.MaxSteps {
			return s.trace, nil
		}
		if opts.MaxTime > 0 && s.current.Time >= opts.MaxTime {
			return s.trace, nil
		}

		_, status, err := s.Step()
		if err != nil {
			return s.trace, err
		}
		if status == StatusDeadlocked {
			return s.trace, nil
		}
	}
}

// raceEdges draws one edge proportionally to the edges' race weights.
func raceEdges(rng *rand.Rand, edges []*pta.Edge) (*pta.Edge, error) {
	if len(edges) == 1 {
		return edges[0], nil
	}
	entries := make([]dist.Entry[int], len(edges))
	for i, e := range edges {
		entries[i] = dist.Entry[int]{Value: i, Weight: e.Weight}
	}
	idx, err := dist.Weighted(entries...).Sample(rng)
	if err != nil {
		return nil, err
	}
	return edges[idx], nil
}
