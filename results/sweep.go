package results

import (
	"fmt"

	"github.com/pta-xyz/go-pta/pta"
	"github.com/pta-xyz/go-pta/sim"
)

// PolicySweep compares delay policies over identical seed sets, keyed by
// policy name.
type PolicySweep struct {
	Version  string            `json:"version"`
	ModelCID string            `json:"model_cid"`
	Batches  map[string]*Batch `json:"batches"`
}

// SweepPolicies runs one batch per policy with the same base seed and run
// count, so differences between batches come from the policies alone.
func SweepPolicies(auto *pta.Automaton, policies []sim.DelayPolicy, opts BatchOptions) (*PolicySweep, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("sweep requires at least one policy")
	}

	sweep := &PolicySweep{
		Version:  SchemaVersion,
		ModelCID: auto.CID(),
		Batches:  make(map[string]*Batch, len(policies)),
	}
	for _, policy := range policies {
		if _, exists := sweep.Batches[policy.Name()]; exists {
			return nil, fmt.Errorf("duplicate policy name %q", policy.Name())
		}
		opts.Policy = policy
		batch, err := RunBatch(auto, opts)
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", policy.Name(), err)
		}
		sweep.Batches[policy.Name()] = batch
	}
	return sweep, nil
}
