package gen

import (
	"fmt"
	"math/rand"
)

// GenerativeModel is the capability interface every concrete model
// implements. Estimators are written purely against it and never against a
// concrete model type.
//
// A model must be total for valid arguments: Simulate never fails. All
// randomness flows through the supplied *rand.Rand; implementations must
// not hold RNG state of their own, so that callers can give each parallel
// unit of work an isolated stream.
type GenerativeModel interface {
	// Simulate samples all latent and observed choices jointly from the
	// model's generative process.
	Simulate(args []float64, rng *rand.Rand) *Trace

	// Generate samples the remaining choices conditioned on the supplied
	// fixed values held verbatim in the trace. The returned log-weight is
	//
	//	log p(choices, args) - log q(sampled choices | fixed choices)
	//
	// where q is the model's internal proposal (for the models in this
	// repository, the prior), i.e. the unnormalized importance weight of
	// the trace relative to the internal sampler. Any choice site may be
	// fixed, not only observation sites; fixing every site makes the
	// weight the full joint log density. Returns ErrInvalidObservation
	// (wrapped) if fixed names a site the model does not define.
	Generate(args []float64, fixed map[string]float64, rng *rand.Rand) (*Trace, float64, error)

	// Project returns the log probability of exactly the values present in
	// tr restricted to sel: the sum of the selected sites' recorded
	// conditional log densities. Deterministic given tr and sel.
	Project(tr *Trace, sel Selection) (float64, error)

	// ChoiceSites returns the names of every choice site the model can
	// produce, used to validate fixed-choice maps before sampling.
	ChoiceSites() []string
}

// ValidateFixed checks that every name in fixed is a choice site of the
// model, returning a wrapped ErrInvalidObservation for the first unknown
// name. Models call this at the top of Generate.
func ValidateFixed(model GenerativeModel, fixed map[string]float64) error {
	sites := make(map[string]struct{})
	for _, name := range model.ChoiceSites() {
		sites[name] = struct{}{}
	}
	for name := range fixed {
		if _, ok := sites[name]; !ok {
			return fmt.Errorf("choice site %q: %w", name, ErrInvalidObservation)
		}
	}
	return nil
}

// ProjectTrace is the shared Project implementation: the sum of recorded
// per-site log densities over sel. Models embed this behavior by
// delegation. Returns an error naming the first selected site absent from
// the trace.
func ProjectTrace(tr *Trace, sel Selection) (float64, error) {
	total := 0.0
	for _, name := range sel.Names() {
		ch, ok := tr.Choice(name)
		if !ok {
			return 0, fmt.Errorf("trace has no choice site %q: %w", name, ErrInvalidObservation)
		}
		total += ch.LogDensity
	}
	return total, nil
}
