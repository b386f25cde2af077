package estimator

import (
	"fmt"
	"math/rand"

	"github.com/evidence-sim/evidence-sim/gen"
)

// UpperBound computes the stochastic upper bound on log p(observations)
// from one exact conditional sample plus n-1 ordinary proposal samples:
//
//	w_1     = project(exact trace, observed selection)
//	w_2..n  = ordinary Generate weights against the same observations
//	log_value = logsumexp(w_1..n) - log(n)
//
// Replacing one proposal draw with an exact posterior draw makes
// 1/exp(log_value) an unbiased estimator of 1/p(observations), so by
// Markov's inequality Pr(log_value > log p - δ) ≥ 1 - exp(-δ) for every
// n ≥ 1, tightening as n grows. At n=1 the estimate is exactly the
// projected density of the exact sample's observations.
//
// Exactness of the conditional sample is enforced by the
// gen.ExactConditionalTrace type: there is no way to call this with an
// ordinary importance trace.
func UpperBound(exact *gen.ExactConditionalTrace, model gen.GenerativeModel, args []float64, n int, rng *rand.Rand) (BoundEstimate, error) {
	if exact == nil {
		return BoundEstimate{}, fmt.Errorf("upper bound: %w", gen.ErrMissingExactSample)
	}
	if n < 1 {
		return BoundEstimate{}, fmt.Errorf("num particles must be >= 1, got %d", n)
	}
	logWeights := make([]float64, n)
	exactWeight, err := model.Project(exact.Trace(), exact.Observed())
	if err != nil {
		return BoundEstimate{}, fmt.Errorf("projecting exact sample: %w", err)
	}
	if err := checkWeight(0, exactWeight); err != nil {
		return BoundEstimate{}, err
	}
	logWeights[0] = exactWeight

	observed := exact.ObservedValues()
	for i := 1; i < n; i++ {
		_, lw, err := model.Generate(args, observed, rng)
		if err != nil {
			return BoundEstimate{}, fmt.Errorf("particle %d: %w", i, err)
		}
		if err := checkWeight(i, lw); err != nil {
			return BoundEstimate{}, err
		}
		logWeights[i] = lw
	}
	return BoundEstimate{
		Kind:         Upper,
		LogValue:     logMeanExp(logWeights),
		NumParticles: n,
	}, nil
}
