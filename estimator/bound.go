// Package estimator implements the Monte Carlo marginal-likelihood
// estimators: the importance-sampling stochastic lower bound and the
// reciprocal-weight stochastic upper bound seeded by an exact conditional
// sample. Both are unbiased in the linear domain and hold as bounds with
// high probability via Markov's inequality, not deterministically.
package estimator

import "fmt"

// BoundKind distinguishes lower from upper marginal-likelihood bounds.
type BoundKind int

const (
	// Lower marks a stochastic lower bound on log p(observations):
	// Pr(LogValue < log p(x) + δ) ≥ 1 - exp(-δ) for every δ ≥ 0.
	Lower BoundKind = iota
	// Upper marks a stochastic upper bound under the same tail bound:
	// Pr(LogValue > log p(x) - δ) ≥ 1 - exp(-δ).
	Upper
)

func (k BoundKind) String() string {
	switch k {
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	default:
		return fmt.Sprintf("BoundKind(%d)", int(k))
	}
}

// BoundEstimate is one stochastic bound on the log marginal likelihood.
type BoundEstimate struct {
	Kind         BoundKind
	LogValue     float64
	NumParticles int
}
