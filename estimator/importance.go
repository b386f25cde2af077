package estimator

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/evidence-sim/evidence-sim/gen"
)

// ImportanceSample pairs a trace with its log-space importance weight.
type ImportanceSample struct {
	Trace     *gen.Trace
	LogWeight float64
}

// ImportanceResult bundles the lower-bound estimate with the particle set
// that produced it. The particles exist only for resampling; the bound is
// complete without them. The whole result is scoped to one estimation call.
type ImportanceResult struct {
	Estimate BoundEstimate
	Samples  []ImportanceSample
}

// LowerBound draws n independent proposal samples from the model's
// internal sampler conditioned on observed, and reduces their importance
// weights to the estimate
//
//	log_value = logsumexp(w_1..n) - log(n)
//
// exp(log_value) is an unbiased estimate of p(observed), so log_value is a
// stochastic lower bound on log p(observed) with tail
// Pr(log_value < log p + δ) ≥ 1 - exp(-δ).
func LowerBound(model gen.GenerativeModel, args []float64, observed map[string]float64, n int, rng *rand.Rand) (*ImportanceResult, error) {
	if n < 1 {
		return nil, fmt.Errorf("num particles must be >= 1, got %d", n)
	}
	samples := make([]ImportanceSample, n)
	logWeights := make([]float64, n)
	for i := 0; i < n; i++ {
		tr, lw, err := model.Generate(args, observed, rng)
		if err != nil {
			return nil, fmt.Errorf("particle %d: %w", i, err)
		}
		if err := checkWeight(i, lw); err != nil {
			return nil, err
		}
		samples[i] = ImportanceSample{Trace: tr, LogWeight: lw}
		logWeights[i] = lw
	}
	return &ImportanceResult{
		Estimate: BoundEstimate{
			Kind:         Lower,
			LogValue:     logMeanExp(logWeights),
			NumParticles: n,
		},
		Samples: samples,
	}, nil
}

// Resample draws m traces with probability proportional to their
// importance weights (multinomial, inverse-CDF on the normalized weights).
// Used for approximate-posterior visualization, not for the bound itself;
// the draw is implementation-defined beyond being proportional to weight.
func (r *ImportanceResult) Resample(m int, rng *rand.Rand) ([]*gen.Trace, error) {
	if m < 0 || m > len(r.Samples) {
		return nil, fmt.Errorf("resample count %d outside [0, %d]", m, len(r.Samples))
	}
	total := floatsLogSumExp(r.Samples)
	if math.IsInf(total, -1) {
		return nil, fmt.Errorf("all %d particles have zero probability: %w", len(r.Samples), gen.ErrNonFiniteWeight)
	}
	cdf := make([]float64, len(r.Samples))
	cum := 0.0
	for i, s := range r.Samples {
		cum += math.Exp(s.LogWeight - total)
		cdf[i] = cum
	}
	cdf[len(cdf)-1] = 1.0
	out := make([]*gen.Trace, m)
	for j := 0; j < m; j++ {
		u := rng.Float64()
		lo := 0
		for lo < len(cdf)-1 && cdf[lo] < u {
			lo++
		}
		out[j] = r.Samples[lo].Trace
	}
	return out, nil
}

func floatsLogSumExp(samples []ImportanceSample) float64 {
	ws := make([]float64, len(samples))
	for i, s := range samples {
		ws[i] = s.LogWeight
	}
	return floats.LogSumExp(ws)
}
