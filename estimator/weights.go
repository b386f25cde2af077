package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/evidence-sim/evidence-sim/gen"
)

// checkWeight enforces the non-finite weight policy: NaN and +Inf bias the
// estimator and abort the estimate; -Inf is a zero-probability event and
// flows through the log-sum-exp (it contributes nothing to the sum).
func checkWeight(i int, lw float64) error {
	if math.IsNaN(lw) || math.IsInf(lw, 1) {
		return fmt.Errorf("particle %d log-weight %v: %w", i, lw, gen.ErrNonFiniteWeight)
	}
	return nil
}

// logMeanExp reduces particle log-weights to log((1/N) Σ exp(w_i)) using a
// numerically stable log-sum-exp. Naive exponentiate-then-sum underflows
// when weights span many orders of magnitude, which they do for realistic
// particle counts.
func logMeanExp(logWeights []float64) float64 {
	return floats.LogSumExp(logWeights) - math.Log(float64(len(logWeights)))
}
