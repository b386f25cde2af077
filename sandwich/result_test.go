package sandwich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidence-sim/evidence-sim/estimator"
	"github.com/evidence-sim/evidence-sim/internal/testutil"
)

func boundPair(lower, upper float64, n int) TrialResult {
	return TrialResult{
		Lower: estimator.BoundEstimate{Kind: estimator.Lower, LogValue: lower, NumParticles: n},
		Upper: estimator.BoundEstimate{Kind: estimator.Upper, LogValue: upper, NumParticles: n},
	}
}

func TestSummarize(t *testing.T) {
	results := []TrialResult{
		boundPair(-3, -1, 10),
		boundPair(-2, -2.5, 10), // crossed
		boundPair(-4, -2, 10),
	}
	summary, err := Summarize(results)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.NumTrials)
	assert.Equal(t, 10, summary.NumParticles)
	assert.InDelta(t, -3, summary.MeanLower, 1e-12)
	assert.InDelta(t, (-1-2.5-2)/3.0, summary.MeanUpper, 1e-12)
	assert.InDelta(t, testutil.Mean([]float64{2, -0.5, 2}), summary.MeanGap, 1e-12)
	assert.Equal(t, 1, summary.Crossings)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil)
	assert.Error(t, err)
}

func TestKLGapSummary(t *testing.T) {
	results := []TrialResult{
		boundPair(-3, -1, 10),
		boundPair(-4, -2, 10),
	}
	gap, err := KLGapSummary(results, []float64{-2, -2.5})
	require.NoError(t, err)
	// (UPPER - ELBO) averages to ((-1 - -2) + (-2 - -2.5)) / 2.
	assert.InDelta(t, 0.75, gap, 1e-12)

	_, err = KLGapSummary(results, []float64{-2})
	assert.Error(t, err)
}
