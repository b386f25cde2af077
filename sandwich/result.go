package sandwich

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/evidence-sim/evidence-sim/estimator"
)

// TrialResult is the (observation, LOWER, UPPER) triple for one trial.
type TrialResult struct {
	Trial       int
	Observation map[string]float64
	Lower       estimator.BoundEstimate
	Upper       estimator.BoundEstimate
}

// Crossed reports whether the upper bound landed below the lower bound, an
// expected statistical event at fixed confidence level when the particle
// count is small.
func (r TrialResult) Crossed() bool {
	return r.Upper.LogValue < r.Lower.LogValue
}

// Gap returns Upper - Lower in nats. Negative when the bounds crossed.
func (r TrialResult) Gap() float64 {
	return r.Upper.LogValue - r.Lower.LogValue
}

// Summary aggregates trial results. All values are in nats.
type Summary struct {
	NumTrials    int     `yaml:"num_trials"`
	NumParticles int     `yaml:"num_particles"`
	MeanLower    float64 `yaml:"mean_lower"`
	MeanUpper    float64 `yaml:"mean_upper"`
	MeanGap      float64 `yaml:"mean_gap"`
	StdGap       float64 `yaml:"std_gap"`
	Crossings    int     `yaml:"crossings"`
}

// Summarize reduces trial results to a Summary.
func Summarize(results []TrialResult) (Summary, error) {
	if len(results) == 0 {
		return Summary{}, fmt.Errorf("no trial results to summarize")
	}
	lowers := make([]float64, len(results))
	uppers := make([]float64, len(results))
	gaps := make([]float64, len(results))
	crossings := 0
	for i, r := range results {
		lowers[i] = r.Lower.LogValue
		uppers[i] = r.Upper.LogValue
		gaps[i] = r.Gap()
		if r.Crossed() {
			crossings++
		}
	}
	return Summary{
		NumTrials:    len(results),
		NumParticles: results[0].Lower.NumParticles,
		MeanLower:    stat.Mean(lowers, nil),
		MeanUpper:    stat.Mean(uppers, nil),
		MeanGap:      stat.Mean(gaps, nil),
		StdGap:       stat.StdDev(gaps, nil),
		Crossings:    crossings,
	}, nil
}

// KLGapSummary reports the mean KL-divergence upper estimate given one
// ELBO estimate per trial, in trial order: mean over trials of
// (UPPER - ELBO). The ELBO values come from an external consumer (a
// variational-inference loop); this is downstream aggregation only.
func KLGapSummary(results []TrialResult, elbos []float64) (float64, error) {
	if len(elbos) != len(results) {
		return 0, fmt.Errorf("got %d ELBO estimates for %d trials", len(elbos), len(results))
	}
	gaps := make([]float64, len(results))
	for i, r := range results {
		gaps[i] = r.Upper.LogValue - elbos[i]
	}
	return stat.Mean(gaps, nil), nil
}
