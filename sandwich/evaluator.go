// Package sandwich orchestrates the bound-pair evaluation: for each trial
// it simulates a joint sample, treats the simulated observations as the
// conditioning event, and computes the importance lower bound and the
// exact-sample upper bound for that observation. The true log marginal
// likelihood is sandwiched between the two with high probability.
package sandwich

import (
	"fmt"
	"math/rand"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/evidence-sim/evidence-sim/estimator"
	"github.com/evidence-sim/evidence-sim/gen"
)

// Evaluator configures a sandwich evaluation run.
//
// Trials are independent and run concurrently; every trial gets its own
// RNG stream derived from Key before any goroutine starts, so particle
// draws stay independent across workers.
type Evaluator struct {
	Model        gen.GenerativeModel
	Args         []float64
	Observed     gen.Selection // which choice sites are the conditioning event
	NumParticles int
	NumTrials    int
	Parallelism  int // 0 means GOMAXPROCS
	Key          gen.EvaluationKey
}

// Run executes NumTrials independent sandwich trials and returns one
// TrialResult per trial, in trial order.
//
// A trial whose upper bound lands below its lower bound is an expected
// statistical event at small particle counts, not an error; it is logged
// and surfaced through Summary.Crossings, never masked.
func (e *Evaluator) Run() ([]TrialResult, error) {
	if e.NumTrials < 1 {
		return nil, fmt.Errorf("num trials must be >= 1, got %d", e.NumTrials)
	}
	if e.NumParticles < 1 {
		return nil, fmt.Errorf("num particles must be >= 1, got %d", e.NumParticles)
	}
	if e.Observed.Len() == 0 {
		return nil, fmt.Errorf("observed selection is empty")
	}
	parallelism := e.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	// PartitionedRNG is not thread-safe: derive every trial stream here,
	// before the fan-out.
	prng := gen.NewPartitionedRNG(e.Key)
	streams := make([]*rand.Rand, e.NumTrials)
	for t := 0; t < e.NumTrials; t++ {
		streams[t] = prng.ForTrial(t)
	}

	logrus.Infof("sandwich: %d trials, %d particles, parallelism=%d", e.NumTrials, e.NumParticles, parallelism)

	results := make([]TrialResult, e.NumTrials)
	var g errgroup.Group
	g.SetLimit(parallelism)
	for t := 0; t < e.NumTrials; t++ {
		t := t
		g.Go(func() error {
			res, err := e.runTrial(t, streams[t])
			if err != nil {
				return fmt.Errorf("trial %d: %w", t, err)
			}
			results[t] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runTrial simulates one joint sample and computes both bounds for it.
func (e *Evaluator) runTrial(t int, rng *rand.Rand) (TrialResult, error) {
	// Joint simulation gives the observation and, by construction, an
	// exact sample of the latents conditioned on that observation.
	joint := e.Model.Simulate(e.Args, rng)
	exact, err := gen.NewExactConditional(joint, e.Observed)
	if err != nil {
		return TrialResult{}, err
	}
	observation := exact.ObservedValues()

	lower, err := estimator.LowerBound(e.Model, e.Args, observation, e.NumParticles, rng)
	if err != nil {
		return TrialResult{}, fmt.Errorf("lower bound: %w", err)
	}
	upper, err := estimator.UpperBound(exact, e.Model, e.Args, e.NumParticles, rng)
	if err != nil {
		return TrialResult{}, fmt.Errorf("upper bound: %w", err)
	}

	res := TrialResult{
		Trial:       t,
		Observation: observation,
		Lower:       lower.Estimate,
		Upper:       upper,
	}
	if res.Crossed() {
		logrus.Warnf("trial %d: bounds crossed (upper %.4f < lower %.4f) at N=%d",
			t, upper.LogValue, lower.Estimate.LogValue, e.NumParticles)
	}
	return res, nil
}
