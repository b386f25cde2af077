package estimator

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/evidence-sim/evidence-sim/gen"
	"github.com/evidence-sim/evidence-sim/internal/testutil"
	"github.com/evidence-sim/evidence-sim/models"
)

// simulateExact draws one joint sample and conditions on its own
// observation, which is exact by construction.
func simulateExact(t *testing.T, rng *rand.Rand) *gen.ExactConditionalTrace {
	t.Helper()
	joint := conjugate.Simulate(nil, rng)
	exact, err := gen.NewExactConditional(joint, gen.Select(models.SiteObs))
	if err != nil {
		t.Fatal(err)
	}
	return exact
}

func TestUpperBound_SingleParticleIsProjectedDensity(t *testing.T) {
	// N=1 reduces to exactly project(exact trace, observed selection);
	// the two estimators coincide at N=1 when fed the same trace.
	rng := rand.New(rand.NewSource(42))
	exact := simulateExact(t, rng)

	est, err := UpperBound(exact, conjugate, nil, 1, rng)
	if err != nil {
		t.Fatal(err)
	}
	want, err := conjugate.Project(exact.Trace(), exact.Observed())
	if err != nil {
		t.Fatal(err)
	}
	if est.LogValue != want {
		t.Errorf("N=1 upper bound = %v, want projected density %v", est.LogValue, want)
	}
	if est.Kind != Upper || est.NumParticles != 1 {
		t.Errorf("estimate metadata = %+v", est)
	}
}

func TestUpperBound_IsStochasticUpperBound(t *testing.T) {
	// Markov tail on the reciprocal:
	// Pr(log_value <= log p(x) - delta) <= exp(-delta).
	rng := rand.New(rand.NewSource(42))

	trials := 500
	diffs := make([]float64, trials) // log_value - log p(x_t), per-trial observation
	for i := range diffs {
		exact := simulateExact(t, rng)
		est, err := UpperBound(exact, conjugate, nil, 10, rng)
		if err != nil {
			t.Fatal(err)
		}
		x := exact.ObservedValues()[models.SiteObs]
		diffs[i] = est.LogValue - conjugate.AnalyticLogMarginal(x)
	}

	// Jensen on the reciprocal: the mean log estimate sits above log p(x).
	if m := testutil.Mean(diffs); m < -0.05 {
		t.Errorf("mean upper estimate %v nats below log p(x)", m)
	}
	for _, delta := range []float64{1, 2, 4} {
		undershoot := testutil.Frac(diffs, func(d float64) bool { return d <= -delta })
		if bound := math.Exp(-delta); undershoot > bound+0.05 {
			t.Errorf("delta=%v: undershoot frequency %v above Markov bound %v", delta, undershoot, bound)
		}
	}
}

func TestUpperBound_ConvergesToAnalyticMarginal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	exact := simulateExact(t, rng)
	x := exact.ObservedValues()[models.SiteObs]

	est, err := UpperBound(exact, conjugate, nil, 50000, rng)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertWithinAbs(t, est.LogValue, conjugate.AnalyticLogMarginal(x), 0.05, "upper bound at N=50000")
}

func TestUpperBound_SitsAboveLowerBoundOnAverage(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	trials := 200
	gaps := make([]float64, trials)
	for i := range gaps {
		exact := simulateExact(t, rng)
		upper, err := UpperBound(exact, conjugate, nil, 100, rng)
		if err != nil {
			t.Fatal(err)
		}
		lower, err := LowerBound(conjugate, nil, exact.ObservedValues(), 100, rng)
		if err != nil {
			t.Fatal(err)
		}
		gaps[i] = upper.LogValue - lower.Estimate.LogValue
	}
	if m := testutil.Mean(gaps); m <= 0 {
		t.Errorf("mean upper-lower gap = %v, want positive", m)
	}
}

func TestUpperBound_RequiresExactSample(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	_, err := UpperBound(nil, conjugate, nil, 10, rng)
	if !errors.Is(err, gen.ErrMissingExactSample) {
		t.Errorf("err = %v, want ErrMissingExactSample", err)
	}
}

func TestUpperBound_InputValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	exact := simulateExact(t, rng)
	if _, err := UpperBound(exact, conjugate, nil, 0, rng); err == nil {
		t.Error("N=0 accepted")
	}
}
