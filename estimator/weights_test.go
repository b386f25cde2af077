package estimator

import (
	"errors"
	"math"
	"testing"

	"github.com/evidence-sim/evidence-sim/gen"
)

func TestCheckWeight_Policy(t *testing.T) {
	cases := []struct {
		name    string
		lw      float64
		wantErr bool
	}{
		{"finite", -3.7, false},
		{"neg inf is zero-probability", math.Inf(-1), false},
		{"nan", math.NaN(), true},
		{"pos inf", math.Inf(1), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := checkWeight(0, c.lw)
			if c.wantErr {
				if !errors.Is(err, gen.ErrNonFiniteWeight) {
					t.Errorf("checkWeight(%v) = %v, want ErrNonFiniteWeight", c.lw, err)
				}
			} else if err != nil {
				t.Errorf("checkWeight(%v) = %v, want nil", c.lw, err)
			}
		})
	}
}

func TestLogMeanExp_MatchesNaiveOnSmallInputs(t *testing.T) {
	ws := []float64{-1, -2, -0.5}
	naive := 0.0
	for _, w := range ws {
		naive += math.Exp(w)
	}
	want := math.Log(naive / 3)
	if got := logMeanExp(ws); math.Abs(got-want) > 1e-12 {
		t.Errorf("logMeanExp = %v, want %v", got, want)
	}
}

func TestLogMeanExp_StableForExtremeWeights(t *testing.T) {
	// Naive exponentiate-then-sum underflows to log(0) here.
	ws := []float64{-1000, -1001}
	want := -1000 + math.Log((1+math.Exp(-1))/2)
	if got := logMeanExp(ws); math.Abs(got-want) > 1e-9 {
		t.Errorf("logMeanExp = %v, want %v", got, want)
	}

	// And overflows here; the stable reduction must not.
	ws = []float64{1000, 999}
	want = 1000 + math.Log((1+math.Exp(-1))/2)
	if got := logMeanExp(ws); math.Abs(got-want) > 1e-9 {
		t.Errorf("logMeanExp = %v, want %v", got, want)
	}
}

func TestLogMeanExp_ZeroProbabilityParticleContributesNothing(t *testing.T) {
	with := logMeanExp([]float64{-1, math.Inf(-1)})
	want := -1 + math.Log(0.5)
	if math.Abs(with-want) > 1e-12 {
		t.Errorf("logMeanExp with -Inf particle = %v, want %v", with, want)
	}
}
