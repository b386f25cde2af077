// Package testutil provides shared statistical test infrastructure for the
// estimator, sandwich, models, and variational test packages.
package testutil

import (
	"math"
	"testing"
)

// Mean returns the arithmetic mean of xs.
func Mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Frac returns the fraction of xs satisfying pred.
func Frac(xs []float64, pred func(float64) bool) float64 {
	n := 0
	for _, x := range xs {
		if pred(x) {
			n++
		}
	}
	return float64(n) / float64(len(xs))
}

// AssertWithinAbs fails the test when got is not within tol of want.
func AssertWithinAbs(t *testing.T, got, want, tol float64, what string) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v ± %v", what, got, want, tol)
	}
}

// AssertWithinRel fails the test when got is not within frac relative
// tolerance of want (want must be nonzero).
func AssertWithinRel(t *testing.T, got, want, frac float64, what string) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want)/math.Abs(want) > frac {
		t.Errorf("%s = %v, want %v within %.0f%%", what, got, want, frac*100)
	}
}
