// Package models provides concrete GenerativeModel implementations: the 2D
// heading/bearing model and a conjugate Gaussian model with an analytically
// known marginal likelihood, plus the von Mises distribution they need.
package models

import (
	"math"
	"math/rand"
)

// VonMises is the circular distribution with mean direction Mu (radians)
// and concentration Kappa >= 0. Kappa = 0 degenerates to the uniform
// distribution on the circle.
type VonMises struct {
	Mu    float64
	Kappa float64
}

// LogProb returns the log density at angle x:
//
//	kappa*cos(x-mu) - log(2*pi*I0(kappa))
//
// computed in log domain so large concentrations do not overflow I0.
func (v VonMises) LogProb(x float64) float64 {
	return v.Kappa*math.Cos(x-v.Mu) - math.Log(2*math.Pi) - logBesselI0(v.Kappa)
}

// Rand samples an angle in (-pi, pi] using the Best-Fisher (1979)
// wrapped-Cauchy rejection sampler.
func (v VonMises) Rand(rng *rand.Rand) float64 {
	if v.Kappa == 0 {
		return wrapAngle(v.Mu + (rng.Float64()*2-1)*math.Pi)
	}
	tau := 1 + math.Sqrt(1+4*v.Kappa*v.Kappa)
	rho := (tau - math.Sqrt(2*tau)) / (2 * v.Kappa)
	r := (1 + rho*rho) / (2 * rho)
	for {
		z := math.Cos(math.Pi * rng.Float64())
		f := (1 + r*z) / (r + z)
		c := v.Kappa * (r - f)
		u2 := rng.Float64()
		if u2 < c*(2-c) || u2 <= c*math.Exp(1-c) {
			theta := math.Acos(f)
			if rng.Float64() < 0.5 {
				theta = -theta
			}
			return wrapAngle(v.Mu + theta)
		}
	}
}

// wrapAngle maps x into (-pi, pi].
func wrapAngle(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x <= 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}

// logBesselI0 computes log I0(x) for x >= 0 using the Abramowitz-Stegun
// polynomial approximations 9.8.1 (x < 3.75) and 9.8.2 (x >= 3.75). The
// large-x branch works on exp(-x)*sqrt(x)*I0(x), so the result stays
// finite for concentrations where I0 itself would overflow.
func logBesselI0(x float64) float64 {
	if x < 3.75 {
		t := x / 3.75
		t2 := t * t
		p := 1.0 + t2*(3.5156229+t2*(3.0899424+t2*(1.2067492+
			t2*(0.2659732+t2*(0.0360768+t2*0.0045813)))))
		return math.Log(p)
	}
	t := 3.75 / x
	p := 0.39894228 + t*(0.01328592+t*(0.00225319+t*(-0.00157565+
		t*(0.00916281+t*(-0.02057706+t*(0.02635537+
			t*(-0.01647633+t*0.00392377)))))))
	return x - 0.5*math.Log(x) + math.Log(p)
}
