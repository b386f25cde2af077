package models

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/evidence-sim/evidence-sim/gen"
)

// Choice site names for ConjugateGaussian.
const (
	SiteLatent = "z"
	SiteObs    = "x"
)

// ConjugateGaussian is the reference model with an analytically known
// marginal likelihood:
//
//	z ~ Normal(PriorMean, PriorStd)
//	x ~ Normal(z, ObsStd)
//
// so marginally x ~ Normal(PriorMean, sqrt(PriorStd^2 + ObsStd^2)).
// Arguments are unused; the model is configured by its fields.
type ConjugateGaussian struct {
	PriorMean float64
	PriorStd  float64
	ObsStd    float64
}

var _ gen.GenerativeModel = ConjugateGaussian{}

// ChoiceSites returns the model's two sites, latent first.
func (m ConjugateGaussian) ChoiceSites() []string {
	return []string{SiteLatent, SiteObs}
}

// Simulate samples z from the prior and x from the likelihood.
func (m ConjugateGaussian) Simulate(args []float64, rng *rand.Rand) *gen.Trace {
	tr, _, err := m.Generate(args, nil, rng)
	if err != nil {
		// Generate with no fixed choices cannot fail.
		panic(err)
	}
	return tr
}

// Generate samples the unfixed sites from the model's own generative
// process (internal proposal = prior) and holds the fixed ones verbatim.
// The returned weight is the sum of the fixed sites' log densities, which
// is log p(all) - log q(sampled | fixed) with q the prior.
func (m ConjugateGaussian) Generate(args []float64, fixed map[string]float64, rng *rand.Rand) (*gen.Trace, float64, error) {
	if err := gen.ValidateFixed(m, fixed); err != nil {
		return nil, 0, err
	}
	choices := make(gen.Choices, 2)
	logWeight := 0.0

	prior := distuv.Normal{Mu: m.PriorMean, Sigma: m.PriorStd}
	z, zFixed := fixed[SiteLatent]
	if !zFixed {
		z = rng.NormFloat64()*m.PriorStd + m.PriorMean
	}
	zChoice := gen.Choice{Value: z, LogDensity: prior.LogProb(z), Observed: zFixed}
	choices[SiteLatent] = zChoice
	if zFixed {
		logWeight += zChoice.LogDensity
	}

	lik := distuv.Normal{Mu: z, Sigma: m.ObsStd}
	x, xFixed := fixed[SiteObs]
	if !xFixed {
		x = rng.NormFloat64()*m.ObsStd + z
	}
	xChoice := gen.Choice{Value: x, LogDensity: lik.LogProb(x), Observed: xFixed}
	choices[SiteObs] = xChoice
	if xFixed {
		logWeight += xChoice.LogDensity
	}

	return gen.NewTrace(args, choices, x), logWeight, nil
}

// Project returns the summed recorded log densities of the selected sites.
func (m ConjugateGaussian) Project(tr *gen.Trace, sel gen.Selection) (float64, error) {
	return gen.ProjectTrace(tr, sel)
}

// AnalyticLogMarginal returns log p(x) in closed form, for test oracles.
func (m ConjugateGaussian) AnalyticLogMarginal(x float64) float64 {
	marginal := distuv.Normal{
		Mu:    m.PriorMean,
		Sigma: math.Sqrt(m.PriorStd*m.PriorStd + m.ObsStd*m.ObsStd),
	}
	return marginal.LogProb(x)
}

// AnalyticPosterior returns the posterior mean and std of z given x, for
// test oracles (the posterior is Gaussian by conjugacy).
func (m ConjugateGaussian) AnalyticPosterior(x float64) (mean, std float64) {
	priorVar := m.PriorStd * m.PriorStd
	obsVar := m.ObsStd * m.ObsStd
	postVar := 1 / (1/priorVar + 1/obsVar)
	mean = postVar * (m.PriorMean/priorVar + x/obsVar)
	return mean, math.Sqrt(postVar)
}
