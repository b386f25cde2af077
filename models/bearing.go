package models

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/evidence-sim/evidence-sim/gen"
)

// Choice site names for Bearing.
const (
	SiteX       = "x"
	SiteY       = "y"
	SiteBearing = "bearing"
)

// Bearing is the 2D heading model: a latent position (x, y) with Gaussian
// priors, observed through a noisy compass bearing
//
//	x ~ Normal(args[0], StdX)
//	y ~ Normal(args[1], StdY)
//	bearing ~ VonMises(atan2(y, x), Kappa)
//
// Arguments are the two prior means. The return value is the true heading
// atan2(y, x).
type Bearing struct {
	StdX  float64
	StdY  float64
	Kappa float64
}

var _ gen.GenerativeModel = Bearing{}

// ChoiceSites returns the model's sites, latents first.
func (m Bearing) ChoiceSites() []string {
	return []string{SiteX, SiteY, SiteBearing}
}

func (m Bearing) priorMeans(args []float64) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("bearing model takes 2 arguments (prior means), got %d", len(args))
	}
	return args[0], args[1], nil
}

// Simulate samples position and bearing jointly from the prior.
func (m Bearing) Simulate(args []float64, rng *rand.Rand) *gen.Trace {
	tr, _, err := m.Generate(args, nil, rng)
	if err != nil {
		panic(err)
	}
	return tr
}

// Generate samples the unfixed sites ancestrally (x, y, then bearing given
// both) and holds fixed values verbatim; the weight is the sum of the
// fixed sites' log densities under the model.
func (m Bearing) Generate(args []float64, fixed map[string]float64, rng *rand.Rand) (*gen.Trace, float64, error) {
	if err := gen.ValidateFixed(m, fixed); err != nil {
		return nil, 0, err
	}
	muX, muY, err := m.priorMeans(args)
	if err != nil {
		return nil, 0, err
	}
	choices := make(gen.Choices, 3)
	logWeight := 0.0

	sample := func(site string, mu, sigma float64) float64 {
		prior := distuv.Normal{Mu: mu, Sigma: sigma}
		v, isFixed := fixed[site]
		if !isFixed {
			v = rng.NormFloat64()*sigma + mu
		}
		ch := gen.Choice{Value: v, LogDensity: prior.LogProb(v), Observed: isFixed}
		choices[site] = ch
		if isFixed {
			logWeight += ch.LogDensity
		}
		return v
	}
	x := sample(SiteX, muX, m.StdX)
	y := sample(SiteY, muY, m.StdY)

	heading := math.Atan2(y, x)
	obs := VonMises{Mu: heading, Kappa: m.Kappa}
	b, bFixed := fixed[SiteBearing]
	if !bFixed {
		b = obs.Rand(rng)
	}
	bChoice := gen.Choice{Value: b, LogDensity: obs.LogProb(b), Observed: bFixed}
	choices[SiteBearing] = bChoice
	if bFixed {
		logWeight += bChoice.LogDensity
	}

	return gen.NewTrace(args, choices, heading), logWeight, nil
}

// Project returns the summed recorded log densities of the selected sites.
func (m Bearing) Project(tr *gen.Trace, sel gen.Selection) (float64, error) {
	return gen.ProjectTrace(tr, sel)
}

// Latents is the selection of the model's latent sites.
func (m Bearing) Latents() gen.Selection {
	return gen.Select(SiteX, SiteY)
}

// Observations is the selection of the model's observation site.
func (m Bearing) Observations() gen.Selection {
	return gen.Select(SiteBearing)
}
