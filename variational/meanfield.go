package variational

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/evidence-sim/evidence-sim/gen"
)

// MeanFieldNormal is an independent-Gaussian guide over a set of latent
// sites. For each latent name it reads two parameters from the store:
// "<name>.mean" and "<name>.log_std".
type MeanFieldNormal struct {
	Latents []string
}

// MeanParam and LogStdParam name the store keys for one latent site.
func MeanParam(site string) string   { return site + ".mean" }
func LogStdParam(site string) string { return site + ".log_std" }

// DefaultParams returns a store initializing every latent to
// Normal(0, 1).
func (g MeanFieldNormal) DefaultParams() Params {
	p := NewParams(nil)
	for _, site := range g.Latents {
		p = p.With(MeanParam(site), 0)
		p = p.With(LogStdParam(site), 0)
	}
	return p
}

// Sample draws one latent assignment from the guide and returns it with
// its log density under the guide.
func (g MeanFieldNormal) Sample(params Params, rng *rand.Rand) (map[string]float64, float64) {
	values := make(map[string]float64, len(g.Latents))
	logq := 0.0
	for _, site := range g.Latents {
		mu := params.MustGet(MeanParam(site))
		sigma := math.Exp(params.MustGet(LogStdParam(site)))
		v := rng.NormFloat64()*sigma + mu
		values[site] = v
		logq += distuv.Normal{Mu: mu, Sigma: sigma}.LogProb(v)
	}
	return values, logq
}

// LogProb returns the guide's log density at the given latent assignment.
func (g MeanFieldNormal) LogProb(params Params, values map[string]float64) float64 {
	logq := 0.0
	for _, site := range g.Latents {
		mu := params.MustGet(MeanParam(site))
		sigma := math.Exp(params.MustGet(LogStdParam(site)))
		logq += distuv.Normal{Mu: mu, Sigma: sigma}.LogProb(values[site])
	}
	return logq
}

// scoreGrad returns the gradient of log q(values) with respect to each
// guide parameter. For Normal(mu, sigma) with sigma = exp(logStd):
//
//	d/dmu     = (v - mu) / sigma^2
//	d/dlogStd = ((v - mu)/sigma)^2 - 1
func (g MeanFieldNormal) scoreGrad(params Params, values map[string]float64) map[string]float64 {
	grad := make(map[string]float64, 2*len(g.Latents))
	for _, site := range g.Latents {
		mu := params.MustGet(MeanParam(site))
		sigma := math.Exp(params.MustGet(LogStdParam(site)))
		z := (values[site] - mu) / sigma
		grad[MeanParam(site)] = z / sigma
		grad[LogStdParam(site)] = z*z - 1
	}
	return grad
}

// ELBO estimates the evidence lower bound for the given observation with k
// guide samples:
//
//	elbo = E_q[ log p(z, obs) - log q(z) ]
//
// The joint density is assessed through model.Generate with every choice
// site fixed (latents from the guide plus the observation), so the
// estimator works for any model whose sites are covered by the guide's
// latents and the observation; it returns an error otherwise.
func ELBO(model gen.GenerativeModel, args []float64, observed map[string]float64, g MeanFieldNormal, params Params, k int, rng *rand.Rand) (float64, error) {
	if k < 1 {
		return 0, fmt.Errorf("num samples must be >= 1, got %d", k)
	}
	if err := coversAllSites(model, g, observed); err != nil {
		return 0, err
	}
	total := 0.0
	for i := 0; i < k; i++ {
		latents, logq := g.Sample(params, rng)
		logp, err := assessJoint(model, args, latents, observed, rng)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		total += logp - logq
	}
	return total / float64(k), nil
}

// ScoreGradient estimates the gradient of the ELBO with respect to the
// guide parameters by the score-function (REINFORCE) estimator, using the
// batch-mean of (log p - log q) as a variance-reducing baseline:
//
//	grad ≈ (1/k) Σ_i ∇logq(z_i) * (f_i - mean(f))
func ScoreGradient(model gen.GenerativeModel, args []float64, observed map[string]float64, g MeanFieldNormal, params Params, k int, rng *rand.Rand) (map[string]float64, error) {
	if k < 2 {
		return nil, fmt.Errorf("num samples must be >= 2 for the baseline, got %d", k)
	}
	if err := coversAllSites(model, g, observed); err != nil {
		return nil, err
	}
	fs := make([]float64, k)
	scores := make([]map[string]float64, k)
	mean := 0.0
	for i := 0; i < k; i++ {
		latents, logq := g.Sample(params, rng)
		logp, err := assessJoint(model, args, latents, observed, rng)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		fs[i] = logp - logq
		scores[i] = g.scoreGrad(params, latents)
		mean += fs[i]
	}
	mean /= float64(k)

	grad := make(map[string]float64)
	for i := 0; i < k; i++ {
		for name, s := range scores[i] {
			grad[name] += s * (fs[i] - mean) / float64(k)
		}
	}
	return grad, nil
}

// assessJoint evaluates log p(latents, observed, args) by generating with
// every site fixed; the Generate weight is then the full joint density.
func assessJoint(model gen.GenerativeModel, args []float64, latents, observed map[string]float64, rng *rand.Rand) (float64, error) {
	fixed := make(map[string]float64, len(latents)+len(observed))
	for k, v := range latents {
		fixed[k] = v
	}
	for k, v := range observed {
		fixed[k] = v
	}
	_, logJoint, err := model.Generate(args, fixed, rng)
	if err != nil {
		return 0, err
	}
	return logJoint, nil
}

// coversAllSites verifies the guide latents plus the observation fix every
// model site, the condition under which the Generate weight equals the
// full joint density.
func coversAllSites(model gen.GenerativeModel, g MeanFieldNormal, observed map[string]float64) error {
	fixed := make(map[string]struct{}, len(g.Latents)+len(observed))
	for _, site := range g.Latents {
		fixed[site] = struct{}{}
	}
	for site := range observed {
		fixed[site] = struct{}{}
	}
	for _, site := range model.ChoiceSites() {
		if _, ok := fixed[site]; !ok {
			return fmt.Errorf("model site %q covered by neither guide nor observation", site)
		}
	}
	return nil
}
