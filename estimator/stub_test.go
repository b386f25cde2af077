package estimator

import (
	"math/rand"

	"github.com/evidence-sim/evidence-sim/gen"
)

// stubModel is a one-site model returning a scripted sequence of
// log-weights, for exercising estimator error paths without real
// densities.
type stubModel struct {
	weights []float64
	calls   int
}

func (s *stubModel) ChoiceSites() []string { return []string{"v"} }

func (s *stubModel) Simulate(args []float64, rng *rand.Rand) *gen.Trace {
	tr, _, _ := s.Generate(args, nil, rng)
	return tr
}

func (s *stubModel) Generate(args []float64, fixed map[string]float64, rng *rand.Rand) (*gen.Trace, float64, error) {
	if err := gen.ValidateFixed(s, fixed); err != nil {
		return nil, 0, err
	}
	lw := s.weights[s.calls%len(s.weights)]
	s.calls++
	choices := gen.Choices{"v": {Value: rng.Float64(), LogDensity: 0}}
	return gen.NewTrace(args, choices, nil), lw, nil
}

func (s *stubModel) Project(tr *gen.Trace, sel gen.Selection) (float64, error) {
	return gen.ProjectTrace(tr, sel)
}
