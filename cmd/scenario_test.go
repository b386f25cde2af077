package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidence-sim/evidence-sim/models"
)

func TestDefaultScenario_Valid(t *testing.T) {
	for _, name := range []string{ModelBearing, ModelConjugateGaussian} {
		s := DefaultScenario(name)
		assert.NoError(t, s.Validate(), name)
	}
}

func TestScenarioSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScenarioSpec)
		wantErr string
	}{
		{"valid", func(s *ScenarioSpec) {}, ""},
		{"bad version", func(s *ScenarioSpec) { s.Version = "2" }, "unsupported scenario version"},
		{"zero trials", func(s *ScenarioSpec) { s.Trials = 0 }, "trials must be >= 1"},
		{"zero particles", func(s *ScenarioSpec) { s.Particles = 0 }, "particles must be >= 1"},
		{"unknown model", func(s *ScenarioSpec) { s.Model.Name = "mystery" }, "unknown model"},
		{"bearing arg count", func(s *ScenarioSpec) { s.Model.Args = []float64{1} }, "needs 2 args"},
		{"bearing bad std", func(s *ScenarioSpec) { s.Model.StdX = 0 }, "must be positive"},
		{"bearing bad kappa", func(s *ScenarioSpec) { s.Model.Kappa = -1 }, "must be non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultScenario(ModelBearing)
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestScenarioSpec_ValidateConjugateGaussian(t *testing.T) {
	s := DefaultScenario(ModelConjugateGaussian)
	s.Model.ObsStd = 0
	require.Error(t, s.Validate())
}

func TestScenarioSpec_Build(t *testing.T) {
	s := DefaultScenario(ModelBearing)
	model, args, observed, latents, err := s.Build()
	require.NoError(t, err)
	assert.IsType(t, models.Bearing{}, model)
	assert.Equal(t, []float64{1, 0}, args)
	assert.Equal(t, []string{models.SiteBearing}, observed.Names())
	assert.Equal(t, []string{models.SiteX, models.SiteY}, latents)

	s = DefaultScenario(ModelConjugateGaussian)
	model, args, observed, latents, err = s.Build()
	require.NoError(t, err)
	assert.IsType(t, models.ConjugateGaussian{}, model)
	assert.Nil(t, args)
	assert.Equal(t, []string{models.SiteObs}, observed.Names())
	assert.Equal(t, []string{models.SiteLatent}, latents)
}

func TestLoadScenario(t *testing.T) {
	doc := `
version: "1"
seed: 7
trials: 25
particles: 400
model:
  name: bearing
  args: [1.0, 0.0]
  std_x: 1.0
  std_y: 1.0
  kappa: 50
`
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	spec, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), spec.Seed)
	assert.Equal(t, 25, spec.Trials)
	assert.Equal(t, 400, spec.Particles)
	assert.Equal(t, ModelBearing, spec.Model.Name)
	assert.Equal(t, 50.0, spec.Model.Kappa)
}

func TestLoadScenario_Errors(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trials: [not an int"), 0o644))
	_, err = LoadScenario(path)
	assert.Contains(t, err.Error(), "parsing scenario")

	path = filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\ntrials: 5\nparticles: 10\nmodel:\n  name: mystery\n"), 0o644))
	_, err = LoadScenario(path)
	assert.Contains(t, err.Error(), "unknown model")
}
