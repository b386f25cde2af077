// Package variational provides the explicit parameter store, a mean-field
// normal guide, and generic ELBO estimation written against the
// GenerativeModel interface. It is the consumer side of the sandwich:
// optimize a guide, estimate ELBO values per observation, and compare them
// against the upper bounds to estimate the KL gap.
//
// Variational parameters live in an explicit Params value passed into and
// returned from every step; there is no process-wide mutable parameter
// table.
package variational

import (
	"fmt"
	"sort"
)

// Params is an immutable store of named variational parameters. With
// returns a new store; an existing Params value never changes.
type Params struct {
	values map[string]float64
}

// NewParams builds a store from the given values.
func NewParams(values map[string]float64) Params {
	m := make(map[string]float64, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Params{values: m}
}

// Get returns the named parameter.
func (p Params) Get(name string) (float64, bool) {
	v, ok := p.values[name]
	return v, ok
}

// MustGet returns the named parameter or panics; guides use it for
// parameters they declared themselves.
func (p Params) MustGet(name string) float64 {
	v, ok := p.values[name]
	if !ok {
		panic(fmt.Sprintf("variational: missing parameter %q", name))
	}
	return v
}

// With returns a new store with name set to value.
func (p Params) With(name string, value float64) Params {
	m := make(map[string]float64, len(p.values)+1)
	for k, v := range p.values {
		m[k] = v
	}
	m[name] = value
	return Params{values: m}
}

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	out := make([]string, 0, len(p.values))
	for k := range p.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SGDStep takes one gradient-ascent step: params + lr * grad, per named
// parameter present in grad. The optimizer mechanics stay this thin; the
// gradient estimator is the interesting part.
func SGDStep(params Params, grad map[string]float64, lr float64) Params {
	out := params
	for name, g := range grad {
		cur, ok := out.Get(name)
		if !ok {
			continue
		}
		out = out.With(name, cur+lr*g)
	}
	return out
}
