package gen

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Choice records one random choice site of a model execution: the sampled
// value and the log density of that value given the site's parents at
// sampling time. LogJoint of a Trace is the sum of these per-site terms,
// which is what makes Project a deterministic lookup rather than a density
// re-evaluation.
type Choice struct {
	Value      float64
	LogDensity float64
	Observed   bool
}

// Choices maps choice-site name to its record. Keys are unique; one entry
// per random choice site.
type Choices map[string]Choice

// Names returns the choice-site names in sorted order.
func (c Choices) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// clone returns a deep copy. Traces hand out copies so that a constructed
// Trace can never be mutated through a retained map reference.
func (c Choices) clone() Choices {
	out := make(Choices, len(c))
	for name, ch := range c {
		out[name] = ch
	}
	return out
}

// Trace is the immutable record of one execution of a generative model:
// argument values, all sampled choices, and the derived joint log density.
// Traces are created only by GenerativeModel implementations; any "update"
// is a new Trace.
type Trace struct {
	id       uuid.UUID
	args     []float64
	choices  Choices
	logJoint float64
	retval   any
}

// NewTrace constructs a Trace from the given execution record. The joint
// log density is derived from the per-site terms, never supplied, so the
// consistency invariant holds by construction. A NaN site density panics:
// it means the model evaluated a density outside its own support, which is
// a model bug, not an input error.
func NewTrace(args []float64, choices Choices, retval any) *Trace {
	logJoint := 0.0
	for name, ch := range choices {
		if math.IsNaN(ch.LogDensity) {
			panic(fmt.Sprintf("gen: NaN log-density at choice site %q", name))
		}
		logJoint += ch.LogDensity
	}
	argsCopy := make([]float64, len(args))
	copy(argsCopy, args)
	return &Trace{
		id:       uuid.New(),
		args:     argsCopy,
		choices:  choices.clone(),
		logJoint: logJoint,
		retval:   retval,
	}
}

// ID returns the trace's unique identifier, used for logging and
// resampling provenance only. Estimators never branch on it.
func (t *Trace) ID() uuid.UUID { return t.id }

// Args returns a copy of the model arguments the trace was produced with.
func (t *Trace) Args() []float64 {
	out := make([]float64, len(t.args))
	copy(out, t.args)
	return out
}

// Choices returns a copy of the trace's choice map.
func (t *Trace) Choices() Choices { return t.choices.clone() }

// Choice returns the record for one choice site.
func (t *Trace) Choice(name string) (Choice, bool) {
	ch, ok := t.choices[name]
	return ch, ok
}

// LogJoint returns log p(choices, args) under the model that produced the
// trace.
func (t *Trace) LogJoint() float64 { return t.logJoint }

// ReturnValue returns the model's derived output for this execution.
func (t *Trace) ReturnValue() any { return t.retval }

// Values extracts the raw sampled values for the sites in sel.
// Returns an error naming the first selected site absent from the trace.
func (t *Trace) Values(sel Selection) (map[string]float64, error) {
	out := make(map[string]float64, sel.Len())
	for _, name := range sel.Names() {
		ch, ok := t.choices[name]
		if !ok {
			return nil, fmt.Errorf("trace has no choice site %q: %w", name, ErrInvalidObservation)
		}
		out[name] = ch.Value
	}
	return out, nil
}

// ExactConditionalTrace wraps a Trace whose latent choices are an exact
// sample conditioned on the trace's own values at the selected observation
// sites. Exactness is by construction: the only way to obtain one is to
// jointly simulate latents and observations together and condition on the
// simulated observations. The upper-bound estimator accepts only this type,
// so an ordinary importance trace cannot be passed where exactness is
// required.
type ExactConditionalTrace struct {
	trace    *Trace
	observed Selection
}

// NewExactConditional marks tr as an exact conditional sample with respect
// to the observation sites in observed. tr must contain every selected
// site, and must have at least one unselected (latent) site.
func NewExactConditional(tr *Trace, observed Selection) (*ExactConditionalTrace, error) {
	if tr == nil {
		return nil, fmt.Errorf("nil trace: %w", ErrMissingExactSample)
	}
	latents := 0
	for name := range tr.choices {
		if !observed.Has(name) {
			latents++
		}
	}
	for _, name := range observed.Names() {
		if _, ok := tr.choices[name]; !ok {
			return nil, fmt.Errorf("observation site %q missing from trace: %w", name, ErrInvalidObservation)
		}
	}
	if latents == 0 {
		return nil, fmt.Errorf("trace has no latent sites outside the observed selection: %w", ErrMissingExactSample)
	}
	return &ExactConditionalTrace{trace: tr, observed: observed}, nil
}

// Trace returns the underlying joint trace.
func (e *ExactConditionalTrace) Trace() *Trace { return e.trace }

// Observed returns the selection of observation sites the sample is
// conditioned on.
func (e *ExactConditionalTrace) Observed() Selection { return e.observed }

// ObservedValues returns the conditioning values, i.e. the trace's values
// at the observed sites.
func (e *ExactConditionalTrace) ObservedValues() map[string]float64 {
	vals, err := e.trace.Values(e.observed)
	if err != nil {
		// NewExactConditional verified every observed site exists.
		panic(err)
	}
	return vals
}
