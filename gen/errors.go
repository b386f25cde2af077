package gen

import "errors"

// Estimation failures are contract violations by the caller, never
// transient conditions; nothing in this module retries.
var (
	// ErrInvalidObservation reports a fixed-choice name that the model does
	// not define as a choice site.
	ErrInvalidObservation = errors.New("observed choice not defined by model")

	// ErrMissingExactSample reports an upper-bound estimate attempted
	// without an exact conditional sample. The estimator is silently wrong
	// without one, so the call fails instead of returning a number.
	ErrMissingExactSample = errors.New("exact conditional sample required")

	// ErrNonFiniteWeight reports a NaN or +Inf particle log-weight.
	// -Inf is not an error: it is a zero-probability event and contributes
	// nothing to a log-sum-exp reduction.
	ErrNonFiniteWeight = errors.New("non-finite particle log-weight")
)
