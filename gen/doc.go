// Package gen defines the trace abstraction and the generative-model
// capability interface that the estimators are written against.
//
// # Reading Guide
//
// Start with these three files to understand the core abstraction:
//   - trace.go: Trace, the immutable record of one model execution
//   - model.go: GenerativeModel, the three-operation capability interface
//   - rng.go: PartitionedRNG, deterministic isolated random streams
//
// # Architecture
//
// The gen package defines data entities and interfaces; algorithms live in
// sibling packages:
//   - estimator/: importance (lower bound) and reciprocal (upper bound)
//     marginal-likelihood estimators
//   - sandwich/: trial orchestration and bound-pair aggregation
//   - models/: concrete GenerativeModel implementations
//   - variational/: parameter store, mean-field guide, ELBO estimation
//
// Estimators never depend on model internals: any type implementing
// GenerativeModel composes with every estimator. Randomness is always an
// explicit *rand.Rand argument; concurrent callers derive isolated streams
// from a PartitionedRNG so that particle draws stay independent.
package gen
