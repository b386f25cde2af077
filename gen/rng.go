package gen

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// EvaluationKey uniquely identifies a reproducible estimation run.
// Two runs with the same EvaluationKey and identical configuration MUST
// produce bit-for-bit identical results.
type EvaluationKey int64

// NewEvaluationKey creates an EvaluationKey from a seed value.
func NewEvaluationKey(seed int64) EvaluationKey {
	return EvaluationKey(seed)
}

// StreamTrial returns the stream name for trial t. Every trial gets its
// own stream so trials stay independent under concurrent evaluation.
func StreamTrial(t int) string {
	return fmt.Sprintf("trial_%d", t)
}

// StreamGuide is the stream name for variational-guide sampling.
const StreamGuide = "guide"

// PartitionedRNG provides deterministic, isolated RNG instances per named
// stream. Estimator unbiasedness requires independent draws across
// particles and trials; sharing one mutable PRNG across workers would
// violate that, so each parallel unit of work takes its own stream.
//
// Derivation formula: masterSeed XOR fnv1a64(streamName).
//
// Thread-safety: NOT thread-safe. Derive all streams from a single
// goroutine before fanning out.
type PartitionedRNG struct {
	key     EvaluationKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from an EvaluationKey.
func NewPartitionedRNG(key EvaluationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:     key,
		streams: make(map[string]*rand.Rand),
	}
}

// ForStream returns a deterministically-seeded RNG for the named stream.
// The same stream name always returns the same *rand.Rand instance
// (cached). Never returns nil.
func (p *PartitionedRNG) ForStream(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}
	derivedSeed := int64(p.key) ^ fnv1a64(name)
	rng := rand.New(rand.NewSource(derivedSeed))
	p.streams[name] = rng
	return rng
}

// ForTrial returns the RNG stream for trial t.
func (p *PartitionedRNG) ForTrial(t int) *rand.Rand {
	return p.ForStream(StreamTrial(t))
}

// Key returns the EvaluationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() EvaluationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
