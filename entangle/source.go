// Package entangle produces the ordered EPR sequence consumed by the
// protocol. Pairs carry the shared amplitude vector; the two particles of
// a pair are logical qubit tags into that vector, not separately owned
// objects.
package entangle

import (
	"encoding/binary"
	"fmt"

	"github.com/tuneinsight/lattigo/v4/utils"
	"golang.org/x/crypto/sha3"

	"qezk/errs"
	"qezk/quantum"
)

const (
	// QubitProver tags the first particle of each pair.
	QubitProver = 0
	// QubitVerifier tags the second particle of each pair.
	QubitVerifier = 1
)

// Particle is a logical reference to one half of an EPR pair. Operations
// addressed to a particle act on its qubit slot of the shared vector and
// produce a new full vector.
type Particle struct {
	PairIndex int
	Qubit     int
}

// Pair is one entangled pair of the EPR sequence.
type Pair struct {
	Index int
	Kind  quantum.BellKind
	State quantum.Vector
}

// ProverParticle returns the prover's half of the pair.
func (p Pair) ProverParticle() Particle {
	return Particle{PairIndex: p.Index, Qubit: QubitProver}
}

// VerifierParticle returns the verifier's half of the pair.
func (p Pair) VerifierParticle() Particle {
	return Particle{PairIndex: p.Index, Qubit: QubitVerifier}
}

// Source generates EPR sequences. It holds no state between calls beyond
// a counter mixed into the kind-randomization key, so repeated randomized
// generations from one Source differ while staying seed-deterministic.
type Source struct {
	generation uint64
}

// NewSource returns a fresh entanglement source.
func NewSource() *Source {
	return &Source{}
}

// Generate builds an ordered sequence of pairCount pairs, all of the given
// kind. No randomness is consumed; the sequence is a pure function of its
// arguments.
func (s *Source) Generate(pairCount int, kind quantum.BellKind) ([]Pair, error) {
	if pairCount < 1 {
		return nil, fmt.Errorf("%w: pair count %d, want >= 1", errs.ErrConfiguration, pairCount)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: bell kind %q", errs.ErrConfiguration, string(kind))
	}
	pairs := make([]Pair, pairCount)
	for i := range pairs {
		state, err := quantum.NewBellState(kind)
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		pairs[i] = Pair{Index: i, Kind: kind, State: state}
	}
	return pairs, nil
}

// GenerateRandomKinds builds an ordered sequence whose per-pair Bell kind
// is drawn from a PRNG keyed by the seed and the source's generation
// counter. Identical (seed, generation) inputs reproduce the sequence.
func (s *Source) GenerateRandomKinds(pairCount int, seed int64) ([]Pair, error) {
	if pairCount < 1 {
		return nil, fmt.Errorf("%w: pair count %d, want >= 1", errs.ErrConfiguration, pairCount)
	}
	prng, err := utils.NewKeyedPRNG(s.kindKey(seed))
	if err != nil {
		return nil, fmt.Errorf("keyed PRNG: %w", err)
	}
	s.generation++

	kinds := quantum.BellKinds()
	pairs := make([]Pair, pairCount)
	var b [1]byte
	for i := range pairs {
		if _, err := prng.Read(b[:]); err != nil {
			return nil, fmt.Errorf("pair %d: read PRNG: %w", i, err)
		}
		kind := kinds[int(b[0])%len(kinds)]
		state, err := quantum.NewBellState(kind)
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		pairs[i] = Pair{Index: i, Kind: kind, State: state}
	}
	return pairs, nil
}

// kindKey derives the 32-byte PRNG key for kind randomization.
func (s *Source) kindKey(seed int64) []byte {
	h := sha3.NewShake256()
	h.Write([]byte("qezk/kinds"))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], s.generation)
	h.Write(buf[:])
	key := make([]byte, 32)
	h.Read(key)
	return key
}
