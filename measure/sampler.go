package measure

import (
	"encoding/binary"
	"fmt"

	"github.com/tuneinsight/lattigo/v4/utils"
	"golang.org/x/crypto/sha3"
)

// Sampler draws uniform variates from a keyed deterministic PRNG. Each
// pair of a run owns its own substream, keyed by (seed, pair index), so
// measurement results do not depend on the order pairs are processed in.
type Sampler struct {
	prng utils.PRNG
}

// SubstreamKey derives the 32-byte PRNG key of one pair's substream.
func SubstreamKey(seed int64, pairIndex int) []byte {
	h := sha3.NewShake256()
	h.Write([]byte("qezk/pair"))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(pairIndex))
	h.Write(buf[:])
	key := make([]byte, 32)
	h.Read(key)
	return key
}

// NewPairSampler builds the sampler for one pair's substream.
func NewPairSampler(seed int64, pairIndex int) (*Sampler, error) {
	prng, err := utils.NewKeyedPRNG(SubstreamKey(seed, pairIndex))
	if err != nil {
		return nil, fmt.Errorf("keyed PRNG for pair %d: %w", pairIndex, err)
	}
	return &Sampler{prng: prng}, nil
}

// NewSamplerFromKey builds a sampler from an explicit 32-byte key.
func NewSamplerFromKey(key []byte) (*Sampler, error) {
	prng, err := utils.NewKeyedPRNG(key)
	if err != nil {
		return nil, fmt.Errorf("keyed PRNG: %w", err)
	}
	return &Sampler{prng: prng}, nil
}

// Float64 returns a uniform variate in [0, 1) with 53 bits of precision.
func (s *Sampler) Float64() (float64, error) {
	var buf [8]byte
	if _, err := s.prng.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read PRNG: %w", err)
	}
	u := binary.LittleEndian.Uint64(buf[:])
	return float64(u>>11) / (1 << 53), nil
}
