package protocol

import (
	"fmt"
	"runtime"

	"qezk/errs"
	"qezk/measure"
	"qezk/quantum"
)

// Config fixes the parameters of one proof run.
type Config struct {
	// PairCount is the number of EPR pairs consumed by the run. Must be
	// at least 1.
	PairCount int `json:"pair_count" msgpack:"pair_count"`

	// CHSHThreshold is the acceptance bound on the CHSH statistic. It
	// must lie in (2, 2√2]: at most the Tsirelson bound, and above the
	// classical bound so that passing it witnesses entanglement.
	CHSHThreshold float64 `json:"chsh_threshold" msgpack:"chsh_threshold"`

	// BellKind selects the entangled state the source emits.
	BellKind quantum.BellKind `json:"bell_kind" msgpack:"bell_kind"`

	// ExtendedBases switches setting derivation from the two-axis CHSH
	// design to the three-axis {Z,X,Y} variant. Y samples carry no CHSH
	// weight, so small extended runs can fail with insufficient data.
	ExtendedBases bool `json:"extended_bases,omitempty" msgpack:"extended_bases,omitempty"`

	// RandomizeKinds draws each pair's Bell kind from the seeded
	// generator instead of emitting identical pairs.
	RandomizeKinds bool `json:"randomize_kinds,omitempty" msgpack:"randomize_kinds,omitempty"`

	// RequireFullDesign makes finalize demand at least one sample in
	// every one of the four Z/X setting combinations.
	RequireFullDesign bool `json:"require_full_design,omitempty" msgpack:"require_full_design,omitempty"`

	// Parallelism bounds the measurement worker count. Zero means one
	// worker per CPU. Results are identical at any setting: every pair
	// samples from its own substream.
	Parallelism int `json:"-" msgpack:"-"`
}

// DefaultConfig mirrors the reference parameters: 10000 pairs, threshold
// 2.2, Φ+ pairs.
func DefaultConfig() Config {
	return Config{
		PairCount:     10000,
		CHSHThreshold: 2.2,
		BellKind:      quantum.PhiPlus,
	}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.PairCount < 1 {
		return fmt.Errorf("%w: pair count %d, want >= 1", errs.ErrConfiguration, c.PairCount)
	}
	if !(c.CHSHThreshold > measure.ClassicalBound) || c.CHSHThreshold > measure.TsirelsonBound {
		return fmt.Errorf("%w: CHSH threshold %v, want in (%v, %v]",
			errs.ErrConfiguration, c.CHSHThreshold, measure.ClassicalBound, measure.TsirelsonBound)
	}
	if !c.BellKind.Valid() {
		return fmt.Errorf("%w: bell kind %q", errs.ErrConfiguration, string(c.BellKind))
	}
	return nil
}

// workers resolves the effective measurement worker count.
func (c Config) workers() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	return runtime.NumCPU()
}
