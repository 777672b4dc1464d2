// Package protocol orchestrates the proof pipeline as a single-use state
// machine: setup → prove → verify → finalize, producing a Proof record.
// Identical (statement, witness, seed, config) inputs yield bit-identical
// Proofs regardless of worker scheduling.
package protocol

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"qezk/encode"
	"qezk/entangle"
	"qezk/errs"
	"qezk/measure"
	"qezk/quantum"
)

// Phase is the engine's protocol state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSetupDone
	PhaseProverDone
	PhaseVerifierDone
	PhaseVerified
	PhaseFailed
)

// String names the phase for logs and errors.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSetupDone:
		return "setup_done"
	case PhaseProverDone:
		return "prover_done"
	case PhaseVerifierDone:
		return "verifier_done"
	case PhaseVerified:
		return "verified"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Engine runs one statement/witness pair through the protocol. Instances
// are single-use; discard at any phase without cleanup, no external
// resource is held.
type Engine struct {
	cfg Config
	log zerolog.Logger
	enc *encode.Encoder
	src *entangle.Source

	phase Phase
	seed  int64

	pairs    []entangle.Pair
	states   []quantum.Vector
	samplers []*measure.Sampler

	statement  string
	directives []encode.Directive

	proverOutcomes   []int
	verifierOutcomes []int
}

// NewEngine validates the configuration and returns an idle engine.
func NewEngine(cfg Config, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:   cfg,
		log:   log.With().Str("component", "protocol").Logger(),
		enc:   encode.NewEncoder(cfg.ExtendedBases),
		src:   entangle.NewSource(),
		phase: PhaseIdle,
	}, nil
}

// Phase returns the engine's current protocol state.
func (e *Engine) Phase() Phase { return e.phase }

// requirePhase enforces the phase ordering of the state machine.
func (e *Engine) requirePhase(want Phase, op string) error {
	if e.phase != want {
		return fmt.Errorf("%w: %s requires phase %s, engine is %s",
			errs.ErrState, op, want, e.phase)
	}
	return nil
}

// FreshSeed draws a seed from the system entropy source.
func FreshSeed() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read entropy: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

// Setup generates the EPR sequence and the per-pair random substreams.
// A nil seed draws a fresh one; either way the seed used is recorded in
// the final Proof so the run stays reproducible.
func (e *Engine) Setup(seed *int64) error {
	if err := e.requirePhase(PhaseIdle, "setup"); err != nil {
		return err
	}
	if seed != nil {
		e.seed = *seed
	} else {
		s, err := FreshSeed()
		if err != nil {
			return err
		}
		e.seed = s
	}

	var err error
	if e.cfg.RandomizeKinds {
		e.pairs, err = e.src.GenerateRandomKinds(e.cfg.PairCount, e.seed)
	} else {
		e.pairs, err = e.src.Generate(e.cfg.PairCount, e.cfg.BellKind)
	}
	if err != nil {
		return err
	}

	e.states = make([]quantum.Vector, e.cfg.PairCount)
	e.samplers = make([]*measure.Sampler, e.cfg.PairCount)
	for i, p := range e.pairs {
		if !p.State.IsNormalized() {
			return fmt.Errorf("%w: pair %d norm %v", errs.ErrNumerical, i, p.State.Norm())
		}
		e.states[i] = p.State.Clone()
		smp, err := measure.NewPairSampler(e.seed, i)
		if err != nil {
			return err
		}
		e.samplers[i] = smp
	}

	e.phase = PhaseSetupDone
	e.log.Debug().Int("pairs", e.cfg.PairCount).Int64("seed", e.seed).
		Str("kind", string(e.cfg.BellKind)).Msg("setup complete")
	return nil
}

// Prove runs the prover side: witness-conditioned local operations, then
// projective measurement of the prover particle of every pair in the
// statement-derived setting.
func (e *Engine) Prove(statement, witness string) error {
	if err := e.requirePhase(PhaseSetupDone, "prove"); err != nil {
		return err
	}
	directives, err := e.enc.Encode(statement, witness, e.cfg.PairCount)
	if err != nil {
		return err
	}
	e.statement = statement
	e.directives = directives
	e.proverOutcomes = make([]int, e.cfg.PairCount)

	err = e.forEachPair(func(i int) error {
		d := e.directives[i]
		state, err := quantum.Apply(e.states[i], d.LocalGate, e.pairs[i].ProverParticle().Qubit)
		if err != nil {
			return fmt.Errorf("pair %d: local gate: %w", i, err)
		}
		basis := measure.AnalyzerBasis(measure.PartyProver, d.ProverSetting)
		outcome, collapsed, err := measure.MeasureQubit(state, e.pairs[i].ProverParticle().Qubit, basis, e.samplers[i])
		if err != nil {
			return fmt.Errorf("pair %d: prover measurement: %w", i, err)
		}
		e.states[i] = collapsed
		e.proverOutcomes[i] = outcome
		return nil
	})
	if err != nil {
		return err
	}

	e.phase = PhaseProverDone
	e.log.Debug().Str("statement", statement).Int("witness_bits", len(witness)).
		Msg("prover phase complete")
	return nil
}

// VerifyPhase runs the verifier side. Settings are recomputed from the
// statement alone, never taken from the prover, which is what makes
// setting tampering detectable.
func (e *Engine) VerifyPhase() error {
	if err := e.requirePhase(PhaseProverDone, "verify"); err != nil {
		return err
	}
	settings, err := e.enc.Settings(e.statement, e.cfg.PairCount)
	if err != nil {
		return err
	}
	e.verifierOutcomes = make([]int, e.cfg.PairCount)

	err = e.forEachPair(func(i int) error {
		basis := measure.AnalyzerBasis(measure.PartyVerifier, settings[i].Verifier)
		outcome, collapsed, err := measure.MeasureQubit(e.states[i], e.pairs[i].VerifierParticle().Qubit, basis, e.samplers[i])
		if err != nil {
			return fmt.Errorf("pair %d: verifier measurement: %w", i, err)
		}
		e.states[i] = collapsed
		e.verifierOutcomes[i] = outcome
		return nil
	})
	if err != nil {
		return err
	}

	e.phase = PhaseVerifierDone
	e.log.Debug().Msg("verifier phase complete")
	return nil
}

// Finalize computes the CHSH statistic, checks the structural invariants
// and assembles the Proof. A run whose statistic misses the threshold is
// still a completed proof reporting rejection; only invariant or data
// failures leave the engine in the failed phase with no Proof.
func (e *Engine) Finalize() (*Proof, error) {
	if err := e.requirePhase(PhaseVerifierDone, "finalize"); err != nil {
		return nil, err
	}

	settings := make([]measure.SettingPair, e.cfg.PairCount)
	for i, d := range e.directives {
		settings[i] = measure.SettingPair{Prover: d.ProverSetting, Verifier: d.VerifierSetting}
	}

	seed := e.seed
	proof := &Proof{
		Statement:       e.statement,
		ProverResults:   e.proverOutcomes,
		VerifierResults: e.verifierOutcomes,
		Settings:        settings,
		Seed:            &seed,
	}
	if err := proof.CheckInvariants(e.cfg.PairCount); err != nil {
		e.phase = PhaseFailed
		return nil, err
	}

	chsh, err := measure.ComputeCHSH(e.proverOutcomes, e.verifierOutcomes, settings, e.cfg.RequireFullDesign)
	if err != nil {
		e.phase = PhaseFailed
		return nil, err
	}
	proof.CHSHValue = chsh
	proof.IsValid = chsh >= e.cfg.CHSHThreshold

	e.phase = PhaseVerified
	e.log.Info().Float64("chsh", chsh).Bool("valid", proof.IsValid).
		Float64("threshold", e.cfg.CHSHThreshold).Msg("proof finalized")
	return proof, nil
}

// forEachPair fans fn out over the pair indices with a bounded worker
// group. Each pair touches only its own state slot and substream, so the
// result is independent of scheduling; the first error wins.
func (e *Engine) forEachPair(fn func(i int) error) error {
	workers := e.cfg.workers()
	if workers > e.cfg.PairCount {
		workers = e.cfg.PairCount
	}
	if workers <= 1 {
		for i := 0; i < e.cfg.PairCount; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	idx := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				if err := fn(i); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}
	for i := 0; i < e.cfg.PairCount; i++ {
		idx <- i
	}
	close(idx)
	wg.Wait()
	return firstErr
}

// Prove executes the full pipeline on a fresh engine and returns the
// Proof. A nil seed draws one from system entropy.
func Prove(cfg Config, log zerolog.Logger, statement, witness string, seed *int64) (*Proof, error) {
	eng, err := NewEngine(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := eng.Setup(seed); err != nil {
		return nil, err
	}
	if err := eng.Prove(statement, witness); err != nil {
		return nil, err
	}
	if err := eng.VerifyPhase(); err != nil {
		return nil, err
	}
	return eng.Finalize()
}
