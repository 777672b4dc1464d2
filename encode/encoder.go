// Package encode translates the public statement and the secret witness
// into per-pair measurement directives. The translation is referentially
// transparent: no randomness, clock or hidden state, so the verifier can
// recompute the settings of any statement on its own.
package encode

import (
	"fmt"

	"qezk/errs"
	"qezk/measure"
	"qezk/quantum"
)

// settingsLabel domain-separates the statement digest.
const settingsLabel = "qezk/settings"

// Directive carries everything one pair's measurements need.
type Directive struct {
	PairIndex       int
	LocalGate       quantum.Gate
	ProverSetting   measure.Setting
	VerifierSetting measure.Setting
}

// Encoder derives directive sequences. Extended switches the setting
// derivation from the two-axis CHSH design {Z,X} to the three-axis
// variant {Z,X,Y}; Y samples carry no CHSH weight, so small extended runs
// can starve the statistic (see measure.ComputeCHSH).
type Encoder struct {
	xof      XOF
	Extended bool
}

// NewEncoder returns an encoder using SHAKE-256 for statement digests.
func NewEncoder(extended bool) *Encoder {
	return &Encoder{xof: Shake256XOF{}, Extended: extended}
}

// Settings derives the per-pair setting sequence from the statement alone.
// One digest byte feeds each pair; the witness never enters here.
func (e *Encoder) Settings(statement string, pairCount int) ([]measure.SettingPair, error) {
	if pairCount < 0 {
		return nil, fmt.Errorf("%w: pair count %d", errs.ErrConfiguration, pairCount)
	}
	out := make([]measure.SettingPair, pairCount)
	if pairCount == 0 {
		return out, nil
	}
	digest := e.xof.Expand(settingsLabel, pairCount, []byte(statement))
	for i := range out {
		b := digest[i]
		if e.Extended {
			out[i] = measure.SettingPair{
				Prover:   extendedAxis(b & 0b11),
				Verifier: extendedAxis((b >> 2) & 0b11),
			}
		} else {
			out[i] = measure.SettingPair{
				Prover:   chshAxis(b & 1),
				Verifier: chshAxis((b >> 1) & 1),
			}
		}
	}
	return out, nil
}

// chshAxis maps one digest bit onto the two-axis CHSH design.
func chshAxis(bit byte) measure.Setting {
	if bit == 0 {
		return measure.SettingZ
	}
	return measure.SettingX
}

// extendedAxis maps two digest bits onto {Z,X,Y}, with the spare value
// folding back to Z as in the three-basis variant.
func extendedAxis(bits byte) measure.Setting {
	switch bits {
	case 1:
		return measure.SettingX
	case 2:
		return measure.SettingY
	default:
		return measure.SettingZ
	}
}

// Gates derives the prover's local operation per pair from the witness:
// bit 0 selects Identity, bit 1 PauliX, cycling over the witness when it
// is shorter than the pair count. An empty witness yields all Identity;
// bits beyond the pair count are ignored.
func (e *Encoder) Gates(witness string, pairCount int) ([]quantum.Gate, error) {
	if pairCount < 0 {
		return nil, fmt.Errorf("%w: pair count %d", errs.ErrConfiguration, pairCount)
	}
	if err := ValidateWitness(witness); err != nil {
		return nil, err
	}
	gates := make([]quantum.Gate, pairCount)
	for i := range gates {
		gates[i] = quantum.GateIdentity
		if len(witness) > 0 && witness[i%len(witness)] == '1' {
			gates[i] = quantum.GatePauliX
		}
	}
	return gates, nil
}

// Encode produces the full ordered directive sequence for a run.
func (e *Encoder) Encode(statement, witness string, pairCount int) ([]Directive, error) {
	settings, err := e.Settings(statement, pairCount)
	if err != nil {
		return nil, err
	}
	gates, err := e.Gates(witness, pairCount)
	if err != nil {
		return nil, err
	}
	out := make([]Directive, pairCount)
	for i := range out {
		out[i] = Directive{
			PairIndex:       i,
			LocalGate:       gates[i],
			ProverSetting:   settings[i].Prover,
			VerifierSetting: settings[i].Verifier,
		}
	}
	return out, nil
}

// ValidateWitness checks that the witness is a string of '0'/'1'
// characters. The empty witness is allowed and encodes all-Identity.
func ValidateWitness(witness string) error {
	for i := 0; i < len(witness); i++ {
		if witness[i] != '0' && witness[i] != '1' {
			return fmt.Errorf("%w: witness byte %q at index %d, want '0' or '1'",
				errs.ErrConfiguration, witness[i], i)
		}
	}
	return nil
}
