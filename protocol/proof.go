package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"qezk/errs"
	"qezk/measure"
)

// Proof is the completed record of one protocol run. It is the only
// artifact external collaborators consume; amplitude vectors and the
// random generator never leave the engine.
type Proof struct {
	Statement       string                `json:"statement" msgpack:"statement"`
	ProverResults   []int                 `json:"prover_results" msgpack:"prover_results"`
	VerifierResults []int                 `json:"verifier_results" msgpack:"verifier_results"`
	Settings        []measure.SettingPair `json:"settings" msgpack:"settings"`
	CHSHValue       float64               `json:"chsh_value" msgpack:"chsh_value"`
	IsValid         bool                  `json:"is_valid" msgpack:"is_valid"`
	Seed            *int64                `json:"seed,omitempty" msgpack:"seed,omitempty"`
}

// CheckInvariants verifies the structural constraints of a proof against
// the pair count: equal sequence lengths, binary outcomes, known settings.
func (p *Proof) CheckInvariants(pairCount int) error {
	if len(p.ProverResults) != pairCount || len(p.VerifierResults) != pairCount || len(p.Settings) != pairCount {
		return fmt.Errorf("%w: sequence lengths %d/%d/%d, want %d",
			errs.ErrInvariant, len(p.ProverResults), len(p.VerifierResults), len(p.Settings), pairCount)
	}
	for i := 0; i < pairCount; i++ {
		if o := p.ProverResults[i]; o != 0 && o != 1 {
			return fmt.Errorf("%w: prover outcome %d at pair %d", errs.ErrInvariant, o, i)
		}
		if o := p.VerifierResults[i]; o != 0 && o != 1 {
			return fmt.Errorf("%w: verifier outcome %d at pair %d", errs.ErrInvariant, o, i)
		}
		if s := p.Settings[i]; !s.Prover.Valid() || !s.Verifier.Valid() {
			return fmt.Errorf("%w: setting pair (%s,%s) at pair %d",
				errs.ErrInvariant, s.Prover, s.Verifier, i)
		}
	}
	return nil
}

// proofRecord strips the marshaling methods from Proof so the codec uses
// plain struct-tag encoding. Passing *Proof directly would make msgpack
// detect encoding.BinaryMarshaler and recurse back into MarshalBinary.
type proofRecord Proof

// MarshalBinary encodes the proof as MessagePack.
func (p *Proof) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal((*proofRecord)(p))
}

// UnmarshalBinary decodes a MessagePack proof.
func (p *Proof) UnmarshalBinary(data []byte) error {
	return msgpack.Unmarshal(data, (*proofRecord)(p))
}

// MarshalJSONIndent renders the proof for human consumption.
func (p *Proof) MarshalJSONIndent() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
