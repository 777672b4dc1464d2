package encode

import (
	"fmt"

	"golang.org/x/crypto/sha3"
)

// XOF models the extendable-output function used for setting derivation.
type XOF interface {
	Expand(label string, outLen int, parts ...[]byte) []byte
}

// Shake256XOF is the SHAKE-256 backed implementation of XOF.
type Shake256XOF struct{}

// Expand squeezes outLen bytes from SHAKE-256 over `label || parts...`.
func (Shake256XOF) Expand(label string, outLen int, parts ...[]byte) []byte {
	h := sha3.NewShake256()
	if _, err := h.Write([]byte(label)); err != nil {
		panic(fmt.Errorf("Shake256XOF: write label: %w", err))
	}
	for _, p := range parts {
		if _, err := h.Write(p); err != nil {
			panic(fmt.Errorf("Shake256XOF: write payload: %w", err))
		}
	}
	out := make([]byte, outLen)
	if _, err := h.Read(out); err != nil {
		panic(fmt.Errorf("Shake256XOF: read output: %w", err))
	}
	return out
}
