// Package measure implements the Bell-measurement apparatus: projective
// sampling of correlated outcomes from a pair's amplitude vector, seeded
// per-pair random substreams, and the CHSH statistic over a full run.
package measure

import (
	"math"
)

// Setting is a symbolic measurement axis. The physical analyzer angle a
// setting maps to is party-specific (see AnalyzerBasis), which is how the
// two-angle-per-party CHSH-optimal design rides on three shared symbols.
type Setting string

const (
	SettingZ Setting = "Z"
	SettingX Setting = "X"
	SettingY Setting = "Y"
)

// Valid reports whether s is one of the three recognized axes.
func (s Setting) Valid() bool {
	switch s {
	case SettingZ, SettingX, SettingY:
		return true
	}
	return false
}

// Party distinguishes the two measurement sides of a pair.
type Party int

const (
	PartyProver   Party = 0
	PartyVerifier Party = 1
)

// SettingPair is the (prover, verifier) axis combination used on one pair.
type SettingPair struct {
	Prover   Setting `json:"prover" msgpack:"prover"`
	Verifier Setting `json:"verifier" msgpack:"verifier"`
}

// Basis holds the two analyzer eigenbasis bras as rows: row 0 is the
// outcome-0 (+1 eigenvalue) bra, row 1 the outcome-1 (−1) bra.
type Basis [2][2]complex128

// planeBasis is the eigenbasis of cosθ·Z + sinθ·X, the analyzer rotated by
// θ in the X–Z plane.
func planeBasis(theta float64) Basis {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return Basis{
		{complex(c, 0), complex(s, 0)},
		{complex(-s, 0), complex(c, 0)},
	}
}

// circularBasis is the eigenbasis of Pauli-Y.
func circularBasis() Basis {
	inv := 1 / math.Sqrt2
	return Basis{
		{complex(inv, 0), complex(0, -inv)},
		{complex(inv, 0), complex(0, inv)},
	}
}

// Analyzer angles per party. Prover Z/X and verifier Z/X together form the
// CHSH-optimal four-angle set for Φ+, saturating S = 2√2 in expectation.
const (
	proverAngleZ   = 0
	proverAngleX   = math.Pi / 2
	verifierAngleZ = math.Pi / 4
	verifierAngleX = 3 * math.Pi / 4
)

// AnalyzerBasis maps a party's symbolic setting to its analyzer eigenbasis.
func AnalyzerBasis(party Party, s Setting) Basis {
	switch s {
	case SettingZ:
		if party == PartyProver {
			return planeBasis(proverAngleZ)
		}
		return planeBasis(verifierAngleZ)
	case SettingX:
		if party == PartyProver {
			return planeBasis(proverAngleX)
		}
		return planeBasis(verifierAngleX)
	case SettingY:
		return circularBasis()
	}
	// Unreachable for valid settings; callers validate first.
	return planeBasis(0)
}

// TsirelsonBound is the quantum ceiling of the CHSH statistic, 2√2.
var TsirelsonBound = 2 * math.Sqrt2

// ClassicalBound is the local-hidden-variable ceiling of CHSH.
const ClassicalBound = 2.0
