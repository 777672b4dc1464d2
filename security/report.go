// Package security provides descriptive security-property reporting over
// completed proofs. Everything here is a pure function of the Proof and
// config it is handed; the package never reaches into engine internals.
package security

import (
	"qezk/measure"
	"qezk/protocol"
)

// Properties are the information-theoretic guarantees the protocol claims.
type Properties struct {
	PerfectZeroKnowledge bool `json:"perfect_zero_knowledge"`
	InformationTheoretic bool `json:"information_theoretic"`
	QuantumSecure        bool `json:"quantum_secure"`
	PostQuantum          bool `json:"post_quantum"`
	NoTrustedSetup       bool `json:"no_trusted_setup"`
	PhysicalSecurity     bool `json:"physical_security"`
}

// InformationTheoretic describes the protocol's claimed guarantees. They
// derive from the entanglement model, not from computational hardness, so
// they hold independently of any particular run.
func InformationTheoretic() Properties {
	return Properties{
		PerfectZeroKnowledge: true,
		InformationTheoretic: true,
		QuantumSecure:        true,
		PostQuantum:          true,
		NoTrustedSetup:       true,
		PhysicalSecurity:     true,
	}
}

// Resistance describes the protocol's stance against one attack class.
type Resistance struct {
	Attack    string `json:"attack"`
	Resistant bool   `json:"resistant"`
	Reason    string `json:"reason"`
}

// AttackResistance enumerates the attack classes the protocol addresses.
func AttackResistance() []Resistance {
	return []Resistance{
		{Attack: "eavesdropping", Resistant: true,
			Reason: "no-cloning prevents copying the entangled particles"},
		{Attack: "man_in_the_middle", Resistant: true,
			Reason: "entanglement disruption shows up in the CHSH statistic"},
		{Attack: "quantum_memory", Resistant: true,
			Reason: "storing the particles long enough to replay is noise-limited"},
		{Attack: "classical_simulation", Resistant: true,
			Reason: "a local hidden-variable prover is capped at CHSH 2"},
	}
}

// Figures are the completeness/soundness parameters of the protocol.
type Figures struct {
	Completeness   float64 `json:"completeness"`
	Soundness      float64 `json:"soundness"`
	ErrorTolerance float64 `json:"error_tolerance"`
}

// CompletenessSoundness reports the reference protocol figures.
func CompletenessSoundness() Figures {
	return Figures{Completeness: 0.99, Soundness: 0.01, ErrorTolerance: 0.1}
}

// Summary ties the static properties to the facts of one completed run.
type Summary struct {
	Statement          string     `json:"statement"`
	CHSHValue          float64    `json:"chsh_value"`
	Threshold          float64    `json:"threshold"`
	IsValid            bool       `json:"is_valid"`
	BeatsClassical     bool       `json:"beats_classical"`
	TsirelsonGap       float64    `json:"tsirelson_gap"`
	Properties         Properties `json:"properties"`
	CompletenessFigure Figures    `json:"figures"`
}

// Summarize builds the report for one proof under the config it ran with.
func Summarize(p *protocol.Proof, cfg protocol.Config) Summary {
	return Summary{
		Statement:          p.Statement,
		CHSHValue:          p.CHSHValue,
		Threshold:          cfg.CHSHThreshold,
		IsValid:            p.IsValid,
		BeatsClassical:     p.CHSHValue > measure.ClassicalBound,
		TsirelsonGap:       measure.TsirelsonBound - p.CHSHValue,
		Properties:         InformationTheoretic(),
		CompletenessFigure: CompletenessSoundness(),
	}
}
