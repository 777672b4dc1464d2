// Package quantum provides the amplitude-vector primitives of the
// simulator: Bell-state construction, unitary gate application and
// normalization checks. Everything here is pure; operations return fresh
// vectors and never mutate their inputs.
package quantum

import (
	"fmt"
	"math"
	"math/cmplx"

	"qezk/errs"
)

// Dim is the amplitude-vector dimension of one entangled pair (two qubits).
const Dim = 4

const (
	// NormTolerance bounds the acceptable deviation of a unit vector's
	// L2 norm from 1.
	NormTolerance = 1e-9

	// minNorm is the smallest norm Normalize accepts before declaring
	// the state degenerate.
	minNorm = 1e-12
)

// Vector is a two-qubit amplitude vector in the computational basis
// |00⟩,|01⟩,|10⟩,|11⟩.
type Vector []complex128

// BellKind selects one of the four maximally entangled basis states.
type BellKind string

const (
	PhiPlus  BellKind = "phi_plus"  // (|00⟩+|11⟩)/√2
	PhiMinus BellKind = "phi_minus" // (|00⟩-|11⟩)/√2
	PsiPlus  BellKind = "psi_plus"  // (|01⟩+|10⟩)/√2
	PsiMinus BellKind = "psi_minus" // (|01⟩-|10⟩)/√2
)

// BellKinds lists the four kinds in a fixed order.
func BellKinds() []BellKind {
	return []BellKind{PhiPlus, PhiMinus, PsiPlus, PsiMinus}
}

// Valid reports whether k names one of the four Bell states.
func (k BellKind) Valid() bool {
	switch k {
	case PhiPlus, PhiMinus, PsiPlus, PsiMinus:
		return true
	}
	return false
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	return append(Vector(nil), v...)
}

// Norm returns the L2 norm of v.
func (v Vector) Norm() float64 {
	var s float64
	for _, a := range v {
		m := cmplx.Abs(a)
		s += m * m
	}
	return math.Sqrt(s)
}

// IsNormalized reports whether the L2 norm of v is 1 within NormTolerance.
func (v Vector) IsNormalized() bool {
	return math.Abs(v.Norm()-1) <= NormTolerance
}

// Normalize returns v scaled to unit norm. A norm below the degeneracy
// floor, or any NaN amplitude, yields ErrNumerical.
func Normalize(v Vector) (Vector, error) {
	for i, a := range v {
		if math.IsNaN(real(a)) || math.IsNaN(imag(a)) {
			return nil, fmt.Errorf("%w: NaN amplitude at index %d", errs.ErrNumerical, i)
		}
	}
	n := v.Norm()
	if n < minNorm {
		return nil, fmt.Errorf("%w: norm %.3e below %v", errs.ErrNumerical, n, minNorm)
	}
	out := make(Vector, len(v))
	inv := complex(1/n, 0)
	for i, a := range v {
		out[i] = a * inv
	}
	return out, nil
}

// NewBellState builds one of the four canonical Bell states through the
// standard circuit: Hadamard on the first qubit of |00⟩, then CNOT, then a
// kind-selecting Pauli on the first qubit.
func NewBellState(kind BellKind) (Vector, error) {
	state := Vector{1, 0, 0, 0}
	state, err := Apply(state, GateHadamard, 0)
	if err != nil {
		return nil, err
	}
	state, err = ApplyCNOT(state)
	if err != nil {
		return nil, err
	}
	switch kind {
	case PhiPlus:
		// CNOT·(H⊗I)|00⟩ already is Φ+.
	case PhiMinus:
		state, err = Apply(state, GatePauliZ, 0)
	case PsiPlus:
		state, err = Apply(state, GatePauliX, 0)
	case PsiMinus:
		state, err = Apply(state, GatePauliY, 0)
	default:
		return nil, fmt.Errorf("%w: bell kind %q", errs.ErrConfiguration, string(kind))
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}
