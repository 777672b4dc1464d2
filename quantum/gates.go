package quantum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"qezk/errs"
)

// Gate is a closed tag identifying a local operation. Single-qubit gates
// act on one qubit of a pair through tensor extension; CNOT acts on the
// full pair.
type Gate string

const (
	GateIdentity Gate = "I"
	GatePauliX   Gate = "X"
	GatePauliY   Gate = "Y"
	GatePauliZ   Gate = "Z"
	GateHadamard Gate = "H"
	GateCNOT     Gate = "CNOT"
)

// Gates lists every recognized gate tag.
func Gates() []Gate {
	return []Gate{GateIdentity, GatePauliX, GatePauliY, GatePauliZ, GateHadamard, GateCNOT}
}

// Valid reports whether g is a recognized gate tag.
func (g Gate) Valid() bool {
	switch g {
	case GateIdentity, GatePauliX, GatePauliY, GatePauliZ, GateHadamard, GateCNOT:
		return true
	}
	return false
}

var invSqrt2 = complex(1/math.Sqrt2, 0)

// singleQubitMatrix returns the 2×2 matrix of a single-qubit gate.
func singleQubitMatrix(g Gate) (*mat.CDense, error) {
	switch g {
	case GateIdentity:
		return mat.NewCDense(2, 2, []complex128{1, 0, 0, 1}), nil
	case GatePauliX:
		return mat.NewCDense(2, 2, []complex128{0, 1, 1, 0}), nil
	case GatePauliY:
		return mat.NewCDense(2, 2, []complex128{0, -1i, 1i, 0}), nil
	case GatePauliZ:
		return mat.NewCDense(2, 2, []complex128{1, 0, 0, -1}), nil
	case GateHadamard:
		return mat.NewCDense(2, 2, []complex128{
			invSqrt2, invSqrt2,
			invSqrt2, -invSqrt2,
		}), nil
	case GateCNOT:
		return nil, fmt.Errorf("%w: CNOT is not a single-qubit gate", errs.ErrDimension)
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownGate, string(g))
	}
}

// cnotMatrix is the fixed 4×4 controlled-NOT with the first qubit as control.
func cnotMatrix() *mat.CDense {
	return mat.NewCDense(4, 4, []complex128{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
		0, 0, 1, 0,
	})
}

// Kron returns the tensor (Kronecker) product a ⊗ b.
func Kron(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	out := mat.NewCDense(ar*br, ac*bc, nil)
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			s := a.At(i, j)
			for k := 0; k < br; k++ {
				for l := 0; l < bc; l++ {
					out.Set(i*br+k, j*bc+l, s*b.At(k, l))
				}
			}
		}
	}
	return out
}

// Extend lifts a single-qubit gate to the two-qubit space, acting on the
// given qubit index (0 = first particle, 1 = second).
func Extend(g Gate, qubit int) (*mat.CDense, error) {
	if qubit != 0 && qubit != 1 {
		return nil, fmt.Errorf("%w: qubit index %d", errs.ErrDimension, qubit)
	}
	if g == GateCNOT {
		return cnotMatrix(), nil
	}
	m, err := singleQubitMatrix(g)
	if err != nil {
		return nil, err
	}
	id := mat.NewCDense(2, 2, []complex128{1, 0, 0, 1})
	if qubit == 0 {
		return Kron(m, id), nil
	}
	return Kron(id, m), nil
}

// Apply applies a gate to one qubit of a two-qubit state, returning a new
// vector. CNOT ignores the qubit index and acts on the full pair.
func Apply(v Vector, g Gate, qubit int) (Vector, error) {
	if len(v) != Dim {
		return nil, fmt.Errorf("%w: state has length %d, want %d", errs.ErrDimension, len(v), Dim)
	}
	if g == GateIdentity {
		return v.Clone(), nil
	}
	full, err := Extend(g, qubit)
	if err != nil {
		return nil, err
	}
	return mulVec(full, v), nil
}

// ApplyCNOT applies the fixed 4×4 CNOT to the pair.
func ApplyCNOT(v Vector) (Vector, error) {
	if len(v) != Dim {
		return nil, fmt.Errorf("%w: state has length %d, want %d", errs.ErrDimension, len(v), Dim)
	}
	return mulVec(cnotMatrix(), v), nil
}

// mulVec multiplies a 4×4 operator with a state treated as a column
// vector. CDense carries no arithmetic methods, so the product is an
// explicit row-by-row accumulation.
func mulVec(op *mat.CDense, v Vector) Vector {
	out := make(Vector, Dim)
	for i := 0; i < Dim; i++ {
		var s complex128
		for k := 0; k < Dim; k++ {
			s += op.At(i, k) * v[k]
		}
		out[i] = s
	}
	return out
}
