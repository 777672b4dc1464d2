package quantum

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"qezk/errs"
)

func requireVectorsClose(t *testing.T, want, got Vector) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.InDelta(t, 0, cmplx.Abs(want[i]-got[i]), 1e-12, "index %d", i)
	}
}

func TestPauliXTurnsPhiPlusIntoPsiPlus(t *testing.T) {
	phi, err := NewBellState(PhiPlus)
	require.NoError(t, err)
	got, err := Apply(phi, GatePauliX, 0)
	require.NoError(t, err)
	psi, err := NewBellState(PsiPlus)
	require.NoError(t, err)
	requireVectorsClose(t, psi, got)
}

func TestHadamardInvolution(t *testing.T) {
	v, err := NewBellState(PhiMinus)
	require.NoError(t, err)
	once, err := Apply(v, GateHadamard, 1)
	require.NoError(t, err)
	twice, err := Apply(once, GateHadamard, 1)
	require.NoError(t, err)
	requireVectorsClose(t, v, twice)
}

func TestGatesPreserveNorm(t *testing.T) {
	v, err := NewBellState(PsiMinus)
	require.NoError(t, err)
	for _, g := range Gates() {
		got, err := Apply(v, g, 0)
		require.NoError(t, err, "gate %s", g)
		require.True(t, got.IsNormalized(), "gate %s norm %v", g, got.Norm())
	}
}

func TestApplyCNOT(t *testing.T) {
	// CNOT flips the target when the control is set: |10⟩ → |11⟩.
	got, err := ApplyCNOT(Vector{0, 0, 1, 0})
	require.NoError(t, err)
	requireVectorsClose(t, Vector{0, 0, 0, 1}, got)

	// Control clear: |01⟩ untouched.
	got, err = ApplyCNOT(Vector{0, 1, 0, 0})
	require.NoError(t, err)
	requireVectorsClose(t, Vector{0, 1, 0, 0}, got)
}

func TestApplyMatchesHandComputedProduct(t *testing.T) {
	// Non-uniform amplitudes so every operator entry contributes.
	// (H⊗I)(a,b,c,d) = ((a+c)/√2, (b+d)/√2, (a−c)/√2, (b−d)/√2).
	v := Vector{0.8, 0, 0.6i, 0}
	got, err := Apply(v, GateHadamard, 0)
	require.NoError(t, err)
	requireVectorsClose(t, Vector{
		(0.8 + 0.6i) * invSqrt2, 0,
		(0.8 - 0.6i) * invSqrt2, 0,
	}, got)

	// (I⊗Y)(a,b,c,d) = (−ib, ia, −id, ic).
	v = Vector{0.5, 0.5i, -0.5, 0.5}
	got, err = Apply(v, GatePauliY, 1)
	require.NoError(t, err)
	requireVectorsClose(t, Vector{0.5, 0.5i, -0.5i, -0.5i}, got)
}

func TestIdentityReturnsIndependentCopy(t *testing.T) {
	v, err := NewBellState(PhiPlus)
	require.NoError(t, err)
	got, err := Apply(v, GateIdentity, 0)
	require.NoError(t, err)
	got[0] = 99
	require.NotEqual(t, v[0], got[0])
}

func TestApplyErrors(t *testing.T) {
	_, err := Apply(Vector{1, 0, 0}, GatePauliX, 0)
	require.ErrorIs(t, err, errs.ErrDimension)

	v, err := NewBellState(PhiPlus)
	require.NoError(t, err)

	_, err = Apply(v, Gate("SWAP"), 0)
	require.ErrorIs(t, err, errs.ErrUnknownGate)

	_, err = Apply(v, GatePauliZ, 2)
	require.ErrorIs(t, err, errs.ErrDimension)

	_, err = ApplyCNOT(Vector{1, 0})
	require.ErrorIs(t, err, errs.ErrDimension)
}

func TestGateValid(t *testing.T) {
	for _, g := range Gates() {
		require.True(t, g.Valid(), "gate %s", g)
	}
	require.False(t, Gate("SWAP").Valid())
	require.False(t, Gate("").Valid())
}
