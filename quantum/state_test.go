package quantum

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"qezk/errs"
)

func TestBellStatesNormalized(t *testing.T) {
	for _, kind := range BellKinds() {
		v, err := NewBellState(kind)
		require.NoError(t, err, "kind %s", kind)
		require.Len(t, v, Dim)
		require.True(t, v.IsNormalized(), "kind %s norm %v", kind, v.Norm())
	}
}

func TestBellStateAmplitudes(t *testing.T) {
	// Φ± live on |00⟩/|11⟩, Ψ± on |01⟩/|10⟩, each with weight 1/2.
	half := 0.5
	cases := []struct {
		kind    BellKind
		support [2]int
	}{
		{PhiPlus, [2]int{0, 3}},
		{PhiMinus, [2]int{0, 3}},
		{PsiPlus, [2]int{1, 2}},
		{PsiMinus, [2]int{1, 2}},
	}
	for _, tc := range cases {
		v, err := NewBellState(tc.kind)
		require.NoError(t, err)
		for i := 0; i < Dim; i++ {
			m := cmplx.Abs(v[i])
			if i == tc.support[0] || i == tc.support[1] {
				require.InDelta(t, half, m*m, 1e-12, "kind %s index %d", tc.kind, i)
			} else {
				require.InDelta(t, 0, m*m, 1e-12, "kind %s index %d", tc.kind, i)
			}
		}
	}
}

func TestBellStateSigns(t *testing.T) {
	plus, err := NewBellState(PhiPlus)
	require.NoError(t, err)
	minus, err := NewBellState(PhiMinus)
	require.NoError(t, err)
	// Φ+ amplitudes share a sign, Φ- amplitudes oppose.
	require.InDelta(t, 0.5, real(plus[0]*plus[3]), 1e-12)
	require.InDelta(t, -0.5, real(minus[0]*minus[3]), 1e-12)
}

func TestBellStateUnknownKind(t *testing.T) {
	_, err := NewBellState(BellKind("omega"))
	require.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestNormalize(t *testing.T) {
	v := Vector{2, 0, 0, 2}
	n, err := Normalize(v)
	require.NoError(t, err)
	require.True(t, n.IsNormalized())
	require.InDelta(t, 1/math.Sqrt2, real(n[0]), 1e-12)
	// Input untouched.
	require.Equal(t, complex128(2), v[0])
}

func TestNormalizeDegenerate(t *testing.T) {
	_, err := Normalize(Vector{0, 0, 0, 0})
	require.ErrorIs(t, err, errs.ErrNumerical)

	_, err = Normalize(Vector{complex(math.NaN(), 0), 0, 0, 0})
	require.ErrorIs(t, err, errs.ErrNumerical)
}

func TestCloneIndependence(t *testing.T) {
	v, err := NewBellState(PhiPlus)
	require.NoError(t, err)
	c := v.Clone()
	c[0] = 42
	require.NotEqual(t, v[0], c[0])
}
