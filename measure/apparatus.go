package measure

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"qezk/errs"
	"qezk/quantum"
)

// probFloor guards against distributions wiped out by numerical error.
const probFloor = 1e-12

// basisMatrix returns the 2×2 analyzer as a dense matrix with eigenbasis
// bras as rows.
func basisMatrix(b Basis) *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{
		b[0][0], b[0][1],
		b[1][0], b[1][1],
	})
}

// JointDistribution projects the pair state onto the tensor-product
// eigenbasis selected by the two settings and returns the probabilities of
// the four outcome combinations, ordered (0,0),(0,1),(1,0),(1,1).
func JointDistribution(v quantum.Vector, proverSetting, verifierSetting Setting) ([4]float64, error) {
	var probs [4]float64
	if len(v) != quantum.Dim {
		return probs, fmt.Errorf("%w: state has length %d, want %d", errs.ErrDimension, len(v), quantum.Dim)
	}
	if !proverSetting.Valid() || !verifierSetting.Valid() {
		return probs, fmt.Errorf("%w: setting pair (%s,%s)", errs.ErrConfiguration, proverSetting, verifierSetting)
	}
	ua := basisMatrix(AnalyzerBasis(PartyProver, proverSetting))
	ub := basisMatrix(AnalyzerBasis(PartyVerifier, verifierSetting))
	full := quantum.Kron(ua, ub)

	// CDense carries no arithmetic methods; accumulate the projected
	// amplitudes row by row.
	var total float64
	for i := 0; i < quantum.Dim; i++ {
		var amp complex128
		for k := 0; k < quantum.Dim; k++ {
			amp += full.At(i, k) * v[k]
		}
		m := cmplx.Abs(amp)
		probs[i] = m * m
		total += probs[i]
	}
	if math.IsNaN(total) || total < probFloor {
		return probs, fmt.Errorf("%w: joint distribution mass %.3e", errs.ErrNumerical, total)
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs, nil
}

// MeasurePair applies the prover's local gate to its qubit, then samples
// one joint outcome combination from the projective distribution under
// (proverSetting, verifierSetting). The draw is taken from the pair's own
// substream, so the correlated statistics survive parallel execution.
func MeasurePair(v quantum.Vector, proverSetting, verifierSetting Setting, localGate quantum.Gate, smp *Sampler) (proverOutcome, verifierOutcome int, err error) {
	state, err := quantum.Apply(v, localGate, entQubitProver)
	if err != nil {
		return 0, 0, err
	}
	probs, err := JointDistribution(state, proverSetting, verifierSetting)
	if err != nil {
		return 0, 0, err
	}
	u, err := smp.Float64()
	if err != nil {
		return 0, 0, err
	}
	var cum float64
	for i, p := range probs {
		cum += p
		if u < cum {
			return i >> 1, i & 1, nil
		}
	}
	return 1, 1, nil
}

// entQubitProver mirrors entangle.QubitProver without importing the
// package, keeping measure a leaf below entangle.
const (
	entQubitProver   = 0
	entQubitVerifier = 1
)

// MeasureQubit performs a projective measurement of one qubit of a pair
// in the given analyzer basis, sampling the outcome from smp. It returns
// the outcome bit and the collapsed post-measurement state, through which
// the entangled correlation reaches the other party's later measurement.
func MeasureQubit(v quantum.Vector, qubit int, basis Basis, smp *Sampler) (int, quantum.Vector, error) {
	if len(v) != quantum.Dim {
		return 0, nil, fmt.Errorf("%w: state has length %d, want %d", errs.ErrDimension, len(v), quantum.Dim)
	}
	if qubit != entQubitProver && qubit != entQubitVerifier {
		return 0, nil, fmt.Errorf("%w: qubit index %d", errs.ErrDimension, qubit)
	}

	// Branch amplitudes: for each outcome, the two amplitudes left on the
	// unmeasured qubit after projecting the measured one onto the bra.
	var branch [2][2]complex128
	var prob [2]float64
	for out := 0; out < 2; out++ {
		for other := 0; other < 2; other++ {
			var amp complex128
			for k := 0; k < 2; k++ {
				if qubit == entQubitProver {
					amp += basis[out][k] * v[2*k+other]
				} else {
					amp += basis[out][k] * v[2*other+k]
				}
			}
			branch[out][other] = amp
			m := cmplx.Abs(amp)
			prob[out] += m * m
		}
	}
	total := prob[0] + prob[1]
	if math.IsNaN(total) || total < probFloor {
		return 0, nil, fmt.Errorf("%w: measurement distribution mass %.3e", errs.ErrNumerical, total)
	}

	u, err := smp.Float64()
	if err != nil {
		return 0, nil, err
	}
	outcome := 1
	if u < prob[0]/total {
		outcome = 0
	}

	// Rebuild the collapsed state in the computational frame: the measured
	// qubit becomes the selected eigenvector, the other keeps its branch.
	inv := complex(1/math.Sqrt(prob[outcome]), 0)
	collapsed := make(quantum.Vector, quantum.Dim)
	for k := 0; k < 2; k++ {
		eig := cmplx.Conj(basis[outcome][k])
		for other := 0; other < 2; other++ {
			amp := eig * branch[outcome][other] * inv
			if qubit == entQubitProver {
				collapsed[2*k+other] = amp
			} else {
				collapsed[2*other+k] = amp
			}
		}
	}
	return outcome, collapsed, nil
}
