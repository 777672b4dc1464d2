package measure

import (
	"fmt"
	"math"

	"qezk/errs"
)

// chshIndex maps a CHSH-design setting to its correlation-matrix index.
// Y-axis samples are not part of the CHSH estimate and return ok=false.
func chshIndex(s Setting) (int, bool) {
	switch s {
	case SettingZ:
		return 0, true
	case SettingX:
		return 1, true
	default:
		return 0, false
	}
}

// ComputeCHSH evaluates |S| = |E(Z,Z) − E(Z,X) + E(X,Z) + E(X,X)| over a
// run, with outcomes mapped 0→+1 and 1→−1 and samples partitioned by the
// setting combination actually used.
//
// Y-basis samples (extended-bases mode) are excluded, matching the
// three-basis variant of the protocol. With requireFullDesign set, every
// one of the four Z/X combinations must carry at least one sample;
// otherwise absent combinations contribute a zero correlation and only a
// run with no usable samples at all is an error.
func ComputeCHSH(proverOutcomes, verifierOutcomes []int, settings []SettingPair, requireFullDesign bool) (float64, error) {
	n := len(settings)
	if len(proverOutcomes) != n || len(verifierOutcomes) != n {
		return 0, fmt.Errorf("%w: outcome/setting lengths %d/%d/%d",
			errs.ErrInvariant, len(proverOutcomes), len(verifierOutcomes), n)
	}

	var sum [2][2]float64
	var count [2][2]int
	usable := 0
	for i := 0; i < n; i++ {
		a, b := proverOutcomes[i], verifierOutcomes[i]
		if a != 0 && a != 1 {
			return 0, fmt.Errorf("%w: prover outcome %d at pair %d", errs.ErrInvariant, a, i)
		}
		if b != 0 && b != 1 {
			return 0, fmt.Errorf("%w: verifier outcome %d at pair %d", errs.ErrInvariant, b, i)
		}
		if !settings[i].Prover.Valid() || !settings[i].Verifier.Valid() {
			return 0, fmt.Errorf("%w: setting pair (%s,%s) at pair %d",
				errs.ErrInvariant, settings[i].Prover, settings[i].Verifier, i)
		}
		ai, aok := chshIndex(settings[i].Prover)
		bi, bok := chshIndex(settings[i].Verifier)
		if !aok || !bok {
			continue
		}
		sum[ai][bi] += float64(1-2*a) * float64(1-2*b)
		count[ai][bi]++
		usable++
	}

	if usable == 0 {
		return 0, fmt.Errorf("%w: no Z/X samples in run of %d pairs", errs.ErrInsufficientData, n)
	}

	var e [2][2]float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if count[i][j] == 0 {
				if requireFullDesign {
					return 0, fmt.Errorf("%w: combination (%d,%d) has zero samples",
						errs.ErrInsufficientData, i, j)
				}
				continue
			}
			e[i][j] = sum[i][j] / float64(count[i][j])
		}
	}

	s := e[0][0] - e[0][1] + e[1][0] + e[1][1]
	return math.Abs(s), nil
}
