package protocol

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"qezk/errs"
	"qezk/measure"
)

// chshRecheckTol bounds the acceptable drift between a proof's reported
// CHSH value and the value recomputed from its outcome record.
const chshRecheckTol = 1e-9

// BatchResult aggregates an independent re-check of several proofs.
type BatchResult struct {
	Total      int     `json:"total" msgpack:"total"`
	Accepted   int     `json:"accepted" msgpack:"accepted"`
	AllValid   bool    `json:"all_valid" msgpack:"all_valid"`
	MeanCHSH   float64 `json:"mean_chsh" msgpack:"mean_chsh"`
	AcceptRate float64 `json:"accept_rate" msgpack:"accept_rate"`
}

// VerifyBatch re-checks a set of completed proofs against the config they
// ran under: structural invariants, the CHSH statistic recomputed from the
// recorded outcomes, and the validity flag against the threshold. Proofs
// carry everything the check needs, so no engine state is required. A
// proof whose record disagrees with its reported statistic is an
// invariant violation, not a rejection.
func VerifyBatch(proofs []*Proof, cfg Config) (*BatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(proofs) == 0 {
		return nil, fmt.Errorf("%w: empty proof batch", errs.ErrConfiguration)
	}

	res := &BatchResult{Total: len(proofs), AllValid: true}
	values := make([]float64, 0, len(proofs))
	for i, p := range proofs {
		if err := p.CheckInvariants(cfg.PairCount); err != nil {
			return nil, fmt.Errorf("proof %d: %w", i, err)
		}
		chsh, err := measure.ComputeCHSH(p.ProverResults, p.VerifierResults, p.Settings, cfg.RequireFullDesign)
		if err != nil {
			return nil, fmt.Errorf("proof %d: %w", i, err)
		}
		if math.Abs(chsh-p.CHSHValue) > chshRecheckTol {
			return nil, fmt.Errorf("%w: proof %d reports CHSH %v, recomputed %v",
				errs.ErrInvariant, i, p.CHSHValue, chsh)
		}
		if p.IsValid != (chsh >= cfg.CHSHThreshold) {
			return nil, fmt.Errorf("%w: proof %d validity flag %v disagrees with CHSH %v vs threshold %v",
				errs.ErrInvariant, i, p.IsValid, chsh, cfg.CHSHThreshold)
		}
		values = append(values, chsh)
		if p.IsValid {
			res.Accepted++
		} else {
			res.AllValid = false
		}
	}
	res.MeanCHSH = stat.Mean(values, nil)
	res.AcceptRate = float64(res.Accepted) / float64(res.Total)
	return res, nil
}
