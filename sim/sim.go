// Package sim is the multi-trial harness: it replays the protocol across
// derived seeds and aggregates the CHSH statistics, the way the reference
// framework's simulation module does.
package sim

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"qezk/errs"
	"qezk/prof"
	"qezk/protocol"
)

// TrialReport aggregates one statement/witness simulation.
type TrialReport struct {
	Statement   string        `json:"statement"`
	Witness     string        `json:"-"`
	Trials      int           `json:"trials"`
	CHSHValues  []float64     `json:"chsh_values"`
	SuccessRate float64       `json:"success_rate"`
	MeanCHSH    float64       `json:"mean_chsh"`
	StdCHSH     float64       `json:"std_chsh"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// Runner replays proofs under one configuration.
type Runner struct {
	cfg   protocol.Config
	log   zerolog.Logger
	timer prof.Collector
}

// NewRunner validates the configuration and returns a harness.
func NewRunner(cfg protocol.Config, log zerolog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, log: log.With().Str("component", "sim").Logger()}, nil
}

// Timings drains the harness timing collector.
func (r *Runner) Timings() []prof.Entry {
	return r.timer.SnapshotAndReset()
}

// RunTrials proves the same statement/witness `trials` times with seeds
// baseSeed, baseSeed+1, ... and aggregates the resulting statistics.
func (r *Runner) RunTrials(statement, witness string, trials int, baseSeed int64) (*TrialReport, error) {
	if trials < 1 {
		return nil, fmt.Errorf("%w: trials %d, want >= 1", errs.ErrConfiguration, trials)
	}
	report := &TrialReport{
		Statement:  statement,
		Witness:    witness,
		Trials:     trials,
		CHSHValues: make([]float64, 0, trials),
	}
	start := time.Now()
	success := 0
	for t := 0; t < trials; t++ {
		seed := baseSeed + int64(t)
		trialStart := time.Now()
		proof, err := protocol.Prove(r.cfg, r.log, statement, witness, &seed)
		r.timer.Track(trialStart, "trial")
		if err != nil {
			return nil, fmt.Errorf("trial %d (seed %d): %w", t, seed, err)
		}
		report.CHSHValues = append(report.CHSHValues, proof.CHSHValue)
		if proof.IsValid {
			success++
		}
	}
	report.Elapsed = time.Since(start)
	report.SuccessRate = float64(success) / float64(trials)
	report.MeanCHSH = stat.Mean(report.CHSHValues, nil)
	if trials > 1 {
		report.StdCHSH = stat.StdDev(report.CHSHValues, nil)
	}
	r.log.Info().Int("trials", trials).Float64("mean_chsh", report.MeanCHSH).
		Float64("success_rate", report.SuccessRate).Msg("trials complete")
	return report, nil
}

// AggregateReport combines the reports of several statement/witness pairs.
type AggregateReport struct {
	Individual         []*TrialReport `json:"individual"`
	OverallSuccessRate float64        `json:"overall_success_rate"`
	OverallMeanCHSH    float64        `json:"overall_mean_chsh"`
}

// PerformanceAnalysis runs trials for each statement/witness pair and
// aggregates the outcome. The two slices must have equal length.
func (r *Runner) PerformanceAnalysis(statements, witnesses []string, trialsEach int, baseSeed int64) (*AggregateReport, error) {
	if len(statements) != len(witnesses) {
		return nil, fmt.Errorf("%w: %d statements vs %d witnesses",
			errs.ErrConfiguration, len(statements), len(witnesses))
	}
	agg := &AggregateReport{}
	rates := make([]float64, 0, len(statements))
	means := make([]float64, 0, len(statements))
	for i := range statements {
		rep, err := r.RunTrials(statements[i], witnesses[i], trialsEach, baseSeed+int64(i*trialsEach))
		if err != nil {
			return nil, err
		}
		agg.Individual = append(agg.Individual, rep)
		rates = append(rates, rep.SuccessRate)
		means = append(means, rep.MeanCHSH)
	}
	if len(rates) > 0 {
		agg.OverallSuccessRate = stat.Mean(rates, nil)
		agg.OverallMeanCHSH = stat.Mean(means, nil)
	}
	return agg, nil
}
