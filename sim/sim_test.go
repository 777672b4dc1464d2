package sim

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"qezk/errs"
	"qezk/protocol"
	"qezk/quantum"
)

func testRunner(t *testing.T, pairs int) *Runner {
	t.Helper()
	cfg := protocol.Config{
		PairCount:     pairs,
		CHSHThreshold: 2.2,
		BellKind:      quantum.PhiPlus,
	}
	r, err := NewRunner(cfg, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func TestNewRunnerRejectsBadConfig(t *testing.T) {
	_, err := NewRunner(protocol.Config{}, zerolog.Nop())
	require.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestRunTrialsDeterministic(t *testing.T) {
	r := testRunner(t, 256)
	a, err := r.RunTrials("stmt", "01", 5, 100)
	require.NoError(t, err)
	b, err := r.RunTrials("stmt", "01", 5, 100)
	require.NoError(t, err)
	require.Equal(t, a.CHSHValues, b.CHSHValues)
	require.Equal(t, a.SuccessRate, b.SuccessRate)
	require.Equal(t, a.MeanCHSH, b.MeanCHSH)
	require.Equal(t, a.StdCHSH, b.StdCHSH)
}

func TestRunTrialsAggregates(t *testing.T) {
	r := testRunner(t, 1024)
	rep, err := r.RunTrials("honest", "", 4, 7)
	require.NoError(t, err)
	require.Equal(t, 4, rep.Trials)
	require.Len(t, rep.CHSHValues, 4)
	require.GreaterOrEqual(t, rep.SuccessRate, 0.0)
	require.LessOrEqual(t, rep.SuccessRate, 1.0)
	require.Greater(t, rep.MeanCHSH, 2.0, "honest runs should beat the classical bound on average")
	require.GreaterOrEqual(t, rep.StdCHSH, 0.0)
	require.Greater(t, rep.Elapsed, time.Duration(0))
}

func TestRunTrialsRejectsZeroTrials(t *testing.T) {
	r := testRunner(t, 16)
	_, err := r.RunTrials("stmt", "", 0, 1)
	require.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestTimingsDrain(t *testing.T) {
	r := testRunner(t, 64)
	_, err := r.RunTrials("stmt", "1", 3, 9)
	require.NoError(t, err)
	entries := r.Timings()
	require.Len(t, entries, 3)
	for _, e := range entries {
		require.Equal(t, "trial", e.Label)
	}
	require.Empty(t, r.Timings())
}

func TestPerformanceAnalysis(t *testing.T) {
	r := testRunner(t, 256)
	agg, err := r.PerformanceAnalysis(
		[]string{"statement a", "statement b"},
		[]string{"", "11"},
		3, 50,
	)
	require.NoError(t, err)
	require.Len(t, agg.Individual, 2)
	require.GreaterOrEqual(t, agg.OverallSuccessRate, 0.0)
	require.LessOrEqual(t, agg.OverallSuccessRate, 1.0)
	require.Greater(t, agg.OverallMeanCHSH, 0.0)
}

func TestPerformanceAnalysisLengthMismatch(t *testing.T) {
	r := testRunner(t, 16)
	_, err := r.PerformanceAnalysis([]string{"a"}, []string{"", "1"}, 1, 0)
	require.ErrorIs(t, err, errs.ErrConfiguration)
}
