package prof

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollectorTrackAndSnapshot(t *testing.T) {
	var c Collector
	c.Track(time.Now().Add(-time.Millisecond), "phase_a")
	c.Track(time.Now(), "phase_b")

	entries := c.SnapshotAndReset()
	require.Len(t, entries, 2)
	require.Equal(t, "phase_a", entries[0].Label)
	require.GreaterOrEqual(t, entries[0].Dur, time.Millisecond)
	require.Empty(t, c.SnapshotAndReset())
}

func TestCollectorTotal(t *testing.T) {
	var c Collector
	c.Track(time.Now().Add(-2*time.Millisecond), "run")
	c.Track(time.Now().Add(-3*time.Millisecond), "run")
	c.Track(time.Now(), "other")

	require.GreaterOrEqual(t, c.Total("run"), 5*time.Millisecond)
	require.Equal(t, time.Duration(0), c.Total("absent"))
}

func TestCollectorConcurrent(t *testing.T) {
	var c Collector
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Track(time.Now(), "work")
			}
		}()
	}
	wg.Wait()
	require.Len(t, c.SnapshotAndReset(), 16*50)
}
