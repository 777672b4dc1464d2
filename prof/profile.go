package prof

import (
	"sync"
	"time"
)

// Entry represents a single timing measurement.
type Entry struct {
	Label string
	Dur   time.Duration
}

// Collector accumulates timing entries. The zero value is ready to use
// and safe for concurrent Track calls.
type Collector struct {
	mu     sync.Mutex
	record []Entry
}

// Track logs the duration since start under the given label.
func (c *Collector) Track(start time.Time, label string) {
	elapsed := time.Since(start)
	c.mu.Lock()
	c.record = append(c.record, Entry{Label: label, Dur: elapsed})
	c.mu.Unlock()
}

// SnapshotAndReset returns the collected entries and clears the collector.
func (c *Collector) SnapshotAndReset() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.record))
	copy(out, c.record)
	c.record = nil
	return out
}

// Total sums the recorded durations for one label.
func (c *Collector) Total(label string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total time.Duration
	for _, e := range c.record {
		if e.Label == label {
			total += e.Dur
		}
	}
	return total
}
