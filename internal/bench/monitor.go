/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Resource Monitor
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package bench

import (
	"sync"
	"time"

	"pgedge-rag-bench/internal/logging"
)

// collectWaitTimeout bounds how long Stop waits for the collector
// goroutine after signaling the source, so an unresponsive source
// cannot hang a trial
const collectWaitTimeout = time.Second

// SampleSource is a periodic metrics feed the monitor can drive. Two
// variants exist: an OS-level poll and an external feed process.
type SampleSource interface {
	// Start begins producing samples. The returned channel is closed
	// when the source ends.
	Start() (<-chan Sample, error)

	// Stop ends sampling, terminating any spawned process. Must be
	// safe to call more than once.
	Stop()

	// DrainGrace is how long the monitor waits before stopping so
	// in-flight samples are captured
	DrainGrace() time.Duration
}

// Monitor measures resource utilization for the duration of one
// trial. It owns a SampleSource, collects its output in the
// background, and computes aggregate statistics on Stop.
type Monitor struct {
	source SampleSource

	mu      sync.Mutex
	samples []Sample

	started  bool
	done     chan struct{}
	stopOnce sync.Once
	stats    ResourceStats
}

// NewMonitor creates a monitor on the given source
func NewMonitor(source SampleSource) *Monitor {
	return &Monitor{
		source: source,
		done:   make(chan struct{}),
	}
}

// NewDefaultMonitor picks the richest source available on this host:
// the external feed when installed, otherwise the OS-level poll.
func NewDefaultMonitor(feedCommand []string) *Monitor {
	if FeedAvailable(feedCommand) {
		return NewMonitor(NewFeedSource(feedCommand))
	}
	return NewMonitor(NewOSPollSource(0))
}

// Start begins sampling in the background. It never blocks on the
// measured operation's path.
func (m *Monitor) Start() error {
	ch, err := m.source.Start()
	if err != nil {
		return err
	}
	m.started = true

	go func() {
		defer close(m.done)
		for sample := range ch {
			m.mu.Lock()
			m.samples = append(m.samples, sample)
			m.mu.Unlock()
		}
	}()

	return nil
}

// Stop ends sampling and returns the aggregate statistics. Waits
// briefly for in-flight samples to drain, bounded so the call cannot
// hang. Zero collected samples yield all-nil stats, not an error.
// Subsequent calls return the same statistics.
func (m *Monitor) Stop() ResourceStats {
	m.stopOnce.Do(func() {
		if !m.started {
			return
		}

		if grace := m.source.DrainGrace(); grace > 0 {
			time.Sleep(grace)
		}

		m.source.Stop()

		select {
		case <-m.done:
		case <-time.After(collectWaitTimeout):
			logging.Warn("sample collector did not drain in time")
		}

		m.mu.Lock()
		m.stats = ComputeStats(m.samples)
		count := len(m.samples)
		m.mu.Unlock()

		logging.Debug("monitor stopped", "samples", count)
	})

	return m.stats
}
