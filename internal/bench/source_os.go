/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - OS-Level Sample Source
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

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// DefaultOSPollInterval is the sampling period for the OS-level poll.
// Coarser than the external feed because each CPU reading itself
// blocks for the interval.
const DefaultOSPollInterval = 500 * time.Millisecond

// OSPollSource samples CPU and RAM utilization through the operating
// system. It never reports GPU usage.
type OSPollSource struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewOSPollSource creates an OS-level sample source. A non-positive
// interval selects the default.
func NewOSPollSource(interval time.Duration) *OSPollSource {
	if interval <= 0 {
		interval = DefaultOSPollInterval
	}
	return &OSPollSource{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins sampling in a background goroutine. The returned
// channel is closed when the source stops.
func (s *OSPollSource) Start() (<-chan Sample, error) {
	out := make(chan Sample, 64)

	go func() {
		defer close(out)
		defer close(s.done)

		for {
			select {
			case <-s.stop:
				return
			default:
			}

			var sample Sample

			// cpu.Percent blocks for the interval, which also paces
			// the loop
			percents, err := cpu.Percent(s.interval, false)
			if err == nil && len(percents) > 0 {
				v := percents[0]
				sample.CPU = &v
			}

			if vm, err := mem.VirtualMemory(); err == nil {
				v := vm.UsedPercent
				sample.RAM = &v
			}

			if sample.CPU == nil && sample.RAM == nil {
				continue
			}

			select {
			case out <- sample:
			case <-s.stop:
				return
			}
		}
	}()

	return out, nil
}

// Stop ends sampling. Safe to call more than once.
func (s *OSPollSource) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// DrainGrace returns how long the monitor should wait before stopping
// to let in-flight samples land. OS polling needs no extra grace.
func (s *OSPollSource) DrainGrace() time.Duration {
	return 0
}
