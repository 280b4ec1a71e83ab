/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Resource Monitor Tests
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package bench

import (
	"sync"
	"testing"
	"time"
)

// fakeSource feeds predetermined samples and closes on Stop
type fakeSource struct {
	out      chan Sample
	stopOnce sync.Once
	stops    int
}

func newFakeSource() *fakeSource {
	return &fakeSource{out: make(chan Sample, 16)}
}

func (s *fakeSource) Start() (<-chan Sample, error) { return s.out, nil }

func (s *fakeSource) Stop() {
	s.stops++
	s.stopOnce.Do(func() { close(s.out) })
}

func (s *fakeSource) DrainGrace() time.Duration { return 0 }

func (s *fakeSource) push(sample Sample) { s.out <- sample }

func TestMonitorCollectsAndAggregates(t *testing.T) {
	source := newFakeSource()
	monitor := NewMonitor(source)
	if err := monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	source.push(Sample{CPU: f(10), RAM: f(50)})
	source.push(Sample{CPU: f(20), RAM: f(60), GPU: f(30)})

	stats := monitor.Stop()

	if stats.CPUAvg == nil || *stats.CPUAvg != 15 {
		t.Errorf("cpu avg = %v, want 15", stats.CPUAvg)
	}
	if stats.CPUMax == nil || *stats.CPUMax != 20 {
		t.Errorf("cpu max = %v, want 20", stats.CPUMax)
	}
	if stats.GPUAvg == nil || *stats.GPUAvg != 30 {
		t.Errorf("gpu avg = %v, want 30", stats.GPUAvg)
	}
}

func TestMonitorStopWithoutSamples(t *testing.T) {
	source := newFakeSource()
	monitor := NewMonitor(source)
	if err := monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	done := make(chan ResourceStats, 1)
	go func() { done <- monitor.Stop() }()

	select {
	case stats := <-done:
		if stats.CPUAvg != nil || stats.RAMAvg != nil || stats.GPUAvg != nil {
			t.Errorf("expected all-nil stats, got %+v", stats)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Stop hung with no samples collected")
	}
}

func TestMonitorStopWithoutStart(t *testing.T) {
	monitor := NewMonitor(newFakeSource())
	stats := monitor.Stop()
	if stats.CPUAvg != nil {
		t.Errorf("expected nil stats, got %+v", stats)
	}
}

func TestMonitorStopIdempotent(t *testing.T) {
	source := newFakeSource()
	monitor := NewMonitor(source)
	if err := monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	source.push(Sample{CPU: f(40)})

	first := monitor.Stop()
	second := monitor.Stop()

	if first.CPUAvg == nil || second.CPUAvg == nil || *first.CPUAvg != *second.CPUAvg {
		t.Errorf("repeated Stop should return the same stats: %+v vs %+v", first, second)
	}
	if source.stops != 1 {
		t.Errorf("source stopped %d times, want 1", source.stops)
	}
}
