/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - External Feed Sample Source
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package bench

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"pgedge-rag-bench/internal/logging"
)

const (
	// FeedDrainGrace is how long the monitor lingers before stopping a
	// feed source, so the last emitted samples are captured
	FeedDrainGrace = 500 * time.Millisecond

	// feedKillTimeout bounds how long a terminated feed process may
	// take to exit before it is killed
	feedKillTimeout = time.Second
)

// DefaultFeedCommand is the external metrics feed used on Apple
// Silicon hosts, emitting one JSON sample every 100ms
var DefaultFeedCommand = []string{"macmon", "pipe", "-i", "100"}

// FeedSource runs an external process that emits one JSON sample per
// line and parses CPU, RAM and GPU utilization from its output.
// Malformed lines are discarded silently.
type FeedSource struct {
	command  []string
	cmd      *exec.Cmd
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewFeedSource creates a feed source for the given command line. An
// empty command selects the default feed.
func NewFeedSource(command []string) *FeedSource {
	if len(command) == 0 {
		command = DefaultFeedCommand
	}
	return &FeedSource{
		command: command,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// FeedAvailable reports whether the feed binary exists on this host
func FeedAvailable(command []string) bool {
	if len(command) == 0 {
		command = DefaultFeedCommand
	}
	_, err := exec.LookPath(command[0])
	return err == nil
}

// feedSample is the wire format of one feed line: CPU and GPU arrive
// as [frequency_mhz, usage_ratio] pairs, memory as absolute bytes
type feedSample struct {
	PCPUUsage []float64 `json:"pcpu_usage"`
	GPUUsage  []float64 `json:"gpu_usage"`
	Memory    *struct {
		RAMUsage float64 `json:"ram_usage"`
		RAMTotal float64 `json:"ram_total"`
	} `json:"memory"`
}

// parseFeedLine extracts a Sample from one line of feed output.
// Returns false when the line carries no usable reading.
func parseFeedLine(line []byte) (Sample, bool) {
	var raw feedSample
	if err := json.Unmarshal(line, &raw); err != nil {
		return Sample{}, false
	}

	var sample Sample
	if len(raw.PCPUUsage) >= 2 {
		v := NormalizePercent(raw.PCPUUsage[1])
		sample.CPU = &v
	}
	if raw.Memory != nil && raw.Memory.RAMTotal > 0 {
		v := raw.Memory.RAMUsage / raw.Memory.RAMTotal * 100
		sample.RAM = &v
	}
	if len(raw.GPUUsage) >= 2 {
		v := NormalizePercent(raw.GPUUsage[1])
		sample.GPU = &v
	}

	if sample.CPU == nil && sample.RAM == nil && sample.GPU == nil {
		return Sample{}, false
	}
	return sample, true
}

// Start launches the feed process and begins parsing its output in a
// background goroutine. The returned channel is closed when the feed
// ends or the source stops.
func (s *FeedSource) Start() (<-chan Sample, error) {
	s.cmd = exec.Command(s.command[0], s.command[1:]...)
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open feed pipe: %w", err)
	}

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start feed process %q: %w", s.command[0], err)
	}

	out := make(chan Sample, 64)

	go func() {
		defer close(out)
		defer close(s.done)

		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			sample, ok := parseFeedLine(scanner.Bytes())
			if !ok {
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

// Stop terminates the feed process, escalating to a kill if it does
// not exit within feedKillTimeout. Safe to call more than once.
func (s *FeedSource) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)

		if s.cmd == nil || s.cmd.Process == nil {
			return
		}

		if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			logging.Debug("feed process signal failed", "error", err.Error())
		}

		waited := make(chan error, 1)
		go func() {
			waited <- s.cmd.Wait()
		}()

		select {
		case <-waited:
		case <-time.After(feedKillTimeout):
			if err := s.cmd.Process.Kill(); err != nil {
				logging.Warn("failed to kill feed process", "error", err.Error())
			}
			<-waited
		}
	})
}

// DrainGrace returns how long the monitor should wait before stopping
// so the last feed samples are captured
func (s *FeedSource) DrainGrace() time.Duration {
	return FeedDrainGrace
}
