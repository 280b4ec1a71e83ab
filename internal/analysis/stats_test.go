/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Statistics Tests
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package analysis

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTimingStats(t *testing.T) {
	stats := timingStats([]float64{0.10, 0.20, 0.30})

	if stats.Count != 3 {
		t.Errorf("count = %d, want 3", stats.Count)
	}
	if !almostEqual(stats.Mean, 0.20) {
		t.Errorf("mean = %v, want 0.20", stats.Mean)
	}
	if !almostEqual(stats.Median, 0.20) {
		t.Errorf("median = %v, want 0.20", stats.Median)
	}
	if !almostEqual(stats.Min, 0.10) {
		t.Errorf("min = %v, want 0.10", stats.Min)
	}
	if !almostEqual(stats.Max, 0.30) {
		t.Errorf("max = %v, want 0.30", stats.Max)
	}
	if stats.Std == nil || !almostEqual(*stats.Std, 0.1) {
		t.Errorf("std = %v, want 0.1", stats.Std)
	}
}

func TestTimingStatsSingleObservation(t *testing.T) {
	stats := timingStats([]float64{1.5})
	if stats.Count != 1 {
		t.Errorf("count = %d, want 1", stats.Count)
	}
	if stats.Std != nil {
		t.Error("std must be nil with fewer than two observations")
	}
	if stats.Mean != 1.5 || stats.Median != 1.5 {
		t.Errorf("mean/median = %v/%v, want 1.5/1.5", stats.Mean, stats.Median)
	}
}

func TestTimingStatsEvenCountMedian(t *testing.T) {
	stats := timingStats([]float64{4, 1, 3, 2})
	if !almostEqual(stats.Median, 2.5) {
		t.Errorf("median = %v, want 2.5", stats.Median)
	}
}

func TestMeanOfIgnoresNil(t *testing.T) {
	if got := meanOf([]*float64{f(10), nil, f(30)}); got == nil || !almostEqual(*got, 20) {
		t.Errorf("meanOf = %v, want 20", got)
	}
	if got := meanOf([]*float64{nil, nil}); got != nil {
		t.Errorf("all-nil mean = %v, want nil", got)
	}
}

func TestMaxOfIgnoresNil(t *testing.T) {
	if got := maxOf([]*float64{f(10), nil, f(30), f(5)}); got == nil || *got != 30 {
		t.Errorf("maxOf = %v, want 30", got)
	}
	if got := maxOf(nil); got != nil {
		t.Errorf("empty max = %v, want nil", got)
	}
}
