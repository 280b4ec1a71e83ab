/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Descriptive Statistics
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package analysis

import (
	"math"
	"sort"
)

// TimingStats is the descriptive statistic set computed per group.
// Std is the sample standard deviation, nil when fewer than two
// observations exist.
type TimingStats struct {
	Count  int
	Mean   float64
	Median float64
	Std    *float64
	Min    float64
	Max    float64
}

func timingStats(times []float64) TimingStats {
	n := len(times)
	if n == 0 {
		return TimingStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, times)
	sort.Float64s(sorted)

	var sum float64
	for _, t := range sorted {
		sum += t
	}
	mean := sum / float64(n)

	stats := TimingStats{
		Count:  n,
		Mean:   mean,
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[n-1],
	}

	if n >= 2 {
		var ss float64
		for _, t := range sorted {
			d := t - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(n-1))
		stats.Std = &std
	}

	return stats
}

// median expects its input sorted
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// meanOf averages the non-nil values, returning nil when every value
// is nil
func meanOf(values []*float64) *float64 {
	var sum float64
	count := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		count++
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}

// maxOf returns the largest non-nil value, or nil when every value is
// nil
func maxOf(values []*float64) *float64 {
	var max float64
	count := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		if count == 0 || *v > max {
			max = *v
		}
		count++
	}
	if count == 0 {
		return nil
	}
	maxCopy := max
	return &maxCopy
}
