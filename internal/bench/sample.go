/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Resource Samples and Statistics
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package bench

// Sample is one point-in-time utilization reading. Channels the
// source cannot measure are nil.
type Sample struct {
	CPU *float64
	RAM *float64
	GPU *float64
}

// ResourceStats aggregates the samples collected over one trial's
// execution window. Fields are nil when no samples were collected for
// that channel.
type ResourceStats struct {
	CPUAvg *float64
	CPUMax *float64
	RAMAvg *float64
	RAMMax *float64
	GPUAvg *float64
	GPUMax *float64
}

// NormalizePercent converts ratios in [0,1] to percentages and passes
// through values already expressed as percentages
func NormalizePercent(v float64) float64 {
	if v <= 1 {
		return v * 100
	}
	return v
}

// ComputeStats derives aggregate statistics from a sample set. An
// empty set yields all-nil stats, which is not an error.
func ComputeStats(samples []Sample) ResourceStats {
	var stats ResourceStats
	stats.CPUAvg, stats.CPUMax = avgMax(samples, func(s Sample) *float64 { return s.CPU })
	stats.RAMAvg, stats.RAMMax = avgMax(samples, func(s Sample) *float64 { return s.RAM })
	stats.GPUAvg, stats.GPUMax = avgMax(samples, func(s Sample) *float64 { return s.GPU })
	return stats
}

func avgMax(samples []Sample, pick func(Sample) *float64) (*float64, *float64) {
	var sum, max float64
	count := 0
	for _, s := range samples {
		v := pick(s)
		if v == nil {
			continue
		}
		if count == 0 || *v > max {
			max = *v
		}
		sum += *v
		count++
	}
	if count == 0 {
		return nil, nil
	}
	avg := sum / float64(count)
	maxCopy := max
	return &avg, &maxCopy
}
