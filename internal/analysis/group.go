/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Grouped Analyses
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package analysis

import (
	"sort"
	"strconv"

	"pgedge-rag-bench/internal/bench"
)

// NoneValue stands in for absent llm_model and multiquery fields in
// grouping keys, so pure-search and generation records never merge
const NoneValue = "none"

// ConfigKey identifies one point of the configuration space
type ConfigKey struct {
	Corpus     string
	Mode       string
	LLM        string
	Multiquery string
}

func keyOf(rec bench.TrialRecord) ConfigKey {
	llm := rec.LLMModel
	if llm == "" {
		llm = NoneValue
	}
	mq := NoneValue
	if rec.Multiquery != nil {
		mq = strconv.FormatBool(*rec.Multiquery)
	}
	return ConfigKey{
		Corpus:     string(rec.Corpus),
		Mode:       string(rec.SearchMode),
		LLM:        llm,
		Multiquery: mq,
	}
}

func (k ConfigKey) less(o ConfigKey) bool {
	if k.Corpus != o.Corpus {
		return k.Corpus < o.Corpus
	}
	if k.Mode != o.Mode {
		return k.Mode < o.Mode
	}
	if k.LLM != o.LLM {
		return k.LLM < o.LLM
	}
	return k.Multiquery < o.Multiquery
}

// ConfigurationSummary aggregates one configuration group: response
// time statistics plus the group mean of each resource channel.
// Resource means ignore nil values; a group where every record lacks
// a channel yields nil, not zero.
type ConfigurationSummary struct {
	Key    ConfigKey
	Timing TimingStats

	CPUAvgMean *float64
	CPUMaxMean *float64
	RAMAvgMean *float64
	RAMMaxMean *float64
	GPUAvgMean *float64
	GPUMaxMean *float64
}

// ByConfiguration groups valid records by their full configuration
// key, sorted lexicographically over the key tuple
func ByConfiguration(records []bench.TrialRecord) []ConfigurationSummary {
	groups := groupBy(records, keyOf)

	summaries := make([]ConfigurationSummary, 0, len(groups))
	for key, group := range groups {
		times := responseTimes(group)
		if len(times) == 0 {
			continue
		}

		summaries = append(summaries, ConfigurationSummary{
			Key:        key,
			Timing:     timingStats(times),
			CPUAvgMean: meanOf(pick(group, func(s bench.ResourceStats) *float64 { return s.CPUAvg })),
			CPUMaxMean: meanOf(pick(group, func(s bench.ResourceStats) *float64 { return s.CPUMax })),
			RAMAvgMean: meanOf(pick(group, func(s bench.ResourceStats) *float64 { return s.RAMAvg })),
			RAMMaxMean: meanOf(pick(group, func(s bench.ResourceStats) *float64 { return s.RAMMax })),
			GPUAvgMean: meanOf(pick(group, func(s bench.ResourceStats) *float64 { return s.GPUAvg })),
			GPUMaxMean: meanOf(pick(group, func(s bench.ResourceStats) *float64 { return s.GPUMax })),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Key.less(summaries[j].Key)
	})
	return summaries
}

// DimensionSummary aggregates one value of a single grouping
// dimension
type DimensionSummary struct {
	Name   string
	Timing TimingStats
}

// ByMode groups valid records by search mode alone
func ByMode(records []bench.TrialRecord) []DimensionSummary {
	return byDimension(records, func(rec bench.TrialRecord) string {
		return string(rec.SearchMode)
	})
}

// ByCorpus groups valid records by corpus alone
func ByCorpus(records []bench.TrialRecord) []DimensionSummary {
	return byDimension(records, func(rec bench.TrialRecord) string {
		return string(rec.Corpus)
	})
}

// ByLLM groups generation records by LLM model alone; pure-search
// records are excluded
func ByLLM(records []bench.TrialRecord) []DimensionSummary {
	return byDimension(generationOnly(records), func(rec bench.TrialRecord) string {
		return rec.LLMModel
	})
}

func byDimension(records []bench.TrialRecord, name func(bench.TrialRecord) string) []DimensionSummary {
	groups := groupBy(records, name)

	summaries := make([]DimensionSummary, 0, len(groups))
	for key, group := range groups {
		times := responseTimes(group)
		if len(times) == 0 {
			continue
		}
		summaries = append(summaries, DimensionSummary{
			Name:   key,
			Timing: timingStats(times),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries
}

// MultiquerySummary measures the multi-query impact for one
// (llm, mode, multiquery) combination, generation records only
type MultiquerySummary struct {
	LLM        string
	Mode       string
	Multiquery string
	Count      int
	Mean       float64
	Median     float64
}

type multiqueryKey struct {
	llm, mode, mq string
}

// MultiqueryImpact compares simple against multi-query generation
// trials per (llm, mode) pair
func MultiqueryImpact(records []bench.TrialRecord) []MultiquerySummary {
	groups := groupBy(generationOnly(records), func(rec bench.TrialRecord) multiqueryKey {
		mq := NoneValue
		if rec.Multiquery != nil {
			mq = strconv.FormatBool(*rec.Multiquery)
		}
		return multiqueryKey{llm: rec.LLMModel, mode: string(rec.SearchMode), mq: mq}
	})

	summaries := make([]MultiquerySummary, 0, len(groups))
	for key, group := range groups {
		times := responseTimes(group)
		if len(times) == 0 {
			continue
		}
		stats := timingStats(times)
		summaries = append(summaries, MultiquerySummary{
			LLM:        key.llm,
			Mode:       key.mode,
			Multiquery: key.mq,
			Count:      stats.Count,
			Mean:       stats.Mean,
			Median:     stats.Median,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.LLM != b.LLM {
			return a.LLM < b.LLM
		}
		if a.Mode != b.Mode {
			return a.Mode < b.Mode
		}
		return a.Multiquery < b.Multiquery
	})
	return summaries
}

// MeanMax is the group mean and group max of one resource column
type MeanMax struct {
	Mean float64
	Max  float64
}

// resourceColumns fixes the column order of the resource-usage
// grouping
var resourceColumns = []string{"cpu_avg", "cpu_max", "ram_avg", "ram_max", "gpu_avg", "gpu_max"}

// ResourceSummary aggregates resource readings per configuration.
// Columns without any reading in the group are absent from the map.
type ResourceSummary struct {
	Key     ConfigKey
	Count   int
	Columns map[string]MeanMax
}

// ResourceUsage groups resource readings by full configuration key
func ResourceUsage(records []bench.TrialRecord) []ResourceSummary {
	groups := groupBy(records, keyOf)

	pickers := map[string]func(bench.ResourceStats) *float64{
		"cpu_avg": func(s bench.ResourceStats) *float64 { return s.CPUAvg },
		"cpu_max": func(s bench.ResourceStats) *float64 { return s.CPUMax },
		"ram_avg": func(s bench.ResourceStats) *float64 { return s.RAMAvg },
		"ram_max": func(s bench.ResourceStats) *float64 { return s.RAMMax },
		"gpu_avg": func(s bench.ResourceStats) *float64 { return s.GPUAvg },
		"gpu_max": func(s bench.ResourceStats) *float64 { return s.GPUMax },
	}

	summaries := make([]ResourceSummary, 0, len(groups))
	for key, group := range groups {
		summary := ResourceSummary{
			Key:     key,
			Count:   len(group),
			Columns: make(map[string]MeanMax),
		}
		for _, col := range resourceColumns {
			values := pick(group, pickers[col])
			mean := meanOf(values)
			max := maxOf(values)
			if mean != nil && max != nil {
				summary.Columns[col] = MeanMax{Mean: *mean, Max: *max}
			}
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Key.less(summaries[j].Key)
	})
	return summaries
}

// TopFastest returns the n configurations with the lowest mean
// response time, ties broken by key order
func TopFastest(summaries []ConfigurationSummary, n int) []ConfigurationSummary {
	return topN(summaries, n, func(a, b ConfigurationSummary) bool {
		if a.Timing.Mean != b.Timing.Mean {
			return a.Timing.Mean < b.Timing.Mean
		}
		return a.Key.less(b.Key)
	})
}

// TopSlowest returns the n configurations with the highest mean
// response time, ties broken by key order
func TopSlowest(summaries []ConfigurationSummary, n int) []ConfigurationSummary {
	return topN(summaries, n, func(a, b ConfigurationSummary) bool {
		if a.Timing.Mean != b.Timing.Mean {
			return a.Timing.Mean > b.Timing.Mean
		}
		return a.Key.less(b.Key)
	})
}

func topN(summaries []ConfigurationSummary, n int, less func(a, b ConfigurationSummary) bool) []ConfigurationSummary {
	sorted := make([]ConfigurationSummary, len(summaries))
	copy(sorted, summaries)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

func groupBy[K comparable](records []bench.TrialRecord, key func(bench.TrialRecord) K) map[K][]bench.TrialRecord {
	groups := make(map[K][]bench.TrialRecord)
	for _, rec := range records {
		k := key(rec)
		groups[k] = append(groups[k], rec)
	}
	return groups
}

func generationOnly(records []bench.TrialRecord) []bench.TrialRecord {
	var out []bench.TrialRecord
	for _, rec := range records {
		if rec.LLMModel != "" {
			out = append(out, rec)
		}
	}
	return out
}

func responseTimes(records []bench.TrialRecord) []float64 {
	var times []float64
	for _, rec := range records {
		if rec.ResponseTime != nil {
			times = append(times, *rec.ResponseTime)
		}
	}
	return times
}

func pick(records []bench.TrialRecord, f func(bench.ResourceStats) *float64) []*float64 {
	out := make([]*float64, 0, len(records))
	for _, rec := range records {
		out = append(out, f(rec.Stats))
	}
	return out
}
