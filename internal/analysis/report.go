/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Markdown Report
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package analysis

import (
	"fmt"
	"os"
	"strings"

	"pgedge-rag-bench/internal/bench"
)

func fmtSeconds(v float64) string {
	return fmt.Sprintf("%.3fs", v)
}

func fmtSecondsPtr(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmtSeconds(*v)
}

func fmtPercentPtr(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

// RenderReport builds the markdown summary report for a dataset
func RenderReport(ds *Dataset) string {
	var b strings.Builder
	valid := ds.Valid
	configs := ByConfiguration(valid)

	b.WriteString("# RAG Benchmark Analysis Report\n\n")

	b.WriteString("## Overall statistics\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Valid trials | %d |\n", len(valid))
	fmt.Fprintf(&b, "| Errored trials | %d |\n", len(ds.Errored))
	overall := timingStats(responseTimes(valid))
	if overall.Count > 0 {
		fmt.Fprintf(&b, "| Mean time | %s |\n", fmtSeconds(overall.Mean))
		fmt.Fprintf(&b, "| Median time | %s |\n", fmtSeconds(overall.Median))
		fmt.Fprintf(&b, "| Std deviation | %s |\n", fmtSecondsPtr(overall.Std))
		fmt.Fprintf(&b, "| Min | %s |\n", fmtSeconds(overall.Min))
		fmt.Fprintf(&b, "| Max | %s |\n", fmtSeconds(overall.Max))
	}
	b.WriteString("\n")

	b.WriteString("## Breakdown by corpus\n\n")
	b.WriteString("| Corpus | Trials | Mean time |\n")
	b.WriteString("|--------|--------|----------|\n")
	for _, s := range ByCorpus(valid) {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", s.Name, s.Timing.Count, fmtSeconds(s.Timing.Mean))
	}
	b.WriteString("\n")

	b.WriteString("## Breakdown by search mode\n\n")
	b.WriteString("| Mode | Trials | Mean time |\n")
	b.WriteString("|------|--------|----------|\n")
	for _, s := range ByMode(valid) {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", s.Name, s.Timing.Count, fmtSeconds(s.Timing.Mean))
	}
	b.WriteString("\n")

	if llms := ByLLM(valid); len(llms) > 0 {
		b.WriteString("## Breakdown by LLM model\n\n")
		b.WriteString("| Model | Trials | Mean time |\n")
		b.WriteString("|-------|--------|----------|\n")
		for _, s := range llms {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", s.Name, s.Timing.Count, fmtSeconds(s.Timing.Mean))
		}
		b.WriteString("\n")
	}

	writeTopTable := func(title string, rows []ConfigurationSummary) {
		fmt.Fprintf(&b, "## %s\n\n", title)
		b.WriteString("| Corpus | Mode | LLM | Multi-query | Time | N |\n")
		b.WriteString("|--------|------|-----|-------------|------|---|\n")
		for _, s := range rows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d |\n",
				s.Key.Corpus, s.Key.Mode, s.Key.LLM, s.Key.Multiquery,
				fmtSeconds(s.Timing.Mean), s.Timing.Count)
		}
		b.WriteString("\n")
	}
	writeTopTable("Top 5 fastest configurations", TopFastest(configs, 5))
	writeTopTable("Top 5 slowest configurations", TopSlowest(configs, 5))

	b.WriteString("## Resource usage (global averages)\n\n")
	b.WriteString("| Resource | Value |\n")
	b.WriteString("|----------|-------|\n")
	global := []struct {
		label string
		pick  func(bench.ResourceStats) *float64
	}{
		{"CPU average", func(s bench.ResourceStats) *float64 { return s.CPUAvg }},
		{"CPU max", func(s bench.ResourceStats) *float64 { return s.CPUMax }},
		{"RAM average", func(s bench.ResourceStats) *float64 { return s.RAMAvg }},
		{"RAM max", func(s bench.ResourceStats) *float64 { return s.RAMMax }},
		{"GPU average", func(s bench.ResourceStats) *float64 { return s.GPUAvg }},
		{"GPU max", func(s bench.ResourceStats) *float64 { return s.GPUMax }},
	}
	for _, g := range global {
		if mean := meanOf(pick(valid, g.pick)); mean != nil {
			fmt.Fprintf(&b, "| %s | %s |\n", g.label, fmtPercentPtr(mean))
		}
	}
	b.WriteString("\n")

	b.WriteString("## Per-configuration details\n\n")
	b.WriteString("| Corpus | Mode | LLM | Multi-query | Mean | Median | Min | Max | Std | CPU avg | CPU max | RAM avg | RAM max | N |\n")
	b.WriteString("|--------|------|-----|-------------|------|--------|-----|-----|-----|---------|---------|---------|---------|---|\n")
	for _, s := range configs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %d |\n",
			s.Key.Corpus, s.Key.Mode, s.Key.LLM, s.Key.Multiquery,
			fmtSeconds(s.Timing.Mean), fmtSeconds(s.Timing.Median),
			fmtSeconds(s.Timing.Min), fmtSeconds(s.Timing.Max),
			fmtSecondsPtr(s.Timing.Std),
			fmtPercentPtr(s.CPUAvgMean), fmtPercentPtr(s.CPUMaxMean),
			fmtPercentPtr(s.RAMAvgMean), fmtPercentPtr(s.RAMMaxMean),
			s.Timing.Count)
	}
	b.WriteString("\n")

	return b.String()
}

// WriteReport renders the markdown report to path
func WriteReport(path string, ds *Dataset) error {
	if err := os.WriteFile(path, []byte(RenderReport(ds)), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
