/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Analysis CSV Output
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func fmtFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteConfigurationCSV renders the full per-configuration grouping
func WriteConfigurationCSV(path string, summaries []ConfigurationSummary) error {
	header := []string{
		"corpus", "search_mode", "llm_model", "multiquery",
		"count", "mean_time", "median_time", "std_time", "min_time", "max_time",
		"cpu_avg_mean", "cpu_max_mean", "ram_avg_mean", "ram_max_mean",
		"gpu_avg_mean", "gpu_max_mean",
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Key.Corpus, s.Key.Mode, s.Key.LLM, s.Key.Multiquery,
			strconv.Itoa(s.Timing.Count),
			fmtFloat(s.Timing.Mean),
			fmtFloat(s.Timing.Median),
			fmtFloatPtr(s.Timing.Std),
			fmtFloat(s.Timing.Min),
			fmtFloat(s.Timing.Max),
			fmtFloatPtr(s.CPUAvgMean),
			fmtFloatPtr(s.CPUMaxMean),
			fmtFloatPtr(s.RAMAvgMean),
			fmtFloatPtr(s.RAMMaxMean),
			fmtFloatPtr(s.GPUAvgMean),
			fmtFloatPtr(s.GPUMaxMean),
		})
	}

	return writeCSV(path, header, rows)
}

// WriteDimensionCSV renders a single-dimension grouping; keyName
// becomes the first column header
func WriteDimensionCSV(path, keyName string, summaries []DimensionSummary) error {
	header := []string{keyName, "count", "mean_time", "median_time", "std_time", "min_time", "max_time"}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.Timing.Count),
			fmtFloat(s.Timing.Mean),
			fmtFloat(s.Timing.Median),
			fmtFloatPtr(s.Timing.Std),
			fmtFloat(s.Timing.Min),
			fmtFloat(s.Timing.Max),
		})
	}

	return writeCSV(path, header, rows)
}

// WriteMultiqueryCSV renders the multi-query impact grouping
func WriteMultiqueryCSV(path string, summaries []MultiquerySummary) error {
	header := []string{"llm_model", "search_mode", "multiquery", "count", "mean_time", "median_time"}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.LLM, s.Mode, s.Multiquery,
			strconv.Itoa(s.Count),
			fmtFloat(s.Mean),
			fmtFloat(s.Median),
		})
	}

	return writeCSV(path, header, rows)
}

// WriteResourceCSV renders the per-configuration resource grouping
func WriteResourceCSV(path string, summaries []ResourceSummary) error {
	header := []string{"corpus", "search_mode", "llm_model", "multiquery", "count"}
	for _, col := range resourceColumns {
		header = append(header, col+"_mean", col+"_max")
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		row := []string{
			s.Key.Corpus, s.Key.Mode, s.Key.LLM, s.Key.Multiquery,
			strconv.Itoa(s.Count),
		}
		for _, col := range resourceColumns {
			if mm, ok := s.Columns[col]; ok {
				row = append(row, fmtFloat(mm.Mean), fmtFloat(mm.Max))
			} else {
				row = append(row, "", "")
			}
		}
		rows = append(rows, row)
	}

	return writeCSV(path, header, rows)
}
