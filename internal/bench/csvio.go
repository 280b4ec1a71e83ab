/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Batch Persistence
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package bench

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pgedge-rag-bench/internal/search"
)

// batchColumns is the fixed column set of a persisted batch. Record
// fields outside this set are dropped on write.
var batchColumns = []string{
	"question", "corpus", "search_mode", "llm_model", "multiquery",
	"start_time", "end_time", "response_time", "num_results",
	"cpu_avg", "cpu_max", "ram_avg", "ram_max", "gpu_avg", "gpu_max",
	"error",
}

// WriteBatch persists one batch of trial records to path
func WriteBatch(path string, records []TrialRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create batch file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(batchColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Question,
			string(rec.Corpus),
			string(rec.SearchMode),
			rec.LLMModel,
			formatBool(rec.Multiquery),
			rec.StartTime.Format(TimeFormat),
			rec.EndTime.Format(TimeFormat),
			formatFloat(rec.ResponseTime),
			strconv.Itoa(rec.NumResults),
			formatFloat(rec.Stats.CPUAvg),
			formatFloat(rec.Stats.CPUMax),
			formatFloat(rec.Stats.RAMAvg),
			formatFloat(rec.Stats.RAMMax),
			formatFloat(rec.Stats.GPUAvg),
			formatFloat(rec.Stats.GPUMax),
			rec.Error,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadBatch loads one persisted batch from path
func ReadBatch(path string) ([]TrialRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, name := range batchColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("batch file %s is missing column %q", path, name)
		}
	}

	records := make([]TrialRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := TrialRecord{
			Question:   row[col["question"]],
			Corpus:     search.Corpus(row[col["corpus"]]),
			SearchMode: search.Mode(row[col["search_mode"]]),
			LLMModel:   row[col["llm_model"]],
			Multiquery: parseBool(row[col["multiquery"]]),
			Error:      row[col["error"]],
		}

		rec.StartTime, _ = time.Parse(TimeFormat, row[col["start_time"]])
		rec.EndTime, _ = time.Parse(TimeFormat, row[col["end_time"]])
		rec.ResponseTime = parseFloat(row[col["response_time"]])
		rec.NumResults, _ = strconv.Atoi(row[col["num_results"]])
		rec.Stats = ResourceStats{
			CPUAvg: parseFloat(row[col["cpu_avg"]]),
			CPUMax: parseFloat(row[col["cpu_max"]]),
			RAMAvg: parseFloat(row[col["ram_avg"]]),
			RAMMax: parseFloat(row[col["ram_max"]]),
			GPUAvg: parseFloat(row[col["gpu_avg"]]),
			GPUMax: parseFloat(row[col["gpu_max"]]),
		}

		records = append(records, rec)
	}

	return records, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func parseBool(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}
