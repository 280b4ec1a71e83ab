/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Analysis Driver Tests
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package analysis

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pgedge-rag-bench/internal/bench"
	"pgedge-rag-bench/internal/search"
)

func writeSampleBatches(t *testing.T, resultsDir string) {
	t.Helper()

	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	stamp := func(rec *bench.TrialRecord, offset time.Duration) {
		rec.StartTime = start.Add(offset)
		rec.EndTime = rec.StartTime.Add(time.Second)
	}

	searchBatch := []bench.TrialRecord{
		searchRecord(search.CorpusFAQ, search.ModeKeyword, 0.10),
		searchRecord(search.CorpusFAQ, search.ModeKeyword, 0.20),
		searchRecord(search.CorpusFAQ, search.ModeKeyword, 0.30),
	}
	errored := searchRecord(search.CorpusFAQ, search.ModeKeyword, 0)
	errored.ResponseTime = nil
	errored.Error = "search failed: connection refused"
	searchBatch = append(searchBatch, errored)
	for i := range searchBatch {
		searchBatch[i].NumResults = 5
		stamp(&searchBatch[i], time.Duration(i)*time.Second)
	}

	ragBatch := []bench.TrialRecord{
		ragRecord(search.CorpusFAQ, search.ModeKeyword, "llama3.2", false, 4.0),
		ragRecord(search.CorpusFAQ, search.ModeKeyword, "llama3.2", true, 7.5),
	}
	for i := range ragBatch {
		ragBatch[i].SearchTime = f(0.2)
		ragBatch[i].GenerationTime = f(3.0)
		stamp(&ragBatch[i], time.Duration(10+i)*time.Second)
	}

	if err := bench.WriteBatch(filepath.Join(resultsDir, "benchmark_faq_keyword_20260830_120000.csv"), searchBatch); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if err := bench.WriteBatch(filepath.Join(resultsDir, "benchmark_rag_faq_keyword_llama3.2_simple_20260830_121000.csv"), ragBatch); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	resultsDir := t.TempDir()
	analysisDir := filepath.Join(t.TempDir(), "analysis")
	writeSampleBatches(t, resultsDir)

	if err := Run(resultsDir, analysisDir); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, name := range []string{
		ConfigurationFile,
		SearchModeFile,
		LLMModelFile,
		CorpusFile,
		MultiqueryFile,
		ResourceFile,
		ReportFile,
	} {
		if _, err := os.Stat(filepath.Join(analysisDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	file, err := os.Open(filepath.Join(analysisDir, ConfigurationFile))
	if err != nil {
		t.Fatalf("open configuration csv: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read configuration csv: %v", err)
	}
	// header plus one search group and two generation groups
	if len(rows) != 4 {
		t.Fatalf("configuration rows = %d, want 4", len(rows))
	}
	if rows[0][0] != "corpus" {
		t.Errorf("header[0] = %q, want corpus", rows[0][0])
	}

	report, err := os.ReadFile(filepath.Join(analysisDir, ReportFile))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	text := string(report)
	for _, want := range []string{
		"# RAG Benchmark Analysis Report",
		"llama3.2",
		"0.200s",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRunNoBatches(t *testing.T) {
	if err := Run(t.TempDir(), t.TempDir()); err == nil {
		t.Error("expected error for empty results dir")
	}
}

func TestRunDeterministic(t *testing.T) {
	resultsDir := t.TempDir()
	writeSampleBatches(t, resultsDir)

	read := func() string {
		dir := filepath.Join(t.TempDir(), "analysis")
		if err := Run(resultsDir, dir); err != nil {
			t.Fatalf("Run: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, ConfigurationFile))
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		return string(data)
	}

	if read() != read() {
		t.Error("repeated analysis of the same results must be byte-identical")
	}
}

func TestLoadPartitionsByOutcome(t *testing.T) {
	resultsDir := t.TempDir()
	writeSampleBatches(t, resultsDir)

	ds, err := Load(resultsDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Valid) != 5 {
		t.Errorf("valid = %d, want 5", len(ds.Valid))
	}
	if len(ds.Errored) != 1 {
		t.Errorf("errored = %d, want 1", len(ds.Errored))
	}
}

func TestLoadSkipsUnreadableFiles(t *testing.T) {
	resultsDir := t.TempDir()
	writeSampleBatches(t, resultsDir)
	if err := os.WriteFile(filepath.Join(resultsDir, "broken.csv"), []byte("not,a\nbatch\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ds, err := Load(resultsDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Valid) != 5 {
		t.Errorf("valid = %d after skipping broken file, want 5", len(ds.Valid))
	}
}
