/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Sweep Executor Tests
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package bench

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pgedge-rag-bench/internal/search"
)

func testSweepExecutor(t *testing.T, opts SweepOptions) (*SweepExecutor, string) {
	t.Helper()

	dir := t.TempDir()
	opts.ResultsDir = dir
	opts.Cooldown = time.Millisecond

	searcher := &benchFakeSearcher{hits: []search.Hit{{Score: 1}}}
	ragSvc := &benchFakeRAG{
		hits:      []search.Hit{{Score: 1}},
		multiHits: []search.Hit{{Score: 1}, {Score: 0.5}},
	}
	runner := testRunner(searcher, ragSvc, &benchFakeModels{}, nil)

	executor := NewSweepExecutor(runner, opts)
	executor.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return executor, dir
}

func batchFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list results dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunSearchSweepPersistsBatches(t *testing.T) {
	executor, dir := testSweepExecutor(t, SweepOptions{
		Corpora: []search.Corpus{search.CorpusFAQ, search.CorpusScience},
		Modes:   []search.Mode{search.ModeKeyword, search.ModeSemantic},
		Questions: map[search.Corpus][]string{
			search.CorpusFAQ:     {"q1", "q2"},
			search.CorpusScience: {"q3"},
		},
	})

	var trials int
	executor.OnTrial = func(TrialRecord, int, int) { trials++ }

	if err := executor.RunSearchSweep(context.Background()); err != nil {
		t.Fatalf("RunSearchSweep failed: %v", err)
	}

	names := batchFiles(t, dir)
	if len(names) != 4 {
		t.Fatalf("batch count = %d, want 4: %v", len(names), names)
	}

	wantName := "benchmark_faq_keyword_20260830_120000.csv"
	found := false
	for _, n := range names {
		if n == wantName {
			found = true
		}
	}
	if !found {
		t.Errorf("missing batch %q in %v", wantName, names)
	}

	// 2 modes x (2 faq + 1 science) questions
	if trials != 6 {
		t.Errorf("trial count = %d, want 6", trials)
	}

	records, err := ReadBatch(filepath.Join(dir, wantName))
	if err != nil {
		t.Fatalf("ReadBatch failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("record count = %d, want 2", len(records))
	}
}

func TestRunRAGSweepBatchNaming(t *testing.T) {
	executor, dir := testSweepExecutor(t, SweepOptions{
		Corpora:   []search.Corpus{search.CorpusFAQ},
		Modes:     []search.Mode{search.ModeKeyword},
		LLMModels: []string{"llama3.2"},
		Questions: map[search.Corpus][]string{
			search.CorpusFAQ: {"q1"},
		},
	})

	if err := executor.RunRAGSweep(context.Background()); err != nil {
		t.Fatalf("RunRAGSweep failed: %v", err)
	}

	names := batchFiles(t, dir)
	if len(names) != 2 {
		t.Fatalf("batch count = %d, want 2: %v", len(names), names)
	}

	var simple, multi bool
	for _, n := range names {
		if strings.Contains(n, "benchmark_rag_faq_keyword_llama3.2_simple_") {
			simple = true
		}
		if strings.Contains(n, "benchmark_rag_faq_keyword_llama3.2_multi-query_") {
			multi = true
		}
	}
	if !simple || !multi {
		t.Errorf("expected simple and multi-query batches, got %v", names)
	}
}

func TestSweepCancellation(t *testing.T) {
	executor, _ := testSweepExecutor(t, SweepOptions{
		Corpora: []search.Corpus{search.CorpusFAQ},
		Modes:   []search.Mode{search.ModeKeyword},
		Questions: map[search.Corpus][]string{
			search.CorpusFAQ: {"q1"},
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := executor.RunSearchSweep(ctx); err == nil {
		t.Error("expected context error after cancellation")
	}
}

func TestSweepSkipsEmptyCorpora(t *testing.T) {
	executor, dir := testSweepExecutor(t, SweepOptions{
		Corpora: []search.Corpus{search.CorpusFAQ, search.CorpusScience},
		Modes:   []search.Mode{search.ModeKeyword},
		Questions: map[search.Corpus][]string{
			search.CorpusFAQ: {"q1"},
		},
	})

	if err := executor.RunSearchSweep(context.Background()); err != nil {
		t.Fatalf("RunSearchSweep failed: %v", err)
	}

	names := batchFiles(t, dir)
	if len(names) != 1 {
		t.Errorf("batch count = %d, want 1: %v", len(names), names)
	}
}
