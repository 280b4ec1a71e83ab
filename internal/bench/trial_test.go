/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Trial Runner Tests
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package bench

import (
	"context"
	"fmt"
	"testing"

	"pgedge-rag-bench/internal/search"
)

type benchFakeSearcher struct {
	hits []search.Hit
	err  error
}

func (s *benchFakeSearcher) Search(_ context.Context, _ search.Corpus, _ search.Mode, _ string, _ int) (*search.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &search.Result{Total: len(s.hits), Hits: s.hits}, nil
}

type benchFakeRAG struct {
	hits        []search.Hit
	multiHits   []search.Hit
	retrieveErr error
	answerErr   error
	answered    int
}

func (r *benchFakeRAG) Retrieve(_ context.Context, corpus search.Corpus, _ search.Mode, _ string, _ int) ([]search.Hit, string, error) {
	if r.retrieveErr != nil {
		return nil, "", r.retrieveErr
	}
	return r.hits, search.FormatContext(corpus, r.hits), nil
}

func (r *benchFakeRAG) RetrieveMultiQuery(_ context.Context, corpus search.Corpus, _ search.Mode, _ string, _ int) ([]search.Hit, string, error) {
	if r.retrieveErr != nil {
		return nil, "", r.retrieveErr
	}
	return r.multiHits, search.FormatContext(corpus, r.multiHits), nil
}

func (r *benchFakeRAG) Answer(_ context.Context, _, _ string, _ func(string)) (string, error) {
	if r.answerErr != nil {
		return "", r.answerErr
	}
	r.answered++
	return "an answer", nil
}

type benchFakeModels struct {
	selected []string
}

func (m *benchFakeModels) SetModel(model string) {
	m.selected = append(m.selected, model)
}

// testRunner builds a runner whose monitors use a pre-seeded fake
// source rather than touching the OS
func testRunner(searcher Searcher, ragSvc RAGService, models ModelSelector, samples []Sample) *TrialRunner {
	runner := NewTrialRunner(searcher, ragSvc, models, nil)
	factory := func() *Monitor {
		source := newFakeSource()
		for _, s := range samples {
			source.push(s)
		}
		return NewMonitor(source)
	}
	runner.newSearchMonitor = factory
	runner.newRAGMonitor = factory
	return runner
}

func TestRunSearchTrialSuccess(t *testing.T) {
	searcher := &benchFakeSearcher{hits: []search.Hit{{Score: 1}, {Score: 0.5}}}
	runner := testRunner(searcher, nil, nil, []Sample{{CPU: f(10)}, {CPU: f(20)}})

	rec := runner.RunSearchTrial(context.Background(), "q?", search.CorpusFAQ, search.ModeKeyword)

	if !rec.Succeeded() {
		t.Fatalf("trial failed: %s", rec.Error)
	}
	if rec.ResponseTime == nil || *rec.ResponseTime < 0 {
		t.Error("response time should be set on success")
	}
	if rec.NumResults != 2 {
		t.Errorf("num_results = %d, want 2", rec.NumResults)
	}
	if rec.LLMModel != "" || rec.Multiquery != nil {
		t.Error("search trial must not carry generation fields")
	}
	if rec.Stats.CPUAvg == nil || *rec.Stats.CPUAvg != 15 {
		t.Errorf("cpu avg = %v, want 15", rec.Stats.CPUAvg)
	}
	if rec.EndTime.Before(rec.StartTime) {
		t.Error("end time precedes start time")
	}
}

func TestRunSearchTrialError(t *testing.T) {
	searcher := &benchFakeSearcher{err: fmt.Errorf("connection refused")}
	runner := testRunner(searcher, nil, nil, []Sample{{CPU: f(30)}})

	rec := runner.RunSearchTrial(context.Background(), "q?", search.CorpusFAQ, search.ModeKeyword)

	if rec.Succeeded() {
		t.Fatal("trial should have failed")
	}
	if rec.Error != "connection refused" {
		t.Errorf("error = %q", rec.Error)
	}
	if rec.ResponseTime != nil {
		t.Error("response time must stay nil on error")
	}
	if rec.NumResults != 0 {
		t.Errorf("num_results = %d, want 0", rec.NumResults)
	}

	// Stats are still populated from samples taken before the failure
	if rec.Stats.CPUAvg == nil || *rec.Stats.CPUAvg != 30 {
		t.Errorf("cpu avg = %v, want 30", rec.Stats.CPUAvg)
	}
}

func TestRunRAGTrialSimple(t *testing.T) {
	ragSvc := &benchFakeRAG{hits: []search.Hit{{Score: 1}, {Score: 0.7}, {Score: 0.2}}}
	models := &benchFakeModels{}
	runner := testRunner(nil, ragSvc, models, []Sample{{CPU: f(50), GPU: f(70)}})

	rec := runner.RunRAGTrial(context.Background(), "q?", search.CorpusFAQ, search.ModeHybrid, "llama3.2", false)

	if !rec.Succeeded() {
		t.Fatalf("trial failed: %s", rec.Error)
	}
	if rec.LLMModel != "llama3.2" {
		t.Errorf("llm model = %q", rec.LLMModel)
	}
	if rec.Multiquery == nil || *rec.Multiquery {
		t.Error("multiquery flag should be false")
	}
	if len(models.selected) != 1 || models.selected[0] != "llama3.2" {
		t.Errorf("model selection = %v", models.selected)
	}
	if rec.NumResults != 3 {
		t.Errorf("num_results = %d, want 3", rec.NumResults)
	}
	if rec.SearchTime == nil || rec.GenerationTime == nil || rec.ResponseTime == nil {
		t.Fatal("all three timings should be set")
	}
	if *rec.SearchTime+*rec.GenerationTime > *rec.ResponseTime+0.001 {
		t.Errorf("sub-intervals %v+%v exceed total %v",
			*rec.SearchTime, *rec.GenerationTime, *rec.ResponseTime)
	}
	if rec.Answer != "an answer" {
		t.Errorf("answer = %q", rec.Answer)
	}
}

func TestRunRAGTrialMultiquery(t *testing.T) {
	ragSvc := &benchFakeRAG{multiHits: []search.Hit{{Score: 1}, {Score: 0.5}, {Score: 0.4}, {Score: 0.1}}}
	runner := testRunner(nil, ragSvc, &benchFakeModels{}, nil)

	rec := runner.RunRAGTrial(context.Background(), "q?", search.CorpusScience, search.ModeNeural, "mistral:7b", true)

	if !rec.Succeeded() {
		t.Fatalf("trial failed: %s", rec.Error)
	}
	if rec.Multiquery == nil || !*rec.Multiquery {
		t.Error("multiquery flag should be true")
	}
	if rec.NumResults != 4 {
		t.Errorf("num_results = %d, want 4", rec.NumResults)
	}
}

func TestRunRAGTrialGenerationError(t *testing.T) {
	ragSvc := &benchFakeRAG{
		hits:      []search.Hit{{Score: 1}},
		answerErr: fmt.Errorf("model offline"),
	}
	runner := testRunner(nil, ragSvc, &benchFakeModels{}, []Sample{{CPU: f(25)}})

	rec := runner.RunRAGTrial(context.Background(), "q?", search.CorpusFAQ, search.ModeKeyword, "llama3.2", false)

	if rec.Succeeded() {
		t.Fatal("trial should have failed")
	}
	if rec.ResponseTime != nil {
		t.Error("response time must stay nil on error")
	}
	// The search sub-interval completed before the failure
	if rec.SearchTime == nil {
		t.Error("search time should still be recorded")
	}
	if rec.Stats.CPUAvg == nil {
		t.Error("stats should still be populated")
	}
}
