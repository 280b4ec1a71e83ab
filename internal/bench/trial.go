/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Trial Runner
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package bench

import (
	"context"
	"time"

	"pgedge-rag-bench/internal/search"
)

const (
	// SearchTrialHits is the result count for pure-search and simple
	// generation trials
	SearchTrialHits = 5

	// MultiQueryHits is the result count per fan-out search in
	// multi-query mode
	MultiQueryHits = 2
)

// Searcher is the retrieval collaborator of a trial
type Searcher interface {
	Search(ctx context.Context, corpus search.Corpus, mode search.Mode, query string, size int) (*search.Result, error)
}

// RAGService is the retrieval+generation collaborator of a trial
type RAGService interface {
	Retrieve(ctx context.Context, corpus search.Corpus, mode search.Mode, question string, size int) ([]search.Hit, string, error)
	RetrieveMultiQuery(ctx context.Context, corpus search.Corpus, mode search.Mode, question string, perQuery int) ([]search.Hit, string, error)
	Answer(ctx context.Context, question, docContext string, onChunk func(string)) (string, error)
}

// ModelSelector switches the LLM used by the generation collaborator
type ModelSelector interface {
	SetModel(model string)
}

// TrialRunner executes one configuration against one question,
// wrapping the call with a resource monitor. Collaborator failures
// are recorded on the trial, never propagated.
type TrialRunner struct {
	searcher Searcher
	ragSvc   RAGService
	models   ModelSelector

	// newMonitor builds the per-trial monitor; the richer feed source
	// is reserved for generation trials, matching the cost of what
	// they measure
	newSearchMonitor func() *Monitor
	newRAGMonitor    func() *Monitor
}

// NewTrialRunner creates a trial runner on the given collaborators.
// feedCommand selects the external metrics feed for generation
// trials; pure-search trials always use the cheaper OS poll.
func NewTrialRunner(searcher Searcher, ragSvc RAGService, models ModelSelector, feedCommand []string) *TrialRunner {
	return &TrialRunner{
		searcher: searcher,
		ragSvc:   ragSvc,
		models:   models,
		newSearchMonitor: func() *Monitor {
			return NewMonitor(NewOSPollSource(0))
		},
		newRAGMonitor: func() *Monitor {
			return NewDefaultMonitor(feedCommand)
		},
	}
}

// RunSearchTrial measures one pure-search trial
func (t *TrialRunner) RunSearchTrial(ctx context.Context, question string, corpus search.Corpus, mode search.Mode) TrialRecord {
	monitor := t.newSearchMonitor()
	_ = monitor.Start()

	start := time.Now()
	rec := TrialRecord{
		Question:   question,
		Corpus:     corpus,
		SearchMode: mode,
		StartTime:  start,
	}

	result, err := t.searcher.Search(ctx, corpus, mode, question, SearchTrialHits)
	if err != nil {
		rec.Error = err.Error()
	} else {
		elapsed := time.Since(start).Seconds()
		rec.ResponseTime = &elapsed
		rec.NumResults = len(result.Hits)
	}

	rec.Stats = monitor.Stop()
	rec.EndTime = time.Now()

	return rec
}

// RunRAGTrial measures one retrieval-plus-generation trial
func (t *TrialRunner) RunRAGTrial(ctx context.Context, question string, corpus search.Corpus, mode search.Mode, llmModel string, multiquery bool) TrialRecord {
	monitor := t.newRAGMonitor()
	if err := monitor.Start(); err != nil {
		// Fall back to the OS poll rather than losing the trial
		monitor = t.newSearchMonitor()
		_ = monitor.Start()
	}

	start := time.Now()
	rec := TrialRecord{
		Question:   question,
		Corpus:     corpus,
		SearchMode: mode,
		LLMModel:   llmModel,
		Multiquery: &multiquery,
		StartTime:  start,
	}

	t.models.SetModel(llmModel)

	err := func() error {
		searchStart := time.Now()

		var hits []search.Hit
		var docContext string
		var err error
		if multiquery {
			hits, docContext, err = t.ragSvc.RetrieveMultiQuery(ctx, corpus, mode, question, MultiQueryHits)
		} else {
			hits, docContext, err = t.ragSvc.Retrieve(ctx, corpus, mode, question, SearchTrialHits)
		}
		if err != nil {
			return err
		}

		rec.NumResults = len(hits)
		searchTime := time.Since(searchStart).Seconds()
		rec.SearchTime = &searchTime

		generationStart := time.Now()
		answer, err := t.ragSvc.Answer(ctx, question, docContext, nil)
		if err != nil {
			return err
		}
		rec.Answer = answer

		generationTime := time.Since(generationStart).Seconds()
		rec.GenerationTime = &generationTime

		elapsed := time.Since(start).Seconds()
		rec.ResponseTime = &elapsed
		return nil
	}()
	if err != nil {
		rec.Error = err.Error()
	}

	rec.Stats = monitor.Stop()
	rec.EndTime = time.Now()

	return rec
}
