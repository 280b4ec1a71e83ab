/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Sweep Executor
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
	"path/filepath"
	"time"

	"pgedge-rag-bench/internal/logging"
	"pgedge-rag-bench/internal/search"
)

// DefaultCooldown is the pause between batches, letting the shared
// services and the host settle before the next configuration
const DefaultCooldown = 10 * time.Minute

const fileTimestampFormat = "20060102_150405"

// SweepOptions spans the configuration space of one sweep. Trials run
// strictly sequentially: the external services are shared, stateful
// and rate-sensitive.
type SweepOptions struct {
	Corpora   []search.Corpus
	Modes     []search.Mode
	LLMModels []string

	// Questions holds the per-corpus question sets
	Questions map[search.Corpus][]string

	ResultsDir string
	Cooldown   time.Duration
}

// SweepExecutor iterates the Cartesian product of the configuration
// dimensions, persisting one batch file per configuration point
type SweepExecutor struct {
	runner *TrialRunner
	opts   SweepOptions

	// OnTrial, when set, observes every completed trial
	OnTrial func(rec TrialRecord, index, total int)

	// OnBatch, when set, observes every persisted batch
	OnBatch func(path string, records []TrialRecord)

	now func() time.Time
}

// NewSweepExecutor creates an executor over the given space
func NewSweepExecutor(runner *TrialRunner, opts SweepOptions) *SweepExecutor {
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	return &SweepExecutor{
		runner: runner,
		opts:   opts,
		now:    time.Now,
	}
}

// Run executes the pure-search sweep followed by the RAG sweep
func (s *SweepExecutor) Run(ctx context.Context) error {
	if err := s.RunSearchSweep(ctx); err != nil {
		return err
	}
	if len(s.opts.LLMModels) > 0 {
		if err := s.cooldown(ctx); err != nil {
			return err
		}
		return s.RunRAGSweep(ctx)
	}
	return nil
}

// RunSearchSweep benchmarks every (mode, corpus) point with one
// pure-search trial per question, persisting one batch per point
func (s *SweepExecutor) RunSearchSweep(ctx context.Context) error {
	points := 0
	for range s.opts.Modes {
		for _, corpus := range s.opts.Corpora {
			if len(s.opts.Questions[corpus]) > 0 {
				points++
			}
		}
	}

	done := 0
	for _, mode := range s.opts.Modes {
		for _, corpus := range s.opts.Corpora {
			questions := s.opts.Questions[corpus]
			if len(questions) == 0 {
				continue
			}

			logging.Info("search batch starting",
				"corpus", string(corpus),
				"mode", string(mode),
				"questions", len(questions))

			records := make([]TrialRecord, 0, len(questions))
			for i, question := range questions {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec := s.runner.RunSearchTrial(ctx, question, corpus, mode)
				records = append(records, rec)
				if s.OnTrial != nil {
					s.OnTrial(rec, i+1, len(questions))
				}
			}

			name := fmt.Sprintf("benchmark_%s_%s_%s.csv", corpus, mode, s.now().Format(fileTimestampFormat))
			if err := s.persistBatch(name, records); err != nil {
				return err
			}

			done++
			if done < points {
				if err := s.cooldown(ctx); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// RunRAGSweep benchmarks every (mode, llm, multiquery, corpus) point
// with one generation trial per question
func (s *SweepExecutor) RunRAGSweep(ctx context.Context) error {
	multiqueryModes := []bool{false, true}

	points := 0
	for range s.opts.Modes {
		for range s.opts.LLMModels {
			for range multiqueryModes {
				for _, corpus := range s.opts.Corpora {
					if len(s.opts.Questions[corpus]) > 0 {
						points++
					}
				}
			}
		}
	}

	done := 0
	for _, mode := range s.opts.Modes {
		for _, model := range s.opts.LLMModels {
			for _, multiquery := range multiqueryModes {
				for _, corpus := range s.opts.Corpora {
					questions := s.opts.Questions[corpus]
					if len(questions) == 0 {
						continue
					}

					variant := "simple"
					if multiquery {
						variant = "multi-query"
					}

					logging.Info("rag batch starting",
						"corpus", string(corpus),
						"mode", string(mode),
						"llm_model", model,
						"variant", variant,
						"questions", len(questions))

					records := make([]TrialRecord, 0, len(questions))
					for i, question := range questions {
						if err := ctx.Err(); err != nil {
							return err
						}
						rec := s.runner.RunRAGTrial(ctx, question, corpus, mode, model, multiquery)
						records = append(records, rec)
						if s.OnTrial != nil {
							s.OnTrial(rec, i+1, len(questions))
						}
					}

					name := fmt.Sprintf("benchmark_rag_%s_%s_%s_%s_%s.csv",
						corpus, mode, model, variant, s.now().Format(fileTimestampFormat))
					if err := s.persistBatch(name, records); err != nil {
						return err
					}

					done++
					if done < points {
						if err := s.cooldown(ctx); err != nil {
							return err
						}
					}
				}
			}
		}
	}

	return nil
}

func (s *SweepExecutor) persistBatch(name string, records []TrialRecord) error {
	path := filepath.Join(s.opts.ResultsDir, name)
	if err := WriteBatch(path, records); err != nil {
		return fmt.Errorf("failed to persist batch %s: %w", name, err)
	}

	succeeded := 0
	for _, rec := range records {
		if rec.Succeeded() {
			succeeded++
		}
	}
	logging.Info("batch persisted",
		"path", path,
		"records", len(records),
		"succeeded", succeeded)

	if s.OnBatch != nil {
		s.OnBatch(path, records)
	}
	return nil
}

// cooldown pauses between batches; cancellation cuts the pause short
func (s *SweepExecutor) cooldown(ctx context.Context) error {
	logging.Info("cooldown between batches", "duration", s.opts.Cooldown.String())
	select {
	case <-time.After(s.opts.Cooldown):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
