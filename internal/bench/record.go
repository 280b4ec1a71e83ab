/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Trial Records
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package bench

import (
	"time"

	"pgedge-rag-bench/internal/search"
)

// TimeFormat is how trial timestamps are persisted
const TimeFormat = "2006-01-02 15:04:05"

// TrialRecord captures one measured operation. Exactly one of Error
// or ResponseTime is set; NumResults stays 0 until a search
// completes. Populated fully before being appended to a batch,
// immutable afterward.
type TrialRecord struct {
	Question   string
	Corpus     search.Corpus
	SearchMode search.Mode

	// LLMModel and Multiquery are empty for pure-search trials
	LLMModel   string
	Multiquery *bool

	StartTime time.Time
	EndTime   time.Time

	// ResponseTime is the total wall time in seconds; SearchTime and
	// GenerationTime are its sub-intervals on generation trials
	ResponseTime   *float64
	SearchTime     *float64
	GenerationTime *float64

	NumResults int
	Stats      ResourceStats

	// Answer is kept in memory for display, never persisted
	Answer string

	Error string
}

// Succeeded reports whether the trial completed without error
func (r *TrialRecord) Succeeded() bool {
	return r.Error == ""
}
