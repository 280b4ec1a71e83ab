/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Multi-Query Retrieval
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package rag

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"pgedge-rag-bench/internal/logging"
	"pgedge-rag-bench/internal/search"
)

// MaxAlternatives is how many rewritten questions the engine asks for.
// Models do not reliably produce exactly this many, so callers must
// accept anywhere from zero to MaxAlternatives.
const MaxAlternatives = 3

const alternativesPromptTemplate = `Generate %d alternative phrasings of the following question to improve document retrieval.
Return one question per line, with no numbering and no commentary.

QUESTION: %s

ALTERNATIVE QUESTIONS:`

// leadingListMarker matches numbering or bullet prefixes the model
// tends to add despite instructions
var leadingListMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*`)

// AlternativeQuestions asks the generator to rewrite the question and
// returns the parsed alternatives, at most MaxAlternatives of them.
// An empty result is degraded operation, not an error.
func (e *Engine) AlternativeQuestions(ctx context.Context, question string) ([]string, error) {
	prompt := fmt.Sprintf(alternativesPromptTemplate, MaxAlternatives, question)
	raw, err := e.generator.GenerateStream(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("alternative question generation failed: %w", err)
	}

	alternatives := ParseAlternatives(raw)
	if len(alternatives) < MaxAlternatives {
		logging.Warn("model produced fewer alternative questions than requested",
			"requested", MaxAlternatives,
			"parsed", len(alternatives))
	}

	return alternatives, nil
}

// ParseAlternatives extracts candidate questions from free-form model
// output, one per line, stripping list markers and emphasis
func ParseAlternatives(raw string) []string {
	var alternatives []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = leadingListMarker.ReplaceAllString(line, "")
		line = strings.Trim(line, "*_")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		alternatives = append(alternatives, line)
		if len(alternatives) == MaxAlternatives {
			break
		}
	}
	return alternatives
}

// RetrieveMultiQuery rewrites the question into alternatives, searches
// once per alternative with perQuery hits each, and concatenates all
// hits into a single context block in fan-out order.
func (e *Engine) RetrieveMultiQuery(ctx context.Context, corpus search.Corpus, mode search.Mode, question string, perQuery int) ([]search.Hit, string, error) {
	alternatives, err := e.AlternativeQuestions(ctx, question)
	if err != nil {
		return nil, "", err
	}

	var allHits []search.Hit
	for _, alt := range alternatives {
		result, err := e.searcher.Search(ctx, corpus, mode, alt, perQuery)
		if err != nil {
			return nil, "", err
		}
		allHits = append(allHits, result.Hits...)
	}

	return allHits, search.FormatContext(corpus, allHits), nil
}
