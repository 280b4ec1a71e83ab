/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Retrieval-Augmented Generation Engine
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

	"pgedge-rag-bench/internal/logging"
	"pgedge-rag-bench/internal/search"
)

// Searcher is the retrieval dependency of the engine
type Searcher interface {
	Search(ctx context.Context, corpus search.Corpus, mode search.Mode, query string, size int) (*search.Result, error)
}

// Generator is the text-generation dependency of the engine
type Generator interface {
	GenerateStream(ctx context.Context, prompt string, onChunk func(string)) (string, error)
}

// Engine ties retrieval and generation together into the RAG flows
// shared by the benchmark and the interactive assistant
type Engine struct {
	searcher  Searcher
	generator Generator
}

// NewEngine creates a RAG engine on the given collaborators
func NewEngine(searcher Searcher, generator Generator) *Engine {
	return &Engine{
		searcher:  searcher,
		generator: generator,
	}
}

const answerPromptTemplate = `You are an assistant that answers questions based ONLY on the provided context.

DOCUMENT CONTEXT:
%s

QUESTION: %s

INSTRUCTIONS:
- Answer the question using only the provided context
- If the context does not contain relevant information, say so clearly
- Be precise, concise and factual
- Cite sources when relevant (document number, page, etc.)

ANSWER:`

// AnswerPrompt renders the grounded-answer prompt for a question and
// its retrieved context
func AnswerPrompt(question, context string) string {
	return fmt.Sprintf(answerPromptTemplate, context, question)
}

// Retrieve performs one search and formats the hits into a context
// block. Returns the hits alongside the rendered context.
func (e *Engine) Retrieve(ctx context.Context, corpus search.Corpus, mode search.Mode, question string, size int) ([]search.Hit, string, error) {
	result, err := e.searcher.Search(ctx, corpus, mode, question, size)
	if err != nil {
		return nil, "", err
	}
	return result.Hits, search.FormatContext(corpus, result.Hits), nil
}

// Answer generates a grounded answer from a question and its context.
// onChunk receives streamed fragments when non-nil.
func (e *Engine) Answer(ctx context.Context, question, docContext string, onChunk func(string)) (string, error) {
	prompt := AnswerPrompt(question, docContext)
	answer, err := e.generator.GenerateStream(ctx, prompt, onChunk)
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}

	logging.Debug("answer generated",
		"question_length", len(question),
		"context_length", len(docContext),
		"answer_length", len(answer))

	return answer, nil
}
