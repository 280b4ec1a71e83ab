/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Search Result Formatting
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package search

import (
	"fmt"
	"strings"
)

// FormatContext renders hits into the textual context block handed to
// the LLM. The format is shared by the benchmark and the assistant so
// that measurements stay comparable across both.
func FormatContext(corpus Corpus, hits []Hit) string {
	if len(hits) == 0 {
		switch corpus {
		case CorpusScience:
			return "No results found in the science archive."
		default:
			return "No results found in the FAQ."
		}
	}

	parts := make([]string, 0, len(hits))
	for i, hit := range hits {
		var b strings.Builder
		fmt.Fprintf(&b, "[Document %d - Relevance: %.2f]\n", i+1, hit.Score)
		if corpus == CorpusScience {
			fmt.Fprintf(&b, "Source: %s (Page %d)\n", hit.Filename, hit.Page)
			if hit.Title != "" {
				fmt.Fprintf(&b, "Title: %s\n", hit.Title)
			}
			fmt.Fprintf(&b, "Content: %s\n", hit.Text)
		} else {
			fmt.Fprintf(&b, "Question: %s\n", hit.Question)
			fmt.Fprintf(&b, "Answer: %s\n", hit.Answer)
		}
		parts = append(parts, b.String())
	}

	return strings.Join(parts, "\n")
}

// FormatHitSummary renders one hit as a short display line for the
// interactive assistant, truncating long bodies.
func FormatHitSummary(corpus Corpus, position int, hit Hit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Document %d (score: %.4f) ---\n", position, hit.Score)
	if corpus == CorpusScience {
		fmt.Fprintf(&b, "Source: %s, page %d\n", hit.Filename, hit.Page)
		if hit.Title != "" {
			fmt.Fprintf(&b, "Title: %s\n", hit.Title)
		}
		fmt.Fprintf(&b, "Text: %s\n", truncate(hit.Text, 150))
	} else {
		fmt.Fprintf(&b, "Q: %s\n", hit.Question)
		fmt.Fprintf(&b, "A: %s\n", truncate(hit.Answer, 150))
		if len(hit.Tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n", strings.Join(hit.Tags, ", "))
		}
	}
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
