/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Context Formatting Tests
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package search

import (
	"strings"
	"testing"
)

func TestFormatContextFAQ(t *testing.T) {
	hits := []Hit{
		{Score: 7.314, Question: "How do I restore?", Answer: "Use pg_restore."},
		{Score: 4.1, Question: "What is WAL?", Answer: "The write-ahead log."},
	}

	got := FormatContext(CorpusFAQ, hits)

	if !strings.Contains(got, "[Document 1 - Relevance: 7.31]") {
		t.Errorf("missing first document header:\n%s", got)
	}
	if !strings.Contains(got, "[Document 2 - Relevance: 4.10]") {
		t.Errorf("missing second document header:\n%s", got)
	}
	if !strings.Contains(got, "Question: How do I restore?\nAnswer: Use pg_restore.") {
		t.Errorf("missing FAQ fields:\n%s", got)
	}

	blocks := strings.Split(got, "\n\n")
	if len(blocks) != 2 {
		t.Errorf("expected 2 blank-line separated blocks, got %d", len(blocks))
	}
}

func TestFormatContextScience(t *testing.T) {
	hits := []Hit{
		{Score: 12.5, Filename: "magazine_554.txt", Page: 42, Title: "Dark Matter", Text: "Observations suggest..."},
		{Score: 3.0, Filename: "magazine_601.txt", Page: 7, Text: "No title on this one."},
	}

	got := FormatContext(CorpusScience, hits)

	if !strings.Contains(got, "Source: magazine_554.txt (Page 42)") {
		t.Errorf("missing source line:\n%s", got)
	}
	if !strings.Contains(got, "Title: Dark Matter") {
		t.Errorf("missing title line:\n%s", got)
	}
	if strings.Count(got, "Title:") != 1 {
		t.Errorf("title line should be omitted when empty:\n%s", got)
	}
	if !strings.Contains(got, "Content: No title on this one.") {
		t.Errorf("missing content line:\n%s", got)
	}
}

func TestFormatContextEmpty(t *testing.T) {
	if got := FormatContext(CorpusFAQ, nil); got != "No results found in the FAQ." {
		t.Errorf("FAQ placeholder = %q", got)
	}
	if got := FormatContext(CorpusScience, []Hit{}); got != "No results found in the science archive." {
		t.Errorf("science placeholder = %q", got)
	}
}

func TestFormatHitSummaryTruncates(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := FormatHitSummary(CorpusFAQ, 1, Hit{Score: 1.0, Question: "Q", Answer: long, Tags: []string{"x", "y"}})

	if !strings.Contains(got, strings.Repeat("a", 150)+"...") {
		t.Errorf("answer should be truncated at 150 runes:\n%s", got)
	}
	if strings.Contains(got, strings.Repeat("a", 151)) {
		t.Errorf("answer not truncated:\n%s", got)
	}
	if !strings.Contains(got, "Tags: x, y") {
		t.Errorf("missing tags line:\n%s", got)
	}
}
