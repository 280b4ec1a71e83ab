/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Multi-Query Retrieval Tests
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package rag

import (
	"context"
	"reflect"
	"testing"

	"pgedge-rag-bench/internal/search"
)

func TestParseAlternatives(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "clean lines",
			raw:  "How do I restore a backup?\nWhat restores a dump?\nHow to recover data?",
			want: []string{"How do I restore a backup?", "What restores a dump?", "How to recover data?"},
		},
		{
			name: "numbered list",
			raw:  "1. First question?\n2) Second question?\n3. Third question?",
			want: []string{"First question?", "Second question?", "Third question?"},
		},
		{
			name: "bullets and emphasis",
			raw:  "- **First question?**\n* _Second question?_\n• Third question?",
			want: []string{"First question?", "Second question?", "Third question?"},
		},
		{
			name: "blank lines skipped",
			raw:  "\nFirst?\n\nSecond?\n\n",
			want: []string{"First?", "Second?"},
		},
		{
			name: "capped at three",
			raw:  "One?\nTwo?\nThree?\nFour?\nFive?",
			want: []string{"One?", "Two?", "Three?"},
		},
		{
			name: "only two produced",
			raw:  "First?\nSecond?",
			want: []string{"First?", "Second?"},
		},
		{
			name: "empty output",
			raw:  "\n\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAlternatives(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAlternatives(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRetrieveMultiQueryFansOut(t *testing.T) {
	searcher := &fakeSearcher{hits: []search.Hit{
		{Score: 1.5, Question: "Q", Answer: "A"},
	}}
	gen := &fakeGenerator{response: "Alt one?\nAlt two?\nAlt three?"}
	engine := NewEngine(searcher, gen)

	hits, docContext, err := engine.RetrieveMultiQuery(context.Background(), search.CorpusFAQ, search.ModeKeyword, "original?", 2)
	if err != nil {
		t.Fatalf("RetrieveMultiQuery failed: %v", err)
	}

	if len(searcher.queries) != 3 {
		t.Fatalf("search count = %d, want 3", len(searcher.queries))
	}
	if searcher.queries[0] != "Alt one?" {
		t.Errorf("first fan-out query = %q", searcher.queries[0])
	}
	for _, size := range searcher.sizes {
		if size != 2 {
			t.Errorf("fan-out size = %d, want 2", size)
		}
	}
	if len(hits) != 3 {
		t.Errorf("hit count = %d, want 3", len(hits))
	}
	if docContext == "" {
		t.Error("expected non-empty context")
	}
}

func TestRetrieveMultiQueryTwoAlternatives(t *testing.T) {
	searcher := &fakeSearcher{hits: []search.Hit{
		{Score: 1.0, Question: "Q", Answer: "A"},
		{Score: 0.5, Question: "Q2", Answer: "A2"},
	}}
	gen := &fakeGenerator{response: "Only one?\nAnd two?"}
	engine := NewEngine(searcher, gen)

	hits, _, err := engine.RetrieveMultiQuery(context.Background(), search.CorpusFAQ, search.ModeKeyword, "original?", 2)
	if err != nil {
		t.Fatalf("RetrieveMultiQuery should tolerate fewer alternatives: %v", err)
	}
	if len(searcher.queries) != 2 {
		t.Errorf("search count = %d, want 2", len(searcher.queries))
	}
	if len(hits) > 4 {
		t.Errorf("hit count = %d, want at most 4", len(hits))
	}
}

func TestRetrieveMultiQueryNoAlternatives(t *testing.T) {
	searcher := &fakeSearcher{}
	gen := &fakeGenerator{response: ""}
	engine := NewEngine(searcher, gen)

	hits, docContext, err := engine.RetrieveMultiQuery(context.Background(), search.CorpusFAQ, search.ModeKeyword, "original?", 2)
	if err != nil {
		t.Fatalf("RetrieveMultiQuery failed: %v", err)
	}
	if len(searcher.queries) != 0 {
		t.Errorf("no searches expected, got %d", len(searcher.queries))
	}
	if len(hits) != 0 {
		t.Errorf("hit count = %d, want 0", len(hits))
	}
	if docContext != "No results found in the FAQ." {
		t.Errorf("context = %q, want placeholder", docContext)
	}
}
