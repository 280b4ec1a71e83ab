/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Search Types
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package search

import "fmt"

// Corpus identifies one of the two indexed document collections
type Corpus string

const (
	CorpusFAQ     Corpus = "faq"
	CorpusScience Corpus = "science"
)

// Mode identifies a retrieval strategy
type Mode string

const (
	ModeKeyword  Mode = "keyword"  // BM25 multi_match
	ModeSemantic Mode = "semantic" // KNN with client-computed embeddings
	ModeNeural   Mode = "neural"   // embeddings computed by the engine
	ModeHybrid   Mode = "hybrid"   // BM25 + neural combined
)

// Corpora lists all corpora in sweep enumeration order
func Corpora() []Corpus {
	return []Corpus{CorpusFAQ, CorpusScience}
}

// Modes lists all search modes in sweep enumeration order
func Modes() []Mode {
	return []Mode{ModeKeyword, ModeSemantic, ModeNeural, ModeHybrid}
}

// ParseCorpus validates a corpus selector. Unknown values are a
// configuration error, never silently defaulted.
func ParseCorpus(s string) (Corpus, error) {
	switch Corpus(s) {
	case CorpusFAQ, CorpusScience:
		return Corpus(s), nil
	default:
		return "", fmt.Errorf("unknown corpus: %q (supported: faq, science)", s)
	}
}

// ParseMode validates a search mode selector
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeKeyword, ModeSemantic, ModeNeural, ModeHybrid:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown search mode: %q (supported: keyword, semantic, neural, hybrid)", s)
	}
}

// Hit is one ranked document returned by a search call.
// FAQ hits populate Question/Answer/Tags; science archive hits
// populate Filename/Page/Title/Text.
type Hit struct {
	Score float64

	// FAQ corpus fields
	Question string
	Answer   string
	Tags     []string

	// Science archive fields
	Filename string
	Page     int
	Title    string
	Text     string
}

// Result is the parsed response of one search call
type Result struct {
	Total int
	Hits  []Hit
}

// IndexSet names the three index variants maintained per corpus
type IndexSet struct {
	Plain    string // BM25 only
	Semantic string // knn_vector fields, embeddings computed client-side
	Pipeline string // ingest pipeline computes embeddings in the engine
}

// Config holds the index layout and the deployed ML model used for
// neural and hybrid queries
type Config struct {
	FAQ     IndexSet
	Science IndexSet
	ModelID string
}

// IndexFor resolves the index a given mode searches for a corpus.
// Keyword queries run against the plain index, semantic against the
// KNN index, neural and hybrid against the pipeline index.
func (c *Config) IndexFor(corpus Corpus, mode Mode) (string, error) {
	var set IndexSet
	switch corpus {
	case CorpusFAQ:
		set = c.FAQ
	case CorpusScience:
		set = c.Science
	default:
		return "", fmt.Errorf("unknown corpus: %q", corpus)
	}

	switch mode {
	case ModeKeyword:
		return set.Plain, nil
	case ModeSemantic:
		return set.Semantic, nil
	case ModeNeural, ModeHybrid:
		return set.Pipeline, nil
	default:
		return "", fmt.Errorf("unknown search mode: %q", mode)
	}
}
