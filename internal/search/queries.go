/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Query Body Builders
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package search

import (
	"encoding/json"
	"fmt"
)

// corpusFields describes the per-corpus pieces of a query body:
// which fields BM25 matches against (with boosts), which knn_vector
// field holds the embeddings, and which source fields to return.
type corpusFields struct {
	matchFields    []string
	embeddingField string
	sourceFields   []string
}

func fieldsFor(corpus Corpus) (corpusFields, error) {
	switch corpus {
	case CorpusFAQ:
		return corpusFields{
			matchFields:    []string{"question^3", "answer^2", "tags"},
			embeddingField: "question_embedding",
			sourceFields:   []string{"question", "answer", "tags"},
		}, nil
	case CorpusScience:
		return corpusFields{
			matchFields:    []string{"text^2", "title^3", "filename"},
			embeddingField: "text_embedding",
			sourceFields:   []string{"page", "line_in_page", "text", "filename", "title"},
		}, nil
	default:
		return corpusFields{}, fmt.Errorf("unknown corpus: %q", corpus)
	}
}

// multiMatchClause builds the BM25 clause shared by keyword and
// hybrid queries
func multiMatchClause(query string, f corpusFields) map[string]interface{} {
	return map[string]interface{}{
		"multi_match": map[string]interface{}{
			"query":     query,
			"fields":    f.matchFields,
			"type":      "best_fields",
			"fuzziness": "AUTO",
		},
	}
}

// neuralClause builds the engine-side embedding clause shared by
// neural and hybrid queries
func neuralClause(query, modelID string, size int, f corpusFields) map[string]interface{} {
	return map[string]interface{}{
		"neural": map[string]interface{}{
			f.embeddingField: map[string]interface{}{
				"query_text": query,
				"model_id":   modelID,
				"k":          size,
			},
		},
	}
}

// BuildKeywordQuery builds a BM25 multi_match query body
func BuildKeywordQuery(corpus Corpus, query string, size int) ([]byte, error) {
	f, err := fieldsFor(corpus)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"query":   multiMatchClause(query, f),
		"size":    size,
		"sort":    []interface{}{map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}}},
		"_source": f.sourceFields,
	}
	return json.Marshal(body)
}

// BuildSemanticQuery builds a KNN query body against the
// client-computed embedding field
func BuildSemanticQuery(corpus Corpus, vector []float64, size int) ([]byte, error) {
	f, err := fieldsFor(corpus)
	if err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("semantic query requires a non-empty embedding vector")
	}

	body := map[string]interface{}{
		"size":    size,
		"_source": f.sourceFields,
		"query": map[string]interface{}{
			"knn": map[string]interface{}{
				f.embeddingField: map[string]interface{}{
					"vector": vector,
					"k":      size,
				},
			},
		},
	}
	return json.Marshal(body)
}

// BuildNeuralQuery builds a neural query body; the engine computes
// the query embedding with the deployed ML model
func BuildNeuralQuery(corpus Corpus, query, modelID string, size int) ([]byte, error) {
	f, err := fieldsFor(corpus)
	if err != nil {
		return nil, err
	}
	if modelID == "" {
		return nil, fmt.Errorf("neural query requires a deployed ML model id")
	}

	body := map[string]interface{}{
		"size":    size,
		"_source": f.sourceFields,
		"query":   neuralClause(query, modelID, size, f),
	}
	return json.Marshal(body)
}

// BuildHybridQuery builds a hybrid query body fusing BM25 and neural
// sub-queries
func BuildHybridQuery(corpus Corpus, query, modelID string, size int) ([]byte, error) {
	f, err := fieldsFor(corpus)
	if err != nil {
		return nil, err
	}
	if modelID == "" {
		return nil, fmt.Errorf("hybrid query requires a deployed ML model id")
	}

	body := map[string]interface{}{
		"size":    size,
		"_source": f.sourceFields,
		"query": map[string]interface{}{
			"hybrid": map[string]interface{}{
				"queries": []interface{}{
					multiMatchClause(query, f),
					neuralClause(query, modelID, size, f),
				},
			},
		},
	}
	return json.Marshal(body)
}
