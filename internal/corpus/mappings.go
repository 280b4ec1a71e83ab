/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Index Mappings
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package corpus

import "fmt"

// The FAQ corpus is French-language text, so its text fields keep the
// french analyzer. The science archive uses the standard analyzer.

const faqPlainMapping = `{
  "mappings": {
    "properties": {
      "id": {"type": "keyword"},
      "section": {"type": "keyword"},
      "question": {"type": "text", "analyzer": "french"},
      "answer": {"type": "text", "analyzer": "french"},
      "confidence": {"type": "keyword"},
      "tags": {"type": "keyword"}
    }
  }
}`

const faqVectorMappingTemplate = `{
  "settings": {
    "index": {
      "knn": true,
      "knn.algo_param.ef_search": 100%s
    }
  },
  "mappings": {
    "properties": {
      "id": {"type": "keyword"},
      "section": {"type": "keyword"},
      "question": {"type": "text", "analyzer": "french"},
      "answer": {"type": "text", "analyzer": "french"},
      "confidence": {"type": "keyword"},
      "tags": {"type": "keyword"},
      "question_embedding": %s,
      "answer_embedding": %s
    }
  }
}`

const sciencePlainMapping = `{
  "mappings": {
    "properties": {
      "text": {"type": "text", "analyzer": "standard"},
      "filename": {"type": "keyword"},
      "page": {"type": "integer"},
      "line_in_page": {"type": "integer"},
      "title": {"type": "text", "analyzer": "standard"}
    }
  }
}`

const scienceVectorMappingTemplate = `{
  "settings": {
    "index": {
      "knn": true,
      "knn.algo_param.ef_search": 100%s
    }
  },
  "mappings": {
    "properties": {
      "text": {"type": "text", "analyzer": "standard"},
      "filename": {"type": "keyword"},
      "page": {"type": "integer"},
      "line_in_page": {"type": "integer"},
      "title": {"type": "text", "analyzer": "standard"},
      "text_embedding": %s
    }
  }
}`

const pipelineBodyTemplate = `{
  "description": "Computes document embeddings at ingest time",
  "processors": [
    {
      "text_embedding": {
        "model_id": %q,
        "field_map": %s
      }
    }
  ]
}`

func knnVectorField(dimension int) string {
	return fmt.Sprintf(`{
        "type": "knn_vector",
        "dimension": %d,
        "method": {
          "name": "hnsw",
          "space_type": "cosinesimil",
          "engine": "lucene"
        }
      }`, dimension)
}

func defaultPipelineSetting(pipeline string) string {
	if pipeline == "" {
		return ""
	}
	return fmt.Sprintf(",\n      \"default_pipeline\": %q", pipeline)
}

func faqVectorMapping(dimension int, pipeline string) string {
	field := knnVectorField(dimension)
	return fmt.Sprintf(faqVectorMappingTemplate, defaultPipelineSetting(pipeline), field, field)
}

func scienceVectorMapping(dimension int, pipeline string) string {
	return fmt.Sprintf(scienceVectorMappingTemplate, defaultPipelineSetting(pipeline), knnVectorField(dimension))
}
