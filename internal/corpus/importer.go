/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Corpus Importer
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"pgedge-rag-bench/internal/embedding"
	"pgedge-rag-bench/internal/logging"
	"pgedge-rag-bench/internal/search"
)

const (
	// DefaultFAQPipeline and DefaultSciencePipeline name the ingest
	// pipelines backing the pipeline index variants
	DefaultFAQPipeline     = "faq_embedding_pipeline"
	DefaultSciencePipeline = "science_embedding_pipeline"

	// DefaultMLDimension is used when the deployed ML model does not
	// report its embedding dimension
	DefaultMLDimension = 768

	// embedChunkSize bounds bulk requests that carry client-computed
	// embeddings; plain documents ship in larger chunks
	embedChunkSize = 50
	bulkChunkSize  = 500
)

// Importer creates the index variants of both corpora and bulk-loads
// their documents. The embedder is optional: without one the semantic
// index is skipped. The pipeline index is skipped when no ML model id
// is configured.
type Importer struct {
	os       *opensearch.Client
	embedder embedding.Provider
	cfg      search.Config

	// FAQPipeline and SciencePipeline override the ingest pipeline
	// names, mainly for tests
	FAQPipeline     string
	SciencePipeline string
}

func NewImporter(osClient *opensearch.Client, cfg search.Config, embedder embedding.Provider) *Importer {
	return &Importer{
		os:              osClient,
		embedder:        embedder,
		cfg:             cfg,
		FAQPipeline:     DefaultFAQPipeline,
		SciencePipeline: DefaultSciencePipeline,
	}
}

type faqDoc struct {
	ID                string    `json:"id"`
	Section           string    `json:"section"`
	Question          string    `json:"question"`
	Answer            string    `json:"answer"`
	Confidence        string    `json:"confidence"`
	Tags              []string  `json:"tags"`
	QuestionEmbedding []float64 `json:"question_embedding,omitempty"`
	AnswerEmbedding   []float64 `json:"answer_embedding,omitempty"`
}

type scienceDoc struct {
	Text          string    `json:"text"`
	Filename      string    `json:"filename"`
	Page          int       `json:"page"`
	LineInPage    int       `json:"line_in_page"`
	Title         string    `json:"title,omitempty"`
	TextEmbedding []float64 `json:"text_embedding,omitempty"`
}

type bulkDoc struct {
	id     string
	source any
}

// ImportFAQ loads the FAQ corpus file and populates every configured
// index variant
func (imp *Importer) ImportFAQ(ctx context.Context, path string) error {
	entries, err := LoadFAQEntries(path)
	if err != nil {
		return err
	}
	logging.Info("FAQ corpus loaded", "path", path, "entries", len(entries))

	plainDocs := make([]bulkDoc, 0, len(entries))
	for _, entry := range entries {
		plainDocs = append(plainDocs, bulkDoc{id: entry.ID, source: faqDoc{
			ID:         entry.ID,
			Section:    entry.Section,
			Question:   entry.Question,
			Answer:     entry.Answer,
			Confidence: entry.Confidence,
			Tags:       entry.Tags,
		}})
	}

	if err := imp.populateIndex(ctx, imp.cfg.FAQ.Plain, faqPlainMapping, plainDocs, bulkChunkSize); err != nil {
		return err
	}

	if imp.embedder != nil {
		docs := make([]bulkDoc, 0, len(entries))
		for i, entry := range entries {
			questionVec, err := imp.embedder.Embed(ctx, entry.Question)
			if err != nil {
				return fmt.Errorf("failed to embed FAQ question %s: %w", entry.ID, err)
			}
			answerVec, err := imp.embedder.Embed(ctx, entry.Answer)
			if err != nil {
				return fmt.Errorf("failed to embed FAQ answer %s: %w", entry.ID, err)
			}
			docs = append(docs, bulkDoc{id: entry.ID, source: faqDoc{
				ID:                entry.ID,
				Section:           entry.Section,
				Question:          entry.Question,
				Answer:            entry.Answer,
				Confidence:        entry.Confidence,
				Tags:              entry.Tags,
				QuestionEmbedding: questionVec,
				AnswerEmbedding:   answerVec,
			}})
			if (i+1)%10 == 0 {
				logging.Debug("embedding FAQ entries", "done", i+1, "total", len(entries))
			}
		}
		mapping := faqVectorMapping(imp.embedder.Dimensions(), "")
		if err := imp.populateIndex(ctx, imp.cfg.FAQ.Semantic, mapping, docs, embedChunkSize); err != nil {
			return err
		}
	} else {
		logging.Info("no embedder configured, skipping semantic index", "index", imp.cfg.FAQ.Semantic)
	}

	if imp.cfg.ModelID != "" {
		dimension := imp.mlModelDimension(ctx, imp.cfg.ModelID)
		fieldMap := map[string]string{
			"question": "question_embedding",
			"answer":   "answer_embedding",
		}
		if err := imp.createIngestPipeline(ctx, imp.FAQPipeline, imp.cfg.ModelID, fieldMap); err != nil {
			return err
		}
		mapping := faqVectorMapping(dimension, imp.FAQPipeline)
		if err := imp.populateIndex(ctx, imp.cfg.FAQ.Pipeline, mapping, plainDocs, bulkChunkSize); err != nil {
			return err
		}
	} else {
		logging.Info("no ML model id configured, skipping pipeline index", "index", imp.cfg.FAQ.Pipeline)
	}

	return nil
}

// ImportScience parses the cleaned archive files in dir and populates
// every configured index variant
func (imp *Importer) ImportScience(ctx context.Context, dir string) error {
	passages, err := LoadScienceDir(dir)
	if err != nil {
		return err
	}
	logging.Info("science archive loaded", "dir", dir, "passages", len(passages))

	plainDocs := make([]bulkDoc, 0, len(passages))
	for _, p := range passages {
		plainDocs = append(plainDocs, bulkDoc{source: scienceDoc{
			Text:       p.Text,
			Filename:   p.Filename,
			Page:       p.Page,
			LineInPage: p.LineInPage,
			Title:      p.Title,
		}})
	}

	if err := imp.populateIndex(ctx, imp.cfg.Science.Plain, sciencePlainMapping, plainDocs, bulkChunkSize); err != nil {
		return err
	}

	if imp.embedder != nil {
		docs := make([]bulkDoc, 0, len(passages))
		for i, p := range passages {
			vec, err := imp.embedder.Embed(ctx, p.Text)
			if err != nil {
				return fmt.Errorf("failed to embed passage %s p.%d: %w", p.Filename, p.Page, err)
			}
			docs = append(docs, bulkDoc{source: scienceDoc{
				Text:          p.Text,
				Filename:      p.Filename,
				Page:          p.Page,
				LineInPage:    p.LineInPage,
				Title:         p.Title,
				TextEmbedding: vec,
			}})
			if (i+1)%100 == 0 {
				logging.Debug("embedding passages", "done", i+1, "total", len(passages))
			}
		}
		mapping := scienceVectorMapping(imp.embedder.Dimensions(), "")
		if err := imp.populateIndex(ctx, imp.cfg.Science.Semantic, mapping, docs, embedChunkSize); err != nil {
			return err
		}
	} else {
		logging.Info("no embedder configured, skipping semantic index", "index", imp.cfg.Science.Semantic)
	}

	if imp.cfg.ModelID != "" {
		dimension := imp.mlModelDimension(ctx, imp.cfg.ModelID)
		fieldMap := map[string]string{"text": "text_embedding"}
		if err := imp.createIngestPipeline(ctx, imp.SciencePipeline, imp.cfg.ModelID, fieldMap); err != nil {
			return err
		}
		mapping := scienceVectorMapping(dimension, imp.SciencePipeline)
		if err := imp.populateIndex(ctx, imp.cfg.Science.Pipeline, mapping, plainDocs, bulkChunkSize); err != nil {
			return err
		}
	} else {
		logging.Info("no ML model id configured, skipping pipeline index", "index", imp.cfg.Science.Pipeline)
	}

	return nil
}

// populateIndex recreates the index with the given mapping, bulk
// imports the documents and refreshes
func (imp *Importer) populateIndex(ctx context.Context, index, mapping string, docs []bulkDoc, chunkSize int) error {
	if err := imp.recreateIndex(ctx, index, mapping); err != nil {
		return err
	}
	if err := imp.bulkImport(ctx, index, docs, chunkSize); err != nil {
		return err
	}

	count, err := imp.refreshAndCount(ctx, index)
	if err != nil {
		return err
	}
	logging.Info("index populated", "index", index, "documents", count)
	return nil
}

// recreateIndex deletes any existing index of that name and creates
// it fresh with the given mapping
func (imp *Importer) recreateIndex(ctx context.Context, index, mapping string) error {
	exists, err := opensearchapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, imp.os)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", index, err)
	}
	closeBody(exists)
	if exists.StatusCode == http.StatusOK {
		logging.Info("deleting existing index", "index", index)
		del, err := opensearchapi.IndicesDeleteRequest{Index: []string{index}}.Do(ctx, imp.os)
		if err != nil {
			return fmt.Errorf("failed to delete index %s: %w", index, err)
		}
		defer closeBody(del)
		if del.IsError() {
			return apiError("delete index "+index, del)
		}
	}

	create, err := opensearchapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(mapping),
	}.Do(ctx, imp.os)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", index, err)
	}
	defer closeBody(create)
	if create.IsError() {
		return apiError("create index "+index, create)
	}

	logging.Debug("index created", "index", index)
	return nil
}

func (imp *Importer) createIngestPipeline(ctx context.Context, name, modelID string, fieldMap map[string]string) error {
	fields, err := json.Marshal(fieldMap)
	if err != nil {
		return fmt.Errorf("failed to encode field map: %w", err)
	}
	body := fmt.Sprintf(pipelineBodyTemplate, modelID, fields)

	res, err := opensearchapi.IngestPutPipelineRequest{
		PipelineID: name,
		Body:       strings.NewReader(body),
	}.Do(ctx, imp.os)
	if err != nil {
		return fmt.Errorf("failed to create pipeline %s: %w", name, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return apiError("create pipeline "+name, res)
	}

	logging.Info("ingest pipeline created", "pipeline", name, "model_id", modelID)
	return nil
}

// mlModelDimension asks the ML plugin for the embedding dimension of
// the deployed model, falling back to DefaultMLDimension
func (imp *Importer) mlModelDimension(ctx context.Context, modelID string) int {
	req := &http.Request{
		Method: http.MethodGet,
		URL:    &url.URL{Path: "/_plugins/_ml/models/" + modelID},
		Header: make(http.Header),
	}
	res, err := imp.os.Perform(req.WithContext(ctx))
	if err != nil {
		logging.Warn("failed to query ML model, using default dimension",
			"model_id", modelID,
			"dimension", strconv.Itoa(DefaultMLDimension),
			"error", err.Error())
		return DefaultMLDimension
	}
	defer res.Body.Close()

	var model struct {
		ModelConfig struct {
			EmbeddingDimension int `json:"embedding_dimension"`
		} `json:"model_config"`
	}
	if res.StatusCode != http.StatusOK || json.NewDecoder(res.Body).Decode(&model) != nil ||
		model.ModelConfig.EmbeddingDimension == 0 {
		logging.Warn("ML model did not report a dimension, using default",
			"model_id", modelID,
			"dimension", strconv.Itoa(DefaultMLDimension))
		return DefaultMLDimension
	}

	logging.Debug("ML model dimension discovered",
		"model_id", modelID,
		"dimension", strconv.Itoa(model.ModelConfig.EmbeddingDimension))
	return model.ModelConfig.EmbeddingDimension
}

// bulkImport ships the documents in NDJSON chunks
func (imp *Importer) bulkImport(ctx context.Context, index string, docs []bulkDoc, chunkSize int) error {
	for start := 0; start < len(docs); start += chunkSize {
		end := start + chunkSize
		if end > len(docs) {
			end = len(docs)
		}

		var buf bytes.Buffer
		for _, doc := range docs[start:end] {
			meta := map[string]map[string]string{"index": {}}
			if doc.id != "" {
				meta["index"]["_id"] = doc.id
			}
			if err := json.NewEncoder(&buf).Encode(meta); err != nil {
				return fmt.Errorf("failed to encode bulk action: %w", err)
			}
			if err := json.NewEncoder(&buf).Encode(doc.source); err != nil {
				return fmt.Errorf("failed to encode bulk document: %w", err)
			}
		}

		res, err := opensearchapi.BulkRequest{Index: index, Body: &buf}.Do(ctx, imp.os)
		if err != nil {
			return fmt.Errorf("bulk import into %s failed: %w", index, err)
		}
		if res.IsError() {
			err := apiError("bulk import into "+index, res)
			closeBody(res)
			return err
		}

		var report struct {
			Errors bool `json:"errors"`
		}
		decodeErr := json.NewDecoder(res.Body).Decode(&report)
		closeBody(res)
		if decodeErr == nil && report.Errors {
			return fmt.Errorf("bulk import into %s reported item failures", index)
		}

		logging.Debug("bulk chunk imported", "index", index, "done", end, "total", len(docs))
	}
	return nil
}

func (imp *Importer) refreshAndCount(ctx context.Context, index string) (int, error) {
	refresh, err := opensearchapi.IndicesRefreshRequest{Index: []string{index}}.Do(ctx, imp.os)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh index %s: %w", index, err)
	}
	closeBody(refresh)

	res, err := opensearchapi.CountRequest{Index: []string{index}}.Do(ctx, imp.os)
	if err != nil {
		return 0, fmt.Errorf("failed to count index %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return 0, apiError("count index "+index, res)
	}

	var count struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&count); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}
	return count.Count, nil
}

func apiError(op string, res *opensearchapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("%s failed: %s: %s", op, res.Status(), strings.TrimSpace(string(body)))
}

func closeBody(res *opensearchapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	if err := res.Body.Close(); err != nil {
		logging.Warn("failed to close response body", "error", err.Error())
	}
}
