/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - OpenSearch Client
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"pgedge-rag-bench/internal/embedding"
	"pgedge-rag-bench/internal/logging"
)

// Client performs retrieval against the OpenSearch indexes.
// The embedder is only consulted for semantic mode, where the query
// vector is computed client-side.
type Client struct {
	os       *opensearch.Client
	cfg      Config
	embedder embedding.Provider
}

// NewEngineClient creates a raw OpenSearch API client for the given URL
func NewEngineClient(url string) (*opensearch.Client, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{url},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenSearch client: %w", err)
	}
	return client, nil
}

// NewClient creates a search client. embedder may be nil when
// semantic mode is not used.
func NewClient(url string, cfg Config, embedder embedding.Provider) (*Client, error) {
	osClient, err := NewEngineClient(url)
	if err != nil {
		return nil, err
	}

	return &Client{
		os:       osClient,
		cfg:      cfg,
		embedder: embedder,
	}, nil
}

// NewClientWithTransport creates a search client on an existing API
// client. Used by tests to point at a fake engine.
func NewClientWithTransport(osClient *opensearch.Client, cfg Config, embedder embedding.Provider) *Client {
	return &Client{
		os:       osClient,
		cfg:      cfg,
		embedder: embedder,
	}
}

// Info checks connectivity and returns the engine version string.
// Used as the pre-flight check before a sweep starts.
func (c *Client) Info(ctx context.Context) (string, error) {
	res, err := opensearchapi.InfoRequest{}.Do(ctx, c.os)
	if err != nil {
		return "", fmt.Errorf("failed to reach OpenSearch: %w", err)
	}
	defer closeBody(res.Body)

	if res.IsError() {
		return "", fmt.Errorf("OpenSearch info request failed: %s", res.Status())
	}

	var info struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode info response: %w", err)
	}

	return info.Version.Number, nil
}

// Search runs one retrieval in the given mode and returns parsed hits
func (c *Client) Search(ctx context.Context, corpus Corpus, mode Mode, query string, size int) (*Result, error) {
	index, err := c.cfg.IndexFor(corpus, mode)
	if err != nil {
		return nil, err
	}

	var body []byte
	switch mode {
	case ModeKeyword:
		body, err = BuildKeywordQuery(corpus, query, size)
	case ModeSemantic:
		if c.embedder == nil {
			return nil, fmt.Errorf("semantic search requires an embedding provider")
		}
		var vector []float64
		vector, err = c.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to embed query: %w", err)
		}
		body, err = BuildSemanticQuery(corpus, vector, size)
	case ModeNeural:
		body, err = BuildNeuralQuery(corpus, query, c.cfg.ModelID, size)
	case ModeHybrid:
		body, err = BuildHybridQuery(corpus, query, c.cfg.ModelID, size)
	default:
		return nil, fmt.Errorf("unknown search mode: %q", mode)
	}
	if err != nil {
		return nil, err
	}

	logging.Debug("executing search",
		"index", index,
		"corpus", string(corpus),
		"mode", string(mode),
		"size", size)

	res, err := opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, c.os)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer closeBody(res.Body)

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search returned %s: %s", res.Status(), string(msg))
	}

	return parseResult(res.Body)
}

// rawSource covers the union of FAQ and science archive documents;
// absent fields decode to zero values
type rawSource struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
	Filename string   `json:"filename"`
	Page     int      `json:"page"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
}

func parseResult(body io.Reader) (*Result, error) {
	var raw struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Score  float64   `json:"_score"`
				Source rawSource `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	result := &Result{
		Total: raw.Hits.Total.Value,
		Hits:  make([]Hit, 0, len(raw.Hits.Hits)),
	}
	for _, h := range raw.Hits.Hits {
		result.Hits = append(result.Hits, Hit{
			Score:    h.Score,
			Question: h.Source.Question,
			Answer:   h.Source.Answer,
			Tags:     h.Source.Tags,
			Filename: h.Source.Filename,
			Page:     h.Source.Page,
			Title:    h.Source.Title,
			Text:     h.Source.Text,
		})
	}

	return result, nil
}

func closeBody(body io.ReadCloser) {
	if body != nil {
		if err := body.Close(); err != nil {
			logging.Warn("failed to close response body", "error", err.Error())
		}
	}
}
