/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Ollama Embedding Provider Tests
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("request path = %q, want /api/embed", r.URL.Path)
		}

		var req ollamaEmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("model = %q, want nomic-embed-text", req.Model)
		}
		if req.Input != "hello world" {
			t.Errorf("input = %q, want hello world", req.Input)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"embeddings": [[0.1, 0.2, 0.3]]}`)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(server.URL, "nomic-embed-text")
	if err != nil {
		t.Fatalf("NewOllamaProvider failed: %v", err)
	}

	vec, err := provider.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("vector length = %d, want 3", len(vec))
	}
	if vec[1] != 0.2 {
		t.Errorf("vec[1] = %v, want 0.2", vec[1])
	}
}

func TestOllamaEmbedEmptyText(t *testing.T) {
	provider, err := NewOllamaProvider("http://localhost:11434", "nomic-embed-text")
	if err != nil {
		t.Fatalf("NewOllamaProvider failed: %v", err)
	}

	if _, err := provider.Embed(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestOllamaEmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": "model not found"}`)
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(server.URL, "missing-model")
	if _, err := provider.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error from server failure")
	}
}

func TestOllamaEmbedEmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"embeddings": []}`)
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(server.URL, "nomic-embed-text")
	if _, err := provider.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error for empty embedding response")
	}
}

func TestOllamaDimensions(t *testing.T) {
	provider, _ := NewOllamaProvider("http://localhost:11434", "nomic-embed-text")
	if dims := provider.Dimensions(); dims != 768 {
		t.Errorf("Dimensions() = %d, want 768", dims)
	}

	unknown, _ := NewOllamaProvider("http://localhost:11434", "some-future-model")
	if dims := unknown.Dimensions(); dims != 0 {
		t.Errorf("Dimensions() for unknown model = %d, want 0", dims)
	}
}
