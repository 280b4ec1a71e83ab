/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Ollama LLM Client Tests
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("request path = %q, want /api/tags", r.URL.Path)
		}
		fmt.Fprint(w, `{"models": []}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2")
	if err := client.CheckConnection(context.Background()); err != nil {
		t.Errorf("CheckConnection failed: %v", err)
	}
}

func TestCheckConnectionDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "llama3.2")
	if err := client.CheckConnection(context.Background()); err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models": [{"name": "llama3.2"}, {"name": "mistral:7b"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2")
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("model count = %d, want 2", len(models))
	}
	if models[1].Name != "mistral:7b" {
		t.Errorf("second model = %q, want mistral:7b", models[1].Name)
	}
}

func TestHasModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models": [{"name": "llama3.2"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2")
	found, err := client.HasModel(context.Background(), "llama3.2")
	if err != nil {
		t.Fatalf("HasModel failed: %v", err)
	}
	if !found {
		t.Error("expected llama3.2 to be found")
	}

	found, err = client.HasModel(context.Background(), "mistral:7b")
	if err != nil {
		t.Fatalf("HasModel failed: %v", err)
	}
	if found {
		t.Error("mistral:7b should not be found")
	}
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("request path = %q, want /api/generate", r.URL.Path)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("non-streaming call should set stream=false")
		}
		if req.Model != "llama3.2" {
			t.Errorf("model = %q, want llama3.2", req.Model)
		}

		fmt.Fprint(w, `{"response": "The answer is 42.", "done": true}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2")
	text, err := client.Generate(context.Background(), "What is the answer?")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "The answer is 42." {
		t.Errorf("response = %q", text)
	}
}

func TestGenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if !req.Stream {
			t.Error("streaming call should set stream=true")
		}

		fmt.Fprintln(w, `{"response": "The answer ", "done": false}`)
		fmt.Fprintln(w, `{"response": "is 42.", "done": false}`)
		fmt.Fprintln(w, `{"response": "", "done": true}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2")
	var chunks []string
	text, err := client.GenerateStream(context.Background(), "What is the answer?", func(chunk string) {
		chunks = append(chunks, chunk)
	})
	if err != nil {
		t.Fatalf("GenerateStream failed: %v", err)
	}
	if text != "The answer is 42." {
		t.Errorf("accumulated text = %q", text)
	}
	if len(chunks) != 2 {
		t.Errorf("chunk count = %d, want 2", len(chunks))
	}
}

func TestChatStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("request path = %q, want /api/chat", r.URL.Path)
		}
		fmt.Fprintln(w, `{"message": {"role": "assistant", "content": "Hello"}, "done": false}`)
		fmt.Fprintln(w, `{"message": {"role": "assistant", "content": " there"}, "done": true}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2")
	text, err := client.ChatStream(context.Background(), []Message{
		{Role: "user", Content: "Hi"},
	}, func(string) {})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}
	if text != "Hello there" {
		t.Errorf("accumulated text = %q", text)
	}
}

func TestGenerateNoModel(t *testing.T) {
	client := NewClient("http://localhost:11434", "")
	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Error("expected error when no model is selected")
	}
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": "model failed to load"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2")
	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Error("expected error from server failure")
	}
}
