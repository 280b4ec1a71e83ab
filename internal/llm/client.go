/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Ollama LLM Client
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pgedge-rag-bench/internal/logging"
)

const (
	// GenerateTimeout bounds one generation request. Local models can
	// be slow on first load, so this is generous.
	GenerateTimeout = 300 * time.Second

	// ProbeTimeout bounds connectivity and model-listing requests
	ProbeTimeout = 5 * time.Second
)

// Client talks to an Ollama server over its native API
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

// Message is one turn of a chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelInfo describes one model installed on the Ollama server
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// NewClient creates a client for the Ollama server at baseURL
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http: &http.Client{
			Timeout: GenerateTimeout,
		},
	}
}

// Model returns the currently selected model name
func (c *Client) Model() string {
	return c.model
}

// SetModel switches the model used for subsequent requests
func (c *Client) SetModel(model string) {
	c.model = model
}

// BaseURL returns the server URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckConnection verifies the Ollama server is reachable
func (c *Client) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Ollama at %s: %w (is Ollama running?)", c.baseURL, err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// ListModels returns the models installed on the server
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ollama at %s: %w", c.baseURL, err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var tags struct {
		Models []ModelInfo `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}
	return tags.Models, nil
}

// HasModel reports whether the named model is installed
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if m.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate produces a completion for the prompt, blocking until done
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.GenerateStream(ctx, prompt, nil)
}

// GenerateStream produces a completion for the prompt, invoking onChunk
// for each streamed fragment when non-nil, and returns the full text.
func (c *Client) GenerateStream(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	if c.model == "" {
		return "", fmt.Errorf("no model selected")
	}

	startTime := time.Now()
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: onChunk != nil,
	}

	resp, err := c.post(ctx, "/api/generate", reqBody)
	if err != nil {
		return "", err
	}
	defer closeBody(resp.Body)

	var text string
	if onChunk != nil {
		text, err = drainStream(resp.Body, func(line []byte) (string, bool, error) {
			var chunk generateChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				return "", false, err
			}
			return chunk.Response, chunk.Done, nil
		}, onChunk)
	} else {
		var chunk generateChunk
		err = json.NewDecoder(resp.Body).Decode(&chunk)
		text = chunk.Response
	}
	if err != nil {
		return "", fmt.Errorf("failed to read generation response: %w", err)
	}

	logging.Debug("generation completed",
		"model", c.model,
		"prompt_length", len(prompt),
		"response_length", len(text),
		"duration", time.Since(startTime).String())

	return text, nil
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatChunk struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// Chat sends a conversation to the model, blocking until done
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.ChatStream(ctx, messages, nil)
}

// ChatStream sends a conversation to the model, invoking onChunk for
// each streamed fragment when non-nil, and returns the full reply.
func (c *Client) ChatStream(ctx context.Context, messages []Message, onChunk func(string)) (string, error) {
	if c.model == "" {
		return "", fmt.Errorf("no model selected")
	}

	reqBody := chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   onChunk != nil,
	}

	resp, err := c.post(ctx, "/api/chat", reqBody)
	if err != nil {
		return "", err
	}
	defer closeBody(resp.Body)

	var text string
	if onChunk != nil {
		text, err = drainStream(resp.Body, func(line []byte) (string, bool, error) {
			var chunk chatChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				return "", false, err
			}
			return chunk.Message.Content, chunk.Done, nil
		}, onChunk)
	} else {
		var chunk chatChunk
		err = json.NewDecoder(resp.Body).Decode(&chunk)
		text = chunk.Message.Content
	}
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	return text, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Ollama: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer closeBody(resp.Body)
		msg, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("Ollama API returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("Ollama API returned status %d: %s", resp.StatusCode, string(msg))
	}

	return resp, nil
}

// drainStream reads newline-delimited JSON chunks until done or EOF,
// feeding each fragment to onChunk and accumulating the full text
func drainStream(body io.Reader, parse func([]byte) (string, bool, error), onChunk func(string)) (string, error) {
	var full strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		fragment, done, err := parse(line)
		if err != nil {
			return full.String(), fmt.Errorf("failed to decode stream chunk: %w", err)
		}
		if fragment != "" {
			full.WriteString(fragment)
			onChunk(fragment)
		}
		if done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), err
	}

	return full.String(), nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logging.Warn("failed to close response body", "error", err.Error())
	}
}
