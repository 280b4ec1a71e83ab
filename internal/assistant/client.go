/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Assistant Client
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package assistant

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"pgedge-rag-bench/internal/llm"
	"pgedge-rag-bench/internal/rag"
	"pgedge-rag-bench/internal/search"
)

const (
	// defaultHits is the number of documents retrieved per question
	defaultHits = 5
	// multiQueryHits is the number of documents per alternative
	// question when multi-query retrieval is on
	multiQueryHits = 2
)

// Client is the interactive RAG assistant
type Client struct {
	searcher *search.Client
	llm      *llm.Client
	engine   *rag.Engine
	ui       *UI

	corpus     search.Corpus
	mode       search.Mode
	multiquery bool

	// HistoryFile backs readline history ("" disables persistence)
	HistoryFile string
}

// NewClient creates an assistant over the given search and LLM
// clients
func NewClient(searcher *search.Client, llmClient *llm.Client, ui *UI, corpus search.Corpus, mode search.Mode) *Client {
	return &Client{
		searcher: searcher,
		llm:      llmClient,
		engine:   rag.NewEngine(searcher, llmClient),
		ui:       ui,
		corpus:   corpus,
		mode:     mode,
	}
}

// SetMultiquery toggles multi-query retrieval
func (c *Client) SetMultiquery(enabled bool) {
	c.multiquery = enabled
}

// SetGenerationModel switches the generation model; the new model
// takes effect on the next question. Empty or unchanged names are
// ignored.
func (c *Client) SetGenerationModel(model string) {
	if model == "" || model == c.llm.Model() {
		return
	}
	c.llm.SetModel(model)
	c.ui.PrintSystemMessage("generation model switched to " + model)
}

// Run starts the interactive loop and blocks until the user exits or
// the context is canceled
func (c *Client) Run(ctx context.Context) error {
	if err := c.llm.CheckConnection(ctx); err != nil {
		return fmt.Errorf("generation service unavailable: %w", err)
	}
	if version, err := c.searcher.Info(ctx); err != nil {
		return fmt.Errorf("search engine unavailable: %w", err)
	} else {
		c.ui.PrintSystemMessage("connected to OpenSearch " + version)
	}

	c.ui.PrintWelcome(string(c.corpus), string(c.mode))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            c.ui.GetPrompt(),
		HistoryFile:       c.HistoryFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	// Closing readline makes Readline() return an error, which ends
	// the loop when the context is canceled
	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF || ctx.Err() != nil {
				fmt.Println()
				c.ui.PrintSystemMessage("Goodbye!")
				return nil
			}
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if cmd := ParseSlashCommand(input); cmd != nil {
			handled, exit := c.HandleSlashCommand(ctx, cmd)
			if exit {
				c.ui.PrintSystemMessage("Goodbye!")
				return nil
			}
			if !handled {
				c.ui.PrintError(fmt.Sprintf("unknown command: /%s (type /help for available commands)", cmd.Command))
			}
			continue
		}

		if err := c.processQuestion(ctx, input); err != nil {
			c.ui.PrintError(err.Error())
		}
		c.ui.PrintSeparator()
	}
}

// processQuestion runs one retrieval plus generation round
func (c *Client) processQuestion(ctx context.Context, question string) error {
	hits, docContext, err := c.retrieve(ctx, question)
	if err != nil {
		return err
	}

	summaries := make([]string, 0, len(hits))
	for i, hit := range hits {
		summaries = append(summaries, search.FormatHitSummary(c.corpus, i+1, hit))
	}
	c.ui.PrintDocuments(summaries)

	if c.ui.RenderMarkdown {
		// Collect the full answer and render it once
		answer, err := c.engine.Answer(ctx, question, docContext, nil)
		if err != nil {
			return err
		}
		c.ui.PrintAnswerLabel()
		fmt.Println()
		c.ui.PrintAnswer(answer)
		return nil
	}

	c.ui.PrintAnswerLabel()
	if _, err := c.engine.Answer(ctx, question, docContext, c.ui.PrintChunk); err != nil {
		fmt.Println()
		return err
	}
	fmt.Println()
	return nil
}

func (c *Client) retrieve(ctx context.Context, question string) ([]search.Hit, string, error) {
	if c.multiquery {
		return c.engine.RetrieveMultiQuery(ctx, c.corpus, c.mode, question, multiQueryHits)
	}
	return c.engine.Retrieve(ctx, c.corpus, c.mode, question, defaultHits)
}
