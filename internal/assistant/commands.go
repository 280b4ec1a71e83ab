/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Assistant Commands
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
	"strings"

	"pgedge-rag-bench/internal/search"
)

// SlashCommand represents a parsed slash command
type SlashCommand struct {
	Command string
	Args    []string
}

// ParseSlashCommand parses user input into a slash command, or nil
// if the input is a regular question
func ParseSlashCommand(input string) *SlashCommand {
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	fields := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(fields) == 0 {
		return &SlashCommand{Command: ""}
	}
	return &SlashCommand{
		Command: strings.ToLower(fields[0]),
		Args:    fields[1:],
	}
}

// HandleSlashCommand executes a slash command. It returns handled
// false for unknown commands and exit true when the loop should end.
func (c *Client) HandleSlashCommand(ctx context.Context, cmd *SlashCommand) (handled, exit bool) {
	switch cmd.Command {
	case "help":
		c.printHelp()
		return true, false

	case "corpus":
		c.switchCorpus(cmd.Args)
		return true, false

	case "mode":
		c.switchMode(cmd.Args)
		return true, false

	case "model":
		c.switchModel(ctx, cmd.Args)
		return true, false

	case "models":
		c.listModels(ctx)
		return true, false

	case "multiquery":
		c.switchMultiquery(cmd.Args)
		return true, false

	case "config":
		c.printConfig()
		return true, false

	case "exit", "quit":
		return true, true

	default:
		return false, false
	}
}

func (c *Client) printHelp() {
	c.ui.PrintSystemMessage(`available commands:
  /corpus <faq|science>                    switch document corpus
  /mode <keyword|semantic|neural|hybrid>   switch search mode
  /model <name>                            switch generation model
  /models                                  list available models
  /multiquery <on|off>                     toggle multi-query retrieval
  /config                                  show current settings
  /exit                                    leave the assistant`)
}

func (c *Client) switchCorpus(args []string) {
	if len(args) != 1 {
		c.ui.PrintError("usage: /corpus <faq|science>")
		return
	}
	corpus, err := search.ParseCorpus(args[0])
	if err != nil {
		c.ui.PrintError(err.Error())
		return
	}
	c.corpus = corpus
	c.ui.PrintSystemMessage("corpus switched to " + string(corpus))
}

func (c *Client) switchMode(args []string) {
	if len(args) != 1 {
		c.ui.PrintError("usage: /mode <keyword|semantic|neural|hybrid>")
		return
	}
	mode, err := search.ParseMode(args[0])
	if err != nil {
		c.ui.PrintError(err.Error())
		return
	}
	c.mode = mode
	c.ui.PrintSystemMessage("search mode switched to " + string(mode))
}

func (c *Client) switchModel(ctx context.Context, args []string) {
	if len(args) != 1 {
		c.ui.PrintError("usage: /model <name>")
		return
	}
	name := args[0]

	if ok, err := c.llm.HasModel(ctx, name); err != nil {
		c.ui.PrintError("failed to check model availability: " + err.Error())
		return
	} else if !ok {
		c.ui.PrintError(fmt.Sprintf("model %s is not available (try /models)", name))
		return
	}

	c.llm.SetModel(name)
	c.ui.PrintSystemMessage("generation model switched to " + name)
}

func (c *Client) listModels(ctx context.Context) {
	models, err := c.llm.ListModels(ctx)
	if err != nil {
		c.ui.PrintError("failed to list models: " + err.Error())
		return
	}
	if len(models) == 0 {
		c.ui.PrintSystemMessage("no models installed")
		return
	}

	var names []string
	for _, m := range models {
		names = append(names, "  "+m.Name)
	}
	c.ui.PrintSystemMessage("installed models:\n" + strings.Join(names, "\n"))
}

func (c *Client) switchMultiquery(args []string) {
	if len(args) != 1 {
		c.ui.PrintError("usage: /multiquery <on|off>")
		return
	}
	switch strings.ToLower(args[0]) {
	case "on":
		c.multiquery = true
		c.ui.PrintSystemMessage("multi-query retrieval enabled")
	case "off":
		c.multiquery = false
		c.ui.PrintSystemMessage("multi-query retrieval disabled")
	default:
		c.ui.PrintError("usage: /multiquery <on|off>")
	}
}

func (c *Client) printConfig() {
	multiquery := "off"
	if c.multiquery {
		multiquery = "on"
	}
	c.ui.PrintSystemMessage(fmt.Sprintf(`current settings:
  corpus:     %s
  mode:       %s
  model:      %s
  multiquery: %s`,
		c.corpus, c.mode, c.llm.Model(), multiquery))
}
