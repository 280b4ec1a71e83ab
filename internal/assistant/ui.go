/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Assistant UI
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package assistant

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
	ColorBold   = "\033[1m"
)

// UI handles the terminal output of the assistant
type UI struct {
	noColor        bool
	RenderMarkdown bool
}

// NewUI creates a new UI instance
func NewUI(noColor bool, renderMarkdown bool) *UI {
	return &UI{
		noColor:        noColor,
		RenderMarkdown: renderMarkdown,
	}
}

// colorize applies color if colors are enabled
func (ui *UI) colorize(color, text string) string {
	if ui.noColor {
		return text
	}
	return color + text + ColorReset
}

// PrintWelcome prints the welcome banner
func (ui *UI) PrintWelcome(corpus, mode string) {
	banner := fmt.Sprintf(`
pgEdge RAG Bench - interactive assistant
Corpus: %s | Mode: %s
Type a question, or /help for commands
`, corpus, mode)
	fmt.Println(ui.colorize(ColorCyan, banner))
}

// GetPrompt returns the prompt string for readline
func (ui *UI) GetPrompt() string {
	return ui.colorize(ColorGreen+ColorBold, "You: ")
}

// PrintAnswerLabel prints the assistant label before a streamed
// answer
func (ui *UI) PrintAnswerLabel() {
	fmt.Print("\n" + ui.colorize(ColorBlue, "Assistant: "))
}

// PrintChunk prints one streamed answer token
func (ui *UI) PrintChunk(chunk string) {
	fmt.Print(chunk)
}

// PrintAnswer prints a complete answer, rendered as Markdown when
// enabled
func (ui *UI) PrintAnswer(text string) {
	if ui.RenderMarkdown {
		style := "dark"
		if ui.noColor {
			style = "notty"
		}

		// Cap the render width so tables stay readable on very wide
		// terminals
		width := ui.getTerminalWidth()
		if width > 120 {
			width = 120
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithStylePath(style),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			if rendered, err := r.Render(text); err == nil {
				fmt.Print(rendered)
				return
			}
			// Fall back to plain text when rendering fails
		}
	}

	fmt.Print(text + "\n")
}

// PrintDocuments prints the retrieved document summaries
func (ui *UI) PrintDocuments(summaries []string) {
	if len(summaries) == 0 {
		return
	}
	fmt.Println(ui.colorize(ColorYellow, "\nRetrieved documents:"))
	for _, summary := range summaries {
		fmt.Println(ui.colorize(ColorGray, summary))
	}
}

// PrintSystemMessage prints a system message
func (ui *UI) PrintSystemMessage(text string) {
	fmt.Println(ui.colorize(ColorYellow, "System: ") + text)
}

// PrintError prints an error message
func (ui *UI) PrintError(text string) {
	fmt.Println(ui.colorize(ColorRed, "Error: ") + text)
}

// PrintSeparator prints a separator line
func (ui *UI) PrintSeparator() {
	fmt.Println(ui.colorize(ColorGray, strings.Repeat("─", 80)))
}

// getTerminalWidth returns the maximum width for markdown rendering
func (ui *UI) getTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 2 {
		// Leave a small margin to prevent wrapping at the edge
		return width - 2
	}
	return 80
}
