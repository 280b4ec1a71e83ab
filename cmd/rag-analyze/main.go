/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Results Analyzer
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"pgedge-rag-bench/internal/analysis"
	"pgedge-rag-bench/internal/config"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	resultsDir := flag.String("results-dir", "", "Batch CSV directory (overrides config file)")
	analysisDir := flag.String("analysis-dir", "", "Analysis output directory (overrides config file)")
	render := flag.Bool("render", false, "Render the Markdown report to the terminal")
	flag.Parse()

	flags := config.CLIFlags{
		ConfigFile:    *configFile,
		ConfigFileSet: *configFile != "",

		ResultsDir:     *resultsDir,
		ResultsDirSet:  *resultsDir != "",
		AnalysisDir:    *analysisDir,
		AnalysisDirSet: *analysisDir != "",
	}

	cfg, err := config.LoadConfig(*configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := analysis.Run(cfg.Benchmark.ResultsDir, cfg.Benchmark.AnalysisDir); err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	reportPath := filepath.Join(cfg.Benchmark.AnalysisDir, analysis.ReportFile)
	fmt.Printf("Analysis written to %s\n", cfg.Benchmark.AnalysisDir)
	fmt.Printf("Report: %s\n", reportPath)

	if *render {
		if err := renderReport(reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render report: %v\n", err)
			os.Exit(1)
		}
	}
}

// renderReport prints the Markdown report to the terminal
func renderReport(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	rendered, err := renderMarkdown(string(data), reportWidth())
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}

func renderMarkdown(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to initialize renderer: %w", err)
	}
	rendered, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return rendered, nil
}

// reportWidth returns the maximum width for markdown rendering
func reportWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 2 {
		return 80
	}
	// Cap the render width so tables stay readable on very wide
	// terminals
	if width > 120 {
		width = 120
	}
	return width - 2
}
