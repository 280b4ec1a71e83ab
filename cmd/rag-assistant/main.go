/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Interactive Assistant
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pgedge-rag-bench/internal/assistant"
	"pgedge-rag-bench/internal/config"
	"pgedge-rag-bench/internal/embedding"
	"pgedge-rag-bench/internal/llm"
	"pgedge-rag-bench/internal/search"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	corpusName := flag.String("corpus", "faq", "Document corpus: faq or science")
	modeName := flag.String("mode", "hybrid", "Search mode: keyword, semantic, neural or hybrid")
	model := flag.String("model", "", "Generation model (default: first configured model)")
	multiquery := flag.Bool("multiquery", false, "Enable multi-query retrieval")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	noMarkdown := flag.Bool("no-markdown", false, "Disable Markdown rendering of answers")
	historyFile := flag.String("history-file", "", "Readline history file")
	flag.Parse()

	flags := config.CLIFlags{
		ConfigFile:    *configFile,
		ConfigFileSet: *configFile != "",
	}
	cfg, err := config.LoadConfig(*configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	corpus, err := search.ParseCorpus(*corpusName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	mode, err := search.ParseMode(*modeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	embedder, err := embedding.NewProvider(embedding.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		OllamaURL: cfg.Embedding.OllamaURL,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating embedding provider: %v\n", err)
		os.Exit(1)
	}

	searcher, err := search.NewClient(cfg.OpenSearch.URL, cfg.SearchConfig(), embedder)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating OpenSearch client: %v\n", err)
		os.Exit(1)
	}

	generationModel := *model
	if generationModel == "" && len(cfg.Benchmark.LLMModels) > 0 {
		generationModel = cfg.Benchmark.LLMModels[0]
	}
	llmClient := llm.NewClient(cfg.Ollama.URL, generationModel)

	ui := assistant.NewUI(*noColor, !*noMarkdown)
	client := assistant.NewClient(searcher, llmClient, ui, corpus, mode)
	client.SetMultiquery(*multiquery)
	client.HistoryFile = *historyFile

	// Reload the configuration when the file changes. The default
	// generation model is applied live; most other settings only take
	// effect on restart and are logged as such
	if *configFile != "" {
		rc := config.NewReloadableConfig(cfg, *configFile, flags)
		rc.OnReload(func(newCfg *config.Config) {
			// An explicit -model flag keeps precedence over the file
			if *model == "" && len(newCfg.Benchmark.LLMModels) > 0 {
				client.SetGenerationModel(newCfg.Benchmark.LLMModels[0])
			}
		})
		watcher, err := config.NewFileWatcher(*configFile, rc.Reload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error watching configuration: %v\n", err)
			os.Exit(1)
		}
		watcher.Start()
		defer watcher.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := client.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
