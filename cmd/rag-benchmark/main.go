/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Benchmark Runner
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pgedge-rag-bench/internal/bench"
	"pgedge-rag-bench/internal/config"
	"pgedge-rag-bench/internal/corpus"
	"pgedge-rag-bench/internal/embedding"
	"pgedge-rag-bench/internal/llm"
	"pgedge-rag-bench/internal/rag"
	"pgedge-rag-bench/internal/search"
)

var (
	configFile      string
	opensearchURL   string
	ollamaURL       string
	resultsDir      string
	questionLimit   int
	cooldownSeconds int
	llmModels       []string
	corpora         []string
	modes           []string
	searchOnly      bool
)

var rootCmd = &cobra.Command{
	Use:   "rag-benchmark",
	Short: "pgEdge RAG Bench - Run the search and generation sweeps",
	Long: `rag-benchmark measures search latency and end-to-end RAG response times
across every combination of corpus, search mode, LLM model and retrieval
strategy, while sampling CPU, RAM and GPU usage. Each sweep point is
persisted as one CSV batch file for later analysis with rag-analyze.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "",
		"Path to configuration file")
	rootCmd.Flags().StringVar(&opensearchURL, "opensearch-url", "",
		"OpenSearch URL (overrides config file)")
	rootCmd.Flags().StringVar(&ollamaURL, "ollama-url", "",
		"Ollama URL (overrides config file)")
	rootCmd.Flags().StringVar(&resultsDir, "results-dir", "",
		"Batch CSV output directory (overrides config file)")
	rootCmd.Flags().IntVar(&questionLimit, "question-limit", 0,
		"Maximum questions per corpus (overrides config file)")
	rootCmd.Flags().IntVar(&cooldownSeconds, "cooldown", 0,
		"Seconds to pause between sweep points (overrides config file)")
	rootCmd.Flags().StringSliceVar(&llmModels, "llm-models", nil,
		"LLM models for the generation sweep (overrides config file)")
	rootCmd.Flags().StringSliceVar(&corpora, "corpus", nil,
		"Corpora to benchmark (default: all)")
	rootCmd.Flags().StringSliceVar(&modes, "mode", nil,
		"Search modes to benchmark (default: all)")
	rootCmd.Flags().BoolVar(&searchOnly, "search-only", false,
		"Run only the search sweep, skip generation")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping after the current trial...")
		cancel()
	}()

	sweepCorpora, err := parseCorpora(corpora)
	if err != nil {
		return err
	}
	sweepModes, err := parseModes(modes)
	if err != nil {
		return err
	}

	embedder, err := embedding.NewProvider(embedding.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		OllamaURL: cfg.Embedding.OllamaURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}

	searcher, err := search.NewClient(cfg.OpenSearch.URL, cfg.SearchConfig(), embedder)
	if err != nil {
		return fmt.Errorf("failed to create OpenSearch client: %w", err)
	}

	version, err := searcher.Info(ctx)
	if err != nil {
		return fmt.Errorf("OpenSearch unavailable at %s: %w", cfg.OpenSearch.URL, err)
	}
	fmt.Printf("Connected to OpenSearch %s\n", version)

	models := cfg.Benchmark.LLMModels
	if searchOnly {
		models = nil
	}

	llmClient := llm.NewClient(cfg.Ollama.URL, "")
	if len(models) > 0 {
		if err := llmClient.CheckConnection(ctx); err != nil {
			return fmt.Errorf("Ollama unavailable at %s: %w", cfg.Ollama.URL, err)
		}
		for _, model := range models {
			ok, err := llmClient.HasModel(ctx, model)
			if err != nil {
				return fmt.Errorf("failed to check model %s: %w", model, err)
			}
			if !ok {
				return fmt.Errorf("model %s is not installed", model)
			}
		}
		fmt.Printf("Generation models: %v\n", models)
	}

	questions, err := loadQuestions(cfg, sweepCorpora)
	if err != nil {
		return err
	}

	engine := rag.NewEngine(searcher, llmClient)
	runner := bench.NewTrialRunner(searcher, engine, llmClient, cfg.Benchmark.FeedCommand)

	executor := bench.NewSweepExecutor(runner, bench.SweepOptions{
		Corpora:    sweepCorpora,
		Modes:      sweepModes,
		LLMModels:  models,
		Questions:  questions,
		ResultsDir: cfg.Benchmark.ResultsDir,
		Cooldown:   cfg.Cooldown(),
	})
	executor.OnTrial = func(rec bench.TrialRecord, index, total int) {
		status := "ok"
		if !rec.Succeeded() {
			status = "error"
		}
		fmt.Printf("  [%d/%d] %s (%s)\n", index, total, truncateQuestion(rec.Question), status)
	}
	executor.OnBatch = func(path string, records []bench.TrialRecord) {
		fmt.Printf("Batch written: %s (%d trials)\n", path, len(records))
	}

	start := time.Now()
	if err := executor.Run(ctx); err != nil {
		return err
	}
	fmt.Printf("Benchmark complete in %s, results in %s\n",
		time.Since(start).Round(time.Second), cfg.Benchmark.ResultsDir)
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := config.CLIFlags{
		ConfigFile:    configFile,
		ConfigFileSet: cmd.Flags().Changed("config"),

		OpenSearchURL:    opensearchURL,
		OpenSearchURLSet: cmd.Flags().Changed("opensearch-url"),
		OllamaURL:        ollamaURL,
		OllamaURLSet:     cmd.Flags().Changed("ollama-url"),

		ResultsDir:    resultsDir,
		ResultsDirSet: cmd.Flags().Changed("results-dir"),

		QuestionLimit:      questionLimit,
		QuestionLimitSet:   cmd.Flags().Changed("question-limit"),
		CooldownSeconds:    cooldownSeconds,
		CooldownSecondsSet: cmd.Flags().Changed("cooldown"),

		LLMModels:    llmModels,
		LLMModelsSet: cmd.Flags().Changed("llm-models"),
	}
	return config.LoadConfig(configFile, flags)
}

func parseCorpora(names []string) ([]search.Corpus, error) {
	if len(names) == 0 {
		return search.Corpora(), nil
	}
	var out []search.Corpus
	for _, name := range names {
		c, err := search.ParseCorpus(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func parseModes(names []string) ([]search.Mode, error) {
	if len(names) == 0 {
		return search.Modes(), nil
	}
	var out []search.Mode
	for _, name := range names {
		m, err := search.ParseMode(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func loadQuestions(cfg *config.Config, sweepCorpora []search.Corpus) (map[search.Corpus][]string, error) {
	files := map[search.Corpus]string{
		search.CorpusFAQ:     cfg.Benchmark.FAQQuestionFile,
		search.CorpusScience: cfg.Benchmark.ScienceQuestionFile,
	}

	questions := make(map[search.Corpus][]string)
	for _, c := range sweepCorpora {
		qs, err := corpus.LoadQuestions(files[c], cfg.Benchmark.QuestionLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s questions: %w", c, err)
		}
		if len(qs) == 0 {
			return nil, fmt.Errorf("question file %s holds no questions", files[c])
		}
		fmt.Printf("Loaded %d %s questions\n", len(qs), c)
		questions[c] = qs
	}
	return questions, nil
}

func truncateQuestion(q string) string {
	runes := []rune(q)
	if len(runes) <= 60 {
		return q
	}
	return string(runes[:60]) + "..."
}
