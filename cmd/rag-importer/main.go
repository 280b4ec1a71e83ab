/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Corpus Importer
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

	"github.com/spf13/cobra"

	"pgedge-rag-bench/internal/config"
	"pgedge-rag-bench/internal/corpus"
	"pgedge-rag-bench/internal/embedding"
	"pgedge-rag-bench/internal/search"
)

var (
	configFile    string
	opensearchURL string
	modelID       string
	skipSemantic  bool
)

var rootCmd = &cobra.Command{
	Use:   "rag-importer",
	Short: "pgEdge RAG Bench - Build the benchmark indexes",
	Long: `rag-importer creates the three index variants of each corpus (plain BM25,
semantic KNN and ingest-pipeline) and bulk-loads their documents into
OpenSearch. Semantic indexes carry client-computed embeddings; pipeline
indexes compute embeddings at ingest time through the configured ML model.`,
}

var faqCmd = &cobra.Command{
	Use:   "faq <faq.json>",
	Short: "Import the FAQ corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		imp, err := newImporter(cmd)
		if err != nil {
			return err
		}
		return imp.ImportFAQ(context.Background(), args[0])
	},
}

var scienceCmd = &cobra.Command{
	Use:   "science <archive-dir>",
	Short: "Import the science archive corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		imp, err := newImporter(cmd)
		if err != nil {
			return err
		}
		return imp.ImportScience(context.Background(), args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&opensearchURL, "opensearch-url", "",
		"OpenSearch URL (overrides config file)")
	rootCmd.PersistentFlags().StringVar(&modelID, "model-id", "",
		"Deployed ML model id for the pipeline index (overrides config file)")
	rootCmd.PersistentFlags().BoolVar(&skipSemantic, "skip-semantic", false,
		"Skip the semantic index (no client-side embeddings)")

	rootCmd.AddCommand(faqCmd)
	rootCmd.AddCommand(scienceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newImporter(cmd *cobra.Command) (*corpus.Importer, error) {
	flags := config.CLIFlags{
		ConfigFile:    configFile,
		ConfigFileSet: cmd.Flags().Changed("config"),

		OpenSearchURL:    opensearchURL,
		OpenSearchURLSet: cmd.Flags().Changed("opensearch-url"),
		ModelID:          modelID,
		ModelIDSet:       cmd.Flags().Changed("model-id"),
	}
	cfg, err := config.LoadConfig(configFile, flags)
	if err != nil {
		return nil, err
	}

	var embedder embedding.Provider
	if !skipSemantic {
		embedder, err = embedding.NewProvider(embedding.Config{
			Provider:  cfg.Embedding.Provider,
			Model:     cfg.Embedding.Model,
			OllamaURL: cfg.Embedding.OllamaURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding provider: %w", err)
		}
	}

	engineClient, err := search.NewEngineClient(cfg.OpenSearch.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenSearch client: %w", err)
	}

	return corpus.NewImporter(engineClient, cfg.SearchConfig(), embedder), nil
}
