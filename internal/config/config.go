/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Configuration
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pgedge-rag-bench/internal/search"
)

// Config represents the complete benchmark suite configuration
type Config struct {
	// OpenSearch connection and index layout
	OpenSearch OpenSearchConfig `yaml:"opensearch"`

	// Ollama service for generation
	Ollama OllamaConfig `yaml:"ollama"`

	// Embedding provider for semantic search
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Benchmark sweep settings
	Benchmark BenchmarkConfig `yaml:"benchmark"`
}

// OpenSearchConfig holds the engine URL, the deployed ML model and
// the index names of both corpora
type OpenSearchConfig struct {
	URL     string         `yaml:"url"`      // Engine URL (default: http://localhost:9200)
	ModelID string         `yaml:"model_id"` // Deployed ML model for neural search (optional)
	FAQ     IndexSetConfig `yaml:"faq"`
	Science IndexSetConfig `yaml:"science"`
}

// IndexSetConfig names the three index variants of one corpus
type IndexSetConfig struct {
	Plain    string `yaml:"plain"`
	Semantic string `yaml:"semantic"`
	Pipeline string `yaml:"pipeline"`
}

// OllamaConfig holds the generation service settings
type OllamaConfig struct {
	URL string `yaml:"url"` // Ollama URL (default: http://localhost:11434)
}

// EmbeddingConfig holds embedding provider settings
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`   // "ollama" (default)
	Model     string `yaml:"model"`      // Provider-specific model name
	OllamaURL string `yaml:"ollama_url"` // URL for the embedding service
}

// BenchmarkConfig holds sweep, question and output settings
type BenchmarkConfig struct {
	ResultsDir          string   `yaml:"results_dir"`           // Batch CSV output directory
	AnalysisDir         string   `yaml:"analysis_dir"`          // Analysis output directory
	FAQQuestionFile     string   `yaml:"faq_question_file"`     // FAQ benchmark questions
	ScienceQuestionFile string   `yaml:"science_question_file"` // Science benchmark questions
	QuestionLimit       int      `yaml:"question_limit"`        // Questions per corpus (default: 30)
	CooldownSeconds     int      `yaml:"cooldown_seconds"`      // Pause between sweep points (default: 600)
	LLMModels           []string `yaml:"llm_models"`            // Models for the generation sweep
	FeedCommand         []string `yaml:"feed_command"`          // External sampler command (optional)
}

// SearchConfig maps the index layout onto the search client
// configuration
func (c *Config) SearchConfig() search.Config {
	return search.Config{
		FAQ: search.IndexSet{
			Plain:    c.OpenSearch.FAQ.Plain,
			Semantic: c.OpenSearch.FAQ.Semantic,
			Pipeline: c.OpenSearch.FAQ.Pipeline,
		},
		Science: search.IndexSet{
			Plain:    c.OpenSearch.Science.Plain,
			Semantic: c.OpenSearch.Science.Semantic,
			Pipeline: c.OpenSearch.Science.Pipeline,
		},
		ModelID: c.OpenSearch.ModelID,
	}
}

// Cooldown returns the sweep cooldown as a duration
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Benchmark.CooldownSeconds) * time.Second
}

// CLIFlags represents command line flag values and whether they were
// explicitly set
type CLIFlags struct {
	ConfigFileSet bool
	ConfigFile    string

	OpenSearchURL    string
	OpenSearchURLSet bool
	ModelID          string
	ModelIDSet       bool

	OllamaURL    string
	OllamaURLSet bool

	ResultsDir     string
	ResultsDirSet  bool
	AnalysisDir    string
	AnalysisDirSet bool

	QuestionLimit      int
	QuestionLimitSet   bool
	CooldownSeconds    int
	CooldownSecondsSet bool

	LLMModels    []string
	LLMModelsSet bool
}

// LoadConfig loads configuration with proper priority:
// 1. Command line flags (highest priority)
// 2. Environment variables (RAGBENCH_*, .env honored)
// 3. Configuration file
// 4. Hard-coded defaults (lowest priority)
func LoadConfig(configPath string, cliFlags CLIFlags) (*Config, error) {
	// Load .env if present; real environment variables win
	_ = godotenv.Load()

	cfg := defaultConfig()

	if configPath != "" {
		fileCfg, err := loadConfigFile(configPath)
		if err != nil {
			// If the file was explicitly specified, error out.
			// Otherwise defaults are fine, the file may not exist.
			if cliFlags.ConfigFileSet {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		} else {
			mergeConfig(cfg, fileCfg)
		}
	}

	applyEnvironmentVariables(cfg)
	applyCLIFlags(cfg, cliFlags)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns configuration with hard-coded defaults
func defaultConfig() *Config {
	return &Config{
		OpenSearch: OpenSearchConfig{
			URL:     "http://localhost:9200",
			ModelID: "",
			FAQ: IndexSetConfig{
				Plain:    "faq",
				Semantic: "faq_semantic",
				Pipeline: "faq_pipeline",
			},
			Science: IndexSetConfig{
				Plain:    "science",
				Semantic: "science_semantic",
				Pipeline: "science_pipeline",
			},
		},
		Ollama: OllamaConfig{
			URL: "http://localhost:11434",
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			OllamaURL: "http://localhost:11434",
		},
		Benchmark: BenchmarkConfig{
			ResultsDir:          "results",
			AnalysisDir:         "analysis",
			FAQQuestionFile:     "questions/faq.txt",
			ScienceQuestionFile: "questions/science.txt",
			QuestionLimit:       30,
			CooldownSeconds:     600,
			LLMModels:           []string{"gpt-oss:20b", "llama3.2"},
			FeedCommand:         nil,
		},
	}
}

// loadConfigFile loads configuration from a YAML file
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &cfg, nil
}

// mergeConfig merges source config into dest, only overriding
// non-zero values
func mergeConfig(dest, src *Config) {
	if src.OpenSearch.URL != "" {
		dest.OpenSearch.URL = src.OpenSearch.URL
	}
	if src.OpenSearch.ModelID != "" {
		dest.OpenSearch.ModelID = src.OpenSearch.ModelID
	}
	mergeIndexSet(&dest.OpenSearch.FAQ, src.OpenSearch.FAQ)
	mergeIndexSet(&dest.OpenSearch.Science, src.OpenSearch.Science)

	if src.Ollama.URL != "" {
		dest.Ollama.URL = src.Ollama.URL
	}

	if src.Embedding.Provider != "" {
		dest.Embedding.Provider = src.Embedding.Provider
	}
	if src.Embedding.Model != "" {
		dest.Embedding.Model = src.Embedding.Model
	}
	if src.Embedding.OllamaURL != "" {
		dest.Embedding.OllamaURL = src.Embedding.OllamaURL
	}

	if src.Benchmark.ResultsDir != "" {
		dest.Benchmark.ResultsDir = src.Benchmark.ResultsDir
	}
	if src.Benchmark.AnalysisDir != "" {
		dest.Benchmark.AnalysisDir = src.Benchmark.AnalysisDir
	}
	if src.Benchmark.FAQQuestionFile != "" {
		dest.Benchmark.FAQQuestionFile = src.Benchmark.FAQQuestionFile
	}
	if src.Benchmark.ScienceQuestionFile != "" {
		dest.Benchmark.ScienceQuestionFile = src.Benchmark.ScienceQuestionFile
	}
	if src.Benchmark.QuestionLimit > 0 {
		dest.Benchmark.QuestionLimit = src.Benchmark.QuestionLimit
	}
	if src.Benchmark.CooldownSeconds > 0 {
		dest.Benchmark.CooldownSeconds = src.Benchmark.CooldownSeconds
	}
	if len(src.Benchmark.LLMModels) > 0 {
		dest.Benchmark.LLMModels = src.Benchmark.LLMModels
	}
	if len(src.Benchmark.FeedCommand) > 0 {
		dest.Benchmark.FeedCommand = src.Benchmark.FeedCommand
	}
}

func mergeIndexSet(dest *IndexSetConfig, src IndexSetConfig) {
	if src.Plain != "" {
		dest.Plain = src.Plain
	}
	if src.Semantic != "" {
		dest.Semantic = src.Semantic
	}
	if src.Pipeline != "" {
		dest.Pipeline = src.Pipeline
	}
}

// applyEnvironmentVariables overrides config with RAGBENCH_*
// environment variables if they exist
func applyEnvironmentVariables(cfg *Config) {
	setString(&cfg.OpenSearch.URL, "RAGBENCH_OPENSEARCH_URL")
	setString(&cfg.OpenSearch.ModelID, "RAGBENCH_MODEL_ID")
	setString(&cfg.Ollama.URL, "RAGBENCH_OLLAMA_URL")
	setString(&cfg.Embedding.Provider, "RAGBENCH_EMBEDDING_PROVIDER")
	setString(&cfg.Embedding.Model, "RAGBENCH_EMBEDDING_MODEL")
	setString(&cfg.Embedding.OllamaURL, "RAGBENCH_EMBEDDING_OLLAMA_URL")
	setString(&cfg.Benchmark.ResultsDir, "RAGBENCH_RESULTS_DIR")
	setString(&cfg.Benchmark.AnalysisDir, "RAGBENCH_ANALYSIS_DIR")
	setString(&cfg.Benchmark.FAQQuestionFile, "RAGBENCH_FAQ_QUESTION_FILE")
	setString(&cfg.Benchmark.ScienceQuestionFile, "RAGBENCH_SCIENCE_QUESTION_FILE")
	setInt(&cfg.Benchmark.QuestionLimit, "RAGBENCH_QUESTION_LIMIT")
	setInt(&cfg.Benchmark.CooldownSeconds, "RAGBENCH_COOLDOWN_SECONDS")

	if val := os.Getenv("RAGBENCH_LLM_MODELS"); val != "" {
		var models []string
		for _, m := range strings.Split(val, ",") {
			if m = strings.TrimSpace(m); m != "" {
				models = append(models, m)
			}
		}
		cfg.Benchmark.LLMModels = models
	}
}

func setString(dest *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dest = val
	}
}

func setInt(dest *int, key string) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dest = n
		}
	}
}

// applyCLIFlags overrides config with explicitly set command line
// flags (highest priority)
func applyCLIFlags(cfg *Config, flags CLIFlags) {
	if flags.OpenSearchURLSet {
		cfg.OpenSearch.URL = flags.OpenSearchURL
	}
	if flags.ModelIDSet {
		cfg.OpenSearch.ModelID = flags.ModelID
	}
	if flags.OllamaURLSet {
		cfg.Ollama.URL = flags.OllamaURL
	}
	if flags.ResultsDirSet {
		cfg.Benchmark.ResultsDir = flags.ResultsDir
	}
	if flags.AnalysisDirSet {
		cfg.Benchmark.AnalysisDir = flags.AnalysisDir
	}
	if flags.QuestionLimitSet {
		cfg.Benchmark.QuestionLimit = flags.QuestionLimit
	}
	if flags.CooldownSecondsSet {
		cfg.Benchmark.CooldownSeconds = flags.CooldownSeconds
	}
	if flags.LLMModelsSet {
		cfg.Benchmark.LLMModels = flags.LLMModels
	}
}

// validateConfig checks if the configuration is valid
func validateConfig(cfg *Config) error {
	if cfg.OpenSearch.URL == "" {
		return fmt.Errorf("opensearch.url must not be empty")
	}
	if cfg.Ollama.URL == "" {
		return fmt.Errorf("ollama.url must not be empty")
	}
	if cfg.Benchmark.QuestionLimit < 0 {
		return fmt.Errorf("benchmark.question_limit must not be negative")
	}
	if cfg.Benchmark.CooldownSeconds < 0 {
		return fmt.Errorf("benchmark.cooldown_seconds must not be negative")
	}

	sets := map[string]IndexSetConfig{
		"faq":     cfg.OpenSearch.FAQ,
		"science": cfg.OpenSearch.Science,
	}
	for corpus, set := range sets {
		if set.Plain == "" || set.Semantic == "" || set.Pipeline == "" {
			return fmt.Errorf("opensearch.%s index names must not be empty", corpus)
		}
	}

	return nil
}
