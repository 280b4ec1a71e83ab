/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Analysis Driver
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"pgedge-rag-bench/internal/logging"
)

// Output file names inside the analysis directory
const (
	ConfigurationFile = "stats_by_configuration.csv"
	SearchModeFile    = "stats_by_search_mode.csv"
	LLMModelFile      = "stats_by_llm_model.csv"
	CorpusFile        = "stats_by_corpus.csv"
	MultiqueryFile    = "stats_multiquery_impact.csv"
	ResourceFile      = "stats_resource_usage.csv"
	ReportFile        = "summary_report.md"
)

// Run loads every batch in resultsDir and writes the full analysis
// set into analysisDir: one CSV per grouping plus the markdown report
func Run(resultsDir, analysisDir string) error {
	if err := os.MkdirAll(analysisDir, 0o755); err != nil {
		return fmt.Errorf("failed to create analysis dir: %w", err)
	}

	ds, err := Load(resultsDir)
	if err != nil {
		return err
	}
	if len(ds.Valid) == 0 {
		return fmt.Errorf("no valid trials to analyze in %s", resultsDir)
	}

	if err := WriteConfigurationCSV(filepath.Join(analysisDir, ConfigurationFile), ByConfiguration(ds.Valid)); err != nil {
		return err
	}
	if err := WriteDimensionCSV(filepath.Join(analysisDir, SearchModeFile), "search_mode", ByMode(ds.Valid)); err != nil {
		return err
	}
	if err := WriteDimensionCSV(filepath.Join(analysisDir, CorpusFile), "corpus", ByCorpus(ds.Valid)); err != nil {
		return err
	}

	if llms := ByLLM(ds.Valid); len(llms) > 0 {
		if err := WriteDimensionCSV(filepath.Join(analysisDir, LLMModelFile), "llm_model", llms); err != nil {
			return err
		}
	} else {
		logging.Info("no generation trials found, skipping llm grouping")
	}

	if impact := MultiqueryImpact(ds.Valid); len(impact) > 0 {
		if err := WriteMultiqueryCSV(filepath.Join(analysisDir, MultiqueryFile), impact); err != nil {
			return err
		}
	}

	if err := WriteResourceCSV(filepath.Join(analysisDir, ResourceFile), ResourceUsage(ds.Valid)); err != nil {
		return err
	}

	if err := WriteReport(filepath.Join(analysisDir, ReportFile), ds); err != nil {
		return err
	}

	logging.Info("analysis written", "dir", analysisDir)
	return nil
}
