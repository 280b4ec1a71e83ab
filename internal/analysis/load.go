/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Result Loading
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package analysis

import (
	"fmt"
	"path/filepath"
	"sort"

	"pgedge-rag-bench/internal/bench"
	"pgedge-rag-bench/internal/logging"
)

// Dataset holds the concatenated trial records of a results
// directory, partitioned by outcome. Errored records carry no
// statistics weight but their count is reported.
type Dataset struct {
	Valid   []bench.TrialRecord
	Errored []bench.TrialRecord
}

// Load reads every batch file in resultsDir into one dataset.
// Unreadable files are skipped with a warning rather than failing the
// whole analysis.
func Load(resultsDir string) (*Dataset, error) {
	paths, err := filepath.Glob(filepath.Join(resultsDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list results dir: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no batch files found in %s", resultsDir)
	}
	sort.Strings(paths)

	ds := &Dataset{}
	for _, path := range paths {
		records, err := bench.ReadBatch(path)
		if err != nil {
			logging.Warn("skipping unreadable batch file",
				"path", path,
				"error", err.Error())
			continue
		}
		for _, rec := range records {
			if rec.Succeeded() {
				ds.Valid = append(ds.Valid, rec)
			} else {
				ds.Errored = append(ds.Errored, rec)
			}
		}
	}

	logging.Info("results loaded",
		"files", len(paths),
		"valid", len(ds.Valid),
		"errored", len(ds.Errored))

	return ds, nil
}
