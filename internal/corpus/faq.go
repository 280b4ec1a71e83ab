/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - FAQ Corpus Loader
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package corpus

import (
	"encoding/json"
	"fmt"
	"os"
)

// FAQEntry is one question/answer pair of the FAQ corpus file
type FAQEntry struct {
	ID         string   `json:"id"`
	Section    string   `json:"section"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Confidence string   `json:"confidence"`
	Tags       []string `json:"tags"`
}

type faqFile struct {
	Entries []FAQEntry `json:"entries"`
}

// LoadFAQEntries reads the FAQ corpus JSON file
func LoadFAQEntries(path string) ([]FAQEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FAQ file: %w", err)
	}

	var file faqFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse FAQ file: %w", err)
	}
	if len(file.Entries) == 0 {
		return nil, fmt.Errorf("FAQ file %s contains no entries", path)
	}

	return file.Entries, nil
}
