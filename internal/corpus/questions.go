/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Question File Loader
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// LoadQuestions reads a benchmark question file, one question per
// line. Blank lines and '#' comments are skipped. Lines written as a
// numbered markdown list ("3. **Topic:** question text") are cleaned
// of their numbering and emphasis markers. A limit of 0 loads every
// question.
func LoadQuestions(path string, limit int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open question file: %w", err)
	}
	defer file.Close()

	var questions []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if limit > 0 && len(questions) >= limit {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, cleanQuestionLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read question file: %w", err)
	}

	return questions, nil
}

func cleanQuestionLine(line string) string {
	before, after, found := strings.Cut(line, ".")
	if found && isDigits(strings.TrimSpace(before)) {
		line = strings.TrimSpace(after)
		line = strings.ReplaceAll(line, "**", "")
		line = strings.ReplaceAll(line, "*", "")
	}
	return line
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
