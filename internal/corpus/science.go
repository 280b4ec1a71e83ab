/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Science Archive Loader
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
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// titleDetectionStartPage is the first page where an all-uppercase
// line is treated as an article title rather than front-matter noise
const titleDetectionStartPage = 4

var pageMarker = regexp.MustCompile(`^=== PAGE (\d+) ===$`)

// Passage is one indexed line of a cleaned science archive file.
// Title is set when the preceding line on the same page was an
// all-uppercase heading.
type Passage struct {
	Text       string
	Filename   string
	Page       int
	LineInPage int
	Title      string
}

// ParseScienceFile splits a cleaned page-wise text file into indexed
// passages. Page boundaries are "=== PAGE n ===" markers; blank lines
// are dropped.
func ParseScienceFile(r io.Reader, filename string) ([]Passage, error) {
	var passages []Passage
	page := 1
	lineInPage := 0
	pendingTitle := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := pageMarker.FindStringSubmatch(line); m != nil {
			page, _ = strconv.Atoi(m[1])
			lineInPage = 0
			pendingTitle = ""
			continue
		}

		if page >= titleDetectionStartPage && isUppercaseHeading(line) {
			pendingTitle = line
			continue
		}

		lineInPage++
		passages = append(passages, Passage{
			Text:       line,
			Filename:   filename,
			Page:       page,
			LineInPage: lineInPage,
			Title:      pendingTitle,
		})
		pendingTitle = ""
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read archive file: %w", err)
	}

	return passages, nil
}

// LoadScienceDir parses every cleaned text file in dir, in name
// order. The filename recorded on each passage is the base name with
// the .clean.txt or .txt suffix removed.
func LoadScienceDir(dir string) ([]Passage, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list archive dir: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no archive files found in %s", dir)
	}
	sort.Strings(paths)

	var passages []Passage
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open archive file: %w", err)
		}

		name := strings.TrimSuffix(filepath.Base(path), ".txt")
		name = strings.TrimSuffix(name, ".clean")
		filePassages, err := ParseScienceFile(file, name)
		file.Close()
		if err != nil {
			return nil, err
		}
		passages = append(passages, filePassages...)
	}

	return passages, nil
}

// isUppercaseHeading reports whether the line contains letters and
// every letter is uppercase
func isUppercaseHeading(line string) bool {
	hasLetter := false
	for _, r := range line {
		if !unicode.IsLetter(r) {
			continue
		}
		hasLetter = true
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return hasLetter
}
