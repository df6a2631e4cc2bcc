package record

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jensroland/git-solentry/internal/lineset"
)

// SolutionEntry links a test case to the exact solution code it verifies.
// ID, ExerciseID and TestCaseID are zero until the entry is persisted.
type SolutionEntry struct {
	ID               int64  `json:"id,omitempty"`
	ExerciseID       int64  `json:"exercise_id,omitempty"`
	TestCaseID       int64  `json:"test_case_id,omitempty"`
	TestCaseName     string `json:"test_case"`
	FilePath         string `json:"file_path"`
	PreviousFilePath string `json:"previous_file_path,omitempty"`
	StartLine        int    `json:"start_line"`
	EndLine          int    `json:"end_line"`
	Code             string `json:"code"`
	ContentHash      string `json:"content_hash,omitempty"`
}

// Lines returns the lines referenced by the entry.
func (e SolutionEntry) Lines() lineset.LineSet {
	return lineset.FromRange(e.StartLine, e.EndLine)
}

// Overlaps reports whether two entries of the same test case and file
// share at least one line.
func (e SolutionEntry) Overlaps(other SolutionEntry) bool {
	if e.TestCaseName != other.TestCaseName || e.FilePath != other.FilePath {
		return false
	}
	return e.StartLine <= other.EndLine && other.StartLine <= e.EndLine
}

// Sort orders entries canonically by file path, start line and test case.
func Sort(entries []SolutionEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		if a.TestCaseName != b.TestCaseName {
			return a.TestCaseName < b.TestCaseName
		}
		return a.EndLine < b.EndLine
	})
}

// ContentHash produces a 16-char hex hash of whitespace-normalized text.
func ContentHash(text string) string {
	if text == "" {
		return ""
	}
	normalized := strings.Join(strings.Fields(text), " ")
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)[:16]
}

// RelativizePath converts an absolute path to a project-relative path.
// Always uses forward slashes for portability.
func RelativizePath(absPath, projectDir string) string {
	if absPath == "" {
		return ""
	}
	rel, err := filepath.Rel(projectDir, absPath)
	if err != nil {
		return absPath
	}
	return filepath.ToSlash(rel)
}

// Preview flattens code to a single line for listings.
func Preview(code string, maxLen int) string {
	flat := strings.Join(strings.Fields(code), " ")
	r := []rune(flat)
	if len(r) > maxLen {
		return string(r[:maxLen]) + "…"
	}
	return flat
}
