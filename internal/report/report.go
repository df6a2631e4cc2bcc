package report

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jensroland/git-solentry/internal/lineset"
)

// ChangeKind classifies a diff hunk.
type ChangeKind string

const (
	Added    ChangeKind = "ADDED"
	Modified ChangeKind = "MODIFIED"
	Removed  ChangeKind = "REMOVED"
)

// DiffEntry is one contiguous hunk of the template→solution diff.
// StartLine and EndLine are 1-based and inclusive in the current
// (solution) file. For REMOVED hunks they mark where the code used to be.
type DiffEntry struct {
	FilePath         string     `json:"file_path" validate:"required"`
	PreviousFilePath string     `json:"previous_file_path,omitempty"`
	StartLine        int        `json:"start_line" validate:"min=1"`
	EndLine          int        `json:"end_line" validate:"gtefield=StartLine"`
	ChangeKind       ChangeKind `json:"change_kind" validate:"oneof=ADDED MODIFIED REMOVED"`
}

// Lines returns the lines covered by the hunk.
func (e DiffEntry) Lines() lineset.LineSet {
	return lineset.FromRange(e.StartLine, e.EndLine)
}

// IsRename reports whether the hunk belongs to a renamed file. Reports
// that repeat the current path as the previous one are not renames.
func (e DiffEntry) IsRename() bool {
	prev := NormalizePath(e.PreviousFilePath)
	return prev != "" && prev != NormalizePath(e.FilePath)
}

// DiffReport is the structural diff between template and solution.
type DiffReport struct {
	ExerciseID     int64       `json:"exercise_id"`
	TemplateCommit string      `json:"template_commit,omitempty"`
	SolutionCommit string      `json:"solution_commit,omitempty"`
	Entries        []DiffEntry `json:"entries" validate:"dive"`
}

// CoverageEntry records which lines of a file one test case executed.
type CoverageEntry struct {
	TestCaseName string          `json:"test_case" validate:"required"`
	FilePath     string          `json:"file_path" validate:"required"`
	CoveredLines lineset.LineSet `json:"covered_lines"`
}

// CoverageReport is the testwise coverage of the latest solution build.
type CoverageReport struct {
	ExerciseID     int64           `json:"exercise_id"`
	SolutionCommit string          `json:"solution_commit,omitempty"`
	Entries        []CoverageEntry `json:"entries" validate:"dive"`
}

// TestCaseNames returns the distinct test case names in report order.
func (r *CoverageReport) TestCaseNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range r.Entries {
		if !seen[e.TestCaseName] {
			seen[e.TestCaseName] = true
			names = append(names, e.TestCaseName)
		}
	}
	return names
}

var validate = validator.New()

// Validate checks a report (or any struct with validate tags).
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}
	return nil
}

// NormalizePath cleans a repository-relative path so diff and coverage
// paths compare equal: forward slashes, no leading "./" or "/".
func NormalizePath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}
