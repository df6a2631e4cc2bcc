package format

import (
	"fmt"
	"strings"

	"github.com/jensroland/git-solentry/internal/record"
)

// Match tells whether a stored entry still matches the solution.
type Match string

const (
	MatchExact   Match = "exact"
	MatchChanged Match = "changed"
	MatchUnknown Match = "unknown"
)

// CurrentCode returns the solution's text for the entry's lines, or false
// if the file is gone or now shorter than the entry.
func CurrentCode(e record.SolutionEntry, files map[string]string) (string, bool) {
	content, ok := files[e.FilePath]
	if !ok {
		return "", false
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if e.StartLine < 1 || e.EndLine > len(lines) || e.StartLine > e.EndLine {
		return "", false
	}
	return strings.Join(lines[e.StartLine-1:e.EndLine], "\n"), true
}

// CheckMatch compares the entry's content hash with the current solution.
func CheckMatch(e record.SolutionEntry, files map[string]string) Match {
	if files == nil {
		return MatchUnknown
	}
	current, ok := CurrentCode(e, files)
	if !ok {
		return MatchChanged
	}
	hash := e.ContentHash
	if hash == "" {
		hash = record.ContentHash(e.Code)
	}
	if record.ContentHash(current) == hash {
		return MatchExact
	}
	return MatchChanged
}

func lineLabel(e record.SolutionEntry) string {
	if e.StartLine == e.EndLine {
		return fmt.Sprintf("L%d", e.StartLine)
	}
	return fmt.Sprintf("L%d-%d", e.StartLine, e.EndLine)
}

// FormatEntry formats a solution entry for terminal output. With verbose
// the code is shown in full, otherwise as a one-line preview.
func FormatEntry(e record.SolutionEntry, m Match, verbose bool) string {
	indicator := ""
	if mark := matchMark(m); mark != "" {
		indicator = " " + mark
	}

	header := Dim + fmt.Sprintf("#%d", e.ID) + Reset + " " + Cyan + e.TestCaseName + Reset +
		"  " + Bold + e.FilePath + Reset + " " + Dim + lineLabel(e) + Reset + indicator
	parts := []string{header}

	if e.PreviousFilePath != "" && e.PreviousFilePath != e.FilePath {
		parts = append(parts, fmt.Sprintf("  %sRenamed from:%s %s", Magenta, Reset, e.PreviousFilePath))
	}

	if !verbose {
		if preview := record.Preview(e.Code, 100); preview != "" {
			parts = append(parts, "  "+Dim+preview+Reset)
		}
		return strings.Join(parts, "\n")
	}

	parts = append(parts, FormatCodeBox(e.Code, e.FilePath, e.StartLine))
	if e.ContentHash != "" {
		parts = append(parts, fmt.Sprintf("  %sHash:      %s%s", Dim, e.ContentHash, Reset))
	}
	if e.TestCaseID != 0 {
		parts = append(parts, fmt.Sprintf("  %sTest case: #%d%s", Dim, e.TestCaseID, Reset))
	}
	return strings.Join(parts, "\n")
}

// EntryToJSON converts an entry to a JSON-serializable map.
func EntryToJSON(e record.SolutionEntry, m Match) map[string]interface{} {
	d := map[string]interface{}{
		"id":           e.ID,
		"exercise_id":  e.ExerciseID,
		"test_case_id": e.TestCaseID,
		"test_case":    e.TestCaseName,
		"file_path":    e.FilePath,
		"lines":        lineLabel(e)[1:],
		"start_line":   e.StartLine,
		"end_line":     e.EndLine,
		"code":         e.Code,
		"content_hash": e.ContentHash,
		"match":        string(m),
	}
	if e.PreviousFilePath != "" {
		d["previous_file_path"] = e.PreviousFilePath
	}
	return d
}
