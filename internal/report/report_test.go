package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadDiffReport(t *testing.T) {
	p := writeFile(t, "diff.json", `{
		"exercise_id": 7,
		"entries": [
			{"file_path": "./src/Foo.java", "start_line": 10, "end_line": 12, "change_kind": "MODIFIED"},
			{"file_path": "src/New.java", "previous_file_path": "src/Old.java", "start_line": 3, "end_line": 3, "change_kind": "ADDED"}
		]
	}`)

	r, err := LoadDiffReport(p)
	require.NoError(t, err)
	assert.Equal(t, int64(7), r.ExerciseID)
	require.Len(t, r.Entries, 2)
	assert.Equal(t, "src/Foo.java", r.Entries[0].FilePath)
	assert.Equal(t, []int{10, 11, 12}, r.Entries[0].Lines().Lines())
	assert.False(t, r.Entries[0].IsRename())
	assert.True(t, r.Entries[1].IsRename())
}

func TestLoadDiffReport_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"inverted_range", `{"entries":[{"file_path":"A.java","start_line":5,"end_line":4,"change_kind":"ADDED"}]}`},
		{"zero_start", `{"entries":[{"file_path":"A.java","start_line":0,"end_line":4,"change_kind":"ADDED"}]}`},
		{"unknown_kind", `{"entries":[{"file_path":"A.java","start_line":1,"end_line":4,"change_kind":"RENAMED"}]}`},
		{"missing_path", `{"entries":[{"start_line":1,"end_line":4,"change_kind":"ADDED"}]}`},
		{"bad_json", `{"entries":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDiffReport(writeFile(t, "diff.json", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadCoverageReport_Entries(t *testing.T) {
	p := writeFile(t, "coverage.json", `{
		"entries": [
			{"test_case": "testFoo", "file_path": "src/Foo.java", "covered_lines": "9-13"},
			{"test_case": "testFoo", "file_path": "src/Bar.java", "covered_lines": [1, 2, [5, 6]]},
			{"test_case": "testBar", "file_path": "src/Bar.java", "covered_lines": [{"start": 4, "end": 5}]}
		]
	}`)

	r, err := LoadCoverageReport(p, FormatEntries, "")
	require.NoError(t, err)
	require.Len(t, r.Entries, 3)
	assert.Equal(t, []int{9, 10, 11, 12, 13}, r.Entries[0].CoveredLines.Lines())
	assert.Equal(t, []int{1, 2, 5, 6}, r.Entries[1].CoveredLines.Lines())
	assert.Equal(t, []int{4, 5}, r.Entries[2].CoveredLines.Lines())
	assert.Equal(t, []string{"testFoo", "testBar"}, r.TestCaseNames())
}

func TestLoadCoverageReport_UnknownFormat(t *testing.T) {
	p := writeFile(t, "coverage.json", `{}`)
	_, err := LoadCoverageReport(p, "lcov", "")
	assert.ErrorContains(t, err, "unknown coverage format")
}

func TestParseTestwiseCoverage(t *testing.T) {
	data := []byte(`{
		"tests": [
			{
				"uniformPath": "de/tum/FooTest/testFoo()",
				"paths": [
					{"path": "de/tum", "files": [
						{"fileName": "Foo.java", "coveredLines": "9-13"},
						{"fileName": "Empty.java", "coveredLines": ""}
					]}
				]
			},
			{
				"uniformPath": "de/tum/BarTest/testBar(int)",
				"paths": [
					{"path": "de/tum/util", "files": [{"fileName": "Bar.java", "coveredLines": "1,3-4"}]}
				]
			}
		]
	}`)

	r, err := ParseTestwiseCoverage(data, "src")
	require.NoError(t, err)
	require.Len(t, r.Entries, 2)

	assert.Equal(t, "testFoo", r.Entries[0].TestCaseName)
	assert.Equal(t, "src/de/tum/Foo.java", r.Entries[0].FilePath)
	assert.Equal(t, "9-13", r.Entries[0].CoveredLines.String())

	assert.Equal(t, "testBar", r.Entries[1].TestCaseName)
	assert.Equal(t, "src/de/tum/util/Bar.java", r.Entries[1].FilePath)
	assert.Equal(t, []int{1, 3, 4}, r.Entries[1].CoveredLines.Lines())
}

func TestParseTestwiseCoverage_BadLines(t *testing.T) {
	data := []byte(`{"tests":[{"uniformPath":"T/testX()","paths":[{"path":"p","files":[{"fileName":"X.java","coveredLines":"4-2"}]}]}]}`)
	_, err := ParseTestwiseCoverage(data, "")
	assert.Error(t, err)
}

func TestTestCaseNameFromUniformPath(t *testing.T) {
	tests := map[string]string{
		"de/tum/FooTest/testFoo()":   "testFoo",
		"testBar()":                  "testBar",
		"a/b/testBaz(java.util.Map)": "testBaz",
		"plain":                      "plain",
		"":                           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, TestCaseNameFromUniformPath(in), in)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"./src/Foo.java":     "src/Foo.java",
		"/src/Foo.java":      "src/Foo.java",
		"src\\main\\A.java":  "src/main/A.java",
		"src//x/../Foo.java": "src/Foo.java",
		"":                   "",
		".":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePath(in), in)
	}
}

func TestDiffEntry_IsRename(t *testing.T) {
	tests := []struct {
		name       string
		file, prev string
		want       bool
	}{
		{"no previous path", "Foo.java", "", false},
		{"same path", "Foo.java", "Foo.java", false},
		{"same path after normalizing", "src/Foo.java", "./src/Foo.java", false},
		{"moved", "src/New.java", "src/Old.java", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := DiffEntry{FilePath: tt.file, PreviousFilePath: tt.prev, StartLine: 1, EndLine: 1, ChangeKind: Modified}
			assert.Equal(t, tt.want, e.IsRename())
		})
	}
}
