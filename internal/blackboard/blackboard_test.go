package blackboard

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jensroland/git-solentry/internal/lineset"
	"github.com/jensroland/git-solentry/internal/record"
	"github.com/jensroland/git-solentry/internal/report"
)

// numberedFile returns a file whose line i reads "line i".
func numberedFile(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func diffReport(entries ...report.DiffEntry) *report.DiffReport {
	return &report.DiffReport{ExerciseID: 1, Entries: entries}
}

func coverageReport(entries ...report.CoverageEntry) *report.CoverageReport {
	return &report.CoverageReport{ExerciseID: 1, Entries: entries}
}

func modified(file string, start, end int) report.DiffEntry {
	return report.DiffEntry{FilePath: file, StartLine: start, EndLine: end, ChangeKind: report.Modified}
}

func covered(test, file string, start, end int) report.CoverageEntry {
	return report.CoverageEntry{TestCaseName: test, FilePath: file, CoveredLines: lineset.FromRange(start, end)}
}

func run(t *testing.T, bb *Blackboard) []record.SolutionEntry {
	t.Helper()
	entries, err := NewController().Run(bb)
	require.NoError(t, err)
	return entries
}

func TestRun_ModifiedAndCovered(t *testing.T) {
	lines := strings.Split(strings.TrimSuffix(numberedFile(15), "\n"), "\n")
	lines[9], lines[10], lines[11] = "int inc() {", "    return x+1;", "}"
	files := map[string]string{"Foo.java": strings.Join(lines, "\n") + "\n"}

	bb := New(
		diffReport(modified("Foo.java", 10, 12)),
		coverageReport(covered("testFoo", "Foo.java", 9, 13)),
		files,
	)
	entries := run(t, bb)

	want := []record.SolutionEntry{{
		TestCaseName: "testFoo",
		FilePath:     "Foo.java",
		StartLine:    10,
		EndLine:      12,
		Code:         "int inc() {\n    return x+1;\n}",
		ContentHash:  record.ContentHash("int inc() {\n    return x+1;\n}"),
	}}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_NoCoverageForFile(t *testing.T) {
	bb := New(
		diffReport(modified("Bar.java", 5, 6)),
		coverageReport(covered("testFoo", "Foo.java", 1, 3)),
		map[string]string{"Bar.java": numberedFile(10), "Foo.java": numberedFile(10)},
	)
	entries := run(t, bb)
	assert.Empty(t, entries)
	assert.Empty(t, bb.GroupedFiles)
}

func TestRun_EmptyInputs(t *testing.T) {
	bb := New(nil, nil, nil)
	entries := run(t, bb)
	assert.Empty(t, entries)
	assert.Equal(t, 1, bb.Passes)
}

func TestRun_ConvergesInThreePasses(t *testing.T) {
	bb := New(
		diffReport(modified("A.java", 3, 6)),
		coverageReport(covered("t1", "A.java", 4, 5)),
		map[string]string{"A.java": numberedFile(10)},
	)
	run(t, bb)
	assert.Equal(t, 3, bb.Passes)
}

func TestRun_RemovedEntriesIgnored(t *testing.T) {
	bb := New(
		diffReport(
			report.DiffEntry{FilePath: "A.java", StartLine: 4, EndLine: 4, ChangeKind: report.Removed},
			report.DiffEntry{FilePath: "B.java", StartLine: 2, EndLine: 2, ChangeKind: report.Removed},
		),
		coverageReport(covered("t1", "A.java", 1, 10), covered("t1", "B.java", 1, 10)),
		map[string]string{"A.java": numberedFile(10), "B.java": numberedFile(10)},
	)
	entries := run(t, bb)
	assert.Empty(t, entries)
	assert.Empty(t, bb.DiffEntries)
	assert.Len(t, bb.DiffReport.Entries, 2, "input report must not be modified")
}

func TestRun_OneEntryPerTestCase(t *testing.T) {
	bb := New(
		diffReport(modified("A.java", 2, 3), modified("A.java", 8, 8)),
		coverageReport(
			covered("alpha", "A.java", 1, 4),
			covered("beta", "A.java", 7, 9),
			covered("beta", "A.java", 3, 3),
		),
		map[string]string{"A.java": numberedFile(10)},
	)
	entries := run(t, bb)

	type span struct {
		test       string
		start, end int
	}
	var got []span
	for _, e := range entries {
		got = append(got, span{e.TestCaseName, e.StartLine, e.EndLine})
	}
	// beta: line 3 is covered, line 2 is pulled in as an adjacent candidate.
	want := []span{{"alpha", 2, 3}, {"beta", 2, 3}, {"beta", 8, 8}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(span{})); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_AdjacentUncoveredLinesJoinBlock(t *testing.T) {
	// Changed 3-9, covered 5-6. Only 4 and 7 are within one line.
	bb := New(
		diffReport(modified("A.java", 3, 9)),
		coverageReport(covered("t1", "A.java", 5, 6)),
		map[string]string{"A.java": numberedFile(12)},
	)
	entries := run(t, bb)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].StartLine)
	assert.Equal(t, 7, entries[0].EndLine)
	assert.Equal(t, "line 4\nline 5\nline 6\nline 7", entries[0].Code)
}

func TestRun_CandidateDistance(t *testing.T) {
	bb := New(
		diffReport(modified("A.java", 3, 9)),
		coverageReport(covered("t1", "A.java", 5, 6)),
		map[string]string{"A.java": numberedFile(12)},
		WithCandidateDistance(2),
	)
	entries := run(t, bb)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].StartLine)
	assert.Equal(t, 8, entries[0].EndLine)

	bb = New(
		diffReport(modified("A.java", 3, 9)),
		coverageReport(covered("t1", "A.java", 5, 6)),
		map[string]string{"A.java": numberedFile(12)},
		WithCandidateDistance(0),
	)
	entries = run(t, bb)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].StartLine)
	assert.Equal(t, 6, entries[0].EndLine)
}

func TestRun_GapBridgedByCandidate(t *testing.T) {
	// Line 6 is changed but not covered and sits between two covered runs.
	cov := report.CoverageEntry{TestCaseName: "t1", FilePath: "A.java", CoveredLines: lineset.New(4, 5, 7, 8)}
	bb := New(
		diffReport(modified("A.java", 4, 8)),
		coverageReport(cov),
		map[string]string{"A.java": numberedFile(10)},
	)
	entries := run(t, bb)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].StartLine)
	assert.Equal(t, 8, entries[0].EndLine)
}

func TestRun_RenamePropagates(t *testing.T) {
	bb := New(
		diffReport(report.DiffEntry{FilePath: "src/New.java", PreviousFilePath: "src/Old.java", StartLine: 2, EndLine: 2, ChangeKind: report.Added}),
		coverageReport(covered("t1", "src/New.java", 1, 3)),
		map[string]string{"src/New.java": numberedFile(3)},
	)
	entries := run(t, bb)
	require.Len(t, entries, 1)
	assert.Equal(t, "src/Old.java", entries[0].PreviousFilePath)
	assert.Equal(t, "line 2", entries[0].Code)
}

func TestRun_SamePreviousPathIsNotARename(t *testing.T) {
	unchanged := modified("Foo.java", 10, 12)
	unchanged.PreviousFilePath = "./Foo.java"

	bb := New(
		diffReport(unchanged),
		coverageReport(covered("testFoo", "Foo.java", 9, 13)),
		map[string]string{"Foo.java": numberedFile(15)},
	)
	entries := run(t, bb)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].PreviousFilePath)
	assert.Equal(t, 10, entries[0].StartLine)
	assert.Equal(t, 12, entries[0].EndLine)
	assert.Empty(t, bb.GroupedFiles[0].PreviousFilePath)
}

func TestRun_MissingFileDropsBlocks(t *testing.T) {
	bb := New(
		diffReport(modified("A.java", 2, 3)),
		coverageReport(covered("t1", "A.java", 2, 3)),
		map[string]string{},
	)
	entries := run(t, bb)
	assert.Empty(t, entries)
	require.Len(t, bb.GroupedFiles, 1)
	assert.True(t, bb.GroupedFiles[0].Finalized)
}

func TestRun_ClampsToEndOfFile(t *testing.T) {
	bb := New(
		diffReport(modified("A.java", 2, 10), modified("A.java", 20, 22)),
		coverageReport(covered("t1", "A.java", 1, 30)),
		map[string]string{"A.java": numberedFile(4)},
	)
	entries := run(t, bb)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].StartLine)
	assert.Equal(t, 4, entries[0].EndLine)
}

func TestRun_PathsNormalized(t *testing.T) {
	bb := New(
		diffReport(modified("./src/A.java", 1, 1)),
		coverageReport(covered("t1", "src\\A.java", 1, 1)),
		map[string]string{"/src/A.java": "only\n"},
	)
	entries := run(t, bb)
	require.Len(t, entries, 1)
	assert.Equal(t, "src/A.java", entries[0].FilePath)
	assert.Equal(t, "only", entries[0].Code)
}

func TestRun_Properties(t *testing.T) {
	diff := diffReport(
		modified("A.java", 2, 6),
		modified("A.java", 12, 14),
		report.DiffEntry{FilePath: "A.java", StartLine: 18, EndLine: 18, ChangeKind: report.Removed},
		modified("B.java", 1, 3),
	)
	cov := coverageReport(
		covered("t1", "A.java", 1, 4),
		covered("t1", "A.java", 13, 20),
		covered("t2", "A.java", 5, 12),
		covered("t2", "B.java", 2, 2),
		covered("t3", "C.java", 1, 5),
	)
	files := map[string]string{"A.java": numberedFile(20), "B.java": numberedFile(5), "C.java": numberedFile(5)}

	first := run(t, New(diff, cov, files))
	second := run(t, New(diff, cov, files))
	if d := cmp.Diff(first, second); d != "" {
		t.Fatalf("runs differ (-first +second):\n%s", d)
	}
	require.NotEmpty(t, first)

	changed := map[string]lineset.LineSet{
		"A.java": lineset.FromRanges(lineset.Range{Start: 2, End: 6}, lineset.Range{Start: 12, End: 14}),
		"B.java": lineset.FromRange(1, 3),
	}
	coveredBy := map[string]lineset.LineSet{}
	for _, c := range cov.Entries {
		k := c.TestCaseName + "|" + c.FilePath
		coveredBy[k] = coveredBy[k].Union(c.CoveredLines)
	}

	for i, e := range first {
		lines := e.Lines()
		assert.Equal(t, lines, lines.Intersect(changed[e.FilePath]), "entry %d has unchanged lines", i)

		hit := coveredBy[e.TestCaseName+"|"+e.FilePath]
		assert.False(t, lines.Intersect(hit).IsEmpty(), "entry %d has no covered line", i)
		for _, l := range lines.Difference(hit).Lines() {
			near := hit.Contains(l-1) || hit.Contains(l+1)
			assert.True(t, near, "entry %d: uncovered line %d not adjacent to covered code", i, l)
		}
		assert.NotContains(t, lines.Lines(), 18, "removed hunk leaked into entry %d", i)

		for j := i + 1; j < len(first); j++ {
			assert.False(t, e.Overlaps(first[j]), "entries %d and %d overlap", i, j)
		}
	}
}

type flipRule struct{ name string }

func (r flipRule) Name() string                { return r.name }
func (r flipRule) CanFire(bb *Blackboard) bool { return true }
func (r flipRule) Fire(bb *Blackboard) bool {
	bb.CandidateDistance = 1 - bb.CandidateDistance
	return true
}

func TestRun_Stuck(t *testing.T) {
	bb := New(diffReport(modified("A.java", 1, 1)), nil, nil)
	bb.SolutionEntries = []record.SolutionEntry{{FilePath: "A.java"}}

	entries, err := NewController(WithRules(flipRule{"flip"}, flipRule{"flop"})).Run(bb)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStuck))
	assert.Nil(t, entries)
	assert.Equal(t, MaxPasses, bb.Passes)
}

func TestRun_CustomRuleThatSettles(t *testing.T) {
	calls := 0
	r := &countingRule{limit: 5, calls: &calls}
	bb := New(nil, nil, nil)
	_, err := NewController(WithRules(r)).Run(bb)
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, 6, bb.Passes)
}

type countingRule struct {
	limit int
	calls *int
}

func (r *countingRule) Name() string                { return "count" }
func (r *countingRule) CanFire(bb *Blackboard) bool { return *r.calls < r.limit }
func (r *countingRule) Fire(bb *Blackboard) bool {
	*r.calls++
	return true
}

func TestCombine_MergesAdjacentAndOverlapping(t *testing.T) {
	g := &GroupedFile{
		Blocks: []ChangeBlock{
			{Start: 10, End: 12, Confirmed: true, Enriched: true, Content: "x"},
			{Start: 3, End: 4, Confirmed: true, Enriched: true},
			{Start: 5, End: 5},
			{Start: 11, End: 14, Enriched: true},
		},
	}
	bb := &Blackboard{GroupedFiles: []*GroupedFile{g}}
	rule := combineChangeBlocks{}

	require.True(t, rule.CanFire(bb))
	require.True(t, rule.Fire(bb))
	assert.Equal(t, []ChangeBlock{
		{Start: 3, End: 5, Confirmed: true},
		{Start: 10, End: 14, Confirmed: true},
	}, g.Blocks)
	assert.False(t, rule.CanFire(bb))
}

func TestCombine_DropsIsolatedCandidatesAfterCandidateStep(t *testing.T) {
	g := &GroupedFile{
		CandidatesAdded: true,
		Blocks: []ChangeBlock{
			{Start: 1, End: 2, Confirmed: true, Enriched: true},
			{Start: 8, End: 8, Enriched: true},
		},
	}
	bb := &Blackboard{GroupedFiles: []*GroupedFile{g}}
	rule := combineChangeBlocks{}

	require.True(t, rule.CanFire(bb))
	rule.Fire(bb)
	assert.Equal(t, []ChangeBlock{{Start: 1, End: 2, Confirmed: true, Enriched: true}}, g.Blocks)
}

func TestGrouping_PreviousPathFromFirstRename(t *testing.T) {
	bb := New(
		diffReport(
			modified("A.java", 1, 1),
			report.DiffEntry{FilePath: "A.java", PreviousFilePath: "Old.java", StartLine: 5, EndLine: 5, ChangeKind: report.Added},
		),
		coverageReport(covered("t2", "A.java", 1, 5), covered("t1", "A.java", 1, 5)),
		nil,
	)
	rule := groupByFileAndTestCase{}
	require.True(t, rule.CanFire(bb))
	require.True(t, rule.Fire(bb))
	require.Len(t, bb.GroupedFiles, 2)
	assert.Equal(t, "t1", bb.GroupedFiles[0].TestCaseName)
	assert.Equal(t, "Old.java", bb.GroupedFiles[0].PreviousFilePath)
	assert.Len(t, bb.GroupedFiles[0].DiffEntries, 2)
	assert.False(t, rule.CanFire(bb))
}

func TestBlackboardLines(t *testing.T) {
	bb := New(nil, nil, map[string]string{"a": "x\r\ny\n", "b": "", "c": "no newline"})

	lines, ok := bb.lines("a")
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, lines)

	lines, ok = bb.lines("b")
	require.True(t, ok)
	assert.Empty(t, lines)

	lines, ok = bb.lines("c")
	require.True(t, ok)
	assert.Equal(t, []string{"no newline"}, lines)

	_, ok = bb.lines("missing")
	assert.False(t, ok)
}

func TestRun_LogsSummaryAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	bb := New(
		diffReport(modified("Foo.java", 10, 12)),
		coverageReport(covered("testFoo", "Foo.java", 9, 13)),
		map[string]string{"Foo.java": numberedFile(15)},
	)
	_, err := NewController(WithLogger(logger)).Run(bb)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, fmt.Sprintf(`"passes":%d`, bb.Passes))
	assert.Contains(t, out, `"entries":1`)
	assert.NotContains(t, out, "rule fired", "per-rule events stay at debug level")
}
