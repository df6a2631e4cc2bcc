package blackboard

import (
	"sort"

	"github.com/jensroland/git-solentry/internal/report"
)

// dropRemovedDiffEntries discards REMOVED hunks: deleted code has no lines
// left in the solution to attribute to a test.
type dropRemovedDiffEntries struct{}

func (dropRemovedDiffEntries) Name() string { return "drop-removed-diff-entries" }

func (dropRemovedDiffEntries) CanFire(bb *Blackboard) bool {
	for _, e := range bb.DiffEntries {
		if e.ChangeKind == report.Removed {
			return true
		}
	}
	return false
}

func (dropRemovedDiffEntries) Fire(bb *Blackboard) bool {
	kept := bb.DiffEntries[:0]
	dropped := 0
	for _, e := range bb.DiffEntries {
		if e.ChangeKind == report.Removed {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	bb.DiffEntries = kept
	return dropped > 0
}

// groupByFileAndTestCase creates one GroupedFile per (file, test case)
// pair that has both diff entries and coverage entries.
type groupByFileAndTestCase struct{}

func (groupByFileAndTestCase) Name() string { return "group-by-file-and-test-case" }

func (groupByFileAndTestCase) CanFire(bb *Blackboard) bool {
	return len(pendingGroups(bb)) > 0
}

func (groupByFileAndTestCase) Fire(bb *Blackboard) bool {
	pending := pendingGroups(bb)
	bb.GroupedFiles = append(bb.GroupedFiles, pending...)
	sort.SliceStable(bb.GroupedFiles, func(i, j int) bool {
		a, b := bb.GroupedFiles[i], bb.GroupedFiles[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.TestCaseName < b.TestCaseName
	})
	return len(pending) > 0
}

// pendingGroups computes the groups that the current diff and coverage
// entries call for but that do not exist yet.
func pendingGroups(bb *Blackboard) []*GroupedFile {
	existing := make(map[groupKey]bool, len(bb.GroupedFiles))
	for _, g := range bb.GroupedFiles {
		existing[g.key()] = true
	}

	diffsByFile := make(map[string][]report.DiffEntry)
	for _, e := range bb.DiffEntries {
		if e.ChangeKind == report.Removed {
			continue
		}
		p := report.NormalizePath(e.FilePath)
		diffsByFile[p] = append(diffsByFile[p], e)
	}
	if len(diffsByFile) == 0 {
		return nil
	}

	var order []groupKey
	coverage := make(map[groupKey][]report.CoverageEntry)
	for _, c := range bb.CoverageReport.Entries {
		k := groupKey{file: report.NormalizePath(c.FilePath), testCase: c.TestCaseName}
		if _, ok := diffsByFile[k.file]; !ok || existing[k] {
			continue
		}
		if _, seen := coverage[k]; !seen {
			order = append(order, k)
		}
		coverage[k] = append(coverage[k], c)
	}

	groups := make([]*GroupedFile, 0, len(order))
	for _, k := range order {
		diffs := diffsByFile[k.file]
		g := &GroupedFile{
			FilePath:        k.file,
			TestCaseName:    k.testCase,
			DiffEntries:     append([]report.DiffEntry(nil), diffs...),
			CoverageEntries: coverage[k],
		}
		for _, d := range diffs {
			if d.IsRename() {
				g.PreviousFilePath = report.NormalizePath(d.PreviousFilePath)
				break
			}
		}
		groups = append(groups, g)
	}
	return groups
}
