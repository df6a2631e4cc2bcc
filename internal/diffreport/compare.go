package diffreport

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/jensroland/git-solentry/internal/report"
)

// Compare diffs two path→content snapshots line by line. Files only in the
// solution are ADDED in full, files only in the template are REMOVED.
// Renames are not detected; use ParseUnified on git output for that.
func Compare(template, solution map[string]string) []report.DiffEntry {
	paths := make(map[string]bool)
	for p := range template {
		paths[p] = true
	}
	for p := range solution {
		paths[p] = true
	}
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	dmp := diffmatchpatch.New()

	var entries []report.DiffEntry
	for _, p := range sorted {
		oldText, inTemplate := template[p]
		newText, inSolution := solution[p]
		if inTemplate && inSolution && oldText == newText {
			continue
		}

		b := &hunkBuilder{filePath: report.NormalizePath(p), newLine: 1}
		if !inSolution {
			b.previousPath = b.filePath
		}

		a, c, lines := dmp.DiffLinesToChars(oldText, newText)
		diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, c, false), lines)
		for _, d := range diffs {
			n := countLines(d.Text)
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				b.keep(n)
			case diffmatchpatch.DiffDelete:
				b.remove(n)
			case diffmatchpatch.DiffInsert:
				b.add(n)
			}
		}
		b.flush()
		entries = append(entries, b.entries...)
	}

	sortEntries(entries)
	return entries
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
