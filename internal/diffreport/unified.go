// Package diffreport builds diff reports between the template and the
// solution of an exercise, either from `git diff` output or by comparing
// two file snapshots.
package diffreport

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/jensroland/git-solentry/internal/report"
)

const devNull = "/dev/null"

// hunkBuilder accumulates one run of removed/added lines and turns it into
// a DiffEntry when a context line (or the end of the hunk) is reached.
type hunkBuilder struct {
	filePath     string
	previousPath string
	entries      []report.DiffEntry

	newLine    int // next line number in the solution file
	addedStart int
	added      int
	removed    int
}

func (b *hunkBuilder) remove(n int) {
	b.removed += n
}

func (b *hunkBuilder) add(n int) {
	if b.added == 0 {
		b.addedStart = b.newLine
	}
	b.added += n
	b.newLine += n
}

func (b *hunkBuilder) keep(n int) {
	b.flush()
	b.newLine += n
}

func (b *hunkBuilder) flush() {
	switch {
	case b.added > 0:
		kind := report.Added
		if b.removed > 0 {
			kind = report.Modified
		}
		b.entries = append(b.entries, report.DiffEntry{
			FilePath:         b.filePath,
			PreviousFilePath: b.previousPath,
			StartLine:        b.addedStart,
			EndLine:          b.addedStart + b.added - 1,
			ChangeKind:       kind,
		})
	case b.removed > 0:
		anchor := b.newLine
		if anchor < 1 {
			anchor = 1
		}
		b.entries = append(b.entries, report.DiffEntry{
			FilePath:         b.filePath,
			PreviousFilePath: b.previousPath,
			StartLine:        anchor,
			EndLine:          anchor,
			ChangeKind:       report.Removed,
		})
	}
	b.added, b.removed, b.addedStart = 0, 0, 0
}

// ParseUnified converts `git diff template solution` output into diff
// entries. Each run of added lines becomes an ADDED entry, a run that
// replaces removed lines a MODIFIED entry and a pure deletion a REMOVED
// entry anchored at the following solution line.
func ParseUnified(text string) ([]report.DiffEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(text)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("parse unified diff: %w", err)
	}

	var entries []report.DiffEntry
	for _, fd := range fileDiffs {
		origName := stripPrefix(fd.OrigName)
		newName := stripPrefix(fd.NewName)

		b := &hunkBuilder{filePath: newName}
		switch {
		case newName == devNull || newName == "":
			// Deleted file: keep the old path so the entries stay addressable.
			b.filePath = origName
			b.previousPath = origName
		case origName != devNull && origName != "" && origName != newName:
			b.previousPath = origName
		}
		if b.filePath == "" || b.filePath == devNull {
			continue
		}

		for _, h := range fd.Hunks {
			b.newLine = int(h.NewStartLine)
			for _, line := range strings.Split(string(h.Body), "\n") {
				if line == "" {
					continue
				}
				switch line[0] {
				case '+':
					b.add(1)
				case '-':
					b.remove(1)
				case ' ':
					b.keep(1)
				case '\\':
					// "\ No newline at end of file"
				}
			}
			b.flush()
		}
		entries = append(entries, b.entries...)
	}

	sortEntries(entries)
	return entries, nil
}

// stripPrefix removes the a/ or b/ prefix git puts on diff paths.
func stripPrefix(name string) string {
	if name == devNull {
		return name
	}
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		name = name[2:]
	}
	return report.NormalizePath(name)
}

func sortEntries(entries []report.DiffEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].FilePath != entries[j].FilePath {
			return entries[i].FilePath < entries[j].FilePath
		}
		return entries[i].StartLine < entries[j].StartLine
	})
}
