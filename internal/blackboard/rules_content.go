package blackboard

import "strings"

// insertFileContents fills each block with its source text from the
// solution snapshot. Blocks of files missing from the snapshot, or that
// start past the end of the file, are dropped; an end past EOF is clamped.
type insertFileContents struct{}

func (insertFileContents) Name() string { return "insert-file-contents" }

func (insertFileContents) CanFire(bb *Blackboard) bool {
	for _, g := range bb.activeGroups() {
		for _, b := range g.Blocks {
			if !b.Enriched {
				return true
			}
		}
	}
	return false
}

func (insertFileContents) Fire(bb *Blackboard) bool {
	changed := false
	for _, g := range bb.activeGroups() {
		lines, ok := bb.lines(g.FilePath)
		kept := g.Blocks[:0]
		for _, b := range g.Blocks {
			if b.Enriched {
				kept = append(kept, b)
				continue
			}
			changed = true
			if !ok || b.Start > len(lines) {
				continue
			}
			if b.End > len(lines) {
				b.End = len(lines)
			}
			b.Content = strings.Join(lines[b.Start-1:b.End], "\n")
			b.Enriched = true
			kept = append(kept, b)
		}
		g.Blocks = kept
	}
	return changed
}
