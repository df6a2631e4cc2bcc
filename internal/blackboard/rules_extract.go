package blackboard

import "github.com/jensroland/git-solentry/internal/lineset"

// extractCoveredLines unions the covered lines of a group's coverage
// entries.
type extractCoveredLines struct{}

func (extractCoveredLines) Name() string { return "extract-covered-lines" }

func (extractCoveredLines) CanFire(bb *Blackboard) bool {
	for _, g := range bb.activeGroups() {
		if !g.CoveredExtracted {
			return true
		}
	}
	return false
}

func (extractCoveredLines) Fire(bb *Blackboard) bool {
	changed := false
	for _, g := range bb.activeGroups() {
		if g.CoveredExtracted {
			continue
		}
		covered := lineset.New()
		for _, c := range g.CoverageEntries {
			covered = covered.Union(c.CoveredLines)
		}
		g.CoveredLines = covered
		g.CoveredExtracted = true
		changed = true
	}
	return changed
}

// extractChangedLines unions the line ranges of a group's diff entries.
type extractChangedLines struct{}

func (extractChangedLines) Name() string { return "extract-changed-lines" }

func (extractChangedLines) CanFire(bb *Blackboard) bool {
	for _, g := range bb.activeGroups() {
		if !g.ChangedExtracted {
			return true
		}
	}
	return false
}

func (extractChangedLines) Fire(bb *Blackboard) bool {
	changed := false
	for _, g := range bb.activeGroups() {
		if g.ChangedExtracted {
			continue
		}
		lines := lineset.New()
		for _, d := range g.DiffEntries {
			lines = lines.Union(d.Lines())
		}
		g.ChangedLines = lines
		g.ChangedExtracted = true
		changed = true
	}
	return changed
}
