package blackboard

import (
	"github.com/jensroland/git-solentry/internal/lineset"
	"github.com/jensroland/git-solentry/internal/record"
)

// createSolutionEntries emits one solution entry per confirmed block once
// a group has settled: candidates added, every block enriched and nothing
// left to merge. The group's working state is released afterwards.
type createSolutionEntries struct{}

func (createSolutionEntries) Name() string { return "create-solution-entries" }

func (createSolutionEntries) CanFire(bb *Blackboard) bool {
	for _, g := range bb.activeGroups() {
		if settled(g) {
			return true
		}
	}
	return false
}

func (createSolutionEntries) Fire(bb *Blackboard) bool {
	changed := false
	for _, g := range bb.activeGroups() {
		if !settled(g) {
			continue
		}
		for _, b := range g.Blocks {
			if !b.Confirmed {
				continue
			}
			bb.SolutionEntries = append(bb.SolutionEntries, record.SolutionEntry{
				TestCaseName:     g.TestCaseName,
				FilePath:         g.FilePath,
				PreviousFilePath: g.PreviousFilePath,
				StartLine:        b.Start,
				EndLine:          b.End,
				Code:             b.Content,
				ContentHash:      record.ContentHash(b.Content),
			})
		}
		g.Finalized = true
		g.Blocks = nil
		g.CommonLines = lineset.New()
		changed = true
	}
	return changed
}

func settled(g *GroupedFile) bool {
	if g.Finalized || !g.CandidatesAdded {
		return false
	}
	for _, b := range g.Blocks {
		if !b.Enriched {
			return false
		}
	}
	return !needsCombine(g)
}
