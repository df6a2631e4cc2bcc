package blackboard

import "github.com/jensroland/git-solentry/internal/lineset"

// findCommonLines intersects the changed and covered lines of a group:
// code the solution introduced that the test actually executed.
type findCommonLines struct{}

func (findCommonLines) Name() string { return "find-common-lines" }

func (findCommonLines) CanFire(bb *Blackboard) bool {
	for _, g := range bb.activeGroups() {
		if !g.CommonFound && g.ChangedExtracted && g.CoveredExtracted {
			return true
		}
	}
	return false
}

func (findCommonLines) Fire(bb *Blackboard) bool {
	changed := false
	for _, g := range bb.activeGroups() {
		if g.CommonFound || !g.ChangedExtracted || !g.CoveredExtracted {
			continue
		}
		g.CommonLines = g.ChangedLines.Intersect(g.CoveredLines)
		g.CommonFound = true
		changed = true
	}
	return changed
}

// createCommonChangeBlocks turns each maximal run of common lines into a
// confirmed change block.
type createCommonChangeBlocks struct{}

func (createCommonChangeBlocks) Name() string { return "create-common-change-blocks" }

func (createCommonChangeBlocks) CanFire(bb *Blackboard) bool {
	for _, g := range bb.activeGroups() {
		if g.CommonFound && !g.BlocksCreated {
			return true
		}
	}
	return false
}

func (createCommonChangeBlocks) Fire(bb *Blackboard) bool {
	changed := false
	for _, g := range bb.activeGroups() {
		if !g.CommonFound || g.BlocksCreated {
			continue
		}
		for _, r := range g.CommonLines.Ranges() {
			g.Blocks = append(g.Blocks, ChangeBlock{Start: r.Start, End: r.End, Confirmed: true})
		}
		g.BlocksCreated = true
		changed = true
	}
	return changed
}

// addUncoveredCandidates pulls changed lines the coverage tool did not
// report (closing braces, blank lines, declarations) into the result when
// they sit within CandidateDistance lines of a confirmed block. Runs once
// per group, against the blocks created from common lines only.
type addUncoveredCandidates struct{}

func (addUncoveredCandidates) Name() string { return "add-uncovered-candidates" }

func (addUncoveredCandidates) CanFire(bb *Blackboard) bool {
	for _, g := range bb.activeGroups() {
		if g.BlocksCreated && !g.CandidatesAdded {
			return true
		}
	}
	return false
}

func (addUncoveredCandidates) Fire(bb *Blackboard) bool {
	changed := false
	for _, g := range bb.activeGroups() {
		if !g.BlocksCreated || g.CandidatesAdded {
			continue
		}
		candidates := candidateLines(g, bb.CandidateDistance)
		for _, r := range candidates.Ranges() {
			g.Blocks = append(g.Blocks, ChangeBlock{Start: r.Start, End: r.End})
		}
		g.CandidatesAdded = true
		changed = true
	}
	return changed
}

// candidateLines walks outward from every confirmed block and collects
// consecutive changed-but-uncovered lines, up to distance lines per side.
func candidateLines(g *GroupedFile, distance int) lineset.LineSet {
	uncovered := g.ChangedLines.Difference(g.CoveredLines)
	if uncovered.IsEmpty() || distance <= 0 {
		return lineset.New()
	}
	var lines []int
	for _, b := range g.Blocks {
		if !b.Confirmed {
			continue
		}
		for d := 1; d <= distance && uncovered.Contains(b.Start-d); d++ {
			lines = append(lines, b.Start-d)
		}
		for d := 1; d <= distance && uncovered.Contains(b.End+d); d++ {
			lines = append(lines, b.End+d)
		}
	}
	return lineset.New(lines...)
}
