package blackboard

// combineChangeBlocks merges overlapping or adjacent blocks of a group.
// A merged block is confirmed if either part was, and must be enriched
// again if its range grew. Once candidates have been added, candidate
// blocks that did not merge into a confirmed one are discarded.
type combineChangeBlocks struct{}

func (combineChangeBlocks) Name() string { return "combine-change-blocks" }

func (combineChangeBlocks) CanFire(bb *Blackboard) bool {
	for _, g := range bb.activeGroups() {
		if needsCombine(g) {
			return true
		}
	}
	return false
}

func (combineChangeBlocks) Fire(bb *Blackboard) bool {
	changed := false
	for _, g := range bb.activeGroups() {
		if !needsCombine(g) {
			continue
		}
		g.Blocks = mergeBlocks(g.Blocks)
		if g.CandidatesAdded {
			g.Blocks = dropIsolatedCandidates(g.Blocks)
		}
		changed = true
	}
	return changed
}

func needsCombine(g *GroupedFile) bool {
	if len(g.Blocks) == 0 {
		return false
	}
	if !blocksSorted(g.Blocks) || hasMergeable(g.Blocks) {
		return true
	}
	return g.CandidatesAdded && hasIsolatedCandidate(g.Blocks)
}

// hasMergeable expects blocks sorted by start line.
func hasMergeable(blocks []ChangeBlock) bool {
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Start <= blocks[i-1].End+1 {
			return true
		}
	}
	return false
}

func hasIsolatedCandidate(blocks []ChangeBlock) bool {
	for _, b := range blocks {
		if !b.Confirmed {
			return true
		}
	}
	return false
}

func mergeBlocks(blocks []ChangeBlock) []ChangeBlock {
	sorted := append([]ChangeBlock(nil), blocks...)
	sortBlocks(sorted)

	merged := make([]ChangeBlock, 0, len(sorted))
	for _, b := range sorted {
		if len(merged) == 0 {
			merged = append(merged, b)
			continue
		}
		last := &merged[len(merged)-1]
		if b.Start > last.End+1 {
			merged = append(merged, b)
			continue
		}
		if b.End > last.End {
			last.End = b.End
			last.Enriched = false
			last.Content = ""
		}
		last.Confirmed = last.Confirmed || b.Confirmed
	}
	return merged
}

func dropIsolatedCandidates(blocks []ChangeBlock) []ChangeBlock {
	kept := blocks[:0]
	for _, b := range blocks {
		if b.Confirmed {
			kept = append(kept, b)
		}
	}
	return kept
}
