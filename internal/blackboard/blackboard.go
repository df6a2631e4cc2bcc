// Package blackboard implements the rule engine that reconciles a
// template→solution diff with testwise coverage. Rules read and update a
// shared Blackboard until none of them can make progress; the surviving
// change blocks become solution entries.
package blackboard

import (
	"sort"
	"strings"

	"github.com/jensroland/git-solentry/internal/lineset"
	"github.com/jensroland/git-solentry/internal/record"
	"github.com/jensroland/git-solentry/internal/report"
)

// DefaultCandidateDistance is how far (in lines) an uncovered changed line
// may be from a confirmed block to be pulled into it.
const DefaultCandidateDistance = 1

// ChangeBlock is a contiguous line range [Start, End] of one work unit.
// Confirmed blocks are both changed and covered; candidates are changed
// lines that only ride along with a confirmed neighbor.
type ChangeBlock struct {
	Start     int
	End       int
	Confirmed bool
	Content   string
	Enriched  bool
}

// Lines returns the lines of the block.
func (b ChangeBlock) Lines() lineset.LineSet {
	return lineset.FromRange(b.Start, b.End)
}

// GroupedFile is the work unit for one (file, test case) pair. The boolean
// markers record which rules have already processed it, so every rule's
// firing condition is a pure function of blackboard state.
type GroupedFile struct {
	FilePath         string
	PreviousFilePath string
	TestCaseName     string

	DiffEntries     []report.DiffEntry
	CoverageEntries []report.CoverageEntry

	ChangedLines lineset.LineSet
	CoveredLines lineset.LineSet
	CommonLines  lineset.LineSet
	Blocks       []ChangeBlock

	ChangedExtracted bool
	CoveredExtracted bool
	CommonFound      bool
	BlocksCreated    bool
	CandidatesAdded  bool
	Finalized        bool
}

type groupKey struct {
	file     string
	testCase string
}

func (g *GroupedFile) key() groupKey {
	return groupKey{file: g.FilePath, testCase: g.TestCaseName}
}

// Blackboard is the shared workspace of one generation run. It must not be
// reused across runs or shared between goroutines.
type Blackboard struct {
	DiffReport     *report.DiffReport
	CoverageReport *report.CoverageReport
	Files          map[string]string

	// DiffEntries is the working copy of the diff report's entries.
	DiffEntries     []report.DiffEntry
	GroupedFiles    []*GroupedFile
	SolutionEntries []record.SolutionEntry

	CandidateDistance int
	Passes            int

	fileLines map[string][]string
}

// BoardOption configures a Blackboard.
type BoardOption func(*Blackboard)

// WithCandidateDistance sets how far uncovered changed lines may be from a
// confirmed block. Values below 0 are treated as 0 (no candidates).
func WithCandidateDistance(n int) BoardOption {
	return func(bb *Blackboard) {
		if n < 0 {
			n = 0
		}
		bb.CandidateDistance = n
	}
}

// New creates a blackboard from the three immutable inputs. files maps
// repository-relative paths to the solution's file contents.
func New(diff *report.DiffReport, coverage *report.CoverageReport, files map[string]string, opts ...BoardOption) *Blackboard {
	if diff == nil {
		diff = &report.DiffReport{}
	}
	if coverage == nil {
		coverage = &report.CoverageReport{}
	}

	normalized := make(map[string]string, len(files))
	for p, content := range files {
		normalized[report.NormalizePath(p)] = content
	}

	bb := &Blackboard{
		DiffReport:        diff,
		CoverageReport:    coverage,
		Files:             normalized,
		DiffEntries:       append([]report.DiffEntry(nil), diff.Entries...),
		CandidateDistance: DefaultCandidateDistance,
		fileLines:         make(map[string][]string),
	}
	for _, opt := range opts {
		opt(bb)
	}
	return bb
}

// lines returns the solution file split into lines, or false if the file
// is not part of the snapshot.
func (bb *Blackboard) lines(file string) ([]string, bool) {
	if cached, ok := bb.fileLines[file]; ok {
		return cached, true
	}
	content, ok := bb.Files[file]
	if !ok {
		return nil, false
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	bb.fileLines[file] = lines
	return lines, true
}

func (bb *Blackboard) activeGroups() []*GroupedFile {
	var active []*GroupedFile
	for _, g := range bb.GroupedFiles {
		if !g.Finalized {
			active = append(active, g)
		}
	}
	return active
}

func sortBlocks(blocks []ChangeBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Start != blocks[j].Start {
			return blocks[i].Start < blocks[j].Start
		}
		return blocks[i].End < blocks[j].End
	})
}

func blocksSorted(blocks []ChangeBlock) bool {
	return sort.SliceIsSorted(blocks, func(i, j int) bool {
		if blocks[i].Start != blocks[j].Start {
			return blocks[i].Start < blocks[j].Start
		}
		return blocks[i].End < blocks[j].End
	})
}
