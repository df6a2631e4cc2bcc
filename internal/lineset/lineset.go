package lineset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// LineSet represents a set of 1-based line numbers, stored as a sorted,
// deduplicated slice. It serializes to compact notation like "5,7-8,12".
type LineSet struct {
	lines []int
}

// Range is an inclusive run of consecutive line numbers.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of lines covered by the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// New creates a LineSet from individual line numbers. Non-positive
// numbers are discarded.
func New(lines ...int) LineSet {
	return LineSet{lines: dedupSorted(lines)}
}

// FromRange creates a LineSet covering a contiguous range [start, end].
func FromRange(start, end int) LineSet {
	if start <= 0 || end < start {
		return LineSet{}
	}
	lines := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		lines = append(lines, i)
	}
	return LineSet{lines: lines}
}

// FromRanges creates a LineSet from a list of inclusive ranges.
// Overlapping and unordered ranges are allowed.
func FromRanges(ranges ...Range) LineSet {
	var lines []int
	for _, r := range ranges {
		lines = append(lines, FromRange(r.Start, r.End).lines...)
	}
	return New(lines...)
}

// FromString parses compact notation like "5", "5-7", or "5,7-8,12".
func FromString(s string) (LineSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LineSet{}, nil
	}

	var lines []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, "-"); idx >= 0 {
			start, err := strconv.Atoi(strings.TrimSpace(part[:idx]))
			if err != nil {
				return LineSet{}, fmt.Errorf("invalid range start %q: %w", part[:idx], err)
			}
			end, err := strconv.Atoi(strings.TrimSpace(part[idx+1:]))
			if err != nil {
				return LineSet{}, fmt.Errorf("invalid range end %q: %w", part[idx+1:], err)
			}
			if end < start {
				return LineSet{}, fmt.Errorf("invalid range %d-%d", start, end)
			}
			for i := start; i <= end; i++ {
				lines = append(lines, i)
			}
		} else {
			n, err := strconv.Atoi(part)
			if err != nil {
				return LineSet{}, fmt.Errorf("invalid line number %q: %w", part, err)
			}
			lines = append(lines, n)
		}
	}

	return LineSet{lines: dedupSorted(lines)}, nil
}

// String returns the compact notation: "5,7-8,12".
func (ls LineSet) String() string {
	if len(ls.lines) == 0 {
		return ""
	}

	var parts []string
	for _, r := range ls.Ranges() {
		if r.Start == r.End {
			parts = append(parts, strconv.Itoa(r.Start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", r.Start, r.End))
		}
	}
	return strings.Join(parts, ",")
}

// Ranges groups the set into maximal runs of consecutive lines.
// A gap of two or more starts a new range.
func (ls LineSet) Ranges() []Range {
	var ranges []Range
	i := 0
	for i < len(ls.lines) {
		start := ls.lines[i]
		end := start
		for i+1 < len(ls.lines) && ls.lines[i+1] == end+1 {
			end = ls.lines[i+1]
			i++
		}
		ranges = append(ranges, Range{Start: start, End: end})
		i++
	}
	return ranges
}

// IsEmpty returns true if the set contains no lines.
func (ls LineSet) IsEmpty() bool {
	return len(ls.lines) == 0
}

// Lines returns the sorted line numbers.
func (ls LineSet) Lines() []int {
	return ls.lines
}

// Len returns the number of lines in the set.
func (ls LineSet) Len() int {
	return len(ls.lines)
}

// Min returns the smallest line number, or 0 if empty.
func (ls LineSet) Min() int {
	if len(ls.lines) == 0 {
		return 0
	}
	return ls.lines[0]
}

// Max returns the largest line number, or 0 if empty.
func (ls LineSet) Max() int {
	if len(ls.lines) == 0 {
		return 0
	}
	return ls.lines[len(ls.lines)-1]
}

// Contains returns true if the given line number is in the set.
func (ls LineSet) Contains(line int) bool {
	i := sort.SearchInts(ls.lines, line)
	return i < len(ls.lines) && ls.lines[i] == line
}

// Overlaps returns true if any line in [start, end] is in the set.
func (ls LineSet) Overlaps(start, end int) bool {
	if len(ls.lines) == 0 {
		return false
	}
	// Find first line >= start
	i := sort.SearchInts(ls.lines, start)
	return i < len(ls.lines) && ls.lines[i] <= end
}

// Union returns the lines present in either set.
func (ls LineSet) Union(other LineSet) LineSet {
	merged := make([]int, 0, len(ls.lines)+len(other.lines))
	i, j := 0, 0
	for i < len(ls.lines) && j < len(other.lines) {
		switch {
		case ls.lines[i] < other.lines[j]:
			merged = append(merged, ls.lines[i])
			i++
		case ls.lines[i] > other.lines[j]:
			merged = append(merged, other.lines[j])
			j++
		default:
			merged = append(merged, ls.lines[i])
			i++
			j++
		}
	}
	merged = append(merged, ls.lines[i:]...)
	merged = append(merged, other.lines[j:]...)
	if len(merged) == 0 {
		return LineSet{}
	}
	return LineSet{lines: merged}
}

// Intersect returns the lines present in both sets.
func (ls LineSet) Intersect(other LineSet) LineSet {
	var common []int
	i, j := 0, 0
	for i < len(ls.lines) && j < len(other.lines) {
		switch {
		case ls.lines[i] < other.lines[j]:
			i++
		case ls.lines[i] > other.lines[j]:
			j++
		default:
			common = append(common, ls.lines[i])
			i++
			j++
		}
	}
	return LineSet{lines: common}
}

// Difference returns the lines in ls that are not in other.
func (ls LineSet) Difference(other LineSet) LineSet {
	var rest []int
	for _, l := range ls.lines {
		if !other.Contains(l) {
			rest = append(rest, l)
		}
	}
	return LineSet{lines: rest}
}

// MarshalJSON serializes as a JSON string in compact notation.
func (ls LineSet) MarshalJSON() ([]byte, error) {
	s := ls.String()
	if s == "" {
		return []byte("null"), nil
	}
	return json.Marshal(s)
}

// UnmarshalJSON accepts the compact string form ("5,7-8,12"), a list of
// explicit line numbers ([5,7,8,12]), a list of inclusive pairs
// ([[5,5],[7,8]]) or a list of range objects ([{"start":7,"end":8}]).
func (ls *LineSet) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		ls.lines = nil
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		parsed, err := FromString(str)
		if err != nil {
			return err
		}
		ls.lines = parsed.lines
		return nil
	}

	if s[0] != '[' {
		return fmt.Errorf("unexpected JSON for LineSet: %s", s)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var lines []int
	for _, r := range raw {
		rs := strings.TrimSpace(string(r))
		switch {
		case rs == "" || rs == "null":
			continue
		case rs[0] == '[':
			var pair []int
			if err := json.Unmarshal(r, &pair); err != nil {
				return err
			}
			if len(pair) != 2 || pair[1] < pair[0] {
				return fmt.Errorf("invalid line range %s", rs)
			}
			lines = append(lines, FromRange(pair[0], pair[1]).lines...)
		case rs[0] == '{':
			var rng Range
			if err := json.Unmarshal(r, &rng); err != nil {
				return err
			}
			if rng.End < rng.Start {
				return fmt.Errorf("invalid line range %d-%d", rng.Start, rng.End)
			}
			lines = append(lines, FromRange(rng.Start, rng.End).lines...)
		default:
			var n int
			if err := json.Unmarshal(r, &n); err != nil {
				return err
			}
			lines = append(lines, n)
		}
	}
	ls.lines = dedupSorted(lines)
	return nil
}

func dedupSorted(nums []int) []int {
	if len(nums) == 0 {
		return nil
	}
	sorted := make([]int, 0, len(nums))
	for _, n := range nums {
		if n > 0 {
			sorted = append(sorted, n)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Ints(sorted)
	result := []int{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			result = append(result, sorted[i])
		}
	}
	return result
}
