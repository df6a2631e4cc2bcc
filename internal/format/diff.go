package format

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxDiffRows caps the rows FormatSideBySideDiff prints.
const maxDiffRows = 40

type diffRow struct {
	left, right       string
	hasLeft, hasRight bool
	equal             bool
}

// FormatSideBySideDiff renders the stored code of an entry next to the
// solution's current text for the same lines.
func FormatSideBySideDiff(stored, current string) string {
	colW := (TermWidth() - 7) / 2
	if colW < 20 {
		colW = 20
	}

	rows := diffRows(strings.Join(expandTabs(stored), "\n"), strings.Join(expandTabs(current), "\n"))
	total := len(rows)
	if total > maxDiffRows {
		rows = rows[:maxDiffRows]
	}

	lblL, lblR := "─ Stored ", "─ Current "
	output := []string{fmt.Sprintf("┌%s%s┬%s%s┐",
		lblL, strings.Repeat("─", colW+2-runeLen(lblL)),
		lblR, strings.Repeat("─", colW+2-runeLen(lblR)))}

	blank := strings.Repeat(" ", colW)
	for _, r := range rows {
		left, right := blank, blank
		switch {
		case r.equal:
			left = Dim + padOrTrunc(r.left, colW) + Reset
			right = Dim + padOrTrunc(r.right, colW) + Reset
		default:
			if r.hasLeft {
				left = Red + padOrTrunc(r.left, colW) + Reset
			}
			if r.hasRight {
				right = Green + padOrTrunc(r.right, colW) + Reset
			}
		}
		output = append(output, fmt.Sprintf("│ %s │ %s │", left, right))
	}

	output = append(output, fmt.Sprintf("└%s┴%s┘",
		strings.Repeat("─", colW+2), strings.Repeat("─", colW+2)))
	if total > maxDiffRows {
		output = append(output, fmt.Sprintf("  %s… %d more lines not shown%s",
			Dim, total-maxDiffRows, Reset))
	}
	return strings.Join(output, "\n")
}

// diffRows pairs deleted and inserted lines of each change side by side.
func diffRows(oldText, newText string) []diffRow {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var rows []diffRow
	var oldBuf, newBuf []string
	flush := func() {
		n := len(oldBuf)
		if len(newBuf) > n {
			n = len(newBuf)
		}
		for i := 0; i < n; i++ {
			var r diffRow
			if i < len(oldBuf) {
				r.left, r.hasLeft = oldBuf[i], true
			}
			if i < len(newBuf) {
				r.right, r.hasRight = newBuf[i], true
			}
			rows = append(rows, r)
		}
		oldBuf, newBuf = nil, nil
	}

	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		if d.Text == "" {
			continue
		}
		split := strings.Split(text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			for _, l := range split {
				rows = append(rows, diffRow{left: l, right: l, hasLeft: true, hasRight: true, equal: true})
			}
		case diffmatchpatch.DiffDelete:
			oldBuf = append(oldBuf, split...)
		case diffmatchpatch.DiffInsert:
			newBuf = append(newBuf, split...)
		}
	}
	flush()
	return rows
}
