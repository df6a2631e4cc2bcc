package format

import (
	"fmt"
	"strings"
)

// FormatBorderedText renders text inside a bordered box with word wrapping.
func FormatBorderedText(text, title string) string {
	innerW := boxWidth()

	var wrapped []string
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			wrapped = append(wrapped, "")
			continue
		}
		wrapped = append(wrapped, wordWrap(paragraph, innerW)...)
	}

	output := []string{topBorder(title, innerW+2)}
	for _, line := range wrapped {
		output = append(output, fmt.Sprintf("│ %s │", padOrTrunc(line, innerW)))
	}
	output = append(output, fmt.Sprintf("└%s┘", strings.Repeat("─", innerW+2)))
	return strings.Join(output, "\n")
}

// FormatCodeBox renders source lines in a box with a line-number gutter
// starting at firstLine. Long lines are truncated, never wrapped.
func FormatCodeBox(code, title string, firstLine int) string {
	lines := expandTabs(code)
	if len(lines) == 0 {
		lines = []string{""}
	}
	gutter := len(fmt.Sprint(firstLine + len(lines) - 1))
	innerW := boxWidth()
	codeW := innerW - gutter - 3
	if codeW < 10 {
		codeW = 10
	}

	output := []string{topBorder(title, innerW+2)}
	for i, line := range lines {
		num := fmt.Sprintf("%*d", gutter, firstLine+i)
		output = append(output, fmt.Sprintf("│ %s%s%s │ %s │",
			Dim, num, Reset, padOrTrunc(line, codeW)))
	}
	output = append(output, fmt.Sprintf("└%s┘", strings.Repeat("─", innerW+2)))
	return strings.Join(output, "\n")
}

func boxWidth() int {
	innerW := TermWidth() - 4
	if innerW < 30 {
		innerW = 30
	}
	return innerW
}

func topBorder(title string, width int) string {
	if title == "" {
		return fmt.Sprintf("┌%s┐", strings.Repeat("─", width))
	}
	lbl := fmt.Sprintf("─ %s ", title)
	if runeLen(lbl) > width {
		lbl = padOrTrunc(lbl, width)
	}
	return fmt.Sprintf("┌%s%s┐", lbl, strings.Repeat("─", width-runeLen(lbl)))
}

// wordWrap wraps text to the given width, breaking at word boundaries.
func wordWrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) <= width {
			current += " " + word
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	lines = append(lines, current)
	return lines
}

func expandTabs(text string) []string {
	if text == "" {
		return nil
	}
	expanded := strings.ReplaceAll(text, "\t", "    ")
	return strings.Split(strings.TrimSuffix(expanded, "\n"), "\n")
}

func padOrTrunc(s string, w int) string {
	r := []rune(s)
	if len(r) > w {
		return string(r[:w])
	}
	return s + strings.Repeat(" ", w-len(r))
}

func runeLen(s string) int {
	return len([]rune(s))
}
