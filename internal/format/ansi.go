package format

import (
	"os"

	"golang.org/x/term"
)

// ANSI codes. All of them are empty once colors are disabled.
var (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Yellow  = "\033[33m"
	Cyan    = "\033[36m"
	Green   = "\033[32m"
	Magenta = "\033[35m"
	Red     = "\033[31m"
)

var colors = true

func init() {
	switch {
	case os.Getenv("NO_COLOR") != "", os.Getenv("TERM") == "dumb":
		DisableColors()
	case !term.IsTerminal(int(os.Stdout.Fd())):
		DisableColors()
	}
}

// DisableColors turns every color code into the empty string.
func DisableColors() {
	colors = false
	Reset, Bold, Dim = "", "", ""
	Yellow, Cyan, Green, Magenta, Red = "", "", "", "", ""
}

// Paint wraps s in color. Without colors s is returned unchanged.
func Paint(color, s string) string {
	if !colors || color == "" || s == "" {
		return s
	}
	return color + s + Reset
}

// matchMark is the marker shown after an entry header: ✓ when the stored
// code still matches the solution, ~ when it drifted.
func matchMark(m Match) string {
	switch m {
	case MatchExact:
		return Paint(Green, "✓")
	case MatchChanged:
		return Paint(Yellow, "~")
	}
	return ""
}

// TermWidth returns the terminal width, defaulting to 80.
func TermWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
