package format

import "testing"

func TestPaint(t *testing.T) {
	defer func(c bool, green, reset string) { colors, Green, Reset = c, green, reset }(colors, Green, Reset)

	colors, Green, Reset = true, "\033[32m", "\033[0m"
	if got := Paint(Green, "ok"); got != "\033[32mok\033[0m" {
		t.Errorf("Paint with colors = %q", got)
	}
	if got := Paint(Green, ""); got != "" {
		t.Errorf("Paint of empty string = %q, want empty", got)
	}
	if got := matchMark(MatchExact); got != "\033[32m✓\033[0m" {
		t.Errorf("matchMark(exact) = %q", got)
	}

	colors = false
	if got := Paint("\033[31m", "failed"); got != "failed" {
		t.Errorf("Paint without colors = %q, want plain text", got)
	}
}

func TestMatchMark(t *testing.T) {
	defer func(c bool) { colors = c }(colors)
	colors = false

	tests := []struct {
		m    Match
		want string
	}{
		{MatchExact, "✓"},
		{MatchChanged, "~"},
		{MatchUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.m), func(t *testing.T) {
			if got := matchMark(tt.m); got != tt.want {
				t.Errorf("matchMark(%s) = %q, want %q", tt.m, got, tt.want)
			}
		})
	}
}
