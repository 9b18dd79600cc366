package progress

import (
	"fmt"
	"io"
	"strings"
)

const lineBarWidth = 20

// LineRenderer writes one status line per update. It is used when the output
// is not a terminal.
type LineRenderer struct {
	w io.Writer
}

// NewLineRenderer writes to w.
func NewLineRenderer(w io.Writer) *LineRenderer {
	return &LineRenderer{w: w}
}

// Start prints nothing; the first line appears after the first item.
func (r *LineRenderer) Start(State) {}

// Update prints the state after an item was attempted.
func (r *LineRenderer) Update(s State) {
	_, _ = fmt.Fprintln(r.w, r.line(s, "-"))
}

// Finish prints a final line marked with a check when every item was attempted.
func (r *LineRenderer) Finish(s State) {
	glyph := "!"
	if s.IsComplete() {
		glyph = "✓"
	}
	_, _ = fmt.Fprintln(r.w, r.line(s, glyph))
}

func (r *LineRenderer) line(s State, glyph string) string {
	filled := int(s.Fraction() * lineBarWidth)
	bar := strings.Repeat("#", filled) + strings.Repeat(".", lineBarWidth-filled)
	line := fmt.Sprintf("%s %s %s [%s] %s %s", glyph, s.Description, counter(s), bar, percent(s), timing(s))
	if s.Failed > 0 {
		line += fmt.Sprintf(" (%d failed)", s.Failed)
	}
	if s.Current != "" && !s.IsComplete() {
		line += " " + s.Current
	}
	return line
}
