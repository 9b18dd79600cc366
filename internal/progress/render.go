package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// Renderer displays a State. Start is called once before the first item,
// Update after every advance and Finish once at the end of the run, including
// runs that stop early.
type Renderer interface {
	Start(s State)
	Update(s State)
	Finish(s State)
}

// Select returns a TeaRenderer when w is an interactive terminal and plain is
// false, and a LineRenderer otherwise.
func Select(w io.Writer, plain bool) Renderer {
	if !plain && isTerminal(w) {
		return NewTeaRenderer(w)
	}
	return NewLineRenderer(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Nop discards all updates.
type Nop struct{}

func (Nop) Start(State)  {}
func (Nop) Update(State) {}
func (Nop) Finish(State) {}

// counter formats "completed/total".
func counter(s State) string {
	return fmt.Sprintf("%d/%d", s.Completed, s.Total)
}

// percent formats the completion percentage without decimals.
func percent(s State) string {
	return fmt.Sprintf("%3.0f%%", s.PercentComplete())
}

// timing shows the remaining time while running and the elapsed time once the
// run is complete.
func timing(s State) string {
	if s.IsComplete() {
		return formatClock(s.ElapsedTime())
	}
	if s.Completed == 0 {
		return "-:--:--"
	}
	return formatClock(s.EstimatedTimeRemaining())
}

// formatClock renders d as H:MM:SS.
func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	sec := d / time.Second
	return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
}
