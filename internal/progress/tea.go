package progress

import (
	"io"
	"strconv"
	"strings"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const teaBarWidth = 40

// stateMsg carries a fresh State snapshot into the Bubble Tea program.
type stateMsg State

// finishMsg tells the program to draw the final frame and exit.
type finishMsg State

// model is the Bubble Tea model drawing one progress line:
// spinner, description, counter, bar, percentage and time.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type model struct {
	state    State
	spinner  spinner.Model
	bar      progressbar.Model
	finished bool
}

func newModel(s State) model {
	return model{
		state: s,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(SpinnerStyle),
		),
		bar: progressbar.New(
			progressbar.WithDefaultGradient(),
			progressbar.WithWidth(teaBarWidth),
			progressbar.WithoutPercentage(),
		),
	}
}

// Init starts the spinner animation.
func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles state snapshots and spinner ticks.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = State(msg)
		return m, nil
	case finishMsg:
		m.state = State(msg)
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

// View renders the progress line.
func (m model) View() string {
	glyph := m.spinner.View()
	if m.finished {
		glyph = DoneStyle.Render("✓")
		if !m.state.IsComplete() || m.state.Failed > 0 {
			glyph = FailedStyle.Render("✗")
		}
	}

	parts := []string{
		glyph,
		DescriptionStyle.Render(m.state.Description),
		counter(m.state),
		m.bar.ViewAs(m.state.Fraction()),
		percent(m.state),
		SubtleStyle.Render(timing(m.state)),
	}
	if m.state.Failed > 0 {
		parts = append(parts, FailedStyle.Render(counterFailed(m.state)))
	}
	return strings.Join(parts, " ") + "\n"
}

func counterFailed(s State) string {
	if s.Failed == 1 {
		return "1 failed"
	}
	return strconv.Itoa(s.Failed) + " failed"
}

// TeaRenderer draws a live progress line on a terminal. The Bubble Tea program
// runs on its own goroutine and only receives State copies.
type TeaRenderer struct {
	out     io.Writer
	program *tea.Program
	done    chan struct{}
}

// NewTeaRenderer draws to out, which should be a terminal.
func NewTeaRenderer(out io.Writer) *TeaRenderer {
	return &TeaRenderer{out: out}
}

// Start launches the program.
func (r *TeaRenderer) Start(s State) {
	r.program = tea.NewProgram(
		newModel(s),
		tea.WithOutput(r.out),
		tea.WithInput(nil),
		// Leave SIGINT to the process default so an interrupt stops the batch.
		tea.WithoutSignalHandler(),
	)
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()
}

// Update sends a new snapshot to the program.
func (r *TeaRenderer) Update(s State) {
	if r.program == nil {
		return
	}
	r.program.Send(stateMsg(s))
}

// Finish draws the final frame and waits for the program to exit.
func (r *TeaRenderer) Finish(s State) {
	if r.program == nil {
		return
	}
	r.program.Send(finishMsg(s))
	<-r.done
}
