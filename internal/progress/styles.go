package progress

import "github.com/charmbracelet/lipgloss"

// Colors and styles for the terminal renderer.
//
//nolint:gochecknoglobals // Style definitions are constant lookup values.
var (
	ColorDone    = lipgloss.Color("42")
	ColorFailed  = lipgloss.Color("196")
	ColorSubtle  = lipgloss.Color("241")
	ColorSpinner = lipgloss.Color("205")

	DoneStyle        = lipgloss.NewStyle().Foreground(ColorDone)
	FailedStyle      = lipgloss.NewStyle().Foreground(ColorFailed)
	SubtleStyle      = lipgloss.NewStyle().Foreground(ColorSubtle)
	SpinnerStyle     = lipgloss.NewStyle().Foreground(ColorSpinner)
	DescriptionStyle = lipgloss.NewStyle().Bold(true)
)
