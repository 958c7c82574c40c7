// Package style provides consistent terminal styling using Lipgloss.
package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
)

var (
	// Success style for positive outcomes
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")). // Green
		Bold(true)

	// Warning style for cautionary messages
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")). // Yellow
		Bold(true)

	// Error style for failures
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")). // Red
		Bold(true)

	// Info style for informational messages
	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")) // Blue

	// Dim style for secondary information
	Dim = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")) // Gray

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().
		Bold(true)

	// Selected highlights the cursor row in prompts.
	Selected = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true)

	// Box frames prompt bodies.
	Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)

	SuccessPrefix = Success.Render("✓")
	WarningPrefix = Warning.Render("⚠")
	ErrorPrefix   = Error.Render("✗")
	ArrowPrefix   = Info.Render("→")
)

// ForLevel returns the style matching a repository status level.
func ForLevel(level model.StatusLevel) lipgloss.Style {
	switch level {
	case model.StatusOK:
		return Success
	case model.StatusWarning:
		return Warning
	case model.StatusError:
		return Error
	default:
		return Dim
	}
}

// PrefixForLevel returns the one-character marker for a status level.
func PrefixForLevel(level model.StatusLevel) string {
	switch level {
	case model.StatusOK:
		return SuccessPrefix
	case model.StatusWarning:
		return WarningPrefix
	case model.StatusError:
		return ErrorPrefix
	default:
		return ArrowPrefix
	}
}
