package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/style"
)

var resolutionChoices = []struct {
	label      string
	resolution model.Resolution
}{
	{"Switch Identity", model.ResolutionSwitch},
	{"Override", model.ResolutionOverride},
	{"Cancel", model.ResolutionCancel},
}

// MismatchModel asks how to resolve one mismatch.
type MismatchModel struct {
	mismatch model.Mismatch
	cursor   int
	answer   model.Resolution
	done     bool
}

// NewMismatchPrompt creates a prompt for m.
func NewMismatchPrompt(m model.Mismatch) MismatchModel {
	return MismatchModel{mismatch: m, answer: model.ResolutionCancel}
}

func (m MismatchModel) Init() tea.Cmd { return nil }

func (m MismatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(kmsg, keys.Up):
		m.cursor = moveCursor(m.cursor, -1, len(resolutionChoices))
	case key.Matches(kmsg, keys.Down):
		m.cursor = moveCursor(m.cursor, 1, len(resolutionChoices))
	case key.Matches(kmsg, keys.Select):
		m.answer = resolutionChoices[m.cursor].resolution
		m.done = true
		return m, tea.Quit
	case key.Matches(kmsg, keys.Quit):
		m.answer = model.ResolutionCancel
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// Message renders the mismatch the way it is shown to the user.
func Message(m model.Mismatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Identity mismatch detected in %s\n\n", m.RepoPath)
	if m.Current != nil {
		fmt.Fprintf(&b, "Current: %s <%s>\n", m.Current.Name, m.Current.Email)
	}
	if m.Expected != nil {
		fmt.Fprintf(&b, "Expected: %s <%s>\n", m.Expected.Name, m.Expected.Email)
	}
	fmt.Fprintf(&b, "\nReason: %s", m.Reason)
	return b.String()
}

func (m MismatchModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(style.Box.Render(style.WarningPrefix + " " + Message(m.mismatch)))
	b.WriteString("\n\n")
	for i, c := range resolutionChoices {
		if i == m.cursor {
			b.WriteString(style.Selected.Render("› " + c.label))
		} else {
			b.WriteString("  " + c.label)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(style.Dim.Render(keys.help()))
	b.WriteString("\n")
	return b.String()
}

// Resolution returns the user's answer; cancel if the prompt was dismissed.
func (m MismatchModel) Resolution() model.Resolution {
	return m.answer
}

// PromptMismatch asks the user how to resolve m. A mismatch without both the
// current and the expected identity cannot be prompted and resolves to cancel.
func PromptMismatch(in io.Reader, out io.Writer, m model.Mismatch) (model.Resolution, error) {
	if !m.Promptable() {
		return model.ResolutionCancel, nil
	}

	final, err := tea.NewProgram(
		NewMismatchPrompt(m),
		tea.WithInput(in),
		tea.WithOutput(out),
	).Run()
	if err != nil {
		return model.ResolutionCancel, fmt.Errorf("mismatch prompt: %w", err)
	}
	return final.(MismatchModel).Resolution(), nil
}
