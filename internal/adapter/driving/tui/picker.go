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

// PickerModel lets the user choose one identity from a list.
type PickerModel struct {
	title      string
	identities []model.Identity
	cursor     int
	chosen     int
	done       bool
}

// NewPicker creates a picker over identities. The cursor starts on the
// identity whose id is current, if any.
func NewPicker(title string, identities []model.Identity, current string) PickerModel {
	m := PickerModel{title: title, identities: identities, chosen: -1}
	for i, id := range identities {
		if id.ID == current {
			m.cursor = i
		}
	}
	return m
}

func (m PickerModel) Init() tea.Cmd { return nil }

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(kmsg, keys.Up):
		m.cursor = moveCursor(m.cursor, -1, len(m.identities))
	case key.Matches(kmsg, keys.Down):
		m.cursor = moveCursor(m.cursor, 1, len(m.identities))
	case key.Matches(kmsg, keys.Select):
		if len(m.identities) > 0 {
			m.chosen = m.cursor
		}
		m.done = true
		return m, tea.Quit
	case key.Matches(kmsg, keys.Quit):
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m PickerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(style.Bold.Render(m.title))
	b.WriteString("\n\n")

	for i, id := range m.identities {
		line := fmt.Sprintf("%s  %s", id.Label, style.Dim.Render(fmt.Sprintf("%s <%s>", id.Name, id.Email)))
		if i == m.cursor {
			b.WriteString(style.Selected.Render("› ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
		if i == m.cursor {
			b.WriteString("    " + style.Dim.Render(id.SSHKeyPath) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(style.Dim.Render(keys.help()))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen identity. ok is false when the picker was
// cancelled.
func (m PickerModel) Selected() (model.Identity, bool) {
	if m.chosen < 0 || m.chosen >= len(m.identities) {
		return model.Identity{}, false
	}
	return m.identities[m.chosen], true
}

// PickIdentity runs the picker on in/out and returns the chosen identity.
func PickIdentity(in io.Reader, out io.Writer, title string, identities []model.Identity, current string) (model.Identity, bool, error) {
	final, err := tea.NewProgram(
		NewPicker(title, identities, current),
		tea.WithInput(in),
		tea.WithOutput(out),
	).Run()
	if err != nil {
		return model.Identity{}, false, fmt.Errorf("identity picker: %w", err)
	}

	id, ok := final.(PickerModel).Selected()
	return id, ok, nil
}
