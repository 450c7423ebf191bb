package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/shortcuts/internal/keys"
	"github.com/zjrosen/shortcuts/internal/shortcut"
	"github.com/zjrosen/shortcuts/internal/ui/styles"
)

const (
	fieldName = iota
	fieldCmd
	fieldCount
)

// submitFormMsg carries a shortcut entered in the add form.
type submitFormMsg struct {
	shortcut shortcut.Shortcut
}

// cancelFormMsg closes the add form without saving.
type cancelFormMsg struct{}

// form collects a name and a command line for a new shortcut.
type form struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newForm() form {
	name := textinput.New()
	name.Placeholder = "Build project"
	name.CharLimit = 80
	name.Focus()

	cmd := textinput.New()
	cmd.Placeholder = "make build"
	cmd.CharLimit = 1024

	return form{inputs: [fieldCount]textinput.Model{name, cmd}}
}

func (f form) setWidth(width int) form {
	for i := range f.inputs {
		f.inputs[i].Width = max(width-12, 10)
	}
	return f
}

func (f form) focusField(i int) form {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
	return f
}

func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Form.Cancel):
			return f, func() tea.Msg { return cancelFormMsg{} }
		case key.Matches(msg, keys.Form.NextField):
			return f.focusField(f.focus + 1), nil
		case key.Matches(msg, keys.Form.PrevField):
			return f.focusField(f.focus - 1), nil
		case key.Matches(msg, keys.Form.Submit):
			if f.focus == fieldName {
				return f.focusField(fieldCmd), nil
			}
			return f.submit()
		}
		f.err = ""
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) submit() (form, tea.Cmd) {
	sc := shortcut.New(strings.TrimSpace(f.inputs[fieldName].Value()), strings.TrimSpace(f.inputs[fieldCmd].Value()))
	switch err := sc.Validate(); {
	case errors.Is(err, shortcut.ErrEmptyName):
		f.err = "name is required"
		return f.focusField(fieldName), nil
	case errors.Is(err, shortcut.ErrEmptyCmd):
		f.err = "command is required"
		return f.focusField(fieldCmd), nil
	case err != nil:
		f.err = err.Error()
		return f, nil
	}
	return f, func() tea.Msg { return submitFormMsg{shortcut: sc} }
}

func (f form) view() string {
	labels := [fieldCount]string{"Name", "Command"}

	var b strings.Builder
	for i, in := range f.inputs {
		label := lipgloss.NewStyle().Foreground(styles.FormLabelColor)
		if i == f.focus {
			label = label.Foreground(styles.FormFocusedLabelColor).Bold(true)
		}
		b.WriteString(label.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	if f.err != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.StatusErrorColor).Render(f.err))
		b.WriteString("\n")
	}
	return b.String()
}
