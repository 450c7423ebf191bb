package presentation

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/zjrosen/shortcuts/internal/ui/styles"
)

const cmdColumnWidth = 60

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatShortcuts formats a list of shortcuts as JSON
func (f *Formatter) FormatShortcuts(shortcuts []ShortcutDTO) error {
	return f.encode(shortcuts)
}

// FormatShortcut formats a single shortcut as JSON
func (f *Formatter) FormatShortcut(sc ShortcutDTO) error {
	return f.encode(sc)
}

// FormatExit formats a run result as JSON
func (f *Formatter) FormatExit(exit ExitDTO) error {
	return f.encode(exit)
}

// FormatShortcutsTable writes an aligned id/name/state/cmd table. Cells are
// unstyled so the output stays clean when piped.
func (f *Formatter) FormatShortcutsTable(shortcuts []ShortcutDTO) error {
	cell := lipgloss.NewStyle().PaddingRight(2)
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style { return cell }).
		Headers("ID", "NAME", "STATE", "CMD")
	for _, sc := range shortcuts {
		state := sc.State
		if state == "" {
			state = "-"
		}
		t.Row(sc.ID, sc.Name, state, styles.TruncateString(sc.Cmd, cmdColumnWidth))
	}
	_, err := fmt.Fprintln(f.writer, t.Render())
	return err
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
