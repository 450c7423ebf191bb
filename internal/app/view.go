package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/shortcuts/internal/instance"
	"github.com/zjrosen/shortcuts/internal/keys"
	"github.com/zjrosen/shortcuts/internal/shortcut"
	"github.com/zjrosen/shortcuts/internal/ui/styles"
)

const nameColumnWidth = 24

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	footer := m.footer()
	bodyHeight := max(m.height-lipgloss.Height(footer), 3)

	panel := styles.Panel{Width: m.width, Height: bodyHeight, Focused: true}
	var view string
	if m.adding {
		panel.Title = "Add shortcut"
		view = panel.Render(m.form.view())
	} else {
		panel.Title = m.title()
		panel.Footnote = countLabel(len(m.shortcuts))
		view = panel.Render(m.list(m.width - 2))
	}
	view = lipgloss.JoinVertical(lipgloss.Left, view, footer)

	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	return zone.Scan(view)
}

func rowZoneID(shortcutID string) string {
	return "shortcut-row-" + shortcutID
}

func countLabel(n int) string {
	if n == 1 {
		return "1 shortcut"
	}
	return fmt.Sprintf("%d shortcuts", n)
}

func (m Model) title() string {
	running := 0
	for _, info := range m.instances {
		if info.State.Active() {
			running++
		}
	}
	if running == 0 {
		return "Shortcuts"
	}
	return fmt.Sprintf("Shortcuts (%d running)", running)
}

func (m Model) list(width int) string {
	if m.loadErr != nil {
		return styles.ErrorStyle.Render("Could not load shortcuts: " + m.loadErr.Error())
	}
	if len(m.shortcuts) == 0 {
		return styles.HintStyle.Render("No shortcuts yet. Press a to add one.")
	}

	lines := make([]string, 0, len(m.shortcuts))
	for i, sc := range m.shortcuts {
		lines = append(lines, m.row(sc, i == m.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) row(sc shortcut.Shortcut, selected bool, width int) string {
	indicator := "  "
	if selected {
		indicator = styles.SelectionIndicatorStyle.Render(">") + " "
	}

	name := styles.TruncateString(sc.Name, nameColumnWidth)
	name = styles.NameStyle.Render(name + strings.Repeat(" ", nameColumnWidth-lipgloss.Width(name)))

	badge := m.badge(sc.ID)
	used := 2 + nameColumnWidth + 1 + lipgloss.Width(badge) + 1
	cmd := styles.CmdStyle.Render(styles.TruncateString(sc.Cmd, width-used))

	return zone.Mark(rowZoneID(sc.ID), indicator+name+" "+badge+" "+cmd)
}

func (m Model) badge(id string) string {
	info, ok := m.instances[id]
	if !ok {
		return strings.Repeat(" ", 11)
	}
	switch info.State {
	case instance.StateLaunching:
		return m.spinner.View() + styles.LaunchingBadgeStyle.Render(" launching")
	case instance.StateRunning:
		return styles.RunningBadgeStyle.Render("● running  ")
	case instance.StateStopping:
		return styles.StoppingBadgeStyle.Render("◌ stopping ")
	default:
		return strings.Repeat(" ", 11)
	}
}

func (m Model) footer() string {
	status := styles.DisconnectedStyle.Render("○ disconnected")
	if m.connected {
		status = styles.ConnectedStyle.Render("● connected")
	}

	var helpView string
	if m.adding {
		helpView = m.help.View(keys.Form)
	} else {
		helpView = m.help.View(keys.List)
	}
	return styles.StatusBarStyle.Render(status + "  " + helpView)
}
