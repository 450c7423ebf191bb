// Package presentation renders CLI output.
package presentation

import (
	"time"

	"github.com/zjrosen/shortcuts/internal/instance"
	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// ShortcutDTO represents a shortcut for presentation
type ShortcutDTO struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Cmd      string            `json:"cmd"`
	Icon     string            `json:"icon,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	// State is the live instance state, empty when not running.
	State string `json:"state,omitempty"`
}

// ExitDTO reports how a run finished.
type ExitDTO struct {
	ShortcutID string `json:"shortcut_id"`
	Code       int    `json:"code"`
	Signal     string `json:"signal,omitempty"`
	Killed     bool   `json:"killed,omitempty"`
	Error      string `json:"error,omitempty"`
	Duration   string `json:"duration"`
}

// FromShortcuts converts a collection to DTOs ordered by name. Instances
// found in live are reported by state.
func FromShortcuts(all shortcut.Collection, live []instance.Info) []ShortcutDTO {
	states := make(map[string]string, len(live))
	for _, info := range live {
		states[info.ShortcutID] = info.State.String()
	}

	sorted := all.Sorted()
	dtos := make([]ShortcutDTO, 0, len(sorted))
	for _, sc := range sorted {
		dtos = append(dtos, ShortcutDTO{
			ID:       sc.ID,
			Name:     sc.Name,
			Cmd:      sc.Cmd,
			Icon:     sc.Icon,
			Metadata: sc.Metadata,
			State:    states[sc.ID],
		})
	}
	return dtos
}

// FromExit converts an exit report.
func FromExit(shortcutID string, info rpc.ExitInfo, ran time.Duration) ExitDTO {
	return ExitDTO{
		ShortcutID: shortcutID,
		Code:       info.Code,
		Signal:     info.Signal,
		Killed:     info.Killed,
		Error:      info.Error,
		Duration:   ran.Round(time.Millisecond).String(),
	}
}
