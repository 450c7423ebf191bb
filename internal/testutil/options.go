// Package testutil provides shortcut fixtures for tests.
package testutil

import "github.com/zjrosen/shortcuts/internal/shortcut"

// ShortcutOption configures a fixture shortcut.
type ShortcutOption func(*shortcut.Shortcut)

// WithName sets the display name.
func WithName(name string) ShortcutOption {
	return func(s *shortcut.Shortcut) { s.Name = name }
}

// WithCmd sets the command line.
func WithCmd(cmd string) ShortcutOption {
	return func(s *shortcut.Shortcut) { s.Cmd = cmd }
}

// WithIcon sets the icon name.
func WithIcon(icon string) ShortcutOption {
	return func(s *shortcut.Shortcut) { s.Icon = icon }
}

// WithMeta adds one metadata entry.
func WithMeta(key, value string) ShortcutOption {
	return func(s *shortcut.Shortcut) {
		if s.Metadata == nil {
			s.Metadata = map[string]string{}
		}
		s.Metadata[key] = value
	}
}

// Shortcut returns a valid shortcut with the given id. The name defaults to
// the id and the command to "true".
func Shortcut(id string, opts ...ShortcutOption) shortcut.Shortcut {
	s := shortcut.Shortcut{ID: id, Name: id, Cmd: "true"}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
