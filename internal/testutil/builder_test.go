package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/shortcuts/internal/shortcut"
)

type memAdder struct {
	all shortcut.Collection
}

func (m *memAdder) Add(_ context.Context, s shortcut.Shortcut) (shortcut.Collection, error) {
	if m.all == nil {
		m.all = shortcut.Collection{}
	}
	m.all[s.ID] = s
	return m.all.Clone(), nil
}

func TestShortcut_Defaults(t *testing.T) {
	s := Shortcut("a")
	require.Equal(t, "a", s.Name)
	require.Equal(t, "true", s.Cmd)
	require.NoError(t, s.Validate())
}

func TestShortcut_Options(t *testing.T) {
	s := Shortcut("a", WithName("Alpha"), WithCmd("echo a"), WithIcon("terminal"), WithMeta("group", "dev"), WithMeta("env", "prod"))
	require.Equal(t, "Alpha", s.Name)
	require.Equal(t, "echo a", s.Cmd)
	require.Equal(t, "terminal", s.Icon)
	require.Equal(t, map[string]string{"group": "dev", "env": "prod"}, s.Metadata)
}

func TestBuilder_Build(t *testing.T) {
	a := &memAdder{}
	all := NewBuilder(t).
		WithShortcut("a").
		With(Quick(), Sleeper()).
		Build(a)

	require.Len(t, all, 3)
	require.Contains(t, all, "quick")
	require.Contains(t, all, "sleeper")
}

func TestBuilder_Collection(t *testing.T) {
	c := NewBuilder(t).With(Quick(), Failing()).Collection()
	require.Equal(t, []string{"failing", "quick"}, []string{c.Sorted()[0].ID, c.Sorted()[1].ID})
}
