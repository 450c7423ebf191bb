package app

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"
)

func TestApp_ClickSelectsThenLaunches(t *testing.T) {
	svc := newFakeService()
	m := newTestModel(t, svc)
	_ = m.View()

	var z *zone.ZoneInfo
	require.Eventually(t, func() bool {
		z = zone.Get(rowZoneID("b"))
		return z != nil && !z.IsZero()
	}, time.Second, 5*time.Millisecond)

	click := tea.MouseMsg{X: z.StartX, Y: z.StartY, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease}
	m = update(t, m, click)
	require.Equal(t, 1, m.cursor)
	require.Empty(t, svc.launched, "first click only selects")

	_ = run(t, m, click)
	require.Equal(t, []string{"b"}, svc.launched)
}

func TestApp_ClickIgnoredWhileAdding(t *testing.T) {
	m := newTestModel(t, newFakeService())
	m = update(t, m, keyRunes("a"))

	_, cmd := m.Update(tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	require.Nil(t, cmd)
}

func TestApp_Program(t *testing.T) {
	svc := newFakeService()
	m := New(svc)
	t.Cleanup(func() {
		_ = m.Close()
		svc.events.Close()
	})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Alpha")) && bytes.Contains(out, []byte("echo b"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(keyRunes("j"))
	tm.Send(keyRunes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final, ok := tm.FinalModel(t).(Model)
	require.True(t, ok)
	require.Len(t, final.shortcuts, 2)
	require.Equal(t, 1, final.cursor)
}
