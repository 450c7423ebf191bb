package app

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/shortcuts/internal/instance"
	"github.com/zjrosen/shortcuts/internal/pubsub"
	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// fakeService is an in-memory Service.
type fakeService struct {
	all       shortcut.Collection
	listErr   error
	launchErr error
	closeOK   bool
	connected bool
	notice    string
	events    *pubsub.Broker[instance.Event]

	launched []string
	closed   []string
	killed   []string
}

func newFakeService() *fakeService {
	return &fakeService{
		all: shortcut.Collection{
			"a": {ID: "a", Name: "Alpha", Cmd: "echo a"},
			"b": {ID: "b", Name: "Beta", Cmd: "echo b"},
		},
		closeOK: true,
		events:  pubsub.NewBroker[instance.Event](),
	}
}

func (f *fakeService) ListShortcuts(context.Context) (shortcut.Collection, error) {
	return f.all.Clone(), f.listErr
}

func (f *fakeService) AddShortcut(_ context.Context, sc shortcut.Shortcut) (shortcut.Collection, error) {
	f.all[sc.ID] = sc
	return f.all.Clone(), nil
}

func (f *fakeService) RemoveShortcut(_ context.Context, id string) (shortcut.Collection, error) {
	delete(f.all, id)
	return f.all.Clone(), nil
}

func (f *fakeService) Launch(_ context.Context, sc shortcut.Shortcut) (*instance.ExitHandle, error) {
	f.launched = append(f.launched, sc.ID)
	return instance.NewExitHandle(), f.launchErr
}

func (f *fakeService) CloseShortcut(_ context.Context, sc shortcut.Shortcut) bool {
	f.closed = append(f.closed, sc.ID)
	return f.closeOK
}

func (f *fakeService) KillShortcut(_ context.Context, sc shortcut.Shortcut) bool {
	f.killed = append(f.killed, sc.ID)
	return true
}

func (f *fakeService) Instances(context.Context) []instance.Info { return nil }

func (f *fakeService) InstanceEvents() *pubsub.Broker[instance.Event] { return f.events }

func (f *fakeService) Connected() bool { return f.connected }

func (f *fakeService) SetupNotice() (string, bool) { return f.notice, f.notice != "" }

// newTestModel creates a sized model with the fake's shortcuts loaded.
func newTestModel(t *testing.T, svc *fakeService) Model {
	t.Helper()
	m := New(svc)
	t.Cleanup(func() {
		_ = m.Close()
		svc.events.Close()
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return update(t, m, m.loadShortcuts()())
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// run feeds msg to the model and then the message its command produces.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	require.NotNil(t, cmd, "expected a command for %T", msg)
	return update(t, m, cmd())
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func instanceEvent(typ pubsub.EventType, ev instance.Event) pubsub.Event[instance.Event] {
	return pubsub.Event[instance.Event]{Type: typ, Payload: ev}
}

func TestApp_LoadsSortedShortcuts(t *testing.T) {
	m := newTestModel(t, newFakeService())

	require.Len(t, m.shortcuts, 2)
	assert.Equal(t, "Alpha", m.shortcuts[0].Name)
	assert.Equal(t, "Beta", m.shortcuts[1].Name)

	view := m.View()
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "echo b")
}

func TestApp_LoadErrorIsShown(t *testing.T) {
	svc := newFakeService()
	svc.listErr = errors.New("boom")

	m := newTestModel(t, svc)

	assert.Contains(t, m.View(), "Could not load shortcuts")
}

func TestApp_CursorMovesWithinBounds(t *testing.T) {
	m := newTestModel(t, newFakeService())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)

	m = update(t, m, keyRunes("j"))
	m = update(t, m, keyRunes("j"))
	assert.Equal(t, 1, m.cursor)
}

func TestApp_EnterLaunchesSelected(t *testing.T) {
	svc := newFakeService()
	m := newTestModel(t, svc)
	m = update(t, m, keyRunes("j"))

	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"b"}, svc.launched)
	assert.False(t, m.toaster.Visible())
}

func TestApp_LaunchFailureShowsToast(t *testing.T) {
	svc := newFakeService()
	svc.launchErr = &instance.LaunchError{ShortcutID: "a", Stage: instance.StageRequest, Cause: errors.New("nope")}
	m := newTestModel(t, svc)

	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.True(t, m.toaster.Visible())
	assert.Equal(t, "Launching Alpha failed at request", m.toaster.Message())
}

func TestApp_ActiveShortcutIsNotLaunchedTwice(t *testing.T) {
	svc := newFakeService()
	m := newTestModel(t, svc)
	m = update(t, m, instanceEvent(pubsub.CreatedEvent, instance.Event{ShortcutID: "a", LaunchID: "L1", State: instance.StateLaunching}))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, svc.launched)
	assert.Equal(t, "Alpha is already running", m.toaster.Message())
}

func TestApp_InstanceEventsDriveBadges(t *testing.T) {
	m := newTestModel(t, newFakeService())

	m = update(t, m, instanceEvent(pubsub.CreatedEvent, instance.Event{ShortcutID: "a", LaunchID: "L1", State: instance.StateLaunching}))
	assert.Contains(t, m.View(), "launching")

	m = update(t, m, instanceEvent(pubsub.UpdatedEvent, instance.Event{ShortcutID: "a", LaunchID: "L1", State: instance.StateRunning}))
	assert.Contains(t, m.View(), "running")
	assert.Contains(t, m.View(), "Shortcuts (1 running)")

	m = update(t, m, instanceEvent(pubsub.UpdatedEvent, instance.Event{ShortcutID: "a", LaunchID: "L1", State: instance.StateStopping}))
	assert.Contains(t, m.View(), "stopping")

	m = update(t, m, instanceEvent(pubsub.DeletedEvent, instance.Event{
		ShortcutID: "a", LaunchID: "L1", State: instance.StateExited,
		Exit: &rpc.ExitInfo{Code: -1, Signal: "SIGTERM"},
	}))
	assert.Empty(t, m.instances)
	assert.Equal(t, "Alpha stopped (SIGTERM)", m.toaster.Message())
}

func TestApp_ExitToasts(t *testing.T) {
	tests := []struct {
		name string
		exit rpc.ExitInfo
		want string
	}{
		{"clean", rpc.ExitInfo{Code: 0}, "Alpha finished"},
		{"failure", rpc.ExitInfo{Code: 2}, "Alpha exited with code 2"},
		{"killed", rpc.ExitInfo{Code: -1, Signal: "SIGKILL", Killed: true}, "Alpha was killed"},
		{"signalled", rpc.ExitInfo{Code: -1, Signal: "SIGINT"}, "Alpha stopped (SIGINT)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, newFakeService())
			exit := tt.exit
			m = update(t, m, instanceEvent(pubsub.DeletedEvent, instance.Event{
				ShortcutID: "a", LaunchID: "L1", State: instance.StateExited, Exit: &exit, Killed: exit.Killed,
			}))
			assert.Equal(t, tt.want, m.toaster.Message())
		})
	}
}

func TestApp_StaleExitKeepsNewerInstance(t *testing.T) {
	m := newTestModel(t, newFakeService())
	m = update(t, m, instanceEvent(pubsub.CreatedEvent, instance.Event{ShortcutID: "a", LaunchID: "L2", State: instance.StateLaunching}))

	m = update(t, m, instanceEvent(pubsub.DeletedEvent, instance.Event{
		ShortcutID: "a", LaunchID: "L1", State: instance.StateExited, Exit: &rpc.ExitInfo{},
	}))

	assert.True(t, m.isActive("a"))
}

func TestApp_CloseAndKillOnlyActive(t *testing.T) {
	svc := newFakeService()
	m := newTestModel(t, svc)

	m = update(t, m, keyRunes("c"))
	assert.Empty(t, svc.closed)

	m = update(t, m, instanceEvent(pubsub.UpdatedEvent, instance.Event{ShortcutID: "a", LaunchID: "L1", State: instance.StateRunning}))
	m = run(t, m, keyRunes("c"))
	assert.Equal(t, []string{"a"}, svc.closed)

	_ = run(t, m, keyRunes("x"))
	assert.Equal(t, []string{"a"}, svc.killed)
}

func TestApp_CloseFailureShowsToast(t *testing.T) {
	svc := newFakeService()
	svc.closeOK = false
	m := newTestModel(t, svc)
	m = update(t, m, instanceEvent(pubsub.UpdatedEvent, instance.Event{ShortcutID: "a", LaunchID: "L1", State: instance.StateRunning}))

	m = run(t, m, keyRunes("c"))

	assert.Equal(t, "Could not close Alpha", m.toaster.Message())
}

func TestApp_DeleteRefusesRunningShortcut(t *testing.T) {
	svc := newFakeService()
	m := newTestModel(t, svc)
	m = update(t, m, instanceEvent(pubsub.UpdatedEvent, instance.Event{ShortcutID: "a", LaunchID: "L1", State: instance.StateRunning}))

	m = update(t, m, keyRunes("d"))

	assert.Len(t, svc.all, 2)
	assert.Equal(t, "Stop Alpha before deleting it", m.toaster.Message())
}

func TestApp_DeleteRemovesShortcut(t *testing.T) {
	svc := newFakeService()
	m := newTestModel(t, svc)
	m = update(t, m, keyRunes("j"))

	m = run(t, m, keyRunes("d"))

	require.Len(t, m.shortcuts, 1)
	assert.Equal(t, 0, m.cursor, "cursor clamps to the shorter list")
	assert.Equal(t, "Deleted Beta", m.toaster.Message())
}

func TestApp_AddForm(t *testing.T) {
	svc := newFakeService()
	m := newTestModel(t, svc)

	m = update(t, m, keyRunes("a"))
	require.True(t, m.adding)
	assert.Contains(t, m.View(), "Add shortcut")

	m = update(t, m, keyRunes("Gamma"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, keyRunes("echo g"))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	m = run(t, m, cmd())

	assert.False(t, m.adding)
	require.Len(t, m.shortcuts, 3)
	assert.Equal(t, "Added Gamma", m.toaster.Message())
}

func TestApp_AddFormRequiresCommand(t *testing.T) {
	m := newTestModel(t, newFakeService())
	m = update(t, m, keyRunes("a"))
	m = update(t, m, keyRunes("Gamma"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, m.adding)
	assert.Equal(t, "command is required", m.form.err)
}

func TestApp_AddFormCancel(t *testing.T) {
	m := newTestModel(t, newFakeService())
	m = update(t, m, keyRunes("a"))

	m = run(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.adding)
}

func TestApp_ConnectionStatus(t *testing.T) {
	svc := newFakeService()
	m := newTestModel(t, svc)
	assert.Contains(t, m.View(), "disconnected")

	svc.connected = true
	m = update(t, m, connTickMsg{})

	assert.True(t, m.connected)
	assert.Contains(t, m.View(), "● connected")
}

func TestApp_SetupNoticeOnInit(t *testing.T) {
	svc := newFakeService()
	svc.notice = "Restart the launcher once"
	m := newTestModel(t, svc)

	m = update(t, m, setupNoticeMsg{text: "Restart the launcher once"})

	assert.True(t, m.toaster.Visible())
	assert.Contains(t, m.View(), "Restart the launcher once")
}

func TestApp_QuitKey(t *testing.T) {
	m := newTestModel(t, newFakeService())

	_, cmd := m.Update(keyRunes("q"))

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
