package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/shortcuts/internal/channel"
	"github.com/zjrosen/shortcuts/internal/host"
	"github.com/zjrosen/shortcuts/internal/instance"
	"github.com/zjrosen/shortcuts/internal/launcher"
	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// fakeChannel delivers messages to registered handlers synchronously and
// runs onConnect when Connect is called.
type fakeChannel struct {
	mu        sync.Mutex
	handlers  map[string][]channel.Handler
	connected bool
	sent      []channel.Message
	onConnect func()
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: map[string][]channel.Handler{}}
}

func (c *fakeChannel) On(typ string, h channel.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[typ] = append(c.handlers[typ], h)
}

func (c *fakeChannel) Connect(context.Context) {
	if c.onConnect != nil {
		c.onConnect()
	}
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
}

func (c *fakeChannel) Disconnect() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *fakeChannel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeChannel) Send(_ context.Context, typ string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return channel.ErrDisconnected
	}
	raw, _ := json.Marshal(payload)
	c.sent = append(c.sent, channel.Message{Type: typ, Payload: raw})
	return nil
}

func (c *fakeChannel) deliver(typ string, payload any) {
	raw, _ := json.Marshal(payload)
	c.mu.Lock()
	hs := append([]channel.Handler(nil), c.handlers[typ]...)
	c.mu.Unlock()
	for _, h := range hs {
		h(channel.Message{Type: typ, Payload: raw})
	}
}

// fakeBackend acks launches and, if run is set, plays the process lifecycle
// through the channel once the host has run the stub entry.
type fakeBackend struct {
	ch   *fakeChannel
	host *host.Memory
	run  bool

	mu       sync.Mutex
	all      shortcut.Collection
	stops    []string
	kills    []string
	stopErr  error
	launches int
}

func (b *fakeBackend) ListShortcuts(context.Context) (shortcut.Collection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.all.Clone(), nil
}

func (b *fakeBackend) AddShortcut(_ context.Context, s shortcut.Shortcut) (shortcut.Collection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.all == nil {
		b.all = shortcut.Collection{}
	}
	b.all[s.ID] = s
	return b.all.Clone(), nil
}

func (b *fakeBackend) ModifyShortcut(ctx context.Context, s shortcut.Shortcut) (shortcut.Collection, error) {
	return b.AddShortcut(ctx, s)
}

func (b *fakeBackend) RemoveShortcut(_ context.Context, id string) (shortcut.Collection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.all, id)
	return b.all.Clone(), nil
}

func (b *fakeBackend) LaunchInstance(_ context.Context, req rpc.LaunchRequest) (rpc.Ack, error) {
	b.mu.Lock()
	b.launches++
	n := b.launches
	b.mu.Unlock()
	if b.run {
		go func() {
			if !b.waitForRun(n) {
				return
			}
			b.ch.deliver(rpc.EventStarted, rpc.StartedEvent{ShortcutID: req.ShortcutID, LaunchID: req.LaunchID, PID: 99})
			b.ch.deliver(rpc.EventExited, rpc.ExitedEvent{ShortcutID: req.ShortcutID, LaunchID: req.LaunchID, ExitInfo: rpc.ExitInfo{Code: 0}})
		}()
	}
	return rpc.Ack{ShortcutID: req.ShortcutID, LaunchID: req.LaunchID}, nil
}

func (b *fakeBackend) waitForRun(n int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		runs := 0
		for _, op := range b.host.Ops() {
			if op.Kind == host.OpRun {
				runs++
			}
		}
		if runs >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func (b *fakeBackend) StopInstance(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stops = append(b.stops, id)
	return b.stopErr
}

func (b *fakeBackend) KillInstance(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kills = append(b.kills, id)
	return nil
}

func launcherConfig() launcher.Config {
	return launcher.Config{
		StubName:     "Bash Shortcuts",
		OrphanPrefix: "Bash Shortcuts - Instance",
		RunnerPath:   "/opt/shortcuts/runner.sh",
		StartDir:     "/opt/shortcuts",
		DetailsRoute: "/library/app/:appid",
		HomeRoute:    "/library/home",
	}
}

type harness struct {
	host    *host.Memory
	channel *fakeChannel
	backend *fakeBackend
	orch    *Orchestrator
}

func newHarness(t *testing.T, run bool) *harness {
	t.Helper()
	h := host.NewMemory()
	ch := newFakeChannel()
	b := &fakeBackend{ch: ch, host: h, run: run}
	o, err := New(Deps{
		Backend:  b,
		Channel:  ch,
		Launcher: launcher.New(h, h, launcherConfig()),
	}, Config{Registry: instance.Config{StartTimeout: 2 * time.Second}})
	require.NoError(t, err)
	t.Cleanup(o.Dismount)
	return &harness{host: h, channel: ch, backend: b, orch: o}
}

var s1 = shortcut.Shortcut{ID: "s1", Name: "Hello", Cmd: "echo hi"}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Deps{}, Config{})
	require.ErrorContains(t, err, "backend is required")
}

func TestInit_PurgesOrphansBeforeConnecting(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	_, err := h.host.Create(ctx, "Bash Shortcuts - Instance 1", "/bin/sh", "")
	require.NoError(t, err)
	_, err = h.host.Create(ctx, "Bash Shortcuts - Instance 2", "/bin/sh", "")
	require.NoError(t, err)
	_, err = h.host.Create(ctx, "Some Game", "/games/game", "")
	require.NoError(t, err)

	removedAtConnect := -1
	h.channel.onConnect = func() {
		entries, err := h.host.Entries(ctx)
		require.NoError(t, err)
		removedAtConnect = 3 - len(entries)
	}

	require.NoError(t, h.orch.Init(ctx))
	require.Equal(t, 2, removedAtConnect)
	require.True(t, h.orch.Connected())

	entries, err := h.host.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Some Game", entries[0].Name)

	// A second Init is a no-op.
	require.NoError(t, h.orch.Init(ctx))
}

func TestLaunchShortcut_EchoHiRunsToExit(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.orch.Init(ctx))

	exits := make(chan rpc.ExitInfo, 1)
	ok := h.orch.LaunchShortcut(ctx, s1, func(info rpc.ExitInfo) { exits <- info })
	require.True(t, ok)

	select {
	case info := <-exits:
		require.Equal(t, 0, info.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("onExit was not called")
	}

	require.Eventually(t, func() bool { return !h.orch.CheckIfRunning(ctx, s1) }, time.Second, 5*time.Millisecond)

	var kinds []host.OpKind
	var opts string
	for _, op := range h.host.Ops() {
		kinds = append(kinds, op.Kind)
		if op.Kind == host.OpSetOptions {
			opts = op.Arg
		}
	}
	require.Equal(t, []host.OpKind{host.OpCreate, host.OpSetOptions, host.OpRun}, kinds)
	require.Equal(t, "echo hi", opts)
}

func TestLaunchShortcut_DuplicateIsRejected(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	require.NoError(t, h.orch.Init(ctx))

	done := make(chan bool, 1)
	go func() { done <- h.orch.LaunchShortcut(ctx, s1, nil) }()
	require.Eventually(t, func() bool { return h.orch.CheckIfRunning(ctx, s1) }, time.Second, 5*time.Millisecond)

	require.False(t, h.orch.LaunchShortcut(ctx, s1, nil))

	h.channel.deliver(rpc.EventStarted, rpc.StartedEvent{ShortcutID: "s1"})
	require.True(t, <-done)

	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	require.Equal(t, 1, h.backend.launches)
}

func TestLaunch_FailsFastWhileDisconnected(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.orch.Init(ctx))
	h.channel.Disconnect()

	start := time.Now()
	_, err := h.orch.Launch(ctx, s1)
	require.ErrorIs(t, err, channel.ErrDisconnected)
	var lerr *instance.LaunchError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, instance.StageRequest, lerr.Stage)
	require.Less(t, time.Since(start), time.Second)

	require.False(t, h.orch.CheckIfRunning(ctx, s1))
	require.Empty(t, h.host.Ops())
	h.backend.mu.Lock()
	require.Zero(t, h.backend.launches)
	h.backend.mu.Unlock()

	h.channel.Connect(ctx)
	require.True(t, h.orch.LaunchShortcut(ctx, s1, nil))
}

func TestCloseAndKillShortcut(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	require.NoError(t, h.orch.Init(ctx))

	require.False(t, h.orch.CloseShortcut(ctx, s1))
	require.False(t, h.orch.KillShortcut(ctx, s1))

	type launched struct {
		handle *instance.ExitHandle
		err    error
	}
	done := make(chan launched, 1)
	go func() {
		handle, err := h.orch.Launch(ctx, s1)
		done <- launched{handle, err}
	}()
	require.Eventually(t, func() bool { return h.orch.CheckIfRunning(ctx, s1) }, time.Second, 5*time.Millisecond)
	h.channel.deliver(rpc.EventStarted, rpc.StartedEvent{ShortcutID: "s1"})
	res := <-done
	require.NoError(t, res.err)
	handle := res.handle

	h.backend.stopErr = errors.New("busy")
	require.False(t, h.orch.CloseShortcut(ctx, s1))
	require.True(t, h.orch.CheckIfRunning(ctx, s1))

	h.backend.stopErr = nil
	require.True(t, h.orch.CloseShortcut(ctx, s1))
	require.True(t, h.orch.CheckIfRunning(ctx, s1))

	// Close never escalates on its own; the caller decides to kill.
	require.True(t, h.orch.KillShortcut(ctx, s1))
	require.False(t, h.orch.CheckIfRunning(ctx, s1))

	h.channel.deliver(rpc.EventExited, rpc.ExitedEvent{ShortcutID: "s1", ExitInfo: rpc.ExitInfo{Signal: "SIGKILL"}})
	info, err := handle.Wait(ctx)
	require.NoError(t, err)
	require.True(t, info.Killed)

	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	require.Equal(t, []string{"s1", "s1"}, h.backend.stops)
	require.Equal(t, []string{"s1"}, h.backend.kills)
}

func TestMalformedNotificationIsIgnored(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	require.NoError(t, h.orch.Init(ctx))

	h.channel.mu.Lock()
	hs := h.channel.handlers[rpc.EventStarted]
	h.channel.mu.Unlock()
	require.NotPanics(t, func() {
		for _, fn := range hs {
			fn(channel.Message{Type: rpc.EventStarted, Payload: json.RawMessage(`{"shortcutId":`)})
			fn(channel.Message{Type: rpc.EventStarted})
		}
	})
	require.False(t, h.orch.CheckIfRunning(ctx, s1))
}

func TestLogAndPingUseChannel(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	require.ErrorIs(t, h.orch.Log(ctx, "info", "hello"), channel.ErrDisconnected)
	require.NoError(t, h.orch.Init(ctx))
	require.NoError(t, h.orch.Log(ctx, "info", "hello"))
	require.NoError(t, h.orch.Ping(ctx))

	h.channel.mu.Lock()
	defer h.channel.mu.Unlock()
	require.Len(t, h.channel.sent, 2)
	require.Equal(t, rpc.EventLog, h.channel.sent[0].Type)
	require.JSONEq(t, `{"level":"info","message":"hello"}`, string(h.channel.sent[0].Payload))
	require.Equal(t, rpc.EventPing, h.channel.sent[1].Type)
}

func TestDismount_TearsDownEverything(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.orch.Init(ctx))

	// The navigation filter is installed with the stub on first launch.
	require.True(t, h.orch.LaunchShortcut(ctx, s1, nil))
	require.Equal(t, 1, h.host.FilterCount())

	h.orch.Dismount()
	h.orch.Dismount()

	require.Zero(t, h.host.FilterCount())
	require.False(t, h.orch.Connected())
	require.False(t, h.orch.CheckIfRunning(ctx, s1))
	require.ErrorIs(t, h.orch.Init(ctx), instance.ErrClosed)
}
