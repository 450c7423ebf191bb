package instance

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/shortcuts/internal/command"
	"github.com/zjrosen/shortcuts/internal/mocks"
	"github.com/zjrosen/shortcuts/internal/processor"
	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

var s1 = shortcut.Shortcut{ID: "s1", Name: "Hello", Cmd: "echo hi"}

func newTestRegistry(t *testing.T, b Backend, l Launcher, cfg Config) *Registry {
	t.Helper()
	r := New(b, l, cfg)
	require.NoError(t, r.Start(context.Background()))
	t.Cleanup(r.Close)
	return r
}

func forShortcut(id string) any {
	return mock.MatchedBy(func(req rpc.LaunchRequest) bool { return req.ShortcutID == id })
}

func requireState(t *testing.T, r *Registry, id string, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		info, ok := r.Lookup(context.Background(), id)
		return ok && info.State == want
	}, time.Second, 5*time.Millisecond)
}

type launchResult struct {
	err error
}

func launchAsync(r *Registry, sc shortcut.Shortcut, h *ExitHandle) <-chan launchResult {
	done := make(chan launchResult, 1)
	go func() {
		done <- launchResult{err: r.Launch(context.Background(), sc, h)}
	}()
	return done
}

func awaitLaunch(t *testing.T, done <-chan launchResult) error {
	t.Helper()
	select {
	case res := <-done:
		return res.err
	case <-time.After(2 * time.Second):
		t.Fatal("launch did not return")
		return nil
	}
}

// scriptedBackend acks launches and, when autoRun is set, reports the
// process started and exited like a short command would.
type scriptedBackend struct {
	reg      atomic.Pointer[Registry]
	autoRun  bool
	exitCode int

	mu       sync.Mutex
	launches []rpc.LaunchRequest
	kills    []string
}

func (b *scriptedBackend) LaunchInstance(_ context.Context, req rpc.LaunchRequest) (rpc.Ack, error) {
	b.mu.Lock()
	b.launches = append(b.launches, req)
	b.mu.Unlock()
	if b.autoRun {
		go func() {
			r := b.reg.Load()
			_ = r.Started(context.Background(), rpc.StartedEvent{ShortcutID: req.ShortcutID, LaunchID: req.LaunchID, PID: 4242})
			_ = r.Exited(context.Background(), rpc.ExitedEvent{ShortcutID: req.ShortcutID, LaunchID: req.LaunchID, ExitInfo: rpc.ExitInfo{Code: b.exitCode}})
		}()
	}
	return rpc.Ack{ShortcutID: req.ShortcutID, LaunchID: req.LaunchID}, nil
}

func (b *scriptedBackend) StopInstance(context.Context, string) error { return nil }

func (b *scriptedBackend) KillInstance(_ context.Context, id string) error {
	b.mu.Lock()
	b.kills = append(b.kills, id)
	b.mu.Unlock()
	return nil
}

type nopLauncher struct{}

func (nopLauncher) Launch(context.Context, shortcut.Shortcut) error { return nil }

func TestLaunch_ShortCommandRunsToExit(t *testing.T) {
	backend := &scriptedBackend{autoRun: true}
	r := newTestRegistry(t, backend, nopLauncher{}, Config{RunnerPath: "/opt/runner.sh", StartDir: "/opt", StartTimeout: time.Second})
	backend.reg.Store(r)

	h := NewExitHandle()
	exits := make(chan rpc.ExitInfo, 2)
	h.OnExit(func(info rpc.ExitInfo) { exits <- info })

	require.NoError(t, r.Launch(context.Background(), s1, h))

	info, err := h.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, info.Code)
	require.False(t, info.Killed)

	select {
	case got := <-exits:
		require.Equal(t, 0, got.Code)
	case <-time.After(time.Second):
		t.Fatal("onExit not called")
	}
	require.Never(t, func() bool { return len(exits) > 0 }, 50*time.Millisecond, 10*time.Millisecond)

	require.Eventually(t, func() bool { return !r.IsActive(context.Background(), "s1") }, time.Second, 5*time.Millisecond)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.launches, 1)
	require.Equal(t, "/opt/runner.sh", backend.launches[0].RunnerPath)
	require.Equal(t, "/opt", backend.launches[0].StartDir)
	require.NotEmpty(t, backend.launches[0].LaunchID)
}

func TestLaunch_DuplicateSendsOneRequest(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).Return(rpc.Ack{ShortcutID: "s1"}, nil).Once()
	launcher.EXPECT().Launch(mock.Anything, s1).Return(nil).Once()

	r := newTestRegistry(t, backend, launcher, Config{StartTimeout: 2 * time.Second})

	first := launchAsync(r, s1, NewExitHandle())
	requireState(t, r, "s1", StateLaunching)

	err := r.Launch(context.Background(), s1, NewExitHandle())
	require.ErrorIs(t, err, ErrAlreadyActive)

	require.NoError(t, r.Started(context.Background(), rpc.StartedEvent{ShortcutID: "s1"}))
	require.NoError(t, awaitLaunch(t, first))

	err = r.Launch(context.Background(), s1, NewExitHandle())
	require.ErrorIs(t, err, ErrAlreadyActive)
	requireState(t, r, "s1", StateRunning)
}

func TestLaunch_RequestFailureAbandonsHandle(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).
		Return(rpc.Ack{}, &rpc.Error{Kind: rpc.KindTransport, Method: rpc.MethodLaunchInstance, Message: "connection refused"}).Once()

	r := newTestRegistry(t, backend, launcher, Config{})

	h := NewExitHandle()
	called := false
	h.OnExit(func(rpc.ExitInfo) { called = true })

	err := r.Launch(context.Background(), s1, h)
	var lerr *LaunchError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, StageRequest, lerr.Stage)
	require.True(t, rpc.IsTransport(err))

	_, herr := h.Wait(context.Background())
	require.ErrorIs(t, herr, ErrAbandoned)
	require.False(t, r.IsActive(context.Background(), "s1"))
	require.False(t, called)
}

func TestLaunch_RunFailureKillsBackendProcess(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).Return(rpc.Ack{ShortcutID: "s1"}, nil).Once()
	backend.EXPECT().KillInstance(mock.Anything, "s1").Return(nil).Once()
	launcher.EXPECT().Launch(mock.Anything, s1).Return(errors.New("host refused")).Once()

	r := newTestRegistry(t, backend, launcher, Config{})

	h := NewExitHandle()
	err := r.Launch(context.Background(), s1, h)
	var lerr *LaunchError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, StageRun, lerr.Stage)

	_, herr := h.Info()
	require.ErrorIs(t, herr, ErrAbandoned)
	require.False(t, r.IsActive(context.Background(), "s1"))
}

func TestLaunch_ExitBeforeStartIsLaunchFailure(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).Return(rpc.Ack{ShortcutID: "s1"}, nil).Once()
	launched := make(chan struct{})
	launcher.EXPECT().Launch(mock.Anything, s1).RunAndReturn(func(context.Context, shortcut.Shortcut) error {
		close(launched)
		return nil
	}).Once()

	r := newTestRegistry(t, backend, launcher, Config{StartTimeout: 2 * time.Second})

	h := NewExitHandle()
	called := false
	h.OnExit(func(rpc.ExitInfo) { called = true })
	done := launchAsync(r, s1, h)
	<-launched

	require.NoError(t, r.Exited(context.Background(), rpc.ExitedEvent{ShortcutID: "s1", ExitInfo: rpc.ExitInfo{Code: 127, Error: "command not found"}}))

	err := awaitLaunch(t, done)
	var lerr *LaunchError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, StageStart, lerr.Stage)
	require.Contains(t, err.Error(), "command not found")

	_, herr := h.Info()
	require.ErrorIs(t, herr, ErrAbandoned)
	require.False(t, called)
}

func TestLaunch_StartTimeoutKeepsLaunching(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).Return(rpc.Ack{ShortcutID: "s1"}, nil).Once()
	launcher.EXPECT().Launch(mock.Anything, s1).Return(nil).Once()

	r := newTestRegistry(t, backend, launcher, Config{StartTimeout: 20 * time.Millisecond})

	err := r.Launch(context.Background(), s1, NewExitHandle())
	require.ErrorIs(t, err, ErrStartTimeout)

	info, ok := r.Lookup(context.Background(), "s1")
	require.True(t, ok)
	require.Equal(t, StateLaunching, info.State)

	// A late started still promotes the record.
	require.NoError(t, r.Started(context.Background(), rpc.StartedEvent{ShortcutID: "s1", PID: 7}))
	requireState(t, r, "s1", StateRunning)
}

func TestStarted_StaleLaunchIDIgnored(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).Return(rpc.Ack{ShortcutID: "s1"}, nil).Once()
	launcher.EXPECT().Launch(mock.Anything, s1).Return(nil).Once()

	r := newTestRegistry(t, backend, launcher, Config{StartTimeout: 2 * time.Second})
	done := launchAsync(r, s1, NewExitHandle())
	requireState(t, r, "s1", StateLaunching)

	require.NoError(t, r.Started(context.Background(), rpc.StartedEvent{ShortcutID: "s1", LaunchID: "old-launch"}))
	require.NoError(t, r.Exited(context.Background(), rpc.ExitedEvent{ShortcutID: "s1", LaunchID: "old-launch"}))
	requireState(t, r, "s1", StateLaunching)

	info, ok := r.Lookup(context.Background(), "s1")
	require.True(t, ok)
	require.NoError(t, r.Started(context.Background(), rpc.StartedEvent{ShortcutID: "s1", LaunchID: info.LaunchID}))
	require.NoError(t, awaitLaunch(t, done))
}

func TestKill_WhileLaunchingIgnoresLateStarted(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).Return(rpc.Ack{ShortcutID: "s1"}, nil).Once()
	backend.EXPECT().KillInstance(mock.Anything, "s1").Return(nil).Once()
	launched := make(chan struct{})
	launcher.EXPECT().Launch(mock.Anything, s1).RunAndReturn(func(context.Context, shortcut.Shortcut) error {
		close(launched)
		return nil
	}).Once()

	r := newTestRegistry(t, backend, launcher, Config{StartTimeout: 2 * time.Second})

	h := NewExitHandle()
	done := launchAsync(r, s1, h)
	<-launched
	requireState(t, r, "s1", StateLaunching)

	require.NoError(t, r.Kill(context.Background(), "s1"))
	require.False(t, r.IsActive(context.Background(), "s1"))
	require.ErrorIs(t, awaitLaunch(t, done), ErrKilled)

	require.NoError(t, r.Started(context.Background(), rpc.StartedEvent{ShortcutID: "s1"}))
	require.False(t, r.IsActive(context.Background(), "s1"))

	require.NoError(t, r.Exited(context.Background(), rpc.ExitedEvent{ShortcutID: "s1", ExitInfo: rpc.ExitInfo{Signal: "SIGKILL", Code: -1}}))
	info, err := h.Wait(context.Background())
	require.NoError(t, err)
	require.True(t, info.Killed)
	require.Equal(t, "SIGKILL", info.Signal)

	// A duplicate exit for the same id is not an error.
	require.NoError(t, r.Exited(context.Background(), rpc.ExitedEvent{ShortcutID: "s1"}))
}

func TestKill_DuringLaunchRequestIsDeferredUntilAck(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	release := make(chan struct{})
	requested := make(chan struct{})
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).RunAndReturn(func(context.Context, rpc.LaunchRequest) (rpc.Ack, error) {
		close(requested)
		<-release
		return rpc.Ack{ShortcutID: "s1"}, nil
	}).Once()

	r := newTestRegistry(t, backend, launcher, Config{StartTimeout: 2 * time.Second})

	done := launchAsync(r, s1, NewExitHandle())
	<-requested

	require.NoError(t, r.Kill(context.Background(), "s1"))
	backend.AssertNotCalled(t, "KillInstance", mock.Anything, mock.Anything)

	killed := make(chan struct{})
	backend.EXPECT().KillInstance(mock.Anything, "s1").RunAndReturn(func(context.Context, string) error {
		close(killed)
		return nil
	}).Once()
	close(release)

	require.ErrorIs(t, awaitLaunch(t, done), ErrKilled)
	select {
	case <-killed:
	case <-time.After(time.Second):
		t.Fatal("kill was not sent after ack")
	}
	launcher.AssertNotCalled(t, "Launch", mock.Anything, mock.Anything)
}

func TestLaunch_CancelledDuringRequestKillsAndClears(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).RunAndReturn(func(context.Context, rpc.LaunchRequest) (rpc.Ack, error) {
		cancel()
		return rpc.Ack{ShortcutID: "s1"}, nil
	}).Once()
	backend.EXPECT().KillInstance(mock.Anything, "s1").Return(nil).Once()

	r := newTestRegistry(t, backend, launcher, Config{StartTimeout: 2 * time.Second})

	h := NewExitHandle()
	err := r.Launch(ctx, s1, h)
	require.ErrorIs(t, err, context.Canceled)

	require.False(t, r.IsActive(context.Background(), "s1"))
	_, herr := h.Info()
	require.ErrorIs(t, herr, ErrAbandoned)
	require.ErrorIs(t, r.Kill(context.Background(), "s1"), ErrNotRunning)
	launcher.AssertNotCalled(t, "Launch", mock.Anything, mock.Anything)
}

func TestLaunch_CancelledBeforeSubmitLeavesNoRecord(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	r := newTestRegistry(t, backend, launcher, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, r.Launch(ctx, s1, NewExitHandle()), context.Canceled)
	require.False(t, r.IsActive(context.Background(), "s1"))
}

func TestKill_BetweenAckAndRunSkipsHostRun(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).Return(rpc.Ack{ShortcutID: "s1"}, nil).Once()
	backend.EXPECT().KillInstance(mock.Anything, "s1").Return(nil).Once()

	var reg atomic.Pointer[Registry]
	killDone := make(chan error, 1)
	killAfterAck := func(next processor.CommandHandler) processor.CommandHandler {
		return processor.HandlerFunc(func(ctx context.Context, cmd command.Command) (*command.CommandResult, error) {
			res, err := next.Handle(ctx, cmd)
			if cmd.Type() == CmdLaunchAcked {
				go func() { killDone <- reg.Load().Kill(context.Background(), "s1") }()
				// Hold the loop so the kill is queued ahead of the launch's next command.
				time.Sleep(100 * time.Millisecond)
			}
			return res, err
		})
	}

	r := newTestRegistry(t, backend, launcher, Config{
		StartTimeout: 2 * time.Second,
		Middleware:   []processor.Middleware{killAfterAck},
	})
	reg.Store(r)

	h := NewExitHandle()
	require.ErrorIs(t, r.Launch(context.Background(), s1, h), ErrKilled)
	require.NoError(t, <-killDone)

	require.False(t, r.IsActive(context.Background(), "s1"))
	launcher.AssertNotCalled(t, "Launch", mock.Anything, mock.Anything)
}

func TestKill_TombstoneExpiryResolvesKilled(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).Return(rpc.Ack{ShortcutID: "s1"}, nil).Once()
	backend.EXPECT().KillInstance(mock.Anything, "s1").Return(nil).Once()
	launcher.EXPECT().Launch(mock.Anything, s1).Return(nil).Once()

	r := newTestRegistry(t, backend, launcher, Config{StartTimeout: 2 * time.Second, TombstoneTTL: 30 * time.Millisecond})

	h := NewExitHandle()
	done := launchAsync(r, s1, h)
	requireState(t, r, "s1", StateLaunching)
	require.NoError(t, r.Started(context.Background(), rpc.StartedEvent{ShortcutID: "s1"}))
	require.NoError(t, awaitLaunch(t, done))

	require.NoError(t, r.Kill(context.Background(), "s1"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	info, err := h.Wait(ctx)
	require.NoError(t, err)
	require.True(t, info.Killed)
}

func TestKill_NotRunning(t *testing.T) {
	r := newTestRegistry(t, mocks.NewMockInstanceBackend(t), mocks.NewMockLauncher(t), Config{})
	require.ErrorIs(t, r.Kill(context.Background(), "missing"), ErrNotRunning)
}

func TestStop_RevertsToRunningOnFailure(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).Return(rpc.Ack{ShortcutID: "s1"}, nil).Once()
	launcher.EXPECT().Launch(mock.Anything, s1).Return(nil).Once()
	backend.EXPECT().StopInstance(mock.Anything, "s1").Return(errors.New("backend busy")).Once()
	backend.EXPECT().StopInstance(mock.Anything, "s1").Return(nil).Once()

	r := newTestRegistry(t, backend, launcher, Config{StartTimeout: 2 * time.Second})

	h := NewExitHandle()
	done := launchAsync(r, s1, h)
	requireState(t, r, "s1", StateLaunching)
	require.NoError(t, r.Started(context.Background(), rpc.StartedEvent{ShortcutID: "s1"}))
	require.NoError(t, awaitLaunch(t, done))

	err := r.Stop(context.Background(), "s1")
	require.ErrorContains(t, err, "backend busy")
	requireState(t, r, "s1", StateRunning)

	require.NoError(t, r.Stop(context.Background(), "s1"))
	requireState(t, r, "s1", StateStopping)

	// Already stopping: no second request.
	require.NoError(t, r.Stop(context.Background(), "s1"))

	require.NoError(t, r.Exited(context.Background(), rpc.ExitedEvent{ShortcutID: "s1", ExitInfo: rpc.ExitInfo{Signal: "SIGTERM"}}))
	info, err := h.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, "SIGTERM", info.Signal)
	require.False(t, r.IsActive(context.Background(), "s1"))
}

func TestStop_NotRunning(t *testing.T) {
	backend := mocks.NewMockInstanceBackend(t)
	launcher := mocks.NewMockLauncher(t)
	backend.EXPECT().LaunchInstance(mock.Anything, forShortcut("s1")).Return(rpc.Ack{ShortcutID: "s1"}, nil).Maybe()
	launcher.EXPECT().Launch(mock.Anything, s1).Return(nil).Maybe()

	r := newTestRegistry(t, backend, launcher, Config{StartTimeout: 2 * time.Second})
	require.ErrorIs(t, r.Stop(context.Background(), "s1"), ErrNotRunning)

	launchAsync(r, s1, NewExitHandle())
	requireState(t, r, "s1", StateLaunching)
	require.ErrorIs(t, r.Stop(context.Background(), "s1"), ErrNotRunning)
}

func TestSnapshotAndEvents(t *testing.T) {
	backend := &scriptedBackend{}
	r := newTestRegistry(t, backend, nopLauncher{}, Config{StartTimeout: 2 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := r.Subscribe(ctx)

	s2 := shortcut.Shortcut{ID: "s2", Name: "Two", Cmd: "sleep 1"}
	launchAsync(r, s1, NewExitHandle())
	requireState(t, r, "s1", StateLaunching)
	launchAsync(r, s2, NewExitHandle())
	requireState(t, r, "s2", StateLaunching)

	snap := r.Snapshot(context.Background())
	require.Len(t, snap, 2)
	require.Equal(t, "s1", snap[0].ShortcutID)
	require.Equal(t, "s2", snap[1].ShortcutID)

	select {
	case ev := <-events:
		require.Equal(t, "s1", ev.Payload.ShortcutID)
		require.Equal(t, StateLaunching, ev.Payload.State)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
}

func TestClose_AbandonsLiveHandles(t *testing.T) {
	backend := &scriptedBackend{}
	r := New(backend, nopLauncher{}, Config{StartTimeout: 2 * time.Second})
	require.NoError(t, r.Start(context.Background()))

	h := NewExitHandle()
	done := launchAsync(r, s1, h)
	requireState(t, r, "s1", StateLaunching)

	r.Close()
	require.Error(t, awaitLaunch(t, done))
	_, err := h.Wait(context.Background())
	require.ErrorIs(t, err, ErrClosed)

	require.ErrorIs(t, r.Launch(context.Background(), s1, nil), ErrClosed)
}
