// Package instance tracks the live backend process of each shortcut and owns
// the launch, stop and kill protocol.
//
// Every read and write of registry state happens inside a single FIFO command
// loop. Public methods submit commands to that loop and perform network calls
// on the caller's goroutine between commands, so two operations on the same
// shortcut always observe each other's completed transitions.
package instance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/shortcuts/internal/cachemanager"
	"github.com/zjrosen/shortcuts/internal/command"
	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/processor"
	"github.com/zjrosen/shortcuts/internal/pubsub"
	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// Backend is the instance half of the backend RPC surface.
type Backend interface {
	LaunchInstance(ctx context.Context, req rpc.LaunchRequest) (rpc.Ack, error)
	StopInstance(ctx context.Context, shortcutID string) error
	KillInstance(ctx context.Context, shortcutID string) error
}

// Launcher runs a shortcut through the host.
type Launcher interface {
	Launch(ctx context.Context, sc shortcut.Shortcut) error
}

// Config tunes the registry.
type Config struct {
	// RunnerPath and StartDir are forwarded in every launch request.
	RunnerPath string
	StartDir   string
	// StartTimeout bounds the wait for "started". Zero waits for ctx only.
	StartTimeout time.Duration
	// QueueCapacity is the command queue size.
	QueueCapacity int
	// TombstoneTTL is how long a killed instance is remembered.
	TombstoneTTL time.Duration
	// Middleware wraps every command handler.
	Middleware []processor.Middleware
}

// tombstone remembers a killed instance so a late "exited" can still resolve
// its handle.
type tombstone struct {
	shortcutID string
	launchID   string
	handle     *ExitHandle
	// killPending is set while the launch request is in flight. Loop only.
	killPending bool
}

// Registry is the instance registry.
type Registry struct {
	backend  Backend
	launcher Launcher
	cfg      Config

	proc       *processor.CommandProcessor
	records    map[string]*record
	tombstones *cachemanager.InMemoryCacheManager[string, *tombstone]
	broker     *pubsub.Broker[Event]

	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates a registry. Start must be called before use.
func New(backend Backend, launcher Launcher, cfg Config) *Registry {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = processor.DefaultQueueCapacity
	}
	if cfg.TombstoneTTL <= 0 {
		cfg.TombstoneTTL = cachemanager.DefaultExpiration
	}

	r := &Registry{
		backend:  backend,
		launcher: launcher,
		cfg:      cfg,
		records:  make(map[string]*record),
		broker:   pubsub.NewBroker[Event](),
	}

	cleanup := cfg.TombstoneTTL / 4
	if cleanup < 10*time.Millisecond {
		cleanup = 10 * time.Millisecond
	}
	r.tombstones = cachemanager.NewInMemoryCacheManager[string, *tombstone]("tombstones", cfg.TombstoneTTL, cleanup)
	r.tombstones.OnEvict(r.evictTombstone)

	r.proc = processor.New(
		processor.WithQueueCapacity(cfg.QueueCapacity),
		processor.WithMiddleware(cfg.Middleware...),
	)
	r.registerHandlers()
	return r
}

func (r *Registry) registerHandlers() {
	r.proc.RegisterHandler(CmdBeginLaunch, processor.HandlerFunc(r.handleBeginLaunch))
	r.proc.RegisterHandler(CmdLaunchAcked, processor.HandlerFunc(r.handleLaunchAcked))
	r.proc.RegisterHandler(CmdLaunchFailed, processor.HandlerFunc(r.handleLaunchFailed))
	r.proc.RegisterHandler(CmdStarted, processor.HandlerFunc(r.handleStarted))
	r.proc.RegisterHandler(CmdExited, processor.HandlerFunc(r.handleExited))
	r.proc.RegisterHandler(CmdBeginStop, processor.HandlerFunc(r.handleBeginStop))
	r.proc.RegisterHandler(CmdStopFailed, processor.HandlerFunc(r.handleStopFailed))
	r.proc.RegisterHandler(CmdKill, processor.HandlerFunc(r.handleKill))
	r.proc.RegisterHandler(CmdQuery, processor.HandlerFunc(r.handleQuery))
	r.proc.RegisterHandler(CmdSnapshot, processor.HandlerFunc(r.handleSnapshot))
}

// Start runs the command loop until ctx ends or Close is called.
func (r *Registry) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	log.SafeGo("instance-registry", func() { r.proc.Run(runCtx) })
	return r.proc.WaitForReady(ctx)
}

// Close stops the loop. Handles of live instances are abandoned with
// ErrClosed; handles of killed instances resolve as killed.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		r.proc.Stop()

		// The loop has exited; records are safe to touch here.
		for id, rec := range r.records {
			rec.notify(ErrClosed)
			rec.handle.abandon(ErrClosed)
			delete(r.records, id)
		}
		ctx := context.Background()
		for key := range r.tombstones.Items(ctx) {
			_ = r.tombstones.Delete(ctx, key)
		}
		r.broker.Close()
	})
}

// Subscribe returns a channel of instance transitions.
func (r *Registry) Subscribe(ctx context.Context) <-chan pubsub.Event[Event] {
	return r.broker.Subscribe(ctx)
}

// Broker exposes the event broker for pubsub listeners.
func (r *Registry) Broker() *pubsub.Broker[Event] {
	return r.broker
}

// Launch starts sc and returns once the backend reports the process started.
// h is resolved when the process exits; on any returned error other than
// ErrStartTimeout or a ctx error, h has been resolved or abandoned already.
func (r *Registry) Launch(ctx context.Context, sc shortcut.Shortcut, h *ExitHandle) error {
	if h == nil {
		h = NewExitHandle()
	}
	launchID := uuid.NewString()

	if err := ctx.Err(); err != nil {
		return err
	}
	// Registry state changes are submitted without the caller's cancellation
	// so a record is never left half-way through a launch.
	loopCtx := context.WithoutCancel(ctx)

	res, err := r.submit(loopCtx, newBeginLaunch(sc, launchID, h))
	if err != nil {
		return err
	}
	waiter := res.Data.(chan error)

	log.Debug(log.CatRegistry, "launch requested", "shortcut_id", sc.ID, "launch_id", launchID)
	ack, err := r.backend.LaunchInstance(ctx, rpc.LaunchRequest{
		ShortcutID: sc.ID,
		LaunchID:   launchID,
		RunnerPath: r.cfg.RunnerPath,
		StartDir:   r.cfg.StartDir,
	})
	if err != nil {
		lerr := &LaunchError{ShortcutID: sc.ID, Stage: StageRequest, Cause: err}
		if ctx.Err() != nil {
			// The backend may have spawned the process before the request was cut off.
			r.sendKill(loopCtx, sc.ID)
		}
		r.launchFailed(ctx, sc.ID, launchID, lerr)
		return lerr
	}
	if ack.LaunchID != "" && ack.LaunchID != launchID {
		log.Warn(log.CatRegistry, "launch ack for different launch id",
			"shortcut_id", sc.ID, "want", launchID, "got", ack.LaunchID)
	}

	res, err = r.submit(loopCtx, newLaunchAcked(sc.ID, launchID))
	if err != nil {
		return err
	}
	out := res.Data.(ackOutcome)
	if !out.proceed {
		var werr error
		select {
		case werr = <-waiter:
		default:
			werr = ErrAbandoned
		}
		if out.killPending || errors.Is(werr, ErrKilled) {
			r.sendKill(loopCtx, sc.ID)
			return ErrKilled
		}
		return werr
	}

	if err := ctx.Err(); err != nil {
		r.sendKill(loopCtx, sc.ID)
		r.launchFailed(ctx, sc.ID, launchID, &LaunchError{ShortcutID: sc.ID, Stage: StageRun, Cause: err})
		return err
	}

	// A kill or an early exit may have landed after the ack.
	started, err := r.confirmRun(loopCtx, sc.ID, launchID, waiter)
	if err != nil {
		return err
	}

	if err := r.launcher.Launch(ctx, sc); err != nil {
		lerr := &LaunchError{ShortcutID: sc.ID, Stage: StageRun, Cause: err}
		r.launchFailed(ctx, sc.ID, launchID, lerr)
		r.sendKill(loopCtx, sc.ID)
		return lerr
	}
	if started {
		return nil
	}

	return r.awaitStart(ctx, waiter)
}

// confirmRun checks that the record for launchID is still live before the
// host run is issued. started is true when "started" was already consumed
// from waiter.
func (r *Registry) confirmRun(ctx context.Context, shortcutID, launchID string, waiter <-chan error) (started bool, err error) {
	res, err := r.submit(ctx, newQuery(shortcutID))
	if err != nil {
		return false, err
	}
	if info, ok := res.Data.(Info); ok && info.LaunchID == launchID {
		return false, nil
	}
	select {
	case werr := <-waiter:
		if werr != nil {
			log.Debug(log.CatRegistry, "host run skipped", "shortcut_id", shortcutID, "launch_id", launchID, "error", werr)
			return false, werr
		}
		return true, nil
	default:
		return false, ErrAbandoned
	}
}

func (r *Registry) awaitStart(ctx context.Context, waiter <-chan error) error {
	var timeout <-chan time.Time
	if r.cfg.StartTimeout > 0 {
		timer := time.NewTimer(r.cfg.StartTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-waiter:
		return err
	case <-timeout:
		return ErrStartTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) launchFailed(ctx context.Context, shortcutID, launchID string, err error) {
	if _, serr := r.submit(context.WithoutCancel(ctx), newLaunchFailed(shortcutID, launchID, err)); serr != nil {
		log.ErrorErr(log.CatRegistry, "recording launch failure", serr, "shortcut_id", shortcutID)
	}
}

func (r *Registry) sendKill(ctx context.Context, shortcutID string) {
	if err := r.backend.KillInstance(ctx, shortcutID); err != nil {
		log.Warn(log.CatRegistry, "kill request failed", "shortcut_id", shortcutID, "error", err)
	}
}

// Stop asks the backend to terminate the instance gracefully. The instance
// stays tracked as Stopping until "exited" arrives. A failed request reverts
// it to Running.
func (r *Registry) Stop(ctx context.Context, shortcutID string) error {
	res, err := r.submit(ctx, newBeginStop(shortcutID))
	if err != nil {
		return err
	}
	out := res.Data.(stopOutcome)
	if out.already {
		return nil
	}

	if err := r.backend.StopInstance(ctx, shortcutID); err != nil {
		if _, serr := r.submit(context.WithoutCancel(ctx), newStopFailed(shortcutID, out.launchID)); serr != nil {
			log.ErrorErr(log.CatRegistry, "reverting stop", serr, "shortcut_id", shortcutID)
		}
		return fmt.Errorf("stopping %s: %w", shortcutID, err)
	}
	return nil
}

// Kill removes the instance immediately and asks the backend to terminate
// it. If the launch request is still in flight the kill is sent once the
// backend acknowledges it.
func (r *Registry) Kill(ctx context.Context, shortcutID string) error {
	res, err := r.submit(ctx, newKill(shortcutID))
	if err != nil {
		return err
	}
	out := res.Data.(killOutcome)
	if !out.sendNow {
		log.Debug(log.CatRegistry, "kill deferred until launch ack", "shortcut_id", shortcutID, "launch_id", out.launchID)
		return nil
	}
	if err := r.backend.KillInstance(ctx, shortcutID); err != nil {
		return fmt.Errorf("killing %s: %w", shortcutID, err)
	}
	return nil
}

// Started applies a backend "started" notification.
func (r *Registry) Started(ctx context.Context, ev rpc.StartedEvent) error {
	_, err := r.submit(ctx, NewStartedCommand(ev))
	return err
}

// Exited applies a backend "exited" notification.
func (r *Registry) Exited(ctx context.Context, ev rpc.ExitedEvent) error {
	_, err := r.submit(ctx, NewExitedCommand(ev))
	return err
}

// Lookup returns the live instance for shortcutID.
func (r *Registry) Lookup(ctx context.Context, shortcutID string) (Info, bool) {
	res, err := r.submit(ctx, newQuery(shortcutID))
	if err != nil {
		return Info{}, false
	}
	info, ok := res.Data.(Info)
	return info, ok
}

// IsActive reports whether shortcutID has a Launching, Running or Stopping instance.
func (r *Registry) IsActive(ctx context.Context, shortcutID string) bool {
	_, ok := r.Lookup(ctx, shortcutID)
	return ok
}

// Snapshot returns every live instance.
func (r *Registry) Snapshot(ctx context.Context) []Info {
	res, err := r.submit(ctx, newSnapshot())
	if err != nil {
		return nil
	}
	infos, _ := res.Data.([]Info)
	return infos
}

type traceable interface {
	SetSpanContext(trace.SpanContext)
}

// submit runs cmd on the loop. A failed result is returned as its error.
func (r *Registry) submit(ctx context.Context, cmd command.Command) (*command.CommandResult, error) {
	if t, ok := cmd.(traceable); ok {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			t.SetSpanContext(sc)
		}
	}
	res, err := r.proc.SubmitAndWait(ctx, cmd)
	if err != nil {
		if errors.Is(err, command.ErrNotRunning) {
			return nil, ErrClosed
		}
		return nil, err
	}
	if !res.Success {
		return res, res.Error
	}
	return res, nil
}
