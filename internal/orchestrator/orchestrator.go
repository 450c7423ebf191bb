// Package orchestrator is the composition root of the shortcuts frontend.
// It wires the event channel, store client, launcher adapter and instance
// registry together and exposes launch, close, kill and query operations to
// the UI layer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/shortcuts/internal/channel"
	"github.com/zjrosen/shortcuts/internal/instance"
	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/processor"
	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/shortcut"
	"github.com/zjrosen/shortcuts/internal/store"
	"github.com/zjrosen/shortcuts/internal/tracing"
)

// Backend is the full request/response surface. *rpc.Client implements it.
type Backend interface {
	store.Backend
	instance.Backend
}

// EventChannel is the notification transport. *channel.Channel implements it.
type EventChannel interface {
	On(typ string, h channel.Handler)
	Connect(ctx context.Context)
	Disconnect()
	Send(ctx context.Context, typ string, payload any) error
	Connected() bool
}

// Launcher is the host side. *launcher.Adapter implements it.
type Launcher interface {
	PurgeOrphans(ctx context.Context) (int, error)
	Launch(ctx context.Context, sc shortcut.Shortcut) error
	SetupNotice() (string, bool)
	Teardown()
}

// Deps are the collaborators the orchestrator composes.
type Deps struct {
	Backend  Backend
	Channel  EventChannel
	Launcher Launcher
	// Tracer is optional. When nil the global tracer is used, which is a
	// no-op unless a tracing provider was installed.
	Tracer trace.Tracer
}

// Validate checks that every required collaborator is present.
func (d Deps) Validate() error {
	if d.Backend == nil {
		return fmt.Errorf("backend is required")
	}
	if d.Channel == nil {
		return fmt.Errorf("event channel is required")
	}
	if d.Launcher == nil {
		return fmt.Errorf("launcher is required")
	}
	return nil
}

// Config tunes the registry the orchestrator owns.
type Config struct {
	Registry instance.Config
	// NotifyTimeout bounds how long a channel notification may wait to be
	// applied to the registry.
	NotifyTimeout time.Duration
}

// Orchestrator is the composition root.
type Orchestrator struct {
	deps     Deps
	cfg      Config
	tracer   trace.Tracer
	store    *store.Client
	registry *instance.Registry

	mu        sync.Mutex
	started   bool
	dismissed bool
}

// New composes the orchestrator. Init must be called before use.
func New(deps Deps, cfg Config) (*Orchestrator, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 5 * time.Second
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/zjrosen/shortcuts/internal/orchestrator")
	}

	regCfg := cfg.Registry
	regCfg.Middleware = append([]processor.Middleware{
		processor.NewLoggingMiddleware(),
		tracing.NewTracingMiddleware(tracer),
		processor.NewTimeoutMiddleware(processor.TimeoutMiddlewareConfig{}),
	}, regCfg.Middleware...)

	return &Orchestrator{
		deps:     deps,
		cfg:      cfg,
		tracer:   tracer,
		store:    store.New(deps.Backend),
		registry: instance.New(deps.Backend, deps.Launcher, regCfg),
	}, nil
}

// Init purges orphaned host entries, starts the registry and then connects
// the event channel. The purge always completes before the channel connects.
func (o *Orchestrator) Init(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dismissed {
		return instance.ErrClosed
	}
	if o.started {
		return nil
	}

	ctx, span := o.tracer.Start(ctx, tracing.SpanPrefixOrch+"init")
	defer span.End()

	removed, err := o.deps.Launcher.PurgeOrphans(ctx)
	if err != nil {
		log.ErrorErr(log.CatOrch, "orphan purge incomplete", err, "removed", removed)
	} else if removed > 0 {
		log.Info(log.CatOrch, "purged orphaned entries", "count", removed)
	}

	if err := o.registry.Start(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("starting instance registry: %w", err)
	}

	o.deps.Channel.On(rpc.EventStarted, o.onStarted)
	o.deps.Channel.On(rpc.EventExited, o.onExited)
	o.deps.Channel.On(rpc.EventPong, func(channel.Message) {
		log.Debug(log.CatChannel, "pong")
	})
	o.deps.Channel.Connect(context.WithoutCancel(ctx))

	o.started = true
	log.Info(log.CatOrch, "orchestrator ready")
	return nil
}

func (o *Orchestrator) onStarted(msg channel.Message) {
	var ev rpc.StartedEvent
	if err := msg.Decode(&ev); err != nil {
		log.Warn(log.CatChannel, "malformed started notification", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.NotifyTimeout)
	defer cancel()
	if err := o.registry.Started(ctx, ev); err != nil && !errors.Is(err, instance.ErrClosed) {
		log.Warn(log.CatRegistry, "started notification rejected", "shortcut_id", ev.ShortcutID, "error", err)
	}
}

func (o *Orchestrator) onExited(msg channel.Message) {
	var ev rpc.ExitedEvent
	if err := msg.Decode(&ev); err != nil {
		log.Warn(log.CatChannel, "malformed exited notification", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.NotifyTimeout)
	defer cancel()
	if err := o.registry.Exited(ctx, ev); err != nil && !errors.Is(err, instance.ErrClosed) {
		log.Warn(log.CatRegistry, "exited notification rejected", "shortcut_id", ev.ShortcutID, "error", err)
	}
}

// Launch starts sc and returns its exit handle once the backend confirms the
// process started.
func (o *Orchestrator) Launch(ctx context.Context, sc shortcut.Shortcut) (*instance.ExitHandle, error) {
	ctx, span := o.tracer.Start(ctx, tracing.SpanPrefixOrch+"launch",
		trace.WithAttributes(attribute.String(tracing.AttrShortcutID, sc.ID)))
	defer span.End()

	h := instance.NewExitHandle()
	if !o.deps.Channel.Connected() {
		// Without the channel the started notification can never arrive.
		err := &instance.LaunchError{ShortcutID: sc.ID, Stage: instance.StageRequest, Cause: channel.ErrDisconnected}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return h, err
	}
	if err := o.registry.Launch(ctx, sc, h); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return h, err
	}
	return h, nil
}

// LaunchShortcut launches sc and reports whether the process started.
// onExit is called once when it exits and never when the launch fails.
func (o *Orchestrator) LaunchShortcut(ctx context.Context, sc shortcut.Shortcut, onExit func(rpc.ExitInfo)) bool {
	h, err := o.Launch(ctx, sc)
	if err != nil {
		log.Warn(log.CatOrch, "launch failed", "shortcut_id", sc.ID, "error", err)
		return false
	}
	h.OnExit(onExit)
	return true
}

// CloseShortcut requests a graceful stop. It never escalates to a kill.
func (o *Orchestrator) CloseShortcut(ctx context.Context, sc shortcut.Shortcut) bool {
	if err := o.registry.Stop(ctx, sc.ID); err != nil {
		log.Warn(log.CatOrch, "close failed", "shortcut_id", sc.ID, "error", err)
		return false
	}
	return true
}

// KillShortcut removes the instance and requests a forced termination.
func (o *Orchestrator) KillShortcut(ctx context.Context, sc shortcut.Shortcut) bool {
	if err := o.registry.Kill(ctx, sc.ID); err != nil {
		log.Warn(log.CatOrch, "kill failed", "shortcut_id", sc.ID, "error", err)
		return false
	}
	return true
}

// CheckIfRunning reports whether sc has a live instance.
func (o *Orchestrator) CheckIfRunning(ctx context.Context, sc shortcut.Shortcut) bool {
	return o.registry.IsActive(ctx, sc.ID)
}

// OnChannelEvent registers an extra handler for a notification type.
func (o *Orchestrator) OnChannelEvent(typ string, h channel.Handler) {
	o.deps.Channel.On(typ, h)
}

// Log forwards a log line to the backend over the event channel.
func (o *Orchestrator) Log(ctx context.Context, level, message string) error {
	return o.deps.Channel.Send(ctx, rpc.EventLog, rpc.LogEvent{Level: level, Message: message})
}

// Ping asks the backend for a pong over the event channel.
func (o *Orchestrator) Ping(ctx context.Context) error {
	return o.deps.Channel.Send(ctx, rpc.EventPing, nil)
}

// Shortcuts returns the store client.
func (o *Orchestrator) Shortcuts() *store.Client {
	return o.store
}

// Instances returns the instance registry for subscriptions and snapshots.
func (o *Orchestrator) Instances() *instance.Registry {
	return o.registry
}

// Connected reports whether the event channel is up.
func (o *Orchestrator) Connected() bool {
	return o.deps.Channel.Connected()
}

// SetupNotice returns the one-time launcher setup message, if any.
func (o *Orchestrator) SetupNotice() (string, bool) {
	return o.deps.Launcher.SetupNotice()
}

// Dismount tears down the navigation filter, the channel and the registry
// loop. It is safe to call more than once.
func (o *Orchestrator) Dismount() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dismissed {
		return
	}
	o.dismissed = true

	o.deps.Launcher.Teardown()
	o.deps.Channel.Disconnect()
	o.registry.Close()
	log.Info(log.CatOrch, "orchestrator dismounted")
}
