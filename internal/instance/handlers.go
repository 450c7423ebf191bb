package instance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zjrosen/shortcuts/internal/command"
	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/pubsub"
	"github.com/zjrosen/shortcuts/internal/rpc"
)

// Everything in this file runs on the command loop.

func (r *Registry) handleBeginLaunch(_ context.Context, cmd command.Command) (*command.CommandResult, error) {
	c := cmd.(*BeginLaunchCommand)
	if rec, ok := r.records[c.Shortcut.ID]; ok {
		log.Debug(log.CatRegistry, "launch rejected, instance active",
			"shortcut_id", c.Shortcut.ID, "state", rec.state.String())
		return command.Fail(ErrAlreadyActive), nil
	}

	rec := &record{
		shortcut:  c.Shortcut,
		launchID:  c.LaunchID,
		state:     StateLaunching,
		handle:    c.Handle,
		createdAt: time.Now(),
		waiter:    make(chan error, 1),
	}
	r.records[c.Shortcut.ID] = rec
	r.publish(pubsub.CreatedEvent, rec, nil)
	return command.OK(rec.waiter), nil
}

func (r *Registry) handleLaunchAcked(ctx context.Context, cmd command.Command) (*command.CommandResult, error) {
	c := cmd.(*LaunchAckedCommand)
	if rec, ok := r.records[c.ShortcutID]; ok && rec.launchID == c.LaunchID {
		rec.acked = true
		return command.OK(ackOutcome{proceed: true}), nil
	}

	if ts, ok := r.tombstones.Get(ctx, c.LaunchID); ok && ts.killPending {
		ts.killPending = false
		return command.OK(ackOutcome{killPending: true}), nil
	}
	return command.OK(ackOutcome{}), nil
}

func (r *Registry) handleLaunchFailed(ctx context.Context, cmd command.Command) (*command.CommandResult, error) {
	c := cmd.(*LaunchFailedCommand)
	if rec, ok := r.records[c.ShortcutID]; ok && rec.launchID == c.LaunchID {
		delete(r.records, c.ShortcutID)
		rec.notify(c.Err)
		rec.handle.abandon(ErrAbandoned)
		rec.state = StateFailed
		r.publish(pubsub.DeletedEvent, rec, c.Err)
		log.Info(log.CatRegistry, "launch failed", "shortcut_id", c.ShortcutID, "error", c.Err)
		return command.OK(nil), nil
	}

	if ts, ok := r.tombstones.Get(ctx, c.LaunchID); ok {
		ts.handle.abandon(ErrAbandoned)
		_ = r.tombstones.Delete(ctx, c.LaunchID)
	}
	return command.OK(nil), nil
}

func (r *Registry) handleStarted(_ context.Context, cmd command.Command) (*command.CommandResult, error) {
	ev := cmd.(*StartedCommand).Event
	rec, ok := r.records[ev.ShortcutID]
	if !ok {
		log.Debug(log.CatRegistry, "started for unknown instance ignored",
			"shortcut_id", ev.ShortcutID, "launch_id", ev.LaunchID)
		return command.OK(nil), nil
	}
	if ev.LaunchID != "" && ev.LaunchID != rec.launchID {
		log.Debug(log.CatRegistry, "stale started ignored",
			"shortcut_id", ev.ShortcutID, "launch_id", ev.LaunchID, "current", rec.launchID)
		return command.OK(nil), nil
	}
	if rec.state != StateLaunching {
		log.Debug(log.CatRegistry, "duplicate started ignored",
			"shortcut_id", ev.ShortcutID, "state", rec.state.String())
		return command.OK(nil), nil
	}

	rec.state = StateRunning
	rec.pid = ev.PID
	rec.startedAt = time.Now()
	rec.notify(nil)
	r.publish(pubsub.UpdatedEvent, rec, nil)
	log.Info(log.CatRegistry, "instance started", "shortcut_id", ev.ShortcutID, "pid", ev.PID)
	return command.OK(nil), nil
}

func (r *Registry) handleExited(ctx context.Context, cmd command.Command) (*command.CommandResult, error) {
	ev := cmd.(*ExitedCommand).Event
	rec, ok := r.records[ev.ShortcutID]
	if ok && (ev.LaunchID == "" || ev.LaunchID == rec.launchID) {
		delete(r.records, ev.ShortcutID)

		if rec.state == StateLaunching {
			// The process never reported started: this is a launch failure
			// and the exit callback must not fire.
			err := &LaunchError{ShortcutID: ev.ShortcutID, Stage: StageStart, Cause: exitError(ev.ExitInfo)}
			rec.state = StateFailed
			rec.notify(err)
			rec.handle.abandon(ErrAbandoned)
			r.publish(pubsub.DeletedEvent, rec, err)
			log.Info(log.CatRegistry, "instance exited before start", "shortcut_id", ev.ShortcutID)
			return command.OK(nil), nil
		}

		rec.state = StateExited
		info := ev.ExitInfo
		rec.handle.resolve(info)
		r.publishExit(rec.shortcut.ID, rec.launchID, info)
		log.Info(log.CatRegistry, "instance exited",
			"shortcut_id", ev.ShortcutID, "code", info.Code, "signal", info.Signal)
		return command.OK(nil), nil
	}

	if key, ts, found := r.findTombstone(ctx, ev.ShortcutID, ev.LaunchID); found {
		info := ev.ExitInfo
		info.Killed = true
		ts.handle.resolve(info)
		_ = r.tombstones.Delete(ctx, key)
		log.Debug(log.CatRegistry, "exit reconciled with kill", "shortcut_id", ev.ShortcutID, "launch_id", ts.launchID)
		return command.OK(nil), nil
	}

	log.Debug(log.CatRegistry, "exited for unknown instance ignored",
		"shortcut_id", ev.ShortcutID, "launch_id", ev.LaunchID)
	return command.OK(nil), nil
}

func (r *Registry) handleBeginStop(_ context.Context, cmd command.Command) (*command.CommandResult, error) {
	c := cmd.(*BeginStopCommand)
	rec, ok := r.records[c.ShortcutID]
	if !ok {
		return command.Fail(ErrNotRunning), nil
	}
	switch rec.state {
	case StateStopping:
		return command.OK(stopOutcome{launchID: rec.launchID, already: true}), nil
	case StateRunning:
		rec.state = StateStopping
		r.publish(pubsub.UpdatedEvent, rec, nil)
		return command.OK(stopOutcome{launchID: rec.launchID}), nil
	default:
		return command.Fail(fmt.Errorf("%w: instance is %s", ErrNotRunning, rec.state)), nil
	}
}

func (r *Registry) handleStopFailed(_ context.Context, cmd command.Command) (*command.CommandResult, error) {
	c := cmd.(*StopFailedCommand)
	rec, ok := r.records[c.ShortcutID]
	if !ok || rec.launchID != c.LaunchID || rec.state != StateStopping {
		return command.OK(nil), nil
	}
	rec.state = StateRunning
	r.publish(pubsub.UpdatedEvent, rec, nil)
	return command.OK(nil), nil
}

func (r *Registry) handleKill(ctx context.Context, cmd command.Command) (*command.CommandResult, error) {
	c := cmd.(*KillCommand)
	rec, ok := r.records[c.ShortcutID]
	if !ok {
		return command.Fail(ErrNotRunning), nil
	}
	delete(r.records, c.ShortcutID)

	ts := &tombstone{
		shortcutID:  c.ShortcutID,
		launchID:    rec.launchID,
		handle:      rec.handle,
		killPending: !rec.acked,
	}
	r.tombstones.Set(ctx, rec.launchID, ts, r.cfg.TombstoneTTL)

	rec.notify(ErrKilled)
	r.broker.Publish(pubsub.DeletedEvent, Event{
		ShortcutID: rec.shortcut.ID,
		LaunchID:   rec.launchID,
		State:      rec.state,
		Killed:     true,
	})
	log.Info(log.CatRegistry, "instance killed", "shortcut_id", c.ShortcutID, "state", rec.state.String())
	return command.OK(killOutcome{launchID: rec.launchID, sendNow: rec.acked}), nil
}

func (r *Registry) handleQuery(_ context.Context, cmd command.Command) (*command.CommandResult, error) {
	c := cmd.(*QueryCommand)
	rec, ok := r.records[c.ShortcutID]
	if !ok {
		return command.OK(nil), nil
	}
	return command.OK(rec.info()), nil
}

func (r *Registry) handleSnapshot(_ context.Context, _ command.Command) (*command.CommandResult, error) {
	infos := make([]Info, 0, len(r.records))
	for _, rec := range r.records {
		infos = append(infos, rec.info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return command.OK(infos), nil
}

// findTombstone matches by launch id when the event carries one, else by shortcut id.
func (r *Registry) findTombstone(ctx context.Context, shortcutID, launchID string) (string, *tombstone, bool) {
	if launchID != "" {
		ts, ok := r.tombstones.Get(ctx, launchID)
		if !ok || ts.shortcutID != shortcutID {
			return "", nil, false
		}
		return launchID, ts, true
	}
	for key, ts := range r.tombstones.Items(ctx) {
		if ts.shortcutID == shortcutID {
			return key, ts, true
		}
	}
	return "", nil, false
}

// evictTombstone runs on expiry (janitor goroutine) and on explicit delete.
// Resolving an already-resolved handle is a no-op.
func (r *Registry) evictTombstone(launchID string, ts *tombstone) {
	if ts.handle.resolve(rpc.ExitInfo{Code: -1, Killed: true}) {
		log.Debug(log.CatRegistry, "killed instance resolved without exit notification",
			"shortcut_id", ts.shortcutID, "launch_id", launchID)
		r.publishExit(ts.shortcutID, launchID, rpc.ExitInfo{Code: -1, Killed: true})
	}
}

func (r *Registry) publish(typ pubsub.EventType, rec *record, err error) {
	r.broker.Publish(typ, Event{
		ShortcutID: rec.shortcut.ID,
		LaunchID:   rec.launchID,
		State:      rec.state,
		Err:        err,
	})
}

func (r *Registry) publishExit(shortcutID, launchID string, info rpc.ExitInfo) {
	r.broker.Publish(pubsub.DeletedEvent, Event{
		ShortcutID: shortcutID,
		LaunchID:   launchID,
		State:      StateExited,
		Exit:       &info,
		Killed:     info.Killed,
	})
}

func exitError(info rpc.ExitInfo) error {
	switch {
	case info.Error != "":
		return fmt.Errorf("process exited: %s", info.Error)
	case info.Signal != "":
		return fmt.Errorf("process exited on signal %s", info.Signal)
	default:
		return fmt.Errorf("process exited with code %d", info.Code)
	}
}
