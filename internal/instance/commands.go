package instance

import (
	"errors"

	"github.com/zjrosen/shortcuts/internal/command"
	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// Command types handled by the registry loop.
const (
	CmdBeginLaunch  command.CommandType = "begin_launch"
	CmdLaunchAcked  command.CommandType = "launch_acked"
	CmdLaunchFailed command.CommandType = "launch_failed"
	CmdStarted      command.CommandType = "started"
	CmdExited       command.CommandType = "exited"
	CmdBeginStop    command.CommandType = "begin_stop"
	CmdStopFailed   command.CommandType = "stop_failed"
	CmdKill         command.CommandType = "kill"
	CmdQuery        command.CommandType = "query"
	CmdSnapshot     command.CommandType = "snapshot"
)

var errMissingShortcutID = errors.New("shortcut id is required")

// ===========================================================================
// Launch
// ===========================================================================

// BeginLaunchCommand registers a Launching record before any request is sent.
type BeginLaunchCommand struct {
	command.BaseCommand
	Shortcut shortcut.Shortcut
	LaunchID string
	Handle   *ExitHandle
}

func newBeginLaunch(sc shortcut.Shortcut, launchID string, h *ExitHandle) *BeginLaunchCommand {
	return &BeginLaunchCommand{
		BaseCommand: command.NewBaseCommand(CmdBeginLaunch, command.SourceUser),
		Shortcut:    sc,
		LaunchID:    launchID,
		Handle:      h,
	}
}

func (c *BeginLaunchCommand) Validate() error {
	if c.Shortcut.ID == "" {
		return errMissingShortcutID
	}
	if c.LaunchID == "" {
		return errors.New("launch id is required")
	}
	if c.Handle == nil {
		return errors.New("exit handle is required")
	}
	return nil
}

// LaunchAckedCommand records that the backend accepted the launch request.
type LaunchAckedCommand struct {
	command.BaseCommand
	ShortcutID string
	LaunchID   string
}

func newLaunchAcked(shortcutID, launchID string) *LaunchAckedCommand {
	return &LaunchAckedCommand{
		BaseCommand: command.NewBaseCommand(CmdLaunchAcked, command.SourceUser),
		ShortcutID:  shortcutID,
		LaunchID:    launchID,
	}
}

func (c *LaunchAckedCommand) Validate() error {
	if c.ShortcutID == "" {
		return errMissingShortcutID
	}
	return nil
}

// LaunchFailedCommand removes a record whose launch request or host run failed.
type LaunchFailedCommand struct {
	command.BaseCommand
	ShortcutID string
	LaunchID   string
	Err        error
}

func newLaunchFailed(shortcutID, launchID string, err error) *LaunchFailedCommand {
	return &LaunchFailedCommand{
		BaseCommand: command.NewBaseCommand(CmdLaunchFailed, command.SourceUser),
		ShortcutID:  shortcutID,
		LaunchID:    launchID,
		Err:         err,
	}
}

func (c *LaunchFailedCommand) Validate() error {
	if c.ShortcutID == "" {
		return errMissingShortcutID
	}
	return nil
}

// ===========================================================================
// Backend notifications
// ===========================================================================

// StartedCommand applies a "started" notification.
type StartedCommand struct {
	command.BaseCommand
	Event rpc.StartedEvent
}

// NewStartedCommand wraps a decoded "started" notification.
func NewStartedCommand(ev rpc.StartedEvent) *StartedCommand {
	return &StartedCommand{
		BaseCommand: command.NewBaseCommand(CmdStarted, command.SourceChannel),
		Event:       ev,
	}
}

func (c *StartedCommand) Validate() error {
	if c.Event.ShortcutID == "" {
		return errMissingShortcutID
	}
	return nil
}

// ExitedCommand applies an "exited" notification.
type ExitedCommand struct {
	command.BaseCommand
	Event rpc.ExitedEvent
}

// NewExitedCommand wraps a decoded "exited" notification.
func NewExitedCommand(ev rpc.ExitedEvent) *ExitedCommand {
	return &ExitedCommand{
		BaseCommand: command.NewBaseCommand(CmdExited, command.SourceChannel),
		Event:       ev,
	}
}

func (c *ExitedCommand) Validate() error {
	if c.Event.ShortcutID == "" {
		return errMissingShortcutID
	}
	return nil
}

// ===========================================================================
// Stop / Kill
// ===========================================================================

// BeginStopCommand moves a Running instance to Stopping.
type BeginStopCommand struct {
	command.BaseCommand
	ShortcutID string
}

func newBeginStop(id string) *BeginStopCommand {
	return &BeginStopCommand{
		BaseCommand: command.NewBaseCommand(CmdBeginStop, command.SourceUser),
		ShortcutID:  id,
	}
}

func (c *BeginStopCommand) Validate() error {
	if c.ShortcutID == "" {
		return errMissingShortcutID
	}
	return nil
}

// StopFailedCommand reverts a Stopping instance to Running.
type StopFailedCommand struct {
	command.BaseCommand
	ShortcutID string
	LaunchID   string
}

func newStopFailed(id, launchID string) *StopFailedCommand {
	return &StopFailedCommand{
		BaseCommand: command.NewBaseCommand(CmdStopFailed, command.SourceUser),
		ShortcutID:  id,
		LaunchID:    launchID,
	}
}

func (c *StopFailedCommand) Validate() error {
	if c.ShortcutID == "" {
		return errMissingShortcutID
	}
	return nil
}

// KillCommand removes an instance immediately and tombstones it.
type KillCommand struct {
	command.BaseCommand
	ShortcutID string
}

func newKill(id string) *KillCommand {
	return &KillCommand{
		BaseCommand: command.NewBaseCommand(CmdKill, command.SourceUser),
		ShortcutID:  id,
	}
}

func (c *KillCommand) Validate() error {
	if c.ShortcutID == "" {
		return errMissingShortcutID
	}
	return nil
}

// ===========================================================================
// Queries
// ===========================================================================

// QueryCommand reads one record.
type QueryCommand struct {
	command.BaseCommand
	ShortcutID string
}

func newQuery(id string) *QueryCommand {
	return &QueryCommand{
		BaseCommand: command.NewBaseCommand(CmdQuery, command.SourceUser),
		ShortcutID:  id,
	}
}

// SnapshotCommand reads every live record.
type SnapshotCommand struct {
	command.BaseCommand
}

func newSnapshot() *SnapshotCommand {
	return &SnapshotCommand{BaseCommand: command.NewBaseCommand(CmdSnapshot, command.SourceUser)}
}

// Results carried in CommandResult.Data.

type ackOutcome struct {
	// proceed is false when the record is gone or belongs to another launch.
	proceed bool
	// killPending is set when Kill arrived while the request was in flight.
	killPending bool
}

type stopOutcome struct {
	launchID string
	already  bool
}

type killOutcome struct {
	launchID string
	sendNow  bool
}
