package instance

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyActive is returned by Launch when the shortcut already has a
	// Launching, Running or Stopping instance. No backend request is sent.
	ErrAlreadyActive = errors.New("instance already active")
	// ErrNotRunning is returned by Stop and Kill when there is nothing to stop.
	ErrNotRunning = errors.New("instance not running")
	// ErrKilled is returned by a Launch whose instance was killed before it started.
	ErrKilled = errors.New("instance killed during launch")
	// ErrStartTimeout is returned by Launch when the started notification did
	// not arrive in time. The instance stays tracked as Launching.
	ErrStartTimeout = errors.New("timed out waiting for instance to start")
	// ErrAbandoned resolves the exit handle of a launch that never produced a process.
	ErrAbandoned = errors.New("launch abandoned")
	// ErrClosed is returned once the registry has shut down.
	ErrClosed = errors.New("instance registry closed")
	// ErrPending is returned by ExitHandle.Info before the handle resolves.
	ErrPending = errors.New("exit handle not resolved")
)

// Stage names the step of a launch that failed.
type Stage string

const (
	// StageRequest is the backend launchInstance call.
	StageRequest Stage = "request"
	// StageRun is the host launcher run through the stub entry.
	StageRun Stage = "run"
	// StageStart is the wait for the started notification.
	StageStart Stage = "start"
)

// LaunchError reports a launch that failed before the process was confirmed started.
type LaunchError struct {
	ShortcutID string
	Stage      Stage
	Cause      error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s failed at %s: %v", e.ShortcutID, e.Stage, e.Cause)
}

func (e *LaunchError) Unwrap() error {
	return e.Cause
}
