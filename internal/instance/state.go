package instance

import (
	"time"

	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// State is the lifecycle state of an instance.
type State int

const (
	StateLaunching State = iota
	StateRunning
	StateStopping
	StateExited
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLaunching:
		return "launching"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateExited:
		return "exited"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Active reports whether the state counts as a live instance.
func (s State) Active() bool {
	return s == StateLaunching || s == StateRunning || s == StateStopping
}

// record is the registry's entry for one live instance. Only the command
// loop reads or writes it.
type record struct {
	shortcut  shortcut.Shortcut
	launchID  string
	state     State
	handle    *ExitHandle
	acked     bool
	pid       int
	createdAt time.Time
	startedAt time.Time
	// waiter receives the outcome of the wait for "started", once.
	waiter chan error
}

func (r *record) notify(err error) {
	if r.waiter == nil {
		return
	}
	r.waiter <- err
	r.waiter = nil
}

func (r *record) info() Info {
	return Info{
		ShortcutID: r.shortcut.ID,
		Name:       r.shortcut.Name,
		LaunchID:   r.launchID,
		State:      r.state,
		PID:        r.pid,
		CreatedAt:  r.createdAt,
		StartedAt:  r.startedAt,
	}
}

// Info is a read-only view of an instance.
type Info struct {
	ShortcutID string
	Name       string
	LaunchID   string
	State      State
	PID        int
	CreatedAt  time.Time
	StartedAt  time.Time
}

// Event reports an instance transition to subscribers.
type Event struct {
	ShortcutID string
	LaunchID   string
	State      State
	// Exit is set for StateExited.
	Exit *rpc.ExitInfo
	// Killed marks the removal of a killed instance.
	Killed bool
	Err    error
}
