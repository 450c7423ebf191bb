// Package rpc is the request/response client for the shortcuts backend and
// the wire types shared with it.
//
// Every method is a POST to /rpc/{method} with a JSON body. A 2xx answer
// carries {"result": ...}; anything else carries an ErrorResponse.
package rpc

import (
	"encoding/json"

	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// Method names of the backend RPC surface.
const (
	MethodListShortcuts  = "listShortcuts"
	MethodAddShortcut    = "addShortcut"
	MethodModifyShortcut = "modifyShortcut"
	MethodRemoveShortcut = "removeShortcut"
	MethodLaunchInstance = "launchInstance"
	MethodStopInstance   = "stopInstance"
	MethodKillInstance   = "killInstance"
)

// Event types the backend publishes on the event channel.
const (
	EventConnected = "connected"
	EventStarted   = "started"
	EventExited    = "exited"
	EventPing      = "ping"
	EventPong      = "pong"
	EventLog       = "log"
)

// ShortcutRequest carries a full shortcut for add and modify.
type ShortcutRequest struct {
	Shortcut shortcut.Shortcut `json:"shortcut"`
}

// RemoveRequest identifies the shortcut to delete.
type RemoveRequest struct {
	ID string `json:"id"`
}

// LaunchRequest asks the backend to start a process for a shortcut.
// LaunchID correlates the later started/exited events with this attempt.
type LaunchRequest struct {
	ShortcutID string `json:"shortcutId"`
	LaunchID   string `json:"launchId"`
	RunnerPath string `json:"runnerPath,omitempty"`
	StartDir   string `json:"startDir,omitempty"`
}

// InstanceRequest identifies a running instance for stop and kill.
type InstanceRequest struct {
	ShortcutID string `json:"shortcutId"`
}

// Ack acknowledges an instance request.
type Ack struct {
	ShortcutID string `json:"shortcutId"`
	LaunchID   string `json:"launchId,omitempty"`
}

// ExitInfo describes how an instance's process ended.
type ExitInfo struct {
	Code   int    `json:"code"`
	Signal string `json:"signal,omitempty"`
	Error  string `json:"error,omitempty"`
	// Killed is set when the instance was force-terminated from this side.
	Killed bool `json:"killed,omitempty"`
}

// StartedEvent is the payload of a "started" notification.
type StartedEvent struct {
	ShortcutID string `json:"shortcutId"`
	LaunchID   string `json:"launchId,omitempty"`
	PID        int    `json:"pid,omitempty"`
}

// ExitedEvent is the payload of an "exited" notification.
type ExitedEvent struct {
	ShortcutID string   `json:"shortcutId"`
	LaunchID   string   `json:"launchId,omitempty"`
	ExitInfo   ExitInfo `json:"exitInfo"`
}

// LogEvent is the payload of a "log" message sent to the backend.
type LogEvent struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ResultEnvelope wraps a successful response.
type ResultEnvelope struct {
	Result json.RawMessage `json:"result"`
}

// ErrorResponse is the response body for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
