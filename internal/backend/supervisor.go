package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/zjrosen/shortcuts/internal/channel"
	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/pubsub"
	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

var (
	// ErrAlreadyRunning is returned when a shortcut already has a live process.
	ErrAlreadyRunning = errors.New("shortcut already running")
	// ErrNotRunning is returned when stopping or killing a shortcut without a live process.
	ErrNotRunning = errors.New("shortcut not running")
	// ErrShuttingDown is returned for launches after Shutdown began.
	ErrShuttingDown = errors.New("supervisor shutting down")
)

// SupervisorConfig configures process spawning.
type SupervisorConfig struct {
	// Shell runs the command line when no runner is configured ("<shell> -c <cmd>").
	Shell string
	// RunnerPath, when set, runs as "<runner> <cmd>" instead of the shell.
	RunnerPath string
	StartDir   string
	// StopGrace bounds how long Shutdown waits after SIGTERM before SIGKILL.
	StopGrace time.Duration
}

// process is one supervised shortcut process.
type process struct {
	shortcutID string
	launchID   string
	cmd        *exec.Cmd
	pid        int
	startedAt  time.Time
	done       chan struct{}
}

// Supervisor runs at most one process per shortcut and publishes started and
// exited events for each.
type Supervisor struct {
	cfg    SupervisorConfig
	events *pubsub.Broker[channel.Message]

	mu       sync.Mutex
	procs    map[string]*process
	stopping bool
	wg       sync.WaitGroup
}

// NewSupervisor creates a supervisor publishing on events.
func NewSupervisor(cfg SupervisorConfig, events *pubsub.Broker[channel.Message]) *Supervisor {
	if cfg.Shell == "" {
		cfg.Shell = "/bin/sh"
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = 5 * time.Second
	}
	return &Supervisor{
		cfg:    cfg,
		events: events,
		procs:  make(map[string]*process),
	}
}

// Start spawns the shortcut's command in its own process group. The started
// event is published before Start returns.
func (s *Supervisor) Start(sc shortcut.Shortcut, req rpc.LaunchRequest) (rpc.Ack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		return rpc.Ack{}, ErrShuttingDown
	}
	if _, ok := s.procs[sc.ID]; ok {
		return rpc.Ack{}, fmt.Errorf("%s: %w", sc.ID, ErrAlreadyRunning)
	}

	cmd := s.command(sc.Cmd, req)
	cmd.Stdout = &lineLogger{shortcutID: sc.ID, stream: "stdout"}
	cmd.Stderr = &lineLogger{shortcutID: sc.ID, stream: "stderr"}
	cmd.WaitDelay = s.cfg.StopGrace
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		log.ErrorErr(log.CatSupervisor, "spawn failed", err, "shortcut", sc.ID, "cmd", sc.Cmd)
		return rpc.Ack{}, fmt.Errorf("starting %s: %w", sc.ID, err)
	}

	p := &process{
		shortcutID: sc.ID,
		launchID:   req.LaunchID,
		cmd:        cmd,
		pid:        cmd.Process.Pid,
		startedAt:  time.Now(),
		done:       make(chan struct{}),
	}
	s.procs[sc.ID] = p
	log.Info(log.CatSupervisor, "process started", "shortcut", sc.ID, "launchId", req.LaunchID, "pid", p.pid)

	s.publish(rpc.EventStarted, rpc.StartedEvent{ShortcutID: sc.ID, LaunchID: req.LaunchID, PID: p.pid})

	s.wg.Add(1)
	go s.wait(p)

	return rpc.Ack{ShortcutID: sc.ID, LaunchID: req.LaunchID}, nil
}

func (s *Supervisor) command(line string, req rpc.LaunchRequest) *exec.Cmd {
	runner := req.RunnerPath
	if runner == "" {
		runner = s.cfg.RunnerPath
	}
	var cmd *exec.Cmd
	if runner != "" {
		cmd = exec.Command(runner, line) //nolint:gosec // G204: runner and command are user-configured
	} else {
		cmd = exec.Command(s.cfg.Shell, "-c", line) //nolint:gosec // G204: command is the user's shortcut
	}
	cmd.Dir = req.StartDir
	if cmd.Dir == "" {
		cmd.Dir = s.cfg.StartDir
	}
	return cmd
}

func (s *Supervisor) wait(p *process) {
	defer s.wg.Done()

	err := p.cmd.Wait()
	info := exitInfo(p.cmd, err)

	s.mu.Lock()
	if cur, ok := s.procs[p.shortcutID]; ok && cur == p {
		delete(s.procs, p.shortcutID)
	}
	s.mu.Unlock()
	close(p.done)

	log.Info(log.CatSupervisor, "process exited",
		"shortcut", p.shortcutID,
		"pid", p.pid,
		"code", info.Code,
		"signal", info.Signal,
		"ran", time.Since(p.startedAt).Round(time.Millisecond))

	s.publish(rpc.EventExited, rpc.ExitedEvent{ShortcutID: p.shortcutID, LaunchID: p.launchID, ExitInfo: info})
}

// Stop asks the shortcut's process group to terminate.
func (s *Supervisor) Stop(shortcutID string) error {
	return s.signal(shortcutID, false)
}

// Kill forcefully terminates the shortcut's process group.
func (s *Supervisor) Kill(shortcutID string) error {
	return s.signal(shortcutID, true)
}

func (s *Supervisor) signal(shortcutID string, force bool) error {
	s.mu.Lock()
	p, ok := s.procs[shortcutID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", shortcutID, ErrNotRunning)
	}

	var err error
	if force {
		err = killGroup(p.cmd)
	} else {
		err = terminateGroup(p.cmd)
	}
	if err != nil {
		log.ErrorErr(log.CatSupervisor, "signal failed", err, "shortcut", shortcutID, "pid", p.pid, "force", force)
		return fmt.Errorf("signalling %s: %w", shortcutID, err)
	}
	log.Debug(log.CatSupervisor, "signalled", "shortcut", shortcutID, "pid", p.pid, "force", force)
	return nil
}

// Running reports whether the shortcut has a live process.
func (s *Supervisor) Running(shortcutID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.procs[shortcutID]
	return ok
}

// Count returns the number of live processes.
func (s *Supervisor) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

// Shutdown terminates every process, escalating to SIGKILL after StopGrace,
// and waits for their exit events to be published.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	procs := make([]*process, 0, len(s.procs))
	for _, p := range s.procs {
		procs = append(procs, p)
	}
	s.mu.Unlock()

	for _, p := range procs {
		if err := terminateGroup(p.cmd); err != nil {
			log.Debug(log.CatSupervisor, "terminate during shutdown failed", "shortcut", p.shortcutID, "error", err)
		}
	}

	graceCtx, cancel := context.WithTimeout(ctx, s.cfg.StopGrace)
	defer cancel()
	for _, p := range procs {
		select {
		case <-p.done:
		case <-graceCtx.Done():
			log.Warn(log.CatSupervisor, "grace period elapsed, killing", "shortcut", p.shortcutID, "pid", p.pid)
			_ = killGroup(p.cmd)
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) publish(typ string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.ErrorErr(log.CatSupervisor, "encoding event", err, "type", typ)
		return
	}
	s.events.Publish(pubsub.UpdatedEvent, channel.Message{Type: typ, Payload: raw})
}

func exitInfo(cmd *exec.Cmd, waitErr error) rpc.ExitInfo {
	if cmd.ProcessState == nil {
		info := rpc.ExitInfo{Code: -1}
		if waitErr != nil {
			info.Error = waitErr.Error()
		}
		return info
	}
	info := rpc.ExitInfo{Code: cmd.ProcessState.ExitCode(), Signal: signalName(cmd.ProcessState)}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		info.Error = waitErr.Error()
	}
	return info
}

// lineLogger forwards process output to the debug log one line at a time.
type lineLogger struct {
	shortcutID string
	stream     string
	buf        bytes.Buffer
}

func (l *lineLogger) Write(p []byte) (int, error) {
	l.buf.Write(p)
	for {
		line, err := l.buf.ReadBytes('\n')
		if err != nil {
			// Partial line: keep it for the next write.
			l.buf.Reset()
			l.buf.Write(line)
			break
		}
		log.Debug(log.CatSupervisor, "output", "shortcut", l.shortcutID, "stream", l.stream, "line", string(bytes.TrimRight(line, "\r\n")))
	}
	return len(p), nil
}
