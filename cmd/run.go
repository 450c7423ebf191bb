package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/shortcuts/internal/orchestrator"
	"github.com/zjrosen/shortcuts/internal/presentation"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// ErrNonZeroExit is returned by run when the command did not exit cleanly.
var ErrNonZeroExit = errors.New("command did not exit cleanly")

var runTimeout time.Duration

var runCmd = &cobra.Command{
	Use:   "run <id|name>",
	Short: "Launch a shortcut and wait for it to exit",
	Long: `Launch a shortcut through the launcher and wait for it to exit, then print
the exit report as JSON.

Ctrl+C asks the command to stop gracefully. With --timeout the command is
killed once the timeout elapses.

Examples:
  shortcuts run Build
  shortcuts run "Tail logs" --timeout 30s`,
	Args: cobra.ExactArgs(1),
	RunE: runShortcut,
}

func init() {
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Kill the command after this long (0 waits forever)")
	rootCmd.AddCommand(runCmd)
}

func runShortcut(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cleanup, err := initLogging("shortcuts-run", false)
	if err != nil {
		return err
	}
	defer cleanup()

	shutdownTracing, err := initTracing(cfg, "shortcuts")
	if err != nil {
		return err
	}
	defer shutdownTracing()

	ctx := cmd.Context()
	o, err := newOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer o.Dismount()

	all, err := o.Shortcuts().List(ctx)
	if err != nil {
		return err
	}
	sc, err := resolveShortcut(all, args[0])
	if err != nil {
		return err
	}

	if err := waitConnected(ctx, o, cfg.Backend.RequestTimeout); err != nil {
		return err
	}

	started := time.Now()
	h, err := o.Launch(ctx, sc)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var deadline <-chan time.Time
	if runTimeout > 0 {
		timer := time.NewTimer(runTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

wait:
	for {
		select {
		case <-h.Done():
			break wait
		case <-sigCh:
			fmt.Fprintln(cmd.ErrOrStderr(), "stopping...")
			o.CloseShortcut(ctx, sc)
		case <-deadline:
			fmt.Fprintf(cmd.ErrOrStderr(), "timed out after %s, killing\n", runTimeout)
			o.KillShortcut(ctx, sc)
			deadline = nil
		}
	}

	info, err := h.Info()
	if err != nil {
		return err
	}
	if err := presentation.NewFormatter(cmd.OutOrStdout()).FormatExit(presentation.FromExit(sc.ID, info, time.Since(started))); err != nil {
		return err
	}
	if info.Code != 0 || info.Killed {
		return fmt.Errorf("%s: %w", sc.Name, ErrNonZeroExit)
	}
	return nil
}

// resolveShortcut finds a shortcut by id, then by exact unique name.
func resolveShortcut(all shortcut.Collection, ref string) (shortcut.Shortcut, error) {
	if sc, ok := all[ref]; ok {
		return sc, nil
	}
	var matches []shortcut.Shortcut
	for _, sc := range all {
		if sc.Name == ref {
			matches = append(matches, sc)
		}
	}
	switch len(matches) {
	case 0:
		return shortcut.Shortcut{}, fmt.Errorf("no shortcut with id or name %q", ref)
	case 1:
		return matches[0], nil
	default:
		return shortcut.Shortcut{}, fmt.Errorf("%d shortcuts are named %q, use the id", len(matches), ref)
	}
}

// waitConnected blocks until the event channel is up, so the started
// notification for the launch cannot be missed.
func waitConnected(ctx context.Context, o *orchestrator.Orchestrator, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for !o.Connected() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("event channel not connected to %s: %w", cfg.Backend.URL, ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}
