package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/shortcuts/internal/backend"
	"github.com/zjrosen/shortcuts/internal/channel"
	"github.com/zjrosen/shortcuts/internal/config"
	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/pubsub"
	"github.com/zjrosen/shortcuts/internal/watcher"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the reference backend daemon",
	Long: `Run the backend that stores shortcuts in SQLite, spawns their commands
and streams started/exited notifications to connected frontends.

The daemon listens on daemon.addr (default: 127.0.0.1:5000). When
daemon.seed_file is set, shortcuts in that JSON file are imported at
startup and again whenever the file changes. Existing shortcuts are
never overwritten by the seed.

Example:
  shortcuts daemon                         # Start on the configured address
  shortcuts daemon --addr 127.0.0.1:8080   # Start on port 8080
  shortcuts daemon --db /tmp/shortcuts.db  # Use a scratch database`,
	RunE: runDaemon,
}

var (
	daemonAddr string
	daemonDB   string
	daemonSeed string
)

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().StringVar(&daemonAddr, "addr", "", "Address to listen on (overrides daemon.addr)")
	daemonCmd.Flags().StringVar(&daemonDB, "db", "", "Database path (overrides daemon.db_path)")
	daemonCmd.Flags().StringVar(&daemonSeed, "seed", "", "Seed file to import and watch (overrides daemon.seed_file)")
}

func runDaemon(_ *cobra.Command, _ []string) error {
	cleanup, err := initLogging("shortcuts-daemon", false)
	if err != nil {
		return err
	}
	defer cleanup()

	shutdownTracing, err := initTracing(cfg, "shortcuts-daemon")
	if err != nil {
		return err
	}
	defer shutdownTracing()

	dc := cfg.Daemon
	if daemonAddr != "" {
		dc.Addr = daemonAddr
	}
	if daemonDB != "" {
		dc.DBPath = daemonDB
	}
	if daemonSeed != "" {
		dc.SeedFile = daemonSeed
	}
	if dc.DBPath == "" {
		dc.DBPath = config.DefaultDBPath()
	}

	db, err := backend.NewDB(dc.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if dc.SeedFile != "" {
		sw, err := backend.WatchSeed(ctx, db, dc.SeedFile, watcher.DefaultConfig(dc.SeedFile))
		if err != nil {
			return fmt.Errorf("watching seed file: %w", err)
		}
		defer func() { _ = sw.Stop() }()
	}

	events := pubsub.NewBroker[channel.Message]()
	defer events.Close()

	supervisor := backend.NewSupervisor(backend.SupervisorConfig{
		Shell:      dc.Shell,
		RunnerPath: cfg.Launcher.RunnerPath,
		StartDir:   cfg.Launcher.StartDir,
		StopGrace:  dc.StopGrace,
	}, events)

	server, err := backend.NewServer(dc.Addr, backend.NewHandler(backend.HandlerConfig{
		DB:         db,
		Supervisor: supervisor,
		Events:     events,
	}))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("Shortcuts daemon listening on %s (db: %s)\n", server.URL(), db.Path())
	fmt.Println("Press Ctrl+C to stop")

	select {
	case sig := <-sigCh:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, dc.StopGrace+10*time.Second)
	defer shutdownCancel()

	// Running commands exit first so their exited events reach open streams.
	if err := supervisor.Shutdown(shutdownCtx); err != nil {
		log.ErrorErr(log.CatBackend, "stopping processes", err)
	}
	if err := server.Stop(shutdownCtx); err != nil {
		log.ErrorErr(log.CatBackend, "stopping server", err)
	}

	fmt.Println("Daemon stopped")
	return nil
}
