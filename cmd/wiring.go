package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/shortcuts/internal/channel"
	"github.com/zjrosen/shortcuts/internal/config"
	"github.com/zjrosen/shortcuts/internal/host"
	"github.com/zjrosen/shortcuts/internal/instance"
	"github.com/zjrosen/shortcuts/internal/launcher"
	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/orchestrator"
	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/tracing"
)

// initTracing installs the global tracer provider. The returned shutdown
// flushes pending spans and is never nil.
func initTracing(c config.Config, serviceName string) (func(), error) {
	provider, err := tracing.NewProvider(tracing.FromConfig(c.Tracing, serviceName))
	if err != nil {
		return func() {}, fmt.Errorf("initializing tracing: %w", err)
	}
	if provider.Enabled() {
		log.Info(log.CatConfig, "tracing enabled", "exporter", c.Tracing.Exporter)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatConfig, "flushing traces", err)
		}
	}, nil
}

// newBackendClient creates the RPC client for the configured backend.
func newBackendClient(c config.Config) *rpc.Client {
	return rpc.NewClient(c.Backend.URL, rpc.WithTimeout(c.Backend.RequestTimeout))
}

// newHost opens the host catalog, persisted when catalog_file is set.
func newHost(c config.LauncherConfig) (*host.Memory, error) {
	if c.CatalogFile == "" {
		return host.NewMemory(), nil
	}
	h, err := host.OpenMemory(c.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("opening host catalog: %w", err)
	}
	return h, nil
}

// newOrchestrator composes and initializes the frontend core.
func newOrchestrator(ctx context.Context, c config.Config) (*orchestrator.Orchestrator, error) {
	h, err := newHost(c.Launcher)
	if err != nil {
		return nil, err
	}

	o, err := orchestrator.New(orchestrator.Deps{
		Backend: newBackendClient(c),
		Channel: channel.New(channel.Config{
			URL:        c.Backend.URL,
			MinBackoff: c.Channel.MinBackoff,
			MaxBackoff: c.Channel.MaxBackoff,
			Buffer:     c.Channel.Buffer,
		}),
		Launcher: launcher.New(h, h, launcher.Config{
			StubName:     c.Launcher.StubName,
			OrphanPrefix: c.Launcher.OrphanPrefix,
			RunnerPath:   c.Launcher.RunnerPath,
			StartDir:     c.Launcher.StartDir,
			DetailsRoute: c.Launcher.DetailsRoute,
			HomeRoute:    c.Launcher.HomeRoute,
		}),
	}, orchestrator.Config{
		Registry: instance.Config{
			RunnerPath:    c.Launcher.RunnerPath,
			StartDir:      c.Launcher.StartDir,
			StartTimeout:  c.Registry.StartTimeout,
			QueueCapacity: c.Registry.QueueCapacity,
			TombstoneTTL:  c.Registry.TombstoneTTL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}

	if err := o.Init(ctx); err != nil {
		return nil, fmt.Errorf("initializing orchestrator: %w", err)
	}
	return o, nil
}
