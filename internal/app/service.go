package app

import (
	"context"

	"github.com/zjrosen/shortcuts/internal/instance"
	"github.com/zjrosen/shortcuts/internal/orchestrator"
	"github.com/zjrosen/shortcuts/internal/pubsub"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// Service is what the TUI needs from the orchestrator.
type Service interface {
	ListShortcuts(ctx context.Context) (shortcut.Collection, error)
	AddShortcut(ctx context.Context, sc shortcut.Shortcut) (shortcut.Collection, error)
	RemoveShortcut(ctx context.Context, id string) (shortcut.Collection, error)

	Launch(ctx context.Context, sc shortcut.Shortcut) (*instance.ExitHandle, error)
	CloseShortcut(ctx context.Context, sc shortcut.Shortcut) bool
	KillShortcut(ctx context.Context, sc shortcut.Shortcut) bool

	Instances(ctx context.Context) []instance.Info
	InstanceEvents() *pubsub.Broker[instance.Event]

	Connected() bool
	SetupNotice() (string, bool)
}

// FromOrchestrator adapts an initialized orchestrator to Service.
func FromOrchestrator(o *orchestrator.Orchestrator) Service {
	return orchestratorService{o}
}

type orchestratorService struct {
	*orchestrator.Orchestrator
}

func (s orchestratorService) ListShortcuts(ctx context.Context) (shortcut.Collection, error) {
	return s.Shortcuts().List(ctx)
}

func (s orchestratorService) AddShortcut(ctx context.Context, sc shortcut.Shortcut) (shortcut.Collection, error) {
	return s.Shortcuts().Add(ctx, sc)
}

func (s orchestratorService) RemoveShortcut(ctx context.Context, id string) (shortcut.Collection, error) {
	return s.Shortcuts().Remove(ctx, id)
}

func (s orchestratorService) Instances(ctx context.Context) []instance.Info {
	return s.Orchestrator.Instances().Snapshot(ctx)
}

func (s orchestratorService) InstanceEvents() *pubsub.Broker[instance.Event] {
	return s.Orchestrator.Instances().Broker()
}
