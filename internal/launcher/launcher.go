// Package launcher bridges "run an arbitrary command" onto the host's
// "run this catalog entry" primitive through a single reusable stub entry.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zjrosen/shortcuts/internal/host"
	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// ErrSetupFailed is returned for every launch once the stub entry could not
// be created. It does not clear for the rest of the session.
var ErrSetupFailed = errors.New("launcher setup failed")

// Config names the stub entry and the routes the navigation filter uses.
type Config struct {
	StubName     string
	OrphanPrefix string
	RunnerPath   string
	StartDir     string
	DetailsRoute string
	HomeRoute    string
}

// Adapter owns the stub entry. Launch serializes the rewrite-then-run
// sequence so one shortcut's options never reach another's run.
type Adapter struct {
	catalog host.Catalog
	nav     host.Navigator
	cfg     Config

	mu       sync.Mutex
	appID    host.AppID
	ready    bool
	setupErr error
	filter   host.FilterHandle
	filtered bool

	noticeOnce sync.Once
}

// New creates an adapter. nav may be nil when the host has no routing layer.
func New(catalog host.Catalog, nav host.Navigator, cfg Config) *Adapter {
	return &Adapter{catalog: catalog, nav: nav, cfg: cfg}
}

// PurgeOrphans removes every catalog entry whose name starts with the orphan
// prefix and returns how many were removed. Removal continues past
// individual failures; the first one is returned.
func (a *Adapter) PurgeOrphans(ctx context.Context) (int, error) {
	if a.cfg.OrphanPrefix == "" {
		return 0, nil
	}
	entries, err := a.catalog.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing catalog: %w", err)
	}

	var firstErr error
	removed := 0
	for _, e := range entries {
		if !strings.HasPrefix(e.Name, a.cfg.OrphanPrefix) {
			continue
		}
		if err := a.catalog.Remove(ctx, e.AppID); err != nil {
			log.ErrorErr(log.CatLauncher, "failed to purge orphan entry", err, "app_id", e.AppID, "name", e.Name)
			if firstErr == nil {
				firstErr = fmt.Errorf("removing orphan %q: %w", e.Name, err)
			}
			continue
		}
		removed++
		log.Info(log.CatLauncher, "purged orphan entry", "app_id", e.AppID, "name", e.Name)
	}
	return removed, firstErr
}

// EnsureStub looks up or creates the stub entry and installs the navigation
// filter. The id is cached for the session.
func (a *Adapter) EnsureStub(ctx context.Context) (host.AppID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureStubLocked(ctx)
}

func (a *Adapter) ensureStubLocked(ctx context.Context) (host.AppID, error) {
	if a.setupErr != nil {
		return 0, a.setupErr
	}
	if a.ready {
		return a.appID, nil
	}

	entry, found, err := a.catalog.Lookup(ctx, a.cfg.StubName)
	if err != nil {
		return 0, fmt.Errorf("looking up stub %q: %w", a.cfg.StubName, err)
	}

	if found {
		a.appID = entry.AppID
		log.Debug(log.CatLauncher, "reusing stub entry", "app_id", entry.AppID)
	} else {
		id, err := a.catalog.Create(ctx, a.cfg.StubName, a.cfg.RunnerPath, a.cfg.StartDir)
		if err != nil {
			a.setupErr = fmt.Errorf("%w: creating stub %q: %w", ErrSetupFailed, a.cfg.StubName, err)
			log.ErrorErr(log.CatLauncher, "stub creation failed", err, "name", a.cfg.StubName)
			return 0, a.setupErr
		}
		a.appID = id
		log.Info(log.CatLauncher, "created stub entry", "app_id", id, "runner", a.cfg.RunnerPath)
	}
	a.ready = true
	a.installFilterLocked()
	return a.appID, nil
}

// installFilterLocked redirects navigation into the stub's details view to
// the home route.
func (a *Adapter) installFilterLocked() {
	if a.nav == nil || a.filtered || a.cfg.DetailsRoute == "" {
		return
	}
	route := a.cfg.DetailsRoute
	home := a.cfg.HomeRoute
	stub := a.appID.String()
	a.filter = a.nav.AddFilter(route, func(path string) (string, bool) {
		params, ok := host.MatchRoute(route, path)
		if ok && params["appid"] == stub {
			return home, false
		}
		return "", true
	})
	a.filtered = true
}

// Launch rewrites the stub's launch options to sc.Cmd and runs it. Nothing
// runs if the rewrite fails.
func (a *Adapter) Launch(ctx context.Context, sc shortcut.Shortcut) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, err := a.ensureStubLocked(ctx)
	if err != nil {
		return err
	}
	if err := a.catalog.SetLaunchOptions(ctx, id, sc.Cmd); err != nil {
		return fmt.Errorf("setting launch options for %s: %w", sc.ID, err)
	}
	if err := a.catalog.Run(ctx, id); err != nil {
		return fmt.Errorf("running stub for %s: %w", sc.ID, err)
	}
	log.Debug(log.CatLauncher, "launched via stub", "shortcut_id", sc.ID, "app_id", id)
	return nil
}

// AppID returns the cached stub id, if known.
func (a *Adapter) AppID() (host.AppID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.appID, a.ready
}

// SetupNotice returns the sticky setup failure the first time it is called
// after one occurred, so the user sees it exactly once.
func (a *Adapter) SetupNotice() (string, bool) {
	a.mu.Lock()
	err := a.setupErr
	a.mu.Unlock()
	if err == nil {
		return "", false
	}

	shown := false
	a.noticeOnce.Do(func() { shown = true })
	if !shown {
		return "", false
	}
	return fmt.Sprintf("Shortcuts cannot launch this session: %v", err), true
}

// Teardown removes the navigation filter.
func (a *Adapter) Teardown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.filtered {
		a.nav.RemoveFilter(a.filter)
		a.filtered = false
	}
}
