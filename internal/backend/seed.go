package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/shortcut"
	"github.com/zjrosen/shortcuts/internal/watcher"
)

// seedEntry is one value of the seed file's id → shortcut object.
type seedEntry struct {
	Name     string            `json:"name"`
	Cmd      string            `json:"cmd"`
	Icon     string            `json:"icon,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// LoadSeed reads a seed file of the form {"<id>": {"name": ..., "cmd": ..., "icon": ...}}.
// Entries are returned in id order.
func LoadSeed(path string) ([]shortcut.Shortcut, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: seed path comes from config
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var entries map[string]seedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}

	out := make([]shortcut.Shortcut, 0, len(entries))
	for id, e := range entries {
		out = append(out, shortcut.Shortcut{ID: id, Name: e.Name, Cmd: e.Cmd, Icon: e.Icon, Metadata: e.Metadata})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ImportSeed loads path into db without overwriting stored shortcuts.
// A missing seed file is not an error.
func ImportSeed(ctx context.Context, db *DB, path string) (int, error) {
	shortcuts, err := LoadSeed(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug(log.CatBackend, "no seed file", "path", path)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	added, err := db.Import(ctx, shortcuts)
	if err != nil {
		return 0, err
	}
	log.Info(log.CatBackend, "seed imported", "path", path, "entries", len(shortcuts), "added", added)
	return added, nil
}

// SeedWatcher re-imports the seed file whenever it changes.
type SeedWatcher struct {
	db      *DB
	path    string
	watcher *watcher.Watcher
	done    chan struct{}
	// imported receives the count after every re-import; tests observe it.
	imported chan int
}

// WatchSeed imports path once, then watches it until Stop.
func WatchSeed(ctx context.Context, db *DB, path string, cfg watcher.Config) (*SeedWatcher, error) {
	if _, err := ImportSeed(ctx, db, path); err != nil {
		log.ErrorErr(log.CatBackend, "initial seed import failed", err, "path", path)
	}

	cfg.Path = path
	w, err := watcher.New(cfg)
	if err != nil {
		return nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, err
	}

	sw := &SeedWatcher{
		db:       db,
		path:     path,
		watcher:  w,
		done:     make(chan struct{}),
		imported: make(chan int, 1),
	}
	log.SafeGo("seed-watcher", func() { sw.loop(ctx, changes) })
	return sw, nil
}

func (sw *SeedWatcher) loop(ctx context.Context, changes <-chan struct{}) {
	for {
		select {
		case <-sw.done:
			return
		case <-ctx.Done():
			return
		case <-changes:
			added, err := ImportSeed(ctx, sw.db, sw.path)
			if err != nil {
				log.ErrorErr(log.CatWatcher, "seed re-import failed", err, "path", sw.path)
				continue
			}
			select {
			case sw.imported <- added:
			default:
			}
		}
	}
}

// Imported delivers the added-count of each re-import triggered by a change.
func (sw *SeedWatcher) Imported() <-chan int {
	return sw.imported
}

// Stop ends the watch.
func (sw *SeedWatcher) Stop() error {
	close(sw.done)
	return sw.watcher.Stop()
}
