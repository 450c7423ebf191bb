package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/zjrosen/shortcuts/internal/log"
)

// OpKind names a recorded catalog operation.
type OpKind string

const (
	OpCreate     OpKind = "create"
	OpRemove     OpKind = "remove"
	OpSetOptions OpKind = "set_options"
	OpRun        OpKind = "run"
)

// Op is one recorded catalog call.
type Op struct {
	Kind  OpKind
	AppID AppID
	Arg   string
}

// Memory is an in-process host: a catalog that can persist to a JSON file
// and a navigator that applies installed filters. Run only records the call;
// the backend owns the actual process.
type Memory struct {
	mu      sync.Mutex
	path    string
	entries map[AppID]Entry
	nextID  AppID
	ops     []Op

	filters    map[FilterHandle]routeFilter
	nextFilter FilterHandle
	current    string
	history    []string
}

type routeFilter struct {
	route  string
	filter Filter
}

type catalogFile struct {
	NextID  AppID   `json:"nextId"`
	Entries []Entry `json:"entries"`
}

// NewMemory creates an empty in-memory host.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[AppID]Entry),
		nextID:  1,
		filters: make(map[FilterHandle]routeFilter),
	}
}

// OpenMemory creates a host persisted at path. A missing file starts empty.
func OpenMemory(path string) (*Memory, error) {
	m := NewMemory()
	m.path = path

	data, err := os.ReadFile(path) //nolint:gosec // G304: configured catalog path
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	for _, e := range f.Entries {
		m.entries[e.AppID] = e
		if e.AppID >= m.nextID {
			m.nextID = e.AppID + 1
		}
	}
	if f.NextID > m.nextID {
		m.nextID = f.NextID
	}
	log.Debug(log.CatLauncher, "loaded catalog", "path", path, "entries", len(f.Entries))
	return m, nil
}

// Entries implements Catalog.
func (m *Memory) Entries(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(), nil
}

// Lookup implements Catalog.
func (m *Memory) Lookup(ctx context.Context, name string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.sortedLocked() {
		if e.Name == name {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// Create implements Catalog.
func (m *Memory) Create(ctx context.Context, name, exe, startDir string) (AppID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.entries[id] = Entry{AppID: id, Name: name, Exe: exe, StartDir: startDir}
	m.ops = append(m.ops, Op{Kind: OpCreate, AppID: id, Arg: name})
	return id, m.saveLocked()
}

// Remove implements Catalog.
func (m *Memory) Remove(ctx context.Context, id AppID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNoEntry)
	}
	delete(m.entries, id)
	m.ops = append(m.ops, Op{Kind: OpRemove, AppID: id})
	return m.saveLocked()
}

// SetLaunchOptions implements Catalog.
func (m *Memory) SetLaunchOptions(ctx context.Context, id AppID, options string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("set launch options %s: %w", id, ErrNoEntry)
	}
	e.LaunchOptions = options
	m.entries[id] = e
	m.ops = append(m.ops, Op{Kind: OpSetOptions, AppID: id, Arg: options})
	return m.saveLocked()
}

// Run implements Catalog.
func (m *Memory) Run(ctx context.Context, id AppID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("run %s: %w", id, ErrNoEntry)
	}
	m.ops = append(m.ops, Op{Kind: OpRun, AppID: id, Arg: e.LaunchOptions})
	log.Debug(log.CatLauncher, "host run", "app_id", id, "options", e.LaunchOptions)
	return nil
}

// Ops returns every recorded catalog call in order.
func (m *Memory) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Op(nil), m.ops...)
}

// AddFilter implements Navigator.
func (m *Memory) AddFilter(route string, f Filter) FilterHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextFilter++
	m.filters[m.nextFilter] = routeFilter{route: route, filter: f}
	return m.nextFilter
}

// RemoveFilter implements Navigator.
func (m *Memory) RemoveFilter(h FilterHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.filters, h)
}

// FilterCount returns the number of installed filters.
func (m *Memory) FilterCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filters)
}

// Navigate implements Navigator. Filters run outside the lock so they may
// navigate themselves.
func (m *Memory) Navigate(path string) {
	for hops := 0; hops < 8; hops++ {
		m.mu.Lock()
		handles := make([]FilterHandle, 0, len(m.filters))
		for h := range m.filters {
			handles = append(handles, h)
		}
		sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
		matched := make([]Filter, 0, len(handles))
		for _, h := range handles {
			rf := m.filters[h]
			if _, ok := MatchRoute(rf.route, path); ok {
				matched = append(matched, rf.filter)
			}
		}
		m.mu.Unlock()

		redirect, allowed := "", true
		for _, f := range matched {
			if r, ok := f(path); !ok {
				redirect, allowed = r, false
				break
			}
		}

		if allowed {
			m.mu.Lock()
			m.current = path
			m.history = append(m.history, path)
			m.mu.Unlock()
			return
		}
		log.Debug(log.CatLauncher, "navigation suppressed", "path", path, "redirect", redirect)
		if redirect == "" {
			return
		}
		path = redirect
	}
	log.Warn(log.CatLauncher, "navigation redirect loop", "path", path)
}

// Current returns the path of the last allowed navigation.
func (m *Memory) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// History returns every allowed navigation in order.
func (m *Memory) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

func (m *Memory) sortedLocked() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppID < out[j].AppID })
	return out
}

func (m *Memory) saveLocked() error {
	if m.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(catalogFile{NextID: m.nextID, Entries: m.sortedLocked()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o750); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}

var (
	_ Catalog   = (*Memory)(nil)
	_ Navigator = (*Memory)(nil)
)
