package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/shortcuts/internal/watcher"
)

func newSeedWatcher(t *testing.T) (string, <-chan struct{}) {
	t.Helper()
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seedPath, []byte("{}"), 0644), "failed to create seed file")

	w, err := watcher.New(watcher.Config{
		Path:        seedPath,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return seedPath, onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	seedPath, onChange := newSeedWatcher(t)

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		err := os.WriteFile(seedPath, []byte(fmt.Sprintf(`{"s%d":{}}`, i)), 0644)
		require.NoError(t, err, "failed to write file")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	seedPath, onChange := newSeedWatcher(t)
	otherPath := filepath.Join(filepath.Dir(seedPath), "other.txt")
	// Pre-create so the next write is a plain Write event; drain the Create.
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0644))
	time.Sleep(100 * time.Millisecond)
	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	default:
	}

	require.NoError(t, os.WriteFile(otherPath, []byte("other content"), 0644), "failed to write other file")

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_SeesReplaceOnSave(t *testing.T) {
	seedPath, onChange := newSeedWatcher(t)

	// Editors commonly write a temp file and rename it over the original.
	tmp := seedPath + ".swp"
	require.NoError(t, os.WriteFile(tmp, []byte(`{"a":{}}`), 0644))
	require.NoError(t, os.Rename(tmp, seedPath))

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for replaced file")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seedPath, []byte("{}"), 0644), "failed to create test file")

	w, err := watcher.New(watcher.Config{
		Path:        seedPath,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	done := make(chan struct{})
	go func() {
		err := w.Stop()
		assert.NoError(t, err, "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing", "seed.json")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/test/seed.json")

	assert.Equal(t, "/test/seed.json", cfg.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceDur)
}
