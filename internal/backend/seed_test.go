package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/shortcuts/internal/testutil"
	"github.com/zjrosen/shortcuts/internal/watcher"
)

const seedJSON = `{
  "b": {"name": "Beta", "cmd": "echo b"},
  "a": {"name": "Alpha", "cmd": "echo a", "icon": "terminal"}
}`

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o600))

	got, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].ID)
	require.Equal(t, "Alpha", got[0].Name)
	require.Equal(t, "terminal", got[0].Icon)
	require.Equal(t, "b", got[1].ID)
}

func TestLoadSeed_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`["not", "a", "map"]`), 0o600))

	_, err := LoadSeed(path)
	require.ErrorContains(t, err, "parsing seed file")
}

func TestImportSeed_MissingFileIsNotAnError(t *testing.T) {
	db := newTestDB(t)

	added, err := ImportSeed(context.Background(), db, filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Zero(t, added)
}

func TestImportSeed_KeepsExistingShortcuts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o600))

	added, err := ImportSeed(ctx, db, path)
	require.NoError(t, err)
	require.Equal(t, 2, added)

	// Second import of the same file adds nothing.
	added, err = ImportSeed(ctx, db, path)
	require.NoError(t, err)
	require.Zero(t, added)
}

func TestWatchSeed_ReimportsOnChange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := testutil.WriteSeed(t, dir, testutil.Shortcut("a", testutil.WithName("Alpha"), testutil.WithCmd("echo a")))

	sw, err := WatchSeed(ctx, db, path, watcher.Config{DebounceDur: 20 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = sw.Stop() }()

	all, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "initial import runs before watching")

	testutil.WriteSeed(t, dir,
		testutil.Shortcut("a", testutil.WithName("Alpha"), testutil.WithCmd("echo a")),
		testutil.Quick(),
	)

	select {
	case added := <-sw.Imported():
		require.Equal(t, 1, added)
	case <-time.After(2 * time.Second):
		t.Fatal("seed change was not re-imported")
	}

	all, err = db.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
