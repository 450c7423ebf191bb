package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// Quick exits immediately with status 0.
func Quick() shortcut.Shortcut {
	return Shortcut("quick", WithName("Quick"), WithCmd("echo done"))
}

// Failing exits with status 3.
func Failing() shortcut.Shortcut {
	return Shortcut("failing", WithName("Failing"), WithCmd("exit 3"))
}

// Sleeper runs until stopped.
func Sleeper() shortcut.Shortcut {
	return Shortcut("sleeper", WithName("Sleeper"), WithCmd("sleep 30"))
}

// Stubborn ignores SIGTERM and has to be killed.
func Stubborn() shortcut.Shortcut {
	return Shortcut("stubborn", WithName("Stubborn"), WithCmd("trap '' TERM; sleep 30 & wait"))
}

// StubbornReady is Stubborn, but it creates marker once SIGTERM is ignored.
// Wait for the marker with WaitForFile before signalling it.
func StubbornReady(marker string) shortcut.Shortcut {
	cmd := fmt.Sprintf("trap '' TERM; touch '%s'; sleep 30 & wait", marker)
	return Shortcut("stubborn", WithName("Stubborn"), WithCmd(cmd))
}

// WaitForFile fails the test unless path exists within a few seconds.
func WaitForFile(t *testing.T, path string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond, "%s was not created", path)
}

// WriteSeed writes shortcuts as a seed file in dir and returns its path.
func WriteSeed(t *testing.T, dir string, shortcuts ...shortcut.Shortcut) string {
	t.Helper()
	type entry struct {
		Name     string            `json:"name"`
		Cmd      string            `json:"cmd"`
		Icon     string            `json:"icon,omitempty"`
		Metadata map[string]string `json:"metadata,omitempty"`
	}
	entries := make(map[string]entry, len(shortcuts))
	for _, s := range shortcuts {
		entries[s.ID] = entry{Name: s.Name, Cmd: s.Cmd, Icon: s.Icon, Metadata: s.Metadata}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	require.NoError(t, err)

	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
