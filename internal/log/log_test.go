package log

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_FormatsCategoryAndFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)

	Info(CatRegistry, "instance started", "shortcut_id", "s1", "state", "running")

	line := buf.String()
	require.Contains(t, line, "[INFO] [registry] instance started")
	require.Contains(t, line, "shortcut_id=s1")
	require.Contains(t, line, "state=running")
	require.True(t, strings.HasSuffix(line, "\n"))
}

func TestLog_OddFieldCountMarksMissing(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)

	Warn(CatChannel, "reconnect", "attempt")

	require.Contains(t, buf.String(), "attempt=<missing>")
}

func TestLog_MinLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelWarn)

	Debug(CatRPC, "hidden")
	Info(CatRPC, "hidden too")
	Error(CatRPC, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestLog_DisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	SetEnabled(false)
	defer SetEnabled(true)

	Error(CatOrch, "nope")
	require.Empty(t, buf.String())
}

func TestErrorErr_AppendsError(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)

	ErrorErr(CatStore, "list failed", context.DeadlineExceeded, "method", "listShortcuts")
	ErrorErr(CatStore, "nil error", nil)

	require.Contains(t, buf.String(), "error=context deadline exceeded")
	require.Contains(t, buf.String(), "error=<nil>")
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	buf := &syncBuffer{}
	InitWriter(buf, LevelDebug)

	done := make(chan struct{})
	SafeGo("boom", func() {
		defer close(done)
		panic("kaboom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "goroutine did not run")
	}
	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "goroutine=boom")
	}, time.Second, 5*time.Millisecond)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("debug"))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel("ERROR"))
	require.Equal(t, LevelInfo, ParseLevel("whatever"))
}
