package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_PlainStyle(t *testing.T) {
	r, err := New(40, "notty")
	require.NoError(t, err)
	require.Equal(t, 40, r.Width())

	out, err := r.Render("# Build\n\nRuns `make build`.")
	require.NoError(t, err)
	require.Contains(t, out, "Build")
	require.Contains(t, out, "make build")
}

func TestRender_AutoStyle(t *testing.T) {
	r, err := New(80, "")
	require.NoError(t, err)

	out, err := r.Render("hello")
	require.NoError(t, err)
	require.Contains(t, out, "hello")
}
