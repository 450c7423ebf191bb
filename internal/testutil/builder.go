package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// Adder stores one shortcut and returns the full collection.
type Adder interface {
	Add(ctx context.Context, s shortcut.Shortcut) (shortcut.Collection, error)
}

// Builder accumulates fixture shortcuts and stores them in order.
type Builder struct {
	t         *testing.T
	shortcuts []shortcut.Shortcut
}

// NewBuilder creates an empty builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithShortcut adds a shortcut with optional configuration.
func (b *Builder) WithShortcut(id string, opts ...ShortcutOption) *Builder {
	b.shortcuts = append(b.shortcuts, Shortcut(id, opts...))
	return b
}

// With adds prepared shortcuts, for example a preset.
func (b *Builder) With(shortcuts ...shortcut.Shortcut) *Builder {
	b.shortcuts = append(b.shortcuts, shortcuts...)
	return b
}

// Collection returns the accumulated shortcuts keyed by id.
func (b *Builder) Collection() shortcut.Collection {
	c := make(shortcut.Collection, len(b.shortcuts))
	for _, s := range b.shortcuts {
		c[s.ID] = s
	}
	return c
}

// Build stores every shortcut through a and returns the final collection.
func (b *Builder) Build(a Adder) shortcut.Collection {
	b.t.Helper()
	var all shortcut.Collection
	for _, s := range b.shortcuts {
		var err error
		all, err = a.Add(context.Background(), s)
		require.NoError(b.t, err, "adding fixture %s", s.ID)
	}
	return all
}
