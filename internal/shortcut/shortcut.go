// Package shortcut defines the user-authored shortcut definition shared by the
// frontend core and the reference backend.
package shortcut

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Shortcut is a named shell command the user can launch like a native application.
// The ID is assigned at creation and never changes.
type Shortcut struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Cmd      string            `json:"cmd"`
	Icon     string            `json:"icon,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Collection is the authoritative id → Shortcut mapping returned by the backend.
type Collection map[string]Shortcut

var (
	// ErrEmptyID is returned when an operation needs an id and none was given.
	ErrEmptyID = errors.New("shortcut id is empty")
	// ErrEmptyName is returned for shortcuts without a display name.
	ErrEmptyName = errors.New("shortcut name is empty")
	// ErrEmptyCmd is returned for shortcuts without a command line.
	ErrEmptyCmd = errors.New("shortcut cmd is empty")
)

// New builds a shortcut with a freshly generated id.
func New(name, cmd string) Shortcut {
	return Shortcut{ID: NewID(), Name: name, Cmd: cmd}
}

// NewID returns a new random shortcut id.
func NewID() string {
	return uuid.NewString()
}

// Validate checks the fields every stored shortcut must have.
func (s Shortcut) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("shortcut %s: %w", s.ID, ErrEmptyName)
	}
	if strings.TrimSpace(s.Cmd) == "" {
		return fmt.Errorf("shortcut %s: %w", s.ID, ErrEmptyCmd)
	}
	return nil
}

// Equal reports whether two shortcuts carry identical fields.
func (s Shortcut) Equal(o Shortcut) bool {
	if s.ID != o.ID || s.Name != o.Name || s.Cmd != o.Cmd || s.Icon != o.Icon {
		return false
	}
	if len(s.Metadata) != len(o.Metadata) {
		return false
	}
	for k, v := range s.Metadata {
		if ov, ok := o.Metadata[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Sorted returns the collection ordered by name, then id.
func (c Collection) Sorted() []Shortcut {
	out := make([]Shortcut, 0, len(c))
	for _, s := range c {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Clone returns a copy that shares no maps with c.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for id, s := range c {
		if s.Metadata != nil {
			md := make(map[string]string, len(s.Metadata))
			for k, v := range s.Metadata {
				md[k] = v
			}
			s.Metadata = md
		}
		out[id] = s
	}
	return out
}
