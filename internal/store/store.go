// Package store is the shortcut store client. The backend owns shortcut
// definitions; every call returns the backend's collection as of that call
// and nothing is cached between calls.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

// ErrNotFound is returned by Get when the id is not in the collection.
var ErrNotFound = errors.New("shortcut not found")

// Backend is the RPC surface the store needs. *rpc.Client implements it.
type Backend interface {
	ListShortcuts(ctx context.Context) (shortcut.Collection, error)
	AddShortcut(ctx context.Context, s shortcut.Shortcut) (shortcut.Collection, error)
	ModifyShortcut(ctx context.Context, s shortcut.Shortcut) (shortcut.Collection, error)
	RemoveShortcut(ctx context.Context, id string) (shortcut.Collection, error)
}

// Client performs CRUD on shortcut definitions.
type Client struct {
	backend Backend
}

// New creates a store client over backend.
func New(backend Backend) *Client {
	return &Client{backend: backend}
}

// List returns every shortcut.
func (c *Client) List(ctx context.Context) (shortcut.Collection, error) {
	all, err := c.backend.ListShortcuts(ctx)
	if err != nil {
		log.ErrorErr(log.CatStore, "list failed", err)
		return nil, fmt.Errorf("listing shortcuts: %w", err)
	}
	return all, nil
}

// Get returns one shortcut by id.
func (c *Client) Get(ctx context.Context, id string) (shortcut.Shortcut, error) {
	all, err := c.List(ctx)
	if err != nil {
		return shortcut.Shortcut{}, err
	}
	s, ok := all[id]
	if !ok {
		return shortcut.Shortcut{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return s, nil
}

// Add stores a new shortcut. An empty id is filled in before the call.
func (c *Client) Add(ctx context.Context, s shortcut.Shortcut) (shortcut.Collection, error) {
	if s.ID == "" {
		s.ID = shortcut.NewID()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	all, err := c.backend.AddShortcut(ctx, s)
	if err != nil {
		log.ErrorErr(log.CatStore, "add failed", err, "id", s.ID)
		return nil, fmt.Errorf("adding shortcut %s: %w", s.ID, err)
	}
	log.Info(log.CatStore, "added shortcut", "id", s.ID, "name", s.Name)
	return all, nil
}

// Update replaces an existing shortcut.
func (c *Client) Update(ctx context.Context, s shortcut.Shortcut) (shortcut.Collection, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	all, err := c.backend.ModifyShortcut(ctx, s)
	if err != nil {
		log.ErrorErr(log.CatStore, "update failed", err, "id", s.ID)
		return nil, fmt.Errorf("updating shortcut %s: %w", s.ID, err)
	}
	log.Info(log.CatStore, "updated shortcut", "id", s.ID)
	return all, nil
}

// Remove deletes a shortcut.
func (c *Client) Remove(ctx context.Context, id string) (shortcut.Collection, error) {
	if id == "" {
		return nil, shortcut.ErrEmptyID
	}
	all, err := c.backend.RemoveShortcut(ctx, id)
	if err != nil {
		log.ErrorErr(log.CatStore, "remove failed", err, "id", id)
		return nil, fmt.Errorf("removing shortcut %s: %w", id, err)
	}
	log.Info(log.CatStore, "removed shortcut", "id", id)
	return all, nil
}
