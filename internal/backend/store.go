package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/shortcut"
)

var (
	// ErrNotFound is returned when no shortcut has the requested id.
	ErrNotFound = errors.New("shortcut not found")
	// ErrDuplicate is returned when adding a shortcut whose id is taken.
	ErrDuplicate = errors.New("shortcut id already exists")
)

// shortcutModel is the database row for the shortcuts table.
type shortcutModel struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Cmd       string `db:"cmd"`
	Icon      string `db:"icon"`
	Metadata  string `db:"metadata"` // JSON object
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

const shortcutColumns = `id, name, cmd, icon, metadata, created_at, updated_at`

func toModel(s shortcut.Shortcut, now time.Time) (shortcutModel, error) {
	md := "{}"
	if len(s.Metadata) > 0 {
		raw, err := json.Marshal(s.Metadata)
		if err != nil {
			return shortcutModel{}, fmt.Errorf("encoding metadata: %w", err)
		}
		md = string(raw)
	}
	return shortcutModel{
		ID:        s.ID,
		Name:      s.Name,
		Cmd:       s.Cmd,
		Icon:      s.Icon,
		Metadata:  md,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}, nil
}

func (m shortcutModel) toShortcut() shortcut.Shortcut {
	s := shortcut.Shortcut{ID: m.ID, Name: m.Name, Cmd: m.Cmd, Icon: m.Icon}
	if m.Metadata != "" && m.Metadata != "{}" {
		var md map[string]string
		if err := json.Unmarshal([]byte(m.Metadata), &md); err != nil {
			log.Warn(log.CatDB, "ignoring unreadable metadata", "id", m.ID, "error", err)
		} else if len(md) > 0 {
			s.Metadata = md
		}
	}
	return s
}

// List returns every stored shortcut.
func (d *DB) List(ctx context.Context) (shortcut.Collection, error) {
	var rows []shortcutModel
	if err := d.conn.SelectContext(ctx, &rows, `SELECT `+shortcutColumns+` FROM shortcuts ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("listing shortcuts: %w", err)
	}
	out := make(shortcut.Collection, len(rows))
	for _, row := range rows {
		out[row.ID] = row.toShortcut()
	}
	return out, nil
}

// Get returns one shortcut by id.
func (d *DB) Get(ctx context.Context, id string) (shortcut.Shortcut, error) {
	var row shortcutModel
	err := d.conn.GetContext(ctx, &row, `SELECT `+shortcutColumns+` FROM shortcuts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return shortcut.Shortcut{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return shortcut.Shortcut{}, fmt.Errorf("getting shortcut %s: %w", id, err)
	}
	return row.toShortcut(), nil
}

// Add stores a new shortcut, assigning an id when the caller left it empty,
// and returns the full collection.
func (d *DB) Add(ctx context.Context, s shortcut.Shortcut) (shortcut.Collection, error) {
	if strings.TrimSpace(s.ID) == "" {
		s.ID = shortcut.NewID()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	m, err := toModel(s, time.Now())
	if err != nil {
		return nil, err
	}

	res, err := d.conn.NamedExecContext(ctx, `
		INSERT INTO shortcuts (`+shortcutColumns+`)
		VALUES (:id, :name, :cmd, :icon, :metadata, :created_at, :updated_at)
		ON CONFLICT(id) DO NOTHING`, m)
	if err != nil {
		return nil, fmt.Errorf("adding shortcut: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%s: %w", s.ID, ErrDuplicate)
	}
	log.Debug(log.CatDB, "shortcut added", "id", s.ID, "name", s.Name)
	return d.List(ctx)
}

// Update replaces the fields of an existing shortcut.
func (d *DB) Update(ctx context.Context, s shortcut.Shortcut) (shortcut.Collection, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	m, err := toModel(s, time.Now())
	if err != nil {
		return nil, err
	}

	res, err := d.conn.NamedExecContext(ctx, `
		UPDATE shortcuts
		SET name = :name, cmd = :cmd, icon = :icon, metadata = :metadata, updated_at = :updated_at
		WHERE id = :id`, m)
	if err != nil {
		return nil, fmt.Errorf("updating shortcut: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%s: %w", s.ID, ErrNotFound)
	}
	log.Debug(log.CatDB, "shortcut updated", "id", s.ID)
	return d.List(ctx)
}

// Remove deletes a shortcut.
func (d *DB) Remove(ctx context.Context, id string) (shortcut.Collection, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shortcut.ErrEmptyID
	}
	res, err := d.conn.ExecContext(ctx, `DELETE FROM shortcuts WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("removing shortcut: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	log.Debug(log.CatDB, "shortcut removed", "id", id)
	return d.List(ctx)
}

// Import inserts every shortcut whose id is not stored yet and returns how
// many were added. Existing rows are never overwritten.
func (d *DB) Import(ctx context.Context, shortcuts []shortcut.Shortcut) (int, error) {
	added := 0
	err := d.withTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		for _, s := range shortcuts {
			if err := s.Validate(); err != nil {
				log.Warn(log.CatDB, "skipping invalid seed entry", "id", s.ID, "error", err)
				continue
			}
			m, err := toModel(s, now)
			if err != nil {
				return err
			}
			res, err := tx.NamedExecContext(ctx, `
				INSERT INTO shortcuts (`+shortcutColumns+`)
				VALUES (:id, :name, :cmd, :icon, :metadata, :created_at, :updated_at)
				ON CONFLICT(id) DO NOTHING`, m)
			if err != nil {
				return fmt.Errorf("importing %s: %w", s.ID, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				added++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (d *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
