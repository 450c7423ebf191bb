// Package backend is the reference shortcuts daemon: a sqlite shortcut store,
// a process supervisor, and the HTTP surface the frontend core talks to
// (POST /rpc/{method} plus the /events stream).
package backend

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/zjrosen/shortcuts/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the daemon's sqlite handle.
type DB struct {
	conn *sqlx.DB
	path string
}

// NewDB opens (creating if needed) the database at path and applies pending migrations.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	conn, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	conn.SetMaxOpenConns(1) // sqlite
	conn.SetConnMaxLifetime(0)

	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info(log.CatDB, "database ready", "path", path)
	return &DB{conn: conn, path: path}, nil
}

// Close releases the connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

func runMigrations(conn *sqlx.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(conn.DB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("preparing migration driver: %w", err)
	}
	// Not closed: closing the migrator would close conn as well.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err == nil {
		log.Debug(log.CatDB, "schema version", "version", version, "dirty", dirty)
	}
	return nil
}
