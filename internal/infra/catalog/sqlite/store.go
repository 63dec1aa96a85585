// Package sqlite persists the save catalog to a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"extframe/internal/infra/catalog/sqlstate"
)

const defaultPath = "extframe-saves.db"

// New opens (creating when needed) the catalog database at path.
func New(ctx context.Context, path string) (*sqlstate.Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Serialise writers; modernc sqlite reports SQLITE_BUSY under concurrent
	// connections to one file.
	db.SetMaxOpenConns(1)
	s, err := sqlstate.Open(ctx, db, sqlstate.SQLite)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
