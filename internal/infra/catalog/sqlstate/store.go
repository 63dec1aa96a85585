// Package sqlstate snapshots an in-memory catalog into a database/sql
// "state" table, one JSON row per save slot. The SQLite and Postgres
// backends share it and differ only in dialect.
package sqlstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"extframe/internal/catalog/core"
	"extframe/internal/infra/catalog/memory"
)

// bucketPrefix namespaces catalog rows inside the shared state table.
const bucketPrefix = "saves:"

// Dialect carries the backend-specific statements.
type Dialect struct {
	Driver      core.Driver
	CreateTable string
	Upsert      string
	Delete      string
}

// SQLite targets modernc.org/sqlite.
var SQLite = Dialect{
	Driver: core.DriverSQLite,
	CreateTable: `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`,
	Upsert: `INSERT INTO state(bucket, payload) VALUES(?, ?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
	Delete: `DELETE FROM state WHERE bucket = ?`,
}

// Postgres targets pgx through database/sql.
var Postgres = Dialect{
	Driver: core.DriverPostgres,
	CreateTable: `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`,
	Upsert: `INSERT INTO state(bucket, payload) VALUES($1, $2) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
	Delete: `DELETE FROM state WHERE bucket = $1`,
}

// Store is a memory catalog persisted per slot after every mutation.
type Store struct {
	*memory.Store
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
}

// Open ensures the state table exists and hydrates the catalog from it.
func Open(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	if _, err := db.ExecContext(ctx, dialect.CreateTable); err != nil {
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	s := &Store{Store: memory.New(), db: db, dialect: dialect}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var entries []core.Entry
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if !strings.HasPrefix(bucket, bucketPrefix) {
			continue
		}
		var slot []core.Entry
		if err := json.Unmarshal(payload, &slot); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
		entries = append(entries, slot...)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	s.Import(entries)
	return nil
}

// Driver implements core.Catalog.
func (s *Store) Driver() core.Driver { return s.dialect.Driver }

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Add records e and persists its slot. The in-memory insert is rolled back
// when the write fails.
func (s *Store) Add(ctx context.Context, e core.Entry) error {
	if err := s.Store.Add(ctx, e); err != nil {
		return err
	}
	if err := s.persist(ctx, e.Slot); err != nil {
		_, _, _ = s.Store.Remove(context.WithoutCancel(ctx), e.ID)
		return err
	}
	return nil
}

// Delete removes the entry and persists its slot, restoring the entry when
// the write fails.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	e, ok, err := s.Store.Remove(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	if err := s.persist(ctx, e.Slot); err != nil {
		s.Store.Restore(e)
		return false, err
	}
	return true, nil
}

func (s *Store) persist(ctx context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := bucketPrefix + slot
	entries := s.Slot(slot)
	if len(entries) == 0 {
		if _, err := s.db.ExecContext(ctx, s.dialect.Delete, bucket); err != nil {
			return fmt.Errorf("delete %s: %w", bucket, err)
		}
		return nil
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.Upsert, bucket, payload); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	return nil
}
