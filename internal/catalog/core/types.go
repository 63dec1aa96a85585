// Package core defines the save catalog contract: the index of save blobs by
// slot that archives consult before touching blob storage.
package core

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Driver identifies a catalog backend.
type Driver string

const (
	// DriverMemory keeps entries in process memory.
	DriverMemory Driver = "memory"
	// DriverSQLite snapshots entries into a local SQLite file.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres snapshots entries into Postgres.
	DriverPostgres Driver = "postgres"
)

// Entry describes one stored save.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Slot        string    `json:"slot"`
	Description string    `json:"description,omitempty"`
	BlobKey     string    `json:"blob_key"`
	Size        int64     `json:"size_bytes"`
	ETag        string    `json:"etag,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Catalog indexes saves.
type Catalog interface {
	// Add records a new entry and fails with ErrExists on a reused ID.
	Add(ctx context.Context, e Entry) error
	// Get fails with ErrNotFound for unknown IDs.
	Get(ctx context.Context, id uuid.UUID) (Entry, error)
	// List returns the entries of slot, or every entry when slot is empty,
	// newest first.
	List(ctx context.Context, slot string) ([]Entry, error)
	// Delete reports whether the entry existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Driver() Driver
	Close() error
}

var (
	// ErrNotFound reports an unknown entry.
	ErrNotFound = errors.New("catalog: not found")
	// ErrExists reports a duplicate entry ID.
	ErrExists = errors.New("catalog: entry exists")
	// ErrInvalidEntry reports an entry without ID, slot or blob key.
	ErrInvalidEntry = errors.New("catalog: invalid entry")
)

// Validate checks the fields every backend requires.
func (e Entry) Validate() error {
	switch {
	case e.ID == uuid.Nil:
		return errors.Join(ErrInvalidEntry, errors.New("missing id"))
	case e.Slot == "":
		return errors.Join(ErrInvalidEntry, errors.New("missing slot"))
	case e.BlobKey == "":
		return errors.Join(ErrInvalidEntry, errors.New("missing blob key"))
	}
	return nil
}

// SortNewestFirst orders entries by creation time descending, then by ID.
func SortNewestFirst(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
