// Package memory implements the save catalog in process memory. The SQL
// backends embed it and snapshot its contents after each mutation.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"extframe/internal/catalog/core"
)

// Store implements core.Catalog.
type Store struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]core.Entry
}

// New returns an empty catalog.
func New() *Store { return &Store{entries: make(map[uuid.UUID]core.Entry)} }

// Driver implements core.Catalog.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Close implements core.Catalog.
func (s *Store) Close() error { return nil }

// Add implements core.Catalog.
func (s *Store) Add(ctx context.Context, e core.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; ok {
		return fmt.Errorf("%w: %s", core.ErrExists, e.ID)
	}
	s.entries[e.ID] = e
	return nil
}

// Get implements core.Catalog.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (core.Entry, error) {
	if err := ctx.Err(); err != nil {
		return core.Entry{}, err
	}
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return core.Entry{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return e, nil
}

// List implements core.Catalog.
func (s *Store) List(ctx context.Context, slot string) ([]core.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Slot(slot), nil
}

// Slot returns the entries of slot (all entries when empty), newest first.
func (s *Store) Slot(slot string) []core.Entry {
	s.mu.RLock()
	out := make([]core.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if slot == "" || e.Slot == slot {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()
	core.SortNewestFirst(out)
	return out
}

// Delete implements core.Catalog.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok, err := s.Remove(ctx, id)
	return ok, err
}

// Remove deletes the entry and returns it.
func (s *Store) Remove(ctx context.Context, id uuid.UUID) (core.Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.Entry{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	return e, ok, nil
}

// Restore puts back an entry removed by Remove or inserts a loaded one,
// overwriting any entry with the same ID.
func (s *Store) Restore(e core.Entry) {
	s.mu.Lock()
	s.entries[e.ID] = e
	s.mu.Unlock()
}

// Import replaces the contents with entries.
func (s *Store) Import(entries []core.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	for _, e := range entries {
		s.entries[e.ID] = e
	}
}
