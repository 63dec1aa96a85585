// Package archive stores complete save streams in numbered slots: the stream
// goes to blob storage and its entry to the catalog.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"extframe/internal/blob"
	"extframe/internal/catalog"
	"extframe/pkg/diag"
	"extframe/pkg/savegame"
)

var (
	// ErrNotFound reports an unknown save ID.
	ErrNotFound = errors.New("archive: save not found")
	// ErrInvalidSlot reports a slot name unusable as a key segment.
	ErrInvalidSlot = errors.New("archive: invalid slot")
)

// Archive saves and restores the participants of a savegame.Manager.
type Archive struct {
	blobs   blob.Store
	catalog catalog.Catalog
	manager *savegame.Manager
	logger  diag.Logger
	clock   diag.Clock
	newID   func() uuid.UUID
}

// Option customises an Archive.
type Option func(*Archive)

// WithLogger sets the archive logger.
func WithLogger(l diag.Logger) Option {
	return func(a *Archive) { a.logger = diag.LoggerOrNop(l) }
}

// WithClock overrides the clock stamping catalog entries.
func WithClock(c diag.Clock) Option {
	return func(a *Archive) {
		if c != nil {
			a.clock = c
		}
	}
}

// New returns an archive over the given stores.
func New(blobs blob.Store, cat catalog.Catalog, manager *savegame.Manager, opts ...Option) *Archive {
	a := &Archive{
		blobs:   blobs,
		catalog: cat,
		manager: manager,
		logger:  diag.NopLogger{},
		clock:   diag.SystemClock,
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func validSlot(slot string) error {
	if slot == "" || strings.ContainsAny(slot, "/\\") || slot == "." || slot == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return nil
}

// Key returns the blob key a save is stored under.
func Key(slot string, id uuid.UUID) string {
	return path.Join("saves", slot, id.String()+".sav")
}

// Save serialises every participant and records the result in slot.
func (a *Archive) Save(ctx context.Context, slot, description string) (catalog.Entry, error) {
	if err := validSlot(slot); err != nil {
		return catalog.Entry{}, err
	}
	var buf bytes.Buffer
	if err := a.manager.Save(ctx, &buf); err != nil {
		return catalog.Entry{}, err
	}
	id := a.newID()
	key := Key(slot, id)
	info, err := a.blobs.Put(ctx, key, &buf, blob.PutOptions{
		ContentType: blob.ContentType,
		Metadata:    map[string]string{"slot": slot, "save-id": id.String()},
	})
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("archive: store %s: %w", key, err)
	}
	entry := catalog.Entry{
		ID:          id,
		Slot:        slot,
		Description: description,
		BlobKey:     key,
		Size:        info.Size,
		ETag:        info.ETag,
		CreatedAt:   a.clock.Now(),
	}
	if err := a.catalog.Add(ctx, entry); err != nil {
		if _, derr := a.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			a.logger.Warn("orphaned save blob", "key", key, "error", derr)
		}
		return catalog.Entry{}, fmt.Errorf("archive: catalog %s: %w", id, err)
	}
	a.logger.Info("game saved", "slot", slot, "id", id, "bytes", info.Size)
	return entry, nil
}

// Load restores every participant from the save id.
func (a *Archive) Load(ctx context.Context, id uuid.UUID) (catalog.Entry, error) {
	entry, err := a.lookup(ctx, id)
	if err != nil {
		return catalog.Entry{}, err
	}
	_, rc, err := a.blobs.Get(ctx, entry.BlobKey)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("archive: fetch %s: %w", entry.BlobKey, err)
	}
	defer func() { _ = rc.Close() }()
	if err := a.manager.Load(ctx, rc); err != nil {
		return catalog.Entry{}, err
	}
	a.logger.Info("game loaded", "slot", entry.Slot, "id", id)
	return entry, nil
}

// List returns the saves in slot, or all saves when slot is empty, newest
// first.
func (a *Archive) List(ctx context.Context, slot string) ([]catalog.Entry, error) {
	return a.catalog.List(ctx, slot)
}

// Delete removes the save's blob and catalog entry.
func (a *Archive) Delete(ctx context.Context, id uuid.UUID) error {
	entry, err := a.lookup(ctx, id)
	if err != nil {
		return err
	}
	if _, err := a.blobs.Delete(ctx, entry.BlobKey); err != nil {
		return fmt.Errorf("archive: delete blob %s: %w", entry.BlobKey, err)
	}
	if _, err := a.catalog.Delete(ctx, id); err != nil {
		return fmt.Errorf("archive: delete entry %s: %w", id, err)
	}
	a.logger.Info("save deleted", "slot", entry.Slot, "id", id)
	return nil
}

func (a *Archive) lookup(ctx context.Context, id uuid.UUID) (catalog.Entry, error) {
	entry, err := a.catalog.Get(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entry, err
}
