// Package ext attaches extension records to host-owned objects and persists
// them through save games.
//
// A Container tracks every live record of one record type. The host calls
// FindOrAllocate when it constructs an owner, Remove when it destroys one,
// LoadFromINI when it configures one, and SaveAll/LoadAll from its save and
// load passes.
package ext

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"

	"extframe/pkg/diag"
	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

var (
	// ErrCanaryMismatch reports a record whose guard value does not match
	// the container's canary, meaning the stream is out of sync.
	ErrCanaryMismatch = errors.New("ext: canary mismatch")
	// ErrCountMismatch reports a stream whose record count differs from the
	// live owner set.
	ErrCountMismatch = errors.New("ext: record count mismatch")
	// ErrUnknownOwner reports a stream record for an owner that is not live.
	ErrUnknownOwner = errors.New("ext: unknown owner")
	// ErrDuplicateOwner reports two records for one owner identity.
	ErrDuplicateOwner = errors.New("ext: duplicate owner")
	// ErrNilOwner reports an operation on the zero owner.
	ErrNilOwner = errors.New("ext: nil owner")
)

// Owner is a host object records attach to.
type Owner interface {
	comparable
	swizzle.Identifiable
	// Section names the configuration section describing the owner.
	Section() string
}

// Persistent is the save-stream surface of a record.
type Persistent interface {
	Save(w *stream.Writer) error
	Load(r *stream.Reader, sw *swizzle.Resolver) error
}

// Configurable records can be populated from configuration text.
type Configurable interface {
	LoadFromINI(p *ini.Parser, section string)
}

// Record is an extension record payload.
type Record interface {
	Persistent
	Configurable
}

// LoadError locates a failure inside a container's load pass.
type LoadError struct {
	Container string
	Owner     swizzle.ID
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("ext: %s: owner %d: %v", e.Container, e.Owner, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Container owns every record of one record type, keyed by owner.
type Container[O Owner, R Record] struct {
	name    string
	canary  uint32
	alloc   func(O) R
	records map[O]R
	lookup  func(swizzle.ID) (O, bool)
	static  Persistent
	logger  diag.Logger
}

type options struct {
	static Persistent
	logger diag.Logger
}

// Option customises a Container.
type Option func(*options)

// WithLogger sets the container logger.
func WithLogger(l diag.Logger) Option {
	return func(o *options) { o.logger = diag.LoggerOrNop(l) }
}

// WithStatic attaches a process-wide record persisted after the per-owner
// records.
func WithStatic(static Persistent) Option {
	return func(o *options) { o.static = static }
}

// New returns an empty container. alloc builds the default record for an
// owner; canary guards every persisted record.
func New[O Owner, R Record](name string, canary uint32, alloc func(O) R, opts ...Option) *Container[O, R] {
	o := options{logger: diag.NopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Container[O, R]{
		name:    name,
		canary:  canary,
		alloc:   alloc,
		records: make(map[O]R),
		static:  o.static,
		logger:  o.logger,
	}
}

// UseOwnerLookup lets LoadAll allocate records for live owners that never
// had one allocated since construction.
func (c *Container[O, R]) UseOwnerLookup(lookup func(swizzle.ID) (O, bool)) {
	c.lookup = lookup
}

// Name identifies the container in save streams and diagnostics.
func (c *Container[O, R]) Name() string { return c.name }

// Canary returns the record guard value.
func (c *Container[O, R]) Canary() uint32 { return c.canary }

// Len returns the number of live records.
func (c *Container[O, R]) Len() int { return len(c.records) }

// Static returns the process-wide record, or nil.
func (c *Container[O, R]) Static() Persistent { return c.static }

// FindOrAllocate returns the owner's record, creating it when missing.
func (c *Container[O, R]) FindOrAllocate(owner O) R {
	if rec, ok := c.records[owner]; ok {
		return rec
	}
	rec := c.alloc(owner)
	c.records[owner] = rec
	return rec
}

// Find returns the owner's record without creating one.
func (c *Container[O, R]) Find(owner O) (R, bool) {
	rec, ok := c.records[owner]
	return rec, ok
}

// Remove drops the owner's record. Removing an unknown owner does nothing.
func (c *Container[O, R]) Remove(owner O) {
	delete(c.records, owner)
}

// Clear drops every record.
func (c *Container[O, R]) Clear() {
	clear(c.records)
}

// LoadFromINI configures the owner's record from its section, allocating the
// record when needed.
func (c *Container[O, R]) LoadFromINI(owner O, p *ini.Parser) R {
	rec := c.FindOrAllocate(owner)
	rec.LoadFromINI(p, owner.Section())
	return rec
}

// LoadStaticFromINI configures the static record from section when it
// accepts configuration.
func (c *Container[O, R]) LoadStaticFromINI(p *ini.Parser, section string) bool {
	cfg, ok := c.static.(Configurable)
	if !ok {
		return false
	}
	cfg.LoadFromINI(p, section)
	return true
}

// Owners lists live owners in ascending identity order, the order records
// are saved and loaded in.
func (c *Container[O, R]) Owners() []O {
	owners := slices.Collect(maps.Keys(c.records))
	slices.SortFunc(owners, func(a, b O) int {
		return cmp.Compare(a.SwizzleID(), b.SwizzleID())
	})
	return owners
}

// SaveAll writes the record count, then identity, canary and payload per
// record, then the static record.
func (c *Container[O, R]) SaveAll(w *stream.Writer) error {
	owners := c.Owners()
	if err := w.WriteCount(len(owners)); err != nil {
		return fmt.Errorf("ext: %s: %w", c.name, err)
	}
	var prev swizzle.ID
	for i, owner := range owners {
		id := owner.SwizzleID()
		if id == swizzle.Nil {
			return fmt.Errorf("ext: %s: %w", c.name, ErrNilOwner)
		}
		if i > 0 && id == prev {
			return fmt.Errorf("ext: %s: %w: id %d", c.name, ErrDuplicateOwner, id)
		}
		prev = id
		if err := w.WriteUint32(uint32(id)); err != nil {
			return fmt.Errorf("ext: %s: owner %d: %w", c.name, id, err)
		}
		if err := c.saveOne(w, c.records[owner]); err != nil {
			return fmt.Errorf("ext: %s: owner %d: %w", c.name, id, err)
		}
	}
	if c.static != nil {
		if err := c.saveOne(w, c.static); err != nil {
			return fmt.Errorf("ext: %s: static: %w", c.name, err)
		}
	}
	c.logger.Debug("extension records saved", "container", c.name, "records", len(owners), "static", c.static != nil)
	return nil
}

func (c *Container[O, R]) saveOne(w *stream.Writer, p Persistent) error {
	if err := w.WriteUint32(c.canary); err != nil {
		return err
	}
	return p.Save(w)
}

// LoadAll restores records written by SaveAll. Every stream identity must
// name a live owner exactly once, and every live owner must appear. Each
// owner is announced to sw and pointer fields are deferred to it.
func (c *Container[O, R]) LoadAll(r *stream.Reader, sw *swizzle.Resolver) error {
	count, err := r.ReadCount()
	if err != nil {
		return fmt.Errorf("ext: %s: %w", c.name, err)
	}
	if c.lookup == nil && count != len(c.records) {
		return fmt.Errorf("ext: %s: %w: stream has %d, live %d", c.name, ErrCountMismatch, count, len(c.records))
	}

	byID := make(map[swizzle.ID]O, len(c.records))
	for owner := range c.records {
		byID[owner.SwizzleID()] = owner
	}
	seen := make(map[swizzle.ID]struct{})
	for range count {
		raw, err := r.ReadUint32()
		if err != nil {
			return fmt.Errorf("ext: %s: %w", c.name, err)
		}
		id := swizzle.ID(raw)
		if _, dup := seen[id]; dup {
			return &LoadError{Container: c.name, Owner: id, Err: ErrDuplicateOwner}
		}
		seen[id] = struct{}{}

		owner, ok := byID[id]
		if !ok && c.lookup != nil {
			owner, ok = c.lookup(id)
		}
		if !ok {
			return &LoadError{Container: c.name, Owner: id, Err: ErrUnknownOwner}
		}
		if sw != nil {
			if err := sw.Announce(id, owner); err != nil {
				return &LoadError{Container: c.name, Owner: id, Err: err}
			}
		}
		if err := c.loadOne(r, sw, c.FindOrAllocate(owner)); err != nil {
			return &LoadError{Container: c.name, Owner: id, Err: err}
		}
	}
	if len(seen) != len(c.records) {
		return fmt.Errorf("ext: %s: %w: stream has %d, live %d", c.name, ErrCountMismatch, len(seen), len(c.records))
	}

	if c.static != nil {
		if err := c.loadOne(r, sw, c.static); err != nil {
			return fmt.Errorf("ext: %s: static: %w", c.name, err)
		}
	}
	c.logger.Debug("extension records loaded", "container", c.name, "records", count, "static", c.static != nil)
	return nil
}

func (c *Container[O, R]) loadOne(r *stream.Reader, sw *swizzle.Resolver, p Persistent) error {
	canary, err := r.ReadUint32()
	if err != nil {
		return err
	}
	if canary != c.canary {
		return fmt.Errorf("%w: got %#08x, want %#08x", ErrCanaryMismatch, canary, c.canary)
	}
	return p.Load(r, sw)
}
