// Package swizzle rebuilds references between objects restored from a save
// stream. References are written as integer identities; while loading, every
// reference is recorded as a placeholder and only assigned once all objects
// have announced themselves.
package swizzle

import (
	"errors"
	"fmt"

	"extframe/pkg/diag"
)

// ID is the persisted identity of a referenceable object. Zero means nil.
type ID uint32

// Nil is the identity written for an absent reference.
const Nil ID = 0

// Identifiable objects carry a stable identity across save and load.
type Identifiable interface {
	SwizzleID() ID
}

var (
	// ErrUnresolved reports placeholders whose identity was never announced.
	ErrUnresolved = errors.New("swizzle: unresolved reference")
	// ErrConflict reports two different objects announced under one identity.
	ErrConflict = errors.New("swizzle: conflicting announcement")
	// ErrTypeMismatch reports an announced object of the wrong type.
	ErrTypeMismatch = errors.New("swizzle: target type mismatch")
	// ErrNilID reports an announcement for the reserved nil identity.
	ErrNilID = errors.New("swizzle: nil identity")
)

type placeholder struct {
	id     ID
	assign func(target any) error
}

// Resolver collects announcements and placeholders for one load pass.
type Resolver struct {
	targets map[ID]any
	pending []placeholder
	logger  diag.Logger
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolution summaries.
func WithLogger(l diag.Logger) Option {
	return func(r *Resolver) { r.logger = diag.LoggerOrNop(l) }
}

// NewResolver returns an empty resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{targets: make(map[ID]any), logger: diag.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Announce registers the live object restored for id. Announcing the same
// object twice is allowed. Targets must be comparable, normally pointers.
func (r *Resolver) Announce(id ID, target any) error {
	if id == Nil {
		return ErrNilID
	}
	if existing, ok := r.targets[id]; ok {
		if existing != target {
			return fmt.Errorf("%w: id %d", ErrConflict, id)
		}
		return nil
	}
	r.targets[id] = target
	return nil
}

// Lookup returns the object announced for id.
func (r *Resolver) Lookup(id ID) (any, bool) {
	t, ok := r.targets[id]
	return t, ok
}

// Defer records a placeholder. assign runs exactly once during Resolve,
// with nil when id is Nil.
func (r *Resolver) Defer(id ID, assign func(target any) error) {
	r.pending = append(r.pending, placeholder{id: id, assign: assign})
}

// Expect defers assignment of the object announced for id into dst.
func Expect[T any](r *Resolver, id ID, dst *T) {
	if id == Nil {
		var zero T
		*dst = zero
		return
	}
	r.Defer(id, func(target any) error {
		v, ok := target.(T)
		if !ok {
			return fmt.Errorf("%w: id %d holds %T, want %T", ErrTypeMismatch, id, target, *new(T))
		}
		*dst = v
		return nil
	})
}

// Pending returns the number of placeholders awaiting Resolve.
func (r *Resolver) Pending() int { return len(r.pending) }

// Resolve assigns every placeholder. If any placeholder names an identity
// that was never announced, nothing is assigned and the pass fails.
// Placeholders are consumed either way.
func (r *Resolver) Resolve() error {
	pending := r.pending
	r.pending = nil

	var missing []ID
	for _, ph := range pending {
		if ph.id == Nil {
			continue
		}
		if _, ok := r.targets[ph.id]; !ok {
			missing = append(missing, ph.id)
		}
	}
	if len(missing) > 0 {
		r.logger.Error("swizzle resolution failed", "placeholders", len(pending), "unresolved", len(missing))
		return fmt.Errorf("%w: %d placeholder(s), first id %d", ErrUnresolved, len(missing), missing[0])
	}

	var errs []error
	for _, ph := range pending {
		var target any
		if ph.id != Nil {
			target = r.targets[ph.id]
		}
		if err := ph.assign(target); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		r.logger.Error("swizzle resolution failed", "placeholders", len(pending), "errors", len(errs))
		return errors.Join(errs...)
	}
	r.logger.Debug("swizzle resolution complete", "placeholders", len(pending), "targets", len(r.targets))
	return nil
}

// Reset forgets all announcements and placeholders.
func (r *Resolver) Reset() {
	clear(r.targets)
	r.pending = nil
}
