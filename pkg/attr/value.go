package attr

import (
	"extframe/pkg/codec"
	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// Value always holds a value, starting from its compiled-in default.
type Value[T any] struct {
	kind codec.Kind[T]
	v    T
}

// NewValue returns a cell holding def.
func NewValue[T any](kind codec.Kind[T], def T) Value[T] {
	return Value[T]{kind: kind, v: def}
}

// Get returns the current value.
func (c *Value[T]) Get() T { return c.v }

// Set replaces the current value.
func (c *Value[T]) Set(v T) { c.v = v }

// Read overwrites the value when the key is present and parses.
func (c *Value[T]) Read(p *ini.Parser, section, key string) bool {
	return c.kind.Read(p, section, key, &c.v)
}

// Save implements Cell.
func (c *Value[T]) Save(w *stream.Writer) error { return c.kind.Encode(w, c.v) }

// Load implements Cell.
func (c *Value[T]) Load(r *stream.Reader, sw *swizzle.Resolver) error {
	return c.kind.Decode(r, &c.v, sw)
}

// ResolvesByName implements Cell.
func (c *Value[T]) ResolvesByName() bool { return false }

// Nullable holds a value only once something explicitly set it.
type Nullable[T any] struct {
	kind codec.Kind[T]
	v    T
	set  bool
}

// NewNullable returns an unset cell.
func NewNullable[T any](kind codec.Kind[T]) Nullable[T] {
	return Nullable[T]{kind: kind}
}

// IsSet reports whether the cell has an explicit value.
func (c *Nullable[T]) IsSet() bool { return c.set }

// Get returns the stored value, or def when unset.
func (c *Nullable[T]) Get(def T) T {
	if c.set {
		return c.v
	}
	return def
}

// Value returns the stored value and whether it is set.
func (c *Nullable[T]) Value() (T, bool) { return c.v, c.set }

// Set stores v.
func (c *Nullable[T]) Set(v T) {
	c.v = v
	c.set = true
}

// Reset clears the value.
func (c *Nullable[T]) Reset() {
	var zero T
	c.v = zero
	c.set = false
}

// Read sets the value when the key is present and parses.
func (c *Nullable[T]) Read(p *ini.Parser, section, key string) bool {
	v := c.v
	if !c.kind.Read(p, section, key, &v) {
		return false
	}
	c.Set(v)
	return true
}

// Save writes the set flag, then the value when set.
func (c *Nullable[T]) Save(w *stream.Writer) error {
	if err := w.WriteBool(c.set); err != nil {
		return err
	}
	if !c.set {
		return nil
	}
	return c.kind.Encode(w, c.v)
}

// Load implements Cell.
func (c *Nullable[T]) Load(r *stream.Reader, sw *swizzle.Resolver) error {
	c.Reset()
	set, err := r.ReadBool()
	if err != nil || !set {
		return err
	}
	c.set = true
	return c.kind.Decode(r, &c.v, sw)
}

// ResolvesByName implements Cell.
func (c *Nullable[T]) ResolvesByName() bool { return false }
