package attr

import (
	"slices"

	"extframe/pkg/codec"
	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// List is an ordered sequence that configuration replaces wholesale.
type List[T any] struct {
	kind    codec.Scalar[T]
	items   []T
	defined bool
}

// NewList returns a list holding def, not yet defined by configuration.
func NewList[T any](kind codec.Scalar[T], def ...T) List[T] {
	return List[T]{kind: kind, items: slices.Clone(def)}
}

// Items returns the current elements. The slice must not be modified.
func (c *List[T]) Items() []T { return c.items }

// Len returns the number of elements.
func (c *List[T]) Len() int { return len(c.items) }

// Defined reports whether configuration or a load ever wrote the list.
func (c *List[T]) Defined() bool { return c.defined }

// Set replaces the elements and marks the list defined.
func (c *List[T]) Set(items []T) {
	c.items = slices.Clone(items)
	c.defined = true
}

// Read replaces the list with the tokens of the key's value. Tokens that do
// not parse are reported and skipped; blank tokens are skipped silently.
func (c *List[T]) Read(p *ini.Parser, section, key string) bool {
	raw, ok := p.Read(section, key)
	if !ok {
		return false
	}
	c.items = parseTokens(p, section, key, raw, c.kind.Parse)
	c.defined = true
	return true
}

// Save writes the count, the elements and the defined trailer.
func (c *List[T]) Save(w *stream.Writer) error {
	if err := c.saveItems(w); err != nil {
		return err
	}
	return w.WriteBool(c.defined)
}

// Load implements Cell.
func (c *List[T]) Load(r *stream.Reader, sw *swizzle.Resolver) error {
	if err := c.loadItems(r, sw); err != nil {
		return err
	}
	defined, err := r.ReadBool()
	c.defined = defined
	return err
}

// ResolvesByName implements Cell.
func (c *List[T]) ResolvesByName() bool { return false }

func (c *List[T]) saveItems(w *stream.Writer) error {
	if err := w.WriteCount(len(c.items)); err != nil {
		return err
	}
	for _, v := range c.items {
		if err := c.kind.Encode(w, v); err != nil {
			return err
		}
	}
	return nil
}

func (c *List[T]) loadItems(r *stream.Reader, sw *swizzle.Resolver) error {
	n, err := r.ReadCount()
	if err != nil {
		return err
	}
	// Sized up front so deferred pointer assignments target stable elements.
	items := make([]T, n)
	for i := range items {
		if err := c.kind.Decode(r, &items[i], sw); err != nil {
			return err
		}
	}
	c.items = items
	return nil
}

func parseTokens[T any](p *ini.Parser, section, key, raw string, parse func(string) (T, error)) []T {
	toks := codec.Split(raw)
	out := make([]T, 0, len(toks))
	for _, tok := range toks {
		if ini.IsBlank(tok) {
			continue
		}
		v, err := parse(tok)
		if err != nil {
			p.ParseFailed(section, key, tok, codec.Reason(err))
			continue
		}
		out = append(out, v)
	}
	return out
}

// NullableList is a List that can be explicitly reset to "unset" with the
// <default> sentinel.
type NullableList[T any] struct {
	List[T]
	hasValue bool
}

// NewNullableList returns an unset list.
func NewNullableList[T any](kind codec.Scalar[T]) NullableList[T] {
	return NullableList[T]{List: List[T]{kind: kind}}
}

// HasValue reports whether the list holds configured elements.
func (c *NullableList[T]) HasValue() bool { return c.hasValue }

// Elements returns the stored elements when set, otherwise fallback.
func (c *NullableList[T]) Elements(fallback []T) []T {
	if c.hasValue {
		return c.items
	}
	return fallback
}

// Set replaces the elements and marks the list set.
func (c *NullableList[T]) Set(items []T) {
	c.List.Set(items)
	c.hasValue = true
}

// Reset clears the elements and the set flag.
func (c *NullableList[T]) Reset() {
	c.items = nil
	c.hasValue = false
}

// Read behaves like List.Read, except that "<default>" resets the list.
func (c *NullableList[T]) Read(p *ini.Parser, section, key string) bool {
	raw, ok := p.Read(section, key)
	if !ok {
		return false
	}
	c.defined = true
	if ini.IsDefault(raw) {
		c.Reset()
		return true
	}
	c.items = parseTokens(p, section, key, raw, c.kind.Parse)
	c.hasValue = true
	return true
}

// Save writes the set flag, the elements when set and the defined trailer.
func (c *NullableList[T]) Save(w *stream.Writer) error {
	if err := w.WriteBool(c.hasValue); err != nil {
		return err
	}
	if c.hasValue {
		if err := c.saveItems(w); err != nil {
			return err
		}
	}
	return w.WriteBool(c.defined)
}

// Load implements Cell.
func (c *NullableList[T]) Load(r *stream.Reader, sw *swizzle.Resolver) error {
	c.Reset()
	has, err := r.ReadBool()
	if err != nil {
		return err
	}
	if has {
		c.hasValue = true
		if err := c.loadItems(r, sw); err != nil {
			return err
		}
	}
	defined, err := r.ReadBool()
	c.defined = defined
	return err
}
