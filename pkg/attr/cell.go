// Package attr provides the attribute cells extension records are built
// from. Every cell pairs a value with a codec.Kind and knows how to configure
// itself from an ini.Parser and persist itself to a save stream.
//
// Cells are values meant to be embedded in a record struct; once a cell has
// been loaded it must not be copied until the swizzle pass has run, since
// pointer placeholders target the cell's own storage.
package attr

import (
	"fmt"

	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// Cell is the persistence surface shared by every cell type.
type Cell interface {
	Save(w *stream.Writer) error
	Load(r *stream.Reader, sw *swizzle.Resolver) error
	// ResolvesByName reports whether the cell stores indexes obtained from a
	// Lookuper rather than values.
	ResolvesByName() bool
}

// Lookuper maps a configured name to an index in an external table.
type Lookuper interface {
	FindIndex(name string) (int, bool)
}

// LookupFunc adapts a function to Lookuper.
type LookupFunc func(name string) (int, bool)

// FindIndex implements Lookuper.
func (f LookupFunc) FindIndex(name string) (int, bool) { return f(name) }

// SaveAll writes cells in order.
func SaveAll(w *stream.Writer, cells ...Cell) error {
	for i, c := range cells {
		if err := c.Save(w); err != nil {
			return fmt.Errorf("attr: save cell %d: %w", i, err)
		}
	}
	return nil
}

// LoadAll reads cells in the order SaveAll wrote them.
func LoadAll(r *stream.Reader, sw *swizzle.Resolver, cells ...Cell) error {
	for i, c := range cells {
		if err := c.Load(r, sw); err != nil {
			return fmt.Errorf("attr: load cell %d: %w", i, err)
		}
	}
	return nil
}
