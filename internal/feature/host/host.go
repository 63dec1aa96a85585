// Package host is a minimal stand-in for the game's native object model:
// named type tables, houses and asset lookup. Extension containers attach
// records to the types it hands out.
package host

import (
	"fmt"
	"slices"
	"strings"

	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// Type is one entry of a type table, such as an animation or a super weapon.
type Type struct {
	ID    swizzle.ID
	Name  string
	Table string
}

// SwizzleID implements swizzle.Identifiable.
func (t *Type) SwizzleID() swizzle.ID { return t.ID }

// Section names the configuration section describing the type.
func (t *Type) Section() string { return t.Name }

func (t *Type) String() string { return t.Table + "/" + t.Name }

// Registry is one type table. Names are matched case-insensitively and the
// index of a type is its position in allocation order.
type Registry struct {
	world  *World
	name   string
	types  []*Type
	byName map[string]int
}

// Name returns the table name.
func (r *Registry) Name() string { return r.name }

// Len returns the number of types.
func (r *Registry) Len() int { return len(r.types) }

// At returns the type at index i.
func (r *Registry) At(i int) *Type { return r.types[i] }

// Types returns the types in index order.
func (r *Registry) Types() []*Type { return slices.Clone(r.types) }

// Find implements codec.Finder.
func (r *Registry) Find(name string) (*Type, bool) {
	i, ok := r.FindIndex(name)
	if !ok {
		return nil, false
	}
	return r.types[i], true
}

// FindIndex implements attr.Lookuper.
func (r *Registry) FindIndex(name string) (int, bool) {
	i, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

// FindOrAllocate implements codec.Allocator.
func (r *Registry) FindOrAllocate(name string) *Type {
	if t, ok := r.Find(name); ok {
		return t
	}
	t := &Type{ID: r.world.nextID(), Name: strings.TrimSpace(name), Table: r.name}
	r.byName[strings.ToLower(t.Name)] = len(r.types)
	r.types = append(r.types, t)
	return t
}

// World owns every type table and hands out identities unique across them.
type World struct {
	next   swizzle.ID
	tables map[string]*Registry
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{next: 1, tables: make(map[string]*Registry)}
}

func (w *World) nextID() swizzle.ID {
	id := w.next
	w.next++
	return id
}

// Registry returns the named table, creating it when missing.
func (w *World) Registry(name string) *Registry {
	if r, ok := w.tables[name]; ok {
		return r
	}
	r := &Registry{world: w, name: name, byName: make(map[string]int)}
	w.tables[name] = r
	return r
}

// Tables lists table names in sorted order.
func (w *World) Tables() []string {
	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadLists allocates the types named in list sections such as
// [SuperWeaponTypes], using the section name as the table name.
func (w *World) LoadLists(src ini.Enumerable, lists ...string) {
	for _, list := range lists {
		r := w.Registry(list)
		for _, name := range ini.Values(src, list) {
			r.FindOrAllocate(name)
		}
	}
}

// Name implements savegame.Participant.
func (w *World) Name() string { return "host.types" }

// SaveAll writes every table with the identity and name of each type.
func (w *World) SaveAll(wr *stream.Writer) error {
	names := w.Tables()
	if err := wr.WriteCount(len(names)); err != nil {
		return err
	}
	for _, name := range names {
		r := w.tables[name]
		if err := wr.WriteString(name); err != nil {
			return err
		}
		if err := wr.WriteCount(len(r.types)); err != nil {
			return err
		}
		for _, t := range r.types {
			if err := wr.WriteUint32(uint32(t.ID)); err != nil {
				return err
			}
			if err := wr.WriteString(t.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadAll restores saved identities onto the live types, allocating types
// that only exist in the stream, and announces each type to sw. Live types
// missing from the stream are given fresh identities above every restored
// one. Register the world before any container whose owners are its types.
func (w *World) LoadAll(rd *stream.Reader, sw *swizzle.Resolver) error {
	tables, err := rd.ReadCount()
	if err != nil {
		return err
	}
	restored := make(map[*Type]struct{})
	var highest swizzle.ID
	for range tables {
		name, err := rd.ReadString()
		if err != nil {
			return err
		}
		r := w.Registry(name)
		count, err := rd.ReadCount()
		if err != nil {
			return err
		}
		for range count {
			raw, err := rd.ReadUint32()
			if err != nil {
				return err
			}
			typeName, err := rd.ReadString()
			if err != nil {
				return err
			}
			id := swizzle.ID(raw)
			if id == swizzle.Nil {
				return fmt.Errorf("%w: %s/%s has nil identity", stream.ErrCorrupt, name, typeName)
			}
			t := r.FindOrAllocate(typeName)
			t.ID = id
			restored[t] = struct{}{}
			highest = max(highest, id)
			if sw != nil {
				if err := sw.Announce(id, t); err != nil {
					return err
				}
			}
		}
	}
	w.next = highest + 1
	for _, name := range w.Tables() {
		for _, t := range w.tables[name].types {
			if _, ok := restored[t]; !ok {
				t.ID = w.nextID()
			}
		}
	}
	return nil
}
