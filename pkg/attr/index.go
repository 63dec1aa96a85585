package attr

import (
	"extframe/pkg/codec"
	"extframe/pkg/ini"
)

// NoIndex is the index of an unset or blank reference.
const NoIndex = -1

// ReasonUnknownName is reported for names the Lookuper does not know.
const ReasonUnknownName = "Expected a valid name"

func resolveIndex(p *ini.Parser, section, key, name string, lookup Lookuper) (int32, bool) {
	if lookup != nil {
		if idx, ok := lookup.FindIndex(name); ok {
			return int32(idx), true
		}
	}
	if ini.IsBlank(name) {
		return NoIndex, true
	}
	p.ParseFailed(section, key, name, ReasonUnknownName)
	return 0, false
}

// Index stores an index resolved by name at configuration time.
type Index struct {
	Value[int32]
}

// NewIndex returns an index cell holding NoIndex.
func NewIndex() Index {
	return Index{Value: NewValue[int32](codec.Int, NoIndex)}
}

// Get returns the index as an int.
func (c *Index) Get() int { return int(c.v) }

// Read resolves the key's value through lookup. Blank values store NoIndex.
func (c *Index) Read(p *ini.Parser, section, key string, lookup Lookuper) bool {
	raw, ok := p.Read(section, key)
	if !ok {
		return false
	}
	idx, ok := resolveIndex(p, section, key, raw, lookup)
	if ok {
		c.v = idx
	}
	return ok
}

// ResolvesByName implements Cell.
func (c *Index) ResolvesByName() bool { return true }

// NullableIndex is an Index that starts unset.
type NullableIndex struct {
	Nullable[int32]
}

// NewNullableIndex returns an unset index cell.
func NewNullableIndex() NullableIndex {
	return NullableIndex{Nullable: NewNullable[int32](codec.Int)}
}

// Get returns the index, or def when unset.
func (c *NullableIndex) Get(def int) int { return int(c.Nullable.Get(int32(def))) }

// Read resolves the key's value through lookup and marks the cell set.
func (c *NullableIndex) Read(p *ini.Parser, section, key string, lookup Lookuper) bool {
	raw, ok := p.Read(section, key)
	if !ok {
		return false
	}
	idx, ok := resolveIndex(p, section, key, raw, lookup)
	if ok {
		c.Set(idx)
	}
	return ok
}

// ResolvesByName implements Cell.
func (c *NullableIndex) ResolvesByName() bool { return true }

func resolveIndexes(p *ini.Parser, section, key, raw string, lookup Lookuper) []int32 {
	toks := codec.Split(raw)
	out := make([]int32, 0, len(toks))
	for _, tok := range toks {
		if lookup != nil {
			if idx, ok := lookup.FindIndex(tok); ok {
				out = append(out, int32(idx))
				continue
			}
		}
		if !ini.IsBlank(tok) {
			p.ParseFailed(section, key, tok, ReasonUnknownName)
		}
	}
	return out
}

// IndexList stores indexes resolved by name at configuration time.
type IndexList struct {
	List[int32]
}

// NewIndexList returns an empty index list.
func NewIndexList() IndexList {
	return IndexList{List: NewList[int32](codec.Int)}
}

// Indexes returns the elements as ints.
func (c *IndexList) Indexes() []int { return widen(c.items) }

// Read replaces the list with the resolved tokens of the key's value.
func (c *IndexList) Read(p *ini.Parser, section, key string, lookup Lookuper) bool {
	raw, ok := p.Read(section, key)
	if !ok {
		return false
	}
	c.items = resolveIndexes(p, section, key, raw, lookup)
	c.defined = true
	return true
}

// ResolvesByName implements Cell.
func (c *IndexList) ResolvesByName() bool { return true }

// NullableIndexList is an IndexList that "<default>" resets to unset.
type NullableIndexList struct {
	NullableList[int32]
}

// NewNullableIndexList returns an unset index list.
func NewNullableIndexList() NullableIndexList {
	return NullableIndexList{NullableList: NewNullableList[int32](codec.Int)}
}

// Indexes returns the stored indexes when set, otherwise fallback.
func (c *NullableIndexList) Indexes(fallback []int) []int {
	if !c.hasValue {
		return fallback
	}
	return widen(c.items)
}

// Read behaves like IndexList.Read, except that "<default>" resets the list.
func (c *NullableIndexList) Read(p *ini.Parser, section, key string, lookup Lookuper) bool {
	raw, ok := p.Read(section, key)
	if !ok {
		return false
	}
	c.defined = true
	if ini.IsDefault(raw) {
		c.Reset()
		return true
	}
	c.items = resolveIndexes(p, section, key, raw, lookup)
	c.hasValue = true
	return true
}

// ResolvesByName implements Cell.
func (c *NullableIndexList) ResolvesByName() bool { return true }

func widen(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
