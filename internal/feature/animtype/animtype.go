// Package animtype extends animation types with the house that owns the
// infantry an animation spawns and a custom palette.
package animtype

import (
	"math/rand/v2"

	"extframe/internal/feature/host"
	"extframe/pkg/attr"
	"extframe/pkg/codec"
	"extframe/pkg/ext"
	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// Canary guards every animation type record in the save stream.
const Canary uint32 = 0xEEEEEEEE

// Table is the type list section animation types are declared in.
const Table = "Animations"

// OwnerHouseKind selects which house ends up owning spawned infantry.
type OwnerHouseKind int32

const (
	OwnerDefault OwnerHouseKind = iota
	OwnerInvoker
	OwnerKiller
	OwnerVictim
	OwnerCivilian
	OwnerSpecial
	OwnerNeutral
	OwnerRandom
)

// OwnerHouseKinds is the vocabulary of MakeInfantryOwner.
var OwnerHouseKinds = codec.NewEnum[OwnerHouseKind]("Expected a owner house kind",
	"default", "invoker", "killer", "victim", "civilian", "special", "neutral", "random")

func (k OwnerHouseKind) String() string { return OwnerHouseKinds.Name(k) }

// Ext is the extension record of one animation type.
type Ext struct {
	Owner             *host.Type
	MakeInfantryOwner attr.Value[OwnerHouseKind]
	Palette           attr.Value[codec.Handle[host.Asset]]
}

// Container holds the records of every animation type.
type Container = ext.Container[*host.Type, *Ext]

// NewContainer returns the animation type container. Palettes are resolved
// through assets.
func NewContainer(assets codec.Resources[host.Asset], opts ...ext.Option) *Container {
	palettes := codec.NewHandle(assets, "")
	return ext.New(Table, Canary, func(owner *host.Type) *Ext {
		return &Ext{
			Owner:             owner,
			MakeInfantryOwner: attr.NewValue[OwnerHouseKind](OwnerHouseKinds, OwnerVictim),
			Palette:           attr.NewValue[codec.Handle[host.Asset]](palettes, codec.Handle[host.Asset]{}),
		}
	}, opts...)
}

// LoadFromINI implements ext.Configurable.
func (e *Ext) LoadFromINI(p *ini.Parser, section string) {
	e.MakeInfantryOwner.Read(p, section, "MakeInfantryOwner")
	e.Palette.Read(p, section, "CustomPalette")
}

// Save implements ext.Persistent.
func (e *Ext) Save(w *stream.Writer) error {
	return attr.SaveAll(w, &e.MakeInfantryOwner, &e.Palette)
}

// Load implements ext.Persistent.
func (e *Ext) Load(r *stream.Reader, sw *swizzle.Resolver) error {
	return attr.LoadAll(r, sw, &e.MakeInfantryOwner, &e.Palette)
}

// Parties are the houses involved in the event that spawned an animation.
type Parties struct {
	Invoker *host.House
	Victim  *host.House
	Killer  *host.House
}

// ResolveOwner picks the house selected by kind. OwnerDefault and houses
// missing from the match yield nil, meaning the animation keeps its owner.
func ResolveOwner(kind OwnerHouseKind, parties Parties, houses host.Houses, rnd *rand.Rand) *host.House {
	switch kind {
	case OwnerInvoker:
		return parties.Invoker
	case OwnerKiller:
		return parties.Killer
	case OwnerVictim:
		return parties.Victim
	case OwnerCivilian:
		return houses.Civilian()
	case OwnerSpecial:
		return houses.Special()
	case OwnerNeutral:
		return houses.Neutral()
	case OwnerRandom:
		return houses.Random(rnd)
	default:
		return nil
	}
}

// ResolveOwner applies the record's MakeInfantryOwner.
func (e *Ext) ResolveOwner(parties Parties, houses host.Houses, rnd *rand.Rand) *host.House {
	return ResolveOwner(e.MakeInfantryOwner.Get(), parties, houses, rnd)
}
