// Package feature wires the host object model and every extension container
// into one set that commands configure from INI sources and register with a
// save manager.
package feature

import (
	"extframe/internal/feature/animtype"
	"extframe/internal/feature/host"
	"extframe/internal/feature/swtype"
	"extframe/pkg/codec"
	"extframe/pkg/diag"
	"extframe/pkg/ext"
	"extframe/pkg/ini"
	"extframe/pkg/savegame"
)

// Type list sections read by Configure.
const (
	AircraftList = "AircraftTypes"
	InfantryList = "InfantryTypes"
	VehicleList  = "VehicleTypes"
	EVAList      = "EVAEvents"
)

// technoTable collects infantry and vehicle types, the payloads super
// weapons deliver.
const technoTable = "TechnoTypes"

// Set is the complete extension state of one game session.
type Set struct {
	World        *host.World
	Animations   *animtype.Container
	SuperWeapons *swtype.Container
	SWGlobals    *swtype.Globals
	logger       diag.Logger
}

// NewSet returns an empty set. Palettes and other assets resolve through
// assets.
func NewSet(assets codec.Resources[host.Asset], logger diag.Logger) *Set {
	logger = diag.LoggerOrNop(logger)
	w := host.NewWorld()
	s := &Set{World: w, logger: logger}
	s.Animations = animtype.NewContainer(assets, ext.WithLogger(logger))
	s.SuperWeapons, s.SWGlobals = swtype.NewContainer(swtype.Deps{
		SuperWeapons: w.Registry(swtype.Table),
		Aircraft:     w.Registry(AircraftList),
		Technos:      w.Registry(technoTable),
		EVA:          w.Registry(EVAList),
	}, ext.WithLogger(logger))
	return s
}

// Summary counts what Configure touched.
type Summary struct {
	Animations   int
	SuperWeapons int
}

// Configure declares every listed type and configures its extension record.
// Values that fail to parse are reported to p.
func (s *Set) Configure(src ini.Enumerable, p *ini.Parser) Summary {
	s.World.LoadLists(src, AircraftList, EVAList, animtype.Table, swtype.Table)
	technos := s.World.Registry(technoTable)
	for _, list := range []string{InfantryList, VehicleList} {
		for _, name := range ini.Values(src, list) {
			technos.FindOrAllocate(name)
		}
	}

	s.SuperWeapons.LoadStaticFromINI(p, swtype.GlobalSection)
	var sum Summary
	for _, t := range s.World.Registry(animtype.Table).Types() {
		s.Animations.LoadFromINI(t, p)
		sum.Animations++
	}
	for _, t := range s.World.Registry(swtype.Table).Types() {
		s.SuperWeapons.LoadFromINI(t, p)
		sum.SuperWeapons++
	}
	s.logger.Info("extensions configured",
		"animations", sum.Animations, "super_weapons", sum.SuperWeapons, "diagnostics", len(p.Diagnostics()))
	return sum
}

// Register adds the world and every container to m. The world goes first so
// restored identities are in place before containers match their owners.
func (s *Set) Register(m *savegame.Manager) error {
	return m.Register(s.World, s.Animations, s.SuperWeapons)
}
