// Package swtype extends super weapon types with targeting, delivery and
// presentation settings.
package swtype

import (
	"extframe/internal/feature/host"
	"extframe/pkg/attr"
	"extframe/pkg/codec"
	"extframe/pkg/ext"
	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// Canary guards every super weapon type record in the save stream.
const Canary uint32 = 0x66666666

// Table is the type list section super weapon types are declared in.
const Table = "SuperWeaponTypes"

// GlobalSection configures the process-wide super weapon settings.
const GlobalSection = "General"

// AITargeting tells computer players how to aim a super weapon.
type AITargeting int32

const (
	AITargetingNone AITargeting = iota
	AITargetingNuke
	AITargetingLightningStorm
	AITargetingPsychicDominator
	AITargetingParaDrop
	AITargetingGeneticMutator
	AITargetingForceShield
	AITargetingNoTarget
	AITargetingOffensive
	AITargetingStealth
	AITargetingSelf
	AITargetingBase
	AITargetingMultiMissile
	AITargetingHunterSeeker
	AITargetingEnemyBase
)

// AITargetingModes is the vocabulary of SW.AITargeting.
var AITargetingModes = codec.NewEnum[AITargeting]("Expected a targeting mode",
	"none", "nuke", "lightningstorm", "psychicdominator", "paradrop",
	"geneticmutator", "forceshield", "notarget", "offensive", "stealth",
	"self", "base", "multimissile", "hunterseeker", "enemybase")

func (m AITargeting) String() string { return AITargetingModes.Name(m) }

// Target is the set of cell contents a super weapon may be fired at.
type Target uint32

const (
	TargetLand Target = 1 << iota
	TargetWater
	TargetEmpty
	TargetInfantry
	TargetUnits
	TargetBuildings

	TargetNone Target = 0
	TargetAll         = TargetLand | TargetWater | TargetEmpty | TargetInfantry | TargetUnits | TargetBuildings
)

// Targets is the vocabulary of SW.RequiresTarget.
var Targets = codec.NewFlags("Expected a super weapon target",
	codec.Flag[Target]{Name: "land", Bits: TargetLand},
	codec.Flag[Target]{Name: "water", Bits: TargetWater},
	codec.Flag[Target]{Name: "empty", Bits: TargetEmpty},
	codec.Flag[Target]{Name: "infantry", Bits: TargetInfantry},
	codec.Flag[Target]{Name: "units", Bits: TargetUnits},
	codec.Flag[Target]{Name: "buildings", Bits: TargetBuildings},
	codec.Flag[Target]{Name: "all", Bits: TargetAll},
)

func (t Target) String() string { return Targets.Format(t) }

// AffectedHouse is the set of houses a super weapon acts upon, relative to
// the firing house.
type AffectedHouse uint32

const (
	AffectsOwner AffectedHouse = 1 << iota
	AffectsAllies
	AffectsEnemies

	AffectsNone   AffectedHouse = 0
	AffectsTeam                 = AffectsOwner | AffectsAllies
	AffectsOthers               = AffectsAllies | AffectsEnemies
	AffectsAll                  = AffectsOwner | AffectsAllies | AffectsEnemies
)

// AffectedHouses is the vocabulary of SW.AffectedHouse.
var AffectedHouses = codec.NewFlags("Expected a super weapon affected house",
	codec.Flag[AffectedHouse]{Name: "owner", Bits: AffectsOwner},
	codec.Flag[AffectedHouse]{Name: "allies", Bits: AffectsAllies},
	codec.Flag[AffectedHouse]{Name: "enemies", Bits: AffectsEnemies},
	codec.Flag[AffectedHouse]{Name: "team", Bits: AffectsTeam},
	codec.Flag[AffectedHouse]{Name: "others", Bits: AffectsOthers},
	codec.Flag[AffectedHouse]{Name: "all", Bits: AffectsAll},
)

func (a AffectedHouse) String() string { return AffectedHouses.Format(a) }

// Includes reports whether a house standing in the given relation to the
// firing house is affected.
func (a AffectedHouse) Includes(isOwner, isAlly bool) bool {
	switch {
	case isOwner:
		return a&AffectsOwner != 0
	case isAlly:
		return a&AffectsAllies != 0
	default:
		return a&AffectsEnemies != 0
	}
}

// Mission is the order given to delivered units.
type Mission int32

const (
	MissionSleep Mission = iota
	MissionAttack
	MissionMove
	MissionQMove
	MissionRetreat
	MissionGuard
	MissionSticky
	MissionEnter
	MissionCapture
	MissionEaten
	MissionHarvest
	MissionAreaGuard
	MissionReturn
	MissionStop
	MissionAmbush
	MissionHunt
	MissionUnload
	MissionSabotage
	MissionConstruction
	MissionSelling
	MissionRepair
	MissionRescue
	MissionMissile
	MissionHarmless
	MissionOpen
	MissionPatrol
)

// Missions is the vocabulary of Deliver.Mission.
var Missions = codec.NewEnum[Mission]("Invalid Mission name",
	"Sleep", "Attack", "Move", "QMove", "Retreat", "Guard", "Sticky", "Enter",
	"Capture", "Eaten", "Harvest", "Area Guard", "Return", "Stop", "Ambush",
	"Hunt", "Unload", "Sabotage", "Construction", "Selling", "Repair",
	"Rescue", "Missile", "Harmless", "Open", "Patrol")

func (m Mission) String() string { return Missions.Name(m) }

// Deps are the host tables super weapon settings refer to.
type Deps struct {
	// SuperWeapons owns the records and backs the sidebar list.
	SuperWeapons *host.Registry
	// Aircraft backs paradrop planes and rocket airframes.
	Aircraft *host.Registry
	// Technos backs paradrop and delivery payloads. Unknown names are
	// allocated.
	Technos *host.Registry
	// EVA maps voice event names to indexes.
	EVA attr.Lookuper
}

// Ext is the extension record of one super weapon type.
type Ext struct {
	Owner *host.Type
	eva   attr.Lookuper

	AITargeting    attr.Value[AITargeting]
	RequiresTarget attr.Value[Target]
	AffectedHouse  attr.Value[AffectedHouse]
	Range          attr.Value[codec.Leptons]
	Damage         attr.Promotable[int32]

	ParaDropPlane attr.Value[*host.Type]
	ParaDropTypes attr.List[*host.Type]
	ParaDropNum   attr.List[int32]

	DeliverTypes   attr.NullableList[*host.Type]
	DeliverMission attr.Value[Mission]

	Rocket    attr.Value[codec.Rocket[*host.Type]]
	Cursor    attr.Value[codec.Cursor]
	TextReady attr.Value[string]
	EVAReady  attr.Index
}

// Globals is the process-wide super weapon record.
type Globals struct {
	// Sidebar lists super weapons in cameo order.
	Sidebar attr.List[*host.Type]
}

// LoadFromINI implements ext.Configurable.
func (g *Globals) LoadFromINI(p *ini.Parser, section string) {
	g.Sidebar.Read(p, section, "SW.Sidebar")
}

// Save implements ext.Persistent.
func (g *Globals) Save(w *stream.Writer) error { return g.Sidebar.Save(w) }

// Load implements ext.Persistent.
func (g *Globals) Load(r *stream.Reader, sw *swizzle.Resolver) error { return g.Sidebar.Load(r, sw) }

// Container holds the records of every super weapon type.
type Container = ext.Container[*host.Type, *Ext]

var defaultCursor = codec.Cursor{Count: 1, Interval: 1, HotX: codec.HotSpotCenter, HotY: codec.HotSpotMiddle}

// NewContainer returns the super weapon type container and its static
// record.
func NewContainer(deps Deps, opts ...ext.Option) (*Container, *Globals) {
	technos := codec.NewPointer[*host.Type](deps.Technos).Allocating(deps.Technos)
	aircraft := codec.NewPointer[*host.Type](deps.Aircraft)
	globals := &Globals{Sidebar: attr.NewList[*host.Type](codec.NewPointer[*host.Type](deps.SuperWeapons))}

	alloc := func(owner *host.Type) *Ext {
		return &Ext{
			Owner:          owner,
			eva:            deps.EVA,
			AITargeting:    attr.NewValue[AITargeting](AITargetingModes, AITargetingNone),
			RequiresTarget: attr.NewValue[Target](Targets, TargetAll),
			AffectedHouse:  attr.NewValue[AffectedHouse](AffectedHouses, AffectsAll),
			Range:          attr.NewValue[codec.Leptons](codec.LeptonsKind, 0),
			Damage:         attr.NewPromotable[int32](codec.Int, 0),
			ParaDropPlane:  attr.NewValue[*host.Type](aircraft, nil),
			ParaDropTypes:  attr.NewList[*host.Type](technos),
			ParaDropNum:    attr.NewList[int32](codec.Int),
			DeliverTypes:   attr.NewNullableList[*host.Type](technos),
			DeliverMission: attr.NewValue[Mission](Missions, MissionGuard),
			Rocket:         attr.NewValue[codec.Rocket[*host.Type]](codec.NewRocket(aircraft), codec.Rocket[*host.Type]{}),
			Cursor:         attr.NewValue[codec.Cursor](codec.CursorAnimation, defaultCursor),
			TextReady:      attr.NewValue[string](codec.String, ""),
			EVAReady:       attr.NewIndex(),
		}
	}
	opts = append([]ext.Option{ext.WithStatic(globals)}, opts...)
	return ext.New(Table, Canary, alloc, opts...), globals
}

// LoadFromINI implements ext.Configurable.
func (e *Ext) LoadFromINI(p *ini.Parser, section string) {
	e.AITargeting.Read(p, section, "SW.AITargeting")
	e.RequiresTarget.Read(p, section, "SW.RequiresTarget")
	e.AffectedHouse.Read(p, section, "SW.AffectedHouse")
	e.Range.Read(p, section, "SW.Range")
	e.Damage.Read(p, section, "SW.Damage.%s")

	e.ParaDropPlane.Read(p, section, "ParaDrop.Aircraft")
	e.ParaDropTypes.Read(p, section, "ParaDrop.Types")
	e.ParaDropNum.Read(p, section, "ParaDrop.Num")

	e.DeliverTypes.Read(p, section, "Deliver.Types")
	e.DeliverMission.Read(p, section, "Deliver.Mission")

	e.Rocket.Read(p, section, "Rocket")
	e.Cursor.Read(p, section, "Cursor")
	e.TextReady.Read(p, section, "Text.Ready")
	e.EVAReady.Read(p, section, "EVA.Ready", e.eva)
}

func (e *Ext) cells() []attr.Cell {
	return []attr.Cell{
		&e.AITargeting, &e.RequiresTarget, &e.AffectedHouse, &e.Range, &e.Damage,
		&e.ParaDropPlane, &e.ParaDropTypes, &e.ParaDropNum,
		&e.DeliverTypes, &e.DeliverMission,
		&e.Rocket, &e.Cursor, &e.TextReady, &e.EVAReady,
	}
}

// Save implements ext.Persistent.
func (e *Ext) Save(w *stream.Writer) error { return attr.SaveAll(w, e.cells()...) }

// Load implements ext.Persistent.
func (e *Ext) Load(r *stream.Reader, sw *swizzle.Resolver) error {
	return attr.LoadAll(r, sw, e.cells()...)
}

// Drop is one paradrop payload entry.
type Drop struct {
	Type  *host.Type
	Count int
}

// ParaDrop pairs ParaDrop.Types with ParaDrop.Num. Surplus entries of the
// longer list are ignored.
func (e *Ext) ParaDrop() []Drop {
	types, nums := e.ParaDropTypes.Items(), e.ParaDropNum.Items()
	n := min(len(types), len(nums))
	drops := make([]Drop, 0, n)
	for i := range n {
		drops = append(drops, Drop{Type: types[i], Count: int(nums[i])})
	}
	return drops
}

// Deliveries returns the delivered types, falling back to the paradrop
// payload when Deliver.Types is unset.
func (e *Ext) Deliveries() []*host.Type {
	return e.DeliverTypes.Elements(e.ParaDropTypes.Items())
}
