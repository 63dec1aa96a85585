package swtype

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"extframe/internal/feature/host"
	"extframe/pkg/attr"
	"extframe/pkg/codec"
	"extframe/pkg/ini"
	"extframe/pkg/savegame"
	"extframe/pkg/swizzle"
)

type fixture struct {
	world    *host.World
	deps     Deps
	paradrop *host.Type
	nuke     *host.Type
}

func newFixture() fixture {
	w := host.NewWorld()
	deps := Deps{
		SuperWeapons: w.Registry(Table),
		Aircraft:     w.Registry("AircraftTypes"),
		Technos:      w.Registry("TechnoTypes"),
		EVA:          attr.LookupFunc(func(name string) (int, bool) { return map[string]int{"EVA_ParaDropReady": 12}[name], name == "EVA_ParaDropReady" }),
	}
	deps.Aircraft.FindOrAllocate("PDPLANE")
	deps.Aircraft.FindOrAllocate("V3ROCKET")
	return fixture{
		world:    w,
		deps:     deps,
		nuke:     deps.SuperWeapons.FindOrAllocate("NukeSpecial"),
		paradrop: deps.SuperWeapons.FindOrAllocate("ParaDropSpecial"),
	}
}

func rules() *ini.File {
	f := ini.NewFile()
	f.Set("General", "SW.Sidebar", "ParaDropSpecial,NukeSpecial")
	f.Set("ParaDropSpecial", "SW.AITargeting", "ParaDrop")
	f.Set("ParaDropSpecial", "SW.RequiresTarget", "land,water")
	f.Set("ParaDropSpecial", "SW.AffectedHouse", "team")
	f.Set("ParaDropSpecial", "SW.Range", "2.5")
	f.Set("ParaDropSpecial", "SW.Damage", "100")
	f.Set("ParaDropSpecial", "SW.Damage.Elite", "150")
	f.Set("ParaDropSpecial", "ParaDrop.Aircraft", "PDPLANE")
	f.Set("ParaDropSpecial", "ParaDrop.Types", "E1,E2")
	f.Set("ParaDropSpecial", "ParaDrop.Num", "8,4,2")
	f.Set("ParaDropSpecial", "Deliver.Mission", "area guard")
	f.Set("ParaDropSpecial", "Rocket.Damage", "300")
	f.Set("ParaDropSpecial", "Rocket.Type", "V3ROCKET")
	f.Set("ParaDropSpecial", "Cursor", "53,5,5,0,0,center,bottom")
	f.Set("ParaDropSpecial", "Text.Ready", "TXT_PARA_READY")
	f.Set("ParaDropSpecial", "EVA.Ready", "EVA_ParaDropReady")
	f.Set("NukeSpecial", "Deliver.Types", "HTNK")
	return f
}

func configure(t *testing.T, fx fixture) (*Container, *Globals, *ini.Parser) {
	t.Helper()
	c, g := NewContainer(fx.deps)
	p := ini.NewParser(rules())
	if !c.LoadStaticFromINI(p, GlobalSection) {
		t.Fatalf("expected static record to be configurable")
	}
	for _, sw := range fx.deps.SuperWeapons.Types() {
		c.LoadFromINI(sw, p)
	}
	return c, g, p
}

func TestLoadFromINI(t *testing.T) {
	fx := newFixture()
	c, g, p := configure(t, fx)
	if diags := p.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %+v", diags)
	}
	rec, _ := c.Find(fx.paradrop)

	if rec.AITargeting.Get() != AITargetingParaDrop {
		t.Fatalf("unexpected targeting %v", rec.AITargeting.Get())
	}
	if rec.RequiresTarget.Get() != TargetLand|TargetWater {
		t.Fatalf("unexpected targets %v", rec.RequiresTarget.Get())
	}
	if rec.AffectedHouse.Get() != AffectsTeam {
		t.Fatalf("unexpected affected houses %v", rec.AffectedHouse.Get())
	}
	if rec.Range.Get() != 640 {
		t.Fatalf("expected 640 leptons, got %d", rec.Range.Get())
	}
	if rec.Damage.At(attr.Rookie) != 100 || rec.Damage.At(attr.Elite) != 150 {
		t.Fatalf("unexpected damage %+v", rec.Damage)
	}
	plane, _ := fx.deps.Aircraft.Find("PDPLANE")
	if rec.ParaDropPlane.Get() != plane {
		t.Fatalf("expected paradrop plane")
	}
	drops := rec.ParaDrop()
	if len(drops) != 2 || drops[0].Type.Name != "E1" || drops[0].Count != 8 || drops[1].Count != 4 {
		t.Fatalf("unexpected drops %+v", drops)
	}
	if rec.DeliverMission.Get() != MissionAreaGuard {
		t.Fatalf("unexpected mission %v", rec.DeliverMission.Get())
	}
	rocket := rec.Rocket.Get()
	if v3, _ := fx.deps.Aircraft.Find("V3ROCKET"); rocket.Damage != 300 || rocket.Type != v3 {
		t.Fatalf("unexpected rocket %+v", rocket)
	}
	cur := rec.Cursor.Get()
	if cur.Frame != 53 || cur.Count != 5 || cur.HotY != codec.HotSpotBottom {
		t.Fatalf("unexpected cursor %+v", cur)
	}
	if rec.TextReady.Get() != "TXT_PARA_READY" || rec.EVAReady.Get() != 12 {
		t.Fatalf("unexpected presentation %q %d", rec.TextReady.Get(), rec.EVAReady.Get())
	}
	// Unset delivery types fall back to the paradrop payload.
	if got := rec.Deliveries(); len(got) != 2 {
		t.Fatalf("expected fallback deliveries, got %v", got)
	}

	nuke, _ := c.Find(fx.nuke)
	if got := nuke.Deliveries(); len(got) != 1 || got[0].Name != "HTNK" {
		t.Fatalf("unexpected nuke deliveries %v", got)
	}
	if sidebar := g.Sidebar.Items(); len(sidebar) != 2 || sidebar[0] != fx.paradrop {
		t.Fatalf("unexpected sidebar %v", sidebar)
	}
}

func TestLoadFromINIReportsBadValues(t *testing.T) {
	fx := newFixture()
	c, _ := NewContainer(fx.deps)
	f := ini.NewFile()
	f.Set("NukeSpecial", "SW.AITargeting", "everything")
	f.Set("NukeSpecial", "SW.RequiresTarget", "land,lava")
	f.Set("NukeSpecial", "SW.AffectedHouse", "none")
	f.Set("NukeSpecial", "ParaDrop.Aircraft", "UFO")
	f.Set("NukeSpecial", "EVA.Ready", "EVA_Missing")
	p := ini.NewParser(f)
	rec := c.LoadFromINI(fx.nuke, p)

	if rec.AITargeting.Get() != AITargetingNone || rec.RequiresTarget.Get() != TargetAll {
		t.Fatalf("expected defaults kept")
	}
	if rec.AffectedHouse.Get() != AffectsNone {
		t.Fatalf("expected none to clear the set, got %v", rec.AffectedHouse.Get())
	}
	if rec.ParaDropPlane.Get() != nil {
		t.Fatalf("expected unknown aircraft to be rejected")
	}
	if len(p.Diagnostics()) != 4 {
		t.Fatalf("expected four diagnostics, got %+v", p.Diagnostics())
	}
}

func TestAffectedHouseIncludes(t *testing.T) {
	cases := []struct {
		set         AffectedHouse
		owner, ally bool
		want        bool
	}{
		{AffectsTeam, true, false, true},
		{AffectsTeam, false, true, true},
		{AffectsTeam, false, false, false},
		{AffectsOthers, true, false, false},
		{AffectsAll, false, false, true},
	}
	for _, tc := range cases {
		if got := tc.set.Includes(tc.owner, tc.ally); got != tc.want {
			t.Fatalf("%v owner=%v ally=%v: expected %v", tc.set, tc.owner, tc.ally, tc.want)
		}
	}
	if AffectsTeam.String() != "owner,allies" {
		t.Fatalf("unexpected format %q", AffectsTeam.String())
	}
}

func TestSaveLoadRestoresReferences(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	c, _, _ := configure(t, fx)
	m := savegame.NewManager()
	if err := m.Register(fx.world, c); err != nil {
		t.Fatalf("register: %v", err)
	}
	var buf bytes.Buffer
	if err := m.Save(ctx, &buf); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The loading process knows the super weapons but none of the payload
	// types; the world section recreates them.
	w := host.NewWorld()
	deps := Deps{
		SuperWeapons: w.Registry(Table),
		Aircraft:     w.Registry("AircraftTypes"),
		Technos:      w.Registry("TechnoTypes"),
	}
	paradrop := deps.SuperWeapons.FindOrAllocate("ParaDropSpecial")
	nuke := deps.SuperWeapons.FindOrAllocate("NukeSpecial")
	fc, fg := NewContainer(deps)
	fc.FindOrAllocate(paradrop)
	fc.FindOrAllocate(nuke)
	lm := savegame.NewManager()
	if err := lm.Register(w, fc); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := lm.Load(ctx, &buf); err != nil {
		t.Fatalf("load: %v", err)
	}

	rec, _ := fc.Find(paradrop)
	plane, ok := deps.Aircraft.Find("PDPLANE")
	if !ok || rec.ParaDropPlane.Get() != plane {
		t.Fatalf("expected paradrop plane to resolve to the live type")
	}
	e2, _ := deps.Technos.Find("E2")
	if drops := rec.ParaDrop(); len(drops) != 2 || drops[1].Type != e2 || drops[1].Count != 4 {
		t.Fatalf("unexpected drops %+v", drops)
	}
	if rec.Rocket.Get().Type == nil || rec.Rocket.Get().Damage != 300 {
		t.Fatalf("unexpected rocket %+v", rec.Rocket.Get())
	}
	if rec.Damage.At(attr.Veteran) != 100 || rec.EVAReady.Get() != 12 {
		t.Fatalf("unexpected scalar state")
	}
	if sidebar := fg.Sidebar.Items(); len(sidebar) != 2 || sidebar[0] != paradrop || sidebar[1] != nuke {
		t.Fatalf("unexpected sidebar %v", sidebar)
	}
}

func TestLoadWithoutWorldLeavesReferencesUnresolved(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	c, _, _ := configure(t, fx)
	m := savegame.NewManager()
	_ = m.Register(c)
	var buf bytes.Buffer
	if err := m.Save(ctx, &buf); err != nil {
		t.Fatalf("save: %v", err)
	}

	fresh := newFixture()
	fc, _ := NewContainer(fresh.deps)
	fc.FindOrAllocate(fresh.nuke)
	fc.FindOrAllocate(fresh.paradrop)
	lm := savegame.NewManager()
	_ = lm.Register(fc)
	if err := lm.Load(ctx, &buf); !errors.Is(err, swizzle.ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}
