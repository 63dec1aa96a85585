package animtype

import (
	"bytes"
	"context"
	"math/rand/v2"
	"testing"
	"testing/fstest"

	"extframe/internal/feature/host"
	"extframe/pkg/ini"
	"extframe/pkg/savegame"
)

func assets() host.AssetFS {
	return host.AssetFS{FS: fstest.MapFS{"anim.pal": {Data: make([]byte, 768)}}}
}

func TestLoadFromINI(t *testing.T) {
	w := host.NewWorld()
	paradrop := w.Registry(Table).FindOrAllocate("PARADROP")
	c := NewContainer(assets())

	f := ini.NewFile()
	f.Set("PARADROP", "MakeInfantryOwner", "Killer")
	f.Set("PARADROP", "CustomPalette", "anim.pal")
	p := ini.NewParser(f)
	rec := c.LoadFromINI(paradrop, p)
	if rec.MakeInfantryOwner.Get() != OwnerKiller {
		t.Fatalf("expected killer, got %v", rec.MakeInfantryOwner.Get())
	}
	pal := rec.Palette.Get()
	if !pal.Found || pal.Name != "anim.pal" || pal.Asset.Size != 768 {
		t.Fatalf("unexpected palette %+v", pal)
	}
	if len(p.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics %v", p.Diagnostics())
	}
}

func TestLoadFromINIReportsBadValues(t *testing.T) {
	w := host.NewWorld()
	fire := w.Registry(Table).FindOrAllocate("FIRE")
	c := NewContainer(assets())

	f := ini.NewFile()
	f.Set("FIRE", "MakeInfantryOwner", "everyone")
	f.Set("FIRE", "CustomPalette", "missing.pal")
	p := ini.NewParser(f)
	rec := c.LoadFromINI(fire, p)
	if rec.MakeInfantryOwner.Get() != OwnerVictim {
		t.Fatalf("expected default kept, got %v", rec.MakeInfantryOwner.Get())
	}
	if rec.Palette.Get().Found {
		t.Fatalf("expected palette unset")
	}
	diags := p.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("expected two diagnostics, got %v", diags)
	}
	if diags[0].Reason != "Expected a owner house kind" || diags[1].Severity != ini.SeverityResource {
		t.Fatalf("unexpected diagnostics %+v", diags)
	}
}

func TestResolveOwner(t *testing.T) {
	invoker := &host.House{Name: "Americans"}
	victim := &host.House{Name: "Soviets"}
	killer := &host.House{Name: "Yuri"}
	civ := &host.House{Name: "Civilians", Side: host.SideCivilian}
	special := &host.House{Name: "Special", Side: host.SideSpecial}
	neutral := &host.House{Name: "Neutral", Side: host.SideNeutral}
	houses := host.Houses{invoker, victim, killer, civ, special, neutral}
	parties := Parties{Invoker: invoker, Victim: victim, Killer: killer}

	cases := []struct {
		kind OwnerHouseKind
		want *host.House
	}{
		{OwnerDefault, nil},
		{OwnerInvoker, invoker},
		{OwnerKiller, killer},
		{OwnerVictim, victim},
		{OwnerCivilian, civ},
		{OwnerSpecial, special},
		{OwnerNeutral, neutral},
	}
	for _, tc := range cases {
		if got := ResolveOwner(tc.kind, parties, houses, nil); got != tc.want {
			t.Fatalf("%v: expected %v, got %v", tc.kind, tc.want, got)
		}
	}
	rnd := rand.New(rand.NewPCG(7, 7))
	if ResolveOwner(OwnerRandom, parties, houses, rnd) == nil {
		t.Fatalf("expected a random house")
	}
}

func TestSaveLoadThroughManager(t *testing.T) {
	ctx := context.Background()
	w := host.NewWorld()
	fire := w.Registry(Table).FindOrAllocate("FIRE")
	c := NewContainer(assets())
	f := ini.NewFile()
	f.Set("FIRE", "MakeInfantryOwner", "neutral")
	f.Set("FIRE", "CustomPalette", "anim.pal")
	c.LoadFromINI(fire, ini.NewParser(f))

	m := savegame.NewManager()
	if err := m.Register(w, c); err != nil {
		t.Fatalf("register: %v", err)
	}
	var buf bytes.Buffer
	if err := m.Save(ctx, &buf); err != nil {
		t.Fatalf("save: %v", err)
	}

	fw := host.NewWorld()
	ffire := fw.Registry(Table).FindOrAllocate("FIRE")
	fc := NewContainer(assets())
	fc.FindOrAllocate(ffire)
	lm := savegame.NewManager()
	if err := lm.Register(fw, fc); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := lm.Load(ctx, &buf); err != nil {
		t.Fatalf("load: %v", err)
	}
	rec, ok := fc.Find(ffire)
	if !ok || rec.MakeInfantryOwner.Get() != OwnerNeutral {
		t.Fatalf("expected neutral owner after load")
	}
	if pal := rec.Palette.Get(); !pal.Found || pal.Asset.Path != "anim.pal" {
		t.Fatalf("expected palette reloaded, got %+v", pal)
	}
}
