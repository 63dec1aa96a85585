package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

type target uint32

const (
	targetLand target = 1 << iota
	targetWater
	targetEmpty
	targetInfantry
)

var targets = NewFlags[target]("Expected a super weapon target",
	Flag[target]{"land", targetLand},
	Flag[target]{"water", targetWater},
	Flag[target]{"empty", targetEmpty},
	Flag[target]{"infantry", targetInfantry},
	Flag[target]{"all", targetLand | targetWater | targetEmpty | targetInfantry},
)

type aircraft struct {
	id   swizzle.ID
	name string
}

func (a *aircraft) SwizzleID() swizzle.ID { return a.id }

type fleet map[string]*aircraft

func (f fleet) Find(name string) (*aircraft, bool) {
	a, ok := f[strings.ToUpper(name)]
	return a, ok
}

type images map[string]int

func (m images) Load(file string) (int, bool) {
	v, ok := m[file]
	return v, ok
}

func parser(kv ...string) *ini.Parser {
	f := ini.NewFile()
	for i := 0; i+1 < len(kv); i += 2 {
		f.Set("S", kv[i], kv[i+1])
	}
	return ini.NewParser(f)
}

func TestScalarParsing(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want bool
		err  bool
	}{
		{"1", true, false}, {"YES", true, false}, {"true", true, false},
		{"0", false, false}, {"No", false, false}, {"false", false, false},
		{"maybe", false, true}, {"2", false, true},
	} {
		got, err := ParseBool(tc.raw)
		if (err != nil) != tc.err || got != tc.want {
			t.Fatalf("ParseBool(%q) = %v, %v", tc.raw, got, err)
		}
	}

	if _, err := ParseByte("256"); err == nil || Reason(err) != reasonByte {
		t.Fatalf("expected byte range error, got %v", err)
	}
	if _, err := ParseByte("x"); Reason(err) != reasonInt {
		t.Fatalf("expected number error, got %v", err)
	}
	if v, err := ParseDouble("25%"); err != nil || v != 0.25 {
		t.Fatalf("expected percent scaling, got %v %v", v, err)
	}
	if _, err := ParseDouble("NaN"); err == nil {
		t.Fatalf("expected NaN to be rejected")
	}
	if c, err := ParseColor("255, 128,0"); err != nil || c != (Color{255, 128, 0}) {
		t.Fatalf("unexpected color %v %v", c, err)
	}
	if _, err := ParseColor("1,2"); Reason(err) != reasonColor {
		t.Fatalf("expected color error, got %v", err)
	}
	if _, err := ParseColor("1,2,300"); err == nil {
		t.Fatalf("expected component range error")
	}
	if l, err := ParseLeptons("1.5"); err != nil || l != 384 {
		t.Fatalf("expected 384 leptons, got %v %v", l, err)
	}
	if l, _ := ParseLeptons("0.003"); l != 1 {
		t.Fatalf("expected rounding to 1 lepton, got %v", l)
	}
	if Leptons(512).Cells() != 2 {
		t.Fatalf("expected 2 cells")
	}
}

func TestReadKeepsValueOnFailure(t *testing.T) {
	p := parser("Count", "abc", "Good", "7")
	v := int32(5)
	if Int.Read(p, "S", "Count", &v) || v != 5 {
		t.Fatalf("expected failed read to keep 5, got %d", v)
	}
	if Int.Read(p, "S", "Missing", &v) || v != 5 {
		t.Fatalf("expected absent key to keep 5")
	}
	if !Int.Read(p, "S", "Good", &v) || v != 7 {
		t.Fatalf("expected 7, got %d", v)
	}
	diags := p.Diagnostics()
	if len(diags) != 1 || diags[0].Key != "Count" || diags[0].Reason != reasonInt {
		t.Fatalf("expected one diagnostic, got %+v", diags)
	}
}

func TestFlagBoundary(t *testing.T) {
	got, err := targets.Parse("land,water,none")
	if err != nil || got != targetLand|targetWater {
		t.Fatalf("expected {Land, Water}, got %v %v", got, err)
	}
	if got, err := targets.Parse("none"); err != nil || got != 0 {
		t.Fatalf("expected empty set, got %v %v", got, err)
	}

	p := parser("Targets", "land,bogus")
	v := targetInfantry
	if targets.Read(p, "S", "Targets", &v) || v != targetInfantry {
		t.Fatalf("expected failure to keep prior set, got %v", v)
	}
	if len(p.Diagnostics()) != 1 {
		t.Fatalf("expected one diagnostic")
	}
	if s := targets.Format(targetLand | targetInfantry); s != "land,infantry" {
		t.Fatalf("unexpected format %q", s)
	}
	if targets.Format(0) != "none" {
		t.Fatalf("expected none")
	}
}

func TestEnum(t *testing.T) {
	kind := NewEnum[int32]("Expected a owner house kind", "default", "invoker", "killer")
	if v, err := kind.Parse("KILLER"); err != nil || v != 2 {
		t.Fatalf("expected killer=2, got %v %v", v, err)
	}
	if _, err := kind.Parse("kill"); err == nil {
		t.Fatalf("expected no partial match")
	}
	if kind.Name(1) != "invoker" || kind.Name(9) != "9" {
		t.Fatalf("unexpected names")
	}

	var buf bytes.Buffer
	_ = stream.NewWriter(&buf).WriteInt32(7)
	var v int32
	if err := kind.Decode(stream.NewReader(&buf), &v, nil); !errors.Is(err, stream.ErrCorrupt) {
		t.Fatalf("expected corrupt enum value, got %v", err)
	}
}

func TestBuiltinsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	mustNil(t, Bool.Encode(w, true))
	mustNil(t, Byte.Encode(w, 9))
	mustNil(t, Double.Encode(w, 2.5))
	mustNil(t, ColorKind.Encode(w, Color{1, 2, 3}))
	mustNil(t, LeptonsKind.Encode(w, 640))
	mustNil(t, String.Encode(w, "TXT_PARADROP"))
	mustNil(t, targets.Encode(w, targetWater|targetEmpty))

	r := stream.NewReader(&buf)
	var b bool
	var by uint8
	var d float64
	var c Color
	var l Leptons
	var s string
	var f target
	mustNil(t, Bool.Decode(r, &b, nil))
	mustNil(t, Byte.Decode(r, &by, nil))
	mustNil(t, Double.Decode(r, &d, nil))
	mustNil(t, ColorKind.Decode(r, &c, nil))
	mustNil(t, LeptonsKind.Decode(r, &l, nil))
	mustNil(t, String.Decode(r, &s, nil))
	mustNil(t, targets.Decode(r, &f, nil))
	if !b || by != 9 || d != 2.5 || c != (Color{1, 2, 3}) || l != 640 || s != "TXT_PARADROP" || f != targetWater|targetEmpty {
		t.Fatalf("round trip mismatch: %v %v %v %v %v %q %v", b, by, d, c, l, s, f)
	}
}

func TestPointerKind(t *testing.T) {
	pdpl := &aircraft{id: 4, name: "PDPLANE"}
	kind := NewPointer[*aircraft](fleet{"PDPLANE": pdpl})

	p := parser("Plane", "pdplane", "Gone", "none", "Bad", "B52")
	var dst *aircraft
	if !kind.Read(p, "S", "Plane", &dst) || dst != pdpl {
		t.Fatalf("expected plane lookup")
	}
	if !kind.Read(p, "S", "Gone", &dst) || dst != nil {
		t.Fatalf("expected blank to clear reference")
	}
	dst = pdpl
	if kind.Read(p, "S", "Bad", &dst) || dst != pdpl {
		t.Fatalf("expected unknown name to keep prior reference")
	}
	if len(p.Diagnostics()) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", p.Diagnostics())
	}

	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	mustNil(t, kind.Encode(w, pdpl))
	mustNil(t, kind.Encode(w, nil))

	sw := swizzle.NewResolver()
	r := stream.NewReader(bytes.NewReader(buf.Bytes()))
	var a, b *aircraft = nil, pdpl
	mustNil(t, kind.Decode(r, &a, sw))
	mustNil(t, kind.Decode(r, &b, sw))
	if a != nil || b != nil {
		t.Fatalf("expected references to stay unassigned until resolve")
	}
	mustNil(t, sw.Announce(4, pdpl))
	mustNil(t, sw.Resolve())
	if a != pdpl {
		t.Fatalf("expected resolved reference")
	}

	r = stream.NewReader(bytes.NewReader(buf.Bytes()))
	if err := kind.Decode(r, &a, nil); !errors.Is(err, ErrNoResolver) {
		t.Fatalf("expected ErrNoResolver, got %v", err)
	}
}

type allocFleet struct {
	fleet
	next swizzle.ID
}

func (f *allocFleet) FindOrAllocate(name string) *aircraft {
	if a, ok := f.Find(name); ok {
		return a
	}
	f.next++
	a := &aircraft{id: f.next, name: strings.ToUpper(name)}
	f.fleet[a.name] = a
	return a
}

func TestPointerAllocating(t *testing.T) {
	f := &allocFleet{fleet: fleet{}}
	kind := NewPointer[*aircraft](f.fleet).Allocating(f)
	a, err := kind.Parse("orca")
	if err != nil || a == nil || a.name != "ORCA" {
		t.Fatalf("expected allocation, got %v %v", a, err)
	}
	b, _ := kind.Parse("ORCA")
	if a != b {
		t.Fatalf("expected same instance on second lookup")
	}
}

func TestHandleKind(t *testing.T) {
	kind := NewHandle[int](images{"PARACHUTE.shp": 11}, ".shp")
	p := parser("Image", "PARACHUTE", "Missing", "NOPE", "Cleared", "<none>")
	var h Handle[int]
	if !kind.Read(p, "S", "Image", &h) || h.Asset != 11 || h.Name != "PARACHUTE" || !h.Found {
		t.Fatalf("unexpected handle %+v", h)
	}
	if kind.Read(p, "S", "Missing", &h) || h.Name != "PARACHUTE" {
		t.Fatalf("expected missing asset to keep prior handle")
	}
	diags := p.Diagnostics()
	if len(diags) != 1 || diags[0].Severity != ini.SeverityResource || !strings.Contains(diags[0].Reason, "NOPE.shp") {
		t.Fatalf("expected resource warning, got %+v", diags)
	}

	var buf bytes.Buffer
	mustNil(t, kind.Encode(stream.NewWriter(&buf), h))
	var back Handle[int]
	mustNil(t, kind.Decode(stream.NewReader(&buf), &back, nil))
	if back != h {
		t.Fatalf("expected reloaded handle, got %+v", back)
	}

	if !kind.Read(p, "S", "Cleared", &h) || h.Name != "" {
		t.Fatalf("expected blank to clear handle")
	}
}

func TestCursorPositionalThenNamed(t *testing.T) {
	p := parser(
		"Cursor", "10,5,3,20,2,center,bottom",
		"Cursor.Interval", "8",
		"Cursor.HotSpot", "right,top",
	)
	var c Cursor
	if !CursorAnimation.Read(p, "S", "Cursor", &c) {
		t.Fatalf("expected cursor read")
	}
	want := Cursor{Frame: 10, Count: 5, Interval: 8, MiniFrame: 20, MiniCount: 2, HotX: HotSpotRight, HotY: HotSpotTop}
	if c != want {
		t.Fatalf("got %+v want %+v", c, want)
	}

	var buf bytes.Buffer
	mustNil(t, CursorAnimation.Encode(stream.NewWriter(&buf), c))
	var back Cursor
	mustNil(t, CursorAnimation.Decode(stream.NewReader(&buf), &back, nil))
	if back != c {
		t.Fatalf("round trip mismatch %+v", back)
	}
}

func TestCursorPartialForms(t *testing.T) {
	p := parser("Cursor", "4,x", "Cursor.Count", "9")
	c := Cursor{Count: 1, Interval: 6}
	if !CursorAnimation.Read(p, "S", "Cursor", &c) {
		t.Fatalf("expected cursor read")
	}
	if c.Frame != 4 || c.Count != 9 || c.Interval != 6 {
		t.Fatalf("unexpected cursor %+v", c)
	}
	if len(p.Diagnostics()) != 1 {
		t.Fatalf("expected one diagnostic for bad positional token")
	}
	untouched := Cursor{Frame: 3}
	if CursorAnimation.Read(parser(), "S", "Cursor", &untouched) || untouched.Frame != 3 {
		t.Fatalf("expected absent cursor to stay untouched")
	}
}

func TestRocketProfile(t *testing.T) {
	v3 := &aircraft{id: 12, name: "V3ROCKET"}
	kind := NewRocket(NewPointer[*aircraft](fleet{"V3ROCKET": v3}))
	p := parser(
		"Rocket.PauseFrames", "5",
		"Rocket.RaiseRate", "2.9",
		"Rocket.Acceleration", "0.5",
		"Rocket.LazyCurve", "yes",
		"Rocket.Type", "V3Rocket",
	)
	r := Rocket[*aircraft]{Damage: 100}
	if !kind.Read(p, "S", "Rocket", &r) {
		t.Fatalf("expected rocket read")
	}
	if r.PauseFrames != 5 || r.RaiseRate != 2 || r.Acceleration != 0.5 || !r.LazyCurve || r.Type != v3 || r.Damage != 100 {
		t.Fatalf("unexpected rocket %+v", r)
	}
	if kind.Read(parser(), "S", "Rocket", &r) {
		t.Fatalf("expected no sub-keys to report false")
	}

	var buf bytes.Buffer
	mustNil(t, kind.Encode(stream.NewWriter(&buf), r))
	sw := swizzle.NewResolver()
	back := new(Rocket[*aircraft])
	mustNil(t, kind.Decode(stream.NewReader(&buf), back, sw))
	mustNil(t, sw.Announce(12, v3))
	mustNil(t, sw.Resolve())
	if *back != r {
		t.Fatalf("round trip mismatch %+v vs %+v", *back, r)
	}
}

func TestSplit(t *testing.T) {
	got := Split(" a, b\tc,,d ")
	if strings.Join(got, "|") != "a|b|c|d" {
		t.Fatalf("unexpected tokens %v", got)
	}
}

func mustNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
