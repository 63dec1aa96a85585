package ini

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const rules = `; rules header
[AnimationTypes]
0=FIRE1
1=SMOKE

[FIRE1]
MakeInfantryOwner = killer ; trailing comment
CustomPalette=

[fire1]
Damage=10
`

func TestParseSectionsAndKeys(t *testing.T) {
	f, err := Parse(strings.NewReader(rules))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := f.Sections(); len(got) != 2 || got[0] != "AnimationTypes" || got[1] != "FIRE1" {
		t.Fatalf("unexpected sections %v", got)
	}
	if v, ok := f.Get("fire1", "makeinfantryowner"); !ok || v != "killer" {
		t.Fatalf("expected case-insensitive lookup, got %q %v", v, ok)
	}
	if v, ok := f.Get("FIRE1", "Damage"); !ok || v != "10" {
		t.Fatalf("expected merged section value, got %q %v", v, ok)
	}
	if v, ok := f.Get("FIRE1", "CustomPalette"); !ok || v != "" {
		t.Fatalf("expected present empty value, got %q %v", v, ok)
	}
	if got := Values(f, "AnimationTypes"); len(got) != 2 || got[1] != "SMOKE" {
		t.Fatalf("unexpected list values %v", got)
	}
	if f.Keys("missing") != nil {
		t.Fatalf("expected nil keys for missing section")
	}
}

func TestParseRejectsBrokenHeader(t *testing.T) {
	if _, err := Parse(strings.NewReader("[Broken\nA=1\n")); err == nil {
		t.Fatalf("expected error for unterminated header")
	}
}

func TestParseDialect(t *testing.T) {
	src := "\uFEFFVersion=2\nnot a pair\n[SW]\nCursor=10,5 ; frames\nLabel=\"Nuke\"\nPath=a:b\\\nNext=1\n"
	f, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, ok := f.Get("", "Version"); !ok || v != "2" {
		t.Fatalf("expected header-less key in section \"\", got %q %v", v, ok)
	}
	if v, _ := f.Get("SW", "Cursor"); v != "10,5" {
		t.Fatalf("expected inline comment stripped, got %q", v)
	}
	if v, _ := f.Get("SW", "Label"); v != `"Nuke"` {
		t.Fatalf("expected quotes preserved, got %q", v)
	}
	if v, _ := f.Get("SW", "Path"); v != `a:b\` {
		t.Fatalf("expected verbatim value without continuation, got %q", v)
	}
	if v, _ := f.Get("SW", "Next"); v != "1" {
		t.Fatalf("expected following key kept, got %q", v)
	}
	if got := f.Sections(); len(got) != 2 || got[0] != "" || got[1] != "SW" {
		t.Fatalf("unexpected sections %v", got)
	}
}

func TestLaterKeyWins(t *testing.T) {
	f, err := Parse(strings.NewReader("[S]\nA=1\nA=2\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, _ := f.Get("S", "A"); v != "2" {
		t.Fatalf("expected last value, got %q", v)
	}
	if keys := f.Keys("S"); len(keys) != 1 {
		t.Fatalf("expected single key entry, got %v", keys)
	}
}

func TestLayeredOverride(t *testing.T) {
	base := NewFile()
	base.Set("SW", "Range", "5")
	base.Set("SW", "Damage", "10")
	overlay := NewFile()
	overlay.Set("SW", "Range", "7.5")
	overlay.Set("Map", "Theater", "snow")

	l := Layered{base, nil, overlay}
	if v, _ := l.Get("SW", "Range"); v != "7.5" {
		t.Fatalf("expected overlay value, got %q", v)
	}
	if v, _ := l.Get("SW", "Damage"); v != "10" {
		t.Fatalf("expected base value, got %q", v)
	}
	if _, ok := l.Get("SW", "Missing"); ok {
		t.Fatalf("expected missing key")
	}
	if got := l.Sections(); len(got) != 2 {
		t.Fatalf("expected section union, got %v", got)
	}
	if got := l.Keys("SW"); len(got) != 2 {
		t.Fatalf("expected key union, got %v", got)
	}
}

func TestLoadFileCodepage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.ini")
	// 0xE9 is e-acute in Windows-1252.
	if err := os.WriteFile(path, []byte("[Label]\nName=Caf\xe9\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := LoadFile(path, "windows-1252")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v, _ := f.Get("Label", "Name"); v != "Café" {
		t.Fatalf("expected decoded text, got %q", v)
	}
	if _, err := LoadFile(path, "ebcdic"); !errors.Is(err, ErrUnknownCodepage) {
		t.Fatalf("expected ErrUnknownCodepage, got %v", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.ini"), ""); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestBlankAndDefault(t *testing.T) {
	for _, v := range []string{"", " none ", "<NONE>", "None"} {
		if !IsBlank(v) {
			t.Fatalf("expected %q to be blank", v)
		}
	}
	if IsBlank("nonesuch") {
		t.Fatalf("unexpected blank")
	}
	if !IsDefault("<Default>") || IsDefault("default") {
		t.Fatalf("unexpected default sentinel handling")
	}
}

type captureLogger struct{ warns []string }

func (c *captureLogger) Debug(string, ...any)       {}
func (c *captureLogger) Info(string, ...any)        {}
func (c *captureLogger) Warn(msg string, _ ...any)  { c.warns = append(c.warns, msg) }
func (c *captureLogger) Error(string, ...any)       {}

func TestParserReadAndReport(t *testing.T) {
	f := NewFile()
	f.Set("S", "Blank", "   ")
	f.Set("S", "Val", "  12 ")
	log := &captureLogger{}
	p := NewParser(f, WithLogger(log))

	if _, ok := p.Read("S", "Blank"); ok {
		t.Fatalf("expected whitespace value to read as absent")
	}
	if v, ok := p.Read("S", "Val"); !ok || v != "12" {
		t.Fatalf("expected trimmed value, got %q %v", v, ok)
	}
	if _, ok := p.Read("S", "Missing"); ok {
		t.Fatalf("expected missing key")
	}

	p.ParseFailed("S", "Val", "x", "Expected a valid number")
	p.ParseFailed("S", "Val", "x", "Expected a valid number")
	p.MissingResource("S", "Palette", "foo", "foo.pal")
	if got := p.Diagnostics(); len(got) != 2 {
		t.Fatalf("expected deduplicated diagnostics, got %+v", got)
	}
	if len(log.warns) != 2 {
		t.Fatalf("expected two warnings, got %v", log.warns)
	}
	if p.Diagnostics()[1].Severity != SeverityResource {
		t.Fatalf("expected resource severity")
	}

	var nilParser *Parser
	if _, ok := nilParser.Read("S", "Val"); ok {
		t.Fatalf("expected nil parser to read nothing")
	}
}
