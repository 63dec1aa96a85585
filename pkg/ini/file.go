// Package ini reads the sectioned key/value text files that configure the
// game and exposes them to attribute cells through a Parser.
package ini

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	goini "gopkg.in/ini.v1"
)

// ErrUnknownCodepage reports a code page name LoadFile cannot decode.
var ErrUnknownCodepage = errors.New("ini: unknown codepage")

// Source answers section/key lookups. Lookups are case-insensitive.
type Source interface {
	Get(section, key string) (string, bool)
}

// Enumerable is a Source that can list its sections and keys.
type Enumerable interface {
	Source
	Sections() []string
	Keys(section string) []string
}

type section struct {
	name   string
	values map[string]string
	keys   []string
}

// File is a parsed configuration document. Repeated sections merge and a
// repeated key keeps its last value.
type File struct {
	sections map[string]*section
	order    []string
}

// NewFile returns an empty document.
func NewFile() *File {
	return &File{sections: make(map[string]*section)}
}

// loadOptions match the game's dialect: only '=' separates keys from values,
// values are kept verbatim apart from inline comments, and lines without a
// delimiter are ignored.
var loadOptions = goini.LoadOptions{
	KeyValueDelimiters:      "=",
	SkipUnrecognizableLines: true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
}

// Parse reads a document from r. Keys before the first header belong to the
// section named "".
func Parse(r io.Reader) (*File, error) {
	doc, err := goini.LoadSources(loadOptions, io.NopCloser(r))
	if err != nil {
		return nil, fmt.Errorf("ini: %w", err)
	}
	f := NewFile()
	for _, sec := range doc.Sections() {
		name := sec.Name()
		keys := sec.Keys()
		if name == goini.DefaultSection {
			if len(keys) == 0 {
				continue
			}
			name = ""
		}
		f.ensure(name)
		for _, k := range keys {
			f.Set(name, k.Name(), k.Value())
		}
	}
	return f, nil
}

// LoadFile opens path and parses it, decoding from codepage first. An empty
// codepage or "utf-8" reads the bytes as they are.
func LoadFile(path, codepage string) (*File, error) {
	dec, err := Decoder(codepage)
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ini: open %s: %w", path, err)
	}
	defer func() { _ = fh.Close() }()
	f, err := Parse(dec.Reader(fh))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decoder returns the text decoder for a code page name.
func Decoder(codepage string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(codepage)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8.NewDecoder(), nil
	case "windows-1252", "cp1252", "1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "cp437", "437":
		return charmap.CodePage437.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodepage, codepage)
	}
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (f *File) ensure(name string) *section {
	k := fold(name)
	s, ok := f.sections[k]
	if !ok {
		s = &section{name: name, values: make(map[string]string)}
		f.sections[k] = s
		f.order = append(f.order, k)
	}
	return s
}

// Set assigns a value, creating the section when needed.
func (f *File) Set(sectionName, key, value string) {
	s := f.ensure(sectionName)
	k := fold(key)
	if _, ok := s.values[k]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[k] = value
}

// Get implements Source.
func (f *File) Get(sectionName, key string) (string, bool) {
	s, ok := f.sections[fold(sectionName)]
	if !ok {
		return "", false
	}
	v, ok := s.values[fold(key)]
	return v, ok
}

// Sections lists section names in order of first appearance.
func (f *File) Sections() []string {
	out := make([]string, 0, len(f.order))
	for _, k := range f.order {
		out = append(out, f.sections[k].name)
	}
	return out
}

// Keys lists a section's keys in order of first appearance.
func (f *File) Keys(sectionName string) []string {
	s, ok := f.sections[fold(sectionName)]
	if !ok {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Values returns a section's values in key order, the shape used by type
// list sections such as [AnimationTypes].
func Values(src Enumerable, sectionName string) []string {
	keys := src.Keys(sectionName)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := src.Get(sectionName, k); ok && v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Layered resolves lookups against several sources; later layers override
// earlier ones.
type Layered []Source

// Get implements Source.
func (l Layered) Get(sectionName, key string) (string, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i] == nil {
			continue
		}
		if v, ok := l[i].Get(sectionName, key); ok {
			return v, true
		}
	}
	return "", false
}

// Sections lists the union of sections across enumerable layers.
func (l Layered) Sections() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, src := range l {
		e, ok := src.(Enumerable)
		if !ok {
			continue
		}
		for _, s := range e.Sections() {
			if _, dup := seen[fold(s)]; dup {
				continue
			}
			seen[fold(s)] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Keys lists the union of a section's keys across enumerable layers.
func (l Layered) Keys(sectionName string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, src := range l {
		e, ok := src.(Enumerable)
		if !ok {
			continue
		}
		for _, k := range e.Keys(sectionName) {
			if _, dup := seen[fold(k)]; dup {
				continue
			}
			seen[fold(k)] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// IsBlank reports whether v clears a reference: empty, "none" or "<none>".
func IsBlank(v string) bool {
	switch fold(v) {
	case "", "none", "<none>":
		return true
	}
	return false
}

// IsDefault reports the "<default>" sentinel that resets optional lists.
func IsDefault(v string) bool {
	return fold(v) == "<default>"
}
