package attr

import (
	"strings"

	"extframe/pkg/codec"
	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// Rank is an experience tier.
type Rank int

const (
	Rookie Rank = iota
	Veteran
	Elite
)

var rankNames = [...]string{"Rookie", "Veteran", "Elite"}

func (r Rank) String() string {
	if r >= Rookie && r <= Elite {
		return rankNames[r]
	}
	return "Rank(?)"
}

// Experience is implemented by objects that gain rank.
type Experience interface {
	IsElite() bool
	IsVeteran() bool
}

// IsElite implements Experience.
func (r Rank) IsElite() bool { return r >= Elite }

// IsVeteran implements Experience.
func (r Rank) IsVeteran() bool { return r >= Veteran }

// Promotable holds one value per rank.
type Promotable[T any] struct {
	kind    codec.Kind[T]
	Rookie  T
	Veteran T
	Elite   T
}

// NewPromotable returns a cell with def on every rank.
func NewPromotable[T any](kind codec.Kind[T], def T) Promotable[T] {
	return Promotable[T]{kind: kind, Rookie: def, Veteran: def, Elite: def}
}

// SetAll assigns v to every rank.
func (c *Promotable[T]) SetAll(v T) {
	c.Rookie, c.Veteran, c.Elite = v, v, v
}

// At returns the value for a rank.
func (c *Promotable[T]) At(r Rank) T {
	switch {
	case r >= Elite:
		return c.Elite
	case r == Veteran:
		return c.Veteran
	default:
		return c.Rookie
	}
}

// Get selects Elite, then Veteran, then Rookie by exp.
func (c *Promotable[T]) Get(exp Experience) T {
	switch {
	case exp == nil:
		return c.Rookie
	case exp.IsElite():
		return c.Elite
	case exp.IsVeteran():
		return c.Veteran
	default:
		return c.Rookie
	}
}

// Read configures the cell from keys built out of format, which contains a
// single %s placeholder for the rank name, e.g. "Damage.%s". The base key is
// format with the placeholder removed and a trailing '.' stripped; it sets
// every rank. Then Key.Rookie, Key.Veteran and Key.Elite override their own
// rank. When single is given it replaces format for the base key only.
func (c *Promotable[T]) Read(p *ini.Parser, section, format string, single ...string) bool {
	baseFormat := format
	if len(single) > 0 && single[0] != "" {
		baseFormat = single[0]
	}
	base := strings.TrimSuffix(strings.Replace(baseFormat, "%s", "", 1), ".")

	ret := false
	var shared T
	if c.kind.Read(p, section, base, &shared) {
		c.SetAll(shared)
		ret = true
	}
	for i, dst := range []*T{&c.Rookie, &c.Veteran, &c.Elite} {
		key := strings.Replace(format, "%s", rankNames[i], 1)
		if c.kind.Read(p, section, key, dst) {
			ret = true
		}
	}
	return ret
}

// Save writes the three ranks in order.
func (c *Promotable[T]) Save(w *stream.Writer) error {
	for _, v := range []T{c.Rookie, c.Veteran, c.Elite} {
		if err := c.kind.Encode(w, v); err != nil {
			return err
		}
	}
	return nil
}

// Load implements Cell.
func (c *Promotable[T]) Load(r *stream.Reader, sw *swizzle.Resolver) error {
	for _, dst := range []*T{&c.Rookie, &c.Veteran, &c.Elite} {
		if err := c.kind.Decode(r, dst, sw); err != nil {
			return err
		}
	}
	return nil
}

// ResolvesByName implements Cell.
func (c *Promotable[T]) ResolvesByName() bool { return false }
