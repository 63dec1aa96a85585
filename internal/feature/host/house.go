package host

import "math/rand/v2"

// Side classifies a house.
type Side int

const (
	SidePlayer Side = iota
	SideCivilian
	SideSpecial
	SideNeutral
)

// House is a participant in a match.
type House struct {
	Name string
	Side Side
}

// Houses is the list of houses in a match.
type Houses []*House

func (hs Houses) first(side Side) *House {
	for _, h := range hs {
		if h.Side == side {
			return h
		}
	}
	return nil
}

// Civilian returns the first civilian house, or nil.
func (hs Houses) Civilian() *House { return hs.first(SideCivilian) }

// Special returns the first special house, or nil.
func (hs Houses) Special() *House { return hs.first(SideSpecial) }

// Neutral returns the first neutral house, or nil.
func (hs Houses) Neutral() *House { return hs.first(SideNeutral) }

// Random picks any house using rnd, or nil when there are none.
func (hs Houses) Random(rnd *rand.Rand) *House {
	if len(hs) == 0 {
		return nil
	}
	if rnd == nil {
		return hs[rand.IntN(len(hs))]
	}
	return hs[rnd.IntN(len(hs))]
}
