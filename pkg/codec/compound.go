package codec

import (
	"math"
	"strings"

	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// HotSpotX anchors a cursor horizontally.
type HotSpotX int32

// HotSpotY anchors a cursor vertically.
type HotSpotY int32

const (
	HotSpotLeft HotSpotX = iota
	HotSpotCenter
	HotSpotRight
)

const (
	HotSpotTop HotSpotY = iota
	HotSpotMiddle
	HotSpotBottom
)

var (
	hotSpotX = NewEnum[HotSpotX]("Expected a valid hotspot X [left, center, right]", "left", "center", "right")
	hotSpotY = NewEnum[HotSpotY]("Expected a valid hotspot Y [top, middle, bottom]", "top", "middle", "bottom")
)

// Cursor describes an animated mouse cursor.
type Cursor struct {
	Frame     int32
	Count     int32
	Interval  int32
	MiniFrame int32
	MiniCount int32
	HotX      HotSpotX
	HotY      HotSpotY
}

// CursorKind reads a cursor from its compact positional form
// "Frame,Count,Interval,MiniFrame,MiniCount,HotX,HotY" and then from the
// named sub-keys Key.Frame, Key.Count, Key.Interval, Key.MiniFrame,
// Key.MiniCount and Key.HotSpot, which override the positional values.
type CursorKind struct{}

// CursorAnimation is the shared cursor kind.
var CursorAnimation CursorKind

// Read implements Kind.
func (CursorKind) Read(p *ini.Parser, section, key string, dst *Cursor) bool {
	v := *dst
	ret := false

	if raw, ok := p.Read(section, key); ok {
		fields := []func(string) error{
			intInto(&v.Frame), intInto(&v.Count), intInto(&v.Interval),
			intInto(&v.MiniFrame), intInto(&v.MiniCount),
			enumInto(hotSpotX, &v.HotX), enumInto(hotSpotY, &v.HotY),
		}
		for i, tok := range Split(raw) {
			if i >= len(fields) {
				break
			}
			if err := fields[i](tok); err != nil {
				p.ParseFailed(section, key, raw, Reason(err))
			}
		}
		ret = true
	}

	for _, sub := range []struct {
		name string
		dst  *int32
	}{
		{"Frame", &v.Frame},
		{"Count", &v.Count},
		{"Interval", &v.Interval},
		{"MiniFrame", &v.MiniFrame},
		{"MiniCount", &v.MiniCount},
	} {
		if Int.Read(p, section, key+"."+sub.name, sub.dst) {
			ret = true
		}
	}

	hotKey := key + ".HotSpot"
	if raw, ok := p.Read(section, hotKey); ok {
		x, y, hasY := strings.Cut(raw, ",")
		if err := enumInto(hotSpotX, &v.HotX)(x); err != nil {
			p.ParseFailed(section, hotKey, raw, Reason(err))
		}
		if hasY {
			if err := enumInto(hotSpotY, &v.HotY)(y); err != nil {
				p.ParseFailed(section, hotKey, raw, Reason(err))
			}
		}
		ret = true
	}

	*dst = v
	return ret
}

// Encode implements Kind.
func (CursorKind) Encode(w *stream.Writer, c Cursor) error {
	for _, n := range [...]int32{c.Frame, c.Count, c.Interval, c.MiniFrame, c.MiniCount, int32(c.HotX), int32(c.HotY)} {
		if err := w.WriteInt32(n); err != nil {
			return err
		}
	}
	return nil
}

// Decode implements Kind.
func (CursorKind) Decode(r *stream.Reader, dst *Cursor, sw *swizzle.Resolver) error {
	var c Cursor
	for _, p := range [...]*int32{&c.Frame, &c.Count, &c.Interval, &c.MiniFrame, &c.MiniCount} {
		n, err := r.ReadInt32()
		if err != nil {
			return err
		}
		*p = n
	}
	if err := hotSpotX.Decode(r, &c.HotX, sw); err != nil {
		return err
	}
	if err := hotSpotY.Decode(r, &c.HotY, sw); err != nil {
		return err
	}
	*dst = c
	return nil
}

// Rocket is the flight profile of a missile-like projectile whose airframe
// type is A.
type Rocket[A Referent] struct {
	PauseFrames  int32
	TiltFrames   int32
	PitchInitial float32
	PitchFinal   float32
	TurnRate     float32
	RaiseRate    int32
	Acceleration float32
	Altitude     int32
	Damage       int32
	EliteDamage  int32
	BodyLength   int32
	LazyCurve    bool
	Type         A
}

// RocketKind reads a Rocket from the named sub-keys under a shared key.
type RocketKind[A Referent] struct {
	airframe PointerKind[A]
}

// NewRocket returns a rocket kind resolving Key.Type through airframe.
func NewRocket[A Referent](airframe PointerKind[A]) RocketKind[A] {
	return RocketKind[A]{airframe: airframe}
}

// Read implements Kind. RaiseRate is read as a float and truncated toward
// zero.
func (k RocketKind[A]) Read(p *ini.Parser, section, key string, dst *Rocket[A]) bool {
	v := *dst
	ret := false
	sub := func(name string) string { return key + "." + name }
	mark := func(ok bool) {
		if ok {
			ret = true
		}
	}

	mark(Int.Read(p, section, sub("PauseFrames"), &v.PauseFrames))
	mark(Int.Read(p, section, sub("TiltFrames"), &v.TiltFrames))
	mark(Float.Read(p, section, sub("PitchInitial"), &v.PitchInitial))
	mark(Float.Read(p, section, sub("PitchFinal"), &v.PitchFinal))
	mark(Float.Read(p, section, sub("TurnRate"), &v.TurnRate))

	var raise float32
	if Float.Read(p, section, sub("RaiseRate"), &raise) {
		v.RaiseRate = int32(math.Trunc(float64(raise)))
		ret = true
	}

	mark(Float.Read(p, section, sub("Acceleration"), &v.Acceleration))
	mark(Int.Read(p, section, sub("Altitude"), &v.Altitude))
	mark(Int.Read(p, section, sub("Damage"), &v.Damage))
	mark(Int.Read(p, section, sub("EliteDamage"), &v.EliteDamage))
	mark(Int.Read(p, section, sub("BodyLength"), &v.BodyLength))
	mark(Bool.Read(p, section, sub("LazyCurve"), &v.LazyCurve))
	mark(k.airframe.Read(p, section, sub("Type"), &v.Type))

	*dst = v
	return ret
}

// Encode implements Kind.
func (k RocketKind[A]) Encode(w *stream.Writer, v Rocket[A]) error {
	steps := []func() error{
		func() error { return w.WriteInt32(v.PauseFrames) },
		func() error { return w.WriteInt32(v.TiltFrames) },
		func() error { return w.WriteFloat32(v.PitchInitial) },
		func() error { return w.WriteFloat32(v.PitchFinal) },
		func() error { return w.WriteFloat32(v.TurnRate) },
		func() error { return w.WriteInt32(v.RaiseRate) },
		func() error { return w.WriteFloat32(v.Acceleration) },
		func() error { return w.WriteInt32(v.Altitude) },
		func() error { return w.WriteInt32(v.Damage) },
		func() error { return w.WriteInt32(v.EliteDamage) },
		func() error { return w.WriteInt32(v.BodyLength) },
		func() error { return w.WriteBool(v.LazyCurve) },
		func() error { return k.airframe.Encode(w, v.Type) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Decode implements Kind. The decoded value is written into dst before the
// airframe reference is deferred so the placeholder targets dst itself.
func (k RocketKind[A]) Decode(r *stream.Reader, dst *Rocket[A], sw *swizzle.Resolver) error {
	var v Rocket[A]
	var err error
	ints := func(p *int32) {
		if err == nil {
			*p, err = r.ReadInt32()
		}
	}
	floats := func(p *float32) {
		if err == nil {
			*p, err = r.ReadFloat32()
		}
	}
	ints(&v.PauseFrames)
	ints(&v.TiltFrames)
	floats(&v.PitchInitial)
	floats(&v.PitchFinal)
	floats(&v.TurnRate)
	ints(&v.RaiseRate)
	floats(&v.Acceleration)
	ints(&v.Altitude)
	ints(&v.Damage)
	ints(&v.EliteDamage)
	ints(&v.BodyLength)
	if err == nil {
		v.LazyCurve, err = r.ReadBool()
	}
	if err != nil {
		return err
	}
	*dst = v
	return k.airframe.Decode(r, &dst.Type, sw)
}

func intInto(dst *int32) func(string) error {
	return func(tok string) error {
		v, err := ParseInt(tok)
		if err == nil {
			*dst = v
		}
		return err
	}
}

func enumInto[T Integer](k EnumKind[T], dst *T) func(string) error {
	return func(tok string) error {
		v, err := k.Parse(tok)
		if err == nil {
			*dst = v
		}
		return err
	}
}
