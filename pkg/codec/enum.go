package codec

import (
	"fmt"
	"strings"

	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// Integer is the underlying type of enumerations and flag sets.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~uint8 | ~uint16 | ~uint32
}

// EnumKind maps an ordered vocabulary onto consecutive values starting at 0.
type EnumKind[T Integer] struct {
	names  []string
	reason string
}

// NewEnum builds an enumeration whose value i is named names[i].
func NewEnum[T Integer](reason string, names ...string) EnumKind[T] {
	return EnumKind[T]{names: names, reason: reason}
}

// Parse matches raw case-insensitively against the vocabulary.
func (k EnumKind[T]) Parse(raw string) (T, error) {
	s := strings.TrimSpace(raw)
	for i, name := range k.names {
		if strings.EqualFold(s, name) {
			return T(i), nil
		}
	}
	return 0, &ParseError{Reason: k.reason}
}

// Name returns the vocabulary entry for v.
func (k EnumKind[T]) Name(v T) string {
	if int(v) >= 0 && int(v) < len(k.names) {
		return k.names[int(v)]
	}
	return fmt.Sprintf("%d", v)
}

// Read implements Kind.
func (k EnumKind[T]) Read(p *ini.Parser, section, key string, dst *T) bool {
	return ReadScalar(p, section, key, dst, k.Parse)
}

// Encode implements Kind.
func (k EnumKind[T]) Encode(w *stream.Writer, v T) error { return w.WriteInt32(int32(v)) }

// Decode implements Kind.
func (k EnumKind[T]) Decode(r *stream.Reader, dst *T, _ *swizzle.Resolver) error {
	v, err := r.ReadInt32()
	if err != nil {
		return err
	}
	if v < 0 || int(v) >= len(k.names) {
		return fmt.Errorf("%w: enum value %d outside vocabulary of %d", stream.ErrCorrupt, v, len(k.names))
	}
	*dst = T(v)
	return nil
}

// Flag names a bit (or a union of bits) in a flag set.
type Flag[T Integer] struct {
	Name string
	Bits T
}

// FlagsKind parses delimiter-separated tokens into a bit set. "none" adds no
// bits; any other unknown token rejects the whole value.
type FlagsKind[T Integer] struct {
	flags  []Flag[T]
	reason string
}

// NewFlags builds a flag set kind.
func NewFlags[T Integer](reason string, flags ...Flag[T]) FlagsKind[T] {
	return FlagsKind[T]{flags: flags, reason: reason}
}

// Parse implements Scalar.
func (k FlagsKind[T]) Parse(raw string) (T, error) {
	var parsed T
	for _, tok := range Split(raw) {
		bits, ok := k.lookup(tok)
		if ok {
			parsed |= bits
			continue
		}
		if !strings.EqualFold(tok, "none") {
			return 0, &ParseError{Reason: k.reason}
		}
	}
	return parsed, nil
}

func (k FlagsKind[T]) lookup(tok string) (T, bool) {
	for _, f := range k.flags {
		if strings.EqualFold(tok, f.Name) {
			return f.Bits, true
		}
	}
	return 0, false
}

// Format lists the single-bit names set in v, or "none".
func (k FlagsKind[T]) Format(v T) string {
	var names []string
	for _, f := range k.flags {
		if f.Bits != 0 && f.Bits&(f.Bits-1) == 0 && v&f.Bits != 0 {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Read implements Kind.
func (k FlagsKind[T]) Read(p *ini.Parser, section, key string, dst *T) bool {
	return ReadScalar(p, section, key, dst, k.Parse)
}

// Encode implements Kind.
func (k FlagsKind[T]) Encode(w *stream.Writer, v T) error { return w.WriteUint32(uint32(v)) }

// Decode implements Kind.
func (k FlagsKind[T]) Decode(r *stream.Reader, dst *T, _ *swizzle.Resolver) error {
	v, err := r.ReadUint32()
	if err != nil {
		return err
	}
	*dst = T(v)
	return nil
}
