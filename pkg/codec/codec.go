// Package codec defines how each attribute kind is parsed from configuration
// text and encoded to the save stream.
//
// A Kind bundles the three operations; attribute cells in package attr are
// generic over a Kind and never know the concrete type they carry.
package codec

import (
	"errors"
	"strings"

	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// Kind parses, encodes and decodes values of type T.
//
// Read reports true when the key was present and parsed, in which case dst
// holds the new value. A value that fails to parse is reported to the parser
// and leaves dst untouched. Decode may defer pointer-like fields to sw.
type Kind[T any] interface {
	Read(p *ini.Parser, section, key string, dst *T) bool
	Encode(w *stream.Writer, v T) error
	Decode(r *stream.Reader, dst *T, sw *swizzle.Resolver) error
}

// Scalar is a Kind whose values can be parsed from a single token, which is
// what list cells need for their elements.
type Scalar[T any] interface {
	Kind[T]
	Parse(raw string) (T, error)
}

// ParseError explains why a token was rejected.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return e.Reason }

// Reason returns the human-readable part of a Parse error.
func Reason(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return err.Error()
}

// Delimiters separate list tokens and positional compound fields.
const Delimiters = ", \t"

// Split breaks raw into tokens on the list delimiters, dropping empties.
func Split(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return strings.ContainsRune(Delimiters, r)
	})
}

// ReadScalar implements Kind.Read for any token parser.
func ReadScalar[T any](p *ini.Parser, section, key string, dst *T, parse func(string) (T, error)) bool {
	raw, ok := p.Read(section, key)
	if !ok {
		return false
	}
	v, err := parse(raw)
	if err != nil {
		p.ParseFailed(section, key, raw, Reason(err))
		return false
	}
	*dst = v
	return true
}

// Func assembles a Scalar from plain functions. It is the building block for
// the built-in kinds and for feature-specific kinds that need no pointers.
type Func[T any] struct {
	ParseFn  func(raw string) (T, error)
	EncodeFn func(w *stream.Writer, v T) error
	DecodeFn func(r *stream.Reader) (T, error)
}

// Parse implements Scalar.
func (f Func[T]) Parse(raw string) (T, error) { return f.ParseFn(raw) }

// Read implements Kind.
func (f Func[T]) Read(p *ini.Parser, section, key string, dst *T) bool {
	return ReadScalar(p, section, key, dst, f.ParseFn)
}

// Encode implements Kind.
func (f Func[T]) Encode(w *stream.Writer, v T) error { return f.EncodeFn(w, v) }

// Decode implements Kind.
func (f Func[T]) Decode(r *stream.Reader, dst *T, _ *swizzle.Resolver) error {
	v, err := f.DecodeFn(r)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
