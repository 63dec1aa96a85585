package codec

import (
	"errors"
	"fmt"
	"strings"

	"extframe/pkg/ini"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// ErrNoResolver reports a pointer decoded without a swizzle resolver.
var ErrNoResolver = errors.New("codec: pointer decoded without resolver")

// Finder looks up an existing object by name.
type Finder[T any] interface {
	Find(name string) (T, bool)
}

// Allocator looks up an object by name, creating it when missing.
type Allocator[T any] interface {
	FindOrAllocate(name string) T
}

// Referent is a pointer-like value that can be persisted by identity.
type Referent interface {
	comparable
	swizzle.Identifiable
}

// PointerKind reads object references by name and persists them by swizzle
// identity. Blank text clears the reference.
type PointerKind[T Referent] struct {
	finder Finder[T]
	alloc  Allocator[T]
}

// NewPointer returns a kind that resolves names through finder.
func NewPointer[T Referent](finder Finder[T]) PointerKind[T] {
	return PointerKind[T]{finder: finder}
}

// Allocating returns a copy of k that creates unknown names through alloc.
func (k PointerKind[T]) Allocating(alloc Allocator[T]) PointerKind[T] {
	k.alloc = alloc
	return k
}

// Parse implements Scalar.
func (k PointerKind[T]) Parse(raw string) (T, error) {
	var zero T
	name := strings.TrimSpace(raw)
	if ini.IsBlank(name) {
		return zero, nil
	}
	if k.alloc != nil {
		return k.alloc.FindOrAllocate(name), nil
	}
	if k.finder != nil {
		if v, ok := k.finder.Find(name); ok {
			return v, nil
		}
	}
	return zero, &ParseError{Reason: fmt.Sprintf("No object named %q", name)}
}

// Read implements Kind.
func (k PointerKind[T]) Read(p *ini.Parser, section, key string, dst *T) bool {
	return ReadScalar(p, section, key, dst, k.Parse)
}

// Encode writes the referent's identity, or zero for nil.
func (k PointerKind[T]) Encode(w *stream.Writer, v T) error {
	var zero T
	if v == zero {
		return w.WriteUint32(uint32(swizzle.Nil))
	}
	return w.WriteUint32(uint32(v.SwizzleID()))
}

// Decode reads an identity and defers the assignment to sw.
func (k PointerKind[T]) Decode(r *stream.Reader, dst *T, sw *swizzle.Resolver) error {
	id, err := r.ReadUint32()
	if err != nil {
		return err
	}
	if swizzle.ID(id) != swizzle.Nil && sw == nil {
		return fmt.Errorf("%w: id %d", ErrNoResolver, id)
	}
	var zero T
	*dst = zero
	if sw != nil {
		swizzle.Expect(sw, swizzle.ID(id), dst)
	}
	return nil
}

// Resources loads named assets such as images and palettes.
type Resources[T any] interface {
	Load(file string) (T, bool)
}

// Handle is a loaded asset together with the name it was configured with.
// Only the name is persisted; the asset is reloaded on decode.
type Handle[T any] struct {
	Name  string
	Asset T
	Found bool
}

// HandleKind resolves asset names through a Resources lookup, appending a
// file suffix such as ".shp" or ".pal".
type HandleKind[T any] struct {
	res    Resources[T]
	suffix string
}

// NewHandle returns a kind loading name+suffix from res.
func NewHandle[T any](res Resources[T], suffix string) HandleKind[T] {
	return HandleKind[T]{res: res, suffix: suffix}
}

func (k HandleKind[T]) load(name string) Handle[T] {
	h := Handle[T]{Name: name}
	if k.res != nil {
		h.Asset, h.Found = k.res.Load(name + k.suffix)
	}
	return h
}

// Read implements Kind. A missing asset is reported as a warning and leaves
// dst untouched.
func (k HandleKind[T]) Read(p *ini.Parser, section, key string, dst *Handle[T]) bool {
	raw, ok := p.Read(section, key)
	if !ok {
		return false
	}
	if ini.IsBlank(raw) {
		*dst = Handle[T]{}
		return true
	}
	h := k.load(raw)
	if !h.Found {
		p.MissingResource(section, key, raw, raw+k.suffix)
		return false
	}
	*dst = h
	return true
}

// Encode implements Kind.
func (k HandleKind[T]) Encode(w *stream.Writer, v Handle[T]) error {
	return w.WriteString(v.Name)
}

// Decode implements Kind.
func (k HandleKind[T]) Decode(r *stream.Reader, dst *Handle[T], _ *swizzle.Resolver) error {
	name, err := r.ReadString()
	if err != nil {
		return err
	}
	if name == "" {
		*dst = Handle[T]{}
		return nil
	}
	*dst = k.load(name)
	return nil
}
