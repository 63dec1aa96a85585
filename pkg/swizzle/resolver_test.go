package swizzle

import (
	"errors"
	"testing"
)

type node struct {
	id   ID
	next *node
}

func (n *node) SwizzleID() ID { return n.id }

func TestForwardReferenceResolvesAfterFinalPass(t *testing.T) {
	r := NewResolver()
	a := &node{id: 1}
	if err := r.Announce(a.id, a); err != nil {
		t.Fatalf("announce a: %v", err)
	}
	// a refers to b, which is loaded later.
	Expect(r, 2, &a.next)
	if a.next != nil {
		t.Fatalf("expected placeholder to stay unassigned before Resolve")
	}
	b := &node{id: 2}
	if err := r.Announce(b.id, b); err != nil {
		t.Fatalf("announce b: %v", err)
	}
	if r.Pending() != 1 {
		t.Fatalf("expected one pending placeholder, got %d", r.Pending())
	}
	if err := r.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if a.next != b {
		t.Fatalf("expected a.next to point at b")
	}
	if r.Pending() != 0 {
		t.Fatalf("expected placeholders to be consumed")
	}
}

func TestNilIdentityAssignsZero(t *testing.T) {
	r := NewResolver()
	n := &node{next: &node{}}
	Expect(r, Nil, &n.next)
	if n.next != nil {
		t.Fatalf("expected nil reference")
	}
	var called bool
	r.Defer(Nil, func(target any) error {
		called = target == nil
		return nil
	})
	if err := r.Resolve(); err != nil || !called {
		t.Fatalf("expected nil assign, err=%v called=%v", err, called)
	}
}

func TestUnresolvedIsFatal(t *testing.T) {
	r := NewResolver()
	var dst *node
	Expect(r, 9, &dst)
	err := r.Resolve()
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestUnresolvedAssignsNothing(t *testing.T) {
	r := NewResolver()
	a := &node{id: 1}
	if err := r.Announce(a.id, a); err != nil {
		t.Fatalf("announce: %v", err)
	}
	holder := &node{id: 2}
	orphan := &node{id: 3, next: holder}
	Expect(r, a.id, &holder.next)
	Expect(r, 9, &orphan.next)
	if err := r.Resolve(); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if holder.next != nil {
		t.Fatalf("expected resolvable placeholder left unassigned after failed pass")
	}
	if orphan.next != holder {
		t.Fatalf("expected unresolved field untouched")
	}
	if r.Pending() != 0 {
		t.Fatalf("expected placeholders consumed, %d left", r.Pending())
	}
}

func TestAnnounceConflicts(t *testing.T) {
	r := NewResolver()
	a, b := &node{id: 1}, &node{id: 1}
	if err := r.Announce(1, a); err != nil {
		t.Fatalf("announce: %v", err)
	}
	if err := r.Announce(1, a); err != nil {
		t.Fatalf("expected idempotent announce, got %v", err)
	}
	if err := r.Announce(1, b); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := r.Announce(Nil, a); !errors.Is(err, ErrNilID) {
		t.Fatalf("expected ErrNilID, got %v", err)
	}
	if got, ok := r.Lookup(1); !ok || got != a {
		t.Fatalf("expected lookup to return a")
	}
	r.Reset()
	if _, ok := r.Lookup(1); ok {
		t.Fatalf("expected reset to clear targets")
	}
}

func TestTypeMismatch(t *testing.T) {
	r := NewResolver()
	_ = r.Announce(3, "not a node")
	var dst *node
	Expect(r, 3, &dst)
	if err := r.Resolve(); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}
