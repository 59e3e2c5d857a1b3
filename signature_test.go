package fennecs

import "testing"

func TestSignatureDedupesAndOrdersCanonically(t *testing.T) {
	a := TypeId(1)
	b := TypeId(2)
	s1 := NewSignature(Plain(a), Plain(b), Plain(a))
	s2 := NewSignature(Plain(b), Plain(a))

	if s1.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (duplicate should collapse)", s1.Len())
	}
	if !s1.Equal(s2) {
		t.Fatalf("expected signatures built from the same set in different orders to be equal")
	}
	if s1.key() != s2.key() {
		t.Fatalf("expected identical canonical keys, got %q and %q", s1.key(), s2.key())
	}
}

func TestSignatureContainsAndWithWithout(t *testing.T) {
	a, b, c := TypeId(1), TypeId(2), TypeId(3)
	s := NewSignature(Plain(a), Plain(b))

	if !s.Contains(Plain(a)) || !s.Contains(Plain(b)) {
		t.Fatalf("expected both members present")
	}
	if s.Contains(Plain(c)) {
		t.Fatalf("did not expect c present")
	}

	grown := s.with(Plain(c))
	if grown.Len() != 3 || !grown.Contains(Plain(c)) {
		t.Fatalf("with() should add the new member, got %+v", grown)
	}
	if s.Len() != 2 {
		t.Fatalf("with() must not mutate the receiver")
	}

	shrunk := grown.without(Plain(b))
	if shrunk.Len() != 2 || shrunk.Contains(Plain(b)) {
		t.Fatalf("without() should remove the member, got %+v", shrunk)
	}
}

func TestSignatureDistinguishesRelationTargets(t *testing.T) {
	likes := TypeId(5)
	e1 := newEntityId(1, 0)
	e2 := newEntityId(2, 0)

	s1 := NewSignature(WithEntity(likes, e1))
	s2 := NewSignature(WithEntity(likes, e2))

	if s1.Equal(s2) {
		t.Fatalf("signatures with the same TypeId but different relation targets must not be equal")
	}
	if s1.key() == s2.key() {
		t.Fatalf("canonical keys must differ for different relation targets")
	}
}
