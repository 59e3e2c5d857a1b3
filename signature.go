package fennecs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/TheBitDrifter/mask"
)

// Signature is the unordered, de-duplicated set of TypeExpressions an
// archetype carries. Signatures are an archetype's identity: two archetypes
// with equal Signatures must never coexist (spec §3).
type Signature struct {
	exprs []TypeExpression // kept sorted by canonicalKey for deterministic iteration and keying
	types mask.Mask        // coarse bit-per-TypeId (ignores target); fast pre-filter for queries
}

// NewSignature builds a Signature from a set of TypeExpressions, deduping
// and canonicalizing order.
func NewSignature(exprs ...TypeExpression) Signature {
	seen := make(map[TypeExpression]struct{}, len(exprs))
	uniq := make([]TypeExpression, 0, len(exprs))
	var types mask.Mask
	for _, te := range exprs {
		if _, dup := seen[te]; dup {
			continue
		}
		seen[te] = struct{}{}
		uniq = append(uniq, te)
		types.Mark(uint32(te.Type))
	}
	sort.Slice(uniq, func(i, j int) bool {
		return canonicalKey(uniq[i]) < canonicalKey(uniq[j])
	})
	return Signature{exprs: uniq, types: types}
}

// Len returns the number of TypeExpressions in the signature.
func (s Signature) Len() int { return len(s.exprs) }

// Exprs returns the signature's TypeExpressions in canonical order. The
// returned slice must not be mutated.
func (s Signature) Exprs() []TypeExpression { return s.exprs }

// Contains reports whether te is an exact member of the signature.
func (s Signature) Contains(te TypeExpression) bool {
	for _, e := range s.exprs {
		if e.Equal(te) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every expression in other is also in s.
func (s Signature) ContainsAll(other Signature) bool {
	for _, te := range other.exprs {
		if !s.Contains(te) {
			return false
		}
	}
	return true
}

// Equal reports whether s and other contain exactly the same expressions.
func (s Signature) Equal(other Signature) bool {
	if len(s.exprs) != len(other.exprs) {
		return false
	}
	for i := range s.exprs {
		if !s.exprs[i].Equal(other.exprs[i]) {
			return false
		}
	}
	return true
}

// with returns a new Signature with te added (a no-op if already present).
func (s Signature) with(te TypeExpression) Signature {
	if s.Contains(te) {
		return s
	}
	next := make([]TypeExpression, len(s.exprs), len(s.exprs)+1)
	copy(next, s.exprs)
	next = append(next, te)
	return NewSignature(next...)
}

// without returns a new Signature with te removed (a no-op if absent).
func (s Signature) without(te TypeExpression) Signature {
	next := make([]TypeExpression, 0, len(s.exprs))
	for _, e := range s.exprs {
		if !e.Equal(te) {
			next = append(next, e)
		}
	}
	return NewSignature(next...)
}

// key returns a canonical string key for exact archetype-index lookups.
// Relation and link targets carry unbounded identities, so they cannot be
// packed into a fixed-width bitmask the way a plain component signature
// could; the string key is the exact-identity counterpart to the coarse
// types mask above.
func (s Signature) key() string {
	var b strings.Builder
	for i, te := range s.exprs {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(canonicalKey(te))
	}
	return b.String()
}

func canonicalKey(te TypeExpression) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(te.Type), 10))
	b.WriteByte(':')
	switch te.Target.Kind {
	case TargetEntity:
		b.WriteString("e")
		b.WriteString(strconv.FormatUint(uint64(te.Target.Entity), 10))
	case TargetObject:
		b.WriteString("o")
		b.WriteString(strconv.FormatUint(uint64(te.Target.Object), 10))
	default:
		b.WriteString("p")
	}
	return b.String()
}
