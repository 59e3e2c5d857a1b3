package fennecs

import "github.com/TheBitDrifter/mask"

// Query compiles a set of Match predicates against a World's archetype
// index and caches the matching archetype list until the next structural
// mutation invalidates it (tracked via World.Epoch). Callers normally reach
// it through Query1/Query2 rather than building one directly.
type Query struct {
	world   *World
	matches []Match
	exclude []TypeId

	// required is the coarse, type-only bitmask of q.matches, used as a
	// cheap pre-filter before the per-TypeExpression columnsMatching scan:
	// an archetype missing one of these type bits cannot satisfy any Match,
	// wildcard or not, so it is skipped without walking its Exprs().
	required mask.Mask

	cachedEpoch uint64
	cached      []*archetype
	warm        bool
}

func newQuery(w *World, matches ...Match) *Query {
	var required mask.Mask
	for _, m := range matches {
		required.Mark(uint32(m.Type))
	}
	return &Query{world: w, matches: matches, required: required}
}

// Without excludes any archetype carrying a plain component of one of ids.
func (q *Query) Without(ids ...TypeId) *Query {
	q.exclude = append(q.exclude, ids...)
	return q
}

// archetypesFor returns the compiled match list, acquiring the read lock
// itself. Callers that already hold the World's read lock (iterate, Job1,
// Job2) must use archetypesForLocked instead — nesting two RLock calls on
// the same goroutine can deadlock against a writer waiting in between.
func (q *Query) archetypesFor() []*archetype {
	guard := q.world.lock.beginRead()
	defer guard.End()
	return q.archetypesForLocked()
}

func (q *Query) archetypesForLocked() []*archetype {
	epoch := q.world.Epoch()
	if q.warm && q.cachedEpoch == epoch {
		return q.cached
	}

	matched := make([]*archetype, 0, len(q.cached))
outer:
	for _, a := range q.world.archetypes {
		if !a.signature.types.ContainsAll(q.required) {
			continue
		}
		for _, m := range q.matches {
			if len(a.columnsMatching(m)) == 0 {
				continue outer
			}
		}
		for _, id := range q.exclude {
			if a.signature.Contains(Plain(id)) {
				continue outer
			}
		}
		matched = append(matched, a)
	}
	q.cached = matched
	q.cachedEpoch = epoch
	q.warm = true
	return matched
}

// Count returns the total number of entities across every matching
// archetype, counted once per archetype regardless of how many wildcard
// combinations a stream would visit it under.
func (q *Query) Count() int {
	total := 0
	for _, a := range q.archetypesFor() {
		total += a.Count()
	}
	return total
}

// Warmup forces the archetype match list to compile now rather than on the
// first iteration, so the first real iteration doesn't pay for it.
func (q *Query) Warmup() {
	q.archetypesFor()
}

// Stream1 is a query over a single component stream.
type Stream1[A any] struct {
	q *Query
	m Match
}

// Query1 builds a single-stream query for component type A. By default the
// stream matches only A's plain (no-target) column; pass a Match (from
// MatchAnyEntityOf, MatchExact, etc.) to query a relation or link instead.
func Query1[A any](w *World, m ...Match) *Stream1[A] {
	id := TypeIdOf[A](w)
	match := MatchPlainOf(id)
	if len(m) > 0 {
		match = m[0]
	}
	return &Stream1[A]{q: newQuery(w, match), m: match}
}

// Without excludes archetypes carrying a plain component of one of ids.
func (s *Stream1[A]) Without(ids ...TypeId) *Stream1[A] {
	s.q.Without(ids...)
	return s
}

// Count returns the number of entities the stream would visit, once per
// archetype (not per wildcard combination).
func (s *Stream1[A]) Count() int { return s.q.Count() }

// Warmup precompiles the stream's matching archetype list.
func (s *Stream1[A]) Warmup() { s.q.Warmup() }

func (s *Stream1[A]) iterate(visit func(a *archetype, col Storage)) {
	guard := s.q.world.lock.beginRead()
	defer guard.End()
	for _, a := range s.q.archetypesForLocked() {
		for _, combo := range crossJoinColumns(a, []Match{s.m}) {
			visit(a, combo[0])
		}
	}
}

// ForEach1 visits every matching row's component by pointer.
func ForEach1[A any](s *Stream1[A], fn func(a *A)) {
	s.iterate(func(a *archetype, col Storage) {
		span := col.Span()
		for row := 0; row < a.Count(); row++ {
			v := span.Index(row).Addr().Interface().(*A)
			fn(v)
		}
	})
}

// ForEachEntity1 visits every matching row's entity id and component pointer.
func ForEachEntity1[A any](s *Stream1[A], fn func(e EntityId, a *A)) {
	s.iterate(func(a *archetype, col Storage) {
		span := col.Span()
		for row := 0; row < a.Count(); row++ {
			v := span.Index(row).Addr().Interface().(*A)
			fn(a.EntityAt(row), v)
		}
	})
}

// ForEachUniform1 visits every matching row's component pointer alongside a
// fixed extra value u, shared across the whole iteration (a delta-time, a
// shared context, and so on).
func ForEachUniform1[A, U any](s *Stream1[A], u U, fn func(a *A, u U)) {
	ForEach1(s, func(a *A) { fn(a, u) })
}

// ForEachEntityUniform1 combines ForEachEntity1 and ForEachUniform1.
func ForEachEntityUniform1[A, U any](s *Stream1[A], u U, fn func(e EntityId, a *A, u U)) {
	ForEachEntity1(s, func(e EntityId, a *A) { fn(e, a, u) })
}

// Raw1 hands the whole backing slice of each matching archetype/combination
// to fn at once, for callers that want to vectorize over a contiguous run
// rather than call back per row.
func Raw1[A any](s *Stream1[A], fn func(rows []A)) {
	s.iterate(func(a *archetype, col Storage) {
		rows := col.AsMemory(0, a.Count()).Interface().([]A)
		fn(rows)
	})
}

// RawUniform1 is Raw1 plus a fixed extra value passed through to fn.
func RawUniform1[A, U any](s *Stream1[A], u U, fn func(rows []A, u U)) {
	Raw1(s, func(rows []A) { fn(rows, u) })
}

// Blit1 overwrites every matching row's component with v in place. Errors
// surface to the caller rather than being swallowed; the first one stops
// the blit.
func Blit1[A any](s *Stream1[A], v A) error {
	var err error
	s.iterate(func(a *archetype, col Storage) {
		if err != nil {
			return
		}
		err = col.Blit(v)
	})
	return err
}

// Stream2 is a query over two component streams.
type Stream2[A, B any] struct {
	q  *Query
	ma Match
	mb Match
}

// Query2 builds a two-stream query. Defaults to plain columns for A and B
// unless overridden via WithMatch.
func Query2[A, B any](w *World) *Stream2[A, B] {
	ida := TypeIdOf[A](w)
	idb := TypeIdOf[B](w)
	ma, mb := MatchPlainOf(ida), MatchPlainOf(idb)
	return &Stream2[A, B]{q: newQuery(w, ma, mb), ma: ma, mb: mb}
}

// WithMatch overrides the default plain matches for A and B, for relation or
// link streams.
func (s *Stream2[A, B]) WithMatch(ma, mb Match) *Stream2[A, B] {
	s.ma, s.mb = ma, mb
	s.q = newQuery(s.q.world, ma, mb)
	return s
}

// Without excludes archetypes carrying a plain component of one of ids.
func (s *Stream2[A, B]) Without(ids ...TypeId) *Stream2[A, B] {
	s.q.Without(ids...)
	return s
}

func (s *Stream2[A, B]) Count() int { return s.q.Count() }

func (s *Stream2[A, B]) Warmup() { s.q.Warmup() }

func (s *Stream2[A, B]) iterate(visit func(a *archetype, ca, cb Storage)) {
	guard := s.q.world.lock.beginRead()
	defer guard.End()
	for _, a := range s.q.archetypesForLocked() {
		for _, combo := range crossJoinColumns(a, []Match{s.ma, s.mb}) {
			visit(a, combo[0], combo[1])
		}
	}
}

// ForEach2 visits every matching row's two component pointers.
func ForEach2[A, B any](s *Stream2[A, B], fn func(a *A, b *B)) {
	s.iterate(func(a *archetype, ca, cb Storage) {
		spanA, spanB := ca.Span(), cb.Span()
		for row := 0; row < a.Count(); row++ {
			va := spanA.Index(row).Addr().Interface().(*A)
			vb := spanB.Index(row).Addr().Interface().(*B)
			fn(va, vb)
		}
	})
}

// ForEachEntity2 visits every matching row's entity id and two component
// pointers.
func ForEachEntity2[A, B any](s *Stream2[A, B], fn func(e EntityId, a *A, b *B)) {
	s.iterate(func(a *archetype, ca, cb Storage) {
		spanA, spanB := ca.Span(), cb.Span()
		for row := 0; row < a.Count(); row++ {
			va := spanA.Index(row).Addr().Interface().(*A)
			vb := spanB.Index(row).Addr().Interface().(*B)
			fn(a.EntityAt(row), va, vb)
		}
	})
}

// ForEachUniform2 is ForEach2 plus a fixed extra value passed to fn.
func ForEachUniform2[A, B, U any](s *Stream2[A, B], u U, fn func(a *A, b *B, u U)) {
	ForEach2(s, func(a *A, b *B) { fn(a, b, u) })
}

// ForEachEntityUniform2 combines ForEachEntity2 and ForEachUniform2.
func ForEachEntityUniform2[A, B, U any](s *Stream2[A, B], u U, fn func(e EntityId, a *A, b *B, u U)) {
	ForEachEntity2(s, func(e EntityId, a *A, b *B) { fn(e, a, b, u) })
}

// Raw2 hands the whole backing slices of each matching archetype/combination
// to fn at once, for callers that want to vectorize over a contiguous run
// rather than call back per row.
func Raw2[A, B any](s *Stream2[A, B], fn func(as []A, bs []B)) {
	s.iterate(func(a *archetype, ca, cb Storage) {
		as := ca.AsMemory(0, a.Count()).Interface().([]A)
		bs := cb.AsMemory(0, a.Count()).Interface().([]B)
		fn(as, bs)
	})
}

// RawUniform2 is Raw2 plus a fixed extra value passed through to fn.
func RawUniform2[A, B, U any](s *Stream2[A, B], u U, fn func(as []A, bs []B, u U)) {
	Raw2(s, func(as []A, bs []B) { fn(as, bs, u) })
}

// Blit2 overwrites every matching row's two components with va and vb in
// place. Errors surface to the caller rather than being swallowed; the
// first one stops the blit.
func Blit2[A, B any](s *Stream2[A, B], va A, vb B) error {
	var err error
	s.iterate(func(a *archetype, ca, cb Storage) {
		if err != nil {
			return
		}
		if err = ca.Blit(va); err != nil {
			return
		}
		err = cb.Blit(vb)
	})
	return err
}
