package fennecs

import "testing"

func TestQuerySpawnAndIterateSum(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 1000; i++ {
		e, _ := w.Spawn()
		_ = Set(w, e, Health{Current: 1})
	}

	stream := Query1[Health](w)
	if got := stream.Count(); got != 1000 {
		t.Fatalf("Count() = %d, want 1000", got)
	}

	sum := 0
	ForEach1(stream, func(h *Health) { sum += h.Current })
	if sum != 1000 {
		t.Fatalf("sum = %d, want 1000", sum)
	}
}

func TestQueryOnlyMatchesArchetypesWithAllStreams(t *testing.T) {
	w := NewWorld()
	onlyPos, _ := w.Spawn()
	_ = Set(w, onlyPos, Position{X: 1})

	both, _ := w.Spawn()
	_ = Set(w, both, Position{X: 2})
	_ = Set(w, both, Velocity{X: 3})

	stream := Query2[Position, Velocity](w)
	if got := stream.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
	ForEachEntity2(stream, func(e EntityId, p *Position, v *Velocity) {
		if e != both {
			t.Fatalf("expected only %v to match, got %v", both, e)
		}
	})
}

func TestQueryRelationWildcardVisitsEachTargetSeparately(t *testing.T) {
	w := NewWorld()
	alice, _ := w.Spawn()
	bob, _ := w.Spawn()
	carol, _ := w.Spawn()
	_ = SetRelation(w, alice, bob, Likes{})
	_ = SetRelation(w, alice, carol, Likes{})

	likes := TypeIdOf[Likes](w)
	stream := Query1[Likes](w, MatchAnyEntityOf(likes))

	visits := 0
	ForEachEntity1(stream, func(e EntityId, l *Likes) {
		if e != alice {
			t.Fatalf("expected only alice to carry a Likes relation, got %v", e)
		}
		visits++
	})
	if visits != 2 {
		t.Fatalf("expected alice visited once per relation target (2), got %d", visits)
	}
}

func TestQueryBlitOverwritesEveryMatchingRow(t *testing.T) {
	w := NewWorld()
	entities := make([]EntityId, 10)
	for i := range entities {
		e, _ := w.Spawn()
		_ = Set(w, e, Health{Current: 0})
		entities[i] = e
	}

	stream := Query1[Health](w)
	if err := Blit1(stream, Health{Current: 100}); err != nil {
		t.Fatalf("Blit1: %v", err)
	}

	for _, e := range entities {
		h, err := Get[Health](w, e)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if h.Current != 100 {
			t.Fatalf("entity %v Health.Current = %d, want 100", e, h.Current)
		}
	}
}

func TestQueryBlit2OverwritesBothStreams(t *testing.T) {
	w := NewWorld()
	entities := make([]EntityId, 5)
	for i := range entities {
		e, _ := w.Spawn()
		_ = Set(w, e, Position{X: 0})
		_ = Set(w, e, Velocity{X: 0})
		entities[i] = e
	}

	stream := Query2[Position, Velocity](w)
	if err := Blit2(stream, Position{X: 9}, Velocity{X: 3}); err != nil {
		t.Fatalf("Blit2: %v", err)
	}

	for _, e := range entities {
		p, err := Get[Position](w, e)
		if err != nil {
			t.Fatalf("Get[Position]: %v", err)
		}
		if p.X != 9 {
			t.Fatalf("entity %v Position.X = %v, want 9", e, p.X)
		}
		v, err := Get[Velocity](w, e)
		if err != nil {
			t.Fatalf("Get[Velocity]: %v", err)
		}
		if v.X != 3 {
			t.Fatalf("entity %v Velocity.X = %v, want 3", e, v.X)
		}
	}
}

func TestQueryRaw2VisitsContiguousSlices(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 4; i++ {
		e, _ := w.Spawn()
		_ = Set(w, e, Position{X: float64(i)})
		_ = Set(w, e, Velocity{X: 1})
	}

	stream := Query2[Position, Velocity](w)
	visited := 0
	Raw2(stream, func(ps []Position, vs []Velocity) {
		if len(ps) != len(vs) {
			t.Fatalf("mismatched slice lengths: %d positions, %d velocities", len(ps), len(vs))
		}
		visited += len(ps)
	})
	if visited != 4 {
		t.Fatalf("visited %d rows, want 4", visited)
	}
}

func TestQueryWithoutExcludesArchetype(t *testing.T) {
	w := NewWorld()
	plain, _ := w.Spawn()
	_ = Set(w, plain, Position{X: 1})

	tagged, _ := w.Spawn()
	_ = Set(w, tagged, Position{X: 2})
	_ = Set(w, tagged, Health{Current: 5})

	healthId := TypeIdOf[Health](w)
	stream := Query1[Position](w).Without(healthId)
	if got := stream.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
	ForEachEntity1(stream, func(e EntityId, p *Position) {
		if e != plain {
			t.Fatalf("expected only the untagged entity to match, got %v", e)
		}
	})
}
