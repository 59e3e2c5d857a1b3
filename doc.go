/*
Package fennecs provides an archetype-based Entity Component System.

fennecs keeps every entity with an identical component signature packed
into the same columnar table (its archetype), so a query over "Position
and Velocity" walks contiguous slices instead of chasing pointers. Adding
or removing a component migrates the entity's row into a different
archetype; entity identity survives the move.

Core Concepts:

  - EntityId: a generation-stamped handle to an entity, stable across
    archetype migrations.
  - TypeExpression: a component type paired with a Target — plain, a
    relation to another entity, or a link to an external object identity.
  - Signature: the set of TypeExpressions an archetype carries.
  - Query / Stream: a compiled, cached match against the World's
    archetypes, iterated via ForEach/Raw/Job/Blit.

Basic Usage:

	w := fennecs.NewWorld()
	e, _ := w.Spawn()
	_ = fennecs.Set(w, e, Position{X: 1, Y: 2})
	_ = fennecs.Set(w, e, Velocity{X: 1, Y: 0})

	stream := fennecs.Query2[Position, Velocity](w)
	fennecs.ForEach2(stream, func(pos *Position, vel *Velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

Relations target another entity instead of carrying no target at all:

	likes := fennecs.TypeIdOf[Likes](w)
	_ = w.AddComponent(alice, fennecs.WithEntity(likes, bob), Likes{})
	stream := fennecs.Query1[Likes](w, fennecs.MatchAnyEntityOf(likes))

fennecs does not persist, serialize, or transmit its World over a network;
those concerns live outside the core entirely.
*/
package fennecs
