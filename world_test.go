package fennecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorldSpawnAndDespawn(t *testing.T) {
	w := NewWorld()
	e, err := w.Spawn()
	require.NoError(t, err)
	require.True(t, w.IsAlive(e), "expected freshly spawned entity to be alive")

	require.NoError(t, w.Despawn(e))
	require.False(t, w.IsAlive(e), "expected entity dead after despawn")

	err = w.Despawn(e)
	require.Error(t, err, "expected EntityNotAliveError on double despawn")
	require.IsType(t, EntityNotAliveError{}, err)
}

func TestWorldAddComponentMigratesArchetype(t *testing.T) {
	w := NewWorld()
	e, err := w.Spawn()
	require.NoError(t, err)

	require.NoError(t, Set(w, e, Position{X: 1, Y: 2}))
	sigA, err := w.Signature(e)
	require.NoError(t, err)
	require.Equal(t, 1, sigA.Len(), "expected signature {Position}")

	require.NoError(t, Set(w, e, Velocity{X: 3}))
	sigAB, err := w.Signature(e)
	require.NoError(t, err)
	require.Equal(t, 2, sigAB.Len(), "expected signature {Position, Velocity}")

	pos, err := Get[Position](w, e)
	require.NoError(t, err)
	require.Equal(t, 1.0, pos.X)

	require.NoError(t, Remove[Position](w, e))
	sigB, err := w.Signature(e)
	require.NoError(t, err)
	require.Equal(t, 1, sigB.Len(), "expected signature {Velocity} after removing Position")
	require.True(t, Has[Velocity](w, e))
}

func TestWorldAddComponentOverwritesInPlace(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn()
	require.NoError(t, Set(w, e, Position{X: 1}))
	sigBefore, err := w.Signature(e)
	require.NoError(t, err)

	require.NoError(t, Set(w, e, Position{X: 2}))
	sigAfter, err := w.Signature(e)
	require.NoError(t, err)
	require.True(t, sigBefore.Equal(sigAfter), "overwriting an existing component must not migrate archetypes")

	pos, err := Get[Position](w, e)
	require.NoError(t, err)
	require.Equal(t, 2.0, pos.X)
}

func TestWorldGetComponentNotFound(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn()
	_, err := Get[Position](w, e)
	require.Error(t, err)
	require.IsType(t, ComponentNotFoundError{}, err)
}

func TestWorldRelationComponents(t *testing.T) {
	w := NewWorld()
	alice, _ := w.Spawn()
	bob, _ := w.Spawn()
	carol, _ := w.Spawn()

	require.NoError(t, SetRelation(w, alice, bob, Likes{}))
	require.NoError(t, SetRelation(w, alice, carol, Likes{}))

	sig, err := w.Signature(alice)
	require.NoError(t, err)
	require.Equal(t, 2, sig.Len(), "expected two distinct relation columns (one per target)")

	require.True(t, w.HasComponent(alice, MatchExact(TypeIdOf[Likes](w), EntityTarget(bob))))
	require.True(t, w.HasComponent(alice, MatchExact(TypeIdOf[Likes](w), EntityTarget(carol))))
}

func TestWorldDespawnCascade(t *testing.T) {
	Config.SetCascadeOnDespawn(true)
	defer Config.SetCascadeOnDespawn(false)

	w := NewWorld()
	parent, _ := w.Spawn()
	child, _ := w.Spawn()
	require.NoError(t, SetRelation(w, child, parent, Likes{}))

	require.NoError(t, w.Despawn(parent))
	require.False(t, w.IsAlive(child), "expected child despawned by cascade once its relation target died")
}

func TestWorldStructuralMutationDuringIterationRejected(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn()
	require.NoError(t, Set(w, e, Position{X: 1}))

	stream := Query1[Position](w)
	var gotErr error
	ForEach1(stream, func(p *Position) {
		_, err := w.Spawn()
		if err != nil {
			gotErr = err
		}
	})
	require.Error(t, gotErr, "expected StructuralMutationDuringIterationError from within ForEach1")
	require.IsType(t, StructuralMutationDuringIterationError{}, gotErr)
}

func TestRefStaleAfterStructuralMutation(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn()
	require.NoError(t, Set(w, e, Position{X: 1}))

	ref, err := GetRef[Position](w, e)
	require.NoError(t, err)

	require.NoError(t, Set(w, e, Velocity{X: 9})) // migrates e, invalidating ref

	_, err = ref.Get()
	require.Error(t, err, "expected RefStaleError after a structural mutation invalidated the ref")
	require.IsType(t, RefStaleError{}, err)
}
