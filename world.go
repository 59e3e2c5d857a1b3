package fennecs

import "sync/atomic"

// transitionKey identifies one edge of the archetype transition graph: the
// archetype a single add-or-remove of one TypeExpression starts from, and
// which side of the edge it is. The graph is built lazily and cached here so
// a repeated add/remove of the same component against the same source
// archetype never recomputes the destination signature (spec §4.4).
type transitionKey struct {
	from archetypeID
	add  bool
	expr TypeExpression
}

// World owns every entity, archetype and the structural lock guarding
// mutation of both. There is no implicit global instance; callers construct
// one with NewWorld.
type World struct {
	registry *typeRegistry
	dir      *entityDirectory
	lock     *structuralLock

	archetypes  []*archetype
	index       *Cache[string, archetypeID]
	transitions *Cache[transitionKey, archetypeID]
	root        *archetype // the empty-signature archetype every Spawn starts in

	epoch uint64 // bumped on every structural mutation; backs Ref[T] staleness checks
}

// NewWorld constructs an empty World with just its root archetype.
func NewWorld() *World {
	w := &World{
		registry:    newTypeRegistry(),
		dir:         newEntityDirectory(),
		lock:        newStructuralLock(),
		index:       NewCache[string, archetypeID](),
		transitions: NewCache[transitionKey, archetypeID](),
	}
	w.root = w.getOrCreateArchetype(NewSignature())
	return w
}

// Epoch returns the world's current structural-mutation counter, used by
// Ref[T] to detect a borrow that has outlived the migration that invalidated
// its backing storage.
func (w *World) Epoch() uint64 {
	return atomic.LoadUint64(&w.epoch)
}

func (w *World) bumpEpoch() {
	atomic.AddUint64(&w.epoch, 1)
}

// Lock acquires the World's structural write lock directly, for callers that
// want to batch several mutations (or external state changes) atomically
// with respect to any concurrent Query iteration. The returned guard's
// Unlock must be called exactly once.
func (w *World) Lock() ScopedGuard {
	guard, err := w.lock.beginWrite("lock")
	if err != nil {
		// Config.DebugAssertions caught a reentrant call; there is no
		// value this method can return to signal it, so it panics rather
		// than silently deadlocking or silently not locking.
		panic(err)
	}
	return guard
}

func (w *World) getOrCreateArchetype(sig Signature) *archetype {
	key := sig.key()
	if id, ok := w.index.Get(key); ok {
		return w.archetypes[id]
	}
	id := archetypeID(len(w.archetypes))
	a := newArchetype(id, sig, w.dir, w.registry.factory)
	w.archetypes = append(w.archetypes, a)
	w.index.Set(key, id)
	return a
}

func (w *World) transitionAdd(from *archetype, te TypeExpression) *archetype {
	key := transitionKey{from: from.id, add: true, expr: te}
	if id, ok := w.transitions.Get(key); ok {
		return w.archetypes[id]
	}
	dst := w.getOrCreateArchetype(from.signature.with(te))
	w.transitions.Set(key, dst.id)
	return dst
}

func (w *World) transitionRemove(from *archetype, te TypeExpression) *archetype {
	key := transitionKey{from: from.id, add: false, expr: te}
	if id, ok := w.transitions.Get(key); ok {
		return w.archetypes[id]
	}
	dst := w.getOrCreateArchetype(from.signature.without(te))
	w.transitions.Set(key, dst.id)
	return dst
}

func (w *World) resolveAlive(e EntityId) (directoryEntry, error) {
	entry, ok := w.dir.get(e)
	if !ok || !entry.alive || entry.generation != e.Generation() {
		return directoryEntry{}, EntityNotAliveError{Entity: e}
	}
	return entry, nil
}

// Spawn creates a new entity with no components, in the root archetype.
func (w *World) Spawn() (EntityId, error) {
	guard, err := w.lock.beginWrite("spawn")
	if err != nil {
		return 0, err
	}
	defer guard.Unlock()

	e := w.dir.allocate()
	row, err := w.root.addRow(e, nil)
	if err != nil {
		return 0, err
	}
	w.dir.set(e, w.root, row)
	w.bumpEpoch()
	return e, nil
}

// Despawn removes e and every component it carries. Returns
// EntityNotAliveError if e is stale or was never spawned.
func (w *World) Despawn(e EntityId) error {
	guard, err := w.lock.beginWrite("despawn")
	if err != nil {
		return err
	}
	defer guard.Unlock()
	if err := w.despawnLocked(e); err != nil {
		return err
	}
	if Config.CascadeOnDespawn {
		w.cascadeDespawnLocked(e)
	}
	return nil
}

func (w *World) despawnLocked(e EntityId) error {
	entry, err := w.resolveAlive(e)
	if err != nil {
		return err
	}
	entry.archetype.removeRow(entry.row)
	w.dir.release(e)
	w.bumpEpoch()
	return nil
}

// cascadeDespawnLocked despawns every entity holding a relation component
// that targets e, recursively. Off by default (Config.CascadeOnDespawn):
// dangling relation targets to a despawned entity are otherwise left as a
// documented hazard rather than cleaned up (spec §9).
func (w *World) cascadeDespawnLocked(target EntityId) {
	var affected []EntityId
	for _, a := range w.archetypes {
		for _, te := range a.signature.Exprs() {
			if te.Target.Kind == TargetEntity && te.Target.Entity == target {
				affected = append(affected, a.entities...)
				break
			}
		}
	}
	for _, e := range affected {
		if w.dir.isAlive(e) {
			w.despawnLocked(e)
			w.cascadeDespawnLocked(e)
		}
	}
}

// IsAlive reports whether e currently identifies a live entity.
func (w *World) IsAlive(e EntityId) bool {
	guard := w.lock.beginRead()
	defer guard.End()
	return w.dir.isAlive(e)
}

// Signature returns the full set of TypeExpressions e currently carries.
func (w *World) Signature(e EntityId) (Signature, error) {
	guard := w.lock.beginRead()
	defer guard.End()
	entry, err := w.resolveAlive(e)
	if err != nil {
		return Signature{}, err
	}
	return entry.archetype.signature, nil
}

// HasComponent reports whether e carries a component matching m.
func (w *World) HasComponent(e EntityId, m Match) bool {
	guard := w.lock.beginRead()
	defer guard.End()
	entry, err := w.resolveAlive(e)
	if err != nil {
		return false
	}
	for _, te := range entry.archetype.signature.Exprs() {
		if te.Matches(m) {
			return true
		}
	}
	return false
}

// ComponentsOf returns every TypeExpression e currently carries, as a
// convenience equivalent to Signature(e).Exprs().
func (w *World) ComponentsOf(e EntityId) ([]TypeExpression, error) {
	sig, err := w.Signature(e)
	if err != nil {
		return nil, err
	}
	return sig.Exprs(), nil
}

// DespawnCascade despawns e and, recursively, every entity holding a
// relation component that targets it — regardless of Config.CascadeOnDespawn,
// which only governs the default behavior of plain Despawn.
func (w *World) DespawnCascade(e EntityId) error {
	guard, err := w.lock.beginWrite("despawn_cascade")
	if err != nil {
		return err
	}
	defer guard.Unlock()

	if err := w.despawnLocked(e); err != nil {
		return err
	}
	w.cascadeDespawnLocked(e)
	return nil
}

// AddComponent attaches the column identified by te to e, storing value.
// If e already carries that exact TypeExpression, value simply overwrites
// the existing one in place (no migration). Otherwise e migrates to the
// archetype for its signature plus te.
func (w *World) AddComponent(e EntityId, te TypeExpression, value any) error {
	guard, err := w.lock.beginWrite("add_component")
	if err != nil {
		return err
	}
	defer guard.Unlock()

	entry, err := w.resolveAlive(e)
	if err != nil {
		return err
	}
	src := entry.archetype
	if src.signature.Contains(te) {
		return src.storageFor(te).Store(entry.row, value)
	}
	dst := w.transitionAdd(src, te)
	newRow, err := src.migrateRow(entry.row, dst, map[TypeExpression]any{te: value})
	if err != nil {
		return err
	}
	w.dir.set(e, dst, newRow)
	w.bumpEpoch()
	return nil
}

// RemoveComponent detaches the column identified by te from e. A no-op if e
// does not carry te.
func (w *World) RemoveComponent(e EntityId, te TypeExpression) error {
	guard, err := w.lock.beginWrite("remove_component")
	if err != nil {
		return err
	}
	defer guard.Unlock()

	entry, err := w.resolveAlive(e)
	if err != nil {
		return err
	}
	src := entry.archetype
	if !src.signature.Contains(te) {
		return nil
	}
	dst := w.transitionRemove(src, te)
	newRow, err := src.migrateRow(entry.row, dst, nil)
	if err != nil {
		return err
	}
	w.dir.set(e, dst, newRow)
	w.bumpEpoch()
	return nil
}

// getOrCreateComponent ensures e carries te, migrating it (seeded with zero)
// if necessary, and returns the column and row it now lives at. Used by the
// generic accessors in ref.go; callers must not retain the Storage across a
// later structural mutation without rechecking the World's epoch.
func (w *World) getOrCreateComponent(e EntityId, te TypeExpression, zero any) (Storage, int, error) {
	guard, err := w.lock.beginWrite("get_or_create_component")
	if err != nil {
		return nil, 0, err
	}
	defer guard.Unlock()

	entry, err := w.resolveAlive(e)
	if err != nil {
		return nil, 0, err
	}
	a := entry.archetype
	row := entry.row
	if !a.signature.Contains(te) {
		dst := w.transitionAdd(a, te)
		newRow, err := a.migrateRow(row, dst, map[TypeExpression]any{te: zero})
		if err != nil {
			return nil, 0, err
		}
		w.dir.set(e, dst, newRow)
		w.bumpEpoch()
		a, row = dst, newRow
	}
	return a.storageFor(te), row, nil
}
