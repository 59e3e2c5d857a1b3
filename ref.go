package fennecs

// Get returns a copy of e's plain component of type T.
func Get[T any](w *World, e EntityId) (T, error) {
	var zero T
	id := TypeIdOf[T](w)
	guard := w.lock.beginRead()
	defer guard.End()
	entry, err := w.resolveAlive(e)
	if err != nil {
		return zero, err
	}
	te := Plain(id)
	if !entry.archetype.signature.Contains(te) {
		return zero, ComponentNotFoundError{Entity: e, Match: MatchPlainOf(id)}
	}
	v := entry.archetype.storageFor(te).Span().Index(entry.row).Interface().(T)
	return v, nil
}

// GetRelation returns a copy of e's relation component of type T targeting
// other.
func GetRelation[T any](w *World, e EntityId, other EntityId) (T, error) {
	var zero T
	id := TypeIdOf[T](w)
	guard := w.lock.beginRead()
	defer guard.End()
	entry, err := w.resolveAlive(e)
	if err != nil {
		return zero, err
	}
	te := WithEntity(id, other)
	if !entry.archetype.signature.Contains(te) {
		return zero, ComponentNotFoundError{Entity: e, Match: MatchExact(id, EntityTarget(other))}
	}
	v := entry.archetype.storageFor(te).Span().Index(entry.row).Interface().(T)
	return v, nil
}

// GetLink returns a copy of e's link component of type T targeting obj.
func GetLink[T any](w *World, e EntityId, obj ObjectId) (T, error) {
	var zero T
	id := TypeIdOf[T](w)
	guard := w.lock.beginRead()
	defer guard.End()
	entry, err := w.resolveAlive(e)
	if err != nil {
		return zero, err
	}
	te := WithObject(id, obj)
	if !entry.archetype.signature.Contains(te) {
		return zero, ComponentNotFoundError{Entity: e, Match: MatchExact(id, ObjectTarget(obj))}
	}
	v := entry.archetype.storageFor(te).Span().Index(entry.row).Interface().(T)
	return v, nil
}

// Has reports whether e carries a plain component of type T.
func Has[T any](w *World, e EntityId) bool {
	id := TypeIdOf[T](w)
	return w.HasComponent(e, MatchPlainOf(id))
}

// Set attaches (or overwrites) e's plain component of type T with v,
// migrating e into the matching archetype if it did not already carry one.
func Set[T any](w *World, e EntityId, v T) error {
	id := TypeIdOf[T](w)
	return w.AddComponent(e, Plain(id), v)
}

// SetRelation attaches (or overwrites) e's relation component of type T
// targeting other.
func SetRelation[T any](w *World, e EntityId, other EntityId, v T) error {
	id := TypeIdOf[T](w)
	return w.AddComponent(e, WithEntity(id, other), v)
}

// SetLink attaches (or overwrites) e's link component of type T targeting
// obj.
func SetLink[T any](w *World, e EntityId, obj ObjectId, v T) error {
	id := TypeIdOf[T](w)
	return w.AddComponent(e, WithObject(id, obj), v)
}

// Remove detaches e's plain component of type T, a no-op if absent.
func Remove[T any](w *World, e EntityId) error {
	id := TypeIdOf[T](w)
	return w.RemoveComponent(e, Plain(id))
}

// RemoveRelation detaches e's relation component of type T targeting other.
func RemoveRelation[T any](w *World, e EntityId, other EntityId) error {
	id := TypeIdOf[T](w)
	return w.RemoveComponent(e, WithEntity(id, other))
}

// Ref is an epoch-stamped scoped borrow of a single entity's component. It
// is cheaper to hold across a few operations than repeated Get/Set calls
// when the caller already knows no structural mutation will intervene, and
// it detects the case where one did: any Get/Set after the world's
// structural epoch has moved on returns RefStaleError instead of silently
// reading whatever now occupies that row.
type Ref[T any] struct {
	world   *World
	storage Storage
	row     int
	epoch   uint64
	entity  EntityId
}

// GetRef issues a Ref to e's plain component of type T, creating it
// (zero-valued) first if e does not already carry one.
func GetRef[T any](w *World, e EntityId) (Ref[T], error) {
	id := TypeIdOf[T](w)
	var zero T
	storage, row, err := w.getOrCreateComponent(e, Plain(id), zero)
	if err != nil {
		return Ref[T]{}, err
	}
	return Ref[T]{world: w, storage: storage, row: row, epoch: w.Epoch(), entity: e}, nil
}

func (r Ref[T]) checkFresh() error {
	if r.world.Epoch() != r.epoch {
		return RefStaleError{Entity: r.entity}
	}
	return nil
}

// Get reads the current value through the ref.
func (r Ref[T]) Get() (T, error) {
	var zero T
	if err := r.checkFresh(); err != nil {
		return zero, err
	}
	return r.storage.Span().Index(r.row).Interface().(T), nil
}

// Set overwrites the current value through the ref.
func (r Ref[T]) Set(v T) error {
	if err := r.checkFresh(); err != nil {
		return err
	}
	return r.storage.Store(r.row, v)
}

// Entity returns the entity this Ref was issued for.
func (r Ref[T]) Entity() EntityId { return r.entity }
