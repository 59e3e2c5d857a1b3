package fennecs

import "sync/atomic"

// factory mirrors the teacher's package-level constructor singleton. Most
// constructors here are generic (Query1, Query2, TypeIdOf) and so must stay
// free functions — Go methods cannot introduce their own type parameters —
// but Factory still holds the handful of constructors that aren't.
type factory struct{}

// Factory is the global factory instance for creating fennecs primitives.
var Factory factory

// NewWorld constructs an empty World.
func (f factory) NewWorld() *World {
	return NewWorld()
}

var nextObjectId uint64

// NewObjectId mints a process-wide unique ObjectId for use as a link
// target. fennecs never dereferences the identity itself; this is purely a
// convenience for callers who don't already have one of their own.
func (f factory) NewObjectId() ObjectId {
	return ObjectId(atomic.AddUint64(&nextObjectId, 1))
}
