package fennecs

import "fmt"

// EntityNotAliveError is returned when an operation targets a stale or
// never-spawned EntityId.
type EntityNotAliveError struct {
	Entity EntityId
}

func (e EntityNotAliveError) Error() string {
	return fmt.Sprintf("entity %v is not alive", e.Entity)
}

// ComponentNotFoundError is returned when a get targets a component the
// entity's archetype has no matching column for.
type ComponentNotFoundError struct {
	Entity EntityId
	Match  Match
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("entity %v has no component matching %v", e.Entity, e.Match)
}

// ColumnMissingError is returned when a Blit targets an archetype that lacks
// the exact (type, target) column.
type ColumnMissingError struct {
	Archetype  archetypeID
	Expression TypeExpression
}

func (e ColumnMissingError) Error() string {
	return fmt.Sprintf("archetype %d has no column %v", e.Archetype, e.Expression)
}

// TypeMismatchError is returned when type-erased storage is called with a
// value of the wrong runtime type.
type TypeMismatchError struct {
	Want, Got interface{}
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: want %T, got %T", e.Want, e.Got)
}

// InvalidMatchError is returned when a wildcard Match is passed to a
// mutating operation that requires a specific target.
type InvalidMatchError struct {
	Match Match
}

func (e InvalidMatchError) Error() string {
	return fmt.Sprintf("match %v is a wildcard; a specific target is required here", e.Match)
}

// StructuralMutationDuringIterationError is raised (as a debug assertion,
// see Config.DebugAssertions) when a structural mutation is attempted while
// the calling goroutine already holds the world's read lock from an
// in-progress iteration.
type StructuralMutationDuringIterationError struct {
	Op string
}

func (e StructuralMutationDuringIterationError) Error() string {
	return fmt.Sprintf("structural mutation (%s) attempted from within an iteration callback", e.Op)
}

// ArchetypeMismatchError is returned when migrate/move is asked to move an
// element into a Storage of a different element type.
type ArchetypeMismatchError struct {
	Reason string
}

func (e ArchetypeMismatchError) Error() string {
	return fmt.Sprintf("archetype storage mismatch: %s", e.Reason)
}

// RefStaleError is returned by a Ref[T] whose world has undergone a
// structural mutation since the Ref was issued; the row it was handed may no
// longer hold the entity it was borrowed from.
type RefStaleError struct {
	Entity EntityId
}

func (e RefStaleError) Error() string {
	return fmt.Sprintf("ref for entity %v is stale: world structure changed since it was issued", e.Entity)
}
