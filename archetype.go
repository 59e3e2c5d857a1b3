package fennecs

import "github.com/TheBitDrifter/bark"

// archetypeID identifies an archetype within a single World. Stable for the
// archetype's lifetime; archetypes are never destroyed during normal
// operation (spec §3), only possibly retained empty for reuse.
type archetypeID uint32

// archetype is a table: the set of entities sharing an identical Signature,
// plus one Storage per non-entity TypeExpression and the parallel entity
// column.
//
// Fragmentation hazard: every distinct combination of relation targets
// yields a distinct archetype. Fine-grained relations (e.g. a Likes
// component with a different target per pair of entities) multiply the
// number of archetypes; this keeps iteration allocation-free at the cost of
// many small tables.
type archetype struct {
	id        archetypeID
	signature Signature
	dir       *entityDirectory

	entities []EntityId
	columns  map[TypeExpression]Storage
	count    int
}

func newArchetype(id archetypeID, sig Signature, dir *entityDirectory, factories []columnFactory) *archetype {
	columns := make(map[TypeExpression]Storage, sig.Len())
	for _, te := range sig.Exprs() {
		columns[te] = factories[te.Type](Config.DefaultCapacity)
	}
	return &archetype{
		id:        id,
		signature: sig,
		dir:       dir,
		columns:   columns,
	}
}

// ID returns the archetype's stable identity within its World.
func (a *archetype) ID() archetypeID { return a.id }

// Count returns the archetype's logical row count.
func (a *archetype) Count() int { return a.count }

// EntityAt returns the EntityId occupying row.
func (a *archetype) EntityAt(row int) EntityId { return a.entities[row] }

// addRow appends e as a new row, using values[te] for each column in the
// signature (the column's zero value if a TypeExpression is absent from
// values). Returns the new row index.
func (a *archetype) addRow(e EntityId, values map[TypeExpression]any) (int, error) {
	row := a.count
	a.entities = append(a.entities, e)
	for _, te := range a.signature.Exprs() {
		col := a.columns[te]
		v, ok := values[te]
		if !ok {
			v = col.ZeroValue()
		}
		if err := col.Append(v, 1); err != nil {
			return 0, err
		}
	}
	a.count++
	return row, nil
}

// removeRow deletes row from every column and the entity column. If the
// removed row was not the last, the entity now at row is the one previously
// at count-1; removeRow rewrites that entity's directory entry in place
// (spec §4.3).
func (a *archetype) removeRow(row int) {
	for _, te := range a.signature.Exprs() {
		a.columns[te].Delete(row, 1)
	}
	last := a.count - 1
	if row != last {
		moved := a.entities[last]
		a.entities[row] = moved
		a.dir.rowMoved(moved, a, row)
	}
	a.entities = a.entities[:last]
	a.count--
}

// migrateRow moves row from a into dst. Columns common to both archetypes
// are relocated; columns only dst has are populated from extra (or zeroed);
// columns only a has are discarded. Returns dst's new row index. The
// entity's directory entry is left to the caller (World), which is the one
// that knows the migrating EntityId's final destination.
func (a *archetype) migrateRow(row int, dst *archetype, extra map[TypeExpression]any) (int, error) {
	for _, te := range a.signature.Exprs() {
		src := a.columns[te]
		if dstCol, ok := dst.columns[te]; ok {
			if err := src.Move(row, dstCol); err != nil {
				return 0, err
			}
			continue
		}
		src.Delete(row, 1)
	}
	for _, te := range dst.signature.Exprs() {
		if a.signature.Contains(te) {
			continue // already relocated by the Move above
		}
		col := dst.columns[te]
		v, ok := extra[te]
		if !ok {
			v = col.ZeroValue()
		}
		if err := col.Append(v, 1); err != nil {
			return 0, err
		}
	}

	e := a.entities[row]
	last := a.count - 1
	if row != last {
		moved := a.entities[last]
		a.entities[row] = moved
		a.dir.rowMoved(moved, a, row)
	}
	a.entities = a.entities[:last]
	a.count--

	newRow := dst.count
	dst.entities = append(dst.entities, e)
	dst.count++
	return newRow, nil
}

// fill blits v into the column for te. Fails ColumnMissing if the archetype
// has no exact column for te.
func (a *archetype) fill(te TypeExpression, v any) error {
	col, ok := a.columns[te]
	if !ok {
		return ColumnMissingError{Archetype: a.id, Expression: te}
	}
	return col.Blit(v)
}

// columnsMatching collects every column whose TypeExpression satisfies m,
// in signature order. Used by cross-join to resolve a wildcard stream
// position against this archetype.
func (a *archetype) columnsMatching(m Match) []Storage {
	var cols []Storage
	for _, te := range a.signature.Exprs() {
		if te.Matches(m) {
			cols = append(cols, a.columns[te])
		}
	}
	return cols
}

// storageFor panics (traced) if asked for a column the archetype doesn't
// have; internal callers are expected to have already checked Contains.
func (a *archetype) storageFor(te TypeExpression) Storage {
	col, ok := a.columns[te]
	if !ok {
		panic(bark.AddTrace(ComponentNotFoundError{Match: MatchExact(te.Type, te.Target)}))
	}
	return col
}
