package fennecs

// crossJoinColumns resolves matches against a single archetype and returns
// every combination a stream must visit: one []Storage per combination,
// positional with matches. A plain (non-wildcard) Match always contributes
// exactly one column, so the cartesian product collapses to a single
// combination unless at least one position is a wildcard. Two AnyEntity
// relations of the same component type present on the same archetype (one
// entity related to two different others, say) therefore yield two
// combinations, and the caller's loop body runs once per combination over
// the archetype's full row range.
func crossJoinColumns(a *archetype, matches []Match) [][]Storage {
	if len(matches) == 0 {
		return nil
	}
	combos := [][]Storage{{}}
	for _, m := range matches {
		cols := a.columnsMatching(m)
		if len(cols) == 0 {
			return nil
		}
		next := make([][]Storage, 0, len(combos)*len(cols))
		for _, combo := range combos {
			for _, c := range cols {
				grown := make([]Storage, len(combo), len(combo)+1)
				copy(grown, combo)
				next = append(next, append(grown, c))
			}
		}
		combos = next
	}
	return combos
}
