package ndb

import (
	"slices"
	"sort"
)

// runQuery evaluates clauses against a table snapshot.
//
// Clauses are reordered once per query (the caller's slice is left alone)
// by a stable sort with three tiers: an exact primary-key filter first,
// then any other shrinking clause, then the rest. A leading primary-key
// filter resolves via an O(1) lookup and short-circuits to an empty result
// when the key doesn't exist, skipping all other clauses. The first clause
// that needs the whole table materializes the ordered row list once;
// subsequent clauses operate on that in-memory slice.
func runQuery(ts *TableSnapshot, keyAttr string, clauses []Clause) []Row {
	sorted := reorderClauses(clauses, keyAttr)

	var rows []Row
	materialized := false
	for i, c := range sorted {
		if i == 0 {
			if key, ok := c.keyFilterValue(keyAttr); ok {
				row := ts.rows[key]
				if row == nil || !c.matches(row) {
					return nil
				}
				rows = []Row{row}
				materialized = true
				continue
			}
		}
		if !materialized {
			rows = ts.rowList()
			materialized = true
		}
		rows = c.apply(rows)
	}
	if !materialized {
		rows = ts.rowList()
	}
	return rows
}

func reorderClauses(clauses []Clause, keyAttr string) []Clause {
	sorted := slices.Clone(clauses)
	slices.SortStableFunc(sorted, func(a, b Clause) int {
		return clauseTier(a, keyAttr) - clauseTier(b, keyAttr)
	})
	return sorted
}

func clauseTier(c Clause, keyAttr string) int {
	if _, ok := c.keyFilterValue(keyAttr); ok {
		return 0
	}
	if c.shrinking() {
		return 1
	}
	return 2
}

func (c Clause) apply(rows []Row) []Row {
	switch c.kind {
	case clauseFilter:
		out := make([]Row, 0, len(rows))
		for _, row := range rows {
			if c.matches(row) {
				out = append(out, row)
			}
		}
		return out
	case clauseExclude:
		out := make([]Row, 0, len(rows))
		for _, row := range rows {
			if !c.matches(row) {
				out = append(out, row)
			}
		}
		return out
	case clauseOrderBy:
		out := slices.Clone(rows)
		sort.SliceStable(out, func(i, j int) bool {
			for _, sk := range c.keys {
				cmp := compareValues(sk.value(out[i]), sk.value(out[j]))
				if sk.desc {
					cmp = -cmp
				}
				if cmp != 0 {
					return cmp < 0
				}
			}
			return false
		})
		return out
	default:
		panic("invalid clause")
	}
}
