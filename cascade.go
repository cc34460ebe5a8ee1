package ndb

import (
	"slices"
	"strings"
)

type refKey struct {
	table string
	id    any
}

// deleteCascade removes one row after propagating to every relationship
// visible from its table. Forward Cascade relationships delete the
// referenced rows (recursively); through-rows linking the deleted row are
// always removed; backward foreign keys are nulled out under the default
// policy. visited breaks cycles in mutually cascading relationships.
func (s *Session) deleteCascade(tbl *Table, id any, visited map[refKey]bool) {
	id = normKey(id)
	k := refKey{tbl.name, id}
	if visited[k] {
		return
	}
	visited[k] = true
	row := s.peek(tbl, id)
	if row == nil {
		return
	}

	for _, f := range tbl.declaredFields() {
		switch f.kind {
		case FKField, O2OField:
			if f.onDelete == Cascade && row[f.name] != nil {
				s.deleteCascade(f.target, row[f.name], visited)
			}
		case M2MField:
			s.dropLinks(f, id, visited)
		}
	}
	for _, vf := range s.virtualsOf(tbl) {
		g := vf.forward
		switch g.kind {
		case M2MField:
			s.dropLinks(vf, id, visited)
		case FKField, O2OField:
			if g.onDelete == Cascade {
				for _, rrow := range s.db.Query(s.state, g.table.name, Filter(Attrs{g.name: id})) {
					s.deleteCascade(g.table, g.table.rowKey(rrow), visited)
				}
			} else {
				s.ApplyUpdate(UpdateSpec{
					Action:  ActionUpdate,
					Table:   g.table.name,
					Payload: Attrs{g.name: nil},
					Clauses: []Clause{Filter(Attrs{g.name: id})},
				})
			}
		}
	}

	s.ApplyUpdate(UpdateSpec{
		Action:  ActionDelete,
		Table:   tbl.name,
		Clauses: []Clause{Filter(Attrs{tbl.keyAttr: id})},
	})
}

// dropLinks clears one direction of a many-to-many relationship for the
// row being deleted: Cascade first propagates to the linked rows, then
// the through-rows go unconditionally (a through-row cannot reference a
// nonexistent participant).
func (s *Session) dropLinks(f *Field, id any, visited map[refKey]bool) {
	if f.onDelete == Cascade {
		for _, trow := range s.db.Query(s.state, f.throughTable.name, Filter(Attrs{f.fromAttr: id})) {
			s.deleteCascade(f.target, trow[f.toAttr], visited)
		}
	}
	s.ApplyUpdate(UpdateSpec{
		Action:  ActionDelete,
		Table:   f.throughTable.name,
		Clauses: []Clause{Filter(Attrs{f.fromAttr: id})},
	})
}

// virtualsOf returns the backward accessors of a table in a fixed order:
// many-to-many first (their through-rows must be gone before backward
// foreign key handling can null out through-table columns), then by name.
func (s *Session) virtualsOf(tbl *Table) []*Field {
	fields := make([]*Field, 0, len(tbl.virtual))
	for _, vf := range tbl.virtual {
		fields = append(fields, vf)
	}
	slices.SortFunc(fields, func(a, b *Field) int {
		am, bm := a.kind == M2MField, b.kind == M2MField
		if am != bm {
			if am {
				return -1
			}
			return 1
		}
		return strings.Compare(a.name, b.name)
	})
	return fields
}
