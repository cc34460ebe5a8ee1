package ndb

import (
	"fmt"
	"slices"
)

// Model is a table bound to a session. All static operations resolve
// against the session's current State. A model obtained from the schema
// directly is unbound; its data operations panic with NoSessionError.
type Model struct {
	table   *Table
	session *Session
}

func (m *Model) Table() *Table {
	return m.table
}

func (m *Model) sess() *Session {
	if m.session == nil {
		panic(&NoSessionError{m.table.name})
	}
	return m.session
}

// Create inserts a row. Relational attributes accept raw ids or records;
// a slice assigned to a many-to-many field links every listed id.
func (m *Model) Create(attrs Attrs) *Record {
	s := m.sess()
	plain, links := m.splitAttrs(attrs)
	row := s.ApplyUpdate(UpdateSpec{Action: ActionCreate, Table: m.table.name, Payload: plain}).(Row)
	rec := &Record{model: m, id: m.table.rowKey(row)}
	for _, la := range links {
		rec.Many(la.field).Add(la.ids...)
	}
	return rec
}

// Upsert updates the row addressed by the payload's primary key if it
// resolves, and creates one otherwise.
func (m *Model) Upsert(attrs Attrs) *Record {
	s := m.sess()
	if id, ok := attrs[m.table.keyAttr]; ok {
		if s.peek(m.table, id) != nil {
			rec := &Record{model: m, id: normKey(id)}
			rec.Update(attrs)
			return rec
		}
	}
	return m.Create(attrs)
}

// WithID resolves a record by primary key, nil when absent.
func (m *Model) WithID(id any) *Record {
	rows := m.sess().Query(m.table.name, Filter(Attrs{m.table.keyAttr: id}))
	if len(rows) == 0 {
		return nil
	}
	return &Record{model: m, id: normKey(id)}
}

// Get returns the single record matching the pattern, nil when none
// matches. Panics with AmbiguousGetError on more than one match.
func (m *Model) Get(pattern Attrs) *Record {
	rows := m.sess().Query(m.table.name, Filter(pattern))
	if len(rows) > 1 {
		panic(&AmbiguousGetError{Table: m.table.name, Count: len(rows)})
	}
	if len(rows) == 0 {
		return nil
	}
	return &Record{model: m, id: m.table.rowKey(rows[0])}
}

func (m *Model) Exists(pattern Attrs) bool {
	return len(m.sess().Query(m.table.name, Filter(pattern))) > 0
}

// Filter accepts an attribute-equality pattern (Attrs) or a row predicate
// (func(Row) bool).
func (m *Model) Filter(pattern any) *QuerySet {
	return m.All().Filter(pattern)
}

func (m *Model) Exclude(pattern any) *QuerySet {
	return m.All().Exclude(pattern)
}

func (m *Model) OrderBy(keys ...any) *QuerySet {
	return m.All().OrderBy(keys...)
}

func (m *Model) All() *QuerySet {
	m.sess()
	return &QuerySet{model: m}
}

func (m *Model) Count() int {
	return m.All().Count()
}

type linkAssign struct {
	field string
	ids   []any
}

// splitAttrs separates plain attributes (normalizing relational references
// to ids) from many-to-many bulk assignments.
func (m *Model) splitAttrs(attrs Attrs) (Attrs, []linkAssign) {
	plain := make(Attrs, len(attrs))
	var links []linkAssign
	for k, v := range attrs {
		f := m.table.FieldNamed(k)
		switch {
		case f == nil || f.kind == AttrField:
			plain[k] = v
		case f.kind == M2MField:
			links = append(links, linkAssign{k, normRefs(v)})
		case f.backward:
			panic(schemaErrf(m.table.name, k, "cannot assign a backward relationship, mutate from the forward side"))
		default:
			plain[k] = normRef(v)
		}
	}
	// Map iteration order is not stable; keep through-row creation
	// deterministic.
	slices.SortFunc(links, func(a, b linkAssign) int {
		switch {
		case a.field < b.field:
			return -1
		case a.field > b.field:
			return 1
		default:
			return 0
		}
	})
	return plain, links
}

// normRef turns an entity reference (record, row or raw id) into a
// normalized id.
func normRef(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case *Record:
		return v.id
	case Row:
		panic(fmt.Errorf("cannot reference a raw Row, pass a record or an id"))
	default:
		return normKey(v)
	}
}

func normRefs(v any) []any {
	switch v := v.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, normRef(item))
		}
		return out
	case []*Record:
		out := make([]any, 0, len(v))
		for _, rec := range v {
			out = append(out, rec.id)
		}
		return out
	default:
		panic(fmt.Errorf("many-to-many assignment must be a slice, got %T", v))
	}
}
