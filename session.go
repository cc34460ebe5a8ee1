package ndb

import "github.com/google/uuid"

// Session binds the schema to one State and hands out bound models. It
// threads every update's resulting State into the next call, and records
// read provenance: which rows were resolved by primary key and which
// tables were fully scanned. Selectors use that record for invalidation.
type Session struct {
	db      *Database
	state   State
	mutable bool
	token   uuid.UUID // shared by all creates in this session

	models        map[string]*Model
	accessed      map[string]map[any]struct{}
	scanned       map[string]struct{}
	changeHandler func(*Change)
}

// Session binds a new session to the given State (EmptyState when nil).
// Updates are copy-on-write; the bound State values stay immutable.
func (db *Database) Session(st State) *Session {
	return db.newSession(st, false)
}

// MutableSession binds a session that applies writes destructively to the
// given State in place. The State must be exclusively owned by this
// session for its entire lifetime; intended for bulk loads.
func (db *Database) MutableSession(st State) *Session {
	return db.newSession(st, true)
}

func (db *Database) newSession(st State, mutable bool) *Session {
	if st == nil {
		st = db.EmptyState()
	}
	return &Session{
		db:       db,
		state:    st,
		mutable:  mutable,
		token:    uuid.New(),
		models:   make(map[string]*Model),
		accessed: make(map[string]map[any]struct{}),
		scanned:  make(map[string]struct{}),
	}
}

// State returns the session's current State.
func (s *Session) State() State {
	return s.state
}

func (s *Session) Mutable() bool {
	return s.mutable
}

// Model returns the session-bound model for the given table name.
func (s *Session) Model(name string) *Model {
	if m := s.models[name]; m != nil {
		return m
	}
	m := &Model{table: s.db.schema.tableNamed(name), session: s}
	s.models[name] = m
	return m
}

// OnChange installs a handler invoked with every row-level put/delete
// applied through this session.
func (s *Session) OnChange(f func(*Change)) {
	s.changeHandler = f
}

// ApplyUpdate builds a per-call transaction (the session's shared token
// for creates, so multiple creates collapse into one snapshot copy; a
// fresh token otherwise) and delegates to the Database, replacing the
// session's State with the result.
func (s *Session) ApplyUpdate(spec UpdateSpec) any {
	var tx *Tx
	if spec.Action == ActionCreate {
		tx = &Tx{token: s.token, mutable: s.mutable}
	} else {
		tx = newTx(s.mutable)
	}

	var olds []Row
	if s.changeHandler != nil && spec.Action == ActionUpdate {
		olds = s.db.Query(s.state, spec.Table, spec.Clauses...)
	}

	st2, result := s.db.ApplyUpdate(tx, s.state, spec)
	s.state = st2

	if s.changeHandler != nil {
		tbl := s.db.schema.tableNamed(spec.Table)
		switch spec.Action {
		case ActionCreate:
			row := result.(Row)
			s.changeHandler(&Change{table: tbl, op: OpPut, id: tbl.rowKey(row), row: row})
		case ActionUpdate:
			for i, row := range result.([]Row) {
				if rowIdent(row) == rowIdent(olds[i]) {
					continue
				}
				s.changeHandler(&Change{table: tbl, op: OpPut, id: tbl.rowKey(row), row: row, oldRow: olds[i]})
			}
		case ActionDelete:
			for _, row := range result.([]Row) {
				s.changeHandler(&Change{table: tbl, op: OpDelete, id: tbl.rowKey(row), oldRow: row})
			}
		}
	}
	return result
}

// Query delegates to the Database and records provenance: ids touched via
// exact primary-key filters count as accessed; any other query marks the
// table as fully scanned for the session's lifetime.
func (s *Session) Query(table string, clauses ...Clause) []Row {
	tbl := s.db.schema.tableNamed(table)
	rows := s.db.Query(s.state, table, clauses...)

	keyed := false
	for _, c := range clauses {
		if key, ok := c.keyFilterValue(tbl.keyAttr); ok {
			s.markAccessed(table, key)
			keyed = true
		}
	}
	if !keyed {
		s.markScanned(table)
	}
	return rows
}

// lookup resolves one row by primary key, recording it as accessed.
func (s *Session) lookup(tbl *Table, id any) Row {
	id = normKey(id)
	s.markAccessed(tbl.name, id)
	return s.db.tableState(s.state, tbl.name).rows[id]
}

// peek resolves one row by primary key without recording provenance; used
// by write paths, which selectors never take.
func (s *Session) peek(tbl *Table, id any) Row {
	return s.db.tableState(s.state, tbl.name).rows[normKey(id)]
}

func (s *Session) markAccessed(table string, id any) {
	ids := s.accessed[table]
	if ids == nil {
		ids = make(map[any]struct{})
		s.accessed[table] = ids
	}
	ids[id] = struct{}{}
}

// markScanned is idempotent; recording the same table twice is a no-op.
func (s *Session) markScanned(table string) {
	s.scanned[table] = struct{}{}
}
