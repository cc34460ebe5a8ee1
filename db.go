package ndb

import (
	"log"
	"sync/atomic"
)

// Action tags an UpdateSpec.
type Action int

const (
	ActionCreate Action = iota + 1
	ActionUpdate
	ActionDelete
)

// UpdateSpec is a transactional batch mutation request routed by the
// Database: Create carries a payload, Update a target query plus a merge
// patch, Delete a target query.
type UpdateSpec struct {
	Action  Action
	Table   string
	Payload Attrs
	Clauses []Clause
}

type Database struct {
	schema  *Schema
	engines map[string]*tableEngine
	logf    func(format string, args ...any)
	verbose bool

	ReadCount  atomic.Uint64
	WriteCount atomic.Uint64
}

type Options struct {
	Logf    func(format string, args ...any)
	Verbose bool
}

// New compiles the schema (resolving relationship descriptors and
// installing backward accessors; this is where registration-time errors
// surface) and returns a Database routing queries and updates to one table
// engine per registered entity type.
func New(schema *Schema, opt Options) *Database {
	schema.compile()
	db := &Database{
		schema:  schema,
		engines: make(map[string]*tableEngine, len(schema.tables)),
		logf:    opt.Logf,
		verbose: opt.Verbose,
	}
	if db.logf == nil {
		db.logf = log.Printf
	}
	for _, tbl := range schema.tables {
		db.engines[tbl.name] = &tableEngine{db: db, tbl: tbl}
	}
	return db
}

func (db *Database) Schema() *Schema {
	return db.schema
}

// EmptyState returns a State with every table at its empty snapshot.
func (db *Database) EmptyState() State {
	st := make(State, len(db.schema.tables))
	for _, tbl := range db.schema.tables {
		st[tbl.name] = emptyTableSnapshot()
	}
	return st
}

func (db *Database) engine(table string) *tableEngine {
	te := db.engines[table]
	if te == nil {
		panic(&UnregisteredTableError{table})
	}
	return te
}

func (db *Database) tableState(st State, table string) *TableSnapshot {
	ts := st[table]
	if ts == nil {
		panic(&UnregisteredTableError{table})
	}
	return ts
}

// Query evaluates clauses against one table of the given State.
func (db *Database) Query(st State, table string, clauses ...Clause) []Row {
	db.ReadCount.Add(1)
	te := db.engine(table)
	return te.query(db.tableState(st, table), clauses)
}

// ApplyUpdate routes an UpdateSpec to the addressed table engine and
// splices the resulting table snapshot back into a new State (or the same
// one under a mutable transaction). Update and Delete resolve their target
// rows against the pre-mutation snapshot; the returned payload is the
// post-mutation rows for Update and the pre-removal rows for Delete.
func (db *Database) ApplyUpdate(tx *Tx, st State, spec UpdateSpec) (State, any) {
	db.WriteCount.Add(1)
	te := db.engine(spec.Table)
	ts := db.tableState(st, spec.Table)

	switch spec.Action {
	case ActionCreate:
		ts2, row := te.insert(tx, ts, spec.Payload)
		st2 := st.beget(tx)
		st2[spec.Table] = ts2
		return st2, row
	case ActionUpdate:
		targets := te.query(ts, spec.Clauses)
		ts2, rows := te.update(tx, ts, targets, spec.Payload)
		if ts2 == ts {
			return st, rows
		}
		st2 := st.beget(tx)
		st2[spec.Table] = ts2
		return st2, rows
	case ActionDelete:
		targets := te.query(ts, spec.Clauses)
		ts2 := te.delete(tx, ts, targets)
		if ts2 == ts {
			return st, targets
		}
		st2 := st.beget(tx)
		st2[spec.Table] = ts2
		return st2, targets
	default:
		panic(&UnknownActionError{spec.Action})
	}
}
