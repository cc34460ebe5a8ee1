package ndb

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// TableSnapshot is an immutable point-in-time value of one table: the
// ordered id list, the id-to-row map, and the id watermark. order contains
// no duplicates and is exactly the key set of rows. The watermark is
// monotonically non-decreasing across the table's lifetime, even across
// deletions; ids are never reused.
type TableSnapshot struct {
	order  []any
	rows   map[any]Row
	lastID int
	token  uuid.UUID // batch token of the transaction that owns this copy
}

// State is a point-in-time value of all table contents, keyed by table
// name. Mutating operations produce a new State (or mutate this one in
// place under a mutable session); the caller threads it through every call.
type State map[string]*TableSnapshot

func emptyTableSnapshot() *TableSnapshot {
	return &TableSnapshot{
		rows:   make(map[any]Row),
		lastID: -1,
	}
}

// beget returns a snapshot that tx may mutate: the receiver itself when tx
// is destructive or already owns this copy, a shallow copy otherwise.
func (ts *TableSnapshot) beget(tx *Tx) *TableSnapshot {
	if tx.mutable || ts.token == tx.token {
		return ts
	}
	return &TableSnapshot{
		order:  slices.Clone(ts.order),
		rows:   maps.Clone(ts.rows),
		lastID: ts.lastID,
		token:  tx.token,
	}
}

// nextID runs the sequencer: an absent id yields watermark+1; a provided
// numeric id is used as-is and advances the watermark past itself; a
// non-numeric id is used as-is and leaves the sequencer untouched.
func (ts *TableSnapshot) nextID(provided any) any {
	if provided == nil {
		ts.lastID++
		return ts.lastID
	}
	id := normKey(provided)
	if n, ok := id.(int); ok {
		ts.lastID = max(ts.lastID+1, n)
	}
	return id
}

func (ts *TableSnapshot) insertRow(id any, row Row) {
	if _, exists := ts.rows[id]; exists {
		panic(schemaErrf("", "", "duplicate id %v", id))
	}
	ts.order = append(ts.order, id)
	ts.rows[id] = row
}

func (ts *TableSnapshot) replaceRow(id any, row Row) {
	ts.rows[id] = row
}

func (ts *TableSnapshot) removeRow(id any) {
	if i := slices.Index(ts.order, id); i >= 0 {
		ts.order = slices.Delete(ts.order, i, i+1)
	}
	delete(ts.rows, id)
}

// Row returns the row stored under id, nil if absent.
func (ts *TableSnapshot) Row(id any) Row {
	return ts.rows[normKey(id)]
}

// IDs returns the ids in insertion order.
func (ts *TableSnapshot) IDs() []any {
	return slices.Clone(ts.order)
}

func (ts *TableSnapshot) Count() int {
	return len(ts.order)
}

// LastID returns the sequencer watermark, -1 when no numeric id was ever
// issued.
func (ts *TableSnapshot) LastID() int {
	return ts.lastID
}

// rowList materializes the table as an ordered row slice. Query evaluation
// pays for this at most once per query.
func (ts *TableSnapshot) rowList() []Row {
	rows := make([]Row, 0, len(ts.order))
	for _, id := range ts.order {
		rows = append(rows, ts.rows[id])
	}
	return rows
}

// beget returns a State that tx may install new table snapshots into.
func (st State) beget(tx *Tx) State {
	if tx.mutable {
		return st
	}
	return maps.Clone(st)
}
