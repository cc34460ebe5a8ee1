package ndb

import "maps"

// tableEngine runs insert/update/delete/query against one table's
// snapshots. It holds no row data itself; every operation takes a snapshot
// in and hands a snapshot back (possibly the same one under a mutable
// transaction or a shared batch token).
type tableEngine struct {
	db  *Database
	tbl *Table
}

func (te *tableEngine) query(ts *TableSnapshot, clauses []Clause) []Row {
	return runQuery(ts, te.tbl.keyAttr, clauses)
}

func (te *tableEngine) insert(tx *Tx, ts *TableSnapshot, attrs Attrs) (*TableSnapshot, Row) {
	ts = ts.beget(tx)
	row := maps.Clone(attrs)
	if row == nil {
		row = make(Row)
	}
	id := ts.nextID(row[te.tbl.keyAttr])
	row[te.tbl.keyAttr] = id
	ts.insertRow(id, row)
	if te.db.verbose {
		te.db.logf("db: CREATE %s/%v => %v", te.tbl.name, id, row)
	}
	return ts, row
}

func (te *tableEngine) update(tx *Tx, ts *TableSnapshot, rows []Row, patch Attrs) (*TableSnapshot, []Row) {
	if v, ok := patch[te.tbl.keyAttr]; ok {
		if len(rows) != 1 || !looseEqual(normKey(v), te.tbl.rowKey(rows[0])) {
			panic(schemaErrf(te.tbl.name, te.tbl.keyAttr, "cannot change the primary key of a row"))
		}
	}
	// Copy lazily: a patch that changes nothing must leave the snapshot
	// (and every row's identity) untouched.
	ts2 := ts
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		merged, changed := mergeRow(row, patch)
		if changed {
			if ts2 == ts && !tx.mutable && ts.token != tx.token {
				ts2 = ts.beget(tx)
			}
			ts2.replaceRow(te.tbl.rowKey(row), merged)
			if te.db.verbose {
				te.db.logf("db: UPDATE %s/%v => %v", te.tbl.name, te.tbl.rowKey(row), merged)
			}
		}
		out = append(out, merged)
	}
	return ts2, out
}

func (te *tableEngine) delete(tx *Tx, ts *TableSnapshot, rows []Row) *TableSnapshot {
	if len(rows) == 0 {
		return ts
	}
	ts = ts.beget(tx)
	for _, row := range rows {
		id := te.tbl.rowKey(row)
		ts.removeRow(id)
		if te.db.verbose {
			te.db.logf("db: DELETE %s/%v", te.tbl.name, id)
		}
	}
	return ts
}
