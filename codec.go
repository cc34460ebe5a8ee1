package ndb

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// The codec serializes a State so hosts can ship or rehydrate their state
// container (session storage, worker hand-off). Where rows end up is the
// host's business; the store itself never touches storage.

type stateDoc struct {
	Tables map[string]*tableDoc `msgpack:"tables"`
}

type tableDoc struct {
	Order  []any `msgpack:"order"`
	Rows   []Row `msgpack:"rows"`
	LastID int   `msgpack:"lastId"`
}

// EncodeState serializes a State to msgpack.
func (db *Database) EncodeState(st State) []byte {
	doc := stateDoc{Tables: make(map[string]*tableDoc, len(st))}
	for name, ts := range st {
		td := &tableDoc{
			Order:  ts.order,
			Rows:   make([]Row, 0, len(ts.order)),
			LastID: ts.lastID,
		}
		for _, id := range ts.order {
			td.Rows = append(td.Rows, ts.rows[id])
		}
		doc.Tables[name] = td
	}

	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(&doc)
	msgpack.PutEncoder(enc)
	ensure(err)
	return buf.Bytes()
}

// DecodeState deserializes a State previously produced by EncodeState.
// Unlike contract violations, malformed input is a runtime condition and
// comes back as an error.
func (db *Database) DecodeState(data []byte) (State, error) {
	var doc stateDoc
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.Reset(&r)
	err := dec.Decode(&doc)
	msgpack.PutDecoder(dec)
	if err != nil {
		return nil, fmt.Errorf("ndb: failed to decode state: %w", err)
	}

	st := db.EmptyState()
	for name, td := range doc.Tables {
		tbl := db.schema.TableNamed(name)
		if tbl == nil {
			return nil, fmt.Errorf("ndb: encoded state has unknown table %q", name)
		}
		if len(td.Order) != len(td.Rows) {
			return nil, fmt.Errorf("ndb: encoded table %q has %d ids but %d rows", name, len(td.Order), len(td.Rows))
		}
		ts := emptyTableSnapshot()
		ts.lastID = td.LastID
		for i, rawID := range td.Order {
			id := normKey(rawID)
			row := td.Rows[i]
			row[tbl.keyAttr] = id
			ts.insertRow(id, row)
		}
		st[name] = ts
	}
	return st, nil
}
