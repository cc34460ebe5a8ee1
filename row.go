package ndb

import (
	"maps"
	"reflect"
)

// Row is a keyed attribute record. Exactly one attribute is the primary key
// (name configurable per table, "id" by default). The table engine treats
// everything else as an opaque payload.
type Row map[string]any

// Attrs is a create/update payload, same shape as Row.
type Attrs = map[string]any

// mergeRow applies a shallow merge of patch onto row, returning a fresh row.
// Returns the original row and false when the patch changes nothing, so
// untouched rows keep their identity (selectors depend on that).
func mergeRow(row Row, patch Attrs) (Row, bool) {
	changed := false
	for k, v := range patch {
		old, ok := row[k]
		if !ok || !looseEqual(old, v) {
			changed = true
			break
		}
	}
	if !changed {
		return row, false
	}
	merged := maps.Clone(row)
	for k, v := range patch {
		merged[k] = v
	}
	return merged, true
}

func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Comparable() && rb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// rowIdent returns the identity of a row's backing map. Two rows are the
// same value iff their idents match; a merged copy gets a fresh ident.
func rowIdent(row Row) uintptr {
	if row == nil {
		return 0
	}
	return reflect.ValueOf(row).Pointer()
}
