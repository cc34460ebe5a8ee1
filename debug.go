package ndb

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// DumpState renders a State in a stable textual form for debugging and
// golden comparisons: tables sorted by name, rows in insertion order,
// attributes sorted within each row.
func (db *Database) DumpState(st State) string {
	tables := make([]string, 0, len(st))
	for name := range st {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	var sb strings.Builder
	for _, name := range tables {
		ts := st[name]
		fmt.Fprintf(&sb, "%s (%d rows, lastID %d)\n", name, ts.Count(), ts.LastID())
		for _, id := range ts.order {
			sb.WriteString("  ")
			sb.WriteString(dumpRow(ts.rows[id]))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func dumpRow(row Row) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", k, row[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

// LogState emits one debug line per table.
func (db *Database) LogState(st State) {
	for _, tbl := range db.schema.tables {
		ts := st[tbl.name]
		if ts == nil {
			continue
		}
		slog.Debug("ndb table", "table", tbl.name, "rows", ts.Count(), "lastID", ts.LastID())
	}
}
