package ndb

import "fmt"

type (
	// Change describes one row-level effect of a session update, reported
	// to the handler installed via Session.OnChange.
	Change struct {
		table  *Table
		op     Op
		id     any
		row    Row
		oldRow Row
	}

	Op int
)

const (
	OpNone   Op = 0
	OpPut    Op = 1
	OpDelete Op = 2
)

func (chg *Change) Table() *Table {
	return chg.table
}
func (chg *Change) Op() Op {
	return chg.op
}
func (chg *Change) ID() any {
	return chg.id
}
func (chg *Change) HasRow() bool {
	return chg.row != nil
}
func (chg *Change) Row() Row {
	return chg.row
}
func (chg *Change) HasOldRow() bool {
	return chg.oldRow != nil
}
func (chg *Change) OldRow() Row {
	return chg.oldRow
}

func (v Op) String() string {
	switch v {
	case OpNone:
		return "none"
	case OpPut:
		return "put"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("invalid op %d", int(v))
	}
}
