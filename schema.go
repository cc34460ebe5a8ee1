package ndb

import "fmt"

// Schema is a registry of tables. Register tables with AddTable, then hand
// the schema to New; the constructor compiles relationship descriptors and
// freezes the schema.
type Schema struct {
	tables       []*Table
	tablesByName map[string]*Table
	compiled     bool
}

func NewSchema() *Schema {
	return &Schema{
		tablesByName: make(map[string]*Table),
	}
}

func (scm *Schema) init() {
	if scm.tablesByName == nil {
		scm.tablesByName = make(map[string]*Table)
	}
}

func (scm *Schema) Tables() []*Table {
	return append([]*Table(nil), scm.tables...)
}

// TableNamed returns the table registered under name, nil if absent.
func (scm *Schema) TableNamed(name string) *Table {
	return scm.tablesByName[name]
}

func (scm *Schema) tableNamed(name string) *Table {
	tbl := scm.tablesByName[name]
	if tbl == nil {
		panic(&UnregisteredTableError{name})
	}
	return tbl
}

// Model returns an unbound model for introspection. Data operations on an
// unbound model panic with NoSessionError; bind one via Session.Model.
func (scm *Schema) Model(name string) *Model {
	return &Model{table: scm.tableNamed(name)}
}

func (scm *Schema) addTable(tbl *Table) {
	scm.init()
	if scm.compiled {
		panic(fmt.Errorf("schema is already compiled, cannot add table %s", tbl.name))
	}
	if scm.tablesByName[tbl.name] != nil {
		panic(schemaErrf(tbl.name, "", "table name already registered"))
	}
	tbl.pos = len(scm.tables)
	scm.tables = append(scm.tables, tbl)
	scm.tablesByName[tbl.name] = tbl
}
