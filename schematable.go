package ndb

// Table holds the compiled metadata of one registered entity type: the
// primary key attribute, the declared fields, and the virtual (backward)
// relationship accessors installed during schema compilation.
type Table struct {
	schema     *Schema
	name       string
	pos        int // index in schema.tables
	keyAttr    string
	fields     map[string]*Field
	fieldOrder []string
	virtual    map[string]*Field
	auto       bool // auto-created through table
}

type tableOpt any

// KeyAttribute overrides the primary key attribute name (default "id").
type KeyAttribute string

// AddTable registers an entity type under the given name with the given
// field declarations. Plain attributes need no declaration; only declare a
// field to make it relational (FK, OneToOne, ManyToMany) or to pin an
// attribute explicitly.
func AddTable(scm *Schema, name string, fields map[string]*Field, opts ...tableOpt) *Table {
	tbl := &Table{
		schema:  scm,
		name:    name,
		keyAttr: "id",
		fields:  make(map[string]*Field),
		virtual: make(map[string]*Field),
	}
	for _, opt := range opts {
		switch opt := opt.(type) {
		case KeyAttribute:
			tbl.keyAttr = string(opt)
		default:
			panic(schemaErrf(name, "", "invalid option %T %v", opt, opt))
		}
	}
	for fieldName, f := range fields {
		tbl.addField(fieldName, f)
	}
	scm.addTable(tbl)
	return tbl
}

func (tbl *Table) addField(name string, f *Field) {
	if f == nil {
		panic(schemaErrf(tbl.name, name, "nil field declaration"))
	}
	if f.table != nil {
		panic(schemaErrf(tbl.name, name, "field declaration already used by %s.%s", f.table.name, f.name))
	}
	if tbl.fields[name] != nil {
		panic(schemaErrf(tbl.name, name, "duplicate field"))
	}
	if f.kind != AttrField && name == tbl.keyAttr {
		panic(schemaErrf(tbl.name, name, "relational field cannot use the primary key attribute name"))
	}
	f.table = tbl
	f.name = name
	tbl.fields[name] = f
	tbl.fieldOrder = append(tbl.fieldOrder, name)
}

func (tbl *Table) Name() string {
	return tbl.name
}

// KeyAttr returns the primary key attribute name.
func (tbl *Table) KeyAttr() string {
	return tbl.keyAttr
}

// FieldNamed returns the declared or virtual field under name, nil if
// absent.
func (tbl *Table) FieldNamed(name string) *Field {
	if f := tbl.fields[name]; f != nil {
		return f
	}
	return tbl.virtual[name]
}

func (tbl *Table) fieldNamed(name string) *Field {
	f := tbl.FieldNamed(name)
	if f == nil {
		panic(schemaErrf(tbl.name, name, "no such field or relationship"))
	}
	return f
}

// declaredFields yields the declared fields in declaration order.
func (tbl *Table) declaredFields() []*Field {
	fields := make([]*Field, 0, len(tbl.fieldOrder))
	for _, name := range tbl.fieldOrder {
		fields = append(fields, tbl.fields[name])
	}
	return fields
}

func (tbl *Table) installVirtual(name string, f *Field) {
	if tbl.fields[name] != nil || tbl.virtual[name] != nil {
		panic(&AmbiguousBackwardNameError{Table: tbl.name, Name: name})
	}
	f.table = tbl
	f.name = name
	tbl.virtual[name] = f
}

// rowKey extracts the normalized primary key value of a row.
func (tbl *Table) rowKey(row Row) any {
	return normKey(row[tbl.keyAttr])
}
