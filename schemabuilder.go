package ndb

// FieldKind enumerates the relationship descriptor variants.
type FieldKind int

const (
	AttrField FieldKind = iota
	FKField
	O2OField
	M2MField
)

func (k FieldKind) String() string {
	switch k {
	case AttrField:
		return "attr"
	case FKField:
		return "fk"
	case O2OField:
		return "one-to-one"
	case M2MField:
		return "many-to-many"
	default:
		return "invalid"
	}
}

// DeletePolicy decides what deleting one side of a relationship does to the
// other side.
type DeletePolicy int

const (
	// SetNull nulls out foreign keys referencing the deleted row and clears
	// its through-rows without touching the other entity. The default.
	SetNull DeletePolicy = iota
	// Cascade propagates the delete to the other side.
	Cascade
)

// This is the self-reference sentinel for relationship targets.
const This = "this"

// Field is one declared field of a table: a plain attribute or a
// relationship descriptor. Construct with Attr, FK, OneToOne or ManyToMany
// and refine with the chainable options.
type Field struct {
	kind  FieldKind
	table *Table // declaring table
	name  string

	to          string // declared target table name, possibly This
	target      *Table // resolved
	relatedName string // explicit backward accessor name
	backName    string // resolved backward accessor name
	onDelete    DeletePolicy
	noBackref   bool // through fields of auto-created tables get no backward accessor

	// many-to-many only
	through      string // explicit through table name
	throughTable *Table // resolved or auto-created
	fromAttr     string // through field referencing the declaring side
	toAttr       string // through field referencing the target side

	// backward accessors only
	backward bool
	forward  *Field // the declaring forward field
}

// Attr declares a plain attribute.
func Attr() *Field {
	return &Field{kind: AttrField}
}

// FK declares a foreign key to the given table (or This).
func FK(to string) *Field {
	return &Field{kind: FKField, to: to}
}

// OneToOne declares a one-to-one relationship with the given table (or
// This).
func OneToOne(to string) *Field {
	return &Field{kind: O2OField, to: to}
}

// ManyToMany declares a many-to-many relationship with the given table (or
// This). Unless Through is used, an implicit through table named
// {DeclaringTable}{CapitalizedFieldName} is created with from{Table}Id and
// to{Table}Id fields.
func ManyToMany(to string) *Field {
	return &Field{kind: M2MField, to: to}
}

// RelatedName sets the backward accessor name installed on the target
// table. Defaults to the lower-cased declaring table name plus "Set".
func (f *Field) RelatedName(name string) *Field {
	f.assertRelational("RelatedName")
	f.relatedName = name
	return f
}

// Through routes a many-to-many relationship via an explicitly registered
// table instead of an auto-created one.
func (f *Field) Through(table string) *Field {
	f.assertKind(M2MField, "Through")
	f.through = table
	return f
}

// ThroughFields names the pair of through-table fields referencing the
// declaring and the target side. Required when the through table has more
// than one field referencing either participant (e.g. a self-referential
// many-to-many via a custom through table).
func (f *Field) ThroughFields(fromAttr, toAttr string) *Field {
	f.assertKind(M2MField, "ThroughFields")
	f.fromAttr, f.toAttr = fromAttr, toAttr
	return f
}

// OnDelete sets the delete policy of this relationship.
func (f *Field) OnDelete(p DeletePolicy) *Field {
	f.assertRelational("OnDelete")
	f.onDelete = p
	return f
}

func (f *Field) Kind() FieldKind {
	return f.kind
}

func (f *Field) Name() string {
	return f.name
}

// Target returns the resolved target table of a relational field.
func (f *Field) Target() *Table {
	return f.target
}

// BackwardName returns the resolved backward accessor name.
func (f *Field) BackwardName() string {
	return f.backName
}

func (f *Field) relational() bool {
	return f.kind == FKField || f.kind == O2OField || f.kind == M2MField
}

func (f *Field) assertRelational(op string) {
	if !f.relational() {
		panic(schemaErrf("", "", "%s is only valid on relational fields, not %v", op, f.kind))
	}
}

func (f *Field) assertKind(kind FieldKind, op string) {
	if f.kind != kind {
		panic(schemaErrf("", "", "%s is only valid on %v fields, not %v", op, kind, f.kind))
	}
}
