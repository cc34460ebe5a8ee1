package ndb

// compile resolves the relationship graph in two passes: first resolve
// every declared relationship's target and through table (auto-creating
// implicit through tables), then install backward accessors. Keeping the
// passes separate means registration order never matters and cyclic or
// self-referential declarations resolve the same way every time.
func (scm *Schema) compile() {
	if scm.compiled {
		return
	}
	// Pass 1 appends auto-created through tables, which the index loop then
	// visits to resolve their own foreign keys.
	for i := 0; i < len(scm.tables); i++ {
		tbl := scm.tables[i]
		for _, f := range tbl.declaredFields() {
			if !f.relational() {
				continue
			}
			f.target = scm.tableNamed(resolveTargetName(tbl, f.to))
			if f.kind == M2MField {
				scm.resolveThrough(tbl, f)
			}
		}
	}
	for _, tbl := range scm.tables {
		for _, f := range tbl.declaredFields() {
			if !f.relational() || f.noBackref {
				continue
			}
			scm.installBackward(tbl, f)
		}
	}
	scm.compiled = true
}

func resolveTargetName(tbl *Table, to string) string {
	if to == This {
		return tbl.name
	}
	return to
}

func (scm *Schema) resolveThrough(tbl *Table, f *Field) {
	if f.through == "" {
		scm.createThrough(tbl, f)
		return
	}
	th := scm.tableNamed(f.through)
	f.throughTable = th
	if f.fromAttr != "" && f.toAttr != "" {
		th.fieldNamed(f.fromAttr)
		th.fieldNamed(f.toAttr)
		return
	}
	if tbl == f.target {
		panic(&UnresolvableThroughError{
			Table: tbl.name, Field: f.name, Through: f.through,
			Msg: "self-referential relationship needs an explicit ThroughFields pair",
		})
	}
	f.fromAttr = th.uniqueFieldTargeting(tbl, f)
	f.toAttr = th.uniqueFieldTargeting(f.target, f)
}

// uniqueFieldTargeting finds the single declared field of a through table
// that references the given participant.
func (th *Table) uniqueFieldTargeting(participant *Table, f *Field) string {
	var found string
	for _, tf := range th.declaredFields() {
		if !tf.relational() || tf.kind == M2MField {
			continue
		}
		if resolveTargetName(th, tf.to) != participant.name {
			continue
		}
		if found != "" {
			panic(&UnresolvableThroughError{
				Table: f.table.name, Field: f.name, Through: th.name,
				Msg: "more than one field references " + participant.name + ", use ThroughFields",
			})
		}
		found = tf.name
	}
	if found == "" {
		panic(&UnresolvableThroughError{
			Table: f.table.name, Field: f.name, Through: th.name,
			Msg: "no field references " + participant.name,
		})
	}
	return found
}

// createThrough registers the implicit through table of a many-to-many
// field: {DeclaringTable}{CapitalizedFieldName} with from{Table}Id and
// to{Table}Id foreign keys.
func (scm *Schema) createThrough(tbl *Table, f *Field) {
	name := tbl.name + upperFirst(f.name)
	if scm.tablesByName[name] != nil {
		panic(schemaErrf(tbl.name, f.name, "implicit through table %s collides with a registered table", name))
	}
	f.fromAttr = "from" + tbl.name + "Id"
	f.toAttr = "to" + f.target.name + "Id"
	fromFK := &Field{kind: FKField, to: tbl.name, noBackref: true}
	toFK := &Field{kind: FKField, to: f.target.name, noBackref: true}
	th := AddTable(scm, name, map[string]*Field{
		f.fromAttr: fromFK,
		f.toAttr:   toFK,
	})
	th.auto = true
	f.throughTable = th
}

func (scm *Schema) installBackward(tbl *Table, f *Field) {
	name := f.relatedName
	if name == "" {
		name = lowerFirst(tbl.name) + "Set"
	}
	f.backName = name
	back := &Field{
		kind:         f.kind,
		to:           tbl.name,
		target:       tbl,
		onDelete:     f.onDelete,
		backward:     true,
		forward:      f,
		throughTable: f.throughTable,
		// Through traversal swaps direction on the backward side.
		fromAttr: f.toAttr,
		toAttr:   f.fromAttr,
	}
	f.target.installVirtual(name, back)
}
