package ndb

// Record is a handle on one row, bound to a session through its model.
// It stores only the primary key; every access resolves against the
// session's current State, so a record observes later updates and
// deletions.
type Record struct {
	model *Model
	id    any
}

func (r *Record) Model() *Model {
	return r.model
}

func (r *Record) ID() any {
	return r.id
}

// Ref returns the row value backing this record, nil once deleted. The
// access is recorded as a primary-key read.
func (r *Record) Ref() Row {
	return r.model.sess().lookup(r.model.table, r.id)
}

// Exists reports whether the row is still present.
func (r *Record) Exists() bool {
	return r.Ref() != nil
}

// Get returns one attribute of the row.
func (r *Record) Get(attr string) any {
	row := r.Ref()
	if row == nil {
		return nil
	}
	return row[attr]
}

// Related resolves a to-one relationship: a forward foreign key or
// one-to-one by stored id, or a backward one-to-one by searching the
// declaring table (panicking when more than one row points back, which is
// an integrity violation). Returns nil when nothing is linked.
func (r *Record) Related(field string) *Record {
	s := r.model.sess()
	f := r.model.table.fieldNamed(field)
	switch {
	case f.kind == M2MField:
		panic(schemaErrf(r.model.table.name, field, "many-to-many accessor, use Many"))
	case !f.backward && (f.kind == FKField || f.kind == O2OField):
		row := r.Ref()
		if row == nil {
			return nil
		}
		id := row[f.name]
		if id == nil {
			return nil
		}
		return s.Model(f.target.name).WithID(id)
	case f.backward && f.kind == O2OField:
		return s.Model(f.target.name).Get(Attrs{f.forward.name: r.id})
	case f.backward && f.kind == FKField:
		panic(schemaErrf(r.model.table.name, field, "backward foreign key resolves to a set, use RelatedSet"))
	default:
		panic(schemaErrf(r.model.table.name, field, "not a relational field"))
	}
}

// RelatedSet resolves a backward foreign key: all rows on the declaring
// table referencing this row.
func (r *Record) RelatedSet(field string) *QuerySet {
	s := r.model.sess()
	f := r.model.table.fieldNamed(field)
	if !f.backward || f.kind != FKField {
		panic(schemaErrf(r.model.table.name, field, "not a backward foreign key"))
	}
	return s.Model(f.target.name).Filter(Attrs{f.forward.name: r.id})
}

// SetRelated points a forward foreign key or one-to-one at the given
// target (a record or a raw id; nil unlinks). Backward accessors must be
// mutated from the forward side.
func (r *Record) SetRelated(field string, target any) {
	f := r.model.table.fieldNamed(field)
	if f.backward {
		panic(schemaErrf(r.model.table.name, field, "cannot set a backward accessor, mutate from the forward side"))
	}
	if f.kind != FKField && f.kind != O2OField {
		panic(schemaErrf(r.model.table.name, field, "not a to-one relationship"))
	}
	r.Update(Attrs{field: normRef(target)})
}

// Many returns the link manager of a many-to-many relationship, forward
// or backward.
func (r *Record) Many(field string) *ManyRel {
	f := r.model.table.fieldNamed(field)
	if f.kind != M2MField {
		panic(schemaErrf(r.model.table.name, field, "not a many-to-many relationship"))
	}
	return &ManyRel{rec: r, f: f}
}

// Update applies a shallow merge patch to the row. Many-to-many slice
// values are diffed against the current link set and applied as minimal
// add/remove calls; when nothing changes, the row keeps its identity.
func (r *Record) Update(patch Attrs) {
	s := r.model.sess()
	plain, links := r.model.splitAttrs(patch)
	for _, la := range links {
		r.Many(la.field).assign(la.ids)
	}
	if len(plain) > 0 {
		s.ApplyUpdate(UpdateSpec{
			Action:  ActionUpdate,
			Table:   r.model.table.name,
			Payload: plain,
			Clauses: []Clause{Filter(Attrs{r.model.table.keyAttr: r.id})},
		})
	}
}

// Delete removes the row, propagating per each relationship's delete
// policy: Cascade deletes the other side, the default nulls out foreign
// keys and clears through-rows.
func (r *Record) Delete() {
	s := r.model.sess()
	s.deleteCascade(r.model.table, r.id, make(map[refKey]bool))
}
