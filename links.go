package ndb

// ManyRel manages one direction of a many-to-many relationship for one
// row: membership queries plus Add/Remove/Clear link mutation of the
// through table. Relationships are directional; the backward accessor
// traverses the same through table with the sides swapped.
type ManyRel struct {
	rec *Record
	f   *Field
}

// linkedIDs returns the ids linked from this side, in through-row
// insertion order, plus a membership set.
func (mr *ManyRel) linkedIDs() ([]any, map[any]bool) {
	s := mr.rec.model.sess()
	trows := s.Query(mr.f.throughTable.name, Filter(Attrs{mr.f.fromAttr: mr.rec.id}))
	ids := make([]any, 0, len(trows))
	set := make(map[any]bool, len(trows))
	for _, trow := range trows {
		id := normKey(trow[mr.f.toAttr])
		ids = append(ids, id)
		set[id] = true
	}
	return ids, set
}

// All returns the linked rows on the other side as a query set.
func (mr *ManyRel) All() *QuerySet {
	s := mr.rec.model.sess()
	other := s.Model(mr.f.target.name)
	_, set := mr.linkedIDs()
	return other.Filter(func(row Row) bool {
		return set[other.table.rowKey(row)]
	})
}

// ToRefArray returns the linked rows' references in the other table's
// insertion order.
func (mr *ManyRel) ToRefArray() []Row {
	return mr.All().Rows()
}

func (mr *ManyRel) Records() []*Record {
	return mr.All().Records()
}

func (mr *ManyRel) Count() int {
	ids, _ := mr.linkedIDs()
	return len(ids)
}

// Add links the given ids or records, creating one through-row per id.
// Ids that are already linked (or repeated within the call) raise
// DuplicateLinkError naming the offending ids; nothing is deduped
// silently.
func (mr *ManyRel) Add(items ...any) {
	s := mr.rec.model.sess()
	ids := make([]any, 0, len(items))
	for _, item := range items {
		ids = append(ids, normRef(item))
	}
	_, existing := mr.linkedIDs()
	var dups []any
	seen := make(map[any]bool, len(ids))
	for _, id := range ids {
		if existing[id] || seen[id] {
			dups = append(dups, id)
		}
		seen[id] = true
	}
	if len(dups) > 0 {
		panic(&DuplicateLinkError{Table: mr.rec.model.table.name, Field: mr.f.name, IDs: dups})
	}
	through := s.Model(mr.f.throughTable.name)
	for _, id := range ids {
		through.Create(Attrs{mr.f.fromAttr: mr.rec.id, mr.f.toAttr: id})
	}
}

// Remove unlinks the given ids or records, deleting exactly their
// through-rows. Ids with no existing link raise MissingLinkError naming
// the missing ids.
func (mr *ManyRel) Remove(items ...any) {
	s := mr.rec.model.sess()
	ids := make([]any, 0, len(items))
	for _, item := range items {
		ids = append(ids, normRef(item))
	}
	_, existing := mr.linkedIDs()
	var missing []any
	for _, id := range ids {
		if !existing[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		panic(&MissingLinkError{Table: mr.rec.model.table.name, Field: mr.f.name, IDs: missing})
	}
	for _, id := range ids {
		s.ApplyUpdate(UpdateSpec{
			Action:  ActionDelete,
			Table:   mr.f.throughTable.name,
			Clauses: []Clause{Filter(Attrs{mr.f.fromAttr: mr.rec.id, mr.f.toAttr: id})},
		})
	}
}

// Clear deletes all through-rows for this side.
func (mr *ManyRel) Clear() {
	s := mr.rec.model.sess()
	s.ApplyUpdate(UpdateSpec{
		Action:  ActionDelete,
		Table:   mr.f.throughTable.name,
		Clauses: []Clause{Filter(Attrs{mr.f.fromAttr: mr.rec.id})},
	})
}

// assign reconciles the link set with the desired ids by issuing minimal
// Add/Remove calls; identical sets touch nothing.
func (mr *ManyRel) assign(desired []any) {
	current, curSet := mr.linkedIDs()
	desSet := make(map[any]bool, len(desired))
	var toAdd []any
	for _, id := range desired {
		if !desSet[id] {
			desSet[id] = true
			if !curSet[id] {
				toAdd = append(toAdd, id)
			}
		}
	}
	var toRemove []any
	for _, id := range current {
		if !desSet[id] {
			toRemove = append(toRemove, id)
		}
	}
	if len(toRemove) > 0 {
		mr.Remove(toRemove...)
	}
	if len(toAdd) > 0 {
		mr.Add(toAdd...)
	}
}
