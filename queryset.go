package ndb

import "slices"

// QuerySet is a lazily evaluated clause list over one table. Refinement
// methods return a new QuerySet; evaluation happens on access and goes
// through the session (recording provenance).
type QuerySet struct {
	model   *Model
	clauses []Clause
}

func (qs *QuerySet) with(c Clause) *QuerySet {
	clauses := append(slices.Clip(slices.Clone(qs.clauses)), c)
	return &QuerySet{model: qs.model, clauses: clauses}
}

func (qs *QuerySet) Filter(pattern any) *QuerySet {
	return qs.with(patternClause(clauseFilter, pattern))
}

func (qs *QuerySet) Exclude(pattern any) *QuerySet {
	return qs.with(patternClause(clauseExclude, pattern))
}

func (qs *QuerySet) OrderBy(keys ...any) *QuerySet {
	return qs.with(OrderBy(keys...))
}

func patternClause(kind clauseKind, pattern any) Clause {
	c := Clause{kind: kind}
	switch p := pattern.(type) {
	case Attrs:
		c.pattern = p
	case Row:
		c.pattern = Attrs(p)
	case Predicate:
		c.pred = p
	case func(Row) bool:
		c.pred = p
	default:
		panic(schemaErrf("", "", "pattern must be Attrs or a row predicate, got %T", pattern))
	}
	return c
}

// Rows evaluates the query and returns the matching row references.
func (qs *QuerySet) Rows() []Row {
	return qs.model.sess().Query(qs.model.table.name, qs.clauses...)
}

// Records evaluates the query and returns record handles.
func (qs *QuerySet) Records() []*Record {
	rows := qs.Rows()
	recs := make([]*Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, &Record{model: qs.model, id: qs.model.table.rowKey(row)})
	}
	return recs
}

func (qs *QuerySet) Count() int {
	return len(qs.Rows())
}

func (qs *QuerySet) Exists() bool {
	return qs.Count() > 0
}

// At returns the i-th matching record, nil when out of range.
func (qs *QuerySet) At(i int) *Record {
	rows := qs.Rows()
	if i < 0 || i >= len(rows) {
		return nil
	}
	return &Record{model: qs.model, id: qs.model.table.rowKey(rows[i])}
}

func (qs *QuerySet) First() *Record {
	return qs.At(0)
}

func (qs *QuerySet) Last() *Record {
	return qs.At(qs.Count() - 1)
}

// Update applies a shallow merge patch to every matching row.
func (qs *QuerySet) Update(patch Attrs) {
	plain, links := qs.model.splitAttrs(patch)
	if len(links) == 0 {
		qs.model.sess().ApplyUpdate(UpdateSpec{
			Action:  ActionUpdate,
			Table:   qs.model.table.name,
			Payload: plain,
			Clauses: qs.clauses,
		})
		return
	}
	for _, rec := range qs.Records() {
		rec.Update(patch)
	}
}

// Delete deletes every matching row, honoring each relationship's delete
// policy (cascades run per row).
func (qs *QuerySet) Delete() {
	for _, rec := range qs.Records() {
		rec.Delete()
	}
}
