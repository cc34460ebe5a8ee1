package ndb

import (
	"cmp"
	"fmt"
)

// Predicate is a row predicate usable wherever an attribute-equality
// pattern is accepted.
type Predicate func(Row) bool

type clauseKind int

const (
	clauseFilter clauseKind = iota
	clauseExclude
	clauseOrderBy
)

// Clause is one step of a query: Filter, Exclude or OrderBy. Clauses are
// values; building a query never mutates previously built clauses.
type Clause struct {
	kind    clauseKind
	pattern Attrs
	pred    Predicate
	keys    []sortKey
}

// Filter keeps rows whose attributes equal every pattern entry.
func Filter(pattern Attrs) Clause {
	return Clause{kind: clauseFilter, pattern: pattern}
}

// FilterFunc keeps rows matching the predicate.
func FilterFunc(pred Predicate) Clause {
	return Clause{kind: clauseFilter, pred: pred}
}

// Exclude drops rows whose attributes equal every pattern entry; the set
// complement of Filter.
func Exclude(pattern Attrs) Clause {
	return Clause{kind: clauseExclude, pattern: pattern}
}

// ExcludeFunc drops rows matching the predicate.
func ExcludeFunc(pred Predicate) Clause {
	return Clause{kind: clauseExclude, pred: pred}
}

// OrderBy sorts by one or more keys, each an attribute name or a
// func(Row) any extractor, optionally wrapped in Desc. The sort is stable
// across keys.
func OrderBy(keys ...any) Clause {
	c := Clause{kind: clauseOrderBy}
	for _, k := range keys {
		c.keys = append(c.keys, toSortKey(k))
	}
	return c
}

type sortKey struct {
	attr    string
	extract func(Row) any
	desc    bool
}

// Descending marks an OrderBy key as descending.
type Descending struct {
	Key any
}

// Desc wraps an OrderBy key to sort descending.
func Desc(key any) Descending {
	return Descending{key}
}

func toSortKey(key any) sortKey {
	switch key := key.(type) {
	case Descending:
		sk := toSortKey(key.Key)
		sk.desc = true
		return sk
	case string:
		return sortKey{attr: key}
	case func(Row) any:
		return sortKey{extract: key}
	default:
		panic(fmt.Errorf("invalid sort key %T %v", key, key))
	}
}

func (sk sortKey) value(row Row) any {
	if sk.extract != nil {
		return sk.extract(row)
	}
	return row[sk.attr]
}

// shrinking reports whether the clause can only shrink the candidate set.
func (c Clause) shrinking() bool {
	return c.kind == clauseFilter || c.kind == clauseExclude
}

// keyFilterValue returns the exact primary-key equality value of a filter
// pattern, if present.
func (c Clause) keyFilterValue(keyAttr string) (any, bool) {
	if c.kind == clauseFilter && c.pattern != nil {
		if v, ok := c.pattern[keyAttr]; ok {
			return normKey(v), true
		}
	}
	return nil, false
}

func (c Clause) matches(row Row) bool {
	if c.pred != nil {
		return c.pred(row)
	}
	return matchPattern(row, c.pattern)
}

func matchPattern(row Row, pattern Attrs) bool {
	for k, want := range pattern {
		if !looseEqual(normKey(row[k]), normKey(want)) {
			return false
		}
	}
	return true
}

// compareValues orders scalar attribute values of possibly mixed types.
// Same-type ints, floats, strings and bools order naturally; everything
// else falls back to the formatted representation.
func compareValues(a, b any) int {
	a, b = normKey(a), normKey(b)
	if a == nil || b == nil {
		switch {
		case a == b:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch av := a.(type) {
	case int:
		switch bv := b.(type) {
		case int:
			return cmp.Compare(av, bv)
		case float64:
			return cmp.Compare(float64(av), bv)
		}
	case float64:
		switch bv := b.(type) {
		case int:
			return cmp.Compare(av, float64(bv))
		case float64:
			return cmp.Compare(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
