package ndb

import "slices"

// Selector is a memoized derived-read function over a State.
type Selector func(st State, args ...any) any

// CreateSelector wraps a pure read function over a Session into a
// dependency-tracking cache. Each invocation compares the extra args and
// the cached dependency set against the new State: tables the last run
// fully scanned must be the identical snapshot, and rows the last run
// resolved by primary key must be the identical row values. When
// everything matches, the cached result is returned without invoking fn;
// otherwise fn runs in a fresh session and its recorded provenance becomes
// the new dependency set.
func CreateSelector(db *Database, fn func(s *Session, args ...any) any) Selector {
	m := &memoizedSelector{db: db, fn: fn}
	return m.call
}

type memoizedSelector struct {
	db *Database
	fn func(s *Session, args ...any) any

	valid      bool
	lastArgs   []any
	lastResult any
	lastState  State
	scanned    map[string]struct{}
	accessed   map[string]map[any]struct{}
}

func (m *memoizedSelector) call(st State, args ...any) any {
	if m.valid && shallowEqual(args, m.lastArgs) && m.depsClean(st) {
		return m.lastResult
	}

	sess := m.db.Session(st)
	result := m.fn(sess, args...)

	m.valid = true
	m.lastArgs = slices.Clone(args)
	m.lastResult = result
	m.lastState = st
	m.scanned = sess.scanned
	m.accessed = sess.accessed
	return result
}

func (m *memoizedSelector) depsClean(st State) bool {
	for name := range m.scanned {
		if st[name] != m.lastState[name] {
			return false
		}
	}
	for name, ids := range m.accessed {
		nts, ots := st[name], m.lastState[name]
		if nts == ots {
			continue
		}
		if nts == nil || ots == nil {
			return false
		}
		for id := range ids {
			if rowIdent(nts.rows[id]) != rowIdent(ots.rows[id]) {
				return false
			}
		}
	}
	return true
}
