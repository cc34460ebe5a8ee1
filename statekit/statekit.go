// Package statekit wires an ndb database into a host state container:
// actions dispatched by the host are reduced into a new State by
// per-table hooks, and memoized selectors read derived values out of
// whatever State the container currently holds.
package statekit

import (
	"fmt"

	"github.com/andreyvit/ndb"
)

// Action is an external state-container action: a type tag plus an
// arbitrary payload the hooks interpret.
type Action struct {
	Type    string
	Payload map[string]any
}

// Hook handles one action for one table. The model is bound to the
// reducing session; any creates, updates and deletes it performs land in
// the session's resulting State.
type Hook func(action Action, m *ndb.Model, s *ndb.Session)

// Reducer dispatches actions to per-table hooks.
type Reducer struct {
	db    *ndb.Database
	hooks map[string][]Hook
}

func NewReducer(db *ndb.Database) *Reducer {
	return &Reducer{db: db, hooks: make(map[string][]Hook)}
}

// Handle registers a hook for one table. Registering against an
// unregistered table is a programmer error and panics.
func (r *Reducer) Handle(table string, h Hook) *Reducer {
	if r.db.Schema().TableNamed(table) == nil {
		panic(fmt.Errorf("statekit: hook references unregistered table %q", table))
	}
	r.hooks[table] = append(r.hooks[table], h)
	return r
}

// Reduce runs every hook against a session bound to st and returns the
// resulting State. Hooks run in schema registration order, so reduction
// is deterministic; st itself is never modified.
func (r *Reducer) Reduce(st ndb.State, action Action) ndb.State {
	s := r.db.Session(st)
	r.reduceIn(s, action)
	return s.State()
}

func (r *Reducer) reduceIn(s *ndb.Session, action Action) {
	for _, tbl := range r.db.Schema().Tables() {
		for _, h := range r.hooks[tbl.Name()] {
			h(action, s.Model(tbl.Name()), s)
		}
	}
}

// Store is a minimal state container around a Reducer: it owns the
// current State, funnels every change through Dispatch, and notifies
// subscribers of the row-level changes each dispatch produced.
type Store struct {
	reducer     *Reducer
	state       ndb.State
	subscribers []func(*ndb.Change)
}

// NewStore creates a store starting from st (the empty State when nil).
func NewStore(r *Reducer, st ndb.State) *Store {
	if st == nil {
		st = r.db.EmptyState()
	}
	return &Store{reducer: r, state: st}
}

// State returns the current State. It is safe to hand out: every value
// reachable from it is immutable.
func (st *Store) State() ndb.State {
	return st.state
}

// Subscribe registers a listener for row-level changes.
func (st *Store) Subscribe(f func(*ndb.Change)) {
	st.subscribers = append(st.subscribers, f)
}

// Dispatch reduces one action into a new current State.
func (st *Store) Dispatch(action Action) {
	s := st.reducer.db.Session(st.state)
	if len(st.subscribers) > 0 {
		s.OnChange(func(ch *ndb.Change) {
			for _, f := range st.subscribers {
				f(ch)
			}
		})
	}
	st.reducer.reduceIn(s, action)
	st.state = s.State()
}

// CreateSelector builds a memoized read function over the store's State,
// recomputing only when a row or table the previous run read has changed.
func CreateSelector(db *ndb.Database, fn func(s *ndb.Session, args ...any) any) ndb.Selector {
	return ndb.CreateSelector(db, fn)
}
