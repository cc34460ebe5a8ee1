package ndb

import "github.com/google/uuid"

// Tx scopes a set of writes. Writes sharing a token collapse into one
// snapshot copy instead of each paying for an independent one. A mutable
// Tx applies writes destructively to the snapshot in place; that mode
// trades the fresh-immutable-value guarantee for throughput and is meant
// for bulk loads where the caller controls exclusivity.
type Tx struct {
	token   uuid.UUID
	mutable bool
}

func newTx(mutable bool) *Tx {
	return &Tx{token: uuid.New(), mutable: mutable}
}

func (tx *Tx) Mutable() bool {
	return tx.mutable
}
