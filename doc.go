/*
Package ndb implements a normalized, relational, in-memory data store meant
to live inside a host application's single state container.

We implement:

1. Tables, collections of keyed attribute rows, one table per registered
entity type, stored in immutable snapshots.

2. Relationships (foreign key, one-to-one, many-to-many, including
self-referential and through-table variants) with forward and backward
accessors compiled at registration time.

3. A clause-based query engine that reorders clauses by selectivity and
short-circuits exact primary-key lookups.

4. Sessions, binding the schema to one snapshot and recording which rows
each read touched.

5. Selectors, memoized read functions that use the session's recorded
provenance to decide whether a cached result is still valid.

# Technical Details

**Snapshots.**
The whole store is a State value: a map from table name to an immutable
table snapshot (ordered id list + id-to-row map + an id watermark). A
mutating call returns a new State; the caller threads it through every
subsequent call. The store never retains a State itself, so snapshots from
different points in time can be freely shared for concurrent reads.

**Batch tokens.**
Every transaction carries an opaque token. A table snapshot is stamped with
the token of the transaction that copied it, so several writes within one
transaction collapse into a single copy instead of each paying for an
independent one. Mutable sessions skip copying entirely and must be
exclusively owned by one writer for their entire lifetime.

**Ids.**
Numeric ids flow through a per-table sequencer whose watermark never
decreases, even across deletions; ids are never reused. String ids must
always be supplied by the caller and leave the sequencer untouched.

**Errors.**
All error kinds here are programmer-facing contract violations, not
recoverable runtime conditions. They are raised as panics carrying typed
error values at the point of violation. In copy-on-write mode a failed call
leaves the prior State untouched; in a mutable session a failure mid-cascade
can leave state partially mutated, which is the accepted trade-off of that
mode.
*/
package ndb
