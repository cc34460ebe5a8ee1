package ndb

import (
	"fmt"
	"strings"
)

// UnregisteredTableError is raised when an operation references an entity
// type name that was never registered with the schema.
type UnregisteredTableError struct {
	Name string
}

func (e *UnregisteredTableError) Error() string {
	return fmt.Sprintf("no table registered under name %q", e.Name)
}

// NoSessionError is raised when a static or instance operation is invoked
// on a model that is not bound to a session.
type NoSessionError struct {
	Table string
}

func (e *NoSessionError) Error() string {
	return fmt.Sprintf("%s: model is not bound to a session, obtain one via Session.Model(%q)", e.Table, e.Table)
}

// AmbiguousBackwardNameError is raised at schema compile time when two
// relationships resolve to the same backward accessor name on one table.
type AmbiguousBackwardNameError struct {
	Table string
	Name  string
}

func (e *AmbiguousBackwardNameError) Error() string {
	return fmt.Sprintf("%s: backward accessor %q already taken by another field or relationship", e.Table, e.Name)
}

// UnresolvableThroughError is raised for a self-referential many-to-many
// relationship declared through a custom table without an explicit
// from/to field pair; direction cannot be inferred.
type UnresolvableThroughError struct {
	Table   string
	Field   string
	Through string
	Msg     string
}

func (e *UnresolvableThroughError) Error() string {
	return fmt.Sprintf("%s.%s: cannot resolve through fields on %s: %s", e.Table, e.Field, e.Through, e.Msg)
}

// DuplicateLinkError is raised by ManyRel.Add when some of the given ids
// are already linked.
type DuplicateLinkError struct {
	Table string
	Field string
	IDs   []any
}

func (e *DuplicateLinkError) Error() string {
	return fmt.Sprintf("%s.%s: cannot add %s, already linked", e.Table, e.Field, joinIDs(e.IDs))
}

// MissingLinkError is raised by ManyRel.Remove when some of the given ids
// have no existing link.
type MissingLinkError struct {
	Table string
	Field string
	IDs   []any
}

func (e *MissingLinkError) Error() string {
	return fmt.Sprintf("%s.%s: cannot remove %s, not linked", e.Table, e.Field, joinIDs(e.IDs))
}

// AmbiguousGetError is raised by Model.Get when the pattern matches more
// than one row.
type AmbiguousGetError struct {
	Table string
	Count int
}

func (e *AmbiguousGetError) Error() string {
	return fmt.Sprintf("%s: expected Get to match at most one row, got %d", e.Table, e.Count)
}

// UnknownActionError is raised when an UpdateSpec carries an unrecognized
// action tag.
type UnknownActionError struct {
	Action Action
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown update action %d", int(e.Action))
}

// SchemaError covers the remaining registration-time contract violations
// (duplicate table names, duplicate fields, invalid declarations).
type SchemaError struct {
	Table string
	Field string
	Msg   string
}

func schemaErrf(table, field, format string, args ...any) *SchemaError {
	return &SchemaError{table, field, fmt.Sprintf(format, args...)}
}

func (e *SchemaError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Table)
	if e.Field != "" {
		buf.WriteByte('.')
		buf.WriteString(e.Field)
	}
	buf.WriteString(": ")
	buf.WriteString(e.Msg)
	return buf.String()
}

func joinIDs(ids []any) string {
	var buf strings.Builder
	for i, id := range ids {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprint(&buf, id)
	}
	return buf.String()
}
