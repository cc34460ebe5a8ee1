package ndb

import (
	"testing"
)

func testDB(t testing.TB, scm *Schema) *Database {
	t.Helper()
	return New(scm, Options{Logf: t.Logf, Verbose: testing.Verbose()})
}

// blogSchema is the shared fixture: a forward FK, a one-to-one and an
// implicit-through many-to-many over four tables.
func blogSchema() *Schema {
	scm := NewSchema()
	AddTable(scm, "Author", nil)
	AddTable(scm, "Cover", nil)
	AddTable(scm, "Genre", nil)
	AddTable(scm, "Book", map[string]*Field{
		"author": FK("Author"),
		"cover":  OneToOne("Cover"),
		"genres": ManyToMany("Genre"),
	})
	return scm
}

func tagSchema() *Schema {
	scm := NewSchema()
	AddTable(scm, "Tag", map[string]*Field{
		"subTags": ManyToMany(This),
	})
	return scm
}

func mustPanic(t testing.TB, f func()) (recovered any) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Fatalf("** expected a panic, got none")
		}
	}()
	f()
	return
}

func panicsWith[E error](t testing.TB, f func()) E {
	t.Helper()
	v := mustPanic(t, f)
	err, ok := v.(E)
	if !ok {
		t.Fatalf("** panicked with %T %v, wanted %T", v, v, err)
	}
	return err
}
