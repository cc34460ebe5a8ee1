package ndb

import (
	"testing"

	"gotest.tools/assert"
)

func TestIDSequencing(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)
	authors := s.Model("Author")

	a0 := authors.Create(Attrs{"name": "a"})
	a1 := authors.Create(Attrs{"name": "b"})
	a2 := authors.Create(Attrs{"name": "c"})
	assert.Equal(t, a0.ID(), 0)
	assert.Equal(t, a1.ID(), 1)
	assert.Equal(t, a2.ID(), 2)

	// Deleted ids are never reused.
	a1.Delete()
	a2.Delete()
	assert.Equal(t, authors.Create(Attrs{"name": "d"}).ID(), 3)

	// An explicit numeric id advances the watermark.
	assert.Equal(t, authors.Create(Attrs{"id": 10}).ID(), 10)
	assert.Equal(t, authors.Create(Attrs{"name": "e"}).ID(), 11)

	// String ids do not participate in sequencing.
	assert.Equal(t, authors.Create(Attrs{"id": "special"}).ID(), "special")
	assert.Equal(t, authors.Create(Attrs{"name": "f"}).ID(), 12)
}

func TestDuplicateID(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)
	s.Model("Author").Create(Attrs{"id": 7})
	mustPanic(t, func() {
		s.Model("Author").Create(Attrs{"id": 7})
	})
}

func TestCopyOnWrite(t *testing.T) {
	db := testDB(t, blogSchema())
	s1 := db.Session(nil)
	s1.Model("Author").Create(Attrs{"name": "a"})
	st1 := s1.State()

	s2 := db.Session(st1)
	s2.Model("Author").Create(Attrs{"name": "b"})

	assert.Equal(t, len(db.Query(st1, "Author")), 1)
	assert.Equal(t, len(db.Query(s2.State(), "Author")), 2)

	// A batch of creates in one session copies each table once.
	s3 := db.Session(st1)
	s3.Model("Author").Create(Attrs{"name": "c"})
	ts := s3.State()["Author"]
	s3.Model("Author").Create(Attrs{"name": "d"})
	assert.Assert(t, s3.State()["Author"] == ts)
}

func TestNoopUpdateKeepsIdentity(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)
	a := s.Model("Author").Create(Attrs{"name": "a", "born": 1970})
	ts := s.State()["Author"]
	row := a.Ref()

	a.Update(Attrs{"name": "a"})
	assert.Assert(t, s.State()["Author"] == ts)
	assert.Assert(t, rowIdent(a.Ref()) == rowIdent(row))

	a.Update(Attrs{"name": "b"})
	assert.Assert(t, s.State()["Author"] != ts)
	assert.Assert(t, rowIdent(a.Ref()) != rowIdent(row))
	assert.Equal(t, row["name"], "a") // the old row value is untouched
}

func TestMutableSession(t *testing.T) {
	db := testDB(t, blogSchema())
	st := db.EmptyState()
	ts := st["Author"]

	s := db.MutableSession(st)
	s.Model("Author").Create(Attrs{"name": "a"})
	s.Model("Author").Create(Attrs{"name": "b"})

	// Writes land in the bound containers, no copies.
	assert.Assert(t, s.State()["Author"] == ts)
	assert.Equal(t, len(db.Query(st, "Author")), 2)
}

func TestOpCounters(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)
	s.Model("Author").Create(Attrs{"name": "a"})
	writes := db.WriteCount.Load()
	assert.Assert(t, writes > 0)

	reads := db.ReadCount.Load()
	s.Model("Author").Count()
	assert.Equal(t, db.ReadCount.Load(), reads+1)
	assert.Equal(t, db.WriteCount.Load(), writes)
}

func TestDumpState(t *testing.T) {
	db := testDB(t, tagSchema())
	s := db.Session(nil)
	s.Model("Tag").Create(Attrs{"id": "Technology", "weight": 3})
	s.Model("Tag").Create(Attrs{"id": "Redux"})

	assert.Equal(t, db.DumpState(s.State()),
		"Tag (2 rows, lastID -1)\n"+
			"  {id: Technology, weight: 3}\n"+
			"  {id: Redux}\n"+
			"TagSubTags (0 rows, lastID -1)\n")
}

func TestUnknownAction(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)
	err := panicsWith[*UnknownActionError](t, func() {
		s.ApplyUpdate(UpdateSpec{Action: Action(42), Table: "Author"})
	})
	assert.Equal(t, err.Action, Action(42))
}
