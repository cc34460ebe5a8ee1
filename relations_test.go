package ndb

import (
	"testing"

	"gotest.tools/assert"
)

func TestForwardFK(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)

	ann := s.Model("Author").Create(Attrs{"name": "Ann"})
	book := s.Model("Book").Create(Attrs{"title": "Go", "author": ann})
	assert.Equal(t, book.Get("author"), ann.ID())

	rel := book.Related("author")
	assert.Equal(t, rel.ID(), ann.ID())
	assert.Equal(t, rel.Get("name"), "Ann")

	beth := s.Model("Author").Create(Attrs{"name": "Beth"})
	book.SetRelated("author", beth)
	assert.Equal(t, book.Related("author").Get("name"), "Beth")

	book.SetRelated("author", nil)
	assert.Assert(t, book.Related("author") == nil)
}

func TestForwardFKByRawID(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)
	ann := s.Model("Author").Create(Attrs{"name": "Ann"})
	book := s.Model("Book").Create(Attrs{"title": "Go", "author": ann.ID()})
	assert.Equal(t, book.Related("author").Get("name"), "Ann")
}

func TestBackwardFK(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)

	ann := s.Model("Author").Create(Attrs{"name": "Ann"})
	beth := s.Model("Author").Create(Attrs{"name": "Beth"})
	s.Model("Book").Create(Attrs{"title": "One", "author": ann})
	s.Model("Book").Create(Attrs{"title": "Two", "author": beth})
	s.Model("Book").Create(Attrs{"title": "Three", "author": ann})

	rows := ann.RelatedSet("bookSet").Rows()
	assert.DeepEqual(t, titles(rows), []string{"One", "Three"})
	assert.Equal(t, beth.RelatedSet("bookSet").Count(), 1)

	// The backward accessor is a query set; it refines like any other.
	assert.Equal(t, ann.RelatedSet("bookSet").Filter(Attrs{"title": "Three"}).Count(), 1)

	panicsWith[*SchemaError](t, func() {
		ann.Related("bookSet")
	})
}

func TestBackwardAssignmentRejected(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)
	ann := s.Model("Author").Create(Attrs{"name": "Ann"})
	panicsWith[*SchemaError](t, func() {
		ann.Update(Attrs{"bookSet": []any{}})
	})
}

func TestOneToOne(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)

	cover := s.Model("Cover").Create(Attrs{"src": "go.png"})
	book := s.Model("Book").Create(Attrs{"title": "Go", "cover": cover})

	assert.Equal(t, book.Related("cover").Get("src"), "go.png")
	assert.Equal(t, cover.Related("bookSet").Get("title"), "Go")

	orphan := s.Model("Cover").Create(Attrs{"src": "none.png"})
	assert.Assert(t, orphan.Related("bookSet") == nil)
}

func TestManyToMany(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)

	sf := s.Model("Genre").Create(Attrs{"name": "sf"})
	crime := s.Model("Genre").Create(Attrs{"name": "crime"})
	tech := s.Model("Genre").Create(Attrs{"name": "tech"})
	book := s.Model("Book").Create(Attrs{"title": "Go", "genres": []any{sf, crime}})

	genres := book.Many("genres")
	assert.Equal(t, genres.Count(), 2)
	assert.DeepEqual(t, names(genres.ToRefArray()), []string{"sf", "crime"})

	genres.Add(tech)
	assert.Equal(t, genres.Count(), 3)
	genres.Remove(sf, crime)
	assert.DeepEqual(t, names(genres.ToRefArray()), []string{"tech"})
	genres.Clear()
	assert.Equal(t, genres.Count(), 0)
	assert.Equal(t, len(s.Query("BookGenres")), 0)

	// The backward side traverses the same through table.
	genres.Add(sf)
	assert.Equal(t, sf.Many("bookSet").Count(), 1)
	assert.Equal(t, sf.Many("bookSet").All().First().Get("title"), "Go")
	assert.Equal(t, crime.Many("bookSet").Count(), 0)
}

func names(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row["name"].(string))
	}
	return out
}

func TestManyToManyDuplicateGuard(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)
	sf := s.Model("Genre").Create(Attrs{"name": "sf"})
	book := s.Model("Book").Create(Attrs{"title": "Go"})

	book.Many("genres").Add(sf)
	err := panicsWith[*DuplicateLinkError](t, func() {
		book.Many("genres").Add(sf)
	})
	assert.DeepEqual(t, err.IDs, []any{0})
	assert.Equal(t, len(s.Query("BookGenres")), 1)

	// Repeats within one call count as duplicates too.
	crime := s.Model("Genre").Create(Attrs{"name": "crime"})
	panicsWith[*DuplicateLinkError](t, func() {
		book.Many("genres").Add(crime, crime)
	})
	assert.Equal(t, len(s.Query("BookGenres")), 1)
}

func TestManyToManyMissingGuard(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)
	sf := s.Model("Genre").Create(Attrs{"name": "sf"})
	crime := s.Model("Genre").Create(Attrs{"name": "crime"})
	book := s.Model("Book").Create(Attrs{"title": "Go", "genres": []any{sf}})

	err := panicsWith[*MissingLinkError](t, func() {
		book.Many("genres").Remove(crime)
	})
	assert.DeepEqual(t, err.IDs, []any{1})
	assert.Equal(t, book.Many("genres").Count(), 1)
}

func TestManyToManyBulkAssign(t *testing.T) {
	db := testDB(t, blogSchema())
	s := db.Session(nil)
	sf := s.Model("Genre").Create(Attrs{"name": "sf"})
	crime := s.Model("Genre").Create(Attrs{"name": "crime"})
	tech := s.Model("Genre").Create(Attrs{"name": "tech"})
	book := s.Model("Book").Create(Attrs{"title": "Go", "genres": []any{sf, crime}})

	// Reassignment reconciles: sf stays, crime goes, tech arrives.
	book.Update(Attrs{"genres": []any{sf, tech}})
	assert.DeepEqual(t, names(book.Many("genres").ToRefArray()), []string{"sf", "tech"})

	// Assigning the current set must not touch the through table.
	ts := s.State()["BookGenres"]
	book.Update(Attrs{"genres": []any{sf, tech}})
	assert.Assert(t, s.State()["BookGenres"] == ts)
}

func TestSelfReferentialTags(t *testing.T) {
	db := testDB(t, tagSchema())
	s := db.Session(nil)
	tags := s.Model("Tag")

	tags.Create(Attrs{"id": "Technology"})
	tags.Create(Attrs{"id": "Redux"})

	tags.WithID("Technology").Many("subTags").Add("Redux")

	trows := s.Query("TagSubTags")
	assert.Equal(t, len(trows), 1)
	assert.DeepEqual(t, trows[0], Row{"id": 0, "fromTagId": "Technology", "toTagId": "Redux"})

	redux := tags.WithID("Redux")
	assert.DeepEqual(t, tags.WithID("Technology").Many("subTags").ToRefArray(), []Row{redux.Ref()})

	// The relationship is directional.
	assert.Equal(t, redux.Many("subTags").Count(), 0)
	assert.Equal(t, redux.Many("tagSet").Count(), 1)
}
