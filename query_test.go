package ndb

import (
	"strings"
	"testing"

	"gotest.tools/assert"
)

func librarySession(t *testing.T) *Session {
	t.Helper()
	db := testDB(t, blogSchema())
	s := db.Session(nil)
	books := s.Model("Book")
	books.Create(Attrs{"title": "Clean Architecture", "year": 2017})
	books.Create(Attrs{"title": "Refactoring", "year": 1999})
	books.Create(Attrs{"title": "Clean Code", "year": 2008})
	books.Create(Attrs{"title": "TDD", "year": 1999})
	return s
}

func titles(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row["title"].(string))
	}
	return out
}

func TestQueryFilterPattern(t *testing.T) {
	s := librarySession(t)
	rows := s.Model("Book").Filter(Attrs{"year": 1999}).Rows()
	assert.DeepEqual(t, titles(rows), []string{"Refactoring", "TDD"})
}

func TestQueryFilterPredicate(t *testing.T) {
	s := librarySession(t)
	rows := s.Model("Book").Filter(func(row Row) bool {
		return strings.HasPrefix(row["title"].(string), "Clean")
	}).Rows()
	assert.DeepEqual(t, titles(rows), []string{"Clean Architecture", "Clean Code"})
}

func TestQueryExclude(t *testing.T) {
	s := librarySession(t)
	rows := s.Model("Book").Exclude(Attrs{"year": 1999}).Rows()
	assert.DeepEqual(t, titles(rows), []string{"Clean Architecture", "Clean Code"})
}

func TestQueryChaining(t *testing.T) {
	s := librarySession(t)
	qs := s.Model("Book").Filter(Attrs{"year": 1999})

	// Refining must not disturb the base query set.
	refined := qs.Filter(Attrs{"title": "TDD"})
	assert.Equal(t, qs.Count(), 2)
	assert.Equal(t, refined.Count(), 1)
}

func TestQueryOrderBy(t *testing.T) {
	s := librarySession(t)
	books := s.Model("Book")

	rows := books.OrderBy("year", "title").Rows()
	assert.DeepEqual(t, titles(rows), []string{"Refactoring", "TDD", "Clean Code", "Clean Architecture"})

	rows = books.OrderBy(Desc("year"), "title").Rows()
	assert.DeepEqual(t, titles(rows), []string{"Clean Architecture", "Clean Code", "Refactoring", "TDD"})

	rows = books.OrderBy(func(row Row) any {
		return len(row["title"].(string))
	}).Rows()
	assert.DeepEqual(t, titles(rows), []string{"TDD", "Clean Code", "Refactoring", "Clean Architecture"})
}

func TestQueryInsertionOrderDefault(t *testing.T) {
	s := librarySession(t)
	rows := s.Model("Book").All().Rows()
	assert.DeepEqual(t, titles(rows), []string{"Clean Architecture", "Refactoring", "Clean Code", "TDD"})
}

func TestQueryShortCircuit(t *testing.T) {
	s := librarySession(t)

	// The primary-key filter is moved to the front; a nonexistent id must
	// answer empty without evaluating any other clause.
	calls := 0
	rows := s.Query("Book",
		FilterFunc(func(row Row) bool {
			calls++
			return true
		}),
		Filter(Attrs{"id": 99}),
	)
	assert.Equal(t, len(rows), 0)
	assert.Equal(t, calls, 0)

	rows = s.Query("Book",
		FilterFunc(func(row Row) bool {
			calls++
			return true
		}),
		Filter(Attrs{"id": 2}),
	)
	assert.Equal(t, len(rows), 1)
	assert.Equal(t, rows[0]["title"], "Clean Code")
	assert.Equal(t, calls, 1)
}

func TestQueryPKFilterMismatch(t *testing.T) {
	s := librarySession(t)
	rows := s.Query("Book", Filter(Attrs{"id": 2, "year": 1999}))
	assert.Equal(t, len(rows), 0)

	rows = s.Query("Book", Filter(Attrs{"id": 2, "year": 2008}))
	assert.Equal(t, len(rows), 1)
}

func TestQueryNumericNormalization(t *testing.T) {
	s := librarySession(t)

	// Key and attribute equality tolerates numeric type variation: a
	// float-typed id addressing an int-sequenced row still matches.
	rows := s.Query("Book", Filter(Attrs{"id": float64(2)}))
	assert.Equal(t, len(rows), 1)
	rows = s.Query("Book", Filter(Attrs{"year": int64(1999)}))
	assert.Equal(t, len(rows), 2)
}
