package library

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

const (
	dialectSQLite = "sqlite3"

	tableBooks = "books"
	tableUsers = "users"
)

var sqlite = goqu.Dialect(dialectSQLite)

// bookSelect is the shared projection for every catalog read: the book row
// plus its borrower's username, or NoBorrower.
func bookSelect() *goqu.SelectDataset {
	return sqlite.
		From(goqu.T(tableBooks).As("b")).
		LeftJoin(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("b.borrower_id").Eq(goqu.I("u.id")))).
		Select(
			goqu.I("b.id"),
			goqu.I("b.title"),
			goqu.I("b.author"),
			goqu.I("b.status"),
			goqu.I("b.borrower_id"),
			goqu.COALESCE(goqu.I("u.username"), NoBorrower).As("borrower"),
			goqu.I("b.category"),
			goqu.I("b.genre_or_subject"),
		).
		Prepared(true)
}

func buildListBooksQuery() (string, []interface{}, error) {
	return toSQL(bookSelect().Order(goqu.I("b.id").Asc()))
}

func buildGetBookQuery(id int64) (string, []interface{}, error) {
	return toSQL(bookSelect().Where(goqu.I("b.id").Eq(id)))
}

// buildSearchByAuthorQuery matches the substring anywhere in the author.
// SQLite's LIKE is case-insensitive for ASCII.
func buildSearchByAuthorQuery(substring string) (string, []interface{}, error) {
	return toSQL(bookSelect().
		Where(goqu.I("b.author").Like("%" + substring + "%")).
		Order(goqu.I("b.id").Asc()))
}

func toSQL(ds *goqu.SelectDataset) (string, []interface{}, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build query: %w", err)
	}
	return query, args, nil
}
