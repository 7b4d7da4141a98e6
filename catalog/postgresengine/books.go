package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/BilyiPJATK/librarystore/catalog"
)

const (
	tableBooks         = "books"
	colTitle           = "title"
	colAuthor          = "author"
	colPublicationYear = "publicationyear"
	colISBN            = "isbn"
	colPublisherID     = "publisherid"
)

var bookTable = tableSpec[catalog.Book]{
	table:   tableBooks,
	columns: []string{colTitle, colAuthor, colPublicationYear, colISBN, colPublisherID},
	record: func(book catalog.Book) goqu.Record {
		return goqu.Record{
			colTitle:           book.Title,
			colAuthor:          book.Author,
			colPublicationYear: book.PublicationYear,
			colISBN:            book.ISBN,
			colPublisherID:     book.PublisherID,
		}
	},
	scan: func(row rowScanner) (catalog.Book, error) {
		var book catalog.Book
		err := row.Scan(&book.ID, &book.Title, &book.Author, &book.PublicationYear, &book.ISBN, &book.PublisherID)

		return book, err
	},
	id:    func(book catalog.Book) int64 { return book.ID },
	setID: func(book *catalog.Book, id int64) { book.ID = id },
}

// BookRepository provides CRUD for catalog records plus the
// availability view the reader-facing screens render.
type BookRepository struct {
	repository[catalog.Book]
}

// Available returns every book that currently has at least one copy
// with status Available.
func (r BookRepository) Available(ctx context.Context) ([]catalog.Book, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(goqu.T(tableBooks).As("b")).
		Join(goqu.T(tableCopies).As("c"), goqu.On(goqu.I("b.id").Eq(goqu.I("c.bookid")))).
		Select(
			goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.author"),
			goqu.I("b.publicationyear"), goqu.I("b.isbn"), goqu.I("b.publisherid"),
		).
		Where(goqu.I("c.status").Eq(string(catalog.CopyStatusAvailable))).
		Distinct().
		Order(goqu.I("b.id").Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return r.queryEntities(ctx, r.store.db, sqlQuery)
}
