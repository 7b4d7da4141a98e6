package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/BilyiPJATK/librarystore/catalog"
)

const (
	tableCopies   = "copies"
	colBookID     = "bookid"
	colCopyNumber = "copynumber"
	colStatus     = "status"
)

var copyTable = tableSpec[catalog.Copy]{
	table:   tableCopies,
	columns: []string{colBookID, colCopyNumber, colStatus},
	record: func(copy catalog.Copy) goqu.Record {
		return goqu.Record{
			colBookID:     copy.BookID,
			colCopyNumber: copy.CopyNumber,
			colStatus:     string(copy.Status),
		}
	},
	scan: func(row rowScanner) (catalog.Copy, error) {
		var copy catalog.Copy
		var status string

		if err := row.Scan(&copy.ID, &copy.BookID, &copy.CopyNumber, &status); err != nil {
			return copy, err
		}

		copy.Status = catalog.CopyStatus(status)

		return copy, nil
	},
	id:    func(copy catalog.Copy) int64 { return copy.ID },
	setID: func(copy *catalog.Copy, id int64) { copy.ID = id },
}

// CopyRepository provides CRUD for physical copies.
type CopyRepository struct {
	repository[catalog.Copy]
}

// ForBook returns every copy of one book, ordered by copy number.
func (r CopyRepository) ForBook(ctx context.Context, bookID int64) ([]catalog.Copy, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(r.spec.table).
		Select(r.selectColumns()...).
		Where(goqu.C(colBookID).Eq(bookID)).
		Order(goqu.I(colCopyNumber).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return r.queryEntities(ctx, r.store.db, sqlQuery)
}
