package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/BilyiPJATK/librarystore/catalog"
)

const (
	tableLibrarians   = "librarians"
	colEmploymentDate = "employmentdate"
	colPosition       = "position"
)

var librarianTable = tableSpec[catalog.Librarian]{
	table:   tableLibrarians,
	columns: []string{colUserID, colEmploymentDate, colPosition},
	record: func(librarian catalog.Librarian) goqu.Record {
		return goqu.Record{
			colUserID:         librarian.UserID,
			colEmploymentDate: librarian.EmploymentDate,
			colPosition:       string(librarian.Position),
		}
	},
	scan: func(row rowScanner) (catalog.Librarian, error) {
		var librarian catalog.Librarian
		var position string

		if err := row.Scan(&librarian.ID, &librarian.UserID, &librarian.EmploymentDate, &position); err != nil {
			return librarian, err
		}

		librarian.Position = catalog.Position(position)

		return librarian, nil
	},
	id:    func(librarian catalog.Librarian) int64 { return librarian.ID },
	setID: func(librarian *catalog.Librarian, id int64) { librarian.ID = id },
}

// LibrarianRepository provides CRUD for staff profiles.
type LibrarianRepository struct {
	repository[catalog.Librarian]
}

// FindByUserID returns the staff profile of one user, or nil when the
// user is not a librarian. The login path uses it to pick the admin view.
func (r LibrarianRepository) FindByUserID(ctx context.Context, userID int64) (*catalog.Librarian, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(r.spec.table).
		Select(r.selectColumns()...).
		Where(goqu.C(colUserID).Eq(userID))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	librarians, err := r.queryEntities(ctx, r.store.db, sqlQuery)
	if err != nil {
		return nil, err
	}

	if len(librarians) == 0 {
		return nil, nil
	}

	return &librarians[0], nil
}
