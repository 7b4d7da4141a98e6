package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/BilyiPJATK/librarystore/catalog"
)

const (
	tableBorrowings = "borrowings"
	colUserID       = "userid"
	colCopyID       = "copyid"
	colBorrowDate   = "borrowdate"
	colReturnDate   = "returndate"
)

var borrowingTable = tableSpec[catalog.Borrowing]{
	table:   tableBorrowings,
	columns: []string{colUserID, colCopyID, colBorrowDate, colReturnDate},
	record: func(borrowing catalog.Borrowing) goqu.Record {
		record := goqu.Record{
			colUserID:     borrowing.UserID,
			colCopyID:     borrowing.CopyID,
			colBorrowDate: borrowing.BorrowDate,
			colReturnDate: nil,
		}

		if borrowing.ReturnDate != nil {
			record[colReturnDate] = *borrowing.ReturnDate
		}

		return record
	},
	scan:  scanBorrowing,
	id:    func(borrowing catalog.Borrowing) int64 { return borrowing.ID },
	setID: func(borrowing *catalog.Borrowing, id int64) { borrowing.ID = id },
}

func scanBorrowing(row rowScanner) (catalog.Borrowing, error) {
	var borrowing catalog.Borrowing
	var returnDate sql.NullTime

	err := row.Scan(&borrowing.ID, &borrowing.UserID, &borrowing.CopyID, &borrowing.BorrowDate, &returnDate)
	if err != nil {
		return borrowing, err
	}

	if returnDate.Valid {
		returned := returnDate.Time
		borrowing.ReturnDate = &returned
	}

	return borrowing, nil
}

// BorrowingRepository provides CRUD for loan records plus filtered
// listings and the per-user loan history view.
type BorrowingRepository struct {
	repository[catalog.Borrowing]
}

// List returns the borrowings matching the filter, ordered by id.
func (r BorrowingRepository) List(ctx context.Context, filter catalog.BorrowingFilter) ([]catalog.Borrowing, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(r.spec.table).
		Select(r.selectColumns()...).
		Order(goqu.I(colID).Asc())

	selectStmt = addBorrowingFilterClause(filter, selectStmt)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return r.queryEntities(ctx, r.store.db, sqlQuery)
}

// addBorrowingFilterClause translates a catalog.BorrowingFilter into WHERE conditions.
func addBorrowingFilterClause(filter catalog.BorrowingFilter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	expressions := make([]goqu.Expression, 0)

	if filter.UserID() > 0 {
		expressions = append(expressions, goqu.C(colUserID).Eq(filter.UserID()))
	}

	if filter.CopyID() > 0 {
		expressions = append(expressions, goqu.C(colCopyID).Eq(filter.CopyID()))
	}

	if filter.OpenOnly() {
		expressions = append(expressions, goqu.C(colReturnDate).IsNull())
	}

	if filter.ClosedOnly() {
		expressions = append(expressions, goqu.C(colReturnDate).IsNotNull())
	}

	if !filter.BorrowedFrom().IsZero() {
		expressions = append(expressions, goqu.C(colBorrowDate).Gte(filter.BorrowedFrom()))
	}

	if !filter.BorrowedUntil().IsZero() {
		expressions = append(expressions, goqu.C(colBorrowDate).Lte(filter.BorrowedUntil()))
	}

	if len(expressions) == 0 {
		return selectStmt
	}

	return selectStmt.Where(goqu.And(expressions...))
}

// BorrowedBooks returns the loan history of one user as the joined
// book title with borrow and return dates, the view the user screen
// of the original application renders.
func (r BorrowingRepository) BorrowedBooks(ctx context.Context, userID int64) ([]catalog.BorrowedBook, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(goqu.T(tableBooks).As("b")).
		Join(goqu.T(tableCopies).As("c"), goqu.On(goqu.I("b.id").Eq(goqu.I("c.bookid")))).
		Join(goqu.T(tableBorrowings).As("bo"), goqu.On(goqu.I("c.id").Eq(goqu.I("bo.copyid")))).
		Select(goqu.I("b.title"), goqu.I("bo.borrowdate"), goqu.I("bo.returndate")).
		Where(goqu.I("bo.userid").Eq(userID)).
		Order(goqu.I("bo.borrowdate").Asc(), goqu.I("bo.id").Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := r.store.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	r.store.logQueryWithDuration(sqlQuery, logActionSelect, duration)

	if queryErr != nil {
		r.store.logError(logMsgSQLExecuted+logActionSelect, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(catalog.ErrQueryFailed, queryErr)
	}
	defer r.store.closeRows(rows)

	borrowed := make([]catalog.BorrowedBook, 0)

	for rows.Next() {
		var entry catalog.BorrowedBook
		var returnDate sql.NullTime

		if scanErr := rows.Scan(&entry.Title, &entry.BorrowDate, &returnDate); scanErr != nil {
			return nil, errors.Join(catalog.ErrScanningRowFailed, scanErr)
		}

		if returnDate.Valid {
			returned := returnDate.Time
			entry.ReturnDate = &returned
		}

		borrowed = append(borrowed, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errors.Join(catalog.ErrQueryFailed, rowsErr)
	}

	return borrowed, nil
}
