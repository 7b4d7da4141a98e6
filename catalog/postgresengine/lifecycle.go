package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/BilyiPJATK/librarystore/catalog"
	"github.com/BilyiPJATK/librarystore/catalog/postgresengine/internal/adapters"
)

const (
	logMsgUserRegistered   = "user registered"
	logMsgCopyBorrowed     = "copy borrowed"
	logMsgCopyReturned     = "copy returned"
	logMsgBorrowingDeleted = "borrowing deleted"
	logMsgUserDeleted      = "user deleted"
	logMsgBookDeleted      = "book deleted"
	logAttrUserID          = "user_id"
	logAttrCopyID          = "copy_id"
	logAttrBookID          = "book_id"
	logAttrBorrowingID     = "borrowing_id"
)

// The operations in this file span multiple tables and therefore run as
// one transaction each. Preconditions are enforced by conditional SQL
// (compare-and-swap on the status column, NOT EXISTS guards on deletes)
// and validated through affected-row counts, so there is no gap between
// checking a rule and acting on it.

// RegisterUser persists a new user, rejecting duplicate emails. The
// in-transaction pre-check gives a clean error for the common case; the
// unique index on email is the final arbiter under concurrency.
func (s *Store) RegisterUser(ctx context.Context, user *catalog.User) error {
	builder := goqu.Dialect(dialectPostgres)

	duplicateQuery, _, toSQLErr := builder.
		From(tableUsers).
		Select(goqu.COUNT(colID)).
		Where(goqu.C(colEmail).Eq(user.Email)).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	insertQuery, _, toSQLErr := builder.
		Insert(tableUsers).
		Rows(userTable.record(*user)).
		Returning(colID).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	var id int64

	txErr := s.withinTransaction(ctx, func(tx adapters.DBTx) error {
		duplicates, _, err := s.queryOneInt64(ctx, tx, duplicateQuery, logActionSelect)
		if err != nil {
			return err
		}

		if duplicates > 0 {
			return catalog.ErrDuplicateEmail
		}

		returnedID, found, err := s.queryOneInt64(ctx, tx, insertQuery, logActionInsert)
		if err != nil {
			return err
		}

		if !found {
			return errors.Join(catalog.ErrExecFailed, errors.New(errMsgNoIDReturned))
		}

		id = returnedID

		return nil
	})
	if txErr != nil {
		return txErr
	}

	user.ID = id
	s.logOperation(logMsgUserRegistered, logAttrUserID, id)

	return nil
}

// BorrowCopy creates a borrowing of one copy by one user. The copy must
// currently be Available; the status flip to Borrowed and the insert of
// the loan row happen in the same transaction, with the flip executed as
// a compare-and-swap so two simultaneous borrow attempts cannot both win.
func (s *Store) BorrowCopy(ctx context.Context, userID int64, copyID int64, borrowDate time.Time) (*catalog.Borrowing, error) {
	builder := goqu.Dialect(dialectPostgres)

	casQuery, _, toSQLErr := builder.
		Update(tableCopies).
		Set(goqu.Record{colStatus: string(catalog.CopyStatusBorrowed)}).
		Where(goqu.C(colID).Eq(copyID), goqu.C(colStatus).Eq(string(catalog.CopyStatusAvailable))).
		ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	borrowing := catalog.Borrowing{
		UserID:     userID,
		CopyID:     copyID,
		BorrowDate: borrowDate,
	}

	insertQuery, _, toSQLErr := builder.
		Insert(tableBorrowings).
		Rows(borrowingTable.record(borrowing)).
		Returning(colID).
		ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	txErr := s.withinTransaction(ctx, func(tx adapters.DBTx) error {
		exists, err := s.rowExists(ctx, tx, tableUsers, goqu.C(colID).Eq(userID))
		if err != nil {
			return err
		}

		if !exists {
			return fmt.Errorf("user %d: %w", userID, catalog.ErrNotFound)
		}

		rowsAffected, err := s.execStatement(ctx, tx, casQuery, logActionUpdate)
		if err != nil {
			return err
		}

		if rowsAffected == 0 {
			copyExists, existsErr := s.rowExists(ctx, tx, tableCopies, goqu.C(colID).Eq(copyID))
			if existsErr != nil {
				return existsErr
			}

			if !copyExists {
				return fmt.Errorf("copy %d: %w", copyID, catalog.ErrNotFound)
			}

			return catalog.ErrCopyNotAvailable
		}

		id, found, err := s.queryOneInt64(ctx, tx, insertQuery, logActionInsert)
		if err != nil {
			return err
		}

		if !found {
			return errors.Join(catalog.ErrExecFailed, errors.New(errMsgNoIDReturned))
		}

		borrowing.ID = id

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.logOperation(logMsgCopyBorrowed, logAttrBorrowingID, borrowing.ID, logAttrUserID, userID, logAttrCopyID, copyID)

	return &borrowing, nil
}

// ReturnCopy closes an open borrowing by setting its return date and
// flips the copy back to Available, both in one transaction. Returning
// an already-closed borrowing fails with catalog.ErrBorrowingAlreadyClosed.
func (s *Store) ReturnCopy(ctx context.Context, borrowingID int64, returnDate time.Time) (*catalog.Borrowing, error) {
	builder := goqu.Dialect(dialectPostgres)

	var returned *catalog.Borrowing

	txErr := s.withinTransaction(ctx, func(tx adapters.DBTx) error {
		borrowing, err := s.lockBorrowing(ctx, tx, borrowingID)
		if err != nil {
			return err
		}

		if borrowing == nil {
			return fmt.Errorf("borrowing %d: %w", borrowingID, catalog.ErrNotFound)
		}

		if !borrowing.IsOpen() {
			return catalog.ErrBorrowingAlreadyClosed
		}

		closeQuery, _, toSQLErr := builder.
			Update(tableBorrowings).
			Set(goqu.Record{colReturnDate: returnDate}).
			Where(goqu.C(colID).Eq(borrowingID), goqu.C(colReturnDate).IsNull()).
			ToSQL()
		if toSQLErr != nil {
			return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
		}

		rowsAffected, err := s.execStatement(ctx, tx, closeQuery, logActionUpdate)
		if err != nil {
			return err
		}

		if rowsAffected == 0 {
			return catalog.ErrBorrowingAlreadyClosed
		}

		if err = s.releaseCopy(ctx, tx, borrowing.CopyID); err != nil {
			return err
		}

		borrowing.ReturnDate = &returnDate
		returned = borrowing

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.logOperation(logMsgCopyReturned, logAttrBorrowingID, borrowingID, logAttrCopyID, returned.CopyID)

	return returned, nil
}

// DeleteBorrowing removes a closed borrowing and flips the copy back to
// Available. Deleting an open borrowing fails with
// catalog.ErrBorrowingStillOpen; deleting an absent one is a no-op.
func (s *Store) DeleteBorrowing(ctx context.Context, borrowingID int64) error {
	builder := goqu.Dialect(dialectPostgres)

	return s.withinTransaction(ctx, func(tx adapters.DBTx) error {
		borrowing, err := s.lockBorrowing(ctx, tx, borrowingID)
		if err != nil {
			return err
		}

		if borrowing == nil {
			return nil
		}

		if borrowing.IsOpen() {
			return catalog.ErrBorrowingStillOpen
		}

		deleteQuery, _, toSQLErr := builder.
			Delete(tableBorrowings).
			Where(goqu.C(colID).Eq(borrowingID), goqu.C(colReturnDate).IsNotNull()).
			ToSQL()
		if toSQLErr != nil {
			return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
		}

		if _, err = s.execStatement(ctx, tx, deleteQuery, logActionDelete); err != nil {
			return err
		}

		if err = s.releaseCopy(ctx, tx, borrowing.CopyID); err != nil {
			return err
		}

		s.logOperation(logMsgBorrowingDeleted, logAttrBorrowingID, borrowingID, logAttrCopyID, borrowing.CopyID)

		return nil
	})
}

// DeleteUser removes a user unless borrowings reference them or a
// librarian profile exists. The guards live in the DELETE itself, so the
// check and the delete cannot be separated by a concurrent writer.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	builder := goqu.Dialect(dialectPostgres)

	hasBorrowings := builder.From(tableBorrowings).Select(goqu.V(1)).Where(goqu.C(colUserID).Eq(userID))
	isLibrarian := builder.From(tableLibrarians).Select(goqu.V(1)).Where(goqu.C(colUserID).Eq(userID))

	deleteQuery, _, toSQLErr := builder.
		Delete(tableUsers).
		Where(
			goqu.C(colID).Eq(userID),
			goqu.L("NOT EXISTS ?", hasBorrowings),
			goqu.L("NOT EXISTS ?", isLibrarian),
		).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return s.withinTransaction(ctx, func(tx adapters.DBTx) error {
		rowsAffected, err := s.execStatement(ctx, tx, deleteQuery, logActionDelete)
		if err != nil {
			return err
		}

		if rowsAffected > 0 {
			s.logOperation(logMsgUserDeleted, logAttrUserID, userID)
			return nil
		}

		exists, err := s.rowExists(ctx, tx, tableUsers, goqu.C(colID).Eq(userID))
		if err != nil {
			return err
		}

		if !exists {
			return nil
		}

		borrows, err := s.rowExists(ctx, tx, tableBorrowings, goqu.C(colUserID).Eq(userID))
		if err != nil {
			return err
		}

		if borrows {
			return catalog.ErrUserHasBorrowings
		}

		return catalog.ErrUserIsLibrarian
	})
}

// DeleteBook removes a book, its copies, and their closed loan history,
// unless any copy is currently out. An open borrowing on any copy fails
// the whole transaction with catalog.ErrBookHasOpenLoans; an open loan
// created concurrently is caught by the foreign key when the copies are
// deleted, rolling everything back.
func (s *Store) DeleteBook(ctx context.Context, bookID int64) error {
	builder := goqu.Dialect(dialectPostgres)

	copiesOfBook := builder.From(tableCopies).Select(colID).Where(goqu.C(colBookID).Eq(bookID))

	openLoansQuery, _, toSQLErr := builder.
		From(tableBorrowings).
		Select(goqu.COUNT(colID)).
		Where(goqu.C(colCopyID).In(copiesOfBook), goqu.C(colReturnDate).IsNull()).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	deleteHistoryQuery, _, toSQLErr := builder.
		Delete(tableBorrowings).
		Where(goqu.C(colCopyID).In(copiesOfBook), goqu.C(colReturnDate).IsNotNull()).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	deleteCopiesQuery, _, toSQLErr := builder.
		Delete(tableCopies).
		Where(goqu.C(colBookID).Eq(bookID)).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	deleteBookQuery, _, toSQLErr := builder.
		Delete(tableBooks).
		Where(goqu.C(colID).Eq(bookID)).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return s.withinTransaction(ctx, func(tx adapters.DBTx) error {
		exists, err := s.rowExists(ctx, tx, tableBooks, goqu.C(colID).Eq(bookID))
		if err != nil {
			return err
		}

		if !exists {
			return nil
		}

		openLoans, _, err := s.queryOneInt64(ctx, tx, openLoansQuery, logActionSelect)
		if err != nil {
			return err
		}

		if openLoans > 0 {
			return catalog.ErrBookHasOpenLoans
		}

		if _, err = s.execStatement(ctx, tx, deleteHistoryQuery, logActionDelete); err != nil {
			return err
		}

		if _, err = s.execStatement(ctx, tx, deleteCopiesQuery, logActionDelete); err != nil {
			return err
		}

		if _, err = s.execStatement(ctx, tx, deleteBookQuery, logActionDelete); err != nil {
			return err
		}

		s.logOperation(logMsgBookDeleted, logAttrBookID, bookID)

		return nil
	})
}

// lockBorrowing fetches one borrowing row under FOR UPDATE, or nil when absent.
func (s *Store) lockBorrowing(ctx context.Context, tx adapters.DBTx, borrowingID int64) (*catalog.Borrowing, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(tableBorrowings).
		Select(colID, colUserID, colCopyID, colBorrowDate, colReturnDate).
		Where(goqu.C(colID).Eq(borrowingID)).
		ForUpdate(exp.Wait)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := tx.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(sqlQuery, logActionSelect, duration)

	if queryErr != nil {
		s.logError(logMsgSQLExecuted+logActionSelect, queryErr, logAttrQuery, sqlQuery)
		return nil, classifyDBError(queryErr)
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return nil, classifyDBError(rowsErr)
		}

		return nil, nil
	}

	borrowing, scanErr := scanBorrowing(rows)
	if scanErr != nil {
		return nil, errors.Join(catalog.ErrScanningRowFailed, scanErr)
	}

	return &borrowing, nil
}

// releaseCopy flips a copy back to Available unless another open
// borrowing still references it.
func (s *Store) releaseCopy(ctx context.Context, tx adapters.DBTx, copyID int64) error {
	builder := goqu.Dialect(dialectPostgres)

	stillOut := builder.
		From(tableBorrowings).
		Select(goqu.V(1)).
		Where(goqu.C(colCopyID).Eq(copyID), goqu.C(colReturnDate).IsNull())

	releaseQuery, _, toSQLErr := builder.
		Update(tableCopies).
		Set(goqu.Record{colStatus: string(catalog.CopyStatusAvailable)}).
		Where(
			goqu.C(colID).Eq(copyID),
			goqu.C(colStatus).Eq(string(catalog.CopyStatusBorrowed)),
			goqu.L("NOT EXISTS ?", stillOut),
		).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	_, err := s.execStatement(ctx, tx, releaseQuery, logActionUpdate)

	return err
}

// rowExists reports whether any row of the table matches the condition.
func (s *Store) rowExists(ctx context.Context, runner queryRunner, table string, condition exp.Expression) (bool, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(table).
		Select(goqu.V(1)).
		Where(condition).
		Limit(1).
		ToSQL()
	if toSQLErr != nil {
		return false, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	_, found, err := s.queryOneInt64(ctx, runner, sqlQuery, logActionSelect)
	if err != nil {
		return false, err
	}

	return found, nil
}
