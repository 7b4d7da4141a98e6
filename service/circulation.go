package service

import (
	"context"
	"time"

	"github.com/BilyiPJATK/librarystore/catalog"
)

// BorrowCopy lends a copy to a user. The copy must be Available; on
// success the copy is Borrowed and an open borrowing exists, both
// written in the same transaction. Simultaneous borrow attempts on the
// same copy resolve to exactly one winner.
func (s *Service) BorrowCopy(ctx context.Context, userID int64, copyID int64, borrowDate time.Time) (*catalog.Borrowing, error) {
	v := catalog.NewValidator()
	catalog.ValidateBorrowing(v, catalog.Borrowing{UserID: userID, CopyID: copyID, BorrowDate: borrowDate})

	if err := v.Err(); err != nil {
		return nil, err
	}

	var borrowing *catalog.Borrowing

	err := s.withRetry(ctx, "borrow_copy", func(retryCtx context.Context) error {
		created, borrowErr := s.store.BorrowCopy(retryCtx, userID, copyID, borrowDate)
		if borrowErr != nil {
			return borrowErr
		}

		borrowing = created

		return nil
	})
	if err != nil {
		return nil, err
	}

	return borrowing, nil
}

// ReturnCopy closes an open borrowing and makes the copy Available again.
func (s *Service) ReturnCopy(ctx context.Context, borrowingID int64, returnDate time.Time) (*catalog.Borrowing, error) {
	if returnDate.IsZero() {
		v := catalog.NewValidator()
		v.AddError("return_date", "must be provided")

		return nil, v.Err()
	}

	var borrowing *catalog.Borrowing

	err := s.withRetry(ctx, "return_copy", func(retryCtx context.Context) error {
		closed, returnErr := s.store.ReturnCopy(retryCtx, borrowingID, returnDate)
		if returnErr != nil {
			return returnErr
		}

		borrowing = closed

		return nil
	})
	if err != nil {
		return nil, err
	}

	return borrowing, nil
}

// GetBorrowing returns a loan record by id, or nil when absent.
func (s *Service) GetBorrowing(ctx context.Context, id int64) (*catalog.Borrowing, error) {
	return s.store.Borrowings().GetByID(ctx, id)
}

// ListBorrowings returns the loan records matching the filter.
func (s *Service) ListBorrowings(ctx context.Context, filter catalog.BorrowingFilter) ([]catalog.Borrowing, error) {
	return s.store.Borrowings().List(ctx, filter)
}

// BorrowedBooks returns one user's loan history joined with book titles.
func (s *Service) BorrowedBooks(ctx context.Context, userID int64) ([]catalog.BorrowedBook, error) {
	return s.store.Borrowings().BorrowedBooks(ctx, userID)
}

// DeleteBorrowing removes a closed loan record; open ones are rejected.
func (s *Service) DeleteBorrowing(ctx context.Context, id int64) error {
	return s.withRetry(ctx, "delete_borrowing", func(retryCtx context.Context) error {
		return s.store.DeleteBorrowing(retryCtx, id)
	})
}
