package catalog

import (
	"errors"
	"fmt"
)

// Category sentinels. Every specific error below wraps exactly one of
// them, so callers can match either the precise rule or the category
// with errors.Is.
var (
	// ErrNotFound is returned when an operation targets a row that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when caller-supplied data fails a precondition.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a lifecycle guard rejects an operation.
	ErrConflict = errors.New("conflict")

	// ErrPersistence is returned when the storage engine rejects an operation;
	// the enclosing transaction has been rolled back before it propagates.
	ErrPersistence = errors.New("persistence failure")
)

// Specific rule violations.
var (
	ErrDuplicateEmail         = fmt.Errorf("%w: email is already in use", ErrValidation)
	ErrCopyNotAvailable       = fmt.Errorf("%w: copy is not available for borrowing", ErrConflict)
	ErrBorrowingStillOpen     = fmt.Errorf("%w: borrowing has not been returned yet", ErrConflict)
	ErrBorrowingAlreadyClosed = fmt.Errorf("%w: borrowing is already closed", ErrConflict)
	ErrUserHasBorrowings      = fmt.Errorf("%w: user still has borrowings on record", ErrConflict)
	ErrUserIsLibrarian        = fmt.Errorf("%w: user has a librarian profile", ErrConflict)
	ErrBookHasOpenLoans       = fmt.Errorf("%w: a copy of the book is currently borrowed", ErrConflict)
)

// Engine-level sentinels shared by all storage constructors and operations.
var (
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrBuildingQueryFailed   = fmt.Errorf("%w: building query failed", ErrPersistence)
	ErrQueryFailed           = fmt.Errorf("%w: query execution failed", ErrPersistence)
	ErrExecFailed            = fmt.Errorf("%w: statement execution failed", ErrPersistence)
	ErrScanningRowFailed     = fmt.Errorf("%w: scanning database row failed", ErrPersistence)
	ErrTxBeginFailed         = fmt.Errorf("%w: beginning transaction failed", ErrPersistence)
	ErrTxCommitFailed        = fmt.Errorf("%w: committing transaction failed", ErrPersistence)

	// ErrTransientConflict marks serialization failures and deadlocks reported
	// by the database. Safe to retry; distinct from business-rule conflicts.
	ErrTransientConflict = fmt.Errorf("%w: transient database conflict", ErrConflict)
)

// errWithValidation builds a one-off validation error with a reason.
func errWithValidation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}
