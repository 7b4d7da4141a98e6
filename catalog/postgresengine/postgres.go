package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/BilyiPJATK/librarystore/catalog"
	"github.com/BilyiPJATK/librarystore/catalog/postgresengine/internal/adapters"
)

const (
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "catalog store operation: "
	logMsgRollbackFailed      = "failed to roll back transaction"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrTable              = "table"
	logAttrDurationMS         = "duration_ms"
	logAttrRowsAffected       = "rows_affected"
	dialectPostgres           = "postgres"
	sqlstateSerializationFail = "40001"
	sqlstateDeadlockDetected  = "40P01"
	sqlstateUniqueViolation   = "23505"
	constraintUserEmailKey    = "users_email_key"
)

// Logger interface for SQL query logging, operational messages, warnings,
// and error reporting. log/slog satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Store is the Postgres persistence engine for the library catalog.
// It owns one database handle and hands out per-entity repositories,
// all sharing the same adapter and logger.
type Store struct {
	db     adapters.DBAdapter
	logger Logger
}

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
//
// Debug level: SQL statements with execution timing (development use)
// Info level: row counts and durations per operation (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: failures that abort an operation.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// NewStoreFromPGXPool creates a new Store using a pgx connection pool.
func NewStoreFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Store, error) {
	if pool == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(pool), options...)
}

// NewStoreFromSQLDB creates a new Store using a database/sql handle.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx handle.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	store := &Store{db: db}

	for _, option := range options {
		if err := option(store); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// Users returns the repository for user records.
func (s *Store) Users() UserRepository {
	return UserRepository{repository[catalog.User]{store: s, spec: userTable}}
}

// Publishers returns the repository for publisher records.
func (s *Store) Publishers() PublisherRepository {
	return PublisherRepository{repository[catalog.Publisher]{store: s, spec: publisherTable}}
}

// Books returns the repository for catalog records.
func (s *Store) Books() BookRepository {
	return BookRepository{repository[catalog.Book]{store: s, spec: bookTable}}
}

// Copies returns the repository for physical copies.
func (s *Store) Copies() CopyRepository {
	return CopyRepository{repository[catalog.Copy]{store: s, spec: copyTable}}
}

// Borrowings returns the repository for loan records.
func (s *Store) Borrowings() BorrowingRepository {
	return BorrowingRepository{repository[catalog.Borrowing]{store: s, spec: borrowingTable}}
}

// Librarians returns the repository for staff profiles.
func (s *Store) Librarians() LibrarianRepository {
	return LibrarianRepository{repository[catalog.Librarian]{store: s, spec: librarianTable}}
}

// classifyDBError maps driver-level errors onto the shared taxonomy.
// Serialization failures and deadlocks become catalog.ErrTransientConflict
// so callers can retry; everything else stays a persistence failure.
func classifyDBError(err error) error {
	code, constraint := sqlstateOf(err)

	switch code {
	case sqlstateSerializationFail, sqlstateDeadlockDetected:
		return errors.Join(catalog.ErrTransientConflict, err)
	case sqlstateUniqueViolation:
		if constraint == constraintUserEmailKey {
			return errors.Join(catalog.ErrDuplicateEmail, err)
		}

		return errors.Join(catalog.ErrConflict, err)
	}

	return errors.Join(catalog.ErrExecFailed, err)
}

// sqlstateOf extracts the SQLSTATE code and constraint name from both
// supported driver stacks.
func sqlstateOf(err error) (code string, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}

	return "", ""
}

// logQueryWithDuration logs SQL statements with execution time at debug level if a logger is configured.
func (s *Store) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s *Store) logOperation(action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs a failure at error level if a logger is configured.
func (s *Store) logError(msg string, err error, args ...any) {
	if s.logger != nil {
		allArgs := append([]any{logAttrError, err.Error()}, args...)
		s.logger.Error(msg, allArgs...)
	}
}

// closeRows safely closes database rows and logs any errors.
func (s *Store) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// withinTransaction runs fn inside one transaction, committing on success
// and rolling back on any error. The error from fn propagates unchanged so
// business-rule rejections keep their identity.
func (s *Store) withinTransaction(ctx context.Context, fn func(tx adapters.DBTx) error) error {
	tx, beginErr := s.db.Begin(ctx)
	if beginErr != nil {
		return errors.Join(catalog.ErrTxBeginFailed, beginErr)
	}

	if fnErr := fn(tx); fnErr != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			s.logError(logMsgRollbackFailed, rollbackErr)
		}

		return fnErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			s.logError(logMsgRollbackFailed, rollbackErr)
		}

		return errors.Join(catalog.ErrTxCommitFailed, commitErr)
	}

	return nil
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
