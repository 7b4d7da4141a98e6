package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/BilyiPJATK/librarystore/catalog"
	"github.com/BilyiPJATK/librarystore/catalog/postgresengine/internal/adapters"
)

const (
	colID = "id"

	logMsgRowCreated   = "row created"
	logMsgRowUpdated   = "row updated"
	logMsgRowDeleted   = "row deleted"
	logMsgRowsFetched  = "rows fetched"
	logActionInsert    = "insert"
	logActionSelect    = "select"
	logActionUpdate    = "update"
	logActionDelete    = "delete"
	logAttrID          = "id"
	logAttrRowCount    = "row_count"
	errMsgNoIDReturned = "insert did not return a generated id"
)

// rowScanner is the part of a result row a table spec needs for scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// queryRunner is satisfied by both the plain adapter and an open transaction.
type queryRunner interface {
	Query(ctx context.Context, query string) (adapters.DBRows, error)
}

// execRunner is satisfied by both the plain adapter and an open transaction.
type execRunner interface {
	Exec(ctx context.Context, query string) (adapters.DBResult, error)
}

// tableSpec describes how one entity type maps onto its table: the
// table name, how a record is rendered for writes, and how a row is
// scanned back. The id column is owned by the database.
type tableSpec[T any] struct {
	table   string
	columns []string
	record  func(entity T) goqu.Record
	scan    func(row rowScanner) (T, error)
	id      func(entity T) int64
	setID   func(entity *T, id int64)
}

// selectColumns returns the id column followed by the table spec's
// columns, in the order the scan function expects them.
func (r repository[T]) selectColumns() []any {
	cols := make([]any, 0, len(r.spec.columns)+1)
	cols = append(cols, colID)

	for _, col := range r.spec.columns {
		cols = append(cols, col)
	}

	return cols
}

// repository implements the uniform CRUD contract for one entity type.
// Every entity-specific repository embeds it; none of them add
// entity-specific validation here, that belongs to the calling layer.
type repository[T any] struct {
	store *Store
	spec  tableSpec[T]
}

// Create persists the entity inside its own transaction and assigns the
// database-generated id on the passed entity. On any failure the
// transaction is rolled back and nothing is assigned.
func (r repository[T]) Create(ctx context.Context, entity *T) error {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(r.spec.table).
		Rows(r.spec.record(*entity)).
		Returning(colID)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	var id int64

	txErr := r.store.withinTransaction(ctx, func(tx adapters.DBTx) error {
		returnedID, found, err := r.store.queryOneInt64(ctx, tx, sqlQuery, logActionInsert)
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

	r.spec.setID(entity, id)
	r.store.logOperation(logMsgRowCreated, logAttrTable, r.spec.table, logAttrID, id)

	return nil
}

// GetByID returns the entity with the given id, or nil when absent.
// Pure read, no transaction; a missing row is not an error.
func (r repository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(r.spec.table).
		Select(r.selectColumns()...).
		Where(goqu.C(colID).Eq(id))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	entities, err := r.queryEntities(ctx, r.store.db, sqlQuery)
	if err != nil {
		return nil, err
	}

	if len(entities) == 0 {
		return nil, nil
	}

	return &entities[0], nil
}

// GetAll returns every row of the entity's table. Pure read, no transaction.
func (r repository[T]) GetAll(ctx context.Context) ([]T, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(r.spec.table).
		Select(r.selectColumns()...).
		Order(goqu.I(colID).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return r.queryEntities(ctx, r.store.db, sqlQuery)
}

// Update replaces the stored field values of the entity with the given
// ones inside its own transaction. Updating an absent row fails with
// catalog.ErrNotFound.
func (r repository[T]) Update(ctx context.Context, entity *T) error {
	id := r.spec.id(*entity)

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(r.spec.table).
		Set(r.spec.record(*entity)).
		Where(goqu.C(colID).Eq(id))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return r.store.withinTransaction(ctx, func(tx adapters.DBTx) error {
		rowsAffected, err := r.store.execStatement(ctx, tx, sqlQuery, logActionUpdate)
		if err != nil {
			return err
		}

		if rowsAffected == 0 {
			return catalog.ErrNotFound
		}

		r.store.logOperation(logMsgRowUpdated, logAttrTable, r.spec.table, logAttrID, id)

		return nil
	})
}

// DeleteByID removes the row with the given id inside its own
// transaction. Deleting an absent row is a successful no-op.
func (r repository[T]) DeleteByID(ctx context.Context, id int64) error {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(r.spec.table).
		Where(goqu.C(colID).Eq(id))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return r.store.withinTransaction(ctx, func(tx adapters.DBTx) error {
		rowsAffected, err := r.store.execStatement(ctx, tx, sqlQuery, logActionDelete)
		if err != nil {
			return err
		}

		r.store.logOperation(logMsgRowDeleted, logAttrTable, r.spec.table, logAttrID, id, logAttrRowsAffected, rowsAffected)

		return nil
	})
}

// queryEntities runs a select and scans every row with the table spec.
func (r repository[T]) queryEntities(ctx context.Context, runner queryRunner, sqlQuery string) ([]T, error) {
	start := time.Now()
	rows, queryErr := runner.Query(ctx, sqlQuery)
	duration := time.Since(start)
	r.store.logQueryWithDuration(sqlQuery, logActionSelect, duration)

	if queryErr != nil {
		r.store.logError(logMsgSQLExecuted+logActionSelect, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(catalog.ErrQueryFailed, queryErr)
	}
	defer r.store.closeRows(rows)

	entities := make([]T, 0)

	for rows.Next() {
		entity, scanErr := r.spec.scan(rows)
		if scanErr != nil {
			return nil, errors.Join(catalog.ErrScanningRowFailed, scanErr)
		}

		entities = append(entities, entity)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errors.Join(catalog.ErrQueryFailed, rowsErr)
	}

	r.store.logOperation(logMsgRowsFetched, logAttrTable, r.spec.table, logAttrRowCount, len(entities))

	return entities, nil
}

// execStatement runs a mutating statement and returns the affected row count.
func (s *Store) execStatement(ctx context.Context, runner execRunner, sqlQuery string, action string) (int64, error) {
	start := time.Now()
	result, execErr := runner.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(sqlQuery, action, duration)

	if execErr != nil {
		s.logError(logMsgSQLExecuted+action, execErr, logAttrQuery, sqlQuery)
		return 0, classifyDBError(execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return 0, errors.Join(catalog.ErrExecFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// queryOneInt64 runs a select expected to yield at most one integer value
// (a generated id, a count, a foreign key).
func (s *Store) queryOneInt64(ctx context.Context, runner queryRunner, sqlQuery string, action string) (int64, bool, error) {
	start := time.Now()
	rows, queryErr := runner.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(sqlQuery, action, duration)

	if queryErr != nil {
		s.logError(logMsgSQLExecuted+action, queryErr, logAttrQuery, sqlQuery)
		return 0, false, classifyDBError(queryErr)
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return 0, false, classifyDBError(rowsErr)
		}

		return 0, false, nil
	}

	var value int64
	if scanErr := rows.Scan(&value); scanErr != nil {
		return 0, false, errors.Join(catalog.ErrScanningRowFailed, scanErr)
	}

	return value, true, nil
}
