// Package postgresengine provides the Postgres-backed persistence
// engine for the library catalog.
//
// Every entity type gets a repository with the uniform CRUD contract
// (Create, GetByID, GetAll, Update, DeleteByID); reads run without a
// transaction, every mutating call runs inside its own transaction and
// rolls back on failure. The multi-table lifecycle operations
// (RegisterUser, BorrowCopy, ReturnCopy and the guarded deletes) each
// run as a single transaction with their preconditions enforced by
// conditional SQL, so the copy state machine
// Available -> Borrowed -> Available cannot be corrupted by concurrent
// callers.
//
// The engine can be constructed from a pgxpool.Pool, a sql.DB, or a
// sqlx.DB; all three are wrapped by the internal adapters package.
package postgresengine
