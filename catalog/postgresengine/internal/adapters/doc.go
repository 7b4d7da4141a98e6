// Package adapters wraps the supported database access technologies
// (pgxpool.Pool, sql.DB, sqlx.DB) behind one small interface so the
// engine can build and run its queries without knowing which driver
// stack is underneath.
package adapters
