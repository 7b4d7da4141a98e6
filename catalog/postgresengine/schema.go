package postgresengine

import (
	"context"
	"errors"

	"github.com/BilyiPJATK/librarystore/catalog"
)

const logMsgSchemaEnsured = "schema ensured"

// schemaStatements creates the six tables of the library schema.
// Identity columns are BIGSERIAL; every foreign key is RESTRICT so the
// lifecycle guards in lifecycle.go are backed by the database itself.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS publishers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		phonenumber TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phonenumber TEXT NOT NULL,
		address TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		publicationyear INT NOT NULL,
		isbn TEXT NOT NULL,
		publisherid BIGINT NOT NULL REFERENCES publishers (id)
	)`,
	`CREATE TABLE IF NOT EXISTS copies (
		id BIGSERIAL PRIMARY KEY,
		bookid BIGINT NOT NULL REFERENCES books (id),
		copynumber INT NOT NULL,
		status TEXT NOT NULL
			CHECK (status IN ('Available', 'Borrowed', 'Damaged', 'Lost'))
	)`,
	`CREATE TABLE IF NOT EXISTS borrowings (
		id BIGSERIAL PRIMARY KEY,
		userid BIGINT NOT NULL REFERENCES users (id),
		copyid BIGINT NOT NULL REFERENCES copies (id),
		borrowdate DATE NOT NULL,
		returndate DATE
	)`,
	`CREATE TABLE IF NOT EXISTS librarians (
		id BIGSERIAL PRIMARY KEY,
		userid BIGINT NOT NULL UNIQUE REFERENCES users (id),
		employmentdate DATE NOT NULL,
		position TEXT NOT NULL
			CHECK (position IN ('Manager', 'Desk', 'Archivist', 'Assistant'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_copies_bookid ON copies (bookid)`,
	`CREATE INDEX IF NOT EXISTS idx_borrowings_userid ON borrowings (userid)`,
	`CREATE INDEX IF NOT EXISTS idx_borrowings_open_copy
		ON borrowings (copyid) WHERE returndate IS NULL`,
}

// EnsureSchema creates the library tables and indexes if they do not
// exist yet. Safe to run at every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, statement := range schemaStatements {
		if _, err := s.db.Exec(ctx, statement); err != nil {
			s.logError(logMsgSQLExecuted+"migrate", err, logAttrQuery, statement)
			return errors.Join(catalog.ErrExecFailed, err)
		}
	}

	s.logOperation(logMsgSchemaEnsured)

	return nil
}
