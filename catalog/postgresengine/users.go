package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/BilyiPJATK/librarystore/catalog"
)

const (
	tableUsers     = "users"
	colName        = "name"
	colEmail       = "email"
	colPhoneNumber = "phonenumber"
	colAddress     = "address"
)

var userTable = tableSpec[catalog.User]{
	table:   tableUsers,
	columns: []string{colName, colEmail, colPhoneNumber, colAddress},
	record: func(user catalog.User) goqu.Record {
		return goqu.Record{
			colName:        user.Name,
			colEmail:       user.Email,
			colPhoneNumber: user.PhoneNumber,
			colAddress:     user.Address,
		}
	},
	scan: func(row rowScanner) (catalog.User, error) {
		var user catalog.User
		err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PhoneNumber, &user.Address)

		return user, err
	},
	id:    func(user catalog.User) int64 { return user.ID },
	setID: func(user *catalog.User, id int64) { user.ID = id },
}

// UserRepository provides CRUD for user records plus the email lookup
// the login and registration paths need.
type UserRepository struct {
	repository[catalog.User]
}

// FindByEmail returns the user with the given email, or nil when absent.
func (r UserRepository) FindByEmail(ctx context.Context, email string) (*catalog.User, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(r.spec.table).
		Select(r.selectColumns()...).
		Where(goqu.C(colEmail).Eq(email))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	users, err := r.queryEntities(ctx, r.store.db, sqlQuery)
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, nil
	}

	return &users[0], nil
}
