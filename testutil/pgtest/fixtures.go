package pgtest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BilyiPJATK/librarystore/catalog"
	"github.com/BilyiPJATK/librarystore/catalog/postgresengine"
)

// GivenUniqueEmail generates an email address that is unique within a
// test run.
func GivenUniqueEmail(t testing.TB) string {
	t.Helper()

	return fmt.Sprintf("reader-%d-%d@example.com", time.Now().UnixNano(), rand.IntN(100_000))
}

// GivenUser registers a user with a unique email.
func GivenUser(t testing.TB, ctx context.Context, store *postgresengine.Store) catalog.User {
	t.Helper()

	user := catalog.User{
		Name:        "Ivan Bilyi",
		Email:       GivenUniqueEmail(t),
		PhoneNumber: "+48 123 456 789",
		Address:     "Koszykowa 86, Warsaw",
	}

	err := store.RegisterUser(ctx, &user)
	require.NoError(t, err, "error in arranging test data")

	return user
}

// GivenPublisher creates a publisher record.
func GivenPublisher(t testing.TB, ctx context.Context, store *postgresengine.Store) catalog.Publisher {
	t.Helper()

	publisher := catalog.Publisher{
		Name:        "Helion",
		Address:     "Kosciuszki 1c, Gliwice",
		PhoneNumber: "+48 32 230 98 63",
	}

	err := store.Publishers().Create(ctx, &publisher)
	require.NoError(t, err, "error in arranging test data")

	return publisher
}

// GivenBook creates a book under the given publisher.
func GivenBook(t testing.TB, ctx context.Context, store *postgresengine.Store, publisherID int64) catalog.Book {
	t.Helper()

	book := catalog.Book{
		Title:           "Learning Domain-Driven Design",
		Author:          "Vlad Khononov",
		PublicationYear: 2021,
		ISBN:            "978-1-098-10013-1",
		PublisherID:     publisherID,
	}

	err := store.Books().Create(ctx, &book)
	require.NoError(t, err, "error in arranging test data")

	return book
}

// GivenCopy creates an available copy of the given book.
func GivenCopy(t testing.TB, ctx context.Context, store *postgresengine.Store, bookID int64) catalog.Copy {
	t.Helper()

	copy := catalog.Copy{
		BookID:     bookID,
		CopyNumber: 1,
		Status:     catalog.CopyStatusAvailable,
	}

	err := store.Copies().Create(ctx, &copy)
	require.NoError(t, err, "error in arranging test data")

	return copy
}

// GivenLendableCopy creates a publisher, a book and one available copy
// in one call and returns the copy.
func GivenLendableCopy(t testing.TB, ctx context.Context, store *postgresengine.Store) catalog.Copy {
	t.Helper()

	publisher := GivenPublisher(t, ctx, store)
	book := GivenBook(t, ctx, store, publisher.ID)

	return GivenCopy(t, ctx, store, book.ID)
}

// GivenOpenBorrowing borrows the given copy for the given user.
func GivenOpenBorrowing(
	t testing.TB,
	ctx context.Context,
	store *postgresengine.Store,
	userID int64,
	copyID int64,
) catalog.Borrowing {
	t.Helper()

	borrowing, err := store.BorrowCopy(ctx, userID, copyID, GivenDate(t, "2026-08-01"))
	require.NoError(t, err, "error in arranging test data")

	return *borrowing
}

// GivenLibrarian attaches a staff profile to the given user.
func GivenLibrarian(t testing.TB, ctx context.Context, store *postgresengine.Store, userID int64) catalog.Librarian {
	t.Helper()

	librarian := catalog.Librarian{
		UserID:         userID,
		EmploymentDate: GivenDate(t, "2020-01-15"),
		Position:       catalog.PositionDesk,
	}

	err := store.Librarians().Create(ctx, &librarian)
	require.NoError(t, err, "error in arranging test data")

	return librarian
}

// GivenDate parses a yyyy-MM-dd date for test data.
func GivenDate(t testing.TB, value string) time.Time {
	t.Helper()

	date, err := catalog.ParseDate(value)
	require.NoError(t, err, "error in arranging test data")

	return date
}
