package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BilyiPJATK/librarystore/catalog"
	"github.com/BilyiPJATK/librarystore/service"
	. "github.com/BilyiPJATK/librarystore/testutil/pgtest"
)

func Test_RegisterUser_When_TheFieldsAreInvalid(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	svc := service.NewService(wrapper.GetStore())

	// act
	_, err := svc.RegisterUser(ctxWithTimeout, catalog.User{Name: "No Email"})

	// assert
	assert.ErrorIs(t, err, catalog.ErrValidation, "invalid fields must be rejected before any write")
}

func Test_Login_When_TheUserIsAMember(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()
	svc := service.NewService(store)

	// arrange
	user := GivenUser(t, ctxWithTimeout, store)

	// act
	loggedIn, isLibrarian, err := svc.Login(ctxWithTimeout, user.Email)

	// assert
	assert.NoError(t, err, "error logging in")
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.False(t, isLibrarian)
}

func Test_Login_When_TheUserIsALibrarian(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()
	svc := service.NewService(store)

	// arrange
	user := GivenUser(t, ctxWithTimeout, store)
	GivenLibrarian(t, ctxWithTimeout, store, user.ID)

	// act
	_, isLibrarian, err := svc.Login(ctxWithTimeout, user.Email)

	// assert
	assert.NoError(t, err, "error logging in")
	assert.True(t, isLibrarian)
}

func Test_Login_When_TheEmailIsUnknown(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	svc := service.NewService(wrapper.GetStore())

	// act
	_, _, err := svc.Login(ctxWithTimeout, "nobody@example.com")

	// assert
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func Test_BorrowCopy_When_TheBorrowDateIsMissing(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	svc := service.NewService(wrapper.GetStore())

	// act
	_, err := svc.BorrowCopy(ctxWithTimeout, 1, 1, time.Time{})

	// assert
	assert.ErrorIs(t, err, catalog.ErrValidation)
}

// The full circulation round trip: register, stock the catalog, borrow,
// check the views, return, and clean up the history.
func Test_Circulation_EndToEnd(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()
	svc := service.NewService(store)

	// arrange
	user, err := svc.RegisterUser(ctxWithTimeout, catalog.User{
		Name:        "Mat Doe",
		Email:       GivenUniqueEmail(t),
		PhoneNumber: "555-1234",
		Address:     "123 Main St.",
	})
	require.NoError(t, err, "error registering the user")

	publisher, err := svc.CreatePublisher(ctxWithTimeout, catalog.Publisher{
		Name:        "Penguin Books",
		Address:     "123 Penguin St.",
		PhoneNumber: "555-1322",
	})
	require.NoError(t, err, "error creating the publisher")

	book, err := svc.CreateBook(ctxWithTimeout, catalog.Book{
		Title:           "The Great Gatsby",
		Author:          "F. Scott Fitzgerald",
		PublicationYear: 1925,
		ISBN:            "978-0743273565",
		PublisherID:     publisher.ID,
	})
	require.NoError(t, err, "error creating the book")

	copy, err := svc.CreateCopy(ctxWithTimeout, catalog.Copy{
		BookID:     book.ID,
		CopyNumber: 1,
		Status:     catalog.CopyStatusAvailable,
	})
	require.NoError(t, err, "error creating the copy")

	// act + assert: the stocked book shows up as available
	available, err := svc.AvailableBooks(ctxWithTimeout)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, book.ID, available[0].ID)

	// act + assert: borrowing takes the book off the shelf
	borrowing, err := svc.BorrowCopy(ctxWithTimeout, user.ID, copy.ID, GivenDate(t, "2026-08-01"))
	require.NoError(t, err, "error borrowing the copy")
	assert.True(t, borrowing.IsOpen())

	available, err = svc.AvailableBooks(ctxWithTimeout)
	require.NoError(t, err)
	assert.Empty(t, available)

	borrowed, err := svc.BorrowedBooks(ctxWithTimeout, user.ID)
	require.NoError(t, err)
	require.Len(t, borrowed, 1)
	assert.Equal(t, book.Title, borrowed[0].Title)
	assert.Nil(t, borrowed[0].ReturnDate)

	// act + assert: the user cannot be deleted while history exists
	err = svc.DeleteUser(ctxWithTimeout, user.ID)
	assert.ErrorIs(t, err, catalog.ErrUserHasBorrowings)

	// act + assert: returning puts the book back on the shelf
	returned, err := svc.ReturnCopy(ctxWithTimeout, borrowing.ID, GivenDate(t, "2026-08-15"))
	require.NoError(t, err, "error returning the copy")
	assert.False(t, returned.IsOpen())

	available, err = svc.AvailableBooks(ctxWithTimeout)
	require.NoError(t, err)
	require.Len(t, available, 1)

	// act + assert: with the loan closed the history can be purged and
	// the user deleted
	err = svc.DeleteBorrowing(ctxWithTimeout, borrowing.ID)
	require.NoError(t, err, "error deleting the borrowing")

	err = svc.DeleteUser(ctxWithTimeout, user.ID)
	assert.NoError(t, err, "error deleting the user")
}

func Test_DeleteBook_When_ACopyIsStillOut(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()
	svc := service.NewService(store)

	// arrange
	user := GivenUser(t, ctxWithTimeout, store)
	publisher := GivenPublisher(t, ctxWithTimeout, store)
	book := GivenBook(t, ctxWithTimeout, store, publisher.ID)
	copy := GivenCopy(t, ctxWithTimeout, store, book.ID)
	GivenOpenBorrowing(t, ctxWithTimeout, store, user.ID, copy.ID)

	// act
	err := svc.DeleteBook(ctxWithTimeout, book.ID)

	// assert
	assert.ErrorIs(t, err, catalog.ErrBookHasOpenLoans)
}

func Test_CreateLibrarian_When_TheFieldsAreInvalid(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	svc := service.NewService(wrapper.GetStore())

	// act
	_, err := svc.CreateLibrarian(ctxWithTimeout, catalog.Librarian{UserID: 1, Position: "Intern"})

	// assert
	assert.ErrorIs(t, err, catalog.ErrValidation)
}

func Test_ListCopies_When_RestrictedToOneBook(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()
	svc := service.NewService(store)

	// arrange
	publisher := GivenPublisher(t, ctxWithTimeout, store)
	book1 := GivenBook(t, ctxWithTimeout, store, publisher.ID)
	book2 := GivenBook(t, ctxWithTimeout, store, publisher.ID)
	GivenCopy(t, ctxWithTimeout, store, book1.ID)
	GivenCopy(t, ctxWithTimeout, store, book2.ID)

	// act
	all, err := svc.ListCopies(ctxWithTimeout, 0)
	restricted, restrictedErr := svc.ListCopies(ctxWithTimeout, book1.ID)

	// assert
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NoError(t, restrictedErr)
	assert.Len(t, restricted, 1)
}
