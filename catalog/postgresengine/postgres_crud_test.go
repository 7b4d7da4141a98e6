package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BilyiPJATK/librarystore/catalog"
	. "github.com/BilyiPJATK/librarystore/testutil/pgtest"
)

func Test_Create_And_GetByID_RoundTrip(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	publisher := GivenPublisher(t, ctxWithTimeout, store)
	book := GivenBook(t, ctxWithTimeout, store, publisher.ID)

	// act
	loaded, err := store.Books().GetByID(ctxWithTimeout, book.ID)

	// assert
	assert.NoError(t, err, "error loading the book")
	assert.NotNil(t, loaded)
	assert.Equal(t, book, *loaded)
}

func Test_GetByID_When_TheRowIsAbsent(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// act
	loaded, err := store.Users().GetByID(ctxWithTimeout, 424242)

	// assert
	assert.NoError(t, err, "an absent row is not an error")
	assert.Nil(t, loaded)
}

func Test_GetAll_Returns_AllRows_InInsertionOrder(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	first := GivenPublisher(t, ctxWithTimeout, store)
	second := GivenPublisher(t, ctxWithTimeout, store)

	// act
	publishers, err := store.Publishers().GetAll(ctxWithTimeout)

	// assert
	assert.NoError(t, err, "error listing publishers")
	assert.Len(t, publishers, 2)
	assert.Equal(t, first.ID, publishers[0].ID)
	assert.Equal(t, second.ID, publishers[1].ID)
}

func Test_Update_Modifies_TheStoredRow(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	user := GivenUser(t, ctxWithTimeout, store)
	user.Address = "New Address 7, Krakow"

	// act: applying the same update twice must land in the same state
	err := store.Users().Update(ctxWithTimeout, &user)
	assert.NoError(t, err, "error updating the user")
	err = store.Users().Update(ctxWithTimeout, &user)

	// assert
	assert.NoError(t, err, "error re-applying the update")

	loaded, err := store.Users().GetByID(ctxWithTimeout, user.ID)
	assert.NoError(t, err, "error loading the user")
	assert.Equal(t, user, *loaded)
}

func Test_Update_When_TheRowIsAbsent(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	ghost := catalog.Publisher{ID: 424242, Name: "Nobody", Address: "Nowhere", PhoneNumber: "555-0000"}

	// act
	err := store.Publishers().Update(ctxWithTimeout, &ghost)

	// assert
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func Test_DeleteByID_When_TheRowIsAbsent(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// act
	err := store.Publishers().DeleteByID(ctxWithTimeout, 424242)

	// assert
	assert.NoError(t, err, "deleting an absent row is a no-op")
}

func Test_DeleteByID_Removes_TheRow(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	publisher := GivenPublisher(t, ctxWithTimeout, store)

	// act
	err := store.Publishers().DeleteByID(ctxWithTimeout, publisher.ID)

	// assert
	assert.NoError(t, err, "error deleting the publisher")

	loaded, err := store.Publishers().GetByID(ctxWithTimeout, publisher.ID)
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func Test_FindByEmail_When_TheUserExists(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	user := GivenUser(t, ctxWithTimeout, store)

	// act
	found, err := store.Users().FindByEmail(ctxWithTimeout, user.Email)

	// assert
	assert.NoError(t, err, "error finding the user")
	assert.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
}

func Test_FindByEmail_When_TheEmailIsUnknown(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// act
	found, err := store.Users().FindByEmail(ctxWithTimeout, "nobody@example.com")

	// assert
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func Test_Available_Returns_OnlyBooks_WithAvailableCopies(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	publisher := GivenPublisher(t, ctxWithTimeout, store)
	lendable := GivenBook(t, ctxWithTimeout, store, publisher.ID)
	GivenCopy(t, ctxWithTimeout, store, lendable.ID)

	allOut := GivenBook(t, ctxWithTimeout, store, publisher.ID)
	borrowedCopy := GivenCopy(t, ctxWithTimeout, store, allOut.ID)
	user := GivenUser(t, ctxWithTimeout, store)
	GivenOpenBorrowing(t, ctxWithTimeout, store, user.ID, borrowedCopy.ID)

	noCopies := GivenBook(t, ctxWithTimeout, store, publisher.ID)
	_ = noCopies

	// act
	available, err := store.Books().Available(ctxWithTimeout)

	// assert
	assert.NoError(t, err, "error listing available books")
	assert.Len(t, available, 1)
	assert.Equal(t, lendable.ID, available[0].ID)
}

func Test_ForBook_Returns_OnlyCopies_OfThatBook(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	publisher := GivenPublisher(t, ctxWithTimeout, store)
	book1 := GivenBook(t, ctxWithTimeout, store, publisher.ID)
	book2 := GivenBook(t, ctxWithTimeout, store, publisher.ID)
	copy1 := GivenCopy(t, ctxWithTimeout, store, book1.ID)
	GivenCopy(t, ctxWithTimeout, store, book2.ID)

	// act
	copies, err := store.Copies().ForBook(ctxWithTimeout, book1.ID)

	// assert
	assert.NoError(t, err, "error listing copies")
	assert.Len(t, copies, 1)
	assert.Equal(t, copy1.ID, copies[0].ID)
}

func Test_List_Borrowings_With_OpenOnlyFilter(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	user := GivenUser(t, ctxWithTimeout, store)
	closedCopy := GivenLendableCopy(t, ctxWithTimeout, store)
	closed := GivenOpenBorrowing(t, ctxWithTimeout, store, user.ID, closedCopy.ID)
	_, err := store.ReturnCopy(ctxWithTimeout, closed.ID, GivenDate(t, "2026-08-10"))
	assert.NoError(t, err, "error in arranging test data")

	openCopy := GivenLendableCopy(t, ctxWithTimeout, store)
	open := GivenOpenBorrowing(t, ctxWithTimeout, store, user.ID, openCopy.ID)

	filter := catalog.BuildBorrowingFilter().ForUser(user.ID).OpenOnly().Finalize()

	// act
	borrowings, err := store.Borrowings().List(ctxWithTimeout, filter)

	// assert
	assert.NoError(t, err, "error listing borrowings")
	assert.Len(t, borrowings, 1)
	assert.Equal(t, open.ID, borrowings[0].ID)
	assert.True(t, borrowings[0].IsOpen())
}

func Test_List_Borrowings_With_BorrowDateWindow(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	user := GivenUser(t, ctxWithTimeout, store)

	earlyCopy := GivenLendableCopy(t, ctxWithTimeout, store)
	early, err := store.BorrowCopy(ctxWithTimeout, user.ID, earlyCopy.ID, GivenDate(t, "2026-01-10"))
	assert.NoError(t, err, "error in arranging test data")
	_ = early

	lateCopy := GivenLendableCopy(t, ctxWithTimeout, store)
	late, err := store.BorrowCopy(ctxWithTimeout, user.ID, lateCopy.ID, GivenDate(t, "2026-06-10"))
	assert.NoError(t, err, "error in arranging test data")

	filter := catalog.BuildBorrowingFilter().
		BorrowedFrom(GivenDate(t, "2026-05-01")).
		BorrowedUntil(GivenDate(t, "2026-07-01")).
		Finalize()

	// act
	borrowings, err := store.Borrowings().List(ctxWithTimeout, filter)

	// assert
	assert.NoError(t, err, "error listing borrowings")
	assert.Len(t, borrowings, 1)
	assert.Equal(t, late.ID, borrowings[0].ID)
}

func Test_BorrowedBooks_Returns_TitlesWithLoanDates(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	user := GivenUser(t, ctxWithTimeout, store)
	publisher := GivenPublisher(t, ctxWithTimeout, store)
	book := GivenBook(t, ctxWithTimeout, store, publisher.ID)
	copy := GivenCopy(t, ctxWithTimeout, store, book.ID)

	borrowing := GivenOpenBorrowing(t, ctxWithTimeout, store, user.ID, copy.ID)

	// act
	borrowed, err := store.Borrowings().BorrowedBooks(ctxWithTimeout, user.ID)

	// assert
	assert.NoError(t, err, "error listing borrowed books")
	assert.Len(t, borrowed, 1)
	assert.Equal(t, book.Title, borrowed[0].Title)
	assert.Equal(t, catalog.FormatDate(borrowing.BorrowDate), catalog.FormatDate(borrowed[0].BorrowDate))
	assert.Nil(t, borrowed[0].ReturnDate)
}

func Test_FindByUserID_Returns_TheStaffProfile(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapper(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	user := GivenUser(t, ctxWithTimeout, store)
	librarian := GivenLibrarian(t, ctxWithTimeout, store, user.ID)

	// act
	found, err := store.Librarians().FindByUserID(ctxWithTimeout, user.ID)

	// assert
	assert.NoError(t, err, "error finding the staff profile")
	assert.NotNil(t, found)
	assert.Equal(t, librarian.ID, found.ID)
	assert.Equal(t, catalog.PositionDesk, found.Position)
}
