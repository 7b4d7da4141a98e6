package catalog_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BilyiPJATK/librarystore/catalog"
)

func validUser() catalog.User {
	return catalog.User{
		Name:        "Mat Doe",
		Email:       "mat1@gmail.com",
		PhoneNumber: "555-1234",
		Address:     "123 Main St.",
	}
}

func Test_ValidateUser_When_AllFieldsArePresent(t *testing.T) {
	// arrange
	v := catalog.NewValidator()

	// act
	catalog.ValidateUser(v, validUser())

	// assert
	assert.NoError(t, v.Err())
}

func Test_ValidateUser_When_EmailHasNoAtSign(t *testing.T) {
	// arrange
	v := catalog.NewValidator()
	user := validUser()
	user.Email = "mat1.gmail.com"

	// act
	catalog.ValidateUser(v, user)
	err := v.Err()

	// assert
	assert.ErrorIs(t, err, catalog.ErrValidation)

	var validationErr *catalog.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "email")
}

func Test_ValidateUser_When_AllFieldsAreBlank(t *testing.T) {
	// arrange
	v := catalog.NewValidator()

	// act
	catalog.ValidateUser(v, catalog.User{Name: "   "})
	err := v.Err()

	// assert
	var validationErr *catalog.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "name")
	assert.Contains(t, validationErr.Fields, "email")
	assert.Contains(t, validationErr.Fields, "phone_number")
	assert.Contains(t, validationErr.Fields, "address")
}

func Test_ValidateBook_When_PublisherReferenceIsMissing(t *testing.T) {
	// arrange
	v := catalog.NewValidator()
	book := catalog.Book{
		Title:           "1984",
		Author:          "George Orwell",
		PublicationYear: 1949,
		ISBN:            "978-0451524935",
	}

	// act
	catalog.ValidateBook(v, book)
	err := v.Err()

	// assert
	var validationErr *catalog.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "publisher_id")
}

func Test_ValidateCopy_When_StatusIsOutsideTheClosedSet(t *testing.T) {
	// arrange
	v := catalog.NewValidator()
	copy := catalog.Copy{BookID: 1, CopyNumber: 7, Status: "Misplaced"}

	// act
	catalog.ValidateCopy(v, copy)
	err := v.Err()

	// assert
	var validationErr *catalog.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "status")
}

func Test_ValidateBorrowing_When_ReturnDateIsBeforeBorrowDate(t *testing.T) {
	// arrange
	v := catalog.NewValidator()
	borrowDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	returnDate := borrowDate.AddDate(0, 0, -1)
	borrowing := catalog.Borrowing{UserID: 1, CopyID: 1, BorrowDate: borrowDate, ReturnDate: &returnDate}

	// act
	catalog.ValidateBorrowing(v, borrowing)
	err := v.Err()

	// assert
	var validationErr *catalog.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "return_date")
}

func Test_ValidateBorrowing_When_ReturnDateEqualsBorrowDate(t *testing.T) {
	// arrange
	v := catalog.NewValidator()
	borrowDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	returnDate := borrowDate
	borrowing := catalog.Borrowing{UserID: 1, CopyID: 1, BorrowDate: borrowDate, ReturnDate: &returnDate}

	// act
	catalog.ValidateBorrowing(v, borrowing)

	// assert
	assert.NoError(t, v.Err())
}

func Test_ValidateLibrarian_When_PositionIsOutsideTheClosedSet(t *testing.T) {
	// arrange
	v := catalog.NewValidator()
	librarian := catalog.Librarian{
		UserID:         1,
		EmploymentDate: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC),
		Position:       "Intern",
	}

	// act
	catalog.ValidateLibrarian(v, librarian)
	err := v.Err()

	// assert
	var validationErr *catalog.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "position")
}

func Test_Validator_AddError_KeepsTheFirstMessagePerField(t *testing.T) {
	// arrange
	v := catalog.NewValidator()

	// act
	v.AddError("email", "must be provided")
	v.AddError("email", "must contain an @ sign")
	err := v.Err()

	// assert
	var validationErr *catalog.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "must be provided", validationErr.Fields["email"])
}

func Test_ValidationError_Error_ListsFieldsInStableOrder(t *testing.T) {
	// arrange
	validationErr := &catalog.ValidationError{Fields: map[string]string{
		"name":  "must be provided",
		"email": "must be provided",
	}}

	// assert
	assert.Equal(t, "validation failed: email: must be provided; name: must be provided", validationErr.Error())
}
