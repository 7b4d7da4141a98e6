package catalog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BilyiPJATK/librarystore/catalog"
)

func Test_ParseDate_When_ValueIsWellFormed(t *testing.T) {
	// act
	parsed, err := catalog.ParseDate("2026-08-15")

	// assert
	assert.NoError(t, err, "error parsing a well-formed date")
	assert.Equal(t, 2026, parsed.Year())
	assert.Equal(t, time.August, parsed.Month())
	assert.Equal(t, 15, parsed.Day())
	assert.Equal(t, time.UTC, parsed.Location())
}

func Test_ParseDate_When_ValueIsMalformed(t *testing.T) {
	// act
	_, err := catalog.ParseDate("15.08.2026")

	// assert
	assert.ErrorIs(t, err, catalog.ErrValidation)
}

func Test_FormatDate_RoundTrips_With_ParseDate(t *testing.T) {
	// arrange
	parsed, err := catalog.ParseDate("2026-01-02")
	assert.NoError(t, err, "error in arranging test data")

	// act
	formatted := catalog.FormatDate(parsed)

	// assert
	assert.Equal(t, "2026-01-02", formatted)
}

func Test_CopyStatus_IsValid(t *testing.T) {
	// assert
	assert.True(t, catalog.CopyStatusAvailable.IsValid())
	assert.True(t, catalog.CopyStatusBorrowed.IsValid())
	assert.True(t, catalog.CopyStatusDamaged.IsValid())
	assert.True(t, catalog.CopyStatusLost.IsValid())
	assert.False(t, catalog.CopyStatus("Misplaced").IsValid())
	assert.False(t, catalog.CopyStatus("").IsValid())
}

func Test_Position_IsValid(t *testing.T) {
	// assert
	assert.True(t, catalog.PositionManager.IsValid())
	assert.True(t, catalog.PositionDesk.IsValid())
	assert.True(t, catalog.PositionArchivist.IsValid())
	assert.True(t, catalog.PositionAssistant.IsValid())
	assert.False(t, catalog.Position("Intern").IsValid())
}

func Test_Borrowing_IsOpen_When_ReturnDateIsNil(t *testing.T) {
	// arrange
	borrowing := catalog.Borrowing{BorrowDate: time.Now()}

	// assert
	assert.True(t, borrowing.IsOpen())
}

func Test_Borrowing_IsOpen_When_ReturnDateIsSet(t *testing.T) {
	// arrange
	returnDate := time.Now()
	borrowing := catalog.Borrowing{BorrowDate: returnDate.AddDate(0, 0, -7), ReturnDate: &returnDate}

	// assert
	assert.False(t, borrowing.IsOpen())
}
