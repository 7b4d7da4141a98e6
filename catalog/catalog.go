// Package catalog defines the entity model of the library system:
// users, publishers, books, copies, borrowings and librarian profiles,
// together with the error taxonomy and field validation shared by every
// storage engine and caller.
package catalog

import (
	"time"
)

// DateLayout is the wire format for all date fields (borrow dates,
// return dates, employment dates).
const DateLayout = "2006-01-02"

// ParseDate parses a yyyy-MM-dd string into a UTC date.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, errWithValidation("date must be in yyyy-MM-dd format")
	}

	return parsed, nil
}

// FormatDate renders a date in yyyy-MM-dd format.
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// CopyStatus is the lending state of a single physical copy.
type CopyStatus string

const (
	CopyStatusAvailable CopyStatus = "Available"
	CopyStatusBorrowed  CopyStatus = "Borrowed"
	CopyStatusDamaged   CopyStatus = "Damaged"
	CopyStatusLost      CopyStatus = "Lost"
)

// IsValid reports whether the status is one of the closed set of copy states.
func (s CopyStatus) IsValid() bool {
	switch s {
	case CopyStatusAvailable, CopyStatusBorrowed, CopyStatusDamaged, CopyStatusLost:
		return true
	default:
		return false
	}
}

// Position is the role of a librarian within the library.
type Position string

const (
	PositionManager   Position = "Manager"
	PositionDesk      Position = "Desk"
	PositionArchivist Position = "Archivist"
	PositionAssistant Position = "Assistant"
)

// IsValid reports whether the position is one of the closed set of roles.
func (p Position) IsValid() bool {
	switch p {
	case PositionManager, PositionDesk, PositionArchivist, PositionAssistant:
		return true
	default:
		return false
	}
}

// User is a registered member of the library.
// Email is unique across all users.
type User struct {
	ID          int64
	Name        string
	Email       string
	PhoneNumber string
	Address     string
}

// Publisher is the publishing house of one or more cataloged books.
type Publisher struct {
	ID          int64
	Name        string
	Address     string
	PhoneNumber string
}

// Book is a catalog record; the lendable units are its copies.
type Book struct {
	ID              int64
	Title           string
	Author          string
	PublicationYear int
	ISBN            string
	PublisherID     int64
}

// Copy is a physical, lendable instance of a book.
type Copy struct {
	ID         int64
	BookID     int64
	CopyNumber int
	Status     CopyStatus
}

// Borrowing records one loan of a copy to a user.
// A nil ReturnDate means the copy is still out.
type Borrowing struct {
	ID         int64
	UserID     int64
	CopyID     int64
	BorrowDate time.Time
	ReturnDate *time.Time
}

// IsOpen reports whether the copy has not been returned yet.
func (b Borrowing) IsOpen() bool {
	return b.ReturnDate == nil
}

// Librarian is the staff profile attached to exactly one user.
type Librarian struct {
	ID             int64
	UserID         int64
	EmploymentDate time.Time
	Position       Position
}

// BorrowedBook is one row of the "books borrowed by a user" view:
// the joined book title with the loan dates.
type BorrowedBook struct {
	Title      string
	BorrowDate time.Time
	ReturnDate *time.Time
}
