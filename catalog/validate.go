package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Validator collects field-level validation failures.
type Validator struct {
	Errors map[string]string
}

// NewValidator creates an empty Validator.
func NewValidator() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid reports whether no failures were recorded.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records a failure for a field, keeping the first message per field.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check records a failure for a field unless ok is true.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Err returns nil when valid, otherwise a *ValidationError wrapping ErrValidation.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}

	return &ValidationError{Fields: v.Errors}
}

// ValidationError carries per-field failure messages.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ValidateUser checks the fields required for registration and updates.
func ValidateUser(v *Validator, user User) {
	v.Check(strings.TrimSpace(user.Name) != "", "name", "must be provided")
	v.Check(strings.TrimSpace(user.Email) != "", "email", "must be provided")
	v.Check(strings.Contains(user.Email, "@"), "email", "must contain an @ sign")
	v.Check(strings.TrimSpace(user.PhoneNumber) != "", "phone_number", "must be provided")
	v.Check(strings.TrimSpace(user.Address) != "", "address", "must be provided")
}

// ValidatePublisher checks the fields of a publisher record.
func ValidatePublisher(v *Validator, publisher Publisher) {
	v.Check(strings.TrimSpace(publisher.Name) != "", "name", "must be provided")
	v.Check(strings.TrimSpace(publisher.Address) != "", "address", "must be provided")
	v.Check(strings.TrimSpace(publisher.PhoneNumber) != "", "phone_number", "must be provided")
}

// ValidateBook checks the fields of a catalog record.
func ValidateBook(v *Validator, book Book) {
	v.Check(strings.TrimSpace(book.Title) != "", "title", "must be provided")
	v.Check(strings.TrimSpace(book.Author) != "", "author", "must be provided")
	v.Check(book.PublicationYear > 0, "publication_year", "must be a positive year")
	v.Check(strings.TrimSpace(book.ISBN) != "", "isbn", "must be provided")
	v.Check(book.PublisherID > 0, "publisher_id", "must reference a publisher")
}

// ValidateCopy checks the fields of a physical copy.
func ValidateCopy(v *Validator, copy Copy) {
	v.Check(copy.BookID > 0, "book_id", "must reference a book")
	v.Check(copy.CopyNumber > 0, "copy_number", "must be a positive number")
	v.Check(copy.Status.IsValid(), "status", "must be one of Available, Borrowed, Damaged, Lost")
}

// ValidateBorrowing checks the fields of a loan record.
func ValidateBorrowing(v *Validator, borrowing Borrowing) {
	v.Check(borrowing.UserID > 0, "user_id", "must reference a user")
	v.Check(borrowing.CopyID > 0, "copy_id", "must reference a copy")
	v.Check(!borrowing.BorrowDate.IsZero(), "borrow_date", "must be provided")

	if borrowing.ReturnDate != nil {
		v.Check(!borrowing.ReturnDate.Before(borrowing.BorrowDate), "return_date", "must not be before the borrow date")
	}
}

// ValidateLibrarian checks the fields of a staff profile.
func ValidateLibrarian(v *Validator, librarian Librarian) {
	v.Check(librarian.UserID > 0, "user_id", "must reference a user")
	v.Check(!librarian.EmploymentDate.IsZero(), "employment_date", "must be provided")
	v.Check(librarian.Position.IsValid(), "position", "must be one of Manager, Desk, Archivist, Assistant")
}
