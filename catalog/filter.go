package catalog

import (
	"time"
)

type openStateFilter int

const (
	anyOpenState openStateFilter = iota
	openOnly
	closedOnly
)

// BorrowingFilter narrows borrowing listings to one user, one copy,
// open or closed loans, and a borrow-date window. The zero value
// matches every borrowing.
type BorrowingFilter struct {
	userID        int64
	copyID        int64
	openState     openStateFilter
	borrowedFrom  time.Time
	borrowedUntil time.Time
}

// UserID returns the user restriction, 0 when unset.
func (f BorrowingFilter) UserID() int64 {
	return f.userID
}

// CopyID returns the copy restriction, 0 when unset.
func (f BorrowingFilter) CopyID() int64 {
	return f.copyID
}

// OpenOnly reports whether only open loans (return date null) match.
func (f BorrowingFilter) OpenOnly() bool {
	return f.openState == openOnly
}

// ClosedOnly reports whether only closed loans match.
func (f BorrowingFilter) ClosedOnly() bool {
	return f.openState == closedOnly
}

// BorrowedFrom returns the lower bound of the borrow-date window, zero when unset.
func (f BorrowingFilter) BorrowedFrom() time.Time {
	return f.borrowedFrom
}

// BorrowedUntil returns the upper bound of the borrow-date window, zero when unset.
func (f BorrowingFilter) BorrowedUntil() time.Time {
	return f.borrowedUntil
}

// BorrowingFilterBuilder builds a BorrowingFilter to be used by DB
// type-specific engine implementations when listing loans.
// Conflicting restrictions are resolved last-call-wins.
type BorrowingFilterBuilder struct {
	filter BorrowingFilter
}

// BuildBorrowingFilter starts a new filter matching every borrowing.
func BuildBorrowingFilter() *BorrowingFilterBuilder {
	return &BorrowingFilterBuilder{}
}

// ForUser restricts the filter to one user's loans. Non-positive IDs are ignored.
func (b *BorrowingFilterBuilder) ForUser(userID int64) *BorrowingFilterBuilder {
	if userID > 0 {
		b.filter.userID = userID
	}

	return b
}

// ForCopy restricts the filter to loans of one copy. Non-positive IDs are ignored.
func (b *BorrowingFilterBuilder) ForCopy(copyID int64) *BorrowingFilterBuilder {
	if copyID > 0 {
		b.filter.copyID = copyID
	}

	return b
}

// OpenOnly restricts the filter to loans that have not been returned.
func (b *BorrowingFilterBuilder) OpenOnly() *BorrowingFilterBuilder {
	b.filter.openState = openOnly
	return b
}

// ClosedOnly restricts the filter to loans with a return date.
func (b *BorrowingFilterBuilder) ClosedOnly() *BorrowingFilterBuilder {
	b.filter.openState = closedOnly
	return b
}

// BorrowedFrom restricts the filter to loans borrowed on or after the given date.
func (b *BorrowingFilterBuilder) BorrowedFrom(date time.Time) *BorrowingFilterBuilder {
	b.filter.borrowedFrom = date
	return b
}

// BorrowedUntil restricts the filter to loans borrowed on or before the given date.
func (b *BorrowingFilterBuilder) BorrowedUntil(date time.Time) *BorrowingFilterBuilder {
	b.filter.borrowedUntil = date
	return b
}

// Finalize returns the built filter.
func (b *BorrowingFilterBuilder) Finalize() BorrowingFilter {
	return b.filter
}
