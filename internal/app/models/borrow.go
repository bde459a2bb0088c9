package models

import (
	"time"
)

// BorrowRecord defines the borrow ledger entry based on the 'borrow_records'
// table. Records are append-only; a completed cycle is never reused, a new
// borrow creates a new record.
type BorrowRecord struct {
	ID                int64        `json:"id" db:"id"`
	BookID            int64        `json:"bookId" db:"book_id"`
	UserEmail         string       `json:"userEmail" db:"user_email"`
	Status            BorrowStatus `json:"status" db:"status"`
	BorrowDate        time.Time    `json:"borrowDate" db:"borrow_date"`
	ReturnDate        time.Time    `json:"returnDate" db:"return_date"` // Expected-by date derived from the loan duration
	RequestDate       *time.Time   `json:"requestDate,omitempty" db:"request_date"`
	BorrowConfirmedAt *time.Time   `json:"borrowConfirmedAt,omitempty" db:"borrow_confirmed_at"`
	ReturnConfirmedAt *time.Time   `json:"returnConfirmedAt,omitempty" db:"return_confirmed_at"`

	// Joined summaries, populated by list queries
	Book *BookSummary `json:"book,omitempty"`
	User *UserSummary `json:"user,omitempty"`
}

// BookSummary is the book projection joined onto ledger listings
type BookSummary struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	ShelfNo  string `json:"shelfNo"`
}

// UserSummary is the user projection joined onto admin ledger listings
type UserSummary struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// DayActivity is one sparse bucket of the daily activity aggregation.
// Day is a UTC calendar day formatted YYYY-MM-DD.
type DayActivity struct {
	Day           string `json:"day"`
	Borrowed      int64  `json:"borrowed"`
	PendingBorrow int64  `json:"pendingBorrow"`
	Returned      int64  `json:"returned"`
}

// LedgerStats holds ledger-wide counters per lifecycle state
type LedgerStats struct {
	Total         int64 `json:"total"`
	PendingBorrow int64 `json:"pendingBorrow"`
	Borrowed      int64 `json:"borrowed"`
	PendingReturn int64 `json:"pendingReturn"`
	Returned      int64 `json:"returned"`
}

// ActiveCount returns the number of records occupying an active state
func (s LedgerStats) ActiveCount() int64 {
	return s.PendingBorrow + s.Borrowed + s.PendingReturn
}
