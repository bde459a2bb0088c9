package models

import (
	"time"
)

// Book defines the book model based on the 'books' table.
// Status is derived from AvailableCopies and is recomputed on every write
// that touches the copy counts.
type Book struct {
	ID              int64      `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Authors         []string   `json:"authors" db:"authors"`
	Category        string     `json:"category" db:"category"`
	Language        string     `json:"language" db:"language"`
	ShelfNo         string     `json:"shelfNo" db:"shelf_no"`
	TotalCopies     int        `json:"totalCopies" db:"total_copies"`
	AvailableCopies int        `json:"availableCopies" db:"available_copies"`
	Status          BookStatus `json:"status" db:"status"`
	BorrowCount     int64      `json:"borrowCount,omitempty"` // Populated by popularity queries, no db column
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// InventoryStats holds catalog-wide counters for the admin dashboard
type InventoryStats struct {
	TotalBooks     int64 `json:"totalBooks"`
	AvailableBooks int64 `json:"availableBooks"`
	TotalCopies    int64 `json:"totalCopies"` // Sum of available copies across the catalog
}
