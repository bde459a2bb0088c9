package dto

import (
	"github.com/cpbi/librarian/internal/app/models"
)

// CreateBookRequest is the payload for adding a book to the catalog
type CreateBookRequest struct {
	Title       string   `json:"title" binding:"required"`
	Authors     []string `json:"authors" binding:"required,min=1,dive,required"`
	Category    string   `json:"category" binding:"required"`
	Language    string   `json:"language"`
	ShelfNo     string   `json:"shelfNo"`
	TotalCopies int      `json:"totalCopies" binding:"required,gt=0"`
}

// UpdateBookRequest is the payload for editing a catalog entry.
// AvailableCopies may be adjusted directly by admins; it is clamped to
// [0, totalCopies] and the status is recomputed.
type UpdateBookRequest struct {
	Title           *string   `json:"title,omitempty"`
	Authors         []string  `json:"authors,omitempty"`
	Category        *string   `json:"category,omitempty"`
	Language        *string   `json:"language,omitempty"`
	ShelfNo         *string   `json:"shelfNo,omitempty"`
	TotalCopies     *int      `json:"totalCopies,omitempty"`
	AvailableCopies *int      `json:"availableCopies,omitempty"`
}

// BookFilter captures the list query parameters
type BookFilter struct {
	Search   string // Case-insensitive substring over title and authors
	Category string // Exact, case-insensitive
	Status   string // AVAILABLE or UNAVAILABLE, case-insensitive
	SortBy   string // "newest" (default) or "popular"
	Page     int
	PageSize int
}

// BookListResponse is the paginated catalog listing
type BookListResponse struct {
	Books          []models.Book  `json:"books"`
	PaginationInfo PaginationInfo `json:"pagination"`
}
