package dto

import (
	"github.com/cpbi/librarian/internal/app/models"
)

// BorrowRecordResponse is a ledger entry joined with its book (and, for
// admin listings, user) summary
type BorrowRecordResponse struct {
	ID                int64               `json:"id"`
	BookID            int64               `json:"bookId"`
	UserEmail         string              `json:"userEmail"`
	Status            models.BorrowStatus `json:"status"`
	BorrowDate        string              `json:"borrowDate"`
	ReturnDate        string              `json:"returnDate"`
	RequestDate       string              `json:"requestDate,omitempty"`
	BorrowConfirmedAt string              `json:"borrowConfirmedAt,omitempty"`
	ReturnConfirmedAt string              `json:"returnConfirmedAt,omitempty"`
	Book              *models.BookSummary `json:"book,omitempty"`
	User              *models.UserSummary `json:"user,omitempty"`
}

// FromBorrowRecord converts a ledger model to its response projection
func FromBorrowRecord(r *models.BorrowRecord) BorrowRecordResponse {
	resp := BorrowRecordResponse{
		ID:         r.ID,
		BookID:     r.BookID,
		UserEmail:  r.UserEmail,
		Status:     r.Status,
		BorrowDate: r.BorrowDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
		ReturnDate: r.ReturnDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Book:       r.Book,
		User:       r.User,
	}
	if r.RequestDate != nil {
		resp.RequestDate = r.RequestDate.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if r.BorrowConfirmedAt != nil {
		resp.BorrowConfirmedAt = r.BorrowConfirmedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if r.ReturnConfirmedAt != nil {
		resp.ReturnConfirmedAt = r.ReturnConfirmedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// BorrowListResponse is a paginated ledger listing
type BorrowListResponse struct {
	Records        []BorrowRecordResponse `json:"records"`
	PaginationInfo PaginationInfo         `json:"pagination"`
}

// BookBorrowStatusResponse reports the caller's active record for a book,
// if any
type BookBorrowStatusResponse struct {
	Active bool                  `json:"active"`
	Record *BorrowRecordResponse `json:"record,omitempty"`
}
