package dto

// MemberDashboardResponse is the member (and teacher member-view) dashboard.
// All series have exactly as many entries as Labels; days without activity
// are zero-filled.
type MemberDashboardResponse struct {
	Labels         []string `json:"labels"`
	BorrowedSeries []int64  `json:"borrowedSeries"`
	ReturnedSeries []int64  `json:"returnedSeries"`
	TotalBorrowed  int64    `json:"totalBorrowed"` // Window total
	TotalReturned  int64    `json:"totalReturned"` // Window total
}

// TeacherDashboardResponse is the teacher dashboard
type TeacherDashboardResponse struct {
	Labels             []string `json:"labels"`
	BorrowedSeries     []int64  `json:"borrowedSeries"`
	TotalEverBorrowed  int64    `json:"totalEverBorrowed"`
	CurrentlyBorrowed  int64    `json:"currentlyBorrowed"`
	TotalReturned      int64    `json:"totalReturned"`
	AverageReadingDays int      `json:"averageReadingDays"`
}

// AdminDashboardResponse is the admin dashboard covering the whole library
type AdminDashboardResponse struct {
	Labels                []string `json:"labels"`
	BorrowedSeries        []int64  `json:"borrowedSeries"`
	PendingSeries         []int64  `json:"pendingSeries"`
	ReturnedSeries        []int64  `json:"returnedSeries"`
	TotalBooks            int64    `json:"totalBooks"`
	AvailableBooks        int64    `json:"availableBooks"`
	TotalCopies           int64    `json:"totalCopies"`
	BooksOnLoan           int64    `json:"booksOnLoan"`
	ActiveBorrows         int64    `json:"activeBorrows"`
	PendingBorrowRequests int64    `json:"pendingBorrowRequests"`
	TotalBorrowsEver      int64    `json:"totalBorrowsEver"`
	BorrowsLast30Days     int64    `json:"borrowsLast30Days"`
}
