package models

// Role defines the user role type
type Role string

const (
	RoleMember  Role = "MEMBER"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// UserStatus defines the account status
type UserStatus string

const (
	UserActive  UserStatus = "ACTIVE"
	UserPending UserStatus = "PENDING"
)

// BookStatus defines the derived availability status of a book
type BookStatus string

const (
	BookAvailable   BookStatus = "AVAILABLE"
	BookUnavailable BookStatus = "UNAVAILABLE"
)

// BookStatusFor derives the book status from an available-copy count.
// The status is never stored independently of the count.
func BookStatusFor(availableCopies int) BookStatus {
	if availableCopies > 0 {
		return BookAvailable
	}
	return BookUnavailable
}

// BorrowStatus defines the lifecycle state of a borrow record
type BorrowStatus string

const (
	BorrowPending       BorrowStatus = "pending-borrow"
	BorrowConfirmed     BorrowStatus = "borrowed"
	ReturnPending       BorrowStatus = "pending-return"
	ReturnConfirmed     BorrowStatus = "returned"
)

// ActiveBorrowStatuses are the states that count toward a user's borrow limit
// and block a second borrow of the same title.
var ActiveBorrowStatuses = []BorrowStatus{BorrowPending, BorrowConfirmed, ReturnPending}

// IsActive reports whether the status occupies the (book, user) active slot.
func (s BorrowStatus) IsActive() bool {
	switch s {
	case BorrowPending, BorrowConfirmed, ReturnPending:
		return true
	}
	return false
}
