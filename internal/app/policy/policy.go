// Package policy holds the pure borrow-policy rules: per-role borrow limits,
// loan durations and the borrow admission check. It carries no state and
// touches no store; side-effecting callers must re-validate against the
// ledger atomically before committing.
package policy

import (
	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
)

// Unbounded marks a role without a borrow limit
const Unbounded = -1

const defaultLoanDays = 14

// Config holds the tunable policy parameters
type Config struct {
	MemberMaxBorrows  int
	TeacherMaxBorrows int
	MemberLoanDays    int
	TeacherLoanDays   int
	AdminLoanDays     int
}

// Default returns the stock policy: members borrow up to 3 titles for 7 days,
// teachers up to 5 for 15 days, admins without limit for 30 days.
func Default() Config {
	return Config{
		MemberMaxBorrows:  3,
		TeacherMaxBorrows: 5,
		MemberLoanDays:    7,
		TeacherLoanDays:   15,
		AdminLoanDays:     30,
	}
}

// MaxActiveBorrows returns the active-borrow ceiling for a role.
// Admins are Unbounded.
func (c Config) MaxActiveBorrows(role models.Role) int {
	switch role {
	case models.RoleMember:
		return c.MemberMaxBorrows
	case models.RoleTeacher:
		return c.TeacherMaxBorrows
	case models.RoleAdmin:
		return Unbounded
	default:
		return c.MemberMaxBorrows
	}
}

// LoanDurationDays returns the loan duration for a role in days
func (c Config) LoanDurationDays(role models.Role) int {
	switch role {
	case models.RoleMember:
		return c.MemberLoanDays
	case models.RoleTeacher:
		return c.TeacherLoanDays
	case models.RoleAdmin:
		return c.AdminLoanDays
	default:
		return defaultLoanDays
	}
}

// CanBorrow checks whether a new borrow request is admissible for a role with
// the given number of active records against a book with the given available
// copies. The limit is checked before availability.
func (c Config) CanBorrow(role models.Role, activeCount int, copiesAvailable int) error {
	if max := c.MaxActiveBorrows(role); max != Unbounded && activeCount >= max {
		return apperrors.ErrBorrowLimitReached
	}
	if copiesAvailable <= 0 {
		return apperrors.ErrNoCopiesAvailable
	}
	return nil
}
