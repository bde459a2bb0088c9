package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Book errors
var (
	ErrBookNotFound           = errors.New("book not found")
	ErrInventoryInconsistency = errors.New("inventory inconsistency")
)

// Borrow errors
var (
	ErrBorrowRecordNotFound = errors.New("borrow record not found")
	ErrInvalidTransition    = errors.New("invalid borrow state transition")
	ErrBorrowLimitReached   = errors.New("borrow limit reached")
	ErrNoCopiesAvailable    = errors.New("no copies available")
	ErrAlreadyBorrowed      = errors.New("book already borrowed by user")
)

// Content errors
var (
	ErrContactMessageNotFound = errors.New("contact message not found")
	ErrCarouselSlideNotFound  = errors.New("carousel slide not found")
)

// NewValidationError creates a custom error wrapping ErrValidationFailed
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// CustomError attaches a caller-facing message to a sentinel error so the
// error middleware can match on the sentinel and still report the message
type CustomError struct {
	Err     error
	Message string
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}
