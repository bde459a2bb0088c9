package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/logger"
)

// HandleAPIError maps application errors to HTTP responses. Controllers call
// it with whatever their service returned; everything unrecognized becomes a
// 500 without leaking the underlying error.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrBookNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Book not found")
	case errors.Is(err, apperrors.ErrUserNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found")
	case errors.Is(err, apperrors.ErrBorrowRecordNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Borrow record not found")
	case errors.Is(err, apperrors.ErrContactMessageNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Contact message not found")
	case errors.Is(err, apperrors.ErrCarouselSlideNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Carousel slide not found")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrInvalidTransition):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeInvalidTransition, "Invalid borrow state transition")
	case errors.Is(err, apperrors.ErrBorrowLimitReached):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeBorrowLimitReached, "Borrow limit reached")
	case errors.Is(err, apperrors.ErrNoCopiesAvailable):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeNoCopiesAvailable, "No copies available")
	case errors.Is(err, apperrors.ErrAlreadyBorrowed):
		respondError(c, http.StatusConflict, dto.ErrorCodeAlreadyBorrowed, "Book already borrowed by user")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respondError(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid),
		errors.Is(err, apperrors.ErrTokenNotFound),
		errors.Is(err, apperrors.ErrTokenRevoked):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid Token")
	case errors.Is(err, apperrors.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Unauthorized Access")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		message := "Validation failed"
		var customErr *apperrors.CustomError
		if errors.As(err, &customErr) && customErr.Message != "" {
			message = customErr.Message
		}
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, message)
	case errors.Is(err, apperrors.ErrInventoryInconsistency):
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Inventory inconsistency surfaced to API")
		respondError(c, http.StatusInternalServerError, dto.ErrorCodeInventoryInconsistent, "Inventory inconsistency")
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
		respondError(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func respondError(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}
