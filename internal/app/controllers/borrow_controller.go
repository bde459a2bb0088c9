package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/app/services"
	"github.com/cpbi/librarian/internal/middleware"
	"github.com/cpbi/librarian/internal/pkg/helpers"
)

// BorrowController handles the borrow workflow endpoints
type BorrowController struct {
	borrowService services.IBorrowService
	logger        zerolog.Logger
}

// NewBorrowController creates a new BorrowController
func NewBorrowController(borrowService services.IBorrowService, logger zerolog.Logger) *BorrowController {
	return &BorrowController{
		borrowService: borrowService,
		logger:        logger,
	}
}

// RequestBorrow submits a borrow request for a book
// @Summary Request to borrow a book
// @Description Creates a pending-borrow record awaiting admin confirmation. Subject to the caller's role borrow limit and copy availability.
// @Tags borrow
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 201 {object} dto.APIResponse{data=dto.BorrowRecordResponse}
// @Failure 400 {object} dto.ErrorResponse "Borrow limit reached or no copies available"
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Failure 409 {object} dto.ErrorResponse "Book already borrowed by user"
// @Router /books/borrow/{id} [post]
func (c *BorrowController) RequestBorrow(ctx *gin.Context) {
	bookID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	email := ctx.GetString(middleware.ContextEmail)
	record, err := c.borrowService.RequestBorrow(ctx.Request.Context(), bookID, email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(record, "Borrow requested"))
}

// RequestReturn submits a return request for a borrowed book
// @Summary Request to return a book
// @Description Moves the caller's borrowed record for the book to pending-return, awaiting admin confirmation
// @Tags borrow
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} dto.APIResponse{data=dto.BorrowRecordResponse}
// @Failure 400 {object} dto.ErrorResponse "Record not in the borrowed state"
// @Failure 404 {object} dto.ErrorResponse "No active borrow for this book"
// @Router /books/return/{id} [post]
func (c *BorrowController) RequestReturn(ctx *gin.Context) {
	bookID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	email := ctx.GetString(middleware.ContextEmail)
	record, err := c.borrowService.RequestReturn(ctx.Request.Context(), bookID, email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(record, "Return requested"))
}

// BorrowStatus reports the caller's active record for a book
// @Summary Get borrow status for a book
// @Tags borrow
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} dto.APIResponse{data=dto.BookBorrowStatusResponse}
// @Router /books/status/{id} [get]
func (c *BorrowController) BorrowStatus(ctx *gin.Context) {
	bookID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	email := ctx.GetString(middleware.ContextEmail)
	status, err := c.borrowService.BorrowStatus(ctx.Request.Context(), bookID, email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(status, "Borrow status retrieved"))
}

// MyBorrowedBooks lists the caller's active borrows
// @Summary List own active borrows
// @Tags borrow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.BorrowRecordResponse}
// @Router /my-borrowed-books [get]
func (c *BorrowController) MyBorrowedBooks(ctx *gin.Context) {
	email := ctx.GetString(middleware.ContextEmail)

	records, err := c.borrowService.MyBorrowedBooks(ctx.Request.Context(), email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(records, "Borrowed books retrieved"))
}

// BorrowHistory lists the caller's full ledger history
// @Summary Get own borrow history
// @Tags borrow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.BorrowRecordResponse}
// @Router /borrow-history [get]
func (c *BorrowController) BorrowHistory(ctx *gin.Context) {
	email := ctx.GetString(middleware.ContextEmail)

	records, err := c.borrowService.History(ctx.Request.Context(), email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(records, "Borrow history retrieved"))
}

// PendingRequests lists records awaiting admin confirmation
// @Summary List pending borrow and return requests
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.BorrowListResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /admin/borrows/pending [get]
func (c *BorrowController) PendingRequests(ctx *gin.Context) {
	page, pageSize := helpers.ParsePaginationParams(ctx)

	records, err := c.borrowService.PendingRequests(ctx.Request.Context(), page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(records, "Pending requests retrieved"))
}

// AllRecords lists the whole ledger, pending requests first
// @Summary List all borrow records
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param sort query string false "Borrow date order: desc (default) or asc"
// @Success 200 {object} dto.APIResponse{data=dto.BorrowListResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /admin/borrows [get]
func (c *BorrowController) AllRecords(ctx *gin.Context) {
	page, pageSize := helpers.ParsePaginationParams(ctx)

	records, err := c.borrowService.AllRecords(ctx.Request.Context(), page, pageSize, ctx.Query("sort"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(records, "Borrow records retrieved"))
}

// ConfirmBorrow applies the admin confirmation of a borrow request
// @Summary Confirm a borrow request
// @Description Moves a pending-borrow record to borrowed and takes one copy off the shelf
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrow record ID"
// @Success 200 {object} dto.APIResponse{data=dto.BorrowRecordResponse}
// @Failure 400 {object} dto.ErrorResponse "Record not pending-borrow or no copies available"
// @Failure 404 {object} dto.ErrorResponse "Borrow record not found"
// @Router /admin/confirm-borrow/{id} [post]
func (c *BorrowController) ConfirmBorrow(ctx *gin.Context) {
	recordID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	record, err := c.borrowService.ConfirmBorrow(ctx.Request.Context(), recordID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(record, "Borrow confirmed"))
}

// ConfirmReturn applies the admin confirmation of a return request
// @Summary Confirm a return request
// @Description Moves a pending-return record to returned and puts the copy back on the shelf
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrow record ID"
// @Success 200 {object} dto.APIResponse{data=dto.BorrowRecordResponse}
// @Failure 400 {object} dto.ErrorResponse "Record not pending-return"
// @Failure 404 {object} dto.ErrorResponse "Borrow record not found"
// @Router /admin/confirm-return/{id} [post]
func (c *BorrowController) ConfirmReturn(ctx *gin.Context) {
	recordID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	record, err := c.borrowService.ConfirmReturn(ctx.Request.Context(), recordID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(record, "Return confirmed"))
}
