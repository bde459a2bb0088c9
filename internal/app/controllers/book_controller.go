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

// BookController handles catalog endpoints
type BookController struct {
	bookService services.IBookService
	logger      zerolog.Logger
}

// NewBookController creates a new BookController
func NewBookController(bookService services.IBookService, logger zerolog.Logger) *BookController {
	return &BookController{
		bookService: bookService,
		logger:      logger,
	}
}

// ListBooks returns a filtered, paginated catalog page
// @Summary List books
// @Description Supports case-insensitive substring search over title and authors, category and status filters, and newest/popular sorting
// @Tags books
// @Produce json
// @Param search query string false "Substring over title and authors"
// @Param category query string false "Category filter, case-insensitive"
// @Param status query string false "AVAILABLE or UNAVAILABLE"
// @Param sortBy query string false "newest (default) or popular"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.BookListResponse}
// @Router /books [get]
func (c *BookController) ListBooks(ctx *gin.Context) {
	page, pageSize := helpers.ParsePaginationParams(ctx)
	filter := dto.BookFilter{
		Search:   ctx.Query("search"),
		Category: ctx.Query("category"),
		Status:   ctx.Query("status"),
		SortBy:   ctx.Query("sortBy"),
		Page:     page,
		PageSize: pageSize,
	}

	books, err := c.bookService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(books, "Books retrieved"))
}

// GetBook returns a single catalog entry
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} dto.APIResponse{data=models.Book}
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Router /books/{id} [get]
func (c *BookController) GetBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	book, err := c.bookService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(book, "Book retrieved"))
}

// ListCategories returns the distinct catalog categories
// @Summary List categories
// @Tags books
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]string}
// @Router /books/categories [get]
func (c *BookController) ListCategories(ctx *gin.Context) {
	categories, err := c.bookService.ListCategories(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(categories, "Categories retrieved"))
}

// Featured returns the newest available books
// @Summary Featured books
// @Tags books
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Book}
// @Router /featured [get]
func (c *BookController) Featured(ctx *gin.Context) {
	books, err := c.bookService.Featured(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(books, "Featured books retrieved"))
}

// TopBorrowed returns the most borrowed books
// @Summary Top borrowed books
// @Tags books
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Book}
// @Router /top-borrowed [get]
func (c *BookController) TopBorrowed(ctx *gin.Context) {
	books, err := c.bookService.TopBorrowed(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(books, "Top borrowed books retrieved"))
}

// CreateBook adds a book to the catalog
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateBookRequest true "Book data"
// @Success 201 {object} dto.APIResponse{data=models.Book}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /books [post]
func (c *BookController) CreateBook(ctx *gin.Context) {
	var req dto.CreateBookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	book, err := c.bookService.Create(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(book, "Book created"))
}

// UpdateBook edits a catalog entry
// @Summary Update a book
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body dto.UpdateBookRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Book}
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Router /books/{id} [put]
func (c *BookController) UpdateBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	book, err := c.bookService.Update(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(book, "Book updated"))
}

// DeleteBook removes a book from the catalog
// @Summary Delete a book
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Router /books/{id} [delete]
func (c *BookController) DeleteBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.bookService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Book deleted"))
}
