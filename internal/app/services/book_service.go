package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/app/repositories"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/helpers"
)

const featuredLimit = 8

// IBookService defines the interface for catalog operations
type IBookService interface {
	Create(ctx context.Context, req dto.CreateBookRequest) (*models.Book, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	Update(ctx context.Context, id int64, req dto.UpdateBookRequest) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter dto.BookFilter) (*dto.BookListResponse, error)
	ListCategories(ctx context.Context) ([]string, error)
	Featured(ctx context.Context) ([]models.Book, error)
	TopBorrowed(ctx context.Context) ([]models.Book, error)
}

// BookService handles catalog operations
type BookService struct {
	bookRepo repositories.IBookRepository
	logger   zerolog.Logger
}

// NewBookService creates a new BookService
func NewBookService(bookRepo repositories.IBookRepository, logger zerolog.Logger) IBookService {
	return &BookService{
		bookRepo: bookRepo,
		logger:   logger,
	}
}

func validateAuthors(authors []string) error {
	if len(authors) == 0 {
		return apperrors.NewValidationError("at least one author is required")
	}
	for _, a := range authors {
		if strings.TrimSpace(a) == "" {
			return apperrors.NewValidationError("author names cannot be blank")
		}
	}
	return nil
}

// Create adds a book to the catalog. All copies start available.
func (s *BookService) Create(ctx context.Context, req dto.CreateBookRequest) (*models.Book, error) {
	if err := validateAuthors(req.Authors); err != nil {
		return nil, err
	}
	if req.TotalCopies <= 0 {
		return nil, apperrors.NewValidationError("totalCopies must be positive")
	}

	book := &models.Book{
		Title:       strings.TrimSpace(req.Title),
		Authors:     req.Authors,
		Category:    strings.TrimSpace(req.Category),
		Language:    strings.TrimSpace(req.Language),
		ShelfNo:     strings.TrimSpace(req.ShelfNo),
		TotalCopies: req.TotalCopies,
	}
	if book.Title == "" {
		return nil, apperrors.NewValidationError("title is required")
	}

	id, err := s.bookRepo.Create(ctx, book)
	if err != nil {
		return nil, err
	}

	return s.bookRepo.GetByID(ctx, id)
}

// GetByID retrieves a single catalog entry
func (s *BookService) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	return s.bookRepo.GetByID(ctx, id)
}

// Update applies a partial edit to a catalog entry. Copy counts are clamped
// so availableCopies stays within [0, totalCopies] and the derived status is
// recomputed.
func (s *BookService) Update(ctx context.Context, id int64, req dto.UpdateBookRequest) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperrors.NewValidationError("title cannot be blank")
		}
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Authors != nil {
		if err := validateAuthors(req.Authors); err != nil {
			return nil, err
		}
		book.Authors = req.Authors
	}
	if req.Category != nil {
		book.Category = strings.TrimSpace(*req.Category)
	}
	if req.Language != nil {
		book.Language = strings.TrimSpace(*req.Language)
	}
	if req.ShelfNo != nil {
		book.ShelfNo = strings.TrimSpace(*req.ShelfNo)
	}
	if req.TotalCopies != nil {
		if *req.TotalCopies <= 0 {
			return nil, apperrors.NewValidationError("totalCopies must be positive")
		}
		book.TotalCopies = *req.TotalCopies
	}
	if req.AvailableCopies != nil {
		book.AvailableCopies = *req.AvailableCopies
	}

	if book.AvailableCopies > book.TotalCopies {
		book.AvailableCopies = book.TotalCopies
	}
	if book.AvailableCopies < 0 {
		book.AvailableCopies = 0
	}
	book.Status = models.BookStatusFor(book.AvailableCopies)

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("bookID", id).Msg("Book updated")
	return s.bookRepo.GetByID(ctx, id)
}

// Delete removes a book from the catalog
func (s *BookService) Delete(ctx context.Context, id int64) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("bookID", id).Msg("Book deleted")
	return nil
}

// List returns a filtered, sorted, paginated catalog page
func (s *BookService) List(ctx context.Context, filter dto.BookFilter) (*dto.BookListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = helpers.DefaultPageSize
	}
	if filter.PageSize > helpers.MaxPageSize {
		filter.PageSize = helpers.MaxPageSize
	}

	books, totalItems, err := s.bookRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.BookListResponse{
		Books:          books,
		PaginationInfo: helpers.NewPaginationInfo(totalItems, filter.Page, filter.PageSize),
	}, nil
}

// ListCategories returns the distinct catalog categories
func (s *BookService) ListCategories(ctx context.Context) ([]string, error) {
	return s.bookRepo.ListCategories(ctx)
}

// Featured returns the newest available books for the landing page
func (s *BookService) Featured(ctx context.Context) ([]models.Book, error) {
	return s.bookRepo.Featured(ctx, featuredLimit)
}

// TopBorrowed returns the most borrowed books
func (s *BookService) TopBorrowed(ctx context.Context) ([]models.Book, error) {
	return s.bookRepo.TopBorrowed(ctx, featuredLimit)
}
