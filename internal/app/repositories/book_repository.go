package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/helpers"
	"github.com/cpbi/librarian/internal/pkg/logger"
)

// IBookRepository defines the interface for catalog database operations
type IBookRepository interface {
	Create(ctx context.Context, book *models.Book) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter dto.BookFilter) ([]models.Book, int64, error)
	ListCategories(ctx context.Context) ([]string, error)
	Featured(ctx context.Context, limit int) ([]models.Book, error)
	TopBorrowed(ctx context.Context, limit int) ([]models.Book, error)
	AdjustAvailability(ctx context.Context, bookID int64, delta int) error
	InventoryStats(ctx context.Context) (models.InventoryStats, error)
}

// BookRepository handles book database operations
type BookRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBookRepository creates a new BookRepository
func NewBookRepository(db *pgxpool.Pool) *BookRepository {
	return &BookRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const bookColumns = "id, title, authors, category, language, shelf_no, total_copies, available_copies, status, created_at, updated_at"

func scanBook(row pgx.Row) (*models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.Title, &b.Authors, &b.Category, &b.Language, &b.ShelfNo,
		&b.TotalCopies, &b.AvailableCopies, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a new book. Available copies start at the total and the
// status is derived from the count.
func (r *BookRepository) Create(ctx context.Context, book *models.Book) (int64, error) {
	book.AvailableCopies = book.TotalCopies
	book.Status = models.BookStatusFor(book.AvailableCopies)

	sql, args, err := r.sb.Insert("books").
		Columns("title", "authors", "category", "language", "shelf_no", "total_copies", "available_copies", "status").
		Values(book.Title, book.Authors, book.Category, book.Language, book.ShelfNo,
			book.TotalCopies, book.AvailableCopies, book.Status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create book SQL")
		return 0, fmt.Errorf("failed to build create book query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		logger.Error().Err(err).Str("title", book.Title).Msg("Error executing create book query")
		return 0, fmt.Errorf("error inserting book: %w", err)
	}

	logger.Info().Int64("bookID", id).Str("title", book.Title).Msg("Book created successfully")
	return id, nil
}

// GetByID retrieves a book by ID
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	sql, args, err := r.sb.Select(bookColumns).
		From("books").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get book query: %w", err)
	}

	book, err := scanBook(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBookNotFound
		}
		logger.Error().Err(err).Int64("bookID", id).Msg("Error scanning book row by ID")
		return nil, fmt.Errorf("error querying book ID=%d: %w", id, err)
	}
	return book, nil
}

// Update writes a full book record. The status is recomputed from the
// available-copy count before the write.
func (r *BookRepository) Update(ctx context.Context, book *models.Book) error {
	book.Status = models.BookStatusFor(book.AvailableCopies)

	sql, args, err := r.sb.Update("books").
		SetMap(map[string]interface{}{
			"title":            book.Title,
			"authors":          book.Authors,
			"category":         book.Category,
			"language":         book.Language,
			"shelf_no":         book.ShelfNo,
			"total_copies":     book.TotalCopies,
			"available_copies": book.AvailableCopies,
			"status":           book.Status,
			"updated_at":       squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": book.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update book query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("bookID", book.ID).Msg("Error executing update book query")
		return fmt.Errorf("error updating book ID=%d: %w", book.ID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("bookID", book.ID).Msg("Attempted to update non-existent book")
		return apperrors.ErrBookNotFound
	}

	logger.Info().Int64("bookID", book.ID).Msg("Book updated successfully")
	return nil
}

// Delete removes a book from the catalog
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("books").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete book query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("bookID", id).Msg("Error executing delete book query")
		return fmt.Errorf("error deleting book ID=%d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("bookID", id).Msg("Attempted to delete non-existent book")
		return apperrors.ErrBookNotFound
	}

	logger.Info().Int64("bookID", id).Msg("Book deleted successfully")
	return nil
}

// List retrieves books with filtering, sorting and pagination
func (r *BookRepository) List(ctx context.Context, filter dto.BookFilter) ([]models.Book, int64, error) {
	baseSelect := r.sb.Select(
		"b.id", "b.title", "b.authors", "b.category", "b.language", "b.shelf_no",
		"b.total_copies", "b.available_copies", "b.status", "b.created_at", "b.updated_at",
		"COALESCE(bc.cnt, 0) AS borrow_count",
	).
		From("books b").
		LeftJoin("(SELECT book_id, COUNT(*) AS cnt FROM borrow_records GROUP BY book_id) bc ON bc.book_id = b.id")

	countSelect := r.sb.Select("COUNT(*)").From("books b")

	whereCondition := squirrel.And{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		whereCondition = append(whereCondition, squirrel.Or{
			squirrel.ILike{"b.title": pattern},
			squirrel.Expr("array_to_string(b.authors, ' ') ILIKE ?", pattern),
		})
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		whereCondition = append(whereCondition, squirrel.Expr("LOWER(b.category) = LOWER(?)", category))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		whereCondition = append(whereCondition, squirrel.Eq{"b.status": strings.ToUpper(status)})
	}

	if len(whereCondition) > 0 {
		baseSelect = baseSelect.Where(whereCondition)
		countSelect = countSelect.Where(whereCondition)
	}

	countSql, countArgs, err := countSelect.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count books SQL")
		return nil, 0, fmt.Errorf("failed to build count books query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&totalItems); err != nil {
		logger.Error().Err(err).Msg("Error executing count books query")
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	if totalItems == 0 {
		return []models.Book{}, 0, nil
	}

	orderBy := "b.created_at DESC"
	if filter.SortBy == "popular" {
		orderBy = "borrow_count DESC, b.created_at DESC"
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	baseSelect = baseSelect.OrderBy(orderBy).
		Limit(uint64(limit)).
		Offset(offset)

	querySql, queryArgs, err := baseSelect.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list books SQL")
		return nil, 0, fmt.Errorf("failed to build list books query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, queryArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list books query")
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books, err := collectBookRows(rows)
	if err != nil {
		return nil, 0, err
	}

	logger.Debug().Int("page", filter.Page).Int("pageSize", filter.PageSize).Int64("totalItems", totalItems).Int("returnedItems", len(books)).Msg("Fetched books")
	return books, totalItems, nil
}

func collectBookRows(rows pgx.Rows) ([]models.Book, error) {
	var books []models.Book
	for rows.Next() {
		var b models.Book
		err := rows.Scan(&b.ID, &b.Title, &b.Authors, &b.Category, &b.Language, &b.ShelfNo,
			&b.TotalCopies, &b.AvailableCopies, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.BorrowCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating book rows: %w", err)
	}
	return books, nil
}

// ListCategories returns the distinct catalog categories
func (r *BookRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT category FROM books WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

// Featured returns the newest available books
func (r *BookRepository) Featured(ctx context.Context, limit int) ([]models.Book, error) {
	books, _, err := r.List(ctx, dto.BookFilter{
		Status:   string(models.BookAvailable),
		SortBy:   "newest",
		Page:     1,
		PageSize: limit,
	})
	return books, err
}

// TopBorrowed returns the most borrowed books
func (r *BookRepository) TopBorrowed(ctx context.Context, limit int) ([]models.Book, error) {
	books, _, err := r.List(ctx, dto.BookFilter{
		SortBy:   "popular",
		Page:     1,
		PageSize: limit,
	})
	return books, err
}

// AdjustAvailability atomically shifts a book's available-copy count by delta,
// clamped to [0, totalCopies], and recomputes the derived status.
func (r *BookRepository) AdjustAvailability(ctx context.Context, bookID int64, delta int) error {
	return adjustAvailability(ctx, r.db, bookID, delta)
}

// adjustAvailability is the single conditional update behind every
// availability change. It is shared with the borrow ledger's confirmation
// transactions so both paths keep the same clamp guard.
func adjustAvailability(ctx context.Context, q Querier, bookID int64, delta int) error {
	cmdTag, err := q.Exec(ctx, `
		UPDATE books
		SET available_copies = available_copies + $2,
		    status = CASE WHEN available_copies + $2 > 0 THEN 'AVAILABLE' ELSE 'UNAVAILABLE' END,
		    updated_at = now()
		WHERE id = $1
		  AND available_copies + $2 >= 0
		  AND available_copies + $2 <= total_copies`,
		bookID, delta)
	if err != nil {
		logger.Error().Err(err).Int64("bookID", bookID).Int("delta", delta).Msg("Error executing adjust availability query")
		return fmt.Errorf("error adjusting availability for book ID=%d: %w", bookID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, bookID).Scan(&exists); err != nil {
			return fmt.Errorf("error checking book existence for ID=%d: %w", bookID, err)
		}
		if !exists {
			return apperrors.ErrBookNotFound
		}
		logger.Warn().Int64("bookID", bookID).Int("delta", delta).Msg("Availability adjustment would violate copy bounds")
		return apperrors.ErrInventoryInconsistency
	}

	return nil
}

// InventoryStats returns catalog-wide counters for the admin dashboard
func (r *BookRepository) InventoryStats(ctx context.Context) (models.InventoryStats, error) {
	var stats models.InventoryStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'AVAILABLE'),
		       COALESCE(SUM(available_copies), 0)
		FROM books`).
		Scan(&stats.TotalBooks, &stats.AvailableBooks, &stats.TotalCopies)
	if err != nil {
		return models.InventoryStats{}, fmt.Errorf("failed to query inventory stats: %w", err)
	}
	return stats, nil
}
