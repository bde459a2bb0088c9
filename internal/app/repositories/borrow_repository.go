package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/db"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/dberrors"
	"github.com/cpbi/librarian/internal/pkg/helpers"
	"github.com/cpbi/librarian/internal/pkg/logger"
)

// IBorrowRepository defines the interface for borrow ledger operations
type IBorrowRepository interface {
	Create(ctx context.Context, record *models.BorrowRecord, maxActive int) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.BorrowRecord, error)
	FindActive(ctx context.Context, bookID int64, email string) (*models.BorrowRecord, error)
	ActiveCountForUser(ctx context.Context, email string) (int, error)
	ConfirmBorrow(ctx context.Context, recordID int64) (*models.BorrowRecord, error)
	RequestReturn(ctx context.Context, bookID int64, email string) (*models.BorrowRecord, error)
	ConfirmReturn(ctx context.Context, recordID int64) (*models.BorrowRecord, error)
	HistoryForUser(ctx context.Context, email string) ([]models.BorrowRecord, error)
	PendingForAdmin(ctx context.Context, page, pageSize int) ([]models.BorrowRecord, int64, error)
	AllForAdmin(ctx context.Context, page, pageSize int, sortOrder string) ([]models.BorrowRecord, int64, error)
	ActivityByDay(ctx context.Context, since time.Time, email string) ([]models.DayActivity, error)
	Stats(ctx context.Context) (models.LedgerStats, error)
}

// BorrowRepository handles borrow ledger database operations. Records are
// append-only; lifecycle transitions are expressed as conditional updates
// keyed on the expected prior status so concurrent confirmations cannot
// apply an inventory side effect twice.
type BorrowRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBorrowRepository creates a new BorrowRepository
func NewBorrowRepository(db *pgxpool.Pool) *BorrowRepository {
	return &BorrowRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const borrowColumns = "id, book_id, user_email, status, borrow_date, return_date, request_date, borrow_confirmed_at, return_confirmed_at"

func scanBorrowRecord(row pgx.Row) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	err := row.Scan(&rec.ID, &rec.BookID, &rec.UserEmail, &rec.Status,
		&rec.BorrowDate, &rec.ReturnDate, &rec.RequestDate, &rec.BorrowConfirmedAt, &rec.ReturnConfirmedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts a new ledger entry. The insert only lands while the user's
// active record count is still below maxActive (negative means unbounded), so
// concurrent requests cannot slip past the borrow limit between a count and
// an insert. The partial unique index on active records rejects a second
// active borrow of the same title by the same user.
func (r *BorrowRepository) Create(ctx context.Context, record *models.BorrowRecord, maxActive int) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO borrow_records (book_id, user_email, status, borrow_date, return_date)
		SELECT $1, $2, $3, $4, $5
		WHERE $6 < 0 OR (
			SELECT COUNT(*) FROM borrow_records
			WHERE user_email = $2 AND status IN ('pending-borrow', 'borrowed', 'pending-return')
		) < $6
		RETURNING id`,
		record.BookID, record.UserEmail, record.Status, record.BorrowDate, record.ReturnDate, maxActive,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrBorrowLimitReached
		}
		if dberrors.IsDuplicateConstraintError(err, "uniq_active_borrow") {
			return 0, apperrors.ErrAlreadyBorrowed
		}
		logger.Error().Err(err).Int64("bookID", record.BookID).Str("email", record.UserEmail).Msg("Error executing create borrow record query")
		return 0, fmt.Errorf("error inserting borrow record: %w", err)
	}

	logger.Info().Int64("recordID", id).Int64("bookID", record.BookID).Str("email", record.UserEmail).Msg("Borrow request recorded")
	return id, nil
}

// GetByID retrieves a ledger entry by ID
func (r *BorrowRepository) GetByID(ctx context.Context, id int64) (*models.BorrowRecord, error) {
	sql, args, err := r.sb.Select(borrowColumns).
		From("borrow_records").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get borrow record query: %w", err)
	}

	rec, err := scanBorrowRecord(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBorrowRecordNotFound
		}
		logger.Error().Err(err).Int64("recordID", id).Msg("Error scanning borrow record by ID")
		return nil, fmt.Errorf("error querying borrow record ID=%d: %w", id, err)
	}
	return rec, nil
}

// FindActive returns the active record for a (book, user) pair, or nil when
// none exists
func (r *BorrowRepository) FindActive(ctx context.Context, bookID int64, email string) (*models.BorrowRecord, error) {
	sql, args, err := r.sb.Select(borrowColumns).
		From("borrow_records").
		Where(squirrel.Eq{
			"book_id":    bookID,
			"user_email": email,
			"status":     models.ActiveBorrowStatuses,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find active borrow query: %w", err)
	}

	rec, err := scanBorrowRecord(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying active borrow for book ID=%d: %w", bookID, err)
	}
	return rec, nil
}

// ActiveCountForUser counts the records occupying an active state for a user
func (r *BorrowRepository) ActiveCountForUser(ctx context.Context, email string) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("borrow_records").
		Where(squirrel.Eq{
			"user_email": email,
			"status":     models.ActiveBorrowStatuses,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build active count query: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting active borrows for %s: %w", email, err)
	}
	return count, nil
}

// ConfirmBorrow advances a pending-borrow record to borrowed and decrements
// the book's availability. The transition and the inventory adjustment run in
// one transaction; the transition is conditional on the prior status so a
// concurrent confirmation of the same record cannot decrement twice.
func (r *BorrowRepository) ConfirmBorrow(ctx context.Context, recordID int64) (*models.BorrowRecord, error) {
	var rec *models.BorrowRecord
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		rec, err = scanBorrowRecord(tx.QueryRow(ctx, `
			UPDATE borrow_records
			SET status = 'borrowed', borrow_confirmed_at = now()
			WHERE id = $1 AND status = 'pending-borrow'
			RETURNING `+borrowColumns, recordID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.transitionFailure(ctx, tx, recordID)
			}
			logger.Error().Err(err).Int64("recordID", recordID).Msg("Error executing confirm borrow transition")
			return fmt.Errorf("error confirming borrow record ID=%d: %w", recordID, err)
		}

		if err := adjustAvailability(ctx, tx, rec.BookID, -1); err != nil {
			if errors.Is(err, apperrors.ErrInventoryInconsistency) {
				return apperrors.ErrNoCopiesAvailable
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("recordID", recordID).Int64("bookID", rec.BookID).Msg("Borrow confirmed")
	return rec, nil
}

// RequestReturn moves the caller's borrowed record for a book to
// pending-return. Ownership and prior status are part of the update predicate.
func (r *BorrowRepository) RequestReturn(ctx context.Context, bookID int64, email string) (*models.BorrowRecord, error) {
	rec, err := scanBorrowRecord(r.db.QueryRow(ctx, `
		UPDATE borrow_records
		SET status = 'pending-return', request_date = now()
		WHERE book_id = $1 AND user_email = $2 AND status = 'borrowed'
		RETURNING `+borrowColumns, bookID, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			active, findErr := r.FindActive(ctx, bookID, email)
			if findErr != nil {
				return nil, findErr
			}
			if active == nil {
				return nil, apperrors.ErrBorrowRecordNotFound
			}
			return nil, apperrors.ErrInvalidTransition
		}
		logger.Error().Err(err).Int64("bookID", bookID).Str("email", email).Msg("Error executing return request transition")
		return nil, fmt.Errorf("error requesting return for book ID=%d: %w", bookID, err)
	}

	logger.Info().Int64("recordID", rec.ID).Int64("bookID", bookID).Str("email", email).Msg("Return requested")
	return rec, nil
}

// ConfirmReturn advances a pending-return record to returned and restores the
// book's availability, in one transaction.
func (r *BorrowRepository) ConfirmReturn(ctx context.Context, recordID int64) (*models.BorrowRecord, error) {
	var rec *models.BorrowRecord
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		rec, err = scanBorrowRecord(tx.QueryRow(ctx, `
			UPDATE borrow_records
			SET status = 'returned', return_confirmed_at = now()
			WHERE id = $1 AND status = 'pending-return'
			RETURNING `+borrowColumns, recordID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.transitionFailure(ctx, tx, recordID)
			}
			logger.Error().Err(err).Int64("recordID", recordID).Msg("Error executing confirm return transition")
			return fmt.Errorf("error confirming return record ID=%d: %w", recordID, err)
		}

		return adjustAvailability(ctx, tx, rec.BookID, +1)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("recordID", recordID).Int64("bookID", rec.BookID).Msg("Return confirmed")
	return rec, nil
}

// transitionFailure classifies a conditional-update miss: the record either
// does not exist or is not in the expected source state.
func (r *BorrowRepository) transitionFailure(ctx context.Context, q Querier, recordID int64) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM borrow_records WHERE id = $1)`, recordID).Scan(&exists); err != nil {
		return fmt.Errorf("error checking borrow record existence for ID=%d: %w", recordID, err)
	}
	if !exists {
		return apperrors.ErrBorrowRecordNotFound
	}
	logger.Warn().Int64("recordID", recordID).Msg("Rejected borrow transition from unexpected state")
	return apperrors.ErrInvalidTransition
}

// HistoryForUser returns all of a user's ledger entries, newest borrow first,
// joined with their book summaries
func (r *BorrowRepository) HistoryForUser(ctx context.Context, email string) ([]models.BorrowRecord, error) {
	sql, args, err := r.sb.Select(
		"br.id", "br.book_id", "br.user_email", "br.status",
		"br.borrow_date", "br.return_date", "br.request_date", "br.borrow_confirmed_at", "br.return_confirmed_at",
		"b.title", "b.category", "b.shelf_no",
	).
		From("borrow_records br").
		Join("books b ON b.id = br.book_id").
		Where(squirrel.Eq{"br.user_email": email}).
		OrderBy("br.borrow_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build borrow history query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("email", email).Msg("Error executing borrow history query")
		return nil, fmt.Errorf("failed to query borrow history: %w", err)
	}
	defer rows.Close()

	var records []models.BorrowRecord
	for rows.Next() {
		var rec models.BorrowRecord
		var book models.BookSummary
		err := rows.Scan(&rec.ID, &rec.BookID, &rec.UserEmail, &rec.Status,
			&rec.BorrowDate, &rec.ReturnDate, &rec.RequestDate, &rec.BorrowConfirmedAt, &rec.ReturnConfirmedAt,
			&book.Title, &book.Category, &book.ShelfNo)
		if err != nil {
			return nil, fmt.Errorf("failed to scan borrow history row: %w", err)
		}
		book.ID = rec.BookID
		rec.Book = &book
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating borrow history rows: %w", err)
	}

	return records, nil
}

// PendingForAdmin lists records awaiting confirmation, newest first, joined
// with book and user summaries
func (r *BorrowRepository) PendingForAdmin(ctx context.Context, page, pageSize int) ([]models.BorrowRecord, int64, error) {
	pending := squirrel.Eq{"br.status": []models.BorrowStatus{models.BorrowPending, models.ReturnPending}}
	return r.adminListing(ctx, pending, "br.borrow_date DESC", page, pageSize)
}

// AllForAdmin lists the whole ledger, requests first, then by borrow date
func (r *BorrowRepository) AllForAdmin(ctx context.Context, page, pageSize int, sortOrder string) ([]models.BorrowRecord, int64, error) {
	dateOrder := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dateOrder = "ASC"
	}
	orderBy := fmt.Sprintf(`CASE br.status
		WHEN 'pending-borrow' THEN 0
		WHEN 'pending-return' THEN 1
		WHEN 'borrowed' THEN 2
		ELSE 3 END, br.borrow_date %s`, dateOrder)
	return r.adminListing(ctx, nil, orderBy, page, pageSize)
}

func (r *BorrowRepository) adminListing(ctx context.Context, where interface{}, orderBy string, page, pageSize int) ([]models.BorrowRecord, int64, error) {
	countSelect := r.sb.Select("COUNT(*)").From("borrow_records br")
	baseSelect := r.sb.Select(
		"br.id", "br.book_id", "br.user_email", "br.status",
		"br.borrow_date", "br.return_date", "br.request_date", "br.borrow_confirmed_at", "br.return_confirmed_at",
		"b.title", "b.category", "b.shelf_no",
		"COALESCE(u.name, '')", "COALESCE(u.role, 'MEMBER')",
	).
		From("borrow_records br").
		Join("books b ON b.id = br.book_id").
		LeftJoin("users u ON u.email = br.user_email")

	if where != nil {
		countSelect = countSelect.Where(where)
		baseSelect = baseSelect.Where(where)
	}

	countSql, countArgs, err := countSelect.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count borrow records query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&totalItems); err != nil {
		logger.Error().Err(err).Msg("Error executing count borrow records query")
		return nil, 0, fmt.Errorf("failed to count borrow records: %w", err)
	}

	if totalItems == 0 {
		return []models.BorrowRecord{}, 0, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	querySql, queryArgs, err := baseSelect.OrderBy(orderBy).
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build admin borrow listing query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, queryArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing admin borrow listing query")
		return nil, 0, fmt.Errorf("failed to query borrow records: %w", err)
	}
	defer rows.Close()

	var records []models.BorrowRecord
	for rows.Next() {
		var rec models.BorrowRecord
		var book models.BookSummary
		var user models.UserSummary
		err := rows.Scan(&rec.ID, &rec.BookID, &rec.UserEmail, &rec.Status,
			&rec.BorrowDate, &rec.ReturnDate, &rec.RequestDate, &rec.BorrowConfirmedAt, &rec.ReturnConfirmedAt,
			&book.Title, &book.Category, &book.ShelfNo,
			&user.Name, &user.Role)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan admin borrow row: %w", err)
		}
		book.ID = rec.BookID
		user.Email = rec.UserEmail
		rec.Book = &book
		rec.User = &user
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating admin borrow rows: %w", err)
	}

	return records, totalItems, nil
}

// ActivityByDay aggregates ledger activity per UTC calendar day since the
// given instant. Borrow-side counts bucket on the borrow date; return counts
// bucket on the return confirmation. Days without activity are absent — the
// dashboard service fills the gaps. An empty email aggregates all users.
func (r *BorrowRepository) ActivityByDay(ctx context.Context, since time.Time, email string) ([]models.DayActivity, error) {
	buckets := make(map[string]*models.DayActivity)
	bucket := func(day string) *models.DayActivity {
		if b, ok := buckets[day]; ok {
			return b
		}
		b := &models.DayActivity{Day: day}
		buckets[day] = b
		return b
	}

	borrowSelect := r.sb.Select(
		"to_char(borrow_date AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day",
		"COUNT(*) FILTER (WHERE status <> 'pending-borrow') AS borrowed",
		"COUNT(*) FILTER (WHERE status = 'pending-borrow') AS pending",
	).
		From("borrow_records").
		Where(squirrel.GtOrEq{"borrow_date": since}).
		GroupBy("1")
	if email != "" {
		borrowSelect = borrowSelect.Where(squirrel.Eq{"user_email": email})
	}

	borrowSql, borrowArgs, err := borrowSelect.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build borrow activity query: %w", err)
	}

	rows, err := r.db.Query(ctx, borrowSql, borrowArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing borrow activity query")
		return nil, fmt.Errorf("failed to query borrow activity: %w", err)
	}
	for rows.Next() {
		var day string
		var borrowed, pending int64
		if err := rows.Scan(&day, &borrowed, &pending); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan borrow activity row: %w", err)
		}
		b := bucket(day)
		b.Borrowed = borrowed
		b.PendingBorrow = pending
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating borrow activity rows: %w", err)
	}

	returnSelect := r.sb.Select(
		"to_char(return_confirmed_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day",
		"COUNT(*) AS returned",
	).
		From("borrow_records").
		Where(squirrel.Eq{"status": models.ReturnConfirmed}).
		Where(squirrel.GtOrEq{"return_confirmed_at": since}).
		GroupBy("1")
	if email != "" {
		returnSelect = returnSelect.Where(squirrel.Eq{"user_email": email})
	}

	returnSql, returnArgs, err := returnSelect.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build return activity query: %w", err)
	}

	rows, err = r.db.Query(ctx, returnSql, returnArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing return activity query")
		return nil, fmt.Errorf("failed to query return activity: %w", err)
	}
	for rows.Next() {
		var day string
		var returned int64
		if err := rows.Scan(&day, &returned); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan return activity row: %w", err)
		}
		bucket(day).Returned = returned
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating return activity rows: %w", err)
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	activity := make([]models.DayActivity, 0, len(days))
	for _, day := range days {
		activity = append(activity, *buckets[day])
	}
	return activity, nil
}

// Stats returns ledger-wide counters per lifecycle state
func (r *BorrowRepository) Stats(ctx context.Context) (models.LedgerStats, error) {
	var stats models.LedgerStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending-borrow'),
		       COUNT(*) FILTER (WHERE status = 'borrowed'),
		       COUNT(*) FILTER (WHERE status = 'pending-return'),
		       COUNT(*) FILTER (WHERE status = 'returned')
		FROM borrow_records`).
		Scan(&stats.Total, &stats.PendingBorrow, &stats.Borrowed, &stats.PendingReturn, &stats.Returned)
	if err != nil {
		return models.LedgerStats{}, fmt.Errorf("failed to query ledger stats: %w", err)
	}
	return stats, nil
}
