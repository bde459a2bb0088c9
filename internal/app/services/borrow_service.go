package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/app/policy"
	"github.com/cpbi/librarian/internal/app/repositories"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/helpers"
)

// IBorrowService defines the interface for the borrow workflow
type IBorrowService interface {
	RequestBorrow(ctx context.Context, bookID int64, email string) (*dto.BorrowRecordResponse, error)
	RequestReturn(ctx context.Context, bookID int64, email string) (*dto.BorrowRecordResponse, error)
	ConfirmBorrow(ctx context.Context, recordID int64) (*dto.BorrowRecordResponse, error)
	ConfirmReturn(ctx context.Context, recordID int64) (*dto.BorrowRecordResponse, error)
	BorrowStatus(ctx context.Context, bookID int64, email string) (*dto.BookBorrowStatusResponse, error)
	MyBorrowedBooks(ctx context.Context, email string) ([]dto.BorrowRecordResponse, error)
	History(ctx context.Context, email string) ([]dto.BorrowRecordResponse, error)
	PendingRequests(ctx context.Context, page, pageSize int) (*dto.BorrowListResponse, error)
	AllRecords(ctx context.Context, page, pageSize int, sortOrder string) (*dto.BorrowListResponse, error)
}

// BorrowService orchestrates the borrow lifecycle: admission via the policy
// engine, then ledger transitions through the repository's conditional
// updates. The repository owns atomicity; this layer owns the rules.
type BorrowService struct {
	borrowRepo repositories.IBorrowRepository
	bookRepo   repositories.IBookRepository
	userRepo   repositories.IUserRepository
	policy     policy.Config
	logger     zerolog.Logger
	now        func() time.Time
}

// NewBorrowService creates a new BorrowService
func NewBorrowService(
	borrowRepo repositories.IBorrowRepository,
	bookRepo repositories.IBookRepository,
	userRepo repositories.IUserRepository,
	policyConfig policy.Config,
	logger zerolog.Logger,
) IBorrowService {
	return &BorrowService{
		borrowRepo: borrowRepo,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
		policy:     policyConfig,
		logger:     logger,
		now:        time.Now,
	}
}

// RequestBorrow admits a new borrow request into the ledger in the
// pending-borrow state. The borrow limit is checked before availability, so a
// user at their limit is told so even when the book has no copies left. The
// due date is fixed at request time from the caller's role.
func (s *BorrowService) RequestBorrow(ctx context.Context, bookID int64, email string) (*dto.BorrowRecordResponse, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	role, err := s.userRepo.GetRoleByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	activeCount, err := s.borrowRepo.ActiveCountForUser(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.policy.CanBorrow(role, activeCount, book.AvailableCopies); err != nil {
		s.logger.Warn().Err(err).Int64("bookID", bookID).Str("email", email).
			Str("role", string(role)).Int("activeCount", activeCount).
			Msg("Borrow request denied by policy")
		return nil, err
	}

	active, err := s.borrowRepo.FindActive(ctx, bookID, email)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperrors.ErrAlreadyBorrowed
	}

	borrowDate := s.now().UTC()
	record := &models.BorrowRecord{
		BookID:     bookID,
		UserEmail:  email,
		Status:     models.BorrowPending,
		BorrowDate: borrowDate,
		ReturnDate: borrowDate.AddDate(0, 0, s.policy.LoanDurationDays(role)),
	}

	// The repository re-checks the limit inside the insert and the partial
	// unique index backs up the FindActive check, so races lose cleanly.
	id, err := s.borrowRepo.Create(ctx, record, s.policy.MaxActiveBorrows(role))
	if err != nil {
		return nil, err
	}
	record.ID = id

	s.logger.Info().Int64("recordID", id).Int64("bookID", bookID).Str("email", email).Msg("Borrow requested")
	resp := dto.FromBorrowRecord(record)
	return &resp, nil
}

// RequestReturn moves the caller's borrowed copy into the pending-return state
func (s *BorrowService) RequestReturn(ctx context.Context, bookID int64, email string) (*dto.BorrowRecordResponse, error) {
	record, err := s.borrowRepo.RequestReturn(ctx, bookID, email)
	if err != nil {
		return nil, err
	}
	resp := dto.FromBorrowRecord(record)
	return &resp, nil
}

// ConfirmBorrow applies the admin confirmation: pending-borrow → borrowed,
// one copy leaves the shelf
func (s *BorrowService) ConfirmBorrow(ctx context.Context, recordID int64) (*dto.BorrowRecordResponse, error) {
	record, err := s.borrowRepo.ConfirmBorrow(ctx, recordID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromBorrowRecord(record)
	return &resp, nil
}

// ConfirmReturn applies the admin confirmation: pending-return → returned,
// the copy comes back to the shelf
func (s *BorrowService) ConfirmReturn(ctx context.Context, recordID int64) (*dto.BorrowRecordResponse, error) {
	record, err := s.borrowRepo.ConfirmReturn(ctx, recordID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromBorrowRecord(record)
	return &resp, nil
}

// BorrowStatus reports whether the caller holds an active record for a book
func (s *BorrowService) BorrowStatus(ctx context.Context, bookID int64, email string) (*dto.BookBorrowStatusResponse, error) {
	record, err := s.borrowRepo.FindActive(ctx, bookID, email)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &dto.BookBorrowStatusResponse{Active: false}, nil
	}
	resp := dto.FromBorrowRecord(record)
	return &dto.BookBorrowStatusResponse{Active: true, Record: &resp}, nil
}

// MyBorrowedBooks lists the caller's records still occupying an active state
func (s *BorrowService) MyBorrowedBooks(ctx context.Context, email string) ([]dto.BorrowRecordResponse, error) {
	records, err := s.borrowRepo.HistoryForUser(ctx, email)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BorrowRecordResponse, 0, len(records))
	for i := range records {
		if !records[i].Status.IsActive() {
			continue
		}
		responses = append(responses, dto.FromBorrowRecord(&records[i]))
	}
	return responses, nil
}

// History lists the caller's full ledger history, newest borrow first
func (s *BorrowService) History(ctx context.Context, email string) ([]dto.BorrowRecordResponse, error) {
	records, err := s.borrowRepo.HistoryForUser(ctx, email)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BorrowRecordResponse, 0, len(records))
	for i := range records {
		responses = append(responses, dto.FromBorrowRecord(&records[i]))
	}
	return responses, nil
}

// PendingRequests lists records awaiting admin confirmation
func (s *BorrowService) PendingRequests(ctx context.Context, page, pageSize int) (*dto.BorrowListResponse, error) {
	records, totalItems, err := s.borrowRepo.PendingForAdmin(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return borrowListResponse(records, totalItems, page, pageSize), nil
}

// AllRecords lists the whole ledger for admins, requests first
func (s *BorrowService) AllRecords(ctx context.Context, page, pageSize int, sortOrder string) (*dto.BorrowListResponse, error) {
	records, totalItems, err := s.borrowRepo.AllForAdmin(ctx, page, pageSize, sortOrder)
	if err != nil {
		return nil, err
	}
	return borrowListResponse(records, totalItems, page, pageSize), nil
}

func borrowListResponse(records []models.BorrowRecord, totalItems int64, page, pageSize int) *dto.BorrowListResponse {
	responses := make([]dto.BorrowRecordResponse, 0, len(records))
	for i := range records {
		responses = append(responses, dto.FromBorrowRecord(&records[i]))
	}
	return &dto.BorrowListResponse{
		Records:        responses,
		PaginationInfo: helpers.NewPaginationInfo(totalItems, page, pageSize),
	}
}
