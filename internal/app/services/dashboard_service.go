package services

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/app/repositories"
	"github.com/cpbi/librarian/internal/pkg/helpers"
)

// Dashboard window sizes in days, today inclusive
const (
	memberWindowDays  = 30
	teacherWindowDays = 15
	adminWindowDays   = 180
)

// IDashboardService defines the interface for dashboard aggregation
type IDashboardService interface {
	MemberDashboard(ctx context.Context, email string) (*dto.MemberDashboardResponse, error)
	TeacherDashboard(ctx context.Context, email string) (*dto.TeacherDashboardResponse, error)
	AdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, error)
}

// DashboardService turns the ledger's sparse per-day buckets into the
// fixed-length, zero-filled series the dashboards chart. Series length always
// equals the window length regardless of activity.
type DashboardService struct {
	borrowRepo repositories.IBorrowRepository
	bookRepo   repositories.IBookRepository
	logger     zerolog.Logger
	now        func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(borrowRepo repositories.IBorrowRepository, bookRepo repositories.IBookRepository, logger zerolog.Logger) IDashboardService {
	return &DashboardService{
		borrowRepo: borrowRepo,
		bookRepo:   bookRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// window returns the UTC calendar labels for the last `days` days ending
// today, and the instant the aggregation starts from.
func (s *DashboardService) window(days int) ([]string, time.Time) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	labels := make([]string, days)
	for i := 0; i < days; i++ {
		labels[i] = helpers.DayKey(start.AddDate(0, 0, i))
	}
	return labels, start
}

// fillSeries spreads sparse day buckets over the full label range. Buckets
// outside the range are dropped; days without a bucket stay zero.
func fillSeries(labels []string, activity []models.DayActivity) (borrowed, pending, returned []int64) {
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	borrowed = make([]int64, len(labels))
	pending = make([]int64, len(labels))
	returned = make([]int64, len(labels))
	for _, bucket := range activity {
		i, ok := index[bucket.Day]
		if !ok {
			continue
		}
		borrowed[i] = bucket.Borrowed
		pending[i] = bucket.PendingBorrow
		returned[i] = bucket.Returned
	}
	return borrowed, pending, returned
}

func sum(series []int64) int64 {
	var total int64
	for _, v := range series {
		total += v
	}
	return total
}

// MemberDashboard builds the member's 30-day activity view
func (s *DashboardService) MemberDashboard(ctx context.Context, email string) (*dto.MemberDashboardResponse, error) {
	labels, start := s.window(memberWindowDays)

	activity, err := s.borrowRepo.ActivityByDay(ctx, start, email)
	if err != nil {
		return nil, err
	}

	borrowed, _, returned := fillSeries(labels, activity)
	return &dto.MemberDashboardResponse{
		Labels:         labels,
		BorrowedSeries: borrowed,
		ReturnedSeries: returned,
		TotalBorrowed:  sum(borrowed),
		TotalReturned:  sum(returned),
	}, nil
}

// TeacherDashboard builds the teacher's 15-day activity view plus lifetime
// reading summary. Average reading days is the rounded mean of
// confirmed-return minus borrow over returned records, 0 when none exist.
func (s *DashboardService) TeacherDashboard(ctx context.Context, email string) (*dto.TeacherDashboardResponse, error) {
	labels, start := s.window(teacherWindowDays)

	activity, err := s.borrowRepo.ActivityByDay(ctx, start, email)
	if err != nil {
		return nil, err
	}
	borrowed, pending, _ := fillSeries(labels, activity)
	for i := range borrowed {
		borrowed[i] += pending[i]
	}

	history, err := s.borrowRepo.HistoryForUser(ctx, email)
	if err != nil {
		return nil, err
	}

	var currentlyBorrowed, totalReturned int64
	var readingDays float64
	for i := range history {
		switch {
		case history[i].Status.IsActive():
			currentlyBorrowed++
		case history[i].Status == models.ReturnConfirmed:
			totalReturned++
			returnedAt := history[i].ReturnDate
			if history[i].ReturnConfirmedAt != nil {
				returnedAt = *history[i].ReturnConfirmedAt
			}
			readingDays += returnedAt.Sub(helpers.NormalizeDate(history[i].BorrowDate)).Hours() / 24
		}
	}

	averageReadingDays := 0
	if totalReturned > 0 {
		averageReadingDays = int(math.Round(readingDays / float64(totalReturned)))
	}

	return &dto.TeacherDashboardResponse{
		Labels:             labels,
		BorrowedSeries:     borrowed,
		TotalEverBorrowed:  int64(len(history)),
		CurrentlyBorrowed:  currentlyBorrowed,
		TotalReturned:      totalReturned,
		AverageReadingDays: averageReadingDays,
	}, nil
}

// AdminDashboard builds the library-wide 180-day view plus inventory and
// ledger summaries
func (s *DashboardService) AdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	labels, start := s.window(adminWindowDays)

	activity, err := s.borrowRepo.ActivityByDay(ctx, start, "")
	if err != nil {
		return nil, err
	}
	borrowed, pending, returned := fillSeries(labels, activity)

	inventory, err := s.bookRepo.InventoryStats(ctx)
	if err != nil {
		return nil, err
	}

	ledger, err := s.borrowRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	// Trailing 30 days of the borrowed series; pending requests chart
	// separately and are not borrows yet.
	borrowsLast30 := sum(borrowed[len(borrowed)-30:])

	return &dto.AdminDashboardResponse{
		Labels:                labels,
		BorrowedSeries:        borrowed,
		PendingSeries:         pending,
		ReturnedSeries:        returned,
		TotalBooks:            inventory.TotalBooks,
		AvailableBooks:        inventory.AvailableBooks,
		TotalCopies:           inventory.TotalCopies,
		BooksOnLoan:           ledger.Borrowed + ledger.PendingReturn,
		ActiveBorrows:         ledger.ActiveCount(),
		PendingBorrowRequests: ledger.PendingBorrow,
		TotalBorrowsEver:      ledger.Total,
		BorrowsLast30Days:     borrowsLast30,
	}, nil
}
