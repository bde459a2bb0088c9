package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/policy"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
)

type borrowFixture struct {
	userRepo   *mockUserRepo
	bookRepo   *mockBookRepo
	borrowRepo *mockBorrowRepo
	svc        *BorrowService
	now        time.Time
}

func newBorrowFixture(t *testing.T) *borrowFixture {
	t.Helper()
	userRepo := newMockUserRepo()
	bookRepo := newMockBookRepo()
	borrowRepo := newMockBorrowRepo(bookRepo)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return &borrowFixture{
		userRepo:   userRepo,
		bookRepo:   bookRepo,
		borrowRepo: borrowRepo,
		now:        now,
		svc: &BorrowService{
			borrowRepo: borrowRepo,
			bookRepo:   bookRepo,
			userRepo:   userRepo,
			policy:     policy.Default(),
			logger:     zerolog.Nop(),
			now:        func() time.Time { return now },
		},
	}
}

func TestRequestBorrowLimitCheckedBeforeAvailability(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	member := f.userRepo.addUser("reader@example.com", "Reader", models.RoleMember)

	// Fill the member's limit with three confirmed borrows.
	for i := 0; i < 3; i++ {
		book := f.bookRepo.addBook("Filler", 1)
		rec, err := f.svc.RequestBorrow(ctx, book.ID, member.Email)
		require.NoError(t, err)
		_, err = f.svc.ConfirmBorrow(ctx, rec.ID)
		require.NoError(t, err)
	}

	// A book with zero copies: the limit error must win over availability.
	empty := f.bookRepo.addBook("Empty Shelf", 1)
	require.NoError(t, f.bookRepo.AdjustAvailability(ctx, empty.ID, -1))

	_, err := f.svc.RequestBorrow(ctx, empty.ID, member.Email)
	require.ErrorIs(t, err, apperrors.ErrBorrowLimitReached)
}

// staleCountBorrowRepo under-reports the active count by one, like a
// concurrent request landing between the policy check and the insert.
type staleCountBorrowRepo struct {
	*mockBorrowRepo
}

func (m *staleCountBorrowRepo) ActiveCountForUser(ctx context.Context, email string) (int, error) {
	n, err := m.mockBorrowRepo.ActiveCountForUser(ctx, email)
	if n > 0 {
		n--
	}
	return n, err
}

func TestRequestBorrowLimitHeldAgainstStaleCount(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	f.svc.borrowRepo = &staleCountBorrowRepo{f.borrowRepo}
	member := f.userRepo.addUser("reader@example.com", "Reader", models.RoleMember)

	for i := 0; i < 3; i++ {
		book := f.bookRepo.addBook("Filler", 1)
		_, err := f.svc.RequestBorrow(ctx, book.ID, member.Email)
		require.NoError(t, err)
	}

	// The stale count lets this request past the policy check; the
	// insert-time guard must still reject it.
	book := f.bookRepo.addBook("One Too Many", 1)
	_, err := f.svc.RequestBorrow(ctx, book.ID, member.Email)
	require.ErrorIs(t, err, apperrors.ErrBorrowLimitReached)
}

func TestRequestBorrowDeniedWhenNoCopies(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	member := f.userRepo.addUser("reader@example.com", "Reader", models.RoleMember)
	book := f.bookRepo.addBook("Single Copy", 1)
	require.NoError(t, f.bookRepo.AdjustAvailability(ctx, book.ID, -1))

	_, err := f.svc.RequestBorrow(ctx, book.ID, member.Email)
	require.ErrorIs(t, err, apperrors.ErrNoCopiesAvailable)
}

func TestRequestBorrowUnknownBook(t *testing.T) {
	f := newBorrowFixture(t)
	member := f.userRepo.addUser("reader@example.com", "Reader", models.RoleMember)

	_, err := f.svc.RequestBorrow(context.Background(), 99, member.Email)
	require.ErrorIs(t, err, apperrors.ErrBookNotFound)
}

func TestRequestBorrowRejectsSecondActiveForSameBook(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	member := f.userRepo.addUser("reader@example.com", "Reader", models.RoleMember)
	book := f.bookRepo.addBook("Popular", 5)

	_, err := f.svc.RequestBorrow(ctx, book.ID, member.Email)
	require.NoError(t, err)

	// A pending request already occupies the (book, user) slot.
	_, err = f.svc.RequestBorrow(ctx, book.ID, member.Email)
	require.ErrorIs(t, err, apperrors.ErrAlreadyBorrowed)

	// Still occupied after confirmation.
	recs, err := f.svc.MyBorrowedBooks(ctx, member.Email)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	_, err = f.svc.ConfirmBorrow(ctx, recs[0].ID)
	require.NoError(t, err)

	_, err = f.svc.RequestBorrow(ctx, book.ID, member.Email)
	require.ErrorIs(t, err, apperrors.ErrAlreadyBorrowed)
}

func TestDueDateFollowsRole(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	member := f.userRepo.addUser("member@example.com", "Member", models.RoleMember)
	teacher := f.userRepo.addUser("teacher@example.com", "Teacher", models.RoleTeacher)
	book1 := f.bookRepo.addBook("First", 2)
	book2 := f.bookRepo.addBook("Second", 2)

	memberRec, err := f.svc.RequestBorrow(ctx, book1.ID, member.Email)
	require.NoError(t, err)
	teacherRec, err := f.svc.RequestBorrow(ctx, book2.ID, teacher.Email)
	require.NoError(t, err)

	memberDue := f.now.AddDate(0, 0, 7).Format("2006-01-02T15:04:05Z07:00")
	teacherDue := f.now.AddDate(0, 0, 15).Format("2006-01-02T15:04:05Z07:00")
	require.Equal(t, memberDue, memberRec.ReturnDate)
	require.Equal(t, teacherDue, teacherRec.ReturnDate)
}

func TestBorrowReturnRoundTripRestoresAvailability(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	member := f.userRepo.addUser("reader@example.com", "Reader", models.RoleMember)
	book := f.bookRepo.addBook("Round Trip", 2)

	rec, err := f.svc.RequestBorrow(ctx, book.ID, member.Email)
	require.NoError(t, err)
	require.Equal(t, models.BorrowPending, rec.Status)

	// The request itself does not touch the inventory.
	got, err := f.bookRepo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.AvailableCopies)

	confirmed, err := f.svc.ConfirmBorrow(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, models.BorrowConfirmed, confirmed.Status)
	require.NotEmpty(t, confirmed.BorrowConfirmedAt)

	got, err = f.bookRepo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.AvailableCopies)

	returnReq, err := f.svc.RequestReturn(ctx, book.ID, member.Email)
	require.NoError(t, err)
	require.Equal(t, models.ReturnPending, returnReq.Status)

	// Still out until the admin confirms the return.
	got, err = f.bookRepo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.AvailableCopies)

	done, err := f.svc.ConfirmReturn(ctx, returnReq.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReturnConfirmed, done.Status)

	got, err = f.bookRepo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.AvailableCopies)
	require.Equal(t, models.BookAvailable, got.Status)

	// The cycle is complete; the slot is free for a fresh borrow.
	_, err = f.svc.RequestBorrow(ctx, book.ID, member.Email)
	require.NoError(t, err)
}

func TestInvalidTransitionsRejected(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	member := f.userRepo.addUser("reader@example.com", "Reader", models.RoleMember)
	book := f.bookRepo.addBook("Strict", 1)

	rec, err := f.svc.RequestBorrow(ctx, book.ID, member.Email)
	require.NoError(t, err)

	// Return cannot be requested while the borrow is still pending.
	_, err = f.svc.RequestReturn(ctx, book.ID, member.Email)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	// Confirming a return on a pending-borrow record is rejected.
	_, err = f.svc.ConfirmReturn(ctx, rec.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = f.svc.ConfirmBorrow(ctx, rec.ID)
	require.NoError(t, err)

	// Double confirmation must not decrement the inventory twice.
	_, err = f.svc.ConfirmBorrow(ctx, rec.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	got, err := f.bookRepo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.AvailableCopies)

	// Unknown record IDs surface as not found.
	_, err = f.svc.ConfirmBorrow(ctx, 999)
	require.ErrorIs(t, err, apperrors.ErrBorrowRecordNotFound)

	// A return request without any active record is not found either.
	other := f.bookRepo.addBook("Other", 1)
	_, err = f.svc.RequestReturn(ctx, other.ID, member.Email)
	require.ErrorIs(t, err, apperrors.ErrBorrowRecordNotFound)
}

func TestConfirmBorrowFailsWhenCopiesExhausted(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	first := f.userRepo.addUser("first@example.com", "First", models.RoleMember)
	second := f.userRepo.addUser("second@example.com", "Second", models.RoleMember)
	book := f.bookRepo.addBook("Contested", 1)

	recFirst, err := f.svc.RequestBorrow(ctx, book.ID, first.Email)
	require.NoError(t, err)
	recSecond, err := f.svc.RequestBorrow(ctx, book.ID, second.Email)
	require.NoError(t, err)

	_, err = f.svc.ConfirmBorrow(ctx, recFirst.ID)
	require.NoError(t, err)

	// The last copy is gone; the second confirmation cannot proceed.
	_, err = f.svc.ConfirmBorrow(ctx, recSecond.ID)
	require.ErrorIs(t, err, apperrors.ErrNoCopiesAvailable)
}

func TestBorrowStatusReportsActiveRecord(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	member := f.userRepo.addUser("reader@example.com", "Reader", models.RoleMember)
	book := f.bookRepo.addBook("Tracked", 1)

	status, err := f.svc.BorrowStatus(ctx, book.ID, member.Email)
	require.NoError(t, err)
	require.False(t, status.Active)
	require.Nil(t, status.Record)

	rec, err := f.svc.RequestBorrow(ctx, book.ID, member.Email)
	require.NoError(t, err)

	status, err = f.svc.BorrowStatus(ctx, book.ID, member.Email)
	require.NoError(t, err)
	require.True(t, status.Active)
	require.Equal(t, rec.ID, status.Record.ID)
}

func TestTeacherBorrowScenario(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	teacher := f.userRepo.addUser("prof@example.com", "Prof", models.RoleTeacher)

	// A teacher can hold five concurrent borrows.
	var recordIDs []int64
	for i := 0; i < 5; i++ {
		book := f.bookRepo.addBook("Course Text", 1)
		rec, err := f.svc.RequestBorrow(ctx, book.ID, teacher.Email)
		require.NoError(t, err)
		confirmed, err := f.svc.ConfirmBorrow(ctx, rec.ID)
		require.NoError(t, err)
		recordIDs = append(recordIDs, confirmed.ID)
	}

	// The sixth is over the limit.
	extra := f.bookRepo.addBook("One Too Many", 1)
	_, err := f.svc.RequestBorrow(ctx, extra.ID, teacher.Email)
	require.ErrorIs(t, err, apperrors.ErrBorrowLimitReached)

	// Returning one frees a slot.
	first, err := f.borrowRepo.GetByID(ctx, recordIDs[0])
	require.NoError(t, err)
	returnReq, err := f.svc.RequestReturn(ctx, first.BookID, teacher.Email)
	require.NoError(t, err)
	_, err = f.svc.ConfirmReturn(ctx, returnReq.ID)
	require.NoError(t, err)

	_, err = f.svc.RequestBorrow(ctx, extra.ID, teacher.Email)
	require.NoError(t, err)

	history, err := f.svc.History(ctx, teacher.Email)
	require.NoError(t, err)
	require.Len(t, history, 6)

	active, err := f.svc.MyBorrowedBooks(ctx, teacher.Email)
	require.NoError(t, err)
	require.Len(t, active, 5)
}

func TestAdminListingsOrderPendingFirst(t *testing.T) {
	f := newBorrowFixture(t)
	ctx := context.Background()
	member := f.userRepo.addUser("reader@example.com", "Reader", models.RoleMember)

	borrowed := f.bookRepo.addBook("Borrowed", 1)
	pending := f.bookRepo.addBook("Pending", 1)

	rec, err := f.svc.RequestBorrow(ctx, borrowed.ID, member.Email)
	require.NoError(t, err)
	_, err = f.svc.ConfirmBorrow(ctx, rec.ID)
	require.NoError(t, err)

	pendingRec, err := f.svc.RequestBorrow(ctx, pending.ID, member.Email)
	require.NoError(t, err)

	all, err := f.svc.AllRecords(ctx, 1, 10, "")
	require.NoError(t, err)
	require.Len(t, all.Records, 2)
	require.Equal(t, pendingRec.ID, all.Records[0].ID)

	pendingList, err := f.svc.PendingRequests(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, pendingList.Records, 1)
	require.Equal(t, pendingRec.ID, pendingList.Records[0].ID)
}
