package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/helpers"
)

// In-memory repository fakes. The borrow fake reproduces the store's
// contract: conditional transitions keyed on the prior status, and the
// inventory adjustment clamped to [0, totalCopies].

type mockUserRepo struct {
	users  map[string]*models.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User), nextID: 1}
}

func (m *mockUserRepo) addUser(email, name string, role models.Role) *models.User {
	u := &models.User{
		ID:        m.nextID,
		Email:     email,
		Password:  "$2a$12$fakehash",
		Name:      name,
		Role:      role,
		Status:    models.UserActive,
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.users[email] = u
	return u
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) (int64, error) {
	if _, ok := m.users[user.Email]; ok {
		return 0, apperrors.ErrEmailAlreadyExists
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.Email] = &cp
	return user.ID, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := m.users[email]
	return ok, nil
}

func (m *mockUserRepo) GetRoleByEmail(_ context.Context, email string) (models.Role, error) {
	u, ok := m.users[email]
	if !ok {
		return "", apperrors.ErrUserNotFound
	}
	return u.Role, nil
}

func (m *mockUserRepo) UpdateName(_ context.Context, email, name string) error {
	u, ok := m.users[email]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Name = name
	return nil
}

func (m *mockUserRepo) UpdateStatus(_ context.Context, id int64, status models.UserStatus) error {
	for _, u := range m.users {
		if u.ID == id {
			u.Status = status
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

func (m *mockUserRepo) GetAll(_ context.Context, page, pageSize int) ([]models.User, int64, error) {
	var all []models.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []models.User{}, int64(len(all)), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	for email, u := range m.users {
		if u.ID == id {
			delete(m.users, email)
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

type mockBookRepo struct {
	books  map[int64]*models.Book
	nextID int64
}

func newMockBookRepo() *mockBookRepo {
	return &mockBookRepo{books: make(map[int64]*models.Book), nextID: 1}
}

func (m *mockBookRepo) addBook(title string, totalCopies int) *models.Book {
	b := &models.Book{
		ID:              m.nextID,
		Title:           title,
		Authors:         []string{"Author"},
		Category:        "Fiction",
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		Status:          models.BookStatusFor(totalCopies),
		CreatedAt:       time.Now(),
	}
	m.nextID++
	m.books[b.ID] = b
	return b
}

func (m *mockBookRepo) Create(_ context.Context, book *models.Book) (int64, error) {
	book.ID = m.nextID
	m.nextID++
	book.AvailableCopies = book.TotalCopies
	book.Status = models.BookStatusFor(book.AvailableCopies)
	cp := *book
	m.books[book.ID] = &cp
	return book.ID, nil
}

func (m *mockBookRepo) GetByID(_ context.Context, id int64) (*models.Book, error) {
	b, ok := m.books[id]
	if !ok {
		return nil, apperrors.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBookRepo) Update(_ context.Context, book *models.Book) error {
	if _, ok := m.books[book.ID]; !ok {
		return apperrors.ErrBookNotFound
	}
	cp := *book
	cp.Status = models.BookStatusFor(cp.AvailableCopies)
	m.books[book.ID] = &cp
	return nil
}

func (m *mockBookRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.books[id]; !ok {
		return apperrors.ErrBookNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *mockBookRepo) List(_ context.Context, filter dto.BookFilter) ([]models.Book, int64, error) {
	var all []models.Book
	for _, b := range m.books {
		if filter.Search != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Search)) {
			continue
		}
		all = append(all, *b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all, int64(len(all)), nil
}

func (m *mockBookRepo) ListCategories(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var categories []string
	for _, b := range m.books {
		if !seen[b.Category] {
			seen[b.Category] = true
			categories = append(categories, b.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (m *mockBookRepo) Featured(ctx context.Context, limit int) ([]models.Book, error) {
	books, _, err := m.List(ctx, dto.BookFilter{})
	if err != nil || len(books) <= limit {
		return books, err
	}
	return books[:limit], nil
}

func (m *mockBookRepo) TopBorrowed(ctx context.Context, limit int) ([]models.Book, error) {
	return m.Featured(ctx, limit)
}

func (m *mockBookRepo) AdjustAvailability(_ context.Context, bookID int64, delta int) error {
	b, ok := m.books[bookID]
	if !ok {
		return apperrors.ErrBookNotFound
	}
	next := b.AvailableCopies + delta
	if next < 0 || next > b.TotalCopies {
		return apperrors.ErrInventoryInconsistency
	}
	b.AvailableCopies = next
	b.Status = models.BookStatusFor(next)
	return nil
}

func (m *mockBookRepo) InventoryStats(_ context.Context) (models.InventoryStats, error) {
	var stats models.InventoryStats
	for _, b := range m.books {
		stats.TotalBooks++
		if b.Status == models.BookAvailable {
			stats.AvailableBooks++
		}
		stats.TotalCopies += int64(b.AvailableCopies)
	}
	return stats, nil
}

type mockBorrowRepo struct {
	records map[int64]*models.BorrowRecord
	books   *mockBookRepo
	nextID  int64
}

func newMockBorrowRepo(books *mockBookRepo) *mockBorrowRepo {
	return &mockBorrowRepo{records: make(map[int64]*models.BorrowRecord), books: books, nextID: 1}
}

func (m *mockBorrowRepo) Create(_ context.Context, record *models.BorrowRecord, maxActive int) (int64, error) {
	active := 0
	for _, r := range m.records {
		if r.UserEmail == record.UserEmail && r.Status.IsActive() {
			active++
		}
		if r.BookID == record.BookID && r.UserEmail == record.UserEmail && r.Status.IsActive() {
			return 0, apperrors.ErrAlreadyBorrowed
		}
	}
	if maxActive >= 0 && active >= maxActive {
		return 0, apperrors.ErrBorrowLimitReached
	}
	record.ID = m.nextID
	m.nextID++
	cp := *record
	m.records[record.ID] = &cp
	return record.ID, nil
}

func (m *mockBorrowRepo) GetByID(_ context.Context, id int64) (*models.BorrowRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, apperrors.ErrBorrowRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockBorrowRepo) FindActive(_ context.Context, bookID int64, email string) (*models.BorrowRecord, error) {
	for _, r := range m.records {
		if r.BookID == bookID && r.UserEmail == email && r.Status.IsActive() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockBorrowRepo) ActiveCountForUser(_ context.Context, email string) (int, error) {
	count := 0
	for _, r := range m.records {
		if r.UserEmail == email && r.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (m *mockBorrowRepo) ConfirmBorrow(ctx context.Context, recordID int64) (*models.BorrowRecord, error) {
	r, ok := m.records[recordID]
	if !ok {
		return nil, apperrors.ErrBorrowRecordNotFound
	}
	if r.Status != models.BorrowPending {
		return nil, apperrors.ErrInvalidTransition
	}
	if err := m.books.AdjustAvailability(ctx, r.BookID, -1); err != nil {
		return nil, apperrors.ErrNoCopiesAvailable
	}
	now := time.Now().UTC()
	r.Status = models.BorrowConfirmed
	r.BorrowConfirmedAt = &now
	cp := *r
	return &cp, nil
}

func (m *mockBorrowRepo) RequestReturn(_ context.Context, bookID int64, email string) (*models.BorrowRecord, error) {
	for _, r := range m.records {
		if r.BookID != bookID || r.UserEmail != email || !r.Status.IsActive() {
			continue
		}
		if r.Status != models.BorrowConfirmed {
			return nil, apperrors.ErrInvalidTransition
		}
		now := time.Now().UTC()
		r.Status = models.ReturnPending
		r.RequestDate = &now
		cp := *r
		return &cp, nil
	}
	return nil, apperrors.ErrBorrowRecordNotFound
}

func (m *mockBorrowRepo) ConfirmReturn(ctx context.Context, recordID int64) (*models.BorrowRecord, error) {
	r, ok := m.records[recordID]
	if !ok {
		return nil, apperrors.ErrBorrowRecordNotFound
	}
	if r.Status != models.ReturnPending {
		return nil, apperrors.ErrInvalidTransition
	}
	if err := m.books.AdjustAvailability(ctx, r.BookID, +1); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	r.Status = models.ReturnConfirmed
	r.ReturnConfirmedAt = &now
	cp := *r
	return &cp, nil
}

func (m *mockBorrowRepo) HistoryForUser(_ context.Context, email string) ([]models.BorrowRecord, error) {
	var records []models.BorrowRecord
	for _, r := range m.records {
		if r.UserEmail == email {
			records = append(records, *r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].BorrowDate.After(records[j].BorrowDate) })
	return records, nil
}

func (m *mockBorrowRepo) PendingForAdmin(_ context.Context, page, pageSize int) ([]models.BorrowRecord, int64, error) {
	var records []models.BorrowRecord
	for _, r := range m.records {
		if r.Status == models.BorrowPending || r.Status == models.ReturnPending {
			records = append(records, *r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].BorrowDate.After(records[j].BorrowDate) })
	return records, int64(len(records)), nil
}

func (m *mockBorrowRepo) AllForAdmin(_ context.Context, page, pageSize int, sortOrder string) ([]models.BorrowRecord, int64, error) {
	var records []models.BorrowRecord
	for _, r := range m.records {
		records = append(records, *r)
	}
	priority := map[models.BorrowStatus]int{
		models.BorrowPending:   0,
		models.ReturnPending:   1,
		models.BorrowConfirmed: 2,
		models.ReturnConfirmed: 3,
	}
	sort.Slice(records, func(i, j int) bool {
		if priority[records[i].Status] != priority[records[j].Status] {
			return priority[records[i].Status] < priority[records[j].Status]
		}
		return records[i].BorrowDate.After(records[j].BorrowDate)
	})
	return records, int64(len(records)), nil
}

func (m *mockBorrowRepo) ActivityByDay(_ context.Context, since time.Time, email string) ([]models.DayActivity, error) {
	buckets := make(map[string]*models.DayActivity)
	bucket := func(day string) *models.DayActivity {
		if b, ok := buckets[day]; ok {
			return b
		}
		b := &models.DayActivity{Day: day}
		buckets[day] = b
		return b
	}

	for _, r := range m.records {
		if email != "" && r.UserEmail != email {
			continue
		}
		if !r.BorrowDate.Before(since) {
			day := helpers.DayKey(r.BorrowDate)
			if r.Status == models.BorrowPending {
				bucket(day).PendingBorrow++
			} else {
				bucket(day).Borrowed++
			}
		}
		if r.Status == models.ReturnConfirmed && r.ReturnConfirmedAt != nil && !r.ReturnConfirmedAt.Before(since) {
			bucket(helpers.DayKey(*r.ReturnConfirmedAt)).Returned++
		}
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

func (m *mockBorrowRepo) Stats(_ context.Context) (models.LedgerStats, error) {
	var stats models.LedgerStats
	for _, r := range m.records {
		stats.Total++
		switch r.Status {
		case models.BorrowPending:
			stats.PendingBorrow++
		case models.BorrowConfirmed:
			stats.Borrowed++
		case models.ReturnPending:
			stats.PendingReturn++
		case models.ReturnConfirmed:
			stats.Returned++
		}
	}
	return stats, nil
}

type mockContactRepo struct {
	messages map[int64]*models.ContactMessage
	nextID   int64
}

func newMockContactRepo() *mockContactRepo {
	return &mockContactRepo{messages: make(map[int64]*models.ContactMessage), nextID: 1}
}

func (m *mockContactRepo) Create(_ context.Context, message *models.ContactMessage) (int64, error) {
	message.ID = m.nextID
	m.nextID++
	message.CreatedAt = time.Now()
	cp := *message
	m.messages[message.ID] = &cp
	return message.ID, nil
}

func (m *mockContactRepo) GetAll(_ context.Context, page, pageSize int) ([]models.ContactMessage, int64, error) {
	var all []models.ContactMessage
	for _, msg := range m.messages {
		all = append(all, *msg)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all, int64(len(all)), nil
}

func (m *mockContactRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.messages[id]; !ok {
		return apperrors.ErrContactMessageNotFound
	}
	delete(m.messages, id)
	return nil
}

type mockCarouselRepo struct {
	slides map[int64]*models.CarouselSlide
	nextID int64
}

func newMockCarouselRepo() *mockCarouselRepo {
	return &mockCarouselRepo{slides: make(map[int64]*models.CarouselSlide), nextID: 1}
}

func (m *mockCarouselRepo) Create(_ context.Context, slide *models.CarouselSlide) (int64, error) {
	slide.ID = m.nextID
	m.nextID++
	slide.CreatedAt = time.Now()
	cp := *slide
	m.slides[slide.ID] = &cp
	return slide.ID, nil
}

func (m *mockCarouselRepo) GetAll(_ context.Context) ([]models.CarouselSlide, error) {
	var all []models.CarouselSlide
	for _, s := range m.slides {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].SortOrder != all[j].SortOrder {
			return all[i].SortOrder < all[j].SortOrder
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (m *mockCarouselRepo) Update(_ context.Context, slide *models.CarouselSlide) error {
	if _, ok := m.slides[slide.ID]; !ok {
		return apperrors.ErrCarouselSlideNotFound
	}
	cp := *slide
	m.slides[slide.ID] = &cp
	return nil
}

func (m *mockCarouselRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.slides[id]; !ok {
		return apperrors.ErrCarouselSlideNotFound
	}
	delete(m.slides, id)
	return nil
}

func (m *mockCarouselRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.slides)), nil
}

type storedToken struct {
	userID     int64
	expiryDate time.Time
	revoked    bool
}

type mockTokenRepo struct {
	tokens map[string]*storedToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[string]*storedToken)}
}

func (m *mockTokenRepo) Create(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	if _, ok := m.tokens[token]; ok {
		return apperrors.ErrTokenInvalid
	}
	m.tokens[token] = &storedToken{userID: userID, expiryDate: expiryDate}
	return nil
}

func (m *mockTokenRepo) GetUserID(_ context.Context, token string) (int64, error) {
	t, ok := m.tokens[token]
	if !ok {
		return 0, apperrors.ErrTokenNotFound
	}
	if t.revoked {
		return 0, apperrors.ErrTokenRevoked
	}
	if t.expiryDate.Before(time.Now()) {
		return 0, apperrors.ErrTokenExpired
	}
	return t.userID, nil
}

func (m *mockTokenRepo) Revoke(_ context.Context, token string) error {
	t, ok := m.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}
