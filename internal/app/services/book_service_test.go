package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestCreateBookStartsFullyAvailable(t *testing.T) {
	bookRepo := newMockBookRepo()
	svc := NewBookService(bookRepo, zerolog.Nop())

	book, err := svc.Create(context.Background(), dto.CreateBookRequest{
		Title:       "  The Go Programming Language  ",
		Authors:     []string{"Alan Donovan", "Brian Kernighan"},
		Category:    "Programming",
		Language:    "English",
		ShelfNo:     "A-12",
		TotalCopies: 4,
	})
	require.NoError(t, err)
	require.Equal(t, "The Go Programming Language", book.Title)
	require.Equal(t, 4, book.TotalCopies)
	require.Equal(t, 4, book.AvailableCopies)
	require.Equal(t, models.BookAvailable, book.Status)
}

func TestCreateBookValidation(t *testing.T) {
	bookRepo := newMockBookRepo()
	svc := NewBookService(bookRepo, zerolog.Nop())
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.CreateBookRequest
	}{
		{"no authors", dto.CreateBookRequest{Title: "T", Authors: nil, Category: "C", TotalCopies: 1}},
		{"blank author", dto.CreateBookRequest{Title: "T", Authors: []string{"  "}, Category: "C", TotalCopies: 1}},
		{"zero copies", dto.CreateBookRequest{Title: "T", Authors: []string{"A"}, Category: "C", TotalCopies: 0}},
		{"blank title", dto.CreateBookRequest{Title: "   ", Authors: []string{"A"}, Category: "C", TotalCopies: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			require.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestUpdateBookClampsCopies(t *testing.T) {
	bookRepo := newMockBookRepo()
	svc := NewBookService(bookRepo, zerolog.Nop())
	ctx := context.Background()
	book := bookRepo.addBook("Clamped", 5)

	// Shrinking the total drags the available count down with it.
	updated, err := svc.Update(ctx, book.ID, dto.UpdateBookRequest{TotalCopies: intp(2)})
	require.NoError(t, err)
	require.Equal(t, 2, updated.TotalCopies)
	require.Equal(t, 2, updated.AvailableCopies)
	require.Equal(t, models.BookAvailable, updated.Status)

	// A negative available count clamps to zero and flips the status.
	updated, err = svc.Update(ctx, book.ID, dto.UpdateBookRequest{AvailableCopies: intp(-3)})
	require.NoError(t, err)
	require.Equal(t, 0, updated.AvailableCopies)
	require.NotEqual(t, models.BookAvailable, updated.Status)

	// An oversized available count clamps to the total.
	updated, err = svc.Update(ctx, book.ID, dto.UpdateBookRequest{AvailableCopies: intp(99)})
	require.NoError(t, err)
	require.Equal(t, 2, updated.AvailableCopies)
	require.Equal(t, models.BookAvailable, updated.Status)
}

func TestUpdateBookValidation(t *testing.T) {
	bookRepo := newMockBookRepo()
	svc := NewBookService(bookRepo, zerolog.Nop())
	ctx := context.Background()
	book := bookRepo.addBook("Strict", 1)

	_, err := svc.Update(ctx, book.ID, dto.UpdateBookRequest{Title: strp("  ")})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Update(ctx, book.ID, dto.UpdateBookRequest{Authors: []string{""}})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Update(ctx, book.ID, dto.UpdateBookRequest{TotalCopies: intp(0)})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Update(ctx, 999, dto.UpdateBookRequest{})
	require.ErrorIs(t, err, apperrors.ErrBookNotFound)
}

func TestListBooksClampsPagination(t *testing.T) {
	bookRepo := newMockBookRepo()
	svc := NewBookService(bookRepo, zerolog.Nop())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		bookRepo.addBook("Paged", 1)
	}

	resp, err := svc.List(ctx, dto.BookFilter{Page: 0, PageSize: 0})
	require.NoError(t, err)
	require.Equal(t, 1, resp.PaginationInfo.CurrentPage)
	require.Equal(t, 10, resp.PaginationInfo.PageSize)
	require.EqualValues(t, 3, resp.PaginationInfo.TotalItems)
	require.Equal(t, 1, resp.PaginationInfo.TotalPages)

	resp, err = svc.List(ctx, dto.BookFilter{Page: 1, PageSize: 1000})
	require.NoError(t, err)
	require.Equal(t, 100, resp.PaginationInfo.PageSize)
}

func TestDeleteBook(t *testing.T) {
	bookRepo := newMockBookRepo()
	svc := NewBookService(bookRepo, zerolog.Nop())
	ctx := context.Background()
	book := bookRepo.addBook("Gone", 1)

	require.NoError(t, svc.Delete(ctx, book.ID))
	_, err := svc.GetByID(ctx, book.ID)
	require.ErrorIs(t, err, apperrors.ErrBookNotFound)

	require.ErrorIs(t, svc.Delete(ctx, book.ID), apperrors.ErrBookNotFound)
}
