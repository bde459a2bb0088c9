package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx operations shared by a pool and a transaction.
// Repository helpers that must run inside a caller-owned transaction accept it
// instead of the pool.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository     *UserRepository
	BookRepository     *BookRepository
	BorrowRepository   *BorrowRepository
	TokenRepository    *TokenRepository
	ContactRepository  *ContactRepository
	CarouselRepository *CarouselRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:     NewUserRepository(db),
		BookRepository:     NewBookRepository(db),
		BorrowRepository:   NewBorrowRepository(db),
		TokenRepository:    NewTokenRepository(db),
		ContactRepository:  NewContactRepository(db),
		CarouselRepository: NewCarouselRepository(db),
	}
}
