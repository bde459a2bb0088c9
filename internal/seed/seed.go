// Package seed creates the default data a fresh deployment needs
package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/repositories"
	"github.com/cpbi/librarian/internal/config"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/auth"
)

// CreateDefaultData ensures the default admin account and a starter carousel
// exist. Safe to run on every startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	userRepo := repositories.NewUserRepository(dbPool)
	carouselRepo := repositories.NewCarouselRepository(dbPool)

	var finalErr error

	if err := createDefaultAdmin(ctx, userRepo, cfg, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}
	if err := createDefaultCarousel(ctx, carouselRepo, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	return finalErr
}

func createDefaultAdmin(ctx context.Context, userRepo *repositories.UserRepository, cfg *config.Config, lgr zerolog.Logger) error {
	exists, err := userRepo.EmailExists(ctx, cfg.Admin.Email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking for default admin account")
		return err
	}
	if exists {
		return nil
	}

	hashed, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing default admin password")
		return err
	}

	admin := &models.User{
		Email:    cfg.Admin.Email,
		Password: hashed,
		Name:     "Administrator",
		Role:     models.RoleAdmin,
		Status:   models.UserActive,
	}

	if _, err := userRepo.Create(ctx, admin); err != nil {
		// Lost a race with another instance bootstrapping the same database
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating default admin account")
		return err
	}

	lgr.Info().Str("email", cfg.Admin.Email).Msg("Default admin account created")
	return nil
}

func createDefaultCarousel(ctx context.Context, carouselRepo *repositories.CarouselRepository, lgr zerolog.Logger) error {
	count, err := carouselRepo.Count(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking carousel slides")
		return err
	}
	if count > 0 {
		return nil
	}

	slides := []models.CarouselSlide{
		{
			Title:     "Welcome to the Library",
			Subtitle:  "Browse the catalog and borrow your next read",
			ImageURL:  "/static/carousel/welcome.jpg",
			SortOrder: 1,
		},
		{
			Title:     "New Arrivals",
			Subtitle:  "Fresh titles added every week",
			ImageURL:  "/static/carousel/new-arrivals.jpg",
			SortOrder: 2,
		},
	}

	var finalErr error
	for i := range slides {
		if _, err := carouselRepo.Create(ctx, &slides[i]); err != nil {
			lgr.Error().Err(err).Str("title", slides[i].Title).Msg("Error creating default carousel slide")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr == nil {
		lgr.Info().Int("slides", len(slides)).Msg("Default carousel created")
	}
	return finalErr
}
