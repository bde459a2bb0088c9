package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/logger"
)

// ICarouselRepository defines the interface for carousel slide operations
type ICarouselRepository interface {
	Create(ctx context.Context, slide *models.CarouselSlide) (int64, error)
	GetAll(ctx context.Context) ([]models.CarouselSlide, error)
	Update(ctx context.Context, slide *models.CarouselSlide) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// CarouselRepository handles carousel slide database operations
type CarouselRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCarouselRepository creates a new CarouselRepository
func NewCarouselRepository(db *pgxpool.Pool) *CarouselRepository {
	return &CarouselRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new carousel slide
func (r *CarouselRepository) Create(ctx context.Context, slide *models.CarouselSlide) (int64, error) {
	sql, args, err := r.sb.Insert("carousel_slides").
		Columns("title", "subtitle", "image_url", "sort_order").
		Values(slide.Title, slide.Subtitle, slide.ImageURL, slide.SortOrder).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create carousel slide query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Str("title", slide.Title).Msg("Error executing create carousel slide query")
		return 0, fmt.Errorf("error inserting carousel slide: %w", err)
	}

	logger.Info().Int64("slideID", id).Str("title", slide.Title).Msg("Carousel slide created")
	return id, nil
}

// GetAll retrieves all carousel slides in display order
func (r *CarouselRepository) GetAll(ctx context.Context) ([]models.CarouselSlide, error) {
	sql, args, err := r.sb.Select("id", "title", "subtitle", "image_url", "sort_order", "created_at").
		From("carousel_slides").
		OrderBy("sort_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list carousel slides query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list carousel slides query")
		return nil, fmt.Errorf("failed to query carousel slides: %w", err)
	}
	defer rows.Close()

	var slides []models.CarouselSlide
	for rows.Next() {
		var slide models.CarouselSlide
		if err := rows.Scan(&slide.ID, &slide.Title, &slide.Subtitle, &slide.ImageURL, &slide.SortOrder, &slide.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan carousel slide row: %w", err)
		}
		slides = append(slides, slide)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating carousel slide rows: %w", err)
	}

	return slides, nil
}

// Update modifies an existing carousel slide
func (r *CarouselRepository) Update(ctx context.Context, slide *models.CarouselSlide) error {
	sql, args, err := r.sb.Update("carousel_slides").
		Set("title", slide.Title).
		Set("subtitle", slide.Subtitle).
		Set("image_url", slide.ImageURL).
		Set("sort_order", slide.SortOrder).
		Where(squirrel.Eq{"id": slide.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update carousel slide query: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("slideID", slide.ID).Msg("Error executing update carousel slide query")
		return fmt.Errorf("error updating carousel slide ID=%d: %w", slide.ID, err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrCarouselSlideNotFound
	}

	return nil
}

// Delete removes a carousel slide by ID
func (r *CarouselRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("carousel_slides").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete carousel slide query: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("slideID", id).Msg("Error executing delete carousel slide query")
		return fmt.Errorf("error deleting carousel slide ID=%d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrCarouselSlideNotFound
	}

	logger.Info().Int64("slideID", id).Msg("Carousel slide deleted")
	return nil
}

// Count returns the number of carousel slides
func (r *CarouselRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM carousel_slides").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count carousel slides: %w", err)
	}
	return count, nil
}
