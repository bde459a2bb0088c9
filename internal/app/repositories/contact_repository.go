package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/helpers"
	"github.com/cpbi/librarian/internal/pkg/logger"
)

// IContactRepository defines the interface for contact message operations
type IContactRepository interface {
	Create(ctx context.Context, message *models.ContactMessage) (int64, error)
	GetAll(ctx context.Context, page, pageSize int) ([]models.ContactMessage, int64, error)
	Delete(ctx context.Context, id int64) error
}

// ContactRepository handles contact message database operations
type ContactRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new contact message
func (r *ContactRepository) Create(ctx context.Context, message *models.ContactMessage) (int64, error) {
	sql, args, err := r.sb.Insert("contact_messages").
		Columns("name", "email", "message").
		Values(message.Name, message.Email, message.Message).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create contact message query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Str("email", message.Email).Msg("Error executing create contact message query")
		return 0, fmt.Errorf("error inserting contact message: %w", err)
	}

	return id, nil
}

// GetAll retrieves contact messages with pagination, newest first
func (r *ContactRepository) GetAll(ctx context.Context, page, pageSize int) ([]models.ContactMessage, int64, error) {
	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("contact_messages").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count contact messages query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count contact messages: %w", err)
	}

	if totalItems == 0 {
		return []models.ContactMessage{}, 0, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	sql, args, err := r.sb.Select("id", "name", "email", "message", "created_at").
		From("contact_messages").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list contact messages query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list contact messages query")
		return nil, 0, fmt.Errorf("failed to query contact messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ContactMessage
	for rows.Next() {
		var msg models.ContactMessage
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message, &msg.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact message row: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating contact message rows: %w", err)
	}

	return messages, totalItems, nil
}

// Delete removes a contact message by ID
func (r *ContactRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("contact_messages").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete contact message query: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("messageID", id).Msg("Error executing delete contact message query")
		return fmt.Errorf("error deleting contact message ID=%d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrContactMessageNotFound
	}

	logger.Info().Int64("messageID", id).Msg("Contact message deleted")
	return nil
}
