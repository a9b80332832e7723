package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/repository"
	"github.com/damkaswim/storefront/pkg/database"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

const messageColumns = `id, name, email, phone, subject, body, newsletter, status,
	reply_subject, reply_body, replied_at, created_at, updated_at`

// MessageRepository implements repository.MessageRepository using PostgreSQL.
type MessageRepository struct {
	pool database.DBTX
}

// NewMessageRepository creates a PostgreSQL-backed contact message repository.
func NewMessageRepository(pool database.DBTX) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create inserts a new contact message.
func (r *MessageRepository) Create(ctx context.Context, m *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		m.ID,
		m.Name,
		m.Email,
		m.Phone,
		m.Subject,
		m.Body,
		m.Newsletter,
		m.Status,
		m.ReplySubject,
		m.ReplyBody,
		m.RepliedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}

	return nil
}

// GetByID retrieves a contact message by its ID.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM contact_messages WHERE id = $1`

	m, err := scanMessage(r.pool.QueryRow(ctx, query, id), nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("message", id)
		}
		return nil, fmt.Errorf("get contact message: %w", err)
	}
	return m, nil
}

// List returns messages matching the filter plus the total count, newest first.
func (r *MessageRepository) List(ctx context.Context, filter repository.MessageFilter) ([]domain.ContactMessage, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("subject = $%d", argIndex))
		args = append(args, filter.Subject)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT `+messageColumns+`, count(*) OVER() AS total_count
		FROM contact_messages
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var (
		messages   []domain.ContactMessage
		totalCount int
	)

	for rows.Next() {
		m, err := scanMessage(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate message rows: %w", err)
	}

	if messages == nil {
		messages = []domain.ContactMessage{}
	}
	return messages, totalCount, nil
}

// UpdateStatus sets the message status.
func (r *MessageRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE contact_messages SET status = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update message status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("message", id)
	}
	return nil
}

// SaveReply records the reply sent for a message and marks it replied.
func (r *MessageRepository) SaveReply(ctx context.Context, id, subject, body string, repliedAt time.Time) error {
	query := `
		UPDATE contact_messages
		SET reply_subject = $1, reply_body = $2, replied_at = $3, status = $4, updated_at = $3
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query, subject, body, repliedAt, domain.MessageStatusReplied, id)
	if err != nil {
		return fmt.Errorf("save message reply: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("message", id)
	}
	return nil
}

// Delete removes a contact message.
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact message: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("message", id)
	}
	return nil
}

func scanMessage(row rowScanner, totalCount *int) (*domain.ContactMessage, error) {
	var (
		m            domain.ContactMessage
		replySubject *string
		replyBody    *string
	)

	dest := []any{
		&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Body, &m.Newsletter, &m.Status,
		&replySubject, &replyBody, &m.RepliedAt, &m.CreatedAt, &m.UpdatedAt,
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if replySubject != nil {
		m.ReplySubject = *replySubject
	}
	if replyBody != nil {
		m.ReplyBody = *replyBody
	}

	return &m, nil
}
