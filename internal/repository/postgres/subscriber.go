package postgres

import (
	"context"
	"fmt"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/pkg/database"
)

// SubscriberRepository implements repository.SubscriberRepository using PostgreSQL.
type SubscriberRepository struct {
	pool database.DBTX
}

// NewSubscriberRepository creates a PostgreSQL-backed newsletter repository.
func NewSubscriberRepository(pool database.DBTX) *SubscriberRepository {
	return &SubscriberRepository{pool: pool}
}

// Subscribe records a newsletter subscription. Subscribing an already
// subscribed email is a no-op.
func (r *SubscriberRepository) Subscribe(ctx context.Context, s *domain.Subscriber) error {
	query := `
		INSERT INTO newsletter_subscribers (id, email, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, s.ID, s.Email, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

// List returns subscribers plus the total count, newest first.
func (r *SubscriberRepository) List(ctx context.Context, limit, offset int) ([]domain.Subscriber, int, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, email, created_at, count(*) OVER() AS total_count
		FROM newsletter_subscribers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var (
		subscribers []domain.Subscriber
		totalCount  int
	)

	for rows.Next() {
		var s domain.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.CreatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan subscriber row: %w", err)
		}
		subscribers = append(subscribers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate subscriber rows: %w", err)
	}

	if subscribers == nil {
		subscribers = []domain.Subscriber{}
	}
	return subscribers, totalCount, nil
}
