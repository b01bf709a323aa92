package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
)

// FeedItemRepository implements domain.FeedItemRepository using Postgres.
type FeedItemRepository struct {
	pool *pgxpool.Pool
	clock clock.Clock
}

func NewFeedItemRepository(pool *pgxpool.Pool, clk clock.Clock) *FeedItemRepository {
	return &FeedItemRepository{pool: pool, clock: clk}
}

func (r *FeedItemRepository) Create(ctx context.Context, text string, eventID, createdBy int64) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: feed item text is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidateID("event", eventID); err != nil {
		return 0, err
	}

	const stmt = `
INSERT INTO event_feed_items (event_id, item_text, created_at, created_by)
VALUES ($1::BIGINT, $2::TEXT, $3::TIMESTAMPTZ, $4::BIGINT)
RETURNING id`
	var id int64
	if err := r.pool.QueryRow(ctx, stmt, eventID, text, r.clock.Now(), createdBy).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert feed item: %w", err)
	}
	return id, nil
}

func (r *FeedItemRepository) FindPage(ctx context.Context, eventID int64) (*domain.FeedPage, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}

	page := &domain.FeedPage{Items: []domain.FeedItem{}}
	err := withConn(ctx, r.pool, func(conn *pgxpool.Conn) error {
		total, err := countRows(ctx, conn, `SELECT COUNT(*) FROM event_feed_items WHERE event_id = $1::BIGINT`, eventID)
		if err != nil {
			return fmt.Errorf("count feed items: %w", err)
		}
		page.Total = total

		rows, err := conn.Query(ctx, `
SELECT f.id, f.event_id, f.item_text, f.created_at, f.created_by, u.first_name, u.last_name
FROM event_feed_items f
LEFT JOIN users u ON u.id = f.created_by
WHERE f.event_id = $1::BIGINT
ORDER BY f.created_at DESC, f.id DESC
LIMIT $2::INTEGER`, eventID, domain.FeedPageSize)
		if err != nil {
			return fmt.Errorf("list feed items: %w", err)
		}
		defer rows.Close()

		cache := domain.NewUserCache()
		for rows.Next() {
			var (
				item        domain.FeedItem
				creatorID   int64
				first, last *string
			)
			if err := rows.Scan(&item.ID, &item.EventID, &item.Text, &item.CreatedAt, &creatorID, &first, &last); err != nil {
				return fmt.Errorf("scan feed item: %w", err)
			}
			item.CreatedAt = item.CreatedAt.UTC()
			item.CreatedBy = cache.GetOrPut(creatorID, deref(first), deref(last))
			page.Items = append(page.Items, item)
		}
		if rows.Err() != nil {
			return fmt.Errorf("iterate feed items: %w", rows.Err())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
