package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/domain"
)

// FeedItemRepository implements domain.FeedItemRepository using SQLite.
type FeedItemRepository struct {
	db *sql.DB
	clock clock.Clock
}

// NewFeedItemRepository creates a new SQLite-backed FeedItemRepository.
func NewFeedItemRepository(db *DB) *FeedItemRepository {
	return &FeedItemRepository{db: db.SqlDB, clock: db.clk()}
}

func (r *FeedItemRepository) Create(ctx context.Context, text string, eventID, createdBy int64) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: feed item text is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidateID("event", eventID); err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO event_feed_items (event_id, item_text, created_at, created_by) VALUES (?, ?, ?, ?)`,
		eventID, text, r.clock.Now(), createdBy,
	)
	if err != nil {
		return 0, fmt.Errorf("insert feed item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get feed item id: %w", err)
	}
	return id, nil
}

// FindPage returns the FeedPageSize newest feed items of an event.
func (r *FeedItemRepository) FindPage(ctx context.Context, eventID int64) (*domain.FeedPage, error) {
	if err := domain.ValidateID("event", eventID); err != nil {
		return nil, err
	}

	page := &domain.FeedPage{Items: []domain.FeedItem{}}
	err := withConn(ctx, r.db, func(conn *sql.Conn) error {
		total, err := countRows(ctx, conn, `SELECT COUNT(*) FROM event_feed_items WHERE event_id = ?`, eventID)
		if err != nil {
			return fmt.Errorf("count feed items: %w", err)
		}
		page.Total = total

		rows, err := conn.QueryContext(ctx,
			`SELECT f.id, f.event_id, f.item_text, f.created_at, f.created_by, u.first_name, u.last_name
			 FROM event_feed_items f
			 LEFT JOIN users u ON u.id = f.created_by
			 WHERE f.event_id = ?
			 ORDER BY f.created_at DESC, f.id DESC
			 LIMIT ?`, eventID, domain.FeedPageSize)
		if err != nil {
			return fmt.Errorf("list feed items: %w", err)
		}
		defer rows.Close()

		cache := domain.NewUserCache()
		for rows.Next() {
			var (
				item        domain.FeedItem
				creatorID   int64
				first, last sql.NullString
			)
			if err := rows.Scan(&item.ID, &item.EventID, &item.Text, &item.CreatedAt, &creatorID, &first, &last); err != nil {
				return fmt.Errorf("scan feed item: %w", err)
			}
			item.CreatedAt = item.CreatedAt.UTC()
			item.CreatedBy = cache.GetOrPut(creatorID, first.String, last.String)
			page.Items = append(page.Items, item)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
