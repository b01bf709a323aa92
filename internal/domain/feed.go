package domain

import (
	"context"
	"time"
)

const FeedPageSize = 20

// FeedItem is a discussion post on an event page. Text is stored as typed
// and escaped when rendered.
type FeedItem struct {
	ID        int64
	EventID   int64
	Text      string
	CreatedBy *UserRef
	CreatedAt time.Time
}

// FeedPage is the newest page of feed items for an event.
type FeedPage struct {
	Items []FeedItem
	Total int
}

// FeedItemRepository defines persistence operations for feed items.
type FeedItemRepository interface {
	Create(ctx context.Context, text string, eventID, createdBy int64) (int64, error)
	FindPage(ctx context.Context, eventID int64) (*FeedPage, error)
}
