package repository

import (
	"Shortly-Backend/internal/domain"
	"context"
	"errors"
)

var (
	ErrCodeNotFound = errors.New("short code not found")
	ErrCodeExists   = errors.New("short code already exists")
)

// Storage is the durable store for short links and their click log.
// Every operation is transactional on its own; the core never needs a
// cross-operation transaction.
type Storage interface {
	// SaveLink inserts a new link. The code column carries a uniqueness
	// constraint, so a concurrent insert of the same code surfaces as
	// ErrCodeExists rather than a duplicate row.
	SaveLink(ctx context.Context, link *domain.ShortLink) error

	// GetLink returns the link for a code regardless of expiry. Expiry
	// is interpreted by the caller: analytics paths need expired rows.
	GetLink(ctx context.Context, code string) (*domain.ShortLink, error)

	CodeExists(ctx context.Context, code string) (bool, error)

	// AppendClick adds one event to the append-only click log.
	AppendClick(ctx context.Context, click *domain.ClickEvent) error

	// ListClicks returns all events for a code in insertion order.
	ListClicks(ctx context.Context, code string) ([]*domain.ClickEvent, error)
}
