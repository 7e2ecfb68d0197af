package storage

import (
	"context"
	"errors"

	"github.com/openton/tonkit/internal/core/domain"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist.
	ErrNotFound = errors.New("record not found")
)

// EventRepository persists events and their derived tag index.
//
// Save is an upsert by event id, so re-merging a page is idempotent.
// ReplaceTags deletes every tag of the given event ids and inserts the new
// set in the same transaction, so tags never accumulate across re-merges.
type EventRepository interface {
	// Save upserts a batch of events atomically.
	Save(ctx context.Context, events []*domain.Event) error

	// ReplaceTags atomically replaces all tags of the given event ids.
	ReplaceTags(ctx context.Context, eventIDs []string, tags []domain.Tag) error

	// Get retrieves one event by id, ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Event, error)

	// GetByIDs retrieves the stored subset of the given ids.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Event, error)

	// Query returns events ordered by lt descending, filtered by the tag
	// query and an optional exclusive lt upper bound.
	Query(ctx context.Context, q domain.TagQuery, beforeLt *int64, limit int) ([]*domain.Event, error)

	// Latest returns the newest stored event (highest lt), ErrNotFound if
	// the store is empty.
	Latest(ctx context.Context) (*domain.Event, error)

	// Oldest returns the oldest stored event (lowest lt), ErrNotFound if
	// the store is empty.
	Oldest(ctx context.Context) (*domain.Event, error)

	// TagTokens returns the distinct (platform, jetton) pairs in the index.
	TagTokens(ctx context.Context) ([]domain.TagToken, error)
}

// AccountRepository persists the single balance snapshot of the tracked
// address.
type AccountRepository interface {
	// Get retrieves the snapshot, ErrNotFound if never synced.
	Get(ctx context.Context, address string) (*domain.Account, error)

	// Save overwrites the snapshot.
	Save(ctx context.Context, account *domain.Account) error
}

// JettonRepository persists the jetton balance set.
type JettonRepository interface {
	// Balances returns all stored jetton balances.
	Balances(ctx context.Context) ([]domain.JettonBalance, error)

	// Replace atomically swaps the whole balance set.
	Replace(ctx context.Context, balances []domain.JettonBalance) error
}

// WatermarkRepository records whether backward history backfill has reached
// genesis for a provider. The flag only ever moves false -> true.
type WatermarkRepository interface {
	// Completed reports whether backfill finished for the provider.
	Completed(ctx context.Context, provider string) (bool, error)

	// MarkCompleted records backfill completion for the provider.
	MarkCompleted(ctx context.Context, provider string) error
}

// Store bundles the repositories a kit instance needs.
type Store struct {
	Events     EventRepository
	Accounts   AccountRepository
	Jettons    JettonRepository
	Watermarks WatermarkRepository
}
