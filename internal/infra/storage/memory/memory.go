// Package memory provides an in-memory implementation of the storage
// repositories. It backs tests and keyless quick starts where no database
// is configured. All repositories share one RWMutex so readers never
// observe a half-applied merge batch.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/openton/tonkit/internal/core/domain"
	"github.com/openton/tonkit/internal/infra/storage"
)

type Storage struct {
	mu         sync.RWMutex
	events     map[string]*domain.Event
	tags       map[string][]domain.Tag
	accounts   map[string]*domain.Account
	jettons    []domain.JettonBalance
	watermarks map[string]bool
}

func NewStorage() *Storage {
	return &Storage{
		events:     make(map[string]*domain.Event),
		tags:       make(map[string][]domain.Tag),
		accounts:   make(map[string]*domain.Account),
		watermarks: make(map[string]bool),
	}
}

// Store returns the repository bundle backed by this storage.
func (s *Storage) Store() storage.Store {
	return storage.Store{
		Events:     &EventRepo{store: s},
		Accounts:   &AccountRepo{store: s},
		Jettons:    &JettonRepo{store: s},
		Watermarks: &WatermarkRepo{store: s},
	}
}

// -----------------------------------------------------------------------------
// Event Repository
// -----------------------------------------------------------------------------

type EventRepo struct {
	store *Storage
}

func NewEventRepo(store *Storage) *EventRepo {
	return &EventRepo{store: store}
}

func (r *EventRepo) Save(ctx context.Context, events []*domain.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range events {
		copied := *e
		copied.Actions = append([]domain.Action(nil), e.Actions...)
		r.store.events[e.ID] = &copied
	}
	return nil
}

func (r *EventRepo) ReplaceTags(ctx context.Context, eventIDs []string, tags []domain.Tag) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, id := range eventIDs {
		delete(r.store.tags, id)
	}
	for _, tag := range tags {
		r.store.tags[tag.EventID] = append(r.store.tags[tag.EventID], tag)
	}
	return nil
}

func (r *EventRepo) Get(ctx context.Context, id string) (*domain.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	e, ok := r.store.events[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *EventRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Event
	for _, id := range ids {
		if e, ok := r.store.events[id]; ok {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *EventRepo) Query(ctx context.Context, q domain.TagQuery, beforeLt *int64, limit int) ([]*domain.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.Event
	for _, e := range r.store.events {
		if beforeLt != nil && e.Lt >= *beforeLt {
			continue
		}
		if !q.IsEmpty() && !r.matches(e.ID, q) {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Lt > out[j].Lt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *EventRepo) matches(eventID string, q domain.TagQuery) bool {
	for _, tag := range r.store.tags[eventID] {
		if tag.Conforms(q) {
			return true
		}
	}
	return false
}

func (r *EventRepo) Latest(ctx context.Context) (*domain.Event, error) {
	return r.boundary(true)
}

func (r *EventRepo) Oldest(ctx context.Context) (*domain.Event, error) {
	return r.boundary(false)
}

func (r *EventRepo) boundary(newest bool) (*domain.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var best *domain.Event
	for _, e := range r.store.events {
		if best == nil || (newest && e.Lt > best.Lt) || (!newest && e.Lt < best.Lt) {
			best = e
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	copied := *best
	return &copied, nil
}

func (r *EventRepo) TagTokens(ctx context.Context) ([]domain.TagToken, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[domain.TagToken]struct{})
	var out []domain.TagToken
	for _, tags := range r.store.tags {
		for _, tag := range tags {
			if tag.Platform == "" {
				continue
			}
			token := domain.TagToken{Platform: tag.Platform, JettonAddress: tag.JettonAddress}
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			out = append(out, token)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Account Repository
// -----------------------------------------------------------------------------

type AccountRepo struct {
	store *Storage
}

func NewAccountRepo(store *Storage) *AccountRepo {
	return &AccountRepo{store: store}
}

func (r *AccountRepo) Get(ctx context.Context, address string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	a, ok := r.store.accounts[address]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *AccountRepo) Save(ctx context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *account
	r.store.accounts[account.Address] = &copied
	return nil
}

// -----------------------------------------------------------------------------
// Jetton Repository
// -----------------------------------------------------------------------------

type JettonRepo struct {
	store *Storage
}

func NewJettonRepo(store *Storage) *JettonRepo {
	return &JettonRepo{store: store}
}

func (r *JettonRepo) Balances(ctx context.Context) ([]domain.JettonBalance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.JettonBalance(nil), r.store.jettons...), nil
}

func (r *JettonRepo) Replace(ctx context.Context, balances []domain.JettonBalance) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.jettons = append([]domain.JettonBalance(nil), balances...)
	return nil
}

// -----------------------------------------------------------------------------
// Watermark Repository
// -----------------------------------------------------------------------------

type WatermarkRepo struct {
	store *Storage
}

func NewWatermarkRepo(store *Storage) *WatermarkRepo {
	return &WatermarkRepo{store: store}
}

func (r *WatermarkRepo) Completed(ctx context.Context, provider string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.watermarks[provider], nil
}

func (r *WatermarkRepo) MarkCompleted(ctx context.Context, provider string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.watermarks[provider] = true
	return nil
}
