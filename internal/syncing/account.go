package syncing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openton/tonkit/internal/core/domain"
	"github.com/openton/tonkit/internal/infra/storage"
	"github.com/openton/tonkit/internal/syncing/metrics"
)

// AccountManager keeps the tracked account's balance snapshot in step with
// the provider.
type AccountManager struct {
	address string
	api     API
	repo    storage.AccountRepository

	states *StatePublisher
	values *Publisher[*domain.Account]
	logger *slog.Logger
}

func NewAccountManager(address string, api API, repo storage.AccountRepository, logger *slog.Logger) *AccountManager {
	return &AccountManager{
		address: address,
		api:     api,
		repo:    repo,
		states:  NewStatePublisher(),
		values: NewPublisher[*domain.Account](func(a, b *domain.Account) bool {
			return a.Equal(b)
		}),
		logger: logger.With("stream", "account"),
	}
}

// Sync fetches the remote snapshot and persists it. Concurrent calls while
// a sync is in flight are no-ops.
func (m *AccountManager) Sync(ctx context.Context) error {
	if !m.states.Begin() {
		return nil
	}

	err := m.sync(ctx)
	m.states.Finish(err)
	if err != nil {
		metrics.SyncsTotal.WithLabelValues("account", "error").Inc()
		m.logger.Error("account sync failed", "error", err)
		return err
	}
	metrics.SyncsTotal.WithLabelValues("account", "ok").Inc()
	return nil
}

func (m *AccountManager) sync(ctx context.Context) error {
	account, err := m.api.GetAccount(ctx, m.address)
	if err != nil {
		return err
	}
	if err := m.repo.Save(ctx, account); err != nil {
		return err
	}
	m.values.Publish(account)
	return nil
}

// Account returns the stored snapshot, fetching it once from the provider
// when nothing has been stored yet.
func (m *AccountManager) Account(ctx context.Context) (*domain.Account, error) {
	account, err := m.repo.Get(ctx, m.address)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	account, err = m.api.GetAccount(ctx, m.address)
	if err != nil {
		return nil, err
	}
	if err := m.repo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (m *AccountManager) State() domain.SyncState {
	return m.states.State()
}

func (m *AccountManager) StateObserver() (uuid.UUID, <-chan domain.SyncState) {
	return m.states.Subscribe()
}

func (m *AccountManager) RemoveStateObserver(id uuid.UUID) {
	m.states.Unsubscribe(id)
}

func (m *AccountManager) Observer() (uuid.UUID, <-chan *domain.Account) {
	return m.values.Subscribe()
}

func (m *AccountManager) RemoveObserver(id uuid.UUID) {
	m.values.Unsubscribe(id)
}
