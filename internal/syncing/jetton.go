package syncing

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/openton/tonkit/internal/core/domain"
	"github.com/openton/tonkit/internal/infra/storage"
	"github.com/openton/tonkit/internal/syncing/metrics"
)

// JettonManager keeps the account's jetton balance set in step with the
// provider. The stored set is replaced wholesale on every sync.
type JettonManager struct {
	address string
	api     API
	repo    storage.JettonRepository

	states *StatePublisher
	values *Publisher[[]domain.JettonBalance]
	logger *slog.Logger
}

func NewJettonManager(address string, api API, repo storage.JettonRepository, logger *slog.Logger) *JettonManager {
	return &JettonManager{
		address: address,
		api:     api,
		repo:    repo,
		states:  NewStatePublisher(),
		values:  NewPublisher[[]domain.JettonBalance](jettonBalancesEqual),
		logger:  logger.With("stream", "jettons"),
	}
}

func (m *JettonManager) Sync(ctx context.Context) error {
	if !m.states.Begin() {
		return nil
	}

	err := m.sync(ctx)
	m.states.Finish(err)
	if err != nil {
		metrics.SyncsTotal.WithLabelValues("jettons", "error").Inc()
		m.logger.Error("jetton sync failed", "error", err)
		return err
	}
	metrics.SyncsTotal.WithLabelValues("jettons", "ok").Inc()
	return nil
}

func (m *JettonManager) sync(ctx context.Context) error {
	balances, err := m.api.GetAccountJettonBalances(ctx, m.address)
	if err != nil {
		return err
	}
	if err := m.repo.Replace(ctx, balances); err != nil {
		return err
	}
	m.values.Publish(balances)
	return nil
}

// Balances returns the stored jetton balance set.
func (m *JettonManager) Balances(ctx context.Context) ([]domain.JettonBalance, error) {
	return m.repo.Balances(ctx)
}

func (m *JettonManager) State() domain.SyncState {
	return m.states.State()
}

func (m *JettonManager) StateObserver() (uuid.UUID, <-chan domain.SyncState) {
	return m.states.Subscribe()
}

func (m *JettonManager) RemoveStateObserver(id uuid.UUID) {
	m.states.Unsubscribe(id)
}

func (m *JettonManager) Observer() (uuid.UUID, <-chan []domain.JettonBalance) {
	return m.values.Subscribe()
}

func (m *JettonManager) RemoveObserver(id uuid.UUID) {
	m.values.Unsubscribe(id)
}

// jettonBalancesEqual compares two balance sets regardless of order.
func jettonBalancesEqual(a, b []domain.JettonBalance) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]domain.JettonBalance(nil), a...)
	bs := append([]domain.JettonBalance(nil), b...)
	byJetton := func(s []domain.JettonBalance) func(i, j int) bool {
		return func(i, j int) bool { return s[i].JettonAddress < s[j].JettonAddress }
	}
	sort.Slice(as, byJetton(as))
	sort.Slice(bs, byJetton(bs))
	for i := range as {
		if !as[i].Equal(bs[i]) {
			return false
		}
	}
	return true
}
