// Package syncing reconciles remote account history with local storage.
//
// Each tracked concern (balance snapshot, jetton balance set, event history)
// has its own manager with an independent sync state machine. Managers are
// safe for concurrent use; a sync call while another is in flight for the
// same manager is a no-op.
package syncing

import (
	"context"

	"github.com/openton/tonkit/internal/core/domain"
)

// API is the slice of the provider client the managers consume.
type API interface {
	GetAccount(ctx context.Context, address string) (*domain.Account, error)
	GetAccountJettonBalances(ctx context.Context, address string) ([]domain.JettonBalance, error)
	GetEvents(ctx context.Context, address string, beforeLt *int64, startTimestamp *int64, limit int) ([]*domain.Event, error)
}
