package tonkit

import (
	"context"
	"math/big"

	"github.com/google/uuid"

	"github.com/openton/tonkit/internal/core/domain"
	"github.com/openton/tonkit/internal/transfer"
)

// SyncStateObserver subscribes to combined sync state changes. The
// returned id releases the subscription via RemoveObserver.
func (k *Kit) SyncStateObserver() (uuid.UUID, <-chan domain.SyncState) {
	return k.states.Subscribe()
}

// RemoveSyncStateObserver drops a sync state subscription.
func (k *Kit) RemoveSyncStateObserver(id uuid.UUID) {
	k.states.Unsubscribe(id)
}

// Account returns the tracked account's balance snapshot, fetching it from
// the provider when nothing is stored yet.
func (k *Kit) Account(ctx context.Context) (*domain.Account, error) {
	return k.account.Account(ctx)
}

// AccountObserver subscribes to balance snapshot changes.
func (k *Kit) AccountObserver() (uuid.UUID, <-chan *domain.Account) {
	return k.account.Observer()
}

func (k *Kit) RemoveAccountObserver(id uuid.UUID) {
	k.account.RemoveObserver(id)
}

// JettonBalances returns the stored jetton balance set.
func (k *Kit) JettonBalances(ctx context.Context) ([]domain.JettonBalance, error) {
	return k.jettons.Balances(ctx)
}

// JettonBalancesObserver subscribes to jetton balance set changes.
func (k *Kit) JettonBalancesObserver() (uuid.UUID, <-chan []domain.JettonBalance) {
	return k.jettons.Observer()
}

func (k *Kit) RemoveJettonBalancesObserver(id uuid.UUID) {
	k.jettons.RemoveObserver(id)
}

// Events returns stored events matching the tag query, newest first, with
// an optional exclusive lt upper bound for paging.
func (k *Kit) Events(ctx context.Context, q domain.TagQuery, beforeLt *int64, limit int) ([]*domain.Event, error) {
	return k.events.Events(ctx, q, beforeLt, limit)
}

// Event returns one stored event by id.
func (k *Kit) Event(ctx context.Context, id string) (*domain.Event, error) {
	return k.events.Event(ctx, id)
}

// EventObserver subscribes to merged event batches filtered by the tag
// query. An empty query receives everything.
func (k *Kit) EventObserver(q domain.TagQuery) (uuid.UUID, <-chan domain.EventInfo) {
	return k.events.Observer(q)
}

func (k *Kit) RemoveEventObserver(id uuid.UUID) {
	k.events.RemoveObserver(id)
}

// TagTokens returns the distinct platform/jetton pairs in the tag index.
func (k *Kit) TagTokens(ctx context.Context) ([]domain.TagToken, error) {
	return k.events.TagTokens(ctx)
}

// JettonInfo returns a jetton's static metadata, from the cache when one
// is configured.
func (k *Kit) JettonInfo(ctx context.Context, jettonAddress string) (*domain.Jetton, error) {
	normalized, err := domain.NormalizeAddress(jettonAddress)
	if err != nil {
		return nil, err
	}

	if k.jettonCache != nil {
		cached, err := k.jettonCache.Get(ctx, normalized)
		if err != nil {
			k.logger.Warn("jetton cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	jetton, err := k.api.GetJettonInfo(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if k.jettonCache != nil {
		if err := k.jettonCache.Put(ctx, jetton); err != nil {
			k.logger.Warn("jetton cache write failed", "error", err)
		}
	}
	return jetton, nil
}

// ValidateAddress reports whether the string parses as a TON address in
// any supported format.
func (k *Kit) ValidateAddress(addr string) error {
	_, err := domain.NormalizeAddress(addr)
	return err
}

// NativeTransferData builds a plain TON transfer. With max set the
// message carries the wallet's entire balance.
func (k *Kit) NativeTransferData(recipient string, amount *big.Int, comment string, max bool) ([]transfer.Message, error) {
	msg, err := k.builder.Native(recipient, amount, comment, max)
	if err != nil {
		return nil, err
	}
	return []transfer.Message{msg}, nil
}

// JettonTransferData builds a jetton transfer routed through the tracked
// account's jetton wallet. The wallet sub-account comes from the stored
// balance set; a jetton the account does not hold fails with
// ErrNoJettonWallet.
func (k *Kit) JettonTransferData(ctx context.Context, jettonAddress, recipient string, amount *big.Int, comment string) ([]transfer.Message, error) {
	normalized, err := domain.NormalizeAddress(jettonAddress)
	if err != nil {
		return nil, err
	}

	balances, err := k.jettons.Balances(ctx)
	if err != nil {
		return nil, err
	}
	var jettonWallet string
	for _, b := range balances {
		if b.JettonAddress == normalized {
			jettonWallet = b.WalletAddress
			break
		}
	}
	if jettonWallet == "" {
		return nil, domain.ErrNoJettonWallet
	}

	msg, err := k.builder.Jetton(jettonWallet, k.address, recipient, amount, comment)
	if err != nil {
		return nil, err
	}
	return []transfer.Message{msg}, nil
}

// PayloadTransferData builds messages from caller-supplied raw payloads.
func (k *Kit) PayloadTransferData(payloads []transfer.Payload) ([]transfer.Message, error) {
	return k.builder.FromPayloads(payloads)
}

// EstimateFee dry-runs a transfer and returns the total fee plus the
// emulated event. Watch-only kits fail with ErrWatchOnly.
func (k *Kit) EstimateFee(ctx context.Context, messages []transfer.Message) (*domain.EmulateResult, error) {
	return k.sender.EstimateFee(ctx, messages)
}

// Send signs and submits a transfer. Watch-only kits fail with
// ErrWatchOnly.
func (k *Kit) Send(ctx context.Context, messages []transfer.Message) error {
	return k.sender.Send(ctx, messages)
}
