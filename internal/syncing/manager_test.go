package syncing

import (
	"context"
	"math/big"
	"testing"

	"github.com/openton/tonkit/internal/core/domain"
	"github.com/openton/tonkit/internal/infra/storage/memory"
)

func TestAccountManagerSyncPersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	api := &mockAPI{account: &domain.Account{
		Address: testUser,
		Balance: big.NewInt(1_000_000_000),
		Status:  "active",
	}}
	store := memory.NewStorage().Store()
	mgr := NewAccountManager(testUser, api, store.Accounts, discardLogger())

	_, values := mgr.Observer()

	if err := mgr.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !mgr.State().Synced() {
		t.Fatalf("state = %v, want synced", mgr.State())
	}

	published := <-values
	if !published.Equal(api.account) {
		t.Fatalf("published account = %+v, want the fetched snapshot", published)
	}

	stored, err := store.Accounts.Get(ctx, testUser)
	if err != nil || !stored.Equal(api.account) {
		t.Fatalf("stored account = %+v, %v", stored, err)
	}

	// The snapshot did not change: a second sync publishes nothing.
	if err := mgr.Sync(ctx); err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	select {
	case v := <-values:
		t.Fatalf("unexpected publish of unchanged snapshot %+v", v)
	default:
	}
}

func TestAccountManagerLazyFetch(t *testing.T) {
	ctx := context.Background()
	api := &mockAPI{account: &domain.Account{Address: testUser, Balance: big.NewInt(5)}}
	store := memory.NewStorage().Store()
	mgr := NewAccountManager(testUser, api, store.Accounts, discardLogger())

	// Nothing synced yet: Account falls through to the provider and
	// persists the result.
	got, err := mgr.Account(ctx)
	if err != nil || !got.Equal(api.account) {
		t.Fatalf("Account() = %+v, %v", got, err)
	}
	stored, err := store.Accounts.Get(ctx, testUser)
	if err != nil || !stored.Equal(api.account) {
		t.Fatalf("snapshot not persisted after lazy fetch: %v", err)
	}
}

func TestAccountManagerSyncFailure(t *testing.T) {
	ctx := context.Background()
	api := &mockAPI{} // no account configured: GetAccount fails
	store := memory.NewStorage().Store()
	mgr := NewAccountManager(testUser, api, store.Accounts, discardLogger())

	if err := mgr.Sync(ctx); err == nil {
		t.Fatal("Sync() should surface the provider failure")
	}
	state := mgr.State()
	if state.Kind != domain.SyncKindNotSynced || state.Err == nil {
		t.Fatalf("state = %v, want not synced with error", state)
	}
}

func TestJettonManagerSyncReplacesSet(t *testing.T) {
	ctx := context.Background()
	api := &mockAPI{jettons: []domain.JettonBalance{
		{JettonAddress: "0:aa", Balance: big.NewInt(10), WalletAddress: "0:a1"},
		{JettonAddress: "0:bb", Balance: big.NewInt(20), WalletAddress: "0:b1"},
	}}
	store := memory.NewStorage().Store()
	mgr := NewJettonManager(testUser, api, store.Jettons, discardLogger())

	if err := mgr.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	balances, err := mgr.Balances(ctx)
	if err != nil || len(balances) != 2 {
		t.Fatalf("Balances() = %v, %v, want both jettons", balances, err)
	}

	// One balance goes to zero and disappears from the provider set.
	api.jettons = api.jettons[:1]
	if err := mgr.Sync(ctx); err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	balances, err = mgr.Balances(ctx)
	if err != nil || len(balances) != 1 || balances[0].JettonAddress != "0:aa" {
		t.Fatalf("Balances() = %v, %v, want the replaced set", balances, err)
	}
}

func TestJettonBalancesEqualIgnoresOrder(t *testing.T) {
	a := []domain.JettonBalance{
		{JettonAddress: "0:aa", Balance: big.NewInt(1)},
		{JettonAddress: "0:bb", Balance: big.NewInt(2)},
	}
	b := []domain.JettonBalance{
		{JettonAddress: "0:bb", Balance: big.NewInt(2)},
		{JettonAddress: "0:aa", Balance: big.NewInt(1)},
	}
	if !jettonBalancesEqual(a, b) {
		t.Error("sets with the same balances in different order should be equal")
	}

	b[0].Balance = big.NewInt(3)
	if jettonBalancesEqual(a, b) {
		t.Error("sets with different balances should not be equal")
	}
}
