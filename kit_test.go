package tonkit

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/openton/tonkit/internal/core/domain"
)

const testAddr = "0:1111111111111111111111111111111111111111111111111111111111111111"

func testConfig() Config {
	return Config{
		Address: testAddr,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestNewRequiresAddressOrKey(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("New() should reject a config with neither address nor key")
	}
}

func TestNewRejectsBadAddress(t *testing.T) {
	cfg := testConfig()
	cfg.Address = "not an address"
	if _, err := New(context.Background(), cfg); !errors.Is(err, domain.ErrInvalidAddress) {
		t.Fatalf("New() error = %v, want ErrInvalidAddress", err)
	}
}

func TestNewRejectsBadKeyLength(t *testing.T) {
	cfg := testConfig()
	cfg.SecretKey = []byte{1, 2, 3}
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("New() should reject a malformed secret key")
	}
}

func TestNewWatchOnly(t *testing.T) {
	kit, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer kit.Close()

	if !kit.WatchOnly() {
		t.Error("kit without a key should be watch-only")
	}
	if kit.Address() != testAddr {
		t.Errorf("Address() = %q", kit.Address())
	}

	if _, err := kit.EstimateFee(context.Background(), nil); !errors.Is(err, domain.ErrWatchOnly) {
		t.Errorf("EstimateFee() error = %v, want ErrWatchOnly", err)
	}
	if err := kit.Send(context.Background(), nil); !errors.Is(err, domain.ErrWatchOnly) {
		t.Errorf("Send() error = %v, want ErrWatchOnly", err)
	}
}

func TestNewDerivesAddressFromKey(t *testing.T) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	cfg := testConfig()
	cfg.Address = ""
	cfg.SecretKey = key.Seed()

	kit, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer kit.Close()

	if kit.Address() == "" {
		t.Fatal("address not derived from the secret key")
	}
	if kit.WatchOnly() {
		t.Error("kit with a key should not be watch-only")
	}
}

func TestKitInitialState(t *testing.T) {
	kit, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer kit.Close()

	state := kit.SyncState()
	if state.Kind != domain.SyncKindNotSynced {
		t.Fatalf("SyncState() = %v, want not synced before any sync", state)
	}
	if !errors.Is(state.Err, domain.ErrNotStarted) {
		t.Errorf("state error = %v, want ErrNotStarted", state.Err)
	}
}

func TestKitValidateAddress(t *testing.T) {
	kit, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer kit.Close()

	if err := kit.ValidateAddress(testAddr); err != nil {
		t.Errorf("ValidateAddress(raw) error = %v", err)
	}
	if err := kit.ValidateAddress("EQAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAM9c"); err != nil {
		t.Errorf("ValidateAddress(friendly) error = %v", err)
	}
	if err := kit.ValidateAddress("garbage"); !errors.Is(err, domain.ErrInvalidAddress) {
		t.Errorf("ValidateAddress(garbage) error = %v, want ErrInvalidAddress", err)
	}
}

func TestKitJettonTransferRequiresHolding(t *testing.T) {
	kit, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer kit.Close()

	jetton := "0:2222222222222222222222222222222222222222222222222222222222222222"
	_, err = kit.JettonTransferData(context.Background(), jetton, testAddr, big.NewInt(1), "")
	if !errors.Is(err, domain.ErrNoJettonWallet) {
		t.Fatalf("JettonTransferData() error = %v, want ErrNoJettonWallet", err)
	}
}

func TestKitNativeTransferData(t *testing.T) {
	kit, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer kit.Close()

	dest := "0:3333333333333333333333333333333333333333333333333333333333333333"
	messages, err := kit.NativeTransferData(dest, big.NewInt(100), "hi", false)
	if err != nil {
		t.Fatalf("NativeTransferData() error = %v", err)
	}
	if len(messages) != 1 || messages[0].To != dest {
		t.Fatalf("messages = %+v", messages)
	}
}

func TestCombineStates(t *testing.T) {
	synced := domain.SyncStateSynced()
	syncing := domain.SyncStateSyncing(nil)
	failed := domain.SyncStateNotSynced(errors.New("down"))

	if got := combineStates(synced, synced, synced); !got.Synced() {
		t.Errorf("all synced combined = %v", got)
	}
	if got := combineStates(synced, syncing, synced); !got.Syncing() {
		t.Errorf("one syncing combined = %v", got)
	}
	if got := combineStates(synced, syncing, failed); got.Kind != domain.SyncKindNotSynced {
		t.Errorf("failure should dominate, got %v", got)
	}
}
