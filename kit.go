// Package tonkit tracks a TON account: it syncs its event history, balance
// and jetton holdings into local storage, classifies events into tagged
// activity, follows live updates over the provider's event stream, and
// builds, estimates and sends wallet v4r2 transfers.
package tonkit

import (
	"context"
	"crypto/ed25519"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/openton/tonkit/internal/core/decoration"
	"github.com/openton/tonkit/internal/core/domain"
	"github.com/openton/tonkit/internal/infra/redis"
	"github.com/openton/tonkit/internal/infra/storage"
	"github.com/openton/tonkit/internal/infra/storage/memory"
	"github.com/openton/tonkit/internal/infra/storage/postgres"
	"github.com/openton/tonkit/internal/infra/stream"
	"github.com/openton/tonkit/internal/infra/tonapi"
	"github.com/openton/tonkit/internal/syncing"
	"github.com/openton/tonkit/internal/transfer"
)

const (
	// syncDebounce suppresses unforced syncs shortly after a successful
	// one. Stream reconnects otherwise trigger redundant full syncs.
	syncDebounce = 3 * time.Second

	// A pushed transaction can land before its event leaves the pending
	// pool, so the kit re-syncs a few times until the event confirms.
	pushRetries       = 3
	pushRetryInterval = 5 * time.Second
)

// Kit is the top-level handle for one tracked account.
type Kit struct {
	address string
	api     *tonapi.Client

	db          *postgres.DB
	redisClient *redis.Client
	jettonCache *redis.JettonCache

	account *syncing.AccountManager
	jettons *syncing.JettonManager
	events  *syncing.EventManager

	listener *stream.Listener
	sender   *transfer.Sender
	builder  *transfer.Builder
	signer   transfer.SignFunc

	states *syncing.Publisher[domain.SyncState]
	logger *slog.Logger

	mu       sync.Mutex
	started  bool
	quit     chan struct{}
	wg       sync.WaitGroup
	lastSync time.Time
}

// New builds a Kit from the config. It opens the configured storage and
// cache connections but does not touch the provider; call Start to begin
// following live updates, or Sync directly.
func New(ctx context.Context, cfg Config) (*Kit, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.logger()

	key := cfg.privateKey()
	var builder *transfer.Builder
	if key != nil {
		builder = transfer.NewBuilder(key.Public().(ed25519.PublicKey))
	} else {
		builder = transfer.NewBuilder(nil)
	}

	address := cfg.Address
	if address == "" {
		derived, err := builder.WalletAddress()
		if err != nil {
			return nil, err
		}
		address = derived
	}
	address, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	api := tonapi.NewClient(tonapi.Config{
		BaseURL: cfg.baseURL(),
		APIKey:  cfg.APIKey,
		Timeout: cfg.APITimeout,
	}, logger)

	kit := &Kit{
		address: address,
		api:     api,
		builder: builder,
		states:  syncing.NewPublisher[domain.SyncState](domain.SyncState.Equal),
		logger:  logger,
	}

	var store storage.Store
	if cfg.PostgresURL != "" {
		db, err := postgres.NewDB(ctx, postgres.Config{URL: cfg.PostgresURL})
		if err != nil {
			return nil, err
		}
		kit.db = db
		store = postgres.Store(db)
	} else {
		store = memory.NewStorage().Store()
	}

	if cfg.Redis != nil {
		client, err := redis.NewClient(*cfg.Redis)
		if err != nil {
			return nil, err
		}
		kit.redisClient = client
		kit.jettonCache = redis.NewJettonCache(client)
	}

	chain := decoration.NewChain(address)
	kit.account = syncing.NewAccountManager(address, api, store.Accounts, logger)
	kit.jettons = syncing.NewJettonManager(address, api, store.Jettons, logger)
	kit.events = syncing.NewEventManager(address, api, store, chain, logger)

	kit.listener = stream.NewListener(cfg.baseURL(), cfg.APIKey, []string{address}, logger)

	if key != nil {
		kit.signer = transfer.KeySigner(key)
	}
	kit.sender = transfer.NewSender(address, api, builder, kit.signer, logger)

	return kit, nil
}

// Address returns the tracked account in raw form.
func (k *Kit) Address() string {
	return k.address
}

// WatchOnly reports whether the kit was built without a secret key.
func (k *Kit) WatchOnly() bool {
	return k.signer == nil
}

// Start connects the live update stream. Connection transitions trigger
// debounced syncs; pushed transactions always sync. Calling Start on a
// running kit is a no-op.
func (k *Kit) Start() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.started {
		return
	}
	k.started = true
	k.quit = make(chan struct{})

	k.listener.Start()
	_, states := k.listener.StateObserver()
	_, txs := k.listener.TransactionObserver()

	k.wg.Add(1)
	go k.loop(states, txs)
}

// Stop disconnects the stream and waits for in-flight update handling.
func (k *Kit) Stop() {
	k.mu.Lock()
	if !k.started {
		k.mu.Unlock()
		return
	}
	k.started = false
	close(k.quit)
	k.mu.Unlock()

	k.listener.Stop()
	k.wg.Wait()
}

// Close stops the kit and releases storage and cache connections.
func (k *Kit) Close() error {
	k.Stop()

	var errs []error
	if k.db != nil {
		errs = append(errs, k.db.Close())
	}
	if k.redisClient != nil {
		errs = append(errs, k.redisClient.Close())
	}
	return errors.Join(errs...)
}

func (k *Kit) loop(states <-chan stream.ConnectionState, txs <-chan stream.Transaction) {
	defer k.wg.Done()

	for {
		select {
		case <-k.quit:
			return
		case s, ok := <-states:
			if !ok {
				return
			}
			if s == stream.StateConnected {
				k.update(false)
			}
		case tx, ok := <-txs:
			if !ok {
				return
			}
			k.logger.Debug("transaction pushed", "lt", tx.Lt, "hash", tx.TxHash)
			k.update(true)
		}
	}
}

// update runs one sync round. Unforced updates within the debounce window
// of the last successful sync are skipped; forced ones always run.
func (k *Kit) update(forced bool) {
	if !forced {
		k.mu.Lock()
		recent := time.Since(k.lastSync) < syncDebounce
		k.mu.Unlock()
		if recent {
			return
		}
	}

	ctx := context.Background()
	if err := k.Sync(ctx); err != nil {
		return
	}
	if forced {
		k.confirmLatest(ctx)
	}
}

// Sync reconciles all three streams with the provider. Streams sync
// concurrently; the combined error covers every failed stream. Calling
// Sync while a sync is in flight is a no-op per stream.
func (k *Kit) Sync(ctx context.Context) error {
	k.states.Publish(domain.SyncStateSyncing(nil))

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i, sync := range []func(context.Context) error{
		k.account.Sync,
		k.jettons.Sync,
		k.events.Sync,
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = sync(ctx)
		}()
	}
	wg.Wait()

	k.publishState()
	if err := errors.Join(errs...); err != nil {
		return err
	}

	k.mu.Lock()
	k.lastSync = time.Now()
	k.mu.Unlock()
	return nil
}

// confirmLatest re-syncs the event stream while the newest event is still
// in progress, bounded to a few spaced attempts. The pushed transaction
// usually confirms within the first retry.
func (k *Kit) confirmLatest(ctx context.Context) {
	for attempt := 0; attempt < pushRetries; attempt++ {
		latest, err := k.events.Events(ctx, domain.TagQuery{}, nil, 1)
		if err != nil || len(latest) == 0 || !latest[0].InProgress {
			return
		}
		select {
		case <-k.quit:
			return
		case <-time.After(pushRetryInterval):
		}
		if err := k.events.Sync(ctx); err != nil {
			return
		}
		k.publishState()
	}
}

// SyncState returns the combined state of the three sync streams: the
// first failure wins, any in-flight stream reads as syncing, otherwise
// synced.
func (k *Kit) SyncState() domain.SyncState {
	return combineStates(
		k.account.State(),
		k.jettons.State(),
		k.events.State(),
	)
}

func (k *Kit) publishState() {
	k.states.Publish(k.SyncState())
}

func combineStates(states ...domain.SyncState) domain.SyncState {
	syncing := false
	for _, s := range states {
		if s.Kind == domain.SyncKindNotSynced {
			return s
		}
		if s.Syncing() {
			syncing = true
		}
	}
	if syncing {
		return domain.SyncStateSyncing(nil)
	}
	return domain.SyncStateSynced()
}
