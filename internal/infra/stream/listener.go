// Package stream maintains the server-sent-events subscription that pushes
// account transactions as they land on chain.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/openton/tonkit/internal/syncing/metrics"
)

// reconnectDelay is the fixed pause between connection attempts. The
// provider terminates idle streams periodically, so reconnecting is the
// steady state, not an error path.
const reconnectDelay = 3 * time.Second

// ConnectionState is the externally visible state of the subscription.
type ConnectionState int

const (
	StateConnecting ConnectionState = iota
	StateConnected
	StateDisconnected
	StateNoConnection
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateNoConnection:
		return "no connection"
	default:
		return "disconnected"
	}
}

// Transaction is one pushed transaction notification.
type Transaction struct {
	AccountID string `json:"account_id"`
	Lt        int64  `json:"lt"`
	TxHash    string `json:"tx_hash"`
}

type subscribeState struct {
	id uuid.UUID
	ch chan ConnectionState
}

type subscribeTx struct {
	id uuid.UUID
	ch chan Transaction
}

type unsubscribe struct {
	id uuid.UUID
}

const observerBuffer = 16

// Listener owns the SSE connection to the provider. All observer state is
// confined to a single goroutine; subscriptions and received data move
// through channels. The listener reconnects after a fixed delay until
// stopped.
type Listener struct {
	url    string
	apiKey string
	client *http.Client
	logger *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	stopped  chan struct{}
	commands chan any
}

// NewListener builds a listener for the given accounts. baseURL is the
// provider root, e.g. https://tonapi.io.
func NewListener(baseURL, apiKey string, accounts []string, logger *slog.Logger) *Listener {
	q := url.Values{}
	q.Set("accounts", strings.Join(accounts, ","))
	return &Listener{
		url:    baseURL + "/v2/sse/accounts/transactions?" + q.Encode(),
		apiKey: apiKey,
		client: &http.Client{}, // no timeout: the stream is long-lived
		logger: logger.With("component", "stream"),
	}
}

// Start begins connecting. Calling Start on a running listener is a no-op.
func (l *Listener) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.stopped = make(chan struct{})
	l.commands = make(chan any)
	go l.run(ctx)
}

// Stop tears the connection down and closes all observer channels.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.stopped
	l.cancel = nil
}

// StateObserver subscribes to connection state transitions.
func (l *Listener) StateObserver() (uuid.UUID, <-chan ConnectionState) {
	id := uuid.New()
	ch := make(chan ConnectionState, observerBuffer)
	l.send(subscribeState{id: id, ch: ch})
	return id, ch
}

// TransactionObserver subscribes to pushed transactions.
func (l *Listener) TransactionObserver() (uuid.UUID, <-chan Transaction) {
	id := uuid.New()
	ch := make(chan Transaction, observerBuffer)
	l.send(subscribeTx{id: id, ch: ch})
	return id, ch
}

// RemoveObserver drops a state or transaction observer and closes its
// channel.
func (l *Listener) RemoveObserver(id uuid.UUID) {
	l.send(unsubscribe{id: id})
}

func (l *Listener) send(cmd any) {
	l.mu.Lock()
	commands, stopped := l.commands, l.stopped
	l.mu.Unlock()
	if commands == nil {
		return
	}
	select {
	case commands <- cmd:
	case <-stopped:
	}
}

// run owns the observer maps. It is the only goroutine that touches them.
func (l *Listener) run(ctx context.Context) {
	defer close(l.stopped)

	stateObservers := make(map[uuid.UUID]chan ConnectionState)
	txObservers := make(map[uuid.UUID]chan Transaction)
	defer func() {
		for _, ch := range stateObservers {
			close(ch)
		}
		for _, ch := range txObservers {
			close(ch)
		}
	}()

	states := make(chan ConnectionState)
	txs := make(chan Transaction)
	go l.connectLoop(ctx, states, txs)

	current := StateDisconnected
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-l.commands:
			switch c := cmd.(type) {
			case subscribeState:
				c.ch <- current
				stateObservers[c.id] = c.ch
			case subscribeTx:
				txObservers[c.id] = c.ch
			case unsubscribe:
				if ch, ok := stateObservers[c.id]; ok {
					delete(stateObservers, c.id)
					close(ch)
				}
				if ch, ok := txObservers[c.id]; ok {
					delete(txObservers, c.id)
					close(ch)
				}
			}
		case s := <-states:
			if s == current {
				continue
			}
			current = s
			for _, ch := range stateObservers {
				select {
				case ch <- s:
				default:
				}
			}
		case tx := <-txs:
			for _, ch := range txObservers {
				select {
				case ch <- tx:
				default:
				}
			}
		}
	}
}

// connectLoop keeps one streaming request open, reconnecting at a constant
// interval until the context ends.
func (l *Listener) connectLoop(ctx context.Context, states chan<- ConnectionState, txs chan<- Transaction) {
	policy := backoff.WithContext(backoff.NewConstantBackOff(reconnectDelay), ctx)
	attempt := func() error {
		err := l.stream(ctx, states, txs)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		metrics.StreamReconnects.Inc()
		l.logger.Warn("stream disconnected, reconnecting", "error", err, "delay", reconnectDelay)
		if isNetworkDown(err) {
			deliver(ctx, states, StateNoConnection)
		} else {
			deliver(ctx, states, StateDisconnected)
		}
		return err
	}
	_ = backoff.Retry(attempt, policy)
}

// stream runs one SSE request to completion. It always returns a non-nil
// error so the caller reconnects; a server-closed stream is reported as
// such.
func (l *Listener) stream(ctx context.Context, states chan<- ConnectionState, txs chan<- Transaction) error {
	deliver(ctx, states, StateConnecting)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	if l.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+l.apiKey)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream request: unexpected status %d", resp.StatusCode)
	}

	deliver(ctx, states, StateConnected)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "heartbeat" {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal([]byte(data), &tx); err != nil {
			l.logger.Warn("stream payload not parseable", "error", err)
			continue
		}
		select {
		case txs <- tx:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return errors.New("stream closed by server")
}

func deliver(ctx context.Context, states chan<- ConnectionState, s ConnectionState) {
	select {
	case states <- s:
	case <-ctx.Done():
	}
}

// isNetworkDown distinguishes an unreachable network from a dropped
// stream.
func isNetworkDown(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
