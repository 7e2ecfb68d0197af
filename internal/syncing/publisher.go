package syncing

import (
	"sync"

	"github.com/google/uuid"

	"github.com/openton/tonkit/internal/core/domain"
)

// observerBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind starts dropping updates rather than blocking the
// sync loop.
const observerBuffer = 16

// Publisher fans values out to uuid-keyed subscribers. When an equality
// function is set, publishing a value equal to the last one is a no-op, so
// observers only see actual changes. New subscribers immediately receive
// the last published value, if any.
type Publisher[T any] struct {
	mu    sync.Mutex
	subs  map[uuid.UUID]chan T
	last  *T
	equal func(a, b T) bool
}

func NewPublisher[T any](equal func(a, b T) bool) *Publisher[T] {
	return &Publisher[T]{
		subs:  make(map[uuid.UUID]chan T),
		equal: equal,
	}
}

// Subscribe registers an observer and returns its key and channel. The
// current value, if one exists, is delivered before any future updates.
func (p *Publisher[T]) Subscribe() (uuid.UUID, <-chan T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := uuid.New()
	ch := make(chan T, observerBuffer)
	if p.last != nil {
		ch <- *p.last
	}
	p.subs[id] = ch
	return id, ch
}

// Unsubscribe removes the observer and closes its channel.
func (p *Publisher[T]) Unsubscribe(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ch, ok := p.subs[id]; ok {
		delete(p.subs, id)
		close(ch)
	}
}

// Publish delivers v to every subscriber unless it equals the last
// published value. Slow subscribers drop updates instead of blocking.
func (p *Publisher[T]) Publish(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.equal != nil && p.last != nil && p.equal(*p.last, v) {
		return
	}
	p.last = &v
	for _, ch := range p.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Last returns the most recently published value.
func (p *Publisher[T]) Last() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last == nil {
		var zero T
		return zero, false
	}
	return *p.last, true
}

// StatePublisher is a Publisher of sync states with an in-flight guard:
// Begin only succeeds when no sync is currently running, which makes
// concurrent sync calls on the same manager no-ops.
type StatePublisher struct {
	mu  sync.Mutex
	pub *Publisher[domain.SyncState]
}

func NewStatePublisher() *StatePublisher {
	p := &StatePublisher{
		pub: NewPublisher[domain.SyncState](domain.SyncState.Equal),
	}
	p.pub.Publish(domain.SyncStateNotSynced(domain.ErrNotStarted))
	return p
}

// Begin transitions to Syncing and reports whether the caller won the
// transition. A false return means another sync is already in flight.
func (p *StatePublisher) Begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.State().Syncing() {
		return false
	}
	p.pub.Publish(domain.SyncStateSyncing(nil))
	return true
}

// Progress publishes a Syncing state with the given completion fraction.
func (p *StatePublisher) Progress(fraction float64) {
	p.pub.Publish(domain.SyncStateSyncing(&fraction))
}

// Finish leaves the Syncing state: Synced on nil, NotSynced otherwise.
func (p *StatePublisher) Finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.pub.Publish(domain.SyncStateNotSynced(err))
		return
	}
	p.pub.Publish(domain.SyncStateSynced())
}

// State returns the current sync state.
func (p *StatePublisher) State() domain.SyncState {
	s, ok := p.pub.Last()
	if !ok {
		return domain.SyncStateNotSynced(domain.ErrNotStarted)
	}
	return s
}

func (p *StatePublisher) Subscribe() (uuid.UUID, <-chan domain.SyncState) {
	return p.pub.Subscribe()
}

func (p *StatePublisher) Unsubscribe(id uuid.UUID) {
	p.pub.Unsubscribe(id)
}
