package syncing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/openton/tonkit/internal/core/decoration"
	"github.com/openton/tonkit/internal/core/domain"
	"github.com/openton/tonkit/internal/infra/storage"
	"github.com/openton/tonkit/internal/syncing/metrics"
)

const (
	// eventPageLimit is the provider page size. A page shorter than this
	// means history is exhausted in the paging direction.
	eventPageLimit = 100

	// watermarkProvider keys the backfill-completed flag in storage.
	watermarkProvider = "tonapi"
)

// eventObserver is one event subscription with its tag filter.
type eventObserver struct {
	query domain.TagQuery
	ch    chan domain.EventInfo
}

// EventManager reconciles the account's event history with storage.
//
// A sync runs two phases. Catch-up pages forward from the newest stored
// event's timestamp and stops when it converges on an already-stored
// completed event or the provider runs out of newer events. Backfill then
// pages backward from the oldest stored event until a short page, after
// which the watermark marks history complete and later syncs skip the
// phase entirely. Every page is merged (and its tags recomputed) before
// the next one is fetched, so an aborted sync keeps its progress.
type EventManager struct {
	address    string
	api        API
	events     storage.EventRepository
	watermarks storage.WatermarkRepository
	chain      *decoration.Chain

	states *StatePublisher
	logger *slog.Logger

	mu        sync.Mutex
	observers map[uuid.UUID]*eventObserver
}

func NewEventManager(address string, api API, store storage.Store, chain *decoration.Chain, logger *slog.Logger) *EventManager {
	return &EventManager{
		address:    address,
		api:        api,
		events:     store.Events,
		watermarks: store.Watermarks,
		chain:      chain,
		states:     NewStatePublisher(),
		logger:     logger.With("stream", "events"),
		observers:  make(map[uuid.UUID]*eventObserver),
	}
}

// Sync runs catch-up and, while the watermark is unset, backfill.
// Concurrent calls while a sync is in flight are no-ops.
func (m *EventManager) Sync(ctx context.Context) error {
	if !m.states.Begin() {
		return nil
	}

	err := m.sync(ctx)
	m.states.Finish(err)
	if err != nil {
		metrics.SyncsTotal.WithLabelValues("events", "error").Inc()
		m.logger.Error("event sync failed", "error", err)
		return err
	}
	metrics.SyncsTotal.WithLabelValues("events", "ok").Inc()
	return nil
}

func (m *EventManager) sync(ctx context.Context) error {
	if err := m.catchUp(ctx); err != nil {
		return err
	}

	done, err := m.watermarks.Completed(ctx, watermarkProvider)
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	return m.backfill(ctx)
}

// catchUp fetches events newer than the newest stored one, oldest bound by
// its timestamp. Events already stored in completed form end the walk: the
// provider returns pages newest-first, so everything past that point is
// already local. Stored in-progress events are replaced by their fetched
// form, which picks up the confirmed action set and re-derives tags.
func (m *EventManager) catchUp(ctx context.Context) error {
	var startTimestamp *int64
	newest, err := m.events.Latest(ctx)
	switch {
	case err == nil:
		startTimestamp = &newest.Timestamp
	case errors.Is(err, storage.ErrNotFound):
	default:
		return err
	}

	var beforeLt *int64
	for {
		page, err := m.api.GetEvents(ctx, m.address, beforeLt, startTimestamp, eventPageLimit)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}

		fresh, converged, err := m.dedup(ctx, page)
		if err != nil {
			return err
		}
		if len(fresh) > 0 {
			if err := m.merge(ctx, fresh); err != nil {
				return err
			}
			m.publish(fresh, false)
		}
		metrics.PagesMerged.WithLabelValues("catchup").Inc()

		if converged || len(page) < eventPageLimit {
			return nil
		}
		last := page[len(page)-1].Lt
		beforeLt = &last
	}
}

// dedup splits a fetched page against storage: stored completed events are
// dropped (and signal convergence), stored in-progress events and unknown
// events pass through for merging.
func (m *EventManager) dedup(ctx context.Context, page []*domain.Event) (fresh []*domain.Event, converged bool, err error) {
	ids := make([]string, len(page))
	for i, event := range page {
		ids[i] = event.ID
	}
	stored, err := m.events.GetByIDs(ctx, ids)
	if err != nil {
		return nil, false, err
	}
	completed := make(map[string]bool, len(stored))
	for _, event := range stored {
		completed[event.ID] = !event.InProgress
	}

	for _, event := range page {
		if done, ok := completed[event.ID]; ok && done {
			converged = true
			continue
		}
		fresh = append(fresh, event)
	}
	return fresh, converged, nil
}

// backfill pages backward from the oldest stored event. A short page means
// history is exhausted; the watermark records that so the phase never runs
// again. An account with no history at all stays unwatermarked: its first
// event arrives through catch-up, and backfill resumes from it.
func (m *EventManager) backfill(ctx context.Context) error {
	var beforeLt *int64
	hasHistory := false
	oldest, err := m.events.Oldest(ctx)
	switch {
	case err == nil:
		beforeLt = &oldest.Lt
		hasHistory = true
	case errors.Is(err, storage.ErrNotFound):
	default:
		return err
	}

	for {
		page, err := m.api.GetEvents(ctx, m.address, beforeLt, nil, eventPageLimit)
		if err != nil {
			return err
		}
		if len(page) > 0 {
			hasHistory = true
			if err := m.merge(ctx, page); err != nil {
				return err
			}
			m.publish(page, true)
			metrics.PagesMerged.WithLabelValues("backfill").Inc()
		}
		if len(page) < eventPageLimit {
			if !hasHistory {
				return nil
			}
			return m.watermarks.MarkCompleted(ctx, watermarkProvider)
		}
		last := page[len(page)-1].Lt
		beforeLt = &last
	}
}

// merge persists one batch and replaces the tag sets of the affected
// events.
func (m *EventManager) merge(ctx context.Context, events []*domain.Event) error {
	if err := m.events.Save(ctx, events); err != nil {
		return err
	}

	ids := make([]string, len(events))
	var tags []domain.Tag
	for i, event := range events {
		ids[i] = event.ID
		tags = append(tags, m.chain.EventTags(event)...)
	}
	if err := m.events.ReplaceTags(ctx, ids, tags); err != nil {
		return err
	}
	metrics.EventsMerged.Add(float64(len(events)))
	return nil
}

// Events returns stored events matching the query, newest first.
func (m *EventManager) Events(ctx context.Context, q domain.TagQuery, beforeLt *int64, limit int) ([]*domain.Event, error) {
	return m.events.Query(ctx, q, beforeLt, limit)
}

// Event returns one stored event by id.
func (m *EventManager) Event(ctx context.Context, id string) (*domain.Event, error) {
	return m.events.Get(ctx, id)
}

// TagTokens returns the distinct platform/jetton pairs seen in the index.
func (m *EventManager) TagTokens(ctx context.Context) ([]domain.TagToken, error) {
	return m.events.TagTokens(ctx)
}

func (m *EventManager) State() domain.SyncState {
	return m.states.State()
}

func (m *EventManager) StateObserver() (uuid.UUID, <-chan domain.SyncState) {
	return m.states.Subscribe()
}

func (m *EventManager) RemoveStateObserver(id uuid.UUID) {
	m.states.Unsubscribe(id)
}

// Observer subscribes to merged event batches filtered by the tag query.
// An empty query receives every batch.
func (m *EventManager) Observer(q domain.TagQuery) (uuid.UUID, <-chan domain.EventInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New()
	obs := &eventObserver{
		query: q,
		ch:    make(chan domain.EventInfo, observerBuffer),
	}
	m.observers[id] = obs
	return id, obs.ch
}

func (m *EventManager) RemoveObserver(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if obs, ok := m.observers[id]; ok {
		delete(m.observers, id)
		close(obs.ch)
	}
}

// publish fans a merged batch out to observers, filtered per observer by
// its tag query. Slow observers drop batches instead of blocking the sync
// loop.
func (m *EventManager) publish(events []*domain.Event, initial bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, obs := range m.observers {
		matched := m.filter(events, obs.query)
		if len(matched) == 0 {
			continue
		}
		select {
		case obs.ch <- domain.EventInfo{Events: matched, Initial: initial}:
		default:
		}
	}
}

func (m *EventManager) filter(events []*domain.Event, q domain.TagQuery) []*domain.Event {
	if q.IsEmpty() {
		return events
	}
	var matched []*domain.Event
	for _, event := range events {
		for _, tag := range m.chain.EventTags(event) {
			if tag.Conforms(q) {
				matched = append(matched, event)
				break
			}
		}
	}
	return matched
}
