package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/openton/tonkit/internal/core/domain"
	"github.com/openton/tonkit/internal/infra/storage"
)

// EventRepo implements storage.EventRepository using PostgreSQL.
type EventRepo struct {
	db *DB
}

// NewEventRepo creates a new PostgreSQL event repository.
func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

type eventRow struct {
	ID         string `db:"id"`
	Lt         int64  `db:"lt"`
	Timestamp  int64  `db:"timestamp"`
	Account    string `db:"account"`
	IsScam     bool   `db:"is_scam"`
	InProgress bool   `db:"in_progress"`
	Extra      int64  `db:"extra"`
	Actions    []byte `db:"actions"`
}

func (r *eventRow) toDomain() (*domain.Event, error) {
	var actions []domain.Action
	if err := json.Unmarshal(r.Actions, &actions); err != nil {
		return nil, fmt.Errorf("failed to decode actions for event %s: %w", r.ID, err)
	}
	return &domain.Event{
		ID:         r.ID,
		Lt:         r.Lt,
		Timestamp:  r.Timestamp,
		Account:    r.Account,
		IsScam:     r.IsScam,
		InProgress: r.InProgress,
		Extra:      r.Extra,
		Actions:    actions,
	}, nil
}

// Save upserts a batch of events in a single transaction.
func (r *EventRepo) Save(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (id, lt, timestamp, account, is_scam, in_progress, extra, actions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			lt = EXCLUDED.lt,
			timestamp = EXCLUDED.timestamp,
			is_scam = EXCLUDED.is_scam,
			in_progress = EXCLUDED.in_progress,
			extra = EXCLUDED.extra,
			actions = EXCLUDED.actions
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		args, err := saveEventArgs(e)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to save event %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// ReplaceTags deletes every tag of the given event ids and inserts the new
// set in one transaction.
func (r *EventRepo) ReplaceTags(ctx context.Context, eventIDs []string, tags []domain.Tag) error {
	if len(eventIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tags WHERE event_id = ANY($1)`, pq.Array(eventIDs),
	); err != nil {
		return fmt.Errorf("failed to delete tags: %w", err)
	}

	query := `
		INSERT INTO tags (event_id, type, platform, jetton_address, addresses)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, tag := range tags {
		args, err := insertTagArgs(tag)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}

	return tx.Commit()
}

func saveEventArgs(e *domain.Event) ([]any, error) {
	actions, err := jsonbArg(e.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode actions for event %s: %w", e.ID, err)
	}
	return []any{e.ID, e.Lt, e.Timestamp, e.Account, e.IsScam, e.InProgress, e.Extra, actions}, nil
}

func insertTagArgs(tag domain.Tag) ([]any, error) {
	addresses, err := jsonbArg(tag.Addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tag addresses: %w", err)
	}
	return []any{tag.EventID, string(tag.Type), string(tag.Platform), nullable(tag.JettonAddress), addresses}, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Get retrieves one event by id.
func (r *EventRepo) Get(ctx context.Context, id string) (*domain.Event, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM events WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return row.toDomain()
}

// GetByIDs retrieves the stored subset of the given ids.
func (r *EventRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM events WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return rowsToDomain(rows)
}

// Query returns events ordered by lt descending, filtered by the tag query
// and an optional exclusive lt upper bound.
func (r *EventRepo) Query(ctx context.Context, q domain.TagQuery, beforeLt *int64, limit int) ([]*domain.Event, error) {
	var (
		conditions []string
		args       []any
		join       string
	)

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if !q.IsEmpty() {
		join = "INNER JOIN tags ON events.id = tags.event_id"
		if q.Type != "" {
			conditions = append(conditions, "tags.type = "+arg(string(q.Type)))
		}
		if q.Platform != "" {
			conditions = append(conditions, "tags.platform = "+arg(string(q.Platform)))
		}
		if q.JettonAddress != "" {
			conditions = append(conditions, "tags.jetton_address = "+arg(q.JettonAddress))
		}
		if q.Address != "" {
			conditions = append(conditions, "tags.addresses @> "+arg(mustJSON(q.Address)))
		}
	}

	if beforeLt != nil {
		conditions = append(conditions, "events.lt < "+arg(*beforeLt))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT events.*
		FROM events
		%s
		%s
		ORDER BY events.lt DESC
		LIMIT %d
	`, join, where, limit)

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	return rowsToDomain(rows)
}

func mustJSON(v string) string {
	b, _ := json.Marshal([]string{v})
	return string(b)
}

// Latest returns the newest stored event.
func (r *EventRepo) Latest(ctx context.Context) (*domain.Event, error) {
	return r.boundary(ctx, "DESC")
}

// Oldest returns the oldest stored event.
func (r *EventRepo) Oldest(ctx context.Context) (*domain.Event, error) {
	return r.boundary(ctx, "ASC")
}

func (r *EventRepo) boundary(ctx context.Context, order string) (*domain.Event, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row,
		fmt.Sprintf(`SELECT * FROM events ORDER BY lt %s LIMIT 1`, order))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get boundary event: %w", err)
	}
	return row.toDomain()
}

// TagTokens returns the distinct (platform, jetton) pairs in the index.
func (r *EventRepo) TagTokens(ctx context.Context) ([]domain.TagToken, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT platform, COALESCE(jetton_address, '')
		FROM tags
		WHERE platform IS NOT NULL AND platform != ''
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.TagToken
	for rows.Next() {
		var platform, jetton string
		if err := rows.Scan(&platform, &jetton); err != nil {
			return nil, err
		}
		tokens = append(tokens, domain.TagToken{
			Platform:      domain.TagPlatform(platform),
			JettonAddress: jetton,
		})
	}
	return tokens, rows.Err()
}

func rowsToDomain(rows []eventRow) ([]*domain.Event, error) {
	out := make([]*domain.Event, 0, len(rows))
	for i := range rows {
		e, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
