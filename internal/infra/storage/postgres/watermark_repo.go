package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openton/tonkit/internal/infra/storage"
)

// WatermarkRepo implements storage.WatermarkRepository using PostgreSQL.
type WatermarkRepo struct {
	db *DB
}

// NewWatermarkRepo creates a new PostgreSQL watermark repository.
func NewWatermarkRepo(db *DB) *WatermarkRepo {
	return &WatermarkRepo{db: db}
}

// Completed reports whether history backfill finished for the provider.
func (r *WatermarkRepo) Completed(ctx context.Context, provider string) (bool, error) {
	var completed bool
	err := r.db.GetContext(ctx, &completed,
		`SELECT completed FROM watermarks WHERE provider = $1`, provider)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get watermark: %w", err)
	}
	return completed, nil
}

// MarkCompleted records backfill completion. The flag never moves back.
func (r *WatermarkRepo) MarkCompleted(ctx context.Context, provider string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watermarks (provider, completed)
		VALUES ($1, TRUE)
		ON CONFLICT (provider) DO UPDATE SET completed = TRUE
	`, provider)
	if err != nil {
		return fmt.Errorf("failed to mark watermark: %w", err)
	}
	return nil
}

// Store returns the repository bundle backed by this database.
func Store(db *DB) storage.Store {
	return storage.Store{
		Events:     NewEventRepo(db),
		Accounts:   NewAccountRepo(db),
		Jettons:    NewJettonRepo(db),
		Watermarks: NewWatermarkRepo(db),
	}
}
