package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/openton/tonkit/internal/core/domain"
)

// JettonRepo implements storage.JettonRepository using PostgreSQL.
type JettonRepo struct {
	db *DB
}

// NewJettonRepo creates a new PostgreSQL jetton repository.
func NewJettonRepo(db *DB) *JettonRepo {
	return &JettonRepo{db: db}
}

// Balances returns all stored jetton balances.
func (r *JettonRepo) Balances(ctx context.Context) ([]domain.JettonBalance, error) {
	var rows []struct {
		JettonAddress string `db:"jetton_address"`
		Jetton        []byte `db:"jetton"`
		Balance       string `db:"balance"`
		WalletAddress string `db:"wallet_address"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT jetton_address, jetton, balance, wallet_address FROM jetton_balances`)
	if err != nil {
		return nil, fmt.Errorf("failed to query jetton balances: %w", err)
	}

	out := make([]domain.JettonBalance, 0, len(rows))
	for _, row := range rows {
		var jetton domain.Jetton
		if err := json.Unmarshal(row.Jetton, &jetton); err != nil {
			return nil, fmt.Errorf("failed to decode jetton %s: %w", row.JettonAddress, err)
		}
		balance, ok := new(big.Int).SetString(row.Balance, 10)
		if !ok {
			return nil, fmt.Errorf("invalid stored balance %q for jetton %s", row.Balance, row.JettonAddress)
		}
		out = append(out, domain.JettonBalance{
			JettonAddress: row.JettonAddress,
			Jetton:        jetton,
			Balance:       balance,
			WalletAddress: row.WalletAddress,
		})
	}
	return out, nil
}

// Replace atomically swaps the whole balance set.
func (r *JettonRepo) Replace(ctx context.Context, balances []domain.JettonBalance) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM jetton_balances`); err != nil {
		return fmt.Errorf("failed to clear jetton balances: %w", err)
	}

	query := `
		INSERT INTO jetton_balances (jetton_address, jetton, balance, wallet_address)
		VALUES ($1, $2, $3, $4)
	`
	for _, b := range balances {
		args, err := insertBalanceArgs(b)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert jetton balance: %w", err)
		}
	}

	return tx.Commit()
}

func insertBalanceArgs(b domain.JettonBalance) ([]any, error) {
	jetton, err := jsonbArg(b.Jetton)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jetton %s: %w", b.JettonAddress, err)
	}
	return []any{b.JettonAddress, jetton, b.Balance.String(), b.WalletAddress}, nil
}
