package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/openton/tonkit/internal/core/domain"
	"github.com/openton/tonkit/internal/infra/storage"
)

// AccountRepo implements storage.AccountRepository using PostgreSQL.
type AccountRepo struct {
	db *DB
}

// NewAccountRepo creates a new PostgreSQL account repository.
func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Get retrieves the balance snapshot for an address.
func (r *AccountRepo) Get(ctx context.Context, address string) (*domain.Account, error) {
	var row struct {
		Address string `db:"address"`
		Balance string `db:"balance"`
		Status  string `db:"status"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT address, balance, status FROM accounts WHERE address = $1`, address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	balance, ok := new(big.Int).SetString(row.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid stored balance %q for %s", row.Balance, address)
	}

	return &domain.Account{
		Address: row.Address,
		Balance: balance,
		Status:  domain.AccountStatus(row.Status),
	}, nil
}

// Save overwrites the balance snapshot.
func (r *AccountRepo) Save(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (address, balance, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO UPDATE SET
			balance = EXCLUDED.balance,
			status = EXCLUDED.status
	`, account.Address, account.Balance.String(), string(account.Status))
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}
