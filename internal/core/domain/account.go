package domain

import "math/big"

// AccountStatus is the contract state of an account on chain.
type AccountStatus string

const (
	AccountStatusNonexist AccountStatus = "nonexist"
	AccountStatusUninit   AccountStatus = "uninit"
	AccountStatusActive   AccountStatus = "active"
	AccountStatusFrozen   AccountStatus = "frozen"
	AccountStatusUnknown  AccountStatus = "unknown"
)

// Account is the balance snapshot of the tracked address. A kit instance
// holds a single row, overwritten on each successful balance fetch.
type Account struct {
	Address string
	Balance *big.Int
	Status  AccountStatus
}

// Equal compares two snapshots field by field.
func (a *Account) Equal(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Address == other.Address &&
		a.Status == other.Status &&
		bigIntEqual(a.Balance, other.Balance)
}

func bigIntEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
