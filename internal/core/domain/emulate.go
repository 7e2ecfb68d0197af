package domain

import "math/big"

// EmulateResult is the outcome of a fee-estimation dry run.
type EmulateResult struct {
	TotalFee *big.Int
	Event    *Event
}
