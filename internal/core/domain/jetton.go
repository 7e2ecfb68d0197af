package domain

import "math/big"

// JettonVerification is the provider's listing status for a jetton master.
type JettonVerification string

const (
	JettonVerificationWhitelist JettonVerification = "whitelist"
	JettonVerificationBlacklist JettonVerification = "blacklist"
	JettonVerificationNone      JettonVerification = "none"
	JettonVerificationUnknown   JettonVerification = "unknown"
)

// Jetton is the metadata of a jetton master contract.
type Jetton struct {
	Address      string             `json:"address"`
	Name         string             `json:"name"`
	Symbol       string             `json:"symbol"`
	Decimals     int                `json:"decimals"`
	Image        string             `json:"image,omitempty"`
	Verification JettonVerification `json:"verification"`
}

// JettonBalance is the tracked account's balance in one jetton, held via
// the jetton-specific wallet sub-account. The full set is replaced
// atomically on each sync.
type JettonBalance struct {
	JettonAddress string   `json:"jetton_address"`
	Jetton        Jetton   `json:"jetton"`
	Balance       *big.Int `json:"balance"`
	WalletAddress string   `json:"wallet_address"`
}

// Equal compares two jetton balances field by field.
func (b JettonBalance) Equal(other JettonBalance) bool {
	return b.JettonAddress == other.JettonAddress &&
		b.Jetton == other.Jetton &&
		b.WalletAddress == other.WalletAddress &&
		bigIntEqual(b.Balance, other.Balance)
}
