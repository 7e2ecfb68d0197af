package domain

import "math/big"

// ActionKind identifies the semantic type of an action within an event.
type ActionKind string

const (
	ActionKindTonTransfer    ActionKind = "ton_transfer"
	ActionKindJettonTransfer ActionKind = "jetton_transfer"
	ActionKindJettonBurn     ActionKind = "jetton_burn"
	ActionKindJettonMint     ActionKind = "jetton_mint"
	ActionKindContractDeploy ActionKind = "contract_deploy"
	ActionKindJettonSwap     ActionKind = "jetton_swap"
	ActionKindSmartContract  ActionKind = "smart_contract"
	ActionKindUnknown        ActionKind = "unknown"
)

// ActionStatus is the execution status reported by the provider.
type ActionStatus string

const (
	ActionStatusOK      ActionStatus = "ok"
	ActionStatusFailed  ActionStatus = "failed"
	ActionStatusUnknown ActionStatus = "unknown"
)

// Action is one economic effect within an event. Exactly one of the
// kind-specific pointers is set, matching Kind. Actions are immutable
// once persisted; Index is the position within the owning event and is
// part of the storage ordering.
type Action struct {
	Index  int          `json:"index"`
	Kind   ActionKind   `json:"kind"`
	Status ActionStatus `json:"status"`

	TonTransfer    *TonTransferAction    `json:"ton_transfer,omitempty"`
	JettonTransfer *JettonTransferAction `json:"jetton_transfer,omitempty"`
	JettonBurn     *JettonBurnAction     `json:"jetton_burn,omitempty"`
	JettonMint     *JettonMintAction     `json:"jetton_mint,omitempty"`
	ContractDeploy *ContractDeployAction `json:"contract_deploy,omitempty"`
	JettonSwap     *JettonSwapAction     `json:"jetton_swap,omitempty"`
	SmartContract  *SmartContractAction  `json:"smart_contract,omitempty"`

	// RawType keeps the provider's type string for unknown actions.
	RawType string `json:"raw_type,omitempty"`
}

// AccountAddress is a resolved counterparty identity.
type AccountAddress struct {
	Address  string `json:"address"`
	Name     string `json:"name,omitempty"`
	IsScam   bool   `json:"is_scam"`
	IsWallet bool   `json:"is_wallet"`
}

// TonTransferAction is a native TON transfer.
type TonTransferAction struct {
	Sender    AccountAddress `json:"sender"`
	Recipient AccountAddress `json:"recipient"`
	Amount    *big.Int       `json:"amount"`
	Comment   string         `json:"comment,omitempty"`
}

// JettonTransferAction is a jetton (token) transfer. Sender and recipient
// may be unresolved; the wallet sub-account addresses are always present.
type JettonTransferAction struct {
	Sender          *AccountAddress `json:"sender,omitempty"`
	Recipient       *AccountAddress `json:"recipient,omitempty"`
	SenderWallet    string          `json:"sender_wallet"`
	RecipientWallet string          `json:"recipient_wallet"`
	Amount          *big.Int        `json:"amount"`
	Comment         string          `json:"comment,omitempty"`
	Jetton          Jetton          `json:"jetton"`
}

// JettonBurnAction destroys jettons from the sender's wallet.
type JettonBurnAction struct {
	Sender       AccountAddress `json:"sender"`
	SenderWallet string         `json:"sender_wallet"`
	Amount       *big.Int       `json:"amount"`
	Jetton       Jetton         `json:"jetton"`
}

// JettonMintAction credits newly issued jettons to the recipient's wallet.
type JettonMintAction struct {
	Recipient       AccountAddress `json:"recipient"`
	RecipientWallet string         `json:"recipient_wallet"`
	Amount          *big.Int       `json:"amount"`
	Jetton          Jetton         `json:"jetton"`
}

// ContractDeployAction records a contract deployment.
type ContractDeployAction struct {
	Address    string   `json:"address"`
	Interfaces []string `json:"interfaces,omitempty"`
}

// JettonSwapAction is a DEX swap. A nil jetton master on either leg means
// that leg is native TON.
type JettonSwapAction struct {
	Dex             string         `json:"dex"`
	AmountIn        *big.Int       `json:"amount_in"`
	AmountOut       *big.Int       `json:"amount_out"`
	TonIn           *big.Int       `json:"ton_in,omitempty"`
	TonOut          *big.Int       `json:"ton_out,omitempty"`
	UserWallet      AccountAddress `json:"user_wallet"`
	Router          AccountAddress `json:"router"`
	JettonMasterIn  *Jetton        `json:"jetton_master_in,omitempty"`
	JettonMasterOut *Jetton        `json:"jetton_master_out,omitempty"`
}

// SmartContractAction is a call into a contract with attached TON.
type SmartContractAction struct {
	Contract    AccountAddress `json:"contract"`
	TonAttached *big.Int       `json:"ton_attached"`
	Operation   string         `json:"operation"`
	Payload     string         `json:"payload,omitempty"`
}
