package tonapi

import "encoding/json"

// Wire types for the TONAPI v2 REST payloads the kit consumes. Only the
// fields the mapper reads are declared.

type accountPayload struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
	Status  string `json:"status"`
}

type jettonBalancesPayload struct {
	Balances []jettonBalancePayload `json:"balances"`
}

type jettonBalancePayload struct {
	Balance       string               `json:"balance"`
	WalletAddress accountAddressRef    `json:"wallet_address"`
	Jetton        jettonPreviewPayload `json:"jetton"`
}

type jettonPreviewPayload struct {
	Address      string `json:"address"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Decimals     int    `json:"decimals"`
	Image        string `json:"image"`
	Verification string `json:"verification"`
}

type accountAddressRef struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	IsScam   bool   `json:"is_scam"`
	IsWallet bool   `json:"is_wallet"`
}

type eventsPayload struct {
	Events   []eventPayload `json:"events"`
	NextFrom int64          `json:"next_from"`
}

type eventPayload struct {
	EventID    string            `json:"event_id"`
	Account    accountAddressRef `json:"account"`
	Timestamp  int64             `json:"timestamp"`
	Actions    []actionPayload   `json:"actions"`
	IsScam     bool              `json:"is_scam"`
	Lt         int64             `json:"lt"`
	InProgress bool              `json:"in_progress"`
	Extra      int64             `json:"extra"`
}

// actionPayload is the provider's polymorphic action envelope: Type names
// the populated sub-object. Sub-objects are kept raw so one malformed
// action doesn't fail the whole event decode.
type actionPayload struct {
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	TonTransfer    json.RawMessage `json:"TonTransfer"`
	JettonTransfer json.RawMessage `json:"JettonTransfer"`
	JettonBurn     json.RawMessage `json:"JettonBurn"`
	JettonMint     json.RawMessage `json:"JettonMint"`
	ContractDeploy json.RawMessage `json:"ContractDeploy"`
	JettonSwap     json.RawMessage `json:"JettonSwap"`
	SmartContract  json.RawMessage `json:"SmartContractExec"`
}

type tonTransferPayload struct {
	Sender    accountAddressRef `json:"sender"`
	Recipient accountAddressRef `json:"recipient"`
	Amount    int64             `json:"amount"`
	Comment   string            `json:"comment"`
}

type jettonTransferPayload struct {
	Sender           *accountAddressRef   `json:"sender"`
	Recipient        *accountAddressRef   `json:"recipient"`
	SendersWallet    string               `json:"senders_wallet"`
	RecipientsWallet string               `json:"recipients_wallet"`
	Amount           string               `json:"amount"`
	Comment          string               `json:"comment"`
	Jetton           jettonPreviewPayload `json:"jetton"`
}

type jettonBurnPayload struct {
	Sender        accountAddressRef    `json:"sender"`
	SendersWallet string               `json:"senders_wallet"`
	Amount        string               `json:"amount"`
	Jetton        jettonPreviewPayload `json:"jetton"`
}

type jettonMintPayload struct {
	Recipient        accountAddressRef    `json:"recipient"`
	RecipientsWallet string               `json:"recipients_wallet"`
	Amount           string               `json:"amount"`
	Jetton           jettonPreviewPayload `json:"jetton"`
}

type contractDeployPayload struct {
	Address    string   `json:"address"`
	Interfaces []string `json:"interfaces"`
}

type jettonSwapPayload struct {
	Dex             string                `json:"dex"`
	AmountIn        string                `json:"amount_in"`
	AmountOut       string                `json:"amount_out"`
	TonIn           *int64                `json:"ton_in"`
	TonOut          *int64                `json:"ton_out"`
	UserWallet      accountAddressRef     `json:"user_wallet"`
	Router          accountAddressRef     `json:"router"`
	JettonMasterIn  *jettonPreviewPayload `json:"jetton_master_in"`
	JettonMasterOut *jettonPreviewPayload `json:"jetton_master_out"`
}

type smartContractPayload struct {
	Contract    accountAddressRef `json:"contract"`
	TonAttached int64             `json:"ton_attached"`
	Operation   string            `json:"operation"`
	Payload     string            `json:"payload"`
}

type seqnoPayload struct {
	Seqno uint32 `json:"seqno"`
}

type rawTimePayload struct {
	Time int64 `json:"time"`
}

type emulatePayload struct {
	Event eventPayload `json:"event"`
	Trace struct {
		Transaction struct {
			TotalFees int64 `json:"total_fees"`
		} `json:"transaction"`
	} `json:"trace"`
}

type errorPayload struct {
	Error string `json:"error"`
}
