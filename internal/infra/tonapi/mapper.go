package tonapi

import (
	"encoding/json"
	"log/slog"
	"math/big"

	"github.com/openton/tonkit/internal/core/domain"
)

// provider action type names, as emitted by TONAPI.
const (
	typeTonTransfer    = "TonTransfer"
	typeJettonTransfer = "JettonTransfer"
	typeJettonBurn     = "JettonBurn"
	typeJettonMint     = "JettonMint"
	typeContractDeploy = "ContractDeploy"
	typeJettonSwap     = "JettonSwap"
	typeSmartContract  = "SmartContractExec"
)

// mapEvent converts a provider event into the domain model. Actions that
// fail to parse are dropped individually; an event where no action parsed
// is discarded entirely (ok=false) since it carries no usable information.
func mapEvent(p *eventPayload, log *slog.Logger) (*domain.Event, bool) {
	actions := make([]domain.Action, 0, len(p.Actions))
	for i := range p.Actions {
		action, err := mapAction(&p.Actions[i])
		if err != nil {
			log.Warn("Dropping unparseable action",
				"event_id", p.EventID, "index", i, "type", p.Actions[i].Type, "error", err)
			continue
		}
		action.Index = len(actions)
		actions = append(actions, action)
	}

	if len(actions) == 0 {
		return nil, false
	}

	return &domain.Event{
		ID:         p.EventID,
		Lt:         p.Lt,
		Timestamp:  p.Timestamp,
		Account:    normalizeOr(p.Account.Address),
		IsScam:     p.IsScam,
		InProgress: p.InProgress,
		Extra:      p.Extra,
		Actions:    actions,
	}, true
}

func mapAction(p *actionPayload) (domain.Action, error) {
	action := domain.Action{
		Kind:   domain.ActionKindUnknown,
		Status: mapStatus(p.Status),
	}

	switch p.Type {
	case typeTonTransfer:
		var t tonTransferPayload
		if err := json.Unmarshal(p.TonTransfer, &t); err != nil {
			return action, err
		}
		action.Kind = domain.ActionKindTonTransfer
		action.TonTransfer = &domain.TonTransferAction{
			Sender:    mapAccountAddress(t.Sender),
			Recipient: mapAccountAddress(t.Recipient),
			Amount:    big.NewInt(t.Amount),
			Comment:   t.Comment,
		}

	case typeJettonTransfer:
		var t jettonTransferPayload
		if err := json.Unmarshal(p.JettonTransfer, &t); err != nil {
			return action, err
		}
		amount, err := parseAmount(t.Amount)
		if err != nil {
			return action, err
		}
		action.Kind = domain.ActionKindJettonTransfer
		action.JettonTransfer = &domain.JettonTransferAction{
			Sender:          mapOptionalAddress(t.Sender),
			Recipient:       mapOptionalAddress(t.Recipient),
			SenderWallet:    normalizeOr(t.SendersWallet),
			RecipientWallet: normalizeOr(t.RecipientsWallet),
			Amount:          amount,
			Comment:         t.Comment,
			Jetton:          mapJetton(t.Jetton),
		}

	case typeJettonBurn:
		var t jettonBurnPayload
		if err := json.Unmarshal(p.JettonBurn, &t); err != nil {
			return action, err
		}
		amount, err := parseAmount(t.Amount)
		if err != nil {
			return action, err
		}
		action.Kind = domain.ActionKindJettonBurn
		action.JettonBurn = &domain.JettonBurnAction{
			Sender:       mapAccountAddress(t.Sender),
			SenderWallet: normalizeOr(t.SendersWallet),
			Amount:       amount,
			Jetton:       mapJetton(t.Jetton),
		}

	case typeJettonMint:
		var t jettonMintPayload
		if err := json.Unmarshal(p.JettonMint, &t); err != nil {
			return action, err
		}
		amount, err := parseAmount(t.Amount)
		if err != nil {
			return action, err
		}
		action.Kind = domain.ActionKindJettonMint
		action.JettonMint = &domain.JettonMintAction{
			Recipient:       mapAccountAddress(t.Recipient),
			RecipientWallet: normalizeOr(t.RecipientsWallet),
			Amount:          amount,
			Jetton:          mapJetton(t.Jetton),
		}

	case typeContractDeploy:
		var t contractDeployPayload
		if err := json.Unmarshal(p.ContractDeploy, &t); err != nil {
			return action, err
		}
		action.Kind = domain.ActionKindContractDeploy
		action.ContractDeploy = &domain.ContractDeployAction{
			Address:    normalizeOr(t.Address),
			Interfaces: t.Interfaces,
		}

	case typeJettonSwap:
		var t jettonSwapPayload
		if err := json.Unmarshal(p.JettonSwap, &t); err != nil {
			return action, err
		}
		amountIn, err := parseAmount(t.AmountIn)
		if err != nil {
			return action, err
		}
		amountOut, err := parseAmount(t.AmountOut)
		if err != nil {
			return action, err
		}
		swap := &domain.JettonSwapAction{
			Dex:        t.Dex,
			AmountIn:   amountIn,
			AmountOut:  amountOut,
			UserWallet: mapAccountAddress(t.UserWallet),
			Router:     mapAccountAddress(t.Router),
		}
		if t.TonIn != nil {
			swap.TonIn = big.NewInt(*t.TonIn)
		}
		if t.TonOut != nil {
			swap.TonOut = big.NewInt(*t.TonOut)
		}
		if t.JettonMasterIn != nil {
			jetton := mapJetton(*t.JettonMasterIn)
			swap.JettonMasterIn = &jetton
		}
		if t.JettonMasterOut != nil {
			jetton := mapJetton(*t.JettonMasterOut)
			swap.JettonMasterOut = &jetton
		}
		action.Kind = domain.ActionKindJettonSwap
		action.JettonSwap = swap

	case typeSmartContract:
		var t smartContractPayload
		if err := json.Unmarshal(p.SmartContract, &t); err != nil {
			return action, err
		}
		action.Kind = domain.ActionKindSmartContract
		action.SmartContract = &domain.SmartContractAction{
			Contract:    mapAccountAddress(t.Contract),
			TonAttached: big.NewInt(t.TonAttached),
			Operation:   t.Operation,
			Payload:     t.Payload,
		}

	default:
		action.RawType = p.Type
	}

	return action, nil
}

func mapStatus(s string) domain.ActionStatus {
	switch s {
	case "ok":
		return domain.ActionStatusOK
	case "failed":
		return domain.ActionStatusFailed
	default:
		return domain.ActionStatusUnknown
	}
}

func mapAccountAddress(ref accountAddressRef) domain.AccountAddress {
	return domain.AccountAddress{
		Address:  normalizeOr(ref.Address),
		Name:     ref.Name,
		IsScam:   ref.IsScam,
		IsWallet: ref.IsWallet,
	}
}

func mapOptionalAddress(ref *accountAddressRef) *domain.AccountAddress {
	if ref == nil {
		return nil
	}
	mapped := mapAccountAddress(*ref)
	return &mapped
}

func mapJetton(p jettonPreviewPayload) domain.Jetton {
	return domain.Jetton{
		Address:      normalizeOr(p.Address),
		Name:         p.Name,
		Symbol:       p.Symbol,
		Decimals:     p.Decimals,
		Image:        p.Image,
		Verification: mapVerification(p.Verification),
	}
}

func mapVerification(s string) domain.JettonVerification {
	switch s {
	case "whitelist":
		return domain.JettonVerificationWhitelist
	case "blacklist":
		return domain.JettonVerificationBlacklist
	case "none":
		return domain.JettonVerificationNone
	default:
		return domain.JettonVerificationUnknown
	}
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &AmountError{Raw: s}
	}
	return amount, nil
}

// normalizeOr returns the canonical raw form of an address, or the input
// unchanged when it doesn't parse (the provider occasionally emits
// placeholder identities).
func normalizeOr(s string) string {
	normalized, err := domain.NormalizeAddress(s)
	if err != nil {
		return s
	}
	return normalized
}

// AmountError marks a numeric field that failed to parse.
type AmountError struct {
	Raw string
}

func (e *AmountError) Error() string {
	return "invalid amount: " + e.Raw
}
