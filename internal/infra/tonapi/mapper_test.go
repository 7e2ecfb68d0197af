package tonapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/openton/tonkit/internal/core/domain"
)

const rawAddr = "0:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
const rawPeer = "0:bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeEvent(t *testing.T, raw string) *eventPayload {
	t.Helper()
	var p eventPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return &p
}

func TestMapEventTonTransfer(t *testing.T) {
	p := decodeEvent(t, `{
		"event_id": "ev-1",
		"account": {"address": "`+rawAddr+`"},
		"timestamp": 1700000000,
		"lt": 42000001,
		"is_scam": false,
		"in_progress": false,
		"extra": -5000,
		"actions": [{
			"type": "TonTransfer",
			"status": "ok",
			"TonTransfer": {
				"sender": {"address": "`+rawPeer+`", "is_wallet": true},
				"recipient": {"address": "`+rawAddr+`", "is_wallet": true},
				"amount": 1500000000,
				"comment": "hello"
			}
		}]
	}`)

	event, ok := mapEvent(p, testLogger())
	if !ok {
		t.Fatal("mapEvent() dropped a valid event")
	}
	if event.ID != "ev-1" || event.Lt != 42000001 || event.Extra != -5000 {
		t.Errorf("event = %+v, fields not carried over", event)
	}
	if len(event.Actions) != 1 {
		t.Fatalf("actions = %d, want 1", len(event.Actions))
	}

	action := event.Actions[0]
	if action.Kind != domain.ActionKindTonTransfer || action.Status != domain.ActionStatusOK {
		t.Fatalf("action = %+v, want ok ton transfer", action)
	}
	transfer := action.TonTransfer
	if transfer.Amount.Int64() != 1500000000 || transfer.Comment != "hello" {
		t.Errorf("transfer = %+v", transfer)
	}
	if transfer.Sender.Address != rawPeer || transfer.Recipient.Address != rawAddr {
		t.Errorf("addresses not normalized: %+v", transfer)
	}
}

func TestMapEventJettonTransferBigAmount(t *testing.T) {
	p := decodeEvent(t, `{
		"event_id": "ev-2",
		"account": {"address": "`+rawAddr+`"},
		"lt": 1,
		"actions": [{
			"type": "JettonTransfer",
			"status": "ok",
			"JettonTransfer": {
				"sender": {"address": "`+rawPeer+`"},
				"senders_wallet": "`+rawPeer+`",
				"recipients_wallet": "`+rawAddr+`",
				"amount": "340282366920938463463374607431768211456",
				"jetton": {"address": "`+rawPeer+`", "symbol": "USDT", "decimals": 6, "verification": "whitelist"}
			}
		}]
	}`)

	event, ok := mapEvent(p, testLogger())
	if !ok {
		t.Fatal("mapEvent() dropped a valid event")
	}
	transfer := event.Actions[0].JettonTransfer
	if transfer.Amount.String() != "340282366920938463463374607431768211456" {
		t.Errorf("amount = %s, want the full 129-bit value", transfer.Amount)
	}
	if transfer.Recipient != nil {
		t.Error("absent recipient should map to nil")
	}
	if transfer.Jetton.Verification != domain.JettonVerificationWhitelist {
		t.Errorf("verification = %q", transfer.Jetton.Verification)
	}
}

func TestMapEventUnknownActionKeepsRawType(t *testing.T) {
	p := decodeEvent(t, `{
		"event_id": "ev-3",
		"account": {"address": "`+rawAddr+`"},
		"lt": 1,
		"actions": [{"type": "ElectionsDepositStake", "status": "ok"}]
	}`)

	event, ok := mapEvent(p, testLogger())
	if !ok {
		t.Fatal("unknown action type should still produce an event")
	}
	action := event.Actions[0]
	if action.Kind != domain.ActionKindUnknown || action.RawType != "ElectionsDepositStake" {
		t.Errorf("action = %+v, want unknown with raw type kept", action)
	}
}

func TestMapEventDropsUnparseableAction(t *testing.T) {
	p := decodeEvent(t, `{
		"event_id": "ev-4",
		"account": {"address": "`+rawAddr+`"},
		"lt": 1,
		"actions": [
			{"type": "JettonBurn", "status": "ok",
			 "JettonBurn": {"amount": "not-a-number", "sender": {"address": "`+rawAddr+`"}, "jetton": {"address": "`+rawPeer+`"}}},
			{"type": "TonTransfer", "status": "ok",
			 "TonTransfer": {"sender": {"address": "`+rawPeer+`"}, "recipient": {"address": "`+rawAddr+`"}, "amount": 7}}
		]
	}`)

	event, ok := mapEvent(p, testLogger())
	if !ok {
		t.Fatal("event with one parseable action should survive")
	}
	if len(event.Actions) != 1 {
		t.Fatalf("actions = %d, want the broken burn dropped", len(event.Actions))
	}
	if event.Actions[0].Kind != domain.ActionKindTonTransfer {
		t.Errorf("surviving action = %+v", event.Actions[0])
	}
	if event.Actions[0].Index != 0 {
		t.Errorf("Index = %d, want re-indexed to 0", event.Actions[0].Index)
	}
}

func TestMapEventAllActionsUnparseable(t *testing.T) {
	p := decodeEvent(t, `{
		"event_id": "ev-5",
		"account": {"address": "`+rawAddr+`"},
		"lt": 1,
		"actions": [{"type": "JettonMint", "status": "ok",
			"JettonMint": {"amount": "garbage", "recipient": {"address": "`+rawAddr+`"}, "jetton": {"address": "`+rawPeer+`"}}}]
	}`)

	if _, ok := mapEvent(p, testLogger()); ok {
		t.Fatal("event with zero parsed actions should be discarded")
	}
}

func TestMapEventSwapLegs(t *testing.T) {
	p := decodeEvent(t, `{
		"event_id": "ev-6",
		"account": {"address": "`+rawAddr+`"},
		"lt": 1,
		"actions": [{
			"type": "JettonSwap",
			"status": "ok",
			"JettonSwap": {
				"dex": "stonfi",
				"amount_in": "1000000",
				"amount_out": "0",
				"ton_out": 2000000000,
				"user_wallet": {"address": "`+rawAddr+`"},
				"router": {"address": "`+rawPeer+`"},
				"jetton_master_in": {"address": "`+rawPeer+`", "symbol": "X"}
			}
		}]
	}`)

	event, ok := mapEvent(p, testLogger())
	if !ok {
		t.Fatal("mapEvent() dropped a valid swap")
	}
	swap := event.Actions[0].JettonSwap
	if swap.Dex != "stonfi" || swap.AmountIn.Int64() != 1000000 {
		t.Errorf("swap = %+v", swap)
	}
	if swap.TonOut == nil || swap.TonOut.Int64() != 2000000000 {
		t.Errorf("TonOut = %v, want the native leg amount", swap.TonOut)
	}
	if swap.TonIn != nil {
		t.Error("TonIn should stay nil when absent")
	}
	if swap.JettonMasterIn == nil || swap.JettonMasterOut != nil {
		t.Errorf("masters = %v/%v, want in set and out nil", swap.JettonMasterIn, swap.JettonMasterOut)
	}
}

func TestParseAmount(t *testing.T) {
	if got, err := parseAmount(""); err != nil || got.Sign() != 0 {
		t.Errorf("parseAmount(empty) = %v, %v, want zero", got, err)
	}
	if _, err := parseAmount("12x"); err == nil {
		t.Error("parseAmount should reject non-numeric input")
	}
}

func TestNormalizeOrKeepsPlaceholders(t *testing.T) {
	if got := normalizeOr("not an address"); got != "not an address" {
		t.Errorf("normalizeOr() = %q, want input kept verbatim", got)
	}
	friendly := "EQAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAM9c"
	zero := "0:0000000000000000000000000000000000000000000000000000000000000000"
	if got := normalizeOr(friendly); got != zero {
		t.Errorf("normalizeOr(%q) = %q, want %q", friendly, got, zero)
	}
}
