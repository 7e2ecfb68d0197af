package decoration

import (
	"math/big"
	"testing"

	"github.com/openton/tonkit/internal/core/domain"
)

const (
	user  = "0:1111111111111111111111111111111111111111111111111111111111111111"
	peer  = "0:2222222222222222222222222222222222222222222222222222222222222222"
	other = "0:3333333333333333333333333333333333333333333333333333333333333333"
)

func tonTransfer(from, to string, amount int64) domain.Action {
	return domain.Action{
		Kind:   domain.ActionKindTonTransfer,
		Status: domain.ActionStatusOK,
		TonTransfer: &domain.TonTransferAction{
			Sender:    domain.AccountAddress{Address: from},
			Recipient: domain.AccountAddress{Address: to},
			Amount:    big.NewInt(amount),
		},
	}
}

func jettonTransfer(from, to, jetton string, amount int64) domain.Action {
	return domain.Action{
		Kind:   domain.ActionKindJettonTransfer,
		Status: domain.ActionStatusOK,
		JettonTransfer: &domain.JettonTransferAction{
			Sender:    &domain.AccountAddress{Address: from},
			Recipient: &domain.AccountAddress{Address: to},
			Amount:    big.NewInt(amount),
			Jetton:    domain.Jetton{Address: jetton},
		},
	}
}

func TestDecorateIncomingTon(t *testing.T) {
	chain := NewChain(user)

	d := chain.Decorate([]domain.Action{tonTransfer(peer, user, 500)})
	incoming, ok := d.(*IncomingDecoration)
	if !ok {
		t.Fatalf("Decorate() = %T, want *IncomingDecoration", d)
	}
	if incoming.From != peer {
		t.Errorf("From = %q, want %q", incoming.From, peer)
	}
	if incoming.Value.Int64() != 500 {
		t.Errorf("Value = %s, want 500", incoming.Value)
	}
}

func TestDecorateOutgoingTon(t *testing.T) {
	chain := NewChain(user)

	d := chain.Decorate([]domain.Action{tonTransfer(user, peer, 500)})
	outgoing, ok := d.(*OutgoingDecoration)
	if !ok {
		t.Fatalf("Decorate() = %T, want *OutgoingDecoration", d)
	}
	if outgoing.To != peer {
		t.Errorf("To = %q, want %q", outgoing.To, peer)
	}
	if outgoing.SentToSelf {
		t.Error("SentToSelf = true for a transfer to a peer")
	}
}

// A zero net flow still classifies as outgoing, never incoming.
func TestDecorateZeroNetFlowIsOutgoing(t *testing.T) {
	chain := NewChain(user)

	actions := []domain.Action{
		tonTransfer(user, peer, 500),
		tonTransfer(peer, user, 500),
	}
	if _, ok := chain.Decorate(actions).(*OutgoingDecoration); !ok {
		t.Fatalf("zero net flow should decorate as outgoing, got %T", chain.Decorate(actions))
	}
}

func TestDecorateSelfTransfer(t *testing.T) {
	chain := NewChain(user)

	d := chain.Decorate([]domain.Action{tonTransfer(user, user, 100)})
	outgoing, ok := d.(*OutgoingDecoration)
	if !ok {
		t.Fatalf("Decorate() = %T, want *OutgoingDecoration", d)
	}
	if !outgoing.SentToSelf {
		t.Fatal("SentToSelf = false for a self transfer")
	}

	tags := outgoing.Tags(user)
	if len(tags) != 2 {
		t.Fatalf("self transfer tags = %d, want both directions", len(tags))
	}
	if tags[0].Type != domain.TagTypeOutgoing || tags[1].Type != domain.TagTypeIncoming {
		t.Errorf("tags = %v/%v, want outgoing then incoming", tags[0].Type, tags[1].Type)
	}
}

func TestDecorateNetPositiveWinsOverOutgoing(t *testing.T) {
	chain := NewChain(user)

	// User sends 100 but receives 500: the incoming classifier is earlier
	// in the chain and the net flow is positive.
	actions := []domain.Action{
		tonTransfer(user, peer, 100),
		tonTransfer(other, user, 500),
	}
	incoming, ok := chain.Decorate(actions).(*IncomingDecoration)
	if !ok {
		t.Fatalf("Decorate() = %T, want *IncomingDecoration", chain.Decorate(actions))
	}
	if incoming.Value.Int64() != 400 {
		t.Errorf("net Value = %s, want 400", incoming.Value)
	}
}

func TestDecorateJettonTransfers(t *testing.T) {
	chain := NewChain(user)
	jetton := other

	d := chain.Decorate([]domain.Action{jettonTransfer(peer, user, jetton, 42)})
	incoming, ok := d.(*IncomingJettonDecoration)
	if !ok {
		t.Fatalf("Decorate() = %T, want *IncomingJettonDecoration", d)
	}
	if incoming.JettonAddress != jetton {
		t.Errorf("JettonAddress = %q, want %q", incoming.JettonAddress, jetton)
	}

	d = chain.Decorate([]domain.Action{jettonTransfer(user, peer, jetton, 42)})
	if _, ok := d.(*OutgoingJettonDecoration); !ok {
		t.Fatalf("Decorate() = %T, want *OutgoingJettonDecoration", d)
	}
}

// Native transfers take precedence over jetton transfers when both are
// present: the chain tries native classifiers first.
func TestDecoratePrecedence(t *testing.T) {
	chain := NewChain(user)

	actions := []domain.Action{
		jettonTransfer(peer, user, other, 42),
		tonTransfer(peer, user, 500),
	}
	if _, ok := chain.Decorate(actions).(*IncomingDecoration); !ok {
		t.Fatalf("Decorate() = %T, want native transfer to win", chain.Decorate(actions))
	}
}

func TestDecorateUnknownFallback(t *testing.T) {
	chain := NewChain(user)

	actions := []domain.Action{{Kind: domain.ActionKindUnknown, RawType: "ElectionsDepositStake"}}
	if _, ok := chain.Decorate(actions).(*UnknownDecoration); !ok {
		t.Fatalf("Decorate() = %T, want *UnknownDecoration", chain.Decorate(actions))
	}
	if tags := chain.Decorate(actions).Tags(user); len(tags) != 0 {
		t.Errorf("unknown decoration tags = %v, want none", tags)
	}
}

func TestEventTagsBurnAndMint(t *testing.T) {
	chain := NewChain(user)
	jetton := other

	event := &domain.Event{
		ID: "ev-burn",
		Actions: []domain.Action{{
			Kind: domain.ActionKindJettonBurn,
			JettonBurn: &domain.JettonBurnAction{
				Sender: domain.AccountAddress{Address: user},
				Amount: big.NewInt(10),
				Jetton: domain.Jetton{Address: jetton},
			},
		}},
	}
	tags := chain.EventTags(event)
	if len(tags) != 1 {
		t.Fatalf("burn tags = %d, want 1", len(tags))
	}
	if tags[0].Type != domain.TagTypeOutgoing || tags[0].Platform != domain.TagPlatformJetton {
		t.Errorf("burn tag = %+v, want outgoing jetton", tags[0])
	}
	if tags[0].EventID != "ev-burn" {
		t.Errorf("EventID = %q, want ev-burn", tags[0].EventID)
	}

	event = &domain.Event{
		ID: "ev-mint",
		Actions: []domain.Action{{
			Kind: domain.ActionKindJettonMint,
			JettonMint: &domain.JettonMintAction{
				Recipient: domain.AccountAddress{Address: user},
				Amount:    big.NewInt(10),
				Jetton:    domain.Jetton{Address: jetton},
			},
		}},
	}
	tags = chain.EventTags(event)
	if len(tags) != 1 || tags[0].Type != domain.TagTypeIncoming {
		t.Fatalf("mint tags = %+v, want one incoming jetton tag", tags)
	}
}

func TestEventTagsSwapLegs(t *testing.T) {
	chain := NewChain(user)
	jetton := other

	// TON -> jetton swap: incoming leg is the jetton, outgoing leg native.
	event := &domain.Event{
		ID: "ev-swap",
		Actions: []domain.Action{{
			Kind: domain.ActionKindJettonSwap,
			JettonSwap: &domain.JettonSwapAction{
				Dex:            "stonfi",
				AmountIn:       big.NewInt(100),
				TonOut:         big.NewInt(5),
				JettonMasterIn: &domain.Jetton{Address: jetton},
			},
		}},
	}
	tags := chain.EventTags(event)
	if len(tags) != 4 {
		t.Fatalf("swap tags = %d, want 4 (direction+swap per leg)", len(tags))
	}

	var jettonSwap, nativeSwap bool
	for _, tag := range tags {
		if tag.Type == domain.TagTypeSwap && tag.Platform == domain.TagPlatformJetton && tag.JettonAddress == jetton {
			jettonSwap = true
		}
		if tag.Type == domain.TagTypeSwap && tag.Platform == domain.TagPlatformNative {
			nativeSwap = true
		}
	}
	if !jettonSwap || !nativeSwap {
		t.Errorf("tags = %+v, want swap tags on both platforms", tags)
	}
}

func TestEventTagsSmartContract(t *testing.T) {
	chain := NewChain(user)

	event := &domain.Event{
		ID: "ev-call",
		Actions: []domain.Action{{
			Kind: domain.ActionKindSmartContract,
			SmartContract: &domain.SmartContractAction{
				Contract:    domain.AccountAddress{Address: peer},
				TonAttached: big.NewInt(1000),
				Operation:   "0x12345678",
			},
		}},
	}
	tags := chain.EventTags(event)
	if len(tags) != 1 {
		t.Fatalf("smart contract tags = %d, want 1", len(tags))
	}
	tag := tags[0]
	if tag.Type != domain.TagTypeOutgoing || tag.Platform != domain.TagPlatformNative {
		t.Errorf("tag = %+v, want outgoing native", tag)
	}
	if len(tag.Addresses) != 1 || tag.Addresses[0] != peer {
		t.Errorf("Addresses = %v, want the contract address", tag.Addresses)
	}
}

func TestEventTagsDeployUntagged(t *testing.T) {
	chain := NewChain(user)

	event := &domain.Event{
		ID: "ev-deploy",
		Actions: []domain.Action{{
			Kind:           domain.ActionKindContractDeploy,
			ContractDeploy: &domain.ContractDeployAction{Address: peer},
		}},
	}
	if tags := chain.EventTags(event); len(tags) != 0 {
		t.Errorf("deploy tags = %+v, want none", tags)
	}
}

func TestEventTagsDeduplicates(t *testing.T) {
	chain := NewChain(user)

	// Two identical burns synthesize the same tag twice; the event tag set
	// collapses them.
	burn := domain.Action{
		Kind: domain.ActionKindJettonBurn,
		JettonBurn: &domain.JettonBurnAction{
			Sender: domain.AccountAddress{Address: user},
			Amount: big.NewInt(10),
			Jetton: domain.Jetton{Address: other},
		},
	}
	event := &domain.Event{ID: "ev-dup", Actions: []domain.Action{burn, burn}}
	if tags := chain.EventTags(event); len(tags) != 1 {
		t.Errorf("tags = %d, want duplicates collapsed to 1", len(tags))
	}
}
