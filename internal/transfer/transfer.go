// Package transfer builds, signs and submits wallet v4r2 external
// messages: native TON transfers, jetton transfers through the sender's
// jetton wallet, and raw payload messages.
package transfer

import (
	"crypto/ed25519"
	"fmt"
	"math/big"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/openton/tonkit/internal/core/domain"
)

const (
	// jettonTransferOp is the TEP-74 transfer opcode.
	jettonTransferOp = 0x0f8a7ea5

	// commentOp prefixes a plain-text message body.
	commentOp = 0

	// jettonForwardTon is the forward amount attached to jetton transfer
	// notifications. One nanoton is the conventional minimum that still
	// triggers the notification.
	jettonForwardTon = 1

	// jettonAttachedTon covers the jetton wallet's gas for a transfer.
	jettonAttachedTon = 100_000_000 // 0.1 TON

	// modeDefault pays fees from the wallet balance on top of the amount.
	modeDefault = 3

	// modeMax carries the whole remaining balance to the destination.
	modeMax = 128
)

// Message is one outgoing internal message to include in a transfer.
type Message struct {
	To        string
	Amount    *big.Int
	Mode      uint8
	Bounce    bool
	Body      *cell.Cell
	StateInit *tlb.StateInit
}

// Payload is a raw message supplied by the caller: destination, value and
// optional pre-built body and state init BOCs.
type Payload struct {
	To        string
	Amount    *big.Int
	StateInit []byte
	Body      []byte
}

// Builder constructs messages for one wallet, identified by its public
// key.
type Builder struct {
	pubKey    ed25519.PublicKey
	subwallet uint32
}

func NewBuilder(pubKey ed25519.PublicKey) *Builder {
	return &Builder{pubKey: pubKey, subwallet: wallet.DefaultSubwallet}
}

// WalletAddress derives the v4r2 wallet address for the builder's key.
func (b *Builder) WalletAddress() (string, error) {
	addr, err := wallet.AddressFromPubKey(b.pubKey, wallet.V4R2, b.subwallet)
	if err != nil {
		return "", fmt.Errorf("failed to derive wallet address: %w", err)
	}
	return domain.NormalizeAddress(addr.String())
}

// Native builds a plain TON transfer. With max set, the message carries
// the wallet's entire balance and amount is ignored by the contract.
func (b *Builder) Native(recipient string, amount *big.Int, comment string, max bool) (Message, error) {
	if _, err := domain.NormalizeAddress(recipient); err != nil {
		return Message{}, err
	}

	var body *cell.Cell
	if comment != "" {
		body = commentCell(comment)
	}
	mode := uint8(modeDefault)
	if max {
		mode = modeMax
	}
	return Message{
		To:     recipient,
		Amount: amount,
		Mode:   mode,
		Bounce: false,
		Body:   body,
	}, nil
}

// Jetton builds a TEP-74 transfer sent through the sender's jetton wallet.
// jettonWallet is the sender's wallet sub-account for the jetton, owner is
// the sending account (receives the excess), recipient gets the tokens.
func (b *Builder) Jetton(jettonWallet, owner, recipient string, amount *big.Int, comment string) (Message, error) {
	recipientAddr, err := parseAddr(recipient)
	if err != nil {
		return Message{}, err
	}
	ownerAddr, err := parseAddr(owner)
	if err != nil {
		return Message{}, err
	}
	if _, err := domain.NormalizeAddress(jettonWallet); err != nil {
		return Message{}, err
	}

	body := cell.BeginCell().
		MustStoreUInt(jettonTransferOp, 32).
		MustStoreUInt(0, 64). // query id
		MustStoreBigCoins(amount).
		MustStoreAddr(recipientAddr).
		MustStoreAddr(ownerAddr).
		MustStoreBoolBit(false). // no custom payload
		MustStoreCoins(jettonForwardTon)
	if comment != "" {
		body.MustStoreBoolBit(true).MustStoreRef(commentCell(comment))
	} else {
		body.MustStoreBoolBit(false)
	}

	return Message{
		To:     jettonWallet,
		Amount: big.NewInt(jettonAttachedTon),
		Mode:   modeDefault,
		Bounce: true,
		Body:   body.EndCell(),
	}, nil
}

// FromPayloads builds one message per raw payload.
func (b *Builder) FromPayloads(payloads []Payload) ([]Message, error) {
	messages := make([]Message, 0, len(payloads))
	for _, p := range payloads {
		if _, err := domain.NormalizeAddress(p.To); err != nil {
			return nil, err
		}

		msg := Message{
			To:     p.To,
			Amount: p.Amount,
			Mode:   modeDefault,
			Bounce: true,
		}
		if len(p.Body) > 0 {
			body, err := cell.FromBOC(p.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to parse payload body: %w", err)
			}
			msg.Body = body
		}
		if len(p.StateInit) > 0 {
			initCell, err := cell.FromBOC(p.StateInit)
			if err != nil {
				return nil, fmt.Errorf("failed to parse payload state init: %w", err)
			}
			var init tlb.StateInit
			if err := tlb.LoadFromCell(&init, initCell.BeginParse()); err != nil {
				return nil, fmt.Errorf("failed to decode payload state init: %w", err)
			}
			msg.StateInit = &init
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func commentCell(text string) *cell.Cell {
	return cell.BeginCell().
		MustStoreUInt(commentOp, 32).
		MustStoreStringSnake(text).
		EndCell()
}

func parseAddr(raw string) (*address.Address, error) {
	normalized, err := domain.NormalizeAddress(raw)
	if err != nil {
		return nil, err
	}
	return address.ParseRawAddr(normalized)
}
