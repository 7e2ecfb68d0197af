package transfer

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// maxMessages is the wallet v4 contract's per-transfer message limit.
const maxMessages = 4

// neverExpires is the valid-until value for the very first message of an
// undeployed wallet, which carries its state init and must not race the
// deploy against the clock.
const neverExpires = 0xFFFF_FFFF

// External assembles a signed wallet v4r2 external message and returns its
// base64 BOC. A seqno of zero means the wallet is not deployed yet, so the
// state init is attached and the expiry is pinned open.
func (b *Builder) External(messages []Message, seqno uint32, expireAt int64, sign SignFunc) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("transfer has no messages")
	}
	if len(messages) > maxMessages {
		return "", fmt.Errorf("transfer has %d messages, wallet supports at most %d", len(messages), maxMessages)
	}

	payload := cell.BeginCell().MustStoreUInt(uint64(b.subwallet), 32)
	if seqno == 0 {
		payload.MustStoreUInt(neverExpires, 32)
	} else {
		payload.MustStoreUInt(uint64(expireAt), 32)
	}
	payload.MustStoreUInt(uint64(seqno), 32)
	payload.MustStoreUInt(0, 8) // v4 op: simple send

	for _, m := range messages {
		msgCell, err := m.toCell()
		if err != nil {
			return "", err
		}
		payload.MustStoreUInt(uint64(m.Mode), 8).MustStoreRef(msgCell)
	}
	signing := payload.EndCell()

	signature, err := sign(signing)
	if err != nil {
		return "", fmt.Errorf("failed to sign transfer: %w", err)
	}
	body := cell.BeginCell().
		MustStoreSlice(signature, 512).
		MustStoreBuilder(signing.ToBuilder()).
		EndCell()

	walletAddr, err := wallet.AddressFromPubKey(b.pubKey, wallet.V4R2, b.subwallet)
	if err != nil {
		return "", fmt.Errorf("failed to derive wallet address: %w", err)
	}
	ext := &tlb.ExternalMessage{
		DstAddr: walletAddr,
		Body:    body,
	}
	if seqno == 0 {
		init, err := wallet.GetStateInit(b.pubKey, wallet.V4R2, b.subwallet)
		if err != nil {
			return "", fmt.Errorf("failed to build state init: %w", err)
		}
		ext.StateInit = init
	}

	extCell, err := tlb.ToCell(ext)
	if err != nil {
		return "", fmt.Errorf("failed to serialize external message: %w", err)
	}
	return base64.StdEncoding.EncodeToString(extCell.ToBOC()), nil
}

func (m Message) toCell() (*cell.Cell, error) {
	dst, err := parseAddr(m.To)
	if err != nil {
		return nil, err
	}
	body := m.Body
	if body == nil {
		body = cell.BeginCell().EndCell()
	}
	internal := &tlb.InternalMessage{
		IHRDisabled: true,
		Bounce:      m.Bounce,
		DstAddr:     dst,
		Amount:      tlb.FromNanoTON(m.Amount),
		Body:        body,
		StateInit:   m.StateInit,
	}
	msgCell, err := tlb.ToCell(internal)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize internal message: %w", err)
	}
	return msgCell, nil
}
