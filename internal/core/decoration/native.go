package decoration

import (
	"math/big"

	"github.com/openton/tonkit/internal/core/domain"
)

// IncomingDecoration is a native transfer where the user is the net
// receiver.
type IncomingDecoration struct {
	From    string
	Value   *big.Int
	Comment string
}

// OutgoingDecoration is a native transfer where the user is the net sender.
// A zero net flow classifies as outgoing; a self-transfer sets SentToSelf
// and contributes an incoming tag as well.
type OutgoingDecoration struct {
	To         string
	Value      *big.Int
	Comment    string
	SentToSelf bool
}

// nativeNetFlow sums native transfer amounts toward the user minus amounts
// away from the user.
func nativeNetFlow(userAddress string, actions []domain.Action) (*big.Int, []*domain.TonTransferAction) {
	net := new(big.Int)
	var transfers []*domain.TonTransferAction

	for i := range actions {
		t := actions[i].TonTransfer
		if t == nil {
			continue
		}
		transfers = append(transfers, t)
		if t.Recipient.Address == userAddress {
			net.Add(net, t.Amount)
		}
		if t.Sender.Address == userAddress {
			net.Sub(net, t.Amount)
		}
	}
	return net, transfers
}

func classifyIncomingTon(userAddress string, actions []domain.Action) Decoration {
	net, transfers := nativeNetFlow(userAddress, actions)
	if net.Sign() <= 0 {
		return nil
	}

	for _, t := range transfers {
		if t.Recipient.Address == userAddress {
			return &IncomingDecoration{
				From:    t.Sender.Address,
				Value:   net,
				Comment: t.Comment,
			}
		}
	}
	return nil
}

func classifyOutgoingTon(userAddress string, actions []domain.Action) Decoration {
	net, transfers := nativeNetFlow(userAddress, actions)
	if len(transfers) == 0 || net.Sign() > 0 {
		return nil
	}

	for _, t := range transfers {
		if t.Sender.Address == userAddress {
			return &OutgoingDecoration{
				To:         t.Recipient.Address,
				Value:      new(big.Int).Abs(net),
				Comment:    t.Comment,
				SentToSelf: t.Recipient.Address == userAddress,
			}
		}
	}
	return nil
}

func (d *IncomingDecoration) Tags(string) []domain.Tag {
	return []domain.Tag{{
		Type:      domain.TagTypeIncoming,
		Platform:  domain.TagPlatformNative,
		Addresses: []string{d.From},
	}}
}

func (d *OutgoingDecoration) Tags(string) []domain.Tag {
	tags := []domain.Tag{{
		Type:      domain.TagTypeOutgoing,
		Platform:  domain.TagPlatformNative,
		Addresses: []string{d.To},
	}}
	if d.SentToSelf {
		tags = append(tags, domain.Tag{
			Type:     domain.TagTypeIncoming,
			Platform: domain.TagPlatformNative,
		})
	}
	return tags
}
