package decoration

import (
	"math/big"

	"github.com/openton/tonkit/internal/core/domain"
)

// IncomingJettonDecoration is a jetton transfer where the user is the net
// receiver.
type IncomingJettonDecoration struct {
	From          string
	JettonAddress string
	Value         *big.Int
	Comment       string
}

// OutgoingJettonDecoration is a jetton transfer where the user is the net
// sender (zero net flow included).
type OutgoingJettonDecoration struct {
	To            string
	JettonAddress string
	Value         *big.Int
	Comment       string
	SentToSelf    bool
}

func jettonNetFlow(userAddress string, actions []domain.Action) (*big.Int, []*domain.JettonTransferAction) {
	net := new(big.Int)
	var transfers []*domain.JettonTransferAction

	for i := range actions {
		t := actions[i].JettonTransfer
		if t == nil {
			continue
		}
		transfers = append(transfers, t)
		if t.Recipient != nil && t.Recipient.Address == userAddress {
			net.Add(net, t.Amount)
		}
		if t.Sender != nil && t.Sender.Address == userAddress {
			net.Sub(net, t.Amount)
		}
	}
	return net, transfers
}

func classifyIncomingJetton(userAddress string, actions []domain.Action) Decoration {
	net, transfers := jettonNetFlow(userAddress, actions)
	if net.Sign() <= 0 {
		return nil
	}

	for _, t := range transfers {
		if t.Recipient == nil || t.Recipient.Address != userAddress || t.Sender == nil {
			continue
		}
		return &IncomingJettonDecoration{
			From:          t.Sender.Address,
			JettonAddress: t.Jetton.Address,
			Value:         net,
			Comment:       t.Comment,
		}
	}
	return nil
}

func classifyOutgoingJetton(userAddress string, actions []domain.Action) Decoration {
	net, transfers := jettonNetFlow(userAddress, actions)
	if len(transfers) == 0 || net.Sign() > 0 {
		return nil
	}

	for _, t := range transfers {
		if t.Sender == nil || t.Sender.Address != userAddress || t.Recipient == nil {
			continue
		}
		return &OutgoingJettonDecoration{
			To:            t.Recipient.Address,
			JettonAddress: t.Jetton.Address,
			Value:         new(big.Int).Abs(net),
			Comment:       t.Comment,
			SentToSelf:    t.Recipient.Address == userAddress,
		}
	}
	return nil
}

func (d *IncomingJettonDecoration) Tags(string) []domain.Tag {
	return []domain.Tag{{
		Type:          domain.TagTypeIncoming,
		Platform:      domain.TagPlatformJetton,
		JettonAddress: d.JettonAddress,
		Addresses:     []string{d.From},
	}}
}

func (d *OutgoingJettonDecoration) Tags(string) []domain.Tag {
	tags := []domain.Tag{{
		Type:          domain.TagTypeOutgoing,
		Platform:      domain.TagPlatformJetton,
		JettonAddress: d.JettonAddress,
		Addresses:     []string{d.To},
	}}
	if d.SentToSelf {
		tags = append(tags, domain.Tag{
			Type:          domain.TagTypeIncoming,
			Platform:      domain.TagPlatformJetton,
			JettonAddress: d.JettonAddress,
		})
	}
	return tags
}
