package decoration

import "github.com/openton/tonkit/internal/core/domain"

// actionTags synthesizes tags directly from action kinds the transfer
// classifiers do not cover. Contract deploys are intentionally untagged;
// the deployed address is available as event data.
func actionTags(event *domain.Event, userAddress string) []domain.Tag {
	var tags []domain.Tag

	for i := range event.Actions {
		action := &event.Actions[i]

		switch action.Kind {
		case domain.ActionKindJettonBurn:
			tags = append(tags, domain.Tag{
				EventID:       event.ID,
				Type:          domain.TagTypeOutgoing,
				Platform:      domain.TagPlatformJetton,
				JettonAddress: action.JettonBurn.Jetton.Address,
			})

		case domain.ActionKindJettonMint:
			tags = append(tags, domain.Tag{
				EventID:       event.ID,
				Type:          domain.TagTypeIncoming,
				Platform:      domain.TagPlatformJetton,
				JettonAddress: action.JettonMint.Jetton.Address,
			})

		case domain.ActionKindJettonSwap:
			swap := action.JettonSwap
			tags = append(tags, swapLegTags(event.ID, domain.TagTypeIncoming, swap.JettonMasterIn)...)
			tags = append(tags, swapLegTags(event.ID, domain.TagTypeOutgoing, swap.JettonMasterOut)...)

		case domain.ActionKindSmartContract:
			tags = append(tags, domain.Tag{
				EventID:   event.ID,
				Type:      domain.TagTypeOutgoing,
				Platform:  domain.TagPlatformNative,
				Addresses: []string{action.SmartContract.Contract.Address},
			})
		}
	}

	return tags
}

// swapLegTags emits the direction tag and the swap tag for one leg of a
// swap. A nil jetton master means the leg is native TON.
func swapLegTags(eventID string, direction domain.TagType, master *domain.Jetton) []domain.Tag {
	platform := domain.TagPlatformNative
	jettonAddress := ""
	if master != nil {
		platform = domain.TagPlatformJetton
		jettonAddress = master.Address
	}

	return []domain.Tag{
		{EventID: eventID, Type: direction, Platform: platform, JettonAddress: jettonAddress},
		{EventID: eventID, Type: domain.TagTypeSwap, Platform: platform, JettonAddress: jettonAddress},
	}
}
