package domain

// TagType is the direction component of a tag.
type TagType string

const (
	TagTypeIncoming    TagType = "incoming"
	TagTypeOutgoing    TagType = "outgoing"
	TagTypeSwap        TagType = "swap"
	TagTypeUnsupported TagType = "unsupported"
)

// TagPlatform distinguishes native TON from jetton activity.
type TagPlatform string

const (
	TagPlatformNative TagPlatform = "native"
	TagPlatformJetton TagPlatform = "jetton"
)

// Tag is a derived index row over a decorated event. One event can carry
// several tags (a swap emits both legs, a self-transfer both directions).
// Tags are recomputed and fully replaced whenever the event is re-merged.
type Tag struct {
	EventID       string      `json:"event_id"`
	Type          TagType     `json:"type"`
	Platform      TagPlatform `json:"platform"`
	JettonAddress string      `json:"jetton_address,omitempty"`
	Addresses     []string    `json:"addresses,omitempty"`
}

// Conforms reports whether the tag satisfies every non-empty field of the
// query.
func (t Tag) Conforms(q TagQuery) bool {
	if q.Type != "" && t.Type != q.Type {
		return false
	}
	if q.Platform != "" && t.Platform != q.Platform {
		return false
	}
	if q.JettonAddress != "" && t.JettonAddress != q.JettonAddress {
		return false
	}
	if q.Address != "" {
		found := false
		for _, a := range t.Addresses {
			if a == q.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Key returns a deduplication key covering every field of the tag.
func (t Tag) Key() string {
	key := t.EventID + "|" + string(t.Type) + "|" + string(t.Platform) + "|" + t.JettonAddress
	for _, a := range t.Addresses {
		key += "|" + a
	}
	return key
}

// TagQuery is a filter predicate over tags. Empty fields match everything.
type TagQuery struct {
	Type          TagType
	Platform      TagPlatform
	JettonAddress string
	Address       string
}

// IsEmpty reports whether the query matches all events unconditionally.
func (q TagQuery) IsEmpty() bool {
	return q.Type == "" && q.Platform == "" && q.JettonAddress == "" && q.Address == ""
}

// TagToken is a distinct (platform, jetton) pair present in the tag index.
type TagToken struct {
	Platform      TagPlatform
	JettonAddress string
}
