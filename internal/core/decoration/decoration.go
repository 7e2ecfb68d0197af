// Package decoration classifies the raw actions of an event into a single
// user-perspective decoration and derives the query tags of the event.
//
// Classification runs an ordered chain of classifiers; each either builds a
// decoration from the action list or passes. The first match wins and a
// catch-all Unknown decoration terminates the chain, so classification never
// fails.
package decoration

import "github.com/openton/tonkit/internal/core/domain"

// Decoration is the classified interpretation of an event's actions from
// the tracked address's point of view.
type Decoration interface {
	// Tags derives the index tags this decoration contributes.
	Tags(userAddress string) []domain.Tag
}

// Classifier attempts to build a decoration from an action list. A nil
// result is a pass, not an error: the chain simply tries the next one.
type Classifier func(userAddress string, actions []domain.Action) Decoration

// Chain is an ordered list of classifiers, first match wins.
type Chain struct {
	userAddress string
	classifiers []Classifier
}

// NewChain builds a chain with the default classifier order: native
// transfer, jetton transfer, then the catch-all.
func NewChain(userAddress string) *Chain {
	return &Chain{
		userAddress: userAddress,
		classifiers: []Classifier{
			classifyIncomingTon,
			classifyOutgoingTon,
			classifyIncomingJetton,
			classifyOutgoingJetton,
		},
	}
}

// Add appends a classifier ahead of the catch-all.
func (c *Chain) Add(classifier Classifier) {
	c.classifiers = append(c.classifiers, classifier)
}

// Decorate classifies the actions of one event.
func (c *Chain) Decorate(actions []domain.Action) Decoration {
	for _, classify := range c.classifiers {
		if d := classify(c.userAddress, actions); d != nil {
			return d
		}
	}
	return &UnknownDecoration{Actions: actions}
}

// EventTags computes the full tag set of an event: the decoration's tags
// plus the per-action synthesis for kinds the transfer classifiers do not
// cover (burn, mint, swap, contract calls). Duplicates are collapsed.
func (c *Chain) EventTags(event *domain.Event) []domain.Tag {
	tags := c.Decorate(event.Actions).Tags(c.userAddress)
	tags = append(tags, actionTags(event, c.userAddress)...)

	seen := make(map[string]struct{}, len(tags))
	out := tags[:0]
	for _, tag := range tags {
		tag.EventID = event.ID
		key := tag.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
