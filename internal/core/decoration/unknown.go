package decoration

import "github.com/openton/tonkit/internal/core/domain"

// UnknownDecoration is the catch-all for action sets no classifier
// recognized. It contributes no tags; deliberately unindexed.
type UnknownDecoration struct {
	Actions []domain.Action
}

func (d *UnknownDecoration) Tags(string) []domain.Tag {
	return nil
}
