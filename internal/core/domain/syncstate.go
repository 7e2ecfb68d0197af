package domain

import "fmt"

// SyncKind is the coarse state of a sync stream.
type SyncKind int

const (
	SyncKindNotSynced SyncKind = iota
	SyncKindSyncing
	SyncKindSynced
)

// SyncState is the externally visible state of one sync stream. Progress is
// advisory and usually nil. A NotSynced state always carries the error that
// aborted the last attempt.
type SyncState struct {
	Kind     SyncKind
	Progress *float64
	Err      error
}

func SyncStateSynced() SyncState {
	return SyncState{Kind: SyncKindSynced}
}

func SyncStateSyncing(progress *float64) SyncState {
	return SyncState{Kind: SyncKindSyncing, Progress: progress}
}

func SyncStateNotSynced(err error) SyncState {
	return SyncState{Kind: SyncKindNotSynced, Err: err}
}

func (s SyncState) Syncing() bool {
	return s.Kind == SyncKindSyncing
}

func (s SyncState) Synced() bool {
	return s.Kind == SyncKindSynced
}

// Equal is used for distinct publishing: observers are only notified when
// the state actually changes. Errors compare by message.
func (s SyncState) Equal(other SyncState) bool {
	if s.Kind != other.Kind {
		return false
	}
	if (s.Progress == nil) != (other.Progress == nil) {
		return false
	}
	if s.Progress != nil && *s.Progress != *other.Progress {
		return false
	}
	if (s.Err == nil) != (other.Err == nil) {
		return false
	}
	if s.Err != nil && s.Err.Error() != other.Err.Error() {
		return false
	}
	return true
}

func (s SyncState) String() string {
	switch s.Kind {
	case SyncKindSynced:
		return "synced"
	case SyncKindSyncing:
		if s.Progress != nil {
			return fmt.Sprintf("syncing %.1f%%", *s.Progress)
		}
		return "syncing"
	default:
		return fmt.Sprintf("not synced: %v", s.Err)
	}
}
