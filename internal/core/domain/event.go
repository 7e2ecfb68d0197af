package domain

// Event is one atomic on-chain occurrence containing one or more actions.
// Events are keyed by ID; Lt is the per-account logical time used for
// ordering and pagination. An event fetched with InProgress=true may later
// be replaced (same ID) by its confirmed form; once InProgress is false the
// event never changes again.
type Event struct {
	ID         string   `json:"id"`
	Lt         int64    `json:"lt"`
	Timestamp  int64    `json:"timestamp"`
	Account    string   `json:"account"`
	IsScam     bool     `json:"is_scam"`
	InProgress bool     `json:"in_progress"`
	Extra      int64    `json:"extra"`
	Actions    []Action `json:"actions"`
}

// EventInfo is the envelope delivered to event observers. Initial is true
// for pages merged during history backfill, false for catch-up and live
// updates.
type EventInfo struct {
	Events  []*Event
	Initial bool
}
