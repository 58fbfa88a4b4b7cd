package actions

import "time"

// Kind names the three write actions of the ticket contract.
type Kind string

// action kinds
const (
	KindCreateLot Kind = "create"
	KindBuyTicket Kind = "buy"
	KindUseTicket Kind = "use"
)

// State of one action. Confirmed and Failed are terminal.
type State string

// action states
const (
	StateIdle                 State = "idle"
	StateSubmitting           State = "submitting"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateConfirmed            State = "confirmed"
	StateFailed               State = "failed"
)

// Terminal function
func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateFailed
}

// Result describes one orchestrated write. It is handed to observers at
// every transition and kept in the activity log once terminal.
type Result struct {
	ActionID string
	Kind     Kind
	Actor    string
	// Target is the lot or ticket the action operates on; empty for create.
	Target string
	State  State

	// Digest is set as soon as the wallet returns it, before confirmation.
	Digest string

	CreatedID         string
	MatchedByFallback bool

	// Err is set when State is StateFailed.
	Err error
	// CacheErr is set when the ledger confirmed but the local cache could
	// not be written.
	CacheErr error

	StartedAt  time.Time
	FinishedAt time.Time
}

// Observer is called synchronously on every state change.
type Observer func(Result)
