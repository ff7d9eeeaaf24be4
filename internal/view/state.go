package view

import (
	"github.com/Mohsinsiddi/tokenapp/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

// State is where the session is in its lifecycle.
type State int

const (
	Disconnected State = iota
	Connected
	BalanceLoaded
	TransferInFlight
	TransferSucceeded
	TransferFailed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case BalanceLoaded:
		return "balance loaded"
	case TransferInFlight:
		return "transfer in flight"
	case TransferSucceeded:
		return "transfer succeeded"
	case TransferFailed:
		return "transfer failed"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the view state, safe to read while the controller
// keeps working.
type Snapshot struct {
	State   State
	Account common.Address
	Balance *token.Balance // nil until loaded
	LastTx  *token.TransferResult
	Message string // confirmation or failure reason for the user
	Err     error
}

// Connected reports whether an account is active.
func (s Snapshot) Connected() bool {
	return s.State != Disconnected
}

// Outcome is the result of one transfer attempt.
type Outcome struct {
	Result    *token.TransferResult // nil on failure
	Message   string
	Err       error
	Refreshed bool // balance was re-read after success
}

// OK reports whether the transfer was accepted (and mined, when waiting).
func (o Outcome) OK() bool {
	return o.Err == nil
}
