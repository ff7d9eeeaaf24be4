package ui

import (
	"context"

	"github.com/Mohsinsiddi/tokenapp/internal/provider"
)

// ApprovalRequest is a signature request waiting for the TUI user.
type ApprovalRequest struct {
	Tx    provider.PendingTx
	reply chan bool
}

// Answer resolves the request. Only the first answer counts.
func (r ApprovalRequest) Answer(ok bool) {
	select {
	case r.reply <- ok:
	default:
	}
}

// TUIApprover hands signature requests to the running app and blocks until
// the user answers there.
type TUIApprover struct {
	requests chan ApprovalRequest
}

// NewTUIApprover creates an approver with no app attached yet.
func NewTUIApprover() *TUIApprover {
	return &TUIApprover{requests: make(chan ApprovalRequest)}
}

// Requests is read by the app model.
func (a *TUIApprover) Requests() <-chan ApprovalRequest {
	return a.requests
}

func (a *TUIApprover) Approve(ctx context.Context, tx provider.PendingTx) (bool, error) {
	req := ApprovalRequest{Tx: tx, reply: make(chan bool, 1)}
	select {
	case a.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

var _ provider.Approver = (*TUIApprover)(nil)
