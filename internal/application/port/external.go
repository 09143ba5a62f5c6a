package port

import (
	"context"

	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// ApprovalNotifier pushes approval lifecycle notifications to interested
// humans. Implementations are fire-and-forget: callers log failures and
// move on, so a messaging hiccup can never undo a committed decision.
type ApprovalNotifier interface {
	// NotifyPending tells the eligible approvers a request awaits them.
	NotifyPending(ctx context.Context, req *entity.ApprovalRequest) error

	// NotifyDecided tells the requester the request reached a terminal
	// status.
	NotifyDecided(ctx context.Context, req *entity.ApprovalRequest) error
}
