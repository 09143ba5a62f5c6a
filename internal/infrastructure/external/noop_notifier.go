package external

import (
	"context"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// NoopNotifier discards notifications. Used when no messaging integration
// is configured.
type NoopNotifier struct{}

// NewNoopNotifier creates a new no-op notifier
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (NoopNotifier) NotifyPending(ctx context.Context, req *entity.ApprovalRequest) error {
	return nil
}

func (NoopNotifier) NotifyDecided(ctx context.Context, req *entity.ApprovalRequest) error {
	return nil
}

// Verify interface compliance
var _ port.ApprovalNotifier = (*NoopNotifier)(nil)
