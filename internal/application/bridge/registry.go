// Package bridge decouples the approval state machine from the domain
// services its outcomes drive. Each domain module registers a handler for
// its object type at startup; the approval service dispatches terminal
// decisions through the registry without a compile-time dependency on any
// domain service.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// ErrNoHandler is returned when no handler is registered for an object
// type. Declared-but-unwired types (inventory_adjustment, sale, refund)
// surface this; callers log it and keep the approval decision.
var ErrNoHandler = errors.New("no approval outcome handler registered")

// OutcomeHandler reacts to a terminal approval decision for one object type.
type OutcomeHandler interface {
	// HandleApprovalOutcome applies the decision to the gated domain
	// object. decision is either approved or rejected.
	HandleApprovalOutcome(ctx context.Context, req *entity.ApprovalRequest, decision entity.ApprovalStatus, approverID, comments string) error
}

// Logger is the minimal logging dependency of the registry.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Registry routes approval outcomes to the handler registered for the
// request's object type.
type Registry struct {
	mu       sync.RWMutex
	handlers map[entity.ObjectType]OutcomeHandler
	logger   Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger Logger) *Registry {
	return &Registry{
		handlers: make(map[entity.ObjectType]OutcomeHandler),
		logger:   logger,
	}
}

// Register wires a handler for an object type. Re-registering replaces the
// previous handler.
func (r *Registry) Register(objectType entity.ObjectType, handler OutcomeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[objectType] = handler
	r.logger.Info("approval outcome handler registered", "object_type", objectType.String())
}

// Dispatch invokes the handler for the request's object type.
func (r *Registry) Dispatch(ctx context.Context, req *entity.ApprovalRequest, decision entity.ApprovalStatus, approverID, comments string) error {
	r.mu.RLock()
	handler, ok := r.handlers[req.ObjectType]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, req.ObjectType)
	}

	return handler.HandleApprovalOutcome(ctx, req, decision, approverID, comments)
}

// Registered returns the object types with a wired handler.
func (r *Registry) Registered() []entity.ObjectType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]entity.ObjectType, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}
