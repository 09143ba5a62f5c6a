package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/lifecycle"
)

// defaultExpiry applies when the matched rule has no expiry_hours.
const defaultExpiry = 168 * time.Hour

// OutcomeDispatcher routes a terminal approval decision to the domain
// handler registered for the request's object type. bridge.Registry
// implements it.
type OutcomeDispatcher interface {
	Dispatch(ctx context.Context, req *entity.ApprovalRequest, decision entity.ApprovalStatus, approverID, comments string) error
}

// CreateApprovalRequestInput carries everything needed to open an approval
// request for a domain object.
type CreateApprovalRequestInput struct {
	TenantID    string
	StoreID     *string
	RequesterID string
	ObjectType  entity.ObjectType
	ObjectID    string
	Data        entity.ApprovalData
}

// DecisionInput is one approver's submitted decision.
type DecisionInput struct {
	ApproverID string
	Decision   string
	Comments   string
}

// ApprovalService owns the approval request lifecycle: creation (including
// the synthetic auto-approval when no rule requires sign-off), decision
// accumulation across levels, cancellation and expiry.
type ApprovalService interface {
	CreateRequest(ctx context.Context, in CreateApprovalRequestInput) (*entity.ApprovalRequest, error)
	ProcessDecision(ctx context.Context, tenantID, requestID string, in DecisionInput) (*entity.ApprovalRequest, error)
	Cancel(ctx context.Context, tenantID, requestID, cancelledBy, reason string) (*entity.ApprovalRequest, error)
	Get(ctx context.Context, tenantID, requestID string) (*entity.ApprovalRequest, error)
	PendingForUser(ctx context.Context, tenantID, userID string) ([]*entity.ApprovalRequest, error)

	// ExpireOverdue transitions pending requests whose expiry passed.
	// Invoked by the background sweeper.
	ExpireOverdue(ctx context.Context) (int64, error)
}

type approvalServiceImpl struct {
	requests   port.ApprovalRequestRepository
	users      port.UserRepository
	rules      ApprovalRuleService
	txManager  port.TransactionManager
	dispatcher OutcomeDispatcher
	notifier   port.ApprovalNotifier
	audit      AuditService
	logger     Logger
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(
	requests port.ApprovalRequestRepository,
	users port.UserRepository,
	rules ApprovalRuleService,
	txManager port.TransactionManager,
	dispatcher OutcomeDispatcher,
	notifier port.ApprovalNotifier,
	audit AuditService,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		requests:   requests,
		users:      users,
		rules:      rules,
		txManager:  txManager,
		dispatcher: dispatcher,
		notifier:   notifier,
		audit:      audit,
		logger:     logger,
	}
}

func (s *approvalServiceImpl) CreateRequest(ctx context.Context, in CreateApprovalRequestInput) (*entity.ApprovalRequest, error) {
	if in.TenantID == "" || in.RequesterID == "" || in.ObjectID == "" {
		return nil, fmt.Errorf("%w: tenant, requester and object are required", entity.ErrValidation)
	}
	if !in.ObjectType.IsValid() {
		return nil, fmt.Errorf("%w: unknown object type %q", entity.ErrValidation, in.ObjectType)
	}

	rule, err := s.rules.FindApplicableRule(ctx, in.TenantID, in.ObjectType, in.Data, in.StoreID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req := &entity.ApprovalRequest{
		ID:          uuid.NewString(),
		TenantID:    in.TenantID,
		StoreID:     in.StoreID,
		RequesterID: in.RequesterID,
		ObjectType:  in.ObjectType,
		ObjectID:    in.ObjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	requiresApproval := rule != nil && rule.Conditions.RequiresApproval && len(rule.Conditions.ApprovalLevels) > 0

	if !requiresApproval {
		// No human sign-off required. The request is still created, as
		// approved, with one synthetic system decision so the outcome
		// stays auditable.
		req.Status = entity.ApprovalStatusApproved
		req.CurrentLevel = 1
		req.TotalLevels = 1
		req.RequiredApprovals = 1
		req.ApprovedCount = 1
		req.ApprovedAt = &now

		decision := &entity.ApprovalDecision{
			ID:           uuid.NewString(),
			RequestID:    req.ID,
			Level:        1,
			ApproverID:   in.RequesterID,
			ApproverRole: entity.RoleSystem,
			Decision:     entity.DecisionApproved,
			CreatedAt:    now,
		}
		req.Decisions = []entity.ApprovalDecision{*decision}

		err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := s.requests.Create(txCtx, req); err != nil {
				return fmt.Errorf("create approval request: %w", err)
			}
			if err := s.requests.AppendDecision(txCtx, decision); err != nil {
				return fmt.Errorf("append system decision: %w", err)
			}
			s.audit.Record(txCtx, req.TenantID, req.StoreID, in.RequesterID, entity.AuditActionInsert, "approval_requests", req.ID, req)
			return nil
		})
		if err != nil {
			return nil, err
		}

		s.logger.Info("approval request auto-approved",
			"request_id", req.ID, "object_type", req.ObjectType.String(), "object_id", req.ObjectID)
		return req, nil
	}

	levels := rule.Conditions.ApprovalLevels
	expiry := defaultExpiry
	if rule.Conditions.ExpiryHours != nil {
		expiry = time.Duration(*rule.Conditions.ExpiryHours) * time.Hour
	}
	expiresAt := now.Add(expiry)

	req.Status = entity.ApprovalStatusPending
	req.CurrentLevel = 1
	req.TotalLevels = len(levels)
	req.RequiredApprovals = levels[0].MinApprovals
	req.Levels = levels
	req.ExpiresAt = &expiresAt

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.requests.Create(txCtx, req); err != nil {
			return fmt.Errorf("create approval request: %w", err)
		}
		s.audit.Record(txCtx, req.TenantID, req.StoreID, in.RequesterID, entity.AuditActionInsert, "approval_requests", req.ID, req)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyPending(ctx, req); err != nil {
		s.logger.Error("failed to notify approvers", "error", err, "request_id", req.ID)
	}

	s.logger.Info("approval request created",
		"request_id", req.ID,
		"object_type", req.ObjectType.String(),
		"object_id", req.ObjectID,
		"total_levels", req.TotalLevels,
	)
	return req, nil
}

func (s *approvalServiceImpl) ProcessDecision(ctx context.Context, tenantID, requestID string, in DecisionInput) (*entity.ApprovalRequest, error) {
	if in.Decision != entity.DecisionApproved && in.Decision != entity.DecisionRejected {
		return nil, fmt.Errorf("%w: decision must be %q or %q", entity.ErrValidation, entity.DecisionApproved, entity.DecisionRejected)
	}

	var req *entity.ApprovalRequest
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.requests.GetByID(txCtx, tenantID, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return entity.ErrNotFound
		}
		if req.Status != entity.ApprovalStatusPending {
			return fmt.Errorf("%w: request is %s", entity.ErrInvalidState, req.Status)
		}

		approver, err := s.users.GetByID(txCtx, tenantID, in.ApproverID)
		if err != nil {
			return err
		}
		if approver == nil {
			return fmt.Errorf("%w: approver not found", entity.ErrUnauthorized)
		}

		role := matchRole(approver.Roles, req.CurrentLevelRoles())
		if role == "" {
			return fmt.Errorf("%w: approver lacks a role for level %d", entity.ErrUnauthorized, req.CurrentLevel)
		}

		now := time.Now()
		decision := &entity.ApprovalDecision{
			ID:           uuid.NewString(),
			RequestID:    req.ID,
			Level:        req.CurrentLevel,
			ApproverID:   in.ApproverID,
			ApproverRole: role,
			Decision:     in.Decision,
			Comments:     in.Comments,
			CreatedAt:    now,
		}
		if err := s.requests.AppendDecision(txCtx, decision); err != nil {
			return fmt.Errorf("append decision: %w", err)
		}
		req.Decisions = append(req.Decisions, *decision)

		if in.Decision == entity.DecisionRejected {
			// A single rejection at any level is terminal.
			machine := lifecycle.ForApprovalRequest(req.Status)
			if err := machine.Fire(lifecycle.TriggerReject); err != nil {
				return fmt.Errorf("%w: %v", entity.ErrInvalidState, err)
			}
			req.RejectedCount++
			// Persist the counter while the row is still pending;
			// MarkDecided only stamps status and timestamp.
			if err := s.requests.UpdateProgress(txCtx, req.ID, req.CurrentLevel, req.RequiredApprovals, req.ApprovedCount, req.RejectedCount); err != nil {
				return err
			}
			req.Status = entity.ApprovalStatusRejected
			req.RejectedAt = &now
			if err := s.requests.MarkDecided(txCtx, req.ID, entity.ApprovalStatusRejected, now, ""); err != nil {
				return err
			}
			s.audit.Record(txCtx, req.TenantID, req.StoreID, in.ApproverID, entity.AuditActionUpdate, "approval_requests", req.ID, req)
			return nil
		}

		req.ApprovedCount++
		if req.ApprovedCount < req.RequiredApprovals {
			// More approvals needed at this level.
			if err := s.requests.UpdateProgress(txCtx, req.ID, req.CurrentLevel, req.RequiredApprovals, req.ApprovedCount, req.RejectedCount); err != nil {
				return err
			}
			s.audit.Record(txCtx, req.TenantID, req.StoreID, in.ApproverID, entity.AuditActionUpdate, "approval_requests", req.ID, req)
			return nil
		}

		if req.CurrentLevel < req.TotalLevels {
			// Level satisfied; advance and reset the counters.
			req.CurrentLevel++
			req.ApprovedCount = 0
			req.RejectedCount = 0
			req.RequiredApprovals = 1
			if next := req.LevelAt(req.CurrentLevel); next != nil && next.MinApprovals > 0 {
				req.RequiredApprovals = next.MinApprovals
			}
			if err := s.requests.UpdateProgress(txCtx, req.ID, req.CurrentLevel, req.RequiredApprovals, req.ApprovedCount, req.RejectedCount); err != nil {
				return err
			}
			s.audit.Record(txCtx, req.TenantID, req.StoreID, in.ApproverID, entity.AuditActionUpdate, "approval_requests", req.ID, req)
			return nil
		}

		// Last level satisfied.
		machine := lifecycle.ForApprovalRequest(req.Status)
		if err := machine.Fire(lifecycle.TriggerApprove); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidState, err)
		}
		if err := s.requests.UpdateProgress(txCtx, req.ID, req.CurrentLevel, req.RequiredApprovals, req.ApprovedCount, req.RejectedCount); err != nil {
			return err
		}
		req.Status = entity.ApprovalStatusApproved
		req.ApprovedAt = &now
		if err := s.requests.MarkDecided(txCtx, req.ID, entity.ApprovalStatusApproved, now, ""); err != nil {
			return err
		}
		s.audit.Record(txCtx, req.TenantID, req.StoreID, in.ApproverID, entity.AuditActionUpdate, "approval_requests", req.ID, req)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.IsTerminal() {
		s.afterTerminalDecision(ctx, req, in)
	}

	return req, nil
}

// afterTerminalDecision runs once the decision is committed. The approval
// record is authoritative: a failing downstream handler or notifier is
// logged, never propagated, so a transient domain error cannot erase a
// human decision.
func (s *approvalServiceImpl) afterTerminalDecision(ctx context.Context, req *entity.ApprovalRequest, in DecisionInput) {
	if err := s.dispatcher.Dispatch(ctx, req, req.Status, in.ApproverID, in.Comments); err != nil {
		s.logger.Error("approval outcome handler failed",
			"error", err,
			"request_id", req.ID,
			"object_type", req.ObjectType.String(),
			"object_id", req.ObjectID,
			"status", string(req.Status),
		)
	}

	if err := s.notifier.NotifyDecided(ctx, req); err != nil {
		s.logger.Error("failed to notify requester", "error", err, "request_id", req.ID)
	}
}

func (s *approvalServiceImpl) Cancel(ctx context.Context, tenantID, requestID, cancelledBy, reason string) (*entity.ApprovalRequest, error) {
	var req *entity.ApprovalRequest
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.requests.GetByID(txCtx, tenantID, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return entity.ErrNotFound
		}
		if req.Status != entity.ApprovalStatusPending {
			return fmt.Errorf("%w: request is %s", entity.ErrInvalidState, req.Status)
		}

		if cancelledBy != req.RequesterID {
			canceller, err := s.users.GetByID(txCtx, tenantID, cancelledBy)
			if err != nil {
				return err
			}
			if canceller == nil || !canceller.HasAnyRole(entity.RoleAdmin, entity.RoleManager) {
				return fmt.Errorf("%w: only the requester or an elevated role may cancel", entity.ErrUnauthorized)
			}
		}

		machine := lifecycle.ForApprovalRequest(req.Status)
		if err := machine.Fire(lifecycle.TriggerCancel); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidState, err)
		}

		now := time.Now()
		req.Status = entity.ApprovalStatusCancelled
		req.CancelledAt = &now
		req.CancelReason = reason
		if err := s.requests.MarkDecided(txCtx, req.ID, entity.ApprovalStatusCancelled, now, reason); err != nil {
			return err
		}
		s.audit.Record(txCtx, req.TenantID, req.StoreID, cancelledBy, entity.AuditActionUpdate, "approval_requests", req.ID, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *approvalServiceImpl) Get(ctx context.Context, tenantID, requestID string) (*entity.ApprovalRequest, error) {
	req, err := s.requests.GetByID(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, entity.ErrNotFound
	}
	return req, nil
}

// PendingForUser returns the tenant's pending requests whose *current*
// level the user may decide. Levels the user is not yet (or no longer)
// eligible for stay invisible.
func (s *approvalServiceImpl) PendingForUser(ctx context.Context, tenantID, userID string) ([]*entity.ApprovalRequest, error) {
	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrNotFound
	}

	pending, err := s.requests.ListPending(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	eligible := make([]*entity.ApprovalRequest, 0, len(pending))
	for _, req := range pending {
		if matchRole(user.Roles, req.CurrentLevelRoles()) != "" {
			eligible = append(eligible, req)
		}
	}
	return eligible, nil
}

func (s *approvalServiceImpl) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.requests.ExpirePending(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired overdue approval requests", "count", n)
	}
	return n, nil
}

// matchRole returns the first of the user's roles present in the wanted
// set, or "" when the sets do not intersect.
func matchRole(userRoles, wanted []string) string {
	for _, have := range userRoles {
		for _, want := range wanted {
			if have == want {
				return have
			}
		}
	}
	return ""
}
