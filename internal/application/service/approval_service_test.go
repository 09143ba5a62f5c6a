package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

type approvalServiceDeps struct {
	requests   *mockRequestRepo
	users      *mockUserRepo
	rules      *mockRuleService
	dispatcher *mockDispatcher
	notifier   *mockNotifier
}

func newApprovalService(d approvalServiceDeps) ApprovalService {
	if d.requests == nil {
		d.requests = &mockRequestRepo{}
	}
	if d.users == nil {
		d.users = &mockUserRepo{}
	}
	if d.rules == nil {
		d.rules = &mockRuleService{}
	}
	if d.dispatcher == nil {
		d.dispatcher = &mockDispatcher{}
	}
	if d.notifier == nil {
		d.notifier = &mockNotifier{}
	}
	return NewApprovalService(d.requests, d.users, d.rules, &mockTxManager{}, d.dispatcher, d.notifier, &mockAuditService{}, &mockLogger{})
}

func twoLevelRule() *entity.ApprovalRule {
	return &entity.ApprovalRule{
		ID:         "rule-1",
		TenantID:   "t1",
		ObjectType: entity.ObjectTypeInventoryTransfer,
		Conditions: entity.RuleConditions{
			RequiresApproval: true,
			ApprovalLevels: []entity.ApprovalLevel{
				{Level: 1, ApproverRoles: []string{"manager"}, MinApprovals: 2},
				{Level: 2, ApproverRoles: []string{"director"}, MinApprovals: 1},
			},
		},
	}
}

func pendingTwoLevelRequest() *entity.ApprovalRequest {
	return &entity.ApprovalRequest{
		ID:                "req-1",
		TenantID:          "t1",
		RequesterID:       "requester-1",
		ObjectType:        entity.ObjectTypeInventoryTransfer,
		ObjectID:          "transfer-1",
		Status:            entity.ApprovalStatusPending,
		CurrentLevel:      1,
		TotalLevels:       2,
		RequiredApprovals: 2,
		Levels:            twoLevelRule().Conditions.ApprovalLevels,
	}
}

func TestApprovalService_CreateRequestAutoApproved(t *testing.T) {
	var created *entity.ApprovalRequest
	var decision *entity.ApprovalDecision
	requests := &mockRequestRepo{
		createFunc: func(ctx context.Context, req *entity.ApprovalRequest) error {
			created = req
			return nil
		},
		appendDecisionFunc: func(ctx context.Context, d *entity.ApprovalDecision) error {
			decision = d
			return nil
		},
	}
	notified := false
	svc := newApprovalService(approvalServiceDeps{
		requests: requests,
		rules:    &mockRuleService{}, // no matching rule
		notifier: &mockNotifier{
			notifyPendingFunc: func(ctx context.Context, req *entity.ApprovalRequest) error {
				notified = true
				return nil
			},
		},
	})

	req, err := svc.CreateRequest(context.Background(), CreateApprovalRequestInput{
		TenantID:    "t1",
		RequesterID: "user-1",
		ObjectType:  entity.ObjectTypeInventoryTransfer,
		ObjectID:    "transfer-1",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, entity.ApprovalStatusApproved, req.Status)
	assert.NotNil(t, req.ApprovedAt)
	assert.Equal(t, 1, req.TotalLevels)

	// The synthetic system decision keeps the auto-approval auditable.
	require.NotNil(t, decision)
	assert.Equal(t, entity.RoleSystem, decision.ApproverRole)
	assert.Equal(t, entity.DecisionApproved, decision.Decision)
	assert.Equal(t, "user-1", decision.ApproverID)

	// Nobody is waiting on an auto-approved request.
	assert.False(t, notified)
}

func TestApprovalService_CreateRequestPending(t *testing.T) {
	rule := twoLevelRule()
	expiry := 48
	rule.Conditions.ExpiryHours = &expiry

	var created *entity.ApprovalRequest
	notified := false
	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			createFunc: func(ctx context.Context, req *entity.ApprovalRequest) error {
				created = req
				return nil
			},
		},
		rules: &mockRuleService{
			findApplicableRuleFunc: func(ctx context.Context, tenantID string, objectType entity.ObjectType, data entity.ApprovalData, storeID *string) (*entity.ApprovalRule, error) {
				return rule, nil
			},
		},
		notifier: &mockNotifier{
			notifyPendingFunc: func(ctx context.Context, req *entity.ApprovalRequest) error {
				notified = true
				return nil
			},
		},
	})

	req, err := svc.CreateRequest(context.Background(), CreateApprovalRequestInput{
		TenantID:    "t1",
		RequesterID: "user-1",
		ObjectType:  entity.ObjectTypeInventoryTransfer,
		ObjectID:    "transfer-1",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, entity.ApprovalStatusPending, req.Status)
	assert.Equal(t, 1, req.CurrentLevel)
	assert.Equal(t, 2, req.TotalLevels)
	assert.Equal(t, 2, req.RequiredApprovals)
	assert.True(t, notified)

	require.NotNil(t, req.ExpiresAt)
	wantExpiry := time.Now().Add(48 * time.Hour)
	assert.WithinDuration(t, wantExpiry, *req.ExpiresAt, time.Minute)
}

func TestApprovalService_CreateRequestValidation(t *testing.T) {
	svc := newApprovalService(approvalServiceDeps{})

	_, err := svc.CreateRequest(context.Background(), CreateApprovalRequestInput{
		TenantID:   "t1",
		ObjectType: entity.ObjectTypeInventoryTransfer,
		ObjectID:   "transfer-1",
	})
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = svc.CreateRequest(context.Background(), CreateApprovalRequestInput{
		TenantID:    "t1",
		RequesterID: "user-1",
		ObjectType:  "bogus",
		ObjectID:    "transfer-1",
	})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func managerUser(id string) *entity.User {
	return &entity.User{ID: id, TenantID: "t1", Roles: []string{"manager"}, IsActive: true}
}

func TestApprovalService_ProcessDecisionAdvancesLevel(t *testing.T) {
	req := pendingTwoLevelRequest()
	req.ApprovedCount = 1 // one of two level-1 approvals already in

	var progressLevel, progressRequired, progressApproved int
	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
			updateProgressFunc: func(ctx context.Context, id string, currentLevel, requiredApprovals, approvedCount, rejectedCount int) error {
				progressLevel = currentLevel
				progressRequired = requiredApprovals
				progressApproved = approvedCount
				return nil
			},
		},
		users: &mockUserRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.User, error) {
				return managerUser(id), nil
			},
		},
	})

	out, err := svc.ProcessDecision(context.Background(), "t1", "req-1", DecisionInput{
		ApproverID: "manager-2",
		Decision:   entity.DecisionApproved,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalStatusPending, out.Status)
	// Level 1 satisfied: advance to level 2 with reset counters.
	assert.Equal(t, 2, progressLevel)
	assert.Equal(t, 1, progressRequired)
	assert.Equal(t, 0, progressApproved)
	assert.Equal(t, 2, out.CurrentLevel)
	assert.Equal(t, 0, out.ApprovedCount)
}

func TestApprovalService_ProcessDecisionAccumulatesWithinLevel(t *testing.T) {
	req := pendingTwoLevelRequest()

	var progressApproved int
	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
			updateProgressFunc: func(ctx context.Context, id string, currentLevel, requiredApprovals, approvedCount, rejectedCount int) error {
				progressApproved = approvedCount
				return nil
			},
		},
		users: &mockUserRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.User, error) {
				return managerUser(id), nil
			},
		},
	})

	out, err := svc.ProcessDecision(context.Background(), "t1", "req-1", DecisionInput{
		ApproverID: "manager-1",
		Decision:   entity.DecisionApproved,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalStatusPending, out.Status)
	assert.Equal(t, 1, out.CurrentLevel)
	assert.Equal(t, 1, progressApproved)
}

func TestApprovalService_ProcessDecisionFinalApprovalDispatches(t *testing.T) {
	req := pendingTwoLevelRequest()
	req.CurrentLevel = 2
	req.RequiredApprovals = 1

	var dispatched entity.ApprovalStatus
	var marked entity.ApprovalStatus
	notifiedDecided := false
	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
			markDecidedFunc: func(ctx context.Context, id string, status entity.ApprovalStatus, decidedAt time.Time, cancelReason string) error {
				marked = status
				return nil
			},
		},
		users: &mockUserRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.User, error) {
				return &entity.User{ID: id, TenantID: tenantID, Roles: []string{"director"}}, nil
			},
		},
		dispatcher: &mockDispatcher{
			dispatchFunc: func(ctx context.Context, r *entity.ApprovalRequest, decision entity.ApprovalStatus, approverID, comments string) error {
				dispatched = decision
				return nil
			},
		},
		notifier: &mockNotifier{
			notifyDecidedFunc: func(ctx context.Context, r *entity.ApprovalRequest) error {
				notifiedDecided = true
				return nil
			},
		},
	})

	out, err := svc.ProcessDecision(context.Background(), "t1", "req-1", DecisionInput{
		ApproverID: "director-1",
		Decision:   entity.DecisionApproved,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalStatusApproved, out.Status)
	assert.NotNil(t, out.ApprovedAt)
	assert.Equal(t, entity.ApprovalStatusApproved, marked)
	assert.Equal(t, entity.ApprovalStatusApproved, dispatched)
	assert.True(t, notifiedDecided)
}

func TestApprovalService_ProcessDecisionRejectionIsTerminal(t *testing.T) {
	req := pendingTwoLevelRequest()
	req.ApprovedCount = 1 // prior approvals at this level do not save it

	var dispatched entity.ApprovalStatus
	var marked entity.ApprovalStatus
	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
			markDecidedFunc: func(ctx context.Context, id string, status entity.ApprovalStatus, decidedAt time.Time, cancelReason string) error {
				marked = status
				return nil
			},
		},
		users: &mockUserRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.User, error) {
				return managerUser(id), nil
			},
		},
		dispatcher: &mockDispatcher{
			dispatchFunc: func(ctx context.Context, r *entity.ApprovalRequest, decision entity.ApprovalStatus, approverID, comments string) error {
				dispatched = decision
				return nil
			},
		},
	})

	out, err := svc.ProcessDecision(context.Background(), "t1", "req-1", DecisionInput{
		ApproverID: "manager-2",
		Decision:   entity.DecisionRejected,
		Comments:   "numbers do not add up",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalStatusRejected, out.Status)
	assert.NotNil(t, out.RejectedAt)
	assert.Equal(t, entity.ApprovalStatusRejected, marked)
	assert.Equal(t, entity.ApprovalStatusRejected, dispatched)
}

func TestApprovalService_ProcessDecisionPersistsTerminalCounts(t *testing.T) {
	tests := []struct {
		name         string
		decision     string
		wantApproved int
		wantRejected int
	}{
		{
			name:         "rejection writes the rejected count",
			decision:     entity.DecisionRejected,
			wantApproved: 1,
			wantRejected: 1,
		},
		{
			name:         "final approval writes the approved count",
			decision:     entity.DecisionApproved,
			wantApproved: 2,
			wantRejected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pendingTwoLevelRequest()
			req.TotalLevels = 1 // single level, so an approval here is terminal
			req.ApprovedCount = 1

			var calls []string
			var gotApproved, gotRejected int
			svc := newApprovalService(approvalServiceDeps{
				requests: &mockRequestRepo{
					getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
						return req, nil
					},
					updateProgressFunc: func(ctx context.Context, id string, currentLevel, requiredApprovals, approvedCount, rejectedCount int) error {
						calls = append(calls, "progress")
						gotApproved = approvedCount
						gotRejected = rejectedCount
						return nil
					},
					markDecidedFunc: func(ctx context.Context, id string, status entity.ApprovalStatus, decidedAt time.Time, cancelReason string) error {
						calls = append(calls, "decided")
						return nil
					},
				},
				users: &mockUserRepo{
					getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.User, error) {
						return managerUser(id), nil
					},
				},
			})

			_, err := svc.ProcessDecision(context.Background(), "t1", "req-1", DecisionInput{
				ApproverID: "manager-2",
				Decision:   tt.decision,
			})

			require.NoError(t, err)
			// The counter lands while the row is still pending, before the
			// terminal stamp flips the status.
			assert.Equal(t, []string{"progress", "decided"}, calls)
			assert.Equal(t, tt.wantApproved, gotApproved)
			assert.Equal(t, tt.wantRejected, gotRejected)
		})
	}
}

func TestApprovalService_ProcessDecisionUnauthorizedRole(t *testing.T) {
	req := pendingTwoLevelRequest()

	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
		},
		users: &mockUserRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.User, error) {
				return &entity.User{ID: id, TenantID: tenantID, Roles: []string{"cashier"}}, nil
			},
		},
	})

	_, err := svc.ProcessDecision(context.Background(), "t1", "req-1", DecisionInput{
		ApproverID: "cashier-1",
		Decision:   entity.DecisionApproved,
	})
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestApprovalService_ProcessDecisionUnknownApprover(t *testing.T) {
	req := pendingTwoLevelRequest()

	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
		},
		users: &mockUserRepo{}, // no such user
	})

	_, err := svc.ProcessDecision(context.Background(), "t1", "req-1", DecisionInput{
		ApproverID: "ghost",
		Decision:   entity.DecisionApproved,
	})
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestApprovalService_ProcessDecisionOnDecidedRequest(t *testing.T) {
	req := pendingTwoLevelRequest()
	req.Status = entity.ApprovalStatusApproved

	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
		},
	})

	_, err := svc.ProcessDecision(context.Background(), "t1", "req-1", DecisionInput{
		ApproverID: "manager-1",
		Decision:   entity.DecisionApproved,
	})
	assert.ErrorIs(t, err, entity.ErrInvalidState)
}

func TestApprovalService_ProcessDecisionInvalidDecision(t *testing.T) {
	svc := newApprovalService(approvalServiceDeps{})

	_, err := svc.ProcessDecision(context.Background(), "t1", "req-1", DecisionInput{
		ApproverID: "manager-1",
		Decision:   "maybe",
	})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestApprovalService_ProcessDecisionDispatcherFailureTolerated(t *testing.T) {
	req := pendingTwoLevelRequest()
	req.CurrentLevel = 2
	req.RequiredApprovals = 1

	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
		},
		users: &mockUserRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.User, error) {
				return &entity.User{ID: id, TenantID: tenantID, Roles: []string{"director"}}, nil
			},
		},
		dispatcher: &mockDispatcher{
			dispatchFunc: func(ctx context.Context, r *entity.ApprovalRequest, decision entity.ApprovalStatus, approverID, comments string) error {
				return errors.New("downstream unavailable")
			},
		},
		notifier: &mockNotifier{
			notifyDecidedFunc: func(ctx context.Context, r *entity.ApprovalRequest) error {
				return errors.New("messaging down")
			},
		},
	})

	// The committed decision is authoritative; downstream failures are
	// logged, never surfaced.
	out, err := svc.ProcessDecision(context.Background(), "t1", "req-1", DecisionInput{
		ApproverID: "director-1",
		Decision:   entity.DecisionApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalStatusApproved, out.Status)
}

func TestApprovalService_CancelByRequester(t *testing.T) {
	req := pendingTwoLevelRequest()

	var marked entity.ApprovalStatus
	var reason string
	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
			markDecidedFunc: func(ctx context.Context, id string, status entity.ApprovalStatus, decidedAt time.Time, cancelReason string) error {
				marked = status
				reason = cancelReason
				return nil
			},
		},
	})

	out, err := svc.Cancel(context.Background(), "t1", "req-1", "requester-1", "no longer needed")

	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalStatusCancelled, out.Status)
	assert.Equal(t, entity.ApprovalStatusCancelled, marked)
	assert.Equal(t, "no longer needed", reason)
	assert.NotNil(t, out.CancelledAt)
}

func TestApprovalService_CancelByElevatedRole(t *testing.T) {
	req := pendingTwoLevelRequest()

	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
		},
		users: &mockUserRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.User, error) {
				return &entity.User{ID: id, TenantID: tenantID, Roles: []string{entity.RoleAdmin}}, nil
			},
		},
	})

	out, err := svc.Cancel(context.Background(), "t1", "req-1", "admin-1", "")
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalStatusCancelled, out.Status)
}

func TestApprovalService_CancelUnauthorized(t *testing.T) {
	req := pendingTwoLevelRequest()

	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
		},
		users: &mockUserRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.User, error) {
				return &entity.User{ID: id, TenantID: tenantID, Roles: []string{"cashier"}}, nil
			},
		},
	})

	_, err := svc.Cancel(context.Background(), "t1", "req-1", "cashier-1", "")
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestApprovalService_CancelDecidedRequest(t *testing.T) {
	req := pendingTwoLevelRequest()
	req.Status = entity.ApprovalStatusRejected

	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
				return req, nil
			},
		},
	})

	_, err := svc.Cancel(context.Background(), "t1", "req-1", "requester-1", "")
	assert.ErrorIs(t, err, entity.ErrInvalidState)
}

func TestApprovalService_PendingForUser(t *testing.T) {
	levelOne := pendingTwoLevelRequest()
	levelTwo := pendingTwoLevelRequest()
	levelTwo.ID = "req-2"
	levelTwo.CurrentLevel = 2

	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			listPendingFunc: func(ctx context.Context, tenantID string) ([]*entity.ApprovalRequest, error) {
				return []*entity.ApprovalRequest{levelOne, levelTwo}, nil
			},
		},
		users: &mockUserRepo{
			getByIDFunc: func(ctx context.Context, tenantID, id string) (*entity.User, error) {
				return managerUser(id), nil
			},
		},
	})

	// A manager may decide level 1 but not level 2 (director only).
	eligible, err := svc.PendingForUser(context.Background(), "t1", "manager-1")
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "req-1", eligible[0].ID)
}

func TestApprovalService_ExpireOverdue(t *testing.T) {
	svc := newApprovalService(approvalServiceDeps{
		requests: &mockRequestRepo{
			expirePendingFunc: func(ctx context.Context, now time.Time) (int64, error) {
				return 3, nil
			},
		},
	})

	n, err := svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
