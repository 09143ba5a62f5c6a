package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// ApprovalRuleService manages approval rules and answers the one question
// the state machines ask: which rule, if any, applies to this operation.
//
// Matching is a linear scan over the tenant's active rules for the object
// type, most recently created first; the first rule whose conditions all
// hold wins. A broader rule created later therefore shadows a narrower,
// earlier one. That recency tie-break is intentional and pinned by tests.
type ApprovalRuleService interface {
	Create(ctx context.Context, actorID string, rule *entity.ApprovalRule) (*entity.ApprovalRule, error)
	Update(ctx context.Context, actorID string, rule *entity.ApprovalRule) (*entity.ApprovalRule, error)
	SetActive(ctx context.Context, actorID, tenantID, id string, active bool) error
	Get(ctx context.Context, tenantID, id string) (*entity.ApprovalRule, error)
	List(ctx context.Context, tenantID string) ([]*entity.ApprovalRule, error)

	// FindApplicableRule returns the matching rule or nil when no active
	// rule matches; a nil rule means the caller auto-approves.
	FindApplicableRule(ctx context.Context, tenantID string, objectType entity.ObjectType, data entity.ApprovalData, storeID *string) (*entity.ApprovalRule, error)
}

type approvalRuleServiceImpl struct {
	repo   port.ApprovalRuleRepository
	audit  AuditService
	logger Logger
}

// NewApprovalRuleService creates a new ApprovalRuleService.
func NewApprovalRuleService(repo port.ApprovalRuleRepository, audit AuditService, logger Logger) ApprovalRuleService {
	return &approvalRuleServiceImpl{repo: repo, audit: audit, logger: logger}
}

func (s *approvalRuleServiceImpl) Create(ctx context.Context, actorID string, rule *entity.ApprovalRule) (*entity.ApprovalRule, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}

	rule.ID = uuid.NewString()
	rule.IsActive = true
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt
	normalizeLevels(rule.Conditions.ApprovalLevels)

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, rule.TenantID, nil, actorID, entity.AuditActionInsert, "approval_rules", rule.ID, rule)
	return rule, nil
}

func (s *approvalRuleServiceImpl) Update(ctx context.Context, actorID string, rule *entity.ApprovalRule) (*entity.ApprovalRule, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, rule.TenantID, rule.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, entity.ErrNotFound
	}

	existing.Name = rule.Name
	existing.Conditions = rule.Conditions
	existing.UpdatedAt = time.Now()
	normalizeLevels(existing.Conditions.ApprovalLevels)

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, existing.TenantID, nil, actorID, entity.AuditActionUpdate, "approval_rules", existing.ID, existing)
	return existing, nil
}

func (s *approvalRuleServiceImpl) SetActive(ctx context.Context, actorID, tenantID, id string, active bool) error {
	if err := s.repo.SetActive(ctx, tenantID, id, active); err != nil {
		return err
	}
	s.audit.Record(ctx, tenantID, nil, actorID, entity.AuditActionUpdate, "approval_rules", id,
		map[string]bool{"is_active": active})
	return nil
}

func (s *approvalRuleServiceImpl) Get(ctx context.Context, tenantID, id string) (*entity.ApprovalRule, error) {
	rule, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, entity.ErrNotFound
	}
	return rule, nil
}

func (s *approvalRuleServiceImpl) List(ctx context.Context, tenantID string) ([]*entity.ApprovalRule, error) {
	return s.repo.List(ctx, tenantID)
}

func (s *approvalRuleServiceImpl) FindApplicableRule(ctx context.Context, tenantID string, objectType entity.ObjectType, data entity.ApprovalData, storeID *string) (*entity.ApprovalRule, error) {
	rules, err := s.repo.ListActive(ctx, tenantID, objectType)
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		if ruleMatches(rule, data, storeID) {
			return rule, nil
		}
	}
	return nil, nil
}

// ruleMatches evaluates all conditions of one rule. A bound on amount only
// rejects when an amount is actually present: a rule never rejects a
// request for lacking an amount.
func ruleMatches(rule *entity.ApprovalRule, data entity.ApprovalData, storeID *string) bool {
	cond := rule.Conditions

	if data.Amount != nil {
		if cond.MinAmount != nil && data.Amount.LessThan(*cond.MinAmount) {
			return false
		}
		if cond.MaxAmount != nil && data.Amount.GreaterThan(*cond.MaxAmount) {
			return false
		}
	}

	if len(cond.StoreIDs) > 0 && storeID != nil {
		member := false
		for _, id := range cond.StoreIDs {
			if id == *storeID {
				member = true
				break
			}
		}
		if !member {
			return false
		}
	}

	return true
}

func validateRule(rule *entity.ApprovalRule) error {
	if rule.TenantID == "" {
		return fmt.Errorf("%w: tenant is required", entity.ErrValidation)
	}
	if !rule.ObjectType.IsValid() {
		return fmt.Errorf("%w: unknown object type %q", entity.ErrValidation, rule.ObjectType)
	}
	if rule.Name == "" {
		return fmt.Errorf("%w: rule name is required", entity.ErrValidation)
	}
	cond := rule.Conditions
	if cond.MinAmount != nil && cond.MaxAmount != nil && cond.MinAmount.GreaterThan(*cond.MaxAmount) {
		return fmt.Errorf("%w: min amount exceeds max amount", entity.ErrValidation)
	}
	if cond.RequiresApproval && len(cond.ApprovalLevels) == 0 {
		return fmt.Errorf("%w: a rule requiring approval needs at least one level", entity.ErrValidation)
	}
	for _, lvl := range cond.ApprovalLevels {
		if len(lvl.ApproverRoles) == 0 {
			return fmt.Errorf("%w: level %d has no approver roles", entity.ErrValidation, lvl.Level)
		}
	}
	if cond.ExpiryHours != nil && *cond.ExpiryHours <= 0 {
		return fmt.Errorf("%w: expiry hours must be positive", entity.ErrValidation)
	}
	return nil
}

// normalizeLevels sorts levels, renumbers them 1..n and defaults
// minApprovals to 1.
func normalizeLevels(levels []entity.ApprovalLevel) {
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Level < levels[j].Level
	})
	for i := range levels {
		levels[i].Level = i + 1
		if levels[i].MinApprovals < 1 {
			levels[i].MinApprovals = 1
		}
	}
}
