package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalLevel is one stage of a multi-stage approval: who may decide at
// this stage and how many approvals it takes to pass it.
type ApprovalLevel struct {
	Level         int              `json:"level"`
	ApproverRoles []string         `json:"approver_roles"`
	MinApprovals  int              `json:"min_approvals"`
	MaxAmount     *decimal.Decimal `json:"max_amount,omitempty"`
}

// RuleConditions is the matching predicate and level structure of a rule.
// Stored as a single JSON document; typed here so nothing downstream touches
// raw JSON.
type RuleConditions struct {
	MinAmount        *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount        *decimal.Decimal `json:"max_amount,omitempty"`
	StoreIDs         []string         `json:"store_ids,omitempty"`
	RequiresApproval bool             `json:"requires_approval"`
	ApprovalLevels   []ApprovalLevel  `json:"approval_levels,omitempty"`
	ExpiryHours      *int             `json:"expiry_hours,omitempty"`
}

// ApprovalRule is a tenant-configured policy deciding whether an operation
// needs sign-off. Once a rule has matched a request its level structure is
// snapshotted onto the request; later edits only affect future requests.
type ApprovalRule struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenant_id"`
	ObjectType ObjectType     `json:"object_type"`
	Name       string         `json:"name"`
	Conditions RuleConditions `json:"conditions"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ApprovalData is the normalized payload a rule is matched against.
type ApprovalData struct {
	Amount   *decimal.Decimal       `json:"amount,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ApprovalDecision is one approver's recorded decision at a given level.
type ApprovalDecision struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	Level        int       `json:"level"`
	ApproverID   string    `json:"approver_id"`
	ApproverRole string    `json:"approver_role"`
	Decision     string    `json:"decision"`
	Comments     string    `json:"comments,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ApprovalRequest tracks the multi-level sign-off of one domain object.
// ApprovedCount and RejectedCount apply to the current level only and reset
// to zero whenever the level advances.
type ApprovalRequest struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	StoreID     *string    `json:"store_id,omitempty"`
	RequesterID string     `json:"requester_id"`
	ObjectType  ObjectType `json:"object_type"`
	ObjectID    string     `json:"object_id"`

	Status            ApprovalStatus  `json:"status"`
	CurrentLevel      int             `json:"current_level"`
	TotalLevels       int             `json:"total_levels"`
	RequiredApprovals int             `json:"required_approvals"`
	ApprovedCount     int             `json:"approved_count"`
	RejectedCount     int             `json:"rejected_count"`
	Levels            []ApprovalLevel `json:"levels"`

	Decisions []ApprovalDecision `json:"decisions,omitempty"`

	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	RejectedAt   *time.Time `json:"rejected_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	ExpiredAt    *time.Time `json:"expired_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CurrentLevelRoles returns the approver roles of the request's current
// level, or nil when the level structure is exhausted or absent.
func (r *ApprovalRequest) CurrentLevelRoles() []string {
	for _, lvl := range r.Levels {
		if lvl.Level == r.CurrentLevel {
			return lvl.ApproverRoles
		}
	}
	return nil
}

// LevelAt returns the level definition for the given level number.
func (r *ApprovalRequest) LevelAt(level int) *ApprovalLevel {
	for i := range r.Levels {
		if r.Levels[i].Level == level {
			return &r.Levels[i]
		}
	}
	return nil
}

// IsTerminal reports whether the request has left pending.
func (r *ApprovalRequest) IsTerminal() bool {
	return r.Status != ApprovalStatusPending
}
