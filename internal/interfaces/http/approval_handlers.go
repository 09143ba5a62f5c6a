package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/service"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// CreateApprovalRequestRequest is the POST /api/approval-requests payload,
// for domains that raise approval requests directly rather than through a
// service-owned workflow.
type CreateApprovalRequestRequest struct {
	ObjectType string              `json:"object_type" binding:"required"`
	ObjectID   string              `json:"object_id" binding:"required"`
	StoreID    *string             `json:"store_id"`
	Data       entity.ApprovalData `json:"data"`
}

// DecisionRequest is the POST /api/approval-requests/:id/decision payload.
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comments string `json:"comments"`
}

// CancelApprovalRequestRequest is the cancel payload.
type CancelApprovalRequestRequest struct {
	Reason string `json:"reason"`
}

// CreateApprovalRequest handles POST /api/approval-requests
func (h *Handlers) CreateApprovalRequest(c *gin.Context) {
	var req CreateApprovalRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	objectType := entity.ObjectType(req.ObjectType)
	if !objectType.IsValid() {
		h.respondError(c, fmt.Errorf("%w: unknown object type %q", entity.ErrValidation, req.ObjectType))
		return
	}

	request, err := h.services.Approvals.CreateRequest(c.Request.Context(), service.CreateApprovalRequestInput{
		TenantID:    tenantID(c),
		StoreID:     req.StoreID,
		RequesterID: userID(c),
		ObjectType:  objectType,
		ObjectID:    req.ObjectID,
		Data:        req.Data,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusCreated, request)
}

// ListPendingApprovals handles GET /api/approval-requests/pending. It
// returns only the requests the caller may currently decide.
func (h *Handlers) ListPendingApprovals(c *gin.Context) {
	requests, err := h.services.Approvals.PendingForUser(c.Request.Context(), tenantID(c), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, requests)
}

// GetApprovalRequest handles GET /api/approval-requests/:id
func (h *Handlers) GetApprovalRequest(c *gin.Context) {
	request, err := h.services.Approvals.Get(c.Request.Context(), tenantID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, request)
}

// SubmitDecision handles POST /api/approval-requests/:id/decision
func (h *Handlers) SubmitDecision(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	request, err := h.services.Approvals.ProcessDecision(c.Request.Context(), tenantID(c), c.Param("id"), service.DecisionInput{
		ApproverID: userID(c),
		Decision:   req.Decision,
		Comments:   req.Comments,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, request)
}

// CancelApprovalRequest handles POST /api/approval-requests/:id/cancel
func (h *Handlers) CancelApprovalRequest(c *gin.Context) {
	var req CancelApprovalRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.respondError(c, bindError(err))
		return
	}

	request, err := h.services.Approvals.Cancel(c.Request.Context(), tenantID(c), c.Param("id"), userID(c), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, request)
}

// CreateApprovalRuleRequest is the POST /api/approval-rules payload.
type CreateApprovalRuleRequest struct {
	ObjectType string                `json:"object_type" binding:"required"`
	Name       string                `json:"name" binding:"required"`
	Conditions entity.RuleConditions `json:"conditions"`
}

// CreateApprovalRule handles POST /api/approval-rules
func (h *Handlers) CreateApprovalRule(c *gin.Context) {
	var req CreateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	rule, err := h.services.Rules.Create(c.Request.Context(), userID(c), &entity.ApprovalRule{
		TenantID:   tenantID(c),
		ObjectType: entity.ObjectType(req.ObjectType),
		Name:       req.Name,
		Conditions: req.Conditions,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusCreated, rule)
}

// ListApprovalRules handles GET /api/approval-rules
func (h *Handlers) ListApprovalRules(c *gin.Context) {
	rules, err := h.services.Rules.List(c.Request.Context(), tenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, rules)
}

// GetApprovalRule handles GET /api/approval-rules/:id
func (h *Handlers) GetApprovalRule(c *gin.Context) {
	rule, err := h.services.Rules.Get(c.Request.Context(), tenantID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, rule)
}

// UpdateApprovalRule handles PUT /api/approval-rules/:id
func (h *Handlers) UpdateApprovalRule(c *gin.Context) {
	var req CreateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	rule, err := h.services.Rules.Update(c.Request.Context(), userID(c), &entity.ApprovalRule{
		ID:         c.Param("id"),
		TenantID:   tenantID(c),
		ObjectType: entity.ObjectType(req.ObjectType),
		Name:       req.Name,
		Conditions: req.Conditions,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, rule)
}

// DeactivateApprovalRule handles DELETE /api/approval-rules/:id. Rules are
// soft-deactivated; requests already carrying their snapshot are unaffected.
func (h *Handlers) DeactivateApprovalRule(c *gin.Context) {
	if err := h.services.Rules.SetActive(c.Request.Context(), userID(c), tenantID(c), c.Param("id"), false); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, gin.H{"deactivated": true})
}
