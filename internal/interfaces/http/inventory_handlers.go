package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// UpsertInventoryRequest is the POST /api/inventory payload.
type UpsertInventoryRequest struct {
	StoreID        string          `json:"store_id" binding:"required"`
	ProductID      string          `json:"product_id" binding:"required"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	CreateOnly     bool            `json:"create_only"`
}

// AdjustInventoryRequest is the POST /api/inventory/adjust payload.
type AdjustInventoryRequest struct {
	StoreID   string          `json:"store_id" binding:"required"`
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Reason    string          `json:"reason" binding:"required"`
	Reference string          `json:"reference"`
}

// ListInventoryRequest represents query parameters for listing the ledger
type ListInventoryRequest struct {
	StoreID string `form:"store_id"`
}

// ListInventory handles GET /api/inventory
func (h *Handlers) ListInventory(c *gin.Context) {
	var req ListInventoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	records, err := h.services.Inventory.List(c.Request.Context(), tenantID(c), req.StoreID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, records)
}

// UpsertInventory handles POST /api/inventory
func (h *Handlers) UpsertInventory(c *gin.Context) {
	var req UpsertInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	record, err := h.services.Inventory.CreateOrUpdate(c.Request.Context(), userID(c), &entity.InventoryRecord{
		TenantID:       tenantID(c),
		StoreID:        req.StoreID,
		ProductID:      req.ProductID,
		QuantityOnHand: req.QuantityOnHand,
		UnitCost:       req.UnitCost,
	}, req.CreateOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, record)
}

// AdjustInventory handles POST /api/inventory/adjust
func (h *Handlers) AdjustInventory(c *gin.Context) {
	var req AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	err := h.services.Inventory.Adjust(c.Request.Context(), userID(c), &entity.InventoryAdjustment{
		TenantID:  tenantID(c),
		StoreID:   req.StoreID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Reference: req.Reference,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	record, err := h.services.Inventory.Get(c.Request.Context(), tenantID(c), req.StoreID, req.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, record)
}
