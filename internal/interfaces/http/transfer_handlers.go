package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/service"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// CreateTransferRequest is the POST /api/transfers payload.
type CreateTransferRequest struct {
	SourceStoreID      string          `json:"source_store_id" binding:"required"`
	DestinationStoreID string          `json:"destination_store_id" binding:"required"`
	ProductID          string          `json:"product_id" binding:"required"`
	Quantity           decimal.Decimal `json:"quantity" binding:"required"`
	Notes              string          `json:"notes"`
}

// RejectTransferRequest is the POST /api/transfers/:id/reject payload.
type RejectTransferRequest struct {
	Notes string `json:"notes"`
}

// ListTransfersRequest represents query parameters for listing transfers
type ListTransfersRequest struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// CreateTransfer handles POST /api/transfers
func (h *Handlers) CreateTransfer(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	transfer, err := h.services.Transfers.Create(c.Request.Context(), userID(c), service.CreateTransferInput{
		TenantID:           tenantID(c),
		SourceStoreID:      req.SourceStoreID,
		DestinationStoreID: req.DestinationStoreID,
		ProductID:          req.ProductID,
		Quantity:           req.Quantity,
		Notes:              req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusCreated, transfer)
}

// ListTransfers handles GET /api/transfers
func (h *Handlers) ListTransfers(c *gin.Context) {
	var req ListTransfersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	transfers, err := h.services.Transfers.List(c.Request.Context(), tenantID(c),
		entity.TransferStatus(req.Status), req.Limit, req.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, transfers)
}

// GetTransfer handles GET /api/transfers/:id
func (h *Handlers) GetTransfer(c *gin.Context) {
	transfer, err := h.services.Transfers.Get(c.Request.Context(), tenantID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, transfer)
}

// ApproveTransfer handles POST /api/transfers/:id/approve
func (h *Handlers) ApproveTransfer(c *gin.Context) {
	transfer, err := h.services.Transfers.Approve(c.Request.Context(), tenantID(c), c.Param("id"), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, transfer)
}

// RejectTransfer handles POST /api/transfers/:id/reject
func (h *Handlers) RejectTransfer(c *gin.Context) {
	var req RejectTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.respondError(c, bindError(err))
		return
	}

	transfer, err := h.services.Transfers.Reject(c.Request.Context(), tenantID(c), c.Param("id"), userID(c), req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, transfer)
}

// ShipTransfer handles POST /api/transfers/:id/ship
func (h *Handlers) ShipTransfer(c *gin.Context) {
	transfer, err := h.services.Transfers.Ship(c.Request.Context(), tenantID(c), c.Param("id"), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, transfer)
}

// CompleteTransfer handles POST /api/transfers/:id/complete
func (h *Handlers) CompleteTransfer(c *gin.Context) {
	transfer, err := h.services.Transfers.Complete(c.Request.Context(), tenantID(c), c.Param("id"), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, transfer)
}

// CancelTransfer handles POST /api/transfers/:id/cancel
func (h *Handlers) CancelTransfer(c *gin.Context) {
	transfer, err := h.services.Transfers.Cancel(c.Request.Context(), tenantID(c), c.Param("id"), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, transfer)
}
