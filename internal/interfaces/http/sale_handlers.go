package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/service"
)

// SaleLineRequest is one product line of a sale payload.
type SaleLineRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateSaleRequest is the POST /api/sales payload.
type CreateSaleRequest struct {
	StoreID string            `json:"store_id" binding:"required"`
	Lines   []SaleLineRequest `json:"lines" binding:"required"`
}

// CreateSale handles POST /api/sales
func (h *Handlers) CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	lines := make([]service.SaleLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, service.SaleLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	sale, err := h.services.Sales.Create(c.Request.Context(), userID(c), service.CreateSaleInput{
		TenantID: tenantID(c),
		StoreID:  req.StoreID,
		Lines:    lines,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusCreated, sale)
}

// GetSale handles GET /api/sales/:id
func (h *Handlers) GetSale(c *gin.Context) {
	sale, err := h.services.Sales.Get(c.Request.Context(), tenantID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, sale)
}

// CompleteSale handles POST /api/sales/:id/complete
func (h *Handlers) CompleteSale(c *gin.Context) {
	sale, err := h.services.Sales.Complete(c.Request.Context(), tenantID(c), c.Param("id"), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, sale)
}

// CancelSale handles POST /api/sales/:id/cancel
func (h *Handlers) CancelSale(c *gin.Context) {
	sale, err := h.services.Sales.Cancel(c.Request.Context(), tenantID(c), c.Param("id"), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, sale)
}
