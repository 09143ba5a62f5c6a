package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// StoreRequest is the store create/update payload.
type StoreRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	IsActive *bool  `json:"is_active"`
}

// ProductRequest is the product create/update payload.
type ProductRequest struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name" binding:"required"`
	Unit     string          `json:"unit"`
	Price    decimal.Decimal `json:"price"`
	IsActive *bool           `json:"is_active"`
}

// CreateStore handles POST /api/stores
func (h *Handlers) CreateStore(c *gin.Context) {
	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	store, err := h.services.Stores.Create(c.Request.Context(), userID(c), &entity.Store{
		TenantID: tenantID(c),
		Code:     req.Code,
		Name:     req.Name,
		Address:  req.Address,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusCreated, store)
}

// ListStores handles GET /api/stores
func (h *Handlers) ListStores(c *gin.Context) {
	stores, err := h.services.Stores.List(c.Request.Context(), tenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, stores)
}

// GetStore handles GET /api/stores/:id
func (h *Handlers) GetStore(c *gin.Context) {
	store, err := h.services.Stores.Get(c.Request.Context(), tenantID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, store)
}

// UpdateStore handles PUT /api/stores/:id
func (h *Handlers) UpdateStore(c *gin.Context) {
	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	store := &entity.Store{
		ID:       c.Param("id"),
		TenantID: tenantID(c),
		Name:     req.Name,
		Address:  req.Address,
		IsActive: true,
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	updated, err := h.services.Stores.Update(c.Request.Context(), userID(c), store)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, updated)
}

// CreateProduct handles POST /api/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	product, err := h.services.Products.Create(c.Request.Context(), userID(c), &entity.Product{
		TenantID: tenantID(c),
		SKU:      req.SKU,
		Name:     req.Name,
		Unit:     req.Unit,
		Price:    req.Price,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusCreated, product)
}

// ListProducts handles GET /api/products
func (h *Handlers) ListProducts(c *gin.Context) {
	products, err := h.services.Products.List(c.Request.Context(), tenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, products)
}

// GetProduct handles GET /api/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.services.Products.Get(c.Request.Context(), tenantID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, product)
}

// UpdateProduct handles PUT /api/products/:id
func (h *Handlers) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	product := &entity.Product{
		ID:       c.Param("id"),
		TenantID: tenantID(c),
		Name:     req.Name,
		Unit:     req.Unit,
		Price:    req.Price,
		IsActive: true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	updated, err := h.services.Products.Update(c.Request.Context(), userID(c), product)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, updated)
}
