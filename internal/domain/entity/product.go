package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item owned by a tenant. SKU is unique within the
// tenant.
type Product struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenant_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
