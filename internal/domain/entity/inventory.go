package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord is the per (tenant, store, product) stock ledger row.
// QuantityReserved never exceeds QuantityOnHand; the available quantity is
// derived, never stored.
type InventoryRecord struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenant_id"`
	StoreID          string          `json:"store_id"`
	ProductID        string          `json:"product_id"`
	QuantityOnHand   decimal.Decimal `json:"quantity_on_hand"`
	QuantityReserved decimal.Decimal `json:"quantity_reserved"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// QuantityAvailable returns on-hand minus reserved.
func (r *InventoryRecord) QuantityAvailable() decimal.Decimal {
	return r.QuantityOnHand.Sub(r.QuantityReserved)
}

// InventoryAdjustment captures one signed on-hand delta for auditing.
// Positive quantity is stock-in, negative is stock-out.
type InventoryAdjustment struct {
	TenantID  string          `json:"tenant_id"`
	StoreID   string          `json:"store_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
	Reference string          `json:"reference,omitempty"`
}
