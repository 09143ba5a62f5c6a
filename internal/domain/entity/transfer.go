package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryTransfer moves a quantity of one product from a source store's
// ledger to a destination store's ledger, optionally gated by an approval
// request linked via ObjectID. UnitCost is snapshotted from the source
// inventory at creation time.
type InventoryTransfer struct {
	ID                 string          `json:"id"`
	TenantID           string          `json:"tenant_id"`
	TransferNumber     string          `json:"transfer_number"`
	SourceStoreID      string          `json:"source_store_id"`
	DestinationStoreID string          `json:"destination_store_id"`
	ProductID          string          `json:"product_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	Status             TransferStatus  `json:"status"`
	RequestedBy        string          `json:"requested_by"`
	ApprovedBy         *string         `json:"approved_by,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	ApprovedAt         *time.Time      `json:"approved_at,omitempty"`
	ShippedAt          *time.Time      `json:"shipped_at,omitempty"`
	ReceivedAt         *time.Time      `json:"received_at,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Amount is the transfer's monetary value, used for rule matching.
func (t *InventoryTransfer) Amount() decimal.Decimal {
	return t.UnitCost.Mul(t.Quantity)
}
